package models

import (
	"time"

	"github.com/whyumesh/zonal-election-system/storage"
)

// SubmitBallotRequest carries the voter's selections keyed by zone id; each
// selection is a candidate id or a NOTA_<n> marker.
type SubmitBallotRequest struct {
	Votes map[string][]string `json:"votes"`
}

type SubmitBallotResponse struct {
	Message string `json:"message"`
}

type BallotRowResponse struct {
	ZoneID      string    `json:"zoneId"`
	CandidateID string    `json:"candidateId"`
	Seat        int       `json:"seat"`
	Timestamp   time.Time `json:"timestamp"`
}

type BallotResponse struct {
	VoterID string              `json:"voterId"`
	Rows    []BallotRowResponse `json:"rows"`
}

func TransformBallotFromStorage(voterID string, votes []*storage.Vote) BallotResponse {
	resp := BallotResponse{
		VoterID: voterID,
		Rows:    make([]BallotRowResponse, 0, len(votes)),
	}
	for _, v := range votes {
		resp.Rows = append(resp.Rows, BallotRowResponse{
			ZoneID:      v.ZoneID,
			CandidateID: v.CandidateID,
			Seat:        v.Seat,
			Timestamp:   v.Timestamp,
		})
	}
	return resp
}
