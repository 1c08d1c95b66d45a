package models

import (
	"time"

	"github.com/whyumesh/zonal-election-system/storage"
)

// OfflineBallotRequest is the admin-entered ballot. Votes values may be a
// candidate id or a voter id (a self-nominated candidate); empty votes is a
// valid all-NOTA entry.
type OfflineBallotRequest struct {
	VoterID string            `json:"voterId"`
	Votes   map[string]string `json:"votes"`
	Notes   string            `json:"notes,omitempty"`
}

type OfflineBallotResponse struct {
	Message string `json:"message"`
}

type OfflineVoteResponse struct {
	VoterID     string     `json:"voterId"`
	ZoneID      string     `json:"zoneId"`
	CandidateID string     `json:"candidateId,omitempty"`
	Seat        int        `json:"seat"`
	AdminID     string     `json:"adminId"`
	Notes       string     `json:"notes,omitempty"`
	EnteredAt   time.Time  `json:"enteredAt"`
	IsMerged    bool       `json:"isMerged"`
	MergedAt    *time.Time `json:"mergedAt,omitempty"`
}

func TransformOfflineVoteFromStorage(v *storage.OfflineVote) OfflineVoteResponse {
	return OfflineVoteResponse{
		VoterID:     v.VoterID,
		ZoneID:      v.ZoneID,
		CandidateID: v.CandidateID,
		Seat:        v.Seat,
		AdminID:     v.AdminID,
		Notes:       v.Notes,
		EnteredAt:   v.EnteredAt,
		IsMerged:    v.IsMerged,
		MergedAt:    v.MergedAt,
	}
}
