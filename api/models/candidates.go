package models

import "github.com/whyumesh/zonal-election-system/storage"

type CandidateCreateRequest struct {
	ID      string `json:"id"`
	ZoneID  string `json:"zoneId"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	VoterID string `json:"voterId,omitempty"`
}

type CandidateResponse struct {
	ID      string `json:"id"`
	ZoneID  string `json:"zoneId"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	IsNota  bool   `json:"isNota"`
	VoterID string `json:"voterId,omitempty"`
}

func TransformCandidateFromStorage(c *storage.Candidate) CandidateResponse {
	return CandidateResponse{
		ID:      c.ID,
		ZoneID:  c.ZoneID,
		Type:    c.ElectionType,
		Name:    c.Name,
		Status:  c.Status,
		IsNota:  c.IsNota,
		VoterID: c.VoterID,
	}
}
