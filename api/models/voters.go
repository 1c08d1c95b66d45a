package models

import "github.com/whyumesh/zonal-election-system/storage"

type VoterCreateRequest struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Zones map[string]string `json:"zones"` // election type -> zone id
}

type VoterResponse struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Zones map[string]string `json:"zones"`
}

type VoteStatusResponse struct {
	Voted   bool   `json:"voted"`
	Channel string `json:"channel,omitempty"` // "online" or "offline"
}

func TransformVoterFromStorage(v *storage.Voter) VoterResponse {
	return VoterResponse{
		ID:    v.ID,
		Name:  v.Name,
		Zones: v.Zones,
	}
}
