package models

import (
	"time"

	"github.com/whyumesh/zonal-election-system/storage"
)

type ElectionCreateRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type ElectionResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	Status          string    `json:"status"`
	ResultsDeclared bool      `json:"resultsDeclared"`
	CreatedAt       time.Time `json:"createdAt"`
}

type DeclareResultsRequest struct {
	Declared bool `json:"declared"`
}

func TransformElectionFromStorage(e *storage.Election) ElectionResponse {
	return ElectionResponse{
		ID:              e.ID,
		Name:            e.Name,
		Type:            e.Type,
		Status:          e.Status,
		ResultsDeclared: e.ResultsDeclared,
		CreatedAt:       e.CreatedAt,
	}
}
