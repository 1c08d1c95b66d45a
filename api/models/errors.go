package models

import (
	"errors"

	"github.com/whyumesh/zonal-election-system/election"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Zone  string `json:"zone,omitempty"`
}

// TransformElectionError builds the API error body from an engine error,
// keeping internal detail out of the response.
func TransformElectionError(err error) ErrorResponse {
	kind := election.KindOf(err)
	resp := ErrorResponse{Kind: string(kind), Error: err.Error()}

	var e *election.Error
	if errors.As(err, &e) {
		resp.Zone = e.ZoneID
		resp.Error = e.Message
	}
	if kind == election.KindPersistence {
		resp.Error = "internal storage error"
	}
	return resp
}
