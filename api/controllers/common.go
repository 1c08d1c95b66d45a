package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/whyumesh/zonal-election-system/api/models"
	"github.com/whyumesh/zonal-election-system/election"
)

// statusForKind maps engine rejection kinds onto HTTP status categories:
// validation -> 400, unknown things -> 404, channel conflicts -> 409,
// everything else -> 500.
func statusForKind(kind election.Kind) int {
	switch kind {
	case election.KindNoZoneAssigned,
		election.KindZoneMismatch,
		election.KindInvalidCandidate,
		election.KindDuplicateSelection,
		election.KindTooManySelections:
		return http.StatusBadRequest
	case election.KindElectionUnavailable,
		election.KindVoterNotFound:
		return http.StatusNotFound
	case election.KindAlreadyVoted,
		election.KindAlreadyVotedOnline,
		election.KindOfflineVoteExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondElectionError(g *gin.Context, err error) {
	resp := models.TransformElectionError(err)
	g.JSON(statusForKind(election.KindOf(err)), &resp)
}
