package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/whyumesh/zonal-election-system/api/models"
	"github.com/whyumesh/zonal-election-system/api/transport"
	"github.com/whyumesh/zonal-election-system/election"
	"github.com/whyumesh/zonal-election-system/logging"
)

// OfflineVotingController is the admin-only surface for capturing ballots of
// voters without internet access.
type OfflineVotingController struct {
	service *election.Service
}

func NewOfflineVotingController(service *election.Service) *OfflineVotingController {
	return &OfflineVotingController{service: service}
}

func (c *OfflineVotingController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/admin/offline-votes", transport.AdminAuthMiddleware())

	group.POST("/:type", c.captureBallot)
	group.GET("/:type", c.listCaptures)
	group.DELETE("/:type/:voterId", c.deleteCapture)
	group.POST("/:type/:voterId/merge", c.markMerged)
}

// @Security AdminToken
// captureBallot godoc
// @Summary Record an offline ballot for a voter
// @Description Empty votes is a valid all-NOTA entry; picks may reference candidates or self-nominated voters
// @Tags offline
// @Accept json
// @Produce json
// @Param type path string true "Election type"
// @Param ballot body models.OfflineBallotRequest true "Offline ballot"
// @Success 200 {object} models.OfflineBallotResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Voter already balloted online or offline"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/offline-votes/{type} [post]
func (c *OfflineVotingController) captureBallot(g *gin.Context) {
	electionType := g.Param("type")
	if _, ok := models.ValidElectionTypes[models.ElectionType(electionType)]; !ok {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid election type"})
		return
	}

	var req models.OfflineBallotRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.VoterID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request, missing voterId"})
		return
	}

	adminID := g.GetHeader("x-admin-id")
	if adminID == "" {
		adminID = "admin"
	}

	err := c.service.SubmitOfflineBallot(g.Request.Context(), req.VoterID, adminID, electionType, req.Votes, req.Notes)
	if err != nil {
		logging.Log.Warnf("OFFLINE: rejected entry for %s: %v", req.VoterID, err)
		respondElectionError(g, err)
		return
	}

	g.JSON(http.StatusOK, &models.OfflineBallotResponse{Message: "offline ballot recorded"})
}

// @Security AdminToken
// listCaptures godoc
// @Summary List offline entries for the current election of a type
// @Tags offline
// @Produce json
// @Param type path string true "Election type"
// @Success 200 {array} models.OfflineVoteResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/offline-votes/{type} [get]
func (c *OfflineVotingController) listCaptures(g *gin.Context) {
	rows, err := c.service.OfflineCaptures(g.Request.Context(), g.Param("type"))
	if err != nil {
		respondElectionError(g, err)
		return
	}

	out := make([]models.OfflineVoteResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.TransformOfflineVoteFromStorage(row))
	}
	logging.Log.Infof("OFFLINE: listed %d entries", len(out))
	g.JSON(http.StatusOK, out)
}

// @Security AdminToken
// deleteCapture godoc
// @Summary Delete a voter's offline entry so a corrected one can be captured
// @Tags offline
// @Produce json
// @Param type path string true "Election type"
// @Param voterId path string true "Voter id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/offline-votes/{type}/{voterId} [delete]
func (c *OfflineVotingController) deleteCapture(g *gin.Context) {
	voterID := g.Param("voterId")

	if err := c.service.DeleteOfflineBallot(g.Request.Context(), voterID, g.Param("type")); err != nil {
		respondElectionError(g, err)
		return
	}

	logging.Log.Infof("OFFLINE: deleted entry for voter %s", voterID)
	g.JSON(http.StatusOK, gin.H{"deleted": voterID})
}

// @Security AdminToken
// markMerged godoc
// @Summary Flag a voter's offline entry as merged into the tally
// @Tags offline
// @Produce json
// @Param type path string true "Election type"
// @Param voterId path string true "Voter id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/offline-votes/{type}/{voterId}/merge [post]
func (c *OfflineVotingController) markMerged(g *gin.Context) {
	voterID := g.Param("voterId")

	if err := c.service.MarkOfflineMerged(g.Request.Context(), voterID, g.Param("type")); err != nil {
		respondElectionError(g, err)
		return
	}

	logging.Log.Infof("OFFLINE: marked entry for voter %s merged", voterID)
	g.JSON(http.StatusOK, gin.H{"merged": voterID})
}
