package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/whyumesh/zonal-election-system/api/models"
	"github.com/whyumesh/zonal-election-system/api/transport"
	"github.com/whyumesh/zonal-election-system/election"
	"github.com/whyumesh/zonal-election-system/logging"
)

type VotingController struct {
	service *election.Service
}

func NewVotingController(service *election.Service) *VotingController {
	return &VotingController{service: service}
}

func (c *VotingController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/vote", transport.VoterIdentityMiddleware())

	group.POST("/:type", c.submitBallot)
	group.GET("/:type/status", c.voteStatus)
	group.GET("/:type/mine", c.myBallot)
}

// submitBallot godoc
// @Summary Submit an online ballot
// @Description Accepts one voter's full ballot for the active election of a type; unfilled seats become NOTA
// @Tags voting
// @Accept json
// @Produce json
// @Param type path string true "Election type"
// @Param ballot body models.SubmitBallotRequest true "Ballot"
// @Success 200 {object} models.SubmitBallotResponse
// @Failure 400 {object} models.ErrorResponse "Ballot failed validation"
// @Failure 404 {object} models.ErrorResponse "No active election, or voter unknown"
// @Failure 409 {object} models.ErrorResponse "Voter already balloted"
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/vote/{type} [post]
func (c *VotingController) submitBallot(g *gin.Context) {
	electionType := g.Param("type")
	if _, ok := models.ValidElectionTypes[models.ElectionType(electionType)]; !ok {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid election type"})
		return
	}

	var req models.SubmitBallotRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	voterID := g.GetString(transport.VoterIDKey)
	prov := election.Provenance{
		Origin:    g.ClientIP(),
		ClientSig: g.GetHeader("User-Agent"),
	}

	if err := c.service.SubmitBallot(g.Request.Context(), voterID, electionType, req.Votes, prov); err != nil {
		logging.Log.Warnf("VOTE: rejected ballot from %s: %v", voterID, err)
		respondElectionError(g, err)
		return
	}

	g.JSON(http.StatusOK, &models.SubmitBallotResponse{Message: "ballot recorded"})
}

// voteStatus godoc
// @Summary Check whether the voter has already balloted
// @Tags voting
// @Produce json
// @Param type path string true "Election type"
// @Success 200 {object} models.VoteStatusResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/vote/{type}/status [get]
func (c *VotingController) voteStatus(g *gin.Context) {
	voterID := g.GetString(transport.VoterIDKey)

	voted, channel, err := c.service.VoterStatus(g.Request.Context(), voterID, g.Param("type"))
	if err != nil {
		respondElectionError(g, err)
		return
	}

	g.JSON(http.StatusOK, &models.VoteStatusResponse{Voted: voted, Channel: channel})
}

// myBallot godoc
// @Summary Retrieve the voter's own persisted ballot rows
// @Tags voting
// @Produce json
// @Param type path string true "Election type"
// @Success 200 {object} models.BallotResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/vote/{type}/mine [get]
func (c *VotingController) myBallot(g *gin.Context) {
	voterID := g.GetString(transport.VoterIDKey)

	rows, err := c.service.VoterBallot(g.Request.Context(), voterID, g.Param("type"))
	if err != nil {
		respondElectionError(g, err)
		return
	}
	if len(rows) == 0 {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "no ballot found for this voter"})
		return
	}

	response := models.TransformBallotFromStorage(voterID, rows)
	g.JSON(http.StatusOK, response)
}
