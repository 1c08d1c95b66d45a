package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/whyumesh/zonal-election-system/api/cache"
	"github.com/whyumesh/zonal-election-system/api/models"
	"github.com/whyumesh/zonal-election-system/api/transport"
	"github.com/whyumesh/zonal-election-system/election"
	"github.com/whyumesh/zonal-election-system/logging"
	"github.com/whyumesh/zonal-election-system/storage"
)

type ResultsController struct {
	service   *election.Service
	elections storage.ElectionStorage
	cache     cache.ResultsCache // nil disables caching
}

func NewResultsController(service *election.Service, elections storage.ElectionStorage, resultsCache cache.ResultsCache) *ResultsController {
	return &ResultsController{service: service, elections: elections, cache: resultsCache}
}

func (c *ResultsController) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/api/public/results/:type", c.publicResults)

	group := engine.Group("/api/admin/results", transport.AdminAuthMiddleware())
	group.GET("/:type", c.adminResults)
	group.GET("/:type/turnout", c.turnout)
}

// publicResults godoc
// @Summary Public winners feed
// @Description Returns the ranked tables and winners once results are declared; an empty structure before that
// @Tags results
// @Produce json
// @Param type path string true "Election type"
// @Param winners query string false "Set to 'real' to drop NOTA from the winner slices"
// @Success 200 {object} models.TallyResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/public/results/{type} [get]
func (c *ResultsController) publicResults(g *gin.Context) {
	electionType := g.Param("type")
	realWinnersOnly := g.Query("winners") == "real"

	cacheKey := "results:" + electionType
	if realWinnersOnly {
		cacheKey += ":real"
	}
	if c.cache != nil {
		if body, ok := c.cache.Get(g.Request.Context(), cacheKey); ok {
			g.Data(http.StatusOK, "application/json", body)
			return
		}
	}

	// The declaration flag gates the reveal: before it is set the public
	// feed exposes nothing identifying. Only a missing election reads as
	// "not declared"; a storage failure must not masquerade as one, or the
	// empty body would sit in the cache for the full TTL.
	declared := false
	if e, err := c.elections.GetCurrentByType(g.Request.Context(), electionType); err == nil {
		declared = e.ResultsDeclared
	} else if !errors.Is(err, storage.ErrNotFound) {
		logging.Log.Errorf("TALLY: could not read election state for %s: %v", electionType, err)
		respondElectionError(g, &election.Error{Kind: election.KindPersistence, Message: "could not load election state"})
		return
	}

	tally, err := c.service.Tally(g.Request.Context(), electionType, declared)
	if err != nil {
		respondElectionError(g, err)
		return
	}

	response := models.TransformTallyResult(tally, false, realWinnersOnly)
	if c.cache != nil {
		if body, err := json.Marshal(response); err == nil {
			c.cache.Set(g.Request.Context(), cacheKey, body)
		}
	}
	g.JSON(http.StatusOK, response)
}

// @Security AdminToken
// adminResults godoc
// @Summary Full ranked tables with the online/offline breakdown
// @Tags results
// @Produce json
// @Param type path string true "Election type"
// @Success 200 {object} models.TallyResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/results/{type} [get]
func (c *ResultsController) adminResults(g *gin.Context) {
	tally, err := c.service.Tally(g.Request.Context(), g.Param("type"), true)
	if err != nil {
		respondElectionError(g, err)
		return
	}

	g.JSON(http.StatusOK, models.TransformTallyResult(tally, true, false))
}

// @Security AdminToken
// turnout godoc
// @Summary Per-zone turnout derived from the persisted ballot rows
// @Tags results
// @Produce json
// @Param type path string true "Election type"
// @Success 200 {array} models.ZoneTurnoutResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/results/{type}/turnout [get]
func (c *ResultsController) turnout(g *gin.Context) {
	turnout, err := c.service.Turnout(g.Request.Context(), g.Param("type"))
	if err != nil {
		respondElectionError(g, err)
		return
	}

	logging.Log.Infof("TALLY: computed turnout for %d zones", len(turnout))
	g.JSON(http.StatusOK, models.TransformTurnout(turnout))
}
