package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/whyumesh/zonal-election-system/api/models"
	"github.com/whyumesh/zonal-election-system/api/transport"
	"github.com/whyumesh/zonal-election-system/logging"
	"github.com/whyumesh/zonal-election-system/storage"
)

// AdminController owns the election lifecycle and the voter-roll import.
type AdminController struct {
	electionsStorage storage.ElectionStorage
	votersStorage    storage.VoterStorage
}

func NewAdminController(elections storage.ElectionStorage, voters storage.VoterStorage) *AdminController {
	return &AdminController{
		electionsStorage: elections,
		votersStorage:    voters,
	}
}

func (c *AdminController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/admin", transport.AdminAuthMiddleware())

	group.GET("/elections", c.listElections)
	group.POST("/elections", c.createElection)
	group.POST("/elections/:id/activate", c.activateElection)
	group.POST("/elections/:id/close", c.closeElection)
	group.POST("/elections/:id/declare", c.declareResults)
	group.POST("/voters", c.createVoter)
	group.GET("/voters/:id", c.getVoter)
}

// @Security AdminToken
// listElections godoc
// @Summary List all elections
// @Tags admin
// @Produce json
// @Success 200 {array} models.ElectionResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/elections [get]
func (c *AdminController) listElections(g *gin.Context) {
	elections, err := c.electionsStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("ADMIN: failed to list elections: %v", err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]models.ElectionResponse, 0, len(elections))
	for _, e := range elections {
		out = append(out, models.TransformElectionFromStorage(e))
	}
	logging.Log.Infof("ADMIN: listed %d elections", len(out))
	g.JSON(http.StatusOK, out)
}

// @Security AdminToken
// createElection godoc
// @Summary Create an election in DRAFT state
// @Tags admin
// @Accept json
// @Produce json
// @Param request body models.ElectionCreateRequest true "Election"
// @Success 200 {object} models.ElectionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/elections [post]
func (c *AdminController) createElection(g *gin.Context) {
	var req models.ElectionCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Name == "" {
		g.JSON(http.StatusBadRequest, gin.H{"error": "invalid request, missing name or type"})
		return
	}
	if _, ok := models.ValidElectionTypes[models.ElectionType(req.Type)]; !ok {
		logging.Log.Warnf("ADMIN: attempted to create election with invalid type: %s", req.Type)
		g.JSON(http.StatusBadRequest, gin.H{"error": "invalid election type"})
		return
	}

	e := &storage.Election{
		ID:     c.generateElectionID(),
		Name:   req.Name,
		Type:   req.Type,
		Status: storage.ElectionStatusDraft,
	}
	if err := c.electionsStorage.Create(g.Request.Context(), e); err != nil {
		logging.Log.Errorf("ADMIN: failed to create election: %v", err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": "could not create election"})
		return
	}

	logging.Log.Infof("ADMIN: created election %s (%s)", e.ID, e.Name)
	g.JSON(http.StatusOK, models.TransformElectionFromStorage(e))
}

// @Security AdminToken
// activateElection godoc
// @Summary Activate a DRAFT election
// @Description Fails if another election of the same type is already ACTIVE
// @Tags admin
// @Produce json
// @Param id path string true "Election id"
// @Success 200 {object} models.ElectionResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/elections/{id}/activate [post]
func (c *AdminController) activateElection(g *gin.Context) {
	e, err := c.electionsStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		g.JSON(http.StatusNotFound, gin.H{"error": "election not found"})
		return
	}
	if e.Status != storage.ElectionStatusDraft {
		g.JSON(http.StatusConflict, gin.H{"error": "only a DRAFT election can be activated"})
		return
	}
	active, err := c.electionsStorage.GetActiveByType(g.Request.Context(), e.Type)
	switch {
	case err == nil:
		logging.Log.Warnf("ADMIN: refusing to activate %s, %s is already active", e.ID, active.ID)
		g.JSON(http.StatusConflict, gin.H{"error": "another election of this type is already active"})
		return
	case !errors.Is(err, storage.ErrNotFound):
		logging.Log.Errorf("ADMIN: could not check for an active %s election: %v", e.Type, err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": "could not check for an active election"})
		return
	}

	if err := c.electionsStorage.UpdateStatus(g.Request.Context(), e.ID, storage.ElectionStatusActive); err != nil {
		logging.Log.Errorf("ADMIN: failed to activate election %s: %v", e.ID, err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": "could not activate election"})
		return
	}

	e.Status = storage.ElectionStatusActive
	logging.Log.Infof("ADMIN: activated election %s", e.ID)
	g.JSON(http.StatusOK, models.TransformElectionFromStorage(e))
}

// @Security AdminToken
// closeElection godoc
// @Summary Close an ACTIVE election; CLOSED is terminal
// @Tags admin
// @Produce json
// @Param id path string true "Election id"
// @Success 200 {object} models.ElectionResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/elections/{id}/close [post]
func (c *AdminController) closeElection(g *gin.Context) {
	e, err := c.electionsStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		g.JSON(http.StatusNotFound, gin.H{"error": "election not found"})
		return
	}
	if e.Status != storage.ElectionStatusActive {
		g.JSON(http.StatusConflict, gin.H{"error": "only an ACTIVE election can be closed"})
		return
	}

	if err := c.electionsStorage.UpdateStatus(g.Request.Context(), e.ID, storage.ElectionStatusClosed); err != nil {
		logging.Log.Errorf("ADMIN: failed to close election %s: %v", e.ID, err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": "could not close election"})
		return
	}

	e.Status = storage.ElectionStatusClosed
	logging.Log.Infof("ADMIN: closed election %s", e.ID)
	g.JSON(http.StatusOK, models.TransformElectionFromStorage(e))
}

// @Security AdminToken
// declareResults godoc
// @Summary Set or revoke the public results-declared flag
// @Description Safe to flip at any time; the tally is re-derived from the vote rows on every read
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Election id"
// @Param request body models.DeclareResultsRequest true "Flag"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/elections/{id}/declare [post]
func (c *AdminController) declareResults(g *gin.Context) {
	var req models.DeclareResultsRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	id := g.Param("id")
	if err := c.electionsStorage.SetResultsDeclared(g.Request.Context(), id, req.Declared); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, gin.H{"error": "election not found"})
			return
		}
		logging.Log.Errorf("ADMIN: failed to set results flag on %s: %v", id, err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": "could not update results flag"})
		return
	}

	logging.Log.Infof("ADMIN: results declared=%t for election %s", req.Declared, id)
	g.JSON(http.StatusOK, gin.H{"election": id})
}

// @Security AdminToken
// createVoter godoc
// @Summary Add one voter-roll entry
// @Tags admin
// @Accept json
// @Produce json
// @Param request body models.VoterCreateRequest true "Voter"
// @Success 200 {object} models.VoterResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/voters [post]
func (c *AdminController) createVoter(g *gin.Context) {
	var req models.VoterCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.ID == "" {
		g.JSON(http.StatusBadRequest, gin.H{"error": "invalid request, missing voter id"})
		return
	}

	voter := &storage.Voter{
		ID:    req.ID,
		Name:  req.Name,
		Zones: req.Zones,
	}
	if err := c.votersStorage.Create(g.Request.Context(), voter); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			g.JSON(http.StatusConflict, gin.H{"error": "voter already exists"})
			return
		}
		logging.Log.Errorf("ADMIN: failed to create voter: %v", err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": "could not create voter"})
		return
	}

	logging.Log.Infof("ADMIN: created voter %s", voter.ID)
	g.JSON(http.StatusOK, models.TransformVoterFromStorage(voter))
}

// @Security AdminToken
// getVoter godoc
// @Summary Look up one voter-roll entry
// @Tags admin
// @Produce json
// @Param id path string true "Voter id"
// @Success 200 {object} models.VoterResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/voters/{id} [get]
func (c *AdminController) getVoter(g *gin.Context) {
	voter, err := c.votersStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, gin.H{"error": "voter not found"})
			return
		}
		logging.Log.Errorf("ADMIN: failed to get voter: %v", err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	g.JSON(http.StatusOK, models.TransformVoterFromStorage(voter))
}

func (c *AdminController) generateElectionID() string {
	id, err := gonanoid.Generate(models.Alphabet, 8)
	if err != nil {
		logging.Log.Errorf("ADMIN: failed to generate election id: %v", err)
		return "ERROR"
	}
	return id
}
