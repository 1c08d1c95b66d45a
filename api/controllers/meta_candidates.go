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

// CandidateMetaController maintains the candidate registry on behalf of the
// upstream nomination workflow. Only APPROVED candidates are votable online.
type CandidateMetaController struct {
	candidatesStorage storage.CandidateStorage
	zonesStorage      storage.ZoneStorage
}

func NewCandidateMetaController(candidates storage.CandidateStorage, zones storage.ZoneStorage) *CandidateMetaController {
	return &CandidateMetaController{
		candidatesStorage: candidates,
		zonesStorage:      zones,
	}
}

func (c *CandidateMetaController) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/api/meta/candidates", c.list)

	group := engine.Group("/api/admin/candidates", transport.AdminAuthMiddleware())
	group.POST("", c.create)
	group.POST("/:id/approve", c.approve)
	group.DELETE("/:id", c.delete)
}

// list godoc
// @Summary List approved candidates of a zone
// @Tags meta
// @Produce json
// @Param zone query string true "Zone id"
// @Success 200 {array} models.CandidateResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/meta/candidates [get]
func (c *CandidateMetaController) list(g *gin.Context) {
	zoneID := g.Query("zone")
	if zoneID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "zone is required"})
		return
	}

	candidates, err := c.candidatesStorage.GetByZone(g.Request.Context(), zoneID)
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to list candidates: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not list candidates"})
		return
	}

	out := make([]models.CandidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Status != storage.CandidateStatusApproved || candidate.IsNota {
			continue
		}
		out = append(out, models.TransformCandidateFromStorage(candidate))
	}
	g.JSON(http.StatusOK, out)
}

// @Security AdminToken
// create godoc
// @Summary Create a candidate in PENDING state
// @Tags meta
// @Accept json
// @Produce json
// @Param request body models.CandidateCreateRequest true "Candidate"
// @Success 200 {object} models.CandidateResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/candidates [post]
func (c *CandidateMetaController) create(g *gin.Context) {
	var req models.CandidateCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Name == "" || req.ZoneID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request, missing name or zoneId"})
		return
	}

	zone, err := c.zonesStorage.Get(g.Request.Context(), req.ZoneID)
	if err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "unknown zone"})
		return
	}

	id := req.ID
	if id == "" {
		id = c.generateCandidateID()
	}
	candidate := &storage.Candidate{
		ID:           id,
		ZoneID:       zone.ID,
		ElectionType: zone.ElectionType,
		Name:         req.Name,
		Status:       storage.CandidateStatusPending,
		VoterID:      req.VoterID,
	}
	if err := c.candidatesStorage.Create(g.Request.Context(), candidate); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "candidate already exists"})
			return
		}
		logging.Log.Errorf("CANDIDATE: failed to create candidate: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create candidate"})
		return
	}

	logging.Log.Infof("CANDIDATE: created candidate %s in zone %s", candidate.ID, candidate.ZoneID)
	g.JSON(http.StatusOK, models.TransformCandidateFromStorage(candidate))
}

// @Security AdminToken
// approve godoc
// @Summary Approve a candidate for voting
// @Tags meta
// @Produce json
// @Param id path string true "Candidate id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/candidates/{id}/approve [post]
func (c *CandidateMetaController) approve(g *gin.Context) {
	id := g.Param("id")
	if err := c.candidatesStorage.UpdateStatus(g.Request.Context(), id, storage.CandidateStatusApproved); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "candidate not found"})
			return
		}
		logging.Log.Errorf("CANDIDATE: failed to approve %s: %v", id, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not approve candidate"})
		return
	}

	logging.Log.Infof("CANDIDATE: approved %s", id)
	g.JSON(http.StatusOK, gin.H{"approved": id})
}

// @Security AdminToken
// delete godoc
// @Summary Delete a candidate
// @Tags meta
// @Produce json
// @Param id path string true "Candidate id"
// @Success 200 {object} map[string]string
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/candidates/{id} [delete]
func (c *CandidateMetaController) delete(g *gin.Context) {
	id := g.Param("id")
	if err := c.candidatesStorage.Delete(g.Request.Context(), id); err != nil {
		logging.Log.Errorf("CANDIDATE: failed to delete %s: %v", id, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete candidate"})
		return
	}

	logging.Log.Infof("CANDIDATE: deleted %s", id)
	g.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (c *CandidateMetaController) generateCandidateID() string {
	id, err := gonanoid.Generate(models.Alphabet, 8)
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to generate id: %v", err)
		return "ERROR"
	}
	return id
}
