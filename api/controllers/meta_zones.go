package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/whyumesh/zonal-election-system/api/models"
	"github.com/whyumesh/zonal-election-system/api/transport"
	"github.com/whyumesh/zonal-election-system/logging"
	"github.com/whyumesh/zonal-election-system/storage"
)

// ZoneMetaController maintains the zone registry. The voting engine only
// reads zones; writes belong to the upstream nomination workflow, exposed
// here behind the admin token.
type ZoneMetaController struct {
	zonesStorage storage.ZoneStorage
}

func NewZoneMetaController(s storage.ZoneStorage) *ZoneMetaController {
	return &ZoneMetaController{zonesStorage: s}
}

func (c *ZoneMetaController) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/api/meta/zones", c.list)
	engine.GET("/api/meta/zones/:id", c.get)

	group := engine.Group("/api/admin/zones", transport.AdminAuthMiddleware())
	group.POST("", c.create)
	group.PUT("/:id", c.update)
	group.DELETE("/:id", c.delete)
}

// list godoc
// @Summary List zones, optionally filtered by election type
// @Tags meta
// @Produce json
// @Param type query string false "Election type"
// @Success 200 {array} models.ZoneResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/meta/zones [get]
func (c *ZoneMetaController) list(g *gin.Context) {
	electionType := g.Query("type")

	var zones []*storage.Zone
	var err error
	if electionType != "" {
		zones, err = c.zonesStorage.GetByType(g.Request.Context(), electionType)
	} else {
		zones, err = c.zonesStorage.GetAll(g.Request.Context())
	}
	if err != nil {
		logging.Log.Errorf("ZONE: failed to list zones: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not list zones"})
		return
	}

	out := make([]models.ZoneResponse, 0, len(zones))
	for _, z := range zones {
		out = append(out, models.TransformZoneFromStorage(z))
	}
	g.JSON(http.StatusOK, out)
}

// get godoc
// @Summary Get one zone
// @Tags meta
// @Produce json
// @Param id path string true "Zone id"
// @Success 200 {object} models.ZoneResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/meta/zones/{id} [get]
func (c *ZoneMetaController) get(g *gin.Context) {
	zone, err := c.zonesStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "zone not found"})
			return
		}
		logging.Log.Errorf("ZONE: failed to get zone: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not get zone"})
		return
	}

	g.JSON(http.StatusOK, models.TransformZoneFromStorage(zone))
}

// @Security AdminToken
// create godoc
// @Summary Create a zone
// @Tags meta
// @Accept json
// @Produce json
// @Param request body models.ZoneCreateRequest true "Zone"
// @Success 200 {object} models.ZoneResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/zones [post]
func (c *ZoneMetaController) create(g *gin.Context) {
	var req models.ZoneCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.ID == "" || req.Name == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request, missing id or name"})
		return
	}
	if _, ok := models.ValidElectionTypes[models.ElectionType(req.Type)]; !ok {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid election type"})
		return
	}
	if req.Seats < 1 {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "a zone needs at least one seat"})
		return
	}

	zone := &storage.Zone{
		ID:           req.ID,
		ElectionType: req.Type,
		Name:         req.Name,
		LocalName:    req.LocalName,
		Seats:        req.Seats,
		Active:       req.Active,
	}
	if err := c.zonesStorage.Create(g.Request.Context(), zone); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "zone already exists"})
			return
		}
		logging.Log.Errorf("ZONE: failed to create zone: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create zone"})
		return
	}

	logging.Log.Infof("ZONE: created zone %s with %d seats", zone.ID, zone.Seats)
	g.JSON(http.StatusOK, models.TransformZoneFromStorage(zone))
}

// @Security AdminToken
// update godoc
// @Summary Update a zone
// @Description Changing the seat count affects future ballots only, never already-cast ones
// @Tags meta
// @Accept json
// @Produce json
// @Param id path string true "Zone id"
// @Param request body models.ZoneUpdateRequest true "Zone"
// @Success 200 {object} models.ZoneResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/zones/{id} [put]
func (c *ZoneMetaController) update(g *gin.Context) {
	existing, err := c.zonesStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "zone not found"})
		return
	}

	var req models.ZoneUpdateRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Seats < 1 {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request"})
		return
	}

	existing.Name = req.Name
	existing.LocalName = req.LocalName
	existing.Seats = req.Seats
	existing.Active = req.Active
	if err := c.zonesStorage.Update(g.Request.Context(), existing); err != nil {
		logging.Log.Errorf("ZONE: failed to update zone %s: %v", existing.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update zone"})
		return
	}

	logging.Log.Infof("ZONE: updated zone %s", existing.ID)
	g.JSON(http.StatusOK, models.TransformZoneFromStorage(existing))
}

// @Security AdminToken
// delete godoc
// @Summary Delete a zone
// @Tags meta
// @Produce json
// @Param id path string true "Zone id"
// @Success 200 {object} map[string]string
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/zones/{id} [delete]
func (c *ZoneMetaController) delete(g *gin.Context) {
	id := g.Param("id")
	if err := c.zonesStorage.Delete(g.Request.Context(), id); err != nil {
		logging.Log.Errorf("ZONE: failed to delete zone %s: %v", id, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete zone"})
		return
	}

	logging.Log.Infof("ZONE: deleted zone %s", id)
	g.JSON(http.StatusOK, gin.H{"deleted": id})
}
