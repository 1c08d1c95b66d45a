package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testutils "github.com/whyumesh/zonal-election-system/api/controllers/testing"
	"github.com/whyumesh/zonal-election-system/api/models"
	"github.com/whyumesh/zonal-election-system/logging"
	"github.com/whyumesh/zonal-election-system/storage"
	"github.com/whyumesh/zonal-election-system/storage/storagetest"
)

func setupTestMetaControllers(t *testing.T) (*gin.Engine, *storagetest.Store) {
	t.Helper()
	t.Setenv("ADMIN_TOKEN", "secret")
	logging.Log = logrus.New()

	store := storagetest.New()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewZoneMetaController(store.Zones()).RegisterRoutes(r)
	NewCandidateMetaController(store.Candidates(), store.Zones()).RegisterRoutes(r)
	return r, store
}

func TestZoneMeta(t *testing.T) {
	t.Run("Happy path - create, list by type, update", func(t *testing.T) {
		router, _ := setupTestMetaControllers(t)

		create := testutils.PerformRequest(router, http.MethodPost, "/api/admin/zones",
			models.ZoneCreateRequest{
				ID: "zone-north", Type: "zonal_council", Name: "North",
				LocalName: "Uttari", Seats: 2, Active: true,
			}, adminHeaders())
		require.Equal(t, http.StatusOK, create.Code, create.Body.String())

		other := testutils.PerformRequest(router, http.MethodPost, "/api/admin/zones",
			models.ZoneCreateRequest{
				ID: "zone-cc", Type: "central_committee", Name: "Central", Seats: 5, Active: true,
			}, adminHeaders())
		require.Equal(t, http.StatusOK, other.Code)

		list := testutils.PerformRequest(router, http.MethodGet, "/api/meta/zones?type=zonal_council", nil, nil)
		require.Equal(t, http.StatusOK, list.Code)
		var zones []models.ZoneResponse
		require.NoError(t, json.Unmarshal(list.Body.Bytes(), &zones))
		require.Len(t, zones, 1)
		assert.Equal(t, "zone-north", zones[0].ID)
		assert.Equal(t, "Uttari", zones[0].LocalName)

		update := testutils.PerformRequest(router, http.MethodPut, "/api/admin/zones/zone-north",
			models.ZoneUpdateRequest{Name: "North", LocalName: "Uttari", Seats: 3, Active: true},
			adminHeaders())
		require.Equal(t, http.StatusOK, update.Code)

		get := testutils.PerformRequest(router, http.MethodGet, "/api/meta/zones/zone-north", nil, nil)
		require.Equal(t, http.StatusOK, get.Code)
		var zone models.ZoneResponse
		require.NoError(t, json.Unmarshal(get.Body.Bytes(), &zone))
		assert.Equal(t, 3, zone.Seats)
	})

	t.Run("Zone needs at least one seat", func(t *testing.T) {
		router, _ := setupTestMetaControllers(t)

		res := testutils.PerformRequest(router, http.MethodPost, "/api/admin/zones",
			models.ZoneCreateRequest{ID: "zone-bad", Type: "zonal_council", Name: "Bad", Seats: 0},
			adminHeaders())
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("Duplicate zone is a conflict", func(t *testing.T) {
		router, _ := setupTestMetaControllers(t)
		payload := models.ZoneCreateRequest{ID: "zone-north", Type: "zonal_council", Name: "North", Seats: 2}

		first := testutils.PerformRequest(router, http.MethodPost, "/api/admin/zones", payload, adminHeaders())
		require.Equal(t, http.StatusOK, first.Code)
		second := testutils.PerformRequest(router, http.MethodPost, "/api/admin/zones", payload, adminHeaders())
		assert.Equal(t, http.StatusConflict, second.Code)
	})
}

func TestCandidateMeta(t *testing.T) {
	seedZone := func(t *testing.T, store *storagetest.Store) {
		t.Helper()
		require.NoError(t, store.Zones().Create(context.Background(), &storage.Zone{
			ID: "zone-north", ElectionType: "zonal_council", Name: "North", Seats: 2, Active: true,
		}))
	}

	t.Run("Happy path - create pending, approve, list", func(t *testing.T) {
		router, store := setupTestMetaControllers(t)
		seedZone(t, store)

		create := testutils.PerformRequest(router, http.MethodPost, "/api/admin/candidates",
			models.CandidateCreateRequest{ZoneID: "zone-north", Name: "Asha"}, adminHeaders())
		require.Equal(t, http.StatusOK, create.Code, create.Body.String())

		var candidate models.CandidateResponse
		require.NoError(t, json.Unmarshal(create.Body.Bytes(), &candidate))
		assert.NotEmpty(t, candidate.ID)
		assert.Equal(t, "PENDING", candidate.Status)
		assert.Equal(t, "zonal_council", candidate.Type)

		// Pending candidates are not publicly listed
		list := testutils.PerformRequest(router, http.MethodGet, "/api/meta/candidates?zone=zone-north", nil, nil)
		require.Equal(t, http.StatusOK, list.Code)
		var listed []models.CandidateResponse
		require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listed))
		assert.Empty(t, listed)

		approve := testutils.PerformRequest(router, http.MethodPost,
			"/api/admin/candidates/"+candidate.ID+"/approve", nil, adminHeaders())
		require.Equal(t, http.StatusOK, approve.Code)

		list = testutils.PerformRequest(router, http.MethodGet, "/api/meta/candidates?zone=zone-north", nil, nil)
		require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listed))
		require.Len(t, listed, 1)
		assert.Equal(t, candidate.ID, listed[0].ID)
	})

	t.Run("NOTA pseudo-candidates stay out of the public list", func(t *testing.T) {
		router, store := setupTestMetaControllers(t)
		seedZone(t, store)

		require.NoError(t, store.Candidates().Create(context.Background(), &storage.Candidate{
			ID:     storage.NotaCandidateID("zone-north"),
			ZoneID: "zone-north", ElectionType: "zonal_council",
			Name: "None of the Above", Status: storage.CandidateStatusApproved, IsNota: true,
		}))

		list := testutils.PerformRequest(router, http.MethodGet, "/api/meta/candidates?zone=zone-north", nil, nil)
		require.Equal(t, http.StatusOK, list.Code)
		var listed []models.CandidateResponse
		require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listed))
		assert.Empty(t, listed)
	})

	t.Run("Unknown zone is rejected", func(t *testing.T) {
		router, _ := setupTestMetaControllers(t)

		res := testutils.PerformRequest(router, http.MethodPost, "/api/admin/candidates",
			models.CandidateCreateRequest{ZoneID: "zone-ghost", Name: "Nobody"}, adminHeaders())
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("Missing zone query is a bad request", func(t *testing.T) {
		router, _ := setupTestMetaControllers(t)

		res := testutils.PerformRequest(router, http.MethodGet, "/api/meta/candidates", nil, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})
}
