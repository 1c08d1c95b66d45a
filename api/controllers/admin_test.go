package controllers

import (
	"context"
	"encoding/json"
	"errors"
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

// brokenActiveLookup errors the active-election check while the rest of the
// storage keeps working.
type brokenActiveLookup struct {
	storage.ElectionStorage
}

func (s *brokenActiveLookup) GetActiveByType(context.Context, string) (*storage.Election, error) {
	return nil, errors.New("storage unavailable")
}

func setupTestAdminController(t *testing.T) (*gin.Engine, *storagetest.Store) {
	t.Helper()
	t.Setenv("ADMIN_TOKEN", "secret")
	logging.Log = logrus.New()

	store := storagetest.New()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewAdminController(store.Elections(), store.Voters()).RegisterRoutes(r)
	return r, store
}

func createTestElection(t *testing.T, router *gin.Engine, name, electionType string) models.ElectionResponse {
	t.Helper()
	res := testutils.PerformRequest(router, http.MethodPost, "/api/admin/elections",
		models.ElectionCreateRequest{Name: name, Type: electionType}, adminHeaders())
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	var created models.ElectionResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	return created
}

func TestElectionLifecycle(t *testing.T) {
	t.Run("Happy path - create, activate, close, declare", func(t *testing.T) {
		router, _ := setupTestAdminController(t)

		created := createTestElection(t, router, "Zonal Council 2026", "zonal_council")
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "DRAFT", created.Status)
		assert.False(t, created.ResultsDeclared)

		activate := testutils.PerformRequest(router, http.MethodPost,
			"/api/admin/elections/"+created.ID+"/activate", nil, adminHeaders())
		require.Equal(t, http.StatusOK, activate.Code)

		var active models.ElectionResponse
		require.NoError(t, json.Unmarshal(activate.Body.Bytes(), &active))
		assert.Equal(t, "ACTIVE", active.Status)

		closeRes := testutils.PerformRequest(router, http.MethodPost,
			"/api/admin/elections/"+created.ID+"/close", nil, adminHeaders())
		require.Equal(t, http.StatusOK, closeRes.Code)

		declare := testutils.PerformRequest(router, http.MethodPost,
			"/api/admin/elections/"+created.ID+"/declare",
			models.DeclareResultsRequest{Declared: true}, adminHeaders())
		require.Equal(t, http.StatusOK, declare.Code)

		list := testutils.PerformRequest(router, http.MethodGet, "/api/admin/elections", nil, adminHeaders())
		require.Equal(t, http.StatusOK, list.Code)
		var all []models.ElectionResponse
		require.NoError(t, json.Unmarshal(list.Body.Bytes(), &all))
		require.Len(t, all, 1)
		assert.Equal(t, "CLOSED", all[0].Status)
		assert.True(t, all[0].ResultsDeclared)
	})

	t.Run("Only one ACTIVE election per type", func(t *testing.T) {
		router, _ := setupTestAdminController(t)

		first := createTestElection(t, router, "First", "zonal_council")
		second := createTestElection(t, router, "Second", "zonal_council")

		res := testutils.PerformRequest(router, http.MethodPost,
			"/api/admin/elections/"+first.ID+"/activate", nil, adminHeaders())
		require.Equal(t, http.StatusOK, res.Code)

		res = testutils.PerformRequest(router, http.MethodPost,
			"/api/admin/elections/"+second.ID+"/activate", nil, adminHeaders())
		assert.Equal(t, http.StatusConflict, res.Code)

		// A different type can still go active
		other := createTestElection(t, router, "Committee", "central_committee")
		res = testutils.PerformRequest(router, http.MethodPost,
			"/api/admin/elections/"+other.ID+"/activate", nil, adminHeaders())
		assert.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("Activate fails closed when the active-election check errors", func(t *testing.T) {
		t.Setenv("ADMIN_TOKEN", "secret")
		logging.Log = logrus.New()

		store := storagetest.New()
		gin.SetMode(gin.TestMode)
		router := gin.New()
		NewAdminController(&brokenActiveLookup{store.Elections()}, store.Voters()).RegisterRoutes(router)

		created := createTestElection(t, router, "Unlucky", "zonal_council")
		res := testutils.PerformRequest(router, http.MethodPost,
			"/api/admin/elections/"+created.ID+"/activate", nil, adminHeaders())
		require.Equal(t, http.StatusInternalServerError, res.Code, res.Body.String())

		// The election must not have slipped into ACTIVE.
		stored, err := store.Elections().Get(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, storage.ElectionStatusDraft, stored.Status)
	})

	t.Run("CLOSED is terminal", func(t *testing.T) {
		router, _ := setupTestAdminController(t)

		created := createTestElection(t, router, "One-way", "zonal_council")
		testutils.PerformRequest(router, http.MethodPost,
			"/api/admin/elections/"+created.ID+"/activate", nil, adminHeaders())
		testutils.PerformRequest(router, http.MethodPost,
			"/api/admin/elections/"+created.ID+"/close", nil, adminHeaders())

		res := testutils.PerformRequest(router, http.MethodPost,
			"/api/admin/elections/"+created.ID+"/activate", nil, adminHeaders())
		assert.Equal(t, http.StatusConflict, res.Code)

		res = testutils.PerformRequest(router, http.MethodPost,
			"/api/admin/elections/"+created.ID+"/close", nil, adminHeaders())
		assert.Equal(t, http.StatusConflict, res.Code)
	})

	t.Run("Draft election cannot be closed", func(t *testing.T) {
		router, _ := setupTestAdminController(t)

		created := createTestElection(t, router, "Still draft", "zonal_council")
		res := testutils.PerformRequest(router, http.MethodPost,
			"/api/admin/elections/"+created.ID+"/close", nil, adminHeaders())
		assert.Equal(t, http.StatusConflict, res.Code)
	})

	t.Run("Invalid type and missing auth", func(t *testing.T) {
		router, _ := setupTestAdminController(t)

		res := testutils.PerformRequest(router, http.MethodPost, "/api/admin/elections",
			models.ElectionCreateRequest{Name: "Bad", Type: "galactic_senate"}, adminHeaders())
		assert.Equal(t, http.StatusBadRequest, res.Code)

		res = testutils.PerformRequest(router, http.MethodGet, "/api/admin/elections", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})
}

func TestVoterRoll(t *testing.T) {
	router, _ := setupTestAdminController(t)

	create := testutils.PerformRequest(router, http.MethodPost, "/api/admin/voters",
		models.VoterCreateRequest{
			ID:    "voter-1",
			Name:  "Voter One",
			Zones: map[string]string{"zonal_council": "zone-north"},
		}, adminHeaders())
	require.Equal(t, http.StatusOK, create.Code)

	dup := testutils.PerformRequest(router, http.MethodPost, "/api/admin/voters",
		models.VoterCreateRequest{ID: "voter-1", Name: "Impostor"}, adminHeaders())
	assert.Equal(t, http.StatusConflict, dup.Code)

	get := testutils.PerformRequest(router, http.MethodGet, "/api/admin/voters/voter-1", nil, adminHeaders())
	require.Equal(t, http.StatusOK, get.Code)

	var voter models.VoterResponse
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &voter))
	assert.Equal(t, "Voter One", voter.Name)
	assert.Equal(t, "zone-north", voter.Zones["zonal_council"])

	missing := testutils.PerformRequest(router, http.MethodGet, "/api/admin/voters/ghost", nil, adminHeaders())
	assert.Equal(t, http.StatusNotFound, missing.Code)
}
