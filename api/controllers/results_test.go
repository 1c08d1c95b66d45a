package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testutils "github.com/whyumesh/zonal-election-system/api/controllers/testing"
	"github.com/whyumesh/zonal-election-system/api/cache"
	"github.com/whyumesh/zonal-election-system/api/models"
	"github.com/whyumesh/zonal-election-system/election"
	"github.com/whyumesh/zonal-election-system/storage"
	"github.com/whyumesh/zonal-election-system/storage/storagetest"
)

// brokenElections fails every read, standing in for a storage outage.
type brokenElections struct {
	storage.ElectionStorage
}

func (s *brokenElections) GetCurrentByType(context.Context, string) (*storage.Election, error) {
	return nil, errors.New("storage unavailable")
}

type fakeCache struct {
	entries map[string][]byte
	hits    int
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	body, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return body, ok
}

func (c *fakeCache) Set(_ context.Context, key string, body []byte) {
	c.entries[key] = body
}

func setupTestResultsController(t *testing.T, resultsCache cache.ResultsCache) (*gin.Engine, *storagetest.Store) {
	t.Helper()
	t.Setenv("ADMIN_TOKEN", "secret")

	store, service := seedStore(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewResultsController(service, store.Elections(), resultsCache).RegisterRoutes(r)
	NewVotingController(service).RegisterRoutes(r)
	NewOfflineVotingController(service).RegisterRoutes(r)
	return r, store
}

func castSouthBallots(t *testing.T, router *gin.Engine) {
	t.Helper()
	// One online vote for the candidate, one offline all-NOTA entry
	res := testutils.PerformRequest(router, http.MethodPost, "/api/vote/zonal_council",
		models.SubmitBallotRequest{Votes: map[string][]string{"zone-south": {"cand-south"}}},
		voterHeaders("voter-south"))
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
}

func TestPublicResultsEndpoint(t *testing.T) {
	t.Run("Empty until results are declared", func(t *testing.T) {
		router, store := setupTestResultsController(t, nil)
		castSouthBallots(t, router)

		res := testutils.PerformRequest(router, http.MethodGet, "/api/public/results/zonal_council", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)

		var tally models.TallyResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &tally))
		assert.False(t, tally.Declared)
		assert.Empty(t, tally.Zones)

		require.NoError(t, store.Elections().SetResultsDeclared(context.Background(), "el-2026", true))

		res = testutils.PerformRequest(router, http.MethodGet, "/api/public/results/zonal_council", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &tally))
		assert.True(t, tally.Declared)
		require.Len(t, tally.Zones, 2)

		south := tally.Zones[1]
		assert.Equal(t, "zone-south", south.ZoneID)
		require.Len(t, south.Candidates, 1)
		assert.Equal(t, "cand-south", south.Candidates[0].ID)
		assert.Equal(t, 1, south.Candidates[0].Votes)
		// Public view hides the per-channel breakdown
		assert.Zero(t, south.Candidates[0].OnlineVotes)
	})

	t.Run("winners=real drops NOTA from the winner slice", func(t *testing.T) {
		router, store := setupTestResultsController(t, nil)
		require.NoError(t, store.Elections().SetResultsDeclared(context.Background(), "el-2026", true))

		// The only south ballot is an explicit NOTA
		res := testutils.PerformRequest(router, http.MethodPost, "/api/vote/zonal_council",
			models.SubmitBallotRequest{Votes: map[string][]string{"zone-south": {"NOTA_1"}}},
			voterHeaders("voter-south"))
		require.Equal(t, http.StatusOK, res.Code)

		full := testutils.PerformRequest(router, http.MethodGet, "/api/public/results/zonal_council", nil, nil)
		var tally models.TallyResponse
		require.NoError(t, json.Unmarshal(full.Body.Bytes(), &tally))
		require.Len(t, tally.Zones[1].Winners, 1)
		assert.True(t, tally.Zones[1].Winners[0].IsNota)

		real := testutils.PerformRequest(router, http.MethodGet, "/api/public/results/zonal_council?winners=real", nil, nil)
		require.NoError(t, json.Unmarshal(real.Body.Bytes(), &tally))
		assert.Empty(t, tally.Zones[1].Winners)
		// The full ranked table keeps NOTA either way
		require.Len(t, tally.Zones[1].Candidates, 1)
		assert.True(t, tally.Zones[1].Candidates[0].IsNota)
	})

	t.Run("Second read is served from the cache", func(t *testing.T) {
		fc := &fakeCache{entries: map[string][]byte{}}
		router, store := setupTestResultsController(t, fc)
		require.NoError(t, store.Elections().SetResultsDeclared(context.Background(), "el-2026", true))
		castSouthBallots(t, router)

		first := testutils.PerformRequest(router, http.MethodGet, "/api/public/results/zonal_council", nil, nil)
		require.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, 0, fc.hits)

		second := testutils.PerformRequest(router, http.MethodGet, "/api/public/results/zonal_council", nil, nil)
		require.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, 1, fc.hits)
		assert.JSONEq(t, first.Body.String(), second.Body.String())
	})

	t.Run("Storage failure is a 500, never a cached empty feed", func(t *testing.T) {
		fc := &fakeCache{entries: map[string][]byte{}}
		store, service := seedStore(t)
		gin.SetMode(gin.TestMode)
		router := gin.New()
		NewResultsController(service, &brokenElections{store.Elections()}, fc).RegisterRoutes(router)

		res := testutils.PerformRequest(router, http.MethodGet, "/api/public/results/zonal_council", nil, nil)
		require.Equal(t, http.StatusInternalServerError, res.Code)

		var errResp models.ErrorResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &errResp))
		assert.Equal(t, string(election.KindPersistence), errResp.Kind)
		assert.Empty(t, fc.entries)
	})

	t.Run("Type without an election stays empty publicly, 404 for admins", func(t *testing.T) {
		router, _ := setupTestResultsController(t, nil)

		res := testutils.PerformRequest(router, http.MethodGet, "/api/public/results/central_committee", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)

		var tally models.TallyResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &tally))
		assert.False(t, tally.Declared)
		assert.Empty(t, tally.Zones)

		adminRes := testutils.PerformRequest(router, http.MethodGet, "/api/admin/results/central_committee", nil, adminHeaders())
		assert.Equal(t, http.StatusNotFound, adminRes.Code)
	})
}

func TestAdminResultsEndpoint(t *testing.T) {
	router, _ := setupTestResultsController(t, nil)
	castSouthBallots(t, router)

	offline := testutils.PerformRequest(router, http.MethodPost, "/api/admin/offline-votes/zonal_council",
		models.OfflineBallotRequest{VoterID: "voter-1", Votes: map[string]string{"0": "cand-1"}},
		adminHeaders())
	require.Equal(t, http.StatusOK, offline.Code)

	// Admin view works before declaration and carries the channel breakdown
	res := testutils.PerformRequest(router, http.MethodGet, "/api/admin/results/zonal_council", nil, adminHeaders())
	require.Equal(t, http.StatusOK, res.Code)

	var tally models.TallyResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &tally))
	require.Len(t, tally.Zones, 2)

	north := tally.Zones[0]
	require.Equal(t, "zone-north", north.ZoneID)
	found := false
	for _, c := range north.Candidates {
		if c.ID == "cand-1" {
			found = true
			assert.Equal(t, 1, c.OfflineVotes)
			assert.Equal(t, 0, c.OnlineVotes)
		}
	}
	assert.True(t, found)

	noAuth := testutils.PerformRequest(router, http.MethodGet, "/api/admin/results/zonal_council", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, noAuth.Code)
}

func TestTurnoutEndpoint(t *testing.T) {
	router, _ := setupTestResultsController(t, nil)
	castSouthBallots(t, router)

	res := testutils.PerformRequest(router, http.MethodGet, "/api/admin/results/zonal_council/turnout", nil, adminHeaders())
	require.Equal(t, http.StatusOK, res.Code)

	var turnout []models.ZoneTurnoutResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &turnout))
	require.Len(t, turnout, 2)

	south := turnout[1]
	assert.Equal(t, "zone-south", south.ZoneID)
	assert.Equal(t, 1, south.Eligible)
	assert.Equal(t, 1, south.Balloted)
	assert.Equal(t, 1, south.Online)
	assert.InDelta(t, 100.0, south.Percent, 0.01)
}
