package election

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whyumesh/zonal-election-system/storage"
)

func TestSubmitOfflineBallot(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path - capture rows carry the admin id", func(t *testing.T) {
		service, store := setupTestService(t)

		err := service.SubmitOfflineBallot(ctx, "voter-1", "clerk-7", "zonal_council",
			map[string]string{"0": "cand-1", "1": "cand-2"}, "paper ballot 42")
		require.NoError(t, err)

		rows, err := store.OfflineVotes().GetByVoterElection(ctx, "voter-1", "el-2026")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "clerk-7", rows[0].AdminID)
		assert.Equal(t, "paper ballot 42", rows[0].Notes)
		assert.False(t, rows[0].IsMerged)

		voted, channel, err := service.VoterStatus(ctx, "voter-1", "zonal_council")
		require.NoError(t, err)
		assert.True(t, voted)
		assert.Equal(t, "offline", channel)
	})

	t.Run("Voter who voted online is rejected", func(t *testing.T) {
		service, _ := setupTestService(t)

		require.NoError(t, service.SubmitBallot(ctx, "voter-1", "zonal_council",
			map[string][]string{"zone-north": {"cand-1", "cand-2"}}, Provenance{}))

		err := service.SubmitOfflineBallot(ctx, "voter-1", "clerk-7", "zonal_council",
			map[string]string{"0": "cand-3"}, "")
		require.Error(t, err)
		assert.Equal(t, KindAlreadyVotedOnline, KindOf(err))
	})

	t.Run("Existing capture is never overwritten", func(t *testing.T) {
		service, _ := setupTestService(t)

		require.NoError(t, service.SubmitOfflineBallot(ctx, "voter-1", "clerk-7", "zonal_council",
			map[string]string{"0": "cand-1"}, ""))

		err := service.SubmitOfflineBallot(ctx, "voter-1", "clerk-8", "zonal_council",
			map[string]string{"0": "cand-2"}, "")
		require.Error(t, err)
		assert.Equal(t, KindOfflineVoteExists, KindOf(err))
	})

	t.Run("Delete makes room for a corrected capture", func(t *testing.T) {
		service, store := setupTestService(t)

		require.NoError(t, service.SubmitOfflineBallot(ctx, "voter-1", "clerk-7", "zonal_council",
			map[string]string{"0": "cand-1"}, ""))
		require.NoError(t, service.DeleteOfflineBallot(ctx, "voter-1", "zonal_council"))
		require.NoError(t, service.SubmitOfflineBallot(ctx, "voter-1", "clerk-7", "zonal_council",
			map[string]string{"0": "cand-2"}, "corrected"))

		rows, err := store.OfflineVotes().GetByVoterElection(ctx, "voter-1", "el-2026")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "cand-2", rows[0].CandidateID)
	})

	t.Run("Zero picks write a single all-NOTA placeholder", func(t *testing.T) {
		service, store := setupTestService(t)

		require.NoError(t, service.SubmitOfflineBallot(ctx, "voter-1", "clerk-7", "zonal_council",
			map[string]string{}, "abstained"))

		rows, err := store.OfflineVotes().GetByVoterElection(ctx, "voter-1", "el-2026")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Empty(t, rows[0].CandidateID)

		voted, channel, err := service.VoterStatus(ctx, "voter-1", "zonal_council")
		require.NoError(t, err)
		assert.True(t, voted)
		assert.Equal(t, "offline", channel)

		// The placeholder locks the offline channel like any real selection.
		err = service.SubmitOfflineBallot(ctx, "voter-1", "clerk-8", "zonal_council",
			map[string]string{"0": "cand-1"}, "")
		require.Error(t, err)
		assert.Equal(t, KindOfflineVoteExists, KindOf(err))
	})

	t.Run("Voter id as pick creates a self-nominated candidate", func(t *testing.T) {
		service, store := setupTestService(t)

		require.NoError(t, service.SubmitOfflineBallot(ctx, "voter-1", "clerk-7", "zonal_council",
			map[string]string{"0": "voter-2"}, ""))

		candidate, err := store.Candidates().Get(ctx, storage.SelfCandidateID("voter-2"))
		require.NoError(t, err)
		assert.Equal(t, "Voter Two", candidate.Name)
		assert.Equal(t, "zone-north", candidate.ZoneID)
		assert.Equal(t, storage.CandidateStatusApproved, candidate.Status)
		assert.Equal(t, "voter-2", candidate.VoterID)

		rows, err := store.OfflineVotes().GetByVoterElection(ctx, "voter-1", "el-2026")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, candidate.ID, rows[0].CandidateID)
	})

	t.Run("Unapproved candidate is allowed offline", func(t *testing.T) {
		service, store := setupTestService(t)

		require.NoError(t, service.SubmitOfflineBallot(ctx, "voter-1", "clerk-7", "zonal_council",
			map[string]string{"0": "cand-pending"}, ""))

		rows, err := store.OfflineVotes().GetByVoterElection(ctx, "voter-1", "el-2026")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "cand-pending", rows[0].CandidateID)
	})

	t.Run("Pick from another zone is rejected", func(t *testing.T) {
		service, _ := setupTestService(t)

		err := service.SubmitOfflineBallot(ctx, "voter-1", "clerk-7", "zonal_council",
			map[string]string{"0": "cand-south"}, "")
		require.Error(t, err)
		assert.Equal(t, KindInvalidCandidate, KindOf(err))

		err = service.SubmitOfflineBallot(ctx, "voter-1", "clerk-7", "zonal_council",
			map[string]string{"zone-south:0": "cand-1"}, "")
		require.Error(t, err)
		assert.Equal(t, KindZoneMismatch, KindOf(err))
	})

	t.Run("Seat overflow and duplicate picks", func(t *testing.T) {
		service, _ := setupTestService(t)

		err := service.SubmitOfflineBallot(ctx, "voter-1", "clerk-7", "zonal_council",
			map[string]string{"0": "cand-1", "1": "cand-2", "2": "cand-3"}, "")
		require.Error(t, err)
		assert.Equal(t, KindTooManySelections, KindOf(err))

		err = service.SubmitOfflineBallot(ctx, "voter-1", "clerk-7", "zonal_council",
			map[string]string{"0": "cand-1", "1": "cand-1"}, "")
		require.Error(t, err)
		assert.Equal(t, KindDuplicateSelection, KindOf(err))
	})

	t.Run("Online ballot after capture is rejected", func(t *testing.T) {
		service, _ := setupTestService(t)

		require.NoError(t, service.SubmitOfflineBallot(ctx, "voter-1", "clerk-7", "zonal_council",
			map[string]string{"0": "cand-1"}, ""))

		err := service.SubmitBallot(ctx, "voter-1", "zonal_council",
			map[string][]string{"zone-north": {"cand-2"}}, Provenance{})
		require.Error(t, err)
		assert.Equal(t, KindAlreadyVoted, KindOf(err))
	})

	t.Run("Unknown voter", func(t *testing.T) {
		service, _ := setupTestService(t)

		err := service.SubmitOfflineBallot(ctx, "ghost", "clerk-7", "zonal_council",
			map[string]string{"0": "cand-1"}, "")
		require.Error(t, err)
		assert.Equal(t, KindVoterNotFound, KindOf(err))
	})
}

func TestOfflineCaptureLifecycle(t *testing.T) {
	ctx := context.Background()
	service, _ := setupTestService(t)

	require.NoError(t, service.SubmitOfflineBallot(ctx, "voter-1", "clerk-7", "zonal_council",
		map[string]string{"0": "cand-1", "1": "cand-2"}, ""))
	require.NoError(t, service.SubmitOfflineBallot(ctx, "voter-2", "clerk-7", "zonal_council",
		map[string]string{}, ""))

	rows, err := service.OfflineCaptures(ctx, "zonal_council")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	require.NoError(t, service.MarkOfflineMerged(ctx, "voter-1", "zonal_council"))
	rows, err = service.OfflineCaptures(ctx, "zonal_council")
	require.NoError(t, err)
	for _, row := range rows {
		if row.VoterID == "voter-1" {
			assert.True(t, row.IsMerged)
			assert.NotNil(t, row.MergedAt)
		} else {
			assert.False(t, row.IsMerged)
		}
	}

	err = service.MarkOfflineMerged(ctx, "voter-south", "zonal_council")
	require.Error(t, err)
	assert.Equal(t, KindVoterNotFound, KindOf(err))
}

func TestResolveCandidateRef(t *testing.T) {
	ctx := context.Background()
	service, _ := setupTestService(t)

	ref, err := service.ResolveCandidateRef(ctx, "cand-1")
	require.NoError(t, err)
	assert.Equal(t, "cand-1", ref.CandidateID)
	assert.Empty(t, ref.VoterID)

	ref, err = service.ResolveCandidateRef(ctx, "voter-2")
	require.NoError(t, err)
	assert.Equal(t, "voter-2", ref.VoterID)
	assert.Empty(t, ref.CandidateID)

	_, err = service.ResolveCandidateRef(ctx, "nobody")
	require.Error(t, err)
	assert.Equal(t, KindInvalidCandidate, KindOf(err))
}
