package election

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whyumesh/zonal-election-system/storage"
)

func TestGetOrCreateNota(t *testing.T) {
	ctx := context.Background()
	service, store := setupTestService(t)

	zone, err := store.Zones().Get(ctx, "zone-north")
	require.NoError(t, err)

	first, err := service.GetOrCreateNota(ctx, zone)
	require.NoError(t, err)
	assert.Equal(t, storage.NotaCandidateID("zone-north"), first.ID)
	assert.Equal(t, NotaDisplayName, first.Name)
	assert.True(t, first.IsNota)
	assert.Equal(t, storage.CandidateStatusApproved, first.Status)

	// Repeated calls converge on the same item.
	second, err := service.GetOrCreateNota(ctx, zone)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := store.Candidates().GetByZone(ctx, "zone-north")
	require.NoError(t, err)
	notas := 0
	for _, c := range all {
		if c.IsNota {
			notas++
		}
	}
	assert.Equal(t, 1, notas)
}
