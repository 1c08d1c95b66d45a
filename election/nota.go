package election

import (
	"context"
	"errors"

	"github.com/whyumesh/zonal-election-system/storage"
)

// GetOrCreateNota returns the zone's NOTA pseudo-candidate, creating it on
// first use. The candidate id is deterministic per zone, so two concurrent
// callers race on the same conditional put and the loser simply re-reads.
func (s *Service) GetOrCreateNota(ctx context.Context, zone *storage.Zone) (*storage.Candidate, error) {
	id := storage.NotaCandidateID(zone.ID)

	existing, err := s.candidates.Get(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, errf(KindPersistence, zone.ID, "could not look up NOTA candidate")
	}

	nota := &storage.Candidate{
		ID:           id,
		ZoneID:       zone.ID,
		ElectionType: zone.ElectionType,
		Name:         NotaDisplayName,
		Status:       storage.CandidateStatusApproved,
		IsNota:       true,
	}
	if err := s.candidates.Create(ctx, nota); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			// Lost the race; the winner's item is authoritative.
			winner, err := s.candidates.Get(ctx, id)
			if err != nil {
				return nil, errf(KindPersistence, zone.ID, "could not re-read NOTA candidate")
			}
			return winner, nil
		}
		return nil, errf(KindPersistence, zone.ID, "could not create NOTA candidate")
	}
	return nota, nil
}
