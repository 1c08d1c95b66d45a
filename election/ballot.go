package election

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/whyumesh/zonal-election-system/logging"
	"github.com/whyumesh/zonal-election-system/storage"
)

// SubmitBallot validates one voter's full online ballot for the active
// election of the given type and commits it atomically. The ballot maps the
// voter's zone id to its selections, each either a candidate id or a
// NOTA_<n> marker; unfilled seats are auto-filled with NOTA. The submission
// is one-shot per voter per election.
func (s *Service) SubmitBallot(ctx context.Context, voterID, electionType string, ballot map[string][]string, prov Provenance) error {
	e, err := s.activeElection(ctx, electionType)
	if err != nil {
		return err
	}

	voter, err := s.voters.Get(ctx, voterID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errf(KindVoterNotFound, "", "voter %s is not on the roll", voterID)
		}
		return errf(KindPersistence, "", "could not look up voter")
	}

	existing, err := s.votes.GetByVoterElection(ctx, voterID, e.ID)
	if err != nil {
		return errf(KindPersistence, "", "could not check for an existing ballot")
	}
	if len(existing) > 0 {
		return errf(KindAlreadyVoted, "", "a ballot already exists for this election")
	}

	zoneID, ok := voter.Zones[electionType]
	if !ok || zoneID == "" {
		return errf(KindNoZoneAssigned, "", "voter has no zone assignment for %s", electionType)
	}
	for ballotZone := range ballot {
		if ballotZone != zoneID {
			return errf(KindZoneMismatch, ballotZone, "ballot references a zone other than the voter's own")
		}
	}

	zone, err := s.zones.Get(ctx, zoneID)
	if err != nil {
		return errf(KindPersistence, zoneID, "could not load the voter's zone")
	}

	selections := ballot[zoneID]

	// Resolve real candidates and count NOTA markers before touching the
	// seat budget, so an invalid id is reported as such rather than as an
	// overflow.
	resolved := make([]*storage.Candidate, 0, zone.Seats)
	for _, sel := range selections {
		if strings.HasPrefix(sel, NotaMarker) {
			resolved = append(resolved, nil) // filled below
			continue
		}
		candidate, err := s.candidates.Get(ctx, sel)
		if err != nil {
			return errf(KindInvalidCandidate, zoneID, "unknown candidate %s", sel)
		}
		if candidate.ZoneID != zoneID {
			return errf(KindInvalidCandidate, zoneID, "candidate %s does not stand in this zone", sel)
		}
		if !candidate.IsNota && candidate.Status != storage.CandidateStatusApproved {
			return errf(KindInvalidCandidate, zoneID, "candidate %s is not approved", sel)
		}
		resolved = append(resolved, candidate)
	}

	if len(resolved) > zone.Seats {
		return errf(KindTooManySelections, zoneID, "%d selections for %d seats", len(resolved), zone.Seats)
	}

	seen := make(map[string]bool)
	for _, candidate := range resolved {
		if candidate == nil || candidate.IsNota {
			continue
		}
		if seen[candidate.ID] {
			return errf(KindDuplicateSelection, zoneID, "candidate %s selected more than once", candidate.ID)
		}
		seen[candidate.ID] = true
	}

	// Auto-fill: a seat left blank counts as NOTA.
	needsNota := len(resolved) < zone.Seats
	for _, candidate := range resolved {
		if candidate == nil || candidate.IsNota {
			needsNota = true
		}
	}
	var nota *storage.Candidate
	if needsNota {
		nota, err = s.GetOrCreateNota(ctx, zone)
		if err != nil {
			return err
		}
	}
	for len(resolved) < zone.Seats {
		resolved = append(resolved, nil)
	}

	now := time.Now().UTC()
	rows := make([]*storage.Vote, 0, len(resolved))
	for seat, candidate := range resolved {
		candidateID := ""
		if candidate != nil {
			candidateID = candidate.ID
		} else {
			candidateID = nota.ID
		}
		rows = append(rows, &storage.Vote{
			BallotKey:   storage.BallotKey(voterID, e.ID),
			SortKey:     storage.SeatSortKey(seat),
			VoterID:     voterID,
			ElectionID:  e.ID,
			ZoneID:      zoneID,
			CandidateID: candidateID,
			Seat:        seat,
			Timestamp:   now,
			Origin:      prov.Origin,
			ClientSig:   prov.ClientSig,
		})
	}

	if err := s.votes.CommitBallot(ctx, rows); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return errf(KindAlreadyVoted, "", "a ballot already exists for this election")
		}
		return errf(KindPersistence, zoneID, "could not persist the ballot")
	}

	logging.Log.Infof("VOTE: recorded %d selections for voter %s in zone %s", len(rows), voterID, zoneID)
	return nil
}

// VoterStatus reports whether the voter has balloted for the active election
// of a type, and through which channel.
func (s *Service) VoterStatus(ctx context.Context, voterID, electionType string) (bool, string, error) {
	e, err := s.activeElection(ctx, electionType)
	if err != nil {
		return false, "", err
	}

	online, err := s.votes.GetByVoterElection(ctx, voterID, e.ID)
	if err != nil {
		return false, "", errf(KindPersistence, "", "could not load ballot rows")
	}
	if len(online) > 0 {
		return true, "online", nil
	}

	offline, err := s.offline.GetByVoterElection(ctx, voterID, e.ID)
	if err != nil {
		return false, "", errf(KindPersistence, "", "could not load offline rows")
	}
	if len(offline) > 0 {
		return true, "offline", nil
	}
	return false, "", nil
}

// VoterBallot returns the voter's own persisted online rows (receipt view).
func (s *Service) VoterBallot(ctx context.Context, voterID, electionType string) ([]*storage.Vote, error) {
	e, err := s.activeElection(ctx, electionType)
	if err != nil {
		return nil, err
	}
	rows, err := s.votes.GetByVoterElection(ctx, voterID, e.ID)
	if err != nil {
		return nil, errf(KindPersistence, "", "could not load ballot rows")
	}
	return rows, nil
}
