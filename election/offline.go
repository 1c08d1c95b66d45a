package election

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/whyumesh/zonal-election-system/logging"
	"github.com/whyumesh/zonal-election-system/storage"
)

// CandidateRef is the tagged union an offline pick resolves to before any
// validation runs: either a candidate id, or a voter-roll entry standing in
// for a self-nominated candidate.
type CandidateRef struct {
	CandidateID string
	VoterID     string
}

// ResolveCandidateRef classifies a raw offline pick at the boundary. A
// value is tried as a candidate id first and as a voter id second.
func (s *Service) ResolveCandidateRef(ctx context.Context, raw string) (CandidateRef, error) {
	if _, err := s.candidates.Get(ctx, raw); err == nil {
		return CandidateRef{CandidateID: raw}, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return CandidateRef{}, errf(KindPersistence, "", "could not resolve pick")
	}

	if _, err := s.voters.Get(ctx, raw); err == nil {
		return CandidateRef{VoterID: raw}, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return CandidateRef{}, errf(KindPersistence, "", "could not resolve pick")
	}

	return CandidateRef{}, errf(KindInvalidCandidate, "", "%s is neither a candidate nor a voter", raw)
}

// resolveToCandidate turns a ref into a concrete candidate. A ViaVoter ref
// finds the voter's existing self-nomination or lazily creates an APPROVED
// candidate from the voter's own zone and name.
func (s *Service) resolveToCandidate(ctx context.Context, ref CandidateRef, electionType string) (*storage.Candidate, error) {
	if ref.CandidateID != "" {
		candidate, err := s.candidates.Get(ctx, ref.CandidateID)
		if err != nil {
			return nil, errf(KindInvalidCandidate, "", "unknown candidate %s", ref.CandidateID)
		}
		return candidate, nil
	}

	nominee, err := s.voters.Get(ctx, ref.VoterID)
	if err != nil {
		return nil, errf(KindInvalidCandidate, "", "unknown nominee %s", ref.VoterID)
	}
	nomineeZone, ok := nominee.Zones[electionType]
	if !ok || nomineeZone == "" {
		return nil, errf(KindInvalidCandidate, "", "nominee %s has no zone for %s", ref.VoterID, electionType)
	}

	id := storage.SelfCandidateID(ref.VoterID)
	if existing, err := s.candidates.Get(ctx, id); err == nil {
		return existing, nil
	}

	candidate := &storage.Candidate{
		ID:           id,
		ZoneID:       nomineeZone,
		ElectionType: electionType,
		Name:         nominee.Name,
		Status:       storage.CandidateStatusApproved,
		VoterID:      ref.VoterID,
	}
	if err := s.candidates.Create(ctx, candidate); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			winner, err := s.candidates.Get(ctx, id)
			if err != nil {
				return nil, errf(KindPersistence, "", "could not re-read nominee candidate")
			}
			return winner, nil
		}
		return nil, errf(KindPersistence, "", "could not create nominee candidate")
	}
	logging.Log.Infof("OFFLINE: created candidate %s from voter %s", id, ref.VoterID)
	return candidate, nil
}

// SubmitOfflineBallot records an administrator-entered ballot for a voter
// identified by id only. It mirrors the online validation with two
// deliberate differences: an unapproved candidate is allowed (logged, not
// fatal), and zero picks are recorded as a single explicit all-NOTA
// placeholder so the voter is still marked processed. The entry can never
// coexist with an online ballot or a previous offline entry.
func (s *Service) SubmitOfflineBallot(ctx context.Context, voterID, adminID, electionType string, picks map[string]string, notes string) error {
	voter, err := s.voters.Get(ctx, voterID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errf(KindVoterNotFound, "", "voter %s is not on the roll", voterID)
		}
		return errf(KindPersistence, "", "could not look up voter")
	}

	e, err := s.activeElection(ctx, electionType)
	if err != nil {
		return err
	}

	online, err := s.votes.GetByVoterElection(ctx, voterID, e.ID)
	if err != nil {
		return errf(KindPersistence, "", "could not check for an online ballot")
	}
	if len(online) > 0 {
		return errf(KindAlreadyVotedOnline, "", "voter %s already voted online", voterID)
	}

	existing, err := s.offline.GetByVoterElection(ctx, voterID, e.ID)
	if err != nil {
		return errf(KindPersistence, "", "could not check for an offline entry")
	}
	if len(existing) > 0 {
		// Never overwritten, merged or not; the caller must delete first.
		return errf(KindOfflineVoteExists, "", "an offline entry already exists for voter %s", voterID)
	}

	zoneID, ok := voter.Zones[electionType]
	if !ok || zoneID == "" {
		return errf(KindNoZoneAssigned, "", "voter has no zone assignment for %s", electionType)
	}
	zone, err := s.zones.Get(ctx, zoneID)
	if err != nil {
		return errf(KindPersistence, zoneID, "could not load the voter's zone")
	}

	// Resolve picks; NOTA markers are dropped (an offline row is only
	// written for a real selection).
	resolved := make([]*storage.Candidate, 0, len(picks))
	total := 0
	for key, raw := range picks {
		if pickZone := zoneFromPickKey(key); pickZone != "" && pickZone != zoneID {
			return errf(KindZoneMismatch, pickZone, "pick references a zone other than the voter's own")
		}
		total++
		if raw == "" || strings.HasPrefix(raw, NotaMarker) {
			continue
		}
		ref, err := s.ResolveCandidateRef(ctx, raw)
		if err != nil {
			return err
		}
		candidate, err := s.resolveToCandidate(ctx, ref, electionType)
		if err != nil {
			return err
		}
		if candidate.ZoneID != zoneID {
			return errf(KindInvalidCandidate, zoneID, "candidate %s does not stand in this zone", candidate.ID)
		}
		if candidate.Status != storage.CandidateStatusApproved {
			// Administrative override: allowed offline, unlike online.
			logging.Log.Warnf("OFFLINE: accepting unapproved candidate %s for voter %s", candidate.ID, voterID)
		}
		resolved = append(resolved, candidate)
	}

	if total > zone.Seats {
		return errf(KindTooManySelections, zoneID, "%d picks for %d seats", total, zone.Seats)
	}
	seen := make(map[string]bool)
	for _, candidate := range resolved {
		if seen[candidate.ID] {
			return errf(KindDuplicateSelection, zoneID, "candidate %s picked more than once", candidate.ID)
		}
		seen[candidate.ID] = true
	}

	now := time.Now().UTC()
	rows := make([]*storage.OfflineVote, 0, len(resolved))
	for seat, candidate := range resolved {
		rows = append(rows, &storage.OfflineVote{
			BallotKey:   storage.BallotKey(voterID, e.ID),
			SortKey:     storage.SeatSortKey(seat),
			VoterID:     voterID,
			ElectionID:  e.ID,
			ZoneID:      zoneID,
			CandidateID: candidate.ID,
			Seat:        seat,
			AdminID:     adminID,
			Notes:       notes,
			EnteredAt:   now,
		})
	}
	if len(rows) == 0 {
		// All seats abstained: one placeholder row marks the voter as
		// processed without referencing any candidate.
		rows = append(rows, &storage.OfflineVote{
			BallotKey:  storage.BallotKey(voterID, e.ID),
			SortKey:    storage.SeatSortKey(0),
			VoterID:    voterID,
			ElectionID: e.ID,
			ZoneID:     zoneID,
			Seat:       0,
			AdminID:    adminID,
			Notes:      notes,
			EnteredAt:  now,
		})
	}

	if err := s.offline.CommitBallot(ctx, rows); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			// Lost a race; re-read the online side to report the right kind.
			if online, rerr := s.votes.GetByVoterElection(ctx, voterID, e.ID); rerr == nil && len(online) > 0 {
				return errf(KindAlreadyVotedOnline, "", "voter %s already voted online", voterID)
			}
			return errf(KindOfflineVoteExists, "", "an offline entry already exists for voter %s", voterID)
		}
		return errf(KindPersistence, zoneID, "could not persist the offline entry")
	}

	logging.Log.Infof("OFFLINE: admin %s recorded %d rows for voter %s in zone %s", adminID, len(rows), voterID, zoneID)
	return nil
}

// zoneFromPickKey extracts the zone part of a composite pick key of the form
// <zoneID>:<n>. A key without a separator carries no zone claim.
func zoneFromPickKey(key string) string {
	if i := strings.Index(key, ":"); i > 0 {
		return key[:i]
	}
	return ""
}

// OfflineCaptures lists the capture entries of the current election of a
// type, merge state included.
func (s *Service) OfflineCaptures(ctx context.Context, electionType string) ([]*storage.OfflineVote, error) {
	e, err := s.elections.GetCurrentByType(ctx, electionType)
	if err != nil {
		return nil, errf(KindElectionUnavailable, "", "no current election of type %s", electionType)
	}
	rows, err := s.offline.GetByElection(ctx, e.ID)
	if err != nil {
		return nil, errf(KindPersistence, "", "could not load offline entries")
	}
	return rows, nil
}

// DeleteOfflineBallot removes a voter's offline set so a corrected entry can
// be captured. This is the only sanctioned way to replace one.
func (s *Service) DeleteOfflineBallot(ctx context.Context, voterID, electionType string) error {
	e, err := s.elections.GetCurrentByType(ctx, electionType)
	if err != nil {
		return errf(KindElectionUnavailable, "", "no current election of type %s", electionType)
	}
	if err := s.offline.Delete(ctx, voterID, e.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errf(KindVoterNotFound, "", "no offline entry for voter %s", voterID)
		}
		return errf(KindPersistence, "", "could not delete the offline entry")
	}
	return nil
}

// MarkOfflineMerged flips the merge-commit flag on a voter's offline set.
// The tabulation itself never depends on it; it exists for the audit trail.
func (s *Service) MarkOfflineMerged(ctx context.Context, voterID, electionType string) error {
	e, err := s.elections.GetCurrentByType(ctx, electionType)
	if err != nil {
		return errf(KindElectionUnavailable, "", "no current election of type %s", electionType)
	}
	if err := s.offline.MarkMerged(ctx, voterID, e.ID, time.Now().UTC()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errf(KindVoterNotFound, "", "no offline entry for voter %s", voterID)
		}
		return errf(KindPersistence, "", "could not mark the offline entry merged")
	}
	return nil
}
