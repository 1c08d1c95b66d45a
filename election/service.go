// Package election implements the voting core: online ballot validation and
// commit, offline (admin-entered) ballot capture with cross-channel conflict
// guarding, the per-zone NOTA allocator, and the merged result tabulation.
package election

import (
	"context"
	"regexp"

	"github.com/whyumesh/zonal-election-system/storage"
)

// NotaMarker is the selection prefix a ballot uses to abstain for one seat.
const NotaMarker = "NOTA_"

// NotaDisplayName is the display name of every lazily created NOTA
// pseudo-candidate.
const NotaDisplayName = "None of the Above"

type Service struct {
	elections  storage.ElectionStorage
	zones      storage.ZoneStorage
	candidates storage.CandidateStorage
	voters     storage.VoterStorage
	votes      storage.VoteStorage
	offline    storage.OfflineVoteStorage

	// testVoter excludes matching voter ids from every tally; nil disables
	// the exclusion.
	testVoter *regexp.Regexp
}

func NewService(
	elections storage.ElectionStorage,
	zones storage.ZoneStorage,
	candidates storage.CandidateStorage,
	voters storage.VoterStorage,
	votes storage.VoteStorage,
	offline storage.OfflineVoteStorage,
	testVoter *regexp.Regexp,
) *Service {
	return &Service{
		elections:  elections,
		zones:      zones,
		candidates: candidates,
		voters:     voters,
		votes:      votes,
		offline:    offline,
		testVoter:  testVoter,
	}
}

// Provenance is the request metadata recorded with each online vote row.
type Provenance struct {
	Origin    string
	ClientSig string
}

func (s *Service) isTestVoter(voterID string) bool {
	return s.testVoter != nil && s.testVoter.MatchString(voterID)
}

// activeElection resolves the single ACTIVE election for a type, the only
// state that accepts new ballots.
func (s *Service) activeElection(ctx context.Context, electionType string) (*storage.Election, error) {
	e, err := s.elections.GetActiveByType(ctx, electionType)
	if err != nil {
		return nil, errf(KindElectionUnavailable, "", "no active election of type %s", electionType)
	}
	return e, nil
}
