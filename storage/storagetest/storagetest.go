// Package storagetest provides in-memory implementations of the storage
// interfaces with the same conflict semantics as the DynamoDB versions, for
// use in engine and controller tests.
package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/whyumesh/zonal-election-system/storage"
)

type Store struct {
	mu         sync.Mutex
	elections  map[string]*storage.Election
	zones      map[string]*storage.Zone
	candidates map[string]*storage.Candidate
	voters     map[string]*storage.Voter
	votes      map[string][]*storage.Vote
	offline    map[string][]*storage.OfflineVote
}

func New() *Store {
	return &Store{
		elections:  map[string]*storage.Election{},
		zones:      map[string]*storage.Zone{},
		candidates: map[string]*storage.Candidate{},
		voters:     map[string]*storage.Voter{},
		votes:      map[string][]*storage.Vote{},
		offline:    map[string][]*storage.OfflineVote{},
	}
}

func (s *Store) Elections() storage.ElectionStorage      { return (*memElections)(s) }
func (s *Store) Zones() storage.ZoneStorage              { return (*memZones)(s) }
func (s *Store) Candidates() storage.CandidateStorage    { return (*memCandidates)(s) }
func (s *Store) Voters() storage.VoterStorage            { return (*memVoters)(s) }
func (s *Store) Votes() storage.VoteStorage              { return (*memVotes)(s) }
func (s *Store) OfflineVotes() storage.OfflineVoteStorage { return (*memOffline)(s) }

type memElections Store

func (s *memElections) Get(_ context.Context, id string) (*storage.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elections[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return e, nil
}

func (s *memElections) GetAll(_ context.Context) ([]*storage.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*storage.Election, 0, len(s.elections))
	for _, e := range s.elections {
		all = append(all, e)
	}
	return all, nil
}

func (s *memElections) GetActiveByType(_ context.Context, electionType string) (*storage.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.elections {
		if e.Type == electionType && e.Status == storage.ElectionStatusActive {
			return e, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memElections) GetCurrentByType(_ context.Context, electionType string) (*storage.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latestClosed *storage.Election
	for _, e := range s.elections {
		if e.Type != electionType {
			continue
		}
		if e.Status == storage.ElectionStatusActive {
			return e, nil
		}
		if e.Status == storage.ElectionStatusClosed {
			if latestClosed == nil || e.CreatedAt.After(latestClosed.CreatedAt) {
				latestClosed = e
			}
		}
	}
	if latestClosed == nil {
		return nil, storage.ErrNotFound
	}
	return latestClosed, nil
}

func (s *memElections) Create(_ context.Context, election *storage.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.elections[election.ID]; ok {
		return storage.ErrConflict
	}
	if election.CreatedAt.IsZero() {
		election.CreatedAt = time.Now().UTC()
	}
	s.elections[election.ID] = election
	return nil
}

func (s *memElections) UpdateStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elections[id]
	if !ok {
		return storage.ErrNotFound
	}
	e.Status = status
	return nil
}

func (s *memElections) SetResultsDeclared(_ context.Context, id string, declared bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elections[id]
	if !ok {
		return storage.ErrNotFound
	}
	e.ResultsDeclared = declared
	return nil
}

type memZones Store

func (s *memZones) Get(_ context.Context, id string) (*storage.Zone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	z, ok := s.zones[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return z, nil
}

func (s *memZones) GetAll(_ context.Context) ([]*storage.Zone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*storage.Zone, 0, len(s.zones))
	for _, z := range s.zones {
		all = append(all, z)
	}
	return all, nil
}

func (s *memZones) GetByType(_ context.Context, electionType string) ([]*storage.Zone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	zones := make([]*storage.Zone, 0)
	for _, z := range s.zones {
		if z.ElectionType == electionType {
			zones = append(zones, z)
		}
	}
	return zones, nil
}

func (s *memZones) Create(_ context.Context, zone *storage.Zone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.zones[zone.ID]; ok {
		return storage.ErrConflict
	}
	s.zones[zone.ID] = zone
	return nil
}

func (s *memZones) Update(_ context.Context, zone *storage.Zone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.zones[zone.ID]; !ok {
		return storage.ErrNotFound
	}
	s.zones[zone.ID] = zone
	return nil
}

func (s *memZones) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.zones, id)
	return nil
}

type memCandidates Store

func (s *memCandidates) Get(_ context.Context, id string) (*storage.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.candidates[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return c, nil
}

func (s *memCandidates) GetAll(_ context.Context) ([]*storage.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*storage.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		all = append(all, c)
	}
	return all, nil
}

func (s *memCandidates) GetByZone(_ context.Context, zoneID string) ([]*storage.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidates := make([]*storage.Candidate, 0)
	for _, c := range s.candidates {
		if c.ZoneID == zoneID {
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}

func (s *memCandidates) Create(_ context.Context, candidate *storage.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.candidates[candidate.ID]; ok {
		return storage.ErrConflict
	}
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = time.Now().UTC()
	}
	s.candidates[candidate.ID] = candidate
	return nil
}

func (s *memCandidates) UpdateStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.candidates[id]
	if !ok {
		return storage.ErrNotFound
	}
	c.Status = status
	return nil
}

func (s *memCandidates) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.candidates, id)
	return nil
}

type memVoters Store

func (s *memVoters) Get(_ context.Context, id string) (*storage.Voter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.voters[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (s *memVoters) GetAll(_ context.Context) ([]*storage.Voter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*storage.Voter, 0, len(s.voters))
	for _, v := range s.voters {
		all = append(all, v)
	}
	return all, nil
}

func (s *memVoters) Create(_ context.Context, voter *storage.Voter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.voters[voter.ID]; ok {
		return storage.ErrConflict
	}
	if voter.VotedAt == nil {
		voter.VotedAt = map[string]time.Time{}
	}
	if voter.OfflineAt == nil {
		voter.OfflineAt = map[string]time.Time{}
	}
	s.voters[voter.ID] = voter
	return nil
}

func (s *memVoters) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.voters, id)
	return nil
}

type memVotes Store

func (s *memVotes) CommitBallot(_ context.Context, votes []*storage.Vote) error {
	if len(votes) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	voter, ok := s.voters[votes[0].VoterID]
	if !ok {
		return storage.ErrConflict
	}
	electionID := votes[0].ElectionID
	if _, voted := voter.VotedAt[electionID]; voted {
		return storage.ErrConflict
	}
	if _, captured := voter.OfflineAt[electionID]; captured {
		return storage.ErrConflict
	}
	key := storage.BallotKey(votes[0].VoterID, electionID)
	if len(s.votes[key]) > 0 {
		return storage.ErrConflict
	}

	s.votes[key] = append(s.votes[key], votes...)
	voter.VotedAt[electionID] = votes[0].Timestamp
	return nil
}

func (s *memVotes) GetByVoterElection(_ context.Context, voterID, electionID string) ([]*storage.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.votes[storage.BallotKey(voterID, electionID)]
	return append([]*storage.Vote(nil), rows...), nil
}

func (s *memVotes) GetByElection(_ context.Context, electionID string) ([]*storage.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*storage.Vote
	for _, rows := range s.votes {
		for _, v := range rows {
			if v.ElectionID == electionID {
				all = append(all, v)
			}
		}
	}
	return all, nil
}

type memOffline Store

func (s *memOffline) CommitBallot(_ context.Context, votes []*storage.OfflineVote) error {
	if len(votes) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	voter, ok := s.voters[votes[0].VoterID]
	if !ok {
		return storage.ErrConflict
	}
	electionID := votes[0].ElectionID
	if _, voted := voter.VotedAt[electionID]; voted {
		return storage.ErrConflict
	}
	if _, captured := voter.OfflineAt[electionID]; captured {
		return storage.ErrConflict
	}
	key := storage.BallotKey(votes[0].VoterID, electionID)
	if len(s.offline[key]) > 0 {
		return storage.ErrConflict
	}

	s.offline[key] = append(s.offline[key], votes...)
	voter.OfflineAt[electionID] = votes[0].EnteredAt
	return nil
}

func (s *memOffline) GetByVoterElection(_ context.Context, voterID, electionID string) ([]*storage.OfflineVote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.offline[storage.BallotKey(voterID, electionID)]
	return append([]*storage.OfflineVote(nil), rows...), nil
}

func (s *memOffline) GetByElection(_ context.Context, electionID string) ([]*storage.OfflineVote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*storage.OfflineVote
	for _, rows := range s.offline {
		for _, v := range rows {
			if v.ElectionID == electionID {
				all = append(all, v)
			}
		}
	}
	return all, nil
}

func (s *memOffline) Delete(_ context.Context, voterID, electionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storage.BallotKey(voterID, electionID)
	if len(s.offline[key]) == 0 {
		return storage.ErrNotFound
	}
	delete(s.offline, key)
	if voter, ok := s.voters[voterID]; ok {
		delete(voter.OfflineAt, electionID)
	}
	return nil
}

func (s *memOffline) MarkMerged(_ context.Context, voterID, electionID string, mergedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storage.BallotKey(voterID, electionID)
	rows := s.offline[key]
	if len(rows) == 0 {
		return storage.ErrNotFound
	}
	for _, row := range rows {
		at := mergedAt
		row.IsMerged = true
		row.MergedAt = &at
	}
	return nil
}
