package election

import (
	"context"
	"sort"

	"github.com/whyumesh/zonal-election-system/logging"
	"github.com/whyumesh/zonal-election-system/storage"
)

// CandidateResult is one ranked row of a zone's merged tally.
type CandidateResult struct {
	ID           string
	Name         string
	Votes        int
	OnlineVotes  int
	OfflineVotes int
	Rank         int
	IsNota       bool
}

// ZoneResult carries a zone's full ranked table plus the seat-bounded
// winner slice. NOTA keeps its rank and may appear among the winners,
// flagged, so that NOTA out-polling every candidate stays visible.
type ZoneResult struct {
	ZoneID     string
	Name       string
	LocalName  string
	Seats      int
	Candidates []*CandidateResult
	Winners    []*CandidateResult
}

type TallyResult struct {
	ElectionID   string
	ElectionName string
	ElectionType string
	Declared     bool
	Zones        []*ZoneResult
}

// Tally derives the merged per-zone ranking for the current election of a
// type, entirely from persisted rows. It is idempotent: identical input
// yields identical output, including order. With reveal false it returns an
// empty result carrying nothing identifying.
func (s *Service) Tally(ctx context.Context, electionType string, reveal bool) (*TallyResult, error) {
	if !reveal {
		return &TallyResult{}, nil
	}

	e, err := s.elections.GetCurrentByType(ctx, electionType)
	if err != nil {
		return nil, errf(KindElectionUnavailable, "", "no current election of type %s", electionType)
	}

	online, err := s.votes.GetByElection(ctx, e.ID)
	if err != nil {
		return nil, errf(KindPersistence, "", "could not load online votes")
	}
	offline, err := s.offline.GetByElection(ctx, e.ID)
	if err != nil {
		return nil, errf(KindPersistence, "", "could not load offline votes")
	}

	type key struct{ zoneID, candidateID string }
	onlineCount := make(map[key]int)
	offlineCount := make(map[key]int)

	for _, v := range online {
		if s.isTestVoter(v.VoterID) {
			continue
		}
		onlineCount[key{v.ZoneID, v.CandidateID}]++
	}
	for _, v := range offline {
		if s.isTestVoter(v.VoterID) {
			continue
		}
		// All-NOTA placeholder rows reference no candidate; they mark the
		// voter processed but carry no countable selection.
		if v.CandidateID == "" {
			continue
		}
		offlineCount[key{v.ZoneID, v.CandidateID}]++
	}

	candidates, err := s.candidates.GetAll(ctx)
	if err != nil {
		return nil, errf(KindPersistence, "", "could not load candidates")
	}
	candidateByID := make(map[string]*storage.Candidate, len(candidates))
	for _, c := range candidates {
		candidateByID[c.ID] = c
	}

	zones, err := s.zones.GetByType(ctx, electionType)
	if err != nil {
		return nil, errf(KindPersistence, "", "could not load zones")
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })

	result := &TallyResult{
		ElectionID:   e.ID,
		ElectionName: e.Name,
		ElectionType: e.Type,
		Declared:     e.ResultsDeclared,
		Zones:        make([]*ZoneResult, 0, len(zones)),
	}

	for _, zone := range zones {
		merged := make(map[string]*CandidateResult)
		for k, n := range onlineCount {
			if k.zoneID != zone.ID {
				continue
			}
			row := mergedRow(merged, k.candidateID, candidateByID)
			row.OnlineVotes = n
		}
		for k, n := range offlineCount {
			if k.zoneID != zone.ID {
				continue
			}
			row := mergedRow(merged, k.candidateID, candidateByID)
			row.OfflineVotes = n
		}

		ranked := make([]*CandidateResult, 0, len(merged))
		for _, row := range merged {
			row.Votes = row.OnlineVotes + row.OfflineVotes
			ranked = append(ranked, row)
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Votes != ranked[j].Votes {
				return ranked[i].Votes > ranked[j].Votes
			}
			return ranked[i].ID < ranked[j].ID
		})
		for i, row := range ranked {
			row.Rank = i + 1
		}

		winners := ranked
		if len(winners) > zone.Seats {
			winners = winners[:zone.Seats]
		}

		result.Zones = append(result.Zones, &ZoneResult{
			ZoneID:     zone.ID,
			Name:       zone.Name,
			LocalName:  zone.LocalName,
			Seats:      zone.Seats,
			Candidates: ranked,
			Winners:    winners,
		})
	}

	return result, nil
}

func mergedRow(merged map[string]*CandidateResult, candidateID string, candidateByID map[string]*storage.Candidate) *CandidateResult {
	if row, ok := merged[candidateID]; ok {
		return row
	}
	row := &CandidateResult{ID: candidateID, Name: candidateID}
	if c, ok := candidateByID[candidateID]; ok {
		row.Name = c.Name
		row.IsNota = c.IsNota
	}
	merged[candidateID] = row
	return row
}

// ZoneTurnout is the read-side turnout figure for one zone. Balloted is
// derived from the persisted rows, never from the voter flags alone; the
// flags are cross-checked and a mismatch is surfaced as a warning.
type ZoneTurnout struct {
	ZoneID       string
	Name         string
	Eligible     int
	Balloted     int
	Online       int
	Offline      int
	Percent      float64
	FlagMismatch bool
}

func (s *Service) Turnout(ctx context.Context, electionType string) ([]*ZoneTurnout, error) {
	e, err := s.elections.GetCurrentByType(ctx, electionType)
	if err != nil {
		return nil, errf(KindElectionUnavailable, "", "no current election of type %s", electionType)
	}

	online, err := s.votes.GetByElection(ctx, e.ID)
	if err != nil {
		return nil, errf(KindPersistence, "", "could not load online votes")
	}
	offline, err := s.offline.GetByElection(ctx, e.ID)
	if err != nil {
		return nil, errf(KindPersistence, "", "could not load offline votes")
	}
	voters, err := s.voters.GetAll(ctx)
	if err != nil {
		return nil, errf(KindPersistence, "", "could not load the voter roll")
	}

	onlineByZone := make(map[string]map[string]bool)
	offlineByZone := make(map[string]map[string]bool)
	for _, v := range online {
		if s.isTestVoter(v.VoterID) {
			continue
		}
		distinct(onlineByZone, v.ZoneID)[v.VoterID] = true
	}
	for _, v := range offline {
		if s.isTestVoter(v.VoterID) {
			continue
		}
		distinct(offlineByZone, v.ZoneID)[v.VoterID] = true
	}

	eligible := make(map[string]int)
	flagged := make(map[string]map[string]bool)
	for _, voter := range voters {
		if s.isTestVoter(voter.ID) {
			continue
		}
		zoneID, ok := voter.Zones[electionType]
		if !ok || zoneID == "" {
			continue
		}
		eligible[zoneID]++
		_, votedFlag := voter.VotedAt[e.ID]
		_, offlineFlag := voter.OfflineAt[e.ID]
		if votedFlag || offlineFlag {
			distinct(flagged, zoneID)[voter.ID] = true
		}
	}

	zones, err := s.zones.GetByType(ctx, electionType)
	if err != nil {
		return nil, errf(KindPersistence, "", "could not load zones")
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })

	out := make([]*ZoneTurnout, 0, len(zones))
	for _, zone := range zones {
		balloted := make(map[string]bool)
		for id := range onlineByZone[zone.ID] {
			balloted[id] = true
		}
		for id := range offlineByZone[zone.ID] {
			balloted[id] = true
		}

		t := &ZoneTurnout{
			ZoneID:   zone.ID,
			Name:     zone.Name,
			Eligible: eligible[zone.ID],
			Balloted: len(balloted),
			Online:   len(onlineByZone[zone.ID]),
			Offline:  len(offlineByZone[zone.ID]),
		}
		if t.Eligible > 0 {
			t.Percent = float64(t.Balloted) / float64(t.Eligible) * 100
		}
		if len(flagged[zone.ID]) != t.Balloted {
			// Data-integrity warning, not fatal: the rows are the source
			// of truth, the flag is only the concurrency guard.
			t.FlagMismatch = true
			logging.Log.Warnf("TALLY: zone %s voted-flag count %d disagrees with ballot rows %d",
				zone.ID, len(flagged[zone.ID]), t.Balloted)
		}
		out = append(out, t)
	}
	return out, nil
}

func distinct(m map[string]map[string]bool, key string) map[string]bool {
	if m[key] == nil {
		m[key] = make(map[string]bool)
	}
	return m[key]
}
