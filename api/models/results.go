package models

import "github.com/whyumesh/zonal-election-system/election"

type CandidateResultResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Votes        int    `json:"votes"`
	OnlineVotes  int    `json:"onlineVotes,omitempty"`
	OfflineVotes int    `json:"offlineVotes,omitempty"`
	Rank         int    `json:"rank"`
	IsNota       bool   `json:"isNota"`
}

type ZoneResultResponse struct {
	ZoneID     string                    `json:"zoneId"`
	Name       string                    `json:"name"`
	LocalName  string                    `json:"localName,omitempty"`
	Seats      int                       `json:"seats"`
	Candidates []CandidateResultResponse `json:"candidates"`
	Winners    []CandidateResultResponse `json:"winners"`
}

type TallyResponse struct {
	ElectionID   string               `json:"electionId,omitempty"`
	ElectionName string               `json:"electionName,omitempty"`
	ElectionType string               `json:"electionType,omitempty"`
	Declared     bool                 `json:"declared"`
	Zones        []ZoneResultResponse `json:"zones"`
}

type ZoneTurnoutResponse struct {
	ZoneID       string  `json:"zoneId"`
	Name         string  `json:"name"`
	Eligible     int     `json:"eligible"`
	Balloted     int     `json:"balloted"`
	Online       int     `json:"online"`
	Offline      int     `json:"offline"`
	Percent      float64 `json:"percent"`
	FlagMismatch bool    `json:"flagMismatch,omitempty"`
}

// TransformTallyResult flattens the engine result. With breakdown false the
// per-channel counts are omitted (public view); realWinnersOnly filters the
// NOTA pseudo-candidate out of the winner slice while keeping its rank in
// the full table.
func TransformTallyResult(t *election.TallyResult, breakdown, realWinnersOnly bool) TallyResponse {
	resp := TallyResponse{
		ElectionID:   t.ElectionID,
		ElectionName: t.ElectionName,
		ElectionType: t.ElectionType,
		Declared:     t.Declared,
		Zones:        make([]ZoneResultResponse, 0, len(t.Zones)),
	}
	for _, zone := range t.Zones {
		zr := ZoneResultResponse{
			ZoneID:     zone.ZoneID,
			Name:       zone.Name,
			LocalName:  zone.LocalName,
			Seats:      zone.Seats,
			Candidates: make([]CandidateResultResponse, 0, len(zone.Candidates)),
			Winners:    make([]CandidateResultResponse, 0, len(zone.Winners)),
		}
		for _, c := range zone.Candidates {
			zr.Candidates = append(zr.Candidates, transformCandidateResult(c, breakdown))
		}
		for _, c := range zone.Winners {
			if realWinnersOnly && c.IsNota {
				continue
			}
			zr.Winners = append(zr.Winners, transformCandidateResult(c, breakdown))
		}
		resp.Zones = append(resp.Zones, zr)
	}
	return resp
}

func transformCandidateResult(c *election.CandidateResult, breakdown bool) CandidateResultResponse {
	r := CandidateResultResponse{
		ID:     c.ID,
		Name:   c.Name,
		Votes:  c.Votes,
		Rank:   c.Rank,
		IsNota: c.IsNota,
	}
	if breakdown {
		r.OnlineVotes = c.OnlineVotes
		r.OfflineVotes = c.OfflineVotes
	}
	return r
}

func TransformTurnout(turnout []*election.ZoneTurnout) []ZoneTurnoutResponse {
	out := make([]ZoneTurnoutResponse, 0, len(turnout))
	for _, t := range turnout {
		out = append(out, ZoneTurnoutResponse{
			ZoneID:       t.ZoneID,
			Name:         t.Name,
			Eligible:     t.Eligible,
			Balloted:     t.Balloted,
			Online:       t.Online,
			Offline:      t.Offline,
			Percent:      t.Percent,
			FlagMismatch: t.FlagMismatch,
		})
	}
	return out
}
