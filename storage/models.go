package storage

import (
	"fmt"
	"time"
)

const (
	ElectionStatusDraft  = "DRAFT"
	ElectionStatusActive = "ACTIVE"
	ElectionStatusClosed = "CLOSED"
)

const (
	CandidateStatusPending  = "PENDING"
	CandidateStatusApproved = "APPROVED"
	CandidateStatusRejected = "REJECTED"
)

type Election struct {
	ID              string    `dynamodbav:"PK"`
	Name            string    `dynamodbav:"Name"`
	Type            string    `dynamodbav:"Type"`
	Status          string    `dynamodbav:"Status"`
	ResultsDeclared bool      `dynamodbav:"ResultsDeclared"`
	CreatedAt       time.Time `dynamodbav:"CreatedAt"`
}

type Zone struct {
	ID           string `dynamodbav:"PK"`
	ElectionType string `dynamodbav:"ElectionType"`
	Name         string `dynamodbav:"Name"`
	LocalName    string `dynamodbav:"LocalName"`
	Seats        int    `dynamodbav:"Seats"`
	Active       bool   `dynamodbav:"Active"`
}

type Candidate struct {
	ID           string    `dynamodbav:"PK"`
	ZoneID       string    `dynamodbav:"ZoneID"`
	ElectionType string    `dynamodbav:"ElectionType"`
	Name         string    `dynamodbav:"Name"`
	Status       string    `dynamodbav:"Status"`
	IsNota       bool      `dynamodbav:"IsNota"`
	VoterID      string    `dynamodbav:"VoterID"` // set for self-nominated candidates
	CreatedAt    time.Time `dynamodbav:"CreatedAt"`
}

// Voter is one voter-roll entry. VotedAt and OfflineAt are keyed by election
// id and act as the guard against a voter balloting twice, or through both
// the online and the offline channel.
type Voter struct {
	ID        string               `dynamodbav:"PK"`
	Name      string               `dynamodbav:"Name"`
	Zones     map[string]string    `dynamodbav:"Zones"` // election type -> zone id
	VotedAt   map[string]time.Time `dynamodbav:"VotedAt"`
	OfflineAt map[string]time.Time `dynamodbav:"OfflineAt"`
	CreatedAt time.Time            `dynamodbav:"CreatedAt"`
}

type Vote struct {
	BallotKey   string    `dynamodbav:"PK" json:"-"` // voterID#electionID
	SortKey     string    `dynamodbav:"SK" json:"-"` // seat#NN
	VoterID     string    `dynamodbav:"VoterID" json:"voterId"`
	ElectionID  string    `dynamodbav:"ElectionID" json:"electionId"`
	ZoneID      string    `dynamodbav:"ZoneID" json:"zoneId"`
	CandidateID string    `dynamodbav:"CandidateID" json:"candidateId"`
	Seat        int       `dynamodbav:"Seat" json:"seat"`
	Timestamp   time.Time `dynamodbav:"Timestamp" json:"timestamp"`
	Origin      string    `dynamodbav:"Origin" json:"-"`
	ClientSig   string    `dynamodbav:"ClientSig" json:"-"`
}

// OfflineVote rows carry an empty CandidateID only for the single all-NOTA
// placeholder written when an admin records a full abstention.
type OfflineVote struct {
	BallotKey   string     `dynamodbav:"PK" json:"-"`
	SortKey     string     `dynamodbav:"SK" json:"-"`
	VoterID     string     `dynamodbav:"VoterID" json:"voterId"`
	ElectionID  string     `dynamodbav:"ElectionID" json:"electionId"`
	ZoneID      string     `dynamodbav:"ZoneID" json:"zoneId"`
	CandidateID string     `dynamodbav:"CandidateID" json:"candidateId"`
	Seat        int        `dynamodbav:"Seat" json:"seat"`
	AdminID     string     `dynamodbav:"AdminID" json:"adminId"`
	Notes       string     `dynamodbav:"Notes" json:"notes,omitempty"`
	EnteredAt   time.Time  `dynamodbav:"EnteredAt" json:"enteredAt"`
	IsMerged    bool       `dynamodbav:"IsMerged" json:"isMerged"`
	MergedAt    *time.Time `dynamodbav:"MergedAt" json:"mergedAt,omitempty"`
}

// BallotKey builds the partition key shared by all of one voter's rows for
// one election.
func BallotKey(voterID, electionID string) string {
	return voterID + "#" + electionID
}

// SeatSortKey gives each seat its own row under the ballot key.
func SeatSortKey(seat int) string {
	return fmt.Sprintf("seat#%02d", seat)
}

// NotaCandidateID is deterministic so that concurrent create-if-absent calls
// for the same zone converge on one item.
func NotaCandidateID(zoneID string) string {
	return "NOTA#" + zoneID
}

// SelfCandidateID keys lazily created self-nominated candidates by their
// voter-roll entry, for the same convergence reason.
func SelfCandidateID(voterID string) string {
	return "SELF#" + voterID
}
