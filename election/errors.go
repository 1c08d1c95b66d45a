package election

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable classification of a rejected ballot or a
// failed tabulation. It is surfaced verbatim to API callers.
type Kind string

const (
	KindElectionUnavailable Kind = "ELECTION_UNAVAILABLE"
	KindAlreadyVoted        Kind = "ALREADY_VOTED"
	KindNoZoneAssigned      Kind = "NO_ZONE_ASSIGNED"
	KindZoneMismatch        Kind = "ZONE_MISMATCH"
	KindInvalidCandidate    Kind = "INVALID_CANDIDATE"
	KindDuplicateSelection  Kind = "DUPLICATE_SELECTION"
	KindTooManySelections   Kind = "TOO_MANY_SELECTIONS"
	KindVoterNotFound       Kind = "VOTER_NOT_FOUND"
	KindOfflineVoteExists   Kind = "OFFLINE_VOTE_ALREADY_EXISTS"
	KindAlreadyVotedOnline  Kind = "ALREADY_VOTED_ONLINE"
	KindPersistence         Kind = "PERSISTENCE_ERROR"
)

// Error carries the rejection kind and, where it applies, the zone the
// rejection concerns, so a caller can correct and resubmit. Internal detail
// stays out of Message.
type Error struct {
	Kind    Kind
	ZoneID  string
	Message string
}

func (e *Error) Error() string {
	if e.ZoneID != "" {
		return fmt.Sprintf("%s (zone %s): %s", e.Kind, e.ZoneID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func errf(kind Kind, zoneID, format string, args ...any) *Error {
	return &Error{Kind: kind, ZoneID: zoneID, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from an error returned by this package.
// Anything else is treated as a persistence failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
