package domain

import "errors"

// ErrorKind classifies failures for the transport layer.
type ErrorKind int

const (
	// UnknownError is reported for errors outside the taxonomy.
	UnknownError ErrorKind = iota
	// ValidationError rejects a malformed request; nothing was mutated.
	ValidationError
	// StateError rejects a request that does not fit the current state.
	StateError
	// ConfigurationError means the strategies or rules are misconfigured.
	ConfigurationError
	// IntegrityError means the catalogue data is inconsistent.
	IntegrityError
)

func (k ErrorKind) String() string {
	switch k {
	case ValidationError:
		return "validation"
	case StateError:
		return "state"
	case ConfigurationError:
		return "configuration"
	case IntegrityError:
		return "integrity"
	}
	return "unknown"
}

// Error is a classified domain error. Values are compared with errors.Is.
type Error struct {
	kind ErrorKind
	msg  string
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string {
	return e.msg
}

// Kind returns the classification of e.
func (e *Error) Kind() ErrorKind {
	return e.kind
}

// KindOf returns the kind of the first domain error in err's chain.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.kind
	}
	return UnknownError
}

// Validation errors.
var (
	ErrInvalidTeam     = newError(ValidationError, "invalid team")
	ErrInvalidRoom     = newError(ValidationError, "invalid room id")
	ErrInvalidCoord    = newError(ValidationError, "coordinate must be inside [0,1]")
	ErrNoGuess         = newError(ValidationError, "no guess placed")
	ErrRoundOutOfRange = newError(ValidationError, "round out of range")
	ErrRoomNotFound    = newError(ValidationError, "room not found")
	ErrUnknownChannel  = newError(ValidationError, "unknown matchmaking channel")
)

// State errors.
var (
	ErrRoomBusy          = newError(StateError, "room already in game, please choose another room")
	ErrAnswerNotRevealed = newError(StateError, "answer not revealed yet")
	ErrMatchEnded        = newError(StateError, "match has ended")
)

// Configuration errors. These are fatal setup faults, never retried.
var (
	ErrSequencerExhausted = newError(ConfigurationError, "question sampler exhausted before max rounds")
	ErrExhaustedCategory  = newError(ConfigurationError, "no more questions available for category")
	ErrDuplicateQuestion  = newError(ConfigurationError, "question already used")
	ErrQuestionOutOfRange = newError(ConfigurationError, "question index out of range")
)

// Integrity errors.
var (
	ErrLocationNotFound = newError(IntegrityError, "location not found in catalogue")
)
