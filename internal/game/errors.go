package game

import "errors"

// Failure taxonomy. The request layer maps these onto transport status
// codes; the core only detects and returns them.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrWordNotFound    = errors.New("word not found")

	ErrNotGM            = errors.New("only the gm may do this")
	ErrNotActivePlayer  = errors.New("it is not your turn")
	ErrNotSessionMember = errors.New("not a member of this session")

	ErrInvalidPotency = errors.New("potency out of range")
	ErrInvalidNerve   = errors.New("nerve out of range")
	ErrInvalidVowels  = errors.New("exactly six vowels are required")
	ErrInvalidStat    = errors.New("unknown encounter stat")
	ErrInvalidInput   = errors.New("invalid input")

	ErrSessionFull       = errors.New("session is full")
	ErrDuplicateWord     = errors.New("word already exists")
	ErrWordApproved      = errors.New("word already approved")
	ErrDuplicateJoinCode = errors.New("join code already in use")

	ErrMissingMeaning = errors.New("meaning must be set before potency")
	ErrPotencyNotSet  = errors.New("potency must be set before adjusting stats")
	ErrNoPlayers      = errors.New("session has no players")
	ErrNotPrepTurn    = errors.New("session is not in a prep turn")
)

// NotFound reports whether err is one of the absence failures.
func NotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrPlayerNotFound) ||
		errors.Is(err, ErrWordNotFound)
}

// Forbidden reports whether err is a role failure.
func Forbidden(err error) bool {
	return errors.Is(err, ErrNotGM) ||
		errors.Is(err, ErrNotActivePlayer) ||
		errors.Is(err, ErrNotSessionMember)
}

// InvalidInput reports whether err is a malformed or out-of-range input.
func InvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidPotency) ||
		errors.Is(err, ErrInvalidNerve) ||
		errors.Is(err, ErrInvalidVowels) ||
		errors.Is(err, ErrInvalidStat) ||
		errors.Is(err, ErrInvalidInput)
}

// Conflict reports whether err is a state conflict.
func Conflict(err error) bool {
	return errors.Is(err, ErrSessionFull) ||
		errors.Is(err, ErrDuplicateWord) ||
		errors.Is(err, ErrWordApproved) ||
		errors.Is(err, ErrDuplicateJoinCode)
}

// PreconditionFailed reports whether err is an ordering violation in the
// prep ritual.
func PreconditionFailed(err error) bool {
	return errors.Is(err, ErrMissingMeaning) ||
		errors.Is(err, ErrPotencyNotSet) ||
		errors.Is(err, ErrNoPlayers) ||
		errors.Is(err, ErrNotPrepTurn)
}
