package game

// Store persists sessions, players, words, word ownership and the
// combat log. Two backends satisfy it: the in-memory map store and the
// postgres store. Both enforce the same invariants, join-code
// uniqueness and word-text-per-session uniqueness, whether by explicit
// check or by database constraint.
//
// Store methods are single-entity reads and writes. Multi-step
// sequences are serialized by the Coordinator's per-session lock, not
// by the store.
type Store interface {
	CreateSession(session *Session) error
	SessionByID(id string) (*Session, error)
	SessionByCode(code string) (*Session, error)
	SaveSession(session *Session) error

	CreatePlayer(player *Player) error
	PlayerByID(id string) (*Player, error)
	PlayerByUser(sessionID, userID string) (*Player, error)
	// PlayersBySession returns active players ordered by turn order.
	PlayersBySession(sessionID string) ([]*Player, error)
	SavePlayer(player *Player) error

	CreateWord(word *Word) error
	WordByID(id string) (*Word, error)
	WordByText(sessionID, text string) (*Word, error)
	WordsBySession(sessionID string) ([]*Word, error)
	SaveWord(word *Word) error
	// AddWordOwner is idempotent: adding an existing owner is a no-op.
	AddWordOwner(wordID, ownerID string) error
	// ReplaceWordOwners makes ownerIDs the word's entire owner set.
	ReplaceWordOwners(wordID string, ownerIDs []string) error

	AppendCombatLog(entry *CombatLogEntry) error
	CombatLogBySession(sessionID string) ([]*CombatLogEntry, error)

	// AppendEvent records an audit row; best-effort, append-only.
	AppendEvent(sessionID, eventType string, payload any) error
}
