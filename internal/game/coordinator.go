package game

import (
	"crypto/rand"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Coordinator drives every mutation of shared session state. It owns a
// lock per session id so that multi-step sequences (clear-then-set of
// the active turn, the nerve loop in ApproveWord, the prep transitions)
// never interleave with another request touching the same session.
// Events are emitted while the lock is held, so per-session broadcast
// order matches mutation commit order.
type Coordinator struct {
	store Store
	sink  EventSink
	rules Ruleset

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCoordinator(store Store, sink EventSink, rules Ruleset) *Coordinator {
	if sink == nil {
		sink = NopSink{}
	}
	return &Coordinator{
		store: store,
		sink:  sink,
		rules: rules,
		locks: make(map[string]*sync.Mutex),
	}
}

func (c *Coordinator) Rules() Ruleset { return c.rules }

func (c *Coordinator) sessionLock(sessionID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[sessionID] = lock
	}
	return lock
}

func (c *Coordinator) appendAudit(sessionID, eventType string, payload any) {
	if err := c.store.AppendEvent(sessionID, eventType, payload); err != nil {
		log.Printf("audit append failed session_id=%s type=%s error=%v", sessionID, eventType, err)
	}
}

const joinCodeAttempts = 5

func newJoinCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "AAAAAA"
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}

// CreateSession opens a new session run by the given GM. The GM is not
// a player: they hold no nerve and no slot in the turn order.
func (c *Coordinator) CreateSession(name, gmUserID, gmName string) (*Session, error) {
	if name == "" || gmUserID == "" {
		return nil, ErrInvalidInput
	}
	session := &Session{
		ID:          uuid.NewString(),
		Name:        name,
		GMUserID:    gmUserID,
		GMName:      gmName,
		Threat:      5,
		Difficulty:  5,
		Length:      5,
		Vowels:      defaultVowels(),
		CurrentTurn: 1,
		IsActive:    true,
		CreatedAt:   timeNowUTC(),
	}
	// A code collision is the store's problem to report and ours to
	// retry; the caller never sees one unless the space is exhausted.
	var err error
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		session.JoinCode = newJoinCode()
		err = c.store.CreateSession(session)
		if errors.Is(err, ErrDuplicateJoinCode) {
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Printf("session created session_id=%s join_code=%s", session.ID, session.JoinCode)
		return session, nil
	}
	return nil, err
}

// Session resolves an id or join code to a session.
func (c *Coordinator) Session(idOrCode string) (*Session, error) {
	session, err := c.store.SessionByID(idOrCode)
	if err == nil {
		return session, nil
	}
	return c.store.SessionByCode(idOrCode)
}

// JoinSession adds a player, appending them to the end of the turn
// order so a mid-encounter join never disrupts play. A user who already
// has a seat gets it back (reactivated if they had left). The first
// player to join becomes the active player.
func (c *Coordinator) JoinSession(idOrCode, userID, name string) (*Session, *Player, error) {
	session, err := c.Session(idOrCode)
	if err != nil {
		return nil, nil, err
	}
	lock := c.sessionLock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := c.store.PlayerByUser(session.ID, userID)
	hasSeat := err == nil
	if hasSeat && existing.IsActive {
		return session, existing, nil
	}

	players, err := c.store.PlayersBySession(session.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(players) >= c.rules.MaxPlayers {
		return nil, nil, ErrSessionFull
	}

	if hasSeat {
		// A returning player re-enters at the end of the order. Their old
		// slot may have been handed out while they were gone.
		existing.IsActive = true
		existing.IsActiveTurn = false
		existing.TurnOrder = nextTurnOrder(players)
		if err := c.store.SavePlayer(existing); err != nil {
			return nil, nil, err
		}
		if len(players) == 0 {
			if err := c.setActiveTurn(session.ID, existing.ID); err != nil {
				return nil, nil, err
			}
			existing.IsActiveTurn = true
		}
		log.Printf("player rejoined session_id=%s player_id=%s turn_order=%d", session.ID, existing.ID, existing.TurnOrder)
		c.emit(session.ID, EventPlayerJoined, map[string]any{
			"player_id":  existing.ID,
			"user_id":    existing.UserID,
			"name":       existing.Name,
			"nerve":      existing.Nerve,
			"turn_order": existing.TurnOrder,
		})
		return session, existing, nil
	}

	player := &Player{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		UserID:    userID,
		Name:      name,
		Nerve:     c.rules.StartingNerve,
		TurnOrder: nextTurnOrder(players),
		IsActive:  true,
		JoinedAt:  timeNowUTC(),
	}
	if err := c.store.CreatePlayer(player); err != nil {
		return nil, nil, err
	}
	if len(players) == 0 {
		if err := c.setActiveTurn(session.ID, player.ID); err != nil {
			return nil, nil, err
		}
		player.IsActiveTurn = true
	}
	log.Printf("player joined session_id=%s player_id=%s turn_order=%d", session.ID, player.ID, player.TurnOrder)
	c.emit(session.ID, EventPlayerJoined, map[string]any{
		"player_id":  player.ID,
		"user_id":    player.UserID,
		"name":       player.Name,
		"nerve":      player.Nerve,
		"turn_order": player.TurnOrder,
	})
	return session, player, nil
}

// LeaveSession deactivates a player's seat. The row stays so their
// words and log entries keep a valid owner.
func (c *Coordinator) LeaveSession(sessionID, userID string) error {
	lock := c.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	player, err := c.store.PlayerByUser(sessionID, userID)
	if err != nil {
		return err
	}
	wasActiveTurn := player.IsActiveTurn
	player.IsActive = false
	player.IsActiveTurn = false
	if err := c.store.SavePlayer(player); err != nil {
		return err
	}
	if wasActiveTurn {
		if _, _, err := c.advanceToNextPlayer(sessionID); err != nil && !errors.Is(err, ErrNoPlayers) {
			return err
		}
	}
	return nil
}

// UpdateNerve sets a player's nerve directly. Allowed for the GM and
// for the player themself. Unlike word approval this can reach zero.
func (c *Coordinator) UpdateNerve(sessionID, actorUserID, playerID string, nerve int) (*Player, error) {
	session, err := c.store.SessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	lock := c.sessionLock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	player, err := c.store.PlayerByID(playerID)
	if err != nil || player.SessionID != session.ID {
		return nil, ErrPlayerNotFound
	}
	if actorUserID != session.GMUserID && actorUserID != player.UserID {
		return nil, ErrNotSessionMember
	}
	if nerve < 0 || nerve > c.rules.MaxNerve {
		return nil, ErrInvalidNerve
	}
	player.Nerve = nerve
	if err := c.store.SavePlayer(player); err != nil {
		return nil, err
	}
	c.emit(session.ID, EventNerveUpdated, map[string]any{
		"player_id": player.ID,
		"nerve":     player.Nerve,
	})
	return player, nil
}

// UpdateVowels replaces the session's vowel set used for word rolls.
func (c *Coordinator) UpdateVowels(sessionID, actorUserID string, vowels []string) (*Session, error) {
	session, err := c.store.SessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	lock := c.sessionLock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	if actorUserID != session.GMUserID {
		return nil, ErrNotGM
	}
	if len(vowels) != vowelCount {
		return nil, ErrInvalidVowels
	}
	for _, vowel := range vowels {
		if vowel == "" {
			return nil, ErrInvalidVowels
		}
	}
	session.Vowels = append([]string(nil), vowels...)
	if err := c.store.SaveSession(session); err != nil {
		return nil, err
	}
	c.emit(session.ID, EventVowelsUpdated, map[string]any{
		"vowels": session.Vowels,
	})
	return session, nil
}

// CombatAction resolves an action sentence: the potencies of the
// approved words used are summed onto the raw dice total, and the
// result is appended to the immutable combat log under the current
// turn number.
func (c *Coordinator) CombatAction(sessionID, actorUserID, sentence string, wordIDs []string, diceTotal int) (*CombatLogEntry, error) {
	session, err := c.store.SessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	lock := c.sessionLock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	player, err := c.store.PlayerByUser(session.ID, actorUserID)
	if err != nil {
		return nil, ErrNotSessionMember
	}
	if !player.IsActiveTurn {
		return nil, ErrNotActivePlayer
	}

	used := make([]UsedWord, 0, len(wordIDs))
	summed := 0
	for _, wordID := range wordIDs {
		word, err := c.store.WordByID(wordID)
		if err != nil || word.SessionID != session.ID {
			return nil, ErrWordNotFound
		}
		if !word.IsApproved || word.Potency == nil {
			return nil, ErrPotencyNotSet
		}
		used = append(used, UsedWord{WordID: word.ID, Potency: *word.Potency})
		summed += *word.Potency
	}

	entry := &CombatLogEntry{
		ID:            uuid.NewString(),
		SessionID:     session.ID,
		PlayerID:      player.ID,
		Sentence:      sentence,
		WordsUsed:     used,
		DiceTotal:     diceTotal,
		SummedPotency: summed,
		FinalResult:   diceTotal + summed,
		TurnNumber:    session.CurrentTurn,
		CreatedAt:     timeNowUTC(),
	}
	if err := c.store.AppendCombatLog(entry); err != nil {
		return nil, err
	}
	c.emit(session.ID, EventCombatAction, map[string]any{
		"entry_id":       entry.ID,
		"player_id":      entry.PlayerID,
		"sentence":       entry.Sentence,
		"dice_total":     entry.DiceTotal,
		"summed_potency": entry.SummedPotency,
		"final_result":   entry.FinalResult,
		"turn_number":    entry.TurnNumber,
	})
	return entry, nil
}

// CombatLog returns the session's log, oldest first.
func (c *Coordinator) CombatLog(sessionID string) ([]*CombatLogEntry, error) {
	if _, err := c.store.SessionByID(sessionID); err != nil {
		return nil, err
	}
	return c.store.CombatLogBySession(sessionID)
}

// Players returns the session's active players in turn order.
func (c *Coordinator) Players(sessionID string) ([]*Player, error) {
	if _, err := c.store.SessionByID(sessionID); err != nil {
		return nil, err
	}
	return c.store.PlayersBySession(sessionID)
}

// Words returns the session dictionary.
func (c *Coordinator) Words(sessionID string) ([]*Word, error) {
	if _, err := c.store.SessionByID(sessionID); err != nil {
		return nil, err
	}
	return c.store.WordsBySession(sessionID)
}
