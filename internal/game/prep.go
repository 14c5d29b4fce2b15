package game

import (
	"errors"

	"github.com/google/uuid"
)

func encounterChanged(session *Session, sentence, noun, verb, adjective string) bool {
	return session.EncounterSentence != sentence ||
		session.EncounterNoun != noun ||
		session.EncounterVerb != verb ||
		session.EncounterAdjective != adjective
}

func currentEncounterWordText(session *Session) string {
	switch session.CurrentPrepWordIndex {
	case 0:
		return session.EncounterNoun
	case 1:
		return session.EncounterVerb
	case 2:
		return session.EncounterAdjective
	}
	return ""
}

func encounterCategories() []string {
	return []string{CategoryNoun, CategoryVerb, CategoryAdjective}
}

// SetEncounter starts a new encounter. A sentence or word that differs
// from the current encounter enters the prep ritual: the turn counter
// rewinds, the three GM words land in the dictionary pre-approved with
// no owners and no potency, and the recalculated first player opens
// word 0. Submitting the identical encounter again is a no-op.
func (c *Coordinator) SetEncounter(sessionID, actorUserID, sentence, noun, verb, adjective string) (*Session, error) {
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
	if sentence == "" || noun == "" || verb == "" || adjective == "" {
		return nil, ErrInvalidInput
	}
	if !encounterChanged(session, sentence, noun, verb, adjective) {
		return session, nil
	}

	if err := c.resetTurnsForNewEncounter(session); err != nil {
		return nil, err
	}

	texts := []string{noun, verb, adjective}
	for i, category := range encounterCategories() {
		if err := c.insertEncounterWord(session.ID, texts[i], category); err != nil {
			return nil, err
		}
	}

	session.EncounterSentence = sentence
	session.EncounterNoun = noun
	session.EncounterVerb = verb
	session.EncounterAdjective = adjective
	session.IsPrepTurn = true
	session.CurrentPrepWordIndex = 0
	session.CurrentPrepWordTurnCount = 0
	session.CurrentPrepMeaning = ""
	if err := c.store.SaveSession(session); err != nil {
		return nil, err
	}

	players, err := c.recalculateTurnOrder(session.ID)
	if err != nil {
		return nil, err
	}
	if len(players) > 0 {
		if err := c.setActiveTurn(session.ID, players[0].ID); err != nil {
			return nil, err
		}
	}

	c.emit(session.ID, EventEncounterUpdated, map[string]any{
		"sentence":     session.EncounterSentence,
		"noun":         session.EncounterNoun,
		"verb":         session.EncounterVerb,
		"adjective":    session.EncounterAdjective,
		"is_prep_turn": true,
	})
	return session, nil
}

// insertEncounterWord places a GM encounter word into the dictionary:
// approved, ownerless, potency unset. If a player already discovered
// the same text the existing row is retagged instead of duplicated.
func (c *Coordinator) insertEncounterWord(sessionID, text, category string) error {
	if existing, err := c.store.WordByText(sessionID, text); err == nil {
		existing.Category = category
		existing.IsApproved = true
		return c.store.SaveWord(existing)
	}
	word := &Word{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Text:       text,
		Category:   category,
		IsApproved: true,
		CreatedAt:  timeNowUTC(),
	}
	err := c.store.CreateWord(word)
	if errors.Is(err, ErrDuplicateWord) {
		// Lost a race with a player submission; the existing row wins.
		return nil
	}
	return err
}

// AdvancePrepTurn completes one player's round on the current
// encounter word. A full round of players moves to the next word; the
// third word's final round leaves prep and restarts normal play at
// turn order 0.
func (c *Coordinator) AdvancePrepTurn(sessionID, actorUserID string) (*Session, error) {
	session, err := c.store.SessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	lock := c.sessionLock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	if !session.IsPrepTurn {
		return nil, ErrNotPrepTurn
	}
	if err := c.authorizeTurnActor(session, actorUserID); err != nil {
		return nil, err
	}
	players, err := c.store.PlayersBySession(session.ID)
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, ErrNoPlayers
	}

	session.CurrentPrepWordTurnCount++
	if session.CurrentPrepWordTurnCount >= len(players) {
		session.CurrentPrepWordTurnCount = 0
		session.CurrentPrepWordIndex++
		session.CurrentPrepMeaning = ""
	}

	if session.CurrentPrepWordIndex >= encounterWordCount {
		session.IsPrepTurn = false
		session.CurrentPrepWordIndex = 0
		if err := c.store.SaveSession(session); err != nil {
			return nil, err
		}
		if err := c.resetTurnsForNewEncounter(session); err != nil {
			return nil, err
		}
		if err := c.setActiveTurn(session.ID, players[0].ID); err != nil {
			return nil, err
		}
		c.emit(session.ID, EventPrepTurnAdvanced, map[string]any{
			"is_prep_turn":     false,
			"active_player_id": players[0].ID,
			"current_turn":     session.CurrentTurn,
		})
		return session, nil
	}

	if err := c.store.SaveSession(session); err != nil {
		return nil, err
	}
	active, _, err := c.advanceToNextPlayer(session.ID)
	if err != nil {
		return nil, err
	}
	c.emit(session.ID, EventPrepTurnAdvanced, map[string]any{
		"is_prep_turn":     true,
		"word_index":       session.CurrentPrepWordIndex,
		"word_turn_count":  session.CurrentPrepWordTurnCount,
		"active_player_id": active.ID,
	})
	return session, nil
}

// DefineEncounterWord records the active player's provisional meaning
// for the current encounter word. The dictionary is untouched until the
// GM sets a potency.
func (c *Coordinator) DefineEncounterWord(sessionID, actorUserID, meaning string) (*Session, error) {
	session, err := c.store.SessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	lock := c.sessionLock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	if !session.IsPrepTurn {
		return nil, ErrNotPrepTurn
	}
	if meaning == "" {
		return nil, ErrInvalidInput
	}
	player, err := c.store.PlayerByUser(session.ID, actorUserID)
	if err != nil {
		return nil, ErrNotSessionMember
	}
	if !player.IsActiveTurn {
		return nil, ErrNotActivePlayer
	}
	word, err := c.store.WordByText(session.ID, currentEncounterWordText(session))
	if err != nil {
		return nil, err
	}
	if word.Potency != nil {
		return nil, ErrWordApproved
	}

	session.CurrentPrepMeaning = meaning
	if err := c.store.SaveSession(session); err != nil {
		return nil, err
	}
	c.emit(session.ID, EventWordDefined, map[string]any{
		"word_index": session.CurrentPrepWordIndex,
		"word_text":  currentEncounterWordText(session),
		"meaning":    meaning,
		"player_id":  player.ID,
	})
	return session, nil
}

// SetEncounterWordPotency is the GM's ruling on the provisional
// meaning: both land on the dictionary word permanently. Fails with
// ErrMissingMeaning when no meaning has been supplied this round.
func (c *Coordinator) SetEncounterWordPotency(sessionID, actorUserID string, potency int) (*Word, error) {
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
	if !session.IsPrepTurn {
		return nil, ErrNotPrepTurn
	}
	if session.CurrentPrepMeaning == "" {
		return nil, ErrMissingMeaning
	}
	if !c.rules.validPotency(potency) {
		return nil, ErrInvalidPotency
	}
	word, err := c.store.WordByText(session.ID, currentEncounterWordText(session))
	if err != nil {
		return nil, err
	}
	// One ruling per word; an approved word is immutable except for
	// ownership.
	if word.Potency != nil {
		return nil, ErrWordApproved
	}
	word.Meaning = session.CurrentPrepMeaning
	word.Potency = &potency
	word.IsApproved = true
	if err := c.store.SaveWord(word); err != nil {
		return nil, err
	}
	session.CurrentPrepMeaning = ""
	if err := c.store.SaveSession(session); err != nil {
		return nil, err
	}
	c.emit(session.ID, EventWordApproved, map[string]any{
		"word_id": word.ID,
		"text":    word.Text,
		"meaning": word.Meaning,
		"potency": potency,
	})
	return word, nil
}

// AdjustEncounterStat applies the current encounter word's potency as a
// delta to one encounter stat, clamped back to bounds, and hands the
// word's sole ownership to the GM. The GM or the active player may
// trigger it; it fails with ErrPotencyNotSet until the GM has ruled.
func (c *Coordinator) AdjustEncounterStat(sessionID, actorUserID, stat string, subtract bool) (*Session, error) {
	session, err := c.store.SessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	lock := c.sessionLock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	if err := c.authorizeTurnActor(session, actorUserID); err != nil {
		return nil, err
	}
	word, err := c.store.WordByText(session.ID, currentEncounterWordText(session))
	if err != nil {
		return nil, err
	}
	if word.Potency == nil {
		return nil, ErrPotencyNotSet
	}
	delta := *word.Potency
	if subtract {
		delta = -delta
	}
	switch stat {
	case statThreat:
		session.Threat = clampStat(session.Threat + delta)
	case statDifficulty:
		session.Difficulty = clampStat(session.Difficulty + delta)
	case statLength:
		session.Length = clampStat(session.Length + delta)
	default:
		return nil, ErrInvalidStat
	}
	if err := c.store.SaveSession(session); err != nil {
		return nil, err
	}
	if err := c.store.ReplaceWordOwners(word.ID, []string{session.GMUserID}); err != nil {
		return nil, err
	}
	c.emit(session.ID, EventStatAdjusted, map[string]any{
		"stat":       stat,
		"delta":      delta,
		"word_id":    word.ID,
		"threat":     session.Threat,
		"difficulty": session.Difficulty,
		"length":     session.Length,
	})
	return session, nil
}

// UpdateEncounterStats lets the GM set the three stats directly,
// clamped to bounds.
func (c *Coordinator) UpdateEncounterStats(sessionID, actorUserID string, threat, difficulty, length int) (*Session, error) {
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
	session.Threat = clampStat(threat)
	session.Difficulty = clampStat(difficulty)
	session.Length = clampStat(length)
	if err := c.store.SaveSession(session); err != nil {
		return nil, err
	}
	c.emit(session.ID, EventStatsModified, map[string]any{
		"threat":     session.Threat,
		"difficulty": session.Difficulty,
		"length":     session.Length,
	})
	return session, nil
}
