package game

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// CreateWordResult reports whether the submission consolidated into an
// existing dictionary row.
type CreateWordResult struct {
	Word       *Word
	IsExisting bool
}

func normalizeWordText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func validCategory(category string) bool {
	switch category {
	case "", CategoryNoun, CategoryVerb, CategoryAdjective:
		return true
	}
	return false
}

// CreateWord submits a discovered word. The same text rolled by two
// players consolidates: the submitter joins the owner set of the
// existing row instead of forking a duplicate. A brand-new word needs a
// meaning and starts pending GM approval with the submitter as sole
// owner.
func (c *Coordinator) CreateWord(sessionID, submitterUserID, text, meaning, category string) (*CreateWordResult, error) {
	session, err := c.store.SessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	lock := c.sessionLock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	text = normalizeWordText(text)
	if text == "" || !validCategory(category) {
		return nil, ErrInvalidInput
	}
	if submitterUserID != session.GMUserID {
		if _, err := c.store.PlayerByUser(session.ID, submitterUserID); err != nil {
			return nil, ErrNotSessionMember
		}
	}

	if existing, err := c.store.WordByText(session.ID, text); err == nil {
		return c.addWordOwner(session.ID, existing, submitterUserID)
	}

	word := &Word{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Text:      text,
		Meaning:   meaning,
		Category:  category,
		Owners:    []string{submitterUserID},
		CreatedAt: timeNowUTC(),
	}
	if meaning == "" {
		return nil, ErrInvalidInput
	}
	err = c.store.CreateWord(word)
	if errors.Is(err, ErrDuplicateWord) {
		// Lost the race with a concurrent submission of the same text;
		// fold into the winner's row.
		existing, lookupErr := c.store.WordByText(session.ID, text)
		if lookupErr != nil {
			return nil, err
		}
		return c.addWordOwner(session.ID, existing, submitterUserID)
	}
	if err != nil {
		return nil, err
	}
	if err := c.store.AddWordOwner(word.ID, submitterUserID); err != nil {
		return nil, err
	}
	c.emit(session.ID, EventWordCreated, map[string]any{
		"word_id":  word.ID,
		"text":     word.Text,
		"category": word.Category,
		"owners":   word.Owners,
	})
	return &CreateWordResult{Word: word}, nil
}

func (c *Coordinator) addWordOwner(sessionID string, word *Word, ownerUserID string) (*CreateWordResult, error) {
	if err := c.store.AddWordOwner(word.ID, ownerUserID); err != nil {
		return nil, err
	}
	refreshed, err := c.store.WordByID(word.ID)
	if err != nil {
		return nil, err
	}
	c.emit(sessionID, EventWordOwnershipUpdated, map[string]any{
		"word_id": refreshed.ID,
		"text":    refreshed.Text,
		"owners":  refreshed.Owners,
	})
	return &CreateWordResult{Word: refreshed, IsExisting: true}, nil
}

// ApproveWord is the GM ruling on a pending dictionary word. The
// potency lands on the word, and every owner's nerve shifts by it:
// positive potency costs nerve but never below 1, negative potency
// restores nerve up to the maximum, zero leaves it alone. Each affected
// player's change is broadcast individually.
func (c *Coordinator) ApproveWord(sessionID, actorUserID, wordID string, potency int) (*Word, error) {
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
	word, err := c.store.WordByID(wordID)
	if err != nil || word.SessionID != session.ID {
		return nil, ErrWordNotFound
	}
	if word.Potency != nil {
		return nil, ErrWordApproved
	}
	if !c.rules.validPotency(potency) {
		return nil, ErrInvalidPotency
	}

	word.Potency = &potency
	word.IsApproved = true
	if err := c.store.SaveWord(word); err != nil {
		return nil, err
	}

	if potency != 0 {
		for _, ownerUserID := range word.Owners {
			player, err := c.store.PlayerByUser(session.ID, ownerUserID)
			if err != nil {
				// The GM can own encounter words without holding nerve.
				continue
			}
			player.Nerve = clampNerve(player.Nerve-potency, c.rules.MaxNerve)
			if err := c.store.SavePlayer(player); err != nil {
				return nil, err
			}
			c.emit(session.ID, EventNerveUpdated, map[string]any{
				"player_id": player.ID,
				"nerve":     player.Nerve,
			})
		}
	}

	c.emit(session.ID, EventWordApproved, map[string]any{
		"word_id": word.ID,
		"text":    word.Text,
		"potency": potency,
	})
	return word, nil
}

// clampNerve bounds an approval-driven nerve change: the floor is 1, so
// a ruling can never zero a player out.
func clampNerve(nerve, maxNerve int) int {
	if nerve < 1 {
		return 1
	}
	if nerve > maxNerve {
		return maxNerve
	}
	return nerve
}
