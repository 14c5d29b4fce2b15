package game

import "sort"

func nextTurnOrder(players []*Player) int {
	next := 0
	for _, player := range players {
		if player.TurnOrder >= next {
			next = player.TurnOrder + 1
		}
	}
	return next
}

// RecalculateTurnOrder reorders a session's players by nerve descending,
// earlier joiners first on ties, and assigns dense 0-based slots.
// Idempotent: unchanged nerve and join data produce the same ordering.
func (c *Coordinator) RecalculateTurnOrder(sessionID string) ([]*Player, error) {
	session, err := c.store.SessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	lock := c.sessionLock(session.ID)
	lock.Lock()
	defer lock.Unlock()
	return c.recalculateTurnOrder(session.ID)
}

func (c *Coordinator) recalculateTurnOrder(sessionID string) ([]*Player, error) {
	players, err := c.store.PlayersBySession(sessionID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].Nerve != players[j].Nerve {
			return players[i].Nerve > players[j].Nerve
		}
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
	for order, player := range players {
		if player.TurnOrder == order {
			continue
		}
		player.TurnOrder = order
		if err := c.store.SavePlayer(player); err != nil {
			return nil, err
		}
	}
	return players, nil
}

// setActiveTurn clears every active flag in the session, then sets
// exactly one. Callers hold the session lock, so the zero-active
// intermediate state is never observable by a broadcast.
func (c *Coordinator) setActiveTurn(sessionID, playerID string) error {
	players, err := c.store.PlayersBySession(sessionID)
	if err != nil {
		return err
	}
	found := false
	for _, player := range players {
		want := player.ID == playerID
		if want {
			found = true
		}
		if player.IsActiveTurn == want {
			continue
		}
		player.IsActiveTurn = want
		if err := c.store.SavePlayer(player); err != nil {
			return err
		}
	}
	if !found {
		return ErrPlayerNotFound
	}
	return nil
}

// advanceToNextPlayer moves the active flag to the next turn-order
// slot. Wrapping past the last player returns to slot 0 and increments
// the session's turn counter. Returns the newly active player and
// whether the counter rolled over.
func (c *Coordinator) advanceToNextPlayer(sessionID string) (*Player, bool, error) {
	session, err := c.store.SessionByID(sessionID)
	if err != nil {
		return nil, false, ErrSessionNotFound
	}
	players, err := c.store.PlayersBySession(sessionID)
	if err != nil {
		return nil, false, err
	}
	if len(players) == 0 {
		return nil, false, ErrNoPlayers
	}

	position := -1
	for i, player := range players {
		if player.IsActiveTurn {
			position = i
			break
		}
	}
	// No active player means the turn was reset; seed the first slot
	// without touching the counter.
	next := 0
	rolledOver := false
	if position >= 0 {
		next = position + 1
		if next >= len(players) {
			next = 0
			rolledOver = true
		}
	}
	if err := c.setActiveTurn(sessionID, players[next].ID); err != nil {
		return nil, false, err
	}
	players[next].IsActiveTurn = true
	if rolledOver {
		session.CurrentTurn++
		if err := c.store.SaveSession(session); err != nil {
			return nil, false, err
		}
	}
	return players[next], rolledOver, nil
}

// AdvanceTurn rotates play to the next player. The active player or the
// GM may advance.
func (c *Coordinator) AdvanceTurn(sessionID, actorUserID string) (*Player, bool, error) {
	session, err := c.store.SessionByID(sessionID)
	if err != nil {
		return nil, false, err
	}
	lock := c.sessionLock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	if err := c.authorizeTurnActor(session, actorUserID); err != nil {
		return nil, false, err
	}
	player, rolledOver, err := c.advanceToNextPlayer(session.ID)
	if err != nil {
		return nil, false, err
	}
	session, err = c.store.SessionByID(sessionID)
	if err != nil {
		return nil, false, err
	}
	c.emit(session.ID, EventTurnAdvanced, map[string]any{
		"active_player_id": player.ID,
		"current_turn":     session.CurrentTurn,
		"rolled_over":      rolledOver,
	})
	return player, rolledOver, nil
}

func (c *Coordinator) authorizeTurnActor(session *Session, actorUserID string) error {
	if actorUserID == session.GMUserID {
		return nil
	}
	player, err := c.store.PlayerByUser(session.ID, actorUserID)
	if err != nil {
		return ErrNotSessionMember
	}
	if !player.IsActiveTurn {
		return ErrNotActivePlayer
	}
	return nil
}

// resetTurnsForNewEncounter rewinds the counter to 1 and clears every
// active flag. The caller re-seeds turn 1 afterward.
func (c *Coordinator) resetTurnsForNewEncounter(session *Session) error {
	session.CurrentTurn = 1
	if err := c.store.SaveSession(session); err != nil {
		return err
	}
	players, err := c.store.PlayersBySession(session.ID)
	if err != nil {
		return err
	}
	for _, player := range players {
		if !player.IsActiveTurn {
			continue
		}
		player.IsActiveTurn = false
		if err := c.store.SavePlayer(player); err != nil {
			return err
		}
	}
	return nil
}
