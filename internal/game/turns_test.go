package game_test

import (
	"errors"
	"testing"

	"github.com/jackbombadeur/RPGCompanion/internal/game"
)

func TestJoinOrderAndFirstActive(t *testing.T) {
	coord, sink := newTestCoordinator(t)
	session := createTestSession(t, coord)
	players := joinTestPlayers(t, coord, session.ID, 3)

	for i, player := range players {
		if player.TurnOrder != i {
			t.Fatalf("player %d expected turn order %d, got %d", i, i, player.TurnOrder)
		}
	}
	if active := activePlayer(t, coord, session.ID); active.ID != players[0].ID {
		t.Fatalf("expected first joiner active, got %s", active.Name)
	}
	if got := sink.count(game.EventPlayerJoined); got != 3 {
		t.Fatalf("expected 3 join events, got %d", got)
	}
}

func TestJoinSessionByCodeAndRejoin(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	session := createTestSession(t, coord)

	_, player, err := coord.JoinSession(session.JoinCode, "user-1", "Ada")
	if err != nil {
		t.Fatalf("join by code: %v", err)
	}
	_, again, err := coord.JoinSession(session.ID, "user-1", "Ada")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if again.ID != player.ID {
		t.Fatalf("rejoin forked a new seat: %s vs %s", again.ID, player.ID)
	}
}

func TestRejoinAppendsToTurnOrder(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	session := createTestSession(t, coord)
	players := joinTestPlayers(t, coord, session.ID, 3)

	if err := coord.LeaveSession(session.ID, players[2].UserID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	// The vacated slot may be handed to a fresh joiner.
	_, fourth, err := coord.JoinSession(session.ID, "user-4", "Fourth")
	if err != nil {
		t.Fatalf("join fourth: %v", err)
	}
	if fourth.TurnOrder != 2 {
		t.Fatalf("expected fourth player at slot 2, got %d", fourth.TurnOrder)
	}

	_, returned, err := coord.JoinSession(session.ID, players[2].UserID, "Player 3")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if returned.ID != players[2].ID {
		t.Fatalf("rejoin forked a new seat")
	}
	if returned.TurnOrder != 3 {
		t.Fatalf("expected returning player re-appended at slot 3, got %d", returned.TurnOrder)
	}

	active, err := coord.Players(session.ID)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	seen := make(map[int]string)
	for _, player := range active {
		if holder, taken := seen[player.TurnOrder]; taken {
			t.Fatalf("turn order %d shared by %s and %s", player.TurnOrder, holder, player.Name)
		}
		seen[player.TurnOrder] = player.Name
	}
}

func TestRejoinBlockedAtCap(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	session := createTestSession(t, coord)
	players := joinTestPlayers(t, coord, session.ID, 5)

	if err := coord.LeaveSession(session.ID, players[0].UserID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if _, _, err := coord.JoinSession(session.ID, "user-6", "Sixth"); err != nil {
		t.Fatalf("join sixth: %v", err)
	}

	// The table is full again; a returning seat waits like anyone else.
	if _, _, err := coord.JoinSession(session.ID, players[0].UserID, "Player 1"); !errors.Is(err, game.ErrSessionFull) {
		t.Fatalf("expected ErrSessionFull on rejoin past the cap, got %v", err)
	}
	// A seat that never left is untouched by the cap.
	if _, _, err := coord.JoinSession(session.ID, players[1].UserID, "Player 2"); err != nil {
		t.Fatalf("active-seat rejoin: %v", err)
	}
}

func TestJoinSessionFull(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	session := createTestSession(t, coord)
	joinTestPlayers(t, coord, session.ID, 5)

	_, _, err := coord.JoinSession(session.ID, "user-6", "Late")
	if !errors.Is(err, game.ErrSessionFull) {
		t.Fatalf("expected ErrSessionFull, got %v", err)
	}
}

func TestRecalculateTurnOrderByNerve(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	session := createTestSession(t, coord)
	players := joinTestPlayers(t, coord, session.ID, 3)

	if _, err := coord.UpdateNerve(session.ID, testGM, players[0].ID, 3); err != nil {
		t.Fatalf("update nerve: %v", err)
	}
	if _, err := coord.UpdateNerve(session.ID, testGM, players[2].ID, 6); err != nil {
		t.Fatalf("update nerve: %v", err)
	}

	ordered, err := coord.RecalculateTurnOrder(session.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	// players[1] keeps starting nerve 8, then 6, then 3.
	wantIDs := []string{players[1].ID, players[2].ID, players[0].ID}
	for i, want := range wantIDs {
		if ordered[i].ID != want {
			t.Fatalf("slot %d expected %s, got %s", i, want, ordered[i].ID)
		}
		if ordered[i].TurnOrder != i {
			t.Fatalf("slot %d not dense: %d", i, ordered[i].TurnOrder)
		}
	}

	// Unchanged inputs keep the ordering stable.
	again, err := coord.RecalculateTurnOrder(session.ID)
	if err != nil {
		t.Fatalf("recalculate again: %v", err)
	}
	for i := range again {
		if again[i].ID != ordered[i].ID {
			t.Fatalf("recalculation not idempotent at slot %d", i)
		}
	}
}

func TestRecalculateTurnOrderTiesByJoin(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	session := createTestSession(t, coord)
	players := joinTestPlayers(t, coord, session.ID, 3)

	ordered, err := coord.RecalculateTurnOrder(session.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	for i, player := range players {
		if ordered[i].ID != player.ID {
			t.Fatalf("equal nerve should keep join order, slot %d got %s", i, ordered[i].Name)
		}
	}
}

func TestAdvanceTurnWrapsAndCounts(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	session := createTestSession(t, coord)
	players := joinTestPlayers(t, coord, session.ID, 3)

	for i := 0; i < 2; i++ {
		if _, rolledOver, err := coord.AdvanceTurn(session.ID, testGM); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		} else if rolledOver {
			t.Fatalf("advance %d rolled over early", i)
		}
	}
	next, rolledOver, err := coord.AdvanceTurn(session.ID, testGM)
	if err != nil {
		t.Fatalf("wrap advance: %v", err)
	}
	if !rolledOver || next.ID != players[0].ID {
		t.Fatalf("expected wrap to first player, rolled_over=%t active=%s", rolledOver, next.Name)
	}

	refreshed, err := coord.Session(session.ID)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if refreshed.CurrentTurn != 2 {
		t.Fatalf("expected turn counter 2 after wrap, got %d", refreshed.CurrentTurn)
	}
	activePlayer(t, coord, session.ID)
}

func TestAdvanceTurnAuthorization(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	session := createTestSession(t, coord)
	players := joinTestPlayers(t, coord, session.ID, 2)

	// players[1] is not the active player and not the GM.
	if _, _, err := coord.AdvanceTurn(session.ID, players[1].UserID); !errors.Is(err, game.ErrNotActivePlayer) {
		t.Fatalf("expected ErrNotActivePlayer, got %v", err)
	}
	if _, _, err := coord.AdvanceTurn(session.ID, "stranger"); !errors.Is(err, game.ErrNotSessionMember) {
		t.Fatalf("expected ErrNotSessionMember, got %v", err)
	}
	if _, _, err := coord.AdvanceTurn(session.ID, players[0].UserID); err != nil {
		t.Fatalf("active player advance: %v", err)
	}
}

func TestLeaveSessionAdvancesActiveTurn(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	session := createTestSession(t, coord)
	players := joinTestPlayers(t, coord, session.ID, 3)

	if err := coord.LeaveSession(session.ID, players[0].UserID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	remaining, err := coord.Players(session.ID)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 active players, got %d", len(remaining))
	}
	if active := activePlayer(t, coord, session.ID); active.ID != players[1].ID {
		t.Fatalf("expected next player active after leave, got %s", active.Name)
	}
}

func TestLeaveLastPlayerTolerated(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	session := createTestSession(t, coord)
	players := joinTestPlayers(t, coord, session.ID, 1)

	if err := coord.LeaveSession(session.ID, players[0].UserID); err != nil {
		t.Fatalf("leaving the last player should not fail: %v", err)
	}
}
