package game_test

import (
	"errors"
	"testing"

	"github.com/jackbombadeur/RPGCompanion/internal/game"
)

func TestCreateWordNewAndConsolidated(t *testing.T) {
	coord, sink := newTestCoordinator(t)
	session := createTestSession(t, coord)
	players := joinTestPlayers(t, coord, session.ID, 2)

	result, err := coord.CreateWord(session.ID, players[0].UserID, "Oau ", "a low warning call", game.CategoryNoun)
	if err != nil {
		t.Fatalf("create word: %v", err)
	}
	if result.IsExisting {
		t.Fatal("first submission reported as existing")
	}
	if result.Word.Text != "oau" {
		t.Fatalf("expected normalized text oau, got %q", result.Word.Text)
	}
	if result.Word.IsApproved || result.Word.Potency != nil {
		t.Fatal("new word should be pending approval")
	}

	// The same text from a second player folds into the existing row.
	again, err := coord.CreateWord(session.ID, players[1].UserID, "oau", "", "")
	if err != nil {
		t.Fatalf("resubmit word: %v", err)
	}
	if !again.IsExisting || again.Word.ID != result.Word.ID {
		t.Fatal("expected consolidation into the existing word")
	}
	if len(again.Word.Owners) != 2 {
		t.Fatalf("expected 2 owners, got %v", again.Word.Owners)
	}

	// Resubmission by an existing owner stays idempotent.
	third, err := coord.CreateWord(session.ID, players[0].UserID, "oau", "", "")
	if err != nil {
		t.Fatalf("owner resubmit: %v", err)
	}
	if len(third.Word.Owners) != 2 {
		t.Fatalf("owner resubmit grew the owner set: %v", third.Word.Owners)
	}

	if sink.count(game.EventWordCreated) != 1 {
		t.Fatalf("expected 1 word_created, got %d", sink.count(game.EventWordCreated))
	}
	if sink.count(game.EventWordOwnershipUpdated) != 2 {
		t.Fatalf("expected 2 ownership events, got %d", sink.count(game.EventWordOwnershipUpdated))
	}
}

func TestCreateWordValidation(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	session := createTestSession(t, coord)
	players := joinTestPlayers(t, coord, session.ID, 1)

	if _, err := coord.CreateWord(session.ID, "stranger", "oau", "a call", ""); !errors.Is(err, game.ErrNotSessionMember) {
		t.Fatalf("expected ErrNotSessionMember, got %v", err)
	}
	if _, err := coord.CreateWord(session.ID, players[0].UserID, "oau", "", ""); !errors.Is(err, game.ErrInvalidInput) {
		t.Fatalf("new word without meaning should fail, got %v", err)
	}
	if _, err := coord.CreateWord(session.ID, players[0].UserID, "   ", "a call", ""); !errors.Is(err, game.ErrInvalidInput) {
		t.Fatalf("blank text should fail, got %v", err)
	}
	if _, err := coord.CreateWord(session.ID, players[0].UserID, "oau", "a call", "adverb"); !errors.Is(err, game.ErrInvalidInput) {
		t.Fatalf("unknown category should fail, got %v", err)
	}
}

func TestApproveWordShiftsOwnerNerve(t *testing.T) {
	coord, sink := newTestCoordinator(t)
	session := createTestSession(t, coord)
	players := joinTestPlayers(t, coord, session.ID, 2)

	result, err := coord.CreateWord(session.ID, players[0].UserID, "iya", "a binding oath", "")
	if err != nil {
		t.Fatalf("create word: %v", err)
	}
	if _, err := coord.CreateWord(session.ID, players[1].UserID, "iya", "", ""); err != nil {
		t.Fatalf("second owner: %v", err)
	}

	word, err := coord.ApproveWord(session.ID, testGM, result.Word.ID, 2)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !word.IsApproved || word.Potency == nil || *word.Potency != 2 {
		t.Fatalf("ruling did not land: %+v", word)
	}

	updated, err := coord.Players(session.ID)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	for _, player := range updated {
		if player.Nerve != 6 {
			t.Fatalf("owner %s expected nerve 6, got %d", player.Name, player.Nerve)
		}
	}
	if sink.count(game.EventNerveUpdated) != 2 {
		t.Fatalf("expected a nerve event per owner, got %d", sink.count(game.EventNerveUpdated))
	}
}

func TestApproveWordNerveFloorAndCeiling(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	session := createTestSession(t, coord)
	players := joinTestPlayers(t, coord, session.ID, 2)

	// Positive potency never zeroes a player out.
	if _, err := coord.UpdateNerve(session.ID, testGM, players[0].ID, 1); err != nil {
		t.Fatalf("set nerve: %v", err)
	}
	low, err := coord.CreateWord(session.ID, players[0].UserID, "oo", "a gasp", "")
	if err != nil {
		t.Fatalf("create word: %v", err)
	}
	if _, err := coord.ApproveWord(session.ID, testGM, low.Word.ID, 2); err != nil {
		t.Fatalf("approve: %v", err)
	}
	floored, err := coord.Players(session.ID)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	for _, player := range floored {
		if player.ID == players[0].ID && player.Nerve != 1 {
			t.Fatalf("expected nerve floored at 1, got %d", player.Nerve)
		}
	}

	// Negative potency restores, capped at the maximum.
	high, err := coord.CreateWord(session.ID, players[1].UserID, "yy", "a held breath", "")
	if err != nil {
		t.Fatalf("create word: %v", err)
	}
	if _, err := coord.ApproveWord(session.ID, testGM, high.Word.ID, -2); err != nil {
		t.Fatalf("approve: %v", err)
	}
	second, err := coord.Players(session.ID)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	for _, player := range second {
		if player.ID == players[1].ID && player.Nerve != 8 {
			t.Fatalf("expected nerve capped at 8, got %d", player.Nerve)
		}
	}
}

func TestApproveWordGuards(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	session := createTestSession(t, coord)
	players := joinTestPlayers(t, coord, session.ID, 1)

	result, err := coord.CreateWord(session.ID, players[0].UserID, "eia", "a greeting", "")
	if err != nil {
		t.Fatalf("create word: %v", err)
	}

	if _, err := coord.ApproveWord(session.ID, players[0].UserID, result.Word.ID, 1); !errors.Is(err, game.ErrNotGM) {
		t.Fatalf("expected ErrNotGM, got %v", err)
	}
	if _, err := coord.ApproveWord(session.ID, testGM, result.Word.ID, 5); !errors.Is(err, game.ErrInvalidPotency) {
		t.Fatalf("expected ErrInvalidPotency, got %v", err)
	}
	if _, err := coord.ApproveWord(session.ID, testGM, "missing", 1); !errors.Is(err, game.ErrWordNotFound) {
		t.Fatalf("expected ErrWordNotFound, got %v", err)
	}

	if _, err := coord.ApproveWord(session.ID, testGM, result.Word.ID, 0); err != nil {
		t.Fatalf("approve: %v", err)
	}
	// A second ruling on the same word is rejected.
	if _, err := coord.ApproveWord(session.ID, testGM, result.Word.ID, 1); !errors.Is(err, game.ErrWordApproved) {
		t.Fatalf("expected ErrWordApproved, got %v", err)
	}

	// Zero potency leaves nerve untouched.
	unchanged, err := coord.Players(session.ID)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if unchanged[0].Nerve != 8 {
		t.Fatalf("zero potency moved nerve to %d", unchanged[0].Nerve)
	}
}

func TestCombatActionResolvesPotencies(t *testing.T) {
	coord, sink := newTestCoordinator(t)
	session := createTestSession(t, coord)
	players := joinTestPlayers(t, coord, session.ID, 2)

	first, err := coord.CreateWord(session.ID, players[0].UserID, "oau", "a low warning call", "")
	if err != nil {
		t.Fatalf("create word: %v", err)
	}
	second, err := coord.CreateWord(session.ID, players[0].UserID, "iy", "a sharp cry", "")
	if err != nil {
		t.Fatalf("create word: %v", err)
	}
	if _, err := coord.ApproveWord(session.ID, testGM, first.Word.ID, 2); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// Unapproved words cannot be spent.
	_, err = coord.CombatAction(session.ID, players[0].UserID, "oau iy at the gate", []string{first.Word.ID, second.Word.ID}, 9)
	if !errors.Is(err, game.ErrPotencyNotSet) {
		t.Fatalf("expected ErrPotencyNotSet, got %v", err)
	}
	if _, err := coord.ApproveWord(session.ID, testGM, second.Word.ID, -1); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// Only the active player acts.
	_, err = coord.CombatAction(session.ID, players[1].UserID, "oau at the gate", []string{first.Word.ID}, 9)
	if !errors.Is(err, game.ErrNotActivePlayer) {
		t.Fatalf("expected ErrNotActivePlayer, got %v", err)
	}

	entry, err := coord.CombatAction(session.ID, players[0].UserID, "oau iy at the gate", []string{first.Word.ID, second.Word.ID}, 9)
	if err != nil {
		t.Fatalf("combat action: %v", err)
	}
	if entry.SummedPotency != 1 || entry.FinalResult != 10 || entry.TurnNumber != 1 {
		t.Fatalf("unexpected resolution: %+v", entry)
	}

	log, err := coord.CombatLog(session.ID)
	if err != nil {
		t.Fatalf("combat log: %v", err)
	}
	if len(log) != 1 || log[0].ID != entry.ID {
		t.Fatalf("expected the entry in the log, got %d entries", len(log))
	}
	if sink.count(game.EventCombatAction) != 1 {
		t.Fatalf("expected 1 combat event, got %d", sink.count(game.EventCombatAction))
	}
}

func TestUpdateNerveAuthorizationAndRange(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	session := createTestSession(t, coord)
	players := joinTestPlayers(t, coord, session.ID, 2)

	if _, err := coord.UpdateNerve(session.ID, players[1].UserID, players[0].ID, 4); !errors.Is(err, game.ErrNotSessionMember) {
		t.Fatalf("expected ErrNotSessionMember, got %v", err)
	}
	if _, err := coord.UpdateNerve(session.ID, players[0].UserID, players[0].ID, 9); !errors.Is(err, game.ErrInvalidNerve) {
		t.Fatalf("expected ErrInvalidNerve, got %v", err)
	}
	// Unlike a ruling, a direct write may reach zero.
	player, err := coord.UpdateNerve(session.ID, players[0].UserID, players[0].ID, 0)
	if err != nil {
		t.Fatalf("self update: %v", err)
	}
	if player.Nerve != 0 {
		t.Fatalf("expected nerve 0, got %d", player.Nerve)
	}
}

func TestUpdateVowels(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	session := createTestSession(t, coord)
	players := joinTestPlayers(t, coord, session.ID, 1)

	if _, err := coord.UpdateVowels(session.ID, players[0].UserID, []string{"a", "e", "i", "o", "u", "y"}); !errors.Is(err, game.ErrNotGM) {
		t.Fatalf("expected ErrNotGM, got %v", err)
	}
	if _, err := coord.UpdateVowels(session.ID, testGM, []string{"a", "e"}); !errors.Is(err, game.ErrInvalidVowels) {
		t.Fatalf("expected ErrInvalidVowels, got %v", err)
	}
	updated, err := coord.UpdateVowels(session.ID, testGM, []string{"k", "l", "m", "n", "p", "r"})
	if err != nil {
		t.Fatalf("update vowels: %v", err)
	}
	if updated.Vowels[0] != "k" || updated.Vowels[5] != "r" {
		t.Fatalf("vowels not replaced: %v", updated.Vowels)
	}
}
