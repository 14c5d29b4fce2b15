package game_test

import (
	"errors"
	"testing"

	"github.com/jackbombadeur/RPGCompanion/internal/game"
	"github.com/jackbombadeur/RPGCompanion/internal/store/memory"
)

// collidingStore reports a join-code collision for the first N creates.
type collidingStore struct {
	game.Store
	collisions int
}

func (s *collidingStore) CreateSession(session *game.Session) error {
	if s.collisions > 0 {
		s.collisions--
		return game.ErrDuplicateJoinCode
	}
	return s.Store.CreateSession(session)
}

func TestCreateSessionRetriesJoinCode(t *testing.T) {
	store := &collidingStore{Store: memory.New(), collisions: 2}
	coord := game.NewCoordinator(store, nil, game.DefaultRuleset())

	session, err := coord.CreateSession("The Hollow Spire", testGM, "Morgan")
	if err != nil {
		t.Fatalf("create session should survive collisions: %v", err)
	}
	if session.JoinCode == "" {
		t.Fatal("missing join code")
	}
}

func TestCreateSessionExhaustsJoinCodes(t *testing.T) {
	store := &collidingStore{Store: memory.New(), collisions: 100}
	coord := game.NewCoordinator(store, nil, game.DefaultRuleset())

	_, err := coord.CreateSession("The Hollow Spire", testGM, "Morgan")
	if !errors.Is(err, game.ErrDuplicateJoinCode) {
		t.Fatalf("expected ErrDuplicateJoinCode after exhausting retries, got %v", err)
	}
	if !game.Conflict(err) {
		t.Fatal("a code collision must classify as a conflict")
	}
}
