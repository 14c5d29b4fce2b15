package game_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/jackbombadeur/RPGCompanion/internal/game"
	"github.com/jackbombadeur/RPGCompanion/internal/store/memory"
)

// recordingSink captures emitted events in order for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []game.Event
}

func (s *recordingSink) Emit(sessionID string, event game.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, event := range s.events {
		out = append(out, event.Type)
	}
	return out
}

func (s *recordingSink) count(eventType string) int {
	total := 0
	for _, observed := range s.types() {
		if observed == eventType {
			total++
		}
	}
	return total
}

func newTestCoordinator(t *testing.T) (*game.Coordinator, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	return game.NewCoordinator(memory.New(), sink, game.DefaultRuleset()), sink
}

const testGM = "gm-user"

func createTestSession(t *testing.T, coord *game.Coordinator) *game.Session {
	t.Helper()
	session, err := coord.CreateSession("The Hollow Spire", testGM, "Morgan")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session
}

func joinTestPlayers(t *testing.T, coord *game.Coordinator, sessionID string, count int) []*game.Player {
	t.Helper()
	players := make([]*game.Player, 0, count)
	for i := 0; i < count; i++ {
		_, player, err := coord.JoinSession(sessionID, fmt.Sprintf("user-%d", i+1), fmt.Sprintf("Player %d", i+1))
		if err != nil {
			t.Fatalf("join player %d: %v", i+1, err)
		}
		players = append(players, player)
	}
	return players
}

func activePlayer(t *testing.T, coord *game.Coordinator, sessionID string) *game.Player {
	t.Helper()
	players, err := coord.Players(sessionID)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	var active *game.Player
	for _, player := range players {
		if !player.IsActiveTurn {
			continue
		}
		if active != nil {
			t.Fatalf("more than one active player: %s and %s", active.ID, player.ID)
		}
		active = player
	}
	if active == nil {
		t.Fatal("no active player")
	}
	return active
}
