// Package memory is the non-durable session store: plain maps behind a
// mutex, single process. It mirrors the relational backend's
// constraints with explicit checks so both backends present identical
// contracts.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/jackbombadeur/RPGCompanion/internal/game"
)

type auditEntry struct {
	SessionID string
	Type      string
	Payload   any
	At        time.Time
}

type Store struct {
	mu       sync.Mutex
	sessions map[string]*game.Session
	players  map[string]*game.Player
	words    map[string]*game.Word
	owners   map[string]map[string]struct{}
	log      map[string][]*game.CombatLogEntry
	audit    []auditEntry
}

func New() *Store {
	return &Store{
		sessions: make(map[string]*game.Session),
		players:  make(map[string]*game.Player),
		words:    make(map[string]*game.Word),
		owners:   make(map[string]map[string]struct{}),
		log:      make(map[string][]*game.CombatLogEntry),
	}
}

func copySession(session *game.Session) *game.Session {
	out := *session
	out.Vowels = append([]string(nil), session.Vowels...)
	return &out
}

func copyPlayer(player *game.Player) *game.Player {
	out := *player
	return &out
}

func (s *Store) copyWord(word *game.Word) *game.Word {
	out := *word
	if word.Potency != nil {
		potency := *word.Potency
		out.Potency = &potency
	}
	out.Owners = s.ownerList(word.ID)
	return &out
}

func (s *Store) ownerList(wordID string) []string {
	set := s.owners[wordID]
	if len(set) == 0 {
		return nil
	}
	list := make([]string, 0, len(set))
	for owner := range set {
		list = append(list, owner)
	}
	sort.Strings(list)
	return list
}

func (s *Store) CreateSession(session *game.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.sessions {
		if existing.JoinCode == session.JoinCode {
			return game.ErrDuplicateJoinCode
		}
	}
	s.sessions[session.ID] = copySession(session)
	return nil
}

func (s *Store) SessionByID(id string) (*game.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, game.ErrSessionNotFound
	}
	return copySession(session), nil
}

func (s *Store) SessionByCode(code string) (*game.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if session.JoinCode == code {
			return copySession(session), nil
		}
	}
	return nil, game.ErrSessionNotFound
}

func (s *Store) SaveSession(session *game.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; !ok {
		return game.ErrSessionNotFound
	}
	s.sessions[session.ID] = copySession(session)
	return nil
}

func (s *Store) CreatePlayer(player *game.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[player.SessionID]; !ok {
		return game.ErrSessionNotFound
	}
	s.players[player.ID] = copyPlayer(player)
	return nil
}

func (s *Store) PlayerByID(id string) (*game.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return nil, game.ErrPlayerNotFound
	}
	return copyPlayer(player), nil
}

func (s *Store) PlayerByUser(sessionID, userID string) (*game.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, player := range s.players {
		if player.SessionID == sessionID && player.UserID == userID {
			return copyPlayer(player), nil
		}
	}
	return nil, game.ErrPlayerNotFound
}

func (s *Store) PlayersBySession(sessionID string) ([]*game.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return nil, game.ErrSessionNotFound
	}
	list := make([]*game.Player, 0)
	for _, player := range s.players {
		if player.SessionID == sessionID && player.IsActive {
			list = append(list, copyPlayer(player))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].TurnOrder < list[j].TurnOrder
	})
	return list, nil
}

func (s *Store) SavePlayer(player *game.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[player.ID]; !ok {
		return game.ErrPlayerNotFound
	}
	s.players[player.ID] = copyPlayer(player)
	return nil
}

func (s *Store) CreateWord(word *game.Word) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[word.SessionID]; !ok {
		return game.ErrSessionNotFound
	}
	// Mirrors the relational unique index on (session, text).
	for _, existing := range s.words {
		if existing.SessionID == word.SessionID && existing.Text == word.Text {
			return game.ErrDuplicateWord
		}
	}
	stored := *word
	if word.Potency != nil {
		potency := *word.Potency
		stored.Potency = &potency
	}
	stored.Owners = nil
	s.words[word.ID] = &stored
	return nil
}

func (s *Store) WordByID(id string) (*game.Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	word, ok := s.words[id]
	if !ok {
		return nil, game.ErrWordNotFound
	}
	return s.copyWord(word), nil
}

func (s *Store) WordByText(sessionID, text string) (*game.Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, word := range s.words {
		if word.SessionID == sessionID && word.Text == text {
			return s.copyWord(word), nil
		}
	}
	return nil, game.ErrWordNotFound
}

func (s *Store) WordsBySession(sessionID string) ([]*game.Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return nil, game.ErrSessionNotFound
	}
	list := make([]*game.Word, 0)
	for _, word := range s.words {
		if word.SessionID == sessionID {
			list = append(list, s.copyWord(word))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].Text < list[j].Text
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (s *Store) SaveWord(word *game.Word) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.words[word.ID]; !ok {
		return game.ErrWordNotFound
	}
	stored := *word
	if word.Potency != nil {
		potency := *word.Potency
		stored.Potency = &potency
	}
	stored.Owners = nil
	s.words[word.ID] = &stored
	return nil
}

func (s *Store) AddWordOwner(wordID, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.words[wordID]; !ok {
		return game.ErrWordNotFound
	}
	set := s.owners[wordID]
	if set == nil {
		set = make(map[string]struct{})
		s.owners[wordID] = set
	}
	set[ownerID] = struct{}{}
	return nil
}

func (s *Store) ReplaceWordOwners(wordID string, ownerIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.words[wordID]; !ok {
		return game.ErrWordNotFound
	}
	set := make(map[string]struct{}, len(ownerIDs))
	for _, owner := range ownerIDs {
		set[owner] = struct{}{}
	}
	s.owners[wordID] = set
	return nil
}

func (s *Store) AppendCombatLog(entry *game.CombatLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[entry.SessionID]; !ok {
		return game.ErrSessionNotFound
	}
	stored := *entry
	stored.WordsUsed = append([]game.UsedWord(nil), entry.WordsUsed...)
	s.log[entry.SessionID] = append(s.log[entry.SessionID], &stored)
	return nil
}

func (s *Store) CombatLogBySession(sessionID string) ([]*game.CombatLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return nil, game.ErrSessionNotFound
	}
	entries := s.log[sessionID]
	list := make([]*game.CombatLogEntry, 0, len(entries))
	for _, entry := range entries {
		copied := *entry
		copied.WordsUsed = append([]game.UsedWord(nil), entry.WordsUsed...)
		list = append(list, &copied)
	}
	return list, nil
}

func (s *Store) AppendEvent(sessionID, eventType string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, auditEntry{
		SessionID: sessionID,
		Type:      eventType,
		Payload:   payload,
		At:        time.Now().UTC(),
	})
	return nil
}
