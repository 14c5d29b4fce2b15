// Package postgres is the durable session store over gorm. Uniqueness
// (join code, word text per session, one seat per user) is enforced by
// the migrated schema; violations surface as the same domain errors the
// in-memory backend raises from its explicit checks.
package postgres

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/jackbombadeur/RPGCompanion/internal/db"
	"github.com/jackbombadeur/RPGCompanion/internal/game"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	conn *gorm.DB
}

func New(conn *gorm.DB) *Store {
	return &Store{conn: conn}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func toSessionRecord(session *game.Session) (*db.Session, error) {
	vowels, err := json.Marshal(session.Vowels)
	if err != nil {
		return nil, err
	}
	return &db.Session{
		ID:                       session.ID,
		JoinCode:                 session.JoinCode,
		Name:                     session.Name,
		GMUserID:                 session.GMUserID,
		GMName:                   session.GMName,
		EncounterSentence:        session.EncounterSentence,
		EncounterNoun:            session.EncounterNoun,
		EncounterVerb:            session.EncounterVerb,
		EncounterAdjective:       session.EncounterAdjective,
		Threat:                   session.Threat,
		Difficulty:               session.Difficulty,
		Length:                   session.Length,
		IsPrepTurn:               session.IsPrepTurn,
		CurrentPrepWordIndex:     session.CurrentPrepWordIndex,
		CurrentPrepWordTurnCount: session.CurrentPrepWordTurnCount,
		CurrentPrepMeaning:       session.CurrentPrepMeaning,
		Vowels:                   datatypes.JSON(vowels),
		CurrentTurn:              session.CurrentTurn,
		IsActive:                 session.IsActive,
		CreatedAt:                session.CreatedAt,
	}, nil
}

func fromSessionRecord(record *db.Session) *game.Session {
	var vowels []string
	_ = json.Unmarshal(record.Vowels, &vowels)
	return &game.Session{
		ID:                       record.ID,
		JoinCode:                 record.JoinCode,
		Name:                     record.Name,
		GMUserID:                 record.GMUserID,
		GMName:                   record.GMName,
		EncounterSentence:        record.EncounterSentence,
		EncounterNoun:            record.EncounterNoun,
		EncounterVerb:            record.EncounterVerb,
		EncounterAdjective:       record.EncounterAdjective,
		Threat:                   record.Threat,
		Difficulty:               record.Difficulty,
		Length:                   record.Length,
		IsPrepTurn:               record.IsPrepTurn,
		CurrentPrepWordIndex:     record.CurrentPrepWordIndex,
		CurrentPrepWordTurnCount: record.CurrentPrepWordTurnCount,
		CurrentPrepMeaning:       record.CurrentPrepMeaning,
		Vowels:                   vowels,
		CurrentTurn:              record.CurrentTurn,
		IsActive:                 record.IsActive,
		CreatedAt:                record.CreatedAt,
	}
}

func (s *Store) CreateSession(session *game.Session) error {
	record, err := toSessionRecord(session)
	if err != nil {
		return err
	}
	if err := s.conn.Create(record).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrDuplicateJoinCode
		}
		return err
	}
	return nil
}

func (s *Store) SessionByID(id string) (*game.Session, error) {
	var record db.Session
	if err := s.conn.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, game.ErrSessionNotFound
		}
		return nil, err
	}
	return fromSessionRecord(&record), nil
}

func (s *Store) SessionByCode(code string) (*game.Session, error) {
	var record db.Session
	if err := s.conn.First(&record, "join_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, game.ErrSessionNotFound
		}
		return nil, err
	}
	return fromSessionRecord(&record), nil
}

func (s *Store) SaveSession(session *game.Session) error {
	record, err := toSessionRecord(session)
	if err != nil {
		return err
	}
	result := s.conn.Model(&db.Session{}).Where("id = ?", session.ID).Updates(map[string]any{
		"name":                         record.Name,
		"encounter_sentence":           record.EncounterSentence,
		"encounter_noun":               record.EncounterNoun,
		"encounter_verb":               record.EncounterVerb,
		"encounter_adjective":          record.EncounterAdjective,
		"threat":                       record.Threat,
		"difficulty":                   record.Difficulty,
		"length":                       record.Length,
		"is_prep_turn":                 record.IsPrepTurn,
		"current_prep_word_index":      record.CurrentPrepWordIndex,
		"current_prep_word_turn_count": record.CurrentPrepWordTurnCount,
		"current_prep_meaning":         record.CurrentPrepMeaning,
		"vowels":                       record.Vowels,
		"current_turn":                 record.CurrentTurn,
		"is_active":                    record.IsActive,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return game.ErrSessionNotFound
	}
	return nil
}

func toPlayerRecord(player *game.Player) *db.Player {
	return &db.Player{
		ID:           player.ID,
		SessionID:    player.SessionID,
		UserID:       player.UserID,
		Name:         player.Name,
		Nerve:        player.Nerve,
		TurnOrder:    player.TurnOrder,
		IsActiveTurn: player.IsActiveTurn,
		IsActive:     player.IsActive,
		JoinedAt:     player.JoinedAt,
	}
}

func fromPlayerRecord(record *db.Player) *game.Player {
	return &game.Player{
		ID:           record.ID,
		SessionID:    record.SessionID,
		UserID:       record.UserID,
		Name:         record.Name,
		Nerve:        record.Nerve,
		TurnOrder:    record.TurnOrder,
		IsActiveTurn: record.IsActiveTurn,
		IsActive:     record.IsActive,
		JoinedAt:     record.JoinedAt,
	}
}

func (s *Store) CreatePlayer(player *game.Player) error {
	if err := s.conn.Create(toPlayerRecord(player)).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrInvalidInput
		}
		return err
	}
	return nil
}

func (s *Store) PlayerByID(id string) (*game.Player, error) {
	var record db.Player
	if err := s.conn.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, game.ErrPlayerNotFound
		}
		return nil, err
	}
	return fromPlayerRecord(&record), nil
}

func (s *Store) PlayerByUser(sessionID, userID string) (*game.Player, error) {
	var record db.Player
	err := s.conn.First(&record, "session_id = ? AND user_id = ?", sessionID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, game.ErrPlayerNotFound
		}
		return nil, err
	}
	return fromPlayerRecord(&record), nil
}

func (s *Store) PlayersBySession(sessionID string) ([]*game.Player, error) {
	if _, err := s.SessionByID(sessionID); err != nil {
		return nil, err
	}
	var records []db.Player
	err := s.conn.
		Where("session_id = ? AND is_active", sessionID).
		Order("turn_order asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	players := make([]*game.Player, 0, len(records))
	for i := range records {
		players = append(players, fromPlayerRecord(&records[i]))
	}
	return players, nil
}

func (s *Store) SavePlayer(player *game.Player) error {
	result := s.conn.Model(&db.Player{}).Where("id = ?", player.ID).Updates(map[string]any{
		"name":           player.Name,
		"nerve":          player.Nerve,
		"turn_order":     player.TurnOrder,
		"is_active_turn": player.IsActiveTurn,
		"is_active":      player.IsActive,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return game.ErrPlayerNotFound
	}
	return nil
}

func toWordRecord(word *game.Word) *db.Word {
	return &db.Word{
		ID:         word.ID,
		SessionID:  word.SessionID,
		Text:       word.Text,
		Meaning:    word.Meaning,
		Category:   word.Category,
		Potency:    word.Potency,
		IsApproved: word.IsApproved,
		CreatedAt:  word.CreatedAt,
	}
}

func fromWordRecord(record *db.Word) *game.Word {
	word := &game.Word{
		ID:         record.ID,
		SessionID:  record.SessionID,
		Text:       record.Text,
		Meaning:    record.Meaning,
		Category:   record.Category,
		Potency:    record.Potency,
		IsApproved: record.IsApproved,
		CreatedAt:  record.CreatedAt,
	}
	for _, owner := range record.Owners {
		word.Owners = append(word.Owners, owner.OwnerID)
	}
	return word
}

func (s *Store) CreateWord(word *game.Word) error {
	if err := s.conn.Create(toWordRecord(word)).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrDuplicateWord
		}
		return err
	}
	return nil
}

func (s *Store) WordByID(id string) (*game.Word, error) {
	var record db.Word
	if err := s.conn.Preload("Owners").First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, game.ErrWordNotFound
		}
		return nil, err
	}
	return fromWordRecord(&record), nil
}

func (s *Store) WordByText(sessionID, text string) (*game.Word, error) {
	var record db.Word
	err := s.conn.Preload("Owners").First(&record, "session_id = ? AND text = ?", sessionID, text).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, game.ErrWordNotFound
		}
		return nil, err
	}
	return fromWordRecord(&record), nil
}

func (s *Store) WordsBySession(sessionID string) ([]*game.Word, error) {
	if _, err := s.SessionByID(sessionID); err != nil {
		return nil, err
	}
	var records []db.Word
	err := s.conn.Preload("Owners").
		Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	words := make([]*game.Word, 0, len(records))
	for i := range records {
		words = append(words, fromWordRecord(&records[i]))
	}
	return words, nil
}

func (s *Store) SaveWord(word *game.Word) error {
	result := s.conn.Model(&db.Word{}).Where("id = ?", word.ID).Updates(map[string]any{
		"meaning":     word.Meaning,
		"category":    word.Category,
		"potency":     word.Potency,
		"is_approved": word.IsApproved,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return game.ErrWordNotFound
	}
	return nil
}

func (s *Store) AddWordOwner(wordID, ownerID string) error {
	record := db.WordOwner{
		WordID:    wordID,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	return s.conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
}

func (s *Store) ReplaceWordOwners(wordID string, ownerIDs []string) error {
	return s.conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("word_id = ?", wordID).Delete(&db.WordOwner{}).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, ownerID := range ownerIDs {
			record := db.WordOwner{WordID: wordID, OwnerID: ownerID, CreatedAt: now}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) AppendCombatLog(entry *game.CombatLogEntry) error {
	used, err := json.Marshal(entry.WordsUsed)
	if err != nil {
		return err
	}
	record := db.CombatLogEntry{
		ID:            entry.ID,
		SessionID:     entry.SessionID,
		PlayerID:      entry.PlayerID,
		Sentence:      entry.Sentence,
		WordsUsed:     datatypes.JSON(used),
		DiceTotal:     entry.DiceTotal,
		SummedPotency: entry.SummedPotency,
		FinalResult:   entry.FinalResult,
		TurnNumber:    entry.TurnNumber,
		CreatedAt:     entry.CreatedAt,
	}
	return s.conn.Create(&record).Error
}

func (s *Store) CombatLogBySession(sessionID string) ([]*game.CombatLogEntry, error) {
	if _, err := s.SessionByID(sessionID); err != nil {
		return nil, err
	}
	var records []db.CombatLogEntry
	err := s.conn.
		Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	entries := make([]*game.CombatLogEntry, 0, len(records))
	for i := range records {
		record := &records[i]
		var used []game.UsedWord
		_ = json.Unmarshal(record.WordsUsed, &used)
		entries = append(entries, &game.CombatLogEntry{
			ID:            record.ID,
			SessionID:     record.SessionID,
			PlayerID:      record.PlayerID,
			Sentence:      record.Sentence,
			WordsUsed:     used,
			DiceTotal:     record.DiceTotal,
			SummedPotency: record.SummedPotency,
			FinalResult:   record.FinalResult,
			TurnNumber:    record.TurnNumber,
			CreatedAt:     record.CreatedAt,
		})
	}
	return entries, nil
}

func (s *Store) AppendEvent(sessionID, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	record := db.Event{
		SessionID: sessionID,
		Type:      eventType,
		Payload:   datatypes.JSON(data),
		CreatedAt: time.Now().UTC(),
	}
	return s.conn.Create(&record).Error
}
