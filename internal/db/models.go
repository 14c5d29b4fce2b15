package db

import (
	"time"

	"gorm.io/datatypes"
)

type Session struct {
	ID                       string `gorm:"primaryKey;size:36"`
	JoinCode                 string `gorm:"size:12;uniqueIndex;not null"`
	Name                     string `gorm:"size:120;not null"`
	GMUserID                 string `gorm:"size:64;not null;index"`
	GMName                   string `gorm:"size:64"`
	EncounterSentence        string `gorm:"size:280"`
	EncounterNoun            string `gorm:"size:64"`
	EncounterVerb            string `gorm:"size:64"`
	EncounterAdjective       string `gorm:"size:64"`
	Threat                   int    `gorm:"not null"`
	Difficulty               int    `gorm:"not null"`
	Length                   int    `gorm:"not null"`
	IsPrepTurn               bool   `gorm:"not null;default:false"`
	CurrentPrepWordIndex     int    `gorm:"not null;default:0"`
	CurrentPrepWordTurnCount int    `gorm:"not null;default:0"`
	CurrentPrepMeaning       string `gorm:"size:280"`
	Vowels                   datatypes.JSON `gorm:"type:jsonb;not null"`
	CurrentTurn              int            `gorm:"not null;default:1"`
	IsActive                 bool           `gorm:"not null;default:true"`
	CreatedAt                time.Time      `gorm:"not null"`
	UpdatedAt                time.Time      `gorm:"not null"`
	Players                  []Player
	Words                    []Word
	CombatLogEntries         []CombatLogEntry
	Events                   []Event
}

type Player struct {
	ID           string    `gorm:"primaryKey;size:36"`
	SessionID    string    `gorm:"size:36;index;not null;uniqueIndex:idx_players_session_user"`
	UserID       string    `gorm:"size:64;not null;uniqueIndex:idx_players_session_user"`
	Name         string    `gorm:"size:64;not null"`
	Nerve        int       `gorm:"not null"`
	TurnOrder    int       `gorm:"not null"`
	IsActiveTurn bool      `gorm:"not null;default:false"`
	IsActive     bool      `gorm:"not null;default:true"`
	JoinedAt     time.Time `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type Word struct {
	ID         string    `gorm:"primaryKey;size:36"`
	SessionID  string    `gorm:"size:36;index;not null;uniqueIndex:idx_words_session_text"`
	Text       string    `gorm:"size:64;not null;uniqueIndex:idx_words_session_text"`
	Meaning    string    `gorm:"size:280"`
	Category   string    `gorm:"size:16"`
	Potency    *int
	IsApproved bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
	Owners     []WordOwner
}

type WordOwner struct {
	WordID    string    `gorm:"primaryKey;size:36"`
	OwnerID   string    `gorm:"primaryKey;size:64"`
	CreatedAt time.Time `gorm:"not null"`
}

type CombatLogEntry struct {
	ID            string         `gorm:"primaryKey;size:36"`
	SessionID     string         `gorm:"size:36;index;not null"`
	PlayerID      string         `gorm:"size:36;index;not null"`
	Sentence      string         `gorm:"size:280;not null"`
	WordsUsed     datatypes.JSON `gorm:"type:jsonb;not null"`
	DiceTotal     int            `gorm:"not null"`
	SummedPotency int            `gorm:"not null"`
	FinalResult   int            `gorm:"not null"`
	TurnNumber    int            `gorm:"not null"`
	CreatedAt     time.Time      `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	SessionID string         `gorm:"size:36;index;not null"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
