package game

import "time"

const (
	CategoryNoun      = "noun"
	CategoryVerb      = "verb"
	CategoryAdjective = "adjective"
)

// encounterWordCount is the number of GM words per encounter, one per
// grammatical category, keyed by prep word index 0..2.
const encounterWordCount = 3

const (
	statThreat     = "threat"
	statDifficulty = "difficulty"
	statLength     = "length"

	statMin = 1
	statMax = 10
)

const vowelCount = 6

// Session is the shared state of one table. Mutated only through
// Coordinator operations, never by direct field writes from callers.
type Session struct {
	ID                       string
	JoinCode                 string
	Name                     string
	GMUserID                 string
	GMName                   string
	EncounterSentence        string
	EncounterNoun            string
	EncounterVerb            string
	EncounterAdjective       string
	Threat                   int
	Difficulty               int
	Length                   int
	IsPrepTurn               bool
	CurrentPrepWordIndex     int
	CurrentPrepWordTurnCount int
	CurrentPrepMeaning       string
	Vowels                   []string
	CurrentTurn              int
	IsActive                 bool
	CreatedAt                time.Time
}

// Player rows are never destroyed, only deactivated.
type Player struct {
	ID           string
	SessionID    string
	UserID       string
	Name         string
	Nerve        int
	TurnOrder    int
	IsActiveTurn bool
	IsActive     bool
	JoinedAt     time.Time
}

// Word is a dictionary entry. Potency nil means the word is still
// pending GM approval. Owners is the set of user ids that discovered
// the word; the same text submitted twice consolidates into one row.
type Word struct {
	ID         string
	SessionID  string
	Text       string
	Meaning    string
	Category   string
	Potency    *int
	IsApproved bool
	Owners     []string
	CreatedAt  time.Time
}

type UsedWord struct {
	WordID  string `json:"word_id"`
	Potency int    `json:"potency"`
}

// CombatLogEntry is append-only; never mutated after creation.
type CombatLogEntry struct {
	ID            string
	SessionID     string
	PlayerID      string
	Sentence      string
	WordsUsed     []UsedWord
	DiceTotal     int
	SummedPotency int
	FinalResult   int
	TurnNumber    int
	CreatedAt     time.Time
}

func defaultVowels() []string {
	return []string{"a", "e", "i", "o", "u", "y"}
}
