package game

// Event names broadcast to every socket subscribed to a session.
const (
	EventPlayerJoined         = "player_joined"
	EventNerveUpdated         = "nerve_updated"
	EventWordCreated          = "word_created"
	EventWordOwnershipUpdated = "word_ownership_updated"
	EventWordApproved         = "word_approved"
	EventCombatAction         = "combat_action"
	EventEncounterUpdated     = "encounter_updated"
	EventTurnAdvanced         = "turn_advanced"
	EventPrepTurnAdvanced     = "prep_turn_advanced"
	EventWordDefined          = "word_defined"
	EventStatsModified        = "stats_modified"
	EventStatAdjusted         = "stat_adjusted"
	EventVowelsUpdated        = "vowels_updated"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// EventSink receives session-scoped events as mutations commit.
// Delivery is fire-and-forget; a sink must never fail the mutation.
// Emit is called while the session lock is held, so within one session
// events arrive in the order their mutations committed.
type EventSink interface {
	Emit(sessionID string, event Event)
}

// NopSink discards events; used when no broadcast layer is attached.
type NopSink struct{}

func (NopSink) Emit(string, Event) {}

func (c *Coordinator) emit(sessionID, eventType string, data any) {
	c.appendAudit(sessionID, eventType, data)
	c.sink.Emit(sessionID, Event{Type: eventType, Data: data})
}
