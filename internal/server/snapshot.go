package server

import "github.com/jackbombadeur/RPGCompanion/internal/game"

// snapshot is the full session view a reconnecting client re-fetches
// instead of replaying missed broadcasts.
func (s *Server) snapshot(sessionID string) (map[string]any, error) {
	session, err := s.coord.Session(sessionID)
	if err != nil {
		return nil, err
	}
	players, err := s.coord.Players(session.ID)
	if err != nil {
		return nil, err
	}
	words, err := s.coord.Words(session.ID)
	if err != nil {
		return nil, err
	}
	entries, err := s.coord.CombatLog(session.ID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"session_id": session.ID,
		"join_code":  session.JoinCode,
		"name":       session.Name,
		"gm_user_id": session.GMUserID,
		"gm_name":    session.GMName,
		"encounter": map[string]any{
			"sentence":   session.EncounterSentence,
			"noun":       session.EncounterNoun,
			"verb":       session.EncounterVerb,
			"adjective":  session.EncounterAdjective,
			"threat":     session.Threat,
			"difficulty": session.Difficulty,
			"length":     session.Length,
		},
		"is_prep_turn":            session.IsPrepTurn,
		"current_prep_word_index": session.CurrentPrepWordIndex,
		"current_prep_turn_count": session.CurrentPrepWordTurnCount,
		"vowels":                  session.Vowels,
		"current_turn":            session.CurrentTurn,
		"players":                 playersPayload(players),
		"words":                   wordsPayload(words),
		"combat_log":              combatLogPayload(entries),
	}, nil
}

func playersPayload(players []*game.Player) []map[string]any {
	payload := make([]map[string]any, 0, len(players))
	for _, player := range players {
		payload = append(payload, map[string]any{
			"player_id":      player.ID,
			"user_id":        player.UserID,
			"name":           player.Name,
			"nerve":          player.Nerve,
			"turn_order":     player.TurnOrder,
			"is_active_turn": player.IsActiveTurn,
		})
	}
	return payload
}

func wordsPayload(words []*game.Word) []map[string]any {
	payload := make([]map[string]any, 0, len(words))
	for _, word := range words {
		payload = append(payload, wordPayload(word))
	}
	return payload
}

func wordPayload(word *game.Word) map[string]any {
	entry := map[string]any{
		"word_id":     word.ID,
		"text":        word.Text,
		"meaning":     word.Meaning,
		"category":    word.Category,
		"is_approved": word.IsApproved,
		"owners":      word.Owners,
	}
	if word.Potency != nil {
		entry["potency"] = *word.Potency
	} else {
		entry["potency"] = nil
	}
	return entry
}

func combatLogPayload(entries []*game.CombatLogEntry) []map[string]any {
	payload := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		used := make([]map[string]any, 0, len(entry.WordsUsed))
		for _, word := range entry.WordsUsed {
			used = append(used, map[string]any{
				"word_id": word.WordID,
				"potency": word.Potency,
			})
		}
		payload = append(payload, map[string]any{
			"entry_id":       entry.ID,
			"player_id":      entry.PlayerID,
			"sentence":       entry.Sentence,
			"words_used":     used,
			"dice_total":     entry.DiceTotal,
			"summed_potency": entry.SummedPotency,
			"final_result":   entry.FinalResult,
			"turn_number":    entry.TurnNumber,
		})
	}
	return payload
}
