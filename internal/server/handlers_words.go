package server

import (
	"net/http"

	"github.com/jackbombadeur/RPGCompanion/internal/game"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListWords(c *gin.Context) {
	words, err := s.coord.Words(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"words": wordsPayload(words)})
}

type createWordRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Text     string `json:"text" binding:"required,wordtext"`
	Meaning  string `json:"meaning" binding:"omitempty,max=280"`
	Category string `json:"category" binding:"omitempty,oneof=noun verb adjective"`
}

func (s *Server) handleCreateWord(c *gin.Context) {
	var req createWordRequest
	if !bindJSON(c, &req, bindMessages{
		"UserID":   {"required": "user_id is required"},
		"Text":     {"required": "text is required", "wordtext": "text contains unsupported characters"},
		"Meaning":  {"max": "meaning must be 280 characters or fewer"},
		"Category": {"oneof": "category must be noun, verb or adjective"},
	}, "") {
		return
	}
	text, err := validateWordText(req.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := s.coord.CreateWord(c.Param("id"), req.UserID, text, normalizeText(req.Meaning), req.Category)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if result.IsExisting {
		status = http.StatusOK
	}
	payload := wordPayload(result.Word)
	payload["is_existing"] = result.IsExisting
	c.JSON(status, payload)
}

// handleRollWord generates a candidate word from the session's vowel
// set. Rolling is free: nothing enters the dictionary until the word is
// submitted.
func (s *Server) handleRollWord(c *gin.Context) {
	session, err := s.coord.Session(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	word, err := game.GenerateWord(session.Vowels, s.roll)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"word": word})
}

type approveWordRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Potency *int   `json:"potency" binding:"required"`
}

func (s *Server) handleApproveWord(c *gin.Context) {
	var req approveWordRequest
	if !bindJSON(c, &req, bindMessages{
		"UserID":  {"required": "user_id is required"},
		"Potency": {"required": "potency is required"},
	}, "") {
		return
	}
	word, err := s.coord.ApproveWord(c.Param("id"), req.UserID, c.Param("wordId"), *req.Potency)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wordPayload(word))
}

func (s *Server) handleCombatLog(c *gin.Context) {
	entries, err := s.coord.CombatLog(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"log": combatLogPayload(entries)})
}

type combatActionRequest struct {
	UserID    string   `json:"user_id" binding:"required"`
	Sentence  string   `json:"sentence" binding:"required,sentence"`
	WordIDs   []string `json:"word_ids"`
	DiceTotal *int     `json:"dice_total" binding:"required"`
}

func (s *Server) handleCombatAction(c *gin.Context) {
	var req combatActionRequest
	if !bindJSON(c, &req, bindMessages{
		"UserID":    {"required": "user_id is required"},
		"Sentence":  {"required": "sentence is required", "sentence": "sentence contains unsupported characters"},
		"DiceTotal": {"required": "dice_total is required"},
	}, "") {
		return
	}
	sentence, err := validateSentence(req.Sentence)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := s.coord.CombatAction(c.Param("id"), req.UserID, sentence, req.WordIDs, *req.DiceTotal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"entry_id":       entry.ID,
		"dice_total":     entry.DiceTotal,
		"summed_potency": entry.SummedPotency,
		"final_result":   entry.FinalResult,
		"turn_number":    entry.TurnNumber,
	})
}
