package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type createSessionRequest struct {
	Name     string `json:"name" binding:"required,name"`
	GMUserID string `json:"gm_user_id" binding:"required"`
	GMName   string `json:"gm_name" binding:"required,name"`
}

func (s *Server) handleCreateSession(c *gin.Context) {
	if !s.enforceRateLimit(c, "create") {
		return
	}
	var req createSessionRequest
	if !bindJSON(c, &req, bindMessages{
		"Name":     {"required": "session name is required", "name": "session name contains unsupported characters"},
		"GMUserID": {"required": "gm_user_id is required"},
		"GMName":   {"required": "gm_name is required", "name": "gm_name contains unsupported characters"},
	}, "") {
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gmName, err := validateName(req.GMName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := s.coord.CreateSession(name, req.GMUserID, gmName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"session_id": session.ID,
		"join_code":  session.JoinCode,
		"name":       session.Name,
	})
}

func (s *Server) handleGetSession(c *gin.Context) {
	snapshot, err := s.snapshot(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

type joinSessionRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Name   string `json:"name" binding:"required,name"`
}

func (s *Server) handleJoinSession(c *gin.Context) {
	if !s.enforceRateLimit(c, "join") {
		return
	}
	var req joinSessionRequest
	if !bindJSON(c, &req, bindMessages{
		"UserID": {"required": "user_id is required"},
		"Name":   {"required": "name is required", "name": "name contains unsupported characters"},
	}, "") {
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, player, err := s.coord.JoinSession(c.Param("id"), req.UserID, name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id":     session.ID,
		"player_id":      player.ID,
		"name":           player.Name,
		"nerve":          player.Nerve,
		"turn_order":     player.TurnOrder,
		"is_active_turn": player.IsActiveTurn,
	})
}

type leaveSessionRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (s *Server) handleLeaveSession(c *gin.Context) {
	var req leaveSessionRequest
	if !bindJSON(c, &req, bindMessages{
		"UserID": {"required": "user_id is required"},
	}, "") {
		return
	}
	if err := s.coord.LeaveSession(c.Param("id"), req.UserID); err != nil {
		respondError(c, err)
		return
	}
	log.Printf("player left session_id=%s user_id=%s", c.Param("id"), req.UserID)
	c.JSON(http.StatusOK, gin.H{"status": "left"})
}

func (s *Server) handleListPlayers(c *gin.Context) {
	players, err := s.coord.Players(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"players": playersPayload(players)})
}

type updateNerveRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Nerve  *int   `json:"nerve" binding:"required"`
}

func (s *Server) handleUpdateNerve(c *gin.Context) {
	var req updateNerveRequest
	if !bindJSON(c, &req, bindMessages{
		"UserID": {"required": "user_id is required"},
		"Nerve":  {"required": "nerve is required"},
	}, "") {
		return
	}
	player, err := s.coord.UpdateNerve(c.Param("id"), req.UserID, c.Param("playerId"), *req.Nerve)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"player_id": player.ID,
		"nerve":     player.Nerve,
	})
}

type updateVowelsRequest struct {
	UserID string   `json:"user_id" binding:"required"`
	Vowels []string `json:"vowels" binding:"required,len=6,dive,required"`
}

func (s *Server) handleUpdateVowels(c *gin.Context) {
	var req updateVowelsRequest
	if !bindJSON(c, &req, bindMessages{
		"UserID": {"required": "user_id is required"},
		"Vowels": {"required": "vowels are required", "len": "exactly 6 vowels are required"},
	}, "") {
		return
	}
	session, err := s.coord.UpdateVowels(c.Param("id"), req.UserID, req.Vowels)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vowels": session.Vowels})
}

type setEncounterRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	Sentence  string `json:"sentence" binding:"required,sentence"`
	Noun      string `json:"noun" binding:"required,wordtext"`
	Verb      string `json:"verb" binding:"required,wordtext"`
	Adjective string `json:"adjective" binding:"required,wordtext"`
}

func (s *Server) handleSetEncounter(c *gin.Context) {
	var req setEncounterRequest
	if !bindJSON(c, &req, bindMessages{
		"UserID":    {"required": "user_id is required"},
		"Sentence":  {"required": "sentence is required", "sentence": "sentence contains unsupported characters"},
		"Noun":      {"required": "noun is required", "wordtext": "noun contains unsupported characters"},
		"Verb":      {"required": "verb is required", "wordtext": "verb contains unsupported characters"},
		"Adjective": {"required": "adjective is required", "wordtext": "adjective contains unsupported characters"},
	}, "") {
		return
	}
	sentence, err := validateSentence(req.Sentence)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	noun, _ := validateWordText(req.Noun)
	verb, _ := validateWordText(req.Verb)
	adjective, _ := validateWordText(req.Adjective)
	session, err := s.coord.SetEncounter(c.Param("id"), req.UserID, sentence, noun, verb, adjective)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Printf("encounter set session_id=%s prep=%t", session.ID, session.IsPrepTurn)
	c.JSON(http.StatusOK, gin.H{
		"sentence":     session.EncounterSentence,
		"noun":         session.EncounterNoun,
		"verb":         session.EncounterVerb,
		"adjective":    session.EncounterAdjective,
		"is_prep_turn": session.IsPrepTurn,
	})
}

type updateStatsRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	Threat     *int   `json:"threat" binding:"required"`
	Difficulty *int   `json:"difficulty" binding:"required"`
	Length     *int   `json:"length" binding:"required"`
}

func (s *Server) handleUpdateStats(c *gin.Context) {
	var req updateStatsRequest
	if !bindJSON(c, &req, bindMessages{
		"UserID":     {"required": "user_id is required"},
		"Threat":     {"required": "threat is required"},
		"Difficulty": {"required": "difficulty is required"},
		"Length":     {"required": "length is required"},
	}, "") {
		return
	}
	session, err := s.coord.UpdateEncounterStats(c.Param("id"), req.UserID, *req.Threat, *req.Difficulty, *req.Length)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"threat":     session.Threat,
		"difficulty": session.Difficulty,
		"length":     session.Length,
	})
}

type defineWordRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Meaning string `json:"meaning" binding:"required,max=280"`
}

func (s *Server) handleDefineWord(c *gin.Context) {
	var req defineWordRequest
	if !bindJSON(c, &req, bindMessages{
		"UserID":  {"required": "user_id is required"},
		"Meaning": {"required": "meaning is required", "max": "meaning must be 280 characters or fewer"},
	}, "") {
		return
	}
	session, err := s.coord.DefineEncounterWord(c.Param("id"), req.UserID, normalizeText(req.Meaning))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"word_index": session.CurrentPrepWordIndex,
		"meaning":    session.CurrentPrepMeaning,
	})
}

type setPotencyRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Potency *int   `json:"potency" binding:"required"`
}

func (s *Server) handleSetPotency(c *gin.Context) {
	var req setPotencyRequest
	if !bindJSON(c, &req, bindMessages{
		"UserID":  {"required": "user_id is required"},
		"Potency": {"required": "potency is required"},
	}, "") {
		return
	}
	word, err := s.coord.SetEncounterWordPotency(c.Param("id"), req.UserID, *req.Potency)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wordPayload(word))
}

type adjustStatRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Stat     string `json:"stat" binding:"required,oneof=threat difficulty length"`
	Subtract bool   `json:"subtract"`
}

func (s *Server) handleAdjustStat(c *gin.Context) {
	var req adjustStatRequest
	if !bindJSON(c, &req, bindMessages{
		"UserID": {"required": "user_id is required"},
		"Stat":   {"required": "stat is required", "oneof": "stat must be threat, difficulty or length"},
	}, "") {
		return
	}
	session, err := s.coord.AdjustEncounterStat(c.Param("id"), req.UserID, req.Stat, req.Subtract)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"threat":     session.Threat,
		"difficulty": session.Difficulty,
		"length":     session.Length,
	})
}

type actorRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (s *Server) handleAdvancePrep(c *gin.Context) {
	var req actorRequest
	if !bindJSON(c, &req, bindMessages{
		"UserID": {"required": "user_id is required"},
	}, "") {
		return
	}
	session, err := s.coord.AdvancePrepTurn(c.Param("id"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"is_prep_turn":            session.IsPrepTurn,
		"current_prep_word_index": session.CurrentPrepWordIndex,
		"current_prep_turn_count": session.CurrentPrepWordTurnCount,
		"current_turn":            session.CurrentTurn,
	})
}

func (s *Server) handleAdvanceTurn(c *gin.Context) {
	var req actorRequest
	if !bindJSON(c, &req, bindMessages{
		"UserID": {"required": "user_id is required"},
	}, "") {
		return
	}
	player, rolledOver, err := s.coord.AdvanceTurn(c.Param("id"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"active_player_id": player.ID,
		"rolled_over":      rolledOver,
	})
}
