package server

import (
	"net/http"

	"github.com/jackbombadeur/RPGCompanion/internal/game"

	"github.com/gin-gonic/gin"
)

// statusForError translates the core failure taxonomy into transport
// status codes; the core itself never sees HTTP.
func statusForError(err error) int {
	switch {
	case game.NotFound(err):
		return http.StatusNotFound
	case game.Forbidden(err):
		return http.StatusForbidden
	case game.InvalidInput(err):
		return http.StatusBadRequest
	case game.Conflict(err):
		return http.StatusConflict
	case game.PreconditionFailed(err):
		return http.StatusPreconditionFailed
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	c.JSON(status, gin.H{"error": message})
}
