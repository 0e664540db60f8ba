package handler

import (
	"errors"
	"net/http"

	"github.com/Mustafabeshara/Dashboard2-sub006/middleware"
	"github.com/Mustafabeshara/Dashboard2-sub006/service"
	"github.com/gin-gonic/gin"
)

type UndoRedoHandler struct {
	commands *service.CommandManager
}

func NewUndoRedoHandler(commands *service.CommandManager) *UndoRedoHandler {
	return &UndoRedoHandler{commands: commands}
}

type UndoRedoRequest struct {
	Action string `json:"action" binding:"required"` // undo, redo
}

// GetStatus returns whether undo/redo are possible plus recent commands
func (h *UndoRedoHandler) GetStatus(c *gin.Context) {
	username := middleware.GetUsername(c)
	status := h.commands.Status(username, 10)
	c.JSON(http.StatusOK, status)
}

// Execute performs an undo or redo action for the current user
func (h *UndoRedoHandler) Execute(c *gin.Context) {
	username := middleware.GetUsername(c)

	var req UndoRedoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	switch req.Action {
	case "undo":
		cmd, err := h.commands.Undo(username)
		if err != nil {
			status := http.StatusBadRequest
			if !errors.Is(err, service.ErrNothingToUndo) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"action":  "undo",
			"command": cmd.Descriptor(),
			"status":  h.commands.Status(username, 10),
		})
	case "redo":
		cmd, err := h.commands.Redo(username)
		if err != nil {
			status := http.StatusBadRequest
			if !errors.Is(err, service.ErrNothingToRedo) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"action":  "redo",
			"command": cmd.Descriptor(),
			"status":  h.commands.Status(username, 10),
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Action must be 'undo' or 'redo'"})
	}
}

// ClearHistory drops all undo/redo state for the current user
func (h *UndoRedoHandler) ClearHistory(c *gin.Context) {
	username := middleware.GetUsername(c)
	h.commands.ClearHistory(username)
	c.JSON(http.StatusOK, gin.H{"message": "Command history cleared"})
}
