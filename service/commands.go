package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Mustafabeshara/Dashboard2-sub006/model"
)

// ErrNothingToUndo means the user's history has no command to undo
var ErrNothingToUndo = errors.New("nothing to undo")

// ErrNothingToRedo means the user's history has no command to redo
var ErrNothingToRedo = errors.New("nothing to redo")

// DefaultMaxHistory bounds each user's command history
const DefaultMaxHistory = 50

// CommandStatus is the read-only view of a user's history
type CommandStatus struct {
	CanUndo        bool                      `json:"canUndo"`
	CanRedo        bool                      `json:"canRedo"`
	HistorySize    int                       `json:"historySize"`
	RecentCommands []model.CommandDescriptor `json:"recentCommands"`
}

// userHistory is one user's linear command stack. index is the position of
// the last executed command; -1 means empty or fully undone.
type userHistory struct {
	mu       sync.Mutex
	commands []*model.Command
	index    int
}

// CommandManager keeps a per-user linear history of reversible operations.
// It is an explicit service instance passed into handlers, not a package
// singleton, so tests get isolated state. History is session-scoped,
// best-effort reversibility: nothing survives a process restart.
type CommandManager struct {
	mu         sync.Mutex
	users      map[string]*userHistory
	maxHistory int
}

func NewCommandManager(maxHistory int) *CommandManager {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &CommandManager{
		users:      make(map[string]*userHistory),
		maxHistory: maxHistory,
	}
}

// history returns the per-user stack, creating it on first use. Access to
// each stack is serialized by its own mutex so concurrent undo/redo calls
// for the same user cannot corrupt the index.
func (m *CommandManager) history(userID string) *userHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.users[userID]
	if !ok {
		h = &userHistory{index: -1}
		m.users[userID] = h
	}
	return h
}

// Execute runs the command, records its after-state and appends it to the
// user's history, discarding any redo branch. The oldest entry is evicted
// when the history exceeds its bound.
func (m *CommandManager) Execute(cmd *model.Command) (any, error) {
	if cmd == nil || cmd.Execute == nil || cmd.Undo == nil {
		return nil, fmt.Errorf("command must have execute and undo")
	}

	h := m.history(cmd.UserID)
	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := cmd.Execute()
	if err != nil {
		return nil, fmt.Errorf("command execution failed: %w", err)
	}
	cmd.AfterState = result

	// Executing after an undo discards the redo branch.
	h.commands = h.commands[:h.index+1]
	h.commands = append(h.commands, cmd)
	h.index++

	if len(h.commands) > m.maxHistory {
		h.commands = h.commands[1:]
		h.index--
	}

	slog.Info("command executed",
		"user", cmd.UserID,
		"type", cmd.Type,
		"entity", cmd.EntityType,
		"entity_id", cmd.EntityID,
		"description", cmd.Description,
	)
	return result, nil
}

// Undo reverses the most recent command. A failed undo leaves the index
// unchanged so it can be retried or abandoned without corrupting history.
func (m *CommandManager) Undo(userID string) (*model.Command, error) {
	h := m.history(userID)
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index < 0 {
		return nil, ErrNothingToUndo
	}

	cmd := h.commands[h.index]
	if err := cmd.Undo(); err != nil {
		slog.Warn("undo failed",
			"user", userID,
			"command_id", cmd.ID,
			"error", err,
		)
		return nil, fmt.Errorf("undo failed: %w", err)
	}
	h.index--

	slog.Info("command undone",
		"user", userID,
		"command_id", cmd.ID,
		"description", cmd.Description,
	)
	return cmd, nil
}

// Redo re-executes the next undone command. A failed re-execution leaves
// the index unchanged.
func (m *CommandManager) Redo(userID string) (*model.Command, error) {
	h := m.history(userID)
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index >= len(h.commands)-1 {
		return nil, ErrNothingToRedo
	}

	cmd := h.commands[h.index+1]
	result, err := cmd.Execute()
	if err != nil {
		slog.Warn("redo failed",
			"user", userID,
			"command_id", cmd.ID,
			"error", err,
		)
		return nil, fmt.Errorf("redo failed: %w", err)
	}
	cmd.AfterState = result
	h.index++

	slog.Info("command redone",
		"user", userID,
		"command_id", cmd.ID,
		"description", cmd.Description,
	)
	return cmd, nil
}

// Status reports whether undo/redo are possible plus the recent commands
func (m *CommandManager) Status(userID string, recent int) CommandStatus {
	h := m.history(userID)
	h.mu.Lock()
	defer h.mu.Unlock()

	status := CommandStatus{
		CanUndo:     h.index >= 0,
		CanRedo:     h.index < len(h.commands)-1,
		HistorySize: len(h.commands),
	}

	if recent <= 0 || recent > len(h.commands) {
		recent = len(h.commands)
	}
	for i := len(h.commands) - recent; i < len(h.commands); i++ {
		status.RecentCommands = append(status.RecentCommands, h.commands[i].Descriptor())
	}
	return status
}

// History returns up to limit most recent command descriptors, oldest first
func (m *CommandManager) History(userID string, limit int) []model.CommandDescriptor {
	h := m.history(userID)
	h.mu.Lock()
	defer h.mu.Unlock()

	if limit <= 0 || limit > len(h.commands) {
		limit = len(h.commands)
	}
	out := make([]model.CommandDescriptor, 0, limit)
	for i := len(h.commands) - limit; i < len(h.commands); i++ {
		out = append(out, h.commands[i].Descriptor())
	}
	return out
}

// ClearHistory drops all state for a user
func (m *CommandManager) ClearHistory(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, userID)
}
