package repositories

import (
	"time"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
)

// History is the session-scoped submission log, newest first.
//
// It is owned by the UI loop and is not safe for concurrent use.
type History struct {
	entries []models.HistoryEntry
	now     func() time.Time
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{now: time.Now}
}

// Record prepends an entry and returns it.
func (h *History) Record(prompt, status string) models.HistoryEntry {
	entry := models.HistoryEntry{
		ID:        shared.GenerateID(),
		Prompt:    prompt,
		Status:    status,
		CreatedAt: h.now(),
	}
	h.entries = append([]models.HistoryEntry{entry}, h.entries...)
	return entry
}

// Update sets the status of the entry with id. It reports whether the entry exists.
func (h *History) Update(id, status string) bool {
	for i := range h.entries {
		if h.entries[i].ID == id {
			h.entries[i].Status = status
			return true
		}
	}
	return false
}

// Entries returns a copy of the log, newest first.
func (h *History) Entries() []models.HistoryEntry {
	return append([]models.HistoryEntry(nil), h.entries...)
}

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }
