package domain

import (
	"fmt"
	"time"
)

// EditLogEntry is one timestamped audit record of an administrative edit.
// Entries are append-only; this package never removes or rewrites them.
type EditLogEntry struct {
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Changes   []string  `json:"changes" bson:"changes"`
}

// FieldChange describes a single field transition captured during an edit.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

func (c FieldChange) String() string {
	return fmt.Sprintf("%s: %s -> %s", c.Field, c.Old, c.New)
}

// NewEditLogEntry formats the given changes into one audit entry. Callers
// must not append an entry for an empty change list.
func NewEditLogEntry(now time.Time, changes []FieldChange) EditLogEntry {
	lines := make([]string, 0, len(changes))
	for _, c := range changes {
		lines = append(lines, c.String())
	}
	return EditLogEntry{Timestamp: now, Changes: lines}
}
