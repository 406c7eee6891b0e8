package domain

import (
	"strings"
	"time"
)

// Event is one row of the append-only interaction log: a single search/chat
// request. Events are read-only inputs; the core never mutates or deletes
// them.
type Event struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subject_id"`
	IPAddress string    `json:"ip_address"`
	ThreadID  *string   `json:"thread_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsRoot reports whether the event opens a conversation: it has no thread
// reference, or the reference points at the event itself.
func (e *Event) IsRoot() bool {
	return e.ThreadID == nil || *e.ThreadID == e.ID
}

// IsGuest reports whether the event was issued by a guest subject, identified
// by the subject id prefix convention.
func (e *Event) IsGuest(guestPrefix string) bool {
	return strings.HasPrefix(e.SubjectID, guestPrefix)
}
