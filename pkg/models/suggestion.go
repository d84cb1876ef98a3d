package models

import "time"

// Decision outcomes. Any other non-empty decision value is treated like a
// rejection: it closes the suggestion without touching the record store.
const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

// Suggestion is a proposed attribute change. It is immutable after creation
// except for the decision fields, which the merge engine sets exactly once.
type Suggestion struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	PersonID int64     `json:"person_id"`
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Date     time.Time `json:"date"`
	AdminID  *int64    `json:"admin_id,omitempty"`
	Decision *string   `json:"decision,omitempty"`
}

// IsDecided reports whether the suggestion has left the pending state.
func (s *Suggestion) IsDecided() bool {
	return s.Decision != nil
}

// Status returns "pending" or "decided" for the review surface.
func (s *Suggestion) Status() string {
	if s.IsDecided() {
		return "decided"
	}
	return "pending"
}
