package models

import "time"

// Rule is a user-defined trading guideline with a running violation counter.
type Rule struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags"`

	Violations    int     `json:"violations"`
	LastViolation *string `json:"lastViolation"`

	CreatedAt time.Time `json:"createdAt"`
}
