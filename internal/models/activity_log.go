package models

import "time"

const ActivityViolation = "violation"

type ActivityLogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	TradeID   int64     `json:"tradeId,omitempty"`
	Date      string    `json:"date,omitempty"`
}
