package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Progress is the gamified completion counter.
type Progress struct {
	Completions decimal.Decimal `json:"completions"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
