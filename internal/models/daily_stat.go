package models

import "github.com/shopspring/decimal"

// DailyStat aggregates one calendar date. The collection is keyed by ISO date.
type DailyStat struct {
	Completions decimal.Decimal `json:"completions"`
	Violations  int             `json:"violations"`
}

type DailyStats map[string]DailyStat
