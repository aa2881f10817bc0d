package domain

import "time"

// CostEntry is one recorded cost for a trackable item. Consumed read-only.
type CostEntry struct {
	ID         string    `json:"id"`
	Cost       float64   `json:"cost"`
	RecordedAt time.Time `json:"recorded_at"`
}
