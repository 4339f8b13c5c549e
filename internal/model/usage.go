package model

import "time"

// UsageRecord is the lightweight analytics row written after a successful completion.
type UsageRecord struct {
	CreatedAt  time.Time
	ID         string
	Model      string
	Provider   string
	Subject    string
	Confidence float64
}
