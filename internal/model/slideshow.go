package model

import "time"

// Slideshow is an ordered collection of slides shown in one section of one
// page of the public site.
type Slideshow struct {
	ID         string    `json:"id" bson:"_id"`
	Page       string    `json:"page" bson:"page"`
	Section    string    `json:"section" bson:"section"`
	Title      Text      `json:"title" bson:"title"`
	IntervalMS int       `json:"interval_ms" bson:"interval_ms"`
	Autoplay   bool      `json:"autoplay" bson:"autoplay"`
	IsActive   bool      `json:"is_active" bson:"is_active"`
	SlideCount int       `json:"slide_count" bson:"-"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// Display duration bounds shared by slide durations and slideshow intervals.
const (
	MinDurationMS     = 1000
	MaxDurationMS     = 30000
	DefaultDurationMS = 5000
)

// ClampDuration normalizes a display duration into [MinDurationMS, MaxDurationMS].
// Zero means "not set" and yields the default.
func ClampDuration(ms int) int {
	switch {
	case ms == 0:
		return DefaultDurationMS
	case ms < MinDurationMS:
		return MinDurationMS
	case ms > MaxDurationMS:
		return MaxDurationMS
	default:
		return ms
	}
}
