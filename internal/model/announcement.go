package model

import "time"

// Announcement is a notice shown on one page of the public site. Order is
// dense within Page.
type Announcement struct {
	ID        string     `json:"id" bson:"_id"`
	Page      string     `json:"page" bson:"page"`
	Order     int        `json:"order" bson:"order"`
	IsActive  bool       `json:"is_active" bson:"is_active"`
	Title     Text       `json:"title" bson:"title"`
	Content   Text       `json:"content" bson:"content"`
	LinkURL   string     `json:"link_url,omitempty" bson:"link_url,omitempty"`
	StartsAt  *time.Time `json:"starts_at,omitempty" bson:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty" bson:"ends_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// VisibleAt reports whether the announcement is active and inside its window.
func (a *Announcement) VisibleAt(now time.Time) bool {
	if !a.IsActive {
		return false
	}
	if a.StartsAt != nil && now.Before(*a.StartsAt) {
		return false
	}
	if a.EndsAt != nil && !now.Before(*a.EndsAt) {
		return false
	}
	return true
}
