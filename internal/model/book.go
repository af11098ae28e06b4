package model

import "time"

// Book is a title sold or lent by the society.
type Book struct {
	ID          int64      `json:"id"`
	Title       Text       `json:"title"`
	Author      Text       `json:"author"`
	Description string     `json:"description,omitempty"`
	ISBN        string     `json:"isbn,omitempty"`
	PricePaise  int64      `json:"price_paise"`
	Published   bool       `json:"published"`
	CoverMime   string     `json:"cover_mime,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}
