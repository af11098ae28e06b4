package model

import "time"

// Slide is one entry of a slideshow. Order is dense within SlideshowID.
type Slide struct {
	ID          string    `json:"id" bson:"_id"`
	SlideshowID string    `json:"slideshow_id" bson:"slideshow_id"`
	Order       int       `json:"order" bson:"order"`
	IsActive    bool      `json:"is_active" bson:"is_active"`
	Title       Text      `json:"title" bson:"title"`
	Subtitle    Text      `json:"subtitle" bson:"subtitle"`
	ButtonText  Text      `json:"button_text" bson:"button_text"`
	ImageURL    string    `json:"image_url,omitempty" bson:"image_url,omitempty"`
	LinkURL     string    `json:"link_url,omitempty" bson:"link_url,omitempty"`
	DurationMS  int       `json:"duration_ms" bson:"duration_ms"`
	ImageMime   string    `json:"image_mime,omitempty" bson:"image_mime,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// SlideMove records a slide changing slideshows.
type SlideMove struct {
	ID              int64     `json:"id" bson:"-"`
	SlideID         string    `json:"slide_id" bson:"slide_id"`
	FromSlideshowID string    `json:"from_slideshow_id" bson:"from_slideshow_id"`
	ToSlideshowID   string    `json:"to_slideshow_id" bson:"to_slideshow_id"`
	FromOrder       int       `json:"from_order" bson:"from_order"`
	ToOrder         int       `json:"to_order" bson:"to_order"`
	MovedAt         time.Time `json:"moved_at" bson:"moved_at"`
	MovedBy         string    `json:"moved_by,omitempty" bson:"moved_by,omitempty"`
}
