package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Text is a field carried in English and Tamil.
type Text struct {
	En string `json:"en" bson:"en"`
	Ta string `json:"ta" bson:"ta"`
}

// Normalize trims both locales and converts them to NFC so Tamil text typed
// with different input methods compares and stores the same way.
func (t Text) Normalize() Text {
	return Text{
		En: norm.NFC.String(strings.TrimSpace(t.En)),
		Ta: norm.NFC.String(strings.TrimSpace(t.Ta)),
	}
}

// IsEmpty reports whether neither locale has text.
func (t Text) IsEmpty() bool {
	return strings.TrimSpace(t.En) == "" && strings.TrimSpace(t.Ta) == ""
}

// WithSuffix appends suffix to every non-empty locale.
func (t Text) WithSuffix(suffix string) Text {
	if t.En != "" {
		t.En += suffix
	}
	if t.Ta != "" {
		t.Ta += suffix
	}
	return t
}
