// Package types provides type definitions for structured data used throughout the contact-discovery system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ContactType tags a discovered contact
type ContactType string

const (
	ContactEmail     ContactType = "email"
	ContactPhone     ContactType = "phone"
	ContactSocial    ContactType = "social"
	ContactMessenger ContactType = "messenger"
)

// Valid reports whether t is one of the known contact types
func (t ContactType) Valid() bool {
	switch t {
	case ContactEmail, ContactPhone, ContactSocial, ContactMessenger:
		return true
	}
	return false
}

// Contact is a single raw occurrence produced by an extractor.
// Social and messenger values use the tagged form "platform: handle".
type Contact struct {
	Type      ContactType `json:"type"`
	Value     string      `json:"value"`
	SourceURL string      `json:"source_url"`
}

// Signals describes the context in which a contact occurrence was found
type Signals struct {
	InFooter       bool `json:"in_footer"`
	InHeader       bool `json:"in_header"`
	IsContactPage  bool `json:"is_contact_page"`
	HasContactIcon bool `json:"has_contact_icon"`
	FromJSONLD     bool `json:"from_json_ld"`
	URLDepth       int  `json:"url_depth"`
}

// NormalizedContact is the deduplicated output unit.
// Sources keeps first-seen order and holds no duplicates.
type NormalizedContact struct {
	Type       ContactType `json:"type"`
	Value      string      `json:"value"`
	Sources    []string    `json:"sources"`
	Confidence float64     `json:"confidence"`
}

// CandidateLink is a navigation link considered for a follow-up fetch
type CandidateLink struct {
	URL    string  `json:"url"`
	Text   string  `json:"text"`
	Depth  int     `json:"depth"`
	Weight float64 `json:"weight"`
}
