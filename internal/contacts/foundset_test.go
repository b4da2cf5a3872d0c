package contacts

import (
	"testing"

	"github.com/jonathan/contact-discovery/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoundSet_DedupByFullTriple(t *testing.T) {
	s := NewFoundSet()

	c := types.Contact{Type: types.ContactEmail, Value: "info@acme.io", SourceURL: "https://acme.io"}
	assert.True(t, s.Add(c, 0.5))
	assert.False(t, s.Add(c, 0.4))

	// same value from another page is kept for provenance
	other := c
	other.SourceURL = "https://acme.io/contact"
	assert.True(t, s.Add(other, 0.6))

	// same value with different case is a different raw triple
	upper := c
	upper.Value = "INFO@acme.io"
	assert.True(t, s.Add(upper, 0.6))

	assert.Equal(t, 3, s.Len())
}

func TestFoundSet_KeepsMaxConfidenceAndOrder(t *testing.T) {
	s := NewFoundSet()
	a := types.Contact{Type: types.ContactPhone, Value: "+1 555 010 9999", SourceURL: "https://a.test"}
	b := types.Contact{Type: types.ContactSocial, Value: "x: acme", SourceURL: "https://a.test"}

	s.Add(a, 0.5)
	s.Add(b, 0.7)
	s.Add(a, 0.9)
	s.Add(a, 0.6)

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, a, entries[0].Contact)
	assert.Equal(t, 0.9, entries[0].Confidence)
	assert.Equal(t, b, entries[1].Contact)
}

func TestFoundSet_Merge(t *testing.T) {
	dst := NewFoundSet()
	dst.Add(types.Contact{Type: types.ContactEmail, Value: "a@acme.io", SourceURL: "https://a.test"}, 0.5)

	src := NewFoundSet()
	src.Add(types.Contact{Type: types.ContactEmail, Value: "a@acme.io", SourceURL: "https://a.test"}, 0.8)
	src.Add(types.Contact{Type: types.ContactEmail, Value: "b@acme.io", SourceURL: "https://a.test"}, 0.8)

	assert.Equal(t, 1, dst.Merge(src))
	assert.Equal(t, 0, dst.Merge(nil))

	entries := dst.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, 0.8, entries[0].Confidence)
	assert.Equal(t, "b@acme.io", entries[1].Contact.Value)
}

func TestFoundSet_EntriesIsACopy(t *testing.T) {
	s := NewFoundSet()
	s.Add(types.Contact{Type: types.ContactEmail, Value: "a@acme.io", SourceURL: "https://a.test"}, 0.5)

	entries := s.Entries()
	entries[0].Confidence = 0

	assert.Equal(t, 0.5, s.Entries()[0].Confidence)
}
