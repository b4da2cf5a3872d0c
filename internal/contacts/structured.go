package contacts

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/contact-discovery/internal/types"
	"github.com/kaptinlin/jsonrepair"
)

// maxJSONLDDepth guards recursion over structured-data graphs
const maxJSONLDDepth = 32

// StructuredExtractor reads JSON-LD blocks (schema.org Organization, Person, ContactPoint)
type StructuredExtractor struct {
	tables *Tables
}

// NewStructuredExtractor creates a StructuredExtractor over the given tables
func NewStructuredExtractor(tables *Tables) *StructuredExtractor {
	return &StructuredExtractor{tables: tables}
}

// Extract returns every contact found in the page's JSON-LD blocks.
// Malformed blocks are skipped; their ParseErrors are joined into the returned error.
func (e *StructuredExtractor) Extract(page *Page) ([]types.Contact, error) {
	var found []types.Contact
	var errs []error

	page.Doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		value, err := decodeJSONLD(raw)
		if err != nil {
			errs = append(errs, &ParseError{URL: page.URL, Message: "malformed JSON-LD block", Cause: err})
			return
		}
		v := &jsonLDVisitor{tables: e.tables, source: page.URL}
		v.visit(value, 0)
		found = append(found, v.found...)
	})

	return found, errors.Join(errs...)
}

// decodeJSONLD decodes a block, retrying once through jsonrepair
func decodeJSONLD(raw string) (any, error) {
	var value any
	err := json.Unmarshal([]byte(raw), &value)
	if err == nil {
		return value, nil
	}
	repaired, repairErr := jsonrepair.JSONRepair(raw)
	if repairErr != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(repaired), &value); err != nil {
		return nil, err
	}
	return value, nil
}

// jsonLDVisitor walks a decoded JSON value: objects, arrays and scalars
type jsonLDVisitor struct {
	tables *Tables
	source string
	found  []types.Contact
}

func (v *jsonLDVisitor) visit(node any, depth int) {
	if depth > maxJSONLDDepth {
		return
	}
	switch n := node.(type) {
	case map[string]any:
		v.visitObject(n, depth)
	case []any:
		for _, child := range n {
			v.visit(child, depth+1)
		}
	}
}

func (v *jsonLDVisitor) visitObject(obj map[string]any, depth int) {
	consumed := make(map[string]bool)

	if raw, ok := obj["email"]; ok {
		consumed["email"] = true
		for _, s := range scalarStrings(raw) {
			s = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(s, "mailto:"), "MAILTO:"))
			if s != "" {
				v.emit(types.ContactEmail, s)
			}
		}
	}

	if raw, ok := obj["telephone"]; ok {
		consumed["telephone"] = true
		for _, s := range scalarStrings(raw) {
			s = strings.TrimSpace(strings.TrimPrefix(s, "tel:"))
			if s != "" {
				v.emit(types.ContactPhone, s)
			}
		}
	}

	if raw, ok := obj["sameAs"]; ok {
		consumed["sameAs"] = true
		for _, s := range scalarStrings(raw) {
			if social, ok := v.tables.matchSocial(s); ok {
				v.emit(types.ContactSocial, social)
			}
		}
	}

	for _, key := range []string{"address", "contactPoint"} {
		if child, ok := obj[key]; ok {
			consumed[key] = true
			v.visit(child, depth+1)
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		if !consumed[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.visit(obj[k], depth+1)
	}
}

func (v *jsonLDVisitor) emit(t types.ContactType, value string) {
	v.found = append(v.found, types.Contact{Type: t, Value: value, SourceURL: v.source})
}

// scalarStrings flattens a string or a list of strings
func scalarStrings(node any) []string {
	switch n := node.(type) {
	case string:
		return []string{n}
	case []any:
		out := make([]string, 0, len(n))
		for _, el := range n {
			if s, ok := el.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
