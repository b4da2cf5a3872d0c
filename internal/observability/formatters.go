// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/contact-discovery/internal/discovery"
	"github.com/jonathan/contact-discovery/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxSourcesToShow is how many source URLs are listed per contact
	maxSourcesToShow = 2
)

// typeOrder is the section order used by PrintContacts
var typeOrder = []types.ContactType{
	types.ContactEmail, types.ContactPhone, types.ContactSocial, types.ContactMessenger,
}

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		// Truncate long lines
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintContacts outputs the discovered contacts grouped by type.
func (p *Printer) PrintContacts(contacts []types.NormalizedContact) {
	var sb strings.Builder

	if len(contacts) == 0 {
		sb.WriteString("No contacts found.\n")
	}

	for _, t := range typeOrder {
		var group []types.NormalizedContact
		for _, c := range contacts {
			if c.Type == t {
				group = append(group, c)
			}
		}
		if len(group) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("%s (%d):\n", strings.ToUpper(string(t)), len(group)))
		for _, c := range group {
			sb.WriteString(fmt.Sprintf("  • %s  [%.2f]\n", c.Value, c.Confidence))
			count := min(len(c.Sources), maxSourcesToShow)
			for _, src := range c.Sources[:count] {
				sb.WriteString(fmt.Sprintf("      %s\n", src))
			}
			if len(c.Sources) > maxSourcesToShow {
				sb.WriteString(fmt.Sprintf("      ... and %d more\n", len(c.Sources)-maxSourcesToShow))
			}
		}
		sb.WriteString("\n")
	}

	p.printBox(fmt.Sprintf("DISCOVERED CONTACTS (%d)", len(contacts)), sb.String())
}

// PrintProgress outputs a one-line progress update.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(event discovery.ProgressEvent) {
	tier := ""
	if event.Tier != "" {
		tier = fmt.Sprintf(" (%s)", event.Tier)
	}
	fmt.Fprintf(p.out, "[%s]%s %s: %d found so far\n", event.Phase, tier, event.Message, event.Found)
}
