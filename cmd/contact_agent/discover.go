package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/contact-discovery/internal/db"
	"github.com/jonathan/contact-discovery/internal/observability"
	"github.com/jonathan/contact-discovery/internal/schemas"
	"github.com/jonathan/contact-discovery/internal/search"
	"github.com/jonathan/contact-discovery/internal/types"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover contacts for one or more websites",
	Long: "Runs the discovery pipeline over the given seed URLs, or over the sites a search query returns, " +
		"and writes the contacts as JSON, YAML or CSV.",
	Example: `  contact_agent discover --url https://example-biz.com
  contact_agent discover --url https://a.com --url https://b.com --out contacts.json
  contact_agent discover --query "acme plumbing berlin" --no-render
  contact_agent discover --url https://example-biz.com --format csv --out contacts.csv`,
	RunE: runDiscover,
}

var (
	discoverURLs     []string
	discoverQuery    string
	discoverLimit    int
	discoverOut      string
	discoverFormat   string
	discoverNoRender bool
	discoverSave     bool
)

func init() {
	discoverCmd.Flags().StringArrayVarP(&discoverURLs, "url", "u", nil, "Seed URL (repeatable)")
	discoverCmd.Flags().StringVarP(&discoverQuery, "query", "q", "", "Search query whose result sites are used as seeds")
	discoverCmd.Flags().IntVar(&discoverLimit, "limit", search.DefaultLimit, "Maximum sites taken from --query")
	discoverCmd.Flags().StringVarP(&discoverOut, "out", "o", "", "Output file (default stdout)")
	discoverCmd.Flags().StringVar(&discoverFormat, "format", "json", "Output format: json, yaml or csv")
	discoverCmd.Flags().BoolVar(&discoverNoRender, "no-render", false, "Never fall back to the headless browser")
	discoverCmd.Flags().BoolVar(&discoverSave, "save", false, "Store the run in the database")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	if len(discoverURLs) == 0 && discoverQuery == "" {
		return errors.New("at least one --url or --query is required")
	}
	switch discoverFormat {
	case "json", "yaml", "csv":
	default:
		return fmt.Errorf("unknown --format %q (want json, yaml or csv)", discoverFormat)
	}

	cfg, logger, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seeds := append([]string(nil), discoverURLs...)
	if discoverQuery != "" {
		source, err := search.NewGoogleSource(ctx, cfg.Google.APIKey, cfg.Google.CX)
		if err != nil {
			return err
		}
		found, err := source.Seeds(ctx, discoverQuery, discoverLimit)
		if err != nil {
			return err
		}
		logger.Info("discover: search seeds", zap.String("query", discoverQuery), zap.Strings("seeds", found))
		seeds = append(seeds, found...)
	}

	opts := appOptions{NoRender: discoverNoRender, RequireStore: discoverSave}
	var printer *observability.Printer
	if verbose {
		printer = observability.NewPrinter(os.Stderr)
		opts.OnProgress = printer.PrintProgress
	}

	a, err := newApp(ctx, cfg, logger, opts)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.pipeline.DiscoverContacts(ctx, seeds)
	if err != nil {
		return err
	}
	if result == nil {
		result = []types.NormalizedContact{}
	}

	resp := types.DiscoverResponse{Success: true, Contacts: result, Total: len(result)}
	if discoverSave {
		status := db.RunStatusCompleted
		if ctx.Err() != nil {
			status = db.RunStatusCanceled
		}
		runID, err := a.store.SaveDiscovery(context.WithoutCancel(ctx), seeds, result, status)
		if err != nil {
			return err
		}
		resp.RunID = runID.String()
	}

	data, err := encodeResponse(resp, discoverFormat)
	if err != nil {
		return err
	}
	if err := writeOutput(discoverOut, data); err != nil {
		return err
	}

	if printer != nil {
		printer.PrintContacts(result)
	}
	return nil
}

// encodeResponse validates resp against the contacts schema and renders it.
// YAML output keeps the JSON field names; CSV holds one row per contact.
func encodeResponse(resp types.DiscoverResponse, format string) ([]byte, error) {
	raw, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contacts: %w", err)
	}
	if err := schemas.ValidateContacts(raw); err != nil {
		return nil, fmt.Errorf("output failed schema validation: %w", err)
	}

	switch format {
	case "json":
		return append(raw, '\n'), nil
	case "yaml":
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to convert contacts: %w", err)
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal contacts to YAML: %w", err)
		}
		return out, nil
	case "csv":
		return encodeCSV(resp.Contacts)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

var csvHeader = []string{"type", "value", "sources", "confidence"}

// encodeCSV writes a header row then one row per contact. Sources are joined with ";".
func encodeCSV(contacts []types.NormalizedContact) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, c := range contacts {
		row := []string{
			string(c.Type),
			c.Value,
			strings.Join(c.Sources, ";"),
			strconv.FormatFloat(c.Confidence, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to marshal contacts to CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// writeOutput writes data to path, or to stdout when path is empty or "-"
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}
