package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/contact-discovery/internal/types"
)

// DefaultListLimit caps ListDiscoveries when no positive limit is given
const DefaultListLimit = 50

// SaveDiscovery stores a finished run and its contacts in one transaction and returns the run ID
func (db *DB) SaveDiscovery(ctx context.Context, seedURLs []string, contacts []types.NormalizedContact, status string) (uuid.UUID, error) {
	if status == "" {
		status = RunStatusCompleted
	}
	if seedURLs == nil {
		seedURLs = []string{}
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	runID := uuid.New()
	_, err = tx.Exec(ctx,
		`INSERT INTO discovery_runs (id, seed_urls, status, contact_count, completed_at)
		 VALUES ($1, $2, $3, $4, NOW())`,
		runID, seedURLs, status, len(contacts),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create discovery run: %w", err)
	}

	batch := &pgx.Batch{}
	for i, c := range contacts {
		batch.Queue(
			`INSERT INTO discovered_contacts (run_id, position, contact_type, value, sources, confidence)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			runID, i, string(c.Type), c.Value, c.Sources, c.Confidence,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return uuid.Nil, fmt.Errorf("failed to save discovered contacts: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit discovery: %w", err)
	}
	return runID, nil
}

// ListDiscoveries retrieves recent runs, newest first
func (db *DB) ListDiscoveries(ctx context.Context, limit int) ([]DiscoveryRun, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, seed_urls, status, contact_count, created_at, completed_at
		 FROM discovery_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list discoveries: %w", err)
	}
	defer rows.Close()

	runs := make([]DiscoveryRun, 0)
	for rows.Next() {
		var run DiscoveryRun
		if err := rows.Scan(&run.ID, &run.SeedURLs, &run.Status, &run.ContactCount, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan discovery run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list discoveries: %w", err)
	}
	return runs, nil
}

// GetDiscovery retrieves a run and its contacts. Returns nil when the run does not exist.
func (db *DB) GetDiscovery(ctx context.Context, runID uuid.UUID) (*Discovery, error) {
	var d Discovery
	err := db.pool.QueryRow(ctx,
		`SELECT id, seed_urls, status, contact_count, created_at, completed_at
		 FROM discovery_runs WHERE id = $1`,
		runID,
	).Scan(&d.ID, &d.SeedURLs, &d.Status, &d.ContactCount, &d.CreatedAt, &d.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get discovery: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT contact_type, value, sources, confidence
		 FROM discovered_contacts WHERE run_id = $1 ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get discovered contacts: %w", err)
	}
	defer rows.Close()

	d.Contacts = make([]types.NormalizedContact, 0, d.ContactCount)
	for rows.Next() {
		var c types.NormalizedContact
		var contactType string
		if err := rows.Scan(&contactType, &c.Value, &c.Sources, &c.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan discovered contact: %w", err)
		}
		c.Type = types.ContactType(contactType)
		d.Contacts = append(d.Contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get discovered contacts: %w", err)
	}
	return &d, nil
}
