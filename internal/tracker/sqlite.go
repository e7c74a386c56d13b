package tracker

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/taskscout/taskscout/models"
	"github.com/taskscout/taskscout/types"
)

// Store is the local issue store backed by SQLite. It acts as both a
// snapshot source and a write target for generated subtasks, so a project
// can run without any remote tracker.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and if needed creates) the store at path. Pass
// ":memory:" for an ephemeral store.
func OpenStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// SQLite allows one writer, and a :memory: database is private to its
	// connection. A single pooled connection avoids both surprises.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		labels TEXT NOT NULL DEFAULT '[]',      -- JSON array
		assignees TEXT NOT NULL DEFAULT '[]',   -- JSON array
		milestone_title TEXT,
		milestone_due TEXT,                     -- RFC3339, nullable
		comments INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS roster (
		username TEXT PRIMARY KEY
	);

	CREATE INDEX IF NOT EXISTS idx_items_updated ON items(updated_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle so companion stores (such as the policy
// audit trail) can share the same database file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// FetchItems returns every stored item ordered by identifier.
func (s *Store) FetchItems(ctx context.Context) ([]models.WorkItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, body, labels, assignees, milestone_title, milestone_due, comments, created_at, updated_at
		FROM items ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []models.WorkItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// FetchRoster returns the stored team roster in username order.
func (s *Store) FetchRoster(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT username FROM roster ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var roster []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("scan roster: %w", err)
		}
		roster = append(roster, username)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster: %w", err)
	}
	return roster, nil
}

// CreateItem inserts a new tracker item and returns its reference.
func (s *Store) CreateItem(ctx context.Context, item NewItem) (ItemRef, error) {
	labelsJSON, err := json.Marshal(item.Labels)
	if err != nil {
		return ItemRef{}, fmt.Errorf("marshal labels: %w", err)
	}
	assignees := []string{}
	if item.Assignee != "" {
		assignees = append(assignees, item.Assignee)
	}
	assigneesJSON, err := json.Marshal(assignees)
	if err != nil {
		return ItemRef{}, fmt.Errorf("marshal assignees: %w", err)
	}

	var milestoneTitle sql.NullString
	if item.Milestone != "" {
		milestoneTitle = sql.NullString{String: item.Milestone, Valid: true}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO items (title, body, labels, assignees, milestone_title, comments, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)
	`, item.Title, item.Body, string(labelsJSON), string(assigneesJSON), milestoneTitle, now, now)
	if err != nil {
		return ItemRef{}, fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return ItemRef{}, fmt.Errorf("read insert id: %w", err)
	}
	return ItemRef{ID: strconv.FormatInt(id, 10), Title: item.Title}, nil
}

// AddChecklist appends a subtask checklist to the parent item body.
func (s *Store) AddChecklist(ctx context.Context, parentID int, refs []ItemRef) error {
	var body string
	err := s.db.QueryRowContext(ctx, "SELECT body FROM items WHERE id = ?", parentID).Scan(&body)
	if err == sql.ErrNoRows {
		return types.NewNotFound(parentID)
	}
	if err != nil {
		return fmt.Errorf("query parent item: %w", err)
	}

	body += checklistMarkdown(refs)
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx,
		"UPDATE items SET body = ?, updated_at = ? WHERE id = ?", body, now, parentID); err != nil {
		return fmt.Errorf("update parent item: %w", err)
	}
	return nil
}

// ImportSnapshot replaces the stored items and roster with the snapshot
// contents. Item identifiers are preserved.
func (s *Store) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM items"); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM roster"); err != nil {
		return fmt.Errorf("clear roster: %w", err)
	}

	for _, item := range snap.Items {
		labelsJSON, err := json.Marshal(item.Labels)
		if err != nil {
			return fmt.Errorf("marshal labels: %w", err)
		}
		assigneesJSON, err := json.Marshal(item.Assignees)
		if err != nil {
			return fmt.Errorf("marshal assignees: %w", err)
		}

		var milestoneTitle, milestoneDue sql.NullString
		if item.Milestone != nil {
			milestoneTitle = sql.NullString{String: item.Milestone.Title, Valid: true}
			if item.Milestone.DueDate != nil {
				milestoneDue = sql.NullString{String: item.Milestone.DueDate.UTC().Format(time.RFC3339), Valid: true}
			}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO items (id, title, body, labels, assignees, milestone_title, milestone_due, comments, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, item.ID, item.Title, item.Body, string(labelsJSON), string(assigneesJSON),
			milestoneTitle, milestoneDue, item.Comments,
			item.CreatedAt.UTC().Format(time.RFC3339), item.UpdatedAt.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("insert item %d: %w", item.ID, err)
		}
	}

	for _, username := range snap.Roster {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO roster (username) VALUES (?)", username); err != nil {
			return fmt.Errorf("insert roster member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ExportSnapshot reads the full store contents as a snapshot document.
func (s *Store) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	items, err := s.FetchItems(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	roster, err := s.FetchRoster(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Items: items, Roster: roster}, nil
}

func scanItem(rows *sql.Rows) (models.WorkItem, error) {
	var item models.WorkItem
	var labelsJSON, assigneesJSON string
	var milestoneTitle, milestoneDue sql.NullString
	var createdAt, updatedAt string

	if err := rows.Scan(&item.ID, &item.Title, &item.Body, &labelsJSON, &assigneesJSON,
		&milestoneTitle, &milestoneDue, &item.Comments, &createdAt, &updatedAt); err != nil {
		return models.WorkItem{}, fmt.Errorf("scan item: %w", err)
	}

	if err := json.Unmarshal([]byte(labelsJSON), &item.Labels); err != nil {
		return models.WorkItem{}, fmt.Errorf("unmarshal labels: %w", err)
	}
	if err := json.Unmarshal([]byte(assigneesJSON), &item.Assignees); err != nil {
		return models.WorkItem{}, fmt.Errorf("unmarshal assignees: %w", err)
	}

	if milestoneTitle.Valid {
		milestone := &models.Milestone{Title: milestoneTitle.String}
		if milestoneDue.Valid {
			due, err := time.Parse(time.RFC3339, milestoneDue.String)
			if err != nil {
				return models.WorkItem{}, fmt.Errorf("parse milestone due date: %w", err)
			}
			milestone.DueDate = &due
		}
		item.Milestone = milestone
	}

	item.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	item.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return item, nil
}
