package policy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditStore persists policy decisions for later review. It shares the
// SQLite database of the local issue store, so the audit trail lives next
// to the items the decisions gated.
type AuditStore struct {
	db *sql.DB
}

// NewAuditStore prepares the decision table on an existing database handle.
func NewAuditStore(db *sql.DB) (*AuditStore, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS policy_decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		decision_id TEXT NOT NULL UNIQUE,
		policy_package TEXT NOT NULL,
		result TEXT NOT NULL,
		violations TEXT NOT NULL DEFAULT '[]',  -- JSON array
		warnings TEXT NOT NULL DEFAULT '[]',    -- JSON array
		input_json TEXT NOT NULL DEFAULT '{}',
		item_id INTEGER,
		evaluated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_policy_decisions_item ON policy_decisions(item_id);
	CREATE INDEX IF NOT EXISTS idx_policy_decisions_at ON policy_decisions(evaluated_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init policy audit schema: %w", err)
	}
	return &AuditStore{db: db}, nil
}

// SaveDecision persists a policy decision. A missing DecisionID or
// EvaluatedAt is filled in before the insert.
func (s *AuditStore) SaveDecision(ctx context.Context, decision *PolicyDecision) error {
	if decision == nil {
		return fmt.Errorf("decision is nil")
	}
	if decision.DecisionID == "" {
		decision.DecisionID = uuid.New().String()
	}
	if decision.EvaluatedAt.IsZero() {
		decision.EvaluatedAt = time.Now().UTC()
	}

	var itemID sql.NullInt64
	if decision.ItemID != 0 {
		itemID = sql.NullInt64{Int64: int64(decision.ItemID), Valid: true}
	}

	inputJSON := "{}"
	if decision.Input != nil {
		if data, err := json.Marshal(decision.Input); err == nil {
			inputJSON = string(data)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO policy_decisions (decision_id, policy_package, result, violations, warnings, input_json, item_id, evaluated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		decision.DecisionID,
		decision.PolicyPackage,
		decision.Result,
		marshalStrings(decision.Violations),
		marshalStrings(decision.Warnings),
		inputJSON,
		itemID,
		decision.EvaluatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert policy decision: %w", err)
	}
	return nil
}

// GetDecision retrieves a policy decision by its UUID.
func (s *AuditStore) GetDecision(ctx context.Context, decisionID string) (*PolicyDecision, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT decision_id, policy_package, result, violations, warnings, input_json, item_id, evaluated_at
		FROM policy_decisions
		WHERE decision_id = ?
	`, decisionID)

	decision, err := scanDecision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("decision not found: %s", decisionID)
	}
	return decision, err
}

// ListDecisionsOptions filters ListDecisions results.
type ListDecisionsOptions struct {
	ItemID int       // Only decisions about this work item (0 = all)
	Result string    // Only "allow" or "deny" decisions
	Since  time.Time // Only decisions evaluated at or after this time
	Limit  int       // Maximum number of results (0 = no limit)
}

// ListDecisions retrieves policy decisions newest first.
func (s *AuditStore) ListDecisions(ctx context.Context, opts ListDecisionsOptions) ([]*PolicyDecision, error) {
	query := `
		SELECT decision_id, policy_package, result, violations, warnings, input_json, item_id, evaluated_at
		FROM policy_decisions
		WHERE 1=1
	`
	args := []any{}

	if opts.ItemID != 0 {
		query += " AND item_id = ?"
		args = append(args, opts.ItemID)
	}
	if opts.Result != "" {
		query += " AND result = ?"
		args = append(args, opts.Result)
	}
	if !opts.Since.IsZero() {
		query += " AND evaluated_at >= ?"
		args = append(args, opts.Since.Format(time.RFC3339))
	}

	query += " ORDER BY evaluated_at DESC, id DESC"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query policy decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var decisions []*PolicyDecision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

// CountViolations returns the number of deny decisions since the given time.
func (s *AuditStore) CountViolations(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM policy_decisions WHERE result = 'deny' AND evaluated_at >= ?",
		since.Format(time.RFC3339),
	).Scan(&count)
	return count, err
}

// PruneOldDecisions removes decisions older than the given age and reports
// how many were deleted.
func (s *AuditStore) PruneOldDecisions(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM policy_decisions WHERE evaluated_at < ?",
		cutoff.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("prune old decisions: %w", err)
	}
	return result.RowsAffected()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row rowScanner) (*PolicyDecision, error) {
	var d PolicyDecision
	var violationsJSON, warningsJSON, inputJSON string
	var itemID sql.NullInt64
	var evaluatedAt string

	err := row.Scan(
		&d.DecisionID,
		&d.PolicyPackage,
		&d.Result,
		&violationsJSON,
		&warningsJSON,
		&inputJSON,
		&itemID,
		&evaluatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan policy decision: %w", err)
	}

	d.Violations = parseStrings(violationsJSON)
	d.Warnings = parseStrings(warningsJSON)
	if inputJSON != "" && inputJSON != "{}" {
		var input any
		if err := json.Unmarshal([]byte(inputJSON), &input); err == nil {
			d.Input = input
		}
	}
	if itemID.Valid {
		d.ItemID = int(itemID.Int64)
	}
	d.EvaluatedAt, _ = time.Parse(time.RFC3339, evaluatedAt)

	return &d, nil
}

func marshalStrings(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func parseStrings(encoded string) []string {
	if encoded == "" || encoded == "[]" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(encoded), &values); err != nil {
		return nil
	}
	return values
}
