package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driven"
)

// foodLogStore implements driven.FoodLogStore.
type foodLogStore struct {
	store *Store
}

var _ driven.FoodLogStore = (*foodLogStore)(nil)

// supersededBatch bounds the number of IN parameters per query.
const supersededBatch = 500

const entryColumns = `
	seq, id, user_id, logged_at_ns, recorded_at_ns, meal_label,
	nutrients, source_description, kind, COALESCE(supersedes, '')`

// Append stores a new entry and returns it with its sequence number.
func (s *foodLogStore) Append(ctx context.Context, entry domain.FoodLogEntry) (*domain.FoodLogEntry, error) {
	nutrients, err := json.Marshal(entry.Nutrients)
	if err != nil {
		return nil, fmt.Errorf("encoding nutrients: %w", err)
	}

	loggedAt, err := storedNanos("logged_at", entry.LoggedAt)
	if err != nil {
		return nil, err
	}
	recordedAt, err := storedNanos("recorded_at", entry.RecordedAt)
	if err != nil {
		return nil, err
	}
	var supersedes any
	if entry.Supersedes != "" {
		supersedes = entry.Supersedes
	}

	// The partial unique index on supersedes rejects a second supersession.
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO food_log_entries
			(id, user_id, logged_at_ns, recorded_at_ns, meal_label, nutrients, source_description, kind, supersedes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.UserID, loggedAt, recordedAt, entry.MealLabel,
		string(nutrients), entry.SourceDescription, string(entry.Kind), supersedes)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("saving food log entry: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading entry sequence: %w", err)
	}

	entry.Sequence = seq
	entry.LoggedAt = entry.LoggedAt.UTC()
	entry.RecordedAt = entry.RecordedAt.UTC()
	entry.Nutrients = entry.Nutrients.Clone()
	return &entry, nil
}

// Get retrieves an entry by ID for a user.
func (s *foodLogStore) Get(ctx context.Context, userID, id string) (*domain.FoodLogEntry, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM food_log_entries
		WHERE user_id = ? AND id = ?
	`, userID, id)
	return scanEntry(row)
}

// Range returns entries with LoggedAt in [start, end).
func (s *foodLogStore) Range(ctx context.Context, userID string, start, end time.Time) ([]domain.FoodLogEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM food_log_entries
		WHERE user_id = ? AND logged_at_ns >= ? AND logged_at_ns < ?
		ORDER BY logged_at_ns ASC, seq ASC
	`, userID, toNanos(start), toNanos(end))
	if err != nil {
		return nil, fmt.Errorf("querying food log: %w", err)
	}
	return scanEntries(rows)
}

// Recent returns up to limit entries, newest LoggedAt first.
func (s *foodLogStore) Recent(ctx context.Context, userID string, limit int) ([]domain.FoodLogEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM food_log_entries
		WHERE user_id = ?
		ORDER BY logged_at_ns DESC, seq DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent food log: %w", err)
	}
	return scanEntries(rows)
}

// Superseded maps each superseded ID in ids to the entry superseding it.
func (s *foodLogStore) Superseded(ctx context.Context, userID string, ids []string) (map[string]string, error) {
	result := make(map[string]string)
	for start := 0; start < len(ids); start += supersededBatch {
		end := min(start+supersededBatch, len(ids))
		batch := ids[start:end]

		args := make([]any, 0, len(batch)+1)
		args = append(args, userID)
		for _, id := range batch {
			args = append(args, id)
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")

		rows, err := s.store.db.QueryContext(ctx, `
			SELECT supersedes, id FROM food_log_entries
			WHERE user_id = ? AND supersedes IN (`+placeholders+`)
		`, args...)
		if err != nil {
			return nil, fmt.Errorf("querying superseded entries: %w", err)
		}
		for rows.Next() {
			var target, by string
			if err := rows.Scan(&target, &by); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning superseded entry: %w", err)
			}
			result[target] = by
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterating superseded entries: %w", err)
		}
	}
	return result, nil
}

func scanEntries(rows *sql.Rows) ([]domain.FoodLogEntry, error) {
	defer rows.Close()

	entries := make([]domain.FoodLogEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating food log: %w", err)
	}
	return entries, nil
}

func scanEntry(row rowScanner) (*domain.FoodLogEntry, error) {
	var (
		entry                domain.FoodLogEntry
		loggedNs, recordedNs int64
		nutrients, kind      string
	)
	err := row.Scan(&entry.Sequence, &entry.ID, &entry.UserID, &loggedNs, &recordedNs,
		&entry.MealLabel, &nutrients, &entry.SourceDescription, &kind, &entry.Supersedes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning food log entry: %w", err)
	}

	entry.LoggedAt = fromNanos(loggedNs)
	entry.RecordedAt = fromNanos(recordedNs)
	entry.Kind = domain.EntryKind(kind)
	if err := json.Unmarshal([]byte(nutrients), &entry.Nutrients); err != nil {
		return nil, fmt.Errorf("decoding nutrients: %w", err)
	}
	if entry.Nutrients == nil {
		entry.Nutrients = domain.NutrientVector{}
	}
	return &entry, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
