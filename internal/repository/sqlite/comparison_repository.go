package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"roomcompare/internal/model"
	"roomcompare/internal/repository"
)

// ComparisonRepository implements repository.ComparisonRepository for SQLite.
type ComparisonRepository struct {
	db *DB
}

// NewComparisonRepository creates a new SQLite comparison repository.
func NewComparisonRepository(db *DB) *ComparisonRepository {
	return &ComparisonRepository{db: db}
}

// Insert stores a comparison and its items in one transaction.
func (r *ComparisonRepository) Insert(c *model.Comparison) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO comparisons (session_id, created_at, clean_filename, messy_filename, duration_ms, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.SessionID, c.CreatedAt.UTC(), c.CleanFilename, c.MessyFilename, c.Duration.Milliseconds(), string(c.Status), c.Error)
	if err != nil {
		return 0, fmt.Errorf("failed to insert comparison: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	if len(c.Items) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO comparison_items (comparison_id, category, label, x1, y1, x2, y2)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return 0, fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, item := range c.Items {
			if _, err := stmt.Exec(id, item.Category.String(), item.Label, item.X1, item.Y1, item.X2, item.Y2); err != nil {
				return 0, fmt.Errorf("failed to insert comparison item: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return id, nil
}

// GetByID retrieves a comparison with its items. It returns nil, nil when absent.
func (r *ComparisonRepository) GetByID(id int64) (*model.Comparison, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	row := r.db.Conn().QueryRow(`
		SELECT id, session_id, created_at, clean_filename, messy_filename, duration_ms, status, error
		FROM comparisons WHERE id = ?
	`, id)

	c, err := scanComparison(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comparison: %w", err)
	}

	items, err := r.itemsFor(c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return c, nil
}

// List retrieves comparisons, newest first, including their items.
func (r *ComparisonRepository) List(filter *repository.ComparisonFilter) ([]model.Comparison, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := buildWhere(filter)
	query := `
		SELECT id, session_id, created_at, clean_filename, messy_filename, duration_ms, status, error
		FROM comparisons` + where + `
		ORDER BY created_at DESC, id DESC`

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparisons: %w", err)
	}

	var comparisons []model.Comparison
	for rows.Next() {
		c, err := scanComparison(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan comparison: %w", err)
		}
		comparisons = append(comparisons, *c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comparisons: %w", err)
	}

	// Items are loaded after the cursor is closed; the pool has a single connection.
	for i := range comparisons {
		items, err := r.itemsFor(comparisons[i].ID)
		if err != nil {
			return nil, err
		}
		comparisons[i].Items = items
	}

	return comparisons, nil
}

// Count returns the number of comparisons matching the filter (limit/offset ignored).
func (r *ComparisonRepository) Count(filter *repository.ComparisonFilter) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := buildWhere(filter)

	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM comparisons`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count comparisons: %w", err)
	}
	return count, nil
}

// LabelCounts returns the most frequent item labels of one session, or of
// all sessions when sessionID is empty.
func (r *ComparisonRepository) LabelCounts(sessionID string, limit int) (map[string]int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT i.label, COUNT(*) AS cnt
		FROM comparison_items i
		JOIN comparisons c ON c.id = i.comparison_id
		WHERE ? = '' OR c.session_id = ?
		GROUP BY i.label
		ORDER BY cnt DESC, i.label
		LIMIT ?
	`, sessionID, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query labels: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		counts[label] = count
	}
	return counts, rows.Err()
}

// DeleteOlderThan removes comparisons created before t and returns how many were removed.
func (r *ComparisonRepository) DeleteOlderThan(t time.Time) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM comparison_items
		WHERE comparison_id IN (SELECT id FROM comparisons WHERE created_at < ?)
	`, t.UTC()); err != nil {
		return 0, fmt.Errorf("failed to delete comparison items: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM comparisons WHERE created_at < ?`, t.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete comparisons: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result.RowsAffected()
}

// DeleteBySession removes the comparisons of one session and returns how many were removed.
func (r *ComparisonRepository) DeleteBySession(sessionID string) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM comparison_items
		WHERE comparison_id IN (SELECT id FROM comparisons WHERE session_id = ?)
	`, sessionID); err != nil {
		return 0, fmt.Errorf("failed to delete comparison items: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM comparisons WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete comparisons: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result.RowsAffected()
}

// DeleteAll removes every comparison.
func (r *ComparisonRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM comparison_items`); err != nil {
		return fmt.Errorf("failed to delete comparison items: %w", err)
	}
	if _, err := r.db.Conn().Exec(`DELETE FROM comparisons`); err != nil {
		return fmt.Errorf("failed to delete comparisons: %w", err)
	}
	return nil
}

// itemsFor loads the items of one comparison. Callers hold the lock.
func (r *ComparisonRepository) itemsFor(comparisonID int64) ([]model.ComparisonItem, error) {
	rows, err := r.db.Conn().Query(`
		SELECT id, comparison_id, category, label, x1, y1, x2, y2
		FROM comparison_items WHERE comparison_id = ? ORDER BY id
	`, comparisonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparison items: %w", err)
	}
	defer rows.Close()

	var items []model.ComparisonItem
	for rows.Next() {
		var item model.ComparisonItem
		var category string
		if err := rows.Scan(&item.ID, &item.ComparisonID, &category, &item.Label, &item.X1, &item.Y1, &item.X2, &item.Y2); err != nil {
			return nil, fmt.Errorf("failed to scan comparison item: %w", err)
		}
		item.Category, err = model.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanComparison(s scanner) (*model.Comparison, error) {
	var c model.Comparison
	var durationMS int64
	var status string
	if err := s.Scan(&c.ID, &c.SessionID, &c.CreatedAt, &c.CleanFilename, &c.MessyFilename, &durationMS, &status, &c.Error); err != nil {
		return nil, err
	}
	c.Duration = time.Duration(durationMS) * time.Millisecond
	c.Status = model.ComparisonStatus(status)
	return &c, nil
}

func buildWhere(filter *repository.ComparisonFilter) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}

	var conditions []string
	var args []interface{}

	if filter.SessionID != "" {
		conditions = append(conditions, "session_id = ?")
		args = append(args, filter.SessionID)
	}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}

	if !filter.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.Since.UTC())
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
