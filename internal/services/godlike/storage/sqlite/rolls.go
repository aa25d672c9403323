package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// AppendRolls records each die value as its own row in one transaction.
func (s *Store) AppendRolls(ctx context.Context, userID string, values []int, rolledAt time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if len(values) == 0 {
		return nil
	}
	if rolledAt.IsZero() {
		rolledAt = time.Now()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO Rolls (UserID, RollValue, rolled_at) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare roll insert: %w", err)
		}
		defer stmt.Close()

		for _, value := range values {
			if _, err := stmt.ExecContext(ctx, userID, value, toMillis(rolledAt)); err != nil {
				return fmt.Errorf("append roll: %w", err)
			}
		}
		return nil
	})
}

// RollRecord is one logged die value.
type RollRecord struct {
	ID       int64
	UserID   string
	Value    int
	RolledAt time.Time
}

// ListRollsByUser returns the logged die values of one user, oldest first.
func (s *Store) ListRollsByUser(ctx context.Context, userID string) ([]RollRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT RollID, UserID, RollValue, rolled_at
		   FROM Rolls
		  WHERE UserID = ?
		  ORDER BY RollID ASC`,
		strings.TrimSpace(userID),
	)
	if err != nil {
		return nil, fmt.Errorf("list rolls: %w", err)
	}
	defer rows.Close()

	var records []RollRecord
	for rows.Next() {
		var record RollRecord
		var rolledAt int64
		if err := rows.Scan(&record.ID, &record.UserID, &record.Value, &rolledAt); err != nil {
			return nil, fmt.Errorf("list rolls: %w", err)
		}
		record.RolledAt = fromMillis(rolledAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rolls: %w", err)
	}
	return records, nil
}
