package locker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gymhub/internal/adapters/storage"
	domain "gymhub/internal/domain/locker"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new locker store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// SaveLocker inserts or renumbers a locker.
// PRE: value has been validated
// POST: locker is persisted
func (s *SQLiteStore) SaveLocker(ctx context.Context, value domain.Locker) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO locker (id, number) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET number=excluded.number",
		value.ID, value.Number,
	)
	return err
}

// ListFree returns lockers without a current reservation, ordered by number.
// PRE: none
// POST: Returns free lockers (empty slice when none)
func (s *SQLiteStore) ListFree(ctx context.Context) ([]domain.Locker, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT l.id, l.number FROM locker l
		WHERE NOT EXISTS (SELECT 1 FROM locker_assignment a WHERE a.locker_id = l.id)
		ORDER BY l.number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Locker{}
	for rows.Next() {
		var l domain.Locker
		if err := rows.Scan(&l.ID, &l.Number); err != nil {
			return nil, err
		}
		results = append(results, l)
	}
	return results, rows.Err()
}

// GetAssignment returns the member's current reservation.
// PRE: memberID is non-empty
// POST: Returns the assignment or ErrNoAssignment
func (s *SQLiteStore) GetAssignment(ctx context.Context, memberID string) (domain.Assignment, error) {
	var a domain.Assignment
	var assignedAt string
	err := s.db.QueryRowContext(ctx, `SELECT a.id, a.member_id, a.locker_id, l.number, a.assigned_at
		FROM locker_assignment a JOIN locker l ON l.id = a.locker_id
		WHERE a.member_id = ?`, memberID,
	).Scan(&a.ID, &a.MemberID, &a.LockerID, &a.LockerNumber, &assignedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Assignment{}, domain.ErrNoAssignment
	}
	if err != nil {
		return domain.Assignment{}, err
	}
	a.AssignedAt, _ = storage.ParseTime(assignedAt)
	return a, nil
}

// Assign reserves a locker for a member.
// PRE: value has been validated
// POST: the reservation is stored and returned with the locker number filled in
// INVARIANT: a member holds at most one locker and a locker has at most one holder
func (s *SQLiteStore) Assign(ctx context.Context, value domain.Assignment) (domain.Assignment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Assignment{}, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, "SELECT number FROM locker WHERE id = ?", value.LockerID).Scan(&value.LockerNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Assignment{}, fmt.Errorf("%w: %s", domain.ErrLockerNotFound, value.LockerID)
	}
	if err != nil {
		return domain.Assignment{}, err
	}

	var held, taken int
	err = tx.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM locker_assignment WHERE member_id = ?),
		(SELECT COUNT(*) FROM locker_assignment WHERE locker_id = ?)`,
		value.MemberID, value.LockerID,
	).Scan(&held, &taken)
	if err != nil {
		return domain.Assignment{}, err
	}
	if held > 0 {
		return domain.Assignment{}, domain.ErrAlreadyAssigned
	}
	if taken > 0 {
		return domain.Assignment{}, domain.ErrLockerTaken
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO locker_assignment (id, member_id, locker_id, assigned_at) VALUES (?, ?, ?, ?)",
		value.ID, value.MemberID, value.LockerID, storage.FormatTime(value.AssignedAt),
	)
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("insert assignment: %w", err)
	}
	return value, tx.Commit()
}

// Release cancels the member's reservation of the locker.
// PRE: memberID and lockerID are non-empty
// POST: reservation removed; ErrNoAssignment when the member did not hold that locker
func (s *SQLiteStore) Release(ctx context.Context, memberID, lockerID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM locker_assignment WHERE member_id = ? AND locker_id = ?", memberID, lockerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNoAssignment
	}
	return nil
}
