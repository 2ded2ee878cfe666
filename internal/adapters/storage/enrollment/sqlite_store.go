package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gymhub/internal/adapters/storage"
	domain "gymhub/internal/domain/enrollment"
	"gymhub/internal/domain/gymclass"
)

const selectRecord = `SELECT e.id, e.member_id, e.class_id, COALESCE(a.display_name, ''), e.created_at
	FROM enrollment e
	LEFT JOIN account a ON a.id = e.member_id`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new enrollment store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create inserts an enrollment if the member is not yet enrolled and the class has room.
// PRE: record has been validated
// POST: on success the record is stored and the remaining spots are returned
// INVARIANT: enrolled count never exceeds max_capacity; one record per (member, class)
func (s *SQLiteStore) Create(ctx context.Context, record domain.Record) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	capacity, enrolled, err := classLoad(ctx, tx, record.ClassID)
	if err != nil {
		return 0, err
	}

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM enrollment WHERE member_id = ? AND class_id = ?",
		record.MemberID, record.ClassID,
	).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists > 0 {
		return gymclass.ClampAvailable(capacity-enrolled, capacity), domain.ErrAlreadyEnrolled
	}
	if enrolled >= capacity {
		return 0, domain.ErrClassFull
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO enrollment (id, member_id, class_id, created_at) VALUES (?, ?, ?, ?)",
		record.ID, record.MemberID, record.ClassID, storage.FormatTime(record.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert enrollment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return gymclass.ClampAvailable(capacity-enrolled-1, capacity), nil
}

// Delete removes the member's enrollment in the class.
// PRE: memberID and classID are non-empty
// POST: on success the record is gone and the remaining spots are returned;
// ErrNotEnrolled when no record existed
func (s *SQLiteStore) Delete(ctx context.Context, memberID, classID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	capacity, enrolled, err := classLoad(ctx, tx, classID)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		"DELETE FROM enrollment WHERE member_id = ? AND class_id = ?", memberID, classID)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return gymclass.ClampAvailable(capacity-enrolled, capacity), domain.ErrNotEnrolled
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return gymclass.ClampAvailable(capacity-enrolled+1, capacity), nil
}

// ListByClass returns the class roster in enrollment order.
// PRE: classID is non-empty
// POST: MemberName is empty for members without an account row
func (s *SQLiteStore) ListByClass(ctx context.Context, classID string) ([]domain.Record, error) {
	return s.list(ctx, selectRecord+" WHERE e.class_id = ? ORDER BY e.created_at, e.id", classID)
}

// ListByMember returns every enrollment held by the member.
// PRE: memberID is non-empty
// POST: Returns records ordered by enrollment time
func (s *SQLiteStore) ListByMember(ctx context.Context, memberID string) ([]domain.Record, error) {
	return s.list(ctx, selectRecord+" WHERE e.member_id = ? ORDER BY e.created_at, e.id", memberID)
}

func (s *SQLiteStore) list(ctx context.Context, query, arg string) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Record{}
	for rows.Next() {
		var r domain.Record
		var createdAt string
		if err := rows.Scan(&r.ID, &r.MemberID, &r.ClassID, &r.MemberName, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = storage.ParseTime(createdAt)
		results = append(results, r)
	}
	return results, rows.Err()
}

// classLoad reads the capacity and current enrollment count inside tx.
func classLoad(ctx context.Context, tx *sql.Tx, classID string) (capacity, enrolled int, err error) {
	err = tx.QueryRowContext(ctx, "SELECT max_capacity FROM gym_class WHERE id = ?", classID).Scan(&capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, fmt.Errorf("%w: %s", ErrClassNotFound, classID)
	}
	if err != nil {
		return 0, 0, err
	}
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM enrollment WHERE class_id = ?", classID).Scan(&enrolled)
	return capacity, enrolled, err
}
