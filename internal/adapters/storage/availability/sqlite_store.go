package availability

import (
	"context"

	"gymhub/internal/adapters/storage"
	domain "gymhub/internal/domain/availability"
)

// dayOrder sorts stored day names monday first.
const dayOrder = `CASE day
	WHEN 'monday' THEN 0 WHEN 'tuesday' THEN 1 WHEN 'wednesday' THEN 2
	WHEN 'thursday' THEN 3 WHEN 'friday' THEN 4 WHEN 'saturday' THEN 5
	ELSE 6 END`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new availability store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List returns slots in weekly order, optionally for one trainer.
// PRE: none
// POST: Returns matching slots (empty slice when none)
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Slot, error) {
	query := "SELECT id, trainer_id, day, start_time, end_time FROM availability"
	var args []any
	if filter.TrainerID != "" {
		query += " WHERE trainer_id = ?"
		args = append(args, filter.TrainerID)
	}
	query += " ORDER BY " + dayOrder + ", start_time, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Slot{}
	for rows.Next() {
		var slot domain.Slot
		if err := rows.Scan(&slot.ID, &slot.TrainerID, &slot.Day, &slot.StartTime, &slot.EndTime); err != nil {
			return nil, err
		}
		results = append(results, slot)
	}
	return results, rows.Err()
}

// Save persists a slot (insert or update).
// PRE: value has been validated
// POST: slot is persisted
func (s *SQLiteStore) Save(ctx context.Context, value domain.Slot) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO availability (id, trainer_id, day, start_time, end_time)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET day=excluded.day, start_time=excluded.start_time, end_time=excluded.end_time`,
		value.ID, value.TrainerID, value.Day, value.StartTime, value.EndTime,
	)
	return err
}
