package gymclass

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gymhub/internal/adapters/storage"
	domain "gymhub/internal/domain/gymclass"
)

const selectClass = `SELECT c.id, c.name, c.type, c.trainer_id, COALESCE(t.name, ''), c.starts_at,
	c.max_capacity, c.description,
	(SELECT COUNT(*) FROM enrollment e WHERE e.class_id = c.id)
	FROM gym_class c
	LEFT JOIN trainer t ON t.id = c.trainer_id`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new class store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Class by its ID.
// PRE: id is non-empty
// POST: Returns the entity with AvailableSpots derived from enrollments, or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Class, error) {
	row := s.db.QueryRowContext(ctx, selectClass+" WHERE c.id = ?", id)
	entity, err := scanClass(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Class{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return entity, err
}

// List retrieves classes ordered by start time.
// PRE: none
// POST: Returns matching classes (empty slice when none)
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Class, error) {
	query := selectClass
	var args []any
	if filter.TrainerID != "" {
		query += " WHERE c.trainer_id = ?"
		args = append(args, filter.TrainerID)
	}
	query += " ORDER BY c.starts_at, c.name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Class{}
	for rows.Next() {
		entity, err := scanClass(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Save persists a Class (insert or update). AvailableSpots is not stored.
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Class) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO gym_class (id, name, type, trainer_id, starts_at, max_capacity, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			type=excluded.type,
			trainer_id=excluded.trainer_id,
			starts_at=excluded.starts_at,
			max_capacity=excluded.max_capacity,
			description=excluded.description`,
		entity.ID,
		entity.Name,
		entity.Type,
		entity.TrainerID,
		storage.FormatTime(entity.StartsAt),
		entity.MaxCapacity,
		entity.Description,
	)
	return err
}

// scanClass extracts a Class from a row scanner function.
func scanClass(scan func(dest ...any) error) (domain.Class, error) {
	var entity domain.Class
	var startsAt string
	var enrolled int
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.Type,
		&entity.TrainerID,
		&entity.TrainerName,
		&startsAt,
		&entity.MaxCapacity,
		&entity.Description,
		&enrolled,
	)
	if err != nil {
		return domain.Class{}, err
	}
	entity.StartsAt, err = storage.ParseTime(startsAt)
	if err != nil {
		return domain.Class{}, fmt.Errorf("class %s: %w", entity.ID, err)
	}
	return entity.WithEnrolledCount(enrolled), nil
}
