package trainer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gymhub/internal/adapters/storage"
	domain "gymhub/internal/domain/trainer"
)

const selectTrainer = "SELECT id, account_id, name, bio FROM trainer"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new trainer store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Trainer by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Trainer, error) {
	return s.getOne(ctx, selectTrainer+" WHERE id = ?", id)
}

// GetByAccountID retrieves the Trainer linked to a login account.
// PRE: accountID is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByAccountID(ctx context.Context, accountID string) (domain.Trainer, error) {
	return s.getOne(ctx, selectTrainer+" WHERE account_id = ?", accountID)
}

func (s *SQLiteStore) getOne(ctx context.Context, query, arg string) (domain.Trainer, error) {
	var t domain.Trainer
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&t.ID, &t.AccountID, &t.Name, &t.Bio)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Trainer{}, fmt.Errorf("%w: %s", ErrNotFound, arg)
	}
	return t, err
}

// List returns all trainers ordered by name.
// PRE: none
// POST: Returns every trainer (empty slice when none)
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Trainer, error) {
	rows, err := s.db.QueryContext(ctx, selectTrainer+" ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Trainer{}
	for rows.Next() {
		var t domain.Trainer
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Name, &t.Bio); err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

// Save persists a Trainer (insert or update).
// PRE: entity has been validated and AccountID references an account
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Trainer) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO trainer (id, account_id, name, bio) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, bio=excluded.bio`,
		entity.ID, entity.AccountID, entity.Name, entity.Bio,
	)
	return err
}
