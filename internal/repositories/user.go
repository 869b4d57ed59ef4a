package repositories

import (
	"context"

	"github.com/hx-hudson/Music-datbase/internal/models"
	"github.com/hx-hudson/Music-datbase/internal/shared"
)

// UserRepository persists [models.User] rows.
type UserRepository struct {
	base
}

// NewUserRepository creates a new [UserRepository] bound to q.
func NewUserRepository(q Querier, dialect shared.Dialect) *UserRepository {
	return &UserRepository{base{q: q, dialect: dialect}}
}

// Find looks up a user by exact username.
func (r *UserRepository) Find(ctx context.Context, username string) (int64, bool, error) {
	id, found, err := r.findID(ctx, `SELECT id FROM users WHERE username = ?`, username)
	if err != nil {
		return 0, false, storageErr("query user", err)
	}
	return id, found, nil
}

// Create inserts user and sets its ID. The caller checks username uniqueness first.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	id, err := r.insertID(ctx, `INSERT INTO users (username) VALUES (?) RETURNING id`, user.Username)
	if err != nil {
		return storageErr("insert user", err)
	}

	user.ID = id
	return nil
}
