package repositories

import (
	"context"
	"errors"

	"github.com/hx-hudson/Music-datbase/internal/models"
	"github.com/hx-hudson/Music-datbase/internal/shared"
)

var errMissingAfterUpsert = errors.New("row missing after upsert")

// GenreRepository persists [models.Genre] rows.
type GenreRepository struct {
	base
}

func NewGenreRepository(q Querier, dialect shared.Dialect) *GenreRepository {
	return &GenreRepository{base{q: q, dialect: dialect}}
}

// GetOrCreate returns the id of the genre called name, inserting it on first use.
func (r *GenreRepository) GetOrCreate(ctx context.Context, name string) (int64, error) {
	genre := &models.Genre{Name: name}
	if err := genre.Validate(); err != nil {
		return 0, err
	}

	if err := r.exec(ctx, `INSERT INTO genres (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name); err != nil {
		return 0, storageErr("upsert genre", err)
	}

	id, found, err := r.Find(ctx, name)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, storageErr("upsert genre", errMissingAfterUpsert)
	}
	return id, nil
}

// Find looks up a genre by exact name.
func (r *GenreRepository) Find(ctx context.Context, name string) (int64, bool, error) {
	id, found, err := r.findID(ctx, `SELECT id FROM genres WHERE name = ?`, name)
	if err != nil {
		return 0, false, storageErr("query genre", err)
	}
	return id, found, nil
}
