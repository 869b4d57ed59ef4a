package repositories

import (
	"context"

	"github.com/hx-hudson/Music-datbase/internal/models"
	"github.com/hx-hudson/Music-datbase/internal/shared"
)

// ArtistRepository persists [models.Artist] rows.
type ArtistRepository struct {
	base
}

// NewArtistRepository creates a new [ArtistRepository] bound to q.
func NewArtistRepository(q Querier, dialect shared.Dialect) *ArtistRepository {
	return &ArtistRepository{base{q: q, dialect: dialect}}
}

// GetOrCreate returns the id of the artist called name, inserting it on first use.
func (r *ArtistRepository) GetOrCreate(ctx context.Context, name string) (int64, error) {
	artist := &models.Artist{Name: name}
	if err := artist.Validate(); err != nil {
		return 0, err
	}

	if err := r.exec(ctx, `INSERT INTO artists (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name); err != nil {
		return 0, storageErr("upsert artist", err)
	}

	id, found, err := r.Find(ctx, name)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, storageErr("upsert artist", errMissingAfterUpsert)
	}
	return id, nil
}

// Find looks up an artist by exact name.
func (r *ArtistRepository) Find(ctx context.Context, name string) (int64, bool, error) {
	id, found, err := r.findID(ctx, `SELECT id FROM artists WHERE name = ?`, name)
	if err != nil {
		return 0, false, storageErr("query artist", err)
	}
	return id, found, nil
}
