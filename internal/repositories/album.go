package repositories

import (
	"context"

	"github.com/hx-hudson/Music-datbase/internal/models"
	"github.com/hx-hudson/Music-datbase/internal/shared"
)

// AlbumRepository persists [models.Album] rows.
type AlbumRepository struct {
	base
}

func NewAlbumRepository(q Querier, dialect shared.Dialect) *AlbumRepository {
	return &AlbumRepository{base{q: q, dialect: dialect}}
}

// Find looks up an album by artist and exact title.
func (r *AlbumRepository) Find(ctx context.Context, artistID int64, title string) (int64, bool, error) {
	id, found, err := r.findID(ctx, `SELECT id FROM albums WHERE artist_id = ? AND title = ?`, artistID, title)
	if err != nil {
		return 0, false, storageErr("query album", err)
	}
	return id, found, nil
}

// Create inserts album and sets its ID. The caller checks (artist, title) uniqueness first.
func (r *AlbumRepository) Create(ctx context.Context, album *models.Album) error {
	if err := album.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO albums (title, artist_id, release_date, genre_id) VALUES (?, ?, ?, ?)
		RETURNING id
	`

	id, err := r.insertID(ctx, query, album.Title, album.ArtistID, album.ReleaseDate, album.GenreID)
	if err != nil {
		return storageErr("insert album", err)
	}

	album.ID = id
	return nil
}

// TrackCount returns how many songs belong to the album.
func (r *AlbumRepository) TrackCount(ctx context.Context, albumID int64) (int, error) {
	var n int
	if err := r.row(ctx, `SELECT COUNT(*) FROM songs WHERE album_id = ?`, albumID).Scan(&n); err != nil {
		return 0, storageErr("count album tracks", err)
	}
	return n, nil
}
