package repositories

import (
	"context"

	"github.com/hx-hudson/Music-datbase/internal/models"
	"github.com/hx-hudson/Music-datbase/internal/shared"
)

// RatingRepository persists [models.Rating] rows.
type RatingRepository struct {
	base
}

func NewRatingRepository(q Querier, dialect shared.Dialect) *RatingRepository {
	return &RatingRepository{base{q: q, dialect: dialect}}
}

// Exists reports whether the user has already rated the song.
func (r *RatingRepository) Exists(ctx context.Context, userID, songID int64) (bool, error) {
	_, found, err := r.findID(ctx, `SELECT user_id FROM ratings WHERE user_id = ? AND song_id = ?`, userID, songID)
	if err != nil {
		return false, storageErr("query rating", err)
	}
	return found, nil
}

// Create inserts rating. The caller validates range and uniqueness first.
func (r *RatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	if err := rating.Validate(); err != nil {
		return err
	}

	query := `INSERT INTO ratings (user_id, song_id, rating, rating_date) VALUES (?, ?, ?, ?)`
	if err := r.exec(ctx, query, rating.UserID, rating.SongID, rating.Rating, rating.RatingDate); err != nil {
		return storageErr("insert rating", err)
	}
	return nil
}
