package queries

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hx-hudson/Music-datbase/internal/models"
)

// TopProlificArtists ranks artists by singles released within years.
func (e *Engine) TopProlificArtists(ctx context.Context, n int, years models.YearRange) ([]models.ArtistCount, error) {
	out := []models.ArtistCount{}
	if n <= 0 || years.Empty() {
		return out, nil
	}

	query := fmt.Sprintf(`
		SELECT a.name, COUNT(*) AS num_singles
		FROM songs s
		JOIN artists a ON a.id = s.artist_id
		WHERE s.album_id IS NULL
		  AND %s BETWEEN ? AND ?
		GROUP BY a.id, a.name
		ORDER BY num_singles DESC, a.name COLLATE %s ASC
		LIMIT ?
	`, yearOf("s.release_date"), e.dialect.Collation())

	err := e.run(ctx, QueryTopProlificArtists, query, func(rows *sql.Rows) error {
		var row models.ArtistCount
		if err := rows.Scan(&row.Artist, &row.Count); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	}, years.From, years.To, n)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LastSingleYearArtists returns the artists whose most recent single came out in year, sorted by name.
func (e *Engine) LastSingleYearArtists(ctx context.Context, year int) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT a.name
		FROM songs s
		JOIN artists a ON a.id = s.artist_id
		WHERE s.album_id IS NULL
		GROUP BY a.id, a.name
		HAVING %s = ?
		ORDER BY a.name COLLATE %s ASC
	`, yearOf("MAX(s.release_date)"), e.dialect.Collation())

	return e.names(ctx, QueryLastSingleYearArtists, query, year)
}

// TopGenres ranks genres by how many songs carry them. A song with k genres counts once for each.
func (e *Engine) TopGenres(ctx context.Context, n int) ([]models.GenreCount, error) {
	out := []models.GenreCount{}
	if n <= 0 {
		return out, nil
	}

	query := fmt.Sprintf(`
		SELECT g.name, COUNT(*) AS num_songs
		FROM song_genres sg
		JOIN genres g ON g.id = sg.genre_id
		GROUP BY g.id, g.name
		ORDER BY num_songs DESC, g.name COLLATE %s ASC
		LIMIT ?
	`, e.dialect.Collation())

	err := e.run(ctx, QueryTopGenres, query, func(rows *sql.Rows) error {
		var row models.GenreCount
		if err := rows.Scan(&row.Genre, &row.Count); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	}, n)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AlbumAndSingleArtists returns the artists with at least one album and one single, sorted by name.
func (e *Engine) AlbumAndSingleArtists(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT a.name
		FROM artists a
		WHERE EXISTS (SELECT 1 FROM albums al WHERE al.artist_id = a.id)
		  AND EXISTS (SELECT 1 FROM songs s WHERE s.artist_id = a.id AND s.album_id IS NULL)
		ORDER BY a.name COLLATE %s ASC
	`, e.dialect.Collation())

	return e.names(ctx, QueryAlbumAndSingleArtists, query)
}

// TopRatedSongs ranks songs by ratings dated within years.
// Ties break on title, then on artist name.
func (e *Engine) TopRatedSongs(ctx context.Context, years models.YearRange, n int) ([]models.SongRatingCount, error) {
	out := []models.SongRatingCount{}
	if n <= 0 || years.Empty() {
		return out, nil
	}

	collation := e.dialect.Collation()
	query := fmt.Sprintf(`
		SELECT s.title, a.name, COUNT(*) AS num_ratings
		FROM ratings r
		JOIN songs s ON s.id = r.song_id
		JOIN artists a ON a.id = s.artist_id
		WHERE %s BETWEEN ? AND ?
		GROUP BY s.id, s.title, a.name
		ORDER BY num_ratings DESC, s.title COLLATE %s ASC, a.name COLLATE %s ASC
		LIMIT ?
	`, yearOf("r.rating_date"), collation, collation)

	err := e.run(ctx, QueryTopRatedSongs, query, func(rows *sql.Rows) error {
		var row models.SongRatingCount
		if err := rows.Scan(&row.Title, &row.Artist, &row.Count); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	}, years.From, years.To, n)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MostEngagedUsers ranks users by ratings dated within years.
func (e *Engine) MostEngagedUsers(ctx context.Context, years models.YearRange, n int) ([]models.UserCount, error) {
	out := []models.UserCount{}
	if n <= 0 || years.Empty() {
		return out, nil
	}

	query := fmt.Sprintf(`
		SELECT u.username, COUNT(*) AS num_rated
		FROM ratings r
		JOIN users u ON u.id = r.user_id
		WHERE %s BETWEEN ? AND ?
		GROUP BY u.id, u.username
		ORDER BY num_rated DESC, u.username COLLATE %s ASC
		LIMIT ?
	`, yearOf("r.rating_date"), e.dialect.Collation())

	err := e.run(ctx, QueryMostEngagedUsers, query, func(rows *sql.Rows) error {
		var row models.UserCount
		if err := rows.Scan(&row.Username, &row.Count); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	}, years.From, years.To, n)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) names(ctx context.Context, name, query string, args ...any) ([]string, error) {
	out := []string{}
	err := e.run(ctx, name, query, func(rows *sql.Rows) error {
		var s string
		if err := rows.Scan(&s); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	}, args...)
	if err != nil {
		return nil, err
	}
	return out, nil
}
