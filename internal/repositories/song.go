package repositories

import (
	"context"

	"github.com/hx-hudson/Music-datbase/internal/models"
	"github.com/hx-hudson/Music-datbase/internal/shared"
)

// SongRepository persists [models.Song] rows, singles and album tracks alike.
type SongRepository struct {
	base
}

func NewSongRepository(q Querier, dialect shared.Dialect) *SongRepository {
	return &SongRepository{base{q: q, dialect: dialect}}
}

// Find looks up a song by artist and exact title, regardless of album.
func (r *SongRepository) Find(ctx context.Context, artistID int64, title string) (int64, bool, error) {
	id, found, err := r.findID(ctx, `SELECT id FROM songs WHERE artist_id = ? AND title = ?`, artistID, title)
	if err != nil {
		return 0, false, storageErr("query song", err)
	}
	return id, found, nil
}

// Create inserts song and sets its ID. The caller checks (artist, title) uniqueness first.
func (r *SongRepository) Create(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO songs (title, artist_id, album_id, release_date) VALUES (?, ?, ?, ?)
		RETURNING id
	`

	id, err := r.insertID(ctx, query, song.Title, song.ArtistID, song.AlbumID, song.ReleaseDate)
	if err != nil {
		return storageErr("insert song", err)
	}

	song.ID = id
	return nil
}

// Get retrieves a song by id.
func (r *SongRepository) Get(ctx context.Context, id int64) (*models.Song, error) {
	query := `SELECT id, title, artist_id, album_id, release_date FROM songs WHERE id = ?`

	var song models.Song
	err := r.row(ctx, query, id).Scan(&song.ID, &song.Title, &song.ArtistID, &song.AlbumID, &song.ReleaseDate)
	if err != nil {
		return nil, storageErr("query song", err)
	}
	return &song, nil
}

// SongGenreRepository persists [models.SongGenre] pairs.
type SongGenreRepository struct {
	base
}

func NewSongGenreRepository(q Querier, dialect shared.Dialect) *SongGenreRepository {
	return &SongGenreRepository{base{q: q, dialect: dialect}}
}

// Create inserts the pair. Duplicate pairs fail; callers dedupe genre names per song.
func (r *SongGenreRepository) Create(ctx context.Context, sg *models.SongGenre) error {
	if err := sg.Validate(); err != nil {
		return err
	}
	if err := r.exec(ctx, `INSERT INTO song_genres (song_id, genre_id) VALUES (?, ?)`, sg.SongID, sg.GenreID); err != nil {
		return storageErr("insert song genre", err)
	}
	return nil
}

// GenreNames returns the genres of a song sorted by name.
func (r *SongGenreRepository) GenreNames(ctx context.Context, songID int64) ([]string, error) {
	query := `
		SELECT g.name FROM song_genres sg
		JOIN genres g ON g.id = sg.genre_id
		WHERE sg.song_id = ?
		ORDER BY g.name
	`

	rows, err := r.q.QueryContext(ctx, r.dialect.Rebind(query), songID)
	if err != nil {
		return nil, storageErr("query song genres", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, storageErr("scan song genre", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate song genres", err)
	}
	return names, nil
}
