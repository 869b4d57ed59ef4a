package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/hx-hudson/Music-datbase/internal/models"
	"github.com/hx-hudson/Music-datbase/internal/shared"
)

// resetOrder lists tables children first.
var resetOrder = []string{"ratings", "song_genres", "songs", "albums", "users", "genres", "artists"}

// Catalog is the handle to one catalog store.
//
// Writers are serialized by an in-process lock and each batch runs in a single
// transaction; readers use the pool directly and only see committed batches.
type Catalog struct {
	db      *sql.DB
	dialect shared.Dialect
	mu      sync.Mutex
}

// NewCatalog wraps an open, migrated database.
func NewCatalog(db *sql.DB, dialect shared.Dialect) *Catalog {
	return &Catalog{db: db, dialect: dialect}
}

// Open connects with the configured driver, applies the pool limits and runs migrations.
func Open(config shared.DatabaseConfig) (*Catalog, error) {
	dialect, err := shared.DialectFor(config.Driver)
	if err != nil {
		return nil, err
	}

	source := config.Source()
	db, err := shared.NewDatabase(config.Driver, source)
	if err != nil {
		return nil, err
	}

	if source != shared.MemoryPath && config.MaxOpenConns > 0 {
		shared.ConfigureDatabase(db, config.MaxOpenConns, config.MaxIdleConns)
	}

	if err := shared.RunMigrations(db, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return NewCatalog(db, dialect), nil
}

// DB returns the underlying pool for read-only queries.
func (c *Catalog) DB() *sql.DB { return c.db }

func (c *Catalog) Dialect() shared.Dialect { return c.dialect }

func (c *Catalog) Close() error {
	return c.db.Close()
}

// CatalogTx exposes one repository per table, all bound to the same transaction.
type CatalogTx struct {
	Artists    *ArtistRepository
	Genres     *GenreRepository
	Songs      *SongRepository
	Albums     *AlbumRepository
	SongGenres *SongGenreRepository
	Users      *UserRepository
	Ratings    *RatingRepository
}

func newCatalogTx(q Querier, dialect shared.Dialect) *CatalogTx {
	return &CatalogTx{
		Artists:    NewArtistRepository(q, dialect),
		Genres:     NewGenreRepository(q, dialect),
		Songs:      NewSongRepository(q, dialect),
		Albums:     NewAlbumRepository(q, dialect),
		SongGenres: NewSongGenreRepository(q, dialect),
		Users:      NewUserRepository(q, dialect),
		Ratings:    NewRatingRepository(q, dialect),
	}
}

// Batch runs fn inside one transaction while holding the writer lock.
//
// Everything fn writes is visible to its later reads and to nobody else until commit.
// A non-nil error from fn rolls the whole batch back and is returned unchanged.
func (c *Catalog) Batch(ctx context.Context, fn func(*CatalogTx) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin batch", err)
	}
	defer tx.Rollback()

	if err := fn(newCatalogTx(tx, c.dialect)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit batch", err)
	}
	return nil
}

// Reset deletes every row, children before parents. Safe on an empty store.
func (c *Catalog) Reset(ctx context.Context) error {
	return c.Batch(ctx, func(tx *CatalogTx) error {
		q := tx.Artists.q
		for _, table := range resetOrder {
			if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return storageErr("clear "+table, err)
			}
		}
		return nil
	})
}

// Stats returns row counts per table.
func (c *Catalog) Stats(ctx context.Context) (models.CatalogStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM artists),
			(SELECT COUNT(*) FROM genres),
			(SELECT COUNT(*) FROM songs),
			(SELECT COUNT(*) FROM albums),
			(SELECT COUNT(*) FROM song_genres),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM ratings)
	`

	var s models.CatalogStats
	err := c.db.QueryRowContext(ctx, query).Scan(
		&s.Artists, &s.Genres, &s.Songs, &s.Albums, &s.SongGenres, &s.Users, &s.Ratings,
	)
	if err != nil {
		return s, storageErr("count catalog rows", err)
	}
	return s, nil
}

// GetOrCreateArtist runs [ArtistRepository.GetOrCreate] in its own batch.
func (c *Catalog) GetOrCreateArtist(ctx context.Context, name string) (id int64, err error) {
	err = c.Batch(ctx, func(tx *CatalogTx) error {
		id, err = tx.Artists.GetOrCreate(ctx, name)
		return err
	})
	return id, err
}

// GetOrCreateGenre runs [GenreRepository.GetOrCreate] in its own batch.
func (c *Catalog) GetOrCreateGenre(ctx context.Context, name string) (id int64, err error) {
	err = c.Batch(ctx, func(tx *CatalogTx) error {
		id, err = tx.Genres.GetOrCreate(ctx, name)
		return err
	})
	return id, err
}

func (c *Catalog) FindArtist(ctx context.Context, name string) (int64, bool, error) {
	return NewArtistRepository(c.db, c.dialect).Find(ctx, name)
}

func (c *Catalog) FindSong(ctx context.Context, artistID int64, title string) (int64, bool, error) {
	return NewSongRepository(c.db, c.dialect).Find(ctx, artistID, title)
}

func (c *Catalog) FindAlbum(ctx context.Context, artistID int64, title string) (int64, bool, error) {
	return NewAlbumRepository(c.db, c.dialect).Find(ctx, artistID, title)
}

func (c *Catalog) FindUser(ctx context.Context, username string) (int64, bool, error) {
	return NewUserRepository(c.db, c.dialect).Find(ctx, username)
}
