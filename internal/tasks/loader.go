package tasks

import (
	"context"

	"github.com/hx-hudson/Music-datbase/internal/models"
	"github.com/hx-hudson/Music-datbase/internal/repositories"
)

// LoadSingles inserts songs without an album.
//
// A record is rejected when its genre list is empty, when a name is blank or the
// date is missing, or when its artist already has a song with that title.
// Duplicate genre names within a record collapse to one.
func (l *Loader) LoadSingles(ctx context.Context, records []models.SingleRecord) (models.Rejections[models.SongKey], error) {
	rejected := models.NewRejections[models.SongKey]()

	err := l.run(ctx, PhaseSingles, len(records), func(tx *repositories.CatalogTx, b *batch) error {
		for i, rec := range records {
			key := rec.Key()
			l.step(b, i, key)

			if len(rec.Genres) == 0 {
				rejected.Add(key, models.ReasonNoGenres)
				continue
			}
			if !rec.Valid() {
				rejected.Add(key, models.ReasonInvalidRecord)
				continue
			}

			artistID, err := tx.Artists.GetOrCreate(ctx, rec.Artist)
			if err != nil {
				return err
			}

			_, exists, err := tx.Songs.Find(ctx, artistID, rec.Title)
			if err != nil {
				return err
			}
			if exists {
				rejected.Add(key, models.ReasonDuplicateSong)
				continue
			}

			song := &models.Song{Title: rec.Title, ArtistID: artistID, ReleaseDate: rec.ReleaseDate}
			if err := tx.Songs.Create(ctx, song); err != nil {
				return err
			}

			for _, name := range rec.DistinctGenres() {
				genreID, err := tx.Genres.GetOrCreate(ctx, name)
				if err != nil {
					return err
				}
				if err := tx.SongGenres.Create(ctx, &models.SongGenre{SongID: song.ID, GenreID: genreID}); err != nil {
					return err
				}
			}
			b.accepted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordRejections(l.recorder, PhaseSingles, rejected)
	return rejected, nil
}

// LoadAlbums inserts albums and their tracks.
//
// The artist and album genre are created even when the album turns out to be a
// duplicate. A duplicate album rejects the record with none of its tracks. A track
// whose title the artist already has is skipped without rejecting the album.
// Every inserted track gets the album's genre. A record with a blank name or a
// missing date is rejected before anything is created.
func (l *Loader) LoadAlbums(ctx context.Context, records []models.AlbumRecord) (models.Rejections[models.AlbumKey], error) {
	rejected := models.NewRejections[models.AlbumKey]()

	err := l.run(ctx, PhaseAlbums, len(records), func(tx *repositories.CatalogTx, b *batch) error {
		for i, rec := range records {
			key := rec.Key()
			l.step(b, i, key)

			if !rec.Valid() {
				rejected.Add(key, models.ReasonInvalidRecord)
				continue
			}

			artistID, err := tx.Artists.GetOrCreate(ctx, rec.Artist)
			if err != nil {
				return err
			}
			genreID, err := tx.Genres.GetOrCreate(ctx, rec.Genre)
			if err != nil {
				return err
			}

			_, exists, err := tx.Albums.Find(ctx, artistID, rec.Title)
			if err != nil {
				return err
			}
			if exists {
				rejected.Add(key, models.ReasonDuplicateAlbum)
				continue
			}

			album := &models.Album{Title: rec.Title, ArtistID: artistID, ReleaseDate: rec.ReleaseDate, GenreID: genreID}
			if err := tx.Albums.Create(ctx, album); err != nil {
				return err
			}

			for _, title := range rec.Tracks {
				_, exists, err := tx.Songs.Find(ctx, artistID, title)
				if err != nil {
					return err
				}
				if exists {
					b.skipped++
					continue
				}

				song := &models.Song{Title: title, ArtistID: artistID, AlbumID: &album.ID, ReleaseDate: rec.ReleaseDate}
				if err := tx.Songs.Create(ctx, song); err != nil {
					return err
				}
				if err := tx.SongGenres.Create(ctx, &models.SongGenre{SongID: song.ID, GenreID: genreID}); err != nil {
					return err
				}
			}
			b.accepted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordRejections(l.recorder, PhaseAlbums, rejected)
	return rejected, nil
}

// LoadUsers inserts listeners.
//
// A username is rejected when it is blank, was accepted earlier in the same call or already exists.
func (l *Loader) LoadUsers(ctx context.Context, usernames []string) (models.Rejections[string], error) {
	rejected := models.NewRejections[string]()

	err := l.run(ctx, PhaseUsers, len(usernames), func(tx *repositories.CatalogTx, b *batch) error {
		accepted := make(map[string]struct{}, len(usernames))

		for i, username := range usernames {
			l.step(b, i, username)

			if !models.ValidUsername(username) {
				rejected.Add(username, models.ReasonInvalidRecord)
				continue
			}
			if _, dup := accepted[username]; dup {
				rejected.Add(username, models.ReasonDuplicateInBatch)
				continue
			}

			_, exists, err := tx.Users.Find(ctx, username)
			if err != nil {
				return err
			}
			if exists {
				rejected.Add(username, models.ReasonUserExists)
				continue
			}

			if err := tx.Users.Create(ctx, &models.User{Username: username}); err != nil {
				return err
			}
			accepted[username] = struct{}{}
			b.accepted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordRejections(l.recorder, PhaseUsers, rejected)
	return rejected, nil
}

// LoadRatings inserts ratings.
//
// Checks run in order and the first failure decides the reason: user exists,
// artist exists, the artist has the song, rating within range, no prior rating
// by the user for the song. A rating passing all of them without a date is
// rejected as invalid.
func (l *Loader) LoadRatings(ctx context.Context, records []models.RatingRecord) (models.Rejections[models.RatingKey], error) {
	rejected := models.NewRejections[models.RatingKey]()

	err := l.run(ctx, PhaseRatings, len(records), func(tx *repositories.CatalogTx, b *batch) error {
		for i, rec := range records {
			key := rec.Key()
			l.step(b, i, key)

			reason, rating, err := resolveRating(ctx, tx, rec)
			if err != nil {
				return err
			}
			if reason != "" {
				rejected.Add(key, reason)
				continue
			}

			if err := tx.Ratings.Create(ctx, rating); err != nil {
				return err
			}
			b.accepted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordRejections(l.recorder, PhaseRatings, rejected)
	return rejected, nil
}

// resolveRating returns either a rejection reason or the rating to insert.
func resolveRating(ctx context.Context, tx *repositories.CatalogTx, rec models.RatingRecord) (models.Reason, *models.Rating, error) {
	userID, found, err := tx.Users.Find(ctx, rec.Username)
	if err != nil {
		return "", nil, err
	}
	if !found {
		return models.ReasonUnknownUser, nil, nil
	}

	artistID, found, err := tx.Artists.Find(ctx, rec.Artist)
	if err != nil {
		return "", nil, err
	}
	if !found {
		return models.ReasonUnknownArtist, nil, nil
	}

	songID, found, err := tx.Songs.Find(ctx, artistID, rec.Title)
	if err != nil {
		return "", nil, err
	}
	if !found {
		return models.ReasonUnknownSong, nil, nil
	}

	if !models.InRange(rec.Rating) {
		return models.ReasonRatingOutOfRange, nil, nil
	}

	rated, err := tx.Ratings.Exists(ctx, userID, songID)
	if err != nil {
		return "", nil, err
	}
	if rated {
		return models.ReasonDuplicateRating, nil, nil
	}
	if rec.Date.IsZero() {
		return models.ReasonInvalidRecord, nil, nil
	}

	return "", &models.Rating{UserID: userID, SongID: songID, Rating: rec.Rating, RatingDate: rec.Date}, nil
}
