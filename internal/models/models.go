// package models defines the data model for the music catalog and engagement store
package models

import (
	"fmt"
	"strings"

	"github.com/hx-hudson/Music-datbase/internal/shared"
)

// Model defines the base interface for all persistent catalog rows.
type Model interface {
	Validate() error // Validate checks if the model's data is valid and returns an error if not
}

// Artist is a performer. Names are unique and matched exactly.
type Artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (a *Artist) Validate() error {
	return requireName("artist name", a.Name)
}

// Genre is a style label. Names are unique and matched exactly.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (g *Genre) Validate() error {
	return requireName("genre name", g.Name)
}

// Song is a single when AlbumID is nil, otherwise an album track.
//
// (ArtistID, Title) is unique across singles and album tracks.
type Song struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ArtistID    int64  `json:"artist_id"`
	AlbumID     *int64 `json:"album_id,omitempty"`
	ReleaseDate Date   `json:"release_date"`
}

// IsSingle reports whether the song has no owning album.
func (s *Song) IsSingle() bool {
	return s.AlbumID == nil
}

func (s *Song) Validate() error {
	if err := requireName("song title", s.Title); err != nil {
		return err
	}
	if s.ArtistID == 0 {
		return fmt.Errorf("%w: song %q has no artist", shared.ErrInvalidInput, s.Title)
	}
	if s.ReleaseDate.IsZero() {
		return fmt.Errorf("%w: song %q has no release date", shared.ErrInvalidInput, s.Title)
	}
	return nil
}

// Album groups tracks under one artist and one genre.
type Album struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ArtistID    int64  `json:"artist_id"`
	ReleaseDate Date   `json:"release_date"`
	GenreID     int64  `json:"genre_id"`
}

func (a *Album) Validate() error {
	if err := requireName("album title", a.Title); err != nil {
		return err
	}
	if a.ArtistID == 0 || a.GenreID == 0 {
		return fmt.Errorf("%w: album %q needs an artist and a genre", shared.ErrInvalidInput, a.Title)
	}
	if a.ReleaseDate.IsZero() {
		return fmt.Errorf("%w: album %q has no release date", shared.ErrInvalidInput, a.Title)
	}
	return nil
}

// SongGenre associates a song with one of its genres.
type SongGenre struct {
	SongID  int64 `json:"song_id"`
	GenreID int64 `json:"genre_id"`
}

func (sg *SongGenre) Validate() error {
	if sg.SongID == 0 || sg.GenreID == 0 {
		return fmt.Errorf("%w: song genre needs both ids", shared.ErrInvalidInput)
	}
	return nil
}

// User is a listener, created only by the user loader.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (u *User) Validate() error {
	return requireName("username", u.Username)
}

// MinRating and MaxRating bound [Rating.Rating].
const (
	MinRating = 1
	MaxRating = 5
)

// Rating is a user's single score for a song.
type Rating struct {
	UserID     int64 `json:"user_id"`
	SongID     int64 `json:"song_id"`
	Rating     int   `json:"rating"`
	RatingDate Date  `json:"rating_date"`
}

// InRange reports whether r is an acceptable score.
func InRange(r int) bool {
	return r >= MinRating && r <= MaxRating
}

func (r *Rating) Validate() error {
	if r.UserID == 0 || r.SongID == 0 {
		return fmt.Errorf("%w: rating needs a user and a song", shared.ErrInvalidInput)
	}
	if !InRange(r.Rating) {
		return fmt.Errorf("%w: rating %d outside [%d,%d]", shared.ErrInvalidInput, r.Rating, MinRating, MaxRating)
	}
	if r.RatingDate.IsZero() {
		return fmt.Errorf("%w: rating has no date", shared.ErrInvalidInput)
	}
	return nil
}

func requireName(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", shared.ErrInvalidInput, field)
	}
	return nil
}
