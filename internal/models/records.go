package models

import (
	"cmp"
	"slices"
	"strings"
)

// SingleRecord is one input row for the singles loader.
type SingleRecord struct {
	Title       string   `json:"title" toml:"title"`
	Genres      []string `json:"genres" toml:"genres"`
	Artist      string   `json:"artist" toml:"artist"`
	ReleaseDate Date     `json:"release_date" toml:"release_date"`
}

func (r SingleRecord) Key() SongKey {
	return SongKey{Title: r.Title, Artist: r.Artist}
}

// DistinctGenres returns the genre names in first-seen order with duplicates collapsed.
func (r SingleRecord) DistinctGenres() []string {
	seen := make(map[string]struct{}, len(r.Genres))
	out := make([]string, 0, len(r.Genres))
	for _, g := range r.Genres {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

// Valid reports whether the title, artist and every genre name are non-blank and the date is set.
func (r SingleRecord) Valid() bool {
	if blank(r.Title) || blank(r.Artist) || r.ReleaseDate.IsZero() {
		return false
	}
	return !slices.ContainsFunc(r.Genres, blank)
}

// AlbumRecord is one input row for the albums loader.
type AlbumRecord struct {
	Title       string   `json:"title" toml:"title"`
	Genre       string   `json:"genre" toml:"genre"`
	Artist      string   `json:"artist" toml:"artist"`
	ReleaseDate Date     `json:"release_date" toml:"release_date"`
	Tracks      []string `json:"tracks" toml:"tracks"`
}

func (r AlbumRecord) Key() AlbumKey {
	return AlbumKey{Title: r.Title, Artist: r.Artist}
}

// Valid reports whether the title, artist, genre and every track title are non-blank and the date is set.
func (r AlbumRecord) Valid() bool {
	if blank(r.Title) || blank(r.Artist) || blank(r.Genre) || r.ReleaseDate.IsZero() {
		return false
	}
	return !slices.ContainsFunc(r.Tracks, blank)
}

// ValidUsername reports whether name can be stored as a username.
func ValidUsername(name string) bool {
	return !blank(name)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// RatingRecord is one input row for the ratings loader.
type RatingRecord struct {
	Username string `json:"username" toml:"username"`
	Artist   string `json:"artist" toml:"artist"`
	Title    string `json:"title" toml:"title"`
	Rating   int    `json:"rating" toml:"rating"`
	Date     Date   `json:"rating_date" toml:"rating_date"`
}

func (r RatingRecord) Key() RatingKey {
	return RatingKey{Username: r.Username, Artist: r.Artist, Title: r.Title}
}

// SongKey identifies a rejected single: (title, artist).
type SongKey struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

func (k SongKey) Compare(o SongKey) int {
	return cmp.Or(cmp.Compare(k.Artist, o.Artist), cmp.Compare(k.Title, o.Title))
}

// AlbumKey identifies a rejected album: (album title, artist).
type AlbumKey struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

func (k AlbumKey) Compare(o AlbumKey) int {
	return cmp.Or(cmp.Compare(k.Artist, o.Artist), cmp.Compare(k.Title, o.Title))
}

// RatingKey identifies a rejected rating: (username, artist, song title).
type RatingKey struct {
	Username string `json:"username"`
	Artist   string `json:"artist"`
	Title    string `json:"title"`
}

func (k RatingKey) Compare(o RatingKey) int {
	return cmp.Or(
		cmp.Compare(k.Username, o.Username),
		cmp.Compare(k.Artist, o.Artist),
		cmp.Compare(k.Title, o.Title),
	)
}

// Reason explains why a record was rejected.
type Reason string

const (
	ReasonNoGenres         Reason = "no_genres"
	ReasonDuplicateSong    Reason = "duplicate_song"
	ReasonDuplicateAlbum   Reason = "duplicate_album"
	ReasonDuplicateInBatch Reason = "duplicate_in_batch"
	ReasonUserExists       Reason = "user_exists"
	ReasonUnknownUser      Reason = "unknown_user"
	ReasonUnknownArtist    Reason = "unknown_artist"
	ReasonUnknownSong      Reason = "unknown_song"
	ReasonRatingOutOfRange Reason = "rating_out_of_range"
	ReasonDuplicateRating  Reason = "duplicate_rating"
	ReasonInvalidRecord    Reason = "invalid_record" // blank name or missing date
)

// Rejections is the set of keys a loader call did not apply.
//
// Membership is what matters; the [Reason] kept per key is the first one recorded.
type Rejections[K comparable] map[K]Reason

func NewRejections[K comparable]() Rejections[K] {
	return make(Rejections[K])
}

// Add records key with reason unless key is already present.
func (r Rejections[K]) Add(key K, reason Reason) {
	if _, ok := r[key]; ok {
		return
	}
	r[key] = reason
}

func (r Rejections[K]) Has(key K) bool {
	_, ok := r[key]
	return ok
}

func (r Rejections[K]) Len() int {
	return len(r)
}

// Keys returns the rejected keys ordered by compare.
func (r Rejections[K]) Keys(compare func(a, b K) int) []K {
	keys := make([]K, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compare)
	return keys
}
