package models

// YearRange is an inclusive span of calendar years. From > To matches nothing.
type YearRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (y YearRange) Empty() bool {
	return y.From > y.To
}

func (y YearRange) Contains(year int) bool {
	return year >= y.From && year <= y.To
}

// ArtistCount is a row of the prolific-artists ranking.
type ArtistCount struct {
	Artist string `json:"artist"`
	Count  int    `json:"count"`
}

// GenreCount is a row of the top-genres ranking.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// SongRatingCount is a row of the top-rated-songs ranking.
type SongRatingCount struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Count  int    `json:"count"`
}

// UserCount is a row of the most-engaged-users ranking.
type UserCount struct {
	Username string `json:"username"`
	Count    int    `json:"count"`
}

// ReportRequest parameterizes every query of a [Report].
type ReportRequest struct {
	N     int       `json:"n"`
	Years YearRange `json:"years"`
	Year  int       `json:"year"`
}

// Report bundles the results of all six catalog queries.
type Report struct {
	Request        ReportRequest     `json:"request"`
	Prolific       []ArtistCount     `json:"prolific_artists"`
	LastSingle     []string          `json:"last_single_artists"`
	Genres         []GenreCount      `json:"top_genres"`
	AlbumAndSingle []string          `json:"album_and_single_artists"`
	TopRated       []SongRatingCount `json:"top_rated_songs"`
	Engaged        []UserCount       `json:"most_engaged_users"`
}

// CatalogStats holds row counts per table.
type CatalogStats struct {
	Artists    int `json:"artists"`
	Genres     int `json:"genres"`
	Songs      int `json:"songs"`
	Albums     int `json:"albums"`
	SongGenres int `json:"song_genres"`
	Users      int `json:"users"`
	Ratings    int `json:"ratings"`
}
