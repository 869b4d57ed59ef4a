package formatter

import (
	"cmp"
	"fmt"
	"strconv"

	"github.com/hx-hudson/Music-datbase/internal/ingest"
	"github.com/hx-hudson/Music-datbase/internal/models"
)

// Dataset titles.
const (
	TitleProlific       = "prolific_artists"
	TitleLastSingle     = "last_single_artists"
	TitleGenres         = "top_genres"
	TitleAlbumAndSingle = "album_and_single_artists"
	TitleTopRated       = "top_rated_songs"
	TitleEngaged        = "most_engaged_users"
	TitleStats          = "catalog"
)

// Rejection is one rejected record as encoded in JSON output.
type Rejection[K comparable] struct {
	Key    K             `json:"key"`
	Reason models.Reason `json:"reason"`
}

func ProlificArtists(rows []models.ArtistCount) Dataset {
	ds := Dataset{Title: TitleProlific, Headers: []string{"#", "Artist", "Songs"}, Value: nonNil(rows)}
	for i, r := range rows {
		ds.Rows = append(ds.Rows, []string{rank(i), r.Artist, strconv.Itoa(r.Count)})
	}
	return ds
}

func TopGenres(rows []models.GenreCount) Dataset {
	ds := Dataset{Title: TitleGenres, Headers: []string{"#", "Genre", "Songs"}, Value: nonNil(rows)}
	for i, r := range rows {
		ds.Rows = append(ds.Rows, []string{rank(i), r.Genre, strconv.Itoa(r.Count)})
	}
	return ds
}

func TopRatedSongs(rows []models.SongRatingCount) Dataset {
	ds := Dataset{Title: TitleTopRated, Headers: []string{"#", "Title", "Artist", "Ratings"}, Value: nonNil(rows)}
	for i, r := range rows {
		ds.Rows = append(ds.Rows, []string{rank(i), r.Title, r.Artist, strconv.Itoa(r.Count)})
	}
	return ds
}

func EngagedUsers(rows []models.UserCount) Dataset {
	ds := Dataset{Title: TitleEngaged, Headers: []string{"#", "Username", "Ratings"}, Value: nonNil(rows)}
	for i, r := range rows {
		ds.Rows = append(ds.Rows, []string{rank(i), r.Username, strconv.Itoa(r.Count)})
	}
	return ds
}

// Artists lists artist names under a single column.
func Artists(title string, names []string) Dataset {
	ds := Dataset{Title: title, Headers: []string{"Artist"}, Value: nonNil(names)}
	for _, n := range names {
		ds.Rows = append(ds.Rows, []string{n})
	}
	return ds
}

// Report splits a report into one dataset per query. JSON output keeps the report shape.
func Report(r *models.Report) []Dataset {
	return []Dataset{
		ProlificArtists(r.Prolific),
		Artists(TitleLastSingle, r.LastSingle),
		TopGenres(r.Genres),
		Artists(TitleAlbumAndSingle, r.AlbumAndSingle),
		TopRatedSongs(r.TopRated),
		EngagedUsers(r.Engaged),
	}
}

// ReportDocument is a single dataset whose JSON form is the whole report.
func ReportDocument(r *models.Report) Dataset {
	ds := Dataset{Title: "report", Headers: []string{"Query", "Rows"}, Value: r}
	for _, part := range Report(r) {
		ds.Rows = append(ds.Rows, []string{part.Title, strconv.Itoa(len(part.Rows))})
	}
	return ds
}

func Stats(s models.CatalogStats) Dataset {
	return Dataset{
		Title:   TitleStats,
		Headers: []string{"Table", "Rows"},
		Rows: [][]string{
			{"artists", strconv.Itoa(s.Artists)},
			{"genres", strconv.Itoa(s.Genres)},
			{"songs", strconv.Itoa(s.Songs)},
			{"albums", strconv.Itoa(s.Albums)},
			{"song_genres", strconv.Itoa(s.SongGenres)},
			{"users", strconv.Itoa(s.Users)},
			{"ratings", strconv.Itoa(s.Ratings)},
		},
		Value: s,
	}
}

// Rejected builds one dataset per applied section of a load result, in application order.
func Rejected(result *ingest.Result) []Dataset {
	var sets []Dataset
	if result.Singles != nil {
		sets = append(sets, rejections(ingest.SectionSingles, []string{"Title", "Artist"}, result.Singles,
			models.SongKey.Compare, func(k models.SongKey) []string { return []string{k.Title, k.Artist} }))
	}
	if result.Albums != nil {
		sets = append(sets, rejections(ingest.SectionAlbums, []string{"Album", "Artist"}, result.Albums,
			models.AlbumKey.Compare, func(k models.AlbumKey) []string { return []string{k.Title, k.Artist} }))
	}
	if result.Users != nil {
		sets = append(sets, rejections(ingest.SectionUsers, []string{"Username"}, result.Users,
			cmp.Compare[string], func(k string) []string { return []string{k} }))
	}
	if result.Ratings != nil {
		sets = append(sets, rejections(ingest.SectionRatings, []string{"Username", "Artist", "Title"}, result.Ratings,
			models.RatingKey.Compare, func(k models.RatingKey) []string { return []string{k.Username, k.Artist, k.Title} }))
	}
	return sets
}

func rejections[K comparable](
	section string, headers []string, r models.Rejections[K], compare func(a, b K) int, cells func(K) []string,
) Dataset {
	ds := Dataset{
		Title:   fmt.Sprintf("rejected_%s", section),
		Headers: append(headers, "Reason"),
	}
	value := make([]Rejection[K], 0, r.Len())
	for _, k := range r.Keys(compare) {
		value = append(value, Rejection[K]{Key: k, Reason: r[k]})
		ds.Rows = append(ds.Rows, append(cells(k), string(r[k])))
	}
	ds.Value = value
	return ds
}

// TagIssues lists files skipped during a tag scan.
func TagIssues(issues []ingest.TagIssue) Dataset {
	ds := Dataset{Title: "tag_issues", Headers: []string{"Path", "Reason"}, Value: nonNil(issues)}
	for _, issue := range issues {
		ds.Rows = append(ds.Rows, []string{issue.Path, issue.Reason})
	}
	return ds
}

func rank(i int) string {
	return strconv.Itoa(i + 1)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
