package queries

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hx-hudson/Music-datbase/internal/models"
	"github.com/hx-hudson/Music-datbase/internal/repositories"
	"github.com/hx-hudson/Music-datbase/internal/shared"
	"github.com/hx-hudson/Music-datbase/internal/tasks"
	tu "github.com/hx-hudson/Music-datbase/internal/testing"
)

type queryCounter struct {
	mu    sync.Mutex
	calls map[string]int
}

func (q *queryCounter) RecordQuery(name string, _ time.Duration, _ error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.calls == nil {
		q.calls = map[string]int{}
	}
	q.calls[name]++
}

func mustLoad(t *testing.T, loader *tasks.Loader, singles bool, albums bool, ratings bool) {
	t.Helper()
	ctx := context.Background()
	if singles {
		if _, err := loader.LoadSingles(ctx, tu.ReferenceSingles()); err != nil {
			t.Fatalf("failed to load singles: %v", err)
		}
	}
	if albums {
		if _, err := loader.LoadAlbums(ctx, tu.ReferenceAlbums()); err != nil {
			t.Fatalf("failed to load albums: %v", err)
		}
	}
	if ratings {
		if _, err := loader.LoadUsers(ctx, tu.ReferenceUsers()); err != nil {
			t.Fatalf("failed to load users: %v", err)
		}
		if _, err := loader.LoadRatings(ctx, tu.ReferenceRatings()); err != nil {
			t.Fatalf("failed to load ratings: %v", err)
		}
	}
}

func newEngine(t *testing.T, opts ...Option) (*Engine, *tasks.Loader, *repositories.Catalog) {
	t.Helper()
	catalog := tu.NewTestCatalog(t)
	return NewEngine(catalog, opts...), tasks.NewLoader(tasks.LoaderOpts{Catalog: catalog}), catalog
}

func TestReferenceScenario(t *testing.T) {
	ctx := context.Background()
	years := models.YearRange{From: 2019, To: 2021}

	Convey("Given the reference singles", t, func() {
		engine, loader, _ := newEngine(t)
		mustLoad(t, loader, true, false, false)

		Convey("When ranking prolific artists from 2019 to 2021", func() {
			got, err := engine.TopProlificArtists(ctx, 3, years)

			Convey("Then Alice leads with two singles and ties break by name", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []models.ArtistCount{
					{Artist: "Alice", Count: 2},
					{Artist: "Bob", Count: 1},
					{Artist: "Carl", Count: 1},
				})
			})
		})

		Convey("When ranking prolific artists for 2020 only", func() {
			got, err := engine.TopProlificArtists(ctx, 3, models.YearRange{From: 2020, To: 2020})

			Convey("Then only Alice qualifies", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []models.ArtistCount{{Artist: "Alice", Count: 2}})
			})
		})

		Convey("When n is smaller than the field", func() {
			got, err := engine.TopProlificArtists(ctx, 1, years)

			Convey("Then the result is truncated", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 1)
				So(got[0].Artist, ShouldEqual, "Alice")
			})
		})

		Convey("When asking whose last single came out in 2020", func() {
			got, err := engine.LastSingleYearArtists(ctx, 2020)

			Convey("Then the answer is Alice alone", func() {
				So(err, ShouldBeNil)
				So(got, ShouldContain, "Alice")
				So(got, ShouldNotContain, "Bob")
				So(got, ShouldNotContain, "Carl")
			})
		})

		Convey("When asking about 2021 and 2019", func() {
			bob, err1 := engine.LastSingleYearArtists(ctx, 2021)
			carl, err2 := engine.LastSingleYearArtists(ctx, 2019)

			Convey("Then each year names its own artist", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(bob, ShouldResemble, []string{"Bob"})
				So(carl, ShouldResemble, []string{"Carl"})
			})
		})

		Convey("When the reference albums are loaded too", func() {
			mustLoad(t, loader, false, true, false)

			Convey("Then Pop is the top genre with four songs", func() {
				got, err := engine.TopGenres(ctx, 10)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []models.GenreCount{
					{Genre: "Pop", Count: 4},
					{Genre: "Jazz", Count: 3},
					{Genre: "Rock", Count: 2},
				})
			})

			Convey("Then exactly Alice and Bob have both an album and a single", func() {
				got, err := engine.AlbumAndSingleArtists(ctx)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []string{"Alice", "Bob"})
			})

			Convey("Then album tracks do not count as singles", func() {
				got, err := engine.TopProlificArtists(ctx, 10, years)
				So(err, ShouldBeNil)
				So(got[0], ShouldResemble, models.ArtistCount{Artist: "Alice", Count: 2})
			})
		})
	})

	Convey("Given the full reference data with ratings", t, func() {
		engine, loader, _ := newEngine(t)
		mustLoad(t, loader, true, true, true)

		Convey("When ranking rated songs from 2019 to 2021", func() {
			got, err := engine.TopRatedSongs(ctx, years, 10)

			Convey("Then Sky leads and ties order by title", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []models.SongRatingCount{
					{Title: "Sky", Artist: "Alice", Count: 2},
					{Title: "Old Hit", Artist: "Carl", Count: 1},
					{Title: "Rock Me", Artist: "Alice", Count: 1},
					{Title: "Smooth", Artist: "Bob", Count: 1},
				})
			})
		})

		Convey("When ranking rated songs for 2020", func() {
			got, err := engine.TopRatedSongs(ctx, models.YearRange{From: 2020, To: 2020}, 10)

			Convey("Then only 2020 ratings count", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []models.SongRatingCount{
					{Title: "Sky", Artist: "Alice", Count: 2},
					{Title: "Rock Me", Artist: "Alice", Count: 1},
				})
			})
		})

		Convey("When ranking engaged users", func() {
			all, err1 := engine.MostEngagedUsers(ctx, years, 10)
			in2020, err2 := engine.MostEngagedUsers(ctx, models.YearRange{From: 2020, To: 2020}, 2)

			Convey("Then counts order first and usernames break ties", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(all, ShouldResemble, []models.UserCount{
					{Username: "user2", Count: 2},
					{Username: "user3", Count: 2},
					{Username: "user1", Count: 1},
				})
				So(in2020, ShouldResemble, []models.UserCount{
					{Username: "user1", Count: 1},
					{Username: "user2", Count: 1},
				})
			})
		})

		Convey("When building a report", func() {
			req := models.ReportRequest{N: 10, Years: years, Year: 2020}
			report, err := engine.Report(ctx, req)

			Convey("Then every section matches its query", func() {
				So(err, ShouldBeNil)
				prolific, _ := engine.TopProlificArtists(ctx, 10, years)
				genres, _ := engine.TopGenres(ctx, 10)
				rated, _ := engine.TopRatedSongs(ctx, years, 10)
				engaged, _ := engine.MostEngagedUsers(ctx, years, 10)

				So(report.Request, ShouldResemble, req)
				So(report.Prolific, ShouldResemble, prolific)
				So(report.LastSingle, ShouldResemble, []string{"Alice"})
				So(report.Genres, ShouldResemble, genres)
				So(report.AlbumAndSingle, ShouldResemble, []string{"Alice", "Bob"})
				So(report.TopRated, ShouldResemble, rated)
				So(report.Engaged, ShouldResemble, engaged)
			})
		})
	})
}

func TestQueryEdges(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty catalog", t, func() {
		engine, _, _ := newEngine(t)

		Convey("Then every query returns an empty, non-nil result", func() {
			prolific, err := engine.TopProlificArtists(ctx, 5, models.YearRange{From: 1900, To: 2100})
			So(err, ShouldBeNil)
			So(prolific, ShouldNotBeNil)
			So(prolific, ShouldBeEmpty)

			last, err := engine.LastSingleYearArtists(ctx, 2020)
			So(err, ShouldBeNil)
			So(last, ShouldNotBeNil)
			So(last, ShouldBeEmpty)

			both, err := engine.AlbumAndSingleArtists(ctx)
			So(err, ShouldBeNil)
			So(both, ShouldNotBeNil)
		})
	})

	Convey("Given loaded data", t, func() {
		counter := &queryCounter{}
		engine, loader, _ := newEngine(t, WithRecorder(counter))
		mustLoad(t, loader, true, true, true)
		years := models.YearRange{From: 2019, To: 2021}

		Convey("When n is zero or negative", func() {
			a, err1 := engine.TopProlificArtists(ctx, 0, years)
			g, err2 := engine.TopGenres(ctx, -1)
			s, err3 := engine.TopRatedSongs(ctx, years, 0)
			u, err4 := engine.MostEngagedUsers(ctx, years, -5)

			Convey("Then results are empty and storage is not touched", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(err3, ShouldBeNil)
				So(err4, ShouldBeNil)
				So(a, ShouldNotBeNil)
				So(a, ShouldBeEmpty)
				So(g, ShouldBeEmpty)
				So(s, ShouldBeEmpty)
				So(u, ShouldBeEmpty)
				So(counter.calls, ShouldBeEmpty)
			})
		})

		Convey("When the year range is inverted", func() {
			got, err := engine.TopRatedSongs(ctx, models.YearRange{From: 2021, To: 2019}, 10)

			Convey("Then nothing matches", func() {
				So(err, ShouldBeNil)
				So(got, ShouldBeEmpty)
			})
		})

		Convey("When queries run", func() {
			_, _ = engine.TopGenres(ctx, 3)
			_, _ = engine.AlbumAndSingleArtists(ctx)

			Convey("Then the recorder sees them by name", func() {
				So(counter.calls[QueryTopGenres], ShouldEqual, 1)
				So(counter.calls[QueryAlbumAndSingleArtists], ShouldEqual, 1)
			})
		})
	})

	Convey("Given names that differ only in case", t, func() {
		engine, loader, _ := newEngine(t)
		date := models.MustParseDate("2022-03-03")
		_, err := loader.LoadSingles(ctx, []models.SingleRecord{
			{Title: "One", Genres: []string{"Pop"}, Artist: "beta", ReleaseDate: date},
			{Title: "One", Genres: []string{"Pop"}, Artist: "alpha", ReleaseDate: date},
			{Title: "One", Genres: []string{"Pop"}, Artist: "Alpha", ReleaseDate: date},
		})
		So(err, ShouldBeNil)

		Convey("When ranking with equal counts", func() {
			got, err := engine.TopProlificArtists(ctx, 10, models.YearRange{From: 2022, To: 2022})

			Convey("Then ties order byte-wise", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []models.ArtistCount{
					{Artist: "Alpha", Count: 1},
					{Artist: "alpha", Count: 1},
					{Artist: "beta", Count: 1},
				})
			})
		})
	})

	Convey("Given a song title shared by two artists", t, func() {
		engine, loader, _ := newEngine(t)
		date := models.MustParseDate("2020-01-01")
		_, err := loader.LoadSingles(ctx, []models.SingleRecord{
			{Title: "Home", Genres: []string{"Folk"}, Artist: "Zed", ReleaseDate: date},
			{Title: "Home", Genres: []string{"Folk"}, Artist: "Amy", ReleaseDate: date},
		})
		So(err, ShouldBeNil)
		_, err = loader.LoadUsers(ctx, []string{"u"})
		So(err, ShouldBeNil)
		_, err = loader.LoadRatings(ctx, []models.RatingRecord{
			{Username: "u", Artist: "Zed", Title: "Home", Rating: 4, Date: date},
			{Username: "u", Artist: "Amy", Title: "Home", Rating: 4, Date: date},
		})
		So(err, ShouldBeNil)

		Convey("When ranking rated songs", func() {
			got, err := engine.TopRatedSongs(ctx, models.YearRange{From: 2020, To: 2020}, 10)

			Convey("Then the artist name breaks the remaining tie", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []models.SongRatingCount{
					{Title: "Home", Artist: "Amy", Count: 1},
					{Title: "Home", Artist: "Zed", Count: 1},
				})
			})
		})
	})

	Convey("Given a closed catalog", t, func() {
		engine, _, catalog := newEngine(t)
		catalog.Close()

		Convey("When a query runs", func() {
			_, err := engine.TopGenres(ctx, 3)
			_, reportErr := engine.Report(ctx, models.ReportRequest{N: 3, Years: models.YearRange{From: 2000, To: 2030}, Year: 2020})

			Convey("Then a storage error is returned", func() {
				So(errors.Is(err, shared.ErrStorage), ShouldBeTrue)
				So(errors.Is(reportErr, shared.ErrStorage), ShouldBeTrue)
			})
		})
	})
}
