package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hx-hudson/Music-datbase/internal/metrics"
	"github.com/hx-hudson/Music-datbase/internal/models"
	"github.com/hx-hudson/Music-datbase/internal/queries"
	"github.com/hx-hudson/Music-datbase/internal/shared"
	"github.com/hx-hudson/Music-datbase/internal/tasks"
	tu "github.com/hx-hudson/Music-datbase/internal/testing"
)

func newTestQueries(t *testing.T) *queries.Engine {
	t.Helper()
	ctx := context.Background()
	catalog := tu.NewTestCatalog(t)
	loader := tasks.NewLoader(tasks.LoaderOpts{Catalog: catalog})

	if _, err := loader.LoadSingles(ctx, tu.ReferenceSingles()); err != nil {
		t.Fatalf("failed to load singles: %v", err)
	}
	if _, err := loader.LoadAlbums(ctx, tu.ReferenceAlbums()); err != nil {
		t.Fatalf("failed to load albums: %v", err)
	}
	if _, err := loader.LoadUsers(ctx, tu.ReferenceUsers()); err != nil {
		t.Fatalf("failed to load users: %v", err)
	}
	if _, err := loader.LoadRatings(ctx, tu.ReferenceRatings()); err != nil {
		t.Fatalf("failed to load ratings: %v", err)
	}
	return queries.NewEngine(catalog)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return v
}

type failingQueries struct {
	Queries
}

func (failingQueries) TopGenres(context.Context, int) ([]models.GenreCount, error) {
	return nil, shared.ErrStorage
}

func TestAPI(t *testing.T) {
	engine := newTestQueries(t)
	srv := NewServer(Options{Queries: engine})
	h := srv.Router()

	t.Run("healthz", func(t *testing.T) {
		rec := get(t, h, "/healthz")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if body := decode[map[string]string](t, rec); body["status"] != "ok" {
			t.Errorf("unexpected body %v", body)
		}
	})

	t.Run("prolific", func(t *testing.T) {
		rec := get(t, h, "/api/artists/prolific?n=1&from=2019&to=2021")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		got := decode[[]models.ArtistCount](t, rec)
		if len(got) != 1 || got[0] != (models.ArtistCount{Artist: "Alice", Count: 2}) {
			t.Errorf("unexpected ranking %v", got)
		}
	})

	t.Run("prolific without bounds uses every year", func(t *testing.T) {
		got := decode[[]models.ArtistCount](t, get(t, h, "/api/artists/prolific"))
		if len(got) != 3 {
			t.Errorf("expected 3 artists, got %v", got)
		}
	})

	t.Run("last single", func(t *testing.T) {
		got := decode[[]string](t, get(t, h, "/api/artists/last-single?year=2021"))
		if len(got) != 1 || got[0] != "Bob" {
			t.Errorf("expected [Bob], got %v", got)
		}
	})

	t.Run("album and single", func(t *testing.T) {
		got := decode[[]string](t, get(t, h, "/api/artists/album-and-single"))
		if len(got) != 2 || got[0] != "Alice" || got[1] != "Bob" {
			t.Errorf("expected [Alice Bob], got %v", got)
		}
	})

	t.Run("top genres", func(t *testing.T) {
		got := decode[[]models.GenreCount](t, get(t, h, "/api/genres/top?n=1"))
		if len(got) != 1 || got[0] != (models.GenreCount{Genre: "Pop", Count: 4}) {
			t.Errorf("unexpected genres %v", got)
		}
	})

	t.Run("top rated", func(t *testing.T) {
		got := decode[[]models.SongRatingCount](t, get(t, h, "/api/songs/top-rated?from=2020&to=2020&n=1"))
		if len(got) != 1 || got[0] != (models.SongRatingCount{Title: "Sky", Artist: "Alice", Count: 2}) {
			t.Errorf("unexpected top rated %v", got)
		}
	})

	t.Run("engaged", func(t *testing.T) {
		got := decode[[]models.UserCount](t, get(t, h, "/api/users/engaged?n=0"))
		if got == nil || len(got) != 0 {
			t.Errorf("expected an empty array, got %v", got)
		}
	})

	t.Run("report", func(t *testing.T) {
		rec := get(t, h, "/api/report?n=3&from=2019&to=2021&year=2020")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		report := decode[models.Report](t, rec)
		if report.Request.Year != 2020 || len(report.Prolific) != 3 {
			t.Errorf("unexpected report %+v", report)
		}
		if len(report.LastSingle) != 1 || report.LastSingle[0] != "Alice" {
			t.Errorf("unexpected last single artists %v", report.LastSingle)
		}
	})

	t.Run("bad parameters", func(t *testing.T) {
		tests := []struct {
			name   string
			target string
		}{
			{"non-integer n", "/api/genres/top?n=abc"},
			{"negative n", "/api/genres/top?n=-1"},
			{"non-integer year bound", "/api/users/engaged?from=twenty"},
			{"missing year", "/api/artists/last-single"},
			{"bad report year", "/api/report?year=x"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := get(t, h, tt.target)
				if rec.Code != http.StatusBadRequest {
					t.Fatalf("expected 400, got %d", rec.Code)
				}
				if body := decode[ErrorResponse](t, rec); body.Error == "" {
					t.Error("expected an error message")
				}
			})
		}
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := get(t, h, "/api/nope")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/genres/top", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		srv := NewServer(Options{Queries: failingQueries{Queries: engine}})
		rec := get(t, srv.Router(), "/api/genres/top")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if body := decode[ErrorResponse](t, rec); body.Error != "internal error" {
			t.Errorf("storage details leaked: %q", body.Error)
		}
	})
}

func TestMiddleware(t *testing.T) {
	engine := newTestQueries(t)

	t.Run("metrics are recorded per route pattern", func(t *testing.T) {
		manager := metrics.NewManager()
		srv := NewServer(Options{Queries: engine, Recorder: manager, Metrics: manager.Handler()})
		h := srv.Router()

		get(t, h, "/api/genres/top?n=2")
		rec := get(t, h, "/metrics")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, `musicdb_http_requests_total{method="GET",route="/api/genres/top",status_code="200"} 1`) {
			t.Errorf("request counter missing from metrics:\n%s", body)
		}
	})

	t.Run("unmatched requests are recorded", func(t *testing.T) {
		manager := metrics.NewManager()
		srv := NewServer(Options{Queries: engine, Recorder: manager, Metrics: manager.Handler()})
		h := srv.Router()

		if rec := get(t, h, "/api/nowhere"); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		req := httptest.NewRequest(http.MethodPost, "/api/genres/top", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}

		body := get(t, h, "/metrics").Body.String()
		if !strings.Contains(body, `musicdb_http_requests_total{method="GET",route="unmatched",status_code="404"} 1`) {
			t.Errorf("404 missing from metrics:\n%s", body)
		}
		if !strings.Contains(body, `method="POST"`) || !strings.Contains(body, `status_code="405"} 1`) {
			t.Errorf("405 missing from metrics:\n%s", body)
		}
	})

	t.Run("rate limit", func(t *testing.T) {
		srv := NewServer(Options{Queries: engine, Config: shared.ServerConfig{RateLimit: 0.001, Burst: 1}})
		h := srv.Router()

		if rec := get(t, h, "/healthz"); rec.Code != http.StatusOK {
			t.Fatalf("first request: expected 200, got %d", rec.Code)
		}
		rec := get(t, h, "/healthz")
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("second request: expected 429, got %d", rec.Code)
		}
		if rec.Header().Get("Retry-After") == "" {
			t.Error("expected Retry-After header")
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		r := NewChiRouter()
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, req)
				})
			}
		}
		r.Use(mark("first"), mark("second"))
		r.Handler(HealthHandler{})

		get(t, r, "/healthz")
		if strings.Join(order, ",") != "first,second" {
			t.Errorf("unexpected order %v", order)
		}
	})
}

func TestServeListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	srv := NewServer(Options{Queries: newTestQueries(t)})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ServeListener(ctx, ln) }()

	client := &http.Client{Timeout: 5 * time.Second}
	var resp *http.Response
	for range 50 {
		resp, err = client.Get("http://" + ln.Addr().String() + "/healthz")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never answered: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "ok") {
		t.Errorf("unexpected response %d %q", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected shutdown error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
