package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hx-hudson/Music-datbase/internal/models"
	"github.com/hx-hudson/Music-datbase/internal/shared"
)

// DefaultLimit is the n used when a ranking request omits it.
const DefaultLimit = 10

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthHandler answers liveness probes.
type HealthHandler struct{}

func (HealthHandler) Routes() []string {
	return []string{"/healthz"}
}

func (HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type apiHandler struct {
	queries Queries
	logger  *log.Logger
	clock   func() time.Time
}

func (h *apiHandler) register(r Router) {
	r.Handle(http.MethodGet, "/api/artists/prolific", http.HandlerFunc(h.prolific))
	r.Handle(http.MethodGet, "/api/artists/last-single", http.HandlerFunc(h.lastSingle))
	r.Handle(http.MethodGet, "/api/artists/album-and-single", http.HandlerFunc(h.albumAndSingle))
	r.Handle(http.MethodGet, "/api/genres/top", http.HandlerFunc(h.topGenres))
	r.Handle(http.MethodGet, "/api/songs/top-rated", http.HandlerFunc(h.topRated))
	r.Handle(http.MethodGet, "/api/users/engaged", http.HandlerFunc(h.engaged))
	r.Handle(http.MethodGet, "/api/report", http.HandlerFunc(h.report))
}

func (h *apiHandler) prolific(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := limitParam(q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	years, err := yearsParam(q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := h.queries.TopProlificArtists(r.Context(), n, years)
	h.respond(w, r, rows, err)
}

func (h *apiHandler) lastSingle(w http.ResponseWriter, r *http.Request) {
	year, ok, err := intParam(r.URL.Query(), "year")
	if err == nil && !ok {
		err = fmt.Errorf("%w: year is required", shared.ErrMissingArgument)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := h.queries.LastSingleYearArtists(r.Context(), year)
	h.respond(w, r, rows, err)
}

func (h *apiHandler) albumAndSingle(w http.ResponseWriter, r *http.Request) {
	rows, err := h.queries.AlbumAndSingleArtists(r.Context())
	h.respond(w, r, rows, err)
}

func (h *apiHandler) topGenres(w http.ResponseWriter, r *http.Request) {
	n, err := limitParam(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := h.queries.TopGenres(r.Context(), n)
	h.respond(w, r, rows, err)
}

func (h *apiHandler) topRated(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := limitParam(q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	years, err := yearsParam(q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := h.queries.TopRatedSongs(r.Context(), years, n)
	h.respond(w, r, rows, err)
}

func (h *apiHandler) engaged(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := limitParam(q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	years, err := yearsParam(q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := h.queries.MostEngagedUsers(r.Context(), years, n)
	h.respond(w, r, rows, err)
}

func (h *apiHandler) report(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := limitParam(q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	years, err := yearsParam(q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	year, ok, err := intParam(q, "year")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !ok {
		year = h.clock().Year()
	}

	report, err := h.queries.Report(r.Context(), models.ReportRequest{N: n, Years: years, Year: year})
	h.respond(w, r, report, err)
}

func (h *apiHandler) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// fail maps argument errors to 400 and everything else to 500.
func (h *apiHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrMissingArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("query failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func limitParam(q url.Values) (int, error) {
	n, ok, err := intParam(q, "n")
	if err != nil {
		return 0, err
	}
	if !ok {
		return DefaultLimit, nil
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: n must not be negative", shared.ErrInvalidArgument)
	}
	return n, nil
}

// yearsParam reads from/to. A missing bound leaves that side open.
func yearsParam(q url.Values) (models.YearRange, error) {
	years := models.YearRange{From: math.MinInt32, To: math.MaxInt32}

	from, ok, err := intParam(q, "from")
	if err != nil {
		return years, err
	}
	if ok {
		years.From = from
	}

	to, ok, err := intParam(q, "to")
	if err != nil {
		return years, err
	}
	if ok {
		years.To = to
	}
	return years, nil
}

func intParam(q url.Values, name string) (int, bool, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s must be an integer, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return v, true, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
