package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/hx-hudson/Music-datbase/internal/models"
	"github.com/hx-hudson/Music-datbase/internal/shared"
)

// Batch file formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
)

// Batch is the decoded content of a batch file.
type Batch struct {
	Singles []models.SingleRecord `json:"singles" toml:"singles"`
	Albums  []models.AlbumRecord  `json:"albums" toml:"albums"`
	Users   []string              `json:"users" toml:"users"`
	Ratings []models.RatingRecord `json:"ratings" toml:"ratings"`
}

// Len returns the number of records across all sections.
func (b *Batch) Len() int {
	return len(b.Singles) + len(b.Albums) + len(b.Users) + len(b.Ratings)
}

// Only returns a copy of b keeping just the named section.
func (b *Batch) Only(section string) (*Batch, error) {
	out := &Batch{}
	switch section {
	case SectionSingles:
		out.Singles = b.Singles
	case SectionAlbums:
		out.Albums = b.Albums
	case SectionUsers:
		out.Users = b.Users
	case SectionRatings:
		out.Ratings = b.Ratings
	default:
		return nil, fmt.Errorf("%w: unknown section %q", shared.ErrInvalidArgument, section)
	}
	return out, nil
}

// Section names, in application order.
const (
	SectionSingles = "singles"
	SectionAlbums  = "albums"
	SectionUsers   = "users"
	SectionRatings = "ratings"
)

// FormatFor picks the decoder from a file extension.
func FormatFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: batch file %s", shared.ErrUnsupportedFormat, path)
	}
}

// ReadBatchFile decodes a .json or .toml batch file.
func ReadBatchFile(path string) (*Batch, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	return DecodeBatch(f, format)
}

// DecodeBatch reads a batch document in the given format.
//
// Unknown fields are errors, as are dates that are not YYYY-MM-DD strings.
func DecodeBatch(r io.Reader, format string) (*Batch, error) {
	var b Batch

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&b); err != nil {
			return nil, fmt.Errorf("%w: failed to decode batch: %w", shared.ErrInvalidInput, err)
		}
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&b)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to decode batch: %w", shared.ErrInvalidInput, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown batch keys %v", shared.ErrInvalidInput, undecoded)
		}
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedFormat, format)
	}

	return &b, nil
}

// BatchLoader is what [Apply] needs from a loader. [tasks.Loader] implements it.
type BatchLoader interface {
	LoadSingles(ctx context.Context, records []models.SingleRecord) (models.Rejections[models.SongKey], error)
	LoadAlbums(ctx context.Context, records []models.AlbumRecord) (models.Rejections[models.AlbumKey], error)
	LoadUsers(ctx context.Context, usernames []string) (models.Rejections[string], error)
	LoadRatings(ctx context.Context, records []models.RatingRecord) (models.Rejections[models.RatingKey], error)
}

// Result holds the rejections of each applied section. Skipped sections stay nil.
type Result struct {
	Singles models.Rejections[models.SongKey]
	Albums  models.Rejections[models.AlbumKey]
	Users   models.Rejections[string]
	Ratings models.Rejections[models.RatingKey]
}

// Rejected returns the total number of rejected records.
func (r *Result) Rejected() int {
	return r.Singles.Len() + r.Albums.Len() + r.Users.Len() + r.Ratings.Len()
}

// Apply loads the non-empty sections of b in order: singles, albums, users, ratings.
//
// Each section is its own atomic batch. On error the sections already applied stay
// committed and the partial result is returned with the error.
func Apply(ctx context.Context, loader BatchLoader, b *Batch) (*Result, error) {
	result := &Result{}
	var err error

	if len(b.Singles) > 0 {
		if result.Singles, err = loader.LoadSingles(ctx, b.Singles); err != nil {
			return result, fmt.Errorf("failed to load singles: %w", err)
		}
	}
	if len(b.Albums) > 0 {
		if result.Albums, err = loader.LoadAlbums(ctx, b.Albums); err != nil {
			return result, fmt.Errorf("failed to load albums: %w", err)
		}
	}
	if len(b.Users) > 0 {
		if result.Users, err = loader.LoadUsers(ctx, b.Users); err != nil {
			return result, fmt.Errorf("failed to load users: %w", err)
		}
	}
	if len(b.Ratings) > 0 {
		if result.Ratings, err = loader.LoadRatings(ctx, b.Ratings); err != nil {
			return result, fmt.Errorf("failed to load ratings: %w", err)
		}
	}

	return result, nil
}
