// package testing contains shared testing utilities
package testing

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bogem/id3v2"

	"github.com/hx-hudson/Music-datbase/internal/models"
	"github.com/hx-hudson/Music-datbase/internal/repositories"
	"github.com/hx-hudson/Music-datbase/internal/shared"
)

// NewTestCatalog opens a migrated in-memory catalog that is closed when the test ends.
func NewTestCatalog(t *testing.T) *repositories.Catalog {
	t.Helper()

	catalog, err := repositories.Open(shared.DatabaseConfig{Driver: shared.DriverSQLite3, Path: shared.MemoryPath})
	if err != nil {
		t.Fatalf("failed to create test catalog: %v", err)
	}
	t.Cleanup(func() { catalog.Close() })
	return catalog
}

// ReferenceSingles is the singles batch of the reference scenario.
func ReferenceSingles() []models.SingleRecord {
	return []models.SingleRecord{
		{Title: "Sky", Genres: []string{"Pop"}, Artist: "Alice", ReleaseDate: models.MustParseDate("2020-01-01")},
		{Title: "Rock Me", Genres: []string{"Rock", "Pop"}, Artist: "Alice", ReleaseDate: models.MustParseDate("2020-06-15")},
		{Title: "Jazz Night", Genres: []string{"Jazz"}, Artist: "Bob", ReleaseDate: models.MustParseDate("2021-02-20")},
		{Title: "Old Hit", Genres: []string{"Rock"}, Artist: "Carl", ReleaseDate: models.MustParseDate("2019-08-30")},
	}
}

// ReferenceAlbums is the albums batch of the reference scenario.
func ReferenceAlbums() []models.AlbumRecord {
	return []models.AlbumRecord{
		{
			Title: "Alice Album", Genre: "Pop", Artist: "Alice",
			ReleaseDate: models.MustParseDate("2019-12-01"),
			Tracks:      []string{"AlbumSong1", "AlbumSong2"},
		},
		{
			Title: "Bob Debut", Genre: "Jazz", Artist: "Bob",
			ReleaseDate: models.MustParseDate("2020-10-10"),
			Tracks:      []string{"Smooth", "Late Night"},
		},
	}
}

// ReferenceUsers is the users batch of the reference scenario.
func ReferenceUsers() []string {
	return []string{"user1", "user2", "user3"}
}

// ReferenceRatings is the ratings batch of the reference scenario.
func ReferenceRatings() []models.RatingRecord {
	return []models.RatingRecord{
		{Username: "user1", Artist: "Alice", Title: "Sky", Rating: 5, Date: models.MustParseDate("2020-01-10")},
		{Username: "user2", Artist: "Alice", Title: "Sky", Rating: 4, Date: models.MustParseDate("2020-03-01")},
		{Username: "user2", Artist: "Bob", Title: "Smooth", Rating: 5, Date: models.MustParseDate("2021-01-05")},
		{Username: "user3", Artist: "Carl", Title: "Old Hit", Rating: 3, Date: models.MustParseDate("2019-09-09")},
		{Username: "user3", Artist: "Alice", Title: "Rock Me", Rating: 2, Date: models.MustParseDate("2020-07-07")},
	}
}

// BatchRecord is one call captured by [SpyRecorder].
type BatchRecord struct {
	Loader   string
	Records  int
	Accepted int
	Skipped  int
	Err      error
}

// SpyRecorder captures loader metrics calls.
type SpyRecorder struct {
	mu         sync.Mutex
	Batches    []BatchRecord
	Rejections map[string]int
}

func (s *SpyRecorder) RecordBatch(loader string, records, accepted, skipped int, _ time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Batches = append(s.Batches, BatchRecord{Loader: loader, Records: records, Accepted: accepted, Skipped: skipped, Err: err})
}

func (s *SpyRecorder) RecordRejection(loader string, reason models.Reason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Rejections == nil {
		s.Rejections = map[string]int{}
	}
	s.Rejections[loader+"/"+string(reason)]++
}

// Last returns the most recent batch, or the zero value.
func (s *SpyRecorder) Last() BatchRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Batches) == 0 {
		return BatchRecord{}
	}
	return s.Batches[len(s.Batches)-1]
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MustWriteFile writes content under dir and returns the full path.
func MustWriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MustWriteMP3 writes a tag-only MP3 file carrying the given text frames (TIT2, TPE1, ...).
func MustWriteMP3(t *testing.T, path string, frames map[string]string) {
	t.Helper()

	tag := id3v2.NewEmptyTag()
	for id, text := range frames {
		tag.AddTextFrame(id, id3v2.EncodingUTF8, text)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	if _, err := tag.WriteTo(f); err != nil {
		t.Fatalf("failed to write tag: %v", err)
	}
}
