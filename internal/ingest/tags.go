package ingest

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bogem/id3v2"

	"github.com/hx-hudson/Music-datbase/internal/models"
)

// TagIssue records an MP3 file that could not become a single.
type TagIssue struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// TagScan is the outcome of [ScanTags].
type TagScan struct {
	Records []models.SingleRecord
	Issues  []TagIssue
}

// ScanTags reads every .mp3 file under dir, in lexical path order.
//
// Title and artist are required. The date comes from TDRC, falling back to TYER;
// a bare year becomes January 1. The genre frame may list several genres separated
// by "/", ";" or NUL. Files missing a field are reported as issues, not errors.
func ScanTags(dir string) (*TagScan, error) {
	scan := &TagScan{}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".mp3") {
			return nil
		}

		rec, reason := readTag(path)
		if reason != "" {
			scan.Issues = append(scan.Issues, TagIssue{Path: path, Reason: reason})
			return nil
		}
		scan.Records = append(scan.Records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	return scan, nil
}

func readTag(path string) (models.SingleRecord, string) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return models.SingleRecord{}, "unreadable tag: " + err.Error()
	}
	defer tag.Close()

	rec := models.SingleRecord{
		Title:  strings.TrimSpace(tag.Title()),
		Artist: strings.TrimSpace(tag.Artist()),
		Genres: splitGenres(tag.Genre()),
	}
	if rec.Title == "" {
		return rec, "missing title"
	}
	if rec.Artist == "" {
		return rec, "missing artist"
	}

	date, ok := tagDate(tag)
	if !ok {
		return rec, "missing or invalid date"
	}
	rec.ReleaseDate = date

	return rec, ""
}

func tagDate(tag *id3v2.Tag) (models.Date, bool) {
	for _, id := range []string{"TDRC", "TYER"} {
		text := strings.TrimSpace(tag.GetTextFrame(id).Text)
		if text == "" {
			continue
		}
		if len(text) >= len(models.DateLayout) {
			if d, err := models.ParseDate(text[:len(models.DateLayout)]); err == nil {
				return d, true
			}
		}
		if len(text) >= 4 {
			if year, err := strconv.Atoi(text[:4]); err == nil && year > 0 {
				return models.NewDate(year, time.January, 1), true
			}
		}
	}
	return models.Date{}, false
}

// splitGenres returns the non-empty genre names of a TCON value.
func splitGenres(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == ';' || r == 0
	})

	genres := make([]string, 0, len(fields))
	for _, f := range fields {
		if g := strings.TrimSpace(f); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}
