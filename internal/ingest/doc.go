// Package ingest turns files on disk into loader batches.
//
// A batch file is one JSON or TOML document with optional singles, albums,
// users and ratings sections. [Apply] hands the sections to a [BatchLoader]
// in that order, so ratings can refer to songs and users loaded by the same file.
//
// [ScanTags] walks a directory of MP3 files and builds single records from
// their ID3 title, artist, genre and date frames.
package ingest
