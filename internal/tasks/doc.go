// Package tasks loads batches of catalog records with per-item rejection.
//
// # Core Operations
//
// The [Loader] exposes four batch operations, each applied as one atomic catalog batch:
//
//  1. [Loader.LoadSingles] : songs without an album, each with one or more genres
//     - empty genre list or an existing (artist, title) rejects the record
//
//  2. [Loader.LoadAlbums] : albums with a track list and one genre
//     - an existing (artist, album title) rejects the whole record
//     - tracks whose (artist, title) already exists are skipped, not rejected
//
//  3. [Loader.LoadUsers] : usernames
//     - duplicates within the call and existing users are rejected
//
//  4. [Loader.LoadRatings] : (user, artist, title, rating, date)
//     - checks user, artist, song, range and prior rating, in that order
//
// Records are processed in input order and every lookup sees rows inserted
// earlier in the same call. Rejections are returned as [models.Rejections];
// a storage failure rolls the batch back and is returned as an error instead.
//
// # Progress Reporting
//
// When [LoaderOpts.Progress] is set, every record emits a [ProgressUpdate] on it.
// Updates use select with default so a slow consumer never stalls a batch.
package tasks
