// Package models defines the catalog entities, loader input records and query result rows.
//
// The package contains three categories of types:
//
// 1. Persistent Entities: rows owned by the catalog store
//   - [Artist], [Genre] : shared name tables, created implicitly by loaders
//   - [Song] : a single (no album) or an album track
//   - [Album] : an artist's album carrying one genre for all its tracks
//   - [SongGenre] : song/genre association
//   - [User], [Rating] : listeners and their one-per-song ratings
//
// 2. Input Records: what the loaders consume
//   - [SingleRecord], [AlbumRecord], [RatingRecord]
//   - [SongKey], [AlbumKey], [RatingKey] : identifying keys used in [Rejections]
//
// 3. Result Rows: what the query engine returns
//   - [ArtistCount], [GenreCount], [SongRatingCount], [UserCount], [Report]
//
// Calendar dates are carried as [Date], which stores as ISO text (YYYY-MM-DD).
package models
