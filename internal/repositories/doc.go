// Package repositories implements the catalog store over database/sql.
//
// Each repository handles one table and is bound to a [Querier], which is either the
// shared *sql.DB or the transaction of an open batch. Writes always happen inside
// [Catalog.Batch], so lookups made later in a batch see rows inserted earlier in it.
//
// Key Implementations:
//   - [Catalog] : store handle, writer lock, batch scope, reset and stats
//   - [CatalogTx] : the per-table repositories bound to one batch
//   - [ArtistRepository], [GenreRepository] : shared name tables with get-or-create
//   - [SongRepository], [AlbumRepository], [SongGenreRepository] : catalog rows
//   - [UserRepository], [RatingRepository] : listeners and ratings
//
// Shared name tables use a single conditional upsert (INSERT ... ON CONFLICT DO NOTHING)
// followed by a lookup, so concurrent writers never create duplicate names.
package repositories
