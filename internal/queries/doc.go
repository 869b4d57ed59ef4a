// Package queries answers the catalog's ranking and aggregation questions.
//
// Every query is a read over committed catalog state and is deterministic for a
// given state: counts order descending and ties break on byte-wise ascending
// names. Year ranges match the calendar year of a date column, inclusive at both
// ends; a range whose From exceeds To matches nothing. Top-n queries with n <= 0
// return an empty slice without touching storage.
//
// [Engine.Report] runs all six queries concurrently with an errgroup and fails as
// a whole if any of them fails.
package queries
