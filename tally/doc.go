// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package tally computes election results from the ballot ledger.
//
// Results are recomputed per query from one grouped count over committed
// ballots joined with candidate metadata, so they are never more
// authoritative than the ledger they came from.
package tally
