// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ledger is the ballot ledger: the append-only record of cast ballots.
//
// A ballot is accepted at most once per (voter, election scope). The check
// that enforces this is the store's conditional insert, not a prior read: the
// SQL store relies on UNIQUE (voter_id, scope) and the badger store on a
// serializable transaction over the key ballot/<scope>\x00<voter>. Has is only
// a fast path that rejects obvious repeats early.
//
// Scopes are "presidential" or "parliamentary:<CONSTITUENCY>".
//
// The ledger also answers vote-status queries from committed ballots and
// exposes per-candidate counts to the tally engine.
package ledger
