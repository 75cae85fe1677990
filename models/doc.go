// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Electoral Scopes

A scope is the unit over which one ballot per voter is allowed:

	ScopePresidential                  // "presidential"
	ParliamentaryScope("Ayawaso West") // "parliamentary:AYAWASO WEST"

Constituency names are trimmed and upper-cased everywhere they are stored or
compared. ParseScope reverses ScopeFor.

# Domain Types

  - Voter: registry record with constituency and verification state
  - Election: presidential or parliamentary for one constituency
  - Candidate: belongs to one election; Seq is registration order
  - Ballot: immutable record of one cast vote
  - TallyRow: derived per-candidate count with the leader flag
  - VoteStatus: scopes a voter has already voted in
*/
package models
