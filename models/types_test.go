package models

import "testing"

func TestScopeFor(t *testing.T) {
	tests := []struct {
		electionType string
		constituency string
		want         string
	}{
		{ElectionPresidential, "", "presidential"},
		{ElectionPresidential, "HO WEST", "presidential"},
		{ElectionParliamentary, "Ho West", "parliamentary:HO WEST"},
		{ElectionParliamentary, "  ayawaso west  ", "parliamentary:AYAWASO WEST"},
	}

	for _, tt := range tests {
		t.Run(tt.electionType+"/"+tt.constituency, func(t *testing.T) {
			if got := ScopeFor(tt.electionType, tt.constituency); got != tt.want {
				t.Errorf("ScopeFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		scope            string
		wantType         string
		wantConstituency string
		wantOK           bool
	}{
		{"presidential", ElectionPresidential, "", true},
		{"parliamentary:HO WEST", ElectionParliamentary, "HO WEST", true},
		{"parliamentary:ayawaso-west", ElectionParliamentary, "AYAWASO-WEST", true},
		{"parliamentary: Ho West ", ElectionParliamentary, "HO WEST", true},
		{"parliamentary:   ", "", "", false},
		{"parliamentary:", "", "", false},
		{"parliamentary", "", "", false},
		{"mayoral:ACCRA", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.scope, func(t *testing.T) {
			gotType, gotConstituency, ok := ParseScope(tt.scope)
			if ok != tt.wantOK || gotType != tt.wantType || gotConstituency != tt.wantConstituency {
				t.Errorf("ParseScope(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.scope, gotType, gotConstituency, ok, tt.wantType, tt.wantConstituency, tt.wantOK)
			}
		})
	}
}

func TestScopeRoundTrip(t *testing.T) {
	cand := Candidate{Type: ElectionParliamentary, Constituency: "TAMALE CENTRAL"}
	electionType, constituency, ok := ParseScope(cand.Scope())
	if !ok || electionType != cand.Type || constituency != cand.Constituency {
		t.Errorf("ParseScope(%q) = (%q, %q, %v)", cand.Scope(), electionType, constituency, ok)
	}

	election := Election{Type: ElectionPresidential}
	if election.Scope() != ScopePresidential {
		t.Errorf("Election.Scope() = %q", election.Scope())
	}
}

func TestValidElectionType(t *testing.T) {
	for _, valid := range []string{ElectionPresidential, ElectionParliamentary} {
		if !ValidElectionType(valid) {
			t.Errorf("ValidElectionType(%q) = false", valid)
		}
	}
	for _, invalid := range []string{"", "Presidential", "mayoral"} {
		if ValidElectionType(invalid) {
			t.Errorf("ValidElectionType(%q) = true", invalid)
		}
	}
}
