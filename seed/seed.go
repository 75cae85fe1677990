// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dabekoe/chain-choice-voting/catalog"
	"github.com/dabekoe/chain-choice-voting/models"
	"github.com/dabekoe/chain-choice-voting/registry"
)

type File struct {
	Elections  []Election  `yaml:"elections"`
	Candidates []Candidate `yaml:"candidates"`
	Voters     []Voter     `yaml:"voters"`
}

type Election struct {
	Type         string `yaml:"type"`
	Constituency string `yaml:"constituency"`
}

type Candidate struct {
	Name         string `yaml:"name"`
	Party        string `yaml:"party"`
	Type         string `yaml:"type"`
	Constituency string `yaml:"constituency"`
	Image        string `yaml:"image"`
}

type Voter struct {
	VoterID      string `yaml:"voterId"`
	Name         string `yaml:"name"`
	Email        string `yaml:"email"`
	Phone        string `yaml:"phone"`
	Constituency string `yaml:"constituency"`
	Password     string `yaml:"password"`
	Verified     bool   `yaml:"verified"`
}

// Summary counts what Apply created. Entries that already existed are skipped.
type Summary struct {
	Elections  int
	Candidates int
	Voters     int
}

// Catalog is the subset of *catalog.Catalog the loader needs
type Catalog interface {
	EnsurePresidential(ctx context.Context) (models.Election, error)
	CreateElection(ctx context.Context, electionType, constituency string) (models.Election, error)
	ListCandidates(ctx context.Context, f catalog.Filter) ([]models.Candidate, error)
	CreateCandidate(ctx context.Context, req models.CandidateRequest) (models.Candidate, error)
}

// Voters is the subset of *registry.Registry the loader needs
type Voters interface {
	Register(ctx context.Context, req models.RegisterVoterRequest) (models.Voter, error)
	MarkVerified(ctx context.Context, voterID string) error
}

func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Parse(fh)
}

// Apply creates everything in f that does not exist yet. Running it twice
// is a no-op the second time.
func Apply(ctx context.Context, f *File, cat Catalog, voters Voters) (Summary, error) {
	var sum Summary

	if _, err := cat.EnsurePresidential(ctx); err != nil {
		return sum, err
	}

	for _, e := range f.Elections {
		created, err := ensureElection(ctx, cat, e.Type, e.Constituency)
		if err != nil {
			return sum, err
		}
		if created {
			sum.Elections++
		}
	}

	for _, c := range f.Candidates {
		created, err := ensureElection(ctx, cat, c.Type, c.Constituency)
		if err != nil {
			return sum, err
		}
		if created {
			sum.Elections++
		}

		exists, err := candidateExists(ctx, cat, c)
		if err != nil {
			return sum, err
		}
		if exists {
			continue
		}

		_, err = cat.CreateCandidate(ctx, models.CandidateRequest{
			Name:         c.Name,
			Party:        c.Party,
			Type:         c.Type,
			Constituency: c.Constituency,
			Image:        c.Image,
		})
		if err != nil {
			return sum, fmt.Errorf("candidate %q: %w", c.Name, err)
		}
		sum.Candidates++
	}

	for _, v := range f.Voters {
		_, err := voters.Register(ctx, models.RegisterVoterRequest{
			Name:         v.Name,
			Phone:        v.Phone,
			VoterID:      v.VoterID,
			Email:        v.Email,
			Password:     v.Password,
			Constituency: v.Constituency,
		})
		switch {
		case err == nil:
			sum.Voters++
		case errors.Is(err, registry.ErrVoterExists):
		default:
			return sum, fmt.Errorf("voter %q: %w", v.VoterID, err)
		}

		if v.Verified {
			err := voters.MarkVerified(ctx, strings.TrimSpace(v.VoterID))
			if err != nil && !errors.Is(err, registry.ErrAlreadyVerified) {
				return sum, fmt.Errorf("voter %q: %w", v.VoterID, err)
			}
		}
	}

	slog.Info("seed applied", "elections", sum.Elections, "candidates", sum.Candidates, "voters", sum.Voters)
	return sum, nil
}

func ensureElection(ctx context.Context, cat Catalog, electionType, constituency string) (bool, error) {
	if electionType == models.ElectionPresidential {
		return false, nil
	}
	_, err := cat.CreateElection(ctx, electionType, constituency)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, catalog.ErrElectionExists):
		return false, nil
	default:
		return false, fmt.Errorf("election %s %q: %w", electionType, constituency, err)
	}
}

func candidateExists(ctx context.Context, cat Catalog, c Candidate) (bool, error) {
	existing, err := cat.ListCandidates(ctx, catalog.Filter{
		Type:           c.Type,
		Constituency:   c.Constituency,
		IncludeRetired: true,
	})
	if err != nil {
		return false, err
	}
	name := strings.TrimSpace(c.Name)
	for _, e := range existing {
		if strings.EqualFold(e.Name, name) {
			return true, nil
		}
	}
	return false, nil
}
