// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/models"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/vote":
			var req models.VoteRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.CandidateID == "bob" {
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(models.VoteResponse{Error: models.CodeAlreadyVoted, CandidateID: "alice", CandidateName: "Alice"})
				return
			}
			json.NewEncoder(w).Encode(models.VoteResponse{Success: true, CandidateID: req.CandidateID, CandidateName: "Alice"})
		case "/elections/e1/results":
			json.NewEncoder(w).Encode(models.ResultsResponse{
				ElectionID: "e1",
				TotalVotes: 1500,
				Candidates: []models.Candidate{{ID: "alice", DisplayName: "Alice", Tally: 1000}, {ID: "bob", DisplayName: "Bob", Tally: 500}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunVoteAndResults(t *testing.T) {
	srv := testServer(t)
	hints := filepath.Join(t.TempDir(), "votes.json")

	var out bytes.Buffer
	if err := run(context.Background(), []string{"-server", srv.URL, "-hints", hints, "vote", "e1", "alice"}, &out); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if !strings.Contains(out.String(), "Voted for Alice") {
		t.Errorf("Unexpected output %q", out.String())
	}

	out.Reset()
	if err := run(context.Background(), []string{"-server", srv.URL, "-hints", hints, "vote", "e1", "bob"}, &out); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if !strings.Contains(out.String(), "already voted for Alice") {
		t.Errorf("Unexpected output %q", out.String())
	}

	out.Reset()
	if err := run(context.Background(), []string{"-server", srv.URL, "-hints", hints, "results", "e1"}, &out); err != nil {
		t.Fatalf("results: %v", err)
	}
	if !strings.Contains(out.String(), "1,500 votes") || !strings.Contains(out.String(), "66.7%") {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func TestRunUsage(t *testing.T) {
	hints := filepath.Join(t.TempDir(), "votes.json")
	for _, args := range [][]string{{}, {"vote", "e1"}, {"nope"}} {
		err := run(context.Background(), append([]string{"-hints", hints}, args...), &bytes.Buffer{})
		if !errors.Is(err, errUsage) {
			t.Errorf("run(%v) = %v, want usage error", args, err)
		}
	}
}

func TestRunWhoami(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-hints", filepath.Join(t.TempDir(), "v.json"), "whoami"}, &out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "(device)") {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func TestRunAdminKey(t *testing.T) {
	t.Setenv("ADMIN_KEY_SALT", "")

	tests := []struct {
		name    string
		args    []string
		env     string
		want    string
		wantErr error
	}{
		{"flag salt", []string{"-admin-salt", "s3cret", "admin-key", "e1"}, "", auth.GenerateAdminKey("e1", "s3cret"), nil},
		{"env salt", []string{"admin-key", "e1"}, "from-env", auth.GenerateAdminKey("e1", "from-env"), nil},
		{"missing salt", []string{"admin-key", "e1"}, "", "", errNoSalt},
		{"missing election", []string{"-admin-salt", "s3cret", "admin-key"}, "", "", errUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ADMIN_KEY_SALT", tt.env)

			var out bytes.Buffer
			err := run(context.Background(), tt.args, &out)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("run(%v) = %v, want %v", tt.args, err, tt.wantErr)
			}
			if got := strings.TrimSpace(out.String()); got != tt.want {
				t.Errorf("Expected key %q, got %q", tt.want, got)
			}
		})
	}
}
