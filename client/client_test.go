// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-vote/identity"
	"github.com/danielhkuo/quickly-vote/models"
)

func fixedResolver() *identity.Resolver {
	return identity.NewResolver(nil, func() identity.Signals {
		return identity.Signals{ScreenWidth: 80, ScreenHeight: 24, Timezone: "UTC", Platform: "linux/amd64"}
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestVoteSendsIdentity(t *testing.T) {
	resolver := fixedResolver()
	var got models.VoteRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/vote" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, models.VoteResponse{Success: true, CandidateID: got.CandidateID, CandidateName: "Alice"})
	}))
	defer srv.Close()

	res, err := New(srv.URL, resolver).Vote(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Vote() error = %v", err)
	}
	if !res.Accepted() || res.Response.CandidateName != "Alice" {
		t.Errorf("Expected accepted vote, got %+v", res)
	}
	if got.IdentityToken != string(resolver.Resolve()) || got.CandidateID != "alice" {
		t.Errorf("Server received %+v", got)
	}
}

func TestVoteRejectionIsNotAnError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusConflict, models.VoteResponse{Error: models.CodeAlreadyVoted, CandidateID: "bob"})
	}))
	defer srv.Close()

	res, err := New(srv.URL, fixedResolver()).Vote(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Vote() error = %v", err)
	}
	if res.Accepted() || res.Response.Error != models.CodeAlreadyVoted || res.Response.CandidateID != "bob" {
		t.Errorf("Unexpected result %+v", res)
	}
	if calls.Load() != 1 {
		t.Errorf("Rejections must not be retried, got %d calls", calls.Load())
	}
}

func TestVoteRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusInternalServerError, models.VoteResponse{Error: models.CodeInternal})
			return
		}
		writeJSON(w, http.StatusOK, models.VoteResponse{Success: true, CandidateID: "alice"})
	}))
	defer srv.Close()

	res, err := New(srv.URL, fixedResolver(), WithMaxRetryTime(10*time.Second)).Vote(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Vote() error = %v", err)
	}
	if !res.Accepted() {
		t.Errorf("Expected accepted after retries, got %+v", res)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 calls, got %d", calls.Load())
	}
}

func TestVoteGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, models.VoteResponse{Error: models.CodeInternal})
	}))
	defer srv.Close()

	res, err := New(srv.URL, fixedResolver(), WithMaxRetryTime(0)).Vote(context.Background(), "alice")
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if res.Status != http.StatusInternalServerError {
		t.Errorf("Expected last status 500, got %d", res.Status)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected a single attempt, got %d", calls.Load())
	}
}

func TestVoteSendsSession(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, models.VoteResponse{Success: true})
	}))
	defer srv.Close()

	New(srv.URL, fixedResolver(), WithSession("abc.def.ghi")).Vote(context.Background(), "alice")
	if auth != "Bearer abc.def.ghi" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestReads(t *testing.T) {
	resolver := fixedResolver()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/elections/e1":
			writeJSON(w, http.StatusOK, models.ElectionInfoResponse{Election: models.Election{ID: "e1"}, Open: true})
		case "/elections/e1/results":
			writeJSON(w, http.StatusOK, models.ResultsResponse{ElectionID: "e1", TotalVotes: 4})
		case "/elections/e1/my-vote":
			if r.Header.Get("X-Identity-Token") != string(resolver.Resolve()) {
				t.Errorf("my-vote without identity token")
			}
			writeJSON(w, http.StatusOK, models.MyVoteResponse{HasVoted: true, CandidateID: "alice"})
		default:
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Not Found", Message: "Election not found"})
		}
	}))
	defer srv.Close()

	c := New(srv.URL, resolver)
	ctx := context.Background()

	info, err := c.Election(ctx, "e1")
	if err != nil || !info.Open {
		t.Errorf("Election() = %+v, %v", info, err)
	}
	results, err := c.Results(ctx, "e1")
	if err != nil || results.TotalVotes != 4 {
		t.Errorf("Results() = %+v, %v", results, err)
	}
	mine, err := c.MyVote(ctx, "e1")
	if err != nil || !mine.HasVoted || mine.CandidateID != "alice" {
		t.Errorf("MyVote() = %+v, %v", mine, err)
	}

	if _, err := c.Election(ctx, "missing"); !errors.Is(err, ErrUnexpectedResponse) {
		t.Errorf("Expected ErrUnexpectedResponse, got %v", err)
	}
}

func TestHintFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "votes.json")
	h := NewHintFile(path)

	if _, ok, err := h.Get("e1"); err != nil || ok {
		t.Fatalf("Get() on missing file = %v, %v", ok, err)
	}

	hint := Hint{ElectionID: "e1", CandidateID: "alice", CandidateName: "Alice", VotedAt: time.Now().UTC().Truncate(time.Second)}
	if err := h.Put(hint); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := h.Put(Hint{ElectionID: "e2", CandidateID: "bob"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok, err := h.Get("e1")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if got.CandidateID != "alice" || !got.VotedAt.Equal(hint.VotedAt) {
		t.Errorf("Get() = %+v, want %+v", got, hint)
	}
}

func TestHintFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "votes.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHintFile(path)
	if _, ok, err := h.Get("e1"); err != nil || ok {
		t.Errorf("Corrupt hint file should read as empty, got %v, %v", ok, err)
	}
	if err := h.Put(Hint{ElectionID: "e1"}); err != nil {
		t.Errorf("Put() should overwrite a corrupt file, got %v", err)
	}
}
