// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-vote/admission"
	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/identity"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/store"
	"github.com/danielhkuo/quickly-vote/testutil"
)

func castTestVote(t *testing.T, s *store.Store, candidateID, token string) {
	t.Helper()
	castTestVoteAs(t, s, identity.SourceDevice, candidateID, token)
}

func castTestVoteAs(t *testing.T, s *store.Store, source identity.Source, candidateID, token string) {
	t.Helper()

	res, err := admission.NewService(s).Admit(context.Background(), admission.Request{
		Identity:    identity.Token(token),
		Source:      source,
		CandidateID: candidateID,
	})
	if err != nil {
		t.Fatalf("Failed to admit vote: %v", err)
	}
	if _, ok := res.(admission.Accepted); !ok {
		t.Fatalf("Expected vote accepted, got %#v", res)
	}
}

func electionRequest(method, path, electionID string, headers map[string]string) *http.Request {
	req := testutil.MakeRequest(method, path, nil, headers)
	req.SetPathValue("id", electionID)
	return req
}

func TestGetElection(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := NewElectionHandler(s, nil)

	open := testutil.CreateOpenElection(t, s)
	testutil.AddTestCandidate(t, s, open.ID, "Alice")
	testutil.AddTestCandidate(t, s, open.ID, "Bob")

	now := time.Now()
	closed := testutil.CreateTestElection(t, s, now.Add(-2*time.Hour), now.Add(-time.Hour))

	t.Run("open election", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.GetElection(w, electionRequest("GET", "/elections/"+open.ID, open.ID, nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.ElectionInfoResponse
		testutil.AssertJSON(t, w, &resp)

		if resp.Election.ID != open.ID || resp.Election.Name != "Test Election" {
			t.Errorf("Unexpected election: %+v", resp.Election)
		}
		if !resp.Open {
			t.Error("Expected election to be open")
		}
		if resp.ClosesIn == "" {
			t.Error("Expected closes_in for an open election")
		}
		if len(resp.Candidates) != 2 {
			t.Fatalf("Expected 2 candidates, got %d", len(resp.Candidates))
		}
		if resp.Candidates[0].DisplayName != "Alice" || resp.Candidates[1].DisplayName != "Bob" {
			t.Errorf("Expected candidates ordered by name, got %+v", resp.Candidates)
		}
	})

	t.Run("closed election", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.GetElection(w, electionRequest("GET", "/elections/"+closed.ID, closed.ID, nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.ElectionInfoResponse
		testutil.AssertJSON(t, w, &resp)

		if resp.Open {
			t.Error("Expected election to be closed")
		}
		if resp.ClosesIn != "" {
			t.Errorf("Expected empty closes_in, got '%s'", resp.ClosesIn)
		}
	})

	t.Run("unknown election", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.GetElection(w, electionRequest("GET", "/elections/missing", "missing", nil))
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestGetResults(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := NewElectionHandler(s, nil)

	e := testutil.CreateOpenElection(t, s)
	alice := testutil.AddTestCandidate(t, s, e.ID, "Alice")
	bob := testutil.AddTestCandidate(t, s, e.ID, "Bob")
	testutil.AddTestCandidate(t, s, e.ID, "Carol")

	castTestVote(t, s, bob, "device-1")
	castTestVote(t, s, bob, "device-2")
	castTestVote(t, s, alice, "device-3")

	w := httptest.NewRecorder()
	handler.GetResults(w, electionRequest("GET", "/elections/"+e.ID+"/results", e.ID, nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.ResultsResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.TotalVotes != 3 {
		t.Errorf("Expected 3 total votes, got %d", resp.TotalVotes)
	}
	if !resp.Open {
		t.Error("Expected election to be open")
	}

	expected := []struct {
		name  string
		tally int64
	}{
		{"Bob", 2},
		{"Alice", 1},
		{"Carol", 0},
	}
	if len(resp.Candidates) != len(expected) {
		t.Fatalf("Expected %d candidates, got %d", len(expected), len(resp.Candidates))
	}
	for i, want := range expected {
		got := resp.Candidates[i]
		if got.DisplayName != want.name || got.Tally != want.tally {
			t.Errorf("Position %d: expected %s with %d, got %s with %d", i, want.name, want.tally, got.DisplayName, got.Tally)
		}
	}
}

func TestGetMyVote(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := NewElectionHandler(s, auth.NewSessionVerifier(testutil.TestSessionSecret))

	e := testutil.CreateOpenElection(t, s)
	alice := testutil.AddTestCandidate(t, s, e.ID, "Alice")
	castTestVote(t, s, alice, "device-1")
	castTestVoteAs(t, s, identity.SourceAccount, alice, "account-7")

	session, err := auth.IssueSession("account-7", testutil.TestSessionSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue session: %v", err)
	}

	tests := []struct {
		name           string
		headers        map[string]string
		expectedStatus int
		expectedVoted  bool
	}{
		{"voted device", map[string]string{IdentityTokenHeader: "device-1"}, http.StatusOK, true},
		{"new device", map[string]string{IdentityTokenHeader: "device-2"}, http.StatusOK, false},
		{"device header naming an account", map[string]string{IdentityTokenHeader: "account-7"}, http.StatusOK, false},
		{"session", map[string]string{"Authorization": "Bearer " + session}, http.StatusOK, true},
		{"session wins over header", map[string]string{"Authorization": "Bearer " + session, IdentityTokenHeader: "device-2"}, http.StatusOK, true},
		{"missing identity", nil, http.StatusBadRequest, false},
		{"invalid session", map[string]string{"Authorization": "Bearer not-a-jwt"}, http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.GetMyVote(w, electionRequest("GET", "/elections/"+e.ID+"/my-vote", e.ID, tt.headers))

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp models.MyVoteResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.HasVoted != tt.expectedVoted {
				t.Errorf("Expected has_voted %v, got %v", tt.expectedVoted, resp.HasVoted)
			}
			if !tt.expectedVoted {
				return
			}
			if resp.CandidateID != alice || resp.CandidateName != "Alice" {
				t.Errorf("Expected Alice, got %+v", resp)
			}
			if resp.CastAt == nil {
				t.Error("Expected cast_at")
			}
		})
	}

	t.Run("unknown election", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.GetMyVote(w, electionRequest("GET", "/elections/missing/my-vote", "missing",
			map[string]string{IdentityTokenHeader: "device-1"}))
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}
