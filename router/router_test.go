// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-vote/admission"
	"github.com/danielhkuo/quickly-vote/audit"
	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/store"
	"github.com/danielhkuo/quickly-vote/testutil"
)

func newTestRouter(t *testing.T) (*http.ServeMux, *store.Store) {
	t.Helper()

	s := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	mux := NewRouter(s, admission.NewService(s), audit.New(s, 0), auth.NewSessionVerifier(cfg.SessionSecret), cfg)
	return mux, s
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "quickly-vote API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	mux, _ := newTestRouter(t)

	// Routes may answer 400, 401 or 404 for missing data; they must not be 405
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},
		{"POST", "/identity"},
		{"POST", "/vote"},
		{"GET", "/elections/test-id"},
		{"GET", "/elections/test-id/results"},
		{"GET", "/elections/test-id/my-vote"},
		{"GET", "/elections/test-id/admin/votes"},
		{"GET", "/elections/test-id/admin/audit"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"DELETE", "/elections/test-id/admin/votes"},
		{"PUT", "/elections/test-id"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestVoteThroughRouter(t *testing.T) {
	mux, s := newTestRouter(t)
	e := testutil.CreateOpenElection(t, s)
	alice := testutil.AddTestCandidate(t, s, e.ID, "Alice")

	vote := models.VoteRequest{CandidateID: alice, IdentityToken: "device-1"}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/vote", vote, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/vote", vote, nil))
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Path parameters reach the handlers
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/elections/"+e.ID+"/results", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var results models.ResultsResponse
	testutil.AssertJSON(t, w, &results)
	if results.ElectionID != e.ID || results.TotalVotes != 1 {
		t.Errorf("Unexpected results: %+v", results)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/elections/"+e.ID+"/my-vote", nil,
		map[string]string{"X-Identity-Token": "device-1"}))
	testutil.AssertStatus(t, w, http.StatusOK)

	var mine models.MyVoteResponse
	testutil.AssertJSON(t, w, &mine)
	if !mine.HasVoted || mine.CandidateID != alice {
		t.Errorf("Expected recorded vote for Alice, got %+v", mine)
	}
}
