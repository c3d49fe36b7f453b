// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/models"
)

// Election window used across handler tests, in Bangkok time
var (
	ICT           = time.FixedZone("ICT", 7*60*60)
	VoteStart     = time.Date(2025, 6, 10, 7, 0, 0, 0, ICT)
	VoteEnd       = time.Date(2025, 6, 11, 18, 0, 0, 0, ICT)
	ResultsPublic = time.Date(2025, 6, 12, 0, 0, 0, 0, ICT)

	// DuringVoting and AfterAnnouncement sit inside the open and announced phases
	DuringVoting      = VoteStart.Add(2 * time.Hour)
	AfterAnnouncement = ResultsPublic.Add(time.Hour)
)

// Offices is a small ballot used by handler tests
var Offices = []models.OfficeInfo{
	{ID: "president", Title: "President"},
	{ID: "secretary", Title: "Secretary"},
}

// SetupTestDB opens a fresh SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := db.Open(ctx, db.TypeSQLite, filepath.Join(t.TempDir(), "ballotbox.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// GetTestConfig returns a standard development configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseType:       db.TypeSQLite,
		Environment:        cliparse.EnvDevelopment,
		CacheTTL:           election.DefaultCacheTTL,
		AllowedEmailDomain: "chula.ac.th",
	}
}

// NewTestEngine builds an engine over a SQL store on a fresh database.
// The clock is fixed at now; requests may still override it.
func NewTestEngine(t *testing.T, now time.Time) (*election.Engine, *db.SQLStore) {
	t.Helper()

	store := db.NewSQLStore(SetupTestDB(t), db.TypeSQLite)
	engine, err := election.New(election.Config{
		Period: models.ElectionPeriod{
			VoteStart:          VoteStart,
			VoteEnd:            VoteEnd,
			ResultAnnouncement: ResultsPublic,
		},
		Offices:  Offices,
		Rule:     election.DefaultVoterRule(),
		CacheTTL: election.DefaultCacheTTL,
	}, election.Dependencies{
		Store: store,
		Cache: election.NewMemoryCache(election.FixedClock{T: now}, election.DefaultCacheTTL),
		Clock: election.FixedClock{T: now},
	})
	if err != nil {
		t.Fatalf("Failed to build engine: %v", err)
	}
	return engine, store
}

// DevAuthenticator accepts development Basic credentials only
func DevAuthenticator() *auth.HeaderAuthenticator {
	return auth.NewHeaderAuthenticator(nil, auth.DevProvider{})
}

// DevAuthHeader returns an Authorization header for voterID at the given
// time; a zero time leaves the server clock in charge.
func DevAuthHeader(voterID string, at time.Time) map[string]string {
	return map[string]string{"Authorization": "Basic " + auth.DevCredential(voterID, at)}
}

// Ballot builds a vote request choosing c for every test office
func Ballot(c models.Choice) models.SubmitVoteRequest {
	req := models.SubmitVoteRequest{}
	for _, o := range Offices {
		req.Votes = append(req.Votes, models.BallotEntry{Office: o.ID, Choice: c})
	}
	return req
}

// MakeRequest creates an HTTP test request. String bodies are sent as is.
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case string:
		req = httptest.NewRequest(method, path, bytes.NewReader([]byte(b)))
		req.Header.Set("Content-Type", "application/json")
	default:
		jsonBody, _ := json.Marshal(b)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertErrorCode checks a {"success":false,"error":code} response
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	AssertStatus(t, w, status)

	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Success {
		t.Error("Expected success to be false")
	}
	if resp.Error != code {
		t.Errorf("Expected error %q, got %q", code, resp.Error)
	}
}
