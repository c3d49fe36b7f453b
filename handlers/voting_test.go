package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/testutil"
)

const (
	voterA = "6512345623"
	voterB = "6512345723"
)

func TestSubmitVote(t *testing.T) {
	engine, _ := testutil.NewTestEngine(t, testutil.DuringVoting)
	handler := NewElectionHandler(engine, testutil.DevAuthenticator())

	tests := []struct {
		name           string
		headers        map[string]string
		body           interface{}
		expectedStatus int
		expectedError  string
		expectedDetail string
	}{
		{
			name:           "valid ballot",
			headers:        testutil.DevAuthHeader(voterA, time.Time{}),
			body:           testutil.Ballot(models.Candidate(7)),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "second ballot from same voter",
			headers:        testutil.DevAuthHeader(voterA, time.Time{}),
			body:           testutil.Ballot(models.NoVote()),
			expectedStatus: http.StatusForbidden,
			expectedError:  "already-voted",
		},
		{
			name:           "missing authorization",
			body:           testutil.Ballot(models.NoVote()),
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "missing-authorization",
		},
		{
			name:           "garbage credential",
			headers:        map[string]string{"Authorization": "Basic !!!"},
			body:           testutil.Ballot(models.NoVote()),
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "invalid-token",
		},
		{
			name:           "bearer token without a bearer provider",
			headers:        map[string]string{"Authorization": "Bearer abc.def.ghi"},
			body:           testutil.Ballot(models.NoVote()),
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "invalid-token",
		},
		{
			name:           "before voting opens",
			headers:        testutil.DevAuthHeader(voterB, testutil.VoteStart.Add(-time.Second)),
			body:           testutil.Ballot(models.NoVote()),
			expectedStatus: http.StatusForbidden,
			expectedError:  "election-not-started",
		},
		{
			name:           "at vote end",
			headers:        testutil.DevAuthHeader(voterB, testutil.VoteEnd),
			body:           testutil.Ballot(models.NoVote()),
			expectedStatus: http.StatusForbidden,
			expectedError:  "election-ended",
		},
		{
			name:           "short voter id",
			headers:        testutil.DevAuthHeader("65123", time.Time{}),
			body:           testutil.Ballot(models.NoVote()),
			expectedStatus: http.StatusForbidden,
			expectedError:  "invalid-voter-id",
		},
		{
			name:           "voter outside the class",
			headers:        testutil.DevAuthHeader("6512345621", time.Time{}),
			body:           testutil.Ballot(models.NoVote()),
			expectedStatus: http.StatusForbidden,
			expectedError:  "ineligible-class",
		},
		{
			name:    "missing office",
			headers: testutil.DevAuthHeader(voterB, time.Time{}),
			body: models.SubmitVoteRequest{Votes: []models.BallotEntry{
				{Office: "president", Choice: models.NoVote()},
			}},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid-ballot",
			expectedDetail: "missing-office",
		},
		{
			name:           "malformed choice",
			headers:        testutil.DevAuthHeader(voterB, time.Time{}),
			body:           `{"votes":[{"position":"president","candidateId":"maybe"},{"position":"secretary","candidateId":1}]}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid-ballot",
			expectedDetail: "malformed-choice",
		},
		{
			name:           "malformed choice after voting closed",
			headers:        testutil.DevAuthHeader(voterB, testutil.VoteEnd.Add(time.Hour)),
			body:           `{"votes":[{"position":"president","candidateId":0},{"position":"secretary","candidateId":1}]}`,
			expectedStatus: http.StatusForbidden,
			expectedError:  "election-ended",
		},
		{
			name:           "invalid JSON",
			headers:        testutil.DevAuthHeader(voterB, time.Time{}),
			body:           `{"votes":`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid-body",
		},
	}

	// Cases run in order; the second one depends on the first
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/api/vote", tt.body, tt.headers)
			w := httptest.NewRecorder()

			handler.SubmitVote(w, req)

			if tt.expectedStatus == http.StatusOK {
				testutil.AssertStatus(t, w, http.StatusOK)
				var resp models.SuccessResponse
				testutil.AssertJSON(t, w, &resp)
				if !resp.Success {
					t.Error("Expected success to be true")
				}
				return
			}

			testutil.AssertErrorCode(t, w, tt.expectedStatus, tt.expectedError)
			if tt.expectedDetail != "" {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Message != tt.expectedDetail {
					t.Errorf("Expected detail %q, got %q", tt.expectedDetail, resp.Message)
				}
			}
		})
	}
}

func TestSubmitVoteFailureKeepsVoterEligible(t *testing.T) {
	engine, _ := testutil.NewTestEngine(t, testutil.DuringVoting)
	handler := NewElectionHandler(engine, testutil.DevAuthenticator())
	headers := testutil.DevAuthHeader(voterA, time.Time{})

	// Duplicate office
	bad := models.SubmitVoteRequest{Votes: []models.BallotEntry{
		{Office: "president", Choice: models.NoVote()},
		{Office: "president", Choice: models.Disapprove()},
	}}
	w := httptest.NewRecorder()
	handler.SubmitVote(w, testutil.MakeRequest("POST", "/api/vote", bad, headers))
	testutil.AssertErrorCode(t, w, http.StatusBadRequest, "invalid-ballot")

	w = httptest.NewRecorder()
	handler.Eligibility(w, testutil.MakeRequest("GET", "/api/eligibility", nil, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.EligibilityResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.Eligible {
		t.Errorf("Expected voter to stay eligible, reason %q", resp.Reason)
	}
}

func TestEligibility(t *testing.T) {
	engine, _ := testutil.NewTestEngine(t, testutil.DuringVoting)
	handler := NewElectionHandler(engine, testutil.DevAuthenticator())

	w := httptest.NewRecorder()
	handler.SubmitVote(w, testutil.MakeRequest("POST", "/api/vote",
		testutil.Ballot(models.Disapprove()), testutil.DevAuthHeader(voterA, time.Time{})))
	testutil.AssertStatus(t, w, http.StatusOK)

	tests := []struct {
		name             string
		voterID          string
		expectedEligible bool
		expectedReason   string
	}{
		{"fresh voter", voterB, true, ""},
		{"already voted", voterA, false, "already-voted"},
		{"bad length", "651234562", false, "invalid-voter-id"},
		{"other class", "6512345699", false, "ineligible-class"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/api/eligibility", nil, testutil.DevAuthHeader(tt.voterID, time.Time{}))
			w := httptest.NewRecorder()

			handler.Eligibility(w, req)

			testutil.AssertStatus(t, w, http.StatusOK)
			var resp models.EligibilityResponse
			testutil.AssertJSON(t, w, &resp)

			if resp.Eligible != tt.expectedEligible {
				t.Errorf("Expected eligible=%v, got %v", tt.expectedEligible, resp.Eligible)
			}
			if resp.Reason != tt.expectedReason {
				t.Errorf("Expected reason %q, got %q", tt.expectedReason, resp.Reason)
			}
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Eligibility(w, testutil.MakeRequest("GET", "/api/eligibility", nil, nil))
		testutil.AssertErrorCode(t, w, http.StatusUnauthorized, "missing-authorization")
	})
}

func TestMe(t *testing.T) {
	engine, _ := testutil.NewTestEngine(t, testutil.DuringVoting)
	handler := NewElectionHandler(engine, testutil.DevAuthenticator())

	t.Run("server clock", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Me(w, testutil.MakeRequest("GET", "/api/me", nil, testutil.DevAuthHeader(voterA, time.Time{})))

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.MeResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.StudentID != voterA {
			t.Errorf("Expected studentId %s, got %s", voterA, resp.StudentID)
		}
		if !resp.CurrentTime.Equal(testutil.DuringVoting) {
			t.Errorf("Expected currentTime %v, got %v", testutil.DuringVoting, resp.CurrentTime)
		}
	})

	t.Run("credential time override", func(t *testing.T) {
		at := testutil.VoteEnd.Add(30 * time.Minute)
		w := httptest.NewRecorder()
		handler.Me(w, testutil.MakeRequest("GET", "/api/me", nil, testutil.DevAuthHeader(voterB, at)))

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.MeResponse
		testutil.AssertJSON(t, w, &resp)
		if !resp.CurrentTime.Equal(at) {
			t.Errorf("Expected currentTime %v, got %v", at, resp.CurrentTime)
		}
	})
}
