package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gymhub/internal/adapters/resource"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) resource.Problem {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, resource.ProblemContentType) {
		t.Fatalf("Content-Type = %q, want %s (body %s)", ct, resource.ProblemContentType, rec.Body.String())
	}
	var p resource.Problem
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	return p
}

// TestAPI_ProblemStatusAndCode verifies each failure reaches the client as a
// problem document with a stable code.
func TestAPI_ProblemStatusAndCode(t *testing.T) {
	env := newTestEnv(t)
	mia := env.session(miaID)
	coach := env.session(coachID)

	enroll := func(member, class string) string {
		return `{"memberId":"` + member + `","classId":"` + class + `"}`
	}

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		token      string
		wantStatus int
		wantCode   string
	}{
		{"unknown class", http.MethodGet, "/api/classes/nope", "", "", http.StatusNotFound, resource.CodeNotFound},
		{"roster of unknown class", http.MethodGet, "/api/classes/nope/members", "", "", http.StatusNotFound, resource.CodeNotFound},
		{"unknown user", http.MethodGet, "/api/users/nope", "", "", http.StatusNotFound, resource.CodeNotFound},
		{"enroll anonymously", http.MethodPost, "/api/enrollments", enroll(miaID, openClassID), "", http.StatusUnauthorized, resource.CodeUnauthenticated},
		{"enroll someone else", http.MethodPost, "/api/enrollments", enroll(benID, openClassID), mia, http.StatusForbidden, resource.CodeForbidden},
		{"trainer enrolls", http.MethodPost, "/api/enrollments", enroll(coachID, openClassID), coach, http.StatusForbidden, resource.CodeForbidden},
		{"class is full", http.MethodPost, "/api/enrollments", enroll(miaID, fullClassID), mia, http.StatusConflict, resource.CodeClassFull},
		{"enroll in unknown class", http.MethodPost, "/api/enrollments", enroll(miaID, "nope"), mia, http.StatusNotFound, resource.CodeNotFound},
		{"unenroll without a spot", http.MethodDelete, "/api/enrollments", enroll(miaID, openClassID), mia, http.StatusNotFound, resource.CodeNotEnrolled},
		{"read another member's enrollments", http.MethodGet, "/api/enrollments?memberId=" + benID, "", mia, http.StatusForbidden, resource.CodeForbidden},
		{"enrollments without memberId", http.MethodGet, "/api/enrollments", "", mia, http.StatusBadRequest, resource.CodeInvalid},
		{"unknown field", http.MethodPost, "/api/enrollments", `{"memberId":"a","classId":"b","extra":1}`, mia, http.StatusBadRequest, resource.CodeInvalid},
		{"lockers need free=true", http.MethodGet, "/api/lockers", "", mia, http.StatusBadRequest, resource.CodeInvalid},
		{"unknown endpoint", http.MethodGet, "/api/nope", "", "", http.StatusNotFound, resource.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.sendJSON(tt.method, tt.path, tt.body, tt.token)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			p := decodeProblem(t, rec)
			if p.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", p.Code, tt.wantCode)
			}
			if p.Status != tt.wantStatus {
				t.Errorf("problem status = %d, want %d", p.Status, tt.wantStatus)
			}
		})
	}
}

// TestAPI_AlreadyEnrolled verifies the duplicate enrollment conflict.
func TestAPI_AlreadyEnrolled(t *testing.T) {
	env := newTestEnv(t)
	rec := env.sendJSON(http.MethodPost, "/api/enrollments", `{"memberId":"`+benID+`","classId":"`+openClassID+`"}`, env.session(benID))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if p := decodeProblem(t, rec); p.Code != resource.CodeAlreadyEnrolled {
		t.Errorf("code = %q, want %q", p.Code, resource.CodeAlreadyEnrolled)
	}
}

// TestAPI_CreateClass_ValidationFields verifies field errors use JSON names.
func TestAPI_CreateClass_ValidationFields(t *testing.T) {
	env := newTestEnv(t)
	body := `{"name":"","type":"yoga","trainerId":"` + trainerID + `","startsAt":"2099-01-05T18:00:00Z","maxCapacity":0}`
	rec := env.sendJSON(http.MethodPost, "/api/classes", body, env.session(coachID))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
	p := decodeProblem(t, rec)
	for _, field := range []string{"name", "maxCapacity"} {
		if p.Fields[field] == "" {
			t.Errorf("missing field error for %q in %v", field, p.Fields)
		}
	}
	if _, ok := p.Fields["type"]; ok {
		t.Errorf("unexpected error for valid field type: %v", p.Fields)
	}
}

// TestAPI_CreateClass verifies scheduling rules for trainers.
func TestAPI_CreateClass(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(96 * time.Hour).UTC().Format(time.RFC3339)

	tests := []struct {
		name       string
		token      string
		startsAt   string
		wantStatus int
	}{
		{"trainer schedules own class", env.session(coachID), start, http.StatusCreated},
		{"member cannot schedule", env.session(miaID), start, http.StatusForbidden},
		{"start in the past", env.session(coachID), "2001-01-01T10:00:00Z", http.StatusBadRequest},
		{"anonymous", "", start, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"name":"Evening Flow","type":"yoga","trainerId":"` + trainerID + `","startsAt":"` + tt.startsAt + `","maxCapacity":10}`
			rec := env.sendJSON(http.MethodPost, "/api/classes", body, tt.token)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if rec.Code != http.StatusCreated {
				return
			}
			var got resource.ClassResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Class.ID == "" || got.Class.AvailableSpots != 10 {
				t.Errorf("class = %+v, want an ID and 10 spots", got.Class)
			}
		})
	}
}

// TestAPI_EnrollmentEchoesAvailableSpots verifies both writes report the new count.
func TestAPI_EnrollmentEchoesAvailableSpots(t *testing.T) {
	env := newTestEnv(t)
	mia := env.session(miaID)
	body := `{"memberId":"` + miaID + `","classId":"` + openClassID + `"}`

	rec := env.sendJSON(http.MethodPost, "/api/enrollments", body, mia)
	if rec.Code != http.StatusCreated {
		t.Fatalf("enroll status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var created resource.EnrollmentResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.AvailableSpots == nil || *created.AvailableSpots != 0 {
		t.Errorf("availableSpots after enroll = %v, want 0", created.AvailableSpots)
	}
	if created.Enrollment.MemberName != "Mia" {
		t.Errorf("memberName = %q, want Mia", created.Enrollment.MemberName)
	}

	rec = env.sendJSON(http.MethodDelete, "/api/enrollments", body, mia)
	if rec.Code != http.StatusOK {
		t.Fatalf("unenroll status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var deleted resource.UnenrollResponse
	if err := json.NewDecoder(rec.Body).Decode(&deleted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if deleted.AvailableSpots == nil || *deleted.AvailableSpots != 1 {
		t.Errorf("availableSpots after unenroll = %v, want 1", deleted.AvailableSpots)
	}
}

// TestAPI_LockerAssignments covers reading, reserving and racing for a locker.
func TestAPI_LockerAssignments(t *testing.T) {
	env := newTestEnv(t)
	mia := env.session(miaID)
	ben := env.session(benID)

	rec := env.get("/api/assignments?userId="+miaID, mia)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"assignment":null`) {
		t.Fatalf("empty assignment = %d %s", rec.Code, rec.Body.String())
	}

	rec = env.sendJSON(http.MethodPost, "/api/assignments", `{"userId":"`+miaID+`","lockerId":"`+lockerA+`"}`, mia)
	if rec.Code != http.StatusCreated {
		t.Fatalf("reserve status = %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = env.sendJSON(http.MethodPost, "/api/assignments", `{"userId":"`+benID+`","lockerId":"`+lockerA+`"}`, ben)
	if rec.Code != http.StatusConflict {
		t.Fatalf("taken locker status = %d, want 409", rec.Code)
	}
	if p := decodeProblem(t, rec); p.Code != resource.CodeLockerTaken {
		t.Errorf("code = %q, want %q", p.Code, resource.CodeLockerTaken)
	}

	if rec := env.get("/api/assignments?userId="+miaID, ben); rec.Code != http.StatusForbidden {
		t.Errorf("member reading another member = %d, want 403", rec.Code)
	}
	rec = env.get("/api/assignments?userId="+miaID, env.session(coachID))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"lockerNumber":"A1"`) {
		t.Errorf("trainer read = %d %s", rec.Code, rec.Body.String())
	}

	rec = env.get("/api/lockers?free=true", ben)
	if rec.Code != http.StatusOK {
		t.Fatalf("free lockers status = %d", rec.Code)
	}
	var free resource.LockersResponse
	if err := json.NewDecoder(rec.Body).Decode(&free); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(free.Lockers) != 1 || free.Lockers[0].ID != lockerB {
		t.Errorf("free lockers = %+v, want only %s", free.Lockers, lockerB)
	}

	rec = env.sendJSON(http.MethodDelete, "/api/assignments", `{"userId":"`+miaID+`","lockerId":"`+lockerA+`"}`, mia)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("cancel status = %d (body %s)", rec.Code, rec.Body.String())
	}
	rec = env.sendJSON(http.MethodDelete, "/api/assignments", `{"userId":"`+miaID+`","lockerId":"`+lockerA+`"}`, mia)
	if p := decodeProblem(t, rec); rec.Code != http.StatusNotFound || p.Code != resource.CodeNoAssignment {
		t.Errorf("second cancel = %d %q, want 404 %q", rec.Code, p.Code, resource.CodeNoAssignment)
	}
}

// TestAPI_PublicReads verifies listings answer without a session and with empty arrays.
func TestAPI_PublicReads(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/api/classes", "/api/trainers", "/api/availability", "/api/classes/" + openClassID + "/members"} {
		rec := env.get(path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, rec.Code)
		}
	}
	rec := env.get("/api/availability?trainerId=nobody", "")
	if !strings.Contains(rec.Body.String(), `"availability":[]`) {
		t.Errorf("empty availability body = %s", rec.Body.String())
	}
}

// TestRejectRateLimited verifies API callers get a problem and pages get text.
func TestRejectRateLimited(t *testing.T) {
	rec := httptest.NewRecorder()
	rejectRateLimited(rec, httptest.NewRequest(http.MethodGet, "/api/classes", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("api status = %d, want 429", rec.Code)
	}
	if p := decodeProblem(t, rec); p.Code != resource.CodeRateLimited {
		t.Errorf("code = %q, want %q", p.Code, resource.CodeRateLimited)
	}

	rec = httptest.NewRecorder()
	rejectRateLimited(rec, httptest.NewRequest(http.MethodGet, "/classes", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("page status = %d, want 429", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); strings.Contains(ct, "json") {
		t.Errorf("page Content-Type = %q, want text", ct)
	}
}

// TestNewMux_RateLimitSparesPageClientOnly runs the full middleware chain with a
// one-request budget. The page's own API calls carry the internal key and pass;
// anything else from loopback is limited like any other client.
func TestNewMux_RateLimitSparesPageClientOnly(t *testing.T) {
	env := newTestEnv(t)
	env.handler = NewMux(Options{
		Stores:      env.stores,
		APIBaseURL:  env.server.URL,
		HTTPTimeout: 5 * time.Second,
		NameWorkers: 2,
		CSRFKey:     make([]byte, 32),
		RateLimit:   1,
		RateWindow:  time.Hour,
	})

	page := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/classes", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		return env.do(req, "")
	}
	rec := page()
	if rec.Code != http.StatusOK {
		t.Fatalf("page status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `data-class-id="`+openClassID+`"`) {
		t.Error("page rendered without classes; internal API calls were limited")
	}
	if rec := page(); rec.Code != http.StatusTooManyRequests {
		t.Errorf("second page status = %d, want 429", rec.Code)
	}

	codes := make([]int, 0, 2)
	for range 2 {
		resp, err := http.Get(env.server.URL + "/api/classes")
		if err != nil {
			t.Fatalf("GET /api/classes: %v", err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("unkeyed loopback statuses = %v, want [200 429]", codes)
	}
}
