package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gymhub/internal/adapters/http/middleware"
	accountStore "gymhub/internal/adapters/storage/account"
	availabilityStore "gymhub/internal/adapters/storage/availability"
	enrollmentStore "gymhub/internal/adapters/storage/enrollment"
	gymclassStore "gymhub/internal/adapters/storage/gymclass"
	lockerStore "gymhub/internal/adapters/storage/locker"
	"gymhub/internal/adapters/storage/storagetest"
	trainerStore "gymhub/internal/adapters/storage/trainer"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/application/reconcile"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/enrollment"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/locker"
	"gymhub/internal/domain/trainer"
)

// Fixture IDs seeded by newTestEnv.
const (
	miaID     = "acct-mia"
	benID     = "acct-ben"
	coachID   = "acct-coach"
	adminID   = "acct-admin"
	trainerID = "trainer-sam"

	openClassID = "class-yoga"  // capacity 2, Ben enrolled
	fullClassID = "class-spin"  // capacity 1, Ben enrolled
	pastClassID = "class-early" // already finished

	lockerA = "locker-a"
	lockerB = "locker-b"

	loginPassword = "correct-horse-battery"
)

// testEnv is the app wired to a migrated in-memory database. Pages reach the
// API through a real loopback server, the way the binary runs.
type testEnv struct {
	t       *testing.T
	handler http.Handler
	server  *httptest.Server
	stores  *Stores
	loginID string // account created through ExecuteCreateAccount
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := storagetest.OpenDB(t)
	st := &Stores{
		AccountStore:      accountStore.NewSQLiteStore(db),
		TrainerStore:      trainerStore.NewSQLiteStore(db),
		ClassStore:        gymclassStore.NewSQLiteStore(db),
		EnrollmentStore:   enrollmentStore.NewSQLiteStore(db),
		LockerStore:       lockerStore.NewSQLiteStore(db),
		AvailabilityStore: availabilityStore.NewSQLiteStore(db),
	}

	env := &testEnv{t: t, stores: st}
	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.handler.ServeHTTP(w, r)
	}))
	t.Cleanup(env.server.Close)

	configure(Options{
		Stores:      st,
		APIBaseURL:  env.server.URL,
		HTTPTimeout: 5 * time.Second,
		Strategy:    reconcile.StrategyAuto,
		NameWorkers: 4,
	})
	mux := http.NewServeMux()
	registerRoutes(mux)
	env.handler = middleware.Auth(sessions)(mux)

	env.seed()
	return env
}

func (e *testEnv) seed() {
	t := e.t
	ctx := context.Background()
	now := time.Now().UTC()

	for _, a := range []account.Account{
		{ID: miaID, Email: "mia@gymhub.test", DisplayName: "Mia", Role: account.RoleMember, CreatedAt: now},
		{ID: benID, Email: "ben@gymhub.test", DisplayName: "Ben", Role: account.RoleMember, CreatedAt: now},
		{ID: coachID, Email: "sam@gymhub.test", DisplayName: "Sam", Role: account.RoleTrainer, CreatedAt: now},
		{ID: adminID, Email: "admin@gymhub.test", DisplayName: "Admin", Role: account.RoleAdmin, CreatedAt: now},
	} {
		if err := e.stores.AccountStore.Save(ctx, a); err != nil {
			t.Fatalf("save account %s: %v", a.ID, err)
		}
	}
	created, err := orchestrators.ExecuteCreateAccount(ctx, orchestrators.CreateAccountInput{
		Email:       "lena@gymhub.test",
		DisplayName: "Lena",
		Password:    loginPassword,
		Role:        account.RoleMember,
	}, orchestrators.CreateAccountDeps{AccountStore: e.stores.AccountStore})
	if err != nil {
		t.Fatalf("create login account: %v", err)
	}
	e.loginID = created.ID

	if err := e.stores.TrainerStore.Save(ctx, trainer.Trainer{
		ID: trainerID, AccountID: coachID, Name: "Sam", Bio: "Ten years of **strength** coaching.",
	}); err != nil {
		t.Fatalf("save trainer: %v", err)
	}

	for _, c := range []gymclass.Class{
		{ID: openClassID, Name: "Morning Yoga", Type: "yoga", TrainerID: trainerID, StartsAt: now.Add(48 * time.Hour), MaxCapacity: 2},
		{ID: fullClassID, Name: "Spin Blast", Type: "spin", TrainerID: trainerID, StartsAt: now.Add(72 * time.Hour), MaxCapacity: 1},
		{ID: pastClassID, Name: "Early Lift", Type: "strength", TrainerID: trainerID, StartsAt: now.Add(-48 * time.Hour), MaxCapacity: 5},
	} {
		if err := e.stores.ClassStore.Save(ctx, c); err != nil {
			t.Fatalf("save class %s: %v", c.ID, err)
		}
	}
	for _, classID := range []string{openClassID, fullClassID} {
		if _, err := e.stores.EnrollmentStore.Create(ctx, enrollment.Record{
			ID: "enr-ben-" + classID, MemberID: benID, ClassID: classID, CreatedAt: now,
		}); err != nil {
			t.Fatalf("enroll ben in %s: %v", classID, err)
		}
	}

	for _, l := range []locker.Locker{{ID: lockerA, Number: "A1"}, {ID: lockerB, Number: "A2"}} {
		if err := e.stores.LockerStore.SaveLocker(ctx, l); err != nil {
			t.Fatalf("save locker: %v", err)
		}
	}
}

// session signs accountID in and returns its cookie token.
func (e *testEnv) session(accountID string) string {
	e.t.Helper()
	a, err := e.stores.AccountStore.GetByID(context.Background(), accountID)
	if err != nil {
		e.t.Fatalf("session for %s: %v", accountID, err)
	}
	token, err := sessions.Create(a.ID, a.Email, a.DisplayName, a.Role)
	if err != nil {
		e.t.Fatalf("create session: %v", err)
	}
	return token
}

// do serves one request; token may be empty for an anonymous caller.
func (e *testEnv) do(req *http.Request, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path, token string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil), token)
}

func (e *testEnv) postForm(path string, form url.Values, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, token)
}

func (e *testEnv) sendJSON(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, token)
}

// rosterIDs lists the member IDs enrolled in classID straight from the store.
func (e *testEnv) rosterIDs(classID string) []string {
	e.t.Helper()
	records, err := e.stores.EnrollmentStore.ListByClass(context.Background(), classID)
	if err != nil {
		e.t.Fatalf("list roster: %v", err)
	}
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.MemberID
	}
	return ids
}

func contains(ids []string, want string) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
