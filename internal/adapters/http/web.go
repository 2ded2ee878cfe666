// Package web serves the gym pages and the /api resource endpoints they call.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"gymhub/internal/adapters/email"
	"gymhub/internal/adapters/http/middleware"
	"gymhub/internal/adapters/resource"
	accountStore "gymhub/internal/adapters/storage/account"
	availabilityStore "gymhub/internal/adapters/storage/availability"
	enrollmentStore "gymhub/internal/adapters/storage/enrollment"
	gymclassStore "gymhub/internal/adapters/storage/gymclass"
	lockerStore "gymhub/internal/adapters/storage/locker"
	trainerStore "gymhub/internal/adapters/storage/trainer"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/application/reconcile"
)

// Stores holds all storage dependencies. Only the /api handlers and login use them.
type Stores struct {
	AccountStore      accountStore.Store
	TrainerStore      trainerStore.Store
	ClassStore        gymclassStore.Store
	EnrollmentStore   enrollmentStore.Store
	LockerStore       lockerStore.Store
	AvailabilityStore availabilityStore.Store
}

// Options configures NewMux.
type Options struct {
	Stores      *Stores
	APIBaseURL  string // where pages reach /api; usually this server over loopback
	HTTPTimeout time.Duration
	Strategy    reconcile.Strategy
	NameWorkers int

	Sender       email.Sender // nil disables enrollment emails
	EmailFrom    string
	EmailReplyTo string

	CSRFKey        []byte
	Secure         bool // production: Secure cookies and HTTPS origin checks
	TrustedOrigins []string

	RateLimit   int
	RateWindow  time.Duration
	SlowRequest time.Duration
	InternalKey string // exempts the page client from the rate limit; random when empty
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// apiClient reaches the resource endpoints with no viewer attached.
var apiClient *resource.Client

// internalKey marks the page client's API calls for the rate limiter.
var internalKey string

// flow is the enrollment reconciliation shared by every roster page.
var flow *reconcile.Flow

// nameWorkers bounds the trainer list fan-out.
var nameWorkers int

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var emailReplyTo string

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
}

// configure sets the package state shared by handlers.
func configure(opts Options) {
	stores = opts.Stores
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = opts.Secure
	SetEmailSender(opts.Sender, opts.EmailFrom, opts.EmailReplyTo)
	nameWorkers = opts.NameWorkers

	internalKey = opts.InternalKey
	if internalKey == "" {
		internalKey = uuid.New().String()
	}
	apiClient = resource.New(resource.Options{
		BaseURL:       opts.APIBaseURL,
		SessionCookie: middleware.SessionCookieName,
		InternalKey:   internalKey,
		Timeout:       opts.HTTPTimeout,
	})
	flow = reconcile.NewFlow(viewerResources, reconcile.Config{
		Strategy:    opts.Strategy,
		NameWorkers: opts.NameWorkers,
	})
	slog.Info("web_event", "event", "configured",
		"api_base_url", opts.APIBaseURL,
		"roster_strategy", flow.Strategy().String(),
	)
}

// viewerResources binds the resource client to the viewer's session.
func viewerResources(v reconcile.Viewer) reconcile.Resources {
	return apiClient.WithSession(v.Token)
}

// clientFor returns the resource client acting as the viewer.
func clientFor(v reconcile.Viewer) *resource.Client {
	return apiClient.WithSession(v.Token)
}

// viewerFromRequest resolves the page viewer from the session in context.
func viewerFromRequest(r *http.Request) reconcile.Viewer {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		return reconcile.Anonymous
	}
	return reconcile.Viewer{
		Status:      reconcile.StatusAuthenticated,
		ID:          sess.AccountID,
		DisplayName: sess.DisplayName,
		Role:        sess.Role,
		Token:       sess.Token,
	}
}

// actorFromRequest returns the API caller; empty when there is no session.
func actorFromRequest(r *http.Request) orchestrators.Actor {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		return orchestrators.Actor{}
	}
	return orchestrators.Actor{AccountID: sess.AccountID, Role: sess.Role}
}

// NewMux wires HTTP handlers for the app.
func NewMux(opts Options) http.Handler {
	configure(opts)

	mux := http.NewServeMux()
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(opts.RateLimit, opts.RateWindow)

	// Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(middleware.CSRFOptions{
			Key:            opts.CSRFKey,
			Secure:         opts.Secure,
			TrustedOrigins: opts.TrustedOrigins,
		}),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter,
			middleware.HeaderKey(resource.InternalKeyHeader, internalKey),
			http.HandlerFunc(rejectRateLimited)),
		middleware.Timing(opts.SlowRequest),
	)
}
