// Package resource is the typed HTTP client pages use to read and write gym
// data through the /api endpoints.
package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gymhub/internal/domain/account"
	"gymhub/internal/domain/availability"
	"gymhub/internal/domain/enrollment"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/locker"
	"gymhub/internal/domain/trainer"
)

// DefaultTimeout bounds each request when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Options configures a Client.
type Options struct {
	BaseURL       string
	SessionCookie string // cookie name the API reads the session from
	InternalKey   string // sent as InternalKeyHeader so the API knows its own pages
	Timeout       time.Duration
	HTTPClient    *http.Client // optional; overrides Timeout
}

// Client calls the gym resource endpoints. A Client is safe for concurrent use;
// WithSession returns a copy bound to one viewer.
type Client struct {
	base     string
	cookie   string
	internal string
	session  string
	http     *http.Client
}

// New creates a client for the API rooted at opts.BaseURL.
// PRE: opts.BaseURL is an absolute http(s) URL
// POST: returns a client with no viewer session
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		base:     strings.TrimRight(opts.BaseURL, "/"),
		cookie:   opts.SessionCookie,
		internal: opts.InternalKey,
		http:     hc,
	}
}

// WithSession returns a copy that forwards the viewer's session token.
// An empty token yields an anonymous client.
func (c *Client) WithSession(token string) *Client {
	cp := *c
	cp.session = token
	return &cp
}

// ListClasses returns every class, or one trainer's classes when trainerID is set.
func (c *Client) ListClasses(ctx context.Context, trainerID string) ([]gymclass.Class, error) {
	q := url.Values{}
	if trainerID != "" {
		q.Set("trainerId", trainerID)
	}
	var out ClassesResponse
	if err := c.do(ctx, http.MethodGet, "/api/classes", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Classes, nil
}

// GetClass returns one class with its server-computed available spots.
func (c *Client) GetClass(ctx context.Context, id string) (gymclass.Class, error) {
	var out ClassResponse
	if err := c.do(ctx, http.MethodGet, "/api/classes/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return gymclass.Class{}, err
	}
	return out.Class, nil
}

// CreateClass schedules a new class.
func (c *Client) CreateClass(ctx context.Context, req CreateClassRequest) (gymclass.Class, error) {
	var out ClassResponse
	if err := c.do(ctx, http.MethodPost, "/api/classes", nil, req, &out); err != nil {
		return gymclass.Class{}, err
	}
	return out.Class, nil
}

// ListRoster returns the enrollment records for a class.
func (c *Client) ListRoster(ctx context.Context, classID string) ([]enrollment.Record, error) {
	var out MembersResponse
	if err := c.do(ctx, http.MethodGet, "/api/classes/"+url.PathEscape(classID)+"/members", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Members, nil
}

// GetUser returns the public profile of one user.
func (c *Client) GetUser(ctx context.Context, id string) (account.Profile, error) {
	var out UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return account.Profile{}, err
	}
	return out.User, nil
}

// ListMemberEnrollments returns the classes a member is enrolled in.
func (c *Client) ListMemberEnrollments(ctx context.Context, memberID string) ([]enrollment.Record, error) {
	q := url.Values{"memberId": {memberID}}
	var out EnrollmentsResponse
	if err := c.do(ctx, http.MethodGet, "/api/enrollments", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Enrollments, nil
}

// CreateEnrollment enrolls a member. The returned count is nil when the
// server did not echo one.
func (c *Client) CreateEnrollment(ctx context.Context, memberID, classID string) (enrollment.Record, *int, error) {
	var out EnrollmentResponse
	body := EnrollmentRequest{MemberID: memberID, ClassID: classID}
	if err := c.do(ctx, http.MethodPost, "/api/enrollments", nil, body, &out); err != nil {
		return enrollment.Record{}, nil, err
	}
	return out.Enrollment, out.AvailableSpots, nil
}

// DeleteEnrollment removes a member from a class.
func (c *Client) DeleteEnrollment(ctx context.Context, memberID, classID string) (*int, error) {
	var out UnenrollResponse
	body := EnrollmentRequest{MemberID: memberID, ClassID: classID}
	if err := c.do(ctx, http.MethodDelete, "/api/enrollments", nil, body, &out); err != nil {
		return nil, err
	}
	return out.AvailableSpots, nil
}

// ListTrainers returns all trainers.
func (c *Client) ListTrainers(ctx context.Context) ([]trainer.Trainer, error) {
	var out TrainersResponse
	if err := c.do(ctx, http.MethodGet, "/api/trainers", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Trainers, nil
}

// ListAvailability returns availability slots, optionally for one trainer.
func (c *Client) ListAvailability(ctx context.Context, trainerID string) ([]availability.Slot, error) {
	q := url.Values{}
	if trainerID != "" {
		q.Set("trainerId", trainerID)
	}
	var out AvailabilityResponse
	if err := c.do(ctx, http.MethodGet, "/api/availability", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Availability, nil
}

// CreateAvailability adds a weekly slot.
func (c *Client) CreateAvailability(ctx context.Context, req SlotRequest) (availability.Slot, error) {
	var out SlotResponse
	if err := c.do(ctx, http.MethodPost, "/api/availability", nil, req, &out); err != nil {
		return availability.Slot{}, err
	}
	return out.Slot, nil
}

// GetAssignment returns the user's locker, or nil when none is held.
func (c *Client) GetAssignment(ctx context.Context, userID string) (*locker.Assignment, error) {
	q := url.Values{"userId": {userID}}
	var out AssignmentResponse
	if err := c.do(ctx, http.MethodGet, "/api/assignments", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Assignment, nil
}

// ListFreeLockers returns lockers nobody holds.
func (c *Client) ListFreeLockers(ctx context.Context) ([]locker.Locker, error) {
	q := url.Values{"free": {"true"}}
	var out LockersResponse
	if err := c.do(ctx, http.MethodGet, "/api/lockers", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Lockers, nil
}

// CreateAssignment reserves a locker.
func (c *Client) CreateAssignment(ctx context.Context, userID, lockerID string) (locker.Assignment, error) {
	var out AssignmentResponse
	body := AssignmentRequest{UserID: userID, LockerID: lockerID}
	if err := c.do(ctx, http.MethodPost, "/api/assignments", nil, body, &out); err != nil {
		return locker.Assignment{}, err
	}
	if out.Assignment == nil {
		return locker.Assignment{}, &networkError{op: "create assignment", err: errors.New("empty assignment in response")}
	}
	return *out.Assignment, nil
}

// DeleteAssignment cancels a locker reservation.
func (c *Client) DeleteAssignment(ctx context.Context, userID, lockerID string) error {
	body := AssignmentRequest{UserID: userID, LockerID: lockerID}
	return c.do(ctx, http.MethodDelete, "/api/assignments", nil, body, nil)
}

// do sends one request and decodes a 2xx body into out (when non-nil).
// Non-2xx responses become *APIError; transport failures match ErrNetworkFailure.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	op := method + " " + path

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" && c.cookie != "" {
		req.AddCookie(&http.Cookie{Name: c.cookie, Value: c.session})
	}
	if c.internal != "" {
		req.Header.Set(InternalKeyHeader, c.internal)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &networkError{op: op, err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &networkError{op: op, err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeProblem(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &networkError{op: op, err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func decodeProblem(status int, raw []byte) *APIError {
	var p Problem
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(raw, &p); err == nil {
		apiErr.Code = p.Code
		apiErr.Title = p.Title
		apiErr.Detail = p.Detail
		apiErr.Fields = p.Fields
	}
	if apiErr.Code == "" {
		apiErr.Code = defaultCode(status)
	}
	return apiErr
}

func defaultCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusUnauthorized:
		return CodeUnauthenticated
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusBadRequest:
		return CodeInvalid
	case http.StatusTooManyRequests:
		return CodeRateLimited
	default:
		return CodeInternal
	}
}
