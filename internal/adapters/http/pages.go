package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"gymhub/internal/adapters/http/middleware"
	"gymhub/internal/adapters/resource"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/application/projections"
	"gymhub/internal/application/reconcile"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/availability"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/locker"
	"gymhub/internal/domain/roster"
	"gymhub/internal/domain/trainer"
)

// errorPage is the data for error.html.
type errorPage struct {
	Title  string
	Notice reconcile.Notice
}

// noticeFor wraps Describe for templates; nil when there is nothing to show.
func noticeFor(err error) *reconcile.Notice {
	n := reconcile.Describe(err)
	if n.Code == "" {
		return nil
	}
	return &n
}

// pageStatus picks the status for a page whose data could not be loaded.
func pageStatus(err error) int {
	switch {
	case errors.Is(err, reconcile.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, projections.ErrAccessDenied), errors.Is(err, resource.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}

// renderError aborts a page with a full-page notice.
func renderError(w http.ResponseWriter, r *http.Request, title string, err error) {
	status := pageStatus(err)
	n := reconcile.Describe(err)
	switch status {
	case http.StatusForbidden:
		n, _ = reconcile.NoticeFor("forbidden")
	case http.StatusNotFound:
		n.Message = title + " not found."
	case http.StatusBadGateway:
		slog.Warn("page_event", "event", "load_failed", "path", r.URL.Path, "error", err)
	}
	renderTemplateStatus(w, r, status, "error.html", errorPage{Title: title, Notice: n})
}

// formError turns a failed write into a message for the form that caused it.
func formError(err error) string {
	var apiErr *resource.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
		if len(apiErr.Fields) > 0 {
			keys := make([]string, 0, len(apiErr.Fields))
			for k := range apiErr.Fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			msgs := make([]string, len(keys))
			for i, k := range keys {
				msgs[i] = apiErr.Fields[k]
			}
			return strings.Join(msgs, "; ")
		}
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
	}
	return reconcile.Describe(err).Message
}

// --- Class list and detail ---

type classListPage struct {
	projections.GetClassListResult
	TypeFilter string
	Error      *reconcile.Notice
}

// handleClassList handles GET /classes
func handleClassList(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromRequest(r)
	c := clientFor(viewer)
	typeFilter := r.URL.Query().Get("type")

	result, err := projections.QueryGetClassList(r.Context(), projections.GetClassListQuery{
		Viewer:    viewer,
		TrainerID: r.URL.Query().Get("trainer"),
		Type:      typeFilter,
	}, projections.GetClassListDeps{Classes: c, Enrollments: c})
	page := classListPage{GetClassListResult: result, TypeFilter: typeFilter}
	if err != nil {
		slog.Warn("page_event", "event", "load_failed", "path", r.URL.Path, "error", err)
		page.Error = noticeFor(err)
		renderTemplateStatus(w, r, http.StatusBadGateway, "classes.html", page)
		return
	}
	renderTemplate(w, r, "classes.html", page)
}

type classDetailPage struct {
	Class    gymclass.Class
	Entries  []roster.Entry
	Enrolled bool
	Action   reconcile.Action
}

// handleClassDetail handles GET /classes/{id}
func handleClassDetail(w http.ResponseWriter, r *http.Request) {
	view := flow.NewView(viewerFromRequest(r))
	defer view.Close()

	snap, err := view.Open(r.Context(), r.PathValue("id"))
	if err != nil {
		renderError(w, r, "Class", err)
		return
	}
	renderTemplate(w, r, "class.html", classDetailPage{
		Class:    snap.Class,
		Entries:  snap.Roster.Entries(),
		Enrolled: snap.Roster.ViewerEnrolled(),
		Action:   view.Action(),
	})
}

// handleEnroll handles POST /classes/{id}/enroll
func handleEnroll(w http.ResponseWriter, r *http.Request) {
	mutateEnrollment(w, r, (*reconcile.View).Enroll, "enrolled")
}

// handleUnenroll handles POST /classes/{id}/unenroll
func handleUnenroll(w http.ResponseWriter, r *http.Request) {
	mutateEnrollment(w, r, (*reconcile.View).Unenroll, "unenrolled")
}

// mutateEnrollment runs one roster mutation for the viewer and redirects back
// to the page that posted it with the outcome as a notice.
func mutateEnrollment(w http.ResponseWriter, r *http.Request, op func(*reconcile.View, context.Context) (reconcile.Snapshot, error), success string) {
	classID := r.PathValue("id")
	back := localPath(r.FormValue("return"), "/classes/"+classID)
	viewer := viewerFromRequest(r)

	view := flow.NewView(viewer)
	defer view.Close()

	_, err := view.Open(r.Context(), classID)
	if err == nil {
		_, err = op(view, r.Context())
	}
	switch {
	case err == nil:
		redirectWithNotice(w, r, back, success)
	case errors.Is(err, reconcile.ErrUnauthenticated):
		redirectWithNotice(w, r, "/login?next="+url.QueryEscape(back), "login")
	default:
		slog.Info("enrollment_event", "event", "page_mutation_rejected", "class_id", classID, "viewer_id", viewer.ID, "error", err)
		redirectWithNotice(w, r, back, reconcile.Describe(err).Code)
	}
}

// --- Trainers ---

type trainerListPage struct {
	Trainers []trainer.Summary
	Error    *reconcile.Notice
}

// handleTrainerList handles GET /trainers
func handleTrainerList(w http.ResponseWriter, r *http.Request) {
	c := clientFor(viewerFromRequest(r))
	result, err := projections.QueryGetTrainerList(r.Context(), projections.GetTrainerListDeps{
		Trainers: c,
		Classes:  c,
		Workers:  nameWorkers,
	})
	if err != nil {
		slog.Warn("page_event", "event", "load_failed", "path", r.URL.Path, "error", err)
		renderTemplateStatus(w, r, http.StatusBadGateway, "trainers.html", trainerListPage{Error: noticeFor(err)})
		return
	}
	renderTemplate(w, r, "trainers.html", trainerListPage{Trainers: result.Trainers})
}

// handleTrainerClasses handles GET /trainers/{id}/classes
func handleTrainerClasses(w http.ResponseWriter, r *http.Request) {
	c := clientFor(viewerFromRequest(r))
	result, err := projections.QueryGetTrainerClasses(r.Context(), projections.GetTrainerClassesQuery{
		TrainerID: r.PathValue("id"),
		Now:       timeNow(),
	}, projections.GetTrainerClassesDeps{Trainers: c, Classes: c})
	if err != nil {
		renderError(w, r, "Trainer", err)
		return
	}
	renderTemplate(w, r, "trainer_classes.html", result)
}

// --- Trainer dashboard: schedule a class ---

// classForm holds the scheduling form as typed.
type classForm struct {
	TrainerID   string
	Name        string
	Type        string
	Date        string // YYYY-MM-DD
	Time        string // HH:MM
	Capacity    string
	Description string
}

func classFormFromRequest(r *http.Request) classForm {
	return classForm{
		TrainerID:   strings.TrimSpace(r.FormValue("trainerId")),
		Name:        r.FormValue("name"),
		Type:        r.FormValue("type"),
		Date:        strings.TrimSpace(r.FormValue("date")),
		Time:        strings.TrimSpace(r.FormValue("time")),
		Capacity:    strings.TrimSpace(r.FormValue("capacity")),
		Description: r.FormValue("description"),
	}
}

// request converts the form into an API request, interpreting the start in loc.
func (f classForm) request(loc *time.Location) (resource.CreateClassRequest, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", f.Date+" "+f.Time, loc)
	if err != nil {
		return resource.CreateClassRequest{}, errors.New("enter a valid date and start time")
	}
	capacity, err := strconv.Atoi(f.Capacity)
	if err != nil {
		return resource.CreateClassRequest{}, errors.New("capacity must be a whole number")
	}
	return resource.CreateClassRequest{
		Name:        strings.TrimSpace(f.Name),
		Type:        strings.TrimSpace(f.Type),
		TrainerID:   f.TrainerID,
		StartsAt:    start,
		MaxCapacity: capacity,
		Description: strings.TrimSpace(f.Description),
	}, nil
}

type dashboardPage struct {
	projections.GetTrainerDashboardResult
	Form      classForm
	FormError string
	Error     *reconcile.Notice
}

func loadDashboard(ctx context.Context, viewer reconcile.Viewer) (projections.GetTrainerDashboardResult, error) {
	c := clientFor(viewer)
	return projections.QueryGetTrainerDashboard(ctx, projections.GetTrainerDashboardQuery{
		Viewer: viewer,
		Now:    timeNow(),
	}, projections.GetTrainerDashboardDeps{Trainers: c, Classes: c})
}

// handleTrainerDashboard handles GET /trainer/dashboard
func handleTrainerDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := loadDashboard(r.Context(), viewerFromRequest(r))
	page := dashboardPage{GetTrainerDashboardResult: dash, Form: classForm{Time: "18:00", Capacity: "12"}}
	switch {
	case errors.Is(err, projections.ErrNoTrainerProfile):
		page.Error = &reconcile.Notice{Code: "no-trainer", Message: err.Error(), Error: true}
	case err != nil:
		renderError(w, r, "Dashboard", err)
		return
	}
	renderTemplate(w, r, "dashboard.html", page)
}

// handleScheduleClass handles POST /trainer/dashboard
func handleScheduleClass(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromRequest(r)
	dash, err := loadDashboard(r.Context(), viewer)
	if err != nil {
		renderError(w, r, "Dashboard", err)
		return
	}
	form := classFormFromRequest(r)
	if form.TrainerID == "" && dash.Trainer != nil {
		form.TrainerID = dash.Trainer.ID
	}
	page := dashboardPage{GetTrainerDashboardResult: dash, Form: form}

	req, err := form.request(time.Local)
	if err == nil {
		_, err = clientFor(viewer).CreateClass(r.Context(), req)
		if err != nil {
			err = errors.New(formError(err))
		}
	}
	if err != nil {
		page.FormError = err.Error()
		renderTemplateStatus(w, r, http.StatusUnprocessableEntity, "dashboard.html", page)
		return
	}
	slog.Info("class_event", "event", "class_scheduled", "trainer_id", req.TrainerID, "name", req.Name)
	redirectWithNotice(w, r, "/trainer/dashboard", "class-scheduled")
}

// --- Availability ---

type slotForm struct {
	TrainerID string
	Day       string
	StartTime string
	EndTime   string
}

type availabilityPage struct {
	projections.GetAvailabilityResult
	TrainerFilter string
	CanEdit       bool
	OwnTrainer    *trainer.Trainer  // the viewer's own record, if any
	Trainers      []trainer.Trainer // choices for admins
	DayChoices    []string
	Form          slotForm
	FormError     string
	Error         *reconcile.Notice
}

// ownTrainer finds the trainer record linked to accountID.
func ownTrainer(trainers []trainer.Trainer, accountID string) *trainer.Trainer {
	for i := range trainers {
		if trainers[i].AccountID == accountID {
			return &trainers[i]
		}
	}
	return nil
}

func loadAvailability(ctx context.Context, viewer reconcile.Viewer, trainerFilter string) (availabilityPage, error) {
	c := clientFor(viewer)
	result, err := projections.QueryGetAvailability(ctx, projections.GetAvailabilityQuery{TrainerID: trainerFilter},
		projections.GetAvailabilityDeps{Availability: c, Trainers: c})
	page := availabilityPage{
		GetAvailabilityResult: result,
		TrainerFilter:         trainerFilter,
		DayChoices:            availability.ValidDays,
		Form:                  slotForm{Day: availability.Monday, StartTime: "09:00", EndTime: "10:00"},
	}
	if err != nil {
		return page, err
	}
	if viewer.Authenticated() && (viewer.Role == account.RoleTrainer || viewer.Role == account.RoleAdmin) {
		trainers, err := c.ListTrainers(ctx)
		if err != nil {
			return page, err
		}
		page.CanEdit = true
		page.OwnTrainer = ownTrainer(trainers, viewer.ID)
		if viewer.Role == account.RoleAdmin {
			page.Trainers = trainers
		}
	}
	return page, nil
}

// handleAvailability handles GET /trainer/availability
func handleAvailability(w http.ResponseWriter, r *http.Request) {
	page, err := loadAvailability(r.Context(), viewerFromRequest(r), r.URL.Query().Get("trainer"))
	if err != nil {
		slog.Warn("page_event", "event", "load_failed", "path", r.URL.Path, "error", err)
		page.Error = noticeFor(err)
		renderTemplateStatus(w, r, http.StatusBadGateway, "availability.html", page)
		return
	}
	renderTemplate(w, r, "availability.html", page)
}

// handleAddAvailability handles POST /trainer/availability
func handleAddAvailability(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromRequest(r)
	page, err := loadAvailability(r.Context(), viewer, "")
	if err != nil {
		renderError(w, r, "Availability", err)
		return
	}
	form := slotForm{
		TrainerID: strings.TrimSpace(r.FormValue("trainerId")),
		Day:       strings.ToLower(strings.TrimSpace(r.FormValue("day"))),
		StartTime: strings.TrimSpace(r.FormValue("startTime")),
		EndTime:   strings.TrimSpace(r.FormValue("endTime")),
	}
	if form.TrainerID == "" && page.OwnTrainer != nil {
		form.TrainerID = page.OwnTrainer.ID
	}
	page.Form = form

	_, err = clientFor(viewer).CreateAvailability(r.Context(), resource.SlotRequest{
		TrainerID: form.TrainerID,
		Day:       form.Day,
		StartTime: form.StartTime,
		EndTime:   form.EndTime,
	})
	if err != nil {
		page.FormError = formError(err)
		renderTemplateStatus(w, r, http.StatusUnprocessableEntity, "availability.html", page)
		return
	}
	redirectWithNotice(w, r, "/trainer/availability", "slot-added")
}

// --- Member profile and lockers ---

// handleMemberProfile handles GET /members/{id}
func handleMemberProfile(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromRequest(r)
	c := clientFor(viewer)
	result, err := projections.QueryGetMemberProfile(r.Context(), projections.GetMemberProfileQuery{
		Viewer:   viewer,
		MemberID: r.PathValue("id"),
	}, projections.GetMemberProfileDeps{Users: c, Lockers: c})
	if err != nil {
		renderError(w, r, "Profile", err)
		return
	}
	renderTemplate(w, r, "profile.html", result)
}

// lockerNotice maps a locker write outcome to a notice code.
func lockerNotice(err error, success string) string {
	switch {
	case err == nil:
		return success
	case errors.Is(err, locker.ErrLockerTaken):
		return "locker-taken"
	case errors.Is(err, locker.ErrAlreadyAssigned):
		return "already-assigned"
	case errors.Is(err, locker.ErrNoAssignment):
		return "no-assignment"
	case errors.Is(err, locker.ErrLockerNotFound):
		return "locker-not-found"
	default:
		return reconcile.Describe(err).Code
	}
}

// handleReserveLocker handles POST /members/{id}/locker
func handleReserveLocker(w http.ResponseWriter, r *http.Request) {
	memberID := r.PathValue("id")
	_, err := clientFor(viewerFromRequest(r)).CreateAssignment(r.Context(), memberID, r.FormValue("lockerId"))
	redirectWithNotice(w, r, "/members/"+memberID, lockerNotice(err, "locker-reserved"))
}

// handleCancelLocker handles POST /members/{id}/locker/cancel
func handleCancelLocker(w http.ResponseWriter, r *http.Request) {
	memberID := r.PathValue("id")
	err := clientFor(viewerFromRequest(r)).DeleteAssignment(r.Context(), memberID, r.FormValue("lockerId"))
	redirectWithNotice(w, r, "/members/"+memberID, lockerNotice(err, "locker-cancelled"))
}

// --- Session ---

type loginPage struct {
	Email string
	Next  string
	Error string
}

// handleLoginForm handles GET /login
func handleLoginForm(w http.ResponseWriter, r *http.Request) {
	next := localPath(r.URL.Query().Get("next"), "/classes")
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "login.html", loginPage{Next: next})
}

// handleLogin handles POST /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	page := loginPage{
		Email: r.FormValue("email"),
		Next:  localPath(r.FormValue("next"), "/classes"),
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    page.Email,
		Password: r.FormValue("password"),
	}, orchestrators.LoginDeps{AccountStore: stores.AccountStore})
	if err != nil {
		status := http.StatusUnauthorized
		page.Error = "Invalid email or password."
		if !errors.Is(err, orchestrators.ErrInvalidCredentials) {
			slog.Error("auth_event", "event", "login_error", "error", err)
			status = http.StatusInternalServerError
			page.Error = "Login is unavailable right now."
		}
		renderTemplateStatus(w, r, status, "login.html", page)
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email, result.DisplayName, result.Role)
	if err != nil {
		slog.Error("auth_event", "event", "session_error", "error", err)
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	middleware.SetSessionCookie(w, token)
	slog.Info("auth_event", "event", "login", "account_id", result.AccountID, "role", result.Role)
	http.Redirect(w, r, page.Next, http.StatusSeeOther)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	redirectWithNotice(w, r, "/classes", "logged-out")
}
