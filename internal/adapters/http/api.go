package web

import (
	"errors"
	"net/http"

	"gymhub/internal/adapters/resource"
	availabilityStore "gymhub/internal/adapters/storage/availability"
	gymclassStore "gymhub/internal/adapters/storage/gymclass"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/availability"
	"gymhub/internal/domain/enrollment"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/locker"
	"gymhub/internal/domain/trainer"
)

// requireActor returns the caller or writes a 401 problem.
func requireActor(w http.ResponseWriter, r *http.Request) (orchestrators.Actor, bool) {
	actor := actorFromRequest(r)
	if actor.AccountID == "" {
		writeError(w, r, orchestrators.ErrUnauthenticated)
		return actor, false
	}
	return actor, true
}

// requireQuery returns a query parameter or writes a 400 problem.
func requireQuery(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		writeProblem(w, r, resource.Problem{
			Status: http.StatusBadRequest,
			Code:   resource.CodeInvalid,
			Detail: name + " is required",
		})
		return "", false
	}
	return v, true
}

func enrollDeps() orchestrators.EnrollMemberDeps {
	return orchestrators.EnrollMemberDeps{
		EnrollmentStore: stores.EnrollmentStore,
		AccountStore:    stores.AccountStore,
		ClassStore:      stores.ClassStore,
		Sender:          emailSender,
		From:            emailFromAddress,
		ReplyTo:         emailReplyTo,
		GenerateID:      generateID,
		Now:             timeNow,
	}
}

func lockerDeps() orchestrators.LockerDeps {
	return orchestrators.LockerDeps{
		LockerStore: stores.LockerStore,
		GenerateID:  generateID,
		Now:         timeNow,
	}
}

// handleAPIListClasses handles GET /api/classes[?trainerId=]
func handleAPIListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := stores.ClassStore.List(r.Context(), gymclassStore.ListFilter{TrainerID: r.URL.Query().Get("trainerId")})
	if err != nil {
		internalError(w, r, err)
		return
	}
	if classes == nil {
		classes = []gymclass.Class{}
	}
	writeJSON(w, http.StatusOK, resource.ClassesResponse{Classes: classes})
}

// handleAPICreateClass handles POST /api/classes (trainer or admin).
func handleAPICreateClass(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req resource.CreateClassRequest
	if !bindJSON(w, r, &req) {
		return
	}
	class, err := orchestrators.ExecuteScheduleClass(r.Context(), orchestrators.ScheduleClassInput{
		Actor:       actor,
		TrainerID:   req.TrainerID,
		Name:        req.Name,
		Type:        req.Type,
		StartsAt:    req.StartsAt,
		MaxCapacity: req.MaxCapacity,
		Description: req.Description,
	}, orchestrators.ScheduleClassDeps{
		TrainerStore: stores.TrainerStore,
		ClassStore:   stores.ClassStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resource.ClassResponse{Class: class})
}

// handleAPIGetClass handles GET /api/classes/{id}
func handleAPIGetClass(w http.ResponseWriter, r *http.Request) {
	class, err := stores.ClassStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resource.ClassResponse{Class: class})
}

// handleAPIListRoster handles GET /api/classes/{id}/members
func handleAPIListRoster(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("id")
	if _, err := stores.ClassStore.GetByID(r.Context(), classID); err != nil {
		writeError(w, r, err)
		return
	}
	records, err := stores.EnrollmentStore.ListByClass(r.Context(), classID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if records == nil {
		records = []enrollment.Record{}
	}
	writeJSON(w, http.StatusOK, resource.MembersResponse{Members: records})
}

// handleAPIGetUser handles GET /api/users/{id}
func handleAPIGetUser(w http.ResponseWriter, r *http.Request) {
	acct, err := stores.AccountStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resource.UserResponse{User: acct.Profile()})
}

// handleAPIListEnrollments handles GET /api/enrollments?memberId=
// INVARIANT: members read only their own enrollments
func handleAPIListEnrollments(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	memberID, ok := requireQuery(w, r, "memberId")
	if !ok {
		return
	}
	if actor.AccountID != memberID && actor.Role != account.RoleAdmin {
		writeError(w, r, orchestrators.ErrForbidden)
		return
	}
	records, err := stores.EnrollmentStore.ListByMember(r.Context(), memberID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if records == nil {
		records = []enrollment.Record{}
	}
	writeJSON(w, http.StatusOK, resource.EnrollmentsResponse{Enrollments: records})
}

// handleAPICreateEnrollment handles POST /api/enrollments
func handleAPICreateEnrollment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req resource.EnrollmentRequest
	if !bindJSON(w, r, &req) {
		return
	}
	result, err := orchestrators.ExecuteEnrollMember(r.Context(), orchestrators.EnrollMemberInput{
		Actor:    actor,
		MemberID: req.MemberID,
		ClassID:  req.ClassID,
	}, enrollDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	available := result.AvailableSpots
	writeJSON(w, http.StatusCreated, resource.EnrollmentResponse{
		Enrollment:     result.Record,
		AvailableSpots: &available,
	})
}

// handleAPIDeleteEnrollment handles DELETE /api/enrollments
func handleAPIDeleteEnrollment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req resource.EnrollmentRequest
	if !bindJSON(w, r, &req) {
		return
	}
	available, err := orchestrators.ExecuteUnenrollMember(r.Context(), orchestrators.EnrollMemberInput{
		Actor:    actor,
		MemberID: req.MemberID,
		ClassID:  req.ClassID,
	}, enrollDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resource.UnenrollResponse{AvailableSpots: &available})
}

// handleAPIListTrainers handles GET /api/trainers
func handleAPIListTrainers(w http.ResponseWriter, r *http.Request) {
	trainers, err := stores.TrainerStore.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	if trainers == nil {
		trainers = []trainer.Trainer{}
	}
	writeJSON(w, http.StatusOK, resource.TrainersResponse{Trainers: trainers})
}

// handleAPIListAvailability handles GET /api/availability[?trainerId=]
func handleAPIListAvailability(w http.ResponseWriter, r *http.Request) {
	slots, err := stores.AvailabilityStore.List(r.Context(), availabilityStore.ListFilter{TrainerID: r.URL.Query().Get("trainerId")})
	if err != nil {
		internalError(w, r, err)
		return
	}
	if slots == nil {
		slots = []availability.Slot{}
	}
	writeJSON(w, http.StatusOK, resource.AvailabilityResponse{Availability: slots})
}

// handleAPICreateAvailability handles POST /api/availability (trainer or admin).
func handleAPICreateAvailability(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req resource.SlotRequest
	if !bindJSON(w, r, &req) {
		return
	}
	slot, err := orchestrators.ExecuteAddAvailability(r.Context(), orchestrators.AddAvailabilityInput{
		Actor:     actor,
		TrainerID: req.TrainerID,
		Day:       req.Day,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}, orchestrators.AddAvailabilityDeps{
		TrainerStore:      stores.TrainerStore,
		AvailabilityStore: stores.AvailabilityStore,
		GenerateID:        generateID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resource.SlotResponse{Slot: slot})
}

// handleAPIGetAssignment handles GET /api/assignments?userId=
// INVARIANT: readable by the member, trainers and admins
func handleAPIGetAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	userID, ok := requireQuery(w, r, "userId")
	if !ok {
		return
	}
	if actor.AccountID != userID && actor.Role == account.RoleMember {
		writeError(w, r, orchestrators.ErrForbidden)
		return
	}
	a, err := stores.LockerStore.GetAssignment(r.Context(), userID)
	switch {
	case errors.Is(err, locker.ErrNoAssignment):
		writeJSON(w, http.StatusOK, resource.AssignmentResponse{})
	case err != nil:
		internalError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, resource.AssignmentResponse{Assignment: &a})
	}
}

// handleAPICreateAssignment handles POST /api/assignments
func handleAPICreateAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req resource.AssignmentRequest
	if !bindJSON(w, r, &req) {
		return
	}
	a, err := orchestrators.ExecuteReserveLocker(r.Context(), orchestrators.LockerInput{
		Actor:    actor,
		MemberID: req.UserID,
		LockerID: req.LockerID,
	}, lockerDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resource.AssignmentResponse{Assignment: &a})
}

// handleAPIDeleteAssignment handles DELETE /api/assignments
func handleAPIDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req resource.AssignmentRequest
	if !bindJSON(w, r, &req) {
		return
	}
	err := orchestrators.ExecuteCancelLocker(r.Context(), orchestrators.LockerInput{
		Actor:    actor,
		MemberID: req.UserID,
		LockerID: req.LockerID,
	}, lockerDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAPIListLockers handles GET /api/lockers?free=true
func handleAPIListLockers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	if r.URL.Query().Get("free") != "true" {
		writeProblem(w, r, resource.Problem{
			Status: http.StatusBadRequest,
			Code:   resource.CodeInvalid,
			Detail: "only free=true is supported",
		})
		return
	}
	lockers, err := stores.LockerStore.ListFree(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	if lockers == nil {
		lockers = []locker.Locker{}
	}
	writeJSON(w, http.StatusOK, resource.LockersResponse{Lockers: lockers})
}

// handleAPINotFound answers unknown /api paths with a problem document.
func handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	writeProblem(w, r, resource.Problem{Status: http.StatusNotFound, Code: resource.CodeNotFound, Detail: "no such endpoint"})
}
