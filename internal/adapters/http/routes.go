package web

import (
	"net/http"
	"strings"

	"gymhub/internal/adapters/http/middleware"
	"gymhub/internal/domain/account"
)

// registerRoutes mounts the pages, the /api endpoints and static assets.
func registerRoutes(mux *http.ServeMux) {
	registerAPIRoutes(mux)
	registerPageRoutes(mux)
	mux.Handle("GET /static/", http.FileServerFS(staticFS))
}

func registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/classes", handleAPIListClasses)
	mux.HandleFunc("POST /api/classes", handleAPICreateClass)
	mux.HandleFunc("GET /api/classes/{id}", handleAPIGetClass)
	mux.HandleFunc("GET /api/classes/{id}/members", handleAPIListRoster)
	mux.HandleFunc("GET /api/users/{id}", handleAPIGetUser)
	mux.HandleFunc("GET /api/enrollments", handleAPIListEnrollments)
	mux.HandleFunc("POST /api/enrollments", handleAPICreateEnrollment)
	mux.HandleFunc("DELETE /api/enrollments", handleAPIDeleteEnrollment)
	mux.HandleFunc("GET /api/trainers", handleAPIListTrainers)
	mux.HandleFunc("GET /api/availability", handleAPIListAvailability)
	mux.HandleFunc("POST /api/availability", handleAPICreateAvailability)
	mux.HandleFunc("GET /api/assignments", handleAPIGetAssignment)
	mux.HandleFunc("POST /api/assignments", handleAPICreateAssignment)
	mux.HandleFunc("DELETE /api/assignments", handleAPIDeleteAssignment)
	mux.HandleFunc("GET /api/lockers", handleAPIListLockers)
	mux.HandleFunc("/api/", handleAPINotFound)
}

func registerPageRoutes(mux *http.ServeMux) {
	trainerOnly := middleware.RequireRole(account.RoleTrainer, account.RoleAdmin)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/classes", http.StatusSeeOther)
	})
	mux.HandleFunc("GET /classes", handleClassList)
	mux.HandleFunc("GET /classes/{id}", handleClassDetail)
	mux.HandleFunc("POST /classes/{id}/enroll", handleEnroll)
	mux.HandleFunc("POST /classes/{id}/unenroll", handleUnenroll)
	mux.HandleFunc("GET /trainers", handleTrainerList)
	mux.HandleFunc("GET /trainers/{id}/classes", handleTrainerClasses)
	mux.Handle("GET /trainer/dashboard", trainerOnly(http.HandlerFunc(handleTrainerDashboard)))
	mux.Handle("POST /trainer/dashboard", trainerOnly(http.HandlerFunc(handleScheduleClass)))
	mux.HandleFunc("GET /trainer/availability", handleAvailability)
	mux.Handle("POST /trainer/availability", trainerOnly(http.HandlerFunc(handleAddAvailability)))
	mux.Handle("GET /members/{id}", middleware.RequireAuth(http.HandlerFunc(handleMemberProfile)))
	mux.Handle("POST /members/{id}/locker", middleware.RequireAuth(http.HandlerFunc(handleReserveLocker)))
	mux.Handle("POST /members/{id}/locker/cancel", middleware.RequireAuth(http.HandlerFunc(handleCancelLocker)))
	mux.HandleFunc("GET /login", handleLoginForm)
	mux.HandleFunc("POST /login", handleLogin)
	mux.HandleFunc("POST /logout", handleLogout)
}

// isAPIRequest reports whether r targets the JSON endpoints.
func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}
