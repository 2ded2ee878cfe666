package web

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"gymhub/internal/adapters/http/middleware"
	"gymhub/internal/application/reconcile"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/trainer"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// renderMarkdown converts trainer bios and class descriptions to HTML.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// pageNotices extends the enrollment notices with the other pages' outcomes.
var pageNotices = map[string]reconcile.Notice{
	"class-scheduled":  {Code: "class-scheduled", Message: "Class scheduled."},
	"slot-added":       {Code: "slot-added", Message: "Availability added."},
	"locker-reserved":  {Code: "locker-reserved", Message: "Locker reserved."},
	"locker-cancelled": {Code: "locker-cancelled", Message: "Locker reservation cancelled."},
	"locker-taken":     {Code: "locker-taken", Message: "That locker was just taken. Pick another.", Error: true},
	"already-assigned": {Code: "already-assigned", Message: "You already have a locker.", Error: true},
	"no-assignment":    {Code: "no-assignment", Message: "There is no reservation to cancel.", Error: true},
	"locker-not-found": {Code: "locker-not-found", Message: "That locker does not exist.", Error: true},
	"logged-out":       {Code: "logged-out", Message: "You have been logged out."},
}

// lookupNotice resolves a notice code carried in the query string.
func lookupNotice(code string) (reconcile.Notice, bool) {
	if n, ok := pageNotices[code]; ok {
		return n, true
	}
	return reconcile.NoticeFor(code)
}

// withNotice appends a notice code to a local path.
func withNotice(path, code string) string {
	if code == "" {
		return path
	}
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	q.Set("notice", code)
	u.RawQuery = q.Encode()
	return u.String()
}

// localPath returns p when it is a same-site path, fallback otherwise.
// Browsers drop tabs and newlines before resolving a Location, so any
// control character, raw or percent-encoded, disqualifies p.
func localPath(p, fallback string) string {
	if !isLocalPath(p) || strings.ContainsFunc(p, unicode.IsControl) {
		return fallback
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return fallback
	}
	if !isLocalPath(u.Path) || strings.ContainsFunc(u.Path, unicode.IsControl) {
		return fallback
	}
	return p
}

// isLocalPath reports whether p starts with a single slash.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}

// redirectWithNotice finishes a form post (post/redirect/get).
func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, code string) {
	http.Redirect(w, r, withNotice(path, code), http.StatusSeeOther)
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderTemplateStatus(w, r, http.StatusOK, templateName, data)
}

func renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	sess, loggedIn := middleware.GetSessionFromContext(r.Context())
	notice, hasNotice := lookupNotice(r.URL.Query().Get("notice"))

	funcMap := template.FuncMap{
		"currentRole": func() string { return sess.Role },
		"currentName": func() string { return sess.DisplayName },
		"currentID":   func() string { return sess.AccountID },
		"isLoggedIn":  func() bool { return loggedIn },
		"isTrainer": func() bool {
			return loggedIn && (sess.Role == account.RoleTrainer || sess.Role == account.RoleAdmin)
		},
		"csrfField": func() template.HTML { return csrf.TemplateField(r) },
		"notice": func() *reconcile.Notice {
			if !hasNotice {
				return nil
			}
			return &notice
		},
		"currentPath":    func() string { return r.URL.Path },
		"renderMarkdown": renderMarkdown,
		"formatDate":     func(t time.Time) string { return t.Format("Mon 2 Jan") },
		"formatTime":     func(t time.Time) string { return t.Format("15:04") },
		"capitalize":     trainer.Capitalize,
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		slog.Error("template_error", "template", templateName, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		slog.Error("render_error", "template", templateName, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
