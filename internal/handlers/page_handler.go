package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"staffdesk/internal/logger"
	"staffdesk/internal/middleware"
	"staffdesk/internal/models"
	"staffdesk/templates"
)

type PageHandler struct {
	templates *template.Template
}

type navLink struct {
	Href  string
	Label string
}

type pageData struct {
	Title   string
	Role    models.Role
	Section string
	Links   []navLink
}

var (
	adminLinks = []navLink{
		{"/admin", "Dashboard"},
		{"/admin/users", "Registrations"},
		{"/admin/tasks", "Tasks"},
		{"/admin/transactions", "Transactions"},
		{"/admin/notifications", "Notifications"},
		{"/admin/profile", "Profile"},
	}
	employeeLinks = []navLink{
		{"/employee", "Dashboard"},
		{"/employee/tasks", "My tasks"},
		{"/employee/notifications", "Notifications"},
		{"/employee/profile", "Profile"},
	}
)

func NewPageHandler() *PageHandler {
	return &PageHandler{
		templates: template.Must(template.ParseFS(templates.FS, "*.html")),
	}
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		l := logger.FromContext(r.Context())
		l.Error().Err(err).Str("template", name).Msg("render page")
	}
}

// LoginPage serves the login page
func (h *PageHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", nil)
}

func (h *PageHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", nil)
}

// Root sends signed-in users to their home and everyone else to login.
func (h *PageHandler) Root(w http.ResponseWriter, r *http.Request) {
	if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
		http.Redirect(w, r, middleware.HomePath(p.Role), http.StatusFound)
		return
	}
	http.Redirect(w, r, "/auth/login", http.StatusFound)
}

// AdminPage serves /admin and its sections. Access is gated by RequireRole.
func (h *PageHandler) AdminPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "app.html", pageData{
		Title:   "Admin",
		Role:    models.RoleAdmin,
		Section: section(r.URL.Path, "/admin"),
		Links:   adminLinks,
	})
}

// EmployeePage serves /employee and its sections.
func (h *PageHandler) EmployeePage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "app.html", pageData{
		Title:   "Employee",
		Role:    models.RoleEmployee,
		Section: section(r.URL.Path, "/employee"),
		Links:   employeeLinks,
	})
}

func section(path, prefix string) string {
	s := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if s == "" {
		return "dashboard"
	}
	return strings.SplitN(s, "/", 2)[0]
}
