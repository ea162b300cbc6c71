package http

import (
	"net/http"

	"staffdesk/internal/handlers"
	"staffdesk/internal/middleware"
	"staffdesk/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	accountHandler *handlers.AccountHandler,
	totpHandler *handlers.TOTPHandler,
	taskHandler *handlers.TaskHandler,
	transactionHandler *handlers.TransactionHandler,
	reportHandler *handlers.ReportHandler,
	notificationHandler *handlers.NotificationHandler,
	uploadHandler *handlers.UploadHandler,
	pageHandler *handlers.PageHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.RequireRole(models.RoleAdmin)(h).ServeHTTP
	}
	employee := func(h http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.RequireRole(models.RoleEmployee)(h).ServeHTTP
	}

	// Public pages
	r.HandleFunc("/", pageHandler.Root).Methods("GET")
	r.HandleFunc("/auth/login", pageHandler.LoginPage).Methods("GET")
	r.HandleFunc("/auth/register", pageHandler.RegisterPage).Methods("GET")

	// Public API routes - Authentication
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Role-gated pages; unauthenticated or wrong-role visitors are redirected
	r.HandleFunc("/admin", admin(pageHandler.AdminPage)).Methods("GET")
	r.PathPrefix("/admin/").HandlerFunc(admin(pageHandler.AdminPage)).Methods("GET")
	r.HandleFunc("/employee", employee(pageHandler.EmployeePage)).Methods("GET")
	r.PathPrefix("/employee/").HandlerFunc(employee(pageHandler.EmployeePage)).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Profile
	api.HandleFunc("/profile", accountHandler.GetProfile).Methods("GET")
	api.HandleFunc("/profile", accountHandler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/profile/change-password", accountHandler.ChangePassword).Methods("POST")
	api.HandleFunc("/profile/totp/setup", admin(totpHandler.SetupTOTP)).Methods("POST")
	api.HandleFunc("/profile/totp/enable", admin(totpHandler.EnableTOTP)).Methods("POST")
	api.HandleFunc("/profile/totp/disable", admin(totpHandler.DisableTOTP)).Methods("POST")

	// Admin - account management
	api.HandleFunc("/admin/users", admin(userHandler.ListUsers)).Methods("GET")
	api.HandleFunc("/admin/employees", admin(userHandler.ListEmployees)).Methods("GET")
	api.HandleFunc("/admin/users/{id:[0-9]+}/approve", admin(userHandler.Decide)).Methods("PATCH")

	// Tasks - access is checked per task in the service
	api.HandleFunc("/tasks", taskHandler.ListTasks).Methods("GET")
	api.HandleFunc("/tasks", admin(taskHandler.CreateTask)).Methods("POST")
	api.HandleFunc("/tasks/{id:[0-9]+}", taskHandler.GetTask).Methods("GET")
	api.HandleFunc("/tasks/{id:[0-9]+}", taskHandler.UpdateTask).Methods("PATCH")
	api.HandleFunc("/tasks/{id:[0-9]+}", admin(taskHandler.DeleteTask)).Methods("DELETE")
	api.HandleFunc("/tasks/{id:[0-9]+}/submit", employee(taskHandler.SubmitTask)).Methods("POST")
	api.HandleFunc("/tasks/{id:[0-9]+}/submissions", taskHandler.ListSubmissions).Methods("GET")

	// Transactions (ledger)
	api.HandleFunc("/transactions", admin(transactionHandler.ListTransactions)).Methods("GET")
	api.HandleFunc("/transactions", admin(transactionHandler.CreateTransaction)).Methods("POST")
	api.HandleFunc("/transactions/export.pdf", admin(reportHandler.ExportPDF)).Methods("GET")
	api.HandleFunc("/transactions/export.xlsx", admin(reportHandler.ExportXLSX)).Methods("GET")
	api.HandleFunc("/transactions/{id:[0-9]+}", admin(transactionHandler.GetTransaction)).Methods("GET")
	api.HandleFunc("/transactions/{id:[0-9]+}", admin(transactionHandler.UpdateTransaction)).Methods("PUT")
	api.HandleFunc("/transactions/{id:[0-9]+}", admin(transactionHandler.DeleteTransaction)).Methods("DELETE")

	// Notifications
	api.HandleFunc("/notifications", notificationHandler.ListNotifications).Methods("GET")
	api.HandleFunc("/notifications", notificationHandler.MarkNotifications).Methods("PATCH")
	api.HandleFunc("/notifications/ws", notificationHandler.Stream).Methods("GET")

	// Documents
	api.HandleFunc("/upload", uploadHandler.Upload).Methods("POST")

	// Health endpoints
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	return r
}
