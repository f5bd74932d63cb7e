package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/formflow/formflow-api/internal/authz"
	"github.com/formflow/formflow-api/internal/handlers"
)

// NewRouter sets up the API routes. Everything under /api except signup and
// login runs behind the JWT middleware; capability middleware gates the
// privileged surfaces and handlers apply ownership checks on top.
func NewRouter(
	auth *handlers.AuthHandler,
	formats *handlers.FormatHandler,
	submissions *handlers.SubmissionHandler,
	validations *handlers.ValidationHandler,
	documents *handlers.DocumentHandler,
	notifications *handlers.NotificationHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	// Public auth endpoints
	router.HandleFunc("/api/signup", auth.SignUp).Methods(http.MethodPost)
	router.HandleFunc("/api/login", auth.Login).Methods(http.MethodPost)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.JWTMiddleware)

	manageFormats := authz.RequireCapability(authz.CapManageFormats)
	decide := authz.RequireCapability(authz.CapDecide)
	viewAll := authz.RequireCapability(authz.CapViewAll)

	// Formats
	api.Handle("/formats", manageFormats(http.HandlerFunc(formats.Create))).Methods(http.MethodPost)
	api.HandleFunc("/formats", formats.List).Methods(http.MethodGet)
	api.HandleFunc("/formats/{formatID}", formats.Get).Methods(http.MethodGet)
	api.Handle("/formats/{formatID}", manageFormats(http.HandlerFunc(formats.Update))).Methods(http.MethodPut)
	api.Handle("/formats/{formatID}/status", manageFormats(http.HandlerFunc(formats.SetStatus))).Methods(http.MethodPut)

	// Submissions
	api.HandleFunc("/submissions", submissions.Create).Methods(http.MethodPost)
	api.Handle("/submissions", viewAll(http.HandlerFunc(submissions.ListAll))).Methods(http.MethodGet)
	api.HandleFunc("/submissions/mine", submissions.ListMine).Methods(http.MethodGet)
	api.HandleFunc("/submissions/{submissionID}", submissions.Get).Methods(http.MethodGet)
	api.HandleFunc("/submissions/{submissionID}", submissions.Edit).Methods(http.MethodPut)
	api.HandleFunc("/submissions/{submissionID}/resubmit", submissions.Resubmit).Methods(http.MethodPost)
	api.Handle("/submissions/{submissionID}/decision", decide(http.HandlerFunc(submissions.Decide))).Methods(http.MethodPost)

	// Validations
	api.Handle("/validations", decide(http.HandlerFunc(validations.List))).Methods(http.MethodGet)
	api.Handle("/validations/pending", decide(http.HandlerFunc(validations.ListPending))).Methods(http.MethodGet)
	api.HandleFunc("/submissions/{submissionID}/validation", validations.GetForSubmission).Methods(http.MethodGet)
	api.HandleFunc("/submissions/{submissionID}/validations", validations.History).Methods(http.MethodGet)

	// Documents
	api.HandleFunc("/submissions/{submissionID}/pdf", documents.Download).Methods(http.MethodGet)

	// Notifications
	api.HandleFunc("/notifications", notifications.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{notificationID}/read", notifications.MarkRead).Methods(http.MethodPost)

	return router
}
