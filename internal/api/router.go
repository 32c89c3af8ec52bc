package api

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/media"
)

// NewRouter creates the HTTP router with all endpoints registered.
// Uploaded photos are served from uploadsDir under /uploads/ when it is
// non-empty.
func NewRouter(db *sqlx.DB, accounts *auth.Service, photos media.Store, uploadsDir string) http.Handler {
	mux := http.NewServeMux()

	userHandler := &UserHandler{Accounts: accounts}
	adminHandler := &AdminHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db, Photos: photos}
	contactHandler := &ContactHandler{DB: db}
	healthHandler := &HealthHandler{DB: db}

	authn := Authenticate(accounts.Secret)

	// Account lifecycle.
	mux.HandleFunc("POST /user/signup", userHandler.Signup)
	mux.HandleFunc("GET /user/verify-email", userHandler.VerifyEmail)
	mux.HandleFunc("POST /user/signin", userHandler.Signin)
	mux.HandleFunc("POST /user/forgot-password", userHandler.ForgotPassword)
	mux.HandleFunc("POST /user/reset-password/{token}", userHandler.ResetPassword)

	// Administration.
	mux.Handle("GET /admin/users", authn(RequireAdmin(http.HandlerFunc(adminHandler.ListUsers))))
	mux.Handle("DELETE /users/{id}", authn(RequireAdmin(http.HandlerFunc(adminHandler.DeleteUser))))
	mux.Handle("GET /admin/contacts", authn(RequireAdmin(http.HandlerFunc(adminHandler.ListContacts))))

	// Items.
	mux.Handle("POST /api/items", authn(http.HandlerFunc(itemsHandler.Create)))
	mux.HandleFunc("GET /api/items/recent-items", itemsHandler.Recent)
	mux.HandleFunc("GET /api/items/search", itemsHandler.Search)
	mux.Handle("GET /api/items/user-items", authn(http.HandlerFunc(itemsHandler.UserItems)))
	mux.Handle("GET /api/items/{id}", authn(http.HandlerFunc(itemsHandler.Get)))
	mux.HandleFunc("PUT /api/items/{id}", itemsHandler.Update)
	mux.Handle("DELETE /api/items/{id}", authn(http.HandlerFunc(itemsHandler.Delete)))

	// Contact form.
	mux.HandleFunc("POST /api/contact", contactHandler.Create)

	if uploadsDir != "" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))
	}

	mux.HandleFunc("GET /healthz", healthHandler.Healthz)
	mux.HandleFunc("GET /readyz", healthHandler.Readyz)

	return LoggingMiddleware(CORS(mux))
}
