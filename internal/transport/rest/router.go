package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/exeat-management/internal/auth"
	"github.com/frahmantamala/exeat-management/internal/exeat"
	"github.com/frahmantamala/exeat-management/internal/transport/middleware"
	"github.com/frahmantamala/exeat-management/internal/transport/swagger"
	"github.com/frahmantamala/exeat-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Routes bundles what RegisterAllRoutes mounts. Nil handlers leave their
// routes out.
type Routes struct {
	DB             *sql.DB
	DBComponent    string
	AuthHandler    *auth.Handler
	RBAC           *auth.RBACAuthorization
	UserHandler    *user.Handler
	ExeatHandler   *exeat.Handler
	OpenAPI        []byte
	StaticDir      string
	AllowedOrigins []string
	Logger         *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, rt Routes) {
	healthHandler := NewHealthHandler(rt.DB, rt.DBComponent)

	// Apply global middleware
	router.Use(middleware.CORS(rt.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(rt.Logger))
	router.Use(middleware.RecoveryMiddleware(rt.Logger))
	router.Use(chiMiddleware.Compress(5, "application/json", "application/yaml", "text/html", "text/css", "application/javascript"))

	router.Get("/health", healthHandler.healthCheckHandler)
	router.Get("/ping", healthHandler.pingHandler)

	if len(rt.OpenAPI) > 0 {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(rt.OpenAPI)
		})
		router.Handle("/swagger/*", swagger.Handler())
	}

	if rt.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(rt.StaticDir)))
		router.Handle("/static/*", fs)
	}

	if rt.AuthHandler == nil {
		return
	}

	router.Post("/token", rt.AuthHandler.Login)
	router.Post("/signup", rt.AuthHandler.Signup)

	// Protected routes that require authentication
	router.Group(func(pr chi.Router) {
		pr.Use(rt.AuthHandler.AuthMiddleware)

		pr.Post("/revoke", rt.AuthHandler.Revoke)

		if rt.UserHandler != nil {
			pr.Route("/account", func(ar chi.Router) {
				ar.Get("/", rt.UserHandler.GetAccount)
				ar.Put("/update", rt.UserHandler.UpdateAccount)
				ar.Put("/change-password", rt.UserHandler.ChangePassword)
				ar.Delete("/delete", rt.UserHandler.DeleteAccount)
				ar.Get("/profile", rt.UserHandler.GetProfile)
				ar.Post("/upload-profile-picture", rt.UserHandler.UploadProfilePicture)
			})
		}

		if rt.ExeatHandler == nil || rt.RBAC == nil {
			return
		}

		pr.Route("/student", func(sr chi.Router) {
			sr.Use(rt.RBAC.RequireStudent())
			sr.Get("/exeat", rt.ExeatHandler.ListStudent)
			sr.Get("/exeat/{id}", rt.ExeatHandler.GetStudent)
			sr.Post("/submit", rt.ExeatHandler.Submit)
		})

		pr.Route("/staff", func(sr chi.Router) {
			sr.Use(rt.RBAC.RequireStaff())
			sr.Get("/exeat", rt.ExeatHandler.ListStaff)
			sr.Get("/exeat/{id}", rt.ExeatHandler.GetStaff)
			sr.Post("/approve/{id}", rt.ExeatHandler.Approve)
			sr.Post("/deny/{id}", rt.ExeatHandler.Deny)
		})

		pr.Route("/security", func(sr chi.Router) {
			sr.Use(rt.RBAC.RequireSecurityOperative())
			sr.Get("/exeat", rt.ExeatHandler.ListSecurity)
			sr.Get("/exeat/{id}", rt.ExeatHandler.GetSecurity)
		})
	})
}
