package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-edu-platform/internal/config"
	"go-edu-platform/internal/handler"
	"go-edu-platform/internal/middleware"
	"go-edu-platform/internal/model"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	subjectHandler *handler.SubjectHandler,
	teacherHandler *handler.TeacherHandler,
	videoHandler *handler.VideoHandler,
	testHandler *handler.TestHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", authHandler.Login)
			auth.Post("/refresh", authHandler.Refresh)
			auth.Post("/oauth/login", authHandler.OAuthLogin)

			// Self-service signup creates clients. Elevated roles are
			// granted by principals that already outrank them.
			auth.Post("/register/client", authHandler.Register(model.RoleClient))
			auth.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleAdmin)).
				Post("/register/teacher", authHandler.Register(model.RoleTeacher))
			auth.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleAdmin)).
				Post("/register/admin", authHandler.Register(model.RoleAdmin))
			auth.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleSuperadmin)).
				Post("/register/superadmin", authHandler.Register(model.RoleSuperadmin))

			auth.With(authMiddleware.RequireAuth).Get("/me", authHandler.Me)
			auth.With(authMiddleware.RequireAuth).Get("/check-role/{role}", authHandler.CheckRole)

			auth.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleAdmin)).
				Get("/users", userHandler.List)
			auth.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleAdmin)).
				Get("/users/{id}", userHandler.Get)
			auth.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleAdmin)).
				Patch("/users/{id}/role", userHandler.ChangeRole)
			auth.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleAdmin)).
				Patch("/users/{id}/active", userHandler.SetActive)
		})

		api.Route("/subjects", func(subjects chi.Router) {
			subjects.Get("/", subjectHandler.List)
			subjects.Get("/{id}", subjectHandler.Get)
			subjects.Get("/{subjectID}/teachers", teacherHandler.ListBySubject)

			subjects.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleAdmin)).
				Post("/", subjectHandler.Create)
			subjects.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleAdmin)).
				Put("/{id}", subjectHandler.Update)
			subjects.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleAdmin)).
				Delete("/{id}", subjectHandler.Delete)
		})

		api.Route("/teachers", func(teachers chi.Router) {
			teachers.Get("/", teacherHandler.List)
			teachers.Get("/{id}", teacherHandler.Get)

			teachers.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleAdmin)).
				Post("/", teacherHandler.Create)
			// Owners may edit their own profile; the service enforces it.
			teachers.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleTeacher)).
				Put("/{id}", teacherHandler.Update)
			teachers.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleAdmin)).
				Delete("/{id}", teacherHandler.Delete)
			teachers.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleAdmin)).
				Post("/subjects", teacherHandler.AssignSubject)
			teachers.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleAdmin)).
				Delete("/{id}/subjects/{subjectID}", teacherHandler.UnassignSubject)
		})

		api.Route("/videos", func(videos chi.Router) {
			videos.Get("/", videoHandler.List)
			videos.Get("/categories", videoHandler.ListCategories)
			videos.Get("/{id}", videoHandler.Get)

			videos.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleTeacher)).
				Post("/categories", videoHandler.CreateCategory)
			videos.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleTeacher)).
				Post("/", videoHandler.Create)
			videos.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleTeacher)).
				Put("/{id}", videoHandler.Update)
			videos.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleTeacher)).
				Delete("/{id}", videoHandler.Delete)

			videos.With(authMiddleware.RequireAuth).Put("/{id}/progress", videoHandler.SaveProgress)
			videos.With(authMiddleware.RequireAuth).Get("/progress/me", videoHandler.MyProgress)
		})

		api.Route("/tests", func(tests chi.Router) {
			tests.Get("/", testHandler.List)
			tests.Get("/{id}", testHandler.Get)

			tests.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleTeacher)).
				Post("/", testHandler.Create)
			tests.With(authMiddleware.RequireAuth, authMiddleware.RequireRole(model.RoleTeacher)).
				Delete("/{id}", testHandler.Delete)

			tests.With(authMiddleware.RequireAuth).Post("/{id}/submit", testHandler.Submit)
			tests.With(authMiddleware.RequireAuth).Get("/results/me", testHandler.MyResults)
		})
	})

	return r
}
