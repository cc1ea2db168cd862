package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/nagnet2050/quick-sale-hr/internal/handler/http/middleware"
	"github.com/nagnet2050/quick-sale-hr/internal/pkg/jwt"
)

func NewRouter(
	JWTService jwt.Service,
	payrollHandler PayrollHandler,
	employeeHandler EmployeeHandler,
	loanHandler LoanHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "quick-sale-hr"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/payroll", func(r chi.Router) {
				r.Post("/", payrollHandler.CreateEntry)
				r.Get("/", payrollHandler.ListEntries)
				r.Get("/summary", payrollHandler.GetSummary)

				r.Route("/batch", func(r chi.Router) {
					r.Post("/", payrollHandler.GenerateBatch)
					r.Post("/recalculate", payrollHandler.RecalculateBatch)
				})

				r.Route("/templates", func(r chi.Router) {
					r.Get("/{employeeId}", payrollHandler.GetTemplate)
					r.Put("/{employeeId}", payrollHandler.UpsertTemplate)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", payrollHandler.GetEntry)
					r.Put("/", payrollHandler.UpdateEntry)
					r.Delete("/", payrollHandler.DeleteEntry)
					r.Post("/approve", payrollHandler.ApproveEntry)
					r.Post("/pay", payrollHandler.MarkPaid)
					r.Post("/recalculate", payrollHandler.RecalculateEntry)
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", employeeHandler.ListActive)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", employeeHandler.Get)
					r.Get("/loans", loanHandler.GetEmployeeLoans)
					r.Post("/loans", loanHandler.Create)
				})
			})
		})
	})

	return r
}
