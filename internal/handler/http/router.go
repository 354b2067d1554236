package http

import (
	"log/slog"

	"github.com/bpo-ops/ops-backend-go/internal/domain/user"
	"github.com/bpo-ops/ops-backend-go/internal/handler/http/middleware"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth       AuthHandler
	User       UserHandler
	Employee   EmployeeHandler
	Department DepartmentHandler
	Workflow   WorkflowHandler
	Schedule   ScheduleHandler
	Analytics  AnalyticsHandler
	Attendance AttendanceHandler
	NTE        NTEHandler
	Document   DocumentHandler
	System     SystemHandler
}

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewRouter(JWTService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))

	r.Get("/health", h.System.Health)
	r.Get("/files/*", h.System.Files)

	ja := JWTService.JWTAuth()

	// Spreadsheet-style endpoints keep their reply shapes but still need a session.
	r.Route("/macros", func(r chi.Router) {
		r.Use(jwtauth.Verifier(ja))
		r.Use(middleware.AuthRequired)

		r.With(middleware.RequirePermission(user.PermissionAttendanceView)).Get("/attendance", h.Attendance.Macro)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(user.PermissionNTEManage))
			r.Get("/nte", h.NTE.MacroGet)
			r.Post("/nte", h.NTE.MacroPost)
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json", "multipart/form-data"))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/google/login", h.Auth.LoginWithGoogle)
			r.Get("/google/callback", h.Auth.OAuthCallbackGoogle)
		})

		// EventSource cannot set headers, so the stream also accepts ?jwt=.
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(ja, jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
			r.Use(middleware.AuthRequired)
			r.Get("/events", h.System.Events)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(ja))
			r.Use(middleware.AuthRequired)

			r.Get("/auth/me", h.Auth.Me)

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionUserManage))
				r.Get("/", h.User.List)
				r.Post("/", h.User.Create)
				r.Get("/{id}", h.User.Get)
				r.Put("/{id}", h.User.Update)
				r.Delete("/{id}", h.User.Delete)
			})

			r.Route("/employees", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEmployeeView))
					r.Get("/", h.Employee.ListEmployees)
					r.Get("/stats", h.Employee.Stats)
					r.Get("/department/{department}", h.Employee.ListByDepartment)
					r.Get("/{id}", h.Employee.GetEmployee)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEmployeeManage))
					r.Post("/", h.Employee.CreateEmployee)
					r.Put("/{id}", h.Employee.UpdateEmployee)
					r.Patch("/{id}", h.Employee.UpdateEmployee)
					r.Delete("/{id}", h.Employee.DeleteEmployee)
				})
			})

			r.Route("/departments", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionDepartmentView))
					r.Get("/", h.Department.List)
					r.Get("/tree", h.Department.Tree)
					r.Get("/{id}", h.Department.Get)
					r.Get("/{id}/members", h.Department.ListMembers)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionDepartmentEdit))
					r.Post("/", h.Department.Create)
					r.Put("/{id}", h.Department.Update)
					r.Delete("/{id}", h.Department.Delete)
					r.Post("/{id}/members", h.Department.AddMember)
					r.Delete("/{id}/members/{userID}", h.Department.RemoveMember)
				})
			})

			r.Route("/processes", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionWorkflowView)).Get("/", h.Workflow.ListProcesses)
				r.With(middleware.RequirePermission(user.PermissionWorkflowView)).Get("/{id}", h.Workflow.GetProcess)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionWorkflowManage))
					r.Post("/", h.Workflow.CreateProcess)
					r.Put("/{id}", h.Workflow.UpdateProcess)
					r.Delete("/{id}", h.Workflow.DeleteProcess)
					r.Post("/{id}/activate", h.Workflow.ActivateProcess)
				})
			})

			r.Route("/workflows", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionWorkflowView))
					r.Get("/", h.Workflow.ListWorkflows)
					r.Get("/instances", h.Workflow.ListInstances)
					r.Get("/instances/{id}", h.Workflow.GetInstance)
					r.Get("/{id}", h.Workflow.GetWorkflow)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionWorkflowManage))
					r.Post("/", h.Workflow.CreateWorkflow)
					r.Put("/{id}", h.Workflow.UpdateWorkflow)
					r.Delete("/{id}", h.Workflow.DeleteWorkflow)
					r.Post("/{id}/activate", h.Workflow.ActivateWorkflow)
					r.Post("/{id}/deactivate", h.Workflow.DeactivateWorkflow)
					r.Post("/{id}/stages", h.Workflow.AddStage)
					r.Post("/instances/{id}/cancel", h.Workflow.CancelInstance)
					r.Post("/instances/{id}/fail", h.Workflow.FailInstance)
					r.Post("/tasks/{id}/assign", h.Workflow.AssignTask)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionTaskWork))
					r.Post("/instances", h.Workflow.StartInstance)
					r.Get("/tasks/my", h.Workflow.MyTasks)
					r.Post("/tasks/{id}/complete", h.Workflow.CompleteTask)
					r.Post("/tasks/{id}/skip", h.Workflow.SkipTask)
				})
			})

			r.Route("/schedules", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionScheduleView))
					r.Get("/", h.Schedule.GetSchedule)
					r.Get("/employees", h.Schedule.GetEmployees)
					r.Get("/shifts", h.Schedule.GetShifts)
					r.Get("/metadata", h.Schedule.GetMetadata)
					r.Get("/entries", h.Schedule.ListEntries)
					r.Get("/template", h.Schedule.Template)
					r.Get("/export", h.Schedule.Export)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionScheduleManage))
					r.Post("/shifts", h.Schedule.AddShift)
					r.Put("/shifts/batch", h.Schedule.BatchUpdateShifts)
					r.Put("/shifts/{id}", h.Schedule.UpdateShift)
					r.Delete("/shifts/{id}", h.Schedule.DeleteShift)
					r.Post("/upload", h.Schedule.Upload)
				})
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionAnalyticsView))
				r.Get("/dashboard", h.Analytics.Dashboard)
				r.Get("/trends/tasks", h.Analytics.TaskTrends)
				r.Get("/trends/workflows", h.Analytics.WorkflowTrends)
				r.Get("/processes", h.Analytics.ProcessPerformance)
				r.Get("/users", h.Analytics.UserProductivity)
				r.Get("/sla", h.Analytics.SLASummary)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceView))
					r.Get("/statuses", h.Attendance.StatusOptions)
					r.Get("/supervisors", h.Attendance.ListSupervisors)
					r.Get("/team", h.Attendance.GetTeamList)
					r.Get("/records", h.Attendance.GetRecords)
					r.Get("/summary", h.Attendance.DailySummary)
					r.Get("/history", h.Attendance.ListHistory)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceRecord))
					r.Post("/records", h.Attendance.SaveRecord)
					r.Put("/records", h.Attendance.UpdateRecord)
					r.Post("/team", h.Attendance.AddTeamMember)
					r.Delete("/team", h.Attendance.RemoveTeamMember)
				})
			})

			r.Route("/nte", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionNTEManage))
				r.Get("/", h.NTE.List)
				r.Post("/", h.NTE.Create)
				r.Get("/{id}", h.NTE.Get)
				r.Put("/{id}", h.NTE.Update)
				r.Delete("/{id}", h.NTE.Delete)
				r.Get("/{id}/preview", h.NTE.Preview)
				r.Post("/{id}/export", h.NTE.Export)
			})

			r.Route("/documents", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionDocumentCreate))
				r.Get("/forms", h.Document.ListForms)
				r.Post("/forms", h.Document.SaveForm)
				r.Post("/generate", h.Document.GenerateLatest)
				r.Post("/generate/{row}", h.Document.Generate)
				r.With(middleware.RequireAdmin).Put("/logo", h.Document.UploadLogo)
			})
		})
	})
	return r
}
