package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/config"
	"github.com/bpo-ops/ops-backend-go/internal/fixtures"
	appHTTP "github.com/bpo-ops/ops-backend-go/internal/handler/http"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/cron"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/database"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/jwt"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/oauth"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/sse"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/storage"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/workbook"
	"github.com/bpo-ops/ops-backend-go/internal/repository/postgresql"
	"github.com/bpo-ops/ops-backend-go/internal/repository/sheet"
	analyticsService "github.com/bpo-ops/ops-backend-go/internal/service/analytics"
	attendanceService "github.com/bpo-ops/ops-backend-go/internal/service/attendance"
	serviceAuth "github.com/bpo-ops/ops-backend-go/internal/service/auth"
	departmentService "github.com/bpo-ops/ops-backend-go/internal/service/department"
	documentService "github.com/bpo-ops/ops-backend-go/internal/service/document"
	employeeService "github.com/bpo-ops/ops-backend-go/internal/service/employee"
	"github.com/bpo-ops/ops-backend-go/internal/service/file"
	nteService "github.com/bpo-ops/ops-backend-go/internal/service/nte"
	scheduleService "github.com/bpo-ops/ops-backend-go/internal/service/schedule"
	userService "github.com/bpo-ops/ops-backend-go/internal/service/user"
	workflowService "github.com/bpo-ops/ops-backend-go/internal/service/workflow"
	"github.com/go-chi/httplog/v3"
)

const (
	appName    = "bpo-ops"
	appVersion = "v1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", appName),
		slog.String("version", appVersion),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	store, err := workbook.Open(cfg.Workbook.Path)
	if err != nil {
		log.Fatal("Failed to open workbook: ", err)
	}
	defer store.Close()
	if err := sheet.Bootstrap(store); err != nil {
		log.Fatal("Failed to prepare workbook sheets: ", err)
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		log.Fatal("Failed to initialize local storage: ", err)
	}

	// Repositories
	userRepo := postgresql.NewUserRepository(db)
	JWTRepository := postgresql.NewJWTRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	departmentRepo := postgresql.NewDepartmentRepository(db)
	processRepo := postgresql.NewProcessRepository(db)
	workflowRepo := postgresql.NewWorkflowRepository(db)
	instanceRepo := postgresql.NewInstanceRepository(db)
	scheduleRepo := postgresql.NewScheduleRepository(db)
	analyticsRepo := postgresql.NewAnalyticsRepository(db)
	attendanceRepo := sheet.NewAttendanceRepository(store)
	nteRepo := sheet.NewNTERepository(store)
	documentRepo := sheet.NewDocumentRepository(store)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := fixtures.SeedAdmin(seedCtx, userRepo, fixtures.AdminSeed{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
		FullName: cfg.Seed.AdminName,
	}); err != nil {
		log.Fatal("Failed to seed administrator: ", err)
	}
	cancelSeed()

	// Services
	hub := sse.NewHub()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, cfg.IsProduction())
	GoogleService := oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	fileService := file.NewFileService(fileStorage)
	branding := file.Branding{CompanyName: cfg.Document.CompanyName, LogoPath: cfg.Document.LogoPath}

	authService := serviceAuth.NewAuthService(db, userRepo, JWTService, JWTRepository)
	usersService := userService.NewUserService(userRepo, JWTRepository)
	employeesService := employeeService.NewEmployeeService(employeeRepo)
	departmentsService := departmentService.NewDepartmentService(departmentRepo, userRepo)
	processService := workflowService.NewProcessService(processRepo, departmentRepo, userRepo)
	definitionService := workflowService.NewDefinitionService(db, workflowRepo, processRepo)
	engine := workflowService.NewEngine(db, workflowRepo, instanceRepo, userRepo, hub)
	schedulesService := scheduleService.NewScheduleService(scheduleRepo, employeeRepo, cfg.Schedule.CacheTTL, cfg.Upload.MaxBytes, cfg.Location())
	analyticsSvc := analyticsService.NewAnalyticsService(analyticsRepo)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo)
	nteSvc := nteService.NewNTEService(nteRepo, fileService, branding)
	documentSvc := documentService.NewDocumentService(documentRepo, fileService, branding)

	// Background jobs
	scheduler := cron.NewScheduler()
	cron.NewWorkflowJobs(engine).RegisterJobs(scheduler, cfg.Workflow.SLACheckInterval)
	cron.NewAuthJobs(JWTRepository).RegisterJobs(scheduler, cfg.Workflow.TokenPurgeInterval)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(JWTService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(JWTService, authService, GoogleService, cfg.App.FrontendURL, cfg.IsProduction()),
		User:       appHTTP.NewUserHandler(usersService),
		Employee:   appHTTP.NewEmployeeHandler(employeesService),
		Department: appHTTP.NewDepartmentHandler(departmentsService),
		Workflow:   appHTTP.NewWorkflowHandler(processService, definitionService, engine),
		Schedule:   appHTTP.NewScheduleHandler(schedulesService, cfg.Upload.MaxBytes),
		Analytics:  appHTTP.NewAnalyticsHandler(analyticsSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		NTE:        appHTTP.NewNTEHandler(nteSvc),
		Document:   appHTTP.NewDocumentHandler(documentSvc, fileService),
		System:     appHTTP.NewSystemHandler(hub, fileStorage, db, scheduler),
	}, appHTTP.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.App.CORSOrigins,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
