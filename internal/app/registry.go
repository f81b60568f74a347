package app

import (
	"time"

	"hr-backoffice/internal/attendance"
	"hr-backoffice/internal/auth"
	"hr-backoffice/internal/branch"
	"hr-backoffice/internal/config"
	"hr-backoffice/internal/department"
	"hr-backoffice/internal/designation"
	"hr-backoffice/internal/employee"
	"hr-backoffice/internal/leave"
	"hr-backoffice/internal/messaging/kafka"
	"hr-backoffice/internal/middleware"
	"hr-backoffice/internal/movement"
	"hr-backoffice/internal/rbac"
	"hr-backoffice/internal/rbac/infra"
	"hr-backoffice/internal/report"
	"hr-backoffice/internal/shared/counter"
	"hr-backoffice/internal/transfer"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	db, err := gormDB.DB()
	if err != nil {
		return err
	}

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	branchRepo := branch.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	departmentRepo := department.NewRepository(gormDB)
	designationRepo := designation.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	movementRepo := movement.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	reportRepo := report.NewRepository(gormDB)
	transferRepo := transfer.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(cfg.RBACModelPath)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	attendanceService := attendance.NewService(db, attendanceRepo, attendance.Policy{
		WorkStart: cfg.WorkStart,
		WorkHours: cfg.WorkHours,
	})
	authService := auth.NewService(authRepo, rbacService, cfg.JWTSecret)
	branchService := branch.NewService(db, branchRepo, rdb)
	departmentService := department.NewService(db, departmentRepo, rdb)
	designationService := designation.NewService(db, designationRepo, rdb)
	employeeService := employee.NewServiceWithOutbox(db, employeeRepo, counterRepo, outboxRepo, rdb)
	leaveService := leave.NewServiceWithOutbox(db, leaveRepo, rbacService, outboxRepo)
	movementService := movement.NewServiceWithOutbox(db, movementRepo, rbacService, outboxRepo)
	reportService := report.NewService(reportRepo, report.Options{
		Outbox:    outboxRepo,
		ExportDir: cfg.ReportExportDir,
		Now:       time.Now,
	})
	transferService := transfer.NewServiceWithOutbox(db, transferRepo, rbacService, outboxRepo)

	// --- Handlers ---
	attendanceHandler := attendance.NewHandler(attendanceService)
	authHandler := auth.NewHandler(authService, cfg.Env == "production")
	branchHandler := branch.NewHandler(branchService)
	departmentHandler := department.NewHandler(departmentService)
	designationHandler := designation.NewHandler(designationService)
	employeeHandler := employee.NewHandler(employeeService)
	leaveHandler := leave.NewHandler(leaveService)
	movementHandler := movement.NewHandler(movementService)
	rbacHandler := rbac.NewHandler(rbacService)
	reportHandler := report.NewHandler(reportService)
	transferHandler := transfer.NewHandler(transferService)

	// --- Routes Registration ---
	public, protected := routeGroups(router, cfg.JWTSecret, zap.L())
	{
		auth.RegisterRoutes(public, protected, authHandler, rbacService)
		attendance.RegisterRoutes(protected, attendanceHandler, rbacService)
		branch.RegisterRoutes(protected, branchHandler, rbacService)
		department.RegisterRoutes(protected, departmentHandler, rbacService)
		designation.RegisterRoutes(protected, designationHandler, rbacService)
		employee.RegisterRoutes(protected, employeeHandler, rbacService)
		leave.RegisterRoutes(protected, leaveHandler, rbacService)
		movement.RegisterRoutes(protected, movementHandler, rbacService, rdb)
		report.RegisterRoutes(protected, reportHandler, rbacService)
		transfer.RegisterRoutes(protected, transferHandler, rbacService, rdb)
		rbac.RegisterRoutes(protected, rbacHandler, rbacService)
	}

	return nil
}

// routeGroups mounts /api/v1 with one request logger per route: public routes
// get it directly, protected routes after AuthMiddleware so it carries the
// user id.
func routeGroups(router *gin.Engine, secret string, logger *zap.Logger) (public, protected *gin.RouterGroup) {
	router.Use(middleware.RequestID())

	api := router.Group("/api/v1")
	public = api.Group("", middleware.ContextLogger(logger))
	protected = api.Group("", middleware.AuthMiddleware(secret), middleware.ContextLogger(logger))
	return public, protected
}
