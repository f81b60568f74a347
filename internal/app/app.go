package app

import (
	"fmt"

	"hr-backoffice/internal/attendance"
	"hr-backoffice/internal/auth"
	"hr-backoffice/internal/branch"
	"hr-backoffice/internal/config"
	"hr-backoffice/internal/department"
	"hr-backoffice/internal/designation"
	"hr-backoffice/internal/employee"
	"hr-backoffice/internal/leave"
	"hr-backoffice/internal/messaging/kafka"
	"hr-backoffice/internal/movement"
	"hr-backoffice/internal/rbac"
	"hr-backoffice/internal/shared/connection"
	"hr-backoffice/internal/shared/counter"
	"hr-backoffice/internal/transfer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildApp(router *gin.Engine, cfg config.Config) error {
	logger := zap.L().Named("app")

	gormDB, err := connectDatabase(cfg)
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	if err := migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.MaxRetries)
	if err != nil {
		return err
	}
	logger.Info("redis connection established")

	return registerModules(router, cfg, gormDB, redisClient)
}

func connectDatabase(cfg config.Config) (*gorm.DB, error) {
	return connection.ConnectGORMWithRetry(connection.PostgresOptions{
		Host:     cfg.Database.Host,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
		Port:     cfg.Database.Port,
		SSLMode:  cfg.Database.SSLMode,
	}, cfg.MaxRetries)
}

func migrate(db *gorm.DB) error {
	// departments first: branches, employees and movements reference it.
	if err := db.AutoMigrate(
		&department.Department{},
		&branch.Branch{},
		&designation.Designation{},
		&employee.Employee{},
		&auth.User{},
		&attendance.Attendance{},
		&leave.Leave{},
		&movement.Movement{},
		&transfer.Transfer{},
		&rbac.RoleRow{},
		&rbac.PermissionRow{},
		&rbac.EmployeeRoleRow{},
		&rbac.RolePermission{},
	); err != nil {
		return err
	}

	for _, ddl := range []string{kafka.Schema, counter.Schema} {
		if err := db.Exec(ddl).Error; err != nil {
			return err
		}
	}
	return nil
}
