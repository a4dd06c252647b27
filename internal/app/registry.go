package app

import (
	"path/filepath"

	"leaveflow/internal/activitytype"
	"leaveflow/internal/approval"
	"leaveflow/internal/audit"
	"leaveflow/internal/balance"
	"leaveflow/internal/holiday"
	"leaveflow/internal/messaging/kafka"
	"leaveflow/internal/notification"
	"leaveflow/internal/rbac"
	"leaveflow/internal/rbac/infra"
	"leaveflow/internal/request"
	"leaveflow/internal/shared/counter"
	"leaveflow/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	activityTypeRepo := activitytype.NewRepository(gormDB)
	userRepo := user.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	approvalRepo := approval.NewRepository(gormDB)
	requestRepo := request.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	auditor := audit.NewRecorder()
	activityTypeService := activitytype.NewService(gormDB, activityTypeRepo, auditor)
	userService := user.NewService(gormDB, userRepo)
	holidayService := holiday.NewService(gormDB, holidayRepo)
	balanceService := balance.NewService(gormDB, balanceRepo, activityTypeService, auditor)
	approvalService := approval.NewService(approvalRepo, userService)
	notificationService := notification.NewService(notificationRepo)
	requestService := request.NewService(
		gormDB,
		requestRepo,
		balanceService,
		approvalService,
		activityTypeService,
		holidayService,
		userService,
		counterRepo,
		outboxRepo,
		auditor,
	)

	// --- Handlers ---
	rbacHandler := rbac.NewHandler(rbacService)
	activityTypeHandler := activitytype.NewHandler(activityTypeService)
	userHandler := user.NewHandler(userService)
	holidayHandler := holiday.NewHandler(holidayService)
	balanceHandler := balance.NewHandlerWithRedis(balanceService, rdb)
	approvalHandler := approval.NewHandler(approvalService)
	requestHandler := request.NewHandlerWithRedis(requestService, rdb)
	notificationHandler := notification.NewHandler(notificationService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		activitytype.RegisterRoutes(api, activityTypeHandler, rbacService)
		user.RegisterRoutes(api, userHandler, rbacService)
		holiday.RegisterRoutes(api, holidayHandler, rbacService)
		balance.RegisterRoutes(api, balanceHandler, rbacService, rdb)
		approval.RegisterRoutes(api, approvalHandler, rbacService)
		request.RegisterRoutes(api, requestHandler, rbacService, rdb)
		notification.RegisterRoutes(api, notificationHandler)
		rbac.RegisterRoutes(api, rbacHandler, rbacService)
	}

	return nil
}
