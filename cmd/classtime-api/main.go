package main

import (
	"context"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"

	_ "github.com/classtime/classtime-api/api/swagger"
	"github.com/classtime/classtime-api/internal/authz"
	"github.com/classtime/classtime-api/internal/handler"
	"github.com/classtime/classtime-api/internal/repository"
	"github.com/classtime/classtime-api/internal/service"
	"github.com/classtime/classtime-api/pkg/cache"
	"github.com/classtime/classtime-api/pkg/config"
	"github.com/classtime/classtime-api/pkg/database"
	"github.com/classtime/classtime-api/pkg/jobs"
	"github.com/classtime/classtime-api/pkg/logger"
)

// @title Classtime API
// @version 1.0.0
// @description Classroom membership and course content API
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	if err := database.Migrate(db, cfg.Database.MigrationsDir); err != nil {
		logr.Sugar().Fatalw("migrations failed", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}
	var cacheStore service.CacheRepository
	if cacheRepo != nil {
		cacheStore = cacheRepo
	}
	cacheSvc := service.NewCacheService(cacheStore, metricsSvc, cfg.Cache.ClassroomTTL, logr, cfg.Cache.Enabled && cacheRepo != nil)

	userRepo := repository.NewUserRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	joinRequestRepo := repository.NewJoinRequestRepository(db)
	postRepo := repository.NewPostRepository(db)

	authorizer := authz.NewAuthorizer(memberRepo, logr)
	validate := validator.New()

	notifier := service.NewAsyncNotifier(
		service.NewLogNotifier(logr, cfg.Notifications.Enabled),
		jobs.QueueConfig{Workers: 2, Logger: logr},
	)
	notifier.Start(context.Background())
	defer notifier.Stop()

	authSvc := service.NewAuthService(userRepo, validate, cfg.JWT, logr)
	userSvc := service.NewUserService(userRepo, authorizer, validate, logr)
	classroomSvc := service.NewClassroomService(classroomRepo, memberRepo, userRepo, postRepo, cacheSvc, authorizer, validate, cfg.Cache, logr)
	membershipSvc := service.NewMembershipService(invitationRepo, joinRequestRepo, memberRepo, classroomRepo, userRepo, authorizer, notifier, metricsSvc, validate, logr)
	postSvc := service.NewPostService(postRepo, cacheSvc, authorizer, validate, cfg.Cache, logr)

	r := handler.NewRouter(handler.RouterDeps{
		Config:      cfg,
		Logger:      logr,
		AuthService: authSvc,
		Metrics:     metricsSvc,
		Auth:        handler.NewAuthHandler(authSvc),
		Users:       handler.NewUserHandler(userSvc, membershipSvc, classroomSvc),
		Classrooms:  handler.NewClassroomHandler(classroomSvc),
		Memberships: handler.NewMembershipHandler(membershipSvc),
		Posts:       handler.NewPostHandler(postSvc),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
