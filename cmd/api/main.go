package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "worktracker/api/swagger" // swagger docs
	"worktracker/internal/config"
	"worktracker/internal/database"
	"worktracker/internal/handler"
	"worktracker/internal/logger"
	"worktracker/internal/middleware"
	"worktracker/internal/repository"
	"worktracker/internal/service"
	"worktracker/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Work Tracker API
// @version         1.0
// @description     Work items per division, date requests and their approval workflow.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load("configs/.env")
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.GinMode)
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set, using the development key")
	}

	db, err := database.NewConnection(cfg.Database.DSN(), log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("database migration failed")
	}
	log.Info("connected to PostgreSQL")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wsHub := websocket.NewHub(log)
	go wsHub.Run(ctx)

	// Repository -> Service -> Handler
	txManager := repository.NewTransactionManager(db)
	workItemRepo := repository.NewWorkItemRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	cache := service.NewWorkItemCache(workItemRepo, cfg.Cache.WorkItemTTL, log)
	highlighter := service.NewHighlighter(service.NewPendingRequestIndex(requestRepo))
	auditService := service.NewAuditService(auditRepo)
	workItemService := service.NewWorkItemService(cache, workItemRepo, highlighter, log)
	requestService := service.NewRequestService(service.RequestServiceDeps{
		Tx:                 txManager,
		Requests:           requestRepo,
		Assignments:        assignmentRepo,
		Audit:              auditService,
		Cache:              cache,
		Notifier:           wsHub,
		Logger:             log,
		InvalidateOnAccept: cfg.Cache.InvalidateOnAccept,
	})

	auth := middleware.NewAuthenticator(cfg.Secret())
	workItemHandler := handler.NewWorkItemHandler(workItemService, auth, cfg.PageSize, cfg.MaxPageSize)
	requestHandler := handler.NewRequestHandler(requestService, auth)
	auditHandler := handler.NewAuditHandler(auditService, auth)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLog(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Request-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, cfg.Secret())
	})

	workItemHandler.RegisterRoutes(router.Group(""))
	requestHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
