package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forum_go/internal/api/mgt"
	v1 "forum_go/internal/api/v1"
	"forum_go/internal/core/config"
	"forum_go/internal/core/database"
	"forum_go/internal/core/logger"
	"forum_go/internal/core/runtime"
	"forum_go/internal/core/snowflake"
	"forum_go/internal/middleware"
	"forum_go/internal/repository"
	"forum_go/internal/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// 1. 加载配置 (Viper)
	if err := config.Init("."); err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	// 2. 初始化 Logger
	if err := logger.Init(&cfg.Logging); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting forum_go...")

	// 3. 初始化 MySQL
	if err := database.Init(&cfg.Database); err != nil {
		logger.Error("Failed to init database", logger.ErrorField(err))
		os.Exit(1)
	}
	defer database.Close()

	// 4. 初始化 Redis (L2 Cache)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer redisClient.Close()

	// 5. 初始化 Snowflake
	if err := snowflake.Init(&cfg.Snowflake); err != nil {
		logger.Error("Failed to init snowflake", logger.ErrorField(err))
		os.Exit(1)
	}

	// 6. 初始化 Repository
	topicRepo := repository.NewTopicRepository(database.Get())
	replyRepo := repository.NewReplyRepository(database.Get())
	categoryRepo := repository.NewCategoryRepository(database.Get())
	searchRepo := repository.NewSearchRepository(database.Get())
	statsRepo := repository.NewStatsRepository(database.Get())
	auditRepo := repository.NewAuditRepository(database.Get())
	userRepo := repository.NewUserRepository(database.Get())

	// 7. 删除策略（软删/硬删，启动时二选一）
	policy := repository.NewDeletionPolicy(cfg.Forum.DeletionPolicy, topicRepo, replyRepo)
	logger.Info("deletion policy", logger.String("mode", policy.Name()))

	// 8. 初始化 Service
	threadSvc := service.NewThreadService(topicRepo, replyRepo, categoryRepo, policy, redisClient, &cfg.Cache)
	moderationSvc := service.NewModerationService(topicRepo, replyRepo, auditRepo, policy, threadSvc)
	categorySvc := service.NewCategoryService(categoryRepo, cfg.Cache.L1Cap)
	searchSvc := service.NewSearchService(searchRepo, &cfg.Forum)
	statsSvc := service.NewStatsService(statsRepo, &cfg.Cache)
	userSvc := service.NewUserService(userRepo, &cfg.Cache, &cfg.JWT)

	// 9. Runtime 预热
	rtConfig := &runtime.RuntimeConfig{
		CategorySvc: categorySvc,
		StatsSvc:    statsSvc,
	}
	if err := runtime.Init(rtConfig); err != nil {
		logger.Error("Failed to init runtime", logger.ErrorField(err))
	}
	logger.Info("Runtime warmup: " + runtime.WarmUpLog())

	// 10. 初始化 Handler
	topicV1Handler := v1.NewTopicHandler(threadSvc)
	categoryV1Handler := v1.NewCategoryHandler(categorySvc)
	searchV1Handler := v1.NewSearchHandler(searchSvc)
	statsV1Handler := v1.NewStatsHandler(statsSvc)

	authMgtHandler := mgt.NewAuthHandler(userSvc)
	topicMgtHandler := mgt.NewTopicHandler(threadSvc)
	replyMgtHandler := mgt.NewReplyHandler(threadSvc)
	moderationMgtHandler := mgt.NewModerationHandler(moderationSvc)
	categoryMgtHandler := mgt.NewCategoryHandler(categorySvc)
	searchMgtHandler := mgt.NewSearchHandler(searchSvc)
	cacheMgtHandler := mgt.NewCacheHandler(threadSvc, categorySvc, statsSvc)

	// 11. 创建 IP 限制器
	rateLimiter := middleware.NewIPLimiter(cfg.Security.RateLimit, 60)

	// 12. 注册路由
	gin.SetMode(cfg.App.Mode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.MetricsMW())
	router.Use(middleware.RateLimitMW(rateLimiter))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		if err := database.Ping(); err != nil {
			c.JSON(503, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{
			"status":    "healthy",
			"runtime":   runtime.Get().Status(),
			"timestamp": time.Now().Unix(),
		})
	})

	// Health Check (详细版 - 用于负载均衡)
	router.GET("/healthz", func(c *gin.Context) {
		status := "ok"
		checks := make(map[string]string)

		if err := database.Ping(); err != nil {
			status = "error"
			checks["mysql"] = err.Error()
		} else {
			checks["mysql"] = "ok"
		}

		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			status = "error"
			checks["redis"] = err.Error()
		} else {
			checks["redis"] = "ok"
		}

		code := 200
		if status != "ok" {
			code = 503
		}
		c.JSON(code, gin.H{
			"status":    status,
			"checks":    checks,
			"timestamp": time.Now().Unix(),
		})
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"name":    "forum_go",
			"status":  "running",
			"version": "1.0.0",
			"runtime": runtime.WarmUpLog(),
		})
	})

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public API (v1)
	v1Group := router.Group("/api/v1")
	{
		v1Group.GET("/topics", topicV1Handler.List)
		v1Group.GET("/topics/recent", topicV1Handler.Recent)
		v1Group.GET("/topic/:tid", topicV1Handler.Get)
		v1Group.GET("/topic/:tid/replies", topicV1Handler.Replies)
		v1Group.GET("/reply/:rid/subtree", topicV1Handler.Subtree)

		v1Group.GET("/categories", categoryV1Handler.List)
		v1Group.GET("/category/:cid", categoryV1Handler.Get)
		v1Group.GET("/category/slug/:slug", categoryV1Handler.GetBySlug)

		v1Group.GET("/search", searchV1Handler.Search)

		v1Group.GET("/stats", statsV1Handler.Overview)
		v1Group.GET("/stats/category/:cid", statsV1Handler.Category)
		v1Group.GET("/stats/trending", statsV1Handler.Trending)
		v1Group.GET("/stats/popular", statsV1Handler.Popular)
	}

	// Management API (mgt) - 强制 IP 白名单
	mgtGroup := router.Group("/api/mgt")
	mgtGroup.Use(middleware.MgtWhitelistMW())
	{
		mgtGroup.POST("/auth/login", authMgtHandler.Login)
		mgtGroup.POST("/auth/register", authMgtHandler.Register)

		authed := mgtGroup.Group("")
		authed.Use(middleware.JWTMW(&cfg.JWT))
		{
			authed.POST("/topic", topicMgtHandler.Create)
			authed.PUT("/topic/:tid", topicMgtHandler.Update)
			authed.DELETE("/topic/:tid", topicMgtHandler.Delete)

			authed.POST("/reply", replyMgtHandler.Create)
			authed.PUT("/reply/:rid", replyMgtHandler.Update)
			authed.DELETE("/reply/:rid", replyMgtHandler.Delete)

			authed.POST("/topic/:tid/pin", moderationMgtHandler.Pin)
			authed.POST("/topic/:tid/unpin", moderationMgtHandler.Unpin)
			authed.POST("/topic/:tid/lock", moderationMgtHandler.Lock)
			authed.POST("/topic/:tid/unlock", moderationMgtHandler.Unlock)
			authed.POST("/topic/:tid/solved", moderationMgtHandler.MarkSolved)
			authed.POST("/topic/:tid/solution/:rid", moderationMgtHandler.MarkSolution)
			authed.DELETE("/moderation/topic/:tid", moderationMgtHandler.DeleteTopic)
			authed.DELETE("/moderation/reply/:rid", moderationMgtHandler.DeleteReply)
			authed.GET("/moderation/history", moderationMgtHandler.Recent)
			authed.GET("/moderation/history/:type/:id", moderationMgtHandler.History)

			authed.POST("/category", categoryMgtHandler.Create)
			authed.PUT("/category/:cid", categoryMgtHandler.Update)

			authed.POST("/search/rebuild", searchMgtHandler.Rebuild)
			authed.POST("/cache/flush", cacheMgtHandler.Flush)
		}
	}

	// 13. 启动 HTTP Server
	srv := &http.Server{
		Addr:    cfg.App.GetServerAddr(),
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", logger.ErrorField(err))
		}
	}()

	// pprof Server
	go func() {
		logger.Info("PProf server starting", logger.String("addr", "localhost:6060"))
		if err := http.ListenAndServe("localhost:6060", nil); err != nil && err != http.ErrServerClosed {
			logger.Error("PProf server error", logger.ErrorField(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	database.Close()
	redisClient.Close()
	logger.Sync()

	logger.Info("Server exited gracefully")
}
