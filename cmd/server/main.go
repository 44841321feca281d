// Know Law 服务入口：法律咨询聊天与律师预约的 HTTP 服务。
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"know-law-go/internal/config"
	"know-law-go/internal/handler"
	"know-law-go/internal/middleware"
	"know-law-go/internal/repository"
	"know-law-go/internal/service"
	"know-law-go/pkg/database"
	"know-law-go/pkg/es"
	"know-law-go/pkg/kafka"
	"know-law-go/pkg/llm"
	"know-law-go/pkg/log"
	"know-law-go/pkg/storage"
	"know-law-go/pkg/token"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 1. 初始化配置与日志
	config.Init(*configPath)
	cfg := config.Conf
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()

	// 2. 初始化基础设施客户端
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Fatal("Elasticsearch 初始化失败", err)
	}
	kafka.InitProducer(cfg.Kafka)

	// 3. 组装仓储层
	userRepo := repository.NewUserRepository(database.DB)
	sessionRepo := repository.NewSessionRepository(database.RDB)
	conversationRepo := repository.NewConversationRepository(database.DB)
	bookingRepo := repository.NewBookingRepository(database.DB)

	// 4. 组装业务层
	sessionManager := token.NewSessionManager(cfg.Session.Secret, cfg.Session.ExpireHours)
	userService := service.NewUserService(userRepo, sessionRepo, sessionManager)
	searchService := service.NewSearchService(cfg.Elasticsearch)
	conversationService := service.NewConversationService(conversationRepo, searchService)
	uploadService := service.NewUploadService(cfg.Upload, cfg.MinIO)
	bookingService := service.NewBookingService(bookingRepo)

	// 应答策略在启动时确定：配置了外部 API 凭证则委托生成，
	// 内部回落到静态策略；否则仅使用静态策略。
	var strategy service.ResponseStrategy = service.NewStaticStrategy()
	var llmClient llm.Client
	if cfg.LLM.APIKey != "" {
		llmClient = llm.NewClient(cfg.LLM)
		timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
		strategy = service.NewDelegatedStrategy(llmClient, strategy, timeout, cfg.Chat.DelegatedHistory)
		log.Info("聊天应答策略: 外部委托（静态回落）")
	} else {
		log.Info("聊天应答策略: 本地静态")
	}

	chatService := service.NewChatService(
		conversationRepo,
		uploadService,
		searchService,
		strategy,
		llmClient,
		cfg.Chat.HistoryWindow,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second,
	)

	// 5. 启动预约确认任务消费者
	go kafka.StartConsumer(cfg.Kafka, bookingService)

	// 6. 组装 HTTP 层并启动
	router := setupRouter(cfg, userService, conversationService, chatService, bookingService, searchService)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Infof("服务启动，监听端口 %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("服务启动失败", err)
		}
	}()

	// 7. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("收到退出信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("服务关闭异常", err)
	}
	log.Info("服务已退出")
}

// setupRouter 注册全部路由。
func setupRouter(
	cfg config.Config,
	userService service.UserService,
	conversationService service.ConversationService,
	chatService service.ChatService,
	bookingService service.BookingService,
	searchService service.SearchService,
) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Cors())

	userHandler := handler.NewUserHandler(userService, cfg.Session)
	conversationHandler := handler.NewConversationHandler(conversationService)
	chatHandler := handler.NewChatHandler(chatService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	searchHandler := handler.NewSearchHandler(searchService)

	// 公开路由：匿名可访问
	router.POST("/register", userHandler.Register)
	router.POST("/login", userHandler.Login)
	router.GET("/session", userHandler.Session)
	router.POST("/guest", userHandler.Guest)
	router.POST("/logout", userHandler.Logout)
	router.GET("/lawyers", bookingHandler.Lawyers)

	// 受保护路由：需要注册用户或访客会话
	authorized := router.Group("/", middleware.SessionAuth(userService, cfg.Session.CookieName))
	{
		authorized.GET("/conversations", conversationHandler.List)
		authorized.POST("/conversations", conversationHandler.Create)
		authorized.GET("/conversations/:id", conversationHandler.Get)
		authorized.PUT("/conversations/:id", conversationHandler.Rename)
		authorized.DELETE("/conversations/:id", conversationHandler.Delete)
		authorized.PUT("/conversations/:id/messages/:msgId", conversationHandler.EditMessage)
		authorized.DELETE("/conversations/:id/messages/:msgId", conversationHandler.DeleteMessage)

		authorized.POST("/chat", chatHandler.Chat)
		authorized.GET("/ws/chat", chatHandler.ChatStream)

		authorized.POST("/booking", bookingHandler.Create)
		authorized.GET("/bookings", bookingHandler.List)

		authorized.GET("/search/messages", searchHandler.Messages)
	}

	return router
}
