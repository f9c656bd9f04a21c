package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/xiebiao/libshop/docs" // swag生成的API文档
	appbasket "github.com/xiebiao/libshop/internal/application/basket"
	appbook "github.com/xiebiao/libshop/internal/application/book"
	apppurchase "github.com/xiebiao/libshop/internal/application/purchase"
	appuser "github.com/xiebiao/libshop/internal/application/user"
	"github.com/xiebiao/libshop/internal/domain/book"
	"github.com/xiebiao/libshop/internal/domain/user"
	"github.com/xiebiao/libshop/internal/infrastructure/config"
	"github.com/xiebiao/libshop/internal/infrastructure/event"
	"github.com/xiebiao/libshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/libshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/libshop/internal/interface/http/handler"
	"github.com/xiebiao/libshop/internal/interface/http/middleware"
	"github.com/xiebiao/libshop/pkg/jwt"
	"github.com/xiebiao/libshop/pkg/metrics"
	"github.com/xiebiao/libshop/pkg/mq"
	"github.com/xiebiao/libshop/pkg/response"
	"github.com/xiebiao/libshop/pkg/tracing"
)

// @title                      libshop API
// @version                    1.0
// @description                图书商城购物车与库存对账服务
// @host                       localhost:8080
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization

// main 主程序入口
// 依赖注入为手动组装,与cmd/api/wire.go中的Wire配置保持一致
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化指标与追踪
	metrics.InitMetrics()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer("libshop", cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("初始化追踪失败: %v", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("关闭追踪失败: %v", err)
			}
		}()
	}

	// 3. 初始化数据库与Redis
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 4. 初始化消息队列(可选,未配置时购买确认不发事件)
	var publisher appbasket.EventPublisher
	if cfg.MQ.URL != "" {
		mqPublisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ChannelPoolSize)
		if err != nil {
			log.Fatalf("初始化消息队列失败: %v", err)
		}
		defer mqPublisher.Close()
		publisher = event.NewPublisher(mqPublisher)
	}

	// 5. 依赖注入（手动组装）
	// Repository ← Service/UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	basketRepo := mysql.NewBasketRepository(db)
	purchaseRepo := mysql.NewPurchaseRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)
	publishBookUseCase := appbook.NewPublishBookUseCase(bookService)
	listBooksUseCase := appbook.NewListBooksUseCase(bookService)
	getBasketUseCase := appbasket.NewGetBasketUseCase(basketRepo, bookRepo)
	changeQuantityUseCase := appbasket.NewChangeQuantityUseCase(basketRepo, bookRepo, txManager)
	setQuantityUseCase := appbasket.NewSetQuantityUseCase(basketRepo, bookRepo, txManager)
	removeItemUseCase := appbasket.NewRemoveItemUseCase(basketRepo)
	clearBasketUseCase := appbasket.NewClearBasketUseCase(basketRepo)
	confirmAllUseCase := appbasket.NewConfirmAllUseCase(basketRepo, bookRepo, purchaseRepo, txManager, publisher)
	listHistoryUseCase := apppurchase.NewListHistoryUseCase(purchaseRepo, bookRepo)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase)
	bookHandler := handler.NewBookHandler(publishBookUseCase, listBooksUseCase)
	basketHandler := handler.NewBasketHandler(
		getBasketUseCase,
		changeQuantityUseCase,
		setQuantityUseCase,
		removeItemUseCase,
		clearBasketUseCase,
		confirmAllUseCase,
	)
	purchaseHandler := handler.NewPurchaseHandler(listHistoryUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 6. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(otelgin.Middleware("libshop"))
	r.Use(middleware.Metrics())

	// 7. 注册路由
	registerRoutes(r, userHandler, bookHandler, basketHandler, purchaseHandler, authMiddleware)

	// 8. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   接口文档: http://localhost%s/swagger/index.html\n", addr)
	fmt.Printf("   购物车:   GET/DELETE http://localhost%s/api/v1/basket (需要登录)\n", addr)
	fmt.Printf("   确认购买: POST http://localhost%s/api/v1/basket/confirm (需要登录)\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	basketHandler *handler.BasketHandler,
	purchaseHandler *handler.PurchaseHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API路由组
	v1 := r.Group("/api/v1")
	{
		// 用户模块（公开接口,不需要登录）
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 图书模块
		books := v1.Group("/books")
		{
			// 查询图书列表(公开接口)
			books.GET("", bookHandler.ListBooks)

			// 上架图书(需要登录)
			books.POST("", authMiddleware.RequireAuth(), bookHandler.PublishBook)
		}

		// 购物车模块(全部需要登录)
		basket := v1.Group("/basket")
		basket.Use(authMiddleware.RequireAuth())
		{
			basket.GET("", basketHandler.GetBasket)
			basket.DELETE("", basketHandler.ClearBasket)
			basket.POST("/items", basketHandler.ChangeQuantity)
			basket.PUT("/items/:book_id", basketHandler.SetQuantity)
			basket.DELETE("/items/:book_id", basketHandler.RemoveItem)
			basket.POST("/confirm", basketHandler.ConfirmAll)
		}

		// 购买历史(需要登录)
		purchases := v1.Group("/purchases")
		purchases.Use(authMiddleware.RequireAuth())
		{
			purchases.GET("", purchaseHandler.ListHistory)
		}
	}
}
