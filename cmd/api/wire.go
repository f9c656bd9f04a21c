//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 使用方式:
// Step 1: 修改本文件的Providers或Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go,main.go可调用其中的InitializeApp()

package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

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
	"github.com/xiebiao/libshop/pkg/mq"
	"github.com/xiebiao/libshop/pkg/response"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,     // 加载配置文件
	mysql.NewDB,     // 创建MySQL连接
	redis.NewClient, // 创建Redis连接
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,     // 用户仓储
	mysql.NewBookRepository,     // 图书仓储
	mysql.NewBasketRepository,   // 购物车仓储
	mysql.NewPurchaseRepository, // 购买记录仓储
	mysql.NewTxManager,          // 事务管理器
	wire.Bind(new(appbasket.TxRunner), new(*mysql.TxManager)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService, // 用户领域服务
	book.NewService, // 图书领域服务
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,           // 用户注册用例
	appuser.NewLoginUseCase,              // 用户登录用例
	appuser.NewLogoutUseCase,             // 用户登出用例
	appbook.NewPublishBookUseCase,        // 图书上架用例
	appbook.NewListBooksUseCase,          // 图书列表用例
	appbasket.NewGetBasketUseCase,        // 购物车查询用例
	appbasket.NewChangeQuantityUseCase,   // 购物车增减数量用例
	appbasket.NewSetQuantityUseCase,      // 购物车设置数量用例
	appbasket.NewRemoveItemUseCase,       // 购物车移除条目用例
	appbasket.NewClearBasketUseCase,      // 购物车清空用例
	appbasket.NewConfirmAllUseCase,       // 确认购买用例
	apppurchase.NewListHistoryUseCase,    // 购买历史查询用例
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,            // JWT管理器（需要从config提取参数）
	provideSessionStore,          // Session存储（需要从Redis创建）
	middleware.NewAuthMiddleware, // 认证中间件
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,     // 用户处理器
	handler.NewBookHandler,     // 图书处理器
	handler.NewBasketHandler,   // 购物车处理器
	handler.NewPurchaseHandler, // 购买历史处理器
)

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideEventPublisher 从配置创建购买确认事件发布器
// MQ未配置时返回nil,确认购买用例会跳过事件发布
func provideEventPublisher(cfg *config.Config) (appbasket.EventPublisher, error) {
	if cfg.MQ.URL == "" {
		log.Println("消息队列未配置,购买确认事件将不会发布")
		return nil, nil
	}
	mqPublisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ChannelPoolSize)
	if err != nil {
		return nil, err
	}
	return event.NewPublisher(mqPublisher), nil
}

// provideGinEngine 创建并配置Gin引擎
// 路由注册直接写在函数内,避免与main.go中的registerRoutes冲突
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	basketHandler *handler.BasketHandler,
	purchaseHandler *handler.PurchaseHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	// 设置运行模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(otelgin.Middleware("libshop"))
	r.Use(middleware.Metrics())

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API路由组
	v1 := r.Group("/api/v1")
	{
		// 用户模块（公开接口）
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 图书模块
		books := v1.Group("/books")
		{
			// 公开接口
			books.GET("", bookHandler.ListBooks)

			// 需要登录
			books.POST("", authMiddleware.RequireAuth(), bookHandler.PublishBook)
		}

		// 购物车模块（需要登录）
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

		// 购买历史（需要登录）
		purchases := v1.Group("/purchases")
		purchases.Use(authMiddleware.RequireAuth())
		{
			purchases.GET("", purchaseHandler.ListHistory)
		}
	}

	return r
}

// InitializeApp 初始化整个应用
// Wire会在wire_gen.go中生成实际的初始化代码,这里的返回值是占位符
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		// 基础设施层
		infrastructureSet,

		// 仓储层
		repositorySet,

		// 领域层
		domainSet,

		// 应用层
		applicationSet,

		// 事件发布
		provideEventPublisher,

		// 中间件层
		middlewareSet,

		// 接口层
		handlerSet,

		// Gin引擎
		provideGinEngine,
	)

	return nil, nil
}
