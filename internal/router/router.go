package router

import (
	"net/http"
	"time"

	"postboard/internal/handlers"
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services 路由依赖的业务服务
type Services struct {
	Auth         *services.AuthService
	Posts        *services.PostService
	Interactions *services.InteractionService
	Ranking      *services.RankingService
}

// New 创建带全局中间件的 gin 引擎并注册路由
func New(svc Services, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.Recovery(), corsMiddleware(corsOrigins))
	RegisterRoutes(r, svc)
	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func RegisterRoutes(r *gin.Engine, svc Services) {
	authHandler := handlers.NewAuthHandler(svc.Auth)
	postHandler := handlers.NewPostHandler(svc.Posts, svc.Ranking)
	interactionHandler := handlers.NewInteractionHandler(svc.Interactions)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 认证
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register) // 注册
		auth.POST("/login", authHandler.Login)       // 登录，返回令牌
	}

	// 公共路由；同一层级的通配符统一命名为 :id
	posts := r.Group("/posts")
	{
		posts.GET("/all", postHandler.ListAll)                                           // 全部帖子
		posts.GET("/user/:username", postHandler.ListByUser)                             // 用户的帖子
		posts.GET("/topic/:topic", postHandler.ListByTopic)                              // 话题下的帖子
		posts.GET("/:id", postHandler.Get)                                               // 帖子详情
		posts.GET("/:id/comments", interactionHandler.ListComments)                      // 评论列表
		posts.GET("/:id/popular/live", postHandler.MostPopular(models.StatusLive))       // 话题最热（进行中）
		posts.GET("/:id/popular/expired", postHandler.MostPopular(models.StatusExpired)) // 话题最热（已过期）
	}

	// 受保护路由
	authorized := r.Group("/posts")
	authorized.Use(middleware.AuthRequired(svc.Auth))
	{
		authorized.POST("/create", postHandler.Create)                                       // 发布帖子
		authorized.PUT("/:id", postHandler.Update)                                           // 修改帖子
		authorized.DELETE("/:id", postHandler.Delete)                                        // 删除帖子
		authorized.POST("/:id/like", interactionHandler.React(models.InteractionLike))       // 点赞
		authorized.POST("/:id/dislike", interactionHandler.React(models.InteractionDislike)) // 点踩
		authorized.POST("/:id/comment", interactionHandler.Comment)                          // 评论
	}
}
