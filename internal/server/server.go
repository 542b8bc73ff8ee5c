package server

import (
	"log"
	"net/http"
	"strings"
	"time"

	"anoa.com/portalsekolah/internal/config"
	"anoa.com/portalsekolah/internal/entity"
	"anoa.com/portalsekolah/internal/middleware"
	"anoa.com/portalsekolah/internal/scheduler"
	"anoa.com/portalsekolah/pkg/storage"

	adminHttp "anoa.com/portalsekolah/internal/modules/admin/delivery/http"
	adminService "anoa.com/portalsekolah/internal/modules/admin/service"

	classHttp "anoa.com/portalsekolah/internal/modules/class/delivery/http"
	classRepo "anoa.com/portalsekolah/internal/modules/class/repository"
	classService "anoa.com/portalsekolah/internal/modules/class/service"

	contentHttp "anoa.com/portalsekolah/internal/modules/content/delivery/http"
	contentRepo "anoa.com/portalsekolah/internal/modules/content/repository"
	contentService "anoa.com/portalsekolah/internal/modules/content/service"

	dashboardHttp "anoa.com/portalsekolah/internal/modules/dashboard/delivery/http"
	dashboardService "anoa.com/portalsekolah/internal/modules/dashboard/service"

	materialHttp "anoa.com/portalsekolah/internal/modules/material/delivery/http"
	materialRepo "anoa.com/portalsekolah/internal/modules/material/repository"
	materialService "anoa.com/portalsekolah/internal/modules/material/service"

	notiHttp "anoa.com/portalsekolah/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/portalsekolah/internal/modules/notification/repository"
	notifService "anoa.com/portalsekolah/internal/modules/notification/service"

	orderHttp "anoa.com/portalsekolah/internal/modules/order/delivery/http"
	orderRepo "anoa.com/portalsekolah/internal/modules/order/repository"
	orderService "anoa.com/portalsekolah/internal/modules/order/service"

	pointHttp "anoa.com/portalsekolah/internal/modules/point/delivery/http"
	pointRepo "anoa.com/portalsekolah/internal/modules/point/repository"
	pointService "anoa.com/portalsekolah/internal/modules/point/service"

	productHttp "anoa.com/portalsekolah/internal/modules/product/delivery/http"
	productRepo "anoa.com/portalsekolah/internal/modules/product/repository"
	productService "anoa.com/portalsekolah/internal/modules/product/service"

	searchHttp "anoa.com/portalsekolah/internal/modules/search/delivery/http"
	searchService "anoa.com/portalsekolah/internal/modules/search/service"

	userHttp "anoa.com/portalsekolah/internal/modules/user/delivery/http"
	userRepo "anoa.com/portalsekolah/internal/modules/user/repository"
	userService "anoa.com/portalsekolah/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

// Deps are the external clients the server is built on. Redis, Files and Meili may be nil.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Files  storage.FileStorage
	Meili  meilisearch.ServiceManager
}

type Server struct {
	engine    *gin.Engine
	scheduler *scheduler.Scheduler
}

func NewServer(deps Deps) *Server {
	cfg := deps.Config
	db := deps.DB
	redisClient := deps.Redis

	userRepository := userRepo.NewUserRepository(db)
	classRepository := classRepo.NewClassRepository(db)
	productRepository := productRepo.NewProductRepository(db)
	orderRepository := orderRepo.NewOrderRepository(db)
	pointRepository := pointRepo.NewPointRepository(db)

	searchSvc := searchService.NewMeiliSearchService(deps.Meili)

	notificationSvc := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, originChecker(cfg.AllowedOrigins))

	authSvc := userService.NewAuthService(userRepository, redisClient, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := userHttp.NewAuthHandler(authSvc)

	adminSvc := adminService.NewAdminService(userRepository, classRepository, pointRepository, orderRepository, deps.Files)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	classSvc := classService.NewClassService(classRepository, userRepository, pointRepository, orderRepository)
	classHandler := classHttp.NewClassHandler(classSvc)

	productSvc := productService.NewProductService(productRepository)
	productHandler := productHttp.NewProductHandler(productSvc)

	pointSvc := pointService.NewPointService(pointRepository, userRepository, classRepository, notificationSvc)
	pointHandler := pointHttp.NewPointHandler(pointSvc)

	orderSvc := orderService.NewOrderService(orderRepository, productRepository, userRepository, notificationSvc, redisClient, orderService.Options{
		RateLimit: cfg.RateLimitOrder,
		CacheTTL:  cfg.OrderCacheTTL,
	})
	orderHandler := orderHttp.NewOrderHandler(orderSvc)

	contentSvc := contentService.NewContentService(contentRepo.NewContentRepository(db), searchSvc)
	contentHandler := contentHttp.NewContentHandler(contentSvc)

	materialSvc := materialService.NewMaterialService(
		materialRepo.NewMaterialRepository(db),
		classRepository,
		userRepository,
		notificationSvc,
		deps.Files,
		searchSvc,
		redisClient,
		resty.New().SetTimeout(2*time.Minute),
		materialService.Options{SignedURLTTL: cfg.SignedURLTTL},
	)
	materialHandler := materialHttp.NewMaterialHandler(materialSvc)

	dashboardSvc := dashboardService.NewDashboardService(userRepository, productRepository, classRepository, orderSvc, pointSvc, contentSvc)
	dashboardHandler := dashboardHttp.NewDashboardHandler(dashboardSvc)

	searchHandler := searchHttp.NewSearchHandler(searchSvc, userRepository)

	jobs := scheduler.New()
	if err := jobs.Register(scheduler.NewMaterialNoticeJob(materialSvc, cfg.MaterialSchedule)); err != nil {
		log.Printf("⚠️ Material notice job not scheduled: %v", err)
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/api/notifications/ws"},
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(userRepository, redisClient, cfg.JWTSecret)
	anyRole := authMiddleware.RequireRole(entity.RoleAdmin, entity.RoleGuru, entity.RoleSiswa)
	adminOnly := authMiddleware.RequireRole(entity.RoleAdmin)
	staff := authMiddleware.RequireRole(entity.RoleAdmin, entity.RoleGuru)
	guruOnly := authMiddleware.RequireRole(entity.RoleGuru)
	siswaOnly := authMiddleware.RequireRole(entity.RoleSiswa)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth(), anyRole)
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.Me)
		protected.PUT("/auth/password", authHandler.ChangePassword)

		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		protected.GET("/announcements/recent", contentHandler.Recent)
		protected.GET("/leaderboard", pointHandler.Leaderboard)
		protected.GET("/search", searchHandler.Search)

		protected.GET("/materials/:id", materialHandler.Detail)
		protected.GET("/materials/:id/download", materialHandler.Download)
	}

	adminGroup := api.Group("/admin")
	adminGroup.Use(authMiddleware.RequireAuth(), adminOnly)
	{
		adminGroup.GET("/dashboard", dashboardHandler.Admin)

		adminGroup.POST("/users", adminHandler.CreateUser)
		adminGroup.GET("/users", adminHandler.GetAllUsers)
		adminGroup.GET("/users/:id", adminHandler.GetUser)
		adminGroup.PUT("/users/:id", adminHandler.UpdateUser)
		adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)

		adminGroup.POST("/classes", classHandler.Create)
		adminGroup.GET("/classes", classHandler.List)
		adminGroup.PUT("/classes/:id", classHandler.Update)
		adminGroup.DELETE("/classes/:id", classHandler.Delete)
		adminGroup.GET("/teachers", classHandler.Teachers)

		adminGroup.POST("/products", productHandler.Create)
		adminGroup.GET("/products", productHandler.List)
		adminGroup.PUT("/products/:id", productHandler.Update)
		adminGroup.DELETE("/products/:id", productHandler.Delete)

		adminGroup.POST("/announcements", contentHandler.Add)
		adminGroup.GET("/announcements", contentHandler.List)
		adminGroup.PUT("/announcements/:id", contentHandler.Edit)
		adminGroup.DELETE("/announcements/:id", contentHandler.Delete)
	}

	staffGroup := api.Group("/staff")
	staffGroup.Use(authMiddleware.RequireAuth(), staff)
	{
		staffGroup.GET("/orders", orderHandler.List)
		staffGroup.POST("/orders/:id/approve", orderHandler.Approve)
		staffGroup.POST("/orders/:id/reject", orderHandler.Reject)

		staffGroup.POST("/points", pointHandler.Credit)
		staffGroup.GET("/students/:id/points", pointHandler.StudentHistory)
		staffGroup.GET("/students/:id/summary", classHandler.StudentSummary)

		staffGroup.GET("/materials", materialHandler.ManagerList)
		staffGroup.POST("/materials", materialHandler.Create)
		staffGroup.PUT("/materials/:id", materialHandler.Update)
		staffGroup.DELETE("/materials/:id", materialHandler.Delete)
	}

	guruGroup := api.Group("/guru")
	guruGroup.Use(authMiddleware.RequireAuth(), guruOnly)
	{
		guruGroup.GET("/dashboard", dashboardHandler.Guru)
		guruGroup.GET("/my-class", classHandler.MyClass)
	}

	siswaGroup := api.Group("/siswa")
	siswaGroup.Use(authMiddleware.RequireAuth(), siswaOnly)
	{
		siswaGroup.GET("/dashboard", dashboardHandler.Siswa)
		siswaGroup.GET("/products", productHandler.Catalog)
		siswaGroup.POST("/orders", orderHandler.Create)
		siswaGroup.GET("/orders", orderHandler.MyOrders)
		siswaGroup.GET("/points", pointHandler.MyHistory)
		siswaGroup.GET("/points/status", pointHandler.MyStatus)
		siswaGroup.GET("/materials", materialHandler.StudentList)
	}

	return &Server{
		engine:    router,
		scheduler: jobs,
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Scheduler() *scheduler.Scheduler {
	return s.scheduler
}

func parseOrigins(allowedOrigins string) []string {
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return origins
}

// originChecker admits websocket upgrades from the CORS origins and from clients that send none.
func originChecker(allowedOrigins string) func(r *http.Request) bool {
	origins := parseOrigins(allowedOrigins)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     parseOrigins(allowedOrigins),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
