package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/classtime/classtime-api/internal/middleware"
	"github.com/classtime/classtime-api/internal/service"
	"github.com/classtime/classtime-api/pkg/config"
	"github.com/classtime/classtime-api/pkg/logger"
	corsmiddleware "github.com/classtime/classtime-api/pkg/middleware/cors"
	reqidmiddleware "github.com/classtime/classtime-api/pkg/middleware/requestid"
)

// RouterDeps bundles everything route registration needs.
type RouterDeps struct {
	Config      *config.Config
	Logger      *zap.Logger
	AuthService *service.AuthService
	Metrics     *service.MetricsService
	Auth        *AuthHandler
	Users       *UserHandler
	Classrooms  *ClassroomHandler
	Memberships *MembershipHandler
	Posts       *PostHandler
}

// NewRouter builds the gin engine with every route registered explicitly,
// one route per operation.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.Config.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", deps.Auth.Register)
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/refresh", deps.Auth.Refresh)
	}

	// Public reads: token optional, membership flag computed when present.
	public := api.Group("")
	public.Use(middleware.OptionalJWT(deps.AuthService))
	{
		public.GET("/classrooms/:id", deps.Classrooms.Profile)
		public.GET("/posts/:id", deps.Posts.Get)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(deps.AuthService))
	{
		protected.GET("/users/:id", deps.Users.Profile)
		protected.PUT("/users/me", deps.Users.EditProfile)
		protected.GET("/users/:id/classrooms", deps.Users.Classrooms)
		protected.GET("/users/:id/invitations", deps.Users.Invitations)

		protected.POST("/classrooms", deps.Classrooms.Create)
		protected.GET("/classrooms/:id/members", deps.Classrooms.Members)
		protected.GET("/classrooms/:id/posts", deps.Posts.ListByClassroom)
		if deps.Config.Exports.Enabled {
			protected.GET("/classrooms/:id/roster", deps.Classrooms.ExportRoster)
		}

		protected.POST("/invitations", deps.Memberships.Invite)
		protected.POST("/invitations/respond", deps.Memberships.Respond)
		protected.POST("/join-requests", deps.Memberships.SendJoinRequest)
		protected.POST("/join-requests/resolve", deps.Memberships.ResolveJoinRequest)

		protected.POST("/posts", deps.Posts.Create)
		protected.DELETE("/posts/:id", deps.Posts.Remove)
	}

	return r
}
