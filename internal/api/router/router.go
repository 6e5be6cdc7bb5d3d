package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fleetdesk/backend/config"
	"fleetdesk/backend/internal/api/handler"
	"fleetdesk/backend/internal/api/middleware"
	"fleetdesk/backend/internal/model"
	"fleetdesk/backend/pkg/jwt"
	"fleetdesk/backend/pkg/redis"
)

// Setup builds the gin engine. rdb may be nil: token revocation and login
// rate limiting are then off.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	admin := middleware.RoleAuth(model.RoleAdmin)
	reviewer := middleware.RoleAuth(model.RoleAdmin, model.RoleManager)
	driver := middleware.RoleAuth(model.RoleDriver)

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			users := authorized.Group("/users")
			{
				users.GET("", reviewer, h.User.ListUsers)
				users.POST("", admin, h.User.CreateUser)
				users.PUT("/:id", admin, h.User.UpdateUser)
			}

			stations := authorized.Group("/stations")
			{
				stations.GET("", h.Station.ListStations)
				stations.GET("/:id", h.Station.GetStation)
				stations.POST("", admin, h.Station.CreateStation)
				stations.PUT("/:id", admin, h.Station.UpdateStation)
				stations.DELETE("/:id", admin, h.Station.DeleteStation)
			}

			drivers := authorized.Group("/drivers", reviewer)
			{
				drivers.GET("", h.Driver.ListDrivers)
				drivers.GET("/:id", h.Driver.GetDriver)
				drivers.POST("", h.Driver.CreateDriver)
				drivers.PUT("/:id", h.Driver.UpdateDriver)
				drivers.DELETE("/:id", h.Driver.DeleteDriver)
			}

			vans := authorized.Group("/vans")
			{
				vans.GET("", h.Van.ListVans)
				vans.GET("/:id", h.Van.GetVan)
				vans.POST("", reviewer, h.Van.CreateVan)
				vans.PUT("/:id", reviewer, h.Van.UpdateVan)
				vans.DELETE("/:id", reviewer, h.Van.DeleteVan)
				vans.GET("/:id/maintenance", reviewer, h.Maintenance.ListLogs)
				vans.POST("/:id/maintenance", reviewer, h.Maintenance.CreateLog)
			}

			maintenance := authorized.Group("/maintenance", reviewer)
			{
				maintenance.DELETE("/:id", h.Maintenance.DeleteLog)
				maintenance.GET("/:id/attachment", h.Maintenance.GetAttachment)
			}

			leaves := authorized.Group("/leaves", reviewer)
			{
				leaves.GET("", h.Leave.ListLeaves)
				leaves.POST("", h.Leave.CreateLeave)
				leaves.DELETE("/:id", h.Leave.DeleteLeave)
				leaves.GET("/feed.ics", h.Leave.Feed)
			}

			wh := authorized.Group("/working-hours")
			{
				wh.POST("", driver, h.WorkingHours.Submit)
				wh.GET("/mine", driver, h.WorkingHours.ListMine)
				wh.GET("", reviewer, h.WorkingHours.ListByDate)
				wh.GET("/missing", reviewer, h.WorkingHours.Missing)
				wh.GET("/summary", reviewer, h.WorkingHours.Summary)
				wh.GET("/calendar", reviewer, h.WorkingHours.Calendar)
				wh.GET("/export", reviewer, h.Export.ExportMonth)
				// drivers may read their own records; the service checks ownership
				wh.GET("/:id", h.WorkingHours.Get)
				wh.GET("/:id/edits", h.WorkingHours.ListEdits)
				wh.POST("/:id/approve", reviewer, h.WorkingHours.Approve)
				wh.POST("/:id/reject", reviewer, h.WorkingHours.Reject)
			}
		}
	}

	return r
}
