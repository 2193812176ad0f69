package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/procurehq/procure/internal/auth"
	authdomain "github.com/procurehq/procure/internal/auth/domain"
	"github.com/procurehq/procure/internal/bid"
	biddomain "github.com/procurehq/procure/internal/bid/domain"
	"github.com/procurehq/procure/internal/config"
	"github.com/procurehq/procure/internal/invitation"
	invitationdomain "github.com/procurehq/procure/internal/invitation/domain"
	"github.com/procurehq/procure/internal/observability"
	obsmiddleware "github.com/procurehq/procure/internal/observability/logger"
	obsmetrics "github.com/procurehq/procure/internal/observability/metrics"
	obstracing "github.com/procurehq/procure/internal/observability/tracing"
	"github.com/procurehq/procure/internal/organization"
	organizationdomain "github.com/procurehq/procure/internal/organization/domain"
	"github.com/procurehq/procure/internal/providers/email"
	"github.com/procurehq/procure/internal/ratelimit"
	"github.com/procurehq/procure/internal/rbac"
	"github.com/procurehq/procure/internal/user"
	userdomain "github.com/procurehq/procure/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	email.Module,
	rbac.Module,
	auth.Module,
	organization.Module,
	invitation.Module,
	user.Module,
	bid.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(log, obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	genID           *snowflake.Node
	authSvc         authdomain.Service
	organizationSvc organizationdomain.Service
	invitationSvc   invitationdomain.Service
	userSvc         userdomain.Service
	bidSvc          biddomain.Service
	inviteLimiter   *ratelimit.InviteLimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	GenID           *snowflake.Node
	AuthSvc         authdomain.Service
	OrganizationSvc organizationdomain.Service
	InvitationSvc   invitationdomain.Service
	UserSvc         userdomain.Service
	BidSvc          biddomain.Service
	InviteLimiter   *ratelimit.InviteLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		genID:           p.GenID,
		authSvc:         p.AuthSvc,
		organizationSvc: p.OrganizationSvc,
		invitationSvc:   p.InvitationSvc,
		userSvc:         p.UserSvc,
		bidSvc:          p.BidSvc,
		inviteLimiter:   p.InviteLimiter,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/v1/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.POST("/verify-email", s.VerifyEmail)
	auth.POST("/password-reset/request", s.RequestPasswordReset)
	auth.POST("/password-reset/confirm", s.ResetPassword)
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	// accepting an invitation is the one unauthenticated onboarding entry
	v1.POST("/invitations/accept", s.AcceptInvitation)

	orgs := v1.Group("/organizations", s.AuthRequired())
	{
		orgs.GET("", s.ListOrganizations)
		orgs.POST("/invite", s.InviteRateLimit(), s.InviteOrganization)
		orgs.PATCH("/:id", s.UpdateOrganization)
	}

	users := v1.Group("/users", s.AuthRequired())
	{
		users.GET("", s.ListUsers)
		users.GET("/search", s.SearchUsers)
		users.GET("/bulk-template", s.GenerateBulkUserTemplate)
		users.GET("/eligible-bid-managers", s.GetEligibleBidManagers)
		users.POST("/invite", s.InviteRateLimit(), s.InviteUser)
		users.POST("/bulk-upload", s.BulkUploadUsers)
	}

	v1.GET("/bids", s.AuthRequired(), s.ListBids)
}
