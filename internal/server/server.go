package server

import (
	"context"
	"net/http"
	"time"

	"github.com/astauriabidco-maker/fle-expert/internal/audit"
	auditdomain "github.com/astauriabidco-maker/fle-expert/internal/audit/domain"
	"github.com/astauriabidco-maker/fle-expert/internal/auth"
	"github.com/astauriabidco-maker/fle-expert/internal/certificate"
	certdomain "github.com/astauriabidco-maker/fle-expert/internal/certificate/domain"
	"github.com/astauriabidco-maker/fle-expert/internal/config"
	"github.com/astauriabidco-maker/fle-expert/internal/exam"
	examdomain "github.com/astauriabidco-maker/fle-expert/internal/exam/domain"
	"github.com/astauriabidco-maker/fle-expert/internal/integrity"
	"github.com/astauriabidco-maker/fle-expert/internal/ledger"
	ledgerdomain "github.com/astauriabidco-maker/fle-expert/internal/ledger/domain"
	obsmetrics "github.com/astauriabidco-maker/fle-expert/internal/observability/metrics"
	"github.com/astauriabidco-maker/fle-expert/internal/organization"
	orgdomain "github.com/astauriabidco-maker/fle-expert/internal/organization/domain"
	"github.com/astauriabidco-maker/fle-expert/internal/providers/pdf"
	"github.com/astauriabidco-maker/fle-expert/internal/verification"
	verificationdomain "github.com/astauriabidco-maker/fle-expert/internal/verification/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	obsmetrics.Module,
	fx.Provide(registerGin),
	audit.Module,
	auth.Module,
	organization.Module,
	ledger.Module,
	integrity.Module,
	exam.Module,
	pdf.Module,
	certificate.Module,
	verification.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, m *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log.Named("http")))
	r.Use(obsmetrics.GinMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, m *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(log, m)
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
	db              *gorm.DB
	genID           *snowflake.Node
	tokens          *auth.TokenService
	auditSvc        auditdomain.Service
	organizationSvc orgdomain.Service
	ledgerSvc       ledgerdomain.Service
	examSvc         examdomain.Service
	certificateSvc  certdomain.Service
	verificationSvc verificationdomain.Service
	verifyLimiter   *rateLimiter
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	Tokens          *auth.TokenService
	AuditSvc        auditdomain.Service
	OrganizationSvc orgdomain.Service
	LedgerSvc       ledgerdomain.Service
	ExamSvc         examdomain.Service
	CertificateSvc  certdomain.Service
	VerificationSvc verificationdomain.Service
	ObsMetrics      *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		tokens:          p.Tokens,
		auditSvc:        p.AuditSvc,
		organizationSvc: p.OrganizationSvc,
		ledgerSvc:       p.LedgerSvc,
		examSvc:         p.ExamSvc,
		certificateSvc:  p.CertificateSvc,
		verificationSvc: p.VerificationSvc,
		verifyLimiter:   newRateLimiter(30, time.Minute),
		obsMetrics:      p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerPublicRoutes()
	svc.registerDevRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Exam sessions --------
	// "start" and "session" are distinct static segments because gin's
	// router rejects a static path next to a :param at the same level.
	api.POST("/exam/start", s.AuthRequired(), s.StartExam)
	api.POST("/exam/session/:sessionId/begin", s.AuthRequired(), s.BeginExam)
	api.POST("/exam/session/:sessionId/complete", s.AuthRequired(), s.CompleteExam)
	api.GET("/exam/session/:sessionId", s.AuthRequired(), s.GetExamSession)

	// -------- Certificates --------
	api.GET("/certificate/diagnostic/:sessionId", s.AuthRequired(), s.GetDiagnosticCertificate)

	// -------- Organizations / credits --------
	api.POST("/organizations", s.CreateOrganization)
	api.POST("/organizations/:id/users", s.CreateOrganizationUser)
	api.POST("/organizations/:id/credits", s.PurchaseCredits)
	api.GET("/organizations/:id/credits/balance", s.AuthRequired(), s.GetCreditsBalance)
	api.GET("/organizations/:id/credits/transactions", s.AuthRequired(), s.ListCreditTransactions)
}

func (s *Server) registerPublicRoutes() {
	// Anonymous by design: anyone holding a certificate link can check it.
	s.engine.GET("/verify/:hash", s.PublicRateLimit(s.verifyLimiter), s.VerifyCertificate)
}

func (s *Server) registerDevRoutes() {
	if s.cfg.IsProduction() {
		return
	}
	s.engine.POST("/auth/dev/token", s.MintDevToken)
}
