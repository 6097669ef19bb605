package main

import (
	"context"
	"fmt"
	"time"

	common_api "go-elms/internal/common/api"
	"go-elms/internal/config"
	"go-elms/internal/database"
	"go-elms/internal/features/audit"
	"go-elms/internal/features/auth"
	"go-elms/internal/features/delivery"
	"go-elms/internal/features/letter"
	"go-elms/internal/features/notification"
	"go-elms/internal/features/permission"
	"go-elms/internal/features/render"
	"go-elms/internal/features/report"
	"go-elms/internal/features/system"
	"go-elms/internal/features/template"
	"go-elms/internal/features/user"
	"go-elms/internal/features/verify"
	"go-elms/internal/features/workflow"
	"go-elms/internal/logger"
	"go-elms/internal/middleware"
	"go-elms/pkg/utils"

	_ "go-elms/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(log),
	})

	app.Use(middleware.CORSMiddleware(cfg))

	return app
}

// AsRoute tags the constructor so Fx adds it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every member of the "routes" group.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, log *zap.Logger) {
	log.Info("Registering routes", zap.Int("count", len(routes)))
	for _, route := range routes {
		log.Debug("Setting up route", zap.String("type", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer starts Fiber in a goroutine and shuts it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, log *zap.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				log.Info("HTTP server listening", zap.String("addr", port), zap.String("storage", cfg.Storage))
				if err := app.Listen(port); err != nil {
					log.Error("Server failed", zap.Error(err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

// ConfigureAuth hands the signing secret to the token helpers.
func ConfigureAuth(cfg *config.Config, log *zap.Logger) {
	utils.SetSecret(cfg.JWTSecret)
	if cfg.SkipAuth {
		log.Warn("SKIP_AUTH is enabled, every request runs as the development admin")
	}
}

// SeedDefaults installs the built-in templates and demo users into empty stores.
func SeedDefaults(lc fx.Lifecycle, templates template.TemplateService, users user.UserService, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := templates.SeedDefaults(ctx); err != nil {
				log.Error("Failed to seed templates", zap.Error(err))
			}
			if err := users.SeedDemoUsers(ctx); err != nil {
				log.Error("Failed to seed users", zap.Error(err))
			}
			return nil
		},
	})
}

// @title           go-elms API
// @version         1.0
// @description     Electronic letter management: drafting, approval chains, signing and public verification.

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,
			NewFiberServer,

			permission.NewDefaultResolver,
			func(r *permission.Resolver) middleware.PermissionChecker { return r },

			// Repositories
			letter.NewStore,
			letter.NewReferenceGenerator,
			audit.NewAuditRepository,
			user.NewUserRepository,
			template.NewTemplateRepository,
			notification.NewNotificationRepository,
			delivery.NewEmailRepository,

			// Services
			audit.NewAuditService,
			user.NewUserService,
			auth.NewAuthService,
			template.NewTemplateService,
			workflow.LoadChainRegistry,
			workflow.NewWorkflowService,
			verify.NewVerifyService,
			render.NewManager,
			report.NewReportService,
			notification.NewNotificationService,
			notification.NewHub,
			delivery.NewSMTPMailer,
			delivery.NewDeliveryService,

			// Interface adapters
			func(r user.UserRepository) audit.UserFinder { return r },
			func(r user.UserRepository) notification.UserDirectory { return r },
			func(s workflow.WorkflowService) render.LetterSource { return s },
			func(s workflow.WorkflowService) report.LetterLister { return s },
			func(m *render.Manager) delivery.DocumentRenderer { return m },

			// Controllers
			auth.NewAuthController,
			user.NewUserController,
			audit.NewAuditController,
			permission.NewPermissionController,
			template.NewTemplateController,
			workflow.NewWorkflowController,
			verify.NewVerifyController,
			render.NewRenderController,
			report.NewReportController,
			notification.NewNotificationController,
			delivery.NewDeliveryController,
			system.NewHealthController,
			system.NewDebugController,

			// API routes
			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(permission.NewPermissionApi),
			AsRoute(template.NewTemplateApi),
			AsRoute(workflow.NewWorkflowApi),
			AsRoute(verify.NewVerifyApi),
			AsRoute(render.NewRenderApi),
			AsRoute(report.NewReportApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(delivery.NewDeliveryApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewDebugApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			ConfigureAuth,
			RegisterAllRoutesWithAnnotation,
			SeedDefaults,
			notification.RegisterLetterListeners,
			delivery.RegisterScheduler,
			StartServer,
		),
	)

	app.Run()
}
