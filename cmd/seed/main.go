package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go-elms/internal/config"
	"go-elms/internal/database"
	"go-elms/internal/features/audit"
	"go-elms/internal/features/letter"
	"go-elms/internal/features/permission"
	"go-elms/internal/features/template"
	"go-elms/internal/features/user"
	"go-elms/internal/features/workflow"
	"go-elms/internal/logger"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const lettersPath = "cmd/seed/data/letters.json"

type demoLetter struct {
	Stage   string                     `json:"stage"` // draft, submitted, approved, signed or rejected
	Comment string                     `json:"comment"`
	Letter  workflow.CreateLetterInput `json:"letter"`
}

// Seed installs templates, demo users and a handful of demo letters that are
// walked through the real workflow so their history is consistent.
func Seed(
	lc fx.Lifecycle,
	cfg *config.Config,
	templates template.TemplateService,
	users user.UserService,
	userRepo user.UserRepository,
	store letter.Store,
	workflows workflow.WorkflowService,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				if !cfg.UseMongo() {
					logger.Warn("STORAGE is memory, seeded data will not outlive this process")
				}

				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()

				if err := templates.SeedDefaults(ctx); err != nil {
					logger.Error("Failed to seed templates", zap.Error(err))
					return
				}
				if err := users.SeedDemoUsers(ctx); err != nil {
					logger.Error("Failed to seed users", zap.Error(err))
					return
				}

				existing, err := store.List(ctx, letter.Filter{Limit: 1})
				if err != nil {
					logger.Error("Failed to list letters", zap.Error(err))
					return
				}
				if len(existing) > 0 {
					logger.Info("Letters exist, skipping demo letters")
					return
				}

				var demos []demoLetter
				b, err := os.ReadFile(lettersPath)
				if err != nil {
					logger.Warn("Failed to read letters.json, skipping demo letters", zap.Error(err))
					return
				}
				if err := json.Unmarshal(b, &demos); err != nil {
					logger.Error("Failed to parse letters.json", zap.Error(err))
					return
				}

				writer, err := actorFor(ctx, userRepo, "dilshod.k@example.uz")
				if err != nil {
					logger.Error("Demo writer missing", zap.Error(err))
					return
				}
				signee, err := actorFor(ctx, userRepo, "nodira.r@example.uz")
				if err != nil {
					logger.Error("Demo signee missing", zap.Error(err))
					return
				}

				for _, demo := range demos {
					l, err := runDemo(ctx, workflows, writer, signee, demo)
					if err != nil {
						logger.Error("Failed to seed letter",
							zap.String("subject", demo.Letter.Subject),
							zap.String("stage", demo.Stage),
							zap.Error(err),
						)
						continue
					}
					logger.Info("Letter seeded",
						zap.String("reference", l.Reference),
						zap.String("status", string(l.Status)),
					)
				}
			}()
			return nil
		},
	})
}

func actorFor(ctx context.Context, repo user.UserRepository, email string) (permission.Actor, error) {
	u, err := repo.FindByEmail(ctx, email)
	if err != nil {
		return permission.Actor{}, err
	}
	return permission.Actor{ID: u.ID, Name: u.Name, Email: u.Email, Role: permission.Role(u.Role), Title: u.Title}, nil
}

func runDemo(ctx context.Context, svc workflow.WorkflowService, writer, signee permission.Actor, demo demoLetter) (*letter.Letter, error) {
	l, err := svc.CreateLetter(ctx, writer, demo.Letter)
	if err != nil {
		return nil, err
	}
	if demo.Stage == "draft" {
		return l, nil
	}

	if l, err = svc.SubmitLetter(ctx, writer, l.ID, l.Version); err != nil {
		return nil, err
	}

	switch demo.Stage {
	case "submitted":
		return l, nil
	case "rejected":
		return svc.ActOnCurrentStep(ctx, signee, l.ID, workflow.OutcomeRejected, demo.Comment, l.Version)
	case "approved", "signed":
		for l.Status == letter.StatusPendingApproval {
			if l, err = svc.ActOnCurrentStep(ctx, signee, l.ID, workflow.OutcomeApproved, demo.Comment, l.Version); err != nil {
				return nil, err
			}
		}
		if demo.Stage == "approved" {
			return l, nil
		}
		return svc.SignLetter(ctx, signee, l.ID, workflow.SignRequest{ExpectedVersion: l.Version})
	default:
		return nil, fmt.Errorf("unknown stage %q", demo.Stage)
	}
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,

			permission.NewDefaultResolver,
			letter.NewStore,
			letter.NewReferenceGenerator,
			audit.NewAuditRepository,
			user.NewUserRepository,
			template.NewTemplateRepository,

			audit.NewAuditService,
			user.NewUserService,
			template.NewTemplateService,
			workflow.LoadChainRegistry,
			workflow.NewWorkflowService,

			func(r user.UserRepository) audit.UserFinder { return r },
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
