package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/orangery/ams/backend/internal/auth"
	"github.com/orangery/ams/backend/internal/handler"
	"github.com/orangery/ams/backend/internal/middleware"
	"github.com/orangery/ams/backend/internal/notify"
	"github.com/orangery/ams/backend/internal/service"
	"github.com/orangery/ams/backend/internal/service/utils"
	"github.com/orangery/ams/backend/internal/storage/pg"
	"github.com/orangery/ams/shared/config"
	"github.com/orangery/ams/shared/jwt"
	"github.com/orangery/ams/shared/middleware/ratelimiter"
)

const (
	// lets a client retry a mistyped password a few times before the per-second rate applies
	loginBurst  = 5
	signUpBurst = 3
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Storage        *pg.Storage
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
	Seeder         *service.Seeder
	LoginLimiter   *ratelimiter.Limiter
	SignUpLimiter  *ratelimiter.Limiter
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(ctx, cfg.Private.Pg)
	if err != nil {
		return nil, err
	}

	tokens, err := jwt.New(cfg.JwtConfig())
	if err != nil {
		storage.Cleanup()
		return nil, fmt.Errorf("token service: %w", err)
	}
	renderer, err := utils.NewRenderer(cfg.Public.Templates)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	hasher := auth.NewHasher(cfg.Public.BcryptCost)
	authenticator := auth.NewAuthenticator(storage, hasher)
	sessions := auth.NewSessionResolver(tokens, storage)
	pictures := utils.NewPictureNormalizer(cfg.Public.ProfilePicMaxSize, cfg.Public.ProfilePicMaxMB)

	authService := service.NewAuth(storage, hasher, authenticator, sessions, tokens, pictures)
	member := service.NewMember(storage)
	dates := service.NewEventDate(storage)
	message := service.NewMessage(storage, renderer, notify.New(cfg), time.Now)

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Handler:        handler.New(authService, member, dates, message, storage, cfg),
		AuthMiddleware: middleware.NewAuth(sessions),
		Seeder:         service.NewSeeder(storage, hasher, cfg.Public.SeedAdmin, cfg.Private.SeedAdmin.Password),
		LoginLimiter:   ratelimiter.New(cfg.Public.LoginRateLimit, loginBurst, time.Hour),
		SignUpLimiter:  ratelimiter.New(cfg.Public.SignUpRateLimit, signUpBurst, time.Hour),
	}, nil
}
