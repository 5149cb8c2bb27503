package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/orangery/ams/shared/config"
	"github.com/orangery/ams/shared/domain"
	internal_errors "github.com/orangery/ams/shared/errors"
	"github.com/orangery/ams/shared/logger"
)

type SeedStorage interface {
	UsernameExists(ctx context.Context, username domain.Username) (bool, error)
	SaveIdentity(ctx context.Context, data domain.IdentityCreationData) (domain.UserId, error)
	DeleteIdentity(ctx context.Context, id domain.UserId) error
}

// Seeder provisions the demo admin at startup and takes it away again at shutdown.
// Only an admin this process created is ever removed.
type Seeder struct {
	storage  SeedStorage
	hasher   PasswordHasher
	cfg      config.SeedAdmin
	password string

	mu      sync.Mutex
	created domain.UserId
}

func NewSeeder(storage SeedStorage, hasher PasswordHasher, cfg config.SeedAdmin, password string) *Seeder {
	return &Seeder{storage: storage, hasher: hasher, cfg: cfg, password: password}
}

func (s *Seeder) Seed(ctx context.Context) error {
	if !s.cfg.Enabled {
		return nil
	}
	log := logger.Component("seed")

	exists, err := s.storage.UsernameExists(ctx, s.cfg.Username)
	if err != nil {
		return fmt.Errorf("seed admin lookup: %w", err)
	}
	if exists {
		log.Info("seed admin already present", "username", s.cfg.Username)
		return nil
	}

	var dob time.Time
	if s.cfg.Dob != "" {
		if dob, err = time.Parse(time.DateOnly, s.cfg.Dob); err != nil {
			return fmt.Errorf("seed admin dob: %w", err)
		}
	}
	passHash, err := s.hasher.Hash(s.password)
	if err != nil {
		return fmt.Errorf("seed admin password: %w", err)
	}
	id, err := s.storage.SaveIdentity(ctx, domain.IdentityCreationData{
		FirstName:   s.cfg.FirstName,
		LastName:    s.cfg.LastName,
		PhoneNumber: s.cfg.PhoneNumber,
		Username:    s.cfg.Username,
		PassHash:    passHash,
		Dob:         dob,
		Role:        domain.RoleAdmin,
		Status:      domain.StatusActive,
	})
	if err != nil {
		return fmt.Errorf("seed admin save: %w", err)
	}

	s.mu.Lock()
	s.created = id
	s.mu.Unlock()
	log.Info("seed admin created", "username", s.cfg.Username, "user_id", id)
	return nil
}

func (s *Seeder) Unseed(ctx context.Context) error {
	s.mu.Lock()
	id := s.created
	s.created = 0
	s.mu.Unlock()

	if !s.cfg.RemoveOnShutdown || id == 0 {
		return nil
	}
	if err := s.storage.DeleteIdentity(ctx, id); err != nil && !internal_errors.IsNotFound(err) {
		return fmt.Errorf("seed admin removal: %w", err)
	}
	logger.Component("seed").Info("seed admin removed", "user_id", id)
	return nil
}
