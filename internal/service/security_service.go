package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/account-security/internal/config"
	"github.com/spec-kit/account-security/internal/domain/security"
	"github.com/spec-kit/account-security/internal/repository"
	"github.com/spec-kit/account-security/internal/uow"
)

// SecurityService handles code generation, redemption and invalidation.
type SecurityService struct {
	manager       *security.Manager
	users         repository.UserRepository
	challenges    repository.SecurityRepository
	defaultLength int
	defaultLevel  string
}

// SecurityDependencies encapsulates repo requirements for the security service.
type SecurityDependencies struct {
	Manager       *security.Manager
	UserRepo      repository.UserRepository
	ChallengeRepo repository.SecurityRepository
}

// NewSecurityService builds the service.
func NewSecurityService(cfg config.SecurityConfig, deps SecurityDependencies) *SecurityService {
	return &SecurityService{
		manager:       deps.Manager,
		users:         deps.UserRepo,
		challenges:    deps.ChallengeRepo,
		defaultLength: cfg.DefaultCodeLength,
		defaultLevel:  cfg.DefaultLevel,
	}
}

// Register binds the service's handlers.
func (s *SecurityService) Register(commands *CommandBus, queries *QueryBus) {
	Handle(commands, s.GenerateCodes)
	Handle(commands, s.RedeemCode)
	Handle(commands, s.InvalidateCodes)
	Answer(queries, s.FindChallenges)
}

// GenerateCodes issues a challenge. A zero Length or empty Level falls back to
// the configured defaults.
func (s *SecurityService) GenerateCodes(ctx context.Context, w *uow.Work, cmd GenerateCodes) error {
	length := cmd.Length
	if length == 0 {
		length = s.defaultLength
	}
	codeLength, err := security.ParseCodeLength(length)
	if err != nil {
		return err
	}
	rawLevel := cmd.Level
	if rawLevel == "" {
		rawLevel = s.defaultLevel
	}
	level, err := security.ParseLevel(rawLevel)
	if err != nil {
		return err
	}
	purpose, err := security.ParsePurpose(cmd.Purpose)
	if err != nil {
		return err
	}

	if err := s.users.Lock(ctx, w, cmd.UserID); err != nil {
		return err
	}
	challenge, err := s.manager.Generate(ctx, security.GenerateRequest{
		UserID:  cmd.UserID,
		Purpose: purpose,
		Length:  codeLength,
		Level:   level,
	}, repository.ChallengeCounter(s.challenges, w))
	if err != nil {
		return err
	}
	return s.challenges.Store(ctx, w, challenge)
}

func (s *SecurityService) RedeemCode(ctx context.Context, w *uow.Work, cmd RedeemCode) error {
	purpose, err := security.ParsePurpose(cmd.Purpose)
	if err != nil {
		return err
	}
	return s.redeem(ctx, w, cmd.UserID, cmd.Code, purpose)
}

func (s *SecurityService) redeem(ctx context.Context, w *uow.Work, userID uuid.UUID, raw string, purpose security.Purpose) error {
	code, err := security.ParseCode(raw)
	if err != nil {
		return err
	}
	if err := s.users.Lock(ctx, w, userID); err != nil {
		return err
	}
	sc, err := s.challenges.FindCodeByValue(ctx, w, userID, code, purpose)
	if err != nil {
		return err
	}
	if err := s.manager.Redeem(sc, purpose); err != nil {
		return err
	}
	return s.challenges.StoreCode(ctx, w, sc)
}

func (s *SecurityService) InvalidateCodes(ctx context.Context, w *uow.Work, cmd InvalidateCodes) error {
	purpose, err := security.ParsePurpose(cmd.Purpose)
	if err != nil {
		return err
	}
	if err := s.users.Lock(ctx, w, cmd.UserID); err != nil {
		return err
	}
	challenge, err := s.challenges.FindNonInvalidated(ctx, w, cmd.UserID, purpose)
	if err != nil {
		return err
	}
	if err := s.manager.InvalidateAll(challenge); err != nil {
		return err
	}
	return s.challenges.Store(ctx, w, challenge)
}

func (s *SecurityService) FindChallenges(ctx context.Context, w *uow.Work, q FindChallenges) ([]ChallengeView, error) {
	if _, err := s.users.Get(ctx, w, q.UserID); err != nil {
		return nil, err
	}
	challenges, err := s.challenges.ListByUser(ctx, w, q.UserID)
	if err != nil {
		return nil, err
	}
	views := make([]ChallengeView, 0, len(challenges))
	for _, c := range challenges {
		views = append(views, newChallengeView(c))
	}
	return views, nil
}
