package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/spec-kit/account-security/internal/config"
	"github.com/spec-kit/account-security/internal/domain/security"
	"github.com/spec-kit/account-security/internal/domain/user"
	"github.com/spec-kit/account-security/internal/repository"
	"github.com/spec-kit/account-security/internal/uow"
)

// UserService coordinates the account lifecycle.
type UserService struct {
	manager    *user.Manager
	status     *user.StatusManager
	users      repository.UserRepository
	codes      *SecurityService
	bcryptCost int
}

// UserDependencies encapsulates requirements for the user service.
type UserDependencies struct {
	Manager       *user.Manager
	StatusManager *user.StatusManager
	UserRepo      repository.UserRepository
	Security      *SecurityService
}

// NewUserService builds the service.
func NewUserService(cfg config.AuthConfig, deps UserDependencies) *UserService {
	return &UserService{
		manager:    deps.Manager,
		status:     deps.StatusManager,
		users:      deps.UserRepo,
		codes:      deps.Security,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register binds the service's handlers.
func (s *UserService) Register(commands *CommandBus, queries *QueryBus) {
	Handle(commands, s.SignUp)
	Handle(commands, s.SignIn)
	Handle(commands, s.Logout)
	Handle(commands, s.ChangeEmail)
	Handle(commands, s.ChangePassword)
	Handle(commands, s.ChangeStatus)
	Handle(commands, s.ResetPassword)
	Answer(queries, s.FindUser)
	Answer(queries, s.FindUserIDByEmail)
}

func (s *UserService) SignUp(ctx context.Context, w *uow.Work, cmd SignUp) error {
	username, err := user.ParseUsername(cmd.Username)
	if err != nil {
		return err
	}
	email, err := user.ParseEmail(cmd.Email)
	if err != nil {
		return err
	}
	password, err := user.HashPassword(cmd.Password, s.bcryptCost)
	if err != nil {
		return err
	}
	id := cmd.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	u, err := s.manager.SignUp(ctx, id, username, user.Credentials{Email: email, Password: password},
		repository.EmailChecker(s.users, w))
	if err != nil {
		return err
	}
	return s.users.Store(ctx, w, u)
}

// SignIn reports an unknown email and a wrong password identically.
func (s *UserService) SignIn(ctx context.Context, w *uow.Work, cmd SignIn) error {
	email, err := user.ParseEmail(cmd.Email)
	if err != nil {
		return err
	}
	u, err := s.userByEmail(ctx, w, email)
	if err != nil {
		return err
	}
	if err := s.manager.SignIn(u, cmd.Password); err != nil {
		return err
	}
	return s.users.Store(ctx, w, u)
}

func (s *UserService) Logout(ctx context.Context, w *uow.Work, cmd Logout) error {
	u, err := s.users.Get(ctx, w, cmd.UserID)
	if err != nil {
		return err
	}
	s.manager.Logout(u)
	return s.users.Store(ctx, w, u)
}

func (s *UserService) ChangeEmail(ctx context.Context, w *uow.Work, cmd ChangeEmail) error {
	email, err := user.ParseEmail(cmd.Email)
	if err != nil {
		return err
	}
	u, err := s.users.Get(ctx, w, cmd.UserID)
	if err != nil {
		return err
	}
	if err := s.manager.ChangeEmail(ctx, u, email, repository.EmailChecker(s.users, w)); err != nil {
		return err
	}
	return s.users.Store(ctx, w, u)
}

func (s *UserService) ChangePassword(ctx context.Context, w *uow.Work, cmd ChangePassword) error {
	password, err := user.HashPassword(cmd.Password, s.bcryptCost)
	if err != nil {
		return err
	}
	u, err := s.users.Get(ctx, w, cmd.UserID)
	if err != nil {
		return err
	}
	s.manager.ChangePassword(u, password)
	return s.users.Store(ctx, w, u)
}

func (s *UserService) ChangeStatus(ctx context.Context, w *uow.Work, cmd ChangeStatus) error {
	op, err := user.ParseOperation(cmd.Operation)
	if err != nil {
		return err
	}
	u, err := s.users.Get(ctx, w, cmd.UserID)
	if err != nil {
		return err
	}
	if err := s.status.ChangeStatus(u, op); err != nil {
		return err
	}
	return s.users.Store(ctx, w, u)
}

// ResetPassword fails without touching the password when the code cannot be redeemed.
func (s *UserService) ResetPassword(ctx context.Context, w *uow.Work, cmd ResetPassword) error {
	password, err := user.HashPassword(cmd.Password, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.codes.redeem(ctx, w, cmd.UserID, cmd.Code, security.PurposePasswordReset); err != nil {
		return err
	}
	u, err := s.users.Get(ctx, w, cmd.UserID)
	if err != nil {
		return err
	}
	s.manager.ChangePassword(u, password)
	return s.users.Store(ctx, w, u)
}

func (s *UserService) FindUser(ctx context.Context, w *uow.Work, q FindUser) (UserView, error) {
	u, err := s.users.Get(ctx, w, q.UserID)
	if err != nil {
		return UserView{}, err
	}
	return newUserView(u), nil
}

func (s *UserService) FindUserIDByEmail(ctx context.Context, w *uow.Work, q FindUserIDByEmail) (uuid.UUID, error) {
	email, err := user.ParseEmail(q.Email)
	if err != nil {
		return uuid.Nil, user.ErrInvalidCredentials
	}
	u, err := s.userByEmail(ctx, w, email)
	if err != nil {
		return uuid.Nil, err
	}
	return u.ID(), nil
}

func (s *UserService) userByEmail(ctx context.Context, w *uow.Work, email user.Email) (*user.User, error) {
	id, err := s.users.FindIDByEmail(ctx, w, email)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, user.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, w, id)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, user.ErrInvalidCredentials
	}
	return u, err
}
