// Package account registers, authenticates and maintains user accounts.
package account

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"landmarket/server/config"
	"landmarket/server/internal/apperr"
	"landmarket/server/internal/auth"
	"landmarket/server/internal/authz"
	"landmarket/server/internal/database"
	"landmarket/server/internal/models"
)

type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	FindUserByLogin(ctx context.Context, login string) (*models.User, error)
	UserExists(ctx context.Context, column, value, excludeID string) (bool, error)
	UpdateUserFields(ctx context.Context, u *models.User, columns []string) error
	ListUsers(ctx context.Context, filter database.UserFilter) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type Tokens interface {
	Issue(userID string) (string, time.Time, error)
	Verify(token string) (string, error)
}

type Options struct {
	// AutoVerify skips admin approval for self-registered accounts.
	AutoVerify  bool
	MaxPageSize int
}

type Service struct {
	store  Store
	guard  *authz.Guard
	tokens Tokens
	opts   Options
	logger *logrus.Logger
}

func NewService(store Store, guard *authz.Guard, tokens Tokens, opts Options, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 100
	}
	return &Service{store: store, guard: guard, tokens: tokens, opts: opts, logger: logger}
}

type RegisterInput struct {
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Password     string      `json:"password"`
	Role         models.Role `json:"role"`
	County       string      `json:"county"`
	Constituency string      `json:"constituency"`
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Register creates a buyer or seller account. Administrators are created
// with CreateUser by an existing administrator or from the command line.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Role == "" {
		in.Role = models.RoleBuyer
	}
	if in.Role == models.RoleAdmin {
		return nil, apperr.Forbidden("administrator accounts cannot be self-registered")
	}

	state := models.AccountUnverified
	if s.opts.AutoVerify {
		state = models.AccountVerified
	}
	return s.create(ctx, in, state)
}

// CreateUser lets an administrator open an account of any role, verified
// from the start.
func (s *Service) CreateUser(ctx context.Context, actor authz.Actor, in RegisterInput) (*models.User, error) {
	if err := s.guard.Authorize(actor, authz.ActionCreate, authz.Resource{Kind: authz.KindUser}); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.RoleBuyer
	}
	return s.create(ctx, in, models.AccountVerified)
}

func (s *Service) create(ctx context.Context, in RegisterInput, state models.AccountState) (*models.User, error) {
	u := &models.User{Role: in.Role, AccountState: state, Constituency: strings.TrimSpace(in.Constituency)}

	var err error
	if u.Name, err = validName(in.Name); err != nil {
		return nil, err
	}
	if u.Email, err = validEmail(in.Email); err != nil {
		return nil, err
	}
	if u.Phone, err = validPhone(in.Phone); err != nil {
		return nil, err
	}
	if u.County, err = optionalCounty(in.County); err != nil {
		return nil, err
	}
	if !u.Role.Valid() {
		return nil, apperr.Validation("role", "role must be buyer, seller or admin")
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, u.Email, u.Phone, ""); err != nil {
		return nil, err
	}

	if u.PasswordHash, err = auth.HashPassword(in.Password); err != nil {
		return nil, err
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": u.ID,
		"role":    u.Role,
		"state":   u.AccountState,
	}).Info("Account created")
	return u, nil
}

// checkUnique names the colliding field; the unique indexes still decide
// races between concurrent registrations.
func (s *Service) checkUnique(ctx context.Context, email, phone, excludeID string) error {
	if email != "" {
		taken, err := s.store.UserExists(ctx, "email", email, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return &apperr.Error{Kind: apperr.ErrConflict, Field: "email", Message: "email already registered"}
		}
	}
	if phone != "" {
		taken, err := s.store.UserExists(ctx, "phone", phone, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return &apperr.Error{Kind: apperr.ErrConflict, Field: "phone", Message: "phone already registered"}
		}
	}
	return nil
}

type LoginInput struct {
	// Login is an email address or a phone number.
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login checks credentials and issues a token. Only verified accounts may
// log in.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	u, err := s.store.FindUserByLogin(ctx, in.Login)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, err
	}

	ok, err := auth.CheckPassword(u.PasswordHash, in.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err := canAuthenticate(u); err != nil {
		return nil, err
	}

	token, expires, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, User: u}, nil
}

// Authenticate resolves a bearer token to the current account, reloading it
// so role changes and suspensions apply to tokens already issued.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	u, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthorized("account no longer exists")
	}
	if err != nil {
		return nil, err
	}
	if err := canAuthenticate(u); err != nil {
		return nil, err
	}
	return u, nil
}

func canAuthenticate(u *models.User) error {
	if u.CanAuthenticate() {
		return nil
	}
	return apperr.Unauthorized("account is " + string(u.AccountState))
}

func (s *Service) Get(ctx context.Context, actor authz.Actor, id string) (*models.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(actor, authz.ActionRead, authz.UserResource(u)); err != nil {
		return nil, err
	}
	return u, nil
}

// List is the administrator's account directory.
func (s *Service) List(ctx context.Context, actor authz.Actor, filter database.UserFilter) ([]models.User, error) {
	if err := s.guard.Authorize(actor, authz.ActionRead, authz.Resource{Kind: authz.KindUser}); err != nil {
		return nil, err
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, apperr.Validation("role", "unknown role %q", filter.Role)
	}
	if filter.AccountState != "" && !filter.AccountState.Valid() {
		return nil, apperr.Validation("accountState", "unknown account state %q", filter.AccountState)
	}
	if filter.Limit <= 0 || filter.Limit > s.opts.MaxPageSize {
		filter.Limit = s.opts.MaxPageSize
	}
	return s.store.ListUsers(ctx, filter)
}

func (s *Service) Update(ctx context.Context, actor authz.Actor, id string, patch Patch) (*models.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(actor, authz.ActionUpdate, authz.UserResource(u)); err != nil {
		return nil, err
	}
	if _, ok := patch["role"]; ok {
		if err := s.guard.Authorize(actor, authz.ActionAssignRole, authz.UserResource(u)); err != nil {
			return nil, err
		}
	}

	columns, err := patch.apply(u)
	if err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, changed(columns, "email", u.Email), changed(columns, "phone", u.Phone), u.ID); err != nil {
		return nil, err
	}
	if len(columns) > 0 {
		if err := s.store.UpdateUserFields(ctx, u, columns); err != nil {
			return nil, err
		}
	}
	return s.store.GetUser(ctx, id)
}

// Delete removes an account with its listings and inquiries.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id string) error {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guard.Authorize(actor, authz.ActionDelete, authz.UserResource(u)); err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  id,
		"actor_id": actor.ID,
	}).Info("Account deleted")
	return nil
}

func changed(columns []string, column, value string) string {
	for _, c := range columns {
		if c == column {
			return value
		}
	}
	return ""
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("name", "name is required")
	}
	return name, nil
}

func validEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Validation("email", "email is not a valid address")
	}
	return email, nil
}

// validPhone strips spaces and dashes; at least nine digits must remain.
func validPhone(phone string) (string, error) {
	phone = strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < 9 || strings.Trim(digits, "0123456789") != "" {
		return "", apperr.Validation("phone", "phone must be a number with at least 9 digits")
	}
	return phone, nil
}

func optionalCounty(county string) (string, error) {
	if strings.TrimSpace(county) == "" {
		return "", nil
	}
	canonical, ok := config.CanonicalCounty(county)
	if !ok {
		return "", apperr.Validation("county", "unknown county %q", county)
	}
	return canonical, nil
}
