package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/recipehub/backend/internal/db"
	"github.com/recipehub/backend/internal/model"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadCredentials = errors.New("bad credentials")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrMisconfigured  = errors.New("auth config invalid")
)

// UserRepository is the account storage used by AuthService.
type UserRepository interface {
	FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
}

type AuthOptions struct {
	// GenericLoginErrors reports unknown usernames as ErrBadCredentials
	// instead of ErrNotFound.
	GenericLoginErrors bool
}

type AuthService struct {
	repo   UserRepository
	hasher *PasswordHasher
	tokens *TokenManager
	opts   AuthOptions
	now    func() time.Time
}

func NewAuthService(repo UserRepository, hasher *PasswordHasher, tokens *TokenManager, opts AuthOptions) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		opts:   opts,
		now:    time.Now,
	}
}

// Register creates an account. The username/email lookup only avoids hashing
// for obvious duplicates; the store's unique indexes decide concurrent races.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.Account, error) {
	req = req.Normalize()
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.repo.FindUserByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil && !db.IsNoRows(err) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, ErrConflict
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if db.IsDuplicate(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user.Account(), nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*model.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if db.IsNoRows(err) {
			s.hasher.Burn(password)
			if s.opts.GenericLoginErrors {
				return nil, ErrBadCredentials
			}
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrBadCredentials
	}

	identity := model.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Email:    user.Email,
	}
	token, expiresAt, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, err
	}

	return &model.LoginResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Identity:    identity,
	}, nil
}

func (s *AuthService) ParseAccessToken(tokenStr string) (*model.Identity, error) {
	return s.tokens.Verify(tokenStr)
}

type identityKey struct{}

// WithIdentity attaches the caller's identity to ctx.
func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity attached by WithIdentity, if any.
func IdentityFromContext(ctx context.Context) (*model.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*model.Identity)
	return identity, ok && identity != nil
}
