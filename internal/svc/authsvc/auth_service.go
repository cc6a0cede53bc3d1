package authsvc

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/fishpizzaria/internal/domain"
	"github.com/mkrupp/fishpizzaria/internal/infra/logging"
	http_ "github.com/mkrupp/fishpizzaria/internal/infra/transport/http"
	"github.com/mkrupp/fishpizzaria/internal/repo/user"
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// SigningKeyFile is the path to the RSA private key file
	SigningKeyFile string `env:"SIGNING_KEY_FILE" default:"var/storage/apisvc.key"`

	// TokenDuration is the validity duration of session tokens in seconds
	TokenDuration int64 `env:"TOKEN_DURATION" default:"2592000"` // 30d, matches the web cookie

	// LoginRate is the number of login attempts per second allowed per client IP
	LoginRate float64 `env:"LOGIN_RATE" default:"1"`

	// LoginBurst is the login attempt burst allowed per client IP
	LoginBurst int `env:"LOGIN_BURST" default:"5"`

	// Issuer is written to the iss claim of issued tokens
	Issuer string `env:"ISSUER" default:"fishpizzaria-api"`
}

// AuthService provides account registration, login, and token validation.
type AuthService struct {
	Config     AuthConfig
	UserRepo   user.Repository
	Log        logging.Logger
	SigningKey *rsa.PrivateKey
	Now        func() time.Time
}

var _ http_.Authorizer = (*AuthService)(nil)

// NewAuthService creates a new AuthService with the given user repository factory and configuration.
// Returns an error if the signing key cannot be loaded or the user repository cannot be created.
func NewAuthService(repoFactory user.RepositoryFactory, cfg AuthConfig) (*AuthService, error) {
	log := logging.GetLogger("svc.authsvc.auth_service")

	signingKey, err := GetPrivateKey(cfg.SigningKeyFile)
	if err != nil {
		return nil, fmt.Errorf("get private key: %w", err)
	}

	userRepo, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	return &AuthService{
		Config:     cfg,
		UserRepo:   userRepo,
		Log:        log,
		SigningKey: signingKey,
		Now:        time.Now,
	}, nil
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}

	return s.Now()
}

// RegisterUser creates a new account. The password is hashed with bcrypt before storage.
// Returns domain.ErrUserAlreadyExists if the email is already taken.
func (s *AuthService) RegisterUser(ctx context.Context, reg domain.Registration) (_ domain.User, err error) {
	log := s.Log.With(logging.Group("user", "email", reg.Email))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.User{}, fmt.Errorf("new user id: %w", err)
	}

	account := domain.Account{
		ID:           id.String(),
		Name:         strings.TrimSpace(reg.Name),
		Email:        strings.TrimSpace(reg.Email),
		PasswordHash: passwordHash,
		CreatedAt:    s.now().Unix(),
	}

	if err := s.UserRepo.CreateUser(ctx, account); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	return account.User(), nil
}

// Login authenticates an account and issues a signed session token.
// Returns domain.ErrInvalidCredentials if the email is unknown or the password does not match.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (_ domain.LoginResponse, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	account, err := s.UserRepo.GetUserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.LoginResponse{}, errors.Join(domain.ErrInvalidCredentials, err)
		}

		return domain.LoginResponse{}, fmt.Errorf("get user: %w", err)
	}

	log = log.With(logging.Group("user", "id", account.ID))

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(creds.Password)); err != nil {
		return domain.LoginResponse{}, errors.Join(domain.ErrInvalidCredentials, err)
	}

	now := s.now()
	expiry := now.Add(time.Duration(s.Config.TokenDuration) * time.Second)

	tokenID, err := uuid.NewV7()
	if err != nil {
		return domain.LoginResponse{}, fmt.Errorf("new token id: %w", err)
	}

	claims := domain.TokenClaims{
		Email: account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID.String(),
			Issuer:    s.Config.Issuer,
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	log = log.With(logging.Group("token",
		"jti", claims.ID,
		"exp", expiry.UTC().Format(time.RFC3339),
		"iat", now.UTC().Format(time.RFC3339),
	))

	token, err := IssueToken(claims, s.SigningKey)
	if err != nil {
		return domain.LoginResponse{}, fmt.Errorf("issue token: %w", err)
	}

	return domain.LoginResponse{
		ID:    account.ID,
		Name:  account.Name,
		Token: token,
	}, nil
}

// ValidateToken verifies a session token's signature and expiration.
// Returns the decoded claims if valid, or an error if validation fails.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (_ domain.TokenClaims, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "validate token failed", "error", err)
		} else {
			log.DebugContext(ctx, "token validated")
		}
	}()

	claims, err := ValidateToken(ctx, tokenString, &s.SigningKey.PublicKey, s.now)
	if err != nil {
		return domain.TokenClaims{}, fmt.Errorf("validate token: %w", err)
	}

	log = log.With(logging.Group("token",
		"sub", claims.Subject,
		"jti", claims.ID,
	))

	return claims, nil
}

// Authorize implements http.Authorizer.
// An invalid token is reported as not ok rather than as an error.
func (s *AuthService) Authorize(ctx context.Context, token string) (string, bool, error) {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAuthToken) {
			return "", false, nil
		}

		return "", false, err
	}

	return claims.Subject, true, nil
}

// Profile returns the public record of the account with the given ID.
func (s *AuthService) Profile(ctx context.Context, userID string) (domain.User, error) {
	account, err := s.UserRepo.GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}

	return account.User(), nil
}

// Close releases resources held by the service, such as database connections.
// Returns an error if cleanup fails.
func (s *AuthService) Close() error {
	if err := s.UserRepo.Close(); err != nil {
		return fmt.Errorf("close user repo: %w", err)
	}

	return nil
}
