// Package auth implements email/password accounts on the document store and
// keeps the signed-in session as a signed token on disk.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/devcompass/devcompass/internal/store"
)

const (
	accountsCollection = "accounts"
	usersCollection    = "users"
)

var (
	ErrEmptyField         = errors.New("all fields are required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password is too short")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Config configures accounts and session tokens.
type Config struct {
	// Secret signs session tokens. When empty a random secret is generated
	// and kept in the data directory.
	Secret string `yaml:"secret"`

	// TokenTTL is how long a sign-in lasts. Default: 30 days.
	TokenTTL time.Duration `yaml:"token_ttl"`

	// MinPasswordLen is the shortest accepted password. Default: 6.
	MinPasswordLen int `yaml:"min_password_len"`

	// BcryptCost is the password hashing cost. Default: bcrypt.DefaultCost.
	BcryptCost int `yaml:"bcrypt_cost"`
}

// DefaultConfig returns the default account settings.
func DefaultConfig() Config {
	return Config{
		TokenTTL:       30 * 24 * time.Hour,
		MinPasswordLen: 6,
		BcryptCost:     bcrypt.DefaultCost,
	}
}

// Identity is a signed-in user.
type Identity struct {
	UID        string
	Name       string
	Email      string
	PictureURL string
}

type account struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

type profile struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture"`
}

// Service manages accounts and the local session token.
type Service struct {
	docs        store.DocumentRepo
	cfg         Config
	secret      []byte
	sessionFile string
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates an auth service. sessionFile is where the token of the
// signed-in user is persisted between runs.
func NewService(docs store.DocumentRepo, cfg Config, sessionFile string, logger *zap.Logger) (*Service, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	def := DefaultConfig()
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = def.TokenTTL
	}
	if cfg.MinPasswordLen <= 0 {
		cfg.MinPasswordLen = def.MinPasswordLen
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = def.BcryptCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		docs:        docs,
		cfg:         cfg,
		secret:      []byte(cfg.Secret),
		sessionFile: sessionFile,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// SignUp creates an account and its user profile, then signs in.
func (s *Service) SignUp(ctx context.Context, name, email, password string) (*Identity, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, ErrEmptyField
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < s.cfg.MinPasswordLen {
		return nil, fmt.Errorf("%w: at least %d characters", ErrWeakPassword, s.cfg.MinPasswordLen)
	}

	existing, err := s.docs.Get(ctx, accountsCollection, email)
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acct := account{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.docs.Set(ctx, accountsCollection, email, acct); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	err = s.docs.Merge(ctx, usersCollection, acct.UID, map[string]any{
		"name":           name,
		"email":          email,
		"profilePicture": "",
		"createdAt":      acct.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("create user profile: %w", err)
	}

	id := &Identity{UID: acct.UID, Name: name, Email: email}
	if err := s.persist(id); err != nil {
		return nil, err
	}
	s.logger.Info("account created", zap.String("uid", id.UID))
	return id, nil
}

// SignIn verifies credentials and stores a new session token.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrEmptyField
	}

	doc, err := s.docs.Get(ctx, accountsCollection, email)
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}
	if doc == nil {
		return nil, ErrInvalidCredentials
	}
	var acct account
	if err := doc.Decode(&acct); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	id := &Identity{UID: acct.UID, Email: acct.Email}
	if p, err := s.docs.Get(ctx, usersCollection, acct.UID); err != nil {
		s.logger.Warn("load profile", zap.String("uid", acct.UID), zap.Error(err))
	} else if p != nil {
		var pr profile
		if err := p.Decode(&pr); err == nil {
			id.Name, id.PictureURL = pr.Name, pr.ProfilePicture
		}
	}

	if err := s.persist(id); err != nil {
		return nil, err
	}
	return id, nil
}

// SignOut removes the stored session. Signing out twice is not an error.
func (s *Service) SignOut() error {
	if err := os.Remove(s.sessionFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Current returns the signed-in identity, or nil when nobody is signed in.
// An expired or tampered token is discarded.
func (s *Service) Current() (*Identity, error) {
	raw, err := os.ReadFile(s.sessionFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	id, err := s.parseToken(strings.TrimSpace(string(raw)))
	if err != nil {
		s.logger.Info("discarding stored session", zap.Error(err))
		return nil, s.SignOut()
	}
	return id, nil
}

func (s *Service) persist(id *Identity) error {
	token, err := s.issueToken(id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.sessionFile), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.sessionFile, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *Service) issueToken(id *Identity) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     id.UID,
		"email":   id.Email,
		"name":    id.Name,
		"picture": id.PictureURL,
		"iat":     now.Unix(),
		"exp":     now.Add(s.cfg.TokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (s *Service) parseToken(raw string) (*Identity, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	token, err := parser.Parse(raw, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	uid, _ := claims["sub"].(string)
	if uid == "" {
		return nil, errors.New("token has no subject")
	}
	id := &Identity{UID: uid}
	id.Email, _ = claims["email"].(string)
	id.Name, _ = claims["name"].(string)
	id.PictureURL, _ = claims["picture"].(string)
	return id, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LoadOrCreateSecret returns the hex secret stored at path, generating and
// saving a new one if the file does not exist.
func LoadOrCreateSecret(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			return s, nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("read secret: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	secret := hex.EncodeToString(buf)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("create secret dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(secret), 0o600); err != nil {
		return "", fmt.Errorf("write secret: %w", err)
	}
	return secret, nil
}
