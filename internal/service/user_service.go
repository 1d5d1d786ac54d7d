package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"

	"cafe-order-service/internal/entity"
)

type UserStore interface {
	GetUserByEmailAndPassword(ctx context.Context, email, password string) (*entity.User, error)
	GetUserByID(ctx context.Context, id int) (*entity.User, error)
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
}

type JwtCustomClaims struct {
	UserID int              `json:"user_id"`
	Name   string           `json:"name"`
	Email  string           `json:"email"`
	Role   entity.ActorRole `json:"role"`
	jwt.RegisteredClaims
}

type UserService struct {
	repo   UserStore
	rdb    *redis.Client
	secret []byte
}

func NewUserService(repo UserStore, rdb *redis.Client, secret []byte) *UserService {
	return &UserService{repo: repo, rdb: rdb, secret: secret}
}

// Register creates a customer account. The role is forced here; staff and
// admin accounts are provisioned out of band.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", entity.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email %q", entity.ErrValidation, email)
	}

	user := &entity.User{
		Username: username,
		Email:    email,
		Password: password,
		Role:     entity.RoleCustomer,
	}
	return s.repo.CreateUser(ctx, user)
}

// Profile returns the account behind an authenticated session.
func (s *UserService) Profile(ctx context.Context, userID int) (*entity.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// Login validates credentials, mints a signed token and mirrors it into
// Redis with the same lifetime, so a session can be revoked server-side
// before the token itself expires.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetUserByEmailAndPassword(ctx, email, password)
	if err != nil {
		return "", err
	}

	claims := &JwtCustomClaims{
		UserID: user.ID,
		Name:   user.Username,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24)),
		},
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := tkn.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	err = s.rdb.Set(ctx, sessionKey(user.Email), t, time.Hour*24).Err()
	if err != nil {
		return "", err
	}

	return t, nil
}

// ValidateSession checks the Redis mirror for the session behind token.
// A missing or mismatched mirror means the session expired or was revoked;
// callers treat that as a forced re-login, not a retryable failure.
func (s *UserService) ValidateSession(ctx context.Context, token string) error {
	claims := &JwtCustomClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return entity.ErrSessionExpired
	}

	stored, err := s.rdb.Get(ctx, sessionKey(claims.Email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entity.ErrSessionExpired
		}
		return err
	}
	if stored != token {
		return entity.ErrSessionExpired
	}

	return nil
}

func sessionKey(email string) string {
	return "session:" + email
}
