package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fairwork/labor-trust/labor-trust-backend/pkg/apperr"
)

const tokenTTL = 24 * time.Hour

// Claims is the JWT payload issued at login.
type Claims struct {
	AccountID     string `json:"account_id"`
	ParticipantID string `json:"participant_id,omitempty"`
	Role          string `json:"role"`
	jwt.RegisteredClaims
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Account, error)
	Login(ctx context.Context, email, password string) (string, *Account, error)
	ParseToken(token string) (*Claims, error)
}

type RegisterRequest struct {
	Email         string     `json:"email" binding:"required,email"`
	Password      string     `json:"password" binding:"required,min=8"`
	Role          string     `json:"role"`
	ParticipantID *uuid.UUID `json:"participant_id"`
}

type service struct {
	repo   Repository
	secret []byte
}

func NewService(repo Repository, jwtSecret string) Service {
	return &service{repo: repo, secret: []byte(jwtSecret)}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, apperr.New(apperr.KindValidation, "email is required")
	}
	if len(req.Password) < 8 {
		return nil, apperr.New(apperr.KindValidation, "password must be at least 8 characters")
	}

	role := req.Role
	if role == "" {
		role = RoleParticipant
	}
	if role != RoleParticipant && role != RoleAdmin {
		return nil, apperr.Newf(apperr.KindValidation, "unknown role %q", role)
	}

	existing, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to look up account", err)
	}
	if existing != nil {
		return nil, apperr.New(apperr.KindConflict, "an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to hash password", err)
	}

	account := &Account{
		ID:            uuid.New(),
		Email:         email,
		PasswordHash:  string(hash),
		Role:          role,
		ParticipantID: req.ParticipantID,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to create account", err)
	}
	return account, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *Account, error) {
	account, err := s.repo.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, apperr.Wrap(apperr.KindStorage, "failed to look up account", err)
	}
	if account == nil {
		return "", nil, apperr.New(apperr.KindAuthorization, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.New(apperr.KindAuthorization, "invalid credentials")
	}

	claims := Claims{
		AccountID: account.ID.String(),
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	}
	if account.ParticipantID != nil {
		claims.ParticipantID = account.ParticipantID.String()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.KindStorage, "failed to sign token", err)
	}
	return token, account, nil
}

func (s *service) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Newf(apperr.KindAuthorization, "unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAuthorization, "invalid token", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperr.New(apperr.KindAuthorization, "invalid token")
	}
	return claims, nil
}
