package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	autherrors "hr-backoffice/internal/auth/errors"
	"hr-backoffice/internal/domain"
	"hr-backoffice/internal/shared/apperror"
	"hr-backoffice/internal/shared/connection"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// PolicyLoader warms the casbin policy of a company; rbac.Service satisfies it.
type PolicyLoader interface {
	LoadCompanyPolicy(companyID string) error
}

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (TokenResponse, error)
	GetMe(ctx context.Context, userID string) (AuthResponse, error)
	Register(ctx context.Context, actor domain.Actor, req RegisterRequest) (AuthResponse, error)
}

type service struct {
	repo     Repository
	policies PolicyLoader
	secret   []byte
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(repo Repository, policies PolicyLoader, secret string, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{
		repo:     repo,
		policies: policies,
		secret:   []byte(secret),
		now:      time.Now,
		logger:   l,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("login user lookup failed", zap.Error(err))
			return TokenResponse{}, err
		}
		s.logger.Warn("login unknown email")
		return TokenResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Warn("login wrong password", zap.String("user_id", user.ID.String()))
		return TokenResponse{}, autherrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return TokenResponse{}, autherrors.ErrUserInactive
	}

	if err := s.policies.LoadCompanyPolicy(user.CompanyID.String()); err != nil {
		s.logger.Error("login load company policy failed", zap.String("company_id", user.CompanyID.String()), zap.Error(err))
		return TokenResponse{}, err
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		return TokenResponse{}, err
	}

	s.logger.Info("login success", zap.String("user_id", user.ID.String()), zap.String("company_id", user.CompanyID.String()))
	return resp, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return TokenResponse{}, autherrors.ErrInvalidRefreshToken
	}

	claims, err := s.parse(refreshToken)
	if err != nil {
		return TokenResponse{}, autherrors.ErrInvalidRefreshToken
	}
	if typ, _ := claims["typ"].(string); typ != tokenTypeRefresh {
		return TokenResponse{}, autherrors.ErrInvalidRefreshToken
	}

	userIDStr, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return TokenResponse{}, autherrors.ErrInvalidToken
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenResponse{}, autherrors.ErrUserNotFound
		}
		return TokenResponse{}, err
	}
	if !user.IsActive {
		return TokenResponse{}, autherrors.ErrUserInactive
	}

	return s.issueTokens(user)
}

func (s *service) GetMe(ctx context.Context, userID string) (AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return AuthResponse{}, autherrors.ErrInvalidUserID
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResponse{}, autherrors.ErrUserNotFound
		}
		return AuthResponse{}, err
	}

	return mapToResponse(*u), nil
}

// Register creates a login for an employee of the actor's company.
func (s *service) Register(ctx context.Context, actor domain.Actor, req RegisterRequest) (AuthResponse, error) {
	if !actor.IsAdmin() {
		return AuthResponse{}, apperror.ErrForbidden
	}

	companyID, err := uuid.Parse(actor.CompanyID)
	if err != nil {
		return AuthResponse{}, apperror.ErrUnauthorized
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return AuthResponse{}, autherrors.ErrInvalidEmployeeID
	}

	belongs, err := s.repo.EmployeeBelongsToCompany(ctx, actor.CompanyID, req.EmployeeID)
	if err != nil {
		s.logger.Error("register employee check failed", zap.Error(err))
		return AuthResponse{}, err
	}
	if !belongs {
		return AuthResponse{}, autherrors.ErrEmployeeNotFound
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	user := &User{
		ID:         uuid.New(),
		CompanyID:  companyID,
		EmployeeID: employeeID,
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Name:       strings.TrimSpace(req.Name),
		Password:   string(hashed),
		Role:       normalizeRole(req.Role),
		IsActive:   true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if constraint, ok := connection.UniqueViolation(err); ok {
			if constraint == "uq_user_employee" {
				return AuthResponse{}, autherrors.ErrEmployeeAlreadyRegistered
			}
			return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
		}
		s.logger.Error("register persist failed", zap.Error(err))
		return AuthResponse{}, err
	}

	if err := s.policies.LoadCompanyPolicy(actor.CompanyID); err != nil {
		s.logger.Warn("register reload company policy failed", zap.Error(err))
	}

	s.logger.Info("register success",
		zap.String("user_id", user.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("role", user.Role),
	)
	return mapToResponse(*user), nil
}

func (s *service) issueTokens(user *User) (TokenResponse, error) {
	access, err := s.generateToken(user, tokenTypeAccess, AccessTokenTTL)
	if err != nil {
		s.logger.Error("generate access token failed", zap.Error(err))
		return TokenResponse{}, autherrors.ErrTokenGenerationFailed
	}
	refresh, err := s.generateToken(user, tokenTypeRefresh, RefreshTokenTTL)
	if err != nil {
		s.logger.Error("generate refresh token failed", zap.Error(err))
		return TokenResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return TokenResponse{
		User:         mapToResponse(*user),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *service) generateToken(user *User, typ string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id":     user.ID.String(),
		"employee_id": user.EmployeeID.String(),
		"company_id":  user.CompanyID.String(),
		"role":        user.Role,
		"typ":         typ,
		"iat":         now.Unix(),
		"exp":         now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *service) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, autherrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, autherrors.ErrInvalidToken
	}
	return claims, nil
}
