package auth

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/hadir-app/hadir-backend-go/internal/domain/auth"
	"github.com/hadir-app/hadir-backend-go/internal/domain/employee"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/jwt"
)

// Service authenticates dashboard logins. Chat-side identity never goes
// through here; the webhook trusts the chat platform's sender ID.
type Service struct {
	employeeRepo employee.Repository
	jwtService   jwt.Service
}

func NewService(employeeRepo employee.Repository, jwtService jwt.Service) *Service {
	return &Service{
		employeeRepo: employeeRepo,
		jwtService:   jwtService,
	}
}

// Login verifies phone and password and issues an access/refresh token
// pair. Lookup failures and bad passwords collapse into the same error
// so login attempts cannot probe which phones are enrolled.
func (s *Service) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, string, int64, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, "", 0, err
	}

	emp, err := s.employeeRepo.GetByPhone(ctx, req.Phone)
	if err != nil {
		if err == employee.ErrEmployeeNotFound {
			return auth.TokenResponse{}, "", 0, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, "", 0, err
	}
	if !emp.Active {
		return auth.TokenResponse{}, "", 0, employee.ErrEmployeeDeactivated
	}
	if emp.PasswordHash == nil {
		return auth.TokenResponse{}, "", 0, auth.ErrPasswordNotSet
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*emp.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, "", 0, auth.ErrInvalidCredentials
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(emp.ID, emp.FullName, emp.IsAdmin)
	if err != nil {
		return auth.TokenResponse{}, "", 0, err
	}
	refreshToken, refreshExpiresAt, err := s.jwtService.GenerateRefreshToken(emp.ID)
	if err != nil {
		return auth.TokenResponse{}, "", 0, err
	}

	slog.Info("dashboard login", "employee_id", emp.ID)

	return auth.TokenResponse{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		EmployeeID:  emp.ID,
		FullName:    emp.FullName,
		IsAdmin:     emp.IsAdmin,
	}, refreshToken, refreshExpiresAt, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (auth.TokenResponse, error) {
	if s.jwtService.IsTokenRevoked(refreshToken) {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}

	token, err := s.jwtService.JWTAuth().Decode(refreshToken)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}

	claims, err := token.AsMap(ctx)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != "refresh" {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}
	employeeID, _ := claims["employee_id"].(string)
	if employeeID == "" {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}
	if !emp.Active {
		return auth.TokenResponse{}, employee.ErrEmployeeDeactivated
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(emp.ID, emp.FullName, emp.IsAdmin)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	return auth.TokenResponse{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		EmployeeID:  emp.ID,
		FullName:    emp.FullName,
		IsAdmin:     emp.IsAdmin,
	}, nil
}

// Logout revokes the presented refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	if refreshToken != "" {
		s.jwtService.RevokeToken(refreshToken)
	}
}
