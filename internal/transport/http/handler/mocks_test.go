package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/entrepreneur-award/award-api/internal/application/auth"
	"github.com/entrepreneur-award/award-api/internal/domain"
	jwtinfra "github.com/entrepreneur-award/award-api/internal/infrastructure/jwt"
	"github.com/entrepreneur-award/award-api/internal/transport/http/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
)

// --- auth ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthSvc) VerifyOTP(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

func (m *mockAuthSvc) ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockAuthSvc) RefreshToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

// --- user ---

type mockUserSvc struct{ mock.Mock }

func (m *mockUserSvc) user(args mock.Arguments) (*domain.User, error) {
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) Signup(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	return m.user(m.Called(ctx, req))
}

func (m *mockUserSvc) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	return m.user(m.Called(ctx, email, password))
}

func (m *mockUserSvc) UpdatePassword(ctx context.Context, email, pw string) error {
	return m.Called(ctx, email, pw).Error(0)
}

func (m *mockUserSvc) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *mockUserSvc) Get(ctx context.Context, userID string) (*domain.User, error) {
	return m.user(m.Called(ctx, userID))
}

func (m *mockUserSvc) Me(ctx context.Context, userID string) (*domain.User, error) {
	return m.user(m.Called(ctx, userID))
}

func (m *mockUserSvc) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

func (m *mockUserSvc) AssignRole(ctx context.Context, userID, role string) (*domain.User, error) {
	return m.user(m.Called(ctx, userID, role))
}

func (m *mockUserSvc) MarkSubmitted(ctx context.Context, userID string) (*domain.User, error) {
	return m.user(m.Called(ctx, userID))
}

// --- nomination ---

type mockNominationSvc struct{ mock.Mock }

func (m *mockNominationSvc) Create(ctx context.Context, nominatorID string, req domain.CreateNominationRequest) (*domain.Nomination, error) {
	args := m.Called(ctx, nominatorID, req)
	if n, _ := args.Get(0).(*domain.Nomination); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNominationSvc) ListByNominator(ctx context.Context, nominatorID string) ([]domain.Nomination, error) {
	args := m.Called(ctx, nominatorID)
	list, _ := args.Get(0).([]domain.Nomination)
	return list, args.Error(1)
}

func (m *mockNominationSvc) OnUserCompletedProfile(ctx context.Context, email, userID string) error {
	return m.Called(ctx, email, userID).Error(0)
}

// --- helpers ---

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request, userID string, role domain.Role) *http.Request {
	claims := &jwtinfra.Claims{Role: role, Type: jwtinfra.TokenTypeAccess, RegisteredClaims: jwt.RegisteredClaims{Subject: userID}}
	return req.WithContext(middleware.WithClaims(req.Context(), claims))
}
