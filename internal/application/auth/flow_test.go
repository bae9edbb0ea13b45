package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/entrepreneur-award/award-api/internal/application/auth"
	"github.com/entrepreneur-award/award-api/internal/application/notification"
	"github.com/entrepreneur-award/award-api/internal/application/otp"
	"github.com/entrepreneur-award/award-api/internal/application/user"
	"github.com/entrepreneur-award/award-api/internal/domain"
	jwtinfra "github.com/entrepreneur-award/award-api/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memUsers and memOTPs are in-memory stores with the same contracts as the
// dynamo and postgres repositories.
type memUsers struct {
	mu   sync.Mutex
	byID map[string]domain.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]domain.User{}} }

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return domain.ErrConflict
		}
	}
	m.byID[u.UserID] = *u
	return nil
}

func (m *memUsers) Get(_ context.Context, userID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUsers) List(context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) update(userID string, fn func(*domain.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	fn(&u)
	m.byID[userID] = u
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, userID, hash string) error {
	return m.update(userID, func(u *domain.User) { u.PasswordHash = hash })
}

func (m *memUsers) UpdateRole(_ context.Context, userID string, role domain.Role) error {
	return m.update(userID, func(u *domain.User) { u.Role = role })
}

func (m *memUsers) MarkSubmitted(_ context.Context, userID string) (bool, error) {
	var changed bool
	err := m.update(userID, func(u *domain.User) {
		changed = !u.IsSubmitted
		u.IsSubmitted = true
	})
	return changed, err
}

type memOTPs struct {
	mu     sync.Mutex
	byUser map[string]domain.OTP
}

func newMemOTPs() *memOTPs { return &memOTPs{byUser: map[string]domain.OTP{}} }

func (m *memOTPs) Replace(_ context.Context, o *domain.OTP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUser[o.UserID] = *o
	return nil
}

func (m *memOTPs) GetByUser(_ context.Context, userID string) (*domain.OTP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byUser[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (m *memOTPs) DeleteByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byUser, userID)
	return nil
}

func (m *memOTPs) DeleteIssued(_ context.Context, userID, otpID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.byUser[userID]; ok && o.OTPID == otpID {
		delete(m.byUser, userID)
	}
	return nil
}

func (m *memOTPs) RecordFailure(_ context.Context, userID, otpID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byUser[userID]
	if !ok || o.OTPID != otpID {
		return 0, nil
	}
	o.Attempts++
	m.byUser[userID] = o
	return o.Attempts, nil
}

type outbox struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (o *outbox) Send(_ context.Context, msg notification.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) last() notification.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sent[len(o.sent)-1]
}

type world struct {
	auth  auth.Service
	users user.Service
	otps  *memOTPs
	mail  *outbox
	clock *time.Time
}

func newWorld(t *testing.T) *world {
	t.Helper()
	now := time.Now()
	w := &world{otps: newMemOTPs(), mail: &outbox{}, clock: &now}

	otpSvc := otp.NewService(otp.ServiceDeps{
		Store:    w.otps,
		Notifier: w.mail,
		Config:   otp.Config{TTL: 10 * time.Minute},
		Now:      func() time.Time { return *w.clock },
		NewCode:  func() (string, error) { return "123456", nil },
		Dispatch: func(fn func()) { fn() },
	})
	w.users = user.NewService(user.ServiceDeps{
		UserRepo:   newMemUsers(),
		OTP:        otpSvc,
		BcryptCost: user.MinBcryptCost,
	})
	tokens, err := jwtinfra.NewProvider(jwtinfra.Options{AccessSecret: "s3cret"})
	require.NoError(t, err)

	w.auth = auth.NewService(auth.ServiceDeps{Users: w.users, OTP: otpSvc, Tokens: tokens})
	return w
}

func TestFlow_ForgotVerifyResetLogin(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	_, err := w.users.Signup(ctx, domain.CreateUserRequest{
		Name: "Asha", Email: "Asha@Example.com", Mobile: "9876543210", Password: "oldpass",
	})
	require.NoError(t, err)

	_, err = w.auth.Login(ctx, auth.LoginRequest{Email: "asha@example.com", Password: "oldpass"})
	require.NoError(t, err)

	require.NoError(t, w.auth.ForgotPassword(ctx, "asha@example.com"))
	assert.Equal(t, "123456", w.mail.last().Data["OTP"])

	require.NoError(t, w.auth.VerifyOTP(ctx, "asha@example.com", "123456"))

	err = w.auth.ResetPassword(ctx, auth.ResetPasswordRequest{
		Email: "asha@example.com", OTP: "123456", Password: "newpass", ReEnterPassword: "newpass",
	})
	require.NoError(t, err)

	res, err := w.auth.Login(ctx, auth.LoginRequest{Email: "ASHA@example.com", Password: "newpass"})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", res.User.Email)
	assert.NotEmpty(t, res.Tokens.AccessToken)

	_, err = w.auth.Login(ctx, auth.LoginRequest{Email: "asha@example.com", Password: "oldpass"})
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))

	// The code is single-use.
	err = w.auth.VerifyOTP(ctx, "asha@example.com", "123456")
	assert.True(t, errors.Is(err, domain.ErrInvalidOTP))
}

func TestFlow_NewCodeReplacesOld(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	u, err := w.users.Signup(ctx, domain.CreateUserRequest{Name: "B", Email: "b@x.com", Mobile: "1", Password: "pw1234"})
	require.NoError(t, err)
	first, err := w.otps.GetByUser(ctx, u.UserID)
	require.NoError(t, err)

	require.NoError(t, w.auth.ForgotPassword(ctx, "b@x.com"))
	second, err := w.otps.GetByUser(ctx, u.UserID)
	require.NoError(t, err)

	assert.NotEqual(t, first.OTPID, second.OTPID)
	assert.Len(t, w.otps.byUser, 1)
}

func TestFlow_ExpiredCodeIsRemoved(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	u, err := w.users.Signup(ctx, domain.CreateUserRequest{Name: "C", Email: "c@x.com", Mobile: "1", Password: "pw1234"})
	require.NoError(t, err)

	*w.clock = w.clock.Add(11 * time.Minute)
	err = w.auth.VerifyOTP(ctx, "c@x.com", "123456")
	assert.True(t, errors.Is(err, domain.ErrOTPExpired))

	_, err = w.otps.GetByUser(ctx, u.UserID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestFlow_RefreshIssuesWorkingAccessToken(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	_, err := w.users.Signup(ctx, domain.CreateUserRequest{Name: "D", Email: "d@x.com", Mobile: "1", Password: "pw1234"})
	require.NoError(t, err)
	res, err := w.auth.Login(ctx, auth.LoginRequest{Email: "d@x.com", Password: "pw1234"})
	require.NoError(t, err)

	access, err := w.auth.RefreshToken(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	_, err = w.auth.RefreshToken(ctx, res.Tokens.AccessToken)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestFlow_WrongCodesBurnOTP(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	_, err := w.users.Signup(ctx, domain.CreateUserRequest{Name: "E", Email: "e@x.com", Mobile: "1", Password: "pw1234"})
	require.NoError(t, err)
	require.NoError(t, w.auth.ForgotPassword(ctx, "e@x.com"))

	for i := 0; i < otp.MaxAttempts; i++ {
		err = w.auth.VerifyOTP(ctx, "e@x.com", "000000")
		require.True(t, errors.Is(err, domain.ErrInvalidOTP))
	}

	err = w.auth.VerifyOTP(ctx, "e@x.com", "123456")
	assert.True(t, errors.Is(err, domain.ErrInvalidOTP))

	require.NoError(t, w.auth.ForgotPassword(ctx, "e@x.com"))
	assert.NoError(t, w.auth.VerifyOTP(ctx, "e@x.com", "123456"))
}

func TestFlow_SignupAndResetMailsDiffer(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	_, err := w.users.Signup(ctx, domain.CreateUserRequest{Name: "F", Email: "f@x.com", Mobile: "1", Password: "pw1234"})
	require.NoError(t, err)
	signup := w.mail.last()
	assert.NotContains(t, signup.Subject, "Reset")

	require.NoError(t, w.auth.ForgotPassword(ctx, "f@x.com"))
	assert.Equal(t, "Password Reset OTP", w.mail.last().Subject)
}
