package nomination

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/entrepreneur-award/award-api/internal/application/notification"
	"github.com/entrepreneur-award/award-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockNominationStore struct{ mock.Mock }

func (m *mockNominationStore) Create(ctx context.Context, n *domain.Nomination) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockNominationStore) ListByNominator(ctx context.Context, nominatorID string) ([]domain.Nomination, error) {
	args := m.Called(ctx, nominatorID)
	return args.Get(0).([]domain.Nomination), args.Error(1)
}
func (m *mockNominationStore) ListByNomineeEmail(ctx context.Context, email string) ([]domain.Nomination, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]domain.Nomination), args.Error(1)
}
func (m *mockNominationStore) MarkSubmitted(ctx context.Context, nominatorID, nomineeEmail, nomineeUserID string) error {
	return m.Called(ctx, nominatorID, nomineeEmail, nomineeUserID).Error(0)
}

type mockUserLookup struct{ mock.Mock }

func (m *mockUserLookup) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserLookup) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Send(ctx context.Context, msg notification.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func newTestService() (Service, *mockNominationStore, *mockUserLookup, *mockNotifier) {
	store := &mockNominationStore{}
	users := &mockUserLookup{}
	n := &mockNotifier{}
	svc := NewService(ServiceDeps{Store: store, Users: users, Notifier: n, AppURL: "https://award.example/",
		Dispatch: func(fn func()) { fn() },
	})
	return svc, store, users, n
}

var nominator = &domain.User{UserID: "u1", Name: "Ravi", Email: "ravi@x.com"}

// --- Create ---

func TestCreate_UnregisteredNomineeIsPendingAndInvited(t *testing.T) {
	svc, store, users, n := newTestService()
	ctx := context.Background()

	users.On("Get", ctx, "u1").Return(nominator, nil)
	users.On("GetByEmail", ctx, "new@x.com").Return(nil, domain.ErrNotFound)
	store.On("Create", ctx, mock.AnythingOfType("*domain.Nomination")).Return(nil)
	n.On("Send", mock.Anything, mock.MatchedBy(func(m notification.Message) bool {
		return m.To == "new@x.com" &&
			m.Template == notification.TemplateNomination &&
			m.Data["NominatorName"] == "Ravi" &&
			m.Data["ApplyURL"] == "https://award.example/auth/register?email=new%40x.com"
	})).Return(nil)

	nom, err := svc.Create(ctx, "u1", domain.CreateNominationRequest{NomineeEmail: "New@X.com", NomineeName: " Nia "})
	require.NoError(t, err)
	assert.Equal(t, domain.NominationPending, nom.Status)
	assert.Equal(t, "new@x.com", nom.NomineeEmail)
	assert.Equal(t, "Nia", nom.NomineeName)
	assert.Nil(t, nom.NomineeUserID)
	n.AssertExpectations(t)
}

func TestCreate_RegisteredNomineeIsSubmittedWithoutMail(t *testing.T) {
	svc, store, users, n := newTestService()
	ctx := context.Background()

	users.On("Get", ctx, "u1").Return(nominator, nil)
	users.On("GetByEmail", ctx, "member@x.com").Return(&domain.User{UserID: "u2"}, nil)
	store.On("Create", ctx, mock.Anything).Return(nil)

	nom, err := svc.Create(ctx, "u1", domain.CreateNominationRequest{NomineeEmail: "member@x.com", NomineeName: "M"})
	require.NoError(t, err)
	assert.Equal(t, domain.NominationSubmitted, nom.Status)
	require.NotNil(t, nom.NomineeUserID)
	assert.Equal(t, "u2", *nom.NomineeUserID)
	n.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestCreate_Duplicate(t *testing.T) {
	svc, store, users, n := newTestService()
	ctx := context.Background()

	users.On("Get", ctx, "u1").Return(nominator, nil)
	users.On("GetByEmail", ctx, "new@x.com").Return(nil, domain.ErrNotFound)
	store.On("Create", ctx, mock.Anything).Return(domain.ErrConflict)

	_, err := svc.Create(ctx, "u1", domain.CreateNominationRequest{NomineeEmail: "new@x.com", NomineeName: "N"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	n.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestCreate_SelfNomination(t *testing.T) {
	svc, store, users, _ := newTestService()
	ctx := context.Background()

	users.On("Get", ctx, "u1").Return(nominator, nil)

	_, err := svc.Create(ctx, "u1", domain.CreateNominationRequest{NomineeEmail: "RAVI@x.com", NomineeName: "Me"})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_InviteFailureIsNotFatal(t *testing.T) {
	svc, store, users, n := newTestService()
	ctx := context.Background()

	users.On("Get", ctx, "u1").Return(nominator, nil)
	users.On("GetByEmail", ctx, "new@x.com").Return(nil, domain.ErrNotFound)
	store.On("Create", ctx, mock.Anything).Return(nil)
	n.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	_, err := svc.Create(ctx, "u1", domain.CreateNominationRequest{NomineeEmail: "new@x.com", NomineeName: "N"})
	assert.NoError(t, err)
}

func TestCreate_InviteOutlivesRequestContext(t *testing.T) {
	store := &mockNominationStore{}
	users := &mockUserLookup{}
	sent := make(chan error, 1)
	svc := NewService(ServiceDeps{Store: store, Users: users, Notifier: notifierFunc(func(ctx context.Context, _ notification.Message) error {
		time.Sleep(20 * time.Millisecond)
		sent <- ctx.Err()
		return nil
	})})

	ctx, cancel := context.WithCancel(context.Background())
	users.On("Get", ctx, "u1").Return(nominator, nil)
	users.On("GetByEmail", ctx, "new@x.com").Return(nil, domain.ErrNotFound)
	store.On("Create", ctx, mock.Anything).Return(nil)

	_, err := svc.Create(ctx, "u1", domain.CreateNominationRequest{NomineeEmail: "new@x.com", NomineeName: "N"})
	require.NoError(t, err)
	cancel()

	select {
	case err := <-sent:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("invite never sent")
	}
}

type notifierFunc func(ctx context.Context, msg notification.Message) error

func (f notifierFunc) Send(ctx context.Context, msg notification.Message) error { return f(ctx, msg) }

// --- OnUserCompletedProfile ---

func TestOnUserCompletedProfile_SubmitsOnlyPending(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := context.Background()

	store.On("ListByNomineeEmail", ctx, "nia@x.com").Return([]domain.Nomination{
		{NominationID: "n1", NominatorID: "a", NomineeEmail: "nia@x.com", Status: domain.NominationPending},
		{NominationID: "n2", NominatorID: "b", NomineeEmail: "nia@x.com", Status: domain.NominationSubmitted},
		{NominationID: "n3", NominatorID: "c", NomineeEmail: "nia@x.com", Status: domain.NominationPending},
	}, nil)
	store.On("MarkSubmitted", ctx, "a", "nia@x.com", "u9").Return(nil)
	store.On("MarkSubmitted", ctx, "c", "nia@x.com", "u9").Return(nil)

	require.NoError(t, svc.OnUserCompletedProfile(ctx, "Nia@x.com", "u9"))
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "MarkSubmitted", ctx, "b", "nia@x.com", "u9")
}

func TestOnUserCompletedProfile_NoNominations(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := context.Background()

	store.On("ListByNomineeEmail", ctx, "solo@x.com").Return([]domain.Nomination{}, nil)

	assert.NoError(t, svc.OnUserCompletedProfile(ctx, "solo@x.com", "u9"))
}

func TestOnUserCompletedProfile_ContinuesPastFailures(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := context.Background()

	store.On("ListByNomineeEmail", ctx, "nia@x.com").Return([]domain.Nomination{
		{NominationID: "n1", NominatorID: "a", NomineeEmail: "nia@x.com", Status: domain.NominationPending},
		{NominationID: "n2", NominatorID: "b", NomineeEmail: "nia@x.com", Status: domain.NominationPending},
	}, nil)
	store.On("MarkSubmitted", ctx, "a", "nia@x.com", "u9").Return(errors.New("throttled"))
	store.On("MarkSubmitted", ctx, "b", "nia@x.com", "u9").Return(nil)

	err := svc.OnUserCompletedProfile(ctx, "nia@x.com", "u9")
	assert.Error(t, err)
	store.AssertExpectations(t)
}

// --- ListByNominator ---

func TestListByNominator(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := context.Background()

	store.On("ListByNominator", ctx, "u1").Return([]domain.Nomination{{NominationID: "n1"}}, nil)

	noms, err := svc.ListByNominator(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, noms, 1)
}
