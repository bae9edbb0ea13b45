package nomination

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/entrepreneur-award/award-api/internal/application/notification"
	"github.com/entrepreneur-award/award-api/internal/domain"
	"github.com/entrepreneur-award/award-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, nominatorID string, req domain.CreateNominationRequest) (*domain.Nomination, error)
	ListByNominator(ctx context.Context, nominatorID string) ([]domain.Nomination, error)
	// OnUserCompletedProfile moves every Pending nomination for email to
	// Submitted and attaches userID. Safe to call more than once.
	OnUserCompletedProfile(ctx context.Context, email, userID string) error
}

type nominationStore interface {
	// Create fails with domain.ErrConflict when the nominator already
	// nominated this email.
	Create(ctx context.Context, n *domain.Nomination) error
	ListByNominator(ctx context.Context, nominatorID string) ([]domain.Nomination, error)
	ListByNomineeEmail(ctx context.Context, email string) ([]domain.Nomination, error)
	// MarkSubmitted is a no-op for nominations that are no longer Pending.
	MarkSubmitted(ctx context.Context, nominatorID, nomineeEmail, nomineeUserID string) error
}

type userLookup interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type notifier interface {
	Send(ctx context.Context, msg notification.Message) error
}

type ServiceDeps struct {
	Store    nominationStore
	Users    userLookup
	Notifier notifier
	// AppURL is the frontend origin used to build the registration link.
	AppURL string
	// Dispatch runs invite delivery off the request path. Defaults to a goroutine.
	Dispatch func(func())
}

const inviteTimeout = 45 * time.Second

type service struct {
	store    nominationStore
	users    userLookup
	notifier notifier
	appURL   string
	dispatch func(func())
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:    deps.Store,
		users:    deps.Users,
		notifier: deps.Notifier,
		appURL:   strings.TrimRight(deps.AppURL, "/"),
		dispatch: deps.Dispatch,
	}
	if s.dispatch == nil {
		s.dispatch = func(fn func()) { go fn() }
	}
	return s
}

func (s *service) Create(ctx context.Context, nominatorID string, req domain.CreateNominationRequest) (*domain.Nomination, error) {
	nominator, err := s.users.Get(ctx, nominatorID)
	if err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(req.NomineeEmail)
	if email == nominator.Email {
		return nil, fmt.Errorf("cannot nominate yourself: %w", domain.ErrBadRequest)
	}

	n := &domain.Nomination{
		NominationID:  id.New(),
		NominatorID:   nominatorID,
		NomineeEmail:  email,
		NomineeName:   strings.TrimSpace(req.NomineeName),
		NomineeMobile: req.NomineeMobile,
		Relationship:  req.Relationship,
		Status:        domain.NominationPending,
		NominatedAt:   time.Now().UTC(),
	}

	nominee, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		n.Status = domain.NominationSubmitted
		n.NomineeUserID = &nominee.UserID
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	if err := s.store.Create(ctx, n); err != nil {
		return nil, err
	}

	// Registered nominees need no invitation.
	if nominee == nil {
		s.invite(ctx, n, nominator.Name)
	}
	return n, nil
}

func (s *service) ListByNominator(ctx context.Context, nominatorID string) ([]domain.Nomination, error) {
	return s.store.ListByNominator(ctx, nominatorID)
}

func (s *service) OnUserCompletedProfile(ctx context.Context, email, userID string) error {
	noms, err := s.store.ListByNomineeEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("list nominations: %w", err)
	}
	var errs []error
	for _, n := range noms {
		if n.Status != domain.NominationPending {
			continue
		}
		if err := s.store.MarkSubmitted(ctx, n.NominatorID, n.NomineeEmail, userID); err != nil {
			errs = append(errs, fmt.Errorf("nomination %s: %w", n.NominationID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *service) invite(ctx context.Context, n *domain.Nomination, nominatorName string) {
	if s.notifier == nil {
		return
	}
	msg := notification.Message{
		To:       n.NomineeEmail,
		Subject:  "You have been nominated for Entrepreneur Award",
		Template: notification.TemplateNomination,
		Data: map[string]any{
			"NomineeName":   n.NomineeName,
			"NominatorName": nominatorName,
			"ApplyURL":      s.appURL + "/auth/register?email=" + url.QueryEscape(n.NomineeEmail),
		},
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), inviteTimeout)
	nominationID := n.NominationID
	s.dispatch(func() {
		defer cancel()
		if err := s.notifier.Send(sendCtx, msg); err != nil {
			slog.Warn("nomination invite failed", "nomination_id", nominationID, "err", err)
		}
	})
}
