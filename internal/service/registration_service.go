package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kursadbilgin/registration-engine/internal/domain"
	"github.com/kursadbilgin/registration-engine/internal/mail"
	"github.com/kursadbilgin/registration-engine/internal/notify"
	"github.com/kursadbilgin/registration-engine/internal/observability"
	"github.com/kursadbilgin/registration-engine/internal/repository"
	"go.uber.org/zap"
)

const (
	kindConfirmation = "confirmation"
	kindElevation    = "elevation"
)

var (
	errDeliveryFailed    = errors.New("confirmation delivery failed")
	errDuplicateIdentity = errors.New("identity already registered")
)

type Renderer interface {
	Has(name string) bool
	Render(name, lang string, payload notify.Payload) (notify.Rendered, error)
}

type PasswordGenerator interface {
	Generate() string
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// RegistrationService provisions self-registered users. The user row, its
// guest group membership and the confirmation mail succeed or fail together;
// the elevation request to the administrator is sent after commit and never
// undoes the registration.
type RegistrationService struct {
	users     repository.UserRepository
	tx        repository.TxManager
	renderer  Renderer
	transport mail.Transport
	passwords PasswordGenerator
	hasher    PasswordHasher
	logger    *zap.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewRegistrationService(
	users repository.UserRepository,
	tx repository.TxManager,
	renderer Renderer,
	transport mail.Transport,
	passwords PasswordGenerator,
	hasher PasswordHasher,
	logger *zap.Logger,
) (*RegistrationService, error) {
	switch {
	case users == nil:
		return nil, fmt.Errorf("user repository is required")
	case tx == nil:
		return nil, fmt.Errorf("transaction manager is required")
	case renderer == nil:
		return nil, fmt.Errorf("renderer is required")
	case transport == nil:
		return nil, fmt.Errorf("mail transport is required")
	case passwords == nil:
		return nil, fmt.Errorf("password generator is required")
	case hasher == nil:
		return nil, fmt.Errorf("password hasher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RegistrationService{
		users:     users,
		tx:        tx,
		renderer:  renderer,
		transport: transport,
		passwords: passwords,
		hasher:    hasher,
		logger:    logger,
		now:       time.Now,
	}, nil
}

func (s *RegistrationService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Register runs the self-registration workflow. A misconfigured site or an
// invalid request is returned as an error before anything is written; every
// other terminal state is a RegistrationResult.
func (s *RegistrationService) Register(
	ctx context.Context,
	req domain.RegistrationRequest,
	site domain.SiteConfig,
) (*domain.RegistrationResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := observability.WithContextLogger(s.logger, ctx)

	if err := site.Validate(); err != nil {
		logger.Error("self registration refused", zap.Error(err))
		return nil, err
	}
	port, err := site.Port()
	if err != nil {
		return nil, err
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logger = observability.WithRegistrationLogger(s.logger, ctx, req.Email, req.Profile)
	if err := s.checkTemplates(req); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return s.finish(logger, req, domain.OutcomeDuplicateIdentity, ""), nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	plain := s.passwords.Generate()
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, err
	}

	username := req.Email
	payload := notify.Payload{
		Site:     site.SiteName,
		SiteURL:  site.SiteURL,
		Request:  req,
		Password: plain,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, stores repository.IdentityStores) error {
		group, err := stores.Groups.GetByID(ctx, domain.ReservedGroupGuest.ID())
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: reserved group %s is missing", domain.ErrConfiguration, domain.ReservedGroupGuest)
		}
		if err != nil {
			return fmt.Errorf("failed to resolve guest group: %w", err)
		}

		user := newProvisionedUser(req, username, hash)
		if err := stores.Users.Create(ctx, user); err != nil {
			if repository.IsUniqueViolation(err) {
				return errDuplicateIdentity
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		if err := stores.Memberships.Create(ctx, &domain.UserGroup{
			UserID:  user.ID,
			GroupID: group.ID,
			Profile: domain.ProfileRegisteredUser,
		}); err != nil {
			return fmt.Errorf("failed to create group membership: %w", err)
		}

		rendered, err := s.renderer.Render(req.ConfirmationTemplate(), req.Language, payload)
		if err != nil {
			s.metrics.IncNotificationFailed(kindConfirmation, "render")
			return fmt.Errorf("failed to render confirmation: %w", err)
		}

		if !s.deliver(ctx, kindConfirmation, mail.Message{
			Host:     site.MailHost,
			Port:     port,
			Protocol: mail.ProtocolSMTP,
			From:     site.FromAddress,
			To:       req.Email,
			Subject:  rendered.Subject,
			Body:     rendered.Body,
		}) {
			return errDeliveryFailed
		}
		return nil
	})
	switch {
	case errors.Is(err, errDuplicateIdentity):
		return s.finish(logger, req, domain.OutcomeDuplicateIdentity, ""), nil
	case errors.Is(err, errDeliveryFailed):
		return s.finish(logger, req, domain.OutcomeDeliveryFailed, ""), nil
	case err != nil:
		logger.Error("self registration failed", zap.Error(err))
		return nil, err
	}

	if req.RequestedProfile() != domain.ProfileRegisteredUser {
		if !s.requestElevation(ctx, req, site, port) {
			return s.finish(logger, req, domain.OutcomeProfileRequestFailed, ""), nil
		}
	}

	return s.finish(logger, req, domain.OutcomeSuccess, username), nil
}

func (s *RegistrationService) checkTemplates(req domain.RegistrationRequest) error {
	for _, name := range []string{req.Template, req.ProfileTemplate} {
		if name != "" && !s.renderer.Has(name) {
			return fmt.Errorf("%w: unknown template %q", domain.ErrValidation, name)
		}
	}
	return nil
}

// requestElevation asks the administrator to grant the requested profile.
// The administrator is the site's from address.
func (s *RegistrationService) requestElevation(
	ctx context.Context,
	req domain.RegistrationRequest,
	site domain.SiteConfig,
	port int,
) bool {
	rendered, err := s.renderer.Render(req.ElevationTemplate(), "", notify.Payload{
		Site:    site.SiteName,
		SiteURL: site.SiteURL,
		Request: req,
	})
	if err != nil {
		observability.WithContextLogger(s.logger, ctx).Error("failed to render profile request",
			zap.String("template", req.ElevationTemplate()),
			zap.Error(err),
		)
		s.metrics.IncNotificationFailed(kindElevation, "render")
		return false
	}

	return s.deliver(ctx, kindElevation, mail.Message{
		Host:     site.MailHost,
		Port:     port,
		Protocol: mail.ProtocolSMTP,
		From:     site.FromAddress,
		To:       site.FromAddress,
		Subject:  rendered.Subject,
		Body:     rendered.Body,
	})
}

// deliver makes exactly one send attempt and reports whether it succeeded.
func (s *RegistrationService) deliver(ctx context.Context, kind string, msg mail.Message) bool {
	logger := observability.WithContextLogger(s.logger, ctx)

	start := s.now()
	err := s.transport.Send(ctx, msg)
	s.metrics.ObserveNotificationSendDuration(kind, s.now().Sub(start))

	if err != nil {
		logger.Warn("registration email not sent",
			zap.String("kind", kind),
			zap.String("to", msg.To),
			zap.Bool("transient", mail.IsTransient(err)),
			zap.Error(err),
		)
		s.metrics.IncNotificationFailed(kind, mail.Reason(err))
		return false
	}

	logger.Debug("registration email sent", zap.String("kind", kind), zap.String("to", msg.To))
	s.metrics.IncNotificationSent(kind)
	return true
}

func (s *RegistrationService) finish(
	logger *zap.Logger,
	req domain.RegistrationRequest,
	outcome domain.Outcome,
	username string,
) *domain.RegistrationResult {
	result := domain.NewRegistrationResult(req, outcome)
	result.Username = username

	s.metrics.IncRegistration(outcome.String())
	logger.Info("self registration finished", zap.String("outcome", outcome.String()))
	return result
}

// newProvisionedUser builds the account for a registration. The account
// always starts as RegisteredUser; a higher requested profile is only
// forwarded to the administrator.
func newProvisionedUser(req domain.RegistrationRequest, username, passwordHash string) *domain.User {
	return &domain.User{
		Username:       username,
		Surname:        req.Surname,
		Name:           req.Name,
		Organisation:   req.Organisation,
		Kind:           req.Kind,
		Profile:        domain.ProfileRegisteredUser,
		PasswordHash:   passwordHash,
		EmailAddresses: []string{req.Email},
		Addresses: []domain.Address{{
			Address: req.Address,
			City:    req.City,
			State:   req.State,
			Zip:     req.Zip,
			Country: req.Country,
		}},
	}
}
