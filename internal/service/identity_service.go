package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/warden/internal/auth"
	"github.com/spec-kit/warden/internal/config"
	"github.com/spec-kit/warden/internal/domain"
	"github.com/spec-kit/warden/internal/events"
	"github.com/spec-kit/warden/internal/repository"
	apperrors "github.com/spec-kit/warden/pkg/util"
)

// IdentityService coordinates the token endpoint, prelogin and registration.
type IdentityService struct {
	identities           repository.IdentityRepository
	grants               *auth.GrantHandler
	issuer               *auth.TokenIssuer
	authenticator        *auth.RequestAuthenticator
	dispatcher           events.Dispatcher
	logger               *zap.Logger
	now                  func() time.Time
	defaultKdfIterations int
}

// IdentityDependencies encapsulates collaborators for the identity service.
type IdentityDependencies struct {
	Identities repository.IdentityRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// PreloginResult advertises the KDF parameters a client must use for an email.
type PreloginResult struct {
	Kdf           domain.KdfType
	KdfIterations int
}

// RegisterInput holds a new account as submitted by the client.
type RegisterInput struct {
	Name               *string
	Email              string
	MasterPasswordHash string
	MasterPasswordHint *string
	Key                string
	PublicKey          string
	PrivateKey         string
	Kdf                domain.KdfType
	KdfIterations      int
}

// NewIdentityService builds the service. It fails when the signing secrets are missing or equal.
func NewIdentityService(cfg config.Config, deps IdentityDependencies) (*IdentityService, error) {
	secrets, err := auth.NewSecrets(cfg.Auth.JWTSecret, cfg.Auth.JWTRefreshSecret)
	if err != nil {
		return nil, err
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	defaultIterations := cfg.Auth.DefaultKdfIterations
	if defaultIterations <= 0 {
		defaultIterations = domain.DefaultKdfIterations
	}

	codec := auth.NewClaimsCodec(auth.WithClock(clock))
	return &IdentityService{
		identities:           deps.Identities,
		grants:               auth.NewGrantHandler(deps.Identities, codec, secrets),
		issuer:               auth.NewTokenIssuer(codec, secrets, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL),
		authenticator:        auth.NewRequestAuthenticator(codec, secrets),
		dispatcher:           dispatcher,
		logger:               logger,
		now:                  clock,
		defaultKdfIterations: defaultIterations,
	}, nil
}

// Token evaluates a grant and, on success, issues a fresh token pair.
func (s *IdentityService) Token(ctx context.Context, req auth.GrantRequest) (*auth.TokenResponse, error) {
	grant := auth.ParseGrant(req)

	identity, err := s.grants.Evaluate(ctx, grant)
	if err != nil {
		s.publishRejection(ctx, grant, err)
		return nil, err
	}

	resp, err := s.issuer.Issue(identity, s.now())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.NewEvent(events.EventTokenIssued, identity.ID, s.now(),
		events.GrantPayload{GrantType: grant.Type()}))
	return resp, nil
}

// Prelogin returns KDF parameters for email. Unknown emails get the defaults.
func (s *IdentityService) Prelogin(ctx context.Context, email string) (PreloginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return PreloginResult{}, apperrors.NewBadRequest("missing email")
	}

	result := PreloginResult{Kdf: domain.KdfTypePBKDF2, KdfIterations: s.defaultKdfIterations}
	identity, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		return PreloginResult{}, lookupFailure(err)
	}
	if identity != nil {
		result.Kdf = identity.KdfType
		if identity.KdfIterations > 0 {
			result.KdfIterations = identity.KdfIterations
		}
	}
	return result, nil
}

// Register creates a new account. The master-password hash is stored as supplied.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*domain.Identity, error) {
	email := domain.NormalizeEmail(in.Email)
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return nil, apperrors.NewBadRequest("a valid email is required")
	case in.MasterPasswordHash == "":
		return nil, apperrors.NewBadRequest("masterPasswordHash is required")
	case in.Key == "":
		return nil, apperrors.NewBadRequest("userSymmetricKey is required")
	case in.Kdf != domain.KdfTypePBKDF2 && in.Kdf != domain.KdfTypeArgon2:
		return nil, apperrors.NewBadRequest("unsupported kdf")
	}

	iterations := in.KdfIterations
	if iterations <= 0 {
		iterations = s.defaultKdfIterations
	}

	identity := &domain.Identity{
		ID:                 uuid.NewString(),
		Name:               in.Name,
		Email:              email,
		EmailVerified:      false,
		MasterPasswordHash: in.MasterPasswordHash,
		MasterPasswordHint: in.MasterPasswordHint,
		Key:                in.Key,
		PrivateKey:         in.PrivateKey,
		PublicKey:          in.PublicKey,
		KdfType:            in.Kdf,
		KdfIterations:      iterations,
		SecurityStamp:      uuid.NewString(),
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewConflict("email already registered")
		}
		return nil, apperrors.NewStorageError(err)
	}

	s.publish(ctx, events.NewEvent(events.EventIdentityRegistered, identity.ID, s.now(),
		events.IdentityRegisteredPayload{KdfType: int(identity.KdfType), KdfIterations: identity.KdfIterations}))
	return identity, nil
}

// Authenticator exposes the access-token guard for protected routes.
func (s *IdentityService) Authenticator() *auth.RequestAuthenticator {
	return s.authenticator
}

// Ping reports whether the credential store is reachable.
func (s *IdentityService) Ping(ctx context.Context) error {
	return s.identities.Ping(ctx)
}

func (s *IdentityService) publishRejection(ctx context.Context, grant auth.Grant, err error) {
	de := apperrors.ToDomainError(err)
	payload := events.GrantPayload{GrantType: grantLabel(grant), ErrorCode: de.Code}
	if de.HTTPStatus < 500 {
		payload.Reason = de.Message
	}
	s.publish(ctx, events.NewEvent(events.EventGrantRejected, "", s.now(), payload))
}

func (s *IdentityService) publish(ctx context.Context, event events.Event) {
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// grantLabel keeps client-chosen grant_type values out of metric keys.
func grantLabel(grant auth.Grant) string {
	if _, ok := grant.(auth.UnsupportedGrant); ok {
		return "unsupported"
	}
	return grant.Type()
}

func lookupFailure(err error) error {
	if errors.Is(err, domain.ErrCorruptIdentity) {
		return apperrors.NewInternalError(err)
	}
	return apperrors.NewStorageError(err)
}
