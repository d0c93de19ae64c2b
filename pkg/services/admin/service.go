package admin

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"report-intake-gateway/pkg/models"
)

type blacklist interface {
	AddToBlacklist(ctx context.Context, ip string) error
	RemoveFromBlacklist(ctx context.Context, ip string) error
	ListBlacklist(ctx context.Context) ([]string, error)
}

type service struct {
	username string
	password string
	store    blacklist
	logger   *slog.Logger
}

type Admin interface {
	Authenticate(username, password string) bool
	Blacklist(ctx context.Context, ip string) error
	Unblacklist(ctx context.Context, ip string) error
	ListBlacklisted(ctx context.Context) ([]string, error)
}

// Authenticate checks the supplied pair against the configured secrets.
// Credentials are re-validated on every admin request; no session is
// kept server-side.
func (s *service) Authenticate(username, password string) bool {
	userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(s.username))
	passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(s.password))
	return userMatch&passMatch == 1
}

func (s *service) Blacklist(ctx context.Context, ip string) error {
	if err := s.store.AddToBlacklist(ctx, ip); err != nil {
		s.logger.Error("failed to blacklist IP", slog.String("ip", ip), slog.String("error", err.Error()))
		return models.NewAppError(models.InternalServerErrorCode, "")
	}

	s.logger.Info("IP blacklisted", slog.String("ip", ip))
	return nil
}

func (s *service) Unblacklist(ctx context.Context, ip string) error {
	if err := s.store.RemoveFromBlacklist(ctx, ip); err != nil {
		s.logger.Error("failed to unblacklist IP", slog.String("ip", ip), slog.String("error", err.Error()))
		return models.NewAppError(models.InternalServerErrorCode, "")
	}

	s.logger.Info("IP removed from blacklist", slog.String("ip", ip))
	return nil
}

func (s *service) ListBlacklisted(ctx context.Context) ([]string, error) {
	list, err := s.store.ListBlacklist(ctx)
	if err != nil {
		s.logger.Error("failed to list blacklist", slog.String("error", err.Error()))
		return nil, models.NewAppError(models.InternalServerErrorCode, "")
	}
	return list, nil
}

func NewService(username, password string, store blacklist, logger *slog.Logger) Admin {
	return &service{
		username: username,
		password: password,
		store:    store,
		logger:   logger,
	}
}
