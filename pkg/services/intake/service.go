package intake

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"report-intake-gateway/pkg/constants"
	"report-intake-gateway/pkg/models"
	"report-intake-gateway/pkg/models/private"
)

type storage interface {
	IsBlacklisted(ctx context.Context, ip string) (bool, error)
	StageReport(ctx context.Context, id string, report private.StagedReport) error
	GetStagedReport(ctx context.Context, id string) (*private.StagedReport, error)
	ClearStagedReport(ctx context.Context, id string) error
}

type gate interface {
	Allow(ctx context.Context, id string) (bool, error)
}

type forwarder interface {
	SendReport(ctx context.Context, report private.StagedReport, attachment *private.Attachment) error
}

type service struct {
	store     storage
	gate      gate
	forwarder forwarder
	logger    *slog.Logger
	now       func() time.Time
}

type Intake interface {
	SubmitText(ctx context.Context, clientIP, title, description string) error
	Flush(ctx context.Context, clientIP string, attachment *private.Attachment) error
}

// SubmitText validates and stages a text report for clientIP. The staged
// report waits for Flush; a new submission from the same client replaces
// that client's staged report.
func (s *service) SubmitText(ctx context.Context, clientIP, title, description string) error {
	log := s.logger.With(
		slog.String("method", "SubmitText"),
		slog.String("client_ip", clientIP),
	)

	if err := s.checkBlacklist(ctx, clientIP, log); err != nil {
		return err
	}

	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if title == "" || description == "" {
		return models.NewAppError(models.BadRequestErrorCode, "title and description are required")
	}
	if utf8.RuneCountInString(title) > constants.MaxTitleLength || utf8.RuneCountInString(description) > constants.MaxDescriptionLength {
		return models.NewAppError(models.BadRequestErrorCode, "title or description too long")
	}

	allowed, err := s.gate.Allow(ctx, clientIP)
	if err != nil {
		log.Error("rate gate check failed", slog.String("error", err.Error()))
		return models.NewAppError(models.InternalServerErrorCode, "")
	}
	if !allowed {
		return models.NewAppError(models.TooManyRequestsErrorCode, "please wait between submissions")
	}

	report := private.StagedReport{
		Title:       title,
		Description: description,
		ClientIP:    clientIP,
		SubmittedAt: s.now(),
	}

	if err := s.store.StageReport(ctx, clientIP, report); err != nil {
		log.Error("failed to stage report", slog.String("error", err.Error()))
		return models.NewAppError(models.InternalServerErrorCode, "")
	}

	log.Info("report text staged", slog.String("title", title))
	return nil
}

// Flush delivers clientIP's staged report to the webhook sink, with the
// attachment when one is supplied. With an attachment but nothing staged,
// a fallback report is sent. The staged slot is cleared only after a
// successful delivery.
func (s *service) Flush(ctx context.Context, clientIP string, attachment *private.Attachment) error {
	log := s.logger.With(
		slog.String("method", "Flush"),
		slog.String("client_ip", clientIP),
	)

	if err := s.checkBlacklist(ctx, clientIP, log); err != nil {
		return err
	}

	staged, err := s.store.GetStagedReport(ctx, clientIP)
	if err != nil {
		log.Error("failed to load staged report", slog.String("error", err.Error()))
		return models.NewAppError(models.InternalServerErrorCode, "")
	}

	if staged == nil && attachment == nil {
		return models.NewAppError(models.BadRequestErrorCode, "no file uploaded and no staged report found")
	}

	report := private.StagedReport{
		Title:       constants.FallbackTitle,
		Description: constants.FallbackDescription,
		ClientIP:    clientIP,
		SubmittedAt: s.now(),
	}
	if staged != nil {
		report = *staged
	}

	if err := s.forwarder.SendReport(ctx, report, attachment); err != nil {
		log.Error("webhook delivery failed", slog.String("error", err.Error()))
		return models.NewAppError(models.InternalServerErrorCode, "failed to submit report")
	}

	if err := s.store.ClearStagedReport(ctx, clientIP); err != nil {
		log.Error("failed to clear staged report", slog.String("error", err.Error()))
		return models.NewAppError(models.InternalServerErrorCode, "")
	}

	log.Info("report delivered",
		slog.String("title", report.Title),
		slog.Bool("with_attachment", attachment != nil),
	)
	return nil
}

func (s *service) checkBlacklist(ctx context.Context, clientIP string, log *slog.Logger) error {
	blacklisted, err := s.store.IsBlacklisted(ctx, clientIP)
	if err != nil {
		log.Error("blacklist check failed", slog.String("error", err.Error()))
		return models.NewAppError(models.InternalServerErrorCode, "")
	}
	if blacklisted {
		return models.NewAppError(models.ForbiddenErrorCode, "access denied, your IP has been blacklisted")
	}
	return nil
}

func NewService(store storage, gate gate, forwarder forwarder, logger *slog.Logger) Intake {
	return &service{
		store:     store,
		gate:      gate,
		forwarder: forwarder,
		logger:    logger,
		now:       time.Now,
	}
}
