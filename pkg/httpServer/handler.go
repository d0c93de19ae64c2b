package httpServer

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"report-intake-gateway/pkg/models/private"
)

type intake interface {
	SubmitText(ctx context.Context, clientIP, title, description string) error
	Flush(ctx context.Context, clientIP string, attachment *private.Attachment) error
}

type admin interface {
	Authenticate(username, password string) bool
	Blacklist(ctx context.Context, ip string) error
	Unblacklist(ctx context.Context, ip string) error
	ListBlacklisted(ctx context.Context) ([]string, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	server    *fiber.App
	logger    *slog.Logger
	intake    intake
	admin     admin
	namespace string
	subsystem string
}

func New(
	server *fiber.App,
	intake intake,
	admin admin,
	namespace string,
	subsystem string,
	logger *slog.Logger,
) *handler {
	return &handler{
		server:    server,
		intake:    intake,
		admin:     admin,
		namespace: namespace,
		subsystem: subsystem,
		logger:    logger,
	}
}
