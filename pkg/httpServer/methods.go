package httpServer

import (
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"report-intake-gateway/pkg/constants"
	v1 "report-intake-gateway/pkg/models/api/v1"
	"report-intake-gateway/pkg/models/private"
)

func (h *handler) limitReached(c *fiber.Ctx) error {
	log := h.logger.With(
		slog.String("func", "limitReached"),
		slog.String("method", c.Method()),
		slog.String("url", c.OriginalURL()),
	)

	log.Warn("rate limit reached for request")
	return errorHandler(c, fiber.NewError(fiber.StatusTooManyRequests, "too many requests, please try again later"))
}

func (h *handler) submitReport(c *fiber.Ctx) (err error) {
	ip := clientIP(c)
	body := c.Body()

	log := h.logger.With(
		slog.String("func", "submitReport"),
		slog.String("client_ip", ip),
		slog.String("method", c.Method()),
		slog.String("url", c.OriginalURL()),
		slog.Int("body_length", len(body)),
	)

	if len(body) == 0 || body[0] != '{' {
		err = fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		return errorHandler(c, err)
	}

	var req v1.ReportRequest
	if err := c.BodyParser(&req); err != nil {
		log.Error("failed to parse request body", slog.String("error", err.Error()))
		return errorHandler(c, fiber.NewError(fiber.StatusBadRequest, "invalid request body"))
	}

	if err := h.intake.SubmitText(c.Context(), ip, req.Title, req.Description); err != nil {
		log.Warn("report submission rejected", slog.String("error", err.Error()))
		return errorHandler(c, err)
	}

	return c.JSON(v1.MessageResponse{
		Message: "report text submitted successfully",
	})
}

func (h *handler) uploadFile(c *fiber.Ctx) (err error) {
	ip := clientIP(c)

	log := h.logger.With(
		slog.String("func", "uploadFile"),
		slog.String("client_ip", ip),
		slog.String("method", c.Method()),
		slog.String("url", c.OriginalURL()),
		slog.String("content_type", c.Get("Content-Type")),
	)

	var attachment *private.Attachment

	// A missing file is not an error: it flushes any staged text report.
	fileHeader, fileErr := c.FormFile("file")
	if fileErr == nil && fileHeader != nil {
		if fileHeader.Size > constants.MaxAttachmentSize {
			err = fiber.NewError(fiber.StatusRequestEntityTooLarge, "file too large")
			return errorHandler(c, err)
		}

		data, err := readMultipartFile(fileHeader)
		if err != nil {
			log.Error("failed to read uploaded file", slog.String("error", err.Error()))
			return errorHandler(c, fiber.NewError(fiber.StatusBadRequest, "failed to read uploaded file"))
		}

		attachment = &private.Attachment{
			Filename: fileHeader.Filename,
			Data:     data,
		}

		log.Info("received file upload",
			slog.String("filename", fileHeader.Filename),
			slog.Int64("size", fileHeader.Size),
		)
	}

	if err := h.intake.Flush(c.Context(), ip, attachment); err != nil {
		log.Warn("report flush rejected", slog.String("error", err.Error()))
		return errorHandler(c, err)
	}

	message := "text-only report sent successfully"
	if attachment != nil {
		message = "report with file submitted successfully"
	}

	return c.JSON(v1.MessageResponse{
		Message: message,
	})
}

func (h *handler) adminAction(c *fiber.Ctx) (err error) {
	body := c.Body()

	log := h.logger.With(
		slog.String("func", "adminAction"),
		slog.String("method", c.Method()),
		slog.String("url", c.OriginalURL()),
		slog.Int("body_length", len(body)),
	)

	if len(body) == 0 || body[0] != '{' {
		err = fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		return errorHandler(c, err)
	}

	var req v1.AdminRequest
	if err := c.BodyParser(&req); err != nil {
		log.Error("failed to parse request body", slog.String("error", err.Error()))
		return errorHandler(c, fiber.NewError(fiber.StatusBadRequest, "invalid request body"))
	}

	switch req.Action {
	case "blacklist":
		if req.IP == "" {
			return errorHandler(c, fiber.NewError(fiber.StatusBadRequest, "ip is required"))
		}
		if err := h.admin.Blacklist(c.Context(), req.IP); err != nil {
			return errorHandler(c, err)
		}
		return c.JSON(v1.MessageResponse{
			Message: "IP " + req.IP + " has been blacklisted",
		})

	case "unblacklist":
		if req.IP == "" {
			return errorHandler(c, fiber.NewError(fiber.StatusBadRequest, "ip is required"))
		}
		if err := h.admin.Unblacklist(c.Context(), req.IP); err != nil {
			return errorHandler(c, err)
		}
		return c.JSON(v1.MessageResponse{
			Message: "IP " + req.IP + " has been removed from blacklist",
		})

	case "list":
		list, err := h.admin.ListBlacklisted(c.Context())
		if err != nil {
			return errorHandler(c, err)
		}
		if list == nil {
			list = []string{}
		}
		return c.JSON(v1.BlacklistResponse{
			BlacklistedIPs: list,
		})

	default:
		log.Warn("unrecognized admin action", slog.String("action", req.Action))
		return errorHandler(c, fiber.NewError(fiber.StatusBadRequest, "invalid action"))
	}
}

func (h *handler) health(c *fiber.Ctx) error {
	return okHandler(c)
}

func (h *handler) metrics(c *fiber.Ctx) error {
	m := promhttp.Handler()

	return adaptor.HTTPHandler(m)(c)
}
