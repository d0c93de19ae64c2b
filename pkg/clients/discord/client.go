package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"report-intake-gateway/pkg/constants"
	"report-intake-gateway/pkg/models/private"
)

// Client delivers rendered reports to a Discord-compatible webhook URL.
// Text-only reports go out as a JSON embed payload; reports with an
// attachment go out as multipart with a payload_json part and the embed
// image pointing at attachment://<filename>. Delivery is never retried.
type Client interface {
	SendReport(ctx context.Context, report private.StagedReport, attachment *private.Attachment) error
}

type client struct {
	webhookURL string
	client     http.Client
}

func (c *client) SendReport(ctx context.Context, report private.StagedReport, attachment *private.Attachment) error {
	embed := &discordgo.MessageEmbed{
		Title:       report.Title,
		Description: fmt.Sprintf("%s\n\n*Submitted from IP: %s*", report.Description, report.ClientIP),
		Color:       constants.EmbedColor,
		Footer: &discordgo.MessageEmbedFooter{
			Text: report.SubmittedAt.UTC().Format(time.RFC1123),
		},
	}

	params := &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}

	if attachment == nil {
		body, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to encode webhook payload: %w", err)
		}

		return c.post(ctx, "application/json", body)
	}

	embed.Image = &discordgo.MessageEmbedImage{
		URL: "attachment://" + attachment.Filename,
	}

	files := []*discordgo.File{
		{
			Name:   attachment.Filename,
			Reader: bytes.NewReader(attachment.Data),
		},
	}

	contentType, body, err := discordgo.MultipartBodyWithJSON(params, files)
	if err != nil {
		return fmt.Errorf("failed to encode multipart webhook payload: %w", err)
	}

	return c.post(ctx, contentType, body)
}

func (c *client) post(ctx context.Context, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver webhook: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		return fmt.Errorf("webhook sink returned %d: %s", res.StatusCode, bytes.TrimSpace(b))
	}

	return nil
}

func NewClient(webhookURL string, timeout time.Duration) Client {
	return &client{
		webhookURL: webhookURL,
		client: http.Client{
			Timeout: timeout,
		},
	}
}
