package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/jobsentry/jobsentry/internal/model"
)

// Ensure DiscordNotifier implements model.Notifier.
var _ model.Notifier = (*DiscordNotifier)(nil)

// Channel is one audience destination: a Discord webhook plus an optional
// illustrative image attached to every embed sent there.
type Channel struct {
	WebhookURL string
	ImagePath  string
}

// DiscordNotifier posts one embed per record to the webhook of the record's
// category. Sends to the same channel are paced by a fixed minimum delay to
// respect Discord's throughput limits.
type DiscordNotifier struct {
	channels   map[model.Category]Channel
	limiters   map[model.Category]*rate.Limiter
	httpClient *http.Client
	logger     *slog.Logger

	images map[string][]byte // image path -> bytes, loaded once
}

// NewDiscordNotifier wires one webhook per category. minDelay is the gap
// enforced between consecutive sends to the same channel.
func NewDiscordNotifier(channels map[model.Category]Channel, minDelay time.Duration, httpClient *http.Client, logger *slog.Logger) *DiscordNotifier {
	limiters := make(map[model.Category]*rate.Limiter, len(channels))
	for cat := range channels {
		limiters[cat] = rate.NewLimiter(rate.Every(minDelay), 1)
	}
	return &DiscordNotifier{
		channels:   channels,
		limiters:   limiters,
		httpClient: httpClient,
		logger:     logger,
		images:     make(map[string][]byte),
	}
}

// HasChannel reports whether a webhook is configured for the category.
func (d *DiscordNotifier) HasChannel(cat model.Category) bool {
	_, ok := d.channels[cat]
	return ok
}

// Send delivers the record to its category's channel. Failure means the
// caller must not admit the record to the ledger.
func (d *DiscordNotifier) Send(ctx context.Context, rec model.JobRecord) error {
	ch, ok := d.channels[rec.Category]
	if !ok {
		return fmt.Errorf("no channel configured for category %q", rec.Category)
	}

	if err := d.limiters[rec.Category].Wait(ctx); err != nil {
		return fmt.Errorf("pacing send to %s channel: %w", rec.Category, err)
	}

	body, contentType, err := d.buildRequestBody(rec, ch)
	if err != nil {
		return err
	}

	resp, err := d.post(ctx, ch.WebhookURL, contentType, body)
	if err != nil {
		return fmt.Errorf("post to discord: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := parseRetryAfterSeconds(resp.Header.Get("Retry-After"))
		d.logger.Warn("discord rate limited, retrying", "retry_after", retryAfter)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryAfter):
		}

		resp2, err := d.post(ctx, ch.WebhookURL, contentType, body)
		if err != nil {
			return fmt.Errorf("post to discord (retry): %w", err)
		}
		defer resp2.Body.Close()
		if resp2.StatusCode >= 300 {
			return fmt.Errorf("discord returned %d on retry", resp2.StatusCode)
		}
		d.logger.Info("discord message sent", "company", rec.Company, "title", rec.Title, "retried", true)
		return nil
	}

	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord returned %d", resp.StatusCode)
	}
	d.logger.Info("discord message sent",
		"company", rec.Company, "title", rec.Title, "channel", string(rec.Category))
	return nil
}

func (d *DiscordNotifier) post(ctx context.Context, url, contentType string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return d.httpClient.Do(req)
}

// buildRequestBody returns either a plain JSON payload or, when the channel
// has an image, a multipart body attaching it.
func (d *DiscordNotifier) buildRequestBody(rec model.JobRecord, ch Channel) ([]byte, string, error) {
	imgName := ""
	if ch.ImagePath != "" {
		imgName = filepath.Base(ch.ImagePath)
	}

	payload, err := json.Marshal(buildPayload(rec, imgName))
	if err != nil {
		return nil, "", fmt.Errorf("marshal discord payload: %w", err)
	}

	if imgName == "" {
		return payload, "application/json", nil
	}

	img, err := d.loadImage(ch.ImagePath)
	if err != nil {
		// A missing image is cosmetic: fall back to a plain embed.
		d.logger.Warn("channel image unavailable, sending without it",
			"path", ch.ImagePath, "error", err)
		plain, merr := json.Marshal(buildPayload(rec, ""))
		if merr != nil {
			return nil, "", fmt.Errorf("marshal discord payload: %w", merr)
		}
		return plain, "application/json", nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormField("payload_json")
	if err != nil {
		return nil, "", fmt.Errorf("build multipart payload: %w", err)
	}
	if _, err := part.Write(payload); err != nil {
		return nil, "", fmt.Errorf("build multipart payload: %w", err)
	}
	file, err := w.CreateFormFile("files[0]", imgName)
	if err != nil {
		return nil, "", fmt.Errorf("build multipart payload: %w", err)
	}
	if _, err := file.Write(img); err != nil {
		return nil, "", fmt.Errorf("build multipart payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("build multipart payload: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (d *DiscordNotifier) loadImage(path string) ([]byte, error) {
	if img, ok := d.images[path]; ok {
		return img, nil
	}
	img, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d.images[path] = img
	return img, nil
}

func parseRetryAfterSeconds(value string) time.Duration {
	var secs int
	fmt.Sscanf(value, "%d", &secs)
	if secs <= 0 {
		secs = 1
	}
	return time.Duration(secs) * time.Second
}

// Discord webhook payload types.

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title     string         `json:"title"`
	Color     int            `json:"color"`
	Timestamp string         `json:"timestamp"`
	Fields    []discordField `json:"fields"`
	Footer    *discordFooter `json:"footer,omitempty"`
	Image     *discordImage  `json:"image,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text string `json:"text"`
}

type discordImage struct {
	URL string `json:"url"`
}

const embedColor = 0x242429

func buildPayload(rec model.JobRecord, imageName string) discordPayload {
	location := rec.Location
	if location == "" {
		location = "—"
	}

	embed := discordEmbed{
		Title:     rec.Company,
		Color:     embedColor,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Fields: []discordField{
			{Name: "Role", Value: rec.Title},
			{Name: "Location", Value: location},
			{Name: "Link", Value: fmt.Sprintf("[Apply Here](%s)", rec.Link)},
		},
		Footer: &discordFooter{Text: "Source: " + rec.Source},
	}
	if imageName != "" {
		embed.Image = &discordImage{URL: "attachment://" + imageName}
	}
	return discordPayload{Embeds: []discordEmbed{embed}}
}

// SendTestMessage sends a dummy record to verify the integration works.
func SendTestMessage(ctx context.Context, n model.Notifier, cat model.Category) error {
	return n.Send(ctx, model.JobRecord{
		Company:  "JobSentry Test",
		Title:    "Test Notification — Integration Verified",
		Location: "Everywhere",
		Link:     "https://github.com/jobsentry/jobsentry",
		Source:   "test",
		Category: cat,
	})
}
