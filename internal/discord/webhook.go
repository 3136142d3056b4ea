package discord

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

const (
	colorRed   = 15158332 // 0xE74C3C
	colorGreen = 5763719  // 0x57F287
	colorAmber = 15844367 // 0xF1C40F

	defaultWebhookTimeout = 10 * time.Second
	maxAttempts           = 3
)

// WebhookPayload represents a Discord webhook message
type WebhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

// StageSummary is what a crawl stage reports when it ends.
type StageSummary struct {
	Stage     string
	Rank      string
	Shard     string
	Total     int
	Succeeded int
	Skipped   int
	Elapsed   time.Duration
	Output    string // written key
}

// Notifier publishes crawl events.
type Notifier interface {
	StageComplete(ctx context.Context, s StageSummary) error
	KeyRejected(ctx context.Context, s StageSummary) error
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) StageComplete(context.Context, StageSummary) error { return nil }
func (NopNotifier) KeyRejected(context.Context, StageSummary) error   { return nil }

// NewNotifier returns a webhook notifier, or a no-op one when url is empty.
func NewNotifier(url string) Notifier {
	if url == "" {
		return NopNotifier{}
	}
	return NewWebhookClient(url)
}

func stageFields(s StageSummary) []EmbedField {
	return []EmbedField{
		{Name: "Rank", Value: s.Rank, Inline: true},
		{Name: "Shard", Value: s.Shard, Inline: true},
		{Name: "Processed", Value: fmt.Sprintf("%s / %s", formatNumber(s.Succeeded+s.Skipped), formatNumber(s.Total)), Inline: true},
		{Name: "Skipped", Value: formatNumber(s.Skipped), Inline: true},
		{Name: "Runtime", Value: formatDuration(s.Elapsed), Inline: true},
	}
}

// NewKeyRejectedPayload is sent when the upstream rejects the credential mid-crawl.
func NewKeyRejectedPayload(s StageSummary) WebhookPayload {
	return WebhookPayload{
		Content: "@here API Key Rejected!",
		Embeds: []Embed{{
			Title:     "🔑 API Key Rejected during " + s.Stage,
			Color:     colorRed,
			Fields:    stageFields(s),
			Footer:    &EmbedFooter{Text: "Nothing was written for this shard. Rotate the key and rerun it."},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}},
	}
}

// NewStageCompletePayload is sent when a stage writes its output.
func NewStageCompletePayload(s StageSummary) WebhookPayload {
	color := colorGreen
	if s.Skipped > 0 {
		color = colorAmber
	}
	fields := stageFields(s)
	if s.Output != "" {
		fields = append(fields, EmbedField{Name: "Output", Value: "`" + s.Output + "`"})
	}
	return WebhookPayload{
		Embeds: []Embed{{
			Title:     "✅ " + s.Stage + " complete",
			Color:     color,
			Fields:    fields,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}},
	}
}

// WebhookClient sends notifications to Discord webhooks
type WebhookClient struct {
	webhookURL string
	httpClient *http.Client
}

func NewWebhookClient(webhookURL string) *WebhookClient {
	return &WebhookClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: defaultWebhookTimeout},
	}
}

func (c *WebhookClient) StageComplete(ctx context.Context, s StageSummary) error {
	return c.send(ctx, NewStageCompletePayload(s))
}

func (c *WebhookClient) KeyRejected(ctx context.Context, s StageSummary) error {
	return c.send(ctx, NewKeyRejectedPayload(s))
}

// send posts the payload, waiting out Discord's 429 Retry-After.
func (c *WebhookClient) send(ctx context.Context, payload WebhookPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusNoContent, http.StatusOK:
			return nil
		case http.StatusTooManyRequests:
			wait := time.Second
			if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				wait = time.Duration(seconds) * time.Second
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		default:
			return fmt.Errorf("webhook request failed with status %d", resp.StatusCode)
		}
	}
	return fmt.Errorf("webhook request failed after %d attempts", maxAttempts)
}

// formatNumber formats a number with commas (e.g., 47832 -> "47,832")
func formatNumber(n int) string {
	s := strconv.Itoa(n)
	if n < 1000 {
		return s
	}
	var b bytes.Buffer
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// formatDuration formats a duration as "Xh Ym" (e.g., 18h 32m)
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
