package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PriceForecaster/internal/pipeline"
)

// maxMessageLen is the Telegram limit for a single message.
const maxMessageLen = 4096

const defaultAPIBase = "https://api.telegram.org"

// TelegramNotifier delivers forecast reports to a chat via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	APIBase  string
	Client   *http.Client

	retryBase time.Duration // first backoff step, 1s when zero
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		APIBase:  defaultAPIBase,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// Enabled reports whether credentials are configured.
func (t *TelegramNotifier) Enabled() bool {
	return t != nil && t.BotToken != "" && t.ChatID != ""
}

func (t *TelegramNotifier) endpoint(method string) string {
	base := t.APIBase
	if base == "" {
		base = defaultAPIBase
	}
	return fmt.Sprintf("%s/bot%s/%s", strings.TrimRight(base, "/"), t.BotToken, method)
}

// Send posts one plain-text message to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]string{
		"chat_id": t.ChatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SendReport delivers a report, one message per ticker section when it exceeds the message limit.
func (t *TelegramNotifier) SendReport(ctx context.Context, rep *pipeline.Report) error {
	for _, chunk := range Chunk(FormatReport(rep), maxMessageLen) {
		if err := t.Send(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

// Chunk splits text on section boundaries (blank lines) so each piece fits within limit runes.
// A single section longer than limit is cut hard.
func Chunk(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, strings.TrimRight(cur.String(), "\n"))
			cur.Reset()
		}
	}
	for _, section := range strings.SplitAfter(text, "\n\n") {
		if len([]rune(cur.String()))+len([]rune(section)) > limit {
			flush()
		}
		r := []rune(section)
		for len(r) > limit {
			out = append(out, string(r[:limit]))
			r = r[limit:]
		}
		cur.WriteString(string(r))
	}
	flush()
	return out
}

// SendWithRetry sends a report chunk by chunk, retrying each chunk with exponential backoff.
// Chunks already delivered are never re-sent. Delivery is presentation-side; the forecast
// itself is never retried.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, rep *pipeline.Report, maxRetries int) error {
	return t.sendChunks(ctx, Chunk(FormatReport(rep), maxMessageLen), maxRetries)
}

func (t *TelegramNotifier) sendChunks(ctx context.Context, chunks []string, maxRetries int) error {
	for n, chunk := range chunks {
		if err := t.sendChunk(ctx, chunk, maxRetries); err != nil {
			return fmt.Errorf("message %d/%d: %w", n+1, len(chunks), err)
		}
	}
	return nil
}

func (t *TelegramNotifier) sendChunk(ctx context.Context, text string, maxRetries int) error {
	base := t.retryBase
	if base <= 0 {
		base = time.Second
	}
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := t.Send(ctx, text)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == maxRetries {
			break
		}
		backoff := base * time.Duration(1<<uint(i))
		log.Printf("[WARN] Telegram send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}
