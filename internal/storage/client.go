// Package storage is a minimal client for a Supabase-compatible object
// storage REST API. Only the operations the bot needs are implemented:
// uploading receipt files and creating short-lived signed download URLs.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"tasabot/core/logger"
)

// Config carries object storage connection settings.
type Config struct {
	// BaseURL is the storage API root, e.g. https://xyz.supabase.co/storage/v1.
	BaseURL string `yaml:"base_url" envconfig:"STORAGE_BASE_URL"`
	// ServiceKey authenticates server-side requests.
	ServiceKey string `yaml:"service_key" envconfig:"STORAGE_SERVICE_KEY"`
	// Bucket is the receipts bucket name.
	Bucket string `yaml:"bucket" envconfig:"STORAGE_BUCKET"`
}

// Client talks to one bucket of the storage API.
type Client struct {
	baseURL string
	key     string
	bucket  string
	http    *http.Client
}

// New builds a Client. A nil httpClient falls back to a 30s-timeout default.
func New(cfg Config, httpClient *http.Client) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("storage: base_url is required")
	}
	if strings.TrimSpace(cfg.ServiceKey) == "" {
		return nil, fmt.Errorf("storage: service_key is required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		bucket = "receipts"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: base,
		key:     cfg.ServiceKey,
		bucket:  bucket,
		http:    httpClient,
	}, nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string { return c.bucket }

// Upload stores an object under key without overwriting an existing one.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	start := time.Now()
	url := fmt.Sprintf("%s/object/%s/%s", c.baseURL, c.bucket, strings.TrimLeft(key, "/"))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("storage: build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("storage: upload %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := readSnippet(resp.Body)
		logger.STORE.Warn("object upload failed",
			slog.String("event", "upload_failed"),
			slog.String("bucket", c.bucket),
			slog.String("object_key", key),
			slog.Int("http_status", resp.StatusCode),
			slog.String("body", snippet),
		)
		return fmt.Errorf("storage: upload %s: status %d", key, resp.StatusCode)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	logger.STORE.Info("object uploaded",
		slog.String("event", "upload"),
		slog.String("bucket", c.bucket),
		slog.String("object_key", key),
		slog.String("content_type", contentType),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// SignURL creates a signed download URL for key valid for ttl.
func (c *Client) SignURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	url := fmt.Sprintf("%s/object/sign/%s/%s", c.baseURL, c.bucket, strings.TrimLeft(key, "/"))

	payload, err := json.Marshal(map[string]int{"expiresIn": int(ttl.Seconds())})
	if err != nil {
		return "", fmt.Errorf("storage: marshal sign request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("storage: build sign request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage: sign %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("storage: sign %s: status %d", key, resp.StatusCode)
	}

	var out struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("storage: decode sign response: %w", err)
	}
	if out.SignedURL == "" {
		return "", fmt.Errorf("storage: sign %s: empty signed url", key)
	}
	return c.baseURL + "/" + strings.TrimLeft(out.SignedURL, "/"), nil
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return logger.Sanitize(string(b))
}
