package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/wildscout/wildscout-go/internal/errors"
	"github.com/wildscout/wildscout-go/internal/httpclient"
	"github.com/wildscout/wildscout-go/internal/logging"
)

// Package-level logger shared by the source clients
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "sources.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "sources", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize sources file logger at %s: %v. Service logging disabled.", logFilePath, err)
		logger = logging.NewDiscardLogger("sources", serviceLevelVar)
		closeLogger = func() error { return nil }
	}
}

// CloseLogger closes the shared source log file. Called on shutdown.
func CloseLogger() {
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing sources logger: %v", err)
		}
	}
}

const maxBodyPreviewSize = 200

// truncateBodyPreview truncates response body for logging
func truncateBodyPreview(body string) string {
	if len(body) > maxBodyPreviewSize {
		return body[:maxBodyPreviewSize] + "... (truncated)"
	}
	return body
}

// newSourceError creates a standardized source-fetch error with common fields
func newSourceError(err error, category errors.ErrorCategory, operation string, source Source) error {
	return errors.New(err).
		Component("sources").
		Category(category).
		Context("operation", operation).
		Context("source", string(source)).
		Build()
}

// fetchJSON performs a GET request against a source endpoint and decodes the
// JSON body into result. Errors carry the source tag so the pipeline can log
// which provider degraded. No retries: a failed source simply contributes
// zero records to the current search.
func fetchJSON(ctx context.Context, hc *httpclient.Client, source Source, requestURL string, headers map[string]string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return newSourceError(err, errors.CategoryNetwork, "create_request", source)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(ctx, req)
	if err != nil {
		logger.Warn("Source request failed",
			"source", string(source),
			"url", requestURL,
			"error", err)
		return newSourceError(fmt.Errorf("request failed: %w", err), errors.CategorySourceFetch, "fetch", source)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Debug("Failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return newSourceError(fmt.Errorf("failed to read response body: %w", err), errors.CategorySourceFetch, "read_body", source)
	}

	if resp.StatusCode != http.StatusOK {
		logger.Warn("Source returned non-OK status",
			"source", string(source),
			"status_code", resp.StatusCode,
			"url", requestURL,
			"response_body", truncateBodyPreview(string(body)))
		return errors.Newf("source returned status %d", resp.StatusCode).
			Component("sources").
			Category(errors.CategorySourceFetch).
			Context("source", string(source)).
			Context("status_code", resp.StatusCode).
			Context("url", requestURL).
			Build()
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "json") {
		logger.Warn("Source returned non-JSON response",
			"source", string(source),
			"content_type", contentType,
			"response_preview", truncateBodyPreview(string(body)))
		return errors.Newf("source returned non-JSON response (Content-Type: %s)", contentType).
			Component("sources").
			Category(errors.CategorySourceFetch).
			Context("source", string(source)).
			Context("content_type", contentType).
			Build()
	}

	if err := json.Unmarshal(body, result); err != nil {
		logger.Error("Failed to parse source response",
			"source", string(source),
			"error", err,
			"response_size", len(body),
			"response_preview", truncateBodyPreview(string(body)))
		return newSourceError(fmt.Errorf("failed to parse response: %w", err), errors.CategoryFileParsing, "parse", source)
	}

	return nil
}

// cacheKey builds a per-query cache key with enough precision that nearby
// searches share cached results without colliding across radii.
func cacheKey(source Source, lat, lon, radiusKm float64) string {
	return fmt.Sprintf("%s:%.4f:%.4f:%.1f", source, lat, lon, radiusKm)
}
