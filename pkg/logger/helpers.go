package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogRequest logs HTTP request information
func LogRequest(method, url string, statusCode int, durationMs float64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode >= 500:
		GetLogger().ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		GetLogger().WarnWithFields("HTTP request client error", fields)
	default:
		GetLogger().DebugWithFields("HTTP request completed", fields)
	}
}

// LogPage logs one page of a paginated feed fetch
func LogPage(actor string, page, items int, cursor string) {
	GetLogger().InfoWithFields("Feed page fetched", map[string]interface{}{
		"actor":  actor,
		"page":   page,
		"items":  items,
		"cursor": cursor,
	})
}

// LogBuildSummary logs the outcome of a full archive build
func LogBuildSummary(handle string, posts, months int, outputDir string) {
	GetLogger().InfoWithFields("Archive build completed", map[string]interface{}{
		"handle":     handle,
		"posts":      posts,
		"months":     months,
		"output_dir": outputDir,
	})
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string) {}
func (n *nopLogger) Info(msg string)  {}
func (n *nopLogger) Warn(msg string)  {}
func (n *nopLogger) Error(msg string) {}
func (n *nopLogger) Fatal(msg string) {}

func (n *nopLogger) WithField(key string, value interface{}) Logger  { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger { return n }
func (n *nopLogger) WithError(err error) Logger                      { return n }

func (n *nopLogger) WithContext(ctx context.Context) Logger { return n }

func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}

func (n *nopLogger) GetZerolog() *zerolog.Logger { return nil }
