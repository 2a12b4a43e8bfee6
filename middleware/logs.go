package middleware

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDHeader carries the request id in and out of the service.
const RequestIDHeader = "X-Request-ID"

// LogConfig holds configuration for the logging middleware
type LogConfig struct {
	Logger *zap.Logger
	// Include request body in logs
	IncludeBody bool
	// Only log requests that failed or returned status >= 400
	ErrorsOnly bool
	// Skip logging for specific paths
	SkipPaths []string
}

// LogData contains all the information that will be logged
type LogData struct {
	Timestamp     time.Time
	Method        string
	Path          string
	URL           string
	Status        int
	Latency       time.Duration
	IP            string
	UserAgent     string
	RequestID     string
	RequestBody   interface{}
	Error         string
	Subject       string
	ContentLength int64
}

// MarshalLogObject lets zap encode LogData as structured fields.
func (d LogData) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddTime("timestamp", d.Timestamp)
	enc.AddString("method", d.Method)
	enc.AddString("path", d.Path)
	enc.AddString("url", d.URL)
	enc.AddInt("status", d.Status)
	enc.AddDuration("latency", d.Latency)
	enc.AddString("ip", d.IP)
	enc.AddString("user_agent", d.UserAgent)
	enc.AddString("request_id", d.RequestID)
	enc.AddInt64("content_length", d.ContentLength)
	if d.Subject != "" {
		enc.AddString("subject", d.Subject)
	}
	if d.Error != "" {
		enc.AddString("error", d.Error)
	}
	if d.RequestBody != nil {
		return enc.AddReflected("request_body", d.RequestBody)
	}
	return nil
}

// DefaultLogConfig returns a default configuration for the logging middleware
func DefaultLogConfig(logger *zap.Logger) LogConfig {
	return LogConfig{
		Logger:    logger,
		SkipPaths: []string{"/health", "/metrics", "/static"},
	}
}

// RequestID reuses the caller's X-Request-ID or generates one, and echoes it
// on the response.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals("request_id", id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}

// LoggingMiddleware creates a new logging middleware with the given configuration
func LoggingMiddleware(cfg LogConfig) fiber.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *fiber.Ctx) error {
		if skip[c.Path()] {
			return c.Next()
		}
		start := time.Now()

		var requestBody interface{}
		if cfg.IncludeBody && c.Method() != fiber.MethodGet {
			if body := c.Body(); len(body) > 0 {
				var jsonData interface{}
				if err := json.Unmarshal(body, &jsonData); err == nil {
					requestBody = jsonData
				} else {
					requestBody = string(body)
				}
			}
		}

		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			// the error handler has not run yet, so derive the final status here
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		if cfg.ErrorsOnly && err == nil && status < 400 {
			return nil
		}

		data := LogData{
			Timestamp:     start,
			Method:        c.Method(),
			Path:          c.Path(),
			URL:           c.OriginalURL(),
			Status:        status,
			Latency:       time.Since(start),
			IP:            c.IP(),
			UserAgent:     c.Get(fiber.HeaderUserAgent),
			RequestID:     requestIDOf(c),
			RequestBody:   requestBody,
			ContentLength: int64(len(c.Response().Body())),
		}
		if subject, ok := c.Locals("subject").(string); ok {
			data.Subject = subject
		}
		if err != nil {
			data.Error = err.Error()
		}

		switch {
		case status >= 500:
			cfg.Logger.Error("request", zap.Object("http", data))
		case status >= 400:
			cfg.Logger.Warn("request", zap.Object("http", data))
		default:
			cfg.Logger.Info("request", zap.Object("http", data))
		}
		return err
	}
}

// RequestLogger creates a middleware that logs detailed request information
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return LoggingMiddleware(DefaultLogConfig(logger))
}

// ErrorLogger creates a middleware that only logs errors
func ErrorLogger(logger *zap.Logger) fiber.Handler {
	cfg := DefaultLogConfig(logger)
	cfg.ErrorsOnly = true
	return LoggingMiddleware(cfg)
}

func requestIDOf(c *fiber.Ctx) string {
	if id, ok := c.Locals("request_id").(string); ok {
		return id
	}
	return c.Get(RequestIDHeader)
}
