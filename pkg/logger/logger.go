package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text handler for development, JSON for production
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("error", err.Error()))}
}

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogShowCreated logs when a show is created
func (l *Logger) LogShowCreated(ctx context.Context, showID string, totalSeats int) {
	l.Logger.InfoContext(ctx,
		"Show Created",
		slog.String("show_id", showID),
		slog.Int("total_seats", totalSeats),
	)
}

// LogBookingAttempt logs the terminal outcome of one booking attempt
func (l *Logger) LogBookingAttempt(ctx context.Context, bookingID, showID string, seatCount int, status string) {
	l.Logger.InfoContext(ctx,
		"Booking Attempt",
		slog.String("booking_id", bookingID),
		slog.String("show_id", showID),
		slog.Int("seat_count", seatCount),
		slog.String("status", status),
	)
}

// LogSeatsReclaimed logs one expired hold returned to availability
func (l *Logger) LogSeatsReclaimed(ctx context.Context, bookingID, showID string, seatCount int) {
	l.Logger.InfoContext(ctx,
		"Seats Reclaimed",
		slog.String("booking_id", bookingID),
		slog.String("show_id", showID),
		slog.Int("seat_count", seatCount),
	)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
