package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "marketplace-api"

var log = zerolog.New(os.Stdout).With().Timestamp().Logger()

type ctxKey struct{}

// Init configures the global logger: console output in development, JSON otherwise.
func Init(env string, level string) {
	InitWithWriter(env, level, os.Stdout)
}

func InitWithWriter(env string, level string, out io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(parseLevel(level))

	if isDev(env) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	log = zerolog.New(out).With().Timestamp().Str("service", serviceName).Caller().Logger()
}

func isDev(env string) bool {
	switch env {
	case "", "dev", "development":
		return true
	}
	return false
}

// parseLevel accepts zerolog names plus "warning"; anything else is info.
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return zerolog.WarnLevel
	}
	if lvl, err := zerolog.ParseLevel(s); err == nil && s != "" {
		return lvl
	}
	return zerolog.InfoLevel
}

func Get() *zerolog.Logger {
	return &log
}

// WithContext returns the request-scoped logger, or the global one.
func WithContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
			return l
		}
	}
	return &log
}

func NewContext(ctx context.Context, l *zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

func WithRequestID(requestID string) zerolog.Logger {
	return log.With().Str("request_id", requestID).Logger()
}

func WithUserID(l zerolog.Logger, userID string) zerolog.Logger {
	return l.With().Str("user_id", userID).Logger()
}

func Debug() *zerolog.Event { return log.Debug() }

func Info() *zerolog.Event { return log.Info() }

func Warn() *zerolog.Event { return log.Warn() }

func Error() *zerolog.Event { return log.Error() }

// HTTPRecord is one finished request.
type HTTPRecord struct {
	Method    string
	Path      string
	Route     string
	Query     string
	Status    int
	Bytes     int
	Duration  time.Duration
	IP        string
	UserAgent string
	UserID    string
}

// HTTPRequest logs r at error for 5xx, warn for 4xx and info otherwise.
func HTTPRequest(ctx context.Context, r HTTPRecord) {
	l := WithContext(ctx)
	var ev *zerolog.Event
	switch {
	case r.Status >= 500:
		ev = l.Error()
	case r.Status >= 400:
		ev = l.Warn()
	default:
		ev = l.Info()
	}
	ev = ev.Str("method", r.Method).
		Str("path", r.Path).
		Int("status", r.Status).
		Int("bytes", r.Bytes).
		Dur("duration_ms", r.Duration)
	if r.Route != "" {
		ev = ev.Str("route", r.Route)
	}
	if r.Query != "" {
		ev = ev.Str("query", r.Query)
	}
	if r.IP != "" {
		ev = ev.Str("ip", r.IP)
	}
	if r.UserAgent != "" {
		ev = ev.Str("user_agent", r.UserAgent)
	}
	if r.UserID != "" {
		ev = ev.Str("user_id", r.UserID)
	}
	ev.Msg("HTTP")
}

func ServiceStart(name, version, port string) {
	log.Info().Str("version", version).Str("port", port).Msgf("%s started", name)
}

func ServiceStop(name string) {
	log.Info().Msgf("%s stopped", name)
}
