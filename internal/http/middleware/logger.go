package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"statementapi/internal/logging"
)

// Logger logs each HTTP request as one structured entry with
// request_id, method, path, status and latency (milliseconds).
// The query string is never logged since it may carry share tokens.
func Logger(log *zap.Logger) fiber.Handler {
	log = log.With(zap.String(logging.FieldComponent, "http"))

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		fields := []zap.Field{
			zap.String(logging.FieldRequestID, RequestIDFrom(c)),
			zap.String("method", c.Method()),
			zap.String(logging.FieldPath, c.Path()),
			zap.Int("status", status),
			zap.Float64("latency", float64(time.Since(start).Microseconds())/1000),
		}
		if u := CurrentUser(c); u != nil {
			fields = append(fields, zap.String(logging.FieldUserID, u.ID))
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("request", append(fields, zap.Error(err))...)
		default:
			log.Info("request", fields...)
		}
		return err
	}
}

// LoggerWithWriter is Logger over a fresh JSON logger writing to w.
func LoggerWithWriter(w io.Writer, level string) fiber.Handler {
	return Logger(logging.New(level, w))
}
