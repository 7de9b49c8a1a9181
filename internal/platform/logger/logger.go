package logger

import (
	"log/slog"
	"os"
)

// New returns the root structured logger. Services receive it through
// functional options and must not construct their own.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
