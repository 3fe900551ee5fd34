package config

import (
	"log/slog"
	"os"
)

// InitLogger instala um logger JSON como default; svc identifica o binário nos logs.
func InitLogger(level slog.Level, svc string) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	l := slog.New(h).With("svc", svc)
	slog.SetDefault(l) // permite usar slog.Info/Error globalmente
	return l
}
