package fsextender

import (
	"io"
	"log/slog"
	"os"

	"github.com/n3okill/fs-extender-sub001/internal/errcode"
)

// NewTextLogger returns a human-readable logger for WithLogger.
// If w is nil, logs go to stderr.
func NewTextLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger returns a logger that writes one JSON object per record.
func NewJSONLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// logRetry records one retry decision with consistent field names.
func (f *FS) logRetry(op errcode.Op, path string, attempt int, err error) {
	f.log.Debug("retrying",
		"op", op.String(),
		"path", path,
		"attempt", attempt,
		"code", string(errcode.Of(err)),
	)
}
