package safe

import (
	"context"
	"io"

	"github.com/secmon-lab/casewright/pkg/utils/logging"
)

// Close closes closer and logs a failure. nil is a no-op.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Warn("failed to close", "error", err)
	}
}

// Write writes data to w and logs a failure. Used for response bodies where
// the peer may already be gone. nil is a no-op.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Warn("failed to write", "error", err, "size", len(data))
	}
}
