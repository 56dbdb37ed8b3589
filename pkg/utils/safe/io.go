// Package safe runs io cleanup whose error has nowhere to go but the log.
package safe

import (
	"context"
	"fmt"
	"io"

	"github.com/secmon-lab/tablero/pkg/utils/logging"
)

// Close closes c and logs a failure. A nil closer is ignored.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("close failed", "type", typeName(c), "error", err)
	}
}

// Copy streams src into dst, typically a response body that is already
// committed, and logs a short write.
func Copy(ctx context.Context, dst io.Writer, src io.Reader) {
	n, err := io.Copy(dst, src)
	if err != nil {
		logging.From(ctx).Warn("copy failed", "written", n, "error", err)
	}
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
