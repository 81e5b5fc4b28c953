package run

import (
	"context"
	"fmt"
	"os"
)

// Printf writes a formatted line for a task body. Inside a run with log
// prints enabled the line goes to the run logger at info level; otherwise
// it is written to stdout.
func Printf(ctx context.Context, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if trc, ok := TaskRunContextFrom(ctx); ok && trc.LogPrints && trc.Logger != nil {
		trc.Logger.InfoContext(ctx, msg)
		return
	}
	fmt.Fprintln(os.Stdout, msg)
}
