package context

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// New returns a context cancelled on SIGINT or SIGTERM.
func New() (context.Context, func()) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
