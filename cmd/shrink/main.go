// Command shrink makes images smaller, optionally to a byte budget.
//
// Usage:
//
//	shrink [flags] <file|folder>
//	shrink interactive
//	shrink inspect <file>
//
// Examples:
//
//	shrink photo.jpg
//	shrink -t 200 -f webp photo.png
//	shrink -t 300 -w 1920 photos/
//	shrink -a 16:9 -q 80 -o banner.jpg photo.jpg
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

const version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
