//go:build unix

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardnew/typecd/pkg"
	"github.com/ardnew/typecd/pkg/prof"
)

// dumpOnSignal writes every goroutine stack to stderr on SIGUSR1 until ctx
// is done. Profile builds only.
func dumpOnSignal(ctx context.Context) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGUSR1)
	defer signal.Stop(sig)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			if err := prof.WriteGoroutines(os.Stderr); err != nil {
				pkg.LogError(componentMain, "goroutine dump failed", "err", err)
			}
		}
	}
}
