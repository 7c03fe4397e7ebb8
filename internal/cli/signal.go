package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Interrupt is a context cancelled by SIGINT or SIGTERM. Unlike
// signal.NotifyContext it remembers which signal arrived, so the command
// can say why it stopped.
type Interrupt struct {
	context.Context
	cancel context.CancelFunc

	mu  sync.Mutex
	sig os.Signal
}

// WithInterrupt derives an Interrupt from parent. Stop must be called to
// release the signal handler.
func WithInterrupt(parent context.Context) *Interrupt {
	ctx, cancel := context.WithCancel(parent)
	in := &Interrupt{Context: ctx, cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			in.trigger(sig)
		case <-ctx.Done():
		}
	}()
	return in
}

func (in *Interrupt) trigger(sig os.Signal) {
	in.mu.Lock()
	in.sig = sig
	in.mu.Unlock()
	in.cancel()
}

// Stop cancels the context and releases the signal handler.
func (in *Interrupt) Stop() {
	in.cancel()
}

// Signal returns the signal that cancelled the context, or nil.
func (in *Interrupt) Signal() os.Signal {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.sig
}

// Annotate prefixes err with the received signal when there was one.
func (in *Interrupt) Annotate(err error) error {
	sig := in.Signal()
	if err == nil || sig == nil {
		return err
	}
	return fmt.Errorf("interrupted by %s: %w", signalName(sig), err)
}

func signalName(sig os.Signal) string {
	switch sig {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return sig.String()
	}
}
