package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	atexitMutex    sync.Mutex
	atexitHandlers []func()
)

// SignalContext returns a context that's cancelled when the process receives a terminating
// signal. Any functions registered with AtExit are run before it's cancelled; a second
// signal exits the process immediately.
func SignalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-ch:
			log.Info("Received signal %s", sig)
			go func() {
				sig := <-ch
				log.Warning("Received second signal %s, aborting", sig)
				exit(sig)
			}()
			RunExitHandlers()
			cancel()
		case <-ctx.Done():
			signal.Stop(ch)
		}
	}()
	return ctx, cancel
}

// AtExit registers a function to be run when the process is killed by a signal.
// Note that this is best-effort; we cannot guarantee that there are not other ways of exiting that
// bypass any mechanism we use here.
func AtExit(f func()) {
	atexitMutex.Lock()
	defer atexitMutex.Unlock()
	atexitHandlers = append(atexitHandlers, f)
}

// RunExitHandlers runs every function registered with AtExit, most recent first, and forgets them.
func RunExitHandlers() {
	atexitMutex.Lock()
	handlers := atexitHandlers
	atexitHandlers = nil
	atexitMutex.Unlock()
	for i := len(handlers) - 1; i >= 0; i-- {
		handlers[i]()
	}
}

// exit kills the process with an exit code suitable for the given signal.
func exit(sig os.Signal) {
	if s, ok := sig.(syscall.Signal); ok {
		os.Exit(128 + int(s))
	}
	os.Exit(1)
}
