package signalhandler

import (
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
)

var (
	mu    sync.Mutex
	hooks []func()
)

// OnShutdown registers a cleanup function to run when the process
// receives SIGINT or SIGTERM. Hooks run in registration order.
func OnShutdown(hook func()) {
	mu.Lock()
	defer mu.Unlock()
	hooks = append(hooks, hook)
}

// SetupHandler installs the signal handler. Registered shutdown hooks
// run before the process exits so the exiftool pool and cache database
// are released cleanly.
func SetupHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		mu.Lock()
		pending := make([]func(), len(hooks))
		copy(pending, hooks)
		mu.Unlock()

		for _, hook := range pending {
			hook()
		}
		os.Exit(0)
	}()
}

// GetOptimalProcs returns the worker count used for exiftool instances
// and capture-time readers. Subprocess-heavy work gains little beyond
// three quarters of the CPUs.
func GetOptimalProcs() int {
	numCPU := runtime.NumCPU()

	maxProcs := (numCPU * 3) / 4
	if maxProcs < 1 {
		maxProcs = 1
	}

	return maxProcs
}
