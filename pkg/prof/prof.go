//go:build profile

package prof

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/pprof"
	"os"
	"runtime"
	rpprof "runtime/pprof"
	"sync"

	"github.com/ardnew/typecd/pkg"
)

// ErrCPUProfileActive indicates a CPU profile is already being written.
var ErrCPUProfileActive = errors.New("cpu profile already active")

var (
	cpuMu   sync.Mutex
	cpuFile *os.File
	cpuOn   bool
)

// Enabled reports whether profiling is compiled in.
func Enabled() bool { return true }

// Register adds the pprof handlers to mux. Block and mutex sampling is
// enabled at rate 1 since the daemon is mostly idle.
func Register(mux *http.ServeMux) {
	runtime.SetBlockProfileRate(1)
	runtime.SetMutexProfileFraction(1)

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}

// StartCPU writes a CPU profile to path until [StopCPU].
func StartCPU(path string) error {
	cpuMu.Lock()
	defer cpuMu.Unlock()

	if cpuOn {
		return ErrCPUProfileActive
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("prof: %w", err)
	}
	if err := rpprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("prof: %w", err)
	}
	cpuFile, cpuOn = f, true
	pkg.LogInfo(pkg.ComponentService, "cpu profile started", "path", path)
	return nil
}

// StopCPU ends the CPU profile. It is safe to call when none is active.
func StopCPU() {
	cpuMu.Lock()
	defer cpuMu.Unlock()

	if !cpuOn {
		return
	}
	rpprof.StopCPUProfile()
	if err := cpuFile.Close(); err != nil {
		pkg.LogError(pkg.ComponentService, "cpu profile close failed", "err", err)
	}
	cpuFile, cpuOn = nil, false
}

// WriteGoroutines writes the stacks of every goroutine to w in text form.
func WriteGoroutines(w io.Writer) error {
	return rpprof.Lookup("goroutine").WriteTo(w, 1)
}
