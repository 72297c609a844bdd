// Package prof exposes runtime profiles of the typecd daemon.
//
// Profiling is compiled in only with the "profile" build tag:
//
//	go build -tags profile ./cmd/typecd
//
// Without the tag every function is a no-op and [Enabled] reports false,
// so call sites stay in place in production builds.
//
// # HTTP Profiling
//
// [Register] adds the [net/http/pprof] handlers under /debug/pprof/ to the
// mux that serves metrics:
//
//	mux := http.NewServeMux()
//	mux.Handle("/metrics", m.Handler())
//	prof.Register(mux)
//
// # CPU Profiling
//
// A CPU profile covers the lifetime of the daemon:
//
//	if err := prof.StartCPU("typecd.cpu.prof"); err != nil {
//	    return err
//	}
//	defer prof.StopCPU()
//
// Starting a second CPU profile returns [ErrCPUProfileActive].
package prof
