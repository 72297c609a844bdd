package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ardnew/typecd/config"
	"github.com/ardnew/typecd/discovery"
	"github.com/ardnew/typecd/metrics"
	"github.com/ardnew/typecd/pkg"
	"github.com/ardnew/typecd/pkg/prof"
	"github.com/ardnew/typecd/service"
	"github.com/ardnew/typecd/typec"
)

// Component identifier for command line logging.
const componentMain pkg.Component = "main"

type options struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg  *config.Config
	open service.Opener // nil selects the netlink channel
}

// services returns the options every command builds its service with.
func (o *options) services(extra ...service.Option) []service.Option {
	if o.open != nil {
		extra = append(extra, service.WithOpener(o.open))
	}
	return extra
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&options{})
}

func newRootCmdWith(opts *options) *cobra.Command {

	root := &cobra.Command{
		Use:           "typecd",
		Short:         "USB Type-C port role daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return opts.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format (text, json)")

	root.AddCommand(
		newRunCmd(opts),
		newStatusCmd(opts),
		newSwitchCmd(opts),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration and applies the logging flags, which take
// precedence over the file and environment.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}

	level, err := pkg.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	format, err := pkg.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}
	pkg.SetLogLevel(level)
	pkg.SetLogFormat(format)

	o.cfg = cfg
	return nil
}

// =============================================================================
// run
// =============================================================================

func newRunCmd(opts *options) *cobra.Command {
	var cpuProfile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the daemon until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cpuProfile != "" {
				if !prof.Enabled() {
					pkg.LogWarn(componentMain, "built without profiling, ignoring --cpu-profile")
				}
				if err := prof.StartCPU(cpuProfile); err != nil {
					return err
				}
				defer prof.StopCPU()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDaemon(ctx, opts)
		},
	}
	cmd.Flags().StringVar(&cpuProfile, "cpu-profile", "", "write a CPU profile to this file (profile builds only)")
	return cmd
}

func runDaemon(ctx context.Context, opts *options) error {
	cfg := opts.cfg
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	svc, err := service.New(cfg, opts.services(
		service.WithMetrics(m),
		service.WithHubHook(logDockHub),
	)...)
	if err != nil {
		return err
	}
	if err := svc.SetSink(service.LogSink{}); err != nil {
		return err
	}
	defer svc.Close()

	if cfg.MetricsListen != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsListen,
			Handler:           metricsMux(m),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				pkg.LogError(componentMain, "metrics server failed", "addr", cfg.MetricsListen, "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		pkg.LogInfo(componentMain, "serving metrics", "addr", cfg.MetricsListen)
	}

	go dumpOnSignal(ctx)

	pkg.LogInfo(componentMain, "typecd started", "version", version, "typec", cfg.TypecRoot)
	svc.QueryPortStatus(0)

	if err := svc.Run(ctx); err != nil {
		// Device discovery is optional; keep serving role changes.
		pkg.LogWarn(componentMain, "usb device discovery stopped", "err", err)
		<-ctx.Done()
	}
	pkg.LogInfo(componentMain, "typecd stopping")
	return nil
}

// logDockHub reports the internal hub of an attached dock. Hub tuning
// quirks hook in here.
func logDockHub(dev discovery.Device) {
	pkg.LogInfo(componentMain, "dock hub ready",
		"id", dev.ID(),
		"vendor", dev.Vendor,
		"product", dev.Product,
		"node", dev.DevfsPath)
}

func metricsMux(m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	prof.Register(mux)
	return mux
}

// =============================================================================
// status
// =============================================================================

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the status of every port as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := service.New(opts.cfg, opts.services()...)
			if err != nil {
				return err
			}
			snap := svc.Refresh()
			if snap.Status != typec.StatusSuccess {
				return fmt.Errorf("port status: %s", snap.Status)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(newSnapshotView(snap, svc.Devices())); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

// =============================================================================
// switch
// =============================================================================

func newSwitchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "switch PORT KIND VALUE",
		Short: "Change one port role",
		Long: "Change one port role. KIND is power, data or mode.\n" +
			"Power roles are source and sink, data roles host and device,\n" +
			"and modes ufp, dfp and drp.",
		Example: "  typecd switch port0 data host\n  typecd switch port0 mode drp",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := typec.ParseRole(args[1], args[2])
			if err != nil {
				return fmt.Errorf("%w: %w", pkg.ErrInvalidParameter, err)
			}
			svc, err := service.New(opts.cfg, opts.services()...)
			if err != nil {
				return err
			}
			// A mode change is confirmed by the partner re-attach uevent,
			// which only the dispatch loop observes.
			if role.Kind == typec.RoleKindMode {
				if err := svc.SetSink(service.LogSink{}); err != nil {
					return err
				}
				defer svc.ClearSink()
			}
			st := svc.SwitchRole(typec.RoleRequest{PortName: args[0], Role: role})
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", args[0], role, st)

			if ps, ok := svc.Refresh().Port(args[0]); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s power=%s data=%s mode=%s\n", ps.PortName,
					ps.CurrentPowerRole, ps.CurrentDataRole, ps.CurrentMode)
			}
			if st != typec.StatusSuccess {
				return fmt.Errorf("role switch: %s", st)
			}
			return nil
		},
	}
}

// =============================================================================
// version
// =============================================================================

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
