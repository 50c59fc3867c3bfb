package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000"
	lcadapter "github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/adapters/lifecycle"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/metrics"
)

var metricsAddr string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow external changes of the record file",
	Long: `Reloads the record set whenever the record file changes outside this
process and prints one line per change. With --metrics-addr, the engine
counters are served on /metrics in the Prometheus format.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		sink := metrics.New(cfg.MetricsNamespace, reg)
		svc := openService(portal.WithMetrics(sink))

		if metricsAddr != "" {
			srv := &http.Server{Addr: metricsAddr, Handler: metricsMux(reg), ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					slog.Error("metrics server failed", "error", err)
				}
			}()
			defer srv.Shutdown(context.Background())
			slog.Info("serving metrics", "addr", metricsAddr)
		}

		events, err := svc.Watch(ctx)
		if err != nil {
			fatal("Failed to watch records", err)
		}

		source := lcadapter.NewSource(events)
		if err := source.Start(ctx); err != nil {
			fatal("Failed to start event source", err)
		}

		slog.Info("watching records", "uri", cfg.URI)
		for e := range source.Events() {
			fmt.Printf("%s %s (%d clients)\n", time.Now().Format(time.TimeOnly), e, len(svc.List()))
		}
	},
}

func metricsMux(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	return mux
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
}
