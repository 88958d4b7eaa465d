package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arbor-json/arbor"
	"github.com/arbor-json/arbor/memres"
)

// benchMetrics mirrors arx-os-arxos's MonitoringMiddleware: a small set of
// promauto-registered histograms/counters built once and passed around
// rather than reached for through a package global.
type benchMetrics struct {
	parseDuration     prometheus.Histogram
	serializeDuration prometheus.Histogram
	parsedBytes       prometheus.Counter
	serializedBytes   prometheus.Counter
	iterations        prometheus.Counter
}

func newBenchMetrics(reg prometheus.Registerer) *benchMetrics {
	factory := promauto.With(reg)
	return &benchMetrics{
		parseDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "arborfmt_parse_duration_seconds",
			Help:    "Time spent parsing one document.",
			Buckets: prometheus.DefBuckets,
		}),
		serializeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "arborfmt_serialize_duration_seconds",
			Help:    "Time spent serializing one document.",
			Buckets: prometheus.DefBuckets,
		}),
		parsedBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "arborfmt_parsed_bytes_total",
			Help: "Total bytes parsed across all iterations.",
		}),
		serializedBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "arborfmt_serialized_bytes_total",
			Help: "Total bytes serialized across all iterations.",
		}),
		iterations: factory.NewCounter(prometheus.CounterOpts{
			Name: "arborfmt_bench_iterations_total",
			Help: "Total parse+serialize round trips performed.",
		}),
	}
}

func newBenchCmd() *cobra.Command {
	var iterations int
	var listen string

	cmd := &cobra.Command{
		Use:   "bench [file]",
		Short: "Repeatedly parse and serialize a document, reporting timing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(args[0], iterations, listen)
		},
	}

	cmd.Flags().IntVarP(&iterations, "iterations", "n", 1000, "number of parse+serialize round trips")
	cmd.Flags().StringVar(&listen, "listen", "", "if set, serve Prometheus metrics on this address (e.g. :9090) instead of printing a summary")

	return cmd
}

func runBench(path string, iterations int, listen string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	opts := arbor.ParseOptions{
		AllowComments: cfg.AllowComments,
		MaxDepth:      cfg.MaxDepth,
	}

	reg := prometheus.NewRegistry()
	metrics := newBenchMetrics(reg)

	var server *http.Server
	if listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		server = &http.Server{Addr: listen, Handler: mux}
		go func() {
			log.Info("serving metrics", zap.String("addr", listen))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	runOnce := func() (time.Duration, time.Duration, int, error) {
		handle := memres.NewHandle(memres.NewDefault())

		start := time.Now()
		v, err := arbor.Parse(data, handle, opts)
		parseElapsed := time.Since(start)
		if err != nil {
			return 0, 0, 0, err
		}

		start = time.Now()
		out := arbor.Serialize(v, arbor.SerializeOptions{})
		serializeElapsed := time.Since(start)

		return parseElapsed, serializeElapsed, len(out), nil
	}

	var totalParse, totalSerialize time.Duration
	for i := 0; i < iterations; i++ {
		parseElapsed, serializeElapsed, outLen, err := runOnce()
		if err != nil {
			return fmt.Errorf("iteration %d: %w", i, err)
		}

		metrics.parseDuration.Observe(parseElapsed.Seconds())
		metrics.serializeDuration.Observe(serializeElapsed.Seconds())
		metrics.parsedBytes.Add(float64(len(data)))
		metrics.serializedBytes.Add(float64(outLen))
		metrics.iterations.Inc()

		totalParse += parseElapsed
		totalSerialize += serializeElapsed
	}

	if listen == "" {
		fmt.Printf("%d iterations, %d input bytes\n", iterations, len(data))
		fmt.Printf("parse:     total %v, avg %v\n", totalParse, totalParse/time.Duration(iterations))
		fmt.Printf("serialize: total %v, avg %v\n", totalSerialize, totalSerialize/time.Duration(iterations))
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
