// Command bench runs a synthetic workload against the cache and exposes
// optional pprof/Prometheus endpoints. It is the thin host side of the
// library: it only constructs a cache instance and wires it up.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jabbercat/lrucache/cache"
	pmet "github.com/jabbercat/lrucache/metrics/prom"
)

type benchFlags struct {
	maxSize  int
	workers  int
	duration time.Duration
	readPct  int

	keys    int
	zipfS   float64
	zipfV   float64
	seed    int64
	preload int

	pprofAddr   string
	metricsAddr string
	verbose     bool
}

func main() {
	var f benchFlags

	root := &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic read/write workload against the in-memory cache",
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(f)
		},
		SilenceUsage: true,
	}

	fl := root.Flags()
	fl.IntVar(&f.maxSize, "max-size", 100_000, "cache bound (entries); -1 = unbounded")
	fl.IntVar(&f.workers, "workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
	fl.DurationVar(&f.duration, "duration", 10*time.Second, "benchmark duration")
	fl.IntVar(&f.readPct, "reads", 80, "read percentage [0..100]")
	fl.IntVar(&f.keys, "keys", 1_000_000, "keyspace size")
	fl.Float64Var(&f.zipfS, "zipf-s", 1.1, "Zipf s > 1 (skew)")
	fl.Float64Var(&f.zipfV, "zipf-v", 1.0, "Zipf v")
	fl.Int64Var(&f.seed, "seed", time.Now().UnixNano(), "random seed")
	fl.IntVar(&f.preload, "preload", 0, "preload entries (0 = max-size/2)")
	fl.StringVar(&f.pprofAddr, "pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
	fl.StringVar(&f.metricsAddr, "http", ":8080", "serve Prometheus metrics at addr")
	fl.BoolVar(&f.verbose, "verbose", false, "debug logging (includes per-eviction events)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(f benchFlags) error {
	log := newLogger(f.verbose)

	// ---- pprof server (on DefaultServeMux) ----
	if f.pprofAddr != "" {
		go func() {
			log.Info().Str("addr", f.pprofAddr).Msg("pprof: serving")
			if err := http.ListenAndServe(f.pprofAddr, nil); err != nil {
				log.Error().Err(err).Msg("pprof server stopped")
			}
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "lrucache", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Info().Str("addr", f.metricsAddr).Msg("metrics: serving")
		if err := http.ListenAndServe(f.metricsAddr, nil); err != nil {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	// ---- Build cache ----
	opt := cache.Options[string, string]{
		MaxSize: f.maxSize,
		Metrics: metrics,
	}
	if f.verbose {
		opt.Logger = &log
	}
	c, err := cache.NewMemory[string, string](opt)
	if err != nil {
		return fmt.Errorf("build cache: %w", err)
	}

	// ---- Preload half the bound to get a realistic hit-rate ----
	ctx := context.Background()
	pl := f.preload
	if pl == 0 && f.maxSize > 0 {
		pl = f.maxSize / 2
	}
	for i := 0; i < pl; i++ {
		k := "k:" + strconv.Itoa(i)
		_ = c.Store(ctx, k, "v"+strconv.Itoa(i))
	}

	workers := f.workers
	if workers <= 0 {
		workers = 1
	}
	keysMax := uint64(f.keys - 1)

	// ---- Load generation ----
	var reads, writes, hits, misses, total uint64
	runCtx, cancel := context.WithTimeout(ctx, f.duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(f.seed + int64(id)*9973))
			localZipf := rand.NewZipf(localR, f.zipfS, f.zipfV, keysMax)

			keyByZipf := func() string {
				return "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
			}

			for {
				select {
				case <-runCtx.Done():
					return
				default:
				}

				atomic.AddUint64(&total, 1)
				if int(localR.Int31n(100)) < f.readPct {
					atomic.AddUint64(&reads, 1)
					if _, err := c.Fetch(ctx, keyByZipf()); err == nil {
						atomic.AddUint64(&hits, 1)
					} else {
						atomic.AddUint64(&misses, 1)
					}
				} else {
					atomic.AddUint64(&writes, 1)
					k := keyByZipf()
					_ = c.Store(ctx, k, "v"+strconv.Itoa(localR.Int()))
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	ops := atomic.LoadUint64(&total)
	readsN := atomic.LoadUint64(&reads)
	writesN := atomic.LoadUint64(&writes)
	hitsN := atomic.LoadUint64(&hits)
	missesN := atomic.LoadUint64(&misses)

	hitRate := 0.0
	if readsN > 0 {
		hitRate = float64(hitsN) / float64(readsN) * 100
	}

	log.Info().
		Int("max_size", f.maxSize).
		Int("workers", workers).
		Int("keys", f.keys).
		Dur("elapsed", elapsed).
		Int64("seed", f.seed).
		Msg("workload finished")
	log.Info().
		Uint64("ops", ops).
		Float64("ops_per_sec", float64(ops)/elapsed.Seconds()).
		Uint64("reads", readsN).
		Uint64("writes", writesN).
		Msg("throughput")
	log.Info().
		Uint64("hits", hitsN).
		Uint64("misses", missesN).
		Float64("hit_rate_pct", hitRate).
		Int("len", c.Len()).
		Msg("cache stats")
	return nil
}

// newLogger builds a console-writer zerolog logger for the bench output.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
