// Command goteller runs the terminal banking simulator on top of the
// goTeller engine.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/redis/go-redis/v9"

	goTeller "github.com/MrEthical07/goTeller"
	"github.com/MrEthical07/goTeller/internal/console"
	"github.com/MrEthical07/goTeller/metrics/export/prometheus"
	"github.com/MrEthical07/goTeller/store/jsonfile"
	"github.com/MrEthical07/goTeller/store/sqlite"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to a TOML config file")
		writeConfig = flag.String("write-config", "", "write the effective config to this path and exit")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address")
		redisAddr   = flag.String("redis-addr", "", "keep sessions in Redis at this address")
	)
	flag.Parse()

	fc, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("goteller: %v", err)
	}
	if *metricsAddr != "" {
		fc.Metrics.Addr = *metricsAddr
	}
	if *redisAddr != "" {
		fc.Session.RedisAddr = *redisAddr
	}
	if *writeConfig != "" {
		if err := saveConfig(*writeConfig, fc); err != nil {
			log.Fatalf("goteller: write config: %v", err)
		}
		return
	}

	cfg, err := fc.engineConfig()
	if err != nil {
		log.Fatalf("goteller: invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, fc, cfg); err != nil {
		log.Fatalf("goteller: %v", err)
	}
}

func run(ctx context.Context, fc fileConfig, cfg goTeller.Config) error {
	storage, closeStorage, err := openStorage(fc.Storage)
	if err != nil {
		return err
	}
	defer closeStorage()

	if fc.Storage.Seed {
		if seeded, err := seedDemo(ctx, storage); err != nil {
			return err
		} else if seeded {
			log.Printf("goteller: seeded demo accounts ACC-001 and ACC-002")
		}
	}

	builder := goTeller.New().WithConfig(cfg).WithStorage(storage)

	if fc.Session.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: fc.Session.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		builder = builder.WithRedis(rdb)
	}

	if fc.Audit.Enabled {
		w := io.Writer(os.Stderr)
		if fc.Audit.Path != "" {
			f, err := os.OpenFile(fc.Audit.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		builder = builder.WithAuditSink(goTeller.NewJSONWriterSink(w))
	}

	engine, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	defer engine.Close()

	if fc.Metrics.Addr != "" {
		srv := serveMetrics(fc.Metrics.Addr, engine)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	return console.New(engine, os.Stdin, os.Stdout).Run(ctx)
}

func openStorage(s storageSection) (goTeller.Storage, func(), error) {
	switch s.Driver {
	case "sqlite":
		st, err := sqlite.Open(s.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	default:
		st, err := jsonfile.Open(s.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil
	}
}

func serveMetrics(addr string, engine *goTeller.Engine) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", prometheus.NewPrometheusExporter(engine).Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("goteller: metrics server: %v", err)
		}
	}()
	return srv
}
