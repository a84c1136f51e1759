// Package main provides the entry point for the convertor relay server: it
// fetches subscription profiles from upstream providers, caches and
// optimizes them, and re-serves them to Surge/Clash clients under a
// capability-token URL scheme (spec §4.J).
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/BppleMan/convertor/internal/config"
	"github.com/BppleMan/convertor/internal/httpapi"
	"github.com/BppleMan/convertor/internal/logging"
	"github.com/BppleMan/convertor/sdk/cache"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
	httpapi.Version = Version
	httpapi.Commit = Commit
	httpapi.BuildDate = BuildDate
}

func main() {
	var configPath string
	var addr string
	flag.StringVar(&configPath, "config", "", "Path to the convertor.toml config file (default: <base-dir>/convertor.toml)")
	flag.StringVar(&addr, "addr", ":8080", "Listen address")
	flag.Parse()

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to get working directory: %v", err)
	}
	if errLoad := config.LoadDotenv(filepath.Join(wd, ".env")); errLoad != nil {
		log.WithError(errLoad).Warn("failed to load .env file")
	}

	if configPath == "" {
		configPath = filepath.Join(config.BaseDir(), "convertor.toml")
	}

	kv := newKVStore()

	cfg, err := loadConfig(configPath, kv)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	log.Infof("convertor Version: %s, Commit: %s, BuiltAt: %s", Version, Commit, BuildDate)
	log.WithField("instance_id", config.InstanceID()).Info("starting convertor-server")

	kvTTL := cacheTTL()
	server := httpapi.NewServer(cfg, kv, kvTTL)

	if watcher, err := config.WatchFile(configPath, server.Reload); err != nil {
		log.WithError(err).Warn("config: hot-reload watcher disabled")
	} else {
		defer watcher.Close()
	}

	httpServer := &http.Server{Addr: addr, Handler: server.Engine()}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			log.Fatalf("failed to bind %s: %v", addr, err)
		}
	case sig := <-sigCh:
		log.WithField("signal", sig).Info("received shutdown signal, draining in-flight requests")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
			os.Exit(1)
		}
	}

	log.Info("convertor-server stopped")
}

// loadConfig loads the on-disk config, falling back to the distributed KV
// document at the fixed key when the file is absent and kv is configured
// (§6 "accepts the same TOML document loaded from a distributed KV ... as a
// fallback").
func loadConfig(path string, kv cache.KVStore) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if !os.IsNotExist(errors.Unwrap(err)) || kv == nil {
		return nil, err
	}
	log.WithField("path", path).Warn("config file not found, falling back to KV")
	return config.LoadFromKV(context.Background(), kv)
}

// newKVStore builds the optional Redis-backed KV tier from REDIS_URL. A nil
// return runs every cache in no-KV, in-process-only mode.
func newKVStore() cache.KVStore {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.WithError(err).Fatal("invalid REDIS_URL")
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis ping failed, continuing in no-KV mode")
		return nil
	}
	return cache.NewRedisKVStore(client, "")
}

// cacheTTL reads CONVERTOR_CACHE_TTL_SECONDS, defaulting to 10 minutes.
func cacheTTL() time.Duration {
	const fallback = 10 * time.Minute
	raw := os.Getenv("CONVERTOR_CACHE_TTL_SECONDS")
	if raw == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		log.WithField("value", raw).Warn("invalid CONVERTOR_CACHE_TTL_SECONDS, using default")
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
