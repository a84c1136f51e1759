// Package httpapi is the gin HTTP service described in spec §4.J: routes,
// middleware, and the in-process profile cache tying together
// sdk/urlquery, sdk/providerapi, sdk/parser, sdk/optimizer, and
// sdk/renderer.
package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BppleMan/convertor/internal/config"
	"github.com/BppleMan/convertor/sdk/cache"
	"github.com/BppleMan/convertor/sdk/providerapi"
)

// buildinfo is populated at link time by cmd/convertor-server's main.go,
// mirroring the teacher's Version/Commit/BuildDate package vars.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Server wires the config, the per-provider API clients, and the profile
// pipeline into a gin.Engine. cfg and providers are guarded by mu so Reload
// can swap them in place while requests are in flight (§9 "config hot
// reload"). Handlers call snapshot() separately in each step (provider
// lookup, client defaults, URL building), so a request that overlaps a
// Reload can use the old config for one step and the new one for a later
// step.
type Server struct {
	engine *gin.Engine

	mu         sync.RWMutex
	cfg        *config.Config
	providers  map[string]providerapi.ProviderAPI
	httpClient *http.Client
	kv         cache.KVStore
	kvTTL      time.Duration

	pipeline *pipeline
}

// NewServer builds a Server from cfg, constructing one Provider per entry
// in cfg.Providers. kv is the optional distributed cache tier shared by
// every provider's caches (nil runs every cache in no-KV mode).
func NewServer(cfg *config.Config, kv cache.KVStore, kvTTL time.Duration) *Server {
	s := &Server{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		kv:         kv,
		kvTTL:      kvTTL,
		pipeline:   newPipeline(256),
	}
	s.cfg = cfg
	s.providers = buildProviders(cfg, s.httpClient, kv, kvTTL)

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), RequestID(), AccessLog())
	s.registerRoutes()
	return s
}

func buildProviders(cfg *config.Config, httpClient *http.Client, kv cache.KVStore, kvTTL time.Duration) map[string]providerapi.ProviderAPI {
	providers := make(map[string]providerapi.ProviderAPI, len(cfg.Providers))
	for tag, pc := range cfg.Providers {
		providers[tag] = providerapi.NewProvider(pc.ToProviderAPIConfig(tag), httpClient, kv, kvTTL)
	}
	return providers
}

// Reload swaps in a freshly loaded config, rebuilding one ProviderAPI per
// entry. A value already returned by snapshot() keeps the old config; every
// snapshot() call after the swap returns the new one.
func (s *Server) Reload(cfg *config.Config) {
	providers := buildProviders(cfg, s.httpClient, s.kv, s.kvTTL)
	s.mu.Lock()
	s.cfg = cfg
	s.providers = providers
	s.mu.Unlock()
}

// snapshot returns the config and provider map currently in effect.
func (s *Server) snapshot() (*config.Config, map[string]providerapi.ProviderAPI) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.providers
}

// Engine exposes the underlying gin.Engine, e.g. for httptest in tests and
// for cmd/convertor-server to wrap in its own *http.Server for graceful
// shutdown.
func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/profile/:client/:provider", s.handleProfile)
	s.engine.GET("/raw-profile/:client/:provider", s.handleRawProfile)
	s.engine.GET("/rule-provider/:client/:provider", s.handleRuleProvider)
	s.engine.GET("/sub-logs/:provider", s.handleSubLogs)
	s.engine.GET("/api/subscription/:client/:provider", s.handleSubscriptionBundle)

	actuator := s.engine.Group("/actuator")
	actuator.GET("/healthy", s.handleHealthy)
	actuator.GET("/ready", s.handleReady)
	actuator.GET("/version", s.handleVersion)
}

func (s *Server) handleHealthy(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (s *Server) handleReady(c *gin.Context) {
	_, providers := s.snapshot()
	c.JSON(http.StatusOK, gin.H{"status": "UP", "providers": len(providers)})
}

func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": Version, "commit": Commit, "built_at": BuildDate})
}
