package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aethervault/aether-core/internal/verrors"
)

// Registry owns one sidecar per configured server and the route map
// from prefixed tool name to (server, original tool name).
type Registry struct {
	mu      sync.RWMutex
	log     *slog.Logger
	configs map[string]Config
	servers map[string]*server
}

// NewRegistry builds an empty registry; call Spawn for each configured
// server.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		log:     logger,
		configs: make(map[string]Config),
		servers: make(map[string]*server),
	}
}

// Spawn starts one sidecar and bootstraps it. A bootstrap failure is
// logged and skipped rather than returned, unless the process
// itself failed to start.
func (r *Registry) Spawn(ctx context.Context, cfg Config) error {
	srv, err := spawn(ctx, cfg, r.log)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.configs[cfg.Name] = cfg
	r.servers[cfg.Name] = srv
	r.mu.Unlock()

	if err := bootstrap(srv); err != nil {
		r.log.Warn("mcp sidecar bootstrap failed, skipping", "server", cfg.Name, "error", err)
		srv.setState(StateDead)
		return nil
	}
	return nil
}

// Tools lists every discovered tool's prefixed route name across all
// ready servers.
func (r *Registry) Tools() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for name, srv := range r.servers {
		if srv.getState() != StateReady {
			continue
		}
		for tool := range srv.tools {
			out = append(out, fmt.Sprintf("mcp__%s__%s", name, tool))
		}
	}
	return out
}

// CallTool resolves prefixed to (server, tool), reconnecting at most
// once if the server is marked dead, then invokes it.
func (r *Registry) CallTool(ctx context.Context, prefixed string, args map[string]any) (text string, isError bool, err error) {
	rt, ok := parseRoute(prefixed)
	if !ok {
		return "", false, verrors.McpUnknownTool(prefixed)
	}

	r.mu.RLock()
	srv, ok := r.servers[rt.serverName]
	cfg := r.configs[rt.serverName]
	r.mu.RUnlock()
	if !ok {
		return "", false, verrors.McpUnknownTool(prefixed)
	}
	if _, ok := srv.tools[rt.toolName]; !ok {
		return "", false, verrors.McpUnknownTool(prefixed)
	}

	if srv.getState() == StateDead {
		reconnected, err := r.reconnect(ctx, cfg)
		if err != nil {
			return "", false, verrors.McpServerDead(rt.serverName)
		}
		srv = reconnected
	}

	return callTool(srv, rt.toolName, args)
}

func (r *Registry) reconnect(ctx context.Context, cfg Config) (*server, error) {
	srv, err := spawn(ctx, cfg, r.log)
	if err != nil {
		return nil, err
	}
	if err := bootstrap(srv); err != nil {
		srv.terminate()
		return nil, err
	}
	r.mu.Lock()
	r.servers[cfg.Name] = srv
	r.mu.Unlock()
	return srv, nil
}

// Shutdown kills and waits for every spawned sidecar.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, srv := range r.servers {
		srv.terminate()
	}
}
