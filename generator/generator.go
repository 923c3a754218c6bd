// Package generator provides a simple, public API to generate Meraki
// Dashboard API client scripts.
package generator

import (
	"context"
	"fmt"

	"github.com/ehabterra/apigen/internal/apidocs"
	"github.com/ehabterra/apigen/internal/engine"
)

type (
	// Config configures a generation run. Zero fields take the defaults.
	Config = engine.EngineConfig
	// Result describes the written script.
	Result = engine.Result
	// Endpoint is one documented API operation.
	Endpoint = apidocs.Endpoint
	// Param is one endpoint parameter.
	Param = apidocs.Param
)

// Generator encapsulates configuration for generation.
type Generator struct {
	config *Config
}

// NewGenerator creates a new Generator. A nil cfg uses the defaults, which
// still need an API key before Generate succeeds.
func NewGenerator(cfg *Config) *Generator {
	if cfg == nil {
		cfg = engine.DefaultEngineConfig()
	}
	return &Generator{config: cfg}
}

// Generate fetches the API description named by the config and writes the
// script.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	cfg := *g.config
	return engine.NewEngine(&cfg).Generate(ctx)
}

// GenerateFromEndpoints writes a script for endpoints without fetching.
func (g *Generator) GenerateFromEndpoints(ctx context.Context, endpoints []Endpoint) (*Result, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("at least one endpoint is required")
	}
	cfg := *g.config
	cfg.Fetcher = apidocs.StaticFetcher(endpoints)
	return engine.NewEngine(&cfg).Generate(ctx)
}
