package engine

import (
	"github.com/teranos/devize/am"
	"github.com/teranos/devize/registry"
	"github.com/teranos/devize/template"
	"go.uber.org/zap"
)

type engineConfig struct {
	reg        *registry.Registry
	templates  *template.Resolver
	surface    Surface
	maxDepth   int
	cacheSize  int
	warnOnMiss bool
	onMiss     func(template.Miss)
	verbosity  int
	log        *zap.SugaredLogger
}

// Option configures an Engine.
type Option func(*engineConfig)

// WithRegistry resolves against reg instead of a fresh registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(c *engineConfig) { c.reg = reg }
}

// WithLogger sets the engine logger. Registry, template and define loggers
// are named children of it.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *engineConfig) { c.log = l }
}

// WithVerbosity sets the -v count that decides which output categories
// (resolved bags, decomposition steps, timing) the engine logs. It
// defaults to the verbosity the global logger was initialised with.
func WithVerbosity(n int) Option {
	return func(c *engineConfig) { c.verbosity = n }
}

// WithMaxDepth sets the decomposition depth limit.
func WithMaxDepth(n int) Option {
	return func(c *engineConfig) { c.maxDepth = n }
}

// WithSurface sets the default surface top-level nodes are attached to.
func WithSurface(s Surface) Option {
	return func(c *engineConfig) { c.surface = s }
}

// WithTemplateResolver replaces the template resolver.
func WithTemplateResolver(r *template.Resolver) Option {
	return func(c *engineConfig) { c.templates = r }
}

// OnTemplateMiss registers a callback for unresolved placeholders.
func OnTemplateMiss(fn func(template.Miss)) Option {
	return func(c *engineConfig) { c.onMiss = fn }
}

// WithConfig applies the engine section of cfg.
func WithConfig(cfg *am.Config) Option {
	return func(c *engineConfig) {
		if cfg == nil {
			return
		}
		c.maxDepth = cfg.GetMaxDepth()
		c.cacheSize = cfg.Engine.TemplateCacheSize
		c.warnOnMiss = cfg.Engine.WarnOnTemplateMiss
	}
}

type callConfig struct {
	surface Surface
}

// CallOption configures a single Resolve call.
type CallOption func(*callConfig)

// Into attaches the call's top-level nodes to s.
func Into(s Surface) CallOption {
	return func(c *callConfig) { c.surface = s }
}
