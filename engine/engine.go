// Package engine resolves specifications into trees of primitive nodes.
//
// Each spec moves through Bootstrap, Validate, Decompose, Recurse and
// Terminal. Composite types decompose through their registered
// implementation until only primitive nodes (see spec.Primitives) remain.
// Data-only types stop early and yield a data bag instead of nodes.
package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/teranos/devize/define"
	"github.com/teranos/devize/errors"
	"github.com/teranos/devize/logger"
	"github.com/teranos/devize/registry"
	"github.com/teranos/devize/spec"
	"github.com/teranos/devize/sym"
	"github.com/teranos/devize/template"
	"go.uber.org/zap"
)

// DefaultMaxDepth bounds decomposition when no limit is configured.
const DefaultMaxDepth = 256

// Surface receives top-level primitive nodes as they are produced.
type Surface interface {
	Attach(node spec.Spec)
}

// KeyAs names the result of a data-only spec. Without it the type name
// is used.
const KeyAs = "as"

// Datum is the output of one data-only spec.
type Datum struct {
	Key   string
	Type  string
	Value spec.Bag
}

// Result is the outcome of one Resolve call.
type Result struct {
	// Nodes are the top-level primitive nodes, children resolved.
	Nodes []spec.Spec

	// Data maps each data-only result to its key. A key already taken gets
	// a "#2", "#3", ... suffix in resolution order, so no result is lost.
	Data spec.Bag

	// Datums lists the data-only results in resolution order, including
	// those produced among a primitive's children.
	Datums []Datum

	// Defined names the types registered by define specs, in order.
	Defined []string
}

// Empty reports whether resolution produced neither nodes nor data.
func (r *Result) Empty() bool {
	return r == nil || (len(r.Nodes) == 0 && len(r.Datums) == 0)
}

// Value returns the data-only result stored under key.
func (r *Result) Value(key string) (spec.Bag, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.Data[key].(spec.Bag)
	return v, ok
}

func newResult(out resolved) *Result {
	return &Result{
		Nodes:   out.nodes,
		Data:    keyData(out.data),
		Datums:  out.data,
		Defined: out.defined,
	}
}

// Engine resolves specs against a registry. It keeps no per-call state,
// so one Engine may serve concurrent Resolve calls.
type Engine struct {
	reg       *registry.Registry
	define    *define.Handler
	templates *template.Resolver
	surface   Surface
	maxDepth  int
	verbosity int
	log       *zap.SugaredLogger
}

// New creates an engine. Without WithRegistry it owns a fresh registry.
func New(opts ...Option) *Engine {
	cfg := engineConfig{maxDepth: DefaultMaxDepth, warnOnMiss: true, verbosity: logger.Verbosity}
	for _, opt := range opts {
		opt(&cfg)
	}

	log := logger.OrDefault(cfg.log, "engine")
	if cfg.reg == nil {
		cfg.reg = registry.New(registry.WithLogger(log.Named("registry")))
	}
	if cfg.templates == nil {
		cfg.templates = template.New(
			template.WithLogger(log.Named("template")),
			template.WithCacheSize(cfg.cacheSize),
			template.WithWarnOnMiss(cfg.warnOnMiss),
			template.OnMiss(cfg.onMiss),
		)
	}
	if cfg.maxDepth <= 0 {
		cfg.maxDepth = DefaultMaxDepth
	}

	return &Engine{
		reg:       cfg.reg,
		define:    define.NewHandler(cfg.reg, define.WithLogger(log.Named("define"))),
		templates: cfg.templates,
		surface:   cfg.surface,
		maxDepth:  cfg.maxDepth,
		verbosity: cfg.verbosity,
		log:       log,
	}
}

// Registry returns the registry the engine resolves against.
func (e *Engine) Registry() *registry.Registry {
	return e.reg
}

// MaxDepth returns the decomposition depth limit.
func (e *Engine) MaxDepth() int {
	return e.maxDepth
}

// Bootstrap registers the define type unless something already has.
func (e *Engine) Bootstrap() {
	if e.reg.RegisterIfAbsent(e.define.Descriptor()) {
		e.log.Debugw("Define type registered", logger.FieldSymbol, sym.Bootstrap)
	}
}

// Define registers the type described by a define spec. It is equivalent
// to resolving s, without requiring s["type"] to be set.
func (e *Engine) Define(s spec.Spec) (*registry.Descriptor, error) {
	return e.define.Handle(s)
}

// Resolve expands s until only primitive nodes remain. Top-level nodes are
// attached to the surface given by Into, or else the engine's surface.
func (e *Engine) Resolve(s spec.Spec, opts ...CallOption) (*Result, error) {
	call := callConfig{surface: e.surface}
	for _, opt := range opts {
		opt(&call)
	}

	start := time.Now()
	out, err := e.resolveSpec(s, nil)
	if err != nil {
		return nil, err
	}

	res := newResult(out)
	if call.surface != nil {
		for _, n := range res.Nodes {
			call.surface.Attach(n)
		}
	}

	if logger.ShouldOutput(e.verbosity, logger.OutputTiming) {
		e.log.Debugw("Resolved",
			logger.FieldSymbol, sym.Terminal,
			logger.FieldType, s.Type(),
			logger.FieldNodes, len(res.Nodes),
			logger.FieldCount, len(res.Datums),
			logger.FieldDurationMS, time.Since(start).Milliseconds())
	}
	return res, nil
}

// ResolveAll resolves each spec in order into one result.
func (e *Engine) ResolveAll(specs []spec.Spec, opts ...CallOption) (*Result, error) {
	var all resolved
	for i, s := range specs {
		r, err := e.Resolve(s, opts...)
		if err != nil {
			return nil, errors.Wrapf(err, "spec %d", i)
		}
		all.add(resolved{nodes: r.Nodes, data: r.Datums, defined: r.Defined})
	}
	return newResult(all), nil
}

// Validate runs the Validate state alone and returns the resolved bag.
func (e *Engine) Validate(s spec.Spec) (spec.Bag, error) {
	typeName := s.Type()
	d, ok := e.reg.Lookup(typeName)
	if !ok {
		return nil, errors.NewUnknownTypeError(typeName)
	}
	return bagFor(d, s)
}

// resolved is the output of one state machine run.
type resolved struct {
	nodes   []spec.Spec
	data    []Datum
	defined []string
}

func (r *resolved) add(o resolved) {
	r.nodes = append(r.nodes, o.nodes...)
	r.data = append(r.data, o.data...)
	r.defined = append(r.defined, o.defined...)
}

func (e *Engine) resolveSpec(s spec.Spec, trail []string) (resolved, error) {
	typeName := s.Type()
	if typeName == "" {
		return resolved{}, errors.WithHint(
			errors.Wrapf(errors.ErrUnknownType, "spec has no %q", spec.KeyType),
			"every spec needs a string type key")
	}

	trail = append(trail[:len(trail):len(trail)], typeName)
	if len(trail) > e.maxDepth {
		return resolved{}, e.recursionError(trail)
	}

	// Bootstrap
	if typeName == define.TypeName && !e.reg.Exists(define.TypeName) {
		name, err := e.bootstrap(s)
		if err != nil || name == "" {
			return resolved{}, err
		}
		return resolved{defined: []string{name}}, nil
	}

	// Terminal
	if spec.IsPrimitive(typeName) {
		node, inner, err := e.terminal(s, trail)
		if err != nil {
			return resolved{}, err
		}
		inner.nodes = []spec.Spec{node}
		return inner, nil
	}

	// Validate
	d, ok := e.reg.Lookup(typeName)
	if !ok {
		return resolved{}, errors.NewUnknownTypeError(typeName)
	}
	bag, err := bagFor(d, s)
	if err != nil {
		return resolved{}, err
	}

	if logger.ShouldOutput(e.verbosity, logger.OutputBags) {
		logger.ChildLogger(e.log, logger.FieldType, typeName).Debugw("Resolved bag",
			logger.FieldSymbol, sym.Validate,
			logger.FieldBag, spec.Canonical(bag))
	}

	// Decompose
	if logger.ShouldOutput(e.verbosity, logger.OutputDecomposition) {
		e.log.Debugw("Decomposing",
			logger.FieldSymbol, sym.Decompose,
			logger.FieldType, typeName,
			logger.FieldDepth, len(trail))
	}
	out, err := e.decompose(d, bag, 0)
	if err != nil {
		return resolved{}, err
	}

	if d.DataOnly {
		return dataResult(s, out), nil
	}

	// Recurse
	return e.resolveValue(out, typeName, trail)
}

// bootstrap handles a define spec before define is registered and returns
// the name of the type it defined. A spec defining "define" itself only
// installs the built-in handler.
func (e *Engine) bootstrap(s spec.Spec) (string, error) {
	e.log.Debugw("Bootstrapping define", logger.FieldSymbol, sym.Bootstrap)

	var name string
	if n, _ := s.String(define.KeyName); n != define.TypeName {
		d, err := e.define.Handle(s)
		if err != nil {
			return "", err
		}
		name = d.Name
	}
	e.Bootstrap()
	return name, nil
}

// dataResult wraps the output of a data-only type. Define specs report the
// type they registered instead of data.
func dataResult(s spec.Spec, out any) resolved {
	typeName := s.Type()
	value := asData(out)
	if typeName == define.TypeName {
		name, _ := value.String(define.KeyName)
		if name == "" {
			return resolved{}
		}
		return resolved{defined: []string{name}}
	}
	if value == nil {
		return resolved{}
	}
	key, _ := s.String(KeyAs)
	if key == "" {
		key = typeName
	}
	return resolved{data: []Datum{{Key: key, Type: typeName, Value: value}}}
}

// terminal returns a copy of a primitive node with its children resolved,
// and the data and definitions its children produced.
func (e *Engine) terminal(s spec.Spec, trail []string) (spec.Spec, resolved, error) {
	node := s.Clone()
	raw, hasChildren := s[spec.KeyChildren]
	if !hasChildren || raw == nil {
		return node, resolved{}, nil
	}

	var children resolved
	items, ok := sequence(raw)
	if !ok {
		items = []any{raw}
	}
	for i, item := range items {
		child, isSpec := spec.AsSpec(item)
		if !isSpec {
			return nil, resolved{}, errors.Mark(
				errors.Newf("%s child %d is %T, want a spec", s.Type(), i, item),
				errors.ErrImplementation)
		}
		out, err := e.resolveSpec(child, trail)
		if err != nil {
			return nil, resolved{}, err
		}
		// data specs among children produce no node
		children.add(out)
	}

	list := make([]any, len(children.nodes))
	for i, c := range children.nodes {
		list[i] = c
	}
	node[spec.KeyChildren] = list
	return node, resolved{data: children.data, defined: children.defined}, nil
}

// decompose runs d's implementation. Template implementations of types
// that extend another type are merged over the base's output.
func (e *Engine) decompose(d *registry.Descriptor, bag spec.Bag, extendsDepth int) (any, error) {
	switch impl := d.Implementation.(type) {
	case registry.FuncImpl:
		out, err := impl(bag)
		if err != nil {
			if errors.Is(err, errors.ErrMalformedDefinition) || errors.Is(err, errors.ErrUnknownType) {
				return nil, err
			}
			return nil, errors.Wrapf(errors.Mark(err, errors.ErrImplementation), "type %q", d.Name)
		}
		return out, nil

	case registry.TemplateImpl:
		out, err := e.templates.Resolve(impl.Template, bag)
		if err != nil {
			return nil, errors.Wrapf(err, "type %q", d.Name)
		}
		if d.Extends == "" {
			return out, nil
		}
		if extendsDepth >= e.maxDepth {
			return nil, errors.Wrapf(errors.ErrRecursionLimit, "extension chain of %q", d.Name)
		}
		base, ok := e.reg.Lookup(d.Extends)
		if !ok {
			return nil, errors.Wrapf(errors.NewUnknownTypeError(d.Extends), "base of %q", d.Name)
		}
		baseOut, err := e.decompose(base, bag, extendsDepth+1)
		if err != nil {
			return nil, err
		}
		return define.MergeTemplates(baseOut, out), nil
	}

	return nil, errors.Wrapf(errors.ErrImplementation, "type %q has no implementation", d.Name)
}

// resolveValue recurses into a decomposition output: a spec or a
// sequence of specs.
func (e *Engine) resolveValue(v any, from string, trail []string) (resolved, error) {
	if s, ok := spec.AsSpec(v); ok {
		return e.resolveSpec(s, trail)
	}
	if items, ok := sequence(v); ok {
		var out resolved
		for i, item := range items {
			s, isSpec := spec.AsSpec(item)
			if !isSpec {
				return resolved{}, errors.Wrapf(errors.ErrImplementation,
					"type %q produced %T at index %d, want a spec", from, item, i)
			}
			r, err := e.resolveSpec(s, trail)
			if err != nil {
				return resolved{}, err
			}
			out.add(r)
		}
		return out, nil
	}
	if v == nil {
		return resolved{}, nil
	}
	return resolved{}, errors.WithHint(
		errors.Wrapf(errors.ErrImplementation, "type %q produced %T, want a spec or a sequence of specs", from, v),
		"mark the type dataOnly if it computes values rather than nodes")
}

func (e *Engine) recursionError(trail []string) error {
	shown := trail
	if len(shown) > 12 {
		shown = append([]string{"..."}, shown[len(shown)-12:]...)
	}
	err := errors.Wrapf(errors.ErrRecursionLimit, "depth %d at type %q", len(trail), trail[len(trail)-1])
	err = errors.WithDetailf(err, "trail: %s", strings.Join(shown, " > "))
	return errors.WithHintf(err,
		"a type may decompose into itself without progress; raise engine.max_depth (now %d) only if the nesting is intended",
		e.maxDepth)
}

// bagFor validates s against d and applies defaults. Input keys win.
func bagFor(d *registry.Descriptor, s spec.Spec) (spec.Bag, error) {
	for _, prop := range d.Required {
		if !s.Has(prop) {
			return nil, errors.NewMissingPropertyError(d.Name, prop)
		}
	}
	bag := make(spec.Bag, len(d.Optional)+len(s))
	for k, v := range d.Optional {
		bag[k] = v
	}
	for k, v := range s {
		bag[k] = v
	}
	return bag, nil
}

func asData(v any) spec.Bag {
	switch t := v.(type) {
	case nil:
		return nil
	case spec.Bag:
		return t
	case spec.Spec:
		return t.Bag()
	case map[string]any:
		return spec.Bag(t)
	}
	return spec.Bag{"value": v}
}

// keyData indexes data results by key. Repeated keys are suffixed "#n".
func keyData(items []Datum) spec.Bag {
	if len(items) == 0 {
		return nil
	}
	out := make(spec.Bag, len(items))
	for _, d := range items {
		key := d.Key
		for n := 2; ; n++ {
			if _, taken := out[key]; !taken {
				break
			}
			key = d.Key + "#" + strconv.Itoa(n)
		}
		out[key] = d.Value
	}
	return out
}

func sequence(v any) ([]any, bool) {
	switch seq := v.(type) {
	case []any:
		return seq, true
	case []spec.Spec:
		out := make([]any, len(seq))
		for i, s := range seq {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(seq))
		for i, m := range seq {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}
