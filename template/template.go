// Package template resolves {{name}} placeholders in declarative type
// implementations against a resolved property bag.
//
// A string that is exactly one placeholder is replaced by the bag value
// itself, so "{{w}}" with w=42 yields the number 42. Placeholders inside
// longer strings are interpolated textually. A placeholder with no bag
// entry is left as written and reported as a miss.
package template

import (
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/teranos/devize/errors"
	"github.com/teranos/devize/logger"
	"github.com/teranos/devize/spec"
	"go.uber.org/zap"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"

	// DefaultCacheSize bounds the parsed-string cache.
	DefaultCacheSize = 512
)

// Miss describes a placeholder that had no bag entry.
type Miss struct {
	Placeholder string // the literal token, e.g. "{{w}}"
	Name        string // the property name, e.g. "w"
	Path        string // location in the template, e.g. "children[1].fill"
}

// Resolver substitutes placeholders. It is safe for concurrent use.
type Resolver struct {
	cache      *lru.Cache[string, []segment]
	log        *zap.SugaredLogger
	onMiss     func(Miss)
	warnOnMiss bool
}

// Option configures a Resolver.
type Option func(*resolverConfig)

type resolverConfig struct {
	cacheSize  int
	log        *zap.SugaredLogger
	onMiss     func(Miss)
	warnOnMiss bool
}

// WithLogger sets the resolver logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *resolverConfig) { c.log = l }
}

// WithCacheSize sets the number of parsed strings kept.
func WithCacheSize(n int) Option {
	return func(c *resolverConfig) { c.cacheSize = n }
}

// OnMiss registers a callback invoked for every unresolved placeholder.
func OnMiss(fn func(Miss)) Option {
	return func(c *resolverConfig) { c.onMiss = fn }
}

// WithWarnOnMiss logs misses at warn level (true) or debug level (false).
func WithWarnOnMiss(warn bool) Option {
	return func(c *resolverConfig) { c.warnOnMiss = warn }
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	cfg := resolverConfig{cacheSize: DefaultCacheSize, warnOnMiss: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cacheSize <= 0 {
		cfg.cacheSize = DefaultCacheSize
	}

	cache, err := lru.New[string, []segment](cfg.cacheSize)
	if err != nil {
		// only fails for non-positive sizes, excluded above
		panic(err)
	}

	return &Resolver{
		cache:      cache,
		log:        logger.OrDefault(cfg.log, "template"),
		onMiss:     cfg.onMiss,
		warnOnMiss: cfg.warnOnMiss,
	}
}

// Resolve returns a copy of tmpl with every placeholder replaced from bag
// and every function field replaced by its return value.
func (r *Resolver) Resolve(tmpl any, bag spec.Bag) (any, error) {
	return r.resolve(tmpl, bag, "")
}

func (r *Resolver) resolve(v any, bag spec.Bag, path string) (any, error) {
	if fn, ok := spec.AsFunc(v); ok {
		out, err := fn(bag)
		if err != nil {
			return nil, errors.Wrapf(errors.Mark(err, errors.ErrImplementation), "template field %s", displayPath(path))
		}
		return out, nil
	}

	switch t := v.(type) {
	case string:
		return r.resolveString(t, bag, path), nil
	case spec.Spec:
		out, err := r.resolveMap(t, bag, path)
		if err != nil {
			return nil, err
		}
		return spec.Spec(out), nil
	case map[string]any:
		return r.resolveMap(t, bag, path)
	case spec.Bag:
		out, err := r.resolveMap(t, bag, path)
		if err != nil {
			return nil, err
		}
		return spec.Bag(out), nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			resolved, err := r.resolve(item, bag, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	case []spec.Spec:
		out := make([]any, len(t))
		for i, item := range t {
			resolved, err := r.resolve(item, bag, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	case []string:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = r.resolveString(item, bag, indexPath(path, i))
		}
		return out, nil
	}
	return v, nil
}

func (r *Resolver) resolveMap(m map[string]any, bag spec.Bag, path string) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, item := range m {
		resolved, err := r.resolve(item, bag, keyPath(path, k))
		if err != nil {
			return nil, err
		}
		out[k] = resolved
	}
	return out, nil
}

func (r *Resolver) resolveString(s string, bag spec.Bag, path string) any {
	if !strings.Contains(s, openDelim) {
		return s
	}
	segs := r.parse(s)

	// whole-string placeholder keeps the value's type
	if len(segs) == 1 && segs[0].placeholder {
		if v, ok := bag.Lookup(segs[0].name); ok {
			return v
		}
		r.miss(segs[0], path)
		return s
	}

	var b strings.Builder
	for _, seg := range segs {
		if !seg.placeholder {
			b.WriteString(seg.text)
			continue
		}
		v, ok := bag.Lookup(seg.name)
		if !ok {
			r.miss(seg, path)
			b.WriteString(seg.text)
			continue
		}
		b.WriteString(format(v))
	}
	return b.String()
}

func (r *Resolver) miss(seg segment, path string) {
	m := Miss{Placeholder: seg.text, Name: seg.name, Path: displayPath(path)}
	logf := r.log.Debugw
	if r.warnOnMiss {
		logf = r.log.Warnw
	}
	logf("Placeholder not in bag, kept literally",
		logger.FieldPlaceholder, m.Placeholder,
		logger.FieldTemplatePath, m.Path)
	if r.onMiss != nil {
		r.onMiss(m)
	}
}

// HasPlaceholders reports whether v contains any {{name}} token.
func HasPlaceholders(v any) bool {
	switch t := v.(type) {
	case string:
		for _, seg := range parse(t) {
			if seg.placeholder {
				return true
			}
		}
	case spec.Spec:
		return HasPlaceholders(map[string]any(t))
	case map[string]any:
		for _, item := range t {
			if HasPlaceholders(item) {
				return true
			}
		}
	case []any:
		for _, item := range t {
			if HasPlaceholders(item) {
				return true
			}
		}
	}
	return false
}

// Placeholders returns the distinct property names referenced by v, in
// first-seen order of a depth-first walk with map keys sorted.
func Placeholders(v any) []string {
	seen := map[string]bool{}
	var names []string
	var walk func(any)
	walk = func(v any) {
		switch t := v.(type) {
		case string:
			for _, seg := range parse(t) {
				if seg.placeholder && !seen[seg.name] {
					seen[seg.name] = true
					names = append(names, seg.name)
				}
			}
		case spec.Spec:
			for _, k := range t.Keys() {
				walk(t[k])
			}
		case map[string]any:
			for _, k := range spec.Spec(t).Keys() {
				walk(t[k])
			}
		case []any:
			for _, item := range t {
				walk(item)
			}
		}
	}
	walk(v)
	return names
}

func format(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	}
	if f, ok := spec.ToFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func displayPath(path string) string {
	if path == "" {
		return "$"
	}
	return path
}

func keyPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func indexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}
