package commands

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/teranos/devize/am"
	"github.com/teranos/devize/display"
	"github.com/teranos/devize/engine"
	"github.com/teranos/devize/errors"
	"github.com/teranos/devize/library"
	"github.com/teranos/devize/logger"
	"github.com/teranos/devize/render/svg"
	"github.com/teranos/devize/spec"
	"github.com/teranos/devize/surface"
	"github.com/teranos/devize/sym"
	"golang.org/x/time/rate"
)

// FormatSVG paints the resolved primitives.
const FormatSVG = "svg"

// DefaultWatchRate caps re-renders per second in watch mode.
const DefaultWatchRate = 2.0

// RenderCmd resolves a spec document and paints or prints the result.
var RenderCmd = &cobra.Command{
	Use:   "render <spec-file>",
	Short: sym.Terminal + " Resolve a spec document and paint it",
	Long: sym.Terminal + ` render — Resolve a spec document into primitives

The document holds one spec, a sequence of specs, or (TOML) a "specs" array.
Types come from define specs in libraries given with -l or library.paths.

Formats:
  svg   paint primitives with the reference SVG painter (default)
  json  print primitive nodes and data-only results
  yaml  same as json, as YAML

Examples:
  devize render chart.yaml -l lib/ -o chart.svg
  devize render chart.yaml --format json
  devize render chart.yaml -o chart.svg --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	addLibraryFlag(RenderCmd)
	RenderCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
	RenderCmd.Flags().StringP("format", "f", FormatSVG, "Output format: svg, json, yaml")
	RenderCmd.Flags().Float64("width", 0, "Canvas width (overrides render.width)")
	RenderCmd.Flags().Float64("height", 0, "Canvas height (overrides render.height)")
	RenderCmd.Flags().Bool("watch", false, "Re-render when the spec or a library file changes")
	RenderCmd.Flags().Float64("max-rate", DefaultWatchRate, "With --watch, most re-renders per second")
}

func runRender(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case FormatSVG, display.FormatJSON, display.FormatYAML:
	default:
		return errors.Newf("unsupported format: %s (supported: svg, json, yaml)", format)
	}

	watch, _ := cmd.Flags().GetBool("watch")
	files, err := renderOnce(cmd, args[0], format)
	if !watch {
		return err
	}
	if err != nil {
		logger.Errorw("Render failed", logger.FieldFile, args[0], logger.FieldError, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchAndRender(ctx, cmd, args[0], format, files)
}

// renderOnce builds a fresh session, resolves the document and writes the
// output. It returns the files the render depended on, and the library
// directories new files may appear in.
func renderOnce(cmd *cobra.Command, specPath, format string) ([]string, error) {
	files := []string{specPath}

	canvas := surface.NewCanvas()
	s, err := newSession(cmd, engine.WithSurface(canvas))
	if err != nil {
		return files, err
	}
	files = append(files, s.libraryFiles()...)
	files = append(files, s.libraryDirs()...)

	specs, err := library.LoadSpecs(specPath)
	if err != nil {
		return files, err
	}

	start := time.Now()
	res, err := s.engine.ResolveAll(specs)
	if err != nil {
		return files, errors.Wrap(err, specPath)
	}

	var buf bytes.Buffer
	if format == FormatSVG {
		painter := svg.New(s.cfg.Render)
		if w, _ := cmd.Flags().GetFloat64("width"); w > 0 {
			painter.Width = w
		}
		if h, _ := cmd.Flags().GetFloat64("height"); h > 0 {
			painter.Height = h
		}
		if err := painter.Paint(&buf, canvas.Nodes()); err != nil {
			return files, err
		}
	} else if err := display.Write(&buf, resultDocument(res), format); err != nil {
		return files, err
	}

	if err := writeOutput(cmd, buf.Bytes()); err != nil {
		return files, err
	}
	dumpNodes(canvas)
	logger.Infow("Rendered",
		logger.FieldSymbol, sym.Terminal,
		logger.FieldFile, specPath,
		logger.FieldNodes, canvas.Len(),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return files, nil
}

// dumpNodes logs every attached node at -vvvv.
func dumpNodes(canvas *surface.Canvas) {
	if !logger.ShouldOutput(logger.Verbosity, logger.OutputNodeDump) {
		return
	}
	for _, entry := range canvas.Entries() {
		logger.Debugw("Node",
			logger.FieldSymbol, sym.ForType(entry.Node.Type(), false),
			logger.FieldID, entry.ID,
			logger.FieldNode, spec.Canonical(entry.Node))
	}
}

// resultDocument is the data form of a render: primitive nodes, plus the
// merged output of data-only types when there is any.
func resultDocument(res *engine.Result) map[string]any {
	doc := map[string]any{"nodes": res.Nodes}
	if len(res.Data) > 0 {
		doc["data"] = res.Data
	}
	return doc
}

func writeOutput(cmd *cobra.Command, data []byte) error {
	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(out, data, am.DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", out)
	}
	return nil
}

// activeConfigPath is the highest-precedence config file that exists.
func activeConfigPath() string {
	for _, path := range []string{am.ProjectConfigPath(), am.UserConfigPath()} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func watchAndRender(ctx context.Context, cmd *cobra.Command, specPath, format string, files []string) error {
	for {
		next, err := watchOnce(ctx, cmd, specPath, format, files)
		if err != nil || next == nil {
			return err
		}
		// the library set changed; watch the new files
		files = next
	}
}

// watchOnce re-renders on every change until ctx is done (nil, nil) or a
// render depends on a different set of files (that set, nil).
func watchOnce(ctx context.Context, cmd *cobra.Command, specPath, format string, files []string) ([]string, error) {
	var plain, dirs []string
	for _, p := range files {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			dirs = append(dirs, p)
		} else {
			plain = append(plain, p)
		}
	}

	w, err := am.NewWatcher(plain...)
	if err != nil {
		return nil, err
	}
	defer w.Stop()
	for _, dir := range dirs {
		if err := w.WatchDir(dir, isLibraryFile); err != nil {
			return nil, err
		}
	}
	log := logger.ChildLogger(logger.Logger, logger.FieldFile, specPath)

	changes := make(chan []string, 1)
	w.OnChange(func(changed []string) {
		select {
		case changes <- changed:
		default:
		}
	})
	w.Start()
	log.Infow("Watching for changes", logger.FieldCount, len(plain), "directories", len(dirs))

	if path := activeConfigPath(); path != "" {
		cw, err := am.NewConfigWatcher(path)
		if err != nil {
			logger.Warnw("Config changes will not trigger renders", logger.FieldFile, path, logger.FieldError, err)
		} else {
			cw.OnReload(func(*am.Config) error {
				select {
				case changes <- []string{path}:
				default:
				}
				return nil
			})
			cw.Start()
			am.SetGlobalWatcher(cw)
			defer func() {
				am.SetGlobalWatcher(nil)
				cw.Stop()
			}()
		}
	}

	perSecond, _ := cmd.Flags().GetFloat64("max-rate")
	if perSecond <= 0 {
		perSecond = DefaultWatchRate
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), 1)

	for {
		select {
		case <-ctx.Done():
			return nil, nil
		case changed := <-changes:
			if err := limiter.Wait(ctx); err != nil {
				return nil, nil
			}
			log.Debugw("Re-rendering", "changed", changed)
			next, err := renderOnce(cmd, specPath, format)
			if err != nil {
				log.Errorw("Render failed", logger.FieldError, err)
				continue
			}
			if !sameFiles(next, files) {
				return next, nil
			}
		}
	}
}

func isLibraryFile(path string) bool {
	_, ok := library.FormatFor(path)
	return ok
}

func sameFiles(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
