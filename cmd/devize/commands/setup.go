package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/teranos/devize/am"
	"github.com/teranos/devize/engine"
	"github.com/teranos/devize/errors"
	"github.com/teranos/devize/library"
	"github.com/teranos/devize/logger"
	"github.com/teranos/devize/transforms"
)

// session is a configured engine with its libraries installed.
type session struct {
	cfg       *am.Config
	engine    *engine.Engine
	libraries []*library.Library
	libPaths  []string
}

// addLibraryFlag registers the repeatable -l/--lib flag.
func addLibraryFlag(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("lib", "l", nil, "Type library file or directory (repeatable, added to library.paths)")
}

// newSession loads configuration, builds an engine and installs the
// built-in transforms and every configured or flagged library.
func newSession(cmd *cobra.Command, opts ...engine.Option) (*session, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	logger.SetTheme(cfg.GetLogTheme())

	paths := append([]string{}, cfg.Library.Paths...)
	if cmd.Flags().Lookup("lib") != nil {
		extra, _ := cmd.Flags().GetStringSlice("lib")
		paths = append(paths, extra...)
	}

	e := engine.New(append([]engine.Option{engine.WithConfig(cfg)}, opts...)...)
	e.Bootstrap()
	if cfg.Library.Builtins {
		transforms.Register(e.Registry())
	}

	s := &session{cfg: cfg, engine: e, libPaths: paths}
	if err := s.install(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) install() error {
	libs, err := library.LoadPaths(s.libPaths)
	if err != nil {
		return err
	}
	for _, lib := range libs {
		if _, err := lib.Install(s.engine); err != nil {
			return err
		}
	}
	s.libraries = libs
	return nil
}

// libraryFiles returns the files behind the installed libraries.
func (s *session) libraryFiles() []string {
	files := make([]string, 0, len(s.libraries))
	for _, lib := range s.libraries {
		if lib.Path != "" {
			files = append(files, lib.Path)
		}
	}
	return files
}

// libraryDirs returns the library paths that are directories.
func (s *session) libraryDirs() []string {
	var dirs []string
	for _, p := range s.libPaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			dirs = append(dirs, p)
		}
	}
	return dirs
}
