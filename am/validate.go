package am

import "github.com/teranos/devize/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Max depth: 0 would reject every composite, negative is meaningless
	if c.Engine.MaxDepth <= 0 {
		return errors.Newf("engine.max_depth must be > 0, got %d", c.Engine.MaxDepth)
	}

	if c.Engine.TemplateCacheSize <= 0 {
		return errors.Newf("engine.template_cache_size must be > 0, got %d", c.Engine.TemplateCacheSize)
	}

	if c.Render.Width <= 0 {
		return errors.Newf("render.width must be > 0, got %g", c.Render.Width)
	}
	if c.Render.Height <= 0 {
		return errors.Newf("render.height must be > 0, got %g", c.Render.Height)
	}

	// Decimals: 0 = integer coordinates (valid), negative = invalid
	if c.Render.Decimals < 0 {
		return errors.Newf("render.decimals must be >= 0, got %d", c.Render.Decimals)
	}

	for i, p := range c.Library.Paths {
		if p == "" {
			return errors.Newf("library.paths[%d] cannot be empty", i)
		}
	}

	switch c.Log.Theme {
	case "", "everforest", "gruvbox":
	default:
		return errors.WithHint(
			errors.Newf("log.theme %q is not a known theme", c.Log.Theme),
			"use everforest or gruvbox")
	}

	return nil
}
