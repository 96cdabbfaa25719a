package am

import (
	"fmt"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Engine defaults
	v.SetDefault("engine.max_depth", DefaultMaxDepth)
	v.SetDefault("engine.warn_on_template_miss", true)
	v.SetDefault("engine.template_cache_size", DefaultTemplateCacheSize)

	// Render defaults
	v.SetDefault("render.width", DefaultWidth)
	v.SetDefault("render.height", DefaultHeight)
	v.SetDefault("render.background", "")
	v.SetDefault("render.decimals", DefaultDecimals)

	// Library defaults
	v.SetDefault("library.paths", []string{})
	v.SetDefault("library.builtins", true)

	v.SetDefault("log.theme", DefaultLogTheme)
}

// BindEnvVars binds keys whose env names do not follow the
// DEVIZE_SECTION_KEY pattern.
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("log.theme", "DEVIZE_LOG_THEME")
	v.BindEnv("library.paths", "DEVIZE_LIBRARY_PATH")
}

// GetLogTheme returns the log theme (default: everforest)
func (c *Config) GetLogTheme() string {
	if c.Log.Theme == "" {
		return DefaultLogTheme
	}
	return c.Log.Theme
}

// GetMaxDepth returns engine.max_depth, or the default when unset
func (c *Config) GetMaxDepth() int {
	if c.Engine.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.Engine.MaxDepth
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Engine: {MaxDepth: %d}, Render: {%gx%g}, Library: {Paths: %v, Builtins: %t}}",
		c.Engine.MaxDepth, c.Render.Width, c.Render.Height, c.Library.Paths, c.Library.Builtins)
}
