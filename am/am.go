// Package am loads devize configuration.
//
// Sources, lowest to highest precedence: built-in defaults,
// /etc/devize/am.toml, ~/.devize/am.toml, the nearest am.toml found walking
// up from the working directory, DEVIZE_* environment variables.
package am

// Config represents the devize configuration
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Render  RenderConfig  `mapstructure:"render"`
	Library LibraryConfig `mapstructure:"library"`
	Log     LogConfig     `mapstructure:"log"`
}

// EngineConfig configures specification resolution
type EngineConfig struct {
	MaxDepth           int  `mapstructure:"max_depth"`             // decomposition depth limit (default: 256)
	WarnOnTemplateMiss bool `mapstructure:"warn_on_template_miss"` // log unresolved placeholders at warn level (default: true)
	TemplateCacheSize  int  `mapstructure:"template_cache_size"`   // parsed template strings kept (default: 512)
}

// RenderConfig configures the SVG painter
type RenderConfig struct {
	Width      float64 `mapstructure:"width"`      // canvas width (default: 640)
	Height     float64 `mapstructure:"height"`     // canvas height (default: 480)
	Background string  `mapstructure:"background"` // fill painted behind everything, empty = none
	Decimals   int     `mapstructure:"decimals"`   // float precision in output (default: 2)
}

// LibraryConfig configures where type libraries come from
type LibraryConfig struct {
	Paths    []string `mapstructure:"paths"`    // directories scanned for *.yaml, *.json, *.toml libraries
	Builtins bool     `mapstructure:"builtins"` // register stats, scale and extract (default: true)
}

// LogConfig configures console logging
type LogConfig struct {
	Theme string `mapstructure:"theme"` // everforest or gruvbox
}

// Defaults shared with callers that build engines without loading config.
const (
	DefaultMaxDepth          = 256
	DefaultTemplateCacheSize = 512
	DefaultWidth             = 640
	DefaultHeight            = 480
	DefaultDecimals          = 2
	DefaultLogTheme          = "everforest"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// ConfigFileName is the file searched for at every level.
const ConfigFileName = "am.toml"

// EnvPrefix prefixes environment variable overrides (DEVIZE_ENGINE_MAX_DEPTH).
const EnvPrefix = "DEVIZE"
