package logger

// OutputCategory defines a category of output that can be enabled/disabled
// independently of log severity.
//
// Verbosity Levels:
//
//	0 (default) - rendered output and errors
//	1 (-v)      - + libraries loaded, types registered
//	2 (-vv)     - + decomposition steps, template misses, timing
//	3 (-vvv)    - + resolved property bags
//	4 (-vvvv)   - + full primitive node dumps
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults OutputCategory = iota // Rendered documents, command output
	OutputErrors                        // Errors with hints

	// Level 1 (-v)
	OutputLibraries // Libraries loaded, engine constraints checked
	OutputRegistry  // Types registered, overwritten, removed

	// Level 2 (-vv)
	OutputDecomposition  // One line per decomposition step
	OutputTemplateMisses // Placeholders left unresolved
	OutputTiming         // Resolution timing

	// Level 3 (-vvv)
	OutputBags // Resolved property bags

	// Level 4 (-vvvv)
	OutputNodeDump // Full primitive node dumps
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputResults: VerbosityUser,
	OutputErrors:  VerbosityUser,

	OutputLibraries: VerbosityInfo,
	OutputRegistry:  VerbosityInfo,

	OutputDecomposition:  VerbosityDebug,
	OutputTemplateMisses: VerbosityDebug,
	OutputTiming:         VerbosityDebug,

	OutputBags: VerbosityTrace,

	OutputNodeDump: VerbosityAll,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}

var categoryNames = map[OutputCategory]string{
	OutputResults:        "results",
	OutputErrors:         "errors",
	OutputLibraries:      "libraries",
	OutputRegistry:       "registry",
	OutputDecomposition:  "decomposition",
	OutputTemplateMisses: "template-misses",
	OutputTiming:         "timing",
	OutputBags:           "bags",
	OutputNodeDump:       "node-dump",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}
