package cssmod

import (
	"time"

	"github.com/yacobolo/cssmod/internal/modules"
)

// Defaults applied by NewBuilder
const (
	DefaultInclude   = "**/*.module.css"
	DefaultManifest  = "modules.json"
	DefaultCacheSize = 256
)

// Transform options, re-exported so callers outside this module can build them.
type (
	Options           = modules.Options
	UtilityOptions    = modules.UtilityOptions
	UtilityMode       = modules.UtilityMode
	Variables         = modules.Variables
	ReportFunc        = modules.ReportFunc
	UtilityReportFunc = modules.UtilityReportFunc
	Result            = modules.Result
)

// Utility naming modes
const (
	ModeReadable     = modules.ModeReadable
	ModeSemiReadable = modules.ModeSemiReadable
	ModeEncoded      = modules.ModeEncoded
)

// Config holds builder configuration
type Config struct {
	SourceDir   string   // "web/styles"
	OutputDir   string   // "dist/styles" (transformed CSS keeps its relative path)
	Includes    []string // ["**/*.module.css"]
	Excludes    []string // ["vendor/**"], matched relative to SourceDir
	Manifest    string   // manifest file name under OutputDir (default: "modules.json")
	Concurrency int      // files transformed at once (default: GOMAXPROCS)
	CacheSize   int      // transformed files kept in memory (default: 256)
	DryRun      bool     // transform without writing anything
	Options     modules.Options
}

// FileResult is the outcome of transforming one file
type FileResult struct {
	Path       string          // source path as discovered
	RelPath    string          // slash-separated path relative to SourceDir
	OutputPath string          // "" in dry-run mode
	CSS        string          // transformed stylesheet
	Modules    *modules.Result // rename maps and utility table
	Cached     bool            // true if served from the content cache
}

// BuildResult contains build stats
type BuildResult struct {
	FilesDiscovered    int // matched by include patterns
	FilesScanned       int
	FilesSkipped       int // excluded or gitignored
	FilesWritten       int
	FilesCached        int
	ClassesScoped      int
	UtilitiesGenerated int
	ManifestPath       string
	Files              []*FileResult // discovery order, failed files omitted
	Diagnostics        []Diagnostic
	Duration           time.Duration
}
