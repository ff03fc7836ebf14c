package cli

import "github.com/spf13/cobra"

// flagValues holds the parsed global flag values for the root command,
// mirroring the ambient config package's FlagValues/BindFlags split: flags
// are declared once here, then read out in PersistentPreRunE/RunE.
type flagValues struct {
	Mode        string
	Case        string
	Limit       int
	Range       string
	GlobInclude []string
	GlobExclude []string
	Transaction string
	Symlinks    string
	Binary      string
	Permissions string
	FixedMode   string
	MaxFileSize string

	DryRun       bool
	NoWrite      bool
	ValidateOnly bool

	RequireMatch     bool
	ExpectExactCount int
	FailOnChange     bool

	Delete       bool
	InsertBefore string
	InsertAfter  string
	Expand       bool

	StdinText     bool
	StdinPaths    bool
	StdinPathsNUL bool
	MatchStream   bool

	Format  string
	Verbose bool
	Quiet   bool
}

func bindRootFlags(cmd *cobra.Command) *flagValues {
	fv := &flagValues{}
	f := cmd.Flags()

	f.StringVar(&fv.Mode, "mode", "literal", "pattern interpretation: literal or regex")
	f.StringVar(&fv.Case, "case", "sensitive", "case mode: sensitive, insensitive, or smart")
	f.IntVar(&fv.Limit, "limit", 0, "maximum replacements per item (0 = unbounded)")
	f.StringVar(&fv.Range, "range", "", "restrict matching to lines start:end (end optional)")
	f.StringSliceVar(&fv.GlobInclude, "include", nil, "glob pattern to include (repeatable)")
	f.StringSliceVar(&fv.GlobExclude, "exclude", nil, "glob pattern to exclude (repeatable)")
	f.StringVar(&fv.Transaction, "transaction", "file", "transaction scope: file or all")
	f.StringVar(&fv.Symlinks, "symlinks", "follow", "symlink policy: follow, skip, or error")
	f.StringVar(&fv.Binary, "binary", "skip", "binary file policy: skip or error")
	f.StringVar(&fv.Permissions, "permissions", "preserve", "permission mode: preserve or fixed")
	f.StringVar(&fv.FixedMode, "fixed-mode", "", "octal mode to apply when --permissions=fixed")
	f.StringVar(&fv.MaxFileSize, "max-file-size", "", "skip files larger than this (e.g. 2MB)")

	f.BoolVar(&fv.DryRun, "dry-run", false, "compute and report changes without writing")
	f.BoolVar(&fv.NoWrite, "no-write", false, "suppress all filesystem writes")
	f.BoolVar(&fv.ValidateOnly, "validate-only", false, "run the full pipeline but never write")

	f.BoolVar(&fv.RequireMatch, "require-match", false, "fail if no replacement was made")
	f.IntVar(&fv.ExpectExactCount, "expect-exact-count", -1, "fail unless exactly this many replacements were made")
	f.BoolVar(&fv.FailOnChange, "fail-on-change", false, "fail if any item would be modified")

	f.BoolVar(&fv.Delete, "delete", false, "delete matches instead of replacing them")
	f.StringVar(&fv.InsertBefore, "insert-before", "", "insert text immediately before each match")
	f.StringVar(&fv.InsertAfter, "insert-after", "", "insert text immediately after each match")
	f.BoolVar(&fv.Expand, "expand", false, "enable $1/${name} capture-group expansion in the replacement (regex mode only)")

	f.BoolVar(&fv.StdinText, "stdin-text", false, "treat stdin as a single text buffer to transform")
	f.BoolVar(&fv.StdinPaths, "stdin-paths", false, "read newline-delimited paths from stdin")
	f.BoolVar(&fv.StdinPathsNUL, "stdin-paths-nul", false, "read NUL-delimited paths from stdin")
	f.BoolVar(&fv.MatchStream, "match-stream", false, "read a ripgrep --json match stream from stdin")

	f.StringVar(&fv.Format, "format", "ndjson", "output format: ndjson or agent")
	f.BoolVarP(&fv.Verbose, "verbose", "v", false, "enable debug logging")
	f.BoolVarP(&fv.Quiet, "quiet", "q", false, "suppress info logging")

	return fv
}
