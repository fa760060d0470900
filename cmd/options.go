package cmd

// Options holds the shared command-line options for the triagebot CLI.
type Options struct {
	MaxPages   int
	All        bool
	NoClassify bool
	DryRun     bool
	Limit      int
	Verbosity  int
	TUI        *bool // nil = auto-detect, true = force TUI, false = disable TUI
}
