package cmd

import (
	"testing"
)

func TestNew(t *testing.T) {
	cmd := New()
	if cmd == nil {
		t.Fatal("New() returned nil")
	}
	if cmd.Use != "triagebot" {
		t.Errorf("expected Use to be 'triagebot', got %q", cmd.Use)
	}

	for _, name := range []string{"init", "update", "retriage", "picks", "balance", "check", "guide", "version"} {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestInitFlags(t *testing.T) {
	opts := &Options{}
	cmd := NewCmdInit(opts)

	if err := cmd.Flags().Parse([]string{"--all", "--no-classify", "--dry-run"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if !opts.All || !opts.NoClassify || !opts.DryRun {
		t.Errorf("flags not bound: %+v", opts)
	}
	if opts.MaxPages != 5 {
		t.Errorf("MaxPages default = %d, want 5", opts.MaxPages)
	}
}

func TestFlagDefaults(t *testing.T) {
	opts := &Options{}
	update := NewCmdUpdate(opts)
	if err := update.Flags().Parse(nil); err != nil {
		t.Fatalf("parse update flags: %v", err)
	}
	if opts.MaxPages != 3 {
		t.Errorf("update --max-pages default = %d, want 3", opts.MaxPages)
	}

	opts = &Options{}
	picks := NewCmdPicks(opts)
	if err := picks.Flags().Parse(nil); err != nil {
		t.Fatalf("parse picks flags: %v", err)
	}
	if opts.Limit != 10 {
		t.Errorf("picks --limit default = %d, want 10", opts.Limit)
	}
}

func TestCheckAnswersToTest(t *testing.T) {
	cmd := NewCmdCheck()
	if !cmd.HasAlias("test") {
		t.Error("check must also respond to 'test'")
	}
}

func TestTUIFlag(t *testing.T) {
	tests := []struct {
		input   string
		want    string // expected String() after Set
		wantErr bool
	}{
		{"true", "true", false},
		{"yes", "true", false},
		{"false", "false", false},
		{"0", "false", false},
		{"auto", "auto", false},
		{"maybe", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f := newTUIFlag(&Options{})
			err := f.Set(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := f.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShouldUseTUIRespectsVerbosity(t *testing.T) {
	force := true
	opts := &Options{Verbosity: 1, TUI: &force}
	if shouldUseTUI(opts) {
		t.Error("verbose mode must disable the TUI even when forced on")
	}
}

func TestSetVersionInfo(t *testing.T) {
	SetVersionInfo("1.0.0", "abc123", "2024-01-01")
	if version != "1.0.0" || commit != "abc123" || date != "2024-01-01" {
		t.Errorf("version info not set: %s %s %s", version, commit, date)
	}
}
