package main

// Notes:
// - GenerateCompletion: we test that shell scripts are generated with expected
//   content markers. We do not test that the scripts actually work in the
//   target shell (that would require integration tests with actual shells).
// - getCommands: we test the registry mirrors the real FlagSets.
// These are acceptable gaps: we test observable behavior, not runtime shell behavior.

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGenerateCompletion_SupportedShells - Shell completion script generation
// ---------------------------------------------------------------------------

func TestGenerateCompletion_SupportedShells(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		shell        Shell
		wantContains []string
	}{
		{
			name:  "bash generates valid script",
			shell: ShellBash,
			wantContains: []string{
				"_texsnip()",
				"complete -F _texsnip texsnip",
				"compgen",
				`--naming) COMPREPLY=($(compgen -W "fixed unique" -- "$cur")); return ;;`,
				`--scratch-dir) COMPREPLY=($(compgen -d -- "$cur")); return ;;`,
				`-o|--output) COMPREPLY=($(compgen -f -- "$cur")); return ;;`,
				"-t|--timeout) return ;;",
				"render|doctor|version|help|completion",
				"--json",
			},
		},
		{
			name:  "zsh generates valid script",
			shell: ShellZsh,
			wantContains: []string{
				"#compdef texsnip",
				"_arguments",
				"_describe 'command' commands",
				"compdef _texsnip texsnip",
				"'(-o --output)'{-o,--output}'",
				`:file:_files -g "*.png"`,
				":naming:(fixed unique)",
				":directory:_files -/",
				"_values 'completion' bash zsh fish",
			},
		},
		{
			name:  "fish generates valid script",
			shell: ShellFish,
			wantContains: []string{
				"complete -c texsnip -f",
				"__fish_use_subcommand",
				"-s o -l output -r -F",
				"-l naming -x -a 'fixed unique'",
				"-l scratch-dir -x -a '(__fish_complete_directories)'",
				"not __fish_seen_subcommand_from doctor version help completion",
				"__fish_seen_subcommand_from doctor' -l json",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell); err != nil {
				t.Fatalf("GenerateCompletion(%s) error: %v", tt.shell, err)
			}
			script := buf.String()
			for _, want := range tt.wantContains {
				if !strings.Contains(script, want) {
					t.Errorf("%s script should contain %q", tt.shell, want)
				}
			}
		})
	}
}

func TestGenerateCompletion_UnsupportedShell(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := GenerateCompletion(&buf, Shell("powershell"))
	if !errors.Is(err, ErrUnsupportedShell) {
		t.Errorf("error = %v, want ErrUnsupportedShell", err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written, got %d bytes", buf.Len())
	}
}

func TestGenerateCompletion_WriteError(t *testing.T) {
	t.Parallel()

	for _, shell := range []Shell{ShellBash, ShellZsh, ShellFish} {
		if err := GenerateCompletion(failingWriter{}, shell); err == nil {
			t.Errorf("%s: expected write error", shell)
		}
	}
}

// ---------------------------------------------------------------------------
// TestGetCommands - Registry
// ---------------------------------------------------------------------------

func TestGetCommands(t *testing.T) {
	t.Parallel()

	cmds := getCommands()
	byName := make(map[string]commandDef)
	for _, c := range cmds {
		byName[c.Name] = c
	}

	for _, name := range []string{"render", "doctor", "version", "help", "completion"} {
		c, ok := byName[name]
		if !ok {
			t.Errorf("missing command %q", name)
			continue
		}
		if c.Desc == "" {
			t.Errorf("%s has no description", name)
		}
	}

	render := byName["render"]
	flags := make(map[string]flagDef)
	for _, fd := range render.Flags {
		flags[fd.Long] = fd
	}
	checks := []struct {
		long  string
		typ   flagType
		short string
	}{
		{"output", flagFile, "o"},
		{"timeout", flagString, "t"},
		{"scratch-dir", flagDir, ""},
		{"naming", flagEnum, ""},
		{"log-format", flagEnum, ""},
		{"config", flagFile, "c"},
		{"env-file", flagFile, ""},
		{"quiet", flagBool, "q"},
		{"verbose", flagBool, "v"},
	}
	for _, c := range checks {
		fd, ok := flags[c.long]
		if !ok {
			t.Errorf("render missing --%s", c.long)
			continue
		}
		if fd.Type != c.typ || fd.Short != c.short {
			t.Errorf("--%s = {type %d short %q}, want {type %d short %q}", c.long, fd.Type, fd.Short, c.typ, c.short)
		}
	}
	if len(render.Flags) != len(checks) {
		t.Errorf("render has %d flags, want %d", len(render.Flags), len(checks))
	}

	if got := strings.Join(byName["completion"].Args, " "); got != "bash zsh fish" {
		t.Errorf("completion args = %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestQuoting - Descriptions survive shell quoting
// ---------------------------------------------------------------------------

func TestZshQuote(t *testing.T) {
	t.Parallel()

	got := zshQuote("it's [x]: y")
	want := `it'\''s \[x\]\: y`
	if got != want {
		t.Errorf("zshQuote() = %q, want %q", got, want)
	}
}

func TestFishQuote(t *testing.T) {
	t.Parallel()

	got := fishQuote(`it's a\b`)
	want := `it\'s a\\b`
	if got != want {
		t.Errorf("fishQuote() = %q, want %q", got, want)
	}
}
