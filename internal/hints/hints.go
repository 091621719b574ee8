// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"
)

// installHints maps tool names to the package that usually provides them.
var installHints = map[string]string{
	"latex":  "install a TeX distribution (TeX Live, MacTeX, MiKTeX)",
	"dvipng": "install dvipng (apt install dvipng, tlmgr install dvipng)",
	"magick": "install ImageMagick 7 (brew install imagemagick, apt install imagemagick)",
}

// envOverrides maps tool names to the environment variable that points at a custom binary.
var envOverrides = map[string]string{
	"latex":  "TEXSNIP_LATEX",
	"dvipng": "TEXSNIP_DVIPNG",
	"magick": "TEXSNIP_MAGICK",
}

// ForToolNotFound returns hints for a tool that could not be started.
func ForToolNotFound(tool string) string {
	var hints []string
	if h, ok := installHints[tool]; ok {
		hints = append(hints, h)
	}
	if env, ok := envOverrides[tool]; ok {
		hints = append(hints, "or set "+env+" to its path")
	}
	if len(hints) == 0 {
		return format("check that " + tool + " is on PATH")
	}
	return format(strings.Join(hints, " "))
}

// ForTypesetFailure points at the LaTeX log, which survives cleanup.
func ForTypesetFailure(logPath string) string {
	if logPath == "" {
		return format("check the expression for unbalanced braces or unknown commands")
	}
	return format("see " + logPath + " for the LaTeX error")
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("first runs can be slow while fonts are generated, use --timeout")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/texsnip/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/texsnip") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForScratchDir returns hints for scratch directory creation errors.
func ForScratchDir() string {
	return format("check the temp directory is writable or use --scratch-dir")
}

// ForUsage points at the help text of a command.
func ForUsage(command string) string {
	if command == "" {
		return format("run 'texsnip help' for usage")
	}
	return format("run 'texsnip help " + command + "' for usage")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
