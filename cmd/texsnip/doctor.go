package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-texsnip/internal/config"
	"github.com/alnah/go-texsnip/internal/pipeline"
	"github.com/alnah/go-texsnip/internal/workspace"
)

// versionTimeout bounds each "<tool> --version" probe.
const versionTimeout = 10 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Tools    []toolInfo  `json:"tools"`
	Scratch  scratchInfo `json:"scratch"`
	Env      envInfo     `json:"environment"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// toolInfo holds detection results for one external tool.
type toolInfo struct {
	Name    string `json:"name"`
	Binary  string `json:"binary"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// scratchInfo holds scratch directory check results.
type scratchInfo struct {
	Dir      string `json:"dir"`
	Writable bool   `json:"writable"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS     string `json:"os"`
	Arch   string `json:"arch"`
	Naming string `json:"naming"`
}

// toolProbe describes how to find and query a tool.
type toolProbe struct {
	name        string
	binary      string
	versionArgs []string
	envVar      string
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		printDoctorUsage(env.Stdout)
		return ExitSuccess
	}
	if err != nil {
		return reportError(env, err)
	}

	cfg, unknownVars, err := resolveConfig(flags.common, env)
	if err != nil {
		return reportError(env, err)
	}
	if err := cfg.Validate(); err != nil {
		return reportError(env, err)
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	result := runDoctor(ctx, cfg, env)
	for _, name := range unknownVars {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Unknown environment variable %s (typo?)", name))
	}
	result.finalize()

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result, env.Color)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg *config.Config, env *Environment) *doctorResult {
	result := &doctorResult{
		Env: envInfo{
			OS:     runtime.GOOS,
			Arch:   runtime.GOARCH,
			Naming: cfg.Naming,
		},
	}

	runner := env.Runner
	if runner == nil {
		runner = &pipeline.ExecRunner{OutputLimit: 4 << 10}
	}

	probes := []toolProbe{
		{"latex", orDefault(cfg.Tools.Latex, pipeline.DefaultLatex), []string{"--version"}, "TEXSNIP_LATEX"},
		{"dvipng", orDefault(cfg.Tools.Dvipng, pipeline.DefaultDvipng), []string{"--version"}, "TEXSNIP_DVIPNG"},
		{"magick", orDefault(cfg.Tools.Magick, pipeline.DefaultMagick), []string{"-version"}, "TEXSNIP_MAGICK"},
	}
	for _, p := range probes {
		checkTool(ctx, p, runner, env, result)
	}
	checkScratch(cfg.ScratchDir, result)

	result.finalize()
	return result
}

// finalize derives Status from the collected warnings and errors.
func (r *doctorResult) finalize() {
	switch {
	case len(r.Errors) > 0:
		r.Status = "errors"
	case len(r.Warnings) > 0:
		r.Status = "warnings"
	default:
		r.Status = "ready"
	}
}

// checkTool locates a tool and records its version line.
func checkTool(ctx context.Context, p toolProbe, runner pipeline.CommandRunner, env *Environment, result *doctorResult) {
	info := toolInfo{Name: p.name, Binary: p.binary}
	defer func() { result.Tools = append(result.Tools, info) }()

	path, err := env.LookPath(p.binary)
	if err != nil {
		msg := fmt.Sprintf("%s not found. Install it or set %s", p.binary, p.envVar)
		if p.name == "magick" {
			if _, err := env.LookPath("convert"); err == nil {
				msg = "magick not found but convert is: ImageMagick 7 is required, or set TEXSNIP_MAGICK"
			}
		}
		result.Errors = append(result.Errors, msg)
		return
	}
	info.Found = true
	info.Path = path

	vctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	out, err := runner.Run(vctx, "", path, p.versionArgs...)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get %s version: %v", p.name, err))
		return
	}
	info.Version = firstLine(string(out))
}

// checkScratch verifies the scratch directory can be created and written.
func checkScratch(dir string, result *doctorResult) {
	ws := workspace.New(dir, nil)
	result.Scratch.Dir = ws.Dir()

	if err := ws.Ensure(); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Scratch directory unavailable: %v", err))
		return
	}
	f, err := os.CreateTemp(ws.Dir(), ".doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Scratch directory not writable: %s", ws.Dir()))
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	result.Scratch.Writable = true
}

// firstLine returns the first non-blank line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// tag renders a status marker, colored when the output supports it.
func tag(useColor bool, attr color.Attribute, text string) string {
	c := color.New(attr)
	if useColor {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(text)
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult, useColor bool) {
	ok := tag(useColor, color.FgGreen, "[OK]")
	warn := tag(useColor, color.FgYellow, "[WARN]")
	fail := tag(useColor, color.FgRed, "[ERROR]")

	fmt.Fprintln(w, "texsnip doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Tools")
	for _, t := range r.Tools {
		if !t.Found {
			fmt.Fprintf(w, "  %s %s: not found\n", fail, t.Binary)
			continue
		}
		fmt.Fprintf(w, "  %s %s: %s\n", ok, t.Name, t.Path)
		if t.Version != "" {
			fmt.Fprintf(w, "       %s\n", t.Version)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Scratch")
	if r.Scratch.Writable {
		fmt.Fprintf(w, "  %s %s: writable\n", ok, r.Scratch.Dir)
	} else {
		fmt.Fprintf(w, "  %s %s: not writable\n", fail, r.Scratch.Dir)
	}
	fmt.Fprintf(w, "  %s Naming: %s\n", ok, r.Env.Naming)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  %s Platform: %s/%s\n", ok, r.Env.OS, r.Env.Arch)
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, msg := range r.Warnings {
			fmt.Fprintf(w, "  %s %s\n", warn, msg)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, msg := range r.Errors {
			fmt.Fprintf(w, "  %s %s\n", fail, msg)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
