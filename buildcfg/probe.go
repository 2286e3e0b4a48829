package buildcfg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/objbridge/errors"
)

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Prober locates an interpreter and reads its build configuration.
// Zero fields fall back to the host implementations.
type Prober struct {
	Run       Runner
	LookPath  func(file string) (string, error)
	Stat      func(path string) error
	Getenv    func(key string) string
	PkgConfig string // pkg-config binary
	Python    string // interpreter name searched on PATH
}

// NewProber returns a Prober that runs real commands.
func NewProber() *Prober {
	return &Prober{}
}

func (p *Prober) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	Logger().Debug("running", zap.String("cmd", name), zap.Strings("args", args))
	if p.Run != nil {
		return p.Run(ctx, name, args...)
	}
	return ExecRunner(ctx, name, args...)
}

func (p *Prober) lookPath(file string) (string, error) {
	if p.LookPath != nil {
		return p.LookPath(file)
	}
	return exec.LookPath(file)
}

func (p *Prober) exists(path string) bool {
	if p.Stat != nil {
		return p.Stat(path) == nil
	}
	_, err := os.Stat(path)
	return err == nil
}

func (p *Prober) getenv(key string) string {
	if p.Getenv != nil {
		return p.Getenv(key)
	}
	return os.Getenv(key)
}

func (p *Prober) pkgConfig() string {
	if p.PkgConfig != "" {
		return p.PkgConfig
	}
	return "pkg-config"
}

func (p *Prober) python() string {
	if p.Python != "" {
		return p.Python
	}
	return "python"
}

// NoPkgConfigEnv names the variable that disables pkg-config lookup for a
// version.
func NoPkgConfigEnv(v Version) string {
	return fmt.Sprintf("PYTHON_%s_NO_PKG_CONFIG", v)
}

// Probe locates the interpreter for want and returns its configuration.
func (p *Prober) Probe(ctx context.Context, want Version) (*Config, error) {
	interp, err := p.Locate(ctx, want)
	if err != nil {
		return nil, err
	}

	cfg, err := p.configure(ctx, interp, want)
	if err != nil {
		return nil, err
	}

	vars, err := p.ConfigVars(ctx, interp)
	if err != nil {
		return nil, err
	}
	cfg.Vars = vars

	Logger().Info("probed interpreter",
		zap.String("interpreter", cfg.Interpreter),
		zap.Stringer("version", cfg.Version),
		zap.String("libdir", cfg.LibDir),
		zap.Strings("flags", cfg.Flags()))
	return cfg, nil
}

// Locate finds an interpreter binary for want.
func (p *Prober) Locate(ctx context.Context, want Version) (string, error) {
	if p.getenv(NoPkgConfigEnv(want)) == "" {
		if interp, ok := p.fromPkgConfig(ctx, want); ok {
			return interp, nil
		}
	}

	path, err := p.lookPath(p.python())
	if err != nil {
		return "", errors.ProbeFailed(fmt.Sprintf("%s not found on PATH", p.python()), err)
	}
	return path, nil
}

func (p *Prober) fromPkgConfig(ctx context.Context, want Version) (string, bool) {
	out, err := p.run(ctx, p.pkgConfig(), "--variable=exec_prefix", want.PkgName())
	if err != nil {
		Logger().Debug("pkg-config lookup failed", zap.String("pkg", want.PkgName()), zap.Error(err))
		return "", false
	}
	prefix := strings.TrimSpace(string(out))
	if prefix == "" {
		return "", false
	}

	for _, c := range candidates(prefix, want) {
		if p.exists(c) {
			return c, true
		}
	}
	return "", false
}

func candidates(prefix string, v Version) []string {
	bin := filepath.Join(prefix, "bin")
	return []string{
		filepath.Join(bin, "python"+v.String()),
		filepath.Join(bin, fmt.Sprintf("python%d", v.Major)),
		filepath.Join(bin, "python"),
	}
}

const configureScript = `import sys; import sysconfig; print(sys.version_info[0:2]); ` +
	`print(sysconfig.get_config_var('LIBDIR')); ` +
	`print(sysconfig.get_config_var('Py_ENABLE_SHARED')); ` +
	`print(sys.exec_prefix); ` +
	`print(sysconfig.get_config_var('PYTHONFRAMEWORK') or '')`

func (p *Prober) configure(ctx context.Context, interp string, want Version) (*Config, error) {
	out, err := p.run(ctx, interp, "-c", configureScript)
	if err != nil {
		return nil, errors.ProbeFailed("run interpreter", err)
	}
	cfg, err := parseConfigure(string(out))
	if err != nil {
		return nil, err
	}
	cfg.Interpreter = interp

	if !want.IsZero() && cfg.Version != want {
		return nil, errors.ProbeFailed(
			fmt.Sprintf("%s is version %s, want %s", interp, cfg.Version, want), nil)
	}
	return cfg, nil
}

func parseConfigure(out string) (*Config, error) {
	lines := splitLines(out)
	if len(lines) < 4 {
		return nil, errors.ProbeFailed(fmt.Sprintf("expected at least 4 lines of interpreter output, got %d", len(lines)), nil)
	}

	v, err := parseVersionTuple(lines[0])
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Version:      v,
		LibDir:       noneToEmpty(lines[1]),
		EnableShared: lines[2] == "1",
		ExecPrefix:   lines[3],
	}
	switch {
	case len(lines) > 4 && lines[4] != "":
		cfg.LinkModel = "framework"
	case cfg.EnableShared:
		cfg.LinkModel = "dynamic"
	default:
		cfg.LinkModel = "static"
	}
	return cfg, nil
}

func noneToEmpty(s string) string {
	if s == "None" {
		return ""
	}
	return s
}

// ConfigVarsScript prints one sysconfig variable per line, in the order of
// SysconfigFlags followed by SysconfigValues.
func ConfigVarsScript() string {
	var b strings.Builder
	b.WriteString("import sysconfig; config = sysconfig.get_config_vars();")
	for _, k := range SysconfigFlags {
		fmt.Fprintf(&b, " print(config.get('%s', '0'));", k)
	}
	for _, k := range SysconfigValues {
		fmt.Fprintf(&b, " print(config.get('%s', 0));", k)
	}
	return b.String()
}

// ConfigVars runs ConfigVarsScript against interp.
func (p *Prober) ConfigVars(ctx context.Context, interp string) (map[string]string, error) {
	out, err := p.run(ctx, interp, "-c", ConfigVarsScript())
	if err != nil {
		return nil, errors.ProbeFailed("read sysconfig", err)
	}
	return ParseConfigVars(string(out))
}

// ParseConfigVars maps ConfigVarsScript output back to variable names.
// "None" is recorded as "0".
func ParseConfigVars(out string) (map[string]string, error) {
	lines := splitLines(out)
	keys := append(append([]string{}, SysconfigFlags...), SysconfigValues...)
	if len(lines) != len(keys) {
		return nil, errors.ProbeFailed(
			fmt.Sprintf("expected %d sysconfig lines, got %d", len(keys), len(lines)), nil)
	}

	vars := make(map[string]string, len(keys))
	for i, k := range keys {
		v := lines[i]
		if v == "None" {
			v = "0"
		}
		vars[k] = v
	}
	return vars, nil
}

func splitLines(s string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	return lines
}
