package buildcfg

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/objbridge/errors"
)

// SysconfigFlags are interpreter compile-time defines picked up as boolean
// flags. See Misc/SpecialBuilds.txt in the interpreter sources.
var SysconfigFlags = []string{
	"Py_USING_UNICODE",
	"Py_UNICODE_WIDE",
	"WITH_THREAD",
	"Py_DEBUG",
	"Py_REF_DEBUG",
	"Py_TRACE_REFS",
	"COUNT_ALLOCS",
}

// SysconfigValues are defines that carry a value. Absent from 3.3+, which
// is always wide.
var SysconfigValues = []string{
	"Py_UNICODE_SIZE",
}

// IsValue reports whether key is a valued define rather than a flag.
func IsValue(key string) bool {
	for _, v := range SysconfigValues {
		if v == key {
			return true
		}
	}
	return false
}

// Version is an interpreter major.minor version.
type Version struct {
	Major int `yaml:"major" validate:"gte=2,lte=3"`
	Minor int `yaml:"minor" validate:"gte=0"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// IsZero reports whether no version was set.
func (v Version) IsZero() bool {
	return v.Major == 0 && v.Minor == 0
}

// PkgName returns the pkg-config package name for this version.
func (v Version) PkgName() string {
	return "python-" + v.String()
}

var (
	versionRe      = regexp.MustCompile(`^(\d+)\.(\d+)$`)
	versionTupleRe = regexp.MustCompile(`^\((\d+),\s*(\d+)\)$`)
)

// ParseVersion parses "X.Y".
func ParseVersion(s string) (Version, error) {
	m := versionRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Version{}, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("invalid version %q, want X.Y", s))
	}
	return versionFromMatch(m), nil
}

// parseVersionTuple parses the interpreter's printed sys.version_info[0:2].
func parseVersionTuple(s string) (Version, error) {
	m := versionTupleRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Version{}, errors.InvalidInput(errors.PhaseProbe, fmt.Sprintf("unexpected version line %q", s))
	}
	return versionFromMatch(m), nil
}

func versionFromMatch(m []string) Version {
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	return Version{Major: major, Minor: minor}
}

// Config is the probed build configuration of one interpreter.
type Config struct {
	Vars         map[string]string `yaml:"vars"`
	Interpreter  string            `yaml:"interpreter" validate:"required"`
	LibDir       string            `yaml:"libdir"`
	ExecPrefix   string            `yaml:"exec_prefix"`
	LinkModel    string            `yaml:"link_model,omitempty" validate:"omitempty,oneof=static dynamic framework"`
	Version      Version           `yaml:"version"`
	EnableShared bool              `yaml:"enable_shared"`
}

// Has reports whether the named flag holds. Valued defines are queried in
// their suffixed form, e.g. Py_UNICODE_SIZE_4.
func (c *Config) Has(flag string) bool {
	if c == nil {
		return false
	}
	for _, f := range c.Flags() {
		if f == flag {
			return true
		}
	}
	return false
}

// Value returns the raw value of a probed variable.
func (c *Config) Value(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.Vars[key]
	return v, ok
}

// Flags returns the sorted named flags that hold.
func (c *Config) Flags() []string {
	var out []string
	for k, v := range c.Vars {
		if f, ok := flagName(k, v); ok {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

func flagName(key, val string) (string, bool) {
	if IsValue(key) {
		return key + "_" + val, true
	}
	if val != "0" {
		return key, true
	}
	return "", false
}

// PythonFlags renders the FLAG_x=v,VAL_y=v summary dependents consume.
func (c *Config) PythonFlags() string {
	keys := make([]string, 0, len(c.Vars))
	for k := range c.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		v := c.Vars[k]
		switch {
		case IsValue(k):
			parts = append(parts, fmt.Sprintf("VAL_%s=%s", k, v))
		case v != "0":
			parts = append(parts, fmt.Sprintf("FLAG_%s=%s", k, v))
		}
	}
	return strings.Join(parts, ",")
}

// BuildTags returns one Go build tag per named flag.
func (c *Config) BuildTags() []string {
	flags := c.Flags()
	tags := make([]string, len(flags))
	for i, f := range flags {
		tags[i] = "py_sys_config_" + f
	}
	return tags
}

// LibName returns the interpreter library name, e.g. python3.12.
func (c *Config) LibName() string {
	return "python" + c.Version.String()
}

// LDFlags returns linker flags for the interpreter library.
func (c *Config) LDFlags() []string {
	var flags []string
	if c.LibDir != "" {
		flags = append(flags, "-L"+c.LibDir)
	}
	switch {
	case c.LinkModel == "framework" || c.LinkModel == "dynamic":
		flags = append(flags, "-l"+c.LibName())
	case c.LinkModel == "static" || !c.EnableShared:
		flags = append(flags, "-l:lib"+c.LibName()+".a")
	default:
		flags = append(flags, "-l"+c.LibName())
	}
	return flags
}

// CgoEnv returns environment assignments for building cgo code against the
// interpreter.
func (c *Config) CgoEnv() []string {
	return []string{
		"CGO_LDFLAGS=" + strings.Join(c.LDFlags(), " "),
	}
}

var validate = validator.New()

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "validate build config")
	}
	for k := range c.Vars {
		if !knownVar(k) {
			return errors.New(errors.PhaseConfig, errors.KindInvalidData).
				Path("vars", k).
				Detail("unknown sysconfig variable").
				Build()
		}
	}
	return nil
}

func knownVar(k string) bool {
	for _, f := range SysconfigFlags {
		if f == k {
			return true
		}
	}
	return IsValue(k)
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read build config")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parse build config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "encode build config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "write build config")
	}
	return nil
}
