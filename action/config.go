package action

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cybergodev/logjson"
)

// Config holds the action parameters.
type Config struct {
	// Cookie is the JSON cookie; nil selects logjson.DefaultCookie and an
	// empty string disables the cookie check.
	Cookie          *string `yaml:"cookie"`
	Container       string  `yaml:"container"`
	UseRawMsg       bool    `yaml:"userawmsg"`
	Compact         bool    `yaml:"compact"`
	MessageField    string  `yaml:"message_field"`
	AltMessageField string  `yaml:"alt_message_field"`
	Variable        string  `yaml:"variable"`
	Repair          bool    `yaml:"repair"`
	MaxDepth        int     `yaml:"max_depth"`
	Workers         int     `yaml:"workers"`
}

// DefaultWorkers is the worker count used when Config.Workers is unset.
const DefaultWorkers = 4

// DefaultConfig returns the defaults: CEE cookie, results at "!", message
// text as source.
func DefaultConfig() *Config {
	return &Config{
		Container: logjson.DefaultContainer,
		Workers:   DefaultWorkers,
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

type paramType uint8

const (
	paramString paramType = iota
	paramBinary
	paramInt
)

type paramDescr struct {
	name string
	typ  paramType
	set  func(c *Config, s string, b bool, n int)
}

// params lists the recognized action parameters.
var params = []paramDescr{
	{"cookie", paramString, func(c *Config, s string, _ bool, _ int) { c.Cookie = &s }},
	{"container", paramString, func(c *Config, s string, _ bool, _ int) { c.Container = s }},
	{"userawmsg", paramBinary, func(c *Config, _ string, b bool, _ int) { c.UseRawMsg = b }},
	{"compact", paramBinary, func(c *Config, _ string, b bool, _ int) { c.Compact = b }},
	{"message_field", paramString, func(c *Config, s string, _ bool, _ int) { c.MessageField = s }},
	{"alt_message_field", paramString, func(c *Config, s string, _ bool, _ int) { c.AltMessageField = s }},
	{"variable", paramString, func(c *Config, s string, _ bool, _ int) { c.Variable = s }},
	{"repair", paramBinary, func(c *Config, _ string, b bool, _ int) { c.Repair = b }},
	{"max_depth", paramInt, func(c *Config, _ string, _ bool, n int) { c.MaxDepth = n }},
	{"workers", paramInt, func(c *Config, _ string, _ bool, n int) { c.Workers = n }},
}

// ParseParams builds a Config from name/value action parameters such as
// {"cookie": "", "message_field": "log", "compact": "on"}. Names are case
// insensitive; unknown names are rejected.
func ParseParams(values map[string]string) (*Config, error) {
	cfg := DefaultConfig()

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		raw := values[name]
		descr, ok := findParam(name)
		if !ok {
			return nil, &logjson.ExtractError{
				Op:      "parse_params",
				Field:   name,
				Message: "unknown parameter",
				Err:     logjson.ErrInvalidOptions,
			}
		}
		switch descr.typ {
		case paramString:
			descr.set(cfg, raw, false, 0)
		case paramBinary:
			b, err := parseBinary(raw)
			if err != nil {
				return nil, &logjson.ExtractError{Op: "parse_params", Field: name, Message: err.Error(), Err: logjson.ErrInvalidOptions}
			}
			descr.set(cfg, "", b, 0)
		case paramInt:
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return nil, &logjson.ExtractError{Op: "parse_params", Field: name, Message: "not an integer: " + raw, Err: logjson.ErrInvalidOptions}
			}
			descr.set(cfg, "", false, n)
		}
	}
	return cfg, cfg.Validate()
}

func findParam(name string) (paramDescr, bool) {
	for _, p := range params {
		if strings.EqualFold(p.name, name) {
			return p, true
		}
	}
	return paramDescr{}, false
}

func parseBinary(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "yes", "true", "1":
		return true, nil
	case "off", "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid binary value %q, use on or off", s)
}

// Validate normalizes the container name and checks numeric limits.
func (c *Config) Validate() error {
	container, err := logjson.NormalizeContainer(c.Container)
	if err != nil {
		return err
	}
	c.Container = container
	if c.MaxDepth < 0 {
		return &logjson.ExtractError{Op: "validate_config", Field: "max_depth", Message: "max_depth cannot be negative", Err: logjson.ErrInvalidOptions}
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	return nil
}

// Warnings lists parameter combinations that are accepted but partly
// ignored.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Variable != "" && c.UseRawMsg {
		warnings = append(warnings, "'variable' param can't be used with 'userawmsg'; ignoring 'variable', will use raw message")
	}
	if c.AltMessageField != "" && c.MessageField == "" {
		warnings = append(warnings, "'alt_message_field' has no effect without 'message_field'")
	}
	return warnings
}

// CookieValue returns the effective cookie.
func (c *Config) CookieValue() string {
	if c.Cookie == nil {
		return logjson.DefaultCookie
	}
	return *c.Cookie
}

// Options converts the config into engine options.
func (c *Config) Options() *logjson.Options {
	opts := logjson.DefaultOptions()
	opts.Cookie = c.CookieValue()
	opts.Container = c.Container
	opts.UseRawSource = c.UseRawMsg
	if !c.UseRawMsg {
		opts.SourceProperty = c.Variable
	}
	opts.Compact = c.Compact
	opts.MessageField = c.MessageField
	opts.AltMessageField = c.AltMessageField
	opts.Repair = c.Repair
	opts.MaxDepth = c.MaxDepth
	return opts
}
