// Package config loads lexer settings from a config file and XMLLEX_*
// environment variables.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/jacoelho/xmllex"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "XMLLEX"

// Config holds lexer settings. Byte sizes accept humanized strings such as
// "64KiB" or "8MB"; zero or empty selects the library default.
type Config struct {
	LogLevel                 string `mapstructure:"log_level"`
	BufferSize               string `mapstructure:"buffer_size"`
	FreelistBudget           string `mapstructure:"freelist_budget"`
	Strict                   bool   `mapstructure:"strict"`
	CoalesceText             bool   `mapstructure:"coalesce_text"`
	NormalizeLineEndings     bool   `mapstructure:"normalize_line_endings"`
	ExpandInternalEntities   bool   `mapstructure:"expand_internal_entities"`
	ReportXMLDecl            bool   `mapstructure:"report_xml_decl"`
	ReportIntertagWhitespace bool   `mapstructure:"report_intertag_whitespace"`
	Limits                   Limits `mapstructure:"limits"`
}

// Limits mirrors xmltoken.Limits with humanized byte sizes.
type Limits struct {
	MaxNameBytes       string `mapstructure:"max_name_bytes"`
	MaxAttrValueBytes  string `mapstructure:"max_attr_value_bytes"`
	MaxTextRunBytes    string `mapstructure:"max_text_run_bytes"`
	MaxCommentBytes    string `mapstructure:"max_comment_bytes"`
	MaxCDATABytes      string `mapstructure:"max_cdata_bytes"`
	MaxDoctypeBytes    string `mapstructure:"max_doctype_bytes"`
	MaxPerTagBytes     string `mapstructure:"max_per_tag_bytes"`
	MaxAttrsPerElement int    `mapstructure:"max_attrs_per_element"`
	MaxDepth           int    `mapstructure:"max_depth"`
}

var defaults = map[string]any{
	"log_level":                    "info",
	"buffer_size":                  "",
	"freelist_budget":              "",
	"strict":                       true,
	"coalesce_text":                true,
	"normalize_line_endings":       true,
	"expand_internal_entities":     true,
	"report_xml_decl":              true,
	"report_intertag_whitespace":   true,
	"limits.max_name_bytes":        "",
	"limits.max_attr_value_bytes":  "",
	"limits.max_text_run_bytes":    "",
	"limits.max_comment_bytes":     "",
	"limits.max_cdata_bytes":       "",
	"limits.max_doctype_bytes":     "",
	"limits.max_per_tag_bytes":     "",
	"limits.max_attrs_per_element": 0,
	"limits.max_depth":             0,
}

// Load reads the config file at path, if path is not empty, and applies
// environment overrides such as XMLLEX_STRICT or XMLLEX_LIMITS_MAX_DEPTH.
func Load(path string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Level parses LogLevel. An empty level is info.
func (c Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}

// LexOptions converts the settings into lexer options.
func (c Config) LexOptions() (xmllex.LexOptions, error) {
	opts := xmllex.NewLexOptions().
		WithStrict(c.Strict).
		WithCoalesceText(c.CoalesceText).
		WithNormalizeLineEndings(c.NormalizeLineEndings).
		WithExpandInternalEntities(c.ExpandInternalEntities).
		WithReportXMLDecl(c.ReportXMLDecl).
		WithReportIntertagWhitespace(c.ReportIntertagWhitespace).
		WithMaxAttrsPerElement(c.Limits.MaxAttrsPerElement).
		WithMaxDepth(c.Limits.MaxDepth)

	sizes := []struct {
		name  string
		value string
		set   func(xmllex.LexOptions, int) xmllex.LexOptions
	}{
		{"buffer_size", c.BufferSize, xmllex.LexOptions.WithBufferSize},
		{"limits.max_name_bytes", c.Limits.MaxNameBytes, xmllex.LexOptions.WithMaxNameBytes},
		{"limits.max_attr_value_bytes", c.Limits.MaxAttrValueBytes, xmllex.LexOptions.WithMaxAttrValueBytes},
		{"limits.max_text_run_bytes", c.Limits.MaxTextRunBytes, xmllex.LexOptions.WithMaxTextRunBytes},
		{"limits.max_comment_bytes", c.Limits.MaxCommentBytes, xmllex.LexOptions.WithMaxCommentBytes},
		{"limits.max_cdata_bytes", c.Limits.MaxCDATABytes, xmllex.LexOptions.WithMaxCDATABytes},
		{"limits.max_doctype_bytes", c.Limits.MaxDoctypeBytes, xmllex.LexOptions.WithMaxDoctypeBytes},
		{"limits.max_per_tag_bytes", c.Limits.MaxPerTagBytes, xmllex.LexOptions.WithMaxPerTagBytes},
	}
	for _, s := range sizes {
		n, err := parseSize(s.value)
		if err != nil {
			return xmllex.LexOptions{}, fmt.Errorf("%s: %w", s.name, err)
		}
		opts = s.set(opts, n)
	}
	if c.FreelistBudget != "" {
		n, err := parseSize(c.FreelistBudget)
		if err != nil {
			return xmllex.LexOptions{}, fmt.Errorf("freelist_budget: %w", err)
		}
		opts = opts.WithFreelistBudget(n)
	}
	if err := opts.Validate(); err != nil {
		return xmllex.LexOptions{}, err
	}
	return opts, nil
}

func parseSize(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt {
		return 0, fmt.Errorf("size %s overflows int", value)
	}
	return int(n), nil
}
