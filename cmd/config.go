package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattsolo1/grove-core/config"
	"github.com/mattsolo1/grove-widget/pkg/devserver"
	"github.com/mattsolo1/grove-widget/pkg/widget"
)

//go:generate sh -c "cd .. && go run ./tools/schema-generator/"

// envPrefix prefixes every environment override.
const envPrefix = "GROVE_WIDGET_"

// WidgetConfig defines the structure for the 'widget' section in grove.yml.
type WidgetConfig struct {
	APIURL         string       `yaml:"api_url" jsonschema:"description=Base URL of the chat service"`
	ClinicID       string       `yaml:"clinic_id" jsonschema:"description=Clinic identifier sent with every request"`
	ButtonLabel    string       `yaml:"button_label"`
	Title          string       `yaml:"title"`
	Theme          string       `yaml:"theme" jsonschema:"description=Accent colour, e.g. #0ea5e9"`
	SessionID      string       `yaml:"session_id"`
	Timeout        string       `yaml:"timeout" jsonschema:"description=Per-request timeout as a Go duration"`
	LeadCloseDelay string       `yaml:"lead_close_delay"`
	Server         ServerConfig `yaml:"server"`
}

// ServerConfig configures 'widget serve'.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	ClinicsFile    string   `yaml:"clinics_file" jsonschema:"description=YAML file of clinic profiles; empty serves the demo clinic"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	OpenAIModel    string   `yaml:"openai_model"`
	OpenAIBaseURL  string   `yaml:"openai_base_url"`
	HistoryLimit   int      `yaml:"history_limit"`
	ChatPerMinute  int      `yaml:"chat_per_minute"`
	LeadsPerMinute int      `yaml:"leads_per_minute"`
}

// loadWidgetConfig loads .env, the 'widget' extension of grove.yml and
// GROVE_WIDGET_* overrides, in increasing precedence.
func loadWidgetConfig() (*WidgetConfig, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	coreCfg, err := config.LoadFrom(".")
	if err != nil {
		// It's okay if the core config doesn't exist, we'll just use an empty one.
		coreCfg = &config.Config{}
	}

	var cfg WidgetConfig
	if err := coreCfg.UnmarshalExtension("widget", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse 'widget' configuration from grove.yml: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides fields from environment variables found by lookup.
func (c *WidgetConfig) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"API_URL":          &c.APIURL,
		"CLINIC_ID":        &c.ClinicID,
		"BUTTON_LABEL":     &c.ButtonLabel,
		"TITLE":            &c.Title,
		"THEME":            &c.Theme,
		"SESSION_ID":       &c.SessionID,
		"TIMEOUT":          &c.Timeout,
		"LEAD_CLOSE_DELAY": &c.LeadCloseDelay,
		"SERVER_ADDR":      &c.Server.Addr,
		"CLINICS_FILE":     &c.Server.ClinicsFile,
		"OPENAI_MODEL":     &c.Server.OpenAIModel,
		"OPENAI_BASE_URL":  &c.Server.OpenAIBaseURL,
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"HISTORY_LIMIT":    &c.Server.HistoryLimit,
		"CHAT_PER_MINUTE":  &c.Server.ChatPerMinute,
		"LEADS_PER_MINUTE": &c.Server.LeadsPerMinute,
	}
	for name, dst := range ints {
		v, ok := lookup(envPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s %q: %w", envPrefix, name, v, err)
		}
		*dst = n
	}

	if v, ok := lookup(envPrefix + "ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(v)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(name, s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", name, s)
	}
	return d, nil
}

// WidgetOptions converts the config into widget options.
func (c *WidgetConfig) WidgetOptions() (widget.Options, error) {
	timeout, err := parseDuration("timeout", c.Timeout)
	if err != nil {
		return widget.Options{}, err
	}
	closeDelay, err := parseDuration("lead_close_delay", c.LeadCloseDelay)
	if err != nil {
		return widget.Options{}, err
	}
	return widget.Options{
		APIURL:         c.APIURL,
		ClinicID:       c.ClinicID,
		ButtonLabel:    c.ButtonLabel,
		Title:          c.Title,
		Theme:          c.Theme,
		SessionID:      c.SessionID,
		Timeout:        timeout,
		LeadCloseDelay: closeDelay,
	}, nil
}

// DevServerConfig converts the server section into devserver settings.
func (c *WidgetConfig) DevServerConfig() devserver.Config {
	return devserver.Config{
		AllowedOrigins: c.Server.AllowedOrigins,
		HistoryLimit:   c.Server.HistoryLimit,
		ChatPerMinute:  c.Server.ChatPerMinute,
		LeadsPerMinute: c.Server.LeadsPerMinute,
	}
}
