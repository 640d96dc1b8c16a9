package zenassist

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Config is the deployment configuration: the API token, the billing period
// anchor, and the budget mode selection. Everything has a usable default
// except the token.
type Config struct {
	Token                 string          `mapstructure:"token"`
	BillingPeriodStartDay int             `mapstructure:"billing_period_start_day"`
	BudgetMode            string          `mapstructure:"budget_mode"`
	BudgetModes           map[string]Mode `mapstructure:"budget_modes"`
}

// LoadConfig reads the configuration file at path. A missing file yields the
// defaults; the ZENMONEY_TOKEN environment variable overrides the file's
// token either way. Custom budget modes are merged over the built-in ones,
// same-name custom modes win.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault("billing_period_start_day", 1)
	v.SetDefault("budget_mode", DefaultModeName)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("cannot read config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}

	if env := os.Getenv("ZENMONEY_TOKEN"); env != "" {
		cfg.Token = env
	}

	modes := BuiltinModes()
	for name, mode := range cfg.BudgetModes {
		modes[name] = mode
	}
	cfg.BudgetModes = modes

	if cfg.BillingPeriodStartDay < 1 || cfg.BillingPeriodStartDay > 28 {
		cfg.BillingPeriodStartDay = 1
	}
	return &cfg, nil
}

// ResolveMode picks the budget mode by name, resolving the empty name through
// the configured default. Unknown names report the available ones.
func (c *Config) ResolveMode(name string) (string, Mode, error) {
	if name == "" {
		name = c.BudgetMode
	}
	if name == "" {
		name = DefaultModeName
	}
	if mode, ok := c.BudgetModes[name]; ok {
		return name, mode, nil
	}
	return "", Mode{}, fmt.Errorf("unknown budget mode %q (available: %s)", name, strings.Join(c.ModeNames(), ", "))
}

// ModeNames returns the configured mode names, sorted.
func (c *Config) ModeNames() []string {
	names := make([]string, 0, len(c.BudgetModes))
	for name := range c.BudgetModes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
