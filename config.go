package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds everything a run needs. Values come from DefaultConfig, then
// an optional YAML file, then SQUAD_OPT_* environment variables, then flags.
type Config struct {
	// UserID is the FPL entry id whose squad is optimized.
	UserID int `mapstructure:"user-id"`
	// Gameweek selects the picks to load; 0 means the current gameweek.
	Gameweek int    `mapstructure:"gameweek"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`

	APIBaseURL string `mapstructure:"api-base-url"`
	LoginURL   string `mapstructure:"login-url"`
	// BootstrapFile and PicksFile replace the live API with saved responses.
	BootstrapFile string `mapstructure:"bootstrap-file"`
	PicksFile     string `mapstructure:"picks-file"`

	// Metric names the statistic used as the player metric.
	Metric string `mapstructure:"metric"`
	// TopNPlayers limits candidates to the current squad plus the best N others.
	TopNPlayers int `mapstructure:"top-n-players"`
	// MinPlayerMetric, when set, replaces TopNPlayers with a metric threshold.
	MinPlayerMetric *float64 `mapstructure:"-"`

	FreeTransfers     int     `mapstructure:"free-transfers"`
	TransferCost      float64 `mapstructure:"transfer-cost"`
	BenchPointValue   float64 `mapstructure:"bench-point-value"`
	CaptainMultiplier float64 `mapstructure:"captain-multiplier"`
	MaxPerTeam        int     `mapstructure:"max-per-team"`
	// Budget is used when there is no current squad to take the budget from.
	Budget float64 `mapstructure:"budget"`

	// Squad overrides the pulled squad with players looked up by name.
	Squad CustomSquad `mapstructure:"squad"`

	Output        string        `mapstructure:"output"`
	MetricsAddr   string        `mapstructure:"metrics-addr"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ProgressEvery int           `mapstructure:"progress-every"`

	Submit   bool `mapstructure:"submit"`
	Wildcard bool `mapstructure:"wildcard"`
	FreeHit  bool `mapstructure:"free-hit"`

	Verbose bool `mapstructure:"verbose"`
}

// CustomSquad describes a squad by player names plus money in the bank.
type CustomSquad struct {
	Names []string `mapstructure:"names"`
	Bank  float64  `mapstructure:"bank"`
}

// DefaultConfig returns the defaults used when nothing overrides them.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:        "https://fantasy.premierleague.com/api/",
		LoginURL:          "https://users.premierleague.com/accounts/login/",
		Metric:            string(MetricExpectedPoints),
		TopNPlayers:       20,
		FreeTransfers:     1,
		TransferCost:      4,
		BenchPointValue:   1,
		CaptainMultiplier: DefaultCaptainMultiplier,
		MaxPerTeam:        DefaultMaxPerTeam,
		Budget:            100,
		Output:            "text",
		ProgressEvery:     1000,
	}
}

// NewFlagSet declares the command line flags, with defaults from DefaultConfig.
func NewFlagSet() *pflag.FlagSet {
	d := DefaultConfig()
	fs := pflag.NewFlagSet("squad-optimizer", pflag.ContinueOnError)
	fs.String("config", "", "YAML config file")
	fs.Int("user-id", d.UserID, "FPL entry id")
	fs.Int("gameweek", d.Gameweek, "gameweek to pull picks from (0 = current)")
	fs.String("email", "", "FPL login email (needed with --submit)")
	fs.String("api-base-url", d.APIBaseURL, "FPL API base URL")
	fs.String("login-url", d.LoginURL, "FPL login URL")
	fs.String("bootstrap-file", "", "read players from a saved bootstrap-static response")
	fs.String("picks-file", "", "read the current squad from a saved picks response")
	fs.String("metric", d.Metric, "player metric: expected_points, total_points or form_health")
	fs.Int("top-n-players", d.TopNPlayers, "candidates besides the current squad")
	fs.String("min-player-metric", "", "use players above this metric instead of --top-n-players")
	fs.Int("free-transfers", d.FreeTransfers, "transfers that cost nothing")
	fs.Float64("transfer-cost", d.TransferCost, "points deducted per extra transfer")
	fs.Float64("bench-point-value", d.BenchPointValue, "bench points one unit of money is worth")
	fs.Float64("captain-multiplier", d.CaptainMultiplier, "captain score multiplier")
	fs.Int("max-per-team", d.MaxPerTeam, "players allowed from one club")
	fs.Float64("budget", d.Budget, "budget when no current squad is loaded")
	fs.StringP("output", "o", d.Output, "output format: text, json or yaml")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address during the search")
	fs.Duration("timeout", d.Timeout, "stop the search after this long (0 = no limit)")
	fs.Int("progress-every", d.ProgressEvery, "log progress every N squads")
	fs.Bool("submit", false, "submit the transfers of the best squad")
	fs.Bool("wildcard", false, "submit as a wildcard")
	fs.Bool("free-hit", false, "submit as a free hit")
	fs.BoolP("verbose", "v", false, "debug logging")
	return fs
}

// LoadConfig resolves the configuration from fs (already parsed), the
// optional config file it names and the environment.
func LoadConfig(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("squad.names", d.Squad.Names)
	v.SetDefault("squad.bank", d.Squad.Bank)
	v.SetDefault("password", "")
	v.SetEnvPrefix("SQUAD_OPT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("config: bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if s := v.GetString("min-player-metric"); s != "" {
		m, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: min-player-metric %q: %w", s, err)
		}
		cfg.MinPlayerMetric = &m
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the search cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if _, err := parseMetricSource(c.Metric); err != nil {
		errs = append(errs, err)
	}
	if c.TopNPlayers < 0 {
		errs = append(errs, fmt.Errorf("top-n-players must be >= 0, got %d", c.TopNPlayers))
	}
	if c.FreeTransfers < 0 {
		errs = append(errs, fmt.Errorf("free-transfers must be >= 0, got %d", c.FreeTransfers))
	}
	if c.CaptainMultiplier <= 0 {
		errs = append(errs, fmt.Errorf("captain-multiplier must be > 0, got %g", c.CaptainMultiplier))
	}
	if c.MaxPerTeam <= 0 {
		errs = append(errs, fmt.Errorf("max-per-team must be > 0, got %d", c.MaxPerTeam))
	}
	switch c.Output {
	case "text", "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("unknown output format %q", c.Output))
	}
	if c.Submit {
		if c.Email == "" || c.Password == "" {
			errs = append(errs, errors.New("submit needs email and password (SQUAD_OPT_PASSWORD)"))
		}
		if c.UserID == 0 {
			errs = append(errs, errors.New("submit needs user-id"))
		}
		if len(c.Squad.Names) > 0 {
			errs = append(errs, errors.New("submit cannot be used with a custom squad"))
		}
	}
	return errors.Join(errs...)
}

// MetricSource returns the parsed metric source. Validate must have passed.
func (c *Config) MetricSource() MetricSource {
	src, _ := parseMetricSource(c.Metric)
	return src
}

// TopSquadConfig extracts the incumbent tracker settings.
func (c *Config) TopSquadConfig() TopSquadConfig {
	return TopSquadConfig{
		FreeTransfers:     c.FreeTransfers,
		TransferCost:      c.TransferCost,
		BenchPointValue:   c.BenchPointValue,
		CaptainMultiplier: c.CaptainMultiplier,
	}
}
