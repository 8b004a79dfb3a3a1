package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/sortbench/internal/tickets"
)

// Config holds the full application configuration.
type Config struct {
	Bench  BenchConfig  `yaml:"bench" mapstructure:"bench"`
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// BenchConfig configures the measurement sweep.
type BenchConfig struct {
	Sizes      []int    `yaml:"sizes" mapstructure:"sizes"`
	Algorithms []string `yaml:"algorithms" mapstructure:"algorithms"`
	Workers    int      `yaml:"workers" mapstructure:"workers"`
}

// DataConfig locates the input datasets.
type DataConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	Pattern     string `yaml:"pattern" mapstructure:"pattern"`
	Delimiter   string `yaml:"delimiter" mapstructure:"delimiter"`
	LoadWorkers int    `yaml:"load_workers" mapstructure:"load_workers"`
	Seed        uint64 `yaml:"seed" mapstructure:"seed"`
}

// DelimiterRune returns the configured field delimiter.
func (d DataConfig) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(d.Delimiter)
	return r
}

// OutputConfig configures where results and sorted copies are written.
type OutputConfig struct {
	Dir           string `yaml:"dir" mapstructure:"dir"`
	ResultsFile   string `yaml:"results_file" mapstructure:"results_file"`
	XLSXFile      string `yaml:"xlsx_file" mapstructure:"xlsx_file"`
	ChartFile     string `yaml:"chart_file" mapstructure:"chart_file"`
	WriteSorted   bool   `yaml:"write_sorted" mapstructure:"write_sorted"`
	SortedPattern string `yaml:"sorted_pattern" mapstructure:"sorted_pattern"`
}

// StoreConfig configures the run history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`

	// ConnectAttempts bounds how many times opening the store is tried.
	ConnectAttempts int `yaml:"connect_attempts" mapstructure:"connect_attempts"`
}

// Store drivers.
const (
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
	StoreDriverNone     = "none"
)

// Enabled reports whether runs should be recorded.
func (s StoreConfig) Enabled() bool {
	return s.Driver != "" && s.Driver != StoreDriverNone
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultSizes is the dataset size sweep used when none is configured.
var DefaultSizes = []int{
	100, 500, 1000, 2500, 5000, 7500, 10000, 12500,
	15000, 20000, 30000, 40000, 50000, 60000, 80000, 100000,
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SORTBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("bench.sizes", DefaultSizes)
	v.SetDefault("bench.algorithms", []string{"reference", "bubble", "selection", "heap"})
	v.SetDefault("bench.workers", 1)
	v.SetDefault("data.dir", ".")
	v.SetDefault("data.pattern", "lottery_{size}.txt")
	v.SetDefault("data.delimiter", ",")
	v.SetDefault("data.load_workers", 4)
	v.SetDefault("data.seed", 1)
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.results_file", "time_sorts.txt")
	v.SetDefault("output.xlsx_file", "")
	v.SetDefault("output.chart_file", "time_graphics.png")
	v.SetDefault("output.write_sorted", false)
	v.SetDefault("output.sorted_pattern", "sorted_{algorithm}_{size}.txt")
	v.SetDefault("store.driver", StoreDriverSQLite)
	v.SetDefault("store.database_url", "sortbench.db")
	v.SetDefault("store.connect_attempts", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

var knownAlgorithms = map[string]bool{
	"reference": true,
	"bubble":    true,
	"selection": true,
	"heap":      true,
}

// Validate checks the settings a command depends on. mode selects the
// checks: "bench", "generate", "sort" or "store".
func (c *Config) Validate(mode string) error {
	var problems []string

	needData := mode == "bench" || mode == "generate" || mode == "sort"
	if needData {
		if utf8.RuneCountInString(c.Data.Delimiter) != 1 {
			problems = append(problems, "data.delimiter must be a single character")
		} else if !tickets.ValidDelimiter(c.Data.DelimiterRune()) {
			problems = append(problems, fmt.Sprintf("data.delimiter %q cannot separate fields", c.Data.Delimiter))
		}
	}

	if mode == "bench" || mode == "generate" {
		if len(c.Bench.Sizes) == 0 {
			problems = append(problems, "bench.sizes must not be empty")
		}
		for _, s := range c.Bench.Sizes {
			if s < 0 {
				problems = append(problems, "bench.sizes must not contain negative sizes")
				break
			}
		}
		if !strings.Contains(c.Data.Pattern, "{size}") {
			problems = append(problems, "data.pattern must contain {size}")
		}
	}

	if mode == "bench" {
		if c.Bench.Workers < 1 {
			problems = append(problems, "bench.workers must be at least 1")
		}
		if len(c.Bench.Algorithms) == 0 {
			problems = append(problems, "bench.algorithms must not be empty")
		}
		listed := make(map[string]bool, len(c.Bench.Algorithms))
		for _, a := range c.Bench.Algorithms {
			if !knownAlgorithms[a] {
				problems = append(problems, "bench.algorithms: unknown algorithm "+a)
			}
			if listed[a] {
				problems = append(problems, "bench.algorithms: "+a+" listed twice")
			}
			listed[a] = true
		}
		if c.Output.ResultsFile == "" {
			problems = append(problems, "output.results_file is required")
		}
		if c.Output.WriteSorted && !strings.Contains(c.Output.SortedPattern, "{size}") {
			problems = append(problems, "output.sorted_pattern must contain {size}")
		}
	}

	if mode == "bench" || mode == "store" {
		switch c.Store.Driver {
		case StoreDriverSQLite, StoreDriverPostgres, StoreDriverNone, "":
		default:
			problems = append(problems, "store.driver must be sqlite, postgres or none")
		}
		if c.Store.Enabled() && c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
		if c.Store.ConnectAttempts < 0 {
			problems = append(problems, "store.connect_attempts must not be negative")
		}
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
