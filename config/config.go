package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/davidvella/dupnum"
	"github.com/davidvella/dupnum/chunk"
	"github.com/davidvella/dupnum/merge"
	"github.com/davidvella/dupnum/monitoring"
	"github.com/davidvella/dupnum/run"
)

// EnvPrefix prefixes every environment variable, e.g. DUPNUM_MEMORY_BUDGET.
const EnvPrefix = "DUPNUM"

// Config holds the settings of the command line tool.
type Config struct {
	Memory MemoryConfig `mapstructure:"memory"`
	Run    RunConfig    `mapstructure:"run"`
	Merge  MergeConfig  `mapstructure:"merge"`
	Output OutputConfig `mapstructure:"output"`
	Log    LogConfig    `mapstructure:"log"`
}

type MemoryConfig struct {
	// Budget and Ceiling accept sizes such as "2MiB" or "1.5 GB".
	Budget  string `mapstructure:"budget"`
	Ceiling string `mapstructure:"ceiling"`
	MaxRuns int    `mapstructure:"max_runs"`
}

type RunConfig struct {
	Format      string `mapstructure:"format"`
	Compression string `mapstructure:"compression"`
	TempDir     string `mapstructure:"temp_dir"`
}

type MergeConfig struct {
	Strategy string `mapstructure:"strategy"`
}

type OutputConfig struct {
	Quiet bool `mapstructure:"quiet"`
	Stats bool `mapstructure:"stats"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig mirrors the library defaults.
func DefaultConfig() *Config {
	return &Config{
		Memory: MemoryConfig{
			Budget:  humanize.IBytes(chunk.DefaultMinBudget),
			Ceiling: humanize.IBytes(chunk.DefaultMemoryCeiling),
			MaxRuns: chunk.DefaultMaxRuns,
		},
		Run: RunConfig{
			Format:      string(run.FormatText),
			Compression: string(run.CompressionNone),
		},
		Merge: MergeConfig{
			Strategy: string(merge.StrategyHeap),
		},
		Log: LogConfig{
			Level:  "info",
			Format: monitoring.FormatText,
		},
	}
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"memory-budget":  "memory.budget",
	"memory-ceiling": "memory.ceiling",
	"max-runs":       "memory.max_runs",
	"run-format":     "run.format",
	"compression":    "run.compression",
	"temp-dir":       "run.temp_dir",
	"merge-strategy": "merge.strategy",
	"quiet":          "output.quiet",
	"stats":          "output.stats",
	"log-level":      "log.level",
	"log-format":     "log.format",
}

// RegisterFlags adds a flag for every setting to fs, defaulted from
// DefaultConfig.
func RegisterFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()
	fs.String("memory-budget", d.Memory.Budget, "minimum bytes of input held in memory per chunk")
	fs.String("memory-ceiling", d.Memory.Ceiling, "refuse inputs needing this much memory per run (0 disables)")
	fs.Int("max-runs", d.Memory.MaxRuns, "number of runs the input is spread over")
	fs.String("run-format", d.Run.Format, "intermediate run format: text, sstable or cbor")
	fs.String("compression", d.Run.Compression, "intermediate run compression: none, zstd or s2")
	fs.String("temp-dir", d.Run.TempDir, "directory for intermediate files (default system temp dir)")
	fs.String("merge-strategy", d.Merge.Strategy, "merge strategy: heap or loser")
	fs.BoolP("quiet", "q", d.Output.Quiet, "do not print duplicates")
	fs.Bool("stats", d.Output.Stats, "print statistics to stderr when done")
	fs.String("log-level", d.Log.Level, "log level: debug, info, warn or error")
	fs.String("log-format", d.Log.Format, "log format: text or json")
}

// Load reads configuration from an optional file, environment variables and
// flags, in increasing order of precedence. Environment variables use the
// prefix "DUPNUM" and the dot character in keys is replaced by an underscore,
// so "memory.budget" becomes "DUPNUM_MEMORY_BUDGET". Without an explicit
// file, dupnum.yaml in the working directory is used when present.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("dupnum")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts[:len(parts):len(parts)], tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}

// ParseSize parses a byte size such as "2MiB", "512k" or "1048576".
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid size %q: %w", dupnum.ErrUsage, s, err)
	}
	return int64(n), nil
}

// Options converts the configuration into finder options.
func (c *Config) Options() ([]dupnum.Option, error) {
	budget, err := ParseSize(c.Memory.Budget)
	if err != nil {
		return nil, err
	}
	ceiling, err := ParseSize(c.Memory.Ceiling)
	if err != nil {
		return nil, err
	}
	format, err := run.ParseFormat(c.Run.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dupnum.ErrUsage, err)
	}
	compression, err := run.ParseCompression(c.Run.Compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dupnum.ErrUsage, err)
	}
	strategy, err := merge.ParseStrategy(c.Merge.Strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dupnum.ErrUsage, err)
	}

	return []dupnum.Option{
		dupnum.WithMemoryBudget(budget),
		dupnum.WithMemoryCeiling(ceiling),
		dupnum.WithMaxRuns(c.Memory.MaxRuns),
		dupnum.WithRunFormat(format),
		dupnum.WithCompression(compression),
		dupnum.WithTempDir(c.Run.TempDir),
		dupnum.WithMergeStrategy(strategy),
		dupnum.WithQuiet(c.Output.Quiet),
	}, nil
}

// Logger builds the logger described by the configuration.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	logger, err := monitoring.NewLogger(w, c.Log.Level, c.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dupnum.ErrUsage, err)
	}
	return logger, nil
}
