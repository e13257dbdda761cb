package flowz

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// AggregationConfig names the record fields to summarize in an object-mode
// aggregation.
type AggregationConfig struct {
	Sum string `mapstructure:"sum"`
	Min string `mapstructure:"min"`
	Max string `mapstructure:"max"`
}

// Config is the enumerated stage configuration, loadable from a file and
// environment via LoadConfig. Zero values mean "not configured"; set fields
// must satisfy the declared constraints.
type Config struct {
	// BatchSize is the maximum number of items per batch.
	BatchSize int `mapstructure:"batch_size" validate:"omitempty,gt=0"`

	// MaxLatency is the maximum time a partial batch waits before emission.
	MaxLatency time.Duration `mapstructure:"max_latency" validate:"omitempty,gt=0"`

	// MaxConcurrent bounds in-flight transformations for AsyncMapper.
	MaxConcurrent int `mapstructure:"max_concurrent" validate:"omitempty,gt=0"`

	// ItemsPerSecond is the Throttle emission rate.
	ItemsPerSecond float64 `mapstructure:"items_per_second" validate:"omitempty,gt=0"`

	// BufferSize is the pipeline's source handoff capacity.
	BufferSize int `mapstructure:"buffer_size" validate:"omitempty,gt=0"`

	// GroupBy names the record field used as the aggregation group key.
	GroupBy string `mapstructure:"group_by"`

	// Aggregations names the record fields to summarize per group.
	Aggregations AggregationConfig `mapstructure:"aggregations"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configured values against their constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Batch returns the BatchConfig portion of this configuration.
func (c Config) Batch() BatchConfig {
	return BatchConfig{MaxSize: c.BatchSize, MaxLatency: c.MaxLatency}
}

// LoadConfig reads stage configuration from the given file, layered with
// FLOWZ_-prefixed environment variables, and validates it.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("FLOWZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
