package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "primelab/pkg/platform/strings"
)

// DefaultBitSizes are the key sizes benchmarked when none are configured.
var DefaultBitSizes = []int{40, 56, 80, 128, 168, 224, 256, 512, 1024, 2048, 4096}

// Config is the top-level configuration shared by all primelab commands.
type Config struct {
	ResultsDir string
	BitSizes   []int
	Seed       int64 // 0 means derive from the clock
	Log        LogConfig
	Prime      PrimeConfig
	PRNG       PRNGConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Metrics    MetricsConfig
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// PrimeConfig controls the prime generation run.
type PrimeConfig struct {
	ResultsDir  string
	Algorithms  []string // miller_rabin, fermat
	Source      string   // chacha8, crypto, lcg
	Rounds      int      // 0 means the tester default
	MaxAttempts int      // 0 means derived from the bit-length
}

// PRNGConfig controls the PRNG batch run.
type PRNGConfig struct {
	Algorithms []string // lcg, xorshift
	Iterations int
	BatchSize  int
	Parallel   int // 0 means one worker per bit size
}

// PostgresConfig enables the postgres prime record sink when URL is set.
type PostgresConfig struct {
	URL string
}

// RedisConfig enables the redis prime record sink when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the generation event publisher when Brokers is set.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// MetricsConfig enables pushing batch metrics when PushgatewayURL is set.
type MetricsConfig struct {
	PushgatewayURL string
	Job            string
}

// FromEnv builds a Config from PRIMELAB_* environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []string
	intVar := func(key string, def int) int {
		v, err := getEnvInt(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	durVar := func(key string, def time.Duration) time.Duration {
		v, err := getEnvDuration(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}

	bitSizes, err := parseIntList(os.Getenv("PRIMELAB_BIT_SIZES"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("PRIMELAB_BIT_SIZES: %v", err))
	}
	bitSizes = pstrings.Dedupe(bitSizes)
	if len(bitSizes) == 0 {
		bitSizes = append([]int(nil), DefaultBitSizes...)
	}

	seed, err := strconv.ParseInt(getEnv("PRIMELAB_SEED", "0"), 10, 64)
	if err != nil {
		errs = append(errs, fmt.Sprintf("PRIMELAB_SEED: %v", err))
	}

	cfg := Config{
		ResultsDir: getEnv("PRIMELAB_RESULTS_DIR", "results"),
		BitSizes:   bitSizes,
		Seed:       seed,
		Log: LogConfig{
			Level:  getEnv("PRIMELAB_LOG_LEVEL", "info"),
			Format: getEnv("PRIMELAB_LOG_FORMAT", "text"),
		},
		Prime: PrimeConfig{
			ResultsDir:  getEnv("PRIMELAB_PRIME_RESULTS_DIR", "prime_results"),
			Algorithms:  parseNames(getEnv("PRIMELAB_PRIME_ALGORITHMS", "fermat,miller_rabin")),
			Source:      strings.ToLower(getEnv("PRIMELAB_PRIME_SOURCE", "chacha8")),
			Rounds:      intVar("PRIMELAB_PRIME_ROUNDS", 0),
			MaxAttempts: intVar("PRIMELAB_PRIME_MAX_ATTEMPTS", 0),
		},
		PRNG: PRNGConfig{
			Algorithms: parseNames(getEnv("PRIMELAB_PRNG_ALGORITHMS", "lcg,xorshift")),
			Iterations: intVar("PRIMELAB_PRNG_ITERATIONS", 500_000),
			BatchSize:  intVar("PRIMELAB_PRNG_BATCH_SIZE", 1000),
			Parallel:   intVar("PRIMELAB_PRNG_PARALLEL", 0),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("PRIMELAB_DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("PRIMELAB_REDIS_URL"),
			PoolSize:     intVar("PRIMELAB_REDIS_POOL_SIZE", 10),
			MinIdleConns: intVar("PRIMELAB_REDIS_MIN_IDLE_CONNS", 1),
			DialTimeout:  durVar("PRIMELAB_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durVar("PRIMELAB_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durVar("PRIMELAB_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: parseList(os.Getenv("PRIMELAB_KAFKA_BROKERS")),
			Topic:   getEnv("PRIMELAB_KAFKA_TOPIC", "primelab.primes"),
		},
		Metrics: MetricsConfig{
			PushgatewayURL: os.Getenv("PRIMELAB_PUSHGATEWAY_URL"),
			Job:            getEnv("PRIMELAB_METRICS_JOB", "primelab"),
		},
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that env parsing cannot express.
func (c Config) Validate() error {
	for _, b := range c.BitSizes {
		if b < 2 {
			return fmt.Errorf("invalid configuration: bit size %d is below 2", b)
		}
	}
	if c.PRNG.Iterations < 0 {
		return fmt.Errorf("invalid configuration: PRNG iterations must not be negative")
	}
	if c.PRNG.BatchSize <= 0 {
		return fmt.Errorf("invalid configuration: PRNG batch size must be positive")
	}
	if c.Prime.Rounds < 0 || c.Prime.MaxAttempts < 0 {
		return fmt.Errorf("invalid configuration: prime rounds and max attempts must not be negative")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func parseList(v string) []string {
	return pstrings.DedupeAndTrim(strings.Split(v, ","))
}

// parseNames is parseList for case-insensitive identifiers.
func parseNames(v string) []string {
	return pstrings.DedupeAndTrimLower(strings.Split(v, ","))
}

// ParseIntList parses a comma separated list such as "40,56,80".
func ParseIntList(v string) ([]int, error) {
	return parseIntList(v)
}

func parseIntList(v string) ([]int, error) {
	var out []int
	for _, part := range parseList(v) {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", part, err)
		}
		out = append(out, n)
	}
	return out, nil
}
