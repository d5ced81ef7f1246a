package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := FromEnv()
	s.Require().NoError(err)

	s.Equal("results", cfg.ResultsDir)
	s.Equal(DefaultBitSizes, cfg.BitSizes)
	s.Equal([]string{"fermat", "miller_rabin"}, cfg.Prime.Algorithms)
	s.Equal("chacha8", cfg.Prime.Source)
	s.Equal([]string{"lcg", "xorshift"}, cfg.PRNG.Algorithms)
	s.Equal(500_000, cfg.PRNG.Iterations)
	s.Equal(1000, cfg.PRNG.BatchSize)
	s.Empty(cfg.Redis.URL)
	s.Empty(cfg.Kafka.Brokers)
	s.Equal("primelab.primes", cfg.Kafka.Topic)
}

func (s *ConfigSuite) TestOverrides() {
	s.T().Setenv("PRIMELAB_BIT_SIZES", "16, 32")
	s.T().Setenv("PRIMELAB_SEED", "42")
	s.T().Setenv("PRIMELAB_PRNG_ITERATIONS", "2500")
	s.T().Setenv("PRIMELAB_REDIS_DIAL_TIMEOUT", "250ms")
	s.T().Setenv("PRIMELAB_KAFKA_BROKERS", "localhost:9092,localhost:9093")

	cfg, err := FromEnv()
	s.Require().NoError(err)

	s.Equal([]int{16, 32}, cfg.BitSizes)
	s.Equal(int64(42), cfg.Seed)
	s.Equal(2500, cfg.PRNG.Iterations)
	s.Equal(250*time.Millisecond, cfg.Redis.DialTimeout)
	s.Equal([]string{"localhost:9092", "localhost:9093"}, cfg.Kafka.Brokers)
}

func (s *ConfigSuite) TestListsAreNormalized() {
	s.T().Setenv("PRIMELAB_BIT_SIZES", "40,56,40")
	s.T().Setenv("PRIMELAB_PRIME_ALGORITHMS", " Miller_Rabin ,fermat,MILLER_RABIN")
	s.T().Setenv("PRIMELAB_PRNG_ALGORITHMS", "XorShift,,lcg")
	s.T().Setenv("PRIMELAB_PRIME_SOURCE", "Crypto")

	cfg, err := FromEnv()
	s.Require().NoError(err)

	s.Equal([]int{40, 56}, cfg.BitSizes)
	s.Equal([]string{"miller_rabin", "fermat"}, cfg.Prime.Algorithms)
	s.Equal([]string{"xorshift", "lcg"}, cfg.PRNG.Algorithms)
	s.Equal("crypto", cfg.Prime.Source)
}

func (s *ConfigSuite) TestInvalidValues() {
	s.Run("malformed integer", func() {
		s.T().Setenv("PRIMELAB_PRNG_ITERATIONS", "many")
		_, err := FromEnv()
		s.Require().Error(err)
		s.Contains(err.Error(), "PRIMELAB_PRNG_ITERATIONS")
	})

	s.Run("bit size below two", func() {
		s.T().Setenv("PRIMELAB_BIT_SIZES", "1")
		_, err := FromEnv()
		s.Require().Error(err)
		s.Contains(err.Error(), "below 2")
	})

	s.Run("zero batch size", func() {
		s.T().Setenv("PRIMELAB_PRNG_BATCH_SIZE", "0")
		_, err := FromEnv()
		s.Require().Error(err)
	})
}
