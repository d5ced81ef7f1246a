package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"primelab/internal/platform/config"
	"primelab/pkg/platform/sentinel"
)

func TestNewProducerWithoutBrokers(t *testing.T) {
	producer, err := NewProducer(context.Background(), config.KafkaConfig{})
	require.NoError(t, err)
	require.Nil(t, producer)
}

func TestNewProducerRequiresTopic(t *testing.T) {
	_, err := NewProducer(context.Background(), config.KafkaConfig{Brokers: []string{"localhost:9092"}})
	require.ErrorIs(t, err, sentinel.ErrNotConfigured)
}
