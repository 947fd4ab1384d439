package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/weather-augment/internal/config"
	"github.com/couchcryptid/weather-augment/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	started := time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)
	finished := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	event := domain.RunEvent{
		RunID:      "run-1",
		Dataset:    "cityscapes",
		Phase:      domain.PhaseRain,
		Sequences:  []string{"leftImg8bit/val"},
		OutputDir:  "/data/out",
		Generated:  12,
		Skipped:    1,
		StartedAt:  started,
		FinishedAt: finished,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("cityscapes"), msg.Key)
	assert.Contains(t, string(msg.Value), `"phase":"rain"`)
	assert.Contains(t, string(msg.Value), `"generated":12`)
	assert.NotContains(t, string(msg.Value), `"archives"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "phase", msg.Headers[0].Key)
	assert.Equal(t, []byte("rain"), msg.Headers[0].Value)
	assert.Equal(t, "finished_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(finished.Format(time.RFC3339)), msg.Headers[1].Value)

	var back domain.RunEvent
	require.NoError(t, json.Unmarshal(msg.Value, &back))
	assert.Equal(t, event.Sequences, back.Sequences)
	assert.Equal(t, 1, back.Skipped)
	assert.True(t, finished.Equal(back.FinishedAt))
}

func TestNewPublisher(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "runs"}
	p := NewPublisher(cfg, nil)

	assert.Equal(t, "runs", p.writer.Topic)
	assert.Equal(t, kafkago.RequireAll, p.writer.RequiredAcks)
	require.NoError(t, p.Close())
}
