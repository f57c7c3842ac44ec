package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acsim/internal/breaker"
	"acsim/internal/models"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { f.closed = true; return nil }

func summary() models.RunSummary {
	return models.RunSummary{
		RunID:              "run-1",
		CreatedAt:          time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
		HourCount:          8760,
		BaselineEnergyKWh:  4000,
		OptimizedEnergyKWh: 3000,
		SavingsPct:         25,
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	fw := &fakeWriter{}
	p := &KafkaPublisher{w: fw}

	require.NoError(t, p.Publish(context.Background(), summary()))
	require.Len(t, fw.msgs, 1)
	assert.Equal(t, "run-1", string(fw.msgs[0].Key))

	var got models.RunSummary
	require.NoError(t, json.Unmarshal(fw.msgs[0].Value, &got))
	assert.Equal(t, summary(), got)

	require.NoError(t, p.Close())
	assert.True(t, fw.closed)
}

func TestKafkaPublisher_BreakerFastFails(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker unreachable")}
	brk := breaker.New("kafka", breaker.Config{MaxFailures: 1, ResetTimeout: time.Hour})
	p := &KafkaPublisher{w: fw, brk: brk}

	err := p.Publish(context.Background(), summary())
	assert.ErrorIs(t, err, breaker.ErrOpen)

	fw.err = nil
	err = p.Publish(context.Background(), summary())
	assert.ErrorIs(t, err, breaker.ErrOpen)
	assert.Empty(t, fw.msgs)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), summary()))
	assert.NoError(t, p.Close())
}
