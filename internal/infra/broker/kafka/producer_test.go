package kafka

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducerPublishSendsHeadersAndKey(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		assert.JSONEq(t, `{"ok":true}`, string(val))
		return nil
	})
	p := newProducer(sp)

	err := p.Publish(context.Background(), "booking.events.v1", "listing-1", []byte(`{"ok":true}`), map[string]string{"content-type": "application/json"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestProducerPublishSurfacesBrokerError(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	p := newProducer(sp)

	err := p.Publish(context.Background(), "t", "k", []byte(`{}`), nil)
	assert.ErrorContains(t, err, "publish to t")
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer(ProducerConfig{ClientID: "flatfinder"})
	assert.ErrorIs(t, err, ErrNoBrokers)
}

func TestRecordHeadersAreOrdered(t *testing.T) {
	hs := recordHeaders(map[string]string{"ce_type": "b", "ce_id": "a", "content-type": "c"})
	require.Len(t, hs, 3)
	assert.Equal(t, "ce_id", string(hs[0].Key))
	assert.Equal(t, "ce_type", string(hs[1].Key))
	assert.Equal(t, "content-type", string(hs[2].Key))
	assert.Empty(t, recordHeaders(nil))
}

func TestSaramaConfigIsIdempotent(t *testing.T) {
	sc := ProducerConfig{ClientID: "ff", Version: sarama.V2_8_0_0}.saramaConfig()
	assert.True(t, sc.Producer.Idempotent)
	assert.Equal(t, sarama.WaitForAll, sc.Producer.RequiredAcks)
	assert.Equal(t, 1, sc.Net.MaxOpenRequests)
	assert.Equal(t, "ff", sc.ClientID)
	assert.Equal(t, sarama.V2_8_0_0, sc.Version)
	require.NoError(t, sc.Validate())
}
