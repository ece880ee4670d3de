package dotxch

import (
	"github.com/everFinance/dotxch/schema"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"testing"
)

func TestNewKWriter_Brokers(t *testing.T) {
	_, err := NewKWriter(schema.DomainTopic, " , ")
	assert.Error(t, err)

	w, err := NewKWriter(schema.DomainTopic, "k1:9092, k2:9092")
	require.NoError(t, err)
	assert.Equal(t, schema.DomainTopic, w.w.Topic)
	assert.IsType(t, &kafka.Hash{}, w.w.Balancer)
}

// Needs a broker, e.g. DOTXCH_KAFKA_URI=localhost:9092
func TestKWriter_Write(t *testing.T) {
	uri := os.Getenv("DOTXCH_KAFKA_URI")
	if uri == "" {
		t.Skip("DOTXCH_KAFKA_URI not set")
	}
	w, err := NewKWriter(schema.DomainTopic, uri)
	require.NoError(t, err)
	defer w.Close()
	assert.NoError(t, w.Write("test.xch", []byte(`{"domainName":"test.xch"}`)))
}
