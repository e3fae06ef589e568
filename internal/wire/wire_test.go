package wire

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grabd/internal/message"
)

func TestWriteReadRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		wc := New(client)
		_ = wc.WriteMsg(&message.Message{
			Type:  message.TypeList,
			Limit: 5,
		})
	}()

	sc := New(server)
	got, err := sc.ReadMsg()
	require.NoError(t, err)
	assert.Equal(t, message.TypeList, got.Type)
	assert.Equal(t, 5, got.Limit)
}

func TestBinaryPayloadSurvivesFraming(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	payload := []byte{0x89, 'P', 'N', 'G', '\n', 0x00, 0xff}
	go func() {
		wc := New(client)
		_ = wc.WriteMsg(&message.Message{
			Type:    message.TypeEvent,
			Entries: []message.Entry{{ID: "01X", Category: "image", Payload: payload}},
		})
	}()

	sc := New(server)
	got, err := sc.ReadMsg()
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	// Raw newlines in the payload must not break the line framing.
	assert.Equal(t, payload, got.Entries[0].Payload)
}
