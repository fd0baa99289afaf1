package nats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	natsgo "github.com/nats-io/nats.go"
)

func TestNats_Publisher(t *testing.T) {
	connect := ReuseConnection(NewTestContainer(t))

	pub, err := NewPublisher(PublisherConfig{Connect: connect, SubjectPrefix: "test.events"})
	require.NoError(t, err)
	defer pub.Close()

	nc, release, err := connect()
	require.NoError(t, err)
	defer release()

	msgs := make(chan *natsgo.Msg, 4)
	sub, err := nc.ChanSubscribe("test.events.>", msgs)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	require.NoError(t, nc.Flush())

	require.Equal(t, "test.events.noted", pub.Subject("noted"))
	require.NoError(t, pub.Publish(t.Context(), &noted{Text: "hello"}))

	select {
	case msg := <-msgs:
		require.Equal(t, "test.events.noted", msg.Subject)
		require.Equal(t, "noted", msg.Header.Get(headerEventType))
		require.JSONEq(t, `{"text":"hello"}`, string(msg.Data))
	case <-time.After(5 * time.Second):
		t.Fatal("timeout")
	}
}
