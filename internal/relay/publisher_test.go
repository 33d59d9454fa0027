package relay

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/replicore/internal/config"
	"github.com/l1jgo/replicore/internal/core/event"
)

func startNats(t *testing.T) string {
	t.Helper()
	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1, NoSigs: true, NoLog: true})
	require.NoError(t, err)
	ns.Start()
	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	require.True(t, ns.ReadyForConnections(5*time.Second), "nats server not ready")
	return ns.ClientURL()
}

func subscribe(t *testing.T, url, subject string) *nats.Subscription {
	t.Helper()
	nc, err := nats.Connect(url)
	require.NoError(t, err)
	t.Cleanup(nc.Close)
	sub, err := nc.SubscribeSync(subject)
	require.NoError(t, err)
	require.NoError(t, nc.Flush())
	return sub
}

func TestRelayForwardsBusEvents(t *testing.T) {
	url := startNats(t)
	sub := subscribe(t, url, "test.>")

	pub, err := Connect(config.EventsConfig{NatsURL: url, SubjectPrefix: "test", ReconnectWait: time.Second}, "relay-test", zap.NewNop())
	require.NoError(t, err)
	defer pub.Close()

	bus := event.NewBus(zap.NewNop())
	pub.Attach(bus)
	event.Emit(bus, event.PlayerEntered{GUID: 7, SessionID: 3, MapID: 530})
	event.Emit(bus, event.PartitionUnloaded{MapID: 33, InstanceID: 2})
	bus.SwapBuffers()
	bus.DispatchAll()

	got := map[string][]byte{}
	for i := 0; i < 2; i++ {
		msg, err := sub.NextMsg(2 * time.Second)
		require.NoError(t, err)
		got[msg.Subject] = msg.Data
	}

	var entered event.PlayerEntered
	require.NoError(t, json.Unmarshal(got["test.player.entered"], &entered))
	assert.Equal(t, event.PlayerEntered{GUID: 7, SessionID: 3, MapID: 530}, entered)
	assert.JSONEq(t, `{"map":33,"instance":2}`, string(got["test.partition.unloaded"]))
}

func TestConnectFailsWithoutServer(t *testing.T) {
	_, err := Connect(config.EventsConfig{NatsURL: "nats://127.0.0.1:1", SubjectPrefix: "x"}, "relay-test", zap.NewNop())
	assert.Error(t, err)
}

func TestSubject(t *testing.T) {
	p := NewPublisher(nil, "replicore", nil)
	assert.Equal(t, "replicore.player.left", p.Subject(SubjectPlayerLeft))
}
