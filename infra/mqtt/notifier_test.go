package mqtt

import (
	"context"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"github.com/kopong25/freightquick/core/notify"
	"github.com/kopong25/freightquick/infra/logger"
)

type stubToken struct{ err error }

func (t stubToken) Wait() bool                     { return true }
func (t stubToken) WaitTimeout(time.Duration) bool { return true }
func (t stubToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t stubToken) Error() error { return t.err }

type fakeClient struct {
	published  []string
	payloads   [][]byte
	failures   int
	subscribed string
	callback   paho.MessageHandler
}

func (f *fakeClient) IsConnected() bool   { return true }
func (f *fakeClient) Connect() paho.Token { return stubToken{} }
func (f *fakeClient) Disconnect(uint)     {}
func (f *fakeClient) Subscribe(topic string, _ byte, callback paho.MessageHandler) paho.Token {
	f.subscribed = topic
	f.callback = callback
	return stubToken{}
}
func (f *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	if f.failures > 0 {
		f.failures--
		return stubToken{err: errors.New("broker unavailable")}
	}
	f.published = append(f.published, topic)
	f.payloads = append(f.payloads, payload.([]byte))
	return stubToken{}
}

func testNotifier(cli pahoClient) *Notifier {
	return &Notifier{
		cli:     cli,
		prefix:  "driver",
		qos:     1,
		retries: 3,
		backoff: time.Millisecond,
		log:     logger.NopLogger{},
	}
}

func TestNotifierPublishesToDriverTopic(t *testing.T) {
	cli := &fakeClient{}
	n := testNotifier(cli)

	err := n.NotifyAssignment(context.Background(), notify.Notice{
		DriverID:     "d1",
		AssignmentID: "a1",
		LoadID:       "l1",
		StateLabel:   "pending",
		Category:     "SOURCE_LOAD",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"driver/d1/assignment"}, cli.published)
	require.Contains(t, string(cli.payloads[0]), `"assignment_id":"a1"`)
}

func TestNotifierRetriesTransientFailures(t *testing.T) {
	cli := &fakeClient{failures: 2}
	n := testNotifier(cli)

	err := n.NotifyAssignment(context.Background(), notify.Notice{DriverID: "d1", AssignmentID: "a1"})
	require.NoError(t, err)
	require.Len(t, cli.published, 1)
}

func TestNotifierGivesUpAfterRetries(t *testing.T) {
	cli := &fakeClient{failures: 10}
	n := testNotifier(cli)

	err := n.NotifyAssignment(context.Background(), notify.Notice{DriverID: "d1", AssignmentID: "a1"})
	require.Error(t, err)
	require.Empty(t, cli.published)
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	require.Equal(t, "driver", cfg.TopicPrefix)
	require.Equal(t, 3, cfg.MaxRetries)
}

func TestLoadTLSConfigRequiresPaths(t *testing.T) {
	cfg := Config{UseTLS: true}
	_, err := cfg.LoadTLSConfig()
	require.Error(t, err)
}
