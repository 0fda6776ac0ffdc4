package mqtt

import (
	"context"
	"testing"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"github.com/kopong25/freightquick/infra/logger"
)

type stubMessage struct {
	topic   string
	payload []byte
}

func (m stubMessage) Duplicate() bool   { return false }
func (m stubMessage) Qos() byte         { return 1 }
func (m stubMessage) Retained() bool    { return false }
func (m stubMessage) Topic() string     { return m.topic }
func (m stubMessage) MessageID() uint16 { return 0 }
func (m stubMessage) Payload() []byte   { return m.payload }
func (m stubMessage) Ack()              {}

var _ paho.Message = stubMessage{}

func testListener(handler PositionHandler) (*PositionListener, *fakeClient) {
	cli := &fakeClient{}
	l := &PositionListener{cli: cli, handler: handler, log: logger.NopLogger{}}
	return l, cli
}

func TestPositionMessageDecodesAndDispatches(t *testing.T) {
	var gotID string
	var gotReport PositionReport
	l, _ := testListener(func(_ context.Context, driverID string, report PositionReport) error {
		gotID = driverID
		gotReport = report
		return nil
	})

	l.onMessage(nil, stubMessage{
		topic:   "driver/IGRAU/position",
		payload: []byte(`{"lat":41.85,"lon":-87.65,"name":"Chicago, IL","duty_hours_left":8.5}`),
	})

	require.Equal(t, "IGRAU", gotID)
	require.Equal(t, "Chicago, IL", gotReport.Name)
	require.InDelta(t, 41.85, gotReport.Lat, 1e-9)
	require.NotNil(t, gotReport.DutyHoursLeft)
	require.InDelta(t, 8.5, *gotReport.DutyHoursLeft, 1e-9)

	loc := gotReport.Location()
	require.Equal(t, "Chicago, IL", loc.Name)
	require.InDelta(t, -87.65, loc.Lon, 1e-9)
}

func TestPositionMessageBadPayloadIgnored(t *testing.T) {
	called := false
	l, _ := testListener(func(context.Context, string, PositionReport) error {
		called = true
		return nil
	})

	l.onMessage(nil, stubMessage{topic: "driver/IGRAU/position", payload: []byte("not json")})
	require.False(t, called)

	l.onMessage(nil, stubMessage{topic: "garbage", payload: []byte(`{}`)})
	require.False(t, called)
}
