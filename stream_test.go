package grpcprom

import (
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func testCounter() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Name: "test_msgs_total"})
}

func TestMonitoredStreamCountsAtConsumption(t *testing.T) {
	received := testCounter()
	sent := testCounter()
	base := &fakeServerStream{recvLeft: 3}

	s := &monitoredServerStream{ServerStream: base, received: received, sent: sent}

	// Only pulled messages count
	assert.NoError(t, s.RecvMsg(nil))
	assert.NoError(t, s.RecvMsg(nil))
	assert.Equal(t, float64(2), testutil.ToFloat64(received))

	// Termination passes through uncounted
	assert.NoError(t, s.RecvMsg(nil))
	assert.Equal(t, io.EOF, s.RecvMsg(nil))
	assert.Equal(t, float64(3), testutil.ToFloat64(received))

	assert.NoError(t, s.SendMsg("a"))
	assert.Equal(t, float64(1), testutil.ToFloat64(sent))
}

func TestMonitoredStreamErrorNotCounted(t *testing.T) {
	sent := testCounter()
	wantErr := errors.New("conn reset")
	base := &fakeServerStream{sendErr: wantErr, recvErr: wantErr}

	s := &monitoredServerStream{ServerStream: base, received: testCounter(), sent: sent}

	assert.Equal(t, wantErr, s.SendMsg("a"))
	assert.Equal(t, wantErr, s.RecvMsg(nil))
	assert.Equal(t, float64(0), testutil.ToFloat64(sent))
	assert.Equal(t, float64(0), testutil.ToFloat64(s.received))
}

func TestMonitoredStreamNilCountersDisable(t *testing.T) {
	base := &fakeServerStream{recvLeft: 1}
	s := &monitoredServerStream{ServerStream: base}

	assert.NoError(t, s.RecvMsg(nil))
	assert.NoError(t, s.SendMsg("a"))
	assert.Equal(t, 1, base.received)
	assert.Equal(t, 1, base.sent)
}
