package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/charlcd"
)

type fakeHID struct {
	requests [][]byte
	replies  [][]byte
	closed   int
	writeErr error
}

func (f *fakeHID) Write(b []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.requests = append(f.requests, append([]byte(nil), b...))
	return len(b), nil
}

func (f *fakeHID) Read(b []byte) (int, error) {
	if len(f.replies) == 0 {
		return len(b), nil
	}
	copy(b, f.replies[0])
	f.replies = f.replies[1:]
	return len(b), nil
}

func (f *fakeHID) Close() error {
	f.closed++
	return nil
}

func reply(values ...byte) []byte {
	b := make([]byte, reportSize)
	copy(b, values)
	return b
}

func newTestAdapter(f *fakeHID) *MCP2221 {
	d := NewMCP2221()
	d.responseWait = time.Millisecond
	d.open = func(...int) (device, error) { return f, nil }
	return d
}

func TestWriteToAddr(t *testing.T) {
	f := &fakeHID{replies: [][]byte{reply(cmdWriteData, 0x00)}}
	d := newTestAdapter(f)
	err := d.WriteToAddr(context.Background(), 0x20, []byte{0x29})
	require.NoError(t, err)
	require.Len(t, f.requests, 1)
	assert.Equal(t, []byte{cmdWriteData, 0x01, 0x00, 0x40, 0x29}, f.requests[0][:5])
	assert.Equal(t, 1, f.closed)
}

func TestWriteToAddrBusy(t *testing.T) {
	f := &fakeHID{replies: [][]byte{reply(cmdWriteData, respBusy)}}
	d := newTestAdapter(f)
	err := d.WriteToAddr(context.Background(), 0x20, []byte{0x29})
	assert.ErrorIs(t, err, charlcd.ErrBusBusy)
}

func TestWriteToAddrDeviceError(t *testing.T) {
	f := &fakeHID{writeErr: errors.New("unplugged")}
	d := newTestAdapter(f)
	err := d.WriteToAddr(context.Background(), 0x20, []byte{0x29})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unplugged")
}

func TestWriteToAddrTooLong(t *testing.T) {
	d := newTestAdapter(&fakeHID{})
	err := d.WriteToAddr(context.Background(), 0x20, make([]byte, reportSize))
	assert.Error(t, err)
}

func TestReadFromAddr(t *testing.T) {
	f := &fakeHID{replies: [][]byte{
		reply(cmdReadData, 0x00),
		reply(cmdGetData, 0x00, 0x00, 0x02, 0xAB, 0xCD),
	}}
	d := newTestAdapter(f)
	buf := make([]byte, 2)
	err := d.ReadFromAddr(context.Background(), 0x20, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAB, 0xCD}, buf)
	require.Len(t, f.requests, 2)
	assert.Equal(t, byte(0x41), f.requests[0][3])
	assert.Equal(t, byte(cmdGetData), f.requests[1][0])
}

func TestReadFromAddrFailed(t *testing.T) {
	f := &fakeHID{replies: [][]byte{
		reply(cmdReadData, 0x00),
		reply(cmdGetData, respReadFailed),
	}}
	d := newTestAdapter(f)
	err := d.ReadFromAddr(context.Background(), 0x20, make([]byte, 1))
	assert.Error(t, err)
}

func TestInitSetsSpeed(t *testing.T) {
	f := &fakeHID{replies: [][]byte{reply(cmdStatus, 0x00, 0x00, speedAccepted)}}
	d := newTestAdapter(f)
	err := d.Init(context.Background(), 100_000)
	require.NoError(t, err)
	require.Len(t, f.requests, 1)
	assert.Equal(t, byte(subSetSpeed), f.requests[0][3])
	assert.Equal(t, byte(117), f.requests[0][4])
}

func TestInitRejected(t *testing.T) {
	f := &fakeHID{replies: [][]byte{reply(cmdStatus, 0x00, 0x00, 0x21)}}
	d := newTestAdapter(f)
	err := d.Init(context.Background(), 100_000)
	assert.ErrorIs(t, err, ErrCommandFailed)
}

func TestInitUnsupportedSpeed(t *testing.T) {
	d := newTestAdapter(&fakeHID{})
	assert.Error(t, d.Init(context.Background(), 0))
	assert.Error(t, d.Init(context.Background(), 10_000_000))
}

func TestReleaseBus(t *testing.T) {
	r := reply(cmdStatus)
	r[9], r[10] = 0x04, 0x00
	r[11], r[12] = 0x02, 0x00
	r[14] = 117
	f := &fakeHID{replies: [][]byte{r}}
	d := newTestAdapter(f)
	status, err := d.ReleaseBus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, byte(subCancel), f.requests[0][2])
	assert.Equal(t, uint16(4), status.LastWriteRequestedSize)
	assert.Equal(t, uint16(2), status.LastWriteSentSize)
	assert.Equal(t, 117, status.I2CSpeedDivider)
}

func TestSendCancelled(t *testing.T) {
	d := newTestAdapter(&fakeHID{})
	d.responseWait = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.Status(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
