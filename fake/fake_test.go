package fake_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/codec/jsoncodec"
	"github.com/momentics/hioload-ua/fake"
	"github.com/momentics/hioload-ua/protocol"
)

func TestTransportSendRecv(t *testing.T) {
	tr := fake.NewTransport()
	require.NoError(t, tr.Send([][]byte{[]byte("a"), []byte("b")}))
	assert.Len(t, tr.GetSentData(), 2)

	tr.AddRecvData([]byte("x"))
	got, err := tr.Recv()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("x")}, got)

	got, err = tr.Recv()
	require.NoError(t, err)
	assert.Empty(t, got)

	boom := errors.New("boom")
	tr.SetSendError(boom)
	assert.ErrorIs(t, tr.Send([][]byte{[]byte("c")}), boom)
	assert.Equal(t, 2, tr.SendCalls())

	require.NoError(t, tr.Close())
	assert.ErrorIs(t, tr.Send(nil), api.ErrTransportClosed)
	_, err = tr.Recv()
	assert.ErrorIs(t, err, api.ErrTransportClosed)
}

func TestServerPump(t *testing.T) {
	codec := jsoncodec.New()
	srv := fake.NewServer(codec)
	srv.Handle("ReadRequest", fake.Echo(func() *protocol.ReadResponse { return &protocol.ReadResponse{} }))

	req := &protocol.ReadRequest{}
	req.Header.RequestHandle = 42
	frame, err := codec.EncodeRequest(3, req)
	require.NoError(t, err)
	require.NoError(t, srv.Transport().Send([][]byte{frame}))

	unanswered, err := codec.EncodeRequest(4, &protocol.WriteRequest{})
	require.NoError(t, err)
	require.NoError(t, srv.Transport().Send([][]byte{unanswered}))

	n, err := srv.Pump()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, srv.Received(), 2)

	last, ok := srv.Last("WriteRequest")
	require.True(t, ok)
	assert.EqualValues(t, 4, last.ID)

	frames, err := srv.Transport().Recv()
	require.NoError(t, err)
	require.Len(t, frames, 1)
	id, resp, err := codec.DecodeResponse(frames[0])
	require.NoError(t, err)
	assert.EqualValues(t, 3, id)
	assert.EqualValues(t, 42, resp.ResponseHeader().RequestHandle)
}
