package feed

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BatchWindow = 50 * time.Millisecond
	cfg.InitialReconnectDelay = 10 * time.Millisecond
	cfg.MaxReconnectDelay = 50 * time.Millisecond
	cfg.HandshakeTimeout = time.Second
	return cfg
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func nextEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "event channel closed early")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

// readInitialRequest consumes the snapshot request every fresh
// connection sends first.
func readInitialRequest(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	var req map[string]string
	require.NoError(t, conn.ReadJSON(&req))
	assert.Equal(t, "request_initial", req["action"])
}

func TestActorConnectsAndBatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer func() { _ = conn.Close() }()

		readInitialRequest(t, conn)

		payload := `[
			{"token_address": "0xa", "token_symbol": "AAA"},
			{"token_address": "0xb", "token_symbol": "BBB"}
		]`
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))

		// Keep the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	actor := New(testConfig(), zap.NewNop())
	defer actor.Close()
	require.NoError(t, actor.Init(wsURL(srv)))

	status, ok := nextEvent(t, actor.Events()).(ConnectionStatus)
	require.True(t, ok)
	assert.True(t, status.Connected)
	assert.Equal(t, uint64(1), status.Epoch)

	batch, ok := nextEvent(t, actor.Events()).(Batch)
	require.True(t, ok)
	require.Len(t, batch.Records, 2)
	assert.Equal(t, "0xa", batch.Records[0].Address)
	assert.Equal(t, "0xb", batch.Records[1].Address)
	assert.Equal(t, uint64(1), batch.Epoch)
}

func TestActorCoalescesUpToBatchSize(t *testing.T) {
	cfg := testConfig()
	cfg.BatchWindow = 10 * time.Second // only the size threshold flushes
	cfg.BatchSize = 3

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer func() { _ = conn.Close() }()

		readInitialRequest(t, conn)

		// Three single-record messages coalesce into one batch.
		for _, addr := range []string{"0xa", "0xb", "0xc"} {
			msg := `{"token_address": "` + addr + `"}`
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
		}

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	actor := New(cfg, zap.NewNop())
	defer actor.Close()
	require.NoError(t, actor.Init(wsURL(srv)))

	_ = nextEvent(t, actor.Events()) // connected

	batch, ok := nextEvent(t, actor.Events()).(Batch)
	require.True(t, ok)
	assert.Len(t, batch.Records, 3)
}

func TestActorDropsUndecodableMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer func() { _ = conn.Close() }()

		readInitialRequest(t, conn)

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`garbage{{`)))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"token_address": "0xok"}`)))

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	actor := New(testConfig(), zap.NewNop())
	defer actor.Close()
	require.NoError(t, actor.Init(wsURL(srv)))

	_ = nextEvent(t, actor.Events()) // connected

	batch, ok := nextEvent(t, actor.Events()).(Batch)
	require.True(t, ok)
	require.Len(t, batch.Records, 1)
	assert.Equal(t, "0xok", batch.Records[0].Address)
}

func TestActorReconnectsWithNewEpoch(t *testing.T) {
	var connections atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		readInitialRequest(t, conn)

		if connections.Add(1) == 1 {
			// Drop the first connection right away.
			_ = conn.Close()
			return
		}

		defer func() { _ = conn.Close() }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	actor := New(testConfig(), zap.NewNop())
	defer actor.Close()
	require.NoError(t, actor.Init(wsURL(srv)))

	status, ok := nextEvent(t, actor.Events()).(ConnectionStatus)
	require.True(t, ok)
	assert.True(t, status.Connected)
	assert.Equal(t, uint64(1), status.Epoch)

	status, ok = nextEvent(t, actor.Events()).(ConnectionStatus)
	require.True(t, ok)
	assert.False(t, status.Connected)
	assert.NotEmpty(t, status.Err)
	assert.Equal(t, uint64(1), status.Epoch)

	status, ok = nextEvent(t, actor.Events()).(ConnectionStatus)
	require.True(t, ok)
	assert.True(t, status.Connected)
	assert.Equal(t, uint64(2), status.Epoch)
}

func TestActorRequestsSnapshotOncePerConnection(t *testing.T) {
	requests := make(chan string, 8)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer func() { _ = conn.Close() }()

		for {
			var req map[string]string
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			requests <- req["action"]
		}
	}))
	defer srv.Close()

	actor := New(testConfig(), zap.NewNop())
	defer actor.Close()
	require.NoError(t, actor.Init(wsURL(srv)))

	_ = nextEvent(t, actor.Events()) // connected

	// Exactly one automatic snapshot request per connection.
	assert.Equal(t, "request_initial", <-requests)
	select {
	case extra := <-requests:
		t.Fatalf("unexpected extra request %q", extra)
	case <-time.After(200 * time.Millisecond):
	}

	// An explicit refresh resends it on the open connection.
	require.NoError(t, actor.RequestInitial())
	select {
	case req := <-requests:
		assert.Equal(t, "request_initial", req)
	case <-time.After(5 * time.Second):
		t.Fatal("refresh request never arrived")
	}
}

func TestActorCloseTerminates(t *testing.T) {
	actor := New(testConfig(), zap.NewNop())
	actor.Close()

	// The events channel closes and further commands fail.
	_, ok := <-actor.Events()
	assert.False(t, ok)
	assert.ErrorIs(t, actor.Init("ws://localhost:1"), ErrClosed)
}

func TestActorCloseStopsReconnectLoop(t *testing.T) {
	// No server listening: the actor sits in its dial backoff loop.
	actor := New(testConfig(), zap.NewNop())
	require.NoError(t, actor.Init("ws://127.0.0.1:1/stream"))

	done := make(chan struct{})
	go func() {
		actor.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not terminate the reconnect loop")
	}
}

func TestDecode(t *testing.T) {
	a := &Actor{logger: zap.NewNop()}

	records := a.decode([]byte(`[{"token_address": "0xa"}, {"token_address": "0xb"}]`))
	require.Len(t, records, 2)

	records = a.decode([]byte(`{"token_address": "0xa"}`))
	require.Len(t, records, 1)
	assert.Equal(t, "0xa", records[0].Address)

	assert.Nil(t, a.decode([]byte(`not json at all`)))
}

func TestDecodePreservesPayloads(t *testing.T) {
	a := &Actor{logger: zap.NewNop()}

	records := a.decode([]byte(`{
		"token_address": "0xa",
		"gp_lp_holders": [{"address": "0x1", "is_locked": true, "percent": "50"}]
	}`))
	require.Len(t, records, 1)

	lp := records[0].DecodeLPHolders()
	assert.True(t, lp.Parsed)
	assert.True(t, lp.HasLockedLiquidity())
}
