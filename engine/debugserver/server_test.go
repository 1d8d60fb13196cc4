package debugserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/profiler"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu    sync.Mutex
	stats profiler.Stats
	last  renderer.FrameReport
}

func (f *fakeSource) Stats() profiler.Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

func (f *fakeSource) setFrames(n uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats.Frames = n
}

func (f *fakeSource) Last() renderer.FrameReport {
	return f.last
}

func newTestServer(t *testing.T, src Source) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(src, WithLogger(logger.NewWithWriter(&bytes.Buffer{}, "error", "test")))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func TestStatsEndpoint(t *testing.T) {
	src := &fakeSource{stats: profiler.Stats{Frames: 12, FPS: 60, Draws: 7, Width: 800, Height: 600}}
	_, ts := newTestServer(t, src)

	resp, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 12.0, got["frames"])
	assert.Equal(t, 60.0, got["fps"])
	assert.Equal(t, 7.0, got["draws"])
	assert.Equal(t, 800.0, got["width"])
}

func TestStatsRejectsPost(t *testing.T) {
	_, ts := newTestServer(t, &fakeSource{})
	resp, err := http.Post(ts.URL+"/stats", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestFrameDump(t *testing.T) {
	src := &fakeSource{last: renderer.FrameReport{Frame: 42, Passes: []string{"Skybox", "Model"}, Draws: 3}}
	_, ts := newTestServer(t, src)

	resp, err := http.Get(ts.URL + "/debug/frame")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	dump := string(body)
	assert.Contains(t, dump, "renderer.FrameReport")
	assert.Contains(t, dump, "Frame: (uint64) 42")
	assert.Contains(t, dump, `"Skybox"`)
}

func TestWebSocketPushesStats(t *testing.T) {
	src := &fakeSource{stats: profiler.Stats{Frames: 1}}
	s, ts := newTestServer(t, src)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first profiler.Stats
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, uint64(1), first.Frames, "current stats are sent on connect")
	assert.Equal(t, 1, s.Clients())

	src.setFrames(2)
	s.Broadcast()
	var second profiler.Stats
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, uint64(2), second.Frames)
}

func TestStartAndShutdown(t *testing.T) {
	s := NewServer(&fakeSource{stats: profiler.Stats{FPS: 30}},
		WithAddr("127.0.0.1:0"),
		WithInterval(10*time.Millisecond),
		WithLogger(logger.NewWithWriter(&bytes.Buffer{}, "error", "test")),
	)
	require.NoError(t, s.Start())
	assert.Error(t, s.Start())

	resp, err := http.Get("http://" + s.Addr() + "/stats")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, s.Shutdown(ctx), "second shutdown is a no-op")
}

func TestNewServerRequiresSource(t *testing.T) {
	assert.PanicsWithValue(t, "debugserver: source is required", func() {
		NewServer(nil)
	})
}
