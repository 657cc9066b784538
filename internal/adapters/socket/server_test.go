package socket

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/corey/lastwatched/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// =============================================================================
// Provider host socket: JSON-over-socket protocol for overlay, menu, property
// =============================================================================

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeHost is an in-memory ports.ShellHost.
type fakeHost struct {
	mu      sync.Mutex
	watched map[string]bool
	broken  map[string]bool
	icon    string
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		watched: map[string]bool{"/tv/a.mkv": true},
		broken:  map[string]bool{"/broken/a.mkv": true},
		icon:    "/opt/lastwatched/icon.ico",
	}
}

func (h *fakeHost) IsMember(path string) ports.Membership {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case h.broken[path]:
		return ports.MembershipError
	case h.watched[path]:
		return ports.Member
	default:
		return ports.NotMember
	}
}

func (h *fakeHost) OverlayInfo(bufLen int) (ports.OverlayInfo, error) {
	if bufLen > 0 && bufLen <= len(h.icon) {
		return ports.OverlayInfo{}, fmt.Errorf("%w: need %d", ports.ErrBufferTooSmall, len(h.icon)+1)
	}
	return ports.OverlayInfo{IconPath: h.icon, Flags: ports.OverlayIconFile}, nil
}

func (h *fakeHost) Verbs(path string) []ports.Verb {
	if filepath.Ext(path) != ".mkv" {
		return nil
	}
	return []ports.Verb{{Name: "mark-watched", HelpText: "Mark video as watched"}}
}

func (h *fakeHost) InvokeCommand(verb, path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch verb {
	case "mark-watched":
		if filepath.Ext(path) != ".mkv" {
			return &ports.OpError{Op: "mark watched", Path: path, Kind: ports.ErrUnsupportedExtension}
		}
		h.watched[path] = true
	case "mark-unwatched":
		delete(h.watched, path)
	default:
		return fmt.Errorf("%w: %q", ports.ErrUnknownVerb, verb)
	}
	return nil
}

func (h *fakeHost) Property(path, key string) (bool, error) {
	if key != "watched" {
		return false, ports.ErrUnknownProperty
	}
	return h.IsMember(path) == ports.Member, nil
}

// testSocketPath returns a unique socket path for a test.
func testSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.sock")
}

func startServer(t *testing.T, host ports.ShellHost) (*Server, *Client) {
	t.Helper()
	sockPath := testSocketPath(t)
	srv := NewServer(host, sockPath, nil)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Stop() })
	return srv, NewClient(sockPath)
}

func TestServer_IsMember(t *testing.T) {
	_, client := startServer(t, newFakeHost())

	m, err := client.IsMember("/tv/a.mkv")
	require.NoError(t, err)
	assert.Equal(t, ports.Member, m)

	m, err = client.IsMember("/tv/b.mkv")
	require.NoError(t, err)
	assert.Equal(t, ports.NotMember, m)

	m, err = client.IsMember("/broken/a.mkv")
	require.NoError(t, err, "lookup failures are an answer, not a request error")
	assert.Equal(t, ports.MembershipError, m)
	assert.False(t, m.Watched())
}

func TestServer_OverlayInfo(t *testing.T) {
	_, client := startServer(t, newFakeHost())

	info, err := client.OverlayInfo(260)
	require.NoError(t, err)
	assert.Equal(t, "/opt/lastwatched/icon.ico", info.IconPath)
	assert.Equal(t, uint32(ports.OverlayIconFile), info.Flags)

	_, err = client.OverlayInfo(4)
	assert.ErrorIs(t, err, ports.ErrBufferTooSmall)
}

func TestServer_VerbsAndInvoke(t *testing.T) {
	_, client := startServer(t, newFakeHost())

	verbs, err := client.Verbs("/tv/b.mkv")
	require.NoError(t, err)
	require.Len(t, verbs, 1)
	assert.Equal(t, "mark-watched", verbs[0].Name)

	verbs, err = client.Verbs("/tv/notes.txt")
	require.NoError(t, err)
	assert.Empty(t, verbs)

	require.NoError(t, client.Invoke("mark-watched", "/tv/b.mkv"))
	m, err := client.IsMember("/tv/b.mkv")
	require.NoError(t, err)
	assert.Equal(t, ports.Member, m)

	require.NoError(t, client.Invoke("mark-unwatched", "/tv/b.mkv"))
	v, err := client.Property("/tv/b.mkv", "watched")
	require.NoError(t, err)
	assert.False(t, v)
}

func TestServer_InvokeErrorsKeepKind(t *testing.T) {
	_, client := startServer(t, newFakeHost())

	err := client.Invoke("explode", "/tv/a.mkv")
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrUnknownVerb)

	err = client.Invoke("mark-watched", "/tv/notes.txt")
	assert.ErrorIs(t, err, ports.ErrUnsupportedExtension)
	assert.False(t, errors.Is(err, ports.ErrInvalidPath))

	_, err = client.Property("/tv/a.mkv", "rating")
	assert.ErrorIs(t, err, ports.ErrUnknownProperty)
}

func TestServer_Health(t *testing.T) {
	_, client := startServer(t, newFakeHost())

	health, err := client.Health()
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "/opt/lastwatched/icon.ico", health.Icon)
	assert.NotEmpty(t, health.Uptime)
	assert.True(t, client.Ping())
}

func TestServer_UnknownMethod(t *testing.T) {
	_, client := startServer(t, newFakeHost())

	err := client.do("frobnicate", nil, nil, lookupTimeout)
	assert.ErrorContains(t, err, "unknown method")
}

func TestServer_Shutdown(t *testing.T) {
	sockPath := testSocketPath(t)
	srv := NewServer(newFakeHost(), sockPath, nil)
	require.NoError(t, srv.Start())

	client := NewClient(sockPath)
	assert.True(t, client.Ping())

	// The shutdown channel is closed before the reply is written.
	require.NoError(t, client.Shutdown())

	select {
	case <-srv.ShutdownCh():
	default:
		t.Fatal("ShutdownCh should be closed after Shutdown request")
	}

	// The daemon is responsible for calling Stop() after receiving the signal.
	srv.Stop()

	_, err := os.Stat(sockPath)
	assert.True(t, os.IsNotExist(err), "socket file should be removed after shutdown")
	assert.False(t, client.Ping())
}

func TestServer_ConcurrentClients(t *testing.T) {
	_, client := startServer(t, newFakeHost())
	sockPath := client.sockPath

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	// 10 clients x 10 requests each
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := NewClient(sockPath)
			for j := 0; j < 10; j++ {
				m, err := c.IsMember("/tv/a.mkv")
				if err != nil {
					errs <- err
					return
				}
				if m != ports.Member {
					errs <- assert.AnError
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent client error: %v", err)
	}
}

func TestServer_StaleSocket(t *testing.T) {
	sockPath := testSocketPath(t)

	// Create a stale socket file (not a real listener)
	require.NoError(t, os.WriteFile(sockPath, []byte("stale"), 0600))

	srv := NewServer(newFakeHost(), sockPath, nil)
	require.NoError(t, srv.Start(), "should replace stale socket")
	defer srv.Stop()

	health, err := NewClient(sockPath).Health()
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
}

func TestServer_AlreadyRunning(t *testing.T) {
	srv, client := startServer(t, newFakeHost())

	second := NewServer(newFakeHost(), srv.Addr(), nil)
	err := second.Start()
	assert.ErrorContains(t, err, "already running")
	assert.True(t, client.Ping(), "first server unaffected")
}

func TestClient_NoServer(t *testing.T) {
	client := NewClient(testSocketPath(t))

	m, err := client.IsMember("/tv/a.mkv")
	assert.Error(t, err)
	assert.Equal(t, ports.MembershipError, m)
	assert.False(t, client.Ping())
}

func TestSocketPath_Stable(t *testing.T) {
	a := SocketPath("/home/u/.config/lastwatched")
	b := SocketPath("/home/u/.config/lastwatched")
	c := SocketPath("/home/v/.config/lastwatched")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, ".sock", filepath.Ext(a))
}
