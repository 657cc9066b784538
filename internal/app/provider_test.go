package app

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/corey/lastwatched/internal/adapters/sidecar"
	"github.com/corey/lastwatched/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Provider: path resolution, extension filter, mark/unmark round trips
// =============================================================================

// countingStore records every Open so tests can prove validation happens
// before any I/O.
type countingStore struct {
	inner ports.Store
	opens int
}

func (c *countingStore) Open(dir string, mode ports.Mode) (ports.Ledger, error) {
	c.opens++
	return c.inner.Open(dir, mode)
}

func newTestProvider(t *testing.T) (*Provider, *countingStore, string) {
	t.Helper()
	store := &countingStore{inner: sidecar.NewStore(sidecar.Options{
		ReadTimeout:  200 * time.Millisecond,
		WriteTimeout: 200 * time.Millisecond,
	})}
	return NewProvider(store, nil), store, t.TempDir()
}

func ledgerContent(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(sidecar.Path(dir))
	require.NoError(t, err)
	return string(data)
}

func ledgerExists(dir string) bool {
	_, err := os.Stat(sidecar.Path(dir))
	return err == nil
}

func mustWatched(t *testing.T, p *Provider, path string) ports.Membership {
	t.Helper()
	m, err := p.IsWatched(path)
	require.NoError(t, err)
	return m
}

func TestResolveOwner(t *testing.T) {
	p, _, _ := newTestProvider(t)

	dir, err := p.ResolveOwner(filepath.Join("tv", "show", "ep1.mkv"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("tv", "show"), dir)

	dir, err = p.ResolveOwner("ep1.mkv")
	require.NoError(t, err)
	assert.Equal(t, ".", dir)

	root := string(filepath.Separator)
	dir, err = p.ResolveOwner(filepath.Join(root, "ep1.mkv"))
	require.NoError(t, err)
	assert.Equal(t, root, dir)
}

func TestResolveOwner_NoParent(t *testing.T) {
	p, _, _ := newTestProvider(t)

	for _, path := range []string{"", string(filepath.Separator), "."} {
		_, err := p.ResolveOwner(path)
		assert.ErrorIs(t, err, ports.ErrInvalidPath, "path %q", path)
	}
}

func TestScenario_MarkUnmarkSequence(t *testing.T) {
	p, _, d := newTestProvider(t)
	show := filepath.Join(d, "show.mkv")
	ep2 := filepath.Join(d, "ep2.mkv")

	assert.False(t, ledgerExists(d))

	require.NoError(t, p.MarkWatched(show))
	assert.Equal(t, "show.mkv\n", ledgerContent(t, d))

	require.NoError(t, p.MarkWatched(ep2))
	assert.Equal(t, "show.mkv\nep2.mkv\n", ledgerContent(t, d))

	require.NoError(t, p.MarkUnwatched(show))
	assert.Equal(t, "ep2.mkv\n", ledgerContent(t, d))

	assert.Equal(t, ports.NotMember, mustWatched(t, p, show))
	assert.Equal(t, ports.Member, mustWatched(t, p, ep2))
}

func TestMarkWatched_Idempotent(t *testing.T) {
	p, _, d := newTestProvider(t)
	f := filepath.Join(d, "a.mkv")

	require.NoError(t, p.MarkWatched(f))
	require.NoError(t, p.MarkWatched(f))

	assert.Equal(t, "a.mkv\n", ledgerContent(t, d))
	names, err := p.Watched(d)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mkv"}, names)
}

func TestMarkUnwatched_NeverMarked(t *testing.T) {
	p, _, d := newTestProvider(t)

	// Absent ledger stays absent.
	require.NoError(t, p.MarkUnwatched(filepath.Join(d, "a.mkv")))
	assert.False(t, ledgerExists(d))

	// Existing ledger stays unchanged.
	require.NoError(t, p.MarkWatched(filepath.Join(d, "b.mkv")))
	require.NoError(t, p.MarkUnwatched(filepath.Join(d, "a.mkv")))
	assert.Equal(t, "b.mkv\n", ledgerContent(t, d))
}

func TestRoundTrip(t *testing.T) {
	p, _, d := newTestProvider(t)
	f := filepath.Join(d, "movie.mp4")

	require.NoError(t, p.MarkWatched(f))
	assert.Equal(t, ports.Member, mustWatched(t, p, f))

	require.NoError(t, p.MarkUnwatched(f))
	assert.Equal(t, ports.NotMember, mustWatched(t, p, f))
}

func TestExtensionFilter_NoLedgerCreated(t *testing.T) {
	p, store, d := newTestProvider(t)
	f := filepath.Join(d, "notes.txt")

	assert.Equal(t, ports.NotMember, mustWatched(t, p, f))

	err := p.MarkWatched(f)
	assert.ErrorIs(t, err, ports.ErrUnsupportedExtension)

	err = p.MarkUnwatched(f)
	assert.ErrorIs(t, err, ports.ErrUnsupportedExtension)

	assert.False(t, ledgerExists(d))
	assert.Zero(t, store.opens, "no I/O for non-video files")
}

func TestExtensionFilter_CaseInsensitive(t *testing.T) {
	p, _, d := newTestProvider(t)
	f := filepath.Join(d, "Show.MKV")

	require.NoError(t, p.MarkWatched(f))
	assert.Equal(t, "Show.MKV\n", ledgerContent(t, d), "name stored as given")
	assert.Equal(t, ports.Member, mustWatched(t, p, f))
	assert.Equal(t, ports.NotMember, mustWatched(t, p, filepath.Join(d, "show.mkv")), "names match case-sensitively")
}

func TestMarkWatched_NoExtension(t *testing.T) {
	p, store, d := newTestProvider(t)

	err := p.MarkWatched(filepath.Join(d, "README"))
	assert.ErrorIs(t, err, ports.ErrInvalidPath)
	assert.Zero(t, store.opens)
}

func TestMarkWatched_NoParent(t *testing.T) {
	p, store, _ := newTestProvider(t)

	err := p.MarkWatched(string(filepath.Separator))
	assert.ErrorIs(t, err, ports.ErrInvalidPath)

	err = p.MarkWatched("")
	assert.ErrorIs(t, err, ports.ErrInvalidPath)

	assert.Zero(t, store.opens, "no I/O performed")
}

func TestMarkWatched_MissingDirectory(t *testing.T) {
	p, _, d := newTestProvider(t)

	err := p.MarkWatched(filepath.Join(d, "gone", "a.mkv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestIsWatched_AbsentLedger(t *testing.T) {
	p, _, d := newTestProvider(t)

	assert.Equal(t, ports.NotMember, mustWatched(t, p, filepath.Join(d, "a.mkv")))
	assert.Equal(t, ports.NotMember, mustWatched(t, p, filepath.Join(d, "missing-dir", "a.mkv")))
	assert.False(t, ledgerExists(d), "lookup never creates a ledger")
}

func TestIsWatched_EncodingErrorPropagates(t *testing.T) {
	p, _, d := newTestProvider(t)
	require.NoError(t, os.WriteFile(sidecar.Path(d), []byte("\xff\xfe\n"), 0644))

	m, err := p.IsWatched(filepath.Join(d, "a.mkv"))
	assert.ErrorIs(t, err, ports.ErrEncoding)
	assert.Equal(t, ports.NotMember, m)
}

func TestMarkUnwatched_EncodingErrorPropagates(t *testing.T) {
	p, _, d := newTestProvider(t)
	require.NoError(t, os.WriteFile(sidecar.Path(d), []byte("\xff\n"), 0644))

	err := p.MarkUnwatched(filepath.Join(d, "a.mkv"))
	assert.ErrorIs(t, err, ports.ErrEncoding)
	assert.Equal(t, "\xff\n", ledgerContent(t, d), "ledger untouched")
}

func TestDurability_FreshProvider(t *testing.T) {
	p, _, d := newTestProvider(t)
	f := filepath.Join(d, "a.mkv")
	require.NoError(t, p.MarkWatched(f))

	fresh := NewProvider(sidecar.NewStore(sidecar.Options{}), nil)
	m, err := fresh.IsWatched(f)
	require.NoError(t, err)
	assert.Equal(t, ports.Member, m)
}

func TestIsWatched_LockTimeoutSurfaces(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" && runtime.GOOS != "windows" {
		t.Skip("no advisory locking")
	}
	p, _, d := newTestProvider(t)
	require.NoError(t, p.MarkWatched(filepath.Join(d, "a.mkv")))

	held, err := sidecar.NewStore(sidecar.Options{}).Open(d, ports.ReadWriteIfExists)
	require.NoError(t, err)
	defer held.Close()

	_, err = p.IsWatched(filepath.Join(d, "a.mkv"))
	assert.ErrorIs(t, err, ports.ErrLockTimeout)
}

func TestWatched_AbsentLedger(t *testing.T) {
	p, _, d := newTestProvider(t)
	names, err := p.Watched(d)
	require.NoError(t, err)
	assert.Empty(t, names)
}
