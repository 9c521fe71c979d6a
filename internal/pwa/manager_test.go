package pwa

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mr1hm/go-flood-alerts/internal/observability"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type switchableVersion struct {
	mu  sync.Mutex
	v   string
	err error
}

func (s *switchableVersion) Version(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v, s.err
}

func (s *switchableVersion) set(v string, err error) {
	s.mu.Lock()
	s.v, s.err = v, err
	s.mu.Unlock()
}

func testManifest() Manifest {
	return DefaultManifest("Flood Alert", "FloodAlert", "#1e40af")
}

func TestManager_StartLoadsVersion(t *testing.T) {
	m := NewManager(testManifest(), StaticVersion("1.0.0"), WithClock(clockwork.NewFakeClock()))
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	assert.Equal(t, "1.0.0", m.Version())
	assert.ErrorIs(t, m.Start(context.Background()), ErrAlreadyStarted)
}

func TestManager_StartFailsOnBadSource(t *testing.T) {
	src := &switchableVersion{err: errors.New("missing")}
	m := NewManager(testManifest(), src, WithClock(clockwork.NewFakeClock()))

	assert.Error(t, m.Start(context.Background()))
	m.Stop()
}

func TestManager_PollPicksUpNewVersion(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &switchableVersion{v: "1.0.0"}
	m := NewManager(testManifest(), src, WithClock(clock), WithPollInterval(time.Minute))

	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	assert.False(t, m.UpdateAvailable("1.0.0"))

	src.set("1.1.0", nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)

	require.Eventually(t, func() bool {
		return m.Version() == "1.1.0"
	}, time.Second, time.Millisecond)
	assert.True(t, m.UpdateAvailable("1.0.0"))
	assert.False(t, m.UpdateAvailable("1.1.0"))
	assert.False(t, m.UpdateAvailable(""))
}

func TestManager_PollErrorKeepsVersion(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &switchableVersion{v: "1.0.0"}
	m := NewManager(testManifest(), src, WithClock(clock), WithPollInterval(time.Minute))

	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	src.set("", errors.New("read failed"))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)

	assert.Never(t, func() bool {
		return m.Version() != "1.0.0"
	}, 50*time.Millisecond, 5*time.Millisecond)
}

func TestManager_StopWithoutStart(t *testing.T) {
	m := NewManager(testManifest(), StaticVersion("1"))
	m.Stop()
	m.Stop()
}

func TestManager_RecordInstall(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	m := NewManager(testManifest(), StaticVersion("1"), WithMetrics(metrics))

	require.NoError(t, m.RecordInstall(InstallAccepted))
	require.NoError(t, m.RecordInstall(InstallDismissed))
	require.NoError(t, m.RecordInstall(InstallAccepted))
	assert.ErrorIs(t, m.RecordInstall("maybe"), ErrInvalidOutcome)

	assert.Equal(t, map[InstallOutcome]int{InstallAccepted: 2, InstallDismissed: 1}, m.Installs())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.PWAInstalls.WithLabelValues("accepted")))
}

func TestFileVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "VERSION")
	require.NoError(t, os.WriteFile(path, []byte("2024.03.12\n"), 0o644))

	v, err := FileVersion{Path: path}.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024.03.12", v)

	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))
	_, err = FileVersion{Path: path}.Version(context.Background())
	assert.Error(t, err)

	_, err = FileVersion{Path: filepath.Join(t.TempDir(), "missing")}.Version(context.Background())
	assert.Error(t, err)
}

func TestDefaultManifest(t *testing.T) {
	m := testManifest()

	assert.Equal(t, "Flood Alert", m.Name)
	assert.Equal(t, "standalone", m.Display)
	assert.Equal(t, "#1e40af", m.ThemeColor)
	require.Len(t, m.Icons, 8)
	assert.Equal(t, "512x512", m.Icons[7].Sizes)
}
