package audio

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/breathe/internal/log"
)

type mockTrack struct {
	mock.Mock
}

func (t *mockTrack) Play(gain float64, onError func(error)) { t.Called(gain, onError) }
func (t *mockTrack) Pause()                                 { t.Called() }
func (t *mockTrack) SetGain(gain float64)                   { t.Called(gain) }
func (t *mockTrack) Close()                                 { t.Called() }

type mockBackend struct {
	mock.Mock
}

func (b *mockBackend) Open(source string) Track {
	return b.Called(source).Get(0).(Track)
}

// recordingBackend hands out permissive tracks and remembers them by source.
type recordingBackend struct {
	mu     sync.Mutex
	tracks map[string]*recordingTrack
	fail   map[string]error
}

type recordingTrack struct {
	mu      sync.Mutex
	plays   int
	pauses  int
	closed  bool
	gain    float64
	onError func(error)
	failErr error
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{tracks: map[string]*recordingTrack{}, fail: map[string]error{}}
}

func (b *recordingBackend) Open(source string) Track {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := &recordingTrack{failErr: b.fail[source]}
	b.tracks[source] = t
	return t
}

func (b *recordingBackend) track(source string) *recordingTrack {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tracks[source]
}

func (t *recordingTrack) Play(gain float64, onError func(error)) {
	t.mu.Lock()
	t.plays++
	t.gain = gain
	t.onError = onError
	failErr := t.failErr
	t.mu.Unlock()
	if failErr != nil {
		onError(failErr)
	}
}

func (t *recordingTrack) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pauses++
}

func (t *recordingTrack) SetGain(gain float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gain = gain
}

func (t *recordingTrack) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}

func (t *recordingTrack) snapshot() (plays, pauses int, gain float64, closed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.plays, t.pauses, t.gain, t.closed
}

func (t *recordingTrack) fireError(err error) {
	t.mu.Lock()
	cb := t.onError
	t.mu.Unlock()
	cb(err)
}

func TestManager_LoadCreatesPausedLoopingChannel(t *testing.T) {
	m := NewManager(Config{Backend: newRecordingBackend()})

	m.Load("rain", "rain.mp3")

	ch, ok := m.Channel("rain")
	require.True(t, ok)
	require.Equal(t, ChannelState{
		ID:      "rain",
		Source:  "rain.mp3",
		Loaded:  true,
		Loop:    true,
		Volume:  1.0,
		Playing: false,
	}, ch)
}

func TestManager_LoadIsIdempotent(t *testing.T) {
	backend := &mockBackend{}
	track := &mockTrack{}
	backend.On("Open", "rain.mp3").Return(track).Once()
	track.On("SetGain", 0.3).Return().Once()

	m := NewManager(Config{Backend: backend})
	m.Load("rain", "rain.mp3")
	m.SetVolume("rain", 30)

	m.Load("rain", "other.mp3")

	ch, ok := m.Channel("rain")
	require.True(t, ok)
	require.Equal(t, "rain.mp3", ch.Source, "existing channel must be untouched")
	require.Equal(t, 0.3, ch.Volume)
	require.Len(t, m.Channels(), 1)
	backend.AssertExpectations(t)
	track.AssertExpectations(t)
}

func TestManager_UnknownChannelIsNoop(t *testing.T) {
	backend := &mockBackend{}
	m := NewManager(Config{Backend: backend})

	require.NotPanics(t, func() {
		m.Play("ghost")
		m.Pause("ghost")
		m.SetVolume("ghost", 40)
	})

	_, ok := m.Channel("ghost")
	require.False(t, ok)
	backend.AssertNotCalled(t, "Open", mock.Anything)
}

func TestManager_PlayAndPause(t *testing.T) {
	backend := &mockBackend{}
	track := &mockTrack{}
	backend.On("Open", "ocean.wav").Return(track)
	track.On("Play", 1.0, mock.Anything).Return().Once()
	track.On("Pause").Return().Once()

	m := NewManager(Config{Backend: backend})
	m.Load("ocean", "ocean.wav")

	m.Play("ocean")
	ch, _ := m.Channel("ocean")
	require.True(t, ch.Playing)

	m.Play("ocean") // already playing
	m.Pause("ocean")
	ch, _ = m.Channel("ocean")
	require.False(t, ch.Playing)

	m.Pause("ocean") // already paused
	track.AssertExpectations(t)
}

func TestManager_VolumeNormalization(t *testing.T) {
	tests := []struct {
		level int
		want  float64
	}{
		{0, 0.0},
		{100, 1.0},
		{57, 0.57},
		{50, 0.5},
		{-20, 0.0},
		{150, 1.0},
	}

	for _, tt := range tests {
		m := NewManager(Config{Backend: newRecordingBackend()})
		m.Load("rain", "rain.mp3")
		m.SetVolume("rain", tt.level)

		ch, _ := m.Channel("rain")
		require.Equal(t, tt.want, ch.Volume, "level %d", tt.level)
	}
}

func TestManager_SetVolumeForwardsGain(t *testing.T) {
	backend := newRecordingBackend()
	m := NewManager(Config{Backend: backend})
	m.Load("rain", "rain.mp3")

	m.SetVolume("rain", 57)

	_, _, gain, _ := backend.track("rain.mp3").snapshot()
	require.Equal(t, 0.57, gain)
}

func TestManager_PlayUsesCurrentGain(t *testing.T) {
	backend := newRecordingBackend()
	m := NewManager(Config{Backend: backend})
	m.Load("rain", "rain.mp3")
	m.SetVolume("rain", 25)

	m.Play("rain")

	plays, _, gain, _ := backend.track("rain.mp3").snapshot()
	require.Equal(t, 1, plays)
	require.Equal(t, 0.25, gain)
}

func TestManager_RainScenario(t *testing.T) {
	m := NewManager(Config{Backend: newRecordingBackend()})

	m.Load("rain", "rain.mp3")
	m.Play("rain")
	m.SetVolumeAll(50)
	m.PauseAll()

	ch, ok := m.Channel("rain")
	require.True(t, ok)
	require.True(t, ch.Loaded)
	require.False(t, ch.Playing)
	require.Equal(t, 0.5, ch.Volume)
}

func TestManager_PauseAllAndSetVolumeAllCoverEveryLoadedChannel(t *testing.T) {
	backend := newRecordingBackend()
	m := NewManager(Config{Backend: backend})
	m.Load("rain", "rain.mp3")
	m.Load("ocean", "ocean.mp3")
	m.Load("forest", "forest.mp3")
	m.Play("rain")
	m.Play("forest")

	m.SetVolumeAll(20)
	m.PauseAll()

	for _, ch := range m.Channels() {
		require.False(t, ch.Playing, ch.ID)
		require.Equal(t, 0.2, ch.Volume, ch.ID)
	}

	_, rainPauses, _, _ := backend.track("rain.mp3").snapshot()
	_, oceanPauses, oceanGain, _ := backend.track("ocean.mp3").snapshot()
	require.Equal(t, 1, rainPauses)
	require.Equal(t, 0, oceanPauses, "paused channel is not paused again")
	require.Equal(t, 0.2, oceanGain, "paused channels still receive the new gain")
}

func TestManager_ChannelsInLoadOrder(t *testing.T) {
	m := NewManager(Config{})
	m.Load("b", "b.wav")
	m.Load("a", "a.wav")
	m.Load("c", "c.wav")

	var ids []string
	for _, ch := range m.Channels() {
		ids = append(ids, ch.ID)
	}
	require.Equal(t, []string{"b", "a", "c"}, ids)
}

func TestManager_CleanupReleasesEverything(t *testing.T) {
	backend := newRecordingBackend()
	m := NewManager(Config{Backend: backend})
	m.Load("rain", "rain.mp3")
	m.Load("ocean", "ocean.mp3")
	m.Play("rain")

	m.Cleanup()

	require.Empty(t, m.Channels())
	rain := backend.track("rain.mp3")
	plays, pauses, _, closed := rain.snapshot()
	require.Equal(t, 1, plays)
	require.Equal(t, 1, pauses)
	require.True(t, closed)
	_, _, _, oceanClosed := backend.track("ocean.mp3").snapshot()
	require.True(t, oceanClosed)

	// Previously known ids are now no-ops.
	m.Play("rain")
	m.SetVolume("rain", 10)
	m.Pause("rain")
	_, ok := m.Channel("rain")
	require.False(t, ok)
	plays, pauses, _, _ = rain.snapshot()
	require.Equal(t, 1, plays, "no playback after cleanup")
	require.Equal(t, 1, pauses)
}

func TestManager_ReloadAfterCleanup(t *testing.T) {
	backend := newRecordingBackend()
	m := NewManager(Config{Backend: backend})
	m.Load("rain", "rain.mp3")
	m.Cleanup()

	m.Load("rain", "rain-v2.mp3")
	ch, ok := m.Channel("rain")
	require.True(t, ok)
	require.Equal(t, "rain-v2.mp3", ch.Source)
	require.Equal(t, 1.0, ch.Volume)
}

func TestManager_PlaybackFailureIsReportedNotReturned(t *testing.T) {
	backend := newRecordingBackend()
	decodeErr := errors.New("decode failed")
	backend.fail["broken.mp3"] = decodeErr

	reports := make(chan *PlaybackError, 1)
	m := NewManager(Config{
		Backend:         backend,
		OnPlaybackError: func(e *PlaybackError) { reports <- e },
	})
	m.Load("broken", "broken.mp3")

	require.NotPanics(t, func() { m.Play("broken") })

	select {
	case perr := <-reports:
		require.Equal(t, "broken", perr.ChannelID)
		require.Equal(t, "broken.mp3", perr.Source)
		require.ErrorIs(t, perr, decodeErr)
	case <-time.After(time.Second):
		t.Fatal("expected playback error report")
	}

	require.Eventually(t, func() bool {
		ch, _ := m.Channel("broken")
		return !ch.Playing
	}, time.Second, 5*time.Millisecond)
}

func TestManager_StaleFailureDoesNotClobberNewerPlay(t *testing.T) {
	backend := newRecordingBackend()
	reports := make(chan *PlaybackError, 4)
	m := NewManager(Config{
		Backend:         backend,
		OnPlaybackError: func(e *PlaybackError) { reports <- e },
	})
	m.Load("rain", "rain.mp3")
	track := backend.track("rain.mp3")

	m.Play("rain")
	track.mu.Lock()
	firstCallback := track.onError
	track.mu.Unlock()

	m.Pause("rain")
	m.Play("rain")

	firstCallback(errors.New("late failure from first play"))

	require.Never(t, func() bool {
		ch, _ := m.Channel("rain")
		return !ch.Playing
	}, 100*time.Millisecond, 10*time.Millisecond)
	require.Empty(t, reports)
}

func TestManager_FailureAfterCleanupIsIgnored(t *testing.T) {
	backend := newRecordingBackend()
	reports := make(chan *PlaybackError, 1)
	m := NewManager(Config{
		Backend:         backend,
		OnPlaybackError: func(e *PlaybackError) { reports <- e },
	})
	m.Load("rain", "rain.mp3")
	m.Play("rain")
	track := backend.track("rain.mp3")

	m.Cleanup()
	track.fireError(errors.New("device lost"))

	require.Never(t, func() bool { return len(reports) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

// syncBuffer collects log output written from SafeGo goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureLog(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	log.SetOutput(buf, "debug")
	t.Cleanup(func() { log.SetOutput(io.Discard, "info") })
	return buf
}

// failRepeatedly plays the broken channel n times and waits for every report.
func failRepeatedly(t *testing.T, window time.Duration, n int) (int, string) {
	t.Helper()
	logs := captureLog(t)
	backend := newRecordingBackend()
	backend.fail["broken.mp3"] = errors.New("no such file")

	var mu sync.Mutex
	count := 0
	m := NewManager(Config{
		Backend:           backend,
		DiagnosticsWindow: window,
		OnPlaybackError: func(*PlaybackError) {
			mu.Lock()
			defer mu.Unlock()
			count++
		},
	})
	m.Load("broken", "broken.mp3")

	for i := range n {
		m.Play("broken")
		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return count == i+1
		}, time.Second, 5*time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	return count, logs.String()
}

func TestManager_RepeatedFailuresAreReportedButLoggedOnce(t *testing.T) {
	count, logs := failRepeatedly(t, time.Minute, 3)

	require.Equal(t, 3, count, "every failure reaches the host")
	require.Equal(t, 1, strings.Count(logs, `msg="Ambient playback failed"`))
	require.Equal(t, 2, strings.Count(logs, `msg="Ambient playback failed again"`))
}

func TestManager_NegativeWindowLogsEveryFailure(t *testing.T) {
	count, logs := failRepeatedly(t, -1, 2)

	require.Equal(t, 2, count)
	require.Equal(t, 2, strings.Count(logs, `msg="Ambient playback failed"`))
}

func TestSilentBackend(t *testing.T) {
	m := NewManager(Config{Backend: SilentBackend{}})
	m.Load("rain", "rain.mp3")
	m.Play("rain")

	ch, _ := m.Channel("rain")
	require.True(t, ch.Playing)
}

func TestChannelState_Percent(t *testing.T) {
	require.Equal(t, 57, ChannelState{Volume: 0.57}.Percent())
	require.Equal(t, 0, ChannelState{Volume: 0}.Percent())
	require.Equal(t, 100, ChannelState{Volume: 1}.Percent())
}

func TestPlaybackError_Error(t *testing.T) {
	err := &PlaybackError{ChannelID: "rain", Source: "rain.mp3", Err: errors.New("denied")}
	require.Equal(t, `playback failed for channel "rain" (rain.mp3): denied`, err.Error())
}
