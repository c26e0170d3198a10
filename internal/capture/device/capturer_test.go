package device

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	width, height int
	facing        Facing
	photoFrame    Frame
	photoErr      error
	renderErr     error
	closed        atomic.Int32
}

func (f *fakeFeed) Dimensions() (int, int) { return f.width, f.height }
func (f *fakeFeed) Facing() Facing         { return f.facing }

func (f *fakeFeed) TakePhoto(_ context.Context) (Frame, error) {
	return f.photoFrame, f.photoErr
}

func (f *fakeFeed) RenderTo(surface Surface) error {
	return f.renderErr
}

func (f *fakeFeed) Close() error {
	f.closed.Add(1)
	return nil
}

type fakeCamera struct {
	feeds []*fakeFeed
	opens int
	err   error
}

func (c *fakeCamera) Open(_ context.Context, facing Facing) (Feed, error) {
	if c.err != nil {
		return nil, c.err
	}
	feed := c.feeds[c.opens%len(c.feeds)]
	feed.facing = facing
	c.opens++
	return feed, nil
}

type fakeLocator struct {
	position Position
	err      error
	// blockUntilCancel simulates a GPS that never answers in time.
	blockUntilCancel bool
}

func (l *fakeLocator) Current(ctx context.Context) (Position, error) {
	if l.blockUntilCancel {
		<-ctx.Done()
		return Position{}, ctx.Err()
	}
	return l.position, l.err
}

type countingGrabber struct {
	name  string
	frame Frame
	err   error
	calls atomic.Int32
}

func (g *countingGrabber) Name() string { return g.name }

func (g *countingGrabber) Grab(_ context.Context, _ Feed) (Frame, error) {
	g.calls.Add(1)
	return g.frame, g.err
}

func readyFeed() *fakeFeed {
	return &fakeFeed{width: 1920, height: 1080}
}

func newTestCapturer(camera Camera, locator Locator, grabbers ...FrameGrabber) *Capturer {
	return NewCapturer(CapturerConfig{
		Camera:          camera,
		Locator:         locator,
		Grabbers:        grabbers,
		ReadyTimeout:    100 * time.Millisecond,
		LocationTimeout: 50 * time.Millisecond,
	})
}

func TestCaptureNotReadyWithinTimeout(t *testing.T) {
	feed := &fakeFeed{} // 寸法が (0,0) のまま安定しない
	grabber := &countingGrabber{name: "direct"}
	capturer := newTestCapturer(&fakeCamera{feeds: []*fakeFeed{feed}}, nil, grabber)

	require.NoError(t, capturer.Open(context.Background()))
	_, err := capturer.Capture(context.Background())

	assert.ErrorIs(t, err, ErrDeviceNotReady)
	// 準備未完了ではフレーム取得まで進まない。
	assert.Zero(t, grabber.calls.Load())
}

func TestCaptureFallsBackThroughStrategies(t *testing.T) {
	feed := readyFeed()
	failing := &countingGrabber{name: "direct", err: errors.New("not supported")}
	succeeding := &countingGrabber{name: "surface", frame: Frame{Data: []byte("jpeg"), MimeType: "image/jpeg"}}
	capturer := newTestCapturer(&fakeCamera{feeds: []*fakeFeed{feed}}, nil, failing, succeeding)

	require.NoError(t, capturer.Open(context.Background()))
	image, err := capturer.Capture(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), image.Data)
	assert.Equal(t, int32(1), failing.calls.Load())
	assert.Equal(t, int32(1), succeeding.calls.Load())
}

func TestCaptureAllStrategiesFail(t *testing.T) {
	feed := readyFeed()
	first := &countingGrabber{name: "direct", err: errors.New("boom")}
	second := &countingGrabber{name: "surface", err: errors.New("boom")}
	capturer := newTestCapturer(&fakeCamera{feeds: []*fakeFeed{feed}}, nil, first, second)

	require.NoError(t, capturer.Open(context.Background()))
	_, err := capturer.Capture(context.Background())
	assert.ErrorIs(t, err, ErrCaptureFailed)
}

func TestCaptureDegradesToNilCoordinates(t *testing.T) {
	feed := readyFeed()
	grabber := &countingGrabber{name: "direct", frame: Frame{Data: []byte("jpeg")}}
	locator := &fakeLocator{blockUntilCancel: true}
	capturer := newTestCapturer(&fakeCamera{feeds: []*fakeFeed{feed}}, locator, grabber)

	require.NoError(t, capturer.Open(context.Background()))
	image, err := capturer.Capture(context.Background())

	// 位置情報が取れなくてもキャプチャは成功する。
	require.NoError(t, err)
	assert.Nil(t, image.Latitude)
	assert.Nil(t, image.Longitude)
	assert.False(t, image.CapturedAt.IsZero())
}

func TestCaptureAttachesCoordinates(t *testing.T) {
	feed := readyFeed()
	grabber := &countingGrabber{name: "direct", frame: Frame{Data: []byte("jpeg")}}
	locator := &fakeLocator{position: Position{Latitude: 35.68, Longitude: 139.76}}
	capturer := newTestCapturer(&fakeCamera{feeds: []*fakeFeed{feed}}, locator, grabber)

	require.NoError(t, capturer.Open(context.Background()))
	image, err := capturer.Capture(context.Background())

	require.NoError(t, err)
	require.NotNil(t, image.Latitude)
	require.NotNil(t, image.Longitude)
	assert.InDelta(t, 35.68, *image.Latitude, 0.0001)
	assert.InDelta(t, 139.76, *image.Longitude, 0.0001)
}

func TestSwitchFacingClosesPriorFeed(t *testing.T) {
	back := readyFeed()
	front := readyFeed()
	camera := &fakeCamera{feeds: []*fakeFeed{back, front}}
	capturer := newTestCapturer(camera, nil, &countingGrabber{name: "direct"})

	require.NoError(t, capturer.Open(context.Background()))
	assert.Equal(t, FacingBack, capturer.Facing())

	require.NoError(t, capturer.SwitchFacing(context.Background()))
	assert.Equal(t, FacingFront, capturer.Facing())
	assert.Equal(t, int32(1), back.closed.Load())
	assert.Zero(t, front.closed.Load())
}

func TestCloseIsIdempotentAndSynchronous(t *testing.T) {
	feed := readyFeed()
	capturer := newTestCapturer(&fakeCamera{feeds: []*fakeFeed{feed}}, nil, &countingGrabber{name: "direct"})

	require.NoError(t, capturer.Open(context.Background()))
	require.NoError(t, capturer.Close())
	require.NoError(t, capturer.Close())
	assert.Equal(t, int32(1), feed.closed.Load())

	_, err := capturer.Capture(context.Background())
	assert.ErrorIs(t, err, ErrFeedClosed)
}
