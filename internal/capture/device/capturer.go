package device

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

const (
	// DefaultReadyTimeout bounds the wait for stable feed dimensions.
	DefaultReadyTimeout = 5 * time.Second
	// DefaultLocationTimeout bounds one position read per capture.
	DefaultLocationTimeout = 10 * time.Second

	readyPollInterval = 50 * time.Millisecond
)

// Capturer acquires one geotagged still per call. It owns the device
// camera exclusively while a feed is open: opening a new feed (facing
// switch included) always closes the prior one first.
type Capturer struct {
	camera   Camera
	locator  Locator
	grabbers []FrameGrabber
	logger   *log.Logger
	location *time.Location

	readyTimeout    time.Duration
	locationTimeout time.Duration

	mu     sync.Mutex
	feed   Feed
	facing Facing
}

// CapturerConfig defines dependencies for a Capturer.
type CapturerConfig struct {
	Camera          Camera
	Locator         Locator
	Grabbers        []FrameGrabber
	Logger          *log.Logger
	Location        *time.Location
	ReadyTimeout    time.Duration
	LocationTimeout time.Duration
}

// NewCapturer constructs a Capturer. Grabbers must be non-empty.
func NewCapturer(cfg CapturerConfig) *Capturer {
	readyTimeout := cfg.ReadyTimeout
	if readyTimeout <= 0 {
		readyTimeout = DefaultReadyTimeout
	}
	locationTimeout := cfg.LocationTimeout
	if locationTimeout <= 0 {
		locationTimeout = DefaultLocationTimeout
	}
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	return &Capturer{
		camera:          cfg.Camera,
		locator:         cfg.Locator,
		grabbers:        cfg.Grabbers,
		logger:          cfg.Logger,
		location:        location,
		readyTimeout:    readyTimeout,
		locationTimeout: locationTimeout,
		facing:          FacingBack,
	}
}

// Open acquires the live feed. Idempotent while the facing is unchanged.
func (c *Capturer) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.feed != nil {
		return nil
	}
	return c.openLocked(ctx, c.facing)
}

// SwitchFacing flips between back and front camera. The prior feed's
// hardware track is released before the new one opens.
func (c *Capturer) SwitchFacing(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := FacingBack
	if c.facing == FacingBack {
		next = FacingFront
	}
	if c.feed != nil {
		if err := c.feed.Close(); err != nil && c.logger != nil {
			c.logger.Printf("旧フィードの解放に失敗: %v", err)
		}
		c.feed = nil
	}
	return c.openLocked(ctx, next)
}

func (c *Capturer) openLocked(ctx context.Context, facing Facing) error {
	feed, err := c.camera.Open(ctx, facing)
	if err != nil {
		return err
	}
	c.feed = feed
	c.facing = facing
	return nil
}

// Close releases the camera synchronously. The capture UI must call
// this on every exit path; a live track left behind drains the battery
// and blocks the next capture attempt.
func (c *Capturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.feed == nil {
		return nil
	}
	err := c.feed.Close()
	c.feed = nil
	return err
}

// Facing returns the currently selected camera facing.
func (c *Capturer) Facing() Facing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.facing
}

// Capture extracts one geotagged still from the open feed.
// フィードの寸法が安定するまで待ち、戦略リストを順に試す。位置情報は
// 取得失敗でもキャプチャ自体は成功させる（座標は nil のまま）。
func (c *Capturer) Capture(ctx context.Context) (*CapturedImage, error) {
	c.mu.Lock()
	feed := c.feed
	c.mu.Unlock()
	if feed == nil {
		return nil, ErrFeedClosed
	}

	if err := c.waitReady(ctx, feed); err != nil {
		return nil, err
	}

	frame, err := c.grabFrame(ctx, feed)
	if err != nil {
		return nil, err
	}

	now := time.Now().In(c.location)
	image := &CapturedImage{
		Data:                  frame.Data,
		MimeType:              frame.MimeType,
		CapturedAt:            now,
		TimezoneOffsetMinutes: timezoneOffsetMinutes(now),
	}

	position, err := c.currentPosition(ctx)
	if err != nil {
		if c.logger != nil {
			c.logger.Printf("位置情報なしでキャプチャを継続: %v", err)
		}
		return image, nil
	}
	image.Latitude = &position.Latitude
	image.Longitude = &position.Longitude
	return image, nil
}

// waitReady polls the feed dimensions until they are non-zero. A frame
// taken earlier would silently come back blank on some platforms.
func (c *Capturer) waitReady(ctx context.Context, feed Feed) error {
	deadline := time.Now().Add(c.readyTimeout)
	for {
		if width, height := feed.Dimensions(); width > 0 && height > 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrDeviceNotReady
		}
		select {
		case <-ctx.Done():
			return ErrDeviceNotReady
		case <-time.After(readyPollInterval):
		}
	}
}

func (c *Capturer) grabFrame(ctx context.Context, feed Feed) (Frame, error) {
	if len(c.grabbers) == 0 {
		return Frame{}, ErrCaptureFailed
	}
	for _, grabber := range c.grabbers {
		frame, err := grabber.Grab(ctx, feed)
		if err == nil && len(frame.Data) > 0 {
			return frame, nil
		}
		if c.logger != nil {
			c.logger.Printf("フレーム取得戦略 %s が失敗: %v", grabber.Name(), err)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Frame{}, ErrCaptureFailed
		}
	}
	return Frame{}, ErrCaptureFailed
}

func (c *Capturer) currentPosition(ctx context.Context) (Position, error) {
	if c.locator == nil {
		return Position{}, ErrLocationUnavailable
	}
	locCtx, cancel := context.WithTimeout(ctx, c.locationTimeout)
	defer cancel()
	position, err := c.locator.Current(locCtx)
	if err != nil {
		return Position{}, ErrLocationUnavailable
	}
	return position, nil
}

// timezoneOffsetMinutes returns the local UTC offset at t in minutes,
// matching the metadata the watermark service burns into the image.
func timezoneOffsetMinutes(t time.Time) int {
	_, offsetSeconds := t.Zone()
	return offsetSeconds / 60
}
