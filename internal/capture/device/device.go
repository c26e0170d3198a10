// Package device は現地ユーザー端末のカメラ・位置情報APIを抽象化し、
// ジオタグ付き静止画を1枚取得するまでの手順を実装する。
// 実機のカメラ実装はプラットフォーム側が Camera/Feed として注入する。
package device

import (
	"context"
	"time"
)

// Facing identifies which camera the feed uses.
type Facing int

const (
	FacingBack Facing = iota
	FacingFront
)

func (f Facing) String() string {
	if f == FacingFront {
		return "front"
	}
	return "back"
}

// Frame is one compressed still extracted from a live feed.
type Frame struct {
	Data     []byte
	Width    int
	Height   int
	MimeType string
}

// Feed is an exclusive live camera stream. Dimensions returns (0, 0)
// until the underlying track has negotiated its native resolution.
type Feed interface {
	Dimensions() (width, height int)
	Facing() Facing
	// TakePhoto is the platform's direct "photo from live track" call.
	// Implementations without the capability return ErrCaptureFailed.
	TakePhoto(ctx context.Context) (Frame, error)
	// RenderTo draws the current frame into an off-screen surface.
	RenderTo(surface Surface) error
	// Close releases the underlying hardware track. Must be safe to
	// call twice and must take effect synchronously.
	Close() error
}

// Camera opens live feeds. Opening while permission is missing returns
// ErrPermissionDenied.
type Camera interface {
	Open(ctx context.Context, facing Facing) (Feed, error)
}

// Surface is an off-screen pixel buffer a feed can be rendered into.
type Surface interface {
	Bounds() (width, height int)
	// Encode compresses the surface contents. quality is 1-100.
	Encode(quality int) ([]byte, error)
	// Release frees the buffer and stops any capture track the surface
	// itself holds. Must be called on every exit path.
	Release()
}

// SurfaceFactory allocates surfaces at an exact pixel size.
type SurfaceFactory interface {
	New(width, height int) (Surface, error)
}

// Position is one device location fix.
type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	At        time.Time
}

// Locator reads the device's current position. Implementations honour
// the context deadline and may serve a moderately stale cached fix.
type Locator interface {
	Current(ctx context.Context) (Position, error)
}

// CapturedImage is the capturer's output: a compressed still plus the
// metadata the watermark service burns in at upload time. Latitude and
// Longitude are nil when no position fix was available.
type CapturedImage struct {
	Data                  []byte
	MimeType              string
	Latitude              *float64
	Longitude             *float64
	CapturedAt            time.Time
	TimezoneOffsetMinutes int
}
