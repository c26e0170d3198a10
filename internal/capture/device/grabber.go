package device

import (
	"context"
	"fmt"
)

// FrameGrabber is one frame-extraction strategy. Strategies are tried
// in declaration order with a shared result type instead of nested
// fallbacks, so the platform-capability branching stays explicit.
type FrameGrabber interface {
	Name() string
	Grab(ctx context.Context, feed Feed) (Frame, error)
}

// encodeQuality matches the compression the capture UI used for
// preview-sized uploads.
const encodeQuality = 85

// trackPhotoGrabber uses the platform's direct take-photo call.
type trackPhotoGrabber struct{}

func NewTrackPhotoGrabber() FrameGrabber {
	return trackPhotoGrabber{}
}

func (trackPhotoGrabber) Name() string {
	return "track-photo"
}

func (trackPhotoGrabber) Grab(ctx context.Context, feed Feed) (Frame, error) {
	return feed.TakePhoto(ctx)
}

// surfaceRenderGrabber renders the live feed into an off-screen surface
// and reads back a compressed image. フォールバック用。プラットフォーム
// によっては直接取得が画面表示分しか返さない・縮小されるため、サーフェス
// は必ずフィードのネイティブ解像度で確保する。
type surfaceRenderGrabber struct {
	surfaces SurfaceFactory
}

func NewSurfaceRenderGrabber(surfaces SurfaceFactory) FrameGrabber {
	return surfaceRenderGrabber{surfaces: surfaces}
}

func (surfaceRenderGrabber) Name() string {
	return "surface-render"
}

func (g surfaceRenderGrabber) Grab(ctx context.Context, feed Feed) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	width, height := feed.Dimensions()
	if width <= 0 || height <= 0 {
		return Frame{}, ErrDeviceNotReady
	}

	surface, err := g.surfaces.New(width, height)
	if err != nil {
		return Frame{}, fmt.Errorf("サーフェスの確保に失敗: %w", err)
	}
	// 成功・失敗どちらの経路でも解放する。解放漏れはバッテリー消費と
	// 次回キャプチャのブロックにつながる。
	defer surface.Release()

	if err := feed.RenderTo(surface); err != nil {
		return Frame{}, fmt.Errorf("フィードの描画に失敗: %w", err)
	}

	data, err := surface.Encode(encodeQuality)
	if err != nil {
		return Frame{}, fmt.Errorf("画像の圧縮に失敗: %w", err)
	}

	return Frame{
		Data:     data,
		Width:    width,
		Height:   height,
		MimeType: "image/jpeg",
	}, nil
}

// DefaultGrabbers returns the capability-ordered strategy list: the
// fast path first, the exactly-sized off-screen fallback second.
func DefaultGrabbers(surfaces SurfaceFactory) []FrameGrabber {
	return []FrameGrabber{
		NewTrackPhotoGrabber(),
		NewSurfaceRenderGrabber(surfaces),
	}
}
