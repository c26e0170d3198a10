package device

import "errors"

var (
	// ErrPermissionDenied indicates camera or location permission was
	// not granted; capture cannot proceed.
	ErrPermissionDenied = errors.New("カメラまたは位置情報の利用が許可されていません")
	// ErrDeviceNotReady indicates the feed opened but never reported
	// stable dimensions within the deadline.
	ErrDeviceNotReady = errors.New("カメラの準備ができていません")
	// ErrCaptureFailed indicates every frame-extraction strategy failed.
	ErrCaptureFailed = errors.New("静止画の取得に失敗しました")
	// ErrLocationUnavailable indicates no position fix was obtained.
	// Non-fatal: captures proceed with nil coordinates.
	ErrLocationUnavailable = errors.New("位置情報を取得できませんでした")
	// ErrFeedClosed indicates an operation on a closed capturer.
	ErrFeedClosed = errors.New("カメラフィードが閉じられています")
)
