//go:build !gocv
// +build !gocv

package camera

import (
	"fmt"
	"time"
)

// stubGrabber заглушка для сборки без тега gocv: реальный сенсор
// недоступен, и источник сразу переходит в режим симуляции.
type stubGrabber struct{}

func newSensorGrabber(deviceID string) grabber {
	_ = deviceID
	return stubGrabber{}
}

func (stubGrabber) open() (streamInfo, error) {
	return streamInfo{}, fmt.Errorf("%w: binary built without gocv tag", ErrSensorUnavailable)
}

func (stubGrabber) grab([]byte, time.Duration) error { return errGrabTimeout }

func (stubGrabber) release() {}
