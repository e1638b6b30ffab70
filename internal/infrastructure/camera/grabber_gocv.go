//go:build gocv
// +build gocv

package camera

import (
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// gocvGrabber захват кадров с реального устройства через OpenCV.
type gocvGrabber struct {
	deviceID    string
	cap         *gocv.VideoCapture
	mat         gocv.Mat
	conv        gocv.Mat
	info        streamInfo
	opened      bool
	releaseOnce sync.Once
	released    bool
}

// newSensorGrabber создаёт захват с реального сенсора.
func newSensorGrabber(deviceID string) grabber {
	return &gocvGrabber{deviceID: deviceID}
}

// open подключается к устройству и согласует формат по пробному кадру.
func (g *gocvGrabber) open() (streamInfo, error) {
	cap, err := gocv.OpenVideoCapture(g.deviceID)
	if err != nil {
		return streamInfo{}, fmt.Errorf("%w: %v", ErrSensorUnavailable, err)
	}
	g.cap = cap
	g.mat = gocv.NewMat()
	g.conv = gocv.NewMat()

	// Пробный кадр: только из него узнаём фактический размер и формат потока.
	if ok := cap.Read(&g.mat); !ok || g.mat.Empty() {
		g.release()
		return streamInfo{}, fmt.Errorf("%w: probe read failed on device %q", ErrSensorUnavailable, g.deviceID)
	}

	sensorFormat := matFormatName(g.mat)
	g.info = streamInfo{
		Width:        g.mat.Cols(),
		Height:       g.mat.Rows(),
		Decision:     NegotiateFormat(sensorFormat),
		SensorFormat: sensorFormat,
	}
	g.opened = true
	return g.info, nil
}

// matFormatName переводит тип Mat в строку формата сенсора для политики.
func matFormatName(m gocv.Mat) string {
	switch m.Channels() {
	case 1:
		return "Mono8"
	case 4:
		return "BGRA8"
	default:
		return "BGR8"
	}
}

// grab читает следующий кадр и переводит его в канонический формат.
func (g *gocvGrabber) grab(dst []byte, timeout time.Duration) error {
	if !g.opened || g.released {
		return fmt.Errorf("%w: grabber is not open", ErrSensorUnavailable)
	}

	deadline := time.Now().Add(timeout)
	for {
		if ok := g.cap.Read(&g.mat); ok {
			break
		}
		if time.Now().After(deadline) {
			return errGrabTimeout
		}
		time.Sleep(10 * time.Millisecond)
	}
	if g.mat.Empty() {
		return errBadFrame
	}
	if g.mat.Cols() != g.info.Width || g.mat.Rows() != g.info.Height {
		// сенсор сменил разрешение посреди потока — кадр непригоден
		return errBadFrame
	}

	src := g.mat
	if g.mat.Channels() != g.info.Decision.BytesPerPixel {
		code, ok := convertCode(g.mat.Channels(), g.info.Decision.BytesPerPixel)
		if !ok {
			return errBadFrame
		}
		gocv.CvtColor(g.mat, &g.conv, code)
		src = g.conv
	}

	data, err := src.DataPtrUint8()
	if err != nil || len(data) != len(dst) {
		return errBadFrame
	}
	copy(dst, data)
	return nil
}

// convertCode подбирает конвертацию в согласованное число каналов.
func convertCode(from, to int) (gocv.ColorConversionCode, bool) {
	switch {
	case from == 3 && to == 4:
		return gocv.ColorBGRToBGRA, true
	case from == 4 && to == 3:
		return gocv.ColorBGRAToBGR, true
	case from == 1 && to == 3:
		return gocv.ColorGrayToBGR, true
	case from == 3 && to == 1:
		return gocv.ColorBGRToGray, true
	default:
		return 0, false
	}
}

// release останавливает поток и освобождает устройство ровно один раз,
// даже при вызове из двух контекстов (цикл захвата и принудительный Stop).
func (g *gocvGrabber) release() {
	g.releaseOnce.Do(func() {
		g.released = true
		if g.cap != nil {
			_ = g.cap.Close()
			g.mat.Close()
			g.conv.Close()
		}
	})
}
