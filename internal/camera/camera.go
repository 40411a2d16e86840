// Package camera wraps the OpenCV capture device behind the loop's
// FrameSource interface so the rest of the system never touches gocv.
package camera

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Camera reads JPEG frames from a video capture device.
type Camera struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
}

// Open acquires the capture device at the given index and fixes its
// resolution. The device stays locked until Close is called.
func Open(index, frameWidth, frameHeight int) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("opening camera %d: %w", index, err)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(frameWidth))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(frameHeight))

	return &Camera{
		capture: capture,
		mat:     gocv.NewMat(),
	}, nil
}

// Read blocks for the next frame and returns it JPEG-encoded.
// The frame is mirrored horizontally for kiosk usability.
func (c *Camera) Read() ([]byte, error) {
	if ok := c.capture.Read(&c.mat); !ok {
		return nil, fmt.Errorf("camera read failed")
	}
	if c.mat.Empty() {
		return nil, fmt.Errorf("camera returned empty frame")
	}

	gocv.Flip(c.mat, &c.mat, 1)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, c.mat)
	if err != nil {
		return nil, fmt.Errorf("encoding frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}

// Close releases the device and frame buffer.
func (c *Camera) Close() error {
	c.mat.Close()
	if err := c.capture.Close(); err != nil {
		return fmt.Errorf("closing camera: %w", err)
	}
	return nil
}
