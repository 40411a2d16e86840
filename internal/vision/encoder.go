// Package vision computes facial feature vectors with the dlib models
// via go-face. Descriptors are 128-dimensional, matched with Euclidean
// distance and the conventional 0.6 tolerance.
package vision

import (
	"fmt"
	"image"

	"github.com/Kagami/go-face"

	"github.com/WilliamWachholz/CameraTimeCard/internal/timeclock"
)

// DescriptorDim is the length of a dlib face descriptor.
const DescriptorDim = 128

// Encoder implements timeclock.FaceEncoder on top of go-face.
type Encoder struct {
	rec *face.Recognizer
}

// NewEncoder loads the dlib models from modelsDir. Loading is expensive;
// callers keep one encoder for the process lifetime and Close it on exit.
func NewEncoder(modelsDir string) (*Encoder, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("loading face recognition models from %s: %w", modelsDir, err)
	}
	return &Encoder{rec: rec}, nil
}

// Encode detects all faces in a JPEG image and returns their bounding
// boxes and descriptors.
func (e *Encoder) Encode(jpegData []byte) ([]timeclock.DetectedFace, error) {
	faces, err := e.rec.Recognize(jpegData)
	if err != nil {
		return nil, fmt.Errorf("recognizing faces: %w", err)
	}

	detected := make([]timeclock.DetectedFace, 0, len(faces))
	for _, f := range faces {
		vector := make([]float32, DescriptorDim)
		copy(vector, f.Descriptor[:])
		detected = append(detected, timeclock.DetectedFace{
			Box:    f.Rectangle,
			Vector: vector,
		})
	}
	return detected, nil
}

// EncodeSingle detects exactly one face, for registration photos. It
// returns an error when the image has no face; with multiple faces the
// largest one is used.
func (e *Encoder) EncodeSingle(jpegData []byte) (timeclock.DetectedFace, error) {
	faces, err := e.Encode(jpegData)
	if err != nil {
		return timeclock.DetectedFace{}, err
	}
	if len(faces) == 0 {
		return timeclock.DetectedFace{}, fmt.Errorf("no face found in image")
	}

	best := faces[0]
	for _, f := range faces[1:] {
		if area(f.Box) > area(best.Box) {
			best = f
		}
	}
	return best, nil
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}

// Close releases the dlib resources.
func (e *Encoder) Close() {
	e.rec.Close()
}
