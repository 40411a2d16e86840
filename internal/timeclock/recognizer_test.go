package timeclock

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
)

// fakeEncoder returns a fixed set of detections for every frame.
type fakeEncoder struct {
	faces []DetectedFace
	err   error
}

func (f *fakeEncoder) Encode(jpegData []byte) ([]DetectedFace, error) {
	return f.faces, f.err
}

func registeredStore(t *testing.T) *EncodingStore {
	t.Helper()
	store, err := OpenEncodingStore(filepath.Join(t.TempDir(), "face_encodings.json"), 0)
	if err != nil {
		t.Fatalf("OpenEncodingStore() failed: %v", err)
	}
	store.Append("emp-1", "Ana Souza", []float32{0, 0})
	store.Append("emp-2", "Bruno Lima", []float32{10, 0})
	return store
}

func TestRecognizerMatchesWithinTolerance(t *testing.T) {
	store := registeredStore(t)

	tests := []struct {
		name       string
		vector     []float32
		expectedID string
	}{
		{"close to first", []float32{0.4, 0}, "emp-1"},
		{"close to second", []float32{9.7, 0}, "emp-2"},
		{"too far from both", []float32{5, 0}, ""},
		{"exactly at tolerance", []float32{0.6, 0}, ""},
		{"just under tolerance", []float32{0.59, 0}, "emp-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := &fakeEncoder{faces: []DetectedFace{{Vector: tt.vector}}}
			r := NewRecognizer(enc, store, 0.6)

			matches, err := r.Recognize(nil)
			if err != nil {
				t.Fatalf("Recognize() failed: %v", err)
			}
			if len(matches) != 1 {
				t.Fatalf("got %d matches, want 1", len(matches))
			}
			if matches[0].EmployeeID != tt.expectedID {
				t.Errorf("matched %q, want %q (distance %.3f)", matches[0].EmployeeID, tt.expectedID, matches[0].Distance)
			}
		})
	}
}

func TestRecognizerTieBreaksTowardFirstRegistered(t *testing.T) {
	store, err := OpenEncodingStore(filepath.Join(t.TempDir(), "face_encodings.json"), 0)
	if err != nil {
		t.Fatalf("OpenEncodingStore() failed: %v", err)
	}
	store.Append("emp-1", "Ana Souza", []float32{1, 0})
	store.Append("emp-2", "Bruno Lima", []float32{-1, 0})

	enc := &fakeEncoder{faces: []DetectedFace{{Vector: []float32{0, 0}}}}
	r := NewRecognizer(enc, store, 2)

	matches, err := r.Recognize(nil)
	if err != nil {
		t.Fatalf("Recognize() failed: %v", err)
	}
	if matches[0].EmployeeID != "emp-1" {
		t.Errorf("equidistant face matched %q, want first-registered emp-1", matches[0].EmployeeID)
	}
}

func TestRecognizerMultipleFaces(t *testing.T) {
	store := registeredStore(t)
	enc := &fakeEncoder{faces: []DetectedFace{
		{Box: image.Rect(0, 0, 10, 10), Vector: []float32{0.1, 0}},
		{Box: image.Rect(20, 0, 30, 10), Vector: []float32{9.9, 0}},
	}}
	r := NewRecognizer(enc, store, 0.6)

	matches, err := r.Recognize(nil)
	if err != nil {
		t.Fatalf("Recognize() failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].EmployeeID != "emp-1" || matches[1].EmployeeID != "emp-2" {
		t.Errorf("got %q and %q, want emp-1 and emp-2", matches[0].EmployeeID, matches[1].EmployeeID)
	}
}

func TestRecognizerEncoderError(t *testing.T) {
	store := registeredStore(t)
	enc := &fakeEncoder{err: errors.New("detector crashed")}
	r := NewRecognizer(enc, store, 0.6)

	if _, err := r.Recognize(nil); err == nil {
		t.Error("encoder failure should surface as an error")
	}
}

func TestRecognizerSavesUnknownFrames(t *testing.T) {
	store := registeredStore(t)
	enc := &fakeEncoder{faces: []DetectedFace{{Vector: []float32{5, 0}}}}
	r := NewRecognizer(enc, store, 0.6)

	dir := filepath.Join(t.TempDir(), "unknown_faces")
	r.SaveUnknownTo(dir)

	if _, err := r.Recognize([]byte("fake-jpeg")); err != nil {
		t.Fatalf("Recognize() failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading unknown faces directory: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d saved frames, want 1", len(entries))
	}
}

func TestRecognizerWithIndex(t *testing.T) {
	store := registeredStore(t)
	enc := &fakeEncoder{faces: []DetectedFace{{Vector: []float32{0.2, 0}}}}
	r := NewRecognizer(enc, store, 0.6)
	if err := r.UseIndex(); err != nil {
		t.Fatalf("UseIndex() failed: %v", err)
	}

	matches, err := r.Recognize(nil)
	if err != nil {
		t.Fatalf("Recognize() failed: %v", err)
	}
	if matches[0].EmployeeID != "emp-1" {
		t.Errorf("indexed lookup matched %q, want emp-1", matches[0].EmployeeID)
	}
}

func TestBuildVectorIndexEmptyStore(t *testing.T) {
	store, err := OpenEncodingStore(filepath.Join(t.TempDir(), "face_encodings.json"), 0)
	if err != nil {
		t.Fatalf("OpenEncodingStore() failed: %v", err)
	}
	if _, err := BuildVectorIndex(store); err == nil {
		t.Error("building an index over an empty store should fail")
	}
}
