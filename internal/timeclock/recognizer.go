package timeclock

import (
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DetectedFace is one face found in a frame: its bounding box and the
// fixed-length feature vector computed for it.
type DetectedFace struct {
	Box    image.Rectangle
	Vector []float32
}

// FaceEncoder detects faces in a JPEG frame and computes their feature
// vectors. Implemented by the vision package; tests provide fakes.
type FaceEncoder interface {
	Encode(jpegData []byte) ([]DetectedFace, error)
}

// Match is the recognizer's verdict for one detected face. An unknown face
// has an empty EmployeeID and carries the smallest distance seen, which may
// be at or above tolerance.
type Match struct {
	EmployeeID string
	Name       string
	Box        image.Rectangle
	Distance   float64
}

// Known reports whether the face matched a registered employee.
func (m Match) Known() bool {
	return m.EmployeeID != ""
}

// Recognizer turns frames into matches against the encoding store.
type Recognizer struct {
	encoder    FaceEncoder
	store      *EncodingStore
	tolerance  float64
	index      *VectorIndex
	unknownDir string
}

// NewRecognizer creates a recognizer. A face matches when its distance to a
// stored vector is strictly below tolerance; ties break toward the
// first-registered employee.
func NewRecognizer(encoder FaceEncoder, store *EncodingStore, tolerance float64) *Recognizer {
	return &Recognizer{
		encoder:   encoder,
		store:     store,
		tolerance: tolerance,
	}
}

// UseIndex builds an approximate index over the store to shortlist
// candidates before exact scoring. Worth it for large rosters only.
func (r *Recognizer) UseIndex() error {
	ix, err := BuildVectorIndex(r.store)
	if err != nil {
		return fmt.Errorf("building vector index: %w", err)
	}
	r.index = ix
	return nil
}

// SaveUnknownTo enables persisting frames containing unrecognized faces to
// dir for audit. Pass an empty string to disable.
func (r *Recognizer) SaveUnknownTo(dir string) {
	r.unknownDir = dir
}

// Recognize detects faces in the frame and classifies each one. A detection
// failure returns an error; callers skip the frame and keep the loop alive.
func (r *Recognizer) Recognize(jpegData []byte) ([]Match, error) {
	faces, err := r.encoder.Encode(jpegData)
	if err != nil {
		return nil, fmt.Errorf("detecting faces: %w", err)
	}

	matches := make([]Match, 0, len(faces))
	sawUnknown := false
	for _, face := range faces {
		m := r.classify(face)
		if !m.Known() {
			sawUnknown = true
		}
		matches = append(matches, m)
	}

	if sawUnknown && r.unknownDir != "" {
		r.saveUnknownFrame(jpegData)
	}
	return matches, nil
}

// classify finds the closest stored vector for a face. No stored vector
// strictly under tolerance means unknown.
func (r *Recognizer) classify(face DetectedFace) Match {
	entries := r.store.Entries()

	positions := r.candidatePositions(face.Vector, len(entries))

	best := -1
	bestDist := math.Inf(1)
	for _, i := range positions {
		d := EuclideanDistance(face.Vector, entries[i].Vector)
		// Strict improvement keeps the first-registered entry on ties.
		if d < bestDist {
			best = i
			bestDist = d
		}
	}

	m := Match{Box: face.Box, Distance: bestDist}
	if best >= 0 && bestDist < r.tolerance {
		m.EmployeeID = entries[best].EmployeeID
		m.Name = entries[best].Name
	}
	return m
}

// candidatePositions returns the store positions to score, in registration
// order. Without an index this is every entry.
func (r *Recognizer) candidatePositions(vector []float32, total int) []int {
	if r.index == nil {
		positions := make([]int, total)
		for i := range positions {
			positions[i] = i
		}
		return positions
	}
	positions := r.index.Shortlist(vector)
	sort.Ints(positions)
	return positions
}

func (r *Recognizer) saveUnknownFrame(jpegData []byte) {
	if err := os.MkdirAll(r.unknownDir, 0o750); err != nil {
		log.Printf("could not create unknown faces directory: %v", err)
		return
	}
	name := fmt.Sprintf("unknown_%s_%s.jpg", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
	if err := os.WriteFile(filepath.Join(r.unknownDir, name), jpegData, 0o640); err != nil {
		log.Printf("could not save unknown face: %v", err)
	}
}
