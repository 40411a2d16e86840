package timeclock

import (
	"errors"

	"github.com/coder/hnsw"
)

const (
	// indexMaxNeighbors is the HNSW M parameter.
	indexMaxNeighbors = 16
	// indexShortlist is how many nearest entries the index returns for
	// exact re-scoring by the recognizer.
	indexShortlist = 10
)

// VectorIndex is an approximate nearest-neighbor index over the encoding
// store, keyed by entry position. It only shortlists candidates; the
// recognizer always re-scores them with the exact distance so tolerance
// boundaries and first-registered tie-breaks stay authoritative.
type VectorIndex struct {
	graph *hnsw.Graph[int]
}

// BuildVectorIndex builds an index over the store's entries.
func BuildVectorIndex(store *EncodingStore) (*VectorIndex, error) {
	entries := store.Entries()
	if len(entries) == 0 {
		return nil, errors.New("encoding store is empty")
	}

	g := hnsw.NewGraph[int]()
	g.M = indexMaxNeighbors
	g.Ml = 1.0 / float64(indexMaxNeighbors)
	g.Distance = hnsw.EuclideanDistance

	for i, e := range entries {
		if len(e.Vector) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(i, e.Vector))
	}

	return &VectorIndex{graph: g}, nil
}

// Shortlist returns up to indexShortlist entry positions nearest to the
// query vector.
func (ix *VectorIndex) Shortlist(query []float32) []int {
	neighbors := ix.graph.Search(query, indexShortlist)
	positions := make([]int, 0, len(neighbors))
	for _, n := range neighbors {
		positions = append(positions, n.Key)
	}
	return positions
}
