package kmeans

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Partition is a hard assignment of a dataset to the clusters of a
// Model. Per-cluster membership is tracked as roaring bitmaps of row
// indices, so large cluster subsets stay cheap to store and iterate.
type Partition struct {
	assignments []int
	clusters    []*roaring.Bitmap
}

// Partition assigns every row of data to its nearest centroid.
func (m *Model) Partition(data [][]float64) (*Partition, error) {
	if err := m.checkData(data); err != nil {
		return nil, err
	}
	p := &Partition{
		assignments: make([]int, len(data)),
		clusters:    make([]*roaring.Bitmap, len(m.centroids)),
	}
	for j := range p.clusters {
		p.clusters[j] = roaring.New()
	}
	for i, x := range data {
		j, _ := m.nearest(x)
		p.assignments[i] = j
		p.clusters[j].Add(uint32(i))
	}
	return p, nil
}

// K returns the number of clusters in the partition.
func (p *Partition) K() int { return len(p.clusters) }

// Len returns the number of partitioned rows.
func (p *Partition) Len() int { return len(p.assignments) }

// Assignment returns the cluster index of row i.
func (p *Partition) Assignment(i int) int { return p.assignments[i] }

// Count returns the number of rows assigned to cluster j.
func (p *Partition) Count(j int) int {
	return int(p.clusters[j].GetCardinality())
}

// Rows returns the row-index bitmap of cluster j. The bitmap is shared
// with the partition and must not be modified.
func (p *Partition) Rows(j int) *roaring.Bitmap {
	return p.clusters[j]
}

// Select gathers the rows of data assigned to cluster j.
// The returned slice shares the row backing arrays with data.
func (p *Partition) Select(data [][]float64, j int) [][]float64 {
	out := make([][]float64, 0, p.Count(j))
	it := p.clusters[j].Iterator()
	for it.HasNext() {
		out = append(out, data[it.Next()])
	}
	return out
}
