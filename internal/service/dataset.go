package service

import (
	"math"
	"sort"
)

// Missing marks an absent retention time inside a condition's series.
var Missing = math.NaN()

// RetentionDataset holds the retention-time table: one column of retention
// times per 1D-LC condition, all columns indexed by the same compound order.
// Missing values are NaN. The dataset is immutable once built.
type RetentionDataset struct {
	labels []string
	times  map[string][]float64
}

// NewRetentionDataset builds a dataset from condition labels and their
// retention-time columns. Every column must have the same length (one entry
// per compound); missing values are NaN.
func NewRetentionDataset(labels []string, columns map[string][]float64) (*RetentionDataset, error) {
	if len(labels) == 0 {
		return nil, validationf("retention table has no condition labels")
	}
	nRows := -1
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if label == "" {
			return nil, validationf("retention table has an empty condition label")
		}
		if _, dup := seen[label]; dup {
			return nil, validationf("duplicate condition label %q", label)
		}
		seen[label] = struct{}{}
		col, ok := columns[label]
		if !ok {
			return nil, validationf("retention table is missing values for condition %q", label)
		}
		if nRows == -1 {
			nRows = len(col)
		} else if len(col) != nRows {
			return nil, validationf("condition %q has %d rows, expected %d", label, len(col), nRows)
		}
	}
	if nRows == 0 {
		return nil, validationf("retention table has no compound rows")
	}
	times := make(map[string][]float64, len(labels))
	for _, label := range labels {
		times[label] = append([]float64(nil), columns[label]...)
	}
	return &RetentionDataset{labels: append([]string(nil), labels...), times: times}, nil
}

// Labels returns the condition labels in table order.
func (d *RetentionDataset) Labels() []string {
	return append([]string(nil), d.labels...)
}

// Column returns the retention-time series for a condition label.
func (d *RetentionDataset) Column(label string) ([]float64, bool) {
	col, ok := d.times[label]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), col...), true
}

// NumCompounds returns the number of compound rows.
func (d *RetentionDataset) NumCompounds() int {
	for _, col := range d.times {
		return len(col)
	}
	return 0
}

// NumConditions returns the number of 1D-LC conditions.
func (d *RetentionDataset) NumConditions() int {
	return len(d.labels)
}

// NormalizedDataset is a RetentionDataset rescaled onto the [0,1] axis. It
// records which method and parameters produced it so stale artifacts can be
// detected and discarded when parameters change.
type NormalizedDataset struct {
	RetentionDataset
	Method NormalizationMethod
	Params NormalizationParams
}

// PeakCapacities maps a condition label to its experimental 1D peak capacity.
type PeakCapacities map[string]float64

// NormalizationParams carries per-condition void times (Rt0) and gradient-end
// times. Presence of a label in the map means the value was supplied.
type NormalizationParams struct {
	VoidTimes map[string]float64
	EndTimes  map[string]float64
}

// sortedLabels returns a deterministic ordering of a capacity table's labels.
func (p PeakCapacities) sortedLabels() []string {
	labels := make([]string, 0, len(p))
	for label := range p {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
