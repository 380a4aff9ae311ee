package ml

import (
	"github.com/pkg/errors"
)

// Type_Class is the bipolar label the perceptron works with.
type Type_Class int

const (
	PN Type_Class = 1
	NN Type_Class = -1
)

// Label mapping between dataset class indexes and bipolar labels. Class index 0
// is the positive side; every other index is the negative side.
const (
	PositiveClassIndex = 0
	NegativeClassIndex = 1
)

// ClassOf maps a dataset class index to its bipolar label.
func ClassOf(classIndex int) Type_Class {
	if classIndex == PositiveClassIndex {
		return PN
	}
	return NN
}

// IndexOf maps a bipolar label back to its distribution slot.
func IndexOf(c Type_Class) int {
	if c == PN {
		return PositiveClassIndex
	}
	return NegativeClassIndex
}

func (c Type_Class) String() string {
	if c == PN {
		return "+1"
	}
	return "-1"
}

type Sample struct {
	x []float64
	y int // class index
}

func NewSample(x []float64, classIndex int) Sample {
	return Sample{x: x, y: classIndex}
}

func (s *Sample) GetX() []float64 {
	return s.x
}

// GetY returns the class index of the sample.
func (s *Sample) GetY() int {
	return s.y
}

// Expected is the bipolar label training compares against.
func (s *Sample) Expected() Type_Class {
	return ClassOf(s.y)
}

type SampleSet struct {
	data     []Sample
	dim      int
	declared int // class values declared by the source, 0 if unknown
	source   string
}

// NewSampleSet checks that every sample has the feature count of the first one.
func NewSampleSet(samples []Sample) (*SampleSet, error) {
	ss := &SampleSet{data: samples}
	if len(samples) == 0 {
		return ss, nil
	}
	ss.dim = len(samples[0].x)
	for i := range samples {
		if samples[i].y < 0 {
			return nil, errors.Errorf("sample %d has negative class index %d", i, samples[i].y)
		}
		if len(samples[i].x) != ss.dim {
			return nil, errors.Errorf("sample %d has %d features, expect %d", i, len(samples[i].x), ss.dim)
		}
	}
	return ss, nil
}

func (ss *SampleSet) Len() int {
	return len(ss.data)
}

// Dim is the feature count n shared by every sample.
func (ss *SampleSet) Dim() int {
	return ss.dim
}

func (ss *SampleSet) At(i int) *Sample {
	return &ss.data[i]
}

func (ss *SampleSet) Samples() []Sample {
	return ss.data
}

// NumClasses is the larger of the declared class count and the number of
// distinct class indexes present.
func (ss *SampleSet) NumClasses() int {
	seen := make(map[int]struct{})
	for i := range ss.data {
		seen[ss.data[i].y] = struct{}{}
	}
	if ss.declared > len(seen) {
		return ss.declared
	}
	return len(seen)
}

func (ss *SampleSet) SetDeclaredClasses(n int) {
	ss.declared = n
}

func (ss *SampleSet) Source() string {
	return ss.source
}

func (ss *SampleSet) SetSource(source string) {
	ss.source = source
}

// Subset returns the samples at [from, to) and the rest, preserving order.
// Both halves keep the source and declared class count.
func (ss *SampleSet) Subset(from, to int) (in *SampleSet, out *SampleSet) {
	inData := make([]Sample, 0, to-from)
	outData := make([]Sample, 0, len(ss.data)-(to-from))
	inData = append(inData, ss.data[from:to]...)
	outData = append(outData, ss.data[:from]...)
	outData = append(outData, ss.data[to:]...)

	in = &SampleSet{data: inData, dim: ss.dim, declared: ss.declared, source: ss.source}
	out = &SampleSet{data: outData, dim: ss.dim, declared: ss.declared, source: ss.source}
	return in, out
}
