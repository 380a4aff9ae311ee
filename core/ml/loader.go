package ml

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sjwhitworth/golearn/base"
	"lpc/common"
)

// LoadSampleSet reads a labeled dataset. Files ending in .arff are parsed as
// ARFF, anything else as CSV with a header row. The last attribute is the class.
func LoadSampleSet(path string) (*SampleSet, error) {
	log := common.GetLogger(common.MODULE_LOADER)

	var (
		inst *base.DenseInstances
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".arff") {
		inst, err = base.ParseDenseARFFToInstances(path)
	} else {
		inst, err = base.ParseCSVToInstances(path, true)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse dataset %s", path)
	}
	if len(inst.AllClassAttributes()) == 0 {
		attrs := inst.AllAttributes()
		if len(attrs) == 0 {
			return nil, errors.Errorf("dataset %s has no attributes", path)
		}
		if err = inst.AddClassAttribute(attrs[len(attrs)-1]); err != nil {
			return nil, errors.Wrap(err, "could not set class attribute")
		}
	}

	ss, err := FromInstances(inst)
	if err != nil {
		return nil, errors.WithMessagef(err, "dataset %s", path)
	}
	ss.SetSource(path)
	log.Infof("loaded %s: %d samples, %d features, %d classes", path, ss.Len(), ss.Dim(), ss.NumClasses())
	return ss, nil
}

// FromInstances converts a golearn grid into a SampleSet. Every non-class
// attribute must be numeric.
func FromInstances(inst base.FixedDataGrid) (*SampleSet, error) {
	classAttrs := inst.AllClassAttributes()
	if len(classAttrs) != 1 {
		return nil, errors.Errorf("expect one class attribute, got %d", len(classAttrs))
	}
	featureAttrs := base.NonClassFloatAttributes(inst)
	if all := base.NonClassAttributes(inst); len(all) != len(featureAttrs) {
		return nil, errors.Errorf("%d of %d feature attributes are not numeric",
			len(all)-len(featureAttrs), len(all))
	}
	featureSpecs := base.ResolveAttributes(inst, featureAttrs)
	classSpec, err := inst.GetAttribute(classAttrs[0])
	if err != nil {
		return nil, errors.Wrap(err, "could not resolve class attribute")
	}

	declared := 0
	var classIndex func(val []byte) (int, error)
	switch a := classAttrs[0].(type) {
	case *base.CategoricalAttribute:
		declared = len(a.GetValues())
		classIndex = func(val []byte) (int, error) {
			return int(base.UnpackBytesToU64(val)), nil
		}
	case *base.FloatAttribute:
		classIndex = func(val []byte) (int, error) {
			v := base.UnpackBytesToFloat(val)
			if v < 0 || v != math.Trunc(v) {
				return 0, errors.Errorf("class value %g is not a class index", v)
			}
			return int(v), nil
		}
	default:
		return nil, errors.Errorf("unsupported class attribute %s", classAttrs[0].GetName())
	}

	_, rows := inst.Size()
	samples := make([]Sample, 0, rows)
	for row := 0; row < rows; row++ {
		x := make([]float64, len(featureSpecs))
		for i, spec := range featureSpecs {
			x[i] = base.UnpackBytesToFloat(inst.Get(spec, row))
		}
		y, err := classIndex(inst.Get(classSpec, row))
		if err != nil {
			return nil, errors.WithMessagef(err, "row %d", row)
		}
		samples = append(samples, NewSample(x, y))
	}

	ss, err := NewSampleSet(samples)
	if err != nil {
		return nil, err
	}
	ss.SetDeclaredClasses(declared)
	return ss, nil
}
