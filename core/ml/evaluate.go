package ml

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"lpc/common"
)

// Classifier is what a train/evaluate harness needs from a model.
type Classifier interface {
	BuildClassifier(ss *SampleSet) int
	Predict(x []float64) (Type_Class, error)
	DistributionForInstance(x []float64) ([]float64, error)
	Report() string
}

var _ Classifier = (*LogisticPerceptron)(nil)

// Evaluation counts predictions per (actual, predicted) distribution slot.
type Evaluation struct {
	Confusion [2][2]int // [actual][predicted]
}

func (e *Evaluation) Correct() int {
	return e.Confusion[0][0] + e.Confusion[1][1]
}

func (e *Evaluation) Incorrect() int {
	return e.Confusion[0][1] + e.Confusion[1][0]
}

func (e *Evaluation) Total() int {
	return e.Correct() + e.Incorrect()
}

func (e *Evaluation) Accuracy() float64 {
	if e.Total() == 0 {
		return 0
	}
	return float64(e.Correct()) / float64(e.Total())
}

func (e *Evaluation) ErrorRate() float64 {
	if e.Total() == 0 {
		return 0
	}
	return 1 - e.Accuracy()
}

func (e *Evaluation) add(o *Evaluation) {
	for i := range e.Confusion {
		for j := range e.Confusion[i] {
			e.Confusion[i][j] += o.Confusion[i][j]
		}
	}
}

func (e *Evaluation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Correctly classified:   %d (%.2f%%)\n", e.Correct(), 100*e.Accuracy())
	fmt.Fprintf(&b, "Incorrectly classified: %d (%.2f%%)\n", e.Incorrect(), 100*e.ErrorRate())
	fmt.Fprintf(&b, "Total instances:        %d\n", e.Total())
	b.WriteString("Confusion matrix (rows actual, columns predicted):\n")
	fmt.Fprintf(&b, "  %6d %6d | class 0 (+1)\n", e.Confusion[0][0], e.Confusion[0][1])
	fmt.Fprintf(&b, "  %6d %6d | class 1 (-1)\n", e.Confusion[1][0], e.Confusion[1][1])
	return b.String()
}

// Evaluate predicts every sample of ss with c.
func Evaluate(c Classifier, ss *SampleSet) (*Evaluation, error) {
	e := &Evaluation{}
	for i := range ss.data {
		s := &ss.data[i]
		dist, err := c.DistributionForInstance(s.x)
		if err != nil {
			return nil, errors.WithMessagef(err, "sample %d", i)
		}
		predicted := PositiveClassIndex
		if dist[NegativeClassIndex] > dist[PositiveClassIndex] {
			predicted = NegativeClassIndex
		}
		e.Confusion[IndexOf(s.Expected())][predicted]++
	}
	return e, nil
}

// CrossValidate trains a fresh classifier per fold on the other folds and
// evaluates it on the held-out one. Folds are contiguous, in dataset order.
func CrossValidate(factory func() Classifier, ss *SampleSet, folds int, sink ProgressSink, channelID string) (*Evaluation, error) {
	if folds < 2 {
		return nil, errors.Errorf("need at least 2 folds, got %d", folds)
	}
	if folds > ss.Len() {
		return nil, errors.Errorf("%d folds for %d samples", folds, ss.Len())
	}
	log := common.GetLogger(common.MODULE_EVAL)

	total := &Evaluation{}
	size := ss.Len()
	for k := 0; k < folds; k++ {
		from := k * size / folds
		to := (k + 1) * size / folds
		test, train := ss.Subset(from, to)

		c := factory()
		c.BuildClassifier(train)
		e, err := Evaluate(c, test)
		if err != nil {
			return nil, errors.WithMessagef(err, "fold %d", k)
		}
		total.add(e)

		log.Debugf("fold %d/%d: %d correct, %d incorrect", k+1, folds, e.Correct(), e.Incorrect())
		if sink != nil {
			sink.Publish(channelID, common.LocalEvalMsg_Fold, &common.FoldResult{
				Fold: k, Folds: folds, Correct: e.Correct(), Incorrect: e.Incorrect(),
			})
		}
	}
	return total, nil
}
