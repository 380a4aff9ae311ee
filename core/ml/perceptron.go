package ml

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"lpc/common"
)

// Bias is the constant input paired with the last weight.
const Bias = 1.0

// InferenceMode selects how Predict turns the weighted sum into a label.
type InferenceMode int

const (
	// InferenceThreshold thresholds the raw weighted sum at zero.
	InferenceThreshold InferenceMode = iota
	// InferenceLogistic squashes the sum, rescales it to (-1,1) and thresholds that.
	InferenceLogistic
)

var inferenceModeName = map[InferenceMode]string{
	InferenceThreshold: "threshold",
	InferenceLogistic:  "logistic",
}

func (m InferenceMode) String() string {
	if name, ok := inferenceModeName[m]; ok {
		return name
	}
	return fmt.Sprintf("InferenceMode(%d)", int(m))
}

func ParseInferenceMode(s string) (InferenceMode, error) {
	for mode, name := range inferenceModeName {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return mode, nil
		}
	}
	return InferenceThreshold, errors.Errorf("unknown inference mode %q", s)
}

type Options struct {
	Source       string // identifier shown in the report, defaults to the dataset source
	Epochs       int
	LearningRate float64
	Squashing    float64 // λ, steepness of the logistic function
	Inference    InferenceMode
	SessionID    string // channel ID for progress messages
}

// ProgressSink receives training progress. msgbus.MessageBus satisfies it.
type ProgressSink interface {
	Publish(channelID string, t common.LocalMsgType, payload interface{})
}

// LogisticPerceptron is a single-layer perceptron trained online with
// logistic-derivative weighted corrections.
type LogisticPerceptron struct {
	opts Options

	// weights[:n] pair with the features, weights[n] with Bias. nil until
	// a dataset has been accepted by Train.
	weights []float64
	epoch   int
	updates int

	sink ProgressSink
	log  common.Logger
}

func NewLogisticPerceptron(opts Options) *LogisticPerceptron {
	return &LogisticPerceptron{
		opts: opts,
		log:  common.GetLogger(common.MODULE_PERCEPTRON),
	}
}

func (p *LogisticPerceptron) SetProgressSink(sink ProgressSink) {
	p.sink = sink
}

func (p *LogisticPerceptron) SetLogger(log common.Logger) {
	p.log = log
}

func (p *LogisticPerceptron) Options() Options {
	return p.opts
}

func (p *LogisticPerceptron) publish(t common.LocalMsgType, payload interface{}) {
	if p.sink != nil {
		p.sink.Publish(p.opts.SessionID, t, payload)
	}
}

// BuildClassifier trains with the epochs, learning rate and λ given at construction.
func (p *LogisticPerceptron) BuildClassifier(ss *SampleSet) int {
	return p.Train(ss, p.opts.Epochs, p.opts.LearningRate, p.opts.Squashing)
}

// Train runs epochs online passes over ss in order and returns the number of
// weight corrections made. An empty dataset, or one with more than two
// classes, leaves the classifier untouched and returns 0.
func (p *LogisticPerceptron) Train(ss *SampleSet, epochs int, learningRate, squashing float64) int {
	if ss == nil || ss.Len() == 0 {
		p.reject(ss, "no samples")
		return 0
	}
	if classes := ss.NumClasses(); classes > 2 {
		p.reject(ss, fmt.Sprintf("%d classes, at most 2 supported", classes))
		return 0
	}

	p.opts.Epochs = epochs
	p.opts.LearningRate = learningRate
	p.opts.Squashing = squashing
	if p.opts.Source == "" {
		p.opts.Source = ss.Source()
	}

	n := ss.Dim()
	p.weights = make([]float64, n+1)
	p.updates = 0
	p.publish(common.LocalTrainMsg_Start, &common.TrainStart{Epochs: epochs, Samples: ss.Len(), Features: n})
	p.log.Debugf("train %d samples, %d features, epochs: %d, rate: %g, lambda: %g",
		ss.Len(), n, epochs, learningRate, squashing)

	for p.epoch = 0; p.epoch < epochs; p.epoch++ {
		p.publish(common.LocalTrainMsg_Epoch, &common.EpochResult{Epoch: p.epoch, Updates: p.updates})
		errs := 0
		for i := range ss.data {
			s := &ss.data[i]
			net := p.netSum(s.x)
			output := Sign(Bipolar(Logistic(net, squashing)))
			expected := s.Expected()

			correct := output == expected
			if !correct {
				p.updates++
				errs++
				fPrime := LogisticDerivative(net, squashing)
				delta := learningRate * float64(expected-output) * fPrime
				floats.AddScaled(p.weights[:n], delta, s.x)
				p.weights[n] += delta * Bias
			}
			p.publish(common.LocalTrainMsg_Sample, &common.SampleResult{
				Epoch: p.epoch, Index: i, Correct: correct, Updates: p.updates,
			})
		}
		p.publish(common.LocalTrainMsg_EpochDone, &common.EpochResult{Epoch: p.epoch, Updates: p.updates, Errors: errs})
		p.log.Debugf("epoch %d: %d misclassified, %d updates so far", p.epoch, errs, p.updates)
	}

	p.publish(common.LocalTrainMsg_Done, &common.TrainDone{Epochs: epochs, Updates: p.updates, Weights: p.Weights()})
	p.log.Infof("trained %d epochs with %d weight updates", epochs, p.updates)
	return p.updates
}

func (p *LogisticPerceptron) reject(ss *SampleSet, reason string) {
	r := &common.TrainRejected{Reason: reason}
	if ss != nil {
		r.Samples = ss.Len()
		r.Classes = ss.NumClasses()
	}
	p.log.Warnf("training skipped: %s", reason)
	p.publish(common.LocalTrainMsg_Rejected, r)
}

func (p *LogisticPerceptron) netSum(x []float64) float64 {
	n := len(p.weights) - 1
	return floats.Dot(p.weights[:n], x) + p.weights[n]*Bias
}

// Predict classifies x as PN or NN with the configured inference mode.
func (p *LogisticPerceptron) Predict(x []float64) (Type_Class, error) {
	if p.weights == nil {
		return PN, errors.New("model is not trained")
	}
	if len(x) != len(p.weights)-1 {
		return PN, errors.Errorf("error input dims %d, expect %d", len(x), len(p.weights)-1)
	}

	net := p.netSum(x)
	if p.opts.Inference == InferenceLogistic {
		return Sign(Bipolar(Logistic(net, p.opts.Squashing))), nil
	}
	return Sign(net), nil
}

// DistributionForInstance is the hard two-slot distribution of Predict:
// [1, 0] for PN, [0, 1] for NN.
func (p *LogisticPerceptron) DistributionForInstance(x []float64) ([]float64, error) {
	c, err := p.Predict(x)
	if err != nil {
		return nil, err
	}
	dist := make([]float64, 2)
	dist[IndexOf(c)] = 1
	return dist, nil
}

// ClassifyInstance returns the predicted class index.
func (p *LogisticPerceptron) ClassifyInstance(x []float64) (float64, error) {
	c, err := p.Predict(x)
	if err != nil {
		return 0, err
	}
	return float64(IndexOf(c)), nil
}

// Weights returns a copy of the weight vector, bias weight last.
func (p *LogisticPerceptron) Weights() []float64 {
	if p.weights == nil {
		return nil
	}
	return append([]float64(nil), p.weights...)
}

func (p *LogisticPerceptron) Updates() int {
	return p.updates
}

// Epoch is the epoch index reached, equal to the epoch count once training ends.
func (p *LogisticPerceptron) Epoch() int {
	return p.epoch
}

func (p *LogisticPerceptron) Trained() bool {
	return p.weights != nil
}

// Report renders the configuration, update count and final weights.
func (p *LogisticPerceptron) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source file: %s\n", p.opts.Source)
	fmt.Fprintf(&b, "Training epochs: %d\n", p.opts.Epochs)
	fmt.Fprintf(&b, "Learning rate: %g\n", p.opts.LearningRate)
	fmt.Fprintf(&b, "Squashing parameter: %g\n", p.opts.Squashing)
	fmt.Fprintf(&b, "Inference: %s\n", p.opts.Inference)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total # weight updates = %d\n", p.updates)
	if p.weights == nil {
		b.WriteString("Final weights: (untrained)\n")
		return b.String()
	}
	b.WriteString("Final weights:\n")
	for _, w := range p.weights {
		fmt.Fprintf(&b, "%.3f\n", w)
	}
	return b.String()
}

func (p *LogisticPerceptron) String() string {
	return p.Report()
}
