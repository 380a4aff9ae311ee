package session

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"lpc/common"
	"lpc/core/config"
	"lpc/core/ml"
	"lpc/core/msgbus"
)

// Session wires configuration, logging, the progress bus, the training data
// and one classifier together for a single CLI run.
type Session struct {
	ID string

	conf       *config.LocalConfig
	bus        msgbus.MessageBus
	data       *ml.SampleSet
	classifier *ml.LogisticPerceptron
	log        common.Logger
}

// Init prepares the session. Nothing is trained yet.
func (s *Session) Init(c *config.LocalConfig) error {
	if err := c.Validate(); err != nil {
		return errors.WithMessage(err, "invalid config")
	}
	s.conf = c

	logConfig, err := c.LogConfig()
	if err != nil {
		return errors.WithMessage(err, "get log config err")
	}
	common.SetLogConfig(logConfig)
	s.log = common.GetLogger(common.MODULE_SESSION)

	s.ID = uuid.NewString()
	//在其它模块初始化之前，初始化messagebus
	s.bus = msgbus.NewMessageBus(s.log)
	s.bus.Register(common.LocalTrainMsg, &progressLogger{log: s.log})

	s.data, err = ml.LoadSampleSet(c.Source.Path)
	if err != nil {
		return err
	}

	s.classifier = s.newClassifier()
	s.log.Infof("session %s ready, source: %s", s.ID, c.Source.Path)
	return nil
}

func (s *Session) newClassifier() *ml.LogisticPerceptron {
	p := ml.NewLogisticPerceptron(s.conf.Options(s.ID))
	p.SetProgressSink(s.bus)
	return p
}

// Subscribe attaches an extra listener, e.g. the console progress printer.
func (s *Session) Subscribe(topic common.LocalMsgType, sub msgbus.Subscriber) {
	s.bus.Register(topic, sub)
}

func (s *Session) Data() *ml.SampleSet {
	return s.data
}

func (s *Session) Classifier() *ml.LogisticPerceptron {
	return s.classifier
}

// Train builds the classifier on the session data and returns the update count.
func (s *Session) Train() int {
	return s.classifier.BuildClassifier(s.data)
}

// Evaluate trains, then evaluates on the configured test file, or on the
// training data when none is configured.
func (s *Session) Evaluate() (*ml.Evaluation, error) {
	s.Train()
	if !s.classifier.Trained() {
		return nil, errors.Errorf("classifier was not trained on %s", s.conf.Source.Path)
	}

	test := s.data
	if s.conf.Source.TestPath != "" {
		var err error
		test, err = ml.LoadSampleSet(s.conf.Source.TestPath)
		if err != nil {
			return nil, err
		}
	}
	return ml.Evaluate(s.classifier, test)
}

// CrossValidate runs the configured number of folds over the session data.
// Fold classifiers do not publish training progress.
func (s *Session) CrossValidate() (*ml.Evaluation, error) {
	if err := s.conf.ValidateCrossValidation(); err != nil {
		return nil, errors.WithMessage(err, "invalid config")
	}
	factory := func() ml.Classifier {
		return ml.NewLogisticPerceptron(s.conf.Options(s.ID))
	}
	return ml.CrossValidate(factory, s.data, s.conf.Eval.Folds, s.bus, s.ID)
}

func (s *Session) Report() string {
	return s.classifier.Report()
}

// Close flushes the loggers.
func (s *Session) Close() {
	s.bus.Reset()
	common.SyncLoggers()
}

// progressLogger turns training messages into debug/info log lines. Rejected
// datasets are already warned about by the classifier.
type progressLogger struct {
	log common.Logger
}

func (l *progressLogger) HandleMsgFromMsgBus(msg *msgbus.BusMessage) error {
	switch m := msg.Msg.(type) {
	case *common.TrainStart:
		l.log.Debugf("[%s] start: %d samples x %d features, %d epochs", msg.ChainID, m.Samples, m.Features, m.Epochs)
	case *common.EpochResult:
		if msg.MsgType == common.LocalTrainMsg_EpochDone {
			l.log.Debugf("[%s] epoch %d done: %d errors, %d updates", msg.ChainID, m.Epoch, m.Errors, m.Updates)
		}
	case *common.TrainDone:
		l.log.Infof("[%s] done: %d updates in %d epochs", msg.ChainID, m.Updates, m.Epochs)
	}
	return nil
}
