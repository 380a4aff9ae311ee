package common

type LocalMsgType uint32

func (lt LocalMsgType) Type() LocalMsgType {
	return lt & 0xff00
}

func (lt LocalMsgType) SubType() LocalMsgType {
	return lt & 0x00ff
}

// |--type--|-subtype-|
// 0000 0000 0000 0000
const (
	LocalNoUseType          LocalMsgType = 0
	LocalTrainMsg           LocalMsgType = 1 << 8
	LocalTrainMsg_Start     LocalMsgType = LocalTrainMsg | 1
	LocalTrainMsg_Epoch     LocalMsgType = LocalTrainMsg | 2
	LocalTrainMsg_Sample    LocalMsgType = LocalTrainMsg | 3
	LocalTrainMsg_EpochDone LocalMsgType = LocalTrainMsg | 4
	LocalTrainMsg_Done      LocalMsgType = LocalTrainMsg | 5
	LocalTrainMsg_Rejected  LocalMsgType = LocalTrainMsg | 6
	LocalEvalMsg            LocalMsgType = 2 << 8
	LocalEvalMsg_Fold       LocalMsgType = LocalEvalMsg | 1
)

// TrainStart is published once an accepted training call has zeroed its weights.
type TrainStart struct {
	Epochs   int
	Samples  int
	Features int
}

// SampleResult is published for every sample visited during training.
type SampleResult struct {
	Epoch   int
	Index   int
	Correct bool
	Updates int // running total after this sample
}

// EpochResult is published at the start (Updates is the running total so far)
// and at the end of every epoch.
type EpochResult struct {
	Epoch   int
	Updates int
	Errors  int // misclassified samples within this epoch
}

// TrainDone closes a training call.
type TrainDone struct {
	Epochs  int
	Updates int
	Weights []float64
}

// TrainRejected is published when a dataset fails the training preconditions.
type TrainRejected struct {
	Samples int
	Classes int
	Reason  string
}

// FoldResult is published after each cross-validation fold.
type FoldResult struct {
	Fold      int
	Folds     int
	Correct   int
	Incorrect int
}
