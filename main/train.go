package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"lpc/common"
	"lpc/core/config"
	"lpc/core/msgbus"
	"lpc/session"
)

const banner = "\nLogistic Perceptron Classifier\n"

// positional form: <file> <epochs> <rate> <lambda>
var positionalFlags = []string{"source", "epochs", "rate", "lambda"}

func applyPositional(cmd *cobra.Command, args []string) error {
	for i, arg := range args {
		if err := cmd.Flags().Set(positionalFlags[i], arg); err != nil {
			return errors.Wrapf(err, "invalid %s %q", positionalFlags[i], arg)
		}
	}
	return nil
}

// openSession loads config (file, env, flags) and initializes a session.
func openSession(cmd *cobra.Command, args []string) (*session.Session, error) {
	if err := applyPositional(cmd, args); err != nil {
		return nil, err
	}
	lc, err := config.InitLocalConfig(cmd)
	if err != nil {
		return nil, err
	}

	s := &session.Session{}
	if err := s.Init(lc); err != nil {
		return nil, err
	}
	if !quietFlag {
		s.Subscribe(common.LocalTrainMsg, &progressPrinter{out: cmd.OutOrStdout()})
	}
	return s, nil
}

func train(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprint(out, banner)

	s, err := openSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.Close()

	s.Train()
	fmt.Fprintln(out)
	fmt.Fprint(out, s.Report())
	return nil
}

func trainCMD() *cobra.Command {
	trainCmd := &cobra.Command{
		Use:   "train [file epochs rate lambda]",
		Short: "train the perceptron and print its weights",
		Long:  "train a logistic perceptron on a two-class dataset and report the final weights",
		Args:  cobra.MaximumNArgs(len(positionalFlags)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return train(cmd, args)
		},
	}
	attachFlags(trainCmd, append(commonFlags, "quiet"))
	return trainCmd
}

// progressPrinter writes "Epoch n: " and then one 1 (correct) or 0
// (corrected) per sample.
type progressPrinter struct {
	out io.Writer
}

func (p *progressPrinter) HandleMsgFromMsgBus(msg *msgbus.BusMessage) error {
	var err error
	switch msg.MsgType {
	case common.LocalTrainMsg_Epoch:
		_, err = fmt.Fprintf(p.out, "Epoch %d: ", msg.Msg.(*common.EpochResult).Epoch)
	case common.LocalTrainMsg_Sample:
		mark := "0"
		if msg.Msg.(*common.SampleResult).Correct {
			mark = "1"
		}
		_, err = io.WriteString(p.out, mark)
	case common.LocalTrainMsg_EpochDone:
		_, err = io.WriteString(p.out, "\n")
	case common.LocalTrainMsg_Rejected:
		_, err = fmt.Fprintf(p.out, "Training skipped: %s\n", msg.Msg.(*common.TrainRejected).Reason)
	}
	return err
}
