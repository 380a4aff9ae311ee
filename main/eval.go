package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"lpc/common"
	"lpc/core/ml"
	"lpc/core/msgbus"
)

func eval(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	s, err := openSession(cmd, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	var e *ml.Evaluation
	if cvFlag {
		s.Subscribe(common.LocalEvalMsg, msgbus.SubscriberFunc(func(msg *msgbus.BusMessage) error {
			f := msg.Msg.(*common.FoldResult)
			_, err := fmt.Fprintf(out, "Fold %d/%d: %d correct, %d incorrect\n", f.Fold+1, f.Folds, f.Correct, f.Incorrect)
			return err
		}))
		e, err = s.CrossValidate()
	} else {
		e, err = s.Evaluate()
		if err == nil {
			fmt.Fprintln(out)
			fmt.Fprint(out, s.Report())
		}
	}
	if err != nil {
		return errors.WithMessage(err, "evaluation failed")
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, e.String())
	return nil
}

func evalCMD() *cobra.Command {
	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "train and evaluate the perceptron",
		Long:  "train on the source data, then evaluate on --test (default the source) or cross-validate with --cv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return eval(cmd)
		},
	}
	attachFlags(evalCmd, append(commonFlags, "test", "folds", "cv", "quiet"))
	return evalCmd
}

func predict(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if len(valuesFlag) == 0 {
		return errors.New("no --values to classify")
	}

	quietFlag = true
	s, err := openSession(cmd, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	s.Train()
	c := s.Classifier()
	label, err := c.Predict(valuesFlag)
	if err != nil {
		return err
	}
	dist, err := c.DistributionForInstance(valuesFlag)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "class index %d (%s), distribution [%g %g]\n", ml.IndexOf(label), label, dist[0], dist[1])
	return nil
}

func predictCMD() *cobra.Command {
	predictCmd := &cobra.Command{
		Use:   "predict",
		Short: "train the perceptron and classify one feature vector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return predict(cmd)
		},
	}
	attachFlags(predictCmd, append(commonFlags, "values"))
	return predictCmd
}
