package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"lpc/common"
)

var flags *pflag.FlagSet

var (
	cfgPathFlag   string
	sourceFlag    string
	testFlag      string
	epochsFlag    int
	rateFlag      float64
	lambdaFlag    float64
	inferenceFlag string
	foldsFlag     int
	cvFlag        bool
	quietFlag     bool
	valuesFlag    []float64
	logLevelFlag  string
	logPathFlag   string
	briefModeFlag string
)

func init() {
	resetFlags()
}

// Explicitly define a method to facilitate tests
func resetFlags() {
	flags = &pflag.FlagSet{}

	flags.StringVarP(&cfgPathFlag, "config", "c", "",
		"config file, default lpc_config.yaml under $LPC_CFG_PATH")
	flags.StringVarP(&sourceFlag, "source", "s", "", "training data, .csv or .arff")
	flags.StringVarP(&testFlag, "test", "t", "", "evaluation data, default the training data")
	flags.IntVarP(&epochsFlag, "epochs", "e", 10, "training epochs")
	flags.Float64VarP(&rateFlag, "rate", "r", 0.1, "learning rate")
	flags.Float64VarP(&lambdaFlag, "lambda", "l", 1.0, "logistic squashing parameter")
	flags.StringVar(&inferenceFlag, "inference", "threshold", "inference mode: threshold|logistic")
	flags.IntVarP(&foldsFlag, "folds", "k", 10, "cross-validation folds")
	flags.BoolVar(&cvFlag, "cv", false, "cross-validate instead of evaluating a trained model")
	flags.BoolVarP(&quietFlag, "quiet", "q", false, "do not print per-sample progress")
	flags.Float64SliceVar(&valuesFlag, "values", nil, "feature values to classify, comma separated")
	flags.StringVar(&logLevelFlag, "log-level", "INFO", "DEBUG|INFO|WARN|ERROR")
	flags.StringVar(&logPathFlag, "log-path", "", "rotated log file prefix, none when empty")
	flags.StringVar(&briefModeFlag, "brief-mode", "", "DEV|PROD preset log config")
}

func attachFlags(cmd *cobra.Command, names []string) {
	cmdFlags := cmd.Flags()
	for _, name := range names {
		if flag := flags.Lookup(name); flag != nil {
			cmdFlags.AddFlag(flag)
		} else {
			panic(fmt.Errorf("Could not find flag '%s' to attach to command '%s'", name, cmd.Name()))
		}
	}
}

var commonFlags = []string{
	"config", "source", "epochs", "rate", "lambda", "inference",
	"log-level", "log-path", "brief-mode",
}

func newMainCmd() *cobra.Command {
	mainCmd := &cobra.Command{
		Use:           "lpc",
		Short:         "logistic perceptron classifier",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	mainCmd.AddCommand(trainCMD())
	mainCmd.AddCommand(evalCMD())
	mainCmd.AddCommand(predictCMD())
	return mainCmd
}

func main() {
	if err := newMainCmd().Execute(); err != nil {
		common.GetLogger(common.MODULE_CLI).Error(err)
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
