package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lpc/common"
	"lpc/core/ml"
)

func newCmd(args ...string) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringP("config", "c", "", "")
	cmd.Flags().String("source", "", "")
	cmd.Flags().Int("epochs", 0, "")
	cmd.Flags().Float64("rate", 0, "")
	cmd.Flags().Float64("lambda", 0, "")
	cmd.Flags().String("inference", "", "")
	if err := cmd.Flags().Parse(args); err != nil {
		panic(err)
	}
	return cmd
}

const sampleYAML = `
source:
  path: data/pair.csv
train:
  epochs: 20
  learning_rate: 0.5
  squashing: 2
  inference: logistic
eval:
  folds: 4
log:
  level: debug
  module_level:
    perceptron: warn
`

func writeConfig(t *testing.T, dir string) string {
	path := filepath.Join(dir, ConfigName+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))
	return path
}

func TestInitLocalConfigFromFlagFile(t *testing.T) {
	path := writeConfig(t, t.TempDir())

	lc, err := InitLocalConfig(newCmd("--config", path))
	require.NoError(t, err)
	assert.Equal(t, path, lc.ConfigFile)
	assert.Equal(t, "data/pair.csv", lc.Source.Path)
	assert.Equal(t, 20, lc.Train.Epochs)
	assert.Equal(t, 0.5, lc.Train.LearningRate)
	assert.Equal(t, 2.0, lc.Train.Squashing)
	assert.Equal(t, ml.InferenceLogistic, lc.Train.Inference)
	assert.Equal(t, 4, lc.Eval.Folds)
	require.NoError(t, lc.Validate())

	logCfg, err := lc.LogConfig()
	require.NoError(t, err)
	assert.Equal(t, common.LEVEL_DEBUG, logCfg.LogLevel)
	assert.Equal(t, common.LEVEL_WARN, logCfg.ModuleSpecialLevel[common.MODULE_PERCEPTRON])
}

func TestInitLocalConfigFromEnvPath(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)
	t.Setenv(EnvConfigPath, dir)

	lc, err := InitLocalConfig(newCmd())
	require.NoError(t, err)
	assert.Equal(t, "data/pair.csv", lc.Source.Path)
}

func TestFlagsOverrideFileAndEnv(t *testing.T) {
	path := writeConfig(t, t.TempDir())
	t.Setenv("LPC_TRAIN_LEARNING_RATE", "0.25")

	lc, err := InitLocalConfig(newCmd("--config", path, "--epochs", "3", "--source", "other.csv"))
	require.NoError(t, err)
	assert.Equal(t, 3, lc.Train.Epochs)
	assert.Equal(t, "other.csv", lc.Source.Path)
	assert.Equal(t, 0.25, lc.Train.LearningRate)

	opts := lc.Options("sid")
	assert.Equal(t, "other.csv", opts.Source)
	assert.Equal(t, "sid", opts.SessionID)
	assert.Equal(t, 3, opts.Epochs)
}

func TestDefaultsWithoutConfigFile(t *testing.T) {
	t.Setenv(EnvConfigPath, t.TempDir())

	lc, err := InitLocalConfig(newCmd("--source", "x.csv"))
	require.NoError(t, err)
	assert.Empty(t, lc.ConfigFile)
	assert.Equal(t, 10, lc.Train.Epochs)
	assert.Equal(t, 0.1, lc.Train.LearningRate)
	assert.Equal(t, 1.0, lc.Train.Squashing)
	assert.Equal(t, ml.InferenceThreshold, lc.Train.Inference)
	assert.NoError(t, lc.Validate())
}

func TestMissingExplicitConfigFile(t *testing.T) {
	_, err := InitLocalConfig(newCmd("--config", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestBadInferenceMode(t *testing.T) {
	t.Setenv(EnvConfigPath, t.TempDir())
	_, err := InitLocalConfig(newCmd("--inference", "softmax"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := LocalConfig{
		Source: SourceConfig{Path: "a.csv"},
		Train:  TrainConfig{Epochs: 1, LearningRate: 0.1, Squashing: 1},
		Eval:   EvalConfig{Folds: 2},
	}
	require.NoError(t, valid.Validate())

	cases := map[string]func(lc *LocalConfig){
		"no source":      func(lc *LocalConfig) { lc.Source.Path = "" },
		"zero epochs":    func(lc *LocalConfig) { lc.Train.Epochs = 0 },
		"negative rate":  func(lc *LocalConfig) { lc.Train.LearningRate = -1 },
		"zero squashing": func(lc *LocalConfig) { lc.Train.Squashing = 0 },
	}
	for name, mutate := range cases {
		lc := valid
		mutate(&lc)
		assert.Error(t, lc.Validate(), name)
	}
}

func TestFoldsOnlyCheckedForCrossValidation(t *testing.T) {
	lc := LocalConfig{
		Source: SourceConfig{Path: "a.csv"},
		Train:  TrainConfig{Epochs: 1, LearningRate: 0.1, Squashing: 1},
		Eval:   EvalConfig{Folds: 1},
	}
	assert.NoError(t, lc.Validate())
	assert.Error(t, lc.ValidateCrossValidation())

	lc.Eval.Folds = 2
	assert.NoError(t, lc.ValidateCrossValidation())
}

func TestLogConfigUnknownLevel(t *testing.T) {
	lc := &LocalConfig{Log: LogSection{Level: "verbose"}}
	_, err := lc.LogConfig()
	assert.Error(t, err)
}
