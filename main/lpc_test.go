package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, newCmd func() *cobra.Command, args ...string) (string, error) {
	resetFlags()
	t.Setenv("LPC_CFG_PATH", t.TempDir())
	cmd := newCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs(append(args, "--log-level", "ERROR"))
	err := cmd.Execute()
	return out.String(), err
}

const pairCSV = "x1,x2,class\n1.0,0.0,0\n0.0,1.0,1\n"

func TestTrainCMDPositional(t *testing.T) {
	path := writeCSV(t, pairCSV)

	out, err := run(t, trainCMD, path, "1", "0.5", "1.0")
	require.NoError(t, err)
	assert.Contains(t, out, "Logistic Perceptron Classifier")
	assert.Contains(t, out, "Epoch 0: 10\n")
	assert.Contains(t, out, "Source file: "+path)
	assert.Contains(t, out, "Training epochs: 1")
	assert.Contains(t, out, "Total # weight updates = 1")
	assert.Contains(t, out, "Final weights:\n0.000\n-0.250\n-0.250\n")
}

func TestTrainCMDFlagsQuiet(t *testing.T) {
	path := writeCSV(t, pairCSV)

	out, err := run(t, trainCMD, "--source", path, "--epochs", "2", "--rate", "0.5", "-q")
	require.NoError(t, err)
	assert.NotContains(t, out, "Epoch 0:")
	assert.Contains(t, out, "Training epochs: 2")
}

func TestTrainCMDBadArgument(t *testing.T) {
	path := writeCSV(t, pairCSV)

	_, err := run(t, trainCMD, path, "ten")
	assert.Error(t, err)

	_, err = run(t, trainCMD, path, "1", "-0.5")
	assert.Error(t, err)
}

func TestTrainCMDThreeClasses(t *testing.T) {
	path := writeCSV(t, "x,class\n1,0\n2,1\n3,2\n")

	out, err := run(t, trainCMD, path, "3", "0.5", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Training skipped")
	assert.Contains(t, out, "(untrained)")
}

func TestTrainCMDConfigFile(t *testing.T) {
	path := writeCSV(t, pairCSV)
	cfg := filepath.Join(t.TempDir(), "lpc.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(
		"source:\n  path: "+path+"\ntrain:\n  epochs: 4\n  learning_rate: 0.5\n"), 0o600))

	out, err := run(t, trainCMD, "--config", cfg, "-q")
	require.NoError(t, err)
	assert.Contains(t, out, "Training epochs: 4")
	assert.Contains(t, out, "Learning rate: 0.5")
}

const lineCSV = "x,class\n2,0\n-2,1\n3,0\n-3,1\n"

func TestEvalCMD(t *testing.T) {
	path := writeCSV(t, lineCSV)

	out, err := run(t, evalCMD, "--source", path, "--epochs", "3", "--rate", "1", "-q")
	require.NoError(t, err)
	assert.Contains(t, out, "Correctly classified:   4 (100.00%)")
	assert.Contains(t, out, "Total # weight updates = 1")
}

func TestEvalCMDCrossValidate(t *testing.T) {
	path := writeCSV(t, lineCSV)

	out, err := run(t, evalCMD, "--source", path, "--rate", "1", "--cv", "--folds", "2", "-q")
	require.NoError(t, err)
	assert.Contains(t, out, "Fold 1/2: 2 correct, 0 incorrect")
	assert.Contains(t, out, "Fold 2/2: 2 correct, 0 incorrect")
	assert.Contains(t, out, "Total instances:        4")
}

func TestPredictCMD(t *testing.T) {
	path := writeCSV(t, lineCSV)

	out, err := run(t, predictCMD, "--source", path, "--rate", "1", "--values", "-1")
	require.NoError(t, err)
	assert.Equal(t, "class index 1 (-1), distribution [0 1]\n", out)

	_, err = run(t, predictCMD, "--source", path)
	assert.Error(t, err)

	_, err = run(t, predictCMD, "--source", path, "--values", "1,2")
	assert.Error(t, err)
}

func TestMainCMDHasSubcommands(t *testing.T) {
	resetFlags()
	cmd := newMainCmd()
	for _, name := range []string{"train", "eval", "predict"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}

func TestTrainCMDIgnoresFoldsSetting(t *testing.T) {
	path := writeCSV(t, pairCSV)
	cfg := filepath.Join(t.TempDir(), "lpc.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(
		"source:\n  path: "+path+"\neval:\n  folds: 1\n"), 0o600))

	_, err := run(t, trainCMD, "--config", cfg, "-q")
	require.NoError(t, err)

	_, err = run(t, evalCMD, "--config", cfg, "--cv", "-q")
	assert.Error(t, err)
}
