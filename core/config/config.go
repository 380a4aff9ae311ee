package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"lpc/common"
	"lpc/core/ml"
)

const (
	ConfigName    = "lpc_config"
	EnvPrefix     = "lpc"
	EnvConfigPath = "LPC_CFG_PATH"
)

// viper keys
const (
	KeySourcePath    = "source.path"
	KeySourceTest    = "source.test_path"
	KeyEpochs        = "train.epochs"
	KeyLearningRate  = "train.learning_rate"
	KeySquashing     = "train.squashing"
	KeyInference     = "train.inference"
	KeyFolds         = "eval.folds"
	KeyLogBriefMode  = "log.brief_mode"
	KeyLogLevel      = "log.level"
	KeyLogPath       = "log.path"
	KeyLogConsole    = "log.console"
	KeyLogShowLine   = "log.show_line"
	KeyLogRotTime    = "log.rotation_time"
	KeyLogRotSize    = "log.rotation_size"
	KeyLogRotMaxAge  = "log.rotation_max_age"
	KeyLogModuleLvls = "log.module_level"
)

type SourceConfig struct {
	Path     string
	TestPath string
}

type TrainConfig struct {
	Epochs       int
	LearningRate float64
	Squashing    float64
	Inference    ml.InferenceMode
}

type EvalConfig struct {
	Folds int
}

type LogSection struct {
	BriefMode    string
	Level        string
	Path         string
	Console      bool
	ShowLine     bool
	RotationTime int
	RotationSize int
	RotationAge  int
	ModuleLevel  map[string]string
}

type LocalConfig struct {
	ConfigFile string // file actually read, empty when none was found
	Source     SourceConfig
	Train      TrainConfig
	Eval       EvalConfig
	Log        LogSection
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyEpochs, 10)
	v.SetDefault(KeyLearningRate, 0.1)
	v.SetDefault(KeySquashing, 1.0)
	v.SetDefault(KeyInference, ml.InferenceThreshold.String())
	v.SetDefault(KeyFolds, 10)
	v.SetDefault(KeyLogLevel, "INFO")
	v.SetDefault(KeyLogConsole, true)
	v.SetDefault(KeyLogShowLine, false)
	v.SetDefault(KeyLogRotTime, 24)
	v.SetDefault(KeyLogRotSize, 30)
	v.SetDefault(KeyLogRotMaxAge, 7)
}

// flagKeys binds command line flags to viper keys, flags win over env and file.
var flagKeys = map[string]string{
	"source":     KeySourcePath,
	"test":       KeySourceTest,
	"epochs":     KeyEpochs,
	"rate":       KeyLearningRate,
	"lambda":     KeySquashing,
	"inference":  KeyInference,
	"folds":      KeyFolds,
	"log-level":  KeyLogLevel,
	"log-path":   KeyLogPath,
	"brief-mode": KeyLogBriefMode,
}

// InitLocalConfig reads the config file named by the "config" flag, or
// lpc_config.yaml under $LPC_CFG_PATH (default "."), then applies LPC_* env
// vars and the command's flags. A missing default config file is not an error.
func InitLocalConfig(cmd *cobra.Command) (*LocalConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	//若命令行设置了配置文件，则直接使用
	//若未设置，则在LPC_CFG_PATH下寻找lpc_config.yaml
	altPath := os.Getenv(EnvConfigPath)
	if altPath == "" {
		altPath = "."
	}
	v.AddConfigPath(altPath)
	v.SetConfigName(ConfigName)
	cmdSetConfigFile := ""
	if flag := cmd.Flags().Lookup("config"); flag != nil {
		cmdSetConfigFile = flag.Value.String()
	}
	if cmdSetConfigFile != "" {
		v.SetConfigFile(cmdSetConfigFile)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cmdSetConfigFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	for name, key := range flagKeys {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, errors.Wrapf(err, "bind flag %s", name)
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*LocalConfig, error) {
	lc := &LocalConfig{ConfigFile: v.ConfigFileUsed()}
	lc.Source.Path = v.GetString(KeySourcePath)
	lc.Source.TestPath = v.GetString(KeySourceTest)

	lc.Train.Epochs = v.GetInt(KeyEpochs)
	lc.Train.LearningRate = v.GetFloat64(KeyLearningRate)
	lc.Train.Squashing = v.GetFloat64(KeySquashing)
	mode, err := ml.ParseInferenceMode(v.GetString(KeyInference))
	if err != nil {
		return nil, errors.WithMessage(err, KeyInference)
	}
	lc.Train.Inference = mode
	lc.Eval.Folds = v.GetInt(KeyFolds)

	lc.Log.BriefMode = v.GetString(KeyLogBriefMode)
	lc.Log.Level = v.GetString(KeyLogLevel)
	lc.Log.Path = v.GetString(KeyLogPath)
	lc.Log.Console = v.GetBool(KeyLogConsole)
	lc.Log.ShowLine = v.GetBool(KeyLogShowLine)
	lc.Log.RotationTime = v.GetInt(KeyLogRotTime)
	lc.Log.RotationSize = v.GetInt(KeyLogRotSize)
	lc.Log.RotationAge = v.GetInt(KeyLogRotMaxAge)
	lc.Log.ModuleLevel = v.GetStringMapString(KeyLogModuleLvls)
	return lc, nil
}

// Validate checks the values the classifier cannot run without.
func (lc *LocalConfig) Validate() error {
	if lc.Source.Path == "" {
		return errors.New("no source path configured")
	}
	if lc.Train.Epochs <= 0 {
		return errors.Errorf("epochs must be positive, got %d", lc.Train.Epochs)
	}
	if lc.Train.LearningRate <= 0 {
		return errors.Errorf("learning rate must be positive, got %g", lc.Train.LearningRate)
	}
	if lc.Train.Squashing <= 0 {
		return errors.Errorf("squashing parameter must be positive, got %g", lc.Train.Squashing)
	}
	return nil
}

// ValidateCrossValidation checks the keys only cross-validation reads.
func (lc *LocalConfig) ValidateCrossValidation() error {
	if lc.Eval.Folds < 2 {
		return errors.Errorf("folds must be at least 2, got %d", lc.Eval.Folds)
	}
	return nil
}

// LogConfig converts the log section for common.SetLogConfig.
func (lc *LocalConfig) LogConfig() (*common.LogConfig, error) {
	level, ok := common.LOG_LEVEL_Value[strings.ToUpper(lc.Log.Level)]
	if !ok {
		return nil, errors.Errorf("unknown log level %q", lc.Log.Level)
	}
	special := make(map[string]common.LOG_LEVEL, len(lc.Log.ModuleLevel))
	for module, name := range lc.Log.ModuleLevel {
		// viper lowercases keys, modules are registered as "[Name]"
		special[moduleName(module)] = common.ParseLogLevel(name)
	}
	return &common.LogConfig{
		BriefMode:          lc.Log.BriefMode,
		ModuleSpecialLevel: special,
		LogPath:            lc.Log.Path,
		LogLevel:           level,
		RotationMaxAge:     lc.Log.RotationAge,
		RotationTime:       lc.Log.RotationTime,
		RotationSize:       lc.Log.RotationSize,
		ShowLine:           lc.Log.ShowLine,
		LogInConsole:       lc.Log.Console,
	}, nil
}

// Options builds the classifier options of this configuration.
func (lc *LocalConfig) Options(sessionID string) ml.Options {
	return ml.Options{
		Source:       lc.Source.Path,
		Epochs:       lc.Train.Epochs,
		LearningRate: lc.Train.LearningRate,
		Squashing:    lc.Train.Squashing,
		Inference:    lc.Train.Inference,
		SessionID:    sessionID,
	}
}

func moduleName(key string) string {
	for _, m := range []string{
		common.MODULE_PERCEPTRON,
		common.MODULE_LOADER,
		common.MODULE_EVAL,
		common.MODULE_SESSION,
		common.MODULE_CLI,
	} {
		if strings.EqualFold(strings.Trim(m, "[]"), strings.Trim(key, "[]")) {
			return m
		}
	}
	return key
}
