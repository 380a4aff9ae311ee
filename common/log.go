package common

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 日志级别，int类型，内部接口使用常量
type LOG_LEVEL int

const (
	LEVEL_DEBUG LOG_LEVEL = iota
	LEVEL_INFO
	LEVEL_WARN
	LEVEL_ERROR
)

var (
	LOG_LEVEL_Name = map[LOG_LEVEL]string{
		LEVEL_DEBUG: "DEBUG",
		LEVEL_INFO:  "INFO",
		LEVEL_WARN:  "WARN",
		LEVEL_ERROR: "ERROR",
	}
	LOG_LEVEL_Value = map[string]LOG_LEVEL{
		"DEBUG": LEVEL_DEBUG,
		"INFO":  LEVEL_INFO,
		"WARN":  LEVEL_WARN,
		"ERROR": LEVEL_ERROR,
	}
)

// ParseLogLevel maps a level name (any case) to LOG_LEVEL, INFO when unknown.
func ParseLogLevel(name string) LOG_LEVEL {
	if lvl, ok := LOG_LEVEL_Value[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return lvl
	}
	return LEVEL_INFO
}

const (
	LOG_MODE_DEV  = "DEV"
	LOG_MODE_PROD = "PROD"
)

type LogConfig struct {
	BriefMode          string
	ModuleSpecialLevel map[string]LOG_LEVEL // 模块特别指定的日志级别

	LogPath        string // 为空时不写文件
	LogLevel       LOG_LEVEL
	RotationMaxAge int // 日志的保存期限，天
	RotationTime   int // 日志rotation的间隔，小时
	RotationSize   int // 日志rotation的大小，MB
	ShowLine       bool
	LogInConsole   bool
}

// 若未设置配置，则按照DEV模式设置
func DefaultLogConfig(isDEV bool) *LogConfig {
	if isDEV {
		return defaultBriefLogConfigForDEV()
	}

	return defaultBriefLogConfigForPROD()
}

// DEV only logs to the console so tests and one-off runs leave no files behind.
func defaultBriefLogConfigForDEV() *LogConfig {
	return &LogConfig{
		LogLevel:       LEVEL_DEBUG,
		RotationMaxAge: 1,
		RotationTime:   1,
		RotationSize:   10,
		ShowLine:       true,
		LogInConsole:   true,
	}
}

func defaultBriefLogConfigForPROD() *LogConfig {
	return &LogConfig{
		LogPath:        "./lpc.prod.log",
		LogLevel:       LEVEL_INFO,
		RotationMaxAge: 7,
		RotationTime:   24,
		RotationSize:   30,
		ShowLine:       false,
		LogInConsole:   false,
	}
}

func adjustLogConfig(name string, lc *LogConfig) *LogConfig {
	if lc.BriefMode != "" {
		return DefaultLogConfig(strings.ToUpper(lc.BriefMode) != LOG_MODE_PROD)
	}

	newC := *lc
	if lvl, ok := lc.ModuleSpecialLevel[name]; ok {
		newC.LogLevel = lvl
	}
	newC.ModuleSpecialLevel = nil
	return &newC
}

func zapLevelOf(level LOG_LEVEL) zapcore.Level {
	switch level {
	case LEVEL_DEBUG:
		return zap.DebugLevel
	case LEVEL_INFO:
		return zap.InfoLevel
	case LEVEL_WARN:
		return zap.WarnLevel
	case LEVEL_ERROR:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func newRotationWriter(lcc *LogConfig) zapcore.WriteSyncer {
	fileName := lcc.LogPath + ".%Y%m%d%H"
	rotationWriter, err := rotatelogs.New(
		fileName,
		rotatelogs.WithRotationTime(time.Duration(lcc.RotationTime)*time.Hour),
		rotatelogs.WithRotationSize(int64(lcc.RotationSize*1024*1024)),
		rotatelogs.WithMaxAge(time.Hour*24*time.Duration(lcc.RotationMaxAge)),
	)
	if err != nil {
		log.Fatalf("new rotation log failed, %s", err)
	}
	return zapcore.AddSync(rotationWriter)
}

func NewSugaredLogger(name string, lc *LogConfig) *zap.SugaredLogger {
	lcc := adjustLogConfig(name, lc)
	//1.创建level
	zapLevel := zapLevelOf(lcc.LogLevel)
	priorityLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapLevel
	})

	//2.创建syncer，控制台输出走stderr，stdout留给报告
	var syncers []zapcore.WriteSyncer
	if lcc.LogInConsole {
		syncers = append(syncers, zapcore.AddSync(os.Stderr))
	}
	if lcc.LogPath != "" {
		syncers = append(syncers, newRotationWriter(lcc))
	}
	if len(syncers) == 0 {
		return zap.NewNop().Sugar()
	}
	syncer := zapcore.NewMultiWriteSyncer(syncers...)

	//3.创建encoder
	customLevelEncoder := func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + level.CapitalString() + "]")
	}
	customTimeEncoder := func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
	}
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "line",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	encoder := zapcore.NewConsoleEncoder(encoderConfig)
	//4.根据1-3，创建core
	core := zapcore.NewCore(encoder, syncer, priorityLevel)
	//5.创建SugaredLogger
	var opts []zap.Option
	if lcc.ShowLine {
		opts = append(opts, zap.AddCaller())
	}
	//logger最终是装载到LPCLogger中使用的，因此这里跳过1层调用
	opts = append(opts, zap.AddCallerSkip(1))
	logger := zap.New(core, opts...).Named(name)

	return logger.Sugar()
}

const (
	MODULE_PERCEPTRON = "[Perceptron]"
	MODULE_LOADER     = "[Loader]"
	MODULE_EVAL       = "[Eval]"
	MODULE_SESSION    = "[Session]"
	MODULE_CLI        = "[CLI]"
)

type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

// LPCLogger wraps a zap logger so SetLogConfig can swap it underneath callers.
type LPCLogger struct {
	zlog  *zap.SugaredLogger
	name  string
	mutex sync.RWMutex
}

func (l *LPCLogger) Logger() *zap.SugaredLogger {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.zlog
}

func (l *LPCLogger) Debug(args ...interface{}) {
	l.Logger().Debug(args...)
}

func (l *LPCLogger) Debugf(format string, args ...interface{}) {
	l.Logger().Debugf(format, args...)
}

func (l *LPCLogger) Info(args ...interface{}) {
	l.Logger().Info(args...)
}

func (l *LPCLogger) Infof(format string, args ...interface{}) {
	l.Logger().Infof(format, args...)
}

func (l *LPCLogger) Warn(args ...interface{}) {
	l.Logger().Warn(args...)
}

func (l *LPCLogger) Warnf(format string, args ...interface{}) {
	l.Logger().Warnf(format, args...)
}

func (l *LPCLogger) Error(args ...interface{}) {
	l.Logger().Error(args...)
}

func (l *LPCLogger) Errorf(format string, args ...interface{}) {
	l.Logger().Errorf(format, args...)
}

func (l *LPCLogger) Sync() error {
	return l.Logger().Sync()
}

func (l *LPCLogger) SetLogger(logger *zap.SugaredLogger) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.zlog = logger
}

var (
	lpcLoggersMap = make(map[string]*LPCLogger)
	loggerMutex   sync.Mutex
	lpcLogConfig  *LogConfig
)

func GetLogger(name string) *LPCLogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if logger, ok := lpcLoggersMap[name]; ok {
		return logger
	}

	if lpcLogConfig == nil {
		lpcLogConfig = DefaultLogConfig(true)
	}

	logger := &LPCLogger{
		name: name,
		zlog: NewSugaredLogger(name, lpcLogConfig),
	}
	lpcLoggersMap[name] = logger

	return logger
}

// 在获取日志对象之前进行配置设置，已创建的日志对象会按新配置重建
func SetLogConfig(config *LogConfig) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	lpcLogConfig = config
	for _, logger := range lpcLoggersMap {
		logger.SetLogger(NewSugaredLogger(logger.name, lpcLogConfig))
	}
}

// SyncLoggers flushes every registered logger, ignoring errors from
// unsyncable console handles.
func SyncLoggers() {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	for _, logger := range lpcLoggersMap {
		_ = logger.Sync()
	}
}
