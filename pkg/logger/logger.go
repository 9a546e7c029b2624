// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Config 日志配置
type Config struct {
	Level      string `json:"level"`
	Format     string `json:"format"` // json/console
	Output     string `json:"output"` // stdout/stderr/file
	FilePath   string `json:"file_path,omitempty"`
	TimeFormat string `json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		zerolog.SetGlobalLevel(parseLevel(cfg.Level))

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

// WithContext 从上下文创建日志器
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	if reqID, ok := ctx.Value("request_id").(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}

	return &l
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError 添加错误信息
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// SolverLogger 补位求解器专用日志器
type SolverLogger struct {
	base *zerolog.Logger
}

// NewSolverLogger 创建求解器日志器
func NewSolverLogger() *SolverLogger {
	l := Get().With().Str("component", "solver").Logger()
	return &SolverLogger{base: &l}
}

// StartSolve 记录求解开始
func (l *SolverLogger) StartSolve(unfilled, candidates int) {
	l.base.Info().
		Int("unfilled_shifts", unfilled).
		Int("candidates", candidates).
		Msg("开始补位求解")
}

// Excluded 记录预排除的员工数（按原因分类）
func (l *SolverLogger) Excluded(hours, days, daily int) {
	total := hours + days + daily
	if total == 0 {
		return
	}
	l.base.Info().
		Int("total", total).
		Int("hours_at_limit", hours).
		Int("days_at_limit", days).
		Int("daily_over_limit", daily).
		Msg("预排除已达约束上限的员工")
}

// NonOptimal 记录非最优的求解器终止状态
func (l *SolverLogger) NonOptimal(status string, err error) {
	ev := l.base.Warn().Str("status", status)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("求解器未达到最优状态，按空结果处理")
}

// DuplicateClaim 记录同一班次被多个变量声明的异常情况
func (l *SolverLogger) DuplicateClaim(key string, kept, discarded int64) {
	l.base.Warn().
		Str("shift", key).
		Int64("kept_employee", kept).
		Int64("discarded_employee", discarded).
		Msg("班次已有分配，丢弃重复声明")
}

// SolveComplete 记录求解完成
func (l *SolverLogger) SolveComplete(status string, assigned int, objective float64, duration time.Duration) {
	l.base.Info().
		Str("status", status).
		Int("assigned", assigned).
		Float64("objective", objective).
		Dur("duration", duration).
		Msg("补位求解完成")
}
