package worker

import (
	"fmt"

	"github.com/licence-store/internal/logger"
)

// asynqLogger 将 asynq 内部日志接入 zap
type asynqLogger struct{}

func newAsynqLogger() asynqLogger { return asynqLogger{} }

func (asynqLogger) Debug(args ...interface{}) {
	logger.Debugw("asynq", "message", fmt.Sprint(args...))
}

func (asynqLogger) Info(args ...interface{}) {
	logger.Infow("asynq", "message", fmt.Sprint(args...))
}

func (asynqLogger) Warn(args ...interface{}) {
	logger.Warnw("asynq", "message", fmt.Sprint(args...))
}

func (asynqLogger) Error(args ...interface{}) {
	logger.Errorw("asynq", "message", fmt.Sprint(args...))
}

func (asynqLogger) Fatal(args ...interface{}) {
	logger.S().Fatalw("asynq", "message", fmt.Sprint(args...))
}
