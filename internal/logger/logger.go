package logger

import "go.uber.org/zap"

// NewLogger создает production-логгер zap.
func NewLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l
}
