package utils

import (
	"go.uber.org/zap"
)

// InitLogger builds the process-wide production logger.
func InitLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return l
}
