package logger

import (
	"go.uber.org/zap"
)

// New creates the preconfigured production logger used across the service.
func New() (*zap.Logger, error) {
	return zap.NewProduction()
}
