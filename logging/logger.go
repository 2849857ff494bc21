package logging

import "go.uber.org/zap"

// New creates the zap logger the whole service logs through
func New() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	return logger.Sugar()
}
