package logx

import "go.uber.org/zap"

// New returns a console logger for local/dev environments and a JSON
// production logger otherwise.
func New(env string) *zap.Logger {
	var cfg zap.Config
	switch env {
	case "", "local", "dev", "test":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l.With(zap.String("service", "blog-service"))
}
