package network

type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}

func (noopLogger) Infof(format string, args ...interface{}) {}

func (noopLogger) Warnf(format string, args ...interface{}) {}

func (noopLogger) Errorf(format string, args ...interface{}) {}
