package unpacker

type Logger interface {
	Info(message string, module string)
	Error(string)
}

type discardLogger struct{}

func (discardLogger) Info(message string, module string) {}
func (discardLogger) Error(string)                       {}

var logger Logger = discardLogger{}

// SetLogger replaces the package logger. A nil logger silences the package.
func SetLogger(l Logger) {
	if l == nil {
		l = discardLogger{}
	}
	logger = l
}

var verbosity int

func SetVerbosity(level int) {
	verbosity = level
}
