package logging

// nopLogger discards everything. Used where a Logger is required but
// output is unwanted, mostly in tests.
type nopLogger struct{}

// NewNopLogger returns a logger that drops all messages
func NewNopLogger() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(string, ...Field)        {}
func (nopLogger) Info(string, ...Field)         {}
func (nopLogger) Warn(string, ...Field)         {}
func (nopLogger) Error(string, error, ...Field) {}

func (n nopLogger) WithFields(...Field) Logger { return n }
