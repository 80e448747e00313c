package config

// NewLogger builds a Logger with explicit settings, bypassing flag parsing
func NewLogger(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}
