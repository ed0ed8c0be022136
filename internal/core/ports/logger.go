package ports

// Logger defines the interface for logging.
//
//go:generate go run go.uber.org/mock/mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	// Debug records diagnostic detail. It only reaches the debug log.
	Debug(msg string, keyvals ...any)
	Info(msg string)
	Warn(msg string)
	Error(err error)
}
