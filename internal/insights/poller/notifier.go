package poller

import "go.uber.org/zap"

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier recebe os avisos que a página mostraria como toast.
// Warning = não bloqueante (fallback); Error = bloqueante (dados antigos mantidos).
type Notifier interface {
	Notify(page string, level Level, msg string)
}

// LogNotifier grava os avisos no log
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Notify(page string, level Level, msg string) {
	fields := []zap.Field{zap.String("page", page), zap.String("level", string(level))}
	switch level {
	case LevelError:
		n.Log.Error(msg, fields...)
	case LevelWarning:
		n.Log.Warn(msg, fields...)
	default:
		n.Log.Info(msg, fields...)
	}
}

// NotifierFunc adapta uma função
type NotifierFunc func(page string, level Level, msg string)

func (f NotifierFunc) Notify(page string, level Level, msg string) { f(page, level, msg) }

type nopNotifier struct{}

func (nopNotifier) Notify(string, Level, string) {}
