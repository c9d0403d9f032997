package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Mask replaces redacted secrets in log entries.
const Mask = "******"

type Logger interface {
	Info(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	With(args ...interface{}) Logger
}

type LogrusLogger struct {
	entry *logrus.Entry
}

// New returns a Logger backed by the logrus standard logger.
func New() Logger {
	return FromLogrus(logrus.StandardLogger())
}

// FromLogrus wraps an existing logrus logger.
func FromLogrus(l *logrus.Logger) Logger {
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

// Options configures a logrus logger built by Configure.
type Options struct {
	Output io.Writer
	Debug  bool
	// Secrets are evaluated every time an entry is written.
	Secrets []func() string
}

// Configure builds a logrus logger writing text entries to opts.Output
// (stderr when nil) with redaction hooks for every secret producer.
func Configure(opts Options) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if opts.Output != nil {
		l.SetOutput(opts.Output)
	} else {
		l.SetOutput(os.Stderr)
	}
	if opts.Debug {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	for _, secret := range opts.Secrets {
		l.AddHook(&RedactHook{Secret: secret})
	}
	return l
}

func (l *LogrusLogger) Info(msg string, args ...interface{}) {
	l.entry.WithFields(fields(args)).Info(msg)
}

func (l *LogrusLogger) Debug(msg string, args ...interface{}) {
	l.entry.WithFields(fields(args)).Debug(msg)
}

func (l *LogrusLogger) Warn(msg string, args ...interface{}) {
	l.entry.WithFields(fields(args)).Warn(msg)
}

func (l *LogrusLogger) Error(msg string, args ...interface{}) {
	l.entry.WithFields(fields(args)).Error(msg)
}

func (l *LogrusLogger) With(args ...interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(fields(args))}
}

// fields turns slog style key/value pairs into logrus fields. A trailing key
// without a value is kept under "!BADKEY", the way slog reports it.
func fields(args []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 >= len(args) {
			f["!BADKEY"] = key
			break
		}
		f[key] = args[i+1]
	}
	return f
}

// RedactHook masks a secret in the message and fields of every entry before
// it is formatted. Fields that are not strings, errors or Stringers are
// replaced by their masked fmt.Sprint form when they contain the secret.
type RedactHook struct {
	Secret func() string
}

func (h *RedactHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *RedactHook) Fire(e *logrus.Entry) error {
	if h.Secret == nil {
		return nil
	}
	secret := h.Secret()
	if secret == "" {
		return nil
	}

	e.Message = strings.ReplaceAll(e.Message, secret, Mask)
	for k, v := range e.Data {
		switch val := v.(type) {
		case string:
			e.Data[k] = strings.ReplaceAll(val, secret, Mask)
		case error:
			e.Data[k] = strings.ReplaceAll(val.Error(), secret, Mask)
		case fmt.Stringer:
			e.Data[k] = strings.ReplaceAll(val.String(), secret, Mask)
		default:
			if text := fmt.Sprint(val); strings.Contains(text, secret) {
				e.Data[k] = strings.ReplaceAll(text, secret, Mask)
			}
		}
	}
	return nil
}
