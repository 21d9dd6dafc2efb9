package nativelog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvLogDir          = "STUDYAID_LOG_DIR"
	defaultLogFilePerm = 0o644
	defaultLogDirPerm  = 0o755
)

// ResolveDir picks the log directory: explicit dir, then $STUDYAID_LOG_DIR, then ./logs.
func ResolveDir(dir string) string {
	if d := strings.TrimSpace(dir); d != "" {
		return d
	}
	if d := strings.TrimSpace(os.Getenv(EnvLogDir)); d != "" {
		return d
	}
	return filepath.Join(".", "logs")
}

// TodayFilename returns daily native log filename.
func TodayFilename(now time.Time) string {
	return "stdout_" + now.Format("1-2-06") + ".log"
}

// Writer appends log lines to a file that rotates daily by name.
type Writer struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// NewWriter creates the log directory and returns a writer for it.
func NewWriter(dir string) (*Writer, error) {
	dir = ResolveDir(dir)
	if err := os.MkdirAll(dir, defaultLogDirPerm); err != nil {
		return nil, err
	}
	return &Writer{dir: dir, now: time.Now}, nil
}

// Dir returns the directory the writer appends to.
func (w *Writer) Dir() string { return w.dir }

func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	path := filepath.Join(w.dir, TodayFilename(w.now()))
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, defaultLogFilePerm)
	if err != nil {
		return 0, err
	}

	n, writeErr := file.Write(p)
	closeErr := file.Close()
	if writeErr != nil {
		return n, writeErr
	}
	return n, closeErr
}

func (w *Writer) Sync() error {
	return nil
}

// NewZapLogger creates a zap logger writing to stdout and to the daily log file.
func NewZapLogger(dir string, debug bool) (*zap.Logger, error) {
	writer, err := NewWriter(dir)
	if err != nil {
		return nil, err
	}

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		level.SetLevel(zap.DebugLevel)
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")

	fileEncoder := zapcore.NewConsoleEncoder(encoderConfig)
	stdoutConfig := encoderConfig
	if debug {
		stdoutConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(stdoutConfig), zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(fileEncoder, zapcore.AddSync(writer), level),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	_ = zap.RedirectStdLog(logger)
	return logger, nil
}
