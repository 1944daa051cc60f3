package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cartops/proctools/errors"
)

// MemberLog is a scoped logger for one pipeline member execution.
//
// It writes DEBUG and above to a per-member logfile (truncated on open, so
// each run starts a fresh file) and INFO and above to the console. Handlers
// live on this object rather than on any global logger; Close releases the
// file and the object must not be used afterward.
type MemberLog struct {
	*zap.SugaredLogger

	path string
	file *os.File
}

// NewMemberLog opens a fresh logfile for the named member under logsDir,
// creating the directory if needed.
func NewMemberLog(logsDir, memberName string) (*MemberLog, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create logs dir %s", logsDir)
	}
	path := filepath.Join(logsDir, memberName+".log")
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open member logfile %s", path)
	}

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder(), zapcore.AddSync(os.Stdout), zap.InfoLevel),
		zapcore.NewCore(consoleEncoder(), zapcore.AddSync(file), zap.DebugLevel),
	)
	return &MemberLog{
		SugaredLogger: zap.New(core).Sugar().Named(memberName),
		path:          path,
		file:          file,
	}, nil
}

// Path returns the member logfile path.
func (l *MemberLog) Path() string {
	return l.path
}

// Close flushes and releases the member logfile.
func (l *MemberLog) Close() error {
	// Sync errors on stdout are expected on some platforms; the file close
	// result is what matters.
	_ = l.SugaredLogger.Sync()
	return l.file.Close()
}
