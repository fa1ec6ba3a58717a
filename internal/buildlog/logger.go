package buildlog

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/models"
	"github.com/jakoblorz/go-freeze/internal/tui"
	"github.com/sirupsen/logrus"
)

// Logger mirrors every status line to the console and to the run's log file.
//
// The console gets short, styled lines; the file gets the same text as
// logrus records stamped with run_id and stage. Child process output is
// appended to the file unformatted through Output.
type Logger struct {
	console io.Writer
	file    io.WriteCloser
	log     *logrus.Logger
	path    string
	runID   string
	stage   models.Stage
}

// Options configures a Logger.
type Options struct {
	Root         string
	NameTemplate string
	Now          time.Time
	RunID        string
	Console      io.Writer
}

// New creates <root>/build_logs and opens the run's log file in append mode.
func New(fs filesystem.FileSystem, opts Options) (*Logger, error) {
	dir := filepath.Join(opts.Root, DirName)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", DirName, err)
	}

	name, err := RenderName(opts.NameTemplate, opts.Now)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, name)
	file, err := fs.OpenAppend(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := logrus.New()
	l.SetOutput(file)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	console := opts.Console
	if console == nil {
		console = io.Discard
	}

	return &Logger{
		console: console,
		file:    file,
		log:     l,
		path:    path,
		runID:   opts.RunID,
		stage:   models.StageInit,
	}, nil
}

// Path returns the log file path
func (l *Logger) Path() string {
	return l.path
}

// SetStage tags subsequent records with stage.
func (l *Logger) SetStage(stage models.Stage) {
	l.stage = stage
	l.entry().Debug("entering stage")
}

func (l *Logger) entry() *logrus.Entry {
	return l.log.WithFields(logrus.Fields{
		"run_id": l.runID,
		"stage":  l.stage.String(),
	})
}

// Step reports the start of a unit of work.
func (l *Logger) Step(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.console, "%s %s\n", tui.SelectedStyle.Render("▶"), msg)
	l.entry().Info(msg)
}

// Info reports a plain status line.
func (l *Logger) Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.console, "  %s\n", msg)
	l.entry().Info(msg)
}

// Success reports a completed unit of work.
func (l *Logger) Success(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.console, "%s\n", tui.SuccessStyle.Render("✓ "+msg))
	l.entry().Info(msg)
}

// Warn reports a non-fatal problem.
func (l *Logger) Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.console, "%s\n", tui.WarnStyle.Render("⚠️  "+msg))
	l.entry().Warn(msg)
}

// Error reports a fatal problem.
func (l *Logger) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.console, "%s\n", tui.ErrorStyle.Render("❌ "+msg))
	l.entry().Error(msg)
}

// Output returns a writer that appends raw child process output to the log
// file, and to the console as well when echo is set.
func (l *Logger) Output(echo bool) io.Writer {
	if echo {
		return io.MultiWriter(l.file, l.console)
	}
	return l.file
}

// Close closes the log file
func (l *Logger) Close() error {
	return l.file.Close()
}
