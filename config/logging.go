package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gear6io/seaduck/pkg/errors"
	"github.com/rs/zerolog"
)

const backupTimeLayout = "2006-01-02-15-04-05"

// LogManager owns the log file and rotates it by size when opened.
type LogManager struct {
	config  LogConfig
	file    *os.File
	nowFunc func() time.Time
}

// NewLogManager creates a new log manager
func NewLogManager(cfg LogConfig) *LogManager {
	return &LogManager{config: cfg, nowFunc: time.Now}
}

// Open rotates the file if it has outgrown MaxSize and opens it for append.
func (lm *LogManager) Open() (io.Writer, error) {
	if lm.config.FilePath == "" {
		return nil, errors.New(ErrLogFilePathRequired, "no log file path specified", nil)
	}

	if err := os.MkdirAll(filepath.Dir(lm.config.FilePath), 0755); err != nil {
		return nil, errors.New(ErrLogDirectoryCreationFailed, "failed to create log directory", err)
	}

	if err := lm.rotateIfNeeded(); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(lm.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.New(ErrLogFileOpenFailed, "failed to open log file", err).AddContext("path", lm.config.FilePath)
	}

	lm.file = file
	return file, nil
}

func (lm *LogManager) rotateIfNeeded() error {
	if lm.config.MaxSize <= 0 {
		return nil
	}

	info, err := os.Stat(lm.config.FilePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.New(ErrLogFileStatFailed, "failed to stat log file", err)
	}

	if info.Size() < int64(lm.config.MaxSize)*1024*1024 {
		return nil
	}

	backup := fmt.Sprintf("%s.%s", lm.config.FilePath, lm.nowFunc().Format(backupTimeLayout))
	if err := os.Rename(lm.config.FilePath, backup); err != nil {
		return errors.New(ErrLogRotationFailed, "failed to rotate log file", err)
	}

	return lm.pruneBackups()
}

// pruneBackups removes rotated files beyond MaxBackups or older than MaxAge days.
func (lm *LogManager) pruneBackups() error {
	if lm.config.MaxBackups <= 0 && lm.config.MaxAge <= 0 {
		return nil
	}

	dir := filepath.Dir(lm.config.FilePath)
	base := filepath.Base(lm.config.FilePath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.New(ErrLogBackupReadFailed, "failed to read log directory", err)
	}

	type backup struct {
		path    string
		modTime time.Time
	}
	var backups []backup
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), base+".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{path: filepath.Join(dir, entry.Name()), modTime: info.ModTime()})
	}

	// newest first
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].modTime.After(backups[j].modTime)
	})

	cutoff := lm.nowFunc().AddDate(0, 0, -lm.config.MaxAge)
	for i, b := range backups {
		tooMany := lm.config.MaxBackups > 0 && i >= lm.config.MaxBackups
		tooOld := lm.config.MaxAge > 0 && b.modTime.Before(cutoff)
		if !tooMany && !tooOld {
			continue
		}
		if err := os.Remove(b.path); err != nil {
			return errors.New(ErrLogBackupRemoveFailed, "failed to remove old backup", err).AddContext("backup_path", b.path)
		}
	}

	return nil
}

// Close closes the log file if one is open.
func (lm *LogManager) Close() error {
	if lm.file == nil {
		return nil
	}
	err := lm.file.Close()
	lm.file = nil
	return err
}

// SetupLogger builds the CLI logger. The returned closer releases the log
// file and must be called on exit.
func SetupLogger(cfg LogConfig) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.WarnLevel
	}

	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	manager := NewLogManager(cfg)
	if cfg.FilePath != "" {
		fileWriter, err := manager.Open()
		if err != nil {
			return zerolog.Nop(), manager, errors.New(ErrLogFileWriterSetupFailed, "failed to setup file writer", err)
		}
		writers = append(writers, fileWriter)
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		return zerolog.Nop(), manager, nil
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("component", "seaduck").
		Logger()

	return logger, manager, nil
}
