package util

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults for the agent log file
const (
	defaultLogMaxSizeMB  = 10
	defaultLogMaxBackups = 5
)

// formatEntry renders an entry as a single line in the requested format
func formatEntry(entry LogEntry, format LogFormat) (string, error) {
	if format == FormatJSON {
		data, err := sonic.Marshal(entry)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	timestamp := entry.Timestamp.Format("2006/01/02 15:04:05")
	output := fmt.Sprintf("%s [%s] %s", timestamp, entry.Level, entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fieldStrs := make([]string, 0, len(keys))
		for _, k := range keys {
			fieldStrs = append(fieldStrs, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
		}
		output += " " + strings.Join(fieldStrs, " ")
	}
	return output, nil
}

// ConsoleOutput writes logs to a terminal stream
type ConsoleOutput struct {
	writer io.Writer
	format LogFormat
	mu     sync.Mutex
}

// NewConsoleOutput creates a new console output
func NewConsoleOutput(writer io.Writer, format LogFormat) Output {
	return &ConsoleOutput{
		writer: writer,
		format: format,
	}
}

// Write writes a log entry to the console
func (c *ConsoleOutput) Write(entry LogEntry) error {
	line, err := formatEntry(entry, c.format)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = fmt.Fprintln(c.writer, line)
	return err
}

// Close is a no-op for console output
func (c *ConsoleOutput) Close() error {
	return nil
}

// FileOutput writes logs to a size-rotated file
type FileOutput struct {
	file   *lumberjack.Logger
	format LogFormat
	mu     sync.Mutex
}

// NewFileOutput creates a rotating file output; zero limits use the defaults
func NewFileOutput(path string, format LogFormat, maxSizeMB, maxBackups int) (Output, error) {
	if path == "" {
		return nil, fmt.Errorf("empty log file path")
	}
	if maxSizeMB <= 0 {
		maxSizeMB = defaultLogMaxSizeMB
	}
	if maxBackups <= 0 {
		maxBackups = defaultLogMaxBackups
	}

	return &FileOutput{
		file: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
		},
		format: format,
	}, nil
}

// Write appends a log entry to the file
func (f *FileOutput) Write(entry LogEntry) error {
	line, err := formatEntry(entry, f.format)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	_, err = fmt.Fprintln(f.file, line)
	return err
}

// Close closes the underlying file
func (f *FileOutput) Close() error {
	return f.file.Close()
}
