// Package logger wires the standard logger to stdout plus a
// size-rotated file under the configured log directory.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	maxFileSize = 10 * 1024 * 1024
	maxBackups  = 3
)

var debugEnabled bool

// Setup points the standard logger at stdout and logs/fundpal.log,
// rotating the file when it crosses maxFileSize.
func Setup(dir, level string) {
	debugEnabled = strings.EqualFold(level, "DEBUG")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("Failed to create log dir, using stdout only: %v", err)
		return
	}

	w := &rotatingFile{path: filepath.Join(dir, "fundpal.log")}
	if err := w.open(); err != nil {
		log.Printf("Failed to open log file, using stdout only: %v", err)
		return
	}

	log.SetOutput(io.MultiWriter(os.Stdout, w))
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// Debugf logs only when the configured level is DEBUG.
func Debugf(format string, args ...any) {
	if debugEnabled {
		log.Output(2, fmt.Sprintf("[DEBUG] "+format, args...))
	}
}

// rotatingFile is an io.Writer that rotates its file by size, keeping
// numbered backups (fundpal.log.1 is the newest backup).
type rotatingFile struct {
	path string
	file *os.File
	size int64
	mu   sync.Mutex
}

func (r *rotatingFile) open() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	r.file = f
	r.size = info.Size()
	return nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size+int64(len(p)) > maxFileSize {
		if err := r.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "Log rotation failed: %v\n", err)
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *rotatingFile) rotate() error {
	r.file.Close()

	for i := maxBackups - 1; i >= 1; i-- {
		old := fmt.Sprintf("%s.%d", r.path, i)
		if _, err := os.Stat(old); os.IsNotExist(err) {
			continue
		}
		os.Rename(old, fmt.Sprintf("%s.%d", r.path, i+1))
	}
	if _, err := os.Stat(r.path); err == nil {
		os.Rename(r.path, r.path+".1")
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	r.file = f
	r.size = 0
	return nil
}
