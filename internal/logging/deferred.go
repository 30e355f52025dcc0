package logging

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DeferredFile is a zapcore.WriteSyncer for a log file that is created only
// when Open is called. Lines written before then are held in memory and
// flushed to the file on Open, so a run that stops early leaves no file.
type DeferredFile struct {
	mu   sync.Mutex
	path string
	buf  bytes.Buffer
	f    *os.File
}

// NewDeferredFile returns a sink for path. Nothing touches the disk yet.
func NewDeferredFile(path string) *DeferredFile {
	return &DeferredFile{path: path}
}

// Path returns the file location.
func (d *DeferredFile) Path() string { return d.path }

// Open creates the parent directory and the file, then writes the held
// lines. Calling it again is a no-op.
func (d *DeferredFile) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(d.path), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(d.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if _, err := d.buf.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write log file: %w", err)
	}
	d.f = f
	return nil
}

func (d *DeferredFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f == nil {
		return d.buf.Write(p)
	}
	return d.f.Write(p)
}

func (d *DeferredFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f == nil {
		return nil
	}
	return d.f.Sync()
}

// Close closes the file if it was opened and drops any held lines.
func (d *DeferredFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf.Reset()
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}
