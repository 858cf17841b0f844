package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// RotatingFile is a zapcore.WriteSyncer that rotates by size into numbered
// backups: log.txt -> log.txt.1 -> log.txt.2 ... up to Backups.
type RotatingFile struct {
	mu      sync.Mutex
	path    string
	maxSize int64
	backups int

	f    *os.File
	size int64
}

func OpenRotatingFile(path string, maxSize int64, backups int) (*RotatingFile, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "mkdir %s", dir)
		}
	}
	r := &RotatingFile{path: path, maxSize: maxSize, backups: backups}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RotatingFile) open() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open %s", r.path)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "stat %s", r.path)
	}
	r.f = f
	r.size = st.Size()
	return nil
}

func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.f == nil {
		return 0, errors.New("log file closed")
	}
	if r.maxSize > 0 && r.size >= r.maxSize {
		if err := r.rotate(); err != nil {
			// строку не теряем: rotate уже переоткрыл активный файл
			fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}
	if r.f == nil {
		return 0, errors.New("log file unavailable after rotation")
	}
	n, err := r.f.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *RotatingFile) backupName(i int) string {
	return fmt.Sprintf("%s.%d", r.path, i)
}

// rotate всегда заново открывает r.path: если сдвиг бэкапов не удался,
// пишем дальше в текущий файл, следующая запись попробует ротацию снова.
func (r *RotatingFile) rotate() error {
	closeErr := r.f.Close()
	r.f = nil

	shiftErr := r.shift()
	if err := r.open(); err != nil {
		return err
	}
	if closeErr != nil {
		return errors.Wrap(closeErr, "close active log")
	}
	return shiftErr
}

func (r *RotatingFile) shift() error {
	if r.backups <= 0 {
		if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "remove active log")
		}
		return nil
	}

	for i := r.backups - 1; i >= 1; i-- {
		src := r.backupName(i)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := os.Rename(src, r.backupName(i+1)); err != nil {
			return errors.Wrapf(err, "shift %s", src)
		}
	}
	if err := os.Rename(r.path, r.backupName(1)); err != nil {
		return errors.Wrap(err, "rename active log")
	}
	return nil
}

func (r *RotatingFile) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	return r.f.Sync()
}

func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}
