package world

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/zond/etlua"
	"github.com/zond/etlua/host"
)

var (
	ErrOutsideBase = errors.New("path escapes the game directory")
	ErrBadHandle   = errors.New("unknown file handle")
	ErrBadMode     = errors.New("unknown file mode")
)

type openFile struct {
	file *os.File
	mode int
}

func (w *World) resolve(name string) (string, error) {
	if w.opts.BaseDir == "" {
		return "", errors.Wrapf(ErrOutsideBase, "no game directory for %q", name)
	}
	cleaned := filepath.Clean("/" + filepath.FromSlash(name))
	full := filepath.Join(w.opts.BaseDir, cleaned)
	rel, err := filepath.Rel(w.opts.BaseDir, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", errors.Wrapf(ErrOutsideBase, "%q", name)
	}
	return full, nil
}

func (w *World) Open(name string, mode int) (int, int, error) {
	path, err := w.resolve(name)
	if err != nil {
		return 0, 0, err
	}
	var f *os.File
	length := 0
	switch mode {
	case host.FSRead:
		if f, err = os.Open(path); err != nil {
			return 0, 0, etlua.WithStack(err)
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return 0, 0, etlua.WithStack(err)
		}
		if info.IsDir() {
			f.Close()
			return 0, 0, errors.Errorf("%q is a directory", name)
		}
		length = int(info.Size())
	case host.FSWrite, host.FSAppend, host.FSAppendSync:
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return 0, 0, etlua.WithStack(err)
		}
		flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if mode != host.FSWrite {
			flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		}
		if mode == host.FSAppendSync {
			flags |= os.O_SYNC
		}
		if f, err = os.OpenFile(path, flags, 0600); err != nil {
			return 0, 0, etlua.WithStack(err)
		}
	default:
		return 0, 0, errors.Wrapf(ErrBadMode, "%d", mode)
	}
	fd := w.nextFD
	w.nextFD++
	w.files[fd] = &openFile{file: f, mode: mode}
	return fd, length, nil
}

func (w *World) Read(fd int, n int) ([]byte, error) {
	of, found := w.files[fd]
	if !found || of.mode != host.FSRead {
		return nil, errors.Wrapf(ErrBadHandle, "%d", fd)
	}
	if n <= 0 {
		return nil, nil
	}
	info, err := of.file.Stat()
	if err != nil {
		return nil, etlua.WithStack(err)
	}
	offset, err := of.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, etlua.WithStack(err)
	}
	// Never allocate past the end of the file.
	if left := info.Size() - offset; int64(n) > left {
		n = int(max(left, 0))
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(of.file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, etlua.WithStack(err)
	}
	return buf[:read], nil
}

func (w *World) Write(fd int, data []byte) (int, error) {
	of, found := w.files[fd]
	if !found || of.mode == host.FSRead {
		return 0, errors.Wrapf(ErrBadHandle, "%d", fd)
	}
	n, err := of.file.Write(data)
	return n, etlua.WithStack(err)
}

func (w *World) Close(fd int) error {
	of, found := w.files[fd]
	if !found {
		return errors.Wrapf(ErrBadHandle, "%d", fd)
	}
	delete(w.files, fd)
	return etlua.WithStack(of.file.Close())
}

func (w *World) Rename(from, to string) error {
	fromPath, err := w.resolve(from)
	if err != nil {
		return err
	}
	toPath, err := w.resolve(to)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(toPath), 0700); err != nil {
		return etlua.WithStack(err)
	}
	return etlua.WithStack(os.Rename(fromPath, toPath))
}

// List returns the sorted names of regular files in dir ending in ext.
// An ext of "/" lists subdirectories instead.
func (w *World) List(dir, ext string) ([]string, error) {
	path := w.opts.BaseDir
	if strings.Trim(dir, "/.") != "" {
		var err error
		if path, err = w.resolve(dir); err != nil {
			return nil, err
		}
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, etlua.WithStack(err)
	}
	if ext != "" && ext != "/" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	result := []string{}
	for _, entry := range entries {
		if ext == "/" {
			if entry.IsDir() {
				result = append(result, entry.Name())
			}
			continue
		}
		if entry.IsDir() {
			continue
		}
		if ext == "" || strings.HasSuffix(strings.ToLower(entry.Name()), strings.ToLower(ext)) {
			result = append(result, entry.Name())
		}
	}
	sort.Strings(result)
	return result, nil
}
