package http

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const createMode = 0o666

// FileStore resolves request targets against a document root and opens
// them with the status rules of GET and PUT.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	if root == "" {
		root = "."
	}
	return &FileStore{root: root}
}

func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) path(target string) string {
	return filepath.Join(s.root, target)
}

func statFailure(err error) Status {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		return StatusForbidden
	}
	return StatusInternalServerError
}

// OpenForRead opens target for a GET. The file and its size are only
// returned with StatusOK.
func (s *FileStore) OpenForRead(target string) (*os.File, int64, Status) {
	p := s.path(target)

	info, err := os.Stat(p)
	if err != nil {
		return nil, 0, statFailure(err)
	}
	if info.IsDir() {
		return nil, 0, StatusForbidden
	}
	if err := unix.Access(p, unix.R_OK); err != nil {
		return nil, 0, StatusForbidden
	}

	f, err := os.Open(p)
	if err != nil {
		slog.Error("Failed to open file for reading", "path", p, "error", err)
		return nil, 0, StatusInternalServerError
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		slog.Error("Failed to stat opened file", "path", p, "error", err)
		return nil, 0, StatusInternalServerError
	}
	return f, st.Size(), StatusOK
}

// OpenForWrite opens target for a PUT: an existing file is truncated
// (StatusOK), a missing one is created (StatusCreated).
func (s *FileStore) OpenForWrite(target string) (*os.File, Status) {
	p := s.path(target)

	info, err := os.Stat(p)
	switch {
	case err == nil:
		if info.IsDir() {
			return nil, StatusForbidden
		}
		if err := unix.Access(p, unix.W_OK); err != nil {
			return nil, StatusForbidden
		}
		f, err := os.OpenFile(p, os.O_RDWR|os.O_TRUNC, 0)
		if err != nil {
			slog.Error("Failed to open file for writing", "path", p, "error", err)
			return nil, StatusInternalServerError
		}
		return f, StatusOK

	case errors.Is(err, fs.ErrNotExist):
		f, err := os.OpenFile(p, os.O_RDWR|os.O_CREATE, createMode)
		if err != nil {
			slog.Error("Failed to create file", "path", p, "error", err)
			return nil, StatusInternalServerError
		}
		return f, StatusCreated
	}

	return nil, statFailure(err)
}
