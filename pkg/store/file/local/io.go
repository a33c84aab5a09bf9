package local

import (
	"context"
	"os"

	"github.com/marmos91/brokerd/pkg/broker/command"
	"github.com/marmos91/brokerd/pkg/store/file"
)

// ReadText returns the file's content as a string.
func (s *LocalStore) ReadText(ctx context.Context, tenantID, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.resolve(tenantID, name)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &file.StoreError{Code: file.ErrNotFound, Message: "file not found", Path: path}
		}
		return "", &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: path}
	}
	return string(data), nil
}

// WriteText writes data according to mode and returns the number of bytes
// written.
//
// The mode's existence precondition is enforced through the open flags, so
// the check and the write are a single syscall rather than a stat-then-open
// pair:
//   - create: O_EXCL fails if the file exists (ErrExists)
//   - append: open without O_CREATE fails if the file is absent
//     (ErrPrecondition)
//   - appendOrCreate, overwrite: no precondition
//
// The tenant directory is created on demand for modes that may create the
// file.
func (s *LocalStore) WriteText(ctx context.Context, tenantID, name, data string, mode command.WriteMode) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	path, err := s.resolve(tenantID, name)
	if err != nil {
		return 0, err
	}

	var flags int
	switch mode {
	case command.WriteModeCreate:
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	case command.WriteModeAppend:
		flags = os.O_WRONLY | os.O_APPEND
	case command.WriteModeAppendOrCreate:
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case command.WriteModeOverwrite:
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	default:
		return 0, &file.StoreError{Code: file.ErrIO, Message: "unknown write mode " + string(mode), Path: path}
	}

	if mode != command.WriteModeAppend {
		dir, dirErr := s.resolve(tenantID, "")
		if dirErr != nil {
			return 0, dirErr
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: dir}
		}
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		switch {
		case os.IsExist(err):
			return 0, &file.StoreError{Code: file.ErrExists, Message: "file already exists", Path: path}
		case os.IsNotExist(err):
			return 0, &file.StoreError{Code: file.ErrPrecondition, Message: "file does not exist", Path: path}
		default:
			return 0, &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: path}
		}
	}
	defer func() { _ = f.Close() }()

	n, err := f.WriteString(data)
	if err != nil {
		return n, &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: path}
	}
	return n, nil
}
