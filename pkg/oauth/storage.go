package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

var ErrTokenNotFound = errors.New("token not found")

const lockRetryDelay = 50 * time.Millisecond

// Store persists the credential snapshot between process restarts. The
// snapshot is not encrypted; it is a development and bootstrap aid.
type Store interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
}

// FileStore keeps the snapshot as JSON in <dir>/<provider>_token.json.
type FileStore struct {
	dir      string
	provider string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, provider: "youtube"}
}

// Path returns the snapshot file location.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, filepath.Base(s.provider)+"_token.json")
}

func (s *FileStore) Save(ctx context.Context, rec Record) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	lock := flock.New(s.Path() + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock token file: %w", err)
	}
	if !locked {
		return errors.New("failed to lock token file")
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(s.dir, ".token-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write token: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set token permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return os.Rename(tmp.Name(), s.Path())
}

func (s *FileStore) Load(ctx context.Context) (Record, error) {
	path := s.Path()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Record{}, ErrTokenNotFound
		}
		return Record{}, fmt.Errorf("failed to read token: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return Record{}, fmt.Errorf("failed to lock token file: %w", err)
	}
	if !locked {
		return Record{}, errors.New("failed to lock token file")
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(path) // #nosec G304 -- provider is sanitized
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, ErrTokenNotFound
		}
		return Record{}, fmt.Errorf("failed to read token: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return rec, nil
}
