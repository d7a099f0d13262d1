package pkg

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/vdblog/vdblog-backend/internal/initializer"
)

// SeedFile lists accounts to create and whether to load demo content.
type SeedFile struct {
	Users    []initializer.UserSpec `json:"users"`
	Fixtures bool                   `json:"fixtures"`
}

// ReadSeedFile reads JSON at path into a SeedFile.
// Returns os.ErrNotExist if the file doesn't exist.
// Returns a zero SeedFile if the file is empty.
func ReadSeedFile(path string) (SeedFile, error) {
	var seed SeedFile

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return seed, err
		}
		return seed, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return seed, fmt.Errorf("stat: %w", err)
	}
	if st.Size() == 0 {
		return seed, nil
	}

	if err := json.NewDecoder(f).Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return seed, fmt.Errorf("decode: %w", err)
	}
	return seed, nil
}

// WriteResult writes the seeding result as pretty JSON to path atomically.
// The file never contains passwords.
func WriteResult(path string, result initializer.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')

	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("atomic write: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, content []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		_ = os.Remove(tmpName)
	}

	if err := tmp.Chmod(mode); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp: %w", err)
	}
	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
