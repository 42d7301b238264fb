package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalService keeps objects in a directory that the HTTP layer serves
// statically under URLPrefix.
type LocalService struct {
	root      string
	urlPrefix string
}

func NewLocalService(root, urlPrefix string) (*LocalService, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalService{
		root:      filepath.Clean(root),
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}, nil
}

// Root returns the directory objects are written to.
func (s *LocalService) Root() string {
	return s.root
}

// URLPrefix returns the path the root directory is served under.
func (s *LocalService) URLPrefix() string {
	return s.urlPrefix
}

func (s *LocalService) Put(_ context.Context, key string, body io.Reader, _ string) error {
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

func (s *LocalService) Delete(_ context.Context, key string) error {
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *LocalService) URL(_ context.Context, key string) (string, error) {
	if _, err := s.pathFor(key); err != nil {
		return "", err
	}
	return path.Join(s.urlPrefix, key), nil
}

func (s *LocalService) pathFor(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.root, key), nil
}

var _ Service = (*LocalService)(nil)
