package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persiste a sessão num arquivo JSON {"auth_token": ..., "auth_user": {...}}
type FileStore struct {
	Path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore { return &FileStore{Path: path} }

type fileData struct {
	Token string `json:"auth_token"`
	User  *User  `json:"auth_user,omitempty"`
}

func (f *FileStore) read() (fileData, error) {
	var d fileData
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return d, ErrNoToken
	}
	if err != nil {
		return d, fmt.Errorf("read auth file: %w", err)
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return d, fmt.Errorf("decode auth file: %w", err)
	}
	return d, nil
}

func (f *FileStore) Token(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, err := f.read()
	if err != nil {
		return "", err
	}
	if d.Token == "" {
		return "", ErrNoToken
	}
	return d.Token, nil
}

func (f *FileStore) User(context.Context) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, err := f.read()
	if err != nil {
		return nil, err
	}
	if d.User == nil {
		return nil, ErrNoToken
	}
	return d.User, nil
}

func (f *FileStore) Set(_ context.Context, token string, user *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := json.MarshalIndent(fileData{Token: token, User: user}, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create auth dir: %w", err)
		}
	}
	// escreve em arquivo temporário e renomeia, para nunca deixar JSON pela metade
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write auth file: %w", err)
	}
	return os.Rename(tmp, f.Path)
}

func (f *FileStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove auth file: %w", err)
	}
	return nil
}
