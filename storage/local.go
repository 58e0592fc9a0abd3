package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// localDiskUploader кладёт файлы под baseDir и отдаёт их по publicBasePath
// (маршрут /api/imagenes/... обслуживает тот же каталог).
// Ключ "torneos/0042/portada.png" превращается в <baseDir>/0042/portada.png —
// изображения турнира живут рядом с его JSON-документами и удаляются
// вместе с ними при каскаде.
type localDiskUploader struct {
	baseDir        string
	publicBasePath string
}

func NewLocalDiskUploader(baseDir, publicBasePath string) (FileUploader, error) {
	if baseDir == "" {
		return nil, errors.New("local uploader requires a base directory")
	}
	if publicBasePath == "" {
		publicBasePath = "/api/imagenes"
	}
	return &localDiskUploader{
		baseDir:        baseDir,
		publicBasePath: strings.TrimSuffix(publicBasePath, "/"),
	}, nil
}

// cleanKey отвергает ключи, выводящие за пределы baseDir.
func (u *localDiskUploader) cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "torneos/")
	cleaned := filepath.Clean(key)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return cleaned, nil
}

func (u *localDiskUploader) Upload(_ context.Context, key string, _ string, reader io.Reader) (*UploadResult, error) {
	rel, err := u.cleanKey(key)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(u.baseDir, rel)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write image file: %w", err)
	}

	return &UploadResult{
		Key:      key,
		Location: u.GetPublicURL(key),
	}, nil
}

func (u *localDiskUploader) Delete(_ context.Context, key string) error {
	rel, err := u.cleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(u.baseDir, rel)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

func (u *localDiskUploader) GetPublicURL(key string) string {
	return u.publicBasePath + "/" + strings.TrimPrefix(key, "/")
}
