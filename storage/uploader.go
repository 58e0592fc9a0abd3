package storage

import (
	"context"
	"io"
)

// UploadResult описывает сохранённую обложку турнира.
// Location — публичный URL, который кладётся в portadaURL турнира;
// ETag заполняется только S3-совместимыми бекендами.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader абстрагирует хранилище обложек турниров. Ключ имеет вид
// "torneos/<torneo_id>/portada.<ext>"; как он отображается на физический
// путь или объект — дело драйвера (локальный диск или Cloudflare R2).
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	// Delete идемпотентен: отсутствие объекта — не ошибка.
	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}
