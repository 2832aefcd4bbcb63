// Package storage guarda los adjuntos de las solicitudes de trámite sobre un afero.Fs
// (disco en producción, memoria en tests).
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/jhoicas/colegio-api/internal/domain"
)

// AttachmentStore implementa finance.AttachmentStore.
type AttachmentStore struct {
	fs afero.Fs
}

// NewAttachmentStore usa fs tal cual; las rutas devueltas son relativas a su raíz.
func NewAttachmentStore(fs afero.Fs) *AttachmentStore {
	return &AttachmentStore{fs: fs}
}

// NewDiskAttachmentStore crea el directorio base y confina el store a él.
func NewDiskAttachmentStore(dir string) (*AttachmentStore, error) {
	osfs := afero.NewOsFs()
	if err := osfs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio de adjuntos: %w", err)
	}
	return NewAttachmentStore(afero.NewBasePathFs(osfs, dir)), nil
}

// Save escribe el contenido con el nombre indicado. Falla si el archivo ya existe.
func (s *AttachmentStore) Save(ctx context.Context, name string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if clean == "." || clean == "/" || clean == ".." {
		return "", fmt.Errorf("nombre de adjunto inválido %q", name)
	}
	f, err := s.fs.OpenFile(clean, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("crear adjunto: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(clean)
		return "", fmt.Errorf("escribir adjunto: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(clean)
		return "", fmt.Errorf("cerrar adjunto: %w", err)
	}
	return clean, nil
}

// Remove elimina un adjunto; no falla si ya no existe.
func (s *AttachmentStore) Remove(_ context.Context, p string) error {
	err := s.fs.Remove(path.Base(p))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("eliminar adjunto: %w", err)
	}
	return nil
}

// Open abre un adjunto guardado para su descarga.
func (s *AttachmentStore) Open(p string) (afero.File, error) {
	f, err := s.fs.Open(path.Base(p))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("adjunto %s: %w", path.Base(p), domain.ErrNotFound)
	}
	return f, err
}
