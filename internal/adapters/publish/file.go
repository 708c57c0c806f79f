package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adelgado/vsetrack/internal/domain"
	"github.com/adelgado/vsetrack/internal/ports"
)

var _ ports.Backup = (*FileBackup)(nil)

// FileBackup escribe la copia local durable del snapshot. El archivo se
// sobreescribe entero en cada ciclo; cualquier consumidor offline lo usa
// como fuente de fallback cuando el store remoto no está disponible.
type FileBackup struct {
	path string
}

// NewFileBackup crea el backup apuntando a la ruta dada.
func NewFileBackup(path string) *FileBackup {
	return &FileBackup{path: path}
}

// Write serializa el snapshot y lo escribe vía archivo temporal +
// rename, para que un crash a mitad de escritura nunca deje un backup
// corrupto.
func (b *FileBackup) Write(_ context.Context, snap domain.CompetitionSnapshot) error {
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("publish.Write: marshal snapshot: %w", err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("publish.Write: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("publish.Write: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("publish.Write: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("publish.Write: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("publish.Write: rename to %s: %w", b.path, err)
	}
	return nil
}
