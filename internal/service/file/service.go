package file

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/storage"
	"github.com/google/uuid"
)

const exportContentType = "text/csv"

type FileService interface {
	// SaveExport stores an archived CSV export of a session and returns its path
	SaveExport(ctx context.Context, sessionID string, file io.Reader) (string, error)

	// DeleteExports removes every archived export of a session
	DeleteExports(ctx context.Context, sessionID string) error

	GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
	now     func() time.Time
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
		now:     time.Now,
	}
}

// SaveExport implements FileService.
func (s *fileServiceImpl) SaveExport(ctx context.Context, sessionID string, file io.Reader) (string, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return "", fmt.Errorf("invalid session id %q: %w", sessionID, err)
	}

	filename := fmt.Sprintf("karyawan_perankingan_%s_%s.csv", s.now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
	uploadedPath, err := s.storage.Upload(ctx, file, path.Join(exportsDir(sessionID), filename), exportContentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload export: %w", err)
	}

	return uploadedPath, nil
}

// DeleteExports implements FileService.
func (s *fileServiceImpl) DeleteExports(ctx context.Context, sessionID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return fmt.Errorf("invalid session id %q: %w", sessionID, err)
	}
	if err := s.storage.Delete(ctx, exportsDir(sessionID)); err != nil {
		return fmt.Errorf("failed to delete exports: %w", err)
	}
	return nil
}

// GetFileURL implements FileService.
func (s *fileServiceImpl) GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, path, expiry)
}

func exportsDir(sessionID string) string {
	return path.Join("exports", sessionID)
}
