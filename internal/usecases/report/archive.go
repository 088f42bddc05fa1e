package report

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/google/uuid"
)

func archivePrefix(cookieID string) string {
	return "reports/" + cookieID + "/"
}

func archivePath(cookieID, id string) string {
	return archivePrefix(cookieID) + id + ".json"
}

// Archives снимки отчётов по cookie_id со ссылками на скачивание; без S3 пустой список
func (s *Service) Archives(ctx context.Context, cookieID string) ([]domain.ReportArchive, error) {
	cookieID = strings.TrimSpace(cookieID)
	if cookieID == "" {
		return nil, domain.NewValidationError("cookie_id", "is required")
	}
	if s.Archive == nil {
		return []domain.ReportArchive{}, nil
	}

	keys, err := s.Archive.ListFiles(ctx, archivePrefix(cookieID))
	if err != nil {
		return nil, fmt.Errorf("list report archives: %w", err)
	}
	sort.Strings(keys)

	archives := make([]domain.ReportArchive, 0, len(keys))
	for _, key := range keys {
		url, err := s.Archive.GetPresignedURL(ctx, key, s.Config.ArchiveURLTTL)
		if err != nil {
			s.Log.Warn("failed to sign report url", "error", err, "path", key)
			continue
		}
		archives = append(archives, domain.ReportArchive{
			ID:  strings.TrimSuffix(path.Base(key), ".json"),
			URL: url,
		})
	}
	return archives, nil
}

// ArchivedReport снимок отчёта по id из Archives
func (s *Service) ArchivedReport(ctx context.Context, cookieID, id string) (*domain.PersonalReport, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewValidationError("id", "must be a uuid")
	}
	if s.Archive == nil {
		return nil, domain.ErrNotFound
	}

	data, err := s.Archive.GetFile(ctx, archivePath(strings.TrimSpace(cookieID), id))
	if err != nil {
		return nil, fmt.Errorf("get report archive: %w", err)
	}

	var report domain.PersonalReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report archive: %w", err)
	}
	return &report, nil
}
