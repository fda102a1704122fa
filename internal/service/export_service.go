package service

import (
	"context"
	"fmt"

	"github.com/storyreel/api/internal/export"
)

// ExportService turns session timelines into FCPXML documents.
type ExportService struct {
	sessions *SessionService
}

func NewExportService(sessions *SessionService) *ExportService {
	return &ExportService{sessions: sessions}
}

// ExportFCPXML serializes a session's current timeline. The live editor's
// state wins over the persisted record so unsaved edits are included.
func (s *ExportService) ExportFCPXML(ctx context.Context, sessionID string) ([]byte, string, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}

	doc, err := export.Marshal(session.Name, session.Timeline)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build fcpxml: %w", err)
	}

	filename := fmt.Sprintf("%s.fcpxml", session.ID)
	return doc, filename, nil
}
