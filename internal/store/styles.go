package store

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/cgchiraggupta/kalakar/internal/style"
	"github.com/cgchiraggupta/kalakar/models"
)

// GetStyle returns the caption style for a project readable by userID.
// Projects without a persisted style get the default, so callers never
// see a partial or missing style.
func (s *Store) GetStyle(userID, projectID uuid.UUID) (*models.CaptionStyle, error) {
	if _, err := s.GetProject(userID, projectID); err != nil {
		return nil, err
	}

	body, _, err := s.db.From("caption_styles").
		Select("*", "", false).
		Eq("project_id", projectID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error fetching style for project %s: %v", projectID, err)
		return nil, fmt.Errorf("fetch caption style: %w", err)
	}

	var styles []models.CaptionStyle
	if err := json.Unmarshal(body, &styles); err != nil {
		s.log.Errorf("Error unmarshalling style for project %s: %v", projectID, err)
		return nil, fmt.Errorf("process caption style data: %w", err)
	}
	if len(styles) == 0 {
		def := style.Default()
		def.ProjectID = projectID
		return &def, nil
	}
	return &styles[0], nil
}

// SaveStyle persists the full style for a project owned by userID,
// replacing any previous row. The style is validated before it is
// written; the export path relies on only valid styles being stored.
func (s *Store) SaveStyle(userID, projectID uuid.UUID, cs models.CaptionStyle) (*models.CaptionStyle, error) {
	project, err := s.GetProject(userID, projectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, ErrNotFound
	}
	if err := style.Validate(cs); err != nil {
		return nil, err
	}
	cs.ProjectID = projectID

	body, _, err := s.db.From("caption_styles").
		Insert(cs, true, "project_id", "representation", "").
		Execute()
	if err != nil {
		s.log.Errorf("Error upserting style for project %s: %v", projectID, err)
		return nil, fmt.Errorf("save caption style: %w", err)
	}

	var saved []models.CaptionStyle
	if err := json.Unmarshal(body, &saved); err != nil || len(saved) == 0 {
		s.log.Errorf("Error unmarshalling saved style for project %s: %v. Body: %s", projectID, err, string(body))
		return nil, fmt.Errorf("process caption style response: %w", err)
	}
	return &saved[0], nil
}
