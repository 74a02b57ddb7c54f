package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cgchiraggupta/kalakar/models"
)

// CreateProject inserts a project row and returns the stored record.
func (s *Store) CreateProject(project models.Project) (*models.Project, error) {
	body, _, err := s.db.From("projects").
		Insert(project, false, "", "representation", "").
		Execute()
	if err != nil {
		s.log.Errorf("Error inserting project: %v", err)
		return nil, fmt.Errorf("insert project: %w", err)
	}

	var created []models.Project
	if err := json.Unmarshal(body, &created); err != nil || len(created) == 0 {
		s.log.Errorf("Error unmarshalling created project: %v. Body: %s", err, string(body))
		return nil, fmt.Errorf("process project insert response: %w", err)
	}
	return &created[0], nil
}

// GetProject fetches a project readable by userID: either owned by
// them, or public. A private project owned by someone else yields
// ErrNotFound, never a permission error.
func (s *Store) GetProject(userID, projectID uuid.UUID) (*models.Project, error) {
	body, _, err := s.db.From("projects").
		Select("*", "", false).
		Eq("id", projectID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error fetching project %s: %v", projectID, err)
		return nil, fmt.Errorf("fetch project: %w", err)
	}

	var projects []models.Project
	if err := json.Unmarshal(body, &projects); err != nil {
		s.log.Errorf("Error unmarshalling project %s: %v", projectID, err)
		return nil, fmt.Errorf("process project data: %w", err)
	}
	if len(projects) == 0 {
		return nil, ErrNotFound
	}
	p := projects[0]
	if !projectReadable(p, userID) {
		return nil, ErrNotFound
	}
	return &p, nil
}

// projectReadable reports whether userID may read p: the owner always,
// anyone else only when the project is public. Callers translate a
// false result into ErrNotFound so a private project's existence is
// never confirmed to non-owners.
func projectReadable(p models.Project, userID uuid.UUID) bool {
	return p.UserID == userID || p.IsPublic
}

// ListProjects returns all projects owned by userID.
func (s *Store) ListProjects(userID uuid.UUID) ([]models.Project, error) {
	body, _, err := s.db.From("projects").
		Select("*", "", false).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error listing projects for user %s: %v", userID, err)
		return nil, fmt.Errorf("list projects: %w", err)
	}

	var projects []models.Project
	if err := json.Unmarshal(body, &projects); err != nil {
		s.log.Errorf("Error unmarshalling projects for user %s: %v", userID, err)
		return nil, fmt.Errorf("process projects data: %w", err)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

// UpdateProject applies a field-level update to a project owned by userID.
// Only the owner may update; public visibility grants read, not write.
func (s *Store) UpdateProject(userID, projectID uuid.UUID, fields map[string]interface{}) (*models.Project, error) {
	fields["updated_at"] = time.Now()

	body, _, err := s.db.From("projects").
		Update(fields, "representation", "").
		Eq("id", projectID.String()).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error updating project %s: %v", projectID, err)
		return nil, fmt.Errorf("update project: %w", err)
	}

	var updated []models.Project
	if err := json.Unmarshal(body, &updated); err != nil {
		s.log.Errorf("Error unmarshalling updated project %s: %v", projectID, err)
		return nil, fmt.Errorf("process project update response: %w", err)
	}
	if len(updated) == 0 {
		return nil, ErrNotFound
	}
	return &updated[0], nil
}

// DeleteProject removes a project owned by userID and its video
// associations. The videos themselves are left untouched.
func (s *Store) DeleteProject(userID, projectID uuid.UUID) error {
	if _, _, err := s.db.From("project_videos").
		Delete("minimal", "").
		Eq("project_id", projectID.String()).
		Execute(); err != nil {
		s.log.Errorf("Error deleting project_videos for project %s: %v", projectID, err)
		return fmt.Errorf("delete project associations: %w", err)
	}

	_, count, err := s.db.From("projects").
		Delete("minimal", "exact").
		Eq("id", projectID.String()).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error deleting project %s: %v", projectID, err)
		return fmt.Errorf("delete project: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// AddVideoToProject creates the association row with its added_at
// timestamp. The video and project must both belong to userID.
func (s *Store) AddVideoToProject(userID, projectID, videoID uuid.UUID) (*models.ProjectVideo, error) {
	if _, err := s.GetVideo(userID, videoID); err != nil {
		return nil, err
	}
	project, err := s.GetProject(userID, projectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, ErrNotFound // readable public project, but not ours to modify
	}

	assoc := models.ProjectVideo{
		ProjectID: projectID,
		VideoID:   videoID,
		AddedAt:   time.Now(),
	}
	body, _, err := s.db.From("project_videos").
		Insert(assoc, false, "", "representation", "").
		Execute()
	if err != nil {
		s.log.Errorf("Error adding video %s to project %s: %v", videoID, projectID, err)
		return nil, fmt.Errorf("insert project_video: %w", err)
	}

	var created []models.ProjectVideo
	if err := json.Unmarshal(body, &created); err != nil || len(created) == 0 {
		s.log.Errorf("Error unmarshalling project_video: %v. Body: %s", err, string(body))
		return nil, fmt.Errorf("process project_video insert response: %w", err)
	}
	return &created[0], nil
}

// RemoveVideoFromProject deletes the association row.
func (s *Store) RemoveVideoFromProject(userID, projectID, videoID uuid.UUID) error {
	project, err := s.GetProject(userID, projectID)
	if err != nil {
		return err
	}
	if project.UserID != userID {
		return ErrNotFound
	}

	_, count, err := s.db.From("project_videos").
		Delete("minimal", "exact").
		Eq("project_id", projectID.String()).
		Eq("video_id", videoID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error removing video %s from project %s: %v", videoID, projectID, err)
		return fmt.Errorf("delete project_video: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// ListProjectVideos returns the association rows for a project readable
// by userID.
func (s *Store) ListProjectVideos(userID, projectID uuid.UUID) ([]models.ProjectVideo, error) {
	if _, err := s.GetProject(userID, projectID); err != nil {
		return nil, err
	}

	body, _, err := s.db.From("project_videos").
		Select("*", "", false).
		Eq("project_id", projectID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error listing videos for project %s: %v", projectID, err)
		return nil, fmt.Errorf("list project videos: %w", err)
	}

	var assocs []models.ProjectVideo
	if err := json.Unmarshal(body, &assocs); err != nil {
		s.log.Errorf("Error unmarshalling project videos for %s: %v", projectID, err)
		return nil, fmt.Errorf("process project videos data: %w", err)
	}
	if assocs == nil {
		assocs = []models.ProjectVideo{}
	}
	return assocs, nil
}
