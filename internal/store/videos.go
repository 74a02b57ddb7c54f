package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cgchiraggupta/kalakar/models"
)

// CreateVideo inserts a video row and returns the stored record.
func (s *Store) CreateVideo(video models.Video) (*models.Video, error) {
	body, _, err := s.db.From("videos").
		Insert(video, false, "", "representation", "").
		Execute()
	if err != nil {
		s.log.Errorf("Error inserting video %s: %v", video.ID, err)
		return nil, fmt.Errorf("insert video: %w", err)
	}

	var created []models.Video
	if err := json.Unmarshal(body, &created); err != nil || len(created) == 0 {
		s.log.Errorf("Error unmarshalling created video: %v. Body: %s", err, string(body))
		return nil, fmt.Errorf("process video insert response: %w", err)
	}
	return &created[0], nil
}

// GetVideo fetches a video owned by userID.
func (s *Store) GetVideo(userID, videoID uuid.UUID) (*models.Video, error) {
	body, _, err := s.db.From("videos").
		Select("*", "", false).
		Eq("id", videoID.String()).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error fetching video %s: %v", videoID, err)
		return nil, fmt.Errorf("fetch video: %w", err)
	}

	var videos []models.Video
	if err := json.Unmarshal(body, &videos); err != nil {
		s.log.Errorf("Error unmarshalling video %s: %v. Body: %s", videoID, err, string(body))
		return nil, fmt.Errorf("process video data: %w", err)
	}
	if len(videos) == 0 {
		return nil, ErrNotFound
	}
	return &videos[0], nil
}

// ListVideos returns all videos owned by userID, newest first.
func (s *Store) ListVideos(userID uuid.UUID) ([]models.Video, error) {
	body, _, err := s.db.From("videos").
		Select("*", "", false).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error listing videos for user %s: %v", userID, err)
		return nil, fmt.Errorf("list videos: %w", err)
	}

	var videos []models.Video
	if err := json.Unmarshal(body, &videos); err != nil {
		s.log.Errorf("Error unmarshalling videos for user %s: %v", userID, err)
		return nil, fmt.Errorf("process videos data: %w", err)
	}
	if videos == nil {
		videos = []models.Video{}
	}
	return videos, nil
}

// UpdateVideo applies a field-level update to a video owned by userID.
func (s *Store) UpdateVideo(userID, videoID uuid.UUID, fields map[string]interface{}) (*models.Video, error) {
	fields["updated_at"] = time.Now()

	body, _, err := s.db.From("videos").
		Update(fields, "representation", "").
		Eq("id", videoID.String()).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error updating video %s: %v", videoID, err)
		return nil, fmt.Errorf("update video: %w", err)
	}

	var updated []models.Video
	if err := json.Unmarshal(body, &updated); err != nil {
		s.log.Errorf("Error unmarshalling updated video %s: %v", videoID, err)
		return nil, fmt.Errorf("process video update response: %w", err)
	}
	if len(updated) == 0 {
		return nil, ErrNotFound
	}
	return &updated[0], nil
}

// DeleteVideo removes a video owned by userID along with its captions.
func (s *Store) DeleteVideo(userID, videoID uuid.UUID) error {
	// Captions are scoped through the video, so clear them first.
	if _, _, err := s.db.From("captions").
		Delete("minimal", "").
		Eq("video_id", videoID.String()).
		Execute(); err != nil {
		s.log.Errorf("Error deleting captions for video %s: %v", videoID, err)
		return fmt.Errorf("delete captions: %w", err)
	}

	_, count, err := s.db.From("videos").
		Delete("minimal", "exact").
		Eq("id", videoID.String()).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error deleting video %s: %v", videoID, err)
		return fmt.Errorf("delete video: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
