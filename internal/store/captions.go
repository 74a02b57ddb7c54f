package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"

	"github.com/cgchiraggupta/kalakar/models"
)

// ListCaptions returns the captions for a video owned by userID,
// ordered by ascending start time.
func (s *Store) ListCaptions(userID, videoID uuid.UUID) ([]models.Caption, error) {
	if _, err := s.GetVideo(userID, videoID); err != nil {
		return nil, err
	}

	body, _, err := s.db.From("captions").
		Select("*", "", false).
		Eq("video_id", videoID.String()).
		Order("start_time", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		s.log.Errorf("Error fetching captions for video %s: %v", videoID, err)
		return nil, fmt.Errorf("fetch captions: %w", err)
	}

	var captions []models.Caption
	if err := json.Unmarshal(body, &captions); err != nil {
		s.log.Errorf("Error unmarshalling captions for video %s: %v", videoID, err)
		return nil, fmt.Errorf("process captions data: %w", err)
	}
	if captions == nil {
		captions = []models.Caption{}
	}
	return captions, nil
}

// ReplaceCaptions swaps the entire caption collection of a video in one
// shot: the old rows are deleted, then the new ones inserted. Used when
// a transcription completes or the editor saves a session.
func (s *Store) ReplaceCaptions(userID, videoID uuid.UUID, captions []models.Caption) ([]models.Caption, error) {
	if _, err := s.GetVideo(userID, videoID); err != nil {
		return nil, err
	}

	if _, _, err := s.db.From("captions").
		Delete("minimal", "").
		Eq("video_id", videoID.String()).
		Execute(); err != nil {
		s.log.Errorf("Error clearing captions for video %s: %v", videoID, err)
		return nil, fmt.Errorf("clear captions: %w", err)
	}

	if len(captions) == 0 {
		return []models.Caption{}, nil
	}

	now := time.Now()
	for i := range captions {
		if captions[i].ID == uuid.Nil {
			captions[i].ID = uuid.New()
		}
		captions[i].VideoID = videoID
		captions[i].CreatedAt = now
		captions[i].UpdatedAt = now
	}

	body, _, err := s.db.From("captions").
		Insert(captions, false, "", "representation", "").
		Execute()
	if err != nil {
		s.log.Errorf("Error inserting captions for video %s: %v", videoID, err)
		return nil, fmt.Errorf("insert captions: %w", err)
	}

	var created []models.Caption
	if err := json.Unmarshal(body, &created); err != nil {
		s.log.Errorf("Error unmarshalling inserted captions for video %s: %v", videoID, err)
		return nil, fmt.Errorf("process captions insert response: %w", err)
	}
	return created, nil
}

// UpdateCaption applies a field-level update to a single caption of a
// video owned by userID.
func (s *Store) UpdateCaption(userID, videoID, captionID uuid.UUID, fields map[string]interface{}) (*models.Caption, error) {
	if _, err := s.GetVideo(userID, videoID); err != nil {
		return nil, err
	}
	fields["updated_at"] = time.Now()

	body, _, err := s.db.From("captions").
		Update(fields, "representation", "").
		Eq("id", captionID.String()).
		Eq("video_id", videoID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error updating caption %s: %v", captionID, err)
		return nil, fmt.Errorf("update caption: %w", err)
	}

	var updated []models.Caption
	if err := json.Unmarshal(body, &updated); err != nil {
		s.log.Errorf("Error unmarshalling updated caption %s: %v", captionID, err)
		return nil, fmt.Errorf("process caption update response: %w", err)
	}
	if len(updated) == 0 {
		return nil, ErrNotFound
	}
	return &updated[0], nil
}
