package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/cgchiraggupta/kalakar/models"
)

// ErrInsufficientCredits is returned when a conditional credit
// decrement finds the balance too low.
var ErrInsufficientCredits = fmt.Errorf("insufficient credits")

// GetUser fetches a user row by id.
func (s *Store) GetUser(userID uuid.UUID) (*models.User, error) {
	body, _, err := s.db.From("users").
		Select("*", "", false).
		Eq("id", userID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error fetching user %s: %v", userID, err)
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	var users []models.User
	if err := json.Unmarshal(body, &users); err != nil {
		s.log.Errorf("Error unmarshalling user %s: %v", userID, err)
		return nil, fmt.Errorf("process user data: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return &users[0], nil
}

// DecrementCredits atomically takes amount credits from the user's
// balance. The check and the decrement are a single SQL function
// (decrement_credits) executed server-side, so two concurrent
// transcription requests can never both spend the same credits. The
// function returns true when the balance covered the amount.
func (s *Store) DecrementCredits(userID uuid.UUID, amount int64) error {
	result := s.db.Rpc("decrement_credits", "", map[string]interface{}{
		"p_user_id": userID.String(),
		"p_amount":  amount,
	})
	result = strings.TrimSpace(result)
	if result == "" {
		s.log.Errorf("Empty response from decrement_credits RPC for user %s", userID)
		return fmt.Errorf("decrement credits: empty RPC response")
	}

	ok, err := strconv.ParseBool(result)
	if err != nil {
		s.log.Errorf("Unexpected decrement_credits response for user %s: %q", userID, result)
		return fmt.Errorf("decrement credits: unexpected response %q", result)
	}
	if !ok {
		return ErrInsufficientCredits
	}
	return nil
}

// ListPlans returns the purchasable credit bundles.
func (s *Store) ListPlans() ([]models.Plan, error) {
	body, _, err := s.db.From("plans").
		Select("*", "", false).
		Execute()
	if err != nil {
		s.log.Errorf("Error listing plans: %v", err)
		return nil, fmt.Errorf("list plans: %w", err)
	}

	var plans []models.Plan
	if err := json.Unmarshal(body, &plans); err != nil {
		s.log.Errorf("Error unmarshalling plans: %v", err)
		return nil, fmt.Errorf("process plans data: %w", err)
	}
	if plans == nil {
		plans = []models.Plan{}
	}
	return plans, nil
}

// GetPlan returns a single plan by id.
func (s *Store) GetPlan(planID string) (*models.Plan, error) {
	body, _, err := s.db.From("plans").
		Select("*", "", false).
		Eq("id", planID).
		Execute()
	if err != nil {
		s.log.Errorf("Error fetching plan %s: %v", planID, err)
		return nil, fmt.Errorf("fetch plan: %w", err)
	}

	var plans []models.Plan
	if err := json.Unmarshal(body, &plans); err != nil {
		s.log.Errorf("Error unmarshalling plan %s: %v", planID, err)
		return nil, fmt.Errorf("process plan data: %w", err)
	}
	if len(plans) == 0 {
		return nil, ErrNotFound
	}
	return &plans[0], nil
}
