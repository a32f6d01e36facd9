package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/hbollon/go-edlib"
)

// UserService handles profiles and the people-browsing surface.
type UserService struct {
	users    repository.UserRepository
	validate *validator.Validate
}

// NewUserService constructs a UserService.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users, validate: validator.New()}
}

// GetProfile returns a user's profile.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile applies profile edits for the calling user. Profiles are only
// ever updated by their owner; the handler passes the authenticated id.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (*model.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != "" {
		user.DisplayName = strings.TrimSpace(req.DisplayName)
	}
	if req.PhotoURL != "" {
		user.PhotoURL = req.PhotoURL
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.Interests != nil {
		user.Interests = req.Interests
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.users.GetByID(ctx, userID)
}

// ListPeople returns everyone except the caller, optionally narrowed by a
// search term over name, role, bio and interests, with near-miss names ranked
// by edit-distance similarity.
func (s *UserService) ListPeople(ctx context.Context, callerID, search string) ([]model.User, error) {
	people, err := s.users.List(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if search == "" {
		return people, nil
	}
	return fuzzyFilterPeople(people, search), nil
}

func fuzzyFilterPeople(people []model.User, term string) []model.User {
	term = strings.ToLower(strings.TrimSpace(term))
	type scored struct {
		user  model.User
		score float32
	}
	var hits []scored
	for _, p := range people {
		name := strings.ToLower(p.DisplayName)
		if strings.Contains(name, term) ||
			strings.Contains(strings.ToLower(p.Role), term) ||
			strings.Contains(strings.ToLower(p.Bio), term) {
			hits = append(hits, scored{user: p, score: 1})
			continue
		}
		matched := false
		for _, interest := range p.Interests {
			if strings.Contains(strings.ToLower(interest), term) {
				hits = append(hits, scored{user: p, score: 1})
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		similarity, err := edlib.StringsSimilarity(name, term, edlib.Levenshtein)
		if err == nil && similarity >= fuzzyThreshold {
			hits = append(hits, scored{user: p, score: similarity})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	results := make([]model.User, len(hits))
	for i, h := range hits {
		results[i] = h.user
	}
	return results
}
