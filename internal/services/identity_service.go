package services

import (
	"context"
	"strings"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdentityService resolves users by ID or unique username.
type IdentityService struct {
	db *gorm.DB
}

func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{db: db}
}

func (s *IdentityService) ResolveUsername(ctx context.Context, username string) (*models.User, error) {
	return findByUsername(s.db.WithContext(ctx), username)
}

func (s *IdentityService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return &user, nil
}

// Search returns every user except self, for add-contact autocomplete.
func (s *IdentityService) Search(ctx context.Context, self uuid.UUID) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id <> ?", self).Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func findByUsername(db *gorm.DB, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return &user, nil
}

// usersByID loads users keyed by ID. Unknown IDs are skipped.
func usersByID(db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	out := make(map[uuid.UUID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
