package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
)

// UserInput holds the fields of a new user.
type UserInput struct {
	Name               string
	Email              string
	SubscriptionTier   int
	SubscriptionStatus string
	AdminOverride      bool
}

// UserUpdate changes the non-nil fields.
type UserUpdate struct {
	Name               *string
	Email              *string
	SubscriptionTier   *int
	SubscriptionStatus *string
	AdminOverride      *bool
}

// UserService handles user records. Subscription fields are stored, not enforced.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("name").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user", id)
	}
	return &user, nil
}

func (s *UserService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.checkEmail(ctx, email, ""); err != nil {
		return nil, err
	}
	status := in.SubscriptionStatus
	if status == "" {
		status = "free"
	}
	user := &models.User{
		ID:                 uuid.New().String(),
		Name:               strings.TrimSpace(in.Name),
		Email:              email,
		SubscriptionTier:   in.SubscriptionTier,
		SubscriptionStatus: status,
		AdminOverride:      in.AdminOverride,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id string, in UserUpdate) (*models.User, error) {
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if err := s.checkEmail(ctx, email, id); err != nil {
			return nil, err
		}
		updates["email"] = email
	}
	if in.SubscriptionTier != nil {
		updates["subscription_tier"] = *in.SubscriptionTier
	}
	if in.SubscriptionStatus != nil {
		updates["subscription_status"] = *in.SubscriptionStatus
	}
	if in.AdminOverride != nil {
		updates["admin_override"] = *in.AdminOverride
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.User{ID: id}).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes a user that owns no recipes or cookbooks.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	for _, model := range []interface{}{&models.Recipe{}, &models.Cookbook{}} {
		var n int64
		if err := db.Model(model).Where("user_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("user %s still owns content: %w", id, ErrInUse)
		}
	}
	return db.Delete(&models.User{ID: id}).Error
}

func (s *UserService) checkEmail(ctx context.Context, email, exceptID string) error {
	query := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var n int64
	if err := query.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("email %s: %w", email, ErrConflict)
	}
	return nil
}
