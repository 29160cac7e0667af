package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"panveliq/internal/events"
	"panveliq/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken        = errors.New("a user with this email already exists")
	ErrInvalidRole       = errors.New("invalid user role")
	ErrCannotSuspendSelf = errors.New("users cannot suspend their own account")
)

// UserService owns the user-management screens: listing, creation routing,
// suspension and stats.
type UserService struct {
	db    *gorm.DB
	perms *PermissionService
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, perms: NewPermissionService(db)}
}

// UserFilters narrows the paginated user list.
type UserFilters struct {
	Role   models.UserRole
	Status models.UserStatus
	Search string
}

// List returns a filtered page of users. Search matches name and email.
func (s *UserService) List(ctx context.Context, page, limit int, filters UserFilters) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{}).Where("is_deleted = ?", false)

	if filters.Role != "" {
		query = query.Where("role = ?", filters.Role)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"email LIKE ? OR first_name LIKE ? OR last_name LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	offset := (page - 1) * limit
	err := query.Preload("Profile").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// CreateUserInput is the user-management creation form.
type CreateUserInput struct {
	Email     string          `json:"email" validate:"required,email"`
	Password  string          `json:"password" validate:"omitempty,min=8"`
	FirstName string          `json:"firstName" validate:"required"`
	LastName  string          `json:"lastName"`
	Role      models.UserRole `json:"role" validate:"required"`
	Company   string          `json:"company"`
}

// Create routes by role: employee roles go through the invitation path and
// start pending until the invite is accepted, other roles are created
// active with the supplied password.
func (s *UserService) Create(ctx context.Context, actorID string, input *CreateUserInput) (*models.User, error) {
	if !models.IsValidUserRole(input.Role) {
		return nil, ErrInvalidRole
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND is_deleted = ?", input.Email, false).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	user := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      input.Role,
	}

	if models.IsEmployeeRole(input.Role) {
		user.Status = models.UserStatusPending
	} else {
		if input.Password == "" {
			return nil, errors.New("password is required for non-employee accounts")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
		user.Status = models.UserStatusActive
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if input.Role == models.UserRoleClient && input.Company != "" {
			profile := models.ClientProfile{UserID: user.ID, Company: input.Company}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
		}
		entry := models.AccessControlAudit{
			ActorID:      actorID,
			TargetUserID: user.ID,
			Action:       models.AuditActionCreate,
			Detail:       fmt.Sprintf("created as %s", user.Role),
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	if models.IsEmployeeRole(input.Role) {
		events.Emit("user.invited", user)
	} else {
		events.Emit("user.created", user)
	}
	return user, nil
}

// SetSuspended toggles suspension. Setting the state a user is already in
// is a no-op that still lands in the audit trail.
func (s *UserService) SetSuspended(ctx context.Context, actorID, userID string, suspend bool) (*models.User, error) {
	if actorID == userID && suspend {
		return nil, ErrCannotSuspendSelf
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ? AND is_deleted = ?", userID, false).Error; err != nil {
		return nil, err
	}

	action := models.AuditActionActivate
	target := models.UserStatusActive
	if suspend {
		action = models.AuditActionSuspend
		target = models.UserStatusSuspended
	}

	noop := user.Status == target
	detail := fmt.Sprintf("status %s -> %s", user.Status, target)
	if noop {
		detail = fmt.Sprintf("already %s", target)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !noop {
			if err := tx.Model(&user).Update("status", target).Error; err != nil {
				return err
			}
			user.Status = target
		}
		entry := models.AccessControlAudit{
			ActorID:      actorID,
			TargetUserID: userID,
			Action:       action,
			Detail:       detail,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserStats is the header card data on the user-management screen.
type UserStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Suspended int64 `json:"suspended"`
	Pending   int64 `json:"pending"`
	Clients   int64 `json:"clients"`
	Employees int64 `json:"employees"`
}

func (s *UserService) Stats(ctx context.Context) (*UserStats, error) {
	stats := &UserStats{}
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.User{}).Where("is_deleted = ?", false)
	}

	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", models.UserStatusActive).Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", models.UserStatusSuspended).Count(&stats.Suspended).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", models.UserStatusPending).Count(&stats.Pending).Error; err != nil {
		return nil, err
	}
	if err := base().Where("role = ?", models.UserRoleClient).Count(&stats.Clients).Error; err != nil {
		return nil, err
	}
	if err := base().Where("role IN ?", []models.UserRole{
		models.UserRoleEmployee, models.UserRoleDepartmentLeader,
	}).Count(&stats.Employees).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// AuditTrail pages the access-control entries for a user, newest first.
func (s *UserService) AuditTrail(ctx context.Context, targetUserID string, page, limit int) ([]models.AccessControlAudit, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.AccessControlAudit{}).
		Where("target_user_id = ?", targetUserID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.AccessControlAudit
	err := query.Preload("Actor").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&entries).Error
	return entries, total, err
}

// ClientOption is the minimal shape the client dropdowns consume.
type ClientOption struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company"`
}

// ClientOptions lists active clients for dropdown population.
func (s *UserService) ClientOptions(ctx context.Context) ([]ClientOption, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Preload("Profile").
		Where("role = ? AND status = ? AND is_deleted = ?",
			models.UserRoleClient, models.UserStatusActive, false).
		Order("first_name ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	options := make([]ClientOption, 0, len(users))
	for _, u := range users {
		opt := ClientOption{
			ID:   u.ID,
			Name: strings.TrimSpace(u.FirstName + " " + u.LastName),
		}
		if opt.Name == "" {
			opt.Name = u.Email
		}
		if u.Profile != nil {
			opt.Company = u.Profile.Company
		}
		options = append(options, opt)
	}
	return options, nil
}
