package user

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/bondfire/core/internal/models"
	"github.com/bondfire/core/internal/pkg/jwt"
)

const tokenTTL = 7 * 24 * time.Hour

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) GetByID(id string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) Register(dto *RegisterDTO) (*models.UserModel, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))
	username := strings.TrimSpace(dto.Username)

	var count int64
	s.db.Model(&models.UserModel{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil, errEmailTaken
	}
	s.db.Model(&models.UserModel{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		return nil, errUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	displayName := strings.TrimSpace(dto.DisplayName)
	if displayName == "" {
		displayName = username
	}

	// The first registered account becomes the admin.
	role := models.RoleUser
	var total int64
	s.db.Model(&models.UserModel{}).Count(&total)
	if total == 0 {
		role = models.RoleAdmin
	}

	u := models.UserModel{
		Email:        email,
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         role,
	}
	return &u, s.db.Create(&u).Error
}

// Login authenticates by email or username and returns a signed JWT.
func (s *Service) Login(identifier, password, ip string) (string, *models.UserModel, error) {
	identifier = strings.TrimSpace(identifier)
	var u models.UserModel
	err := s.db.Where("email = ?", strings.ToLower(identifier)).
		Or("username = ?", identifier).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Constant-ish delay so probing for accounts is slow either way.
			time.Sleep(3 * time.Second)
			return "", nil, errUserNotFound
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, errWrongPassword
	}

	now := time.Now()
	s.db.Model(&u).Updates(map[string]interface{}{
		"last_login_at": now,
		"last_login_ip": ip,
	})
	u.LastLoginAt = &now
	u.LastLoginIP = ip

	token, err := jwt.Sign(u.ID, tokenTTL)
	return token, &u, err
}

func (s *Service) UpdateProfile(id string, dto *UpdateUserDTO) (*models.UserModel, error) {
	u, err := s.GetByID(id)
	if err != nil || u == nil {
		return u, err
	}
	updates := map[string]interface{}{}
	if dto.DisplayName != nil {
		updates["display_name"] = *dto.DisplayName
		u.DisplayName = *dto.DisplayName
	}
	if dto.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*dto.Email))
		var count int64
		s.db.Model(&models.UserModel{}).Where("email = ? AND id <> ?", email, id).Count(&count)
		if count > 0 {
			return nil, errEmailTaken
		}
		updates["email"] = email
		u.Email = email
	}
	if len(updates) == 0 {
		return u, nil
	}
	return u, s.db.Model(u).Updates(updates).Error
}

func (s *Service) ChangePassword(id, oldPwd, newPwd string) error {
	var u models.UserModel
	if err := s.db.Select("id, password_hash").First(&u, "id = ?", id).Error; err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPwd)); err != nil {
		return errWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(newPwd)); err == nil {
		return errPasswordSameAsOld
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.Model(&u).Update("password_hash", string(hash)).Error
}
