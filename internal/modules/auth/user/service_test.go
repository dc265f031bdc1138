package user

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bondfire/core/internal/database"
	"github.com/bondfire/core/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(db)
}

func registerDTO(n int) *RegisterDTO {
	return &RegisterDTO{
		Email:    fmt.Sprintf("user%d@example.com", n),
		Username: fmt.Sprintf("user%d", n),
		Password: "hunter22",
	}
}

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Register(registerDTO(1))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.Role)
	assert.NotEqual(t, "hunter22", first.PasswordHash, "password must be hashed")

	second, err := svc.Register(registerDTO(2))
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, second.Role)
}

func TestRegister_Conflicts(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(registerDTO(1))
	require.NoError(t, err)

	dup := registerDTO(2)
	dup.Email = "user1@example.com"
	_, err = svc.Register(dup)
	assert.ErrorIs(t, err, errEmailTaken)

	dup = registerDTO(3)
	dup.Username = "user1"
	_, err = svc.Register(dup)
	assert.ErrorIs(t, err, errUsernameTaken)
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Register(registerDTO(1))
	require.NoError(t, err)

	token, u, err := svc.Login("user1@example.com", "hunter22", "127.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotNil(t, u.LastLoginAt)

	token, _, err = svc.Login("user1", "hunter22", "127.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login("user1", "wrong-password", "127.0.0.1")
	assert.ErrorIs(t, err, errWrongPassword)
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t)
	u, err := svc.Register(registerDTO(1))
	require.NoError(t, err)

	err = svc.ChangePassword(u.ID, "wrong-old", "newpassword")
	assert.ErrorIs(t, err, errWrongPassword)

	err = svc.ChangePassword(u.ID, "hunter22", "hunter22")
	assert.ErrorIs(t, err, errPasswordSameAsOld)

	require.NoError(t, svc.ChangePassword(u.ID, "hunter22", "newpassword"))

	_, _, err = svc.Login("user1", "hunter22", "127.0.0.1")
	assert.ErrorIs(t, err, errWrongPassword)
	_, _, err = svc.Login("user1", "newpassword", "127.0.0.1")
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService(t)
	u, err := svc.Register(registerDTO(1))
	require.NoError(t, err)

	name := "Someone Else"
	updated, err := svc.UpdateProfile(u.ID, &UpdateUserDTO{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Someone Else", updated.DisplayName)
	assert.Equal(t, u.Email, updated.Email)
}
