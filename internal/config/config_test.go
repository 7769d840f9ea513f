package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couple-plans-backend-go/internal/models"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "couple-plans-test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "shared", cfg.WorkspaceID)
	assert.Equal(t, "configs/seed.yaml", cfg.SeedFile)
	assert.False(t, cfg.IsRelease())
	assert.Same(t, cfg, GetConfig())
}

func TestLoadConfig_RequiresProject(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfig_Users(t *testing.T) {
	cfg := &Config{
		AllowedUsers: " Michel=Michel@Couple-Plans.local , sarahi=sarahi@couple-plans.local",
		AdminUsers:   "michel",
	}
	users, err := cfg.Users()
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, models.User{Username: "michel", Email: "michel@couple-plans.local", Role: models.RoleAdmin}, users[0])
	assert.Equal(t, models.RoleUser, users[1].Role)
}

func TestConfig_UsersRejectsMalformed(t *testing.T) {
	_, err := (&Config{AllowedUsers: "michel"}).Users()
	assert.Error(t, err)

	_, err = (&Config{AllowedUsers: ""}).Users()
	assert.Error(t, err)
}

func TestDefaultOwner(t *testing.T) {
	users := []models.User{
		{Username: "sarahi", Role: models.RoleUser},
		{Username: "michel", Role: models.RoleAdmin},
	}
	assert.Equal(t, "michel", DefaultOwner(users).Username)
	assert.Equal(t, "sarahi", DefaultOwner(users[:1]).Username)
	assert.Equal(t, models.User{}, DefaultOwner(nil))
}
