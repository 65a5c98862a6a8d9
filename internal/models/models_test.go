package models_test

import (
	"testing"

	"folio/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"jane-doe":         "jane doe",
		"Jane Doe":         "jane doe",
		"  JANE   doe ":    "jane doe",
		"Full-Stack-Dev":   "full stack dev",
		"full stack dev":   "full stack dev",
		"Mary-Jane Watson": "mary jane watson",
		"":                 "",
		"a.b(c)*":          "a.b(c)*",
	}
	for in, want := range cases {
		assert.Equal(t, want, models.NormalizeKey(in), in)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@x.com", models.NormalizeEmail("  Jane@X.com "))
}

func TestUser_HasPassword(t *testing.T) {
	assert.True(t, (&models.User{AuthProvider: models.AuthProviderPassword, PasswordHash: "$2a$10$x"}).HasPassword())
	assert.False(t, (&models.User{AuthProvider: models.AuthProviderGoogle}).HasPassword())
	assert.False(t, (&models.User{AuthProvider: models.AuthProviderPassword}).HasPassword())
}

func TestUser_BeforeSave(t *testing.T) {
	u := &models.User{FullName: " Jane Doe ", Email: "JANE@x.com"}
	assert.NoError(t, u.BeforeSave(nil))
	assert.Equal(t, "Jane Doe", u.FullName)
	assert.Equal(t, "jane doe", u.FullNameKey)
	assert.Equal(t, "jane@x.com", u.Email)
	assert.Equal(t, models.AuthProviderPassword, u.AuthProvider)
	assert.NotNil(t, u.Portfolios)
}

func TestPortfolio_BeforeSave(t *testing.T) {
	p := &models.Portfolio{Title: "Senior-Dev"}
	assert.NoError(t, p.BeforeSave(nil))
	assert.Equal(t, "senior dev", p.TitleKey)
	assert.NotNil(t, p.Skills)
	assert.NotNil(t, p.Achievements)
	assert.NotNil(t, p.Experiences)
	assert.NotNil(t, p.Projects)
	assert.NotNil(t, p.Education)
}
