package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/store-rating/internal/apperr"
)

type signup struct {
	Name     string  `json:"name" validate:"min=4,max=60"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"password"`
	Address  *string `json:"address" validate:"omitempty,max=400"`
	Role     string  `json:"role" validate:"omitempty,role"`
}

func TestPasswordOK(t *testing.T) {
	cases := map[string]bool{
		"Secret#1":           true,
		"ABCDEFGHIJKLMNO!":   true,
		"short#A":            false, // 7 chars
		"Secret#12345678901": false, // 18 chars
		"secret#123":         false, // no uppercase
		"Secret1234":         false, // no symbol
		"Secret_123":         false, // symbol outside the set
	}
	for p, want := range cases {
		assert.Equal(t, want, PasswordOK(p), p)
	}
}

func TestStructValid(t *testing.T) {
	addr := "12 Main St"
	require.NoError(t, Struct(signup{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "Secret#123",
		Address:  &addr,
		Role:     "owner",
	}))
}

func TestStructReportsEachField(t *testing.T) {
	long := strings.Repeat("a", 401)
	err := Struct(signup{
		Name:     "Ash",
		Email:    "not-an-email",
		Password: "password",
		Address:  &long,
		Role:     "ROOT",
	})
	require.Error(t, err)

	typed := apperr.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperr.CodeValidation, typed.Code())

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be at least 4 characters", details["name"])
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Contains(t, details["password"], "uppercase")
	assert.Equal(t, "must be at most 400 characters", details["address"])
	assert.Equal(t, "must be one of USER, ADMIN, OWNER", details["role"])
}

func TestNameLengthCountsCharacters(t *testing.T) {
	// "Zoë!" is five bytes but four characters.
	err := Struct(signup{Name: "Zoë!", Email: "z@example.com", Password: "Secret#123"})
	require.NoError(t, err)
}
