package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsernameAcceptsValidNames(t *testing.T) {
	for _, name := range []string{"Alice_01", "bob", "Z99", "a_b", strings.Repeat("x", MaxUsernameLength)} {
		assert.Nil(t, ValidateUsername(name), name)
	}
}

func TestValidateUsernameTooShort(t *testing.T) {
	verr := ValidateUsername("ab")
	require.NotNil(t, verr)
	assert.Equal(t, []string{"must be at least 3 letters, numbers, or underscores"}, verr.Fields[FieldUsername])
}

func TestValidateUsernameBadFirstCharacterAccumulates(t *testing.T) {
	verr := ValidateUsername("9alice")
	require.NotNil(t, verr)
	assert.Equal(t, []string{
		"must start with a letter",
		"must be at least 3 letters, numbers, or underscores",
	}, verr.Fields[FieldUsername])
}

func TestValidateUsernameTooLong(t *testing.T) {
	verr := ValidateUsername("a" + strings.Repeat("b", MaxUsernameLength))
	require.NotNil(t, verr)
	assert.Equal(t, []string{"is too long"}, verr.Fields[FieldUsername])
}

func TestValidateUsernameLengthCountsCharacters(t *testing.T) {
	// 21 characters, 42 bytes
	verr := ValidateUsername("é" + strings.Repeat("ü", 20))
	require.NotNil(t, verr)
	assert.NotContains(t, verr.Fields[FieldUsername], "is too long")

	verr = ValidateUsername(strings.Repeat("ü", MaxUsernameLength+1))
	require.NotNil(t, verr)
	assert.Contains(t, verr.Fields[FieldUsername], "is too long")
}

func TestValidateUsernameRejectsPunctuation(t *testing.T) {
	verr := ValidateUsername("alice-01")
	require.NotNil(t, verr)
	assert.Len(t, verr.Fields[FieldUsername], 1)
}

func TestValidateUsernameEmpty(t *testing.T) {
	verr := ValidateUsername("")
	require.NotNil(t, verr)
	assert.Len(t, verr.Fields[FieldUsername], 2)
}

func TestValidationErrorMessage(t *testing.T) {
	verr := &ValidationError{}
	assert.False(t, verr.HasErrors())

	verr.Add(FieldUsername, "is too long")
	assert.True(t, verr.HasErrors())
	assert.Equal(t, "validation failed: username is too long", verr.Error())
}

func TestSameUsernameIgnoresCase(t *testing.T) {
	assert.True(t, SameUsername("ALICE_01", "alice_01"))
	assert.False(t, SameUsername("alice_01", "alice_02"))
	assert.Equal(t, UsernameKey("Alice"), UsernameKey("aLiCe"))
}
