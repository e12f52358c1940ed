package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterestTokens(t *testing.T) {
	assert.Nil(t, Profile{}.InterestTokens())
	assert.Equal(t, []string{"hiking"}, Profile{Interests: "hiking"}.InterestTokens())
	assert.Equal(t,
		[]string{"hiking", "photography", "surfing"},
		Profile{Interests: " hiking,photography , surfing,"}.InterestTokens())
}

func TestLocationPrefix(t *testing.T) {
	assert.Equal(t, "", Profile{}.LocationPrefix())
	assert.Equal(t, "Lisbon", Profile{Location: "Lisbon"}.LocationPrefix())
	assert.Equal(t, "Lisbon", Profile{Location: "Lisbon, Portugal"}.LocationPrefix())
	assert.Equal(t, "Rio de Janeiro", Profile{Location: " Rio de Janeiro , Brazil"}.LocationPrefix())
}

func TestToCompact(t *testing.T) {
	user := User{Name: "Alice", Profile: Profile{Avatar: "alice.png"}}
	compact := user.ToCompact()
	assert.Equal(t, user.ID, compact.ID)
	assert.Equal(t, "Alice", compact.Name)
	assert.Equal(t, "alice.png", compact.Avatar)
}
