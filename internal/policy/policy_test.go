package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campuslink/campuslink-be/internal/models"
)

func TestCanCreateGroup(t *testing.T) {
	assert.True(t, CanCreateGroup(models.User{ID: "alice", IsSenior: true}))
	assert.False(t, CanCreateGroup(models.User{ID: "bob", IsSenior: false}))
}

func TestCanPostMessage(t *testing.T) {
	assert.True(t, CanPostMessage(models.User{ID: "alice", IsSenior: true}))
	assert.True(t, CanPostMessage(models.User{ID: "bob", IsSenior: false}))
}
