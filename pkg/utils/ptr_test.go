package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActorRef(t *testing.T) {
	assert.Nil(t, ActorRef(0), "системное действие без пользователя")

	ref := ActorRef(42)
	if assert.NotNil(t, ref) {
		assert.Equal(t, uint64(42), *ref)
	}
}

func TestSafeDeref(t *testing.T) {
	assert.Equal(t, "", SafeDeref[string](nil))
	assert.Equal(t, "x", SafeDeref(ToPtr("x")))
}
