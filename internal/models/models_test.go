package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPair(t *testing.T) {
	tests := []struct {
		a, b   string
		lo, hi string
	}{
		{"alice", "bob", "alice", "bob"},
		{"bob", "alice", "alice", "bob"},
		{"B", "a", "B", "a"}, // byte order, not case-folded
		{"a", "ab", "a", "ab"},
		{"7c9e6679-7425-40de-944b-e07fc1f90ae7", "1b4e28ba-2fa1-11d2-883f-0016d3cca427",
			"1b4e28ba-2fa1-11d2-883f-0016d3cca427", "7c9e6679-7425-40de-944b-e07fc1f90ae7"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.a, tt.b), func(t *testing.T) {
			lo, hi := CanonicalPair(tt.a, tt.b)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)

			rlo, rhi := CanonicalPair(tt.b, tt.a)
			assert.Equal(t, lo, rlo)
			assert.Equal(t, hi, rhi)
		})
	}
}

func TestFriendshipBeforeCreate(t *testing.T) {
	f := &Friendship{User1ID: "zed", User2ID: "amy"}
	require.NoError(t, f.BeforeCreate(nil))
	assert.Equal(t, "amy", f.User1ID)
	assert.Equal(t, "zed", f.User2ID)
	assert.Equal(t, "zed", f.Other("amy"))
	assert.Equal(t, "amy", f.Other("zed"))

	self := &Friendship{User1ID: "amy", User2ID: "amy"}
	assert.True(t, IsCode(self.BeforeCreate(nil), CodeValidation))
}

func TestFriendRequestBeforeCreate(t *testing.T) {
	r := &FriendRequest{SenderID: "u2", ReceiverID: "u1"}
	require.NoError(t, r.BeforeCreate(nil))
	assert.Equal(t, RequestStatusPending, r.Status)
	assert.Equal(t, "u1", r.PairLo)
	assert.Equal(t, "u2", r.PairHi)
	assert.Equal(t, "u2", r.SenderID, "direction must be preserved")

	self := &FriendRequest{SenderID: "u1", ReceiverID: "u1"}
	assert.True(t, IsCode(self.BeforeCreate(nil), CodeValidation))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad"), 400},
		{"conflict", NewConflictError("dup"), 400},
		{"not found", NewNotFoundError("missing"), 404},
		{"unauthorized", NewUnauthorizedError("no token"), 401},
		{"forbidden", NewForbiddenError("bad token"), 403},
		{"internal", NewInternalError(errors.New("boom")), 500},
		{"wrapped", fmt.Errorf("accept: %w", NewNotFoundError("missing")), 404},
		{"plain", errors.New("plain"), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestInternalErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}
