package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    TransactionStatus
		to      TransactionStatus
		allowed bool
	}{
		{"pending to completed", StatusPending, StatusCompleted, true},
		{"pending to failed", StatusPending, StatusFailed, true},
		{"pending to refunded", StatusPending, StatusRefunded, false},
		{"completed to refunded", StatusCompleted, StatusRefunded, true},
		{"completed to pending", StatusCompleted, StatusPending, false},
		{"completed to failed", StatusCompleted, StatusFailed, false},
		{"failed is terminal", StatusFailed, StatusCompleted, false},
		{"refunded is terminal", StatusRefunded, StatusPending, false},
		{"same status is a no-op", StatusPending, StatusPending, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus(StatusPending))
	assert.True(t, IsValidStatus(StatusCompleted))
	assert.True(t, IsValidStatus(StatusFailed))
	assert.True(t, IsValidStatus(StatusRefunded))
	assert.False(t, IsValidStatus("cancelled"))
	assert.False(t, IsValidStatus(""))
}
