package orders

import (
	"testing"

	"fleet-dispatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from models.OrderStatus
		to   models.OrderStatus
		ok   bool
	}{
		{"created to in_progress", models.StatusCreated, models.StatusInProgress, true},
		{"created to cancelled", models.StatusCreated, models.StatusCancelled, true},
		{"created to completed", models.StatusCreated, models.StatusCompleted, false},
		{"in_progress to completed", models.StatusInProgress, models.StatusCompleted, true},
		{"in_progress to cancelled", models.StatusInProgress, models.StatusCancelled, true},
		{"in_progress reassignment", models.StatusInProgress, models.StatusInProgress, true},
		{"in_progress back to created", models.StatusInProgress, models.StatusCreated, false},
		{"completed is terminal", models.StatusCompleted, models.StatusInProgress, false},
		{"completed to cancelled", models.StatusCompleted, models.StatusCancelled, false},
		{"cancelled is terminal", models.StatusCancelled, models.StatusInProgress, false},
		{"cancelled to completed", models.StatusCancelled, models.StatusCompleted, false},
		{"unknown status", models.OrderStatus("pending"), models.StatusInProgress, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to))
		})
	}
}

func TestValidateTransition(t *testing.T) {
	require.NoError(t, ValidateTransition(models.StatusCreated, models.StatusInProgress))

	err := ValidateTransition(models.StatusCompleted, models.StatusInProgress)
	require.Error(t, err)
}
