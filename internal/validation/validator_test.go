package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/Cheertaboi/tips-console/internal/errors"
)

type moveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

type addRequest struct {
	TipIDs []string `json:"tip_ids" validate:"required,min=1,max=3,dive,required"`
}

func TestValidate(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(moveRequest{Direction: "up"}))
	assert.NoError(t, v.Validate(addRequest{TipIDs: []string{"tip-1"}}))

	tests := []struct {
		name  string
		input any
		field string
		msg   string
	}{
		{"missing", moveRequest{}, "direction", "is required"},
		{"oneof", moveRequest{Direction: "left"}, "direction", "must be one of: up down"},
		{"too many", addRequest{TipIDs: []string{"a", "b", "c", "d"}}, "tip_ids", "must contain at most 3 items"},
		{"empty element", addRequest{TipIDs: []string{"a", ""}}, "tip_ids[1]", "is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var de *domainerrors.Error
			require.ErrorAs(t, err, &de)
			details, ok := de.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.msg, details[tt.field])
		})
	}
}
