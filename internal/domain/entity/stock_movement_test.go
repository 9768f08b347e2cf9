package entity_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-engine/internal/domain/entity"
)

func TestParseMovementType(t *testing.T) {
	cases := map[string]entity.MovementType{
		"RECEIPT":    entity.MovementTypeReceipt,
		"issue":      entity.MovementTypeIssue,
		" Transfer ": entity.MovementTypeTransfer,
		"ADJUSTMENT": entity.MovementTypeAdjustment,
	}
	for in, want := range cases {
		got, err := entity.ParseMovementType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := entity.ParseMovementType("RETURN")
	assert.Error(t, err)
}

func TestMovementType_JSON(t *testing.T) {
	var body struct {
		Type entity.MovementType `json:"type"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"transfer"}`), &body))
	assert.Equal(t, entity.MovementTypeTransfer, body.Type)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"TRANSFER"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"type":"gift"}`), &body))
}
