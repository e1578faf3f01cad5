package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "changepoint/pkg/domain-errors"
)

func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseChangeEventID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseCompanyID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), id)
	})

	t.Run("accepts uppercase UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseTaxonomyItemID(strings.ToUpper(validUUID.String()))
		require.NoError(t, err)
		assert.Equal(t, TaxonomyItemID(validUUID), id)
	})
}

func TestParseID_SecurityInvariants(t *testing.T) {
	valid := uuid.New().String()
	tests := []struct {
		name  string
		input string
	}{
		{"whitespace only", "   "},
		{"null byte injection", valid + "\x00"},
		{"oversized input", strings.Repeat("a", 10_000)},
		{"sql fragment", "'; DROP TABLE change_events;--"},
		{"invalid utf8", string([]byte{0xff, 0xfe, 0xfd})},
		{"zero width suffix", valid + "​"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePolicySettingID(tt.input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestTypedIDsRoundTripThroughJSON(t *testing.T) {
	type payload struct {
		EventID  ChangeEventID        `json:"eventId"`
		ItemID   InspectionItemID     `json:"itemId"`
		Template InspectionTemplateID `json:"templateId"`
	}
	in := payload{
		EventID:  ChangeEventID(uuid.New()),
		ItemID:   InspectionItemID(uuid.New()),
		Template: InspectionTemplateID(uuid.New()),
	}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), in.EventID.String())

	var out payload
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestTypedIDUnmarshalRejectsNil(t *testing.T) {
	var id ChangeEventID
	err := json.Unmarshal([]byte(`"`+uuid.Nil.String()+`"`), &id)
	require.Error(t, err)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("tier2_editor")
	require.NoError(t, err)
	assert.Equal(t, RoleTier2Editor, r)

	_, err = ParseRole("SUPERUSER")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	assert.True(t, RoleExecApprover.In(RoleAdmin, RoleExecApprover))
	assert.False(t, RoleCustomerViewer.In(RoleAdmin, RoleTier1Editor))
}
