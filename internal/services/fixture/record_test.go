package fixture

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Record
		wantErr  bool
	}{
		{
			name:  "id and name only",
			input: `{"id": 1, "name": "Ana Pop"}`,
			expected: Record{
				ID:         1,
				Name:       "Ana Pop",
				Attributes: map[string]string{},
			},
		},
		{
			name:  "extra keys become attributes",
			input: `{"id": 2, "name": "Ion Dinu", "party": "PNL", "county": "Cluj"}`,
			expected: Record{
				ID:         2,
				Name:       "Ion Dinu",
				Attributes: map[string]string{"party": "PNL", "county": "Cluj"},
			},
		},
		{
			name:  "scalar attributes are stored as text",
			input: `{"id": 3, "name": "Ana Pop", "mandates": 2, "active": true, "score": 7.5}`,
			expected: Record{
				ID:         3,
				Name:       "Ana Pop",
				Attributes: map[string]string{"mandates": "2", "active": "true", "score": "7.5"},
			},
		},
		{
			name:    "missing id",
			input:   `{"name": "Ana Pop"}`,
			wantErr: true,
		},
		{
			name:    "missing name",
			input:   `{"id": 4, "party": "PNL"}`,
			wantErr: true,
		},
		{
			name:    "non-scalar attribute",
			input:   `{"id": 5, "name": "Ana Pop", "mandates": [1, 2]}`,
			wantErr: true,
		},
		{
			name:    "non-numeric id",
			input:   `{"id": "one", "name": "Ana Pop"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var record Record
			err := json.Unmarshal([]byte(tt.input), &record)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, record)
		})
	}
}

func TestRecordUnmarshalJSON_FixtureFile(t *testing.T) {
	input := `[
		{"id": 1, "name": "Ana Pop", "party": "Independent"},
		{"id": 2, "name": "Ion Dinu"}
	]`

	var records []Record
	require.NoError(t, json.Unmarshal([]byte(input), &records))
	require.Len(t, records, 2)
	assert.Equal(t, map[string]string{"party": "Independent"}, records[0].Attributes)
	assert.Empty(t, records[1].Attributes)
}
