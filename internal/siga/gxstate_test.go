package siga

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeGXState(t *testing.T) {
	state, err := DecodeGXState(`{"vDESCRICAO":"nota \> 6","vCOUNT":3,"vLIST":[1,2]}`)
	require.NoError(t, err)

	description, ok := state.String("vDESCRICAO")
	require.True(t, ok)
	require.Equal(t, "nota &gt 6", description)

	count, ok := state.String("vCOUNT")
	require.True(t, ok)
	require.Equal(t, "3", count)

	_, ok = state.String("vLIST")
	require.False(t, ok)
	_, ok = state.String("vMISSING")
	require.False(t, ok)

	var list []int
	require.NoError(t, state.Decode("vLIST", &list))
	require.Equal(t, []int{1, 2}, list)
	require.Error(t, state.Decode("vMISSING", &list))

	_, err = DecodeGXState(`{"broken":`)
	require.Error(t, err)
}

func TestResolvePrefix(t *testing.T) {
	testCases := []struct {
		name     string
		keys     []string
		expected string
		fails    bool
	}{
		{
			name:     "prefixed",
			keys:     []string{"MPW0041vPRO_PESSOALNOME", "vACD_CURSONOME_MPAGE"},
			expected: "MPW0041",
		},
		{
			name:     "prefixed wins over unprefixed",
			keys:     []string{"vPRO_PESSOALNOME", "MPW0039vPRO_PESSOALNOME"},
			expected: "MPW0039",
		},
		{
			name:     "unprefixed only",
			keys:     []string{"vPRO_PESSOALNOME"},
			expected: "",
		},
		{
			name:     "several prefixes pick the first sorted",
			keys:     []string{"W0050vPRO_PESSOALNOME", "MPW0041vPRO_PESSOALNOME"},
			expected: "MPW0041",
		},
		{
			name:  "no name key",
			keys:  []string{"vACD_CURSONOME_MPAGE"},
			fails: true,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			state := GXState{}
			for _, k := range test.keys {
				state[k] = json.RawMessage(`""`)
			}
			prefix, err := ResolvePrefix(state)
			if test.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.expected, prefix)
		})
	}
}

func TestFlexInt(t *testing.T) {
	var values []flexInt
	err := json.Unmarshal([]byte(`[12, "34", " 56 ", "", null]`), &values)
	require.NoError(t, err)
	require.Equal(t, []flexInt{12, 34, 56, 0, 0}, values)

	err = json.Unmarshal([]byte(`["abc"]`), &values)
	require.Error(t, err)
}

func TestGridRowField(t *testing.T) {
	rows, err := decodeGrid(`[["IES100", 3, null, {"a": 1}]]`)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	value, err := row.field(0)
	require.NoError(t, err)
	require.Equal(t, "IES100", value)

	value, err = row.field(1)
	require.NoError(t, err)
	require.Equal(t, "3", value)

	value, err = row.field(2)
	require.NoError(t, err)
	require.Equal(t, "", value)

	_, err = row.field(3)
	require.Error(t, err)
	_, err = row.field(4)
	require.Error(t, err)
}
