package siga

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	testCases := []struct {
		input    string
		expected float64
		valid    bool
	}{
		{input: "7,5", expected: 7.5, valid: true},
		{input: " 10 ", expected: 10, valid: true},
		{input: "1.234,50", expected: 1234.5, valid: true},
		{input: "92,5 %", expected: 92.5, valid: true},
		{input: "8.25", expected: 8.25, valid: true},
		{input: "-1", expected: -1, valid: true},
		{input: "", valid: false},
		{input: "   ", valid: false},
		{input: "Em Curso", valid: false},
		{input: "7,5,1", valid: false},
	}

	for _, test := range testCases {
		t.Run(test.input, func(t *testing.T) {
			result := ParseNumber(test.input)
			require.Equal(t, test.valid, result.Valid())
			if test.valid {
				require.InDelta(t, test.expected, result.Float64(), 0.0001)
			}
		})
	}
}

func TestNumberJSON(t *testing.T) {
	encoded, err := json.Marshal(struct {
		A Number `json:"a"`
		B Number `json:"b"`
	}{A: 7.5, B: NaN()})
	require.NoError(t, err)
	require.JSONEq(t, `{"a": 7.5, "b": null}`, string(encoded))

	var decoded struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
		D Number `json:"d"`
	}
	err = json.Unmarshal([]byte(`{"a": 8, "b": "8,5", "c": null, "d": ""}`), &decoded)
	require.NoError(t, err)
	require.Equal(t, Number(8), decoded.A)
	require.Equal(t, Number(8.5), decoded.B)
	require.False(t, decoded.C.Valid())
	require.False(t, decoded.D.Valid())

	err = json.Unmarshal([]byte(`{"a": true}`), &decoded)
	require.Error(t, err)
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)

	testCases := []struct {
		input    string
		expected time.Time
		fails    bool
	}{
		{input: "15/03/2000", expected: time.Date(2000, 3, 15, 0, 0, 0, 0, loc)},
		{input: " 2024-04-14 ", expected: time.Date(2024, 4, 14, 0, 0, 0, 0, loc)},
		{input: "2024-04-20T10:30:00", expected: time.Date(2024, 4, 20, 10, 30, 0, 0, loc)},
		{input: ""},
		{input: "  /  /   "},
		{input: "0000-00-00"},
		{input: "31/02/2024", fails: true},
		{input: "amanhã", fails: true},
	}

	for _, test := range testCases {
		t.Run(test.input, func(t *testing.T) {
			result, err := ParseDate(test.input, loc)
			if test.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.True(t, test.expected.Equal(result), "expected %s, got %s", test.expected, result)
		})
	}
}

func TestParseClock(t *testing.T) {
	hour, minute, err := parseClock(" 19:20")
	require.NoError(t, err)
	require.Equal(t, 19, hour)
	require.Equal(t, 20, minute)

	for _, invalid := range []string{"", "19", "24:00", "12:60", "ab:cd"} {
		_, _, err := parseClock(invalid)
		require.Error(t, err, invalid)
	}
}

func TestEncodeImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")
	require.Equal(t, "data:image/png;base64,iVBORw0KGgoAAAANSUhEUg==", EncodeImage(png))
	require.Equal(t, "", EncodeImage(nil))
}
