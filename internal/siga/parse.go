package siga

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Number is a value parsed out of the portal. NaN means the portal served
// something that could not be read as a number (or nothing at all).
type Number float64

// NaN is the sentinel for absent or unparseable numbers.
func NaN() Number {
	return Number(math.NaN())
}

func (n Number) Valid() bool {
	return !math.IsNaN(float64(n))
}

func (n Number) Float64() float64 {
	return float64(n)
}

func (n Number) String() string {
	if !n.Valid() {
		return ""
	}
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// MarshalJSON writes NaN as null since json has no representation for it.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid() || math.IsInf(float64(n), 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(n), 'f', -1, 64)), nil
}

// UnmarshalJSON accepts json numbers, strings in the portal's number format and null.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = NaN()
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		err := json.Unmarshal(data, &str)
		if err != nil {
			return err
		}
		*n = ParseNumber(str)
		return nil
	}
	value, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", string(data), err)
	}
	*n = Number(value)
	return nil
}

// ParseNumber converts a pt-BR formatted number ("7,5", "1.234,50", "85 %") to a Number.
// Empty or invalid input returns NaN.
func ParseNumber(str string) Number {
	str = strings.TrimSpace(str)
	str = strings.TrimSuffix(str, "%")
	str = strings.ReplaceAll(str, " ", "")
	if str == "" {
		return NaN()
	}
	if strings.Contains(str, ",") {
		str = strings.ReplaceAll(str, ".", "")
		str = strings.Replace(str, ",", ".", 1)
	}
	value, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return NaN()
	}
	return Number(value)
}

var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006/01/02",
}

func isBlankDate(str string) bool {
	if str == "" || str == "0000-00-00" || strings.HasPrefix(str, "0000-00-00T") {
		return true
	}
	return strings.Trim(str, " /:-") == ""
}

// ParseDate reads one of the date formats the portal serves. A blank date
// (including the "  /  /   " mask) returns the zero time and no error.
func ParseDate(str string, loc *time.Location) (time.Time, error) {
	str = strings.TrimSpace(str)
	if isBlankDate(str) {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		parsed, err := time.ParseInLocation(layout, str, loc)
		if err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unknown date format %q", str)
}

// parseClock reads "HH:MM".
func parseClock(str string) (hour int, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(str), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q", str)
	}
	hour, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", str)
	}
	minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", str)
	}
	return hour, minute, nil
}

// EncodeImage encodes raw image bytes as a data uri.
func EncodeImage(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return fmt.Sprintf(
		"data:%s;base64,%s",
		http.DetectContentType(data),
		base64.StdEncoding.EncodeToString(data),
	)
}
