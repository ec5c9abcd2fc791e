package siga

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// GXState is the json state blob GeneXus embeds in the hidden `GXState` input of every page.
type GXState map[string]json.RawMessage

// DecodeGXState parses a raw state blob. The portal escapes `>` as `\>`, which is not a
// valid json escape, so it is replaced before decoding.
func DecodeGXState(raw string) (GXState, error) {
	raw = strings.ReplaceAll(raw, `\>`, "&gt")
	var state GXState
	err := json.Unmarshal([]byte(raw), &state)
	if err != nil {
		return nil, err
	}
	return state, nil
}

// String returns the value under `key` as text, numbers are returned in their json form.
func (s GXState) String(key string) (string, bool) {
	raw, ok := s[key]
	if !ok {
		return "", false
	}
	var str string
	err := json.Unmarshal(raw, &str)
	if err == nil {
		return str, true
	}
	var num json.Number
	err = json.Unmarshal(raw, &num)
	if err == nil {
		return num.String(), true
	}
	return "", false
}

// Decode unmarshals the value under `key` into `out`.
func (s GXState) Decode(key string, out any) error {
	raw, ok := s[key]
	if !ok {
		return fmt.Errorf("key %s not found", key)
	}
	return json.Unmarshal(raw, out)
}

const prefixAnchorKey = "vPRO_PESSOALNOME"

// ResolvePrefix finds the dynamic web component prefix (ex. "MPW0041") the portal puts in front
// of the student's fields. It is discovered from the key holding the student's name.
func ResolvePrefix(state GXState) (string, error) {
	var candidates []string
	for key := range state {
		if strings.HasSuffix(key, prefixAnchorKey) {
			candidates = append(candidates, strings.TrimSuffix(key, prefixAnchorKey))
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no key ending in %s", prefixAnchorKey)
	}
	slices.Sort(candidates)
	// a prefixed key wins over the unprefixed one
	for _, c := range candidates {
		if c != "" {
			return c, nil
		}
	}
	return "", nil
}

func findGXState(doc *goquery.Document, page string) (GXState, error) {
	raw, ok := doc.Find("[name=GXState]").First().Attr("value")
	if !ok {
		return nil, missing(page, "GXState")
	}
	state, err := DecodeGXState(raw)
	if err != nil {
		return nil, malformed(page, "GXState", err)
	}
	return state, nil
}

// flexInt is an integer that the portal sometimes serves as a string.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	str := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if str == "" || str == "null" {
		*f = 0
		return nil
	}
	value, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64)
	if err != nil {
		return fmt.Errorf("parse integer %q: %w", str, err)
	}
	*f = flexInt(value)
	return nil
}

// gridRow is one row of a GeneXus grid (`Grid*ContainerDataV`), a positional array.
type gridRow []json.RawMessage

func (r gridRow) field(i int) (string, error) {
	if i >= len(r) {
		return "", fmt.Errorf("row has %d fields, wanted field %d", len(r), i)
	}
	var str string
	err := json.Unmarshal(r[i], &str)
	if err == nil {
		return str, nil
	}
	var num json.Number
	err = json.Unmarshal(r[i], &num)
	if err == nil {
		return num.String(), nil
	}
	if string(r[i]) == "null" {
		return "", nil
	}
	return "", fmt.Errorf("field %d is not a scalar", i)
}

func decodeGrid(raw string) ([]gridRow, error) {
	var rows []gridRow
	err := json.Unmarshal([]byte(raw), &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func findGrid(doc *goquery.Document, page, name string) ([]gridRow, error) {
	raw, ok := doc.Find(fmt.Sprintf(`[name="%s"]`, name)).First().Attr("value")
	if !ok {
		return nil, missing(page, name)
	}
	rows, err := decodeGrid(raw)
	if err != nil {
		return nil, malformed(page, name, err)
	}
	return rows, nil
}
