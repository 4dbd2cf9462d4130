// Package dealfile decodes deal files written by hand: strict JSON, Hjson
// (comments, unquoted keys, optional commas) or JSON that needs repair.
package dealfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"

	"cre-underwriter/domain"
)

// Format records which strategy decoded the file.
type Format string

const (
	FormatJSON     Format = "json"
	FormatHjson    Format = "hjson"
	FormatRepaired Format = "repaired-json"
)

// Load reads and parses the deal file at path.
func Load(path string) (domain.AnalysisInput, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.AnalysisInput{}, "", fmt.Errorf("read deal file: %w", err)
	}
	return Parse(data)
}

// Parse tries strict JSON, then Hjson, then JSON repair. Hjson goes before
// repair so that comments and unquoted keys keep their meaning.
func Parse(data []byte) (domain.AnalysisInput, Format, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.AnalysisInput{}, "", fmt.Errorf("%w: empty deal file", domain.ErrMalformedRequest)
	}

	var in domain.AnalysisInput
	if err := json.Unmarshal(data, &in); err == nil {
		return in, FormatJSON, nil
	}

	if normalized, err := hjsonToJSON(data); err == nil {
		in = domain.AnalysisInput{}
		if err := json.Unmarshal(normalized, &in); err == nil {
			return in, FormatHjson, nil
		}
	}

	repaired, err := jsonrepair.RepairJSON(string(data))
	if err == nil {
		in = domain.AnalysisInput{}
		if err := json.Unmarshal([]byte(repaired), &in); err == nil {
			return in, FormatRepaired, nil
		}
	}

	return domain.AnalysisInput{}, "", fmt.Errorf("%w: deal file is not JSON or Hjson", domain.ErrMalformedRequest)
}

// hjsonToJSON round-trips through a generic value so the typed decode below
// goes through encoding/json and its struct tags.
func hjsonToJSON(data []byte) ([]byte, error) {
	var v any
	if err := hjson.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if _, ok := v.(map[string]any); !ok {
		return nil, fmt.Errorf("deal file must be an object")
	}
	return json.Marshal(v)
}
