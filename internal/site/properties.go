package site

import (
	"encoding/json"
	"time"
)

// Properties are the display and provenance attributes of a map element.
// Keys without a typed field are kept in Extra. Both JSON and YAML encode
// Properties as a single flat object.
type Properties struct {
	GeneratedAt     *time.Time     `json:"generatedAt,omitempty" yaml:"generatedAt,omitempty"`
	Extra           map[string]any `json:"-" yaml:",inline"`
	Label           string         `json:"label,omitempty" yaml:"label,omitempty"`
	Color           string         `json:"color,omitempty" yaml:"color,omitempty"`
	FillColor       string         `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	Description     string         `json:"description,omitempty" yaml:"description,omitempty"`
	SourcePolygonID string         `json:"sourcePolygonId,omitempty" yaml:"sourcePolygonId,omitempty"`
	Opacity         float64        `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	StrokeWidth     float64        `json:"strokeWidth,omitempty" yaml:"strokeWidth,omitempty"`
	BufferDistance  float64        `json:"bufferDistance,omitempty" yaml:"bufferDistance,omitempty"` // meters
}

var knownPropertyKeys = map[string]struct{}{
	"generatedAt":     {},
	"label":           {},
	"color":           {},
	"fillColor":       {},
	"description":     {},
	"sourcePolygonId": {},
	"opacity":         {},
	"strokeWidth":     {},
	"bufferDistance":  {},
}

// plainProperties drops the custom codecs of Properties.
type plainProperties Properties

// MarshalJSON inlines Extra next to the typed fields.
func (p Properties) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(plainProperties(p))
	if err != nil || len(p.Extra) == 0 {
		return known, err
	}

	merged := make(map[string]json.RawMessage, len(p.Extra)+len(knownPropertyKeys))
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for k, v := range p.Extra {
		if _, typed := knownPropertyKeys[k]; typed {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = raw
	}

	return json.Marshal(merged)
}

// UnmarshalJSON fills the typed fields and moves unknown keys into Extra.
func (p *Properties) UnmarshalJSON(data []byte) error {
	var typed plainProperties
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k, raw := range all {
		if _, ok := knownPropertyKeys[k]; ok {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		if typed.Extra == nil {
			typed.Extra = make(map[string]any)
		}
		typed.Extra[k] = v
	}

	*p = Properties(typed)
	return nil
}

// Clone returns a deep copy.
func (p Properties) Clone() Properties {
	out := p
	if p.GeneratedAt != nil {
		t := *p.GeneratedAt
		out.GeneratedAt = &t
	}
	if p.Extra != nil {
		out.Extra = deepCopyValue(p.Extra).(map[string]any)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = deepCopyValue(item)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = deepCopyValue(item)
		}
		return s
	default:
		return val
	}
}
