package assertions

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

type Type string

const (
	TypeStatusCode     Type = "status_code"
	TypeHeaderContains Type = "header_contains"
	TypeHeaderEquals   Type = "header_equals"
	TypeContains       Type = "contains"
	TypeEquals         Type = "equals"
	TypeNotEquals      Type = "not_equals"
	TypeHasPrefix      Type = "has_prefix"
	TypeHasSuffix      Type = "has_suffix"
	TypeRegex          Type = "regex"
	TypeJSONSchema     Type = "json_schema"
)

// SchemaFilePrefix marks a json_schema value that names a file instead of
// holding the schema inline.
const SchemaFilePrefix = "file://"

// Assert is a tagged variant. Status is used by status_code, Key and Value by
// everything else.
type Assert struct {
	Type   Type
	Status uint16
	Key    string
	Value  string
}

func StatusCode(code uint16) Assert {
	return Assert{Type: TypeStatusCode, Status: code}
}

func HeaderContains(key, value string) Assert {
	return Assert{Type: TypeHeaderContains, Key: key, Value: value}
}

func HeaderEquals(key, value string) Assert {
	return Assert{Type: TypeHeaderEquals, Key: key, Value: value}
}

// Body returns a body assertion of type t, one of contains, equals,
// not_equals, has_prefix, has_suffix, regex or json_schema.
func Body(t Type, key, value string) Assert {
	return Assert{Type: t, Key: key, Value: value}
}

// String returns the display name shown in the result tree.
func (a Assert) String() string {
	switch a.Type {
	case TypeStatusCode:
		return fmt.Sprintf("status_code == %d", a.Status)
	case TypeJSONSchema:
		if strings.HasPrefix(a.Value, SchemaFilePrefix) {
			return fmt.Sprintf("json_schema(%s, %s)", a.Key, a.Value)
		}
		return fmt.Sprintf("json_schema(%s, inline)", a.Key)
	default:
		return fmt.Sprintf("%s(%s, %s)", a.Type, a.Key, a.Value)
	}
}

// Validate reports problems that can be found without a response.
func (a Assert) Validate() error {
	switch a.Type {
	case TypeStatusCode:
		if a.Status < 100 || a.Status > 999 {
			return fmt.Errorf("%s: status code %d out of range", a, a.Status)
		}
	case TypeRegex:
		if _, err := regexp.Compile(a.Value); err != nil {
			return fmt.Errorf("%s: %w", a, err)
		}
	case TypeJSONSchema:
		if a.Value == "" {
			return fmt.Errorf("%s: empty schema", a)
		}
	case TypeHeaderContains, TypeHeaderEquals, TypeContains, TypeEquals,
		TypeNotEquals, TypeHasPrefix, TypeHasSuffix:
		if a.Key == "" {
			return fmt.Errorf("%s: missing key", a)
		}
	default:
		return fmt.Errorf("unknown assert type %q", a.Type)
	}
	return nil
}

type assertYAML struct {
	Type  Type      `yaml:"type"`
	Key   string    `yaml:"key"`
	Value yaml.Node `yaml:"value"`
}

func (a *Assert) UnmarshalYAML(value *yaml.Node) error {
	var raw assertYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}

	switch raw.Type {
	case TypeStatusCode:
		var code uint16
		if err := raw.Value.Decode(&code); err != nil {
			return fmt.Errorf("line %d: status_code value: %w", value.Line, err)
		}
		*a = StatusCode(code)
	case TypeJSONSchema:
		schema, err := schemaValue(&raw.Value)
		if err != nil {
			return fmt.Errorf("line %d: json_schema value: %w", value.Line, err)
		}
		*a = Body(TypeJSONSchema, raw.Key, schema)
	case TypeHeaderContains, TypeHeaderEquals, TypeContains, TypeEquals,
		TypeNotEquals, TypeHasPrefix, TypeHasSuffix, TypeRegex:
		var v string
		if err := raw.Value.Decode(&v); err != nil {
			return fmt.Errorf("line %d: %s value: %w", value.Line, raw.Type, err)
		}
		*a = Assert{Type: raw.Type, Key: raw.Key, Value: v}
	default:
		return fmt.Errorf("line %d: unknown assert type %q", value.Line, raw.Type)
	}
	return nil
}

// schemaValue accepts a scalar (file reference or JSON text) or a YAML
// mapping, which is converted to JSON.
func schemaValue(node *yaml.Node) (string, error) {
	if node.Kind == yaml.ScalarNode {
		return node.Value, nil
	}
	var doc any
	if err := node.Decode(&doc); err != nil {
		return "", err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (a Assert) MarshalYAML() (any, error) {
	if a.Type == TypeStatusCode {
		return map[string]any{"type": a.Type, "value": a.Status}, nil
	}
	return map[string]any{"type": a.Type, "key": a.Key, "value": a.Value}, nil
}
