package request

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// BodyType selects the active body encoding.
type BodyType string

const (
	BodyNone      BodyType = "none"
	BodyForm      BodyType = "form"
	BodyRaw       BodyType = "raw"
	BodyMultipart BodyType = "multipart"
)

// RawKind tells whether raw body content comes from a file or inline text.
type RawKind string

const (
	RawFile   RawKind = "file"
	RawInline RawKind = "raw"
)

// FieldKind tells whether a multipart field is text or a file upload.
type FieldKind string

const (
	FieldText FieldKind = "text"
	FieldFile FieldKind = "file"
)

// Body is a tagged variant. Only the fields belonging to Type are used.
type Body struct {
	Type      BodyType
	Form      map[string]string
	Raw       RawBody
	Multipart map[string]Field
}

type RawBody struct {
	Kind RawKind
	Path string // RawFile
	Data string // RawInline
}

type Field struct {
	Kind FieldKind
	Data string // FieldText
	Path string // FieldFile
}

func NoBody() Body { return Body{Type: BodyNone} }

func FormBody(data map[string]string) Body {
	return Body{Type: BodyForm, Form: data}
}

func RawFileBody(path string) Body {
	return Body{Type: BodyRaw, Raw: RawBody{Kind: RawFile, Path: path}}
}

func RawInlineBody(data string) Body {
	return Body{Type: BodyRaw, Raw: RawBody{Kind: RawInline, Data: data}}
}

func MultipartBody(fields map[string]Field) Body {
	return Body{Type: BodyMultipart, Multipart: fields}
}

func TextField(data string) Field { return Field{Kind: FieldText, Data: data} }

func FileField(path string) Field { return Field{Kind: FieldFile, Path: path} }

// Kind returns the body type, treating the zero value as BodyNone.
func (b Body) Kind() BodyType {
	if b.Type == "" {
		return BodyNone
	}
	return b.Type
}

func (b Body) IsZero() bool {
	return b.Kind() == BodyNone
}

type bodyYAML struct {
	Type BodyType  `yaml:"type"`
	Data yaml.Node `yaml:"data,omitempty"`
	Body *RawBody  `yaml:"body,omitempty"`
}

func (b *Body) UnmarshalYAML(value *yaml.Node) error {
	var raw bodyYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}

	switch raw.Type {
	case "", BodyNone:
		*b = NoBody()
	case BodyForm:
		data := map[string]string{}
		if !raw.Data.IsZero() {
			if err := raw.Data.Decode(&data); err != nil {
				return fmt.Errorf("form data: %w", err)
			}
		}
		*b = FormBody(data)
	case BodyRaw:
		if raw.Body == nil {
			return fmt.Errorf("line %d: raw body requires a body entry", value.Line)
		}
		*b = Body{Type: BodyRaw, Raw: *raw.Body}
	case BodyMultipart:
		fields := map[string]Field{}
		if !raw.Data.IsZero() {
			if err := raw.Data.Decode(&fields); err != nil {
				return fmt.Errorf("multipart data: %w", err)
			}
		}
		*b = MultipartBody(fields)
	default:
		return fmt.Errorf("line %d: unknown body type %q", value.Line, raw.Type)
	}
	return nil
}

func (b Body) MarshalYAML() (any, error) {
	switch b.Kind() {
	case BodyForm:
		return map[string]any{"type": BodyForm, "data": b.Form}, nil
	case BodyRaw:
		return map[string]any{"type": BodyRaw, "body": b.Raw}, nil
	case BodyMultipart:
		return map[string]any{"type": BodyMultipart, "data": b.Multipart}, nil
	default:
		return map[string]any{"type": BodyNone}, nil
	}
}

type rawBodyYAML struct {
	Type RawKind `yaml:"type"`
	Path string  `yaml:"path,omitempty"`
	Data string  `yaml:"data,omitempty"`
}

func (r *RawBody) UnmarshalYAML(value *yaml.Node) error {
	var raw rawBodyYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch raw.Type {
	case RawFile:
		*r = RawBody{Kind: RawFile, Path: raw.Path}
	case RawInline:
		*r = RawBody{Kind: RawInline, Data: raw.Data}
	default:
		return fmt.Errorf("line %d: unknown raw body type %q", value.Line, raw.Type)
	}
	return nil
}

func (r RawBody) MarshalYAML() (any, error) {
	if r.Kind == RawFile {
		return rawBodyYAML{Type: RawFile, Path: r.Path}, nil
	}
	return rawBodyYAML{Type: RawInline, Data: r.Data}, nil
}

type fieldYAML struct {
	Type FieldKind `yaml:"type"`
	Data string    `yaml:"data,omitempty"`
	Path string    `yaml:"path,omitempty"`
}

func (f *Field) UnmarshalYAML(value *yaml.Node) error {
	var raw fieldYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch raw.Type {
	case FieldText:
		*f = TextField(raw.Data)
	case FieldFile:
		*f = FileField(raw.Path)
	default:
		return fmt.Errorf("line %d: unknown multipart field type %q", value.Line, raw.Type)
	}
	return nil
}

func (f Field) MarshalYAML() (any, error) {
	if f.Kind == FieldFile {
		return fieldYAML{Type: FieldFile, Path: f.Path}, nil
	}
	return fieldYAML{Type: FieldText, Data: f.Data}, nil
}
