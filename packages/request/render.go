package request

// Applier substitutes placeholders in a single string.
type Applier interface {
	Apply(s string) string
}

// Render returns a copy of t with every templated field passed through a.
// Tags are copied as they are. t itself is not modified.
func Render(t *Template, a Applier) *Template {
	out := &Template{
		Description:     a.Apply(t.Description),
		URL:             a.Apply(t.URL),
		Method:          a.Apply(t.Method),
		Headers:         applyMap(t.Headers, a),
		QueryParameters: applyMap(t.QueryParameters, a),
		Body:            t.Body.Render(a),
	}
	if t.Tags != nil {
		out.Tags = append([]string(nil), t.Tags...)
	}
	return out
}

// Render returns a copy of b with its templated leaves substituted. Raw file
// bodies and multipart file fields have their path substituted, never the
// file contents.
func (b Body) Render(a Applier) Body {
	switch b.Kind() {
	case BodyForm:
		return FormBody(applyMap(b.Form, a))
	case BodyRaw:
		switch b.Raw.Kind {
		case RawFile:
			return RawFileBody(a.Apply(b.Raw.Path))
		default:
			return RawInlineBody(a.Apply(b.Raw.Data))
		}
	case BodyMultipart:
		fields := make(map[string]Field, len(b.Multipart))
		for name, f := range b.Multipart {
			switch f.Kind {
			case FieldFile:
				fields[name] = FileField(a.Apply(f.Path))
			default:
				fields[name] = TextField(a.Apply(f.Data))
			}
		}
		return MultipartBody(fields)
	default:
		return NoBody()
	}
}

func applyMap(m map[string]string, a Applier) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = a.Apply(v)
	}
	return out
}
