package inference

import "encoding/json"

// Kind tags the shape of a value returned by a remote model
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindFile
	KindList
)

// Output is a normalized model output: a bare string, a file descriptor
// ({url, path}), a list of outputs, or nothing usable.
type Output struct {
	Kind Kind
	Str  string
	File FileRef
	List []Output
}

// FileRef is the subset of Gradio's FileData we care about
type FileRef struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// ParseOutput decodes raw JSON into an Output. Invalid JSON yields KindNone.
func ParseOutput(raw json.RawMessage) Output {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Output{}
	}
	return fromValue(v)
}

func fromValue(v any) Output {
	switch t := v.(type) {
	case string:
		return Output{Kind: KindString, Str: t}
	case map[string]any:
		url, _ := t["url"].(string)
		path, _ := t["path"].(string)
		return Output{Kind: KindFile, File: FileRef{URL: url, Path: path}}
	case []any:
		list := make([]Output, 0, len(t))
		for _, item := range t {
			list = append(list, fromValue(item))
		}
		return Output{Kind: KindList, List: list}
	default:
		return Output{}
	}
}

// Len is the number of elements of a list output and zero otherwise
func (o Output) Len() int {
	if o.Kind != KindList {
		return 0
	}
	return len(o.List)
}

// First returns the first list element or a none output
func (o Output) First() Output {
	if o.Len() == 0 {
		return Output{}
	}
	return o.List[0]
}

// Last returns the last list element or a none output
func (o Output) Last() Output {
	if o.Len() == 0 {
		return Output{}
	}
	return o.List[len(o.List)-1]
}

// URL resolves the image reference an output points at.
// Files prefer url over path and lists resolve through their first element.
func (o Output) URL() (string, bool) {
	switch o.Kind {
	case KindString:
		return o.Str, o.Str != ""
	case KindFile:
		if o.File.URL != "" {
			return o.File.URL, true
		}
		return o.File.Path, o.File.Path != ""
	case KindList:
		return o.First().URL()
	case KindNone:
		return "", false
	default:
		return "", false
	}
}
