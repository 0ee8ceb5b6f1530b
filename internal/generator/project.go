package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// File is one generated source file.
type File struct {
	Path    string
	Content string
}

// Project maps relative file paths to file contents and remembers the order
// in which paths first appeared. Encoding a Project reproduces the
// producer's key order, so the file list reported alongside it stays stable
// across the whole response.
type Project struct {
	files map[string]string
	order []string
}

// NewProject builds a project from files in the given order.
func NewProject(files ...File) Project {
	var p Project
	for _, f := range files {
		p.set(f.Path, f.Content)
	}
	return p
}

// set records content under path. A repeated path keeps its original
// position and takes the new content.
func (p *Project) set(path, content string) {
	if p.files == nil {
		p.files = make(map[string]string)
	}
	if _, ok := p.files[path]; !ok {
		p.order = append(p.order, path)
	}
	p.files[path] = content
}

// Len reports the number of distinct file paths.
func (p Project) Len() int { return len(p.order) }

// Paths lists the file paths in producer order.
func (p Project) Paths() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Content returns the content stored under path.
func (p Project) Content(path string) (string, bool) {
	c, ok := p.files[path]
	return c, ok
}

// UnmarshalJSON decodes a flat JSON object of string values, recording key
// order as it appears in the document. Non-string values are rejected.
func (p *Project) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("project must be a JSON object, got %v", tok)
	}

	*p = Project{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		path, ok := tok.(string)
		if !ok {
			return fmt.Errorf("project key must be a string, got %v", tok)
		}
		var content *string
		if err := dec.Decode(&content); err != nil || content == nil {
			return fmt.Errorf("file %q: content must be a string", path)
		}
		p.set(path, *content)
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON encodes the files as a JSON object in producer order.
func (p Project) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, path := range p.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(path)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(p.files[path])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
