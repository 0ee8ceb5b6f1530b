// Package openapi models the minimal structural contract an OpenAPI 3.x
// document must satisfy before it is handed to generation. Path and schema
// contents deliberately pass through unchecked; semantic validation is the
// generator's concern.
package openapi

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// versionPattern accepts 3.<minor>.<patch> only. "2.0" and "4.0.0" carry the
// wrong major version; "3.0" is malformed.
var versionPattern = regexp.MustCompile(`^3\.\d+\.\d+$`)

// Info carries the identifying fields required of every document.
type Info struct {
	Title   string
	Version string
}

// Components holds the optional reusable-object section. Only the schemas
// mapping is modeled; its values are arbitrary.
type Components struct {
	Schemas map[string]any
}

// Document is a validated OpenAPI 3.x document. The raw decoded value is kept
// alongside the typed view so serialization preserves the exact submitted
// shape, with no normalization or defaulting.
type Document struct {
	OpenAPI    string
	Info       Info
	Paths      map[string]any
	Components *Components

	raw map[string]any
}

// MarshalJSON re-emits the document exactly as it was submitted.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.raw)
}

// Issue describes one field that failed structural validation.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Issues collects every failing field of a document. It implements error and
// summarizes the first few entries.
type Issues []Issue

func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	parts := make([]string, 0, maxShown+1)
	for i, it := range iss {
		if i == maxShown {
			parts = append(parts, fmt.Sprintf("... (%d total)", len(iss)))
			break
		}
		parts = append(parts, it.Field+": "+it.Message)
	}
	return strings.Join(parts, "; ")
}

// Validate checks the structural contract: an `openapi` version string
// matching 3.<minor>.<patch>, string `info.title` and `info.version`, a
// `paths` mapping (an empty one is fine), and, when present, object-shaped
// `components` and `components.schemas`. Every check runs so the caller sees
// all failing fields at once. Pure function: re-validating the same value
// yields the same result.
func Validate(raw any) (Document, Issues) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Document{}, Issues{{Field: "document", Message: "must be a JSON object"}}
	}

	var iss Issues
	doc := Document{raw: obj}

	if v, present := obj["openapi"]; !present {
		iss = append(iss, Issue{Field: "openapi", Message: "required version string is missing"})
	} else if s, isString := v.(string); !isString {
		iss = append(iss, Issue{Field: "openapi", Message: "must be a string"})
	} else if !versionPattern.MatchString(s) {
		iss = append(iss, Issue{Field: "openapi", Message: `must match the pattern 3.<minor>.<patch>, for example "3.0.3"`})
	} else {
		doc.OpenAPI = s
	}

	if v, present := obj["info"]; !present {
		iss = append(iss, Issue{Field: "info", Message: "required object is missing"})
	} else if info, isObject := v.(map[string]any); !isObject {
		iss = append(iss, Issue{Field: "info", Message: "must be an object"})
	} else {
		if tv, present := info["title"]; !present {
			iss = append(iss, Issue{Field: "info.title", Message: "required string is missing"})
		} else if s, isString := tv.(string); !isString {
			iss = append(iss, Issue{Field: "info.title", Message: "must be a string"})
		} else {
			doc.Info.Title = s
		}
		if vv, present := info["version"]; !present {
			iss = append(iss, Issue{Field: "info.version", Message: "required string is missing"})
		} else if s, isString := vv.(string); !isString {
			iss = append(iss, Issue{Field: "info.version", Message: "must be a string"})
		} else {
			doc.Info.Version = s
		}
	}

	if v, present := obj["paths"]; !present {
		iss = append(iss, Issue{Field: "paths", Message: "required object is missing"})
	} else if paths, isObject := v.(map[string]any); !isObject {
		iss = append(iss, Issue{Field: "paths", Message: "must be an object mapping route paths to operations"})
	} else {
		doc.Paths = paths
	}

	if v, present := obj["components"]; present {
		if comps, isObject := v.(map[string]any); !isObject {
			iss = append(iss, Issue{Field: "components", Message: "must be an object when present"})
		} else {
			doc.Components = &Components{}
			if sv, schemasPresent := comps["schemas"]; schemasPresent {
				if schemas, isObject := sv.(map[string]any); !isObject {
					iss = append(iss, Issue{Field: "components.schemas", Message: "must be an object when present"})
				} else {
					doc.Components.Schemas = schemas
				}
			}
		}
	}

	if len(iss) > 0 {
		return Document{}, iss
	}
	return doc, nil
}
