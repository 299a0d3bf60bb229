package redfish

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Resource is one fetched object from the service. Body holds the decoded
// payload tree; Raw keeps the original bytes so reference extraction can
// preserve the document order that the decoded map loses.
type Resource struct {
	Path string
	Body map[string]interface{}
	Raw  []byte
}

// NewResource decodes a payload into a Resource
func NewResource(path string, payload []byte) (*Resource, error) {
	var body map[string]interface{}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("failed to decode resource body: %w", err)
	}

	return &Resource{
		Path: path,
		Body: body,
		Raw:  payload,
	}, nil
}

// Identifier returns the resource's @odata.id property.
// The second return is false when the property is absent or not a string.
func (r *Resource) Identifier() (string, bool) {
	id, ok := r.Body["@odata.id"].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// DeclaredType returns the resource's @odata.type property with the leading
// '#' stripped, e.g. "Chassis.v1_0_0.Chassis".
func (r *Resource) DeclaredType() (string, bool) {
	t, ok := r.Body["@odata.type"].(string)
	if !ok {
		return "", false
	}

	t = strings.TrimPrefix(t, "#")
	if t == "" {
		return "", false
	}
	return t, true
}

// References returns every @odata.id value embedded in the resource body, at
// any nesting depth, in document order. The resource's own identifier is
// included; callers dedup against the visited set.
func (r *Resource) References() []string {
	var refs []string

	dec := json.NewDecoder(bytes.NewReader(r.Raw))
	if err := scanValue(dec, "", &refs); err != nil {
		// A body that decoded once already should not fail a second walk;
		// return whatever was found before the error.
		return refs
	}

	return refs
}

// scanValue consumes one JSON value from the decoder, collecting string
// values keyed "@odata.id" along the way. key is the object key the value
// is bound to, or "" for array elements and the top-level value.
func scanValue(dec *json.Decoder, key string, refs *[]string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				k, _ := keyTok.(string)
				if err := scanValue(dec, k, refs); err != nil {
					return err
				}
			}
			// Consume the closing '}'
			if _, err := dec.Token(); err != nil {
				return err
			}
		case '[':
			for dec.More() {
				if err := scanValue(dec, "", refs); err != nil {
					return err
				}
			}
			// Consume the closing ']'
			if _, err := dec.Token(); err != nil {
				return err
			}
		}
	case string:
		if key == "@odata.id" && t != "" {
			*refs = append(*refs, t)
		}
	}

	return nil
}
