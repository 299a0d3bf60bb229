package spec

import (
	"regexp"
	"sort"
	"strings"
)

// identifierProperty is the schema property whose pattern constraint
// declares the accepted URI templates for a type.
const identifierProperty = "@odata.id"

// underscoreKey matches DMTF underscore-form schema keys such as
// "Chassis_v1_0_0_Chassis".
var underscoreKey = regexp.MustCompile(`^([A-Za-z0-9]+)_(v\d+_\d+_\d+)_([A-Za-z0-9]+)$`)

// PatternIndex maps type names to the URI templates their schema declares.
// Built once at startup and read-only afterwards.
type PatternIndex struct {
	byType map[string][]string
}

// BuildIndex constructs a PatternIndex from a loaded description document.
// Each schema entry with an identifier pattern registers under its full
// dotted type name, under namespace.typeName, and under the bare type name;
// the fallback buckets union templates across versions.
func BuildIndex(doc *Document) *PatternIndex {
	ix := &PatternIndex{byType: make(map[string][]string)}

	// Sort the schema keys so fallback buckets merge deterministically
	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		schema := doc.Components.Schemas[name]
		prop, ok := schema.Properties[identifierProperty]
		if !ok || prop.Pattern == "" {
			continue
		}

		template := templateFromPattern(prop.Pattern)
		for _, key := range typeKeys(normalizeTypeKey(name)) {
			ix.add(key, template)
		}
	}

	return ix
}

// Lookup resolves a declared type name to its URI templates. The full key is
// tried first, then namespace.typeName, then the bare type name; the first
// non-empty bucket wins. A leading '#' on the type name is ignored.
func (ix *PatternIndex) Lookup(typeName string) []string {
	typeName = strings.TrimPrefix(typeName, "#")
	if typeName == "" {
		return nil
	}

	if templates := ix.byType[typeName]; len(templates) > 0 {
		return templates
	}

	parts := strings.Split(typeName, ".")
	if len(parts) == 3 {
		if templates := ix.byType[parts[0]+"."+parts[2]]; len(templates) > 0 {
			return templates
		}
	}
	if len(parts) >= 2 {
		if templates := ix.byType[parts[len(parts)-1]]; len(templates) > 0 {
			return templates
		}
	}

	return nil
}

// Len returns the number of registered type keys
func (ix *PatternIndex) Len() int {
	return len(ix.byType)
}

func (ix *PatternIndex) add(key, template string) {
	for _, existing := range ix.byType[key] {
		if existing == template {
			return
		}
	}
	ix.byType[key] = append(ix.byType[key], template)
}

// normalizeTypeKey converts underscore-form schema keys to dotted type
// names; dotted keys pass through unchanged.
func normalizeTypeKey(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	if m := underscoreKey.FindStringSubmatch(name); m != nil {
		return m[1] + "." + m[2] + "." + m[3]
	}
	return name
}

// typeKeys expands a dotted type name into the keys it registers under
func typeKeys(name string) []string {
	parts := strings.Split(name, ".")
	switch len(parts) {
	case 3:
		return []string{name, parts[0] + "." + parts[2], parts[2]}
	case 2:
		return []string{name, parts[1]}
	default:
		return []string{name}
	}
}

// templateFromPattern strips the regex anchors a pattern constraint
// carries, leaving the URI template itself.
func templateFromPattern(pattern string) string {
	pattern = strings.TrimPrefix(pattern, "^")
	pattern = strings.TrimSuffix(pattern, "$")
	return pattern
}

// MatchesAny reports whether the identifier matches at least one template
func MatchesAny(templates []string, identifier string) bool {
	for _, template := range templates {
		if MatchTemplate(template, identifier) {
			return true
		}
	}
	return false
}

// regexSegment is the regex idiom converted description documents use
// for one variable path token.
const regexSegment = "[^/]+"

// MatchTemplate tests an identifier against one URI template. Bracketed
// segments like {SystemId} match exactly one non-empty path token; literal
// segments must match exactly; segment counts must align. A segment written
// as the regex idiom [^/]+ is accepted as a variable segment too, since
// converted description documents express templates that way.
func MatchTemplate(template, identifier string) bool {
	if template == "" || identifier == "" {
		return false
	}

	// The regex idiom contains a '/' itself, so fold it into brace form
	// before splitting on path separators.
	template = strings.ReplaceAll(template, regexSegment, "{segment}")

	want := strings.Split(template, "/")
	got := strings.Split(identifier, "/")
	if len(want) != len(got) {
		return false
	}

	for i, seg := range want {
		if isVariableSegment(seg) {
			if got[i] == "" {
				return false
			}
			continue
		}
		if seg != got[i] {
			return false
		}
	}

	return true
}

func isVariableSegment(seg string) bool {
	return strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") && len(seg) > 2
}
