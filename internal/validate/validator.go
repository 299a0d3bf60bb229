package validate

import (
	"fmt"
	"strings"

	"github.com/alvmarrod/redfish-verify/internal/redfish"
	"github.com/alvmarrod/redfish-verify/internal/spec"
)

// Validator classifies fetched resources against a pattern index. It holds
// no per-resource state; the index is read-only.
type Validator struct {
	index *spec.PatternIndex
}

// New creates a Validator over a built pattern index
func New(index *spec.PatternIndex) *Validator {
	return &Validator{index: index}
}

// Classify produces the classification record for one resource
func (v *Validator) Classify(res *redfish.Resource) Record {
	identifier, hasID := res.Identifier()
	declaredType, hasType := res.DeclaredType()

	if !hasID || !hasType {
		return Record{
			Identifier:   identifier,
			DeclaredType: declaredType,
			Verdict:      VerdictFail,
			Detail:       fmt.Sprintf("resource at '%s' is missing the required @odata.id and/or @odata.type property", res.Path),
		}
	}

	templates := v.index.Lookup(declaredType)
	if len(templates) == 0 {
		return Record{
			Identifier:   identifier,
			DeclaredType: declaredType,
			Verdict:      VerdictWarning,
			Detail:       fmt.Sprintf("type '%s' was not found in the specification", declaredType),
		}
	}

	if spec.MatchesAny(templates, identifier) {
		return Record{
			Identifier:   identifier,
			DeclaredType: declaredType,
			Verdict:      VerdictPass,
			Detail:       "Pass",
		}
	}

	return Record{
		Identifier:   identifier,
		DeclaredType: declaredType,
		Verdict:      VerdictFail,
		Detail: fmt.Sprintf("identifier '%s' does not match any pattern declared for '%s' (candidates: %s)",
			identifier, declaredType, strings.Join(templates, ", ")),
	}
}

// FetchFailure builds the record for a path that could not be fetched.
// Fetch failures are data, not control flow; the crawl continues past them.
func FetchFailure(path string, err error) Record {
	return Record{
		Identifier: path,
		Verdict:    VerdictFail,
		Detail:     fmt.Sprintf("failed to fetch resource '%s': %v", path, err),
	}
}
