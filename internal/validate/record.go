package validate

// Verdict is the classification outcome for one resource
type Verdict string

const (
	VerdictPass    Verdict = "Pass"
	VerdictWarning Verdict = "Warning"
	VerdictFail    Verdict = "Fail"
)

// Record is the classification of one visited resource. Identifier and
// DeclaredType are empty when the resource did not carry them. Records are
// never mutated after creation.
type Record struct {
	Identifier   string
	DeclaredType string
	Verdict      Verdict
	Detail       string
}
