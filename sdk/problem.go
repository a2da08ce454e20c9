package sdk

// ProblemSeverity rates a problem.
type ProblemSeverity string

// Problem severities
const (
	ProblemSeverityNone       ProblemSeverity = "NONE"
	ProblemSeverityUnknown    ProblemSeverity = "UNKNOWN"
	ProblemSeverityNegligible ProblemSeverity = "NEGLIGIBLE"
	ProblemSeverityLow        ProblemSeverity = "LOW"
	ProblemSeverityMedium     ProblemSeverity = "MEDIUM"
	ProblemSeverityHigh       ProblemSeverity = "HIGH"
	ProblemSeverityCritical   ProblemSeverity = "CRITICAL"
)

// Defaults applied to problems and facts reported by this tool.
const (
	DefaultProblemSource      = "ansible"
	DefaultProblemDescription = "Provided by Lagoon Ansible collection"
)

// Problem is an issue reported against an environment, keyed by Identifier.
// Data holds the JSON encoding of arbitrary details.
type Problem struct {
	ID                int             `json:"id,omitempty" yaml:"id,omitempty" cli:"id"`
	Environment       int             `json:"environment,omitempty" yaml:"environment,omitempty" validate:"required"`
	Identifier        string          `json:"identifier" yaml:"identifier" cli:"identifier,key" validate:"required"`
	Severity          ProblemSeverity `json:"severity,omitempty" yaml:"severity,omitempty" cli:"severity" validate:"omitempty,oneof=NONE UNKNOWN NEGLIGIBLE LOW MEDIUM HIGH CRITICAL"`
	SeverityScore     float64         `json:"severityScore" yaml:"severityScore" validate:"gte=0,lte=1"`
	Service           string          `json:"service,omitempty" yaml:"service,omitempty"`
	Source            string          `json:"source,omitempty" yaml:"source,omitempty" cli:"source"`
	AssociatedPackage string          `json:"associatedPackage,omitempty" yaml:"associatedPackage,omitempty"`
	Description       string          `json:"description,omitempty" yaml:"description,omitempty"`
	Version           string          `json:"version,omitempty" yaml:"version,omitempty"`
	FixedVersion      string          `json:"fixedVersion,omitempty" yaml:"fixedVersion,omitempty"`
	Links             string          `json:"links,omitempty" yaml:"links,omitempty"`
	Data              string          `json:"data" yaml:"data"`
}

// Default fields selected for problems.
var ProblemFields = []string{"id", "identifier", "data", "source"}
