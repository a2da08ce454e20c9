package sdk

// FactType is the type of a fact value.
type FactType string

// Fact types
const (
	FactTypeText   FactType = "TEXT"
	FactTypeSemver FactType = "SEMVER"
	FactTypeURL    FactType = "URL"
)

// Fact is a named piece of information attached to an environment.
type Fact struct {
	ID          int      `json:"id,omitempty" yaml:"id,omitempty" cli:"id"`
	Environment int      `json:"environment,omitempty" yaml:"environment,omitempty" validate:"required"`
	Name        string   `json:"name" yaml:"name" cli:"name,key" validate:"required"`
	Value       string   `json:"value" yaml:"value" cli:"value" validate:"required"`
	Source      string   `json:"source,omitempty" yaml:"source,omitempty" cli:"source"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	Type        FactType `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=TEXT SEMVER URL"`
}

// Default fields selected for facts.
var FactFields = []string{"id", "name", "value"}
