package sdk

// DeployTargetConfig routes the branches and pull requests of a project to a
// deploy target (cluster). Weight orders configs, higher first.
type DeployTargetConfig struct {
	ID           int      `json:"id,omitempty" yaml:"id,omitempty" cli:"id,key"`
	Weight       int      `json:"weight" yaml:"weight" cli:"weight"`
	Branches     string   `json:"branches" yaml:"branches" cli:"branches"`
	Pullrequests string   `json:"pullrequests" yaml:"pullrequests" cli:"pullrequests"`
	DeployTarget *Cluster `json:"deployTarget,omitempty" yaml:"deployTarget,omitempty"`
}

// DeployTargetID returns the id of the deploy target, 0 if unset.
func (c DeployTargetConfig) DeployTargetID() int {
	if c.DeployTarget == nil {
		return 0
	}
	return c.DeployTarget.ID
}

// Default top-level fields selected for deploy target configs.
var DeployTargetConfigFields = []string{"id", "weight", "branches", "pullrequests"}

// DeployTargetConfigInput is a desired deploy target config, as given by a user.
// Values are kept loosely typed since they are compared as strings.
type DeployTargetConfigInput struct {
	Branches     string `json:"branches" yaml:"branches" mapstructure:"branches" validate:"required"`
	Pullrequests string `json:"pullrequests" yaml:"pullrequests" mapstructure:"pullrequests" validate:"required"`
	DeployTarget int    `json:"deployTarget" yaml:"deployTarget" mapstructure:"deployTarget" validate:"required"`
	Weight       int    `json:"weight" yaml:"weight" mapstructure:"weight"`
}
