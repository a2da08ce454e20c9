package sdk

// GroupRole is the role of a user in a group.
type GroupRole string

// Group roles
const (
	GroupRoleGuest      GroupRole = "GUEST"
	GroupRoleReporter   GroupRole = "REPORTER"
	GroupRoleDeveloper  GroupRole = "DEVELOPER"
	GroupRoleMaintainer GroupRole = "MAINTAINER"
	GroupRoleOwner      GroupRole = "OWNER"
)

// Group represents a Lagoon group.
type Group struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty" cli:"id"`
	Name string `json:"name" yaml:"name" cli:"name,key"`
	Type string `json:"type,omitempty" yaml:"type,omitempty" cli:"type"`
}

// Default fields selected for groups.
var GroupFields = []string{"id", "name", "type"}

// GroupNames returns the names of the given groups.
func GroupNames(groups []Group) []string {
	names := make([]string, len(groups))
	for i := range groups {
		names[i] = groups[i].Name
	}
	return names
}
