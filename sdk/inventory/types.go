package inventory

import (
	"encoding/json"
	"sort"
)

// Transport is the only connection type the inventory can describe.
const Transport = "ssh"

// SSHCommonArgs are the ssh arguments set on every host.
const SSHCommonArgs = `-T -o "UserKnownHostsFile=/dev/null" -o "StrictHostKeyChecking=no"`

// HostVars are the variables of an inventory host, one per environment.
type HostVars struct {
	Name                 string                 `json:"name" mapstructure:"name"`
	ProjectID            int                    `json:"project_id" mapstructure:"project_id"`
	ProjectName          string                 `json:"project_name" mapstructure:"project_name"`
	EnvironmentID        int                    `json:"environment_id" mapstructure:"environment_id"`
	EnvironmentName      string                 `json:"environment_name" mapstructure:"environment_name"`
	LagoonGroups         []string               `json:"lagoon_groups" mapstructure:"lagoon_groups"`
	AnsibleUser          string                 `json:"ansible_user" mapstructure:"ansible_user"`
	AnsibleSSHUser       string                 `json:"ansible_ssh_user" mapstructure:"ansible_ssh_user"`
	AnsibleHost          string                 `json:"ansible_host" mapstructure:"ansible_host"`
	AnsiblePort          string                 `json:"ansible_port" mapstructure:"ansible_port"`
	AnsibleConnection    string                 `json:"ansible_connection" mapstructure:"ansible_connection"`
	AnsibleSSHCommonArgs string                 `json:"ansible_ssh_common_args" mapstructure:"ansible_ssh_common_args"`
	Metadata             map[string]interface{} `json:"metadata,omitempty" mapstructure:"metadata"`
}

// Group is a named set of hosts and child groups.
type Group struct {
	Hosts    []string `json:"hosts,omitempty"`
	Children []string `json:"children,omitempty"`
}

// Groups is a map of groups, keyed by a group name.
type Groups map[string]*Group

// Inventory represents an Ansible Inventory consists of host variables and groups.
type Inventory struct {
	Groups   Groups              `json:"groups,omitempty"`
	HostVars map[string]HostVars `json:"hostvars,omitempty"`
}

// New returns an empty inventory.
func New() *Inventory {
	return &Inventory{Groups: Groups{}, HostVars: map[string]HostVars{}}
}

// AddGroup declares a group. Declaring it twice is a noop.
func (inv *Inventory) AddGroup(name string) *Group {
	g, ok := inv.Groups[name]
	if !ok {
		g = &Group{}
		inv.Groups[name] = g
	}
	return g
}

// AddChild makes child a child group of parent, both being declared if needed.
func (inv *Inventory) AddChild(parent, child string) {
	inv.AddGroup(child)
	g := inv.AddGroup(parent)
	g.Children = appendUnique(g.Children, child)
}

// AddHost adds a host to a group and sets its variables.
func (inv *Inventory) AddHost(group string, vars HostVars) {
	g := inv.AddGroup(group)
	g.Hosts = appendUnique(g.Hosts, vars.Name)
	inv.HostVars[vars.Name] = vars
}

// Host returns the variables of a host, and false if the host is unknown.
func (inv *Inventory) Host(name string) (HostVars, bool) {
	hv, ok := inv.HostVars[name]
	return hv, ok
}

// MarshalJSON renders the inventory in the format expected by Ansible from
// `--list`: one key per group, the "all" group listing the top level ones,
// and every host variable under "_meta".
func (inv *Inventory) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(inv.Groups)+2)

	hostvars := make(map[string]HostVars, len(inv.HostVars))
	for k, v := range inv.HostVars {
		hostvars[k] = v
	}
	out["_meta"] = map[string]interface{}{"hostvars": hostvars}

	isChild := map[string]bool{}
	for _, g := range inv.Groups {
		for _, c := range g.Children {
			isChild[c] = true
		}
	}
	top := []string{}
	for name, g := range inv.Groups {
		out[name] = Group{Hosts: sorted(g.Hosts), Children: sorted(g.Children)}
		if !isChild[name] {
			top = append(top, name)
		}
	}
	sort.Strings(top)
	out["all"] = Group{Children: top}
	return json.Marshal(out)
}

func appendUnique(list []string, s string) []string {
	for _, e := range list {
		if e == s {
			return list
		}
	}
	return append(list, s)
}

func sorted(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	res := make([]string, len(list))
	copy(res, list)
	sort.Strings(res)
	return res
}
