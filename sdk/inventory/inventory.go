// Package inventory builds an Ansible dynamic inventory out of one or more
// Lagoon instances: a group per project, a child group per environment name
// and a host per environment.
package inventory

import (
	"context"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/rockbears/log"
	"gopkg.in/yaml.v2"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/lagoonclient"
	lagoonlog "github.com/ovh/lagoonctl/sdk/log"
)

// Source is the inventory source file.
type Source struct {
	Lagoons []Lagoon `mapstructure:"lagoons"`
}

// Lagoon is one Lagoon instance of the source file.
type Lagoon struct {
	// Name, when set, becomes a group holding every project group of the instance.
	Name      string            `mapstructure:"name"`
	Endpoint  string            `mapstructure:"lagoon_api_endpoint" validate:"required"`
	Token     string            `mapstructure:"lagoon_api_token" validate:"required"`
	Headers   map[string]string `mapstructure:"headers"`
	SSHHost   string            `mapstructure:"ssh_host"`
	SSHPort   string            `mapstructure:"ssh_port"`
	Transport string            `mapstructure:"transport"`
	// Groups restricts the inventory to the projects of these Lagoon groups.
	Groups []string `mapstructure:"groups"`
	// Filters restricts the inventory to the projects whose metadata match
	// every filter, see ParseFilter.
	Filters []string `mapstructure:"filters"`
}

// LoadSource reads a source file.
func LoadSource(path string) (*Source, error) {
	btes, err := os.ReadFile(path)
	if err != nil {
		return nil, sdk.WrapError(err, "unable to read inventory source %s", path)
	}
	return ParseSource(btes)
}

// ParseSource decodes a YAML source. Scalars are weakly typed so ssh_port may
// be written as a number.
func ParseSource(btes []byte) (*Source, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(btes, &raw); err != nil {
		return nil, sdk.NewErrorFrom(sdk.ErrInvalidData, "invalid inventory source: %v", err)
	}
	if l, has := raw["lagoons"]; has {
		if _, ok := l.([]interface{}); !ok {
			return nil, sdk.NewErrorFrom(sdk.ErrInvalidData, "expecting lagoons to be a list")
		}
	}

	var src Source
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &src,
	})
	if err != nil {
		return nil, sdk.WithStack(err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, sdk.NewErrorFrom(sdk.ErrInvalidData, "invalid inventory source: %v", err)
	}
	for i := range src.Lagoons {
		if err := src.Lagoons[i].validate(); err != nil {
			return nil, err
		}
	}
	return &src, nil
}

func (l *Lagoon) validate() error {
	if l.Transport == "" {
		l.Transport = Transport
	}
	if l.Transport != Transport {
		return sdk.NewErrorFrom(sdk.ErrWrongRequest, "only %s transport is supported", Transport)
	}
	return sdk.Validate(l)
}

// ClientFunc returns the API client of a Lagoon instance.
type ClientFunc func(Lagoon) lagoonclient.Interface

// NewClient is the default ClientFunc.
func NewClient(l Lagoon) lagoonclient.Interface {
	return lagoonclient.New(lagoonclient.Config{
		Endpoint: l.Endpoint,
		Token:    l.Token,
		Headers:  l.Headers,
	})
}

// Build fetches the projects of every Lagoon instance of src and returns
// the inventory. newClient defaults to NewClient.
func Build(ctx context.Context, src Source, newClient ClientFunc) (*Inventory, error) {
	if newClient == nil {
		newClient = NewClient
	}
	inv := New()
	for _, l := range src.Lagoons {
		if err := l.validate(); err != nil {
			return nil, err
		}
		if err := inv.addLagoon(ctx, l, newClient(l)); err != nil {
			return nil, err
		}
	}
	return inv, nil
}

func (inv *Inventory) addLagoon(ctx context.Context, l Lagoon, c lagoonclient.Interface) error {
	ctx = context.WithValue(ctx, lagoonlog.Endpoint, l.Endpoint)

	filters := make([]Filter, 0, len(l.Filters))
	for _, s := range l.Filters {
		f, err := ParseFilter(s)
		if err != nil {
			return err
		}
		filters = append(filters, f)
	}

	q := lagoonclient.NewProjectQuery(c)
	if len(l.Groups) > 0 {
		for _, g := range l.Groups {
			q = q.AllInGroup(ctx, g)
		}
		q = q.Unique()
	} else {
		q = q.All(ctx)
	}
	q = q.WithEnvironments(ctx, lagoonclient.Fields("id", "name", "kubernetesNamespaceName")).
		WithGroups(ctx, lagoonclient.Fields("name"))
	if q.Err() != nil {
		return q.Err()
	}
	if len(q.Errors()) > 0 {
		log.Warn(ctx, "the query partially succeeded, but the following errors were encountered: %v", q.Errors())
	}

	for _, p := range q.Projects() {
		ok, err := MatchMetadata(p.Metadata, filters)
		if err != nil {
			return err
		}
		if !ok {
			log.Debug(ctx, "project %s filtered out", p.Name)
			continue
		}
		inv.addProject(l, p)
	}
	log.Debug(ctx, "inventory has %d hosts", len(inv.HostVars))
	return nil
}

func (inv *Inventory) addProject(l Lagoon, p sdk.Project) {
	projectGroup := sdk.QueryAlias(p.Name)
	inv.AddGroup(projectGroup)
	if l.Name != "" {
		inv.AddChild(l.Name, projectGroup)
	}

	groups := make([]string, len(p.Groups))
	for i := range p.Groups {
		groups[i] = p.Groups[i].Name
	}
	var md map[string]interface{}
	if p.Metadata != nil {
		md = make(map[string]interface{}, len(p.Metadata))
		for k, v := range p.Metadata {
			md[k] = v.Interface()
		}
	}

	for _, e := range p.Environments {
		ns := e.KubernetesNamespaceName
		if ns == "" {
			ns = sdk.NamespaceName(p.Name, e.Name)
		}
		inv.AddChild(projectGroup, e.Name)
		inv.AddHost(e.Name, HostVars{
			Name:                 ns,
			ProjectID:            p.ID,
			ProjectName:          p.Name,
			EnvironmentID:        e.ID,
			EnvironmentName:      e.Name,
			LagoonGroups:         groups,
			AnsibleUser:          ns,
			AnsibleSSHUser:       ns,
			AnsibleHost:          l.SSHHost,
			AnsiblePort:          l.SSHPort,
			AnsibleConnection:    l.Transport,
			AnsibleSSHCommonArgs: SSHCommonArgs,
			Metadata:             md,
		})
	}
}
