package action

import (
	"context"
	"sort"

	"github.com/rockbears/log"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/lagoonclient"
	"github.com/ovh/lagoonctl/sdk/lagoonyml"
	"github.com/ovh/lagoonctl/sdk/reconcile"
)

// ConfigArgs are the arguments of the config action. Crons maps an
// environment name to its cron jobs.
type ConfigArgs struct {
	ConfigFile     string                         `mapstructure:"config_file" validate:"required"`
	Crons          map[string][]reconcile.CronJob `mapstructure:"crons"`
	Routes         interface{}                    `mapstructure:"routes"`
	MonitoringURLs interface{}                    `mapstructure:"monitoring_urls"`
	State          string                         `mapstructure:"state"`
}

// RunConfig updates the cron jobs of a .lagoon.yml file. Routes and
// monitoring urls are accepted but not handled yet.
func RunConfig(ctx context.Context, _ lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a ConfigArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	if len(a.Crons) == 0 && a.Routes == nil && a.MonitoringURLs == nil {
		return res, sdk.NewErrorFrom(sdk.ErrWrongRequest, "at least one of crons, routes, or monitoring_urls is required")
	}
	state, err := reconcile.ParseState(a.State)
	if err != nil {
		return res, err
	}
	if len(a.Crons) == 0 {
		return res, nil
	}

	envs := make([]string, 0, len(a.Crons))
	for env, jobs := range a.Crons {
		if len(jobs) == 0 {
			log.Warn(ctx, "no crons found for environment %s", env)
			continue
		}
		if err := reconcile.ValidateCronJobs(jobs, state); err != nil {
			return res, err
		}
		envs = append(envs, env)
	}
	sort.Strings(envs)

	f, err := lagoonyml.ReadFile(a.ConfigFile)
	if err != nil {
		return res, err
	}
	for _, env := range envs {
		changed, err := f.MergeCronJobs(env, a.Crons[env], state)
		if err != nil {
			return res, err
		}
		res.Changed = res.Changed || changed
	}
	if !res.Changed {
		return res, nil
	}
	return res, f.WriteFile(a.ConfigFile)
}

// CMDBDiffArgs are the arguments of the cmdb_diff action.
type CMDBDiffArgs struct {
	Head   []reconcile.Row `mapstructure:"head"`
	Base   []reconcile.Row `mapstructure:"base"`
	Mode   string          `mapstructure:"mode"`
	Keys   []string        `mapstructure:"keys"`
	Ignore []string        `mapstructure:"ignore"`
	Remove *bool           `mapstructure:"remove"`
}

// RunCMDBDiff compares desired rows with remote ones. The rows to write and
// to remove are returned as extras.
func RunCMDBDiff(_ context.Context, _ lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a CMDBDiffArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	// keys given but empty or null disable removals
	if _, hasKeys := args["keys"]; hasKeys && a.Keys == nil {
		a.Keys = []string{}
	}
	facts, err := reconcile.CMDBDiff(a.Head, a.Base, reconcile.CMDBOptions{
		Mode:   a.Mode,
		Keys:   a.Keys,
		Ignore: a.Ignore,
		Remove: a.Remove,
	})
	if err != nil {
		return res, err
	}
	res.Changed = len(facts.Write) > 0 || len(facts.Remove) > 0
	res.Result = facts
	res.set("write", facts.Write)
	res.set("remove", facts.Remove)
	res.set("diff_message", facts.DiffMessage)
	return res, nil
}

// DeployTargetConfigArgs are the arguments of the deploy_target_config action.
type DeployTargetConfigArgs struct {
	Project string                        `mapstructure:"project" validate:"required"`
	Configs []sdk.DeployTargetConfigInput `mapstructure:"configs" validate:"dive"`
	Replace bool                          `mapstructure:"replace"`
	State   string                        `mapstructure:"state"`
}

// RunDeployTargetConfig converges the deploy target configs of a project.
// With replace, the configs not listed are deleted.
func RunDeployTargetConfig(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a DeployTargetConfigArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	state, err := reconcile.ParseState(a.State)
	if err != nil {
		return res, err
	}

	q := lagoonclient.NewProjectQuery(c).ByName(ctx, a.Project, lagoonclient.Fields("id", "name")).WithDeployTargetConfigs(ctx)
	if q.Err() != nil {
		return res, q.Err()
	}
	if len(q.Errors()) > 0 {
		return res, sdk.NewError(sdk.ErrGraphQL, q.Errors())
	}
	if len(q.Projects()) == 0 {
		return res, sdk.NewErrorFrom(sdk.ErrNotFound, "project %q not found", a.Project)
	}
	project := q.Projects()[0]

	if state == reconcile.StateAbsent {
		var deleted []int
		for _, id := range reconcile.DeployTargetConfigsAbsent(project.DeployTargetConfigs, a.Configs) {
			ok, err := c.DeployTargetConfigDelete(ctx, project.ID, id)
			if err != nil {
				res.Result = deleted
				return res, err
			}
			if ok {
				deleted = append(deleted, id)
			}
		}
		res.Changed = len(deleted) > 0
		res.Result = deleted
		return res, nil
	}

	plan := reconcile.DeployTargetConfigs(project.DeployTargetConfigs, a.Configs, a.Replace)
	for _, id := range plan.Delete {
		if _, err := c.DeployTargetConfigDelete(ctx, project.ID, id); err != nil {
			return res, err
		}
		res.Changed = true
	}
	added := make([]sdk.DeployTargetConfig, 0, len(plan.Add))
	for _, add := range plan.Add {
		cfg, err := c.DeployTargetConfigAdd(ctx, project.ID, add.Config)
		if err != nil {
			res.Result = added
			return res, err
		}
		added = append(added, *cfg)
		res.Changed = true
	}
	res.Result = added
	return res, nil
}
