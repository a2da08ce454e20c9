package action

import (
	"context"
	"time"

	"github.com/rockbears/log"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/lagoonclient"
)

// Deploy defaults, delay being in seconds.
const (
	DefaultDeployDelay   = 60
	DefaultDeployRetries = 30
)

// DeployArgs are the arguments of the deploy and last_deploy actions.
type DeployArgs struct {
	Project string `mapstructure:"project" validate:"required"`
	Branch  string `mapstructure:"branch" validate:"required"`
	Wait    bool   `mapstructure:"wait"`
	Delay   *int   `mapstructure:"delay"`
	Retries *int   `mapstructure:"retries"`
}

func (a DeployArgs) polling() (time.Duration, int) {
	delay, retries := DefaultDeployDelay, DefaultDeployRetries
	if a.Delay != nil {
		delay = *a.Delay
	}
	if a.Retries != nil {
		retries = *a.Retries
	}
	return time.Duration(delay) * time.Second, retries
}

// RunDeploy deploys the latest version of an environment and, with wait set,
// polls its deployment status until it ends.
func RunDeploy(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a DeployArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}

	status, err := c.DeployLatest(ctx, a.Project, a.Branch)
	if err != nil {
		return res, err
	}
	res.Changed = true
	log.Info(ctx, "deployment of %s/%s: %s", a.Project, a.Branch, status)

	if a.Wait {
		delay, retries := a.polling()
		status, err = c.CheckDeployStatus(ctx, sdk.NamespaceName(a.Project, a.Branch), true, delay, retries)
		res.set("deploy_status", status)
		res.Result = status
		return res, err
	}
	res.set("deploy_status", status)
	res.Result = status
	return res, nil
}

// RunLastDeploy returns the status of the latest deployment of an
// environment, waiting for it to end when wait is set.
func RunLastDeploy(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a DeployArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	delay, retries := a.polling()
	if !a.Wait {
		delay = 0
	}
	status, err := c.CheckDeployStatus(ctx, sdk.NamespaceName(a.Project, a.Branch), a.Wait, delay, retries)
	res.set("deploy_status", status)
	res.Result = status
	return res, err
}

// DeployBulkArgs are the arguments of the deploy_bulk action.
type DeployBulkArgs struct {
	Name         string                       `mapstructure:"name"`
	Environments []sdk.DeployEnvironmentInput `mapstructure:"environments"`
	BuildVars    []sdk.BuildVariable          `mapstructure:"build_vars"`
}

// RunDeployBulk triggers a bulk deployment. Invalid environments and build
// variables are skipped and listed in the result; the action fails when no
// environment is left.
func RunDeployBulk(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a DeployBulkArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	if err := requireArg("environments", a.Environments != nil); err != nil {
		return res, err
	}

	var vars []sdk.BuildVariable
	var invalidVars []sdk.BuildVariable
	for _, v := range a.BuildVars {
		if err := sdk.Validate(v); err != nil {
			log.Warn(ctx, "invalid build variable: %v", err)
			invalidVars = append(invalidVars, v)
			continue
		}
		vars = append(vars, v)
	}

	var envs []sdk.DeployEnvironmentInput
	var invalidEnvs []sdk.DeployEnvironmentInput
	for _, e := range a.Environments {
		if reason := invalidEnvironmentInput(e); reason != "" {
			log.Warn(ctx, "invalid environment: %s", reason)
			invalidEnvs = append(invalidEnvs, e)
			continue
		}
		envs = append(envs, e)
	}
	res.set("invalid_variable", invalidVars)
	res.set("invalid_environment", invalidEnvs)

	if len(envs) == 0 {
		return res, sdk.NewErrorFrom(sdk.ErrWrongRequest, "no environments to deploy")
	}

	id, err := c.BulkDeploy(ctx, a.Name, vars, envs)
	if err != nil {
		return res, err
	}
	res.Changed = true
	res.set("deploy_id", id)
	res.Result = id
	return res, nil
}

// invalidEnvironmentInput returns why e cannot identify an environment, or
// an empty string.
func invalidEnvironmentInput(e sdk.DeployEnvironmentInput) string {
	switch {
	case e.Project == nil && e.ID == 0:
		return `required keys "project" or "id" missing`
	case e.Project != nil && e.ID != 0:
		return `please specify one "project" or "id" for environment input`
	case e.Project != nil && e.Name == "":
		return `project type requires environment "name"`
	case e.Project != nil && e.Project.Name == "" && e.Project.ID == 0:
		return `required keys "name" or "id" for project`
	}
	return ""
}
