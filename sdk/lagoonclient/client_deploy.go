package lagoonclient

import (
	"context"
	"errors"
	"time"

	"github.com/eapache/go-resiliency/retrier"
	"github.com/rockbears/log"

	"github.com/ovh/lagoonctl/sdk"
	lagoonlog "github.com/ovh/lagoonctl/sdk/log"
)

const deployBranchMutation = `mutation deployBranch($project: String!, $branch: String!) {
  deployEnvironmentBranch(input: {
    project: {name: $project}
    branchName: $branch
  })
}`

const deployLatestMutation = `mutation deployLatest($project: String!, $environment: String!) {
  deployEnvironmentLatest(input: {
    environment: {
      project: {name: $project}
      name: $environment
    }
  })
}`

const bulkDeployMutation = `mutation bulkDeployEnvironment(
  $name: String
  $buildVariables: [EnvKeyValueInput]
  $environments: [DeployEnvironmentLatestInput!]!
) {
  bulkDeployEnvironmentLatest(input: {
    name: $name
    buildVariables: $buildVariables
    environments: $environments
  })
}`

var errDeploymentPending = errors.New("deployment still in progress")

func (c *client) DeployBranch(ctx context.Context, project, branch string) (string, error) {
	var res string
	vars := map[string]interface{}{"project": project, "branch": branch}
	if err := c.mutateField(ctx, deployBranchMutation, vars, "deployEnvironmentBranch", &res); err != nil {
		return "", sdk.WrapError(err, "unable to deploy branch %s of project %s", branch, project)
	}
	return res, nil
}

func (c *client) DeployLatest(ctx context.Context, project, environment string) (string, error) {
	var res string
	vars := map[string]interface{}{"project": project, "environment": environment}
	if err := c.mutateField(ctx, deployLatestMutation, vars, "deployEnvironmentLatest", &res); err != nil {
		return "", sdk.WrapError(err, "unable to deploy environment %s of project %s", environment, project)
	}
	return res, nil
}

func (c *client) BulkDeploy(ctx context.Context, name string, buildVars []sdk.BuildVariable, envs []sdk.DeployEnvironmentInput) (string, error) {
	if len(envs) == 0 {
		return "", sdk.NewErrorFrom(sdk.ErrWrongRequest, "no environment to deploy")
	}
	for i := range buildVars {
		if err := sdk.Validate(buildVars[i]); err != nil {
			return "", err
		}
	}
	// build variables are also set per environment, the top level ones
	// being ignored by some API versions
	inputs := make([]map[string]interface{}, len(envs))
	for i := range envs {
		inputs[i] = map[string]interface{}{"environment": envs[i]}
		if len(buildVars) > 0 {
			inputs[i]["buildVariables"] = buildVars
		}
	}
	vars := map[string]interface{}{"environments": inputs}
	if name != "" {
		vars["name"] = name
	}
	if len(buildVars) > 0 {
		vars["buildVariables"] = buildVars
	}
	var res string
	if err := c.mutateField(ctx, bulkDeployMutation, vars, "bulkDeployEnvironmentLatest", &res); err != nil {
		return "", sdk.WrapError(err, "unable to create bulk deployment")
	}
	return res, nil
}

// CheckDeployStatus waits delay, then returns the status of the latest
// deployment of the environment living in namespace ns. With wait set it
// polls every delay until the status is terminal, giving up after retries
// attempts with an ErrMaxRetries error.
func (c *client) CheckDeployStatus(ctx context.Context, ns string, wait bool, delay time.Duration, retries int) (string, error) {
	ctx = context.WithValue(ctx, lagoonlog.Environment, ns)
	if retries < 1 {
		retries = 1
	}

	select {
	case <-ctx.Done():
		return "", sdk.WithStack(ctx.Err())
	case <-time.After(delay):
	}

	var status string
	attempt := 0
	r := retrier.New(retrier.ConstantBackoff(retries-1, delay), retrier.WhitelistClassifier{errDeploymentPending})
	err := r.RunCtx(ctx, func(ctx context.Context) error {
		attempt++
		q := NewEnvironmentQuery(c).
			ByNamespace(ctx, ns, Fields("id", "kubernetesNamespaceName")).
			WithDeployments(ctx, Fields("name", "status", "started", "completed"))
		if q.Err() != nil {
			return q.Err()
		}
		envs := q.Environments()
		if len(envs) == 0 {
			return sdk.NewErrorFrom(sdk.ErrNotFound, "environment %q not found", ns)
		}
		deps := envs[0].Deployments
		if len(deps) > 0 {
			status = deps[0].Status
		}
		if !wait {
			if len(deps) == 0 {
				return sdk.NewErrorFrom(sdk.ErrNotFound, "no deployment found for %s", ns)
			}
			return nil
		}
		if len(deps) > 0 && deps[0].IsTerminal() {
			return nil
		}
		log.Info(ctx, "RETRYING: Wait for deployment completion for %s (%d retries left).", ns, retries-attempt)
		return errDeploymentPending
	})
	if errors.Is(err, errDeploymentPending) {
		return status, sdk.NewErrorFrom(sdk.ErrMaxRetries, "deployment of %s not finished after %d attempts; view deployment logs for more information", ns, retries)
	}
	if err != nil {
		return "", err
	}
	return status, nil
}
