package lagoonclient

import (
	"context"

	"github.com/ovh/lagoonctl/sdk"
)

const deployTargetConfigAddMutation = `mutation addDeployTargetConfig(
  $project: Int!
  $branches: String!
  $pullrequests: String!
  $deployTarget: Int!
  $weight: Int
) {
  addDeployTargetConfig(input: {
    project: $project
    branches: $branches
    pullrequests: $pullrequests
    deployTarget: $deployTarget
    weight: $weight
  }) {
    id
    weight
    branches
    pullrequests
    deployTarget {
      id
      name
    }
  }
}`

const deployTargetConfigDeleteMutation = `mutation deleteDeployTargetConfig($project: Int!, $id: Int!) {
  deleteDeployTargetConfig(input: {project: $project, id: $id})
}`

func (c *client) DeployTargetConfigAdd(ctx context.Context, projectID int, cfg sdk.DeployTargetConfigInput) (*sdk.DeployTargetConfig, error) {
	if err := sdk.Validate(cfg); err != nil {
		return nil, err
	}
	vars := map[string]interface{}{
		"project":      projectID,
		"branches":     cfg.Branches,
		"pullrequests": cfg.Pullrequests,
		"deployTarget": cfg.DeployTarget,
		"weight":       cfg.Weight,
	}
	var res sdk.DeployTargetConfig
	if err := c.mutateField(ctx, deployTargetConfigAddMutation, vars, "addDeployTargetConfig", &res); err != nil {
		return nil, sdk.WrapError(err, "unable to add deploy target config %q to project %d", cfg.Branches, projectID)
	}
	return &res, nil
}

func (c *client) DeployTargetConfigDelete(ctx context.Context, projectID, id int) (bool, error) {
	ok, err := c.success(ctx, deployTargetConfigDeleteMutation, map[string]interface{}{"project": projectID, "id": id}, "deleteDeployTargetConfig")
	if err != nil {
		return false, sdk.WrapError(err, "unable to delete deploy target config %d of project %d", id, projectID)
	}
	return ok, nil
}
