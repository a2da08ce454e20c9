package lagoonclient

import (
	"context"

	"github.com/ovh/lagoonctl/sdk"
)

const factsQuery = `query environmentFacts($id: Int!) {
  environmentById(id: $id) {
    facts {
      id
      name
      value
    }
  }
}`

const factAddMutation = `mutation addFact(
  $environment: Int!
  $name: String!
  $value: String!
  $source: String!
  $description: String!
  $type: FactType!
  $category: String
) {
  addFact(input: {
    environment: $environment
    name: $name
    value: $value
    source: $source
    description: $description
    type: $type
    category: $category
  }) {
    id
  }
}`

const factDeleteMutation = `mutation deleteFact($environment: Int!, $name: String!) {
  deleteFact(input: {environment: $environment, name: $name})
}`

func (c *client) Facts(ctx context.Context, environmentID int) ([]sdk.Fact, error) {
	var env sdk.Environment
	if err := c.queryField(ctx, factsQuery, map[string]interface{}{"id": environmentID}, "environmentById", &env); err != nil {
		return nil, sdk.WrapError(err, "unable to get facts of environment %d", environmentID)
	}
	return env.Facts, nil
}

// FactAdd applies the defaults for source, type and description before
// adding f.
func (c *client) FactAdd(ctx context.Context, f sdk.Fact) (int, error) {
	if f.Source == "" {
		f.Source = sdk.DefaultProblemSource
	}
	if f.Type == "" {
		f.Type = sdk.FactTypeText
	}
	if f.Description == "" {
		f.Description = sdk.DefaultProblemDescription
	}
	if err := sdk.Validate(f); err != nil {
		return 0, err
	}
	vars := map[string]interface{}{
		"environment": f.Environment,
		"name":        f.Name,
		"value":       f.Value,
		"source":      f.Source,
		"description": f.Description,
		"type":        f.Type,
		"category":    f.Category,
	}
	var res sdk.Fact
	if err := c.mutateField(ctx, factAddMutation, vars, "addFact", &res); err != nil {
		return 0, sdk.WrapError(err, "unable to add fact %s", f.Name)
	}
	return res.ID, nil
}

func (c *client) FactDelete(ctx context.Context, environmentID int, name string) (bool, error) {
	ok, err := c.success(ctx, factDeleteMutation, map[string]interface{}{"environment": environmentID, "name": name}, "deleteFact")
	if err != nil {
		return false, sdk.WrapError(err, "unable to delete fact %s", name)
	}
	return ok, nil
}
