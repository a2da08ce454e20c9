package lagoonclient

import (
	"context"

	"github.com/ovh/lagoonctl/sdk"
)

const problemsQuery = `query environmentProblems($id: Int!) {
  environmentById(id: $id) {
    problems {
      id
      identifier
      data
      source
    }
  }
}`

const problemAddMutation = `mutation addProblem(
  $environment: Int!
  $identifier: String!
  $data: String!
  $source: String!
  $severity: ProblemSeverityRating
  $severityScore: SeverityScore
  $service: String
  $associatedPackage: String
  $description: String
  $version: String
  $fixedVersion: String
  $links: String
) {
  addProblem(input: {
    environment: $environment
    identifier: $identifier
    data: $data
    source: $source
    severity: $severity
    severityScore: $severityScore
    service: $service
    associatedPackage: $associatedPackage
    description: $description
    version: $version
    fixedVersion: $fixedVersion
    links: $links
  }) {
    id
  }
}`

const problemDeleteMutation = `mutation deleteProblem($environment: Int!, $identifier: String!) {
  deleteProblem(input: {environment: $environment, identifier: $identifier})
}`

func (c *client) Problems(ctx context.Context, environmentID int) ([]sdk.Problem, error) {
	var env sdk.Environment
	if err := c.queryField(ctx, problemsQuery, map[string]interface{}{"id": environmentID}, "environmentById", &env); err != nil {
		return nil, sdk.WrapError(err, "unable to get problems of environment %d", environmentID)
	}
	return env.Problems, nil
}

// ProblemAdd applies the defaults for source, severity and description
// before adding p.
func (c *client) ProblemAdd(ctx context.Context, p sdk.Problem) (int, error) {
	if p.Source == "" {
		p.Source = sdk.DefaultProblemSource
	}
	if p.Severity == "" {
		p.Severity = sdk.ProblemSeverityNone
	}
	if p.Description == "" {
		p.Description = sdk.DefaultProblemDescription
	}
	if p.Data == "" {
		p.Data = "{}"
	}
	if err := sdk.Validate(p); err != nil {
		return 0, err
	}
	vars := map[string]interface{}{
		"environment":       p.Environment,
		"identifier":        p.Identifier,
		"data":              p.Data,
		"source":            p.Source,
		"severity":          p.Severity,
		"severityScore":     p.SeverityScore,
		"service":           p.Service,
		"associatedPackage": p.AssociatedPackage,
		"description":       p.Description,
		"version":           p.Version,
		"fixedVersion":      p.FixedVersion,
		"links":             p.Links,
	}
	var res sdk.Problem
	if err := c.mutateField(ctx, problemAddMutation, vars, "addProblem", &res); err != nil {
		return 0, sdk.WrapError(err, "unable to add problem %s", p.Identifier)
	}
	return res.ID, nil
}

func (c *client) ProblemDelete(ctx context.Context, environmentID int, identifier string) (bool, error) {
	ok, err := c.success(ctx, problemDeleteMutation, map[string]interface{}{"environment": environmentID, "identifier": identifier}, "deleteProblem")
	if err != nil {
		return false, sdk.WrapError(err, "unable to delete problem %s", identifier)
	}
	return ok, nil
}
