package lagoonclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/graphql"
)

const allProjectsMetadataQuery = `query {
  allProjects {
    id
    name
    metadata
  }
}`

const metadataUpdateMutation = `mutation updateProjectMetadata($id: Int!, $key: String!, $value: String!) {
  updateProjectMetadata(input: {
    id: $id
    patch: {key: $key, value: $value}
  }) {
    metadata
  }
}`

const metadataRemoveMutation = `mutation removeProjectMetadataByKey($id: Int!, $key: String!) {
  removeProjectMetadataByKey(input: {id: $id, key: $key}) {
    id
  }
}`

// ProjectMetadata returns the metadata of the given projects, or of every
// project when none is given. A project the API returned nothing for maps to
// a nil Metadata.
func (c *client) ProjectMetadata(ctx context.Context, projects []string) (map[string]sdk.Metadata, sdk.GraphQLErrors, error) {
	if len(projects) == 0 {
		var data struct {
			AllProjects []*sdk.Project `json:"allProjects"`
		}
		errs, err := c.Execute(ctx, allProjectsMetadataQuery, nil, &data)
		if err != nil {
			return nil, errs, err
		}
		if err := totalFailure("allProjects", data.AllProjects != nil, errs); err != nil {
			return nil, errs, err
		}
		res := make(map[string]sdk.Metadata, len(data.AllProjects))
		for _, p := range data.AllProjects {
			if p != nil {
				res[p.Name] = p.Metadata
			}
		}
		return res, errs, nil
	}

	br := c.BatchQuery(ctx, "projectByName", "name", projects, graphql.Fields("metadata"), 0)
	if br.Err != nil {
		return nil, br.Errors, sdk.WrapError(br.Err, "error fetching metadata")
	}
	res := make(map[string]sdk.Metadata, len(projects))
	for name, raw := range br.Data {
		if raw == nil {
			res[name] = nil
			continue
		}
		var p sdk.Project
		if err := json.Unmarshal(raw, &p); err != nil {
			// unreadable metadata is reported as missing
			res[name] = nil
			continue
		}
		res[name] = p.Metadata
	}
	return res, br.Errors, nil
}

// MetadataUpdate sets key and returns "key:value" as stored by the API, or
// "key:null" when the key is not in the returned metadata.
func (c *client) MetadataUpdate(ctx context.Context, projectID int, key, value string) (string, error) {
	var p sdk.Project
	vars := map[string]interface{}{"id": projectID, "key": key, "value": value}
	if err := c.mutateField(ctx, metadataUpdateMutation, vars, "updateProjectMetadata", &p); err != nil {
		return "", sdk.WrapError(err, "unable to update metadata %s of project %d", key, projectID)
	}
	v, ok := p.Metadata[key]
	if !ok {
		return key + ":null", nil
	}
	return fmt.Sprintf("%s:%s", key, v), nil
}

func (c *client) MetadataRemove(ctx context.Context, projectID int, key string) (string, error) {
	vars := map[string]interface{}{"id": projectID, "key": key}
	if err := c.mutateField(ctx, metadataRemoveMutation, vars, "removeProjectMetadataByKey", nil); err != nil {
		return "", sdk.WrapError(err, "unable to remove metadata %s of project %d", key, projectID)
	}
	return key, nil
}
