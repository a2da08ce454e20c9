package lagoonclient

import (
	"context"

	"github.com/ovh/lagoonctl/sdk"
)

const meQuery = `query whoAmI {
  me {
    id
    email
    firstName
    lastName
    groups {
      name
      type
    }
  }
}`

func (c *client) Me(ctx context.Context) (*sdk.User, error) {
	var u sdk.User
	if err := c.queryField(ctx, meQuery, nil, "me", &u); err != nil {
		return nil, sdk.WrapError(err, "unable to get user information")
	}
	return &u, nil
}
