package action

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rockbears/log"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/lagoonclient"
	"github.com/ovh/lagoonctl/sdk/reconcile"
)

// ProjectArgs are the arguments of the project action.
type ProjectArgs struct {
	Name                         string  `mapstructure:"name" validate:"required"`
	State                        string  `mapstructure:"state"`
	GitURL                       string  `mapstructure:"git_url"`
	ProductionEnvironment        string  `mapstructure:"production_environment"`
	Subfolder                    *string `mapstructure:"subfolder"`
	Branches                     *string `mapstructure:"branches"`
	Pullrequests                 *string `mapstructure:"pullrequests"`
	StandbyProductionEnvironment *string `mapstructure:"standby_production_environment"`
	Openshift                    int     `mapstructure:"openshift"`
	AutoIdle                     *int    `mapstructure:"auto_idle"`
	DevelopmentEnvironmentsLimit *int    `mapstructure:"development_environments_limit"`
	ProblemsUI                   int     `mapstructure:"problems_ui"`
	FactsUI                      int     `mapstructure:"facts_ui"`
}

func (a ProjectArgs) input() sdk.ProjectInput {
	in := sdk.ProjectInput{
		Name:                         a.Name,
		GitURL:                       a.GitURL,
		ProductionEnvironment:        a.ProductionEnvironment,
		Openshift:                    a.Openshift,
		Subfolder:                    a.Subfolder,
		Branches:                     a.Branches,
		Pullrequests:                 a.Pullrequests,
		StandbyProductionEnvironment: a.StandbyProductionEnvironment,
		AutoIdle:                     1,
		DevelopmentEnvironmentsLimit: 5,
		ProblemsUI:                   a.ProblemsUI,
		FactsUI:                      a.FactsUI,
	}
	if in.Openshift == 0 {
		in.Openshift = 1
	}
	if a.AutoIdle != nil {
		in.AutoIdle = *a.AutoIdle
	}
	if a.DevelopmentEnvironmentsLimit != nil {
		in.DevelopmentEnvironmentsLimit = *a.DevelopmentEnvironmentsLimit
	}
	return in
}

// RunProject creates a project when missing, or deletes it for state absent.
// An existing project is never updated, see RunProjectUpdate.
func RunProject(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a ProjectArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	state, err := reconcile.ParseState(a.State)
	if err != nil {
		return res, err
	}

	exists := true
	if _, err := c.ProjectIDFromName(ctx, a.Name); err != nil {
		if !sdk.ErrorIs(err, sdk.ErrNotFound) {
			return res, err
		}
		exists = false
	}

	switch {
	case state == reconcile.StateAbsent && exists:
		if err := c.ProjectDelete(ctx, a.Name); err != nil {
			return res, err
		}
		res.Changed = true
	case state == reconcile.StatePresent && !exists:
		p, err := c.ProjectAdd(ctx, a.input())
		if err != nil {
			return res, err
		}
		res.Changed = true
		res.Result = p
	}
	return res, nil
}

// ProjectUpdateArgs are the arguments of the project_update action.
type ProjectUpdateArgs struct {
	Project string                 `mapstructure:"project" validate:"required"`
	Values  map[string]interface{} `mapstructure:"values"`
}

// RunProjectUpdate patches a project when one of the given values differs
// from the current one.
func RunProjectUpdate(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a ProjectUpdateArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	if len(a.Values) == 0 {
		return res, sdk.NewErrorFrom(sdk.ErrWrongRequest, "no value to update")
	}

	q := lagoonclient.NewProjectQuery(c).ByName(ctx, a.Project)
	if q.Err() == nil && len(q.Projects()) > 0 {
		q = q.WithCluster(ctx)
	}
	if q.Err() != nil {
		return res, q.Err()
	}
	if len(q.Projects()) == 0 {
		return res, sdk.NewErrorFrom(sdk.ErrNotFound, "project %q not found", a.Project)
	}
	project := q.Projects()[0]

	current, err := asMap(project)
	if err != nil {
		return res, err
	}
	if !reconcile.PatchRequired(current, a.Values, reconcile.ClusterKeys...) {
		res.Result = project
		return res, nil
	}

	updated, err := c.ProjectUpdate(ctx, project.ID, a.Values)
	if err != nil {
		return res, err
	}
	log.Info(ctx, "project %s updated", a.Project)
	res.Changed = true
	res.Result = updated
	return res, nil
}

// ProjectGroupArgs are the arguments of the project_group action.
type ProjectGroupArgs struct {
	Project string   `mapstructure:"project" validate:"required"`
	Groups  []string `mapstructure:"groups"`
	State   string   `mapstructure:"state"`
}

// RunProjectGroup adds groups to a project, or removes them for state
// absent. Only the groups whose membership has to change are sent.
func RunProjectGroup(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a ProjectGroupArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	state, err := reconcile.ParseState(a.State)
	if err != nil {
		return res, err
	}

	groups, errs, err := c.ProjectGroups(ctx, []string{a.Project})
	if err != nil {
		return res, err
	}
	warnPartial(ctx, errs)
	current := make(map[string]bool)
	for _, g := range groups[a.Project] {
		current[g.Name] = true
	}

	var ops []string
	for _, g := range a.Groups {
		if current[g] == (state == reconcile.StateAbsent) {
			ops = append(ops, g)
		}
	}
	if len(ops) == 0 {
		return res, nil
	}

	if state == reconcile.StateAbsent {
		err = c.ProjectGroupsRemove(ctx, a.Project, ops)
	} else {
		err = c.ProjectGroupsAdd(ctx, a.Project, ops)
	}
	if err != nil {
		return res, err
	}
	res.Changed = true
	res.Result = ops
	return res, nil
}

// ProjectNotificationArgs are the arguments of the project_notification action.
type ProjectNotificationArgs struct {
	Project      string `mapstructure:"project" validate:"required"`
	Notification string `mapstructure:"notification" validate:"required"`
	Type         string `mapstructure:"type"`
	State        string `mapstructure:"state"`
}

// RunProjectNotification links a notification to a project. Adding a
// notification already linked is not a change.
func RunProjectNotification(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a ProjectNotificationArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	state, err := reconcile.ParseState(a.State)
	if err != nil {
		return res, err
	}
	if a.Type == "" {
		a.Type = string(sdk.NotificationTypeSlack)
	}
	if err := sdk.ValidateEnum("type", a.Type, string(sdk.NotificationTypeSlack)); err != nil {
		return res, err
	}

	n := sdk.Notification{Project: a.Project, Type: sdk.NotificationType(a.Type), Name: a.Notification}
	if state == reconcile.StateAbsent {
		if err := c.NotificationRemove(ctx, n); err != nil {
			return res, err
		}
		res.Changed = true
		return res, nil
	}

	if err := c.NotificationAdd(ctx, n); err != nil {
		if strings.Contains(err.Error(), "Duplicate") {
			return res, nil
		}
		return res, err
	}
	res.Changed = true
	return res, nil
}

// ListArgs are the arguments of the list action.
type ListArgs struct {
	Type string `mapstructure:"type"`
}

// RunList returns every project with its environments.
func RunList(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a ListArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	if a.Type == "" {
		a.Type = "project"
	}
	if err := sdk.ValidateEnum("type", a.Type, "project"); err != nil {
		return res, err
	}

	q := lagoonclient.NewProjectQuery(c).
		All(ctx).
		WithEnvironments(ctx, lagoonclient.BatchSize(20))
	if q.Err() != nil {
		return res, q.Err()
	}
	if len(q.Errors()) > 0 && len(q.Projects()) == 0 {
		return res, sdk.NewError(sdk.ErrGraphQL, q.Errors())
	}
	warnPartial(ctx, q.Errors())
	res.Result = q.Projects()
	return res, nil
}

// asMap returns the JSON representation of v as a map, the way patches
// are expressed.
func asMap(v interface{}) (map[string]interface{}, error) {
	btes, err := json.Marshal(v)
	if err != nil {
		return nil, sdk.WithStack(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(btes, &m); err != nil {
		return nil, sdk.WithStack(err)
	}
	return m, nil
}
