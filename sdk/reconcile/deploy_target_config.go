package reconcile

import (
	"github.com/ovh/lagoonctl/sdk"
)

// DeployTargetConfigAdd is a config to create. ExistingID is the id of the
// config sharing its branches, 0 if none.
type DeployTargetConfigAdd struct {
	Config     sdk.DeployTargetConfigInput
	ExistingID int
}

// DeployTargetConfigPlan lists the configs to delete, then the ones to add.
type DeployTargetConfigPlan struct {
	Delete []int
	Add    []DeployTargetConfigAdd
}

// Empty returns true when nothing has to be done.
func (p DeployTargetConfigPlan) Empty() bool {
	return len(p.Delete) == 0 && len(p.Add) == 0
}

// DeployTargetConfigs computes how to bring the configs of a project to
// desired. Configs are matched on branches. A desired config whose match
// differs on pullrequests, deploy target or weight, or that has no match, is
// added; the API replaces a config sharing the same branches. Existing
// configs nobody asked for are kept. With replace, every existing config is
// deleted and every desired one added.
func DeployTargetConfigs(existing []sdk.DeployTargetConfig, desired []sdk.DeployTargetConfigInput, replace bool) DeployTargetConfigPlan {
	var plan DeployTargetConfigPlan
	if replace {
		for i := range existing {
			plan.Delete = append(plan.Delete, existing[i].ID)
		}
		for i := range desired {
			plan.Add = append(plan.Add, DeployTargetConfigAdd{Config: desired[i]})
		}
		return plan
	}

	for _, d := range desired {
		match, found := deployTargetConfigByBranches(existing, d.Branches)
		if !found {
			plan.Add = append(plan.Add, DeployTargetConfigAdd{Config: d})
			continue
		}
		if sameDeployTargetConfig(match, d) {
			continue
		}
		plan.Add = append(plan.Add, DeployTargetConfigAdd{Config: d, ExistingID: match.ID})
	}
	return plan
}

// DeployTargetConfigsAbsent returns the ids of the existing configs equal on
// every field to one of desired.
func DeployTargetConfigsAbsent(existing []sdk.DeployTargetConfig, desired []sdk.DeployTargetConfigInput) []int {
	var ids []int
	for _, e := range existing {
		for _, d := range desired {
			if e.Branches == d.Branches && sameDeployTargetConfig(e, d) {
				ids = append(ids, e.ID)
				break
			}
		}
	}
	return ids
}

func deployTargetConfigByBranches(configs []sdk.DeployTargetConfig, branches string) (sdk.DeployTargetConfig, bool) {
	for i := range configs {
		if configs[i].Branches == branches {
			return configs[i], true
		}
	}
	return sdk.DeployTargetConfig{}, false
}

// pullrequests is a free string on the API side ("true", "false" or a regex)
func sameDeployTargetConfig(e sdk.DeployTargetConfig, d sdk.DeployTargetConfigInput) bool {
	return e.Pullrequests == d.Pullrequests &&
		e.DeployTargetID() == d.DeployTarget &&
		e.Weight == d.Weight
}
