package reconcile

import (
	"github.com/ovh/lagoonctl/sdk"
)

// DefaultCronService is the service a cron job runs in when none is given.
const DefaultCronService = "cli"

// CronJob is an entry of environments.<env>.cronjobs in .lagoon.yml.
type CronJob struct {
	Name     string `yaml:"name" json:"name" mapstructure:"name"`
	Schedule string `yaml:"schedule,omitempty" json:"schedule,omitempty" mapstructure:"schedule"`
	Command  string `yaml:"command,omitempty" json:"command,omitempty" mapstructure:"command"`
	Service  string `yaml:"service,omitempty" json:"service,omitempty" mapstructure:"service"`
}

// ValidateCronJobs checks that every job is named and, for state present,
// has a schedule and a command.
func ValidateCronJobs(jobs []CronJob, state State) error {
	for _, j := range jobs {
		if j.Name == "" {
			return sdk.NewErrorFrom(sdk.ErrWrongRequest, "cron name is required for cron job")
		}
		if state != StatePresent {
			continue
		}
		if j.Schedule == "" {
			return sdk.NewErrorFrom(sdk.ErrWrongRequest, "cron schedule is required for cron job %s", j.Name)
		}
		if j.Command == "" {
			return sdk.NewErrorFrom(sdk.ErrWrongRequest, "cron command is required for cron job %s", j.Name)
		}
	}
	return nil
}

// CronJobs merges desired into the cron jobs of an environment, matching
// them by name. Existing jobs keep their position; updated ones are changed
// in place; new ones are appended. For state absent, matching jobs are
// dropped. The returned slice never shares memory with existing.
func CronJobs(existing, desired []CronJob, state State) ([]CronJob, bool) {
	merged := make([]CronJob, len(existing))
	copy(merged, existing)
	changed := false

	for _, d := range desired {
		idx := -1
		for i := range merged {
			if merged[i].Name == d.Name {
				idx = i
				break
			}
		}

		if state == StateAbsent {
			if idx >= 0 {
				merged = append(merged[:idx:idx], merged[idx+1:]...)
				changed = true
			}
			continue
		}

		if idx < 0 {
			if d.Service == "" {
				d.Service = DefaultCronService
			}
			merged = append(merged, d)
			changed = true
			continue
		}

		if merged[idx].Schedule != d.Schedule || merged[idx].Command != d.Command {
			merged[idx].Schedule = d.Schedule
			merged[idx].Command = d.Command
			merged[idx].Service = d.Service
			if merged[idx].Service == "" {
				merged[idx].Service = DefaultCronService
			}
			changed = true
		}
	}
	return merged, changed
}
