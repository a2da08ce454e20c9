package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ovh/lagoonctl/sdk"
)

func TestCronJobs(t *testing.T) {
	a := CronJob{Name: "A", Schedule: "* * * * *", Command: "x", Service: "cli"}
	b := CronJob{Name: "B", Schedule: "M * * * *", Command: "drush cron", Service: "php"}

	tests := []struct {
		name        string
		existing    []CronJob
		desired     []CronJob
		state       State
		want        []CronJob
		wantChanged bool
	}{
		{
			name:        "add defaults the service",
			desired:     []CronJob{{Name: "A", Schedule: "* * * * *", Command: "x"}},
			state:       StatePresent,
			want:        []CronJob{a},
			wantChanged: true,
		},
		{
			name:        "remove",
			existing:    []CronJob{a},
			desired:     []CronJob{{Name: "A"}},
			state:       StateAbsent,
			want:        []CronJob{},
			wantChanged: true,
		},
		{
			name:     "remove unknown is a noop",
			existing: []CronJob{a},
			desired:  []CronJob{{Name: "C"}},
			state:    StateAbsent,
			want:     []CronJob{a},
		},
		{
			name:     "unchanged",
			existing: []CronJob{a, b},
			desired:  []CronJob{{Name: "B", Schedule: "M * * * *", Command: "drush cron"}},
			state:    StatePresent,
			want:     []CronJob{a, b},
		},
		{
			name:     "update in place keeps the order",
			existing: []CronJob{a, b},
			desired: []CronJob{
				{Name: "C", Schedule: "0 0 * * *", Command: "backup", Service: "node"},
				{Name: "A", Schedule: "*/5 * * * *", Command: "x"},
			},
			state: StatePresent,
			want: []CronJob{
				{Name: "A", Schedule: "*/5 * * * *", Command: "x", Service: "cli"},
				b,
				{Name: "C", Schedule: "0 0 * * *", Command: "backup", Service: "node"},
			},
			wantChanged: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := append([]CronJob(nil), tt.existing...)
			got, changed := CronJobs(tt.existing, tt.desired, tt.state)
			assert.Equal(t, tt.wantChanged, changed)
			assert.ElementsMatch(t, tt.want, got)
			if len(tt.want) > 0 {
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, before, tt.existing)
		})
	}
}

func TestValidateCronJobs(t *testing.T) {
	assert.NoError(t, ValidateCronJobs([]CronJob{{Name: "A"}}, StateAbsent))

	err := ValidateCronJobs([]CronJob{{Schedule: "* * * * *"}}, StateAbsent)
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))

	err = ValidateCronJobs([]CronJob{{Name: "A", Command: "x"}}, StatePresent)
	assert.EqualError(t, err, "wrong request (from: cron schedule is required for cron job A)")

	err = ValidateCronJobs([]CronJob{{Name: "A", Schedule: "* * * * *"}}, StatePresent)
	assert.EqualError(t, err, "wrong request (from: cron command is required for cron job A)")
}
