package lagoonyml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovh/lagoonctl/sdk/reconcile"
)

const lagoonYML = `docker-compose-yaml: docker-compose.yml

# production settings
environments:
  main:
    cronjobs:
      # keep me
      - name: drush cron
        schedule: "M * * * *"
        command: drush cron
        service: cli
      - name: old
        schedule: "0 0 * * *"
        command: echo old
        service: cli
        shell: bash
`

func TestMergeCronJobs(t *testing.T) {
	f, err := Parse([]byte(lagoonYML))
	require.NoError(t, err)

	changed, err := f.MergeCronJobs("main", []reconcile.CronJob{
		{Name: "old", Schedule: "*/5 * * * *", Command: "echo new"},
		{Name: "backup", Schedule: "0 1 * * *", Command: "backup.sh"},
	}, reconcile.StatePresent)
	require.NoError(t, err)
	assert.True(t, changed)

	jobs, err := f.CronJobs("main")
	require.NoError(t, err)
	assert.Equal(t, []reconcile.CronJob{
		{Name: "drush cron", Schedule: "M * * * *", Command: "drush cron", Service: "cli"},
		{Name: "old", Schedule: "*/5 * * * *", Command: "echo new", Service: "cli"},
		{Name: "backup", Schedule: "0 1 * * *", Command: "backup.sh", Service: "cli"},
	}, jobs)

	out, err := f.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(out), "# production settings")
	assert.Contains(t, string(out), "# keep me")
	assert.Contains(t, string(out), "shell: bash")
}

func TestMergeCronJobsUnchanged(t *testing.T) {
	f, err := Parse([]byte(lagoonYML))
	require.NoError(t, err)

	changed, err := f.MergeCronJobs("main", []reconcile.CronJob{
		{Name: "drush cron", Schedule: "M * * * *", Command: "drush cron"},
	}, reconcile.StatePresent)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = f.MergeCronJobs("dev", []reconcile.CronJob{{Name: "drush cron"}}, reconcile.StateAbsent)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestMergeCronJobsAbsent(t *testing.T) {
	f, err := Parse([]byte(lagoonYML))
	require.NoError(t, err)

	changed, err := f.MergeCronJobs("main", []reconcile.CronJob{{Name: "old"}}, reconcile.StateAbsent)
	require.NoError(t, err)
	assert.True(t, changed)

	jobs, err := f.CronJobs("main")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "drush cron", jobs[0].Name)
}

func TestMergeCronJobsNewEnvironment(t *testing.T) {
	f, err := Parse([]byte(lagoonYML))
	require.NoError(t, err)

	changed, err := f.MergeCronJobs("dev", []reconcile.CronJob{{Name: "a", Schedule: "* * * * *", Command: "x"}}, reconcile.StatePresent)
	require.NoError(t, err)
	assert.True(t, changed)

	jobs, err := f.CronJobs("dev")
	require.NoError(t, err)
	assert.Equal(t, []reconcile.CronJob{{Name: "a", Schedule: "* * * * *", Command: "x", Service: "cli"}}, jobs)

	jobs, err = f.CronJobs("main")
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lagoon.yml")
	require.NoError(t, os.WriteFile(path, []byte(lagoonYML), 0600))

	f, err := ReadFile(path)
	require.NoError(t, err)
	_, err = f.MergeCronJobs("main", []reconcile.CronJob{{Name: "old"}}, reconcile.StateAbsent)
	require.NoError(t, err)
	require.NoError(t, f.WriteFile(path))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())

	f, err = ReadFile(path)
	require.NoError(t, err)
	jobs, err := f.CronJobs("main")
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("- a\n- b\n"))
	assert.Error(t, err)

	f, err := Parse(nil)
	require.NoError(t, err)
	jobs, err := f.CronJobs("main")
	require.NoError(t, err)
	assert.Empty(t, jobs)
}
