package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ovh/lagoonctl/sdk"
)

func TestTaskDefinitionChanged(t *testing.T) {
	current := sdk.TaskDefinition{
		ID:          1,
		Type:        sdk.TaskDefinitionTypeCommand,
		Name:        "clear-cache",
		Description: "Clear cache",
		Permission:  sdk.TaskPermissionDeveloper,
		Service:     "cli",
		Command:     "drush cr",
		Image:       "ignored",
		Arguments: []sdk.TaskDefinitionArgument{
			{ID: 10, Name: "env", DisplayName: "Environment", Type: "STRING"},
		},
	}
	same := current
	same.ID = 0
	same.Image = ""
	same.Arguments = []sdk.TaskDefinitionArgument{{Name: "env", DisplayName: "Environment", Type: "STRING"}}

	tests := []struct {
		name   string
		modify func(*sdk.TaskDefinition)
		want   bool
	}{
		{"same", func(*sdk.TaskDefinition) {}, false},
		{"permission", func(d *sdk.TaskDefinition) { d.Permission = sdk.TaskPermissionMaintainer }, true},
		{"description", func(d *sdk.TaskDefinition) { d.Description = "Rebuild cache" }, true},
		{"service", func(d *sdk.TaskDefinition) { d.Service = "php" }, true},
		{"command", func(d *sdk.TaskDefinition) { d.Command = "drush cc all" }, true},
		{"argument type", func(d *sdk.TaskDefinition) {
			d.Arguments = []sdk.TaskDefinitionArgument{{Name: "env", DisplayName: "Environment", Type: "NUMERIC"}}
		}, true},
		{"argument added", func(d *sdk.TaskDefinition) {
			d.Arguments = append(d.Arguments, sdk.TaskDefinitionArgument{Name: "x", Type: "STRING"})
		}, true},
		{"argument range ignored", func(d *sdk.TaskDefinition) {
			d.Arguments = []sdk.TaskDefinitionArgument{{Name: "env", DisplayName: "Environment", Type: "STRING", Range: []string{"a"}}}
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desired := same
			tt.modify(&desired)
			assert.Equal(t, tt.want, TaskDefinitionChanged(current, desired))
		})
	}
}

func TestTaskDefinitionChangedImage(t *testing.T) {
	current := sdk.TaskDefinition{Type: sdk.TaskDefinitionTypeImage, Image: "backup:1", Command: "a"}
	assert.False(t, TaskDefinitionChanged(current, sdk.TaskDefinition{Type: sdk.TaskDefinitionTypeImage, Image: "backup:1"}))
	assert.True(t, TaskDefinitionChanged(current, sdk.TaskDefinition{Type: sdk.TaskDefinitionTypeImage, Image: "backup:2"}))
	assert.True(t, TaskDefinitionChanged(current, sdk.TaskDefinition{Type: sdk.TaskDefinitionTypeCommand, Image: "backup:1"}))
}
