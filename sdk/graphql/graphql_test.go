package graphql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovh/lagoonctl/sdk"
)

func TestDocumentString(t *testing.T) {
	doc := Query(
		NewField("projectByName", NewField("kubernetes").SelectFields("id", "name")).
			WithAlias("my_project").
			WithArg("name", "my-project").
			SelectFields("id"),
	)
	expected := `query {
  my_project: projectByName(name: "my-project") {
    kubernetes {
      id
      name
    }
    id
  }
}
`
	assert.Equal(t, expected, doc.String())
	assert.NoError(t, doc.Validate())
}

func TestDocumentFragments(t *testing.T) {
	common := &Fragment{Name: "Common", On: "AdvancedTaskDefinitionCommand", Selection: Fields("id", "name")}
	doc := Query(
		NewField("allAdvancedTaskDefinitions",
			common.Spread(),
			On("AdvancedTaskDefinitionCommand", Fields("command")...),
			On("AdvancedTaskDefinitionImage", Fields("image")...),
		),
	).Named("Defs").WithVariable("env", "Int!").WithFragment(common)

	expected := `query Defs($env: Int!) {
  allAdvancedTaskDefinitions {
    ...Common
    ... on AdvancedTaskDefinitionCommand {
      command
    }
    ... on AdvancedTaskDefinitionImage {
      image
    }
  }
}

fragment Common on AdvancedTaskDefinitionCommand {
  id
  name
}
`
	assert.Equal(t, expected, doc.String())
}

func TestFormatValue(t *testing.T) {
	one := 1
	var nilPtr *int
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"string", `say "hi"`, `"say \"hi\""`},
		{"int", 42, "42"},
		{"float", 0.5, "0.5"},
		{"bool", true, "true"},
		{"nil", nil, "null"},
		{"nil pointer", nilPtr, "null"},
		{"pointer", &one, "1"},
		{"enum", Enum("PROJECT"), "PROJECT"},
		{"variable", Variable("id"), "$id"},
		{"typed string", sdk.EnvVariableScopeBuild, `"BUILD"`},
		{"string slice", []string{"a", "b"}, `["a", "b"]`},
		{"object", map[string]interface{}{"project": map[string]interface{}{"name": "p"}, "branchName": "main"}, `{branchName: "main", project: {name: "p"}}`},
		{"struct", sdk.BuildVariable{Name: "A", Value: "1"}, `{name: "A", value: "1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}

func TestFieldCopy(t *testing.T) {
	tmpl := NewField("projectByName").SelectFields("id")
	a := tmpl.Copy().WithAlias("a").WithArg("name", "a")
	b := tmpl.Copy().WithAlias("b").WithArg("name", "b")
	assert.Len(t, tmpl.Arguments, 0)
	assert.Equal(t, "a", a.Arguments[0].Value)
	assert.Equal(t, "b", b.Arguments[0].Value)
}

func TestDynamicQuery(t *testing.T) {
	doc, err := DynamicQuery("projectByName", "Project",
		map[string]interface{}{"name": "test-project"},
		[]string{"id", "name"},
		map[string]SubFields{"kubernetes": {Type: "Kubernetes", Fields: []string{"id", "name"}}},
	)
	require.NoError(t, err)
	assert.Equal(t, `query {
  projectByName(name: "test-project") {
    id
    name
    kubernetes {
      id
      name
    }
  }
}
`, doc.String())

	_, err = DynamicQuery("projectByName", "Project", nil, nil, nil)
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))
}

func TestDynamicMutation(t *testing.T) {
	doc, err := DynamicMutation("addFact", map[string]interface{}{"environment": 1, "name": "drupal"}, "Fact", []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, `mutation {
  addFact(input: {environment: 1, name: "drupal"}) {
    id
  }
}
`, doc.String())

	_, err = DynamicMutation("addFact", nil, "", nil)
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))

	_, err = DynamicMutation("addFact", map[string]interface{}{"a": 1}, "Fact", nil)
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))

	assert.Error(t, Query().Validate())
}
