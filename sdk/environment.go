package sdk

// Environment types
const (
	EnvironmentTypeProduction  = "PRODUCTION"
	EnvironmentTypeDevelopment = "DEVELOPMENT"
)

// Environment is a deployed branch or pull request of a project.
// KubernetesNamespaceName is the natural key.
type Environment struct {
	ID                      int           `json:"id,omitempty" yaml:"id,omitempty" cli:"id"`
	Name                    string        `json:"name,omitempty" yaml:"name,omitempty" cli:"name"`
	KubernetesNamespaceName string        `json:"kubernetesNamespaceName,omitempty" yaml:"kubernetesNamespaceName,omitempty" cli:"namespace,key"`
	EnvironmentType         string        `json:"environmentType,omitempty" yaml:"environmentType,omitempty" cli:"type"`
	AutoIdle                *int          `json:"autoIdle,omitempty" yaml:"autoIdle,omitempty"`
	Created                 string        `json:"created,omitempty" yaml:"created,omitempty"`
	Updated                 string        `json:"updated,omitempty" yaml:"updated,omitempty"`
	Route                   string        `json:"route,omitempty" yaml:"route,omitempty" cli:"route"`
	Routes                  string        `json:"routes,omitempty" yaml:"routes,omitempty"`
	Kubernetes              *Cluster      `json:"kubernetes,omitempty" yaml:"kubernetes,omitempty"`
	Openshift               *Cluster      `json:"openshift,omitempty" yaml:"openshift,omitempty"`
	Project                 *Project      `json:"project,omitempty" yaml:"project,omitempty"`
	Deployments             []Deployment  `json:"deployments,omitempty" yaml:"deployments,omitempty"`
	EnvVariables            []EnvVariable `json:"envVariables,omitempty" yaml:"envVariables,omitempty"`
	Facts                   []Fact        `json:"facts,omitempty" yaml:"facts,omitempty"`
	Problems                []Problem     `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// Default top-level fields selected for environments.
var EnvironmentFields = []string{
	"autoIdle",
	"created",
	"environmentType",
	"id",
	"kubernetesNamespaceName",
	"name",
	"route",
	"routes",
	"updated",
}

// Cluster is a deploy target (kubernetes or openshift).
type Cluster struct {
	ID   int    `json:"id" yaml:"id" cli:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty" cli:"name,key"`
}

// Default fields selected for clusters.
var ClusterFields = []string{"id", "name"}

// Deployment statuses
const (
	DeploymentStatusNew       = "new"
	DeploymentStatusPending   = "pending"
	DeploymentStatusRunning   = "running"
	DeploymentStatusCancelled = "cancelled"
	DeploymentStatusError     = "error"
	DeploymentStatusFailed    = "failed"
	DeploymentStatusComplete  = "complete"
)

// Deployment is a build of an environment.
type Deployment struct {
	ID        int    `json:"id,omitempty" yaml:"id,omitempty" cli:"id"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty" cli:"name,key"`
	Status    string `json:"status,omitempty" yaml:"status,omitempty" cli:"status"`
	Created   string `json:"created,omitempty" yaml:"created,omitempty" cli:"created"`
	Started   string `json:"started,omitempty" yaml:"started,omitempty"`
	Completed string `json:"completed,omitempty" yaml:"completed,omitempty"`
	BulkID    string `json:"bulkId,omitempty" yaml:"bulkId,omitempty"`
	BulkName  string `json:"bulkName,omitempty" yaml:"bulkName,omitempty"`
	UILink    string `json:"uiLink,omitempty" yaml:"uiLink,omitempty"`
}

// IsTerminal returns true once the deployment will not change status anymore.
// "new" is considered terminal since a deployment that never got picked up
// will not progress on its own.
func (d Deployment) IsTerminal() bool {
	switch d.Status {
	case DeploymentStatusComplete, DeploymentStatusFailed, DeploymentStatusNew, DeploymentStatusCancelled:
		return true
	}
	return false
}

// Default fields selected for deployments.
var DeploymentFields = []string{
	"bulkId",
	"bulkName",
	"completed",
	"created",
	"id",
	"name",
	"started",
	"status",
	"uiLink",
}

// EnvironmentNames returns the natural keys of the given environments.
func EnvironmentNames(envs []Environment) []string {
	names := make([]string, len(envs))
	for i := range envs {
		names[i] = envs[i].KubernetesNamespaceName
	}
	return names
}

// DeployEnvironmentInput identifies an environment in a bulk deployment, either
// by id or by project and environment names.
type DeployEnvironmentInput struct {
	ID      int                 `json:"id,omitempty" mapstructure:"id"`
	Name    string              `json:"name,omitempty" mapstructure:"name"`
	Project *DeployProjectInput `json:"project,omitempty" mapstructure:"project"`
}

// DeployProjectInput identifies a project by id or name.
type DeployProjectInput struct {
	ID   int    `json:"id,omitempty" mapstructure:"id"`
	Name string `json:"name,omitempty" mapstructure:"name"`
}

// BuildVariable is a name/value pair passed to a deployment.
type BuildVariable struct {
	Name  string `json:"name" mapstructure:"name" validate:"required"`
	Value string `json:"value" mapstructure:"value"`
}
