package sdk

// Project is a Lagoon project. Name is the natural key, ID is assigned by the
// remote API and must be resolved from the name before most mutations.
type Project struct {
	ID                           int                  `json:"id,omitempty" yaml:"id,omitempty" cli:"id"`
	Name                         string               `json:"name,omitempty" yaml:"name,omitempty" cli:"name,key"`
	GitURL                       string               `json:"gitUrl,omitempty" yaml:"gitUrl,omitempty" cli:"git_url"`
	Subfolder                    string               `json:"subfolder,omitempty" yaml:"subfolder,omitempty"`
	Branches                     string               `json:"branches,omitempty" yaml:"branches,omitempty" cli:"branches"`
	Pullrequests                 string               `json:"pullrequests,omitempty" yaml:"pullrequests,omitempty"`
	ProductionEnvironment        string               `json:"productionEnvironment,omitempty" yaml:"productionEnvironment,omitempty" cli:"production_environment"`
	StandbyProductionEnvironment string               `json:"standbyProductionEnvironment,omitempty" yaml:"standbyProductionEnvironment,omitempty"`
	AutoIdle                     *int                 `json:"autoIdle,omitempty" yaml:"autoIdle,omitempty"`
	Availability                 string               `json:"availability,omitempty" yaml:"availability,omitempty"`
	Created                      string               `json:"created,omitempty" yaml:"created,omitempty"`
	DeploymentsDisabled          *int                 `json:"deploymentsDisabled,omitempty" yaml:"deploymentsDisabled,omitempty"`
	DevelopmentBuildPriority     *int                 `json:"developmentBuildPriority,omitempty" yaml:"developmentBuildPriority,omitempty"`
	DevelopmentEnvironmentsLimit *int                 `json:"developmentEnvironmentsLimit,omitempty" yaml:"developmentEnvironmentsLimit,omitempty"`
	OpenshiftProjectName         string               `json:"openshiftProjectName,omitempty" yaml:"openshiftProjectName,omitempty"`
	OpenshiftProjectPattern      string               `json:"openshiftProjectPattern,omitempty" yaml:"openshiftProjectPattern,omitempty"`
	ProductionAlias              string               `json:"productionAlias,omitempty" yaml:"productionAlias,omitempty"`
	ProductionBuildPriority      *int                 `json:"productionBuildPriority,omitempty" yaml:"productionBuildPriority,omitempty"`
	ProductionRoutes             string               `json:"productionRoutes,omitempty" yaml:"productionRoutes,omitempty"`
	RouterPattern                string               `json:"routerPattern,omitempty" yaml:"routerPattern,omitempty"`
	StandbyAlias                 string               `json:"standbyAlias,omitempty" yaml:"standbyAlias,omitempty"`
	StandbyRoutes                string               `json:"standbyRoutes,omitempty" yaml:"standbyRoutes,omitempty"`
	Metadata                     Metadata             `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Kubernetes                   *Cluster             `json:"kubernetes,omitempty" yaml:"kubernetes,omitempty"`
	Openshift                    *Cluster             `json:"openshift,omitempty" yaml:"openshift,omitempty"`
	Environments                 []Environment        `json:"environments,omitempty" yaml:"environments,omitempty"`
	EnvVariables                 []EnvVariable        `json:"envVariables,omitempty" yaml:"envVariables,omitempty"`
	Groups                       []Group              `json:"groups,omitempty" yaml:"groups,omitempty"`
	DeployTargetConfigs          []DeployTargetConfig `json:"deployTargetConfigs,omitempty" yaml:"deployTargetConfigs,omitempty"`
}

// Default top-level fields selected for projects.
var ProjectFields = []string{
	"autoIdle",
	"availability",
	"branches",
	"created",
	"deploymentsDisabled",
	"developmentBuildPriority",
	"developmentEnvironmentsLimit",
	"gitUrl",
	"id",
	"metadata",
	"name",
	"openshiftProjectName",
	"openshiftProjectPattern",
	"productionAlias",
	"productionBuildPriority",
	"productionEnvironment",
	"productionRoutes",
	"pullrequests",
	"routerPattern",
	"standbyAlias",
	"standbyProductionEnvironment",
	"standbyRoutes",
}

// ProjectInput is the input of the addProject mutation.
type ProjectInput struct {
	Name                         string  `json:"name" validate:"required"`
	GitURL                       string  `json:"gitUrl" validate:"required"`
	ProductionEnvironment        string  `json:"productionEnvironment" validate:"required"`
	Openshift                    int     `json:"openshift" validate:"required"`
	Subfolder                    *string `json:"subfolder"`
	Branches                     *string `json:"branches"`
	Pullrequests                 *string `json:"pullrequests"`
	StandbyProductionEnvironment *string `json:"standbyProductionEnvironment"`
	AutoIdle                     int     `json:"autoIdle"`
	DevelopmentEnvironmentsLimit int     `json:"developmentEnvironmentsLimit"`
	ProblemsUI                   int     `json:"problemsUi"`
	FactsUI                      int     `json:"factsUi"`
}

// ProjectNames returns the natural keys of the given projects.
func ProjectNames(projects []Project) []string {
	names := make([]string, len(projects))
	for i := range projects {
		names[i] = projects[i].Name
	}
	return names
}

// BoolToInt converts the boolean flags of the API (autoIdle, factsUi...).
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
