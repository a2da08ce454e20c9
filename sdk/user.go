package sdk

// User is the authenticated user, as returned by the "me" query.
type User struct {
	ID        string  `json:"id" yaml:"id" cli:"id"`
	Email     string  `json:"email" yaml:"email" cli:"email,key"`
	FirstName string  `json:"firstName" yaml:"firstName" cli:"first_name"`
	LastName  string  `json:"lastName" yaml:"lastName" cli:"last_name"`
	Groups    []Group `json:"groups,omitempty" yaml:"groups,omitempty"`
}
