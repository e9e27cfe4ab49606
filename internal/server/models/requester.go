package models

// Requester describes who is following a link. PrincipalID is empty for
// anonymous bearers.
type Requester struct {
	PrincipalID string
}

// Anonymous reports whether the request carried no valid identity.
func (r Requester) Anonymous() bool {
	return r.PrincipalID == ""
}
