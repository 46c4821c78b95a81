package xcomposite

// Ignore is the distinguished result a component method returns
// when it has no contribution to a combined call.  The dispatcher
// drops Ignore results before reduction, which allows third-party
// components to participate in a composition without any awareness
// of the policy declared for the method.
type Ignore struct{}

func isIgnore(result any) bool {
	switch result.(type) {
	case Ignore, *Ignore:
		return true
	}
	return false
}
