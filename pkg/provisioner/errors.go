package provisioner

import "fmt"

// NotFoundError reports that a name-based lookup matched nothing.
type NotFoundError struct {
	Resource string
	Name     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found matching %q", e.Resource, e.Name)
}

// AmbiguousError reports that a lookup which must identify exactly one
// resource matched several. The client never picks one arbitrarily.
type AmbiguousError struct {
	Resource string
	Name     string
	Count    int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%d %ss found matching %q, expected exactly one", e.Count, e.Resource, e.Name)
}

// TransportError reports an HTTP response outside the expected success
// set for an operation.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: unexpected response %s", e.Method, e.URL, e.Status)
}

// MissingContentError reports a preseed upsert for a name with no existing
// resource and no content supplied: nothing to create, nothing to discover.
type MissingContentError struct {
	Name string
}

func (e *MissingContentError) Error() string {
	return fmt.Sprintf("preseed %q does not exist and no content was given", e.Name)
}
