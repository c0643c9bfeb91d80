package provisioner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Machine is the provisioner's record of a provisionable host.
//
// The service owns many more fields than the ones named here. Machine
// round-trips everything it does not model through an opaque remainder so
// that a full-object PUT (the only update the service supports) never
// drops service-owned data.
type Machine struct {
	ID             int
	Name           string
	NetbootEnabled bool

	extra map[string]json.RawMessage
}

func (m *Machine) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["id"]; ok {
		if err := json.Unmarshal(v, &m.ID); err != nil {
			return fmt.Errorf("machine id: %w", err)
		}
		delete(raw, "id")
	}
	if v, ok := raw["name"]; ok {
		if err := json.Unmarshal(v, &m.Name); err != nil {
			return fmt.Errorf("machine name: %w", err)
		}
		delete(raw, "name")
	}
	if v, ok := raw["netboot_enabled"]; ok {
		if err := json.Unmarshal(v, &m.NetbootEnabled); err != nil {
			return fmt.Errorf("machine netboot_enabled: %w", err)
		}
		delete(raw, "netboot_enabled")
	}
	m.extra = raw
	return nil
}

func (m Machine) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(m.extra)+3)
	for k, v := range m.extra {
		out[k] = v
	}
	var err error
	if out["id"], err = json.Marshal(m.ID); err != nil {
		return nil, err
	}
	if out["name"], err = json.Marshal(m.Name); err != nil {
		return nil, err
	}
	if out["netboot_enabled"], err = json.Marshal(m.NetbootEnabled); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// quoteName percent-encodes a machine name for use inside the filter DSL.
// The service percent-decodes the value it finds in the s-expression, so a
// space must travel as %20; a form-encoded "+" would reach it literally and
// never match.
func quoteName(name string) string {
	return strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
}

// LookupMachine resolves a machine name to its record among assigned
// machines. Exactly one match is required: zero matches is a
// *NotFoundError, more than one a *AmbiguousError.
func (c *Client) LookupMachine(ctx context.Context, name string) (Machine, error) {
	// The q parameter is the service's filter DSL; only the name value
	// inside the s-expression is percent-encoded.
	query := url.Values{
		"q":        []string{fmt.Sprintf(`(= name "%s")`, quoteName(name))},
		"show_all": []string{"false"},
	}

	var machines []Machine
	if err := c.do(ctx, http.MethodGet, "/api/v1/machine", query, nil, []int{http.StatusOK}, &machines); err != nil {
		return Machine{}, err
	}

	switch {
	case len(machines) == 0:
		return Machine{}, &NotFoundError{Resource: "assigned machine", Name: name}
	case len(machines) > 1:
		return Machine{}, &AmbiguousError{Resource: "assigned machine", Name: name, Count: len(machines)}
	}
	return machines[0], nil
}

// UpdateMachine PUTs the full machine record. The service treats both 200
// and 202 as success; on an empty 202 body the submitted record is
// returned as the current representation.
func (c *Client) UpdateMachine(ctx context.Context, m Machine) (Machine, error) {
	updated := m
	path := fmt.Sprintf("/api/v1/machine/%d", m.ID)
	ok := []int{http.StatusOK, http.StatusAccepted}
	if err := c.do(ctx, http.MethodPut, path, nil, m, ok, &updated); err != nil {
		return Machine{}, err
	}
	return updated, nil
}
