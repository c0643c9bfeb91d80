package provisioner

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// DefaultInterface is the interface consulted when a caller does not name
// one. Provisioning networks in this setup hang off the second NIC.
const DefaultInterface = "eth1"

const configTypeDynamicReserved = "dynamic-reserved"

// Interface is one network interface entry on a machine, carrying both
// the DHCP lease address and an optional statically reserved address.
type Interface struct {
	Identifier     string `json:"identifier"`
	ConfigTypeV4   string `json:"config_type_v4"`
	ConfiguredIPv4 string `json:"configured_ipv4"`
	LeaseIPv4      string `json:"lease_ipv4"`
}

// EffectiveIPv4 returns the address for the interface, preferring a
// reserved static address over the generic lease.
func (i Interface) EffectiveIPv4() string {
	if i.ConfigTypeV4 == configTypeDynamicReserved && i.ConfiguredIPv4 != "" {
		return i.ConfiguredIPv4
	}
	return i.LeaseIPv4
}

// ListInterfaces fetches the interface collection for a machine. An empty
// collection means the machine id is unknown to the service.
func (c *Client) ListInterfaces(ctx context.Context, machineID int) ([]Interface, error) {
	path := fmt.Sprintf("/api/v1/machine/%d/interface", machineID)

	var interfaces []Interface
	if err := c.do(ctx, http.MethodGet, path, nil, nil, []int{http.StatusOK}, &interfaces); err != nil {
		return nil, err
	}
	if len(interfaces) == 0 {
		return nil, &NotFoundError{Resource: "machine", Name: strconv.Itoa(machineID)}
	}
	return interfaces, nil
}

// MachineIPv4 computes the effective IPv4 address of the named interface
// on a machine. An empty ifaceName selects DefaultInterface; a machine
// without a matching interface is a *NotFoundError.
func (c *Client) MachineIPv4(ctx context.Context, machineID int, ifaceName string) (string, error) {
	if ifaceName == "" {
		ifaceName = DefaultInterface
	}

	interfaces, err := c.ListInterfaces(ctx, machineID)
	if err != nil {
		return "", err
	}

	for _, iface := range interfaces {
		if iface.Identifier == ifaceName {
			return iface.EffectiveIPv4(), nil
		}
	}
	return "", &NotFoundError{Resource: "interface", Name: ifaceName}
}
