package provisioner

import (
	"context"
	"time"
)

// DisableNetbootAfter resolves the machine, waits for the delay, then
// clears its netboot flag with a full-object PUT. The delay exists so a
// machine that is mid-netboot finishes booting before the flag goes away;
// the PUT is never issued before the delay elapses.
//
// Cancelling the context during the wait aborts the operation without
// touching the machine and returns the context's error.
func (c *Client) DisableNetbootAfter(ctx context.Context, name string, delay time.Duration) (Machine, error) {
	machine, err := c.LookupMachine(ctx, name)
	if err != nil {
		return Machine{}, err
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Machine{}, ctx.Err()
		case <-timer.C:
		}
	}

	machine.NetbootEnabled = false
	return c.UpdateMachine(ctx, machine)
}
