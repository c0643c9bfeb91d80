package gateway

import (
	"context"

	"provsync/pkg/bus"
)

func (a *API) publish(ctx context.Context, subject, target string, detail map[string]any) {
	if a.store.Bus == nil {
		return
	}
	err := a.store.Bus.Publish(ctx, bus.Event{
		Subject: subject,
		Target:  target,
		Detail:  detail,
	})
	if err != nil {
		a.logger.Printf("WARN publish %s for %s: %v", subject, target, err)
	}
}
