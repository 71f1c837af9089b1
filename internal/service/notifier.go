package service

import (
	"context"
	"errors"

	"paycompliance/internal/events"
)

// Notifier delivers overtime events to interested parties. Delivery is
// best-effort; callers log failures and carry on.
type Notifier interface {
	NotifyOvertime(ctx context.Context, event events.OvertimeEvent) error
}

// MultiNotifier fans an event out to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) NotifyOvertime(ctx context.Context, event events.OvertimeEvent) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.NotifyOvertime(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type noopNotifier struct{}

func (noopNotifier) NotifyOvertime(context.Context, events.OvertimeEvent) error { return nil }
