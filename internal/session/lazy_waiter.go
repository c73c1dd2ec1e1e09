package session

import (
	"sync"

	"github.com/stratus/ral-core/internal/defs"
	"github.com/stratus/ral-core/internal/model"
)

// lazyWaiters defers parsing waiters.json until a waiter is actually used,
// so sessions that never wait never pay for it.
type lazyWaiters struct {
	loader  *defs.Loader
	service string

	once  sync.Once
	model *model.WaiterModel
	err   error
}

var _ model.WaiterSource = (*lazyWaiters)(nil)

func newLazyWaiters(loader *defs.Loader, service string) *lazyWaiters {
	return &lazyWaiters{loader: loader, service: service}
}

func (l *lazyWaiters) resolve() (*model.WaiterModel, error) {
	l.once.Do(func() {
		l.model, l.err = l.loader.LoadWaiters(l.service, "")
	})
	return l.model, l.err
}

func (l *lazyWaiters) WaiterNames() ([]string, error) {
	m, err := l.resolve()
	if err != nil {
		return nil, err
	}
	return m.WaiterNames()
}

func (l *lazyWaiters) Waiter(name string) (*model.WaiterConfig, error) {
	m, err := l.resolve()
	if err != nil {
		return nil, err
	}
	return m.Waiter(name)
}
