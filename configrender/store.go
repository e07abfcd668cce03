package configrender

import (
	"sync"
	"sync/atomic"

	"code.cloudfoundry.org/lager/v3"
)

// Store holds the active RenderedConfig for the process. The first render
// must succeed; afterwards Reload swaps the active config atomically on
// success and keeps the previous one on failure, returning the aggregated
// render error. Subscribers are notified after each successful swap.
type Store struct {
	logger      lager.Logger
	active      atomic.Pointer[RenderedConfig]
	subL        sync.Mutex
	subscribers []func(*RenderedConfig)
}

func NewStore(logger lager.Logger, template string, env map[string]string) (*Store, error) {
	rendered, err := Render(template, env)
	if err != nil {
		return nil, err
	}
	s := &Store{
		logger: logger.Session("config-store"),
	}
	s.active.Store(rendered)
	return s, nil
}

func (s *Store) Active() *RenderedConfig {
	return s.active.Load()
}

// Subscribe registers fn to run after every successful reload. It does not
// run for the initial configuration.
func (s *Store) Subscribe(fn func(*RenderedConfig)) {
	s.subL.Lock()
	defer s.subL.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) Reload(template string, env map[string]string) error {
	rendered, err := Render(template, env)
	if err != nil {
		s.logger.Error("reload-rejected", err)
		return err
	}
	s.active.Store(rendered)
	s.logger.Info("reloaded", lager.Data{"vars": len(rendered.Vars)})

	s.subL.Lock()
	subscribers := make([]func(*RenderedConfig), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.subL.Unlock()
	for _, fn := range subscribers {
		fn(rendered)
	}
	return nil
}
