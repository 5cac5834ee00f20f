package srv

import (
	"github.com/sidekick-ai/sidekick-ai/pkg/streams"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
)

type Srv struct {
	ai     *AI
	hub    *streams.Hub
	locker types.Locker
}

type ApplyFunc func(*Srv)

func SetupSrvs(opts ...ApplyFunc) *Srv {
	s := &Srv{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func ApplyAI(ai *AI) ApplyFunc {
	return func(s *Srv) {
		s.ai = ai
	}
}

func ApplyStreamHub(hub *streams.Hub) ApplyFunc {
	return func(s *Srv) {
		s.hub = hub
	}
}

func ApplyLocker(locker types.Locker) ApplyFunc {
	return func(s *Srv) {
		s.locker = locker
	}
}

func (s *Srv) AI() *AI {
	return s.ai
}

func (s *Srv) StreamHub() *streams.Hub {
	return s.hub
}

func (s *Srv) Locker() types.Locker {
	return s.locker
}
