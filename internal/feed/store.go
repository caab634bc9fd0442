package feed

import (
	"context"

	"github.com/xela07ax/clawdjob/internal/domain"
	"github.com/xela07ax/clawdjob/internal/repository"
)

// notifyingStore дублирует успешные записи журнала и состояния в ленту
type notifyingStore struct {
	repository.Store
	b *Broadcaster
}

// Wrap возвращает хранилище, которое после каждой успешной записи
// журнала или состояния публикует событие в ленту
func Wrap(st repository.Store, b *Broadcaster) repository.Store {
	return &notifyingStore{Store: st, b: b}
}

func (s *notifyingStore) AddActivityLog(ctx context.Context, entry domain.ActivityLog) (domain.ActivityLog, error) {
	saved, err := s.Store.AddActivityLog(ctx, entry)
	if err != nil {
		return saved, err
	}
	s.b.Activity(saved)
	return saved, nil
}

func (s *notifyingStore) SetAgentState(ctx context.Context, update domain.AgentStateUpdate) (domain.AgentState, error) {
	state, err := s.Store.SetAgentState(ctx, update)
	if err != nil {
		return state, err
	}
	s.b.AgentState(state)
	return state, nil
}
