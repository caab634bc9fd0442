package domain

import "time"

type AgentStatus string

const (
	StatusIdle         AgentStatus = "idle"         // Ждет следующего цикла
	StatusSearching    AgentStatus = "searching"    // Опрашивает площадки
	StatusApplying     AgentStatus = "applying"     // Оценивает и откликается
	StatusWaiting      AgentStatus = "waiting"      // Ждет ответов работодателей
	StatusInterviewing AgentStatus = "interviewing" // Зарезервирован, циклом не выставляется
)

// DefaultAgentID единственный агент на инсталляцию
const DefaultAgentID = "agent-001"

// Agent неизменяемая персона агента плюс поля рантайма, которые подмешиваются при чтении
type Agent struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	FirstName       string      `json:"firstName"`
	LastName        string      `json:"lastName"`
	Email           string      `json:"email"`
	Avatar          string      `json:"avatar"`
	Skills          []string    `json:"skills"`
	Personality     string      `json:"personality"`
	YearsExperience int         `json:"yearsExperience"`
	Location        string      `json:"location"`
	Status          AgentStatus `json:"status"`
	CurrentTask     string      `json:"currentTask,omitempty"`
	LastActive      *time.Time  `json:"lastActive,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// AgentState единственная изменяемая запись состояния
type AgentState struct {
	Status      AgentStatus `json:"status"`
	LastActive  time.Time   `json:"lastActive"`
	CurrentTask string      `json:"currentTask,omitempty"`
}

// AgentStateUpdate частичное обновление: пустые поля не трогают текущее значение
type AgentStateUpdate struct {
	Status      AgentStatus
	CurrentTask string
}

// Merge накладывает обновление на текущее состояние и проставляет LastActive
func (s AgentState) Merge(u AgentStateUpdate, now time.Time) AgentState {
	if u.Status != "" {
		s.Status = u.Status
	}
	if u.CurrentTask != "" {
		s.CurrentTask = u.CurrentTask
	}
	s.LastActive = now
	return s
}

// DefaultAgentState состояние до первого цикла
func DefaultAgentState(now time.Time) AgentState {
	return AgentState{Status: StatusIdle, LastActive: now}
}
