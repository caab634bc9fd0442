// Package filestore локальный бэкенд: одна JSON-сущность на файл, чтение и запись целиком.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xela07ax/clawdjob/internal/domain"
)

const (
	applicationsFile   = "applications.json"
	activityLogsFile   = "activity_logs.json"
	discoveredJobsFile = "discovered_jobs.json"
	agentStateFile     = "agent_state.json"

	DefaultActivityLimit = 1000
)

// Store каждая операция перечитывает файл и переписывает его целиком.
// Мьютекс сериализует операции внутри процесса, между процессами защиты нет.
type Store struct {
	dir           string
	activityLimit int
	mu            sync.Mutex
	now           func() time.Time
}

func New(dir string, activityLimit int) (*Store, error) {
	if dir == "" {
		dir = "data"
	}
	if activityLimit <= 0 {
		activityLimit = DefaultActivityLimit
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create data dir: %w", err)
	}
	return &Store{dir: dir, activityLimit: activityLimit, now: time.Now}, nil
}

// readJSON отсутствующий файл — не ошибка, v остается нулевым
func (s *Store) readJSON(name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("filestore: read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("filestore: decode %s: %w", name, err)
	}
	return nil
}

// writeJSON пишет во временный файл и переименовывает: читатель не увидит половину файла
func (s *Store) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("filestore: temp file for %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("filestore: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("filestore: close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("filestore: replace %s: %w", name, err)
	}
	return nil
}

// --- Applications ---

func (s *Store) GetApplications(_ context.Context) ([]domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadApplications()
}

func (s *Store) loadApplications() ([]domain.Application, error) {
	apps := make([]domain.Application, 0)
	if err := s.readJSON(applicationsFile, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// SaveApplication upsert по id
func (s *Store) SaveApplication(_ context.Context, app *domain.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	apps, err := s.loadApplications()
	if err != nil {
		return err
	}

	replaced := false
	for i := range apps {
		if apps[i].ID == app.ID {
			apps[i] = *app
			replaced = true
			break
		}
	}
	if !replaced {
		apps = append(apps, *app)
	}
	return s.writeJSON(applicationsFile, apps)
}

func (s *Store) UpdateApplicationStatus(_ context.Context, id string, status domain.ApplicationStatus, responseMessage string) (*domain.Application, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	apps, err := s.loadApplications()
	if err != nil {
		return nil, err
	}

	for i := range apps {
		if apps[i].ID != id {
			continue
		}
		if err := apps[i].ApplyStatus(status, responseMessage, s.now()); err != nil {
			return nil, err
		}
		if err := s.writeJSON(applicationsFile, apps); err != nil {
			return nil, err
		}
		updated := apps[i]
		return &updated, nil
	}
	return nil, domain.ErrApplicationNotFound
}

// --- Activity logs ---

func (s *Store) GetActivityLogs(_ context.Context, limit int) ([]domain.ActivityLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := make([]domain.ActivityLog, 0)
	if err := s.readJSON(activityLogsFile, &logs); err != nil {
		return nil, err
	}

	// Новые сверху; стабильная сортировка сохраняет порядок записей с одинаковым временем
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (s *Store) AddActivityLog(_ context.Context, entry domain.ActivityLog) (domain.ActivityLog, error) {
	entry.ID = "log-" + uuid.NewString()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logs := make([]domain.ActivityLog, 0)
	if err := s.readJSON(activityLogsFile, &logs); err != nil {
		return entry, err
	}

	logs = append(logs, entry)
	// Храним только последние activityLimit записей, старые вытесняются первыми
	if len(logs) > s.activityLimit {
		logs = logs[len(logs)-s.activityLimit:]
	}

	if err := s.writeJSON(activityLogsFile, logs); err != nil {
		return entry, err
	}
	return entry, nil
}

// --- Discovered jobs ---

func (s *Store) GetDiscoveredJobs(_ context.Context) ([]domain.JobListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]domain.JobListing, 0)
	if err := s.readJSON(discoveredJobsFile, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *Store) SaveDiscoveredJob(_ context.Context, job domain.JobListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]domain.JobListing, 0)
	if err := s.readJSON(discoveredJobsFile, &jobs); err != nil {
		return err
	}

	for i := range jobs {
		if jobs[i].ID == job.ID || jobs[i].URL == job.URL {
			return nil
		}
	}
	jobs = append(jobs, job)
	return s.writeJSON(discoveredJobsFile, jobs)
}

// --- Agent state ---

func (s *Store) GetAgentState(_ context.Context) (domain.AgentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadState()
}

func (s *Store) loadState() (domain.AgentState, error) {
	state := domain.DefaultAgentState(s.now())
	if err := s.readJSON(agentStateFile, &state); err != nil {
		return domain.DefaultAgentState(s.now()), err
	}
	if state.Status == "" {
		state.Status = domain.StatusIdle
	}
	return state, nil
}

func (s *Store) SetAgentState(_ context.Context, update domain.AgentStateUpdate) (domain.AgentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadState()
	if err != nil {
		return current, err
	}

	next := current.Merge(update, s.now())
	if err := s.writeJSON(agentStateFile, next); err != nil {
		return current, err
	}
	return next, nil
}

func (s *Store) Ping(_ context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

func (s *Store) Close() {}
