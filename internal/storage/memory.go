// internal/storage/memory.go
package storage

import (
	"context"
	"sync"

	"academic-notifications/internal/models"
)

// MemoryStore is an in-memory EntityStore/ConfigStore used by tests and local
// development. User and student lists preserve insertion order, matching the
// stable-order contract of the postgres store.
type MemoryStore struct {
	mu sync.RWMutex

	inscriptions map[int64]models.Inscription
	proposals    map[int64]models.Proposal
	preliminary  map[int64]models.PreliminaryProject
	finals       map[int64]models.FinalProject
	assignments  map[int64]models.TeachingAssignment

	stages     map[int64]models.Stage
	modalities map[int64]models.Modality
	periods    map[int64]models.AcademicPeriod
	faculties  map[int64]models.Faculty

	users     map[int64]models.User
	userOrder []int64
	roles     map[int64]models.Role

	students map[int64][]int64 // inscription id -> user ids

	configs map[string]models.NotificationConfiguration
	rules   map[int64][]models.RecipientRule
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		inscriptions: make(map[int64]models.Inscription),
		proposals:    make(map[int64]models.Proposal),
		preliminary:  make(map[int64]models.PreliminaryProject),
		finals:       make(map[int64]models.FinalProject),
		assignments:  make(map[int64]models.TeachingAssignment),
		stages:       make(map[int64]models.Stage),
		modalities:   make(map[int64]models.Modality),
		periods:      make(map[int64]models.AcademicPeriod),
		faculties:    make(map[int64]models.Faculty),
		users:        make(map[int64]models.User),
		roles:        make(map[int64]models.Role),
		students:     make(map[int64][]int64),
		configs:      make(map[string]models.NotificationConfiguration),
		rules:        make(map[int64][]models.RecipientRule),
	}
}

// --- seeding ---

func (s *MemoryStore) PutInscription(in models.Inscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inscriptions[in.ID] = in
}

func (s *MemoryStore) PutProposal(p models.Proposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals[p.ID] = p
}

func (s *MemoryStore) PutPreliminaryProject(pp models.PreliminaryProject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preliminary[pp.ID] = pp
}

func (s *MemoryStore) PutFinalProject(fp models.FinalProject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finals[fp.ID] = fp
}

func (s *MemoryStore) PutTeachingAssignment(ta models.TeachingAssignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[ta.ID] = ta
}

func (s *MemoryStore) PutStage(st models.Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages[st.ID] = st
}

func (s *MemoryStore) PutModality(m models.Modality) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modalities[m.ID] = m
}

func (s *MemoryStore) PutAcademicPeriod(ap models.AcademicPeriod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periods[ap.ID] = ap
}

func (s *MemoryStore) PutFaculty(f models.Faculty) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faculties[f.ID] = f
}

func (s *MemoryStore) PutRole(r models.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[r.ID] = r
}

func (s *MemoryStore) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		s.userOrder = append(s.userOrder, u.ID)
	}
	s.users[u.ID] = u
}

func (s *MemoryStore) PutInscriptionStudents(inscriptionID int64, userIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students[inscriptionID] = append(s.students[inscriptionID], userIDs...)
}

func (s *MemoryStore) PutConfig(cfg models.NotificationConfiguration, rules ...models.RecipientRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.EventName] = cfg
	s.rules[cfg.ID] = append([]models.RecipientRule(nil), rules...)
}

// --- EntityStore ---

func (s *MemoryStore) Inscription(ctx context.Context, id int64) (*models.Inscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if in, ok := s.inscriptions[id]; ok {
		return &in, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Proposal(ctx context.Context, id int64) (*models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.proposals[id]; ok {
		return &p, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) PreliminaryProject(ctx context.Context, id int64) (*models.PreliminaryProject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pp, ok := s.preliminary[id]; ok {
		return &pp, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FinalProject(ctx context.Context, id int64) (*models.FinalProject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if fp, ok := s.finals[id]; ok {
		return &fp, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) TeachingAssignment(ctx context.Context, id int64) (*models.TeachingAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ta, ok := s.assignments[id]; ok {
		return &ta, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Stage(ctx context.Context, id int64) (*models.Stage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.stages[id]; ok {
		return &st, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Modality(ctx context.Context, id int64) (*models.Modality, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.modalities[id]; ok {
		return &m, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) AcademicPeriod(ctx context.Context, id int64) (*models.AcademicPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ap, ok := s.periods[id]; ok {
		return &ap, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Faculty(ctx context.Context, id int64) (*models.Faculty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := s.faculties[id]; ok {
		return &f, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) User(ctx context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UsersByRole(ctx context.Context, roleCode string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usersByRoleLocked(roleCode, 0, false), nil
}

func (s *MemoryStore) UsersByRoleInFaculty(ctx context.Context, roleCode string, facultyID int64) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usersByRoleLocked(roleCode, facultyID, true), nil
}

func (s *MemoryStore) usersByRoleLocked(roleCode string, facultyID int64, byFaculty bool) []models.User {
	var roleID int64 = -1
	for _, r := range s.roles {
		if r.Code == roleCode {
			roleID = r.ID
			break
		}
	}

	var out []models.User
	for _, id := range s.userOrder {
		u := s.users[id]
		if !u.Active {
			continue
		}
		if byFaculty && u.FacultyID != facultyID {
			continue
		}
		for _, rid := range u.RoleIDs {
			if rid == roleID {
				out = append(out, u)
				break
			}
		}
	}
	return out
}

func (s *MemoryStore) InscriptionStudentIDs(ctx context.Context, inscriptionID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int64(nil), s.students[inscriptionID]...), nil
}

// --- ConfigStore ---

func (s *MemoryStore) ActiveConfig(ctx context.Context, eventName string) (*models.NotificationConfiguration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[eventName]
	if !ok || !cfg.Active {
		return nil, ErrNotFound
	}
	return &cfg, nil
}

func (s *MemoryStore) Rules(ctx context.Context, configID int64) ([]models.RecipientRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.RecipientRule(nil), s.rules[configID]...), nil
}
