package inmemdb

import (
	"context"
	"sort"

	"github.com/CovEducation/Website-sub000/core/mentorship"
)

type mentorshipRepository struct{ db *DB }

var _ mentorship.Repository = (*mentorshipRepository)(nil)

func NewMentorshipRepository(db *DB) *mentorshipRepository {
	return &mentorshipRepository{db: db}
}

func cloneMentorship(m mentorship.Mentorship) mentorship.Mentorship {
	sessions := make([]mentorship.Session, len(m.Sessions))
	copy(sessions, m.Sessions)
	m.Sessions = sessions
	if m.StartDate != nil {
		t := *m.StartDate
		m.StartDate = &t
	}
	if m.EndDate != nil {
		t := *m.EndDate
		m.EndDate = &t
	}
	return m
}

func (repo *mentorshipRepository) Create(_ context.Context, m mentorship.Mentorship) (mentorship.Mentorship, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.mentorships {
		if other.State == mentorship.StatePending && other.StudentID == m.StudentID && other.MentorID == m.MentorID {
			return mentorship.Mentorship{}, mentorship.ErrDuplicateRequest
		}
	}
	repo.db.mentorships[m.ID] = cloneMentorship(m)
	return cloneMentorship(m), nil
}

func (repo *mentorshipRepository) Get(_ context.Context, id string) (mentorship.Mentorship, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if m, ok := repo.db.mentorships[id]; ok {
		return cloneMentorship(m), nil
	}
	return mentorship.Mentorship{}, mentorship.ErrNotFound
}

func (repo *mentorshipRepository) Query(_ context.Context, filter mentorship.Filter) ([]mentorship.Mentorship, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ms := make([]mentorship.Mentorship, 0)
	for _, m := range repo.db.mentorships {
		if matches(m, filter) {
			ms = append(ms, cloneMentorship(m))
		}
	}
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].CreatedAt.Equal(ms[j].CreatedAt) {
			return ms[i].ID > ms[j].ID
		}
		return ms[i].CreatedAt.After(ms[j].CreatedAt)
	})
	return ms, nil
}

func matches(m mentorship.Mentorship, filter mentorship.Filter) bool {
	if filter.StudentID != "" && m.StudentID != filter.StudentID {
		return false
	}
	if filter.MentorID != "" && m.MentorID != filter.MentorID {
		return false
	}
	if filter.ParentID != "" && m.ParentID != filter.ParentID {
		return false
	}
	if filter.Participant != "" && !m.HasParticipant(filter.Participant) {
		return false
	}
	if len(filter.States) > 0 {
		for _, s := range filter.States {
			if m.State == s {
				return true
			}
		}
		return false
	}
	return true
}

func (repo *mentorshipRepository) Update(_ context.Context, m mentorship.Mentorship) (mentorship.Mentorship, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored, ok := repo.db.mentorships[m.ID]
	if !ok {
		return mentorship.Mentorship{}, mentorship.ErrNotFound
	}
	if stored.Version != m.Version {
		return mentorship.Mentorship{}, mentorship.ErrConcurrentModification
	}
	if m.State == mentorship.StateActive {
		for _, other := range repo.db.mentorships {
			if other.ID != m.ID && other.StudentID == m.StudentID && other.State == mentorship.StateActive {
				return mentorship.Mentorship{}, mentorship.ErrStudentAlreadyMentored
			}
		}
	}
	if m.State == mentorship.StatePending {
		for _, other := range repo.db.mentorships {
			if other.ID != m.ID && other.State == mentorship.StatePending &&
				other.StudentID == m.StudentID && other.MentorID == m.MentorID {
				return mentorship.Mentorship{}, mentorship.ErrDuplicateRequest
			}
		}
	}

	m.Version++
	repo.db.mentorships[m.ID] = cloneMentorship(m)
	return cloneMentorship(m), nil
}
