package inmemdb

import (
	"context"
	"sort"

	"github.com/CovEducation/Website-sub000/core/user"
)

type mentorRepository struct{ db *DB }

var _ user.MentorRepository = (*mentorRepository)(nil)

func NewMentorRepository(db *DB) *mentorRepository {
	return &mentorRepository{db: db}
}

func cloneMentor(m user.Mentor) user.Mentor {
	m.Subjects = copyStrings(m.Subjects)
	levels := make([]int, len(m.GradeLevels))
	copy(levels, m.GradeLevels)
	m.GradeLevels = levels
	return m
}

func (repo *mentorRepository) CreateMentor(_ context.Context, mentor user.Mentor) (user.Mentor, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, m := range repo.db.mentors {
		if m.UID == mentor.UID {
			return user.Mentor{}, user.ErrUIDExists
		}
	}
	repo.db.mentors[mentor.ID] = cloneMentor(mentor)
	return mentor, nil
}

func (repo *mentorRepository) GetMentor(_ context.Context, id string) (user.Mentor, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if m, ok := repo.db.mentors[id]; ok {
		return cloneMentor(m), nil
	}
	return user.Mentor{}, user.ErrMentorNotFound
}

func (repo *mentorRepository) GetMentorByUID(_ context.Context, uid string) (user.Mentor, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, m := range repo.db.mentors {
		if m.UID == uid {
			return cloneMentor(m), nil
		}
	}
	return user.Mentor{}, user.ErrMentorNotFound
}

func (repo *mentorRepository) QueryMentors(_ context.Context, filter user.MentorFilter) ([]user.Mentor, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	mentors := make([]user.Mentor, 0)
	for _, m := range repo.db.mentors {
		if filter.Subject != "" && !containsString(m.Subjects, filter.Subject) {
			continue
		}
		if filter.GradeLevel != 0 && !containsInt(m.GradeLevels, filter.GradeLevel) {
			continue
		}
		mentors = append(mentors, cloneMentor(m))
	}
	sort.Slice(mentors, func(i, j int) bool {
		if mentors[i].Name == mentors[j].Name {
			return mentors[i].ID < mentors[j].ID
		}
		return mentors[i].Name < mentors[j].Name
	})
	return mentors, nil
}

type parentRepository struct{ db *DB }

var _ user.ParentRepository = (*parentRepository)(nil)

func NewParentRepository(db *DB) *parentRepository {
	return &parentRepository{db: db}
}

func cloneParent(p user.Parent) user.Parent {
	p.StudentIDs = copyStrings(p.StudentIDs)
	return p
}

func (repo *parentRepository) CreateParent(_ context.Context, parent user.Parent) (user.Parent, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, p := range repo.db.parents {
		if p.UID == parent.UID {
			return user.Parent{}, user.ErrUIDExists
		}
	}
	repo.db.parents[parent.ID] = cloneParent(parent)
	return parent, nil
}

func (repo *parentRepository) GetParent(_ context.Context, id string) (user.Parent, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.parents[id]; ok {
		return cloneParent(p), nil
	}
	return user.Parent{}, user.ErrParentNotFound
}

func (repo *parentRepository) GetParentByUID(_ context.Context, uid string) (user.Parent, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, p := range repo.db.parents {
		if p.UID == uid {
			return cloneParent(p), nil
		}
	}
	return user.Parent{}, user.ErrParentNotFound
}

func (repo *parentRepository) AddStudent(_ context.Context, parentID, studentID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	p, ok := repo.db.parents[parentID]
	if !ok {
		return user.ErrParentNotFound
	}
	p.StudentIDs = append(copyStrings(p.StudentIDs), studentID)
	repo.db.parents[parentID] = p
	return nil
}

type studentRepository struct{ db *DB }

var _ user.StudentRepository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func cloneStudent(s user.Student) user.Student {
	s.Subjects = copyStrings(s.Subjects)
	return s
}

func (repo *studentRepository) CreateStudent(_ context.Context, student user.Student) (user.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.parents[student.ParentID]; !ok {
		return user.Student{}, user.ErrParentNotFound
	}
	repo.db.students[student.ID] = cloneStudent(student)
	return student, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id string) (user.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		return cloneStudent(s), nil
	}
	return user.Student{}, user.ErrStudentNotFound
}

// QueryStudents returns the parent's students in the order they were added.
func (repo *studentRepository) QueryStudents(_ context.Context, parentID string) ([]user.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]user.Student, 0)
	p, ok := repo.db.parents[parentID]
	if !ok {
		return students, nil
	}
	for _, sid := range p.StudentIDs {
		if s, ok := repo.db.students[sid]; ok {
			students = append(students, cloneStudent(s))
		}
	}
	return students, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return user.ErrStudentNotFound
	}
	delete(repo.db.students, id)
	return nil
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func containsInt(is []int, i int) bool {
	for _, v := range is {
		if v == i {
			return true
		}
	}
	return false
}
