package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CovEducation/Website-sub000/core/mentorship"
	"github.com/CovEducation/Website-sub000/core/user"
)

// Repositories is one storage engine's set of repositories.
type Repositories struct {
	Mentors     user.MentorRepository
	Parents     user.ParentRepository
	Students    user.StudentRepository
	Mentorships mentorship.Repository
}

var epoch = time.Date(2020, 9, 1, 10, 0, 0, 0, time.UTC)

func newMentorship(studentID, mentorID, parentID string, createdAt time.Time) mentorship.Mentorship {
	return mentorship.Mentorship{
		ID:        uuid.NewString(),
		State:     mentorship.StatePending,
		Message:   "Hi",
		MentorID:  mentorID,
		ParentID:  parentID,
		StudentID: studentID,
		Sessions:  []mentorship.Session{},
		Version:   1,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func mentorshipIDs(ms []mentorship.Mentorship) []string {
	ids := make([]string, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.ID)
	}
	return ids
}

// seed stores the parents p1 and p2, the students s1 (p1), s2 (p1) and s3 (p2), and the mentors m1 and m2.
func seed(t *testing.T, repos Repositories) {
	ctx := context.Background()
	for _, id := range []string{"p1", "p2"} {
		_, err := repos.Parents.CreateParent(ctx, user.Parent{ID: id, UID: "uid-" + id, Name: id, Email: id + "@test.cd", StudentIDs: []string{}, CreatedAt: epoch, UpdatedAt: epoch})
		require.NoError(t, err)
	}
	for id, parentID := range map[string]string{"s1": "p1", "s2": "p1", "s3": "p2"} {
		_, err := repos.Students.CreateStudent(ctx, user.Student{ID: id, ParentID: parentID, Name: id, GradeLevel: 7, Subjects: []string{"math"}, CreatedAt: epoch, UpdatedAt: epoch})
		require.NoError(t, err)
		require.NoError(t, repos.Parents.AddStudent(ctx, parentID, id))
	}
	for _, id := range []string{"m1", "m2"} {
		_, err := repos.Mentors.CreateMentor(ctx, user.Mentor{ID: id, UID: "uid-" + id, Name: id, Email: id + "@test.cd", Subjects: []string{"math"}, GradeLevels: []int{7}, CreatedAt: epoch, UpdatedAt: epoch})
		require.NoError(t, err)
	}
}

// TestMentorshipRepository checks the behaviour every mentorship.Repository must share.
// newRepos must return empty storage.
func TestMentorshipRepository(t *testing.T, newRepos func(t *testing.T) Repositories) {
	ctx := context.Background()
	newRepo := func(t *testing.T) mentorship.Repository {
		repos := newRepos(t)
		seed(t, repos)
		return repos.Mentorships
	}

	t.Run("create and get", func(t *testing.T) {
		repo := newRepo(t)
		m := newMentorship("s1", "m1", "p1", epoch)
		created, err := repo.Create(ctx, m)
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.Version)

		got, err := repo.Get(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, m.ID, got.ID)
		assert.Equal(t, mentorship.StatePending, got.State)
		assert.Equal(t, "Hi", got.Message)
		assert.Equal(t, "s1", got.StudentID)
		assert.Equal(t, "m1", got.MentorID)
		assert.Equal(t, "p1", got.ParentID)
		assert.NotNil(t, got.Sessions)
		assert.Empty(t, got.Sessions)
		assert.Nil(t, got.StartDate)
		assert.Nil(t, got.EndDate)
		assert.True(t, epoch.Equal(got.CreatedAt), "CreatedAt = %v", got.CreatedAt)

		_, err = repo.Get(ctx, uuid.NewString())
		assert.True(t, errors.Is(err, mentorship.ErrNotFound), "err = %v", err)
	})

	t.Run("one pending per student and mentor", func(t *testing.T) {
		repo := newRepo(t)
		first, err := repo.Create(ctx, newMentorship("s1", "m1", "p1", epoch))
		require.NoError(t, err)
		_, err = repo.Create(ctx, newMentorship("s1", "m1", "p1", epoch.Add(time.Second)))
		assert.True(t, errors.Is(err, mentorship.ErrDuplicateRequest), "err = %v", err)

		// other mentor, other student
		_, err = repo.Create(ctx, newMentorship("s1", "m2", "p1", epoch))
		require.NoError(t, err)
		_, err = repo.Create(ctx, newMentorship("s2", "m1", "p1", epoch))
		require.NoError(t, err)

		first.State = mentorship.StateRejected
		_, err = repo.Update(ctx, first)
		require.NoError(t, err)
		_, err = repo.Create(ctx, newMentorship("s1", "m1", "p1", epoch.Add(2*time.Second)))
		assert.NoError(t, err)
	})

	t.Run("compare and swap", func(t *testing.T) {
		repo := newRepo(t)
		m, err := repo.Create(ctx, newMentorship("s1", "m1", "p1", epoch))
		require.NoError(t, err)

		start := epoch.Add(time.Hour)
		active := m
		active.State = mentorship.StateActive
		active.StartDate = &start
		updated, err := repo.Update(ctx, active)
		require.NoError(t, err)
		assert.Equal(t, int64(2), updated.Version)

		stale := m
		stale.State = mentorship.StateRejected
		_, err = repo.Update(ctx, stale)
		assert.True(t, errors.Is(err, mentorship.ErrConcurrentModification), "err = %v", err)

		got, err := repo.Get(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, mentorship.StateActive, got.State)
		assert.Equal(t, int64(2), got.Version)
		require.NotNil(t, got.StartDate)
		assert.True(t, start.Equal(*got.StartDate), "StartDate = %v", got.StartDate)

		unknown := newMentorship("s1", "m1", "p1", epoch)
		_, err = repo.Update(ctx, unknown)
		assert.True(t, errors.Is(err, mentorship.ErrNotFound), "err = %v", err)
	})

	t.Run("one active per student", func(t *testing.T) {
		repo := newRepo(t)
		m1, err := repo.Create(ctx, newMentorship("s1", "m1", "p1", epoch))
		require.NoError(t, err)
		m2, err := repo.Create(ctx, newMentorship("s1", "m2", "p1", epoch))
		require.NoError(t, err)

		m1.State = mentorship.StateActive
		_, err = repo.Update(ctx, m1)
		require.NoError(t, err)
		m2.State = mentorship.StateActive
		_, err = repo.Update(ctx, m2)
		assert.True(t, errors.Is(err, mentorship.ErrStudentAlreadyMentored), "err = %v", err)
	})

	t.Run("sessions are appended", func(t *testing.T) {
		repo := newRepo(t)
		m, err := repo.Create(ctx, newMentorship("s1", "m1", "p1", epoch))
		require.NoError(t, err)
		m.State = mentorship.StateActive
		m, err = repo.Update(ctx, m)
		require.NoError(t, err)

		for i := 1; i <= 3; i++ {
			m.Sessions = append(m.Sessions, mentorship.Session{Date: epoch.AddDate(0, 0, i), Duration: 30 * i, Rating: 0.25 * float64(i)})
			m, err = repo.Update(ctx, m)
			require.NoError(t, err)
		}

		got, err := repo.Get(ctx, m.ID)
		require.NoError(t, err)
		require.Len(t, got.Sessions, 3)
		for i, s := range got.Sessions {
			assert.Equal(t, 30*(i+1), s.Duration)
			assert.InDelta(t, 0.25*float64(i+1), s.Rating, 1e-9)
			assert.True(t, epoch.AddDate(0, 0, i+1).Equal(s.Date), "session %d date = %v", i, s.Date)
		}
	})

	t.Run("query", func(t *testing.T) {
		repo := newRepo(t)
		create := func(studentID, mentorID, parentID string, minutes int) mentorship.Mentorship {
			m, err := repo.Create(ctx, newMentorship(studentID, mentorID, parentID, epoch.Add(time.Duration(minutes)*time.Minute)))
			require.NoError(t, err)
			return m
		}
		a := create("s1", "m1", "p1", 1)
		b := create("s1", "m2", "p1", 2)
		c := create("s2", "m1", "p1", 3)
		d := create("s3", "m2", "p2", 4)

		b.State = mentorship.StateActive
		_, err := repo.Update(ctx, b)
		require.NoError(t, err)

		tests := []struct {
			name   string
			filter mentorship.Filter
			want   []string
		}{
			{name: "all", want: []string{d.ID, c.ID, b.ID, a.ID}},
			{name: "student", filter: mentorship.Filter{StudentID: "s1"}, want: []string{b.ID, a.ID}},
			{name: "mentor", filter: mentorship.Filter{MentorID: "m1"}, want: []string{c.ID, a.ID}},
			{name: "parent", filter: mentorship.Filter{ParentID: "p2"}, want: []string{d.ID}},
			{name: "states", filter: mentorship.Filter{States: []mentorship.State{mentorship.StateActive}}, want: []string{b.ID}},
			{name: "student and state", filter: mentorship.Filter{StudentID: "s1", States: []mentorship.State{mentorship.StatePending}}, want: []string{a.ID}},
			{name: "participant student", filter: mentorship.Filter{Participant: "s2"}, want: []string{c.ID}},
			{name: "participant mentor", filter: mentorship.Filter{Participant: "m2"}, want: []string{d.ID, b.ID}},
			{name: "participant parent", filter: mentorship.Filter{Participant: "p1"}, want: []string{c.ID, b.ID, a.ID}},
			{name: "none", filter: mentorship.Filter{Participant: "lol"}, want: []string{}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ms, err := repo.Query(ctx, tt.filter)
				require.NoError(t, err)
				assert.Equal(t, tt.want, mentorshipIDs(ms))
			})
		}
	})
}

// TestUserRepositories checks the behaviour every user repository must share.
func TestUserRepositories(t *testing.T, newRepos func(t *testing.T) Repositories) {
	ctx := context.Background()

	t.Run("mentors", func(t *testing.T) {
		repos := newRepos(t)
		ada := user.Mentor{ID: uuid.NewString(), UID: "ada", Name: "Ada", Email: "ada@test.cd", Subjects: []string{"math", "physics"}, GradeLevels: []int{6, 7}, CreatedAt: epoch, UpdatedAt: epoch}
		bob := user.Mentor{ID: uuid.NewString(), UID: "bob", Name: "Bob", Email: "bob@test.cd", Subjects: []string{"history"}, GradeLevels: []int{}, CreatedAt: epoch, UpdatedAt: epoch}
		for _, m := range []user.Mentor{ada, bob} {
			_, err := repos.Mentors.CreateMentor(ctx, m)
			require.NoError(t, err)
		}

		dup := ada
		dup.ID = uuid.NewString()
		_, err := repos.Mentors.CreateMentor(ctx, dup)
		assert.True(t, errors.Is(err, user.ErrUIDExists), "err = %v", err)

		got, err := repos.Mentors.GetMentorByUID(ctx, "ada")
		require.NoError(t, err)
		assert.Equal(t, ada.ID, got.ID)
		assert.Equal(t, ada.Subjects, got.Subjects)
		assert.Equal(t, ada.GradeLevels, got.GradeLevels)

		_, err = repos.Mentors.GetMentor(ctx, uuid.NewString())
		assert.True(t, errors.Is(err, user.ErrMentorNotFound), "err = %v", err)
		_, err = repos.Mentors.GetMentorByUID(ctx, "lol")
		assert.True(t, errors.Is(err, user.ErrMentorNotFound), "err = %v", err)

		ms, err := repos.Mentors.QueryMentors(ctx, user.MentorFilter{Subject: "math", GradeLevel: 7})
		require.NoError(t, err)
		require.Len(t, ms, 1)
		assert.Equal(t, ada.ID, ms[0].ID)

		ms, err = repos.Mentors.QueryMentors(ctx, user.MentorFilter{})
		require.NoError(t, err)
		assert.Len(t, ms, 2)
	})

	t.Run("parents and students", func(t *testing.T) {
		repos := newRepos(t)
		pat := user.Parent{ID: uuid.NewString(), UID: "pat", Name: "Pat", Email: "pat@test.cd", StudentIDs: []string{}, CreatedAt: epoch, UpdatedAt: epoch}
		_, err := repos.Parents.CreateParent(ctx, pat)
		require.NoError(t, err)

		dup := pat
		dup.ID = uuid.NewString()
		_, err = repos.Parents.CreateParent(ctx, dup)
		assert.True(t, errors.Is(err, user.ErrUIDExists), "err = %v", err)

		var ids []string
		for i, name := range []string{"Sam", "Sol"} {
			createdAt := epoch.Add(time.Duration(i) * time.Second)
			s := user.Student{ID: uuid.NewString(), ParentID: pat.ID, Name: name, GradeLevel: 7, Subjects: []string{"math"}, CreatedAt: createdAt, UpdatedAt: createdAt}
			_, err := repos.Students.CreateStudent(ctx, s)
			require.NoError(t, err)
			require.NoError(t, repos.Parents.AddStudent(ctx, pat.ID, s.ID))
			ids = append(ids, s.ID)
		}

		got, err := repos.Parents.GetParentByUID(ctx, "pat")
		require.NoError(t, err)
		assert.Equal(t, ids, got.StudentIDs)

		students, err := repos.Students.QueryStudents(ctx, pat.ID)
		require.NoError(t, err)
		require.Len(t, students, 2)
		assert.Equal(t, "Sam", students[0].Name)
		assert.Equal(t, "Sol", students[1].Name)

		_, err = repos.Students.GetStudent(ctx, uuid.NewString())
		assert.True(t, errors.Is(err, user.ErrStudentNotFound), "err = %v", err)
		_, err = repos.Parents.GetParent(ctx, uuid.NewString())
		assert.True(t, errors.Is(err, user.ErrParentNotFound), "err = %v", err)
		err = repos.Parents.AddStudent(ctx, uuid.NewString(), ids[0])
		assert.True(t, errors.Is(err, user.ErrParentNotFound), "err = %v", err)

		extra := user.Student{ID: uuid.NewString(), ParentID: pat.ID, Name: "Sid", GradeLevel: 7, Subjects: []string{"math"}, CreatedAt: epoch, UpdatedAt: epoch}
		_, err = repos.Students.CreateStudent(ctx, extra)
		require.NoError(t, err)
		require.NoError(t, repos.Students.DeleteStudent(ctx, extra.ID))
		_, err = repos.Students.GetStudent(ctx, extra.ID)
		assert.True(t, errors.Is(err, user.ErrStudentNotFound), "err = %v", err)
		err = repos.Students.DeleteStudent(ctx, extra.ID)
		assert.True(t, errors.Is(err, user.ErrStudentNotFound), "err = %v", err)
	})
}
