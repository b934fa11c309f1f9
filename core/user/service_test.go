package user_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CovEducation/Website-sub000/core"
	"github.com/CovEducation/Website-sub000/core/user"
	"github.com/CovEducation/Website-sub000/tests"
)

func failedTags(t *testing.T, err error) map[string]string {
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs), "err = %v", err)
	tags := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		tags[fe.Field()] = fe.Tag()
	}
	return tags
}

func TestService_RegisterMentor(t *testing.T) {
	env := testutil.NewEnv()
	svc := env.UserSvc
	ctx := context.Background()

	mentor, err := svc.RegisterMentor(ctx, "uid-1", user.NewMentor{
		Name:        "  Ada  ",
		Email:       "ADA@test.cd",
		Subjects:    []string{" Math", "", "Physics "},
		GradeLevels: []int{6, 7},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, mentor.ID)
	assert.Equal(t, "Ada", mentor.Name)
	assert.Equal(t, "ada@test.cd", mentor.Email)
	assert.Equal(t, core.ChannelEmail, mentor.ContactPreference)
	assert.Equal(t, []string{"math", "physics"}, mentor.Subjects)

	acc, err := svc.GetAccount(ctx, "uid-1")
	require.NoError(t, err)
	assert.True(t, acc.IsMentor())
	assert.Equal(t, mentor.ID, acc.ID)
	assert.Equal(t, "Ada", acc.Name())

	t.Run("uid taken", func(t *testing.T) {
		_, err := svc.RegisterParent(ctx, "uid-1", user.NewParent{Name: "Pat", Email: "pat@test.cd"})
		assert.True(t, errors.Is(err, user.ErrUIDExists), "err = %v", err)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := svc.RegisterMentor(ctx, "uid-2", user.NewMentor{
			Email:             "lol",
			Phone:             "555",
			ContactPreference: "pigeon",
			GradeLevels:       []int{13},
		})
		tags := failedTags(t, err)
		assert.Equal(t, "required", tags["name"])
		assert.Equal(t, "email", tags["email"])
		assert.Equal(t, "e164", tags["phone"])
		assert.Equal(t, "contactpref", tags["contact_preference"])
		assert.Equal(t, "required", tags["subjects"])
	})

	t.Run("sms without phone", func(t *testing.T) {
		_, err := svc.RegisterMentor(ctx, "uid-3", user.NewMentor{
			Name:              "Tex",
			Email:             "tex@test.cd",
			ContactPreference: core.ChannelSMS,
			Subjects:          []string{"math"},
		})
		assert.Equal(t, "phone_for_sms", failedTags(t, err)["phone"])
	})
}

func TestService_RegisterParent_AddStudent(t *testing.T) {
	env := testutil.NewEnv()
	svc := env.UserSvc
	ctx := context.Background()

	parent, err := svc.RegisterParent(ctx, "uid-p", user.NewParent{
		Name:              "Pat",
		Email:             "pat@test.cd",
		Phone:             "+15005550006",
		ContactPreference: "SMS",
	})
	require.NoError(t, err)
	assert.Equal(t, core.ChannelSMS, parent.ContactPreference)
	assert.Empty(t, parent.StudentIDs)

	s1, err := svc.AddStudent(ctx, parent.ID, user.NewStudent{Name: "Sam", GradeLevel: 7, Subjects: []string{"Math"}})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, s1.ParentID)
	s2 := testutil.CreateStudent(t, svc, parent.ID, "Sol")

	refreshed, err := svc.GetParent(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{s1.ID, s2.ID}, refreshed.StudentIDs)
	assert.True(t, refreshed.HasStudent(s2.ID))

	students, err := svc.QueryStudents(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Sam", students[0].Name)
	assert.Equal(t, "Sol", students[1].Name)

	acc, err := svc.GetAccount(ctx, "uid-p")
	require.NoError(t, err)
	assert.True(t, acc.IsParent())

	t.Run("unknown parent", func(t *testing.T) {
		_, err := svc.AddStudent(ctx, "lol", user.NewStudent{Name: "Sam", GradeLevel: 7, Subjects: []string{"math"}})
		assert.True(t, errors.Is(err, user.ErrParentNotFound), "err = %v", err)
	})

	t.Run("invalid grade", func(t *testing.T) {
		_, err := svc.AddStudent(ctx, parent.ID, user.NewStudent{Name: "Sam", GradeLevel: 13, Subjects: []string{"math"}})
		assert.Equal(t, "max", failedTags(t, err)["grade_level"])
	})
}

type brokenParents struct {
	user.ParentRepository
	err error
}

func (r brokenParents) AddStudent(context.Context, string, string) error { return r.err }

type createdStudents struct {
	user.StudentRepository
	ids []string
}

func (r *createdStudents) CreateStudent(ctx context.Context, s user.Student) (user.Student, error) {
	r.ids = append(r.ids, s.ID)
	return r.StudentRepository.CreateStudent(ctx, s)
}

func TestService_AddStudent_linkFails(t *testing.T) {
	env := testutil.NewEnv()
	ctx := context.Background()
	parent := testutil.CreateParent(t, env.UserSvc, "uid-p", "Pat")

	validate, _ := testutil.NewValidator()
	linkErr := errors.New("connection reset")
	students := &createdStudents{StudentRepository: env.Students}
	svc := user.NewService(env.Mentors, brokenParents{ParentRepository: env.Parents, err: linkErr}, students, validate)

	_, err := svc.AddStudent(ctx, parent.ID, user.NewStudent{Name: "Sam", GradeLevel: 7, Subjects: []string{"math"}})
	assert.True(t, errors.Is(err, linkErr), "err = %v", err)

	require.Len(t, students.ids, 1)
	_, err = env.UserSvc.GetStudent(ctx, students.ids[0])
	assert.True(t, errors.Is(err, user.ErrStudentNotFound), "err = %v", err)

	refreshed, err := env.UserSvc.GetParent(ctx, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, refreshed.StudentIDs)
}

func TestService_GetAccount_unknown(t *testing.T) {
	env := testutil.NewEnv()
	for _, uid := range []string{"", "lol"} {
		_, err := env.UserSvc.GetAccount(context.Background(), uid)
		assert.True(t, errors.Is(err, user.ErrAccountNotFound), "uid %q: err = %v", uid, err)
	}
}

func TestService_QueryMentors(t *testing.T) {
	env := testutil.NewEnv()
	svc := env.UserSvc
	ctx := context.Background()

	ada := testutil.CreateMentor(t, svc, "ada", "Ada", "math", "physics")
	bob := testutil.CreateMentor(t, svc, "bob", "Bob", "history")
	cy, err := svc.RegisterMentor(ctx, "cy", user.NewMentor{Name: "Cy", Email: "cy@test.cd", Subjects: []string{"math"}, GradeLevels: []int{11, 12}})
	require.NoError(t, err)

	names := func(ms []user.Mentor) []string {
		out := make([]string, 0, len(ms))
		for _, m := range ms {
			out = append(out, m.Name)
		}
		return out
	}

	tests := []struct {
		name   string
		filter user.MentorFilter
		want   []string
	}{
		{name: "all", want: []string{ada.Name, bob.Name, cy.Name}},
		{name: "subject", filter: user.MentorFilter{Subject: " MATH "}, want: []string{ada.Name, cy.Name}},
		{name: "grade", filter: user.MentorFilter{GradeLevel: 12}, want: []string{cy.Name}},
		{name: "subject and grade", filter: user.MentorFilter{Subject: "math", GradeLevel: 7}, want: []string{ada.Name}},
		{name: "no match", filter: user.MentorFilter{Subject: "latin"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms, err := svc.QueryMentors(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(ms))
		})
	}
}
