package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/CovEducation/Website-sub000/core"
)

var (
	// errors
	ErrMentorNotFound  = core.NewNotFoundError("mentor")
	ErrParentNotFound  = core.NewNotFoundError("parent")
	ErrStudentNotFound = core.NewNotFoundError("student")
	ErrAccountNotFound = core.NewNotFoundError("account")
	ErrUIDExists       = core.NewValidationError(errors.New("an account already exists for this identity"))
)

type (
	MentorRepository interface {
		CreateMentor(ctx context.Context, mentor Mentor) (Mentor, error)
		GetMentor(ctx context.Context, id string) (Mentor, error)
		GetMentorByUID(ctx context.Context, uid string) (Mentor, error)
		// QueryMentors applies AND on the set MentorFilter fields, ordered by name.
		QueryMentors(ctx context.Context, filter MentorFilter) ([]Mentor, error)
	}

	ParentRepository interface {
		CreateParent(ctx context.Context, parent Parent) (Parent, error)
		GetParent(ctx context.Context, id string) (Parent, error)
		GetParentByUID(ctx context.Context, uid string) (Parent, error)
		// AddStudent appends studentID to the parent's ordered student list.
		AddStudent(ctx context.Context, parentID, studentID string) error
	}

	StudentRepository interface {
		CreateStudent(ctx context.Context, student Student) (Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		QueryStudents(ctx context.Context, parentID string) ([]Student, error)
		// DeleteStudent returns ErrStudentNotFound for an unknown id.
		DeleteStudent(ctx context.Context, id string) error
	}

	Service struct {
		mentors  MentorRepository
		parents  ParentRepository
		students StudentRepository
		validate *validator.Validate
		nowFunc  func() time.Time
	}
)

func NewService(
	mentors MentorRepository,
	parents ParentRepository,
	students StudentRepository,
	validate *validator.Validate,
) *Service {
	return &Service{
		mentors:  mentors,
		parents:  parents,
		students: students,
		validate: validate,
		nowFunc:  time.Now,
	}
}

func (svc *Service) now() time.Time { return svc.nowFunc().UTC() }

// GetAccount resolves an identity-provider uid to the registered mentor or parent.
func (svc *Service) GetAccount(ctx context.Context, uid string) (Account, error) {
	if uid == "" {
		return Account{}, ErrAccountNotFound
	}
	mentor, err := svc.mentors.GetMentorByUID(ctx, uid)
	if err == nil {
		return Account{Role: RoleMentor, ID: mentor.ID, Mentor: &mentor}, nil
	}
	if !errors.Is(err, ErrMentorNotFound) {
		return Account{}, errors.Wrap(err, "finding mentor by uid")
	}

	parent, err := svc.parents.GetParentByUID(ctx, uid)
	if err == nil {
		return Account{Role: RoleParent, ID: parent.ID, Parent: &parent}, nil
	}
	if !errors.Is(err, ErrParentNotFound) {
		return Account{}, errors.Wrap(err, "finding parent by uid")
	}
	return Account{}, ErrAccountNotFound
}

func (svc *Service) checkUIDAvailable(ctx context.Context, uid string) error {
	if uid == "" {
		return core.NewValidationError(errors.New("missing identity"))
	}
	_, err := svc.GetAccount(ctx, uid)
	switch {
	case err == nil:
		return ErrUIDExists
	case errors.Is(err, ErrAccountNotFound):
		return nil
	default:
		return err
	}
}

func (svc *Service) RegisterMentor(ctx context.Context, uid string, nm NewMentor) (Mentor, error) {
	if err := nm.Validate(svc.validate); err != nil {
		return Mentor{}, err
	}
	if err := svc.checkUIDAvailable(ctx, uid); err != nil {
		return Mentor{}, err
	}

	now := svc.now()
	mentor := Mentor{
		ID:                uuid.NewString(),
		UID:               uid,
		Name:              nm.Name,
		Email:             nm.Email,
		Phone:             nm.Phone,
		ContactPreference: nm.ContactPreference,
		Subjects:          nm.Subjects,
		GradeLevels:       nm.GradeLevels,
		Bio:               nm.Bio,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if mentor.GradeLevels == nil {
		mentor.GradeLevels = []int{}
	}
	mentor, err := svc.mentors.CreateMentor(ctx, mentor)
	return mentor, errors.Wrap(err, "creating mentor")
}

func (svc *Service) RegisterParent(ctx context.Context, uid string, np NewParent) (Parent, error) {
	if err := np.Validate(svc.validate); err != nil {
		return Parent{}, err
	}
	if err := svc.checkUIDAvailable(ctx, uid); err != nil {
		return Parent{}, err
	}

	now := svc.now()
	parent := Parent{
		ID:                uuid.NewString(),
		UID:               uid,
		Name:              np.Name,
		Email:             np.Email,
		Phone:             np.Phone,
		ContactPreference: np.ContactPreference,
		StudentIDs:        []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	parent, err := svc.parents.CreateParent(ctx, parent)
	return parent, errors.Wrap(err, "creating parent")
}

// AddStudent creates a Student owned by the parent and appends it to the parent's students.
func (svc *Service) AddStudent(ctx context.Context, parentID string, ns NewStudent) (Student, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	if _, err := svc.parents.GetParent(ctx, parentID); err != nil {
		return Student{}, errors.Wrap(err, "finding parent")
	}

	now := svc.now()
	student, err := svc.students.CreateStudent(ctx, Student{
		ID:         uuid.NewString(),
		ParentID:   parentID,
		Name:       ns.Name,
		GradeLevel: ns.GradeLevel,
		Subjects:   ns.Subjects,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}
	if err = svc.parents.AddStudent(ctx, parentID, student.ID); err != nil {
		// the student must not outlive a failed link to its parent
		if derr := svc.students.DeleteStudent(ctx, student.ID); derr != nil {
			return Student{}, errors.Wrapf(err, "adding student to parent (removing student: %v)", derr)
		}
		return Student{}, errors.Wrap(err, "adding student to parent")
	}
	return student, nil
}

func (svc *Service) GetMentor(ctx context.Context, id string) (Mentor, error) {
	return svc.mentors.GetMentor(ctx, id)
}

func (svc *Service) GetParent(ctx context.Context, id string) (Parent, error) {
	return svc.parents.GetParent(ctx, id)
}

func (svc *Service) GetStudent(ctx context.Context, id string) (Student, error) {
	return svc.students.GetStudent(ctx, id)
}

func (svc *Service) QueryMentors(ctx context.Context, filter MentorFilter) ([]Mentor, error) {
	filter.Clean()
	return svc.mentors.QueryMentors(ctx, filter)
}

func (svc *Service) QueryStudents(ctx context.Context, parentID string) ([]Student, error) {
	return svc.students.QueryStudents(ctx, parentID)
}
