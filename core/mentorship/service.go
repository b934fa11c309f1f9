package mentorship

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/CovEducation/Website-sub000/core"
	"github.com/CovEducation/Website-sub000/core/user"
)

const (
	requestedTemplate = "mentorship_requested"
	requestedSubject  = "New mentorship request"

	maxSessionRetries = 3
)

var (
	// errors
	ErrNotFound               = core.NewNotFoundError("mentorship")
	ErrStudentAlreadyMentored = core.NewInvariantError("student already has an active mentorship")
	ErrDuplicateRequest       = core.NewInvariantError("duplicate request")
	ErrMentorRejected         = core.NewInvariantError("mentor has already rejected this student")
	ErrNotPending             = core.NewInvariantError("mentorship is not pending")
	ErrNotActive              = core.NewInvariantError("mentorship is not active")
	ErrConcurrentModification = core.NewConflictError("mentorship was modified concurrently")
	ErrStudentNotOwned        = core.NewValidationError(
		errors.New("student does not belong to parent"),
		core.FieldError{Field: "student", Error: "student does not belong to parent"},
	)
)

type (
	Repository interface {
		// Create stores a new PENDING mentorship.
		// It returns ErrDuplicateRequest if the (student, mentor) pair already has a PENDING one.
		Create(ctx context.Context, m Mentorship) (Mentorship, error)
		Get(ctx context.Context, id string) (Mentorship, error)
		// Query returns the mentorships matching filter, newest first.
		Query(ctx context.Context, filter Filter) ([]Mentorship, error)
		// Update persists m if the stored version still equals m.Version, and bumps the version.
		// It returns ErrConcurrentModification when the stored version moved on,
		// and ErrStudentAlreadyMentored when m would be a second ACTIVE mentorship of its student.
		Update(ctx context.Context, m Mentorship) (Mentorship, error)
	}

	// Service is the mentorship lifecycle engine, the sole writer of mentorship state.
	Service struct {
		repo     Repository
		mentors  user.MentorRepository
		parents  user.ParentRepository
		students user.StudentRepository
		notifier core.Notifier
		validate *validator.Validate
		logger   core.Logger

		bus     *eventBus
		locks   *keyedMutex // per student
		nowFunc func() time.Time
	}

	// RequestedNotification is the template data of a mentorship request notification.
	RequestedNotification struct {
		MentorshipID string
		MentorName   string
		ParentName   string
		StudentName  string
		Message      string
	}
)

func NewService(
	repo Repository,
	mentors user.MentorRepository,
	parents user.ParentRepository,
	students user.StudentRepository,
	notifier core.Notifier,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	svc := &Service{
		repo:     repo,
		mentors:  mentors,
		parents:  parents,
		students: students,
		notifier: notifier,
		validate: validate,
		logger:   logger,
		bus:      newEventBus(logger),
		locks:    newKeyedMutex(),
		nowFunc:  time.Now,
	}
	svc.Subscribe(EventRequested, svc.notifyMentor)
	svc.Subscribe(EventAccepted, svc.rejectOtherPending)
	return svc
}

// Subscribe registers h to run after every committed transition of type t.
func (svc *Service) Subscribe(t EventType, h EventHandler) {
	svc.bus.subscribe(t, h)
}

// SetNowFunc overrides the clock.
func (svc *Service) SetNowFunc(f func() time.Time) {
	svc.nowFunc = f
}

func (svc *Service) now() time.Time { return svc.nowFunc().UTC() }

func (svc *Service) publish(ctx context.Context, t EventType, m Mentorship) {
	svc.bus.publish(ctx, Event{Type: t, Mentorship: m, OccurredAt: svc.now()})
}

func (svc *Service) GetMentorship(ctx context.Context, id string) (Mentorship, error) {
	if id == "" {
		return Mentorship{}, ErrNotFound
	}
	return svc.repo.Get(ctx, id)
}

// SendRequest creates a PENDING mentorship between the parent's student and the mentor.
func (svc *Service) SendRequest(ctx context.Context, nr NewRequest) (Mentorship, error) {
	if err := nr.Validate(svc.validate); err != nil {
		return Mentorship{}, err
	}

	parent, err := svc.parents.GetParent(ctx, nr.Parent.String())
	if err != nil {
		return Mentorship{}, errors.Wrap(err, "finding parent")
	}
	mentor, err := svc.mentors.GetMentor(ctx, nr.Mentor.String())
	if err != nil {
		return Mentorship{}, errors.Wrap(err, "finding mentor")
	}
	student, err := svc.students.GetStudent(ctx, nr.Student.String())
	if err != nil {
		return Mentorship{}, errors.Wrap(err, "finding student")
	}
	if student.ParentID != parent.ID {
		return Mentorship{}, ErrStudentNotOwned
	}

	unlock := svc.locks.Lock(student.ID)
	defer unlock()

	existing, err := svc.repo.Query(ctx, Filter{StudentID: student.ID})
	if err != nil {
		return Mentorship{}, errors.Wrap(err, "querying student mentorships")
	}
	if err = checkCanRequest(existing, mentor.ID); err != nil {
		return Mentorship{}, err
	}

	now := svc.now()
	m, err := svc.repo.Create(ctx, Mentorship{
		ID:        uuid.NewString(),
		State:     StatePending,
		Message:   nr.Message,
		MentorID:  mentor.ID,
		ParentID:  parent.ID,
		StudentID: student.ID,
		Sessions:  []Session{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Mentorship{}, errors.Wrap(err, "creating mentorship")
	}
	unlock()

	svc.publish(ctx, EventRequested, m)
	return m, nil
}

// checkCanRequest applies, in order: one active mentorship per student,
// one pending request per (student, mentor), and no request to a mentor who rejected the student.
func checkCanRequest(existing []Mentorship, mentorID string) error {
	var duplicate, rejected bool
	for _, m := range existing {
		switch {
		case m.State == StateActive:
			return ErrStudentAlreadyMentored
		case m.MentorID != mentorID:
		case m.State == StatePending:
			duplicate = true
		case m.State == StateRejected:
			rejected = true
		}
	}
	if duplicate {
		return ErrDuplicateRequest
	}
	if rejected {
		return ErrMentorRejected
	}
	return nil
}

// AcceptRequest activates a PENDING mentorship and then rejects the student's other PENDING requests.
func (svc *Service) AcceptRequest(ctx context.Context, id string) (Mentorship, error) {
	m, err := svc.GetMentorship(ctx, id)
	if err != nil {
		return Mentorship{}, errors.Wrap(err, "finding mentorship")
	}
	if m.State != StatePending {
		return Mentorship{}, ErrNotPending
	}

	m, err = svc.accept(ctx, m)
	if err != nil {
		return Mentorship{}, err
	}

	svc.publish(ctx, EventAccepted, m)
	return m, nil
}

func (svc *Service) accept(ctx context.Context, m Mentorship) (Mentorship, error) {
	unlock := svc.locks.Lock(m.StudentID)
	defer unlock()

	// state may have moved while waiting for the lock
	m, err := svc.repo.Get(ctx, m.ID)
	if err != nil {
		return Mentorship{}, errors.Wrap(err, "finding mentorship")
	}
	if m.State != StatePending {
		return Mentorship{}, ErrNotPending
	}
	active, err := svc.repo.Query(ctx, Filter{StudentID: m.StudentID, States: []State{StateActive}})
	if err != nil {
		return Mentorship{}, errors.Wrap(err, "querying active mentorships")
	}
	if len(active) > 0 {
		return Mentorship{}, ErrStudentAlreadyMentored
	}

	now := svc.now()
	m.State = StateActive
	m.StartDate = &now
	m.UpdatedAt = now
	m, err = svc.repo.Update(ctx, m)
	return m, errors.Wrap(err, "updating mentorship")
}

// RejectRequest rejects a PENDING mentorship.
func (svc *Service) RejectRequest(ctx context.Context, id string) (Mentorship, error) {
	m, err := svc.GetMentorship(ctx, id)
	if err != nil {
		return Mentorship{}, errors.Wrap(err, "finding mentorship")
	}
	if m.State != StatePending {
		return Mentorship{}, ErrNotPending
	}

	m.State = StateRejected
	m.UpdatedAt = svc.now()
	if m, err = svc.repo.Update(ctx, m); err != nil {
		return Mentorship{}, errors.Wrap(err, "updating mentorship")
	}

	svc.publish(ctx, EventRejected, m)
	return m, nil
}

// ArchiveMentorship ends an ACTIVE mentorship.
func (svc *Service) ArchiveMentorship(ctx context.Context, id string) (Mentorship, error) {
	m, err := svc.GetMentorship(ctx, id)
	if err != nil {
		return Mentorship{}, errors.Wrap(err, "finding mentorship")
	}
	if m.State != StateActive {
		return Mentorship{}, ErrNotActive
	}

	now := svc.now()
	m.State = StateArchived
	m.EndDate = &now
	m.UpdatedAt = now
	if m, err = svc.repo.Update(ctx, m); err != nil {
		return Mentorship{}, errors.Wrap(err, "updating mentorship")
	}

	svc.publish(ctx, EventArchived, m)
	return m, nil
}

// AddSessionToMentorship appends a session to an ACTIVE mentorship.
// Appends commute, so a lost version race is retried against the fresh record.
func (svc *Service) AddSessionToMentorship(ctx context.Context, id string, session Session) (Mentorship, error) {
	if err := svc.validate.Struct(session); err != nil {
		return Mentorship{}, err
	}
	if session.Date.IsZero() {
		session.Date = svc.now()
	}
	session.Date = session.Date.UTC()

	var m Mentorship
	var err error
	for attempt := 1; ; attempt++ {
		m, err = svc.addSession(ctx, id, session)
		if err == nil || !errors.Is(err, ErrConcurrentModification) || attempt == maxSessionRetries {
			break
		}
	}
	if err != nil {
		return Mentorship{}, err
	}

	svc.publish(ctx, EventSessionAdded, m)
	return m, nil
}

func (svc *Service) addSession(ctx context.Context, id string, session Session) (Mentorship, error) {
	m, err := svc.GetMentorship(ctx, id)
	if err != nil {
		return Mentorship{}, errors.Wrap(err, "finding mentorship")
	}
	if m.State != StateActive {
		return Mentorship{}, ErrNotActive
	}

	sessions := make([]Session, 0, len(m.Sessions)+1)
	sessions = append(sessions, m.Sessions...)
	m.Sessions = append(sessions, session)
	m.UpdatedAt = svc.now()
	m, err = svc.repo.Update(ctx, m)
	return m, errors.Wrap(err, "updating mentorship")
}

// GetCurrentMentorships returns every mentorship where userID is the student, the parent or the mentor.
func (svc *Service) GetCurrentMentorships(ctx context.Context, userID string) ([]Mentorship, error) {
	if userID == "" {
		return []Mentorship{}, nil
	}
	ms, err := svc.repo.Query(ctx, Filter{Participant: userID})
	if err != nil {
		return nil, errors.Wrap(err, "querying mentorships")
	}
	if ms == nil {
		ms = []Mentorship{}
	}
	return ms, nil
}

// Event handlers

// notifyMentor tells the mentor about a new request. Delivery is best-effort.
func (svc *Service) notifyMentor(ctx context.Context, e Event) error {
	m := e.Mentorship
	mentor, err := svc.mentors.GetMentor(ctx, m.MentorID)
	if err != nil {
		return errors.Wrap(err, "finding mentor")
	}
	parent, err := svc.parents.GetParent(ctx, m.ParentID)
	if err != nil {
		return errors.Wrap(err, "finding parent")
	}
	student, err := svc.students.GetStudent(ctx, m.StudentID)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}

	err = svc.notifier.Notify(ctx, core.Notification{
		Recipient: mentor.Recipient(),
		Template:  requestedTemplate,
		Subject:   requestedSubject,
		Data: RequestedNotification{
			MentorshipID: m.ID,
			MentorName:   mentor.Name,
			ParentName:   parent.Name,
			StudentName:  student.Name,
			Message:      m.Message,
		},
	})
	return errors.Wrap(err, "notifying mentor")
}

// rejectOtherPending rejects the other PENDING requests of a student whose mentorship was accepted.
func (svc *Service) rejectOtherPending(ctx context.Context, e Event) error {
	pending, err := svc.repo.Query(ctx, Filter{StudentID: e.Mentorship.StudentID, States: []State{StatePending}})
	if err != nil {
		return errors.Wrap(err, "querying pending mentorships")
	}
	for _, p := range pending {
		if p.ID == e.Mentorship.ID {
			continue
		}
		if _, err := svc.RejectRequest(ctx, p.ID); err != nil {
			svc.logger.Warn(fmt.Sprintf("auto-rejecting mentorship %s: %v", p.ID, err), err)
		}
	}
	return nil
}
