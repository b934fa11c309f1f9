package mentorship

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/CovEducation/Website-sub000/core"
)

type State string

// States
const (
	StatePending  State = "PENDING"
	StateActive   State = "ACTIVE"
	StateRejected State = "REJECTED"
	StateArchived State = "ARCHIVED"
)

// Session is one meeting between the mentor and the student.
type Session struct {
	Date     time.Time `json:"date" bson:"date"`
	Duration int       `json:"duration" bson:"duration" validate:"gt=0"` // minutes
	Rating   float64   `json:"rating" bson:"rating" validate:"gte=0,lte=1"`
}

type Mentorship struct {
	ID        string     `json:"id" bson:"_id"`
	State     State      `json:"state" bson:"state"`
	Message   string     `json:"message" bson:"message"`
	StartDate *time.Time `json:"start_date" bson:"start_date,omitempty"` // set on accept
	EndDate   *time.Time `json:"end_date" bson:"end_date,omitempty"`     // set on archive
	MentorID  string     `json:"mentor" bson:"mentor"`
	ParentID  string     `json:"parent" bson:"parent"`
	StudentID string     `json:"student" bson:"student"`
	Sessions  []Session  `json:"sessions" bson:"sessions"`
	Version   int64      `json:"version" bson:"version"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"` // UTC
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"` // UTC
}

// HasParticipant reports whether id is the mentorship's student, parent or mentor.
func (m Mentorship) HasParticipant(id string) bool {
	return id != "" && (m.StudentID == id || m.ParentID == id || m.MentorID == id)
}

// NewRequest contains information needed to request a new Mentorship.
type NewRequest struct {
	Mentor  core.Ref `json:"mentor" validate:"required"`
	Parent  core.Ref `json:"parent" validate:"required"`
	Student core.Ref `json:"student" validate:"required"`
	Message string   `json:"message" validate:"required,max=2000"`
}

func (nr *NewRequest) Validate(validate *validator.Validate) error {
	nr.Message = core.CleanString(nr.Message)
	return validate.Struct(nr)
}

// Filter selects mentorships; set fields are AND-ed together.
type Filter struct {
	States    []State
	StudentID string
	MentorID  string
	ParentID  string
	// Participant matches the student, the parent or the mentor.
	Participant string
}
