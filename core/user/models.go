package user

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/CovEducation/Website-sub000/core"
)

// Roles
const (
	RoleMentor = "mentor"
	RoleParent = "parent"
)

type Mentor struct {
	ID                string       `json:"id" bson:"_id"`
	UID               string       `json:"-" bson:"uid"`
	Name              string       `json:"name" bson:"name"`
	Email             string       `json:"email" bson:"email"`
	Phone             string       `json:"phone,omitempty" bson:"phone,omitempty"`
	ContactPreference core.Channel `json:"contact_preference" bson:"contact_preference"`
	Subjects          []string     `json:"subjects" bson:"subjects"`
	GradeLevels       []int        `json:"grade_levels" bson:"grade_levels"`
	Bio               string       `json:"bio,omitempty" bson:"bio,omitempty"`
	CreatedAt         time.Time    `json:"created_at" bson:"created_at"` // UTC
	UpdatedAt         time.Time    `json:"updated_at" bson:"updated_at"` // UTC
}

func (m Mentor) Recipient() core.Recipient {
	return core.Recipient{ID: m.ID, Name: m.Name, Email: m.Email, Phone: m.Phone, Channel: m.ContactPreference}
}

type Parent struct {
	ID                string       `json:"id" bson:"_id"`
	UID               string       `json:"-" bson:"uid"`
	Name              string       `json:"name" bson:"name"`
	Email             string       `json:"email" bson:"email"`
	Phone             string       `json:"phone,omitempty" bson:"phone,omitempty"`
	ContactPreference core.Channel `json:"contact_preference" bson:"contact_preference"`
	StudentIDs        []string     `json:"students" bson:"students"`
	CreatedAt         time.Time    `json:"created_at" bson:"created_at"` // UTC
	UpdatedAt         time.Time    `json:"updated_at" bson:"updated_at"` // UTC
}

func (p Parent) Recipient() core.Recipient {
	return core.Recipient{ID: p.ID, Name: p.Name, Email: p.Email, Phone: p.Phone, Channel: p.ContactPreference}
}

func (p Parent) HasStudent(id string) bool {
	for _, sid := range p.StudentIDs {
		if sid == id {
			return true
		}
	}
	return false
}

type Student struct {
	ID         string    `json:"id" bson:"_id"`
	ParentID   string    `json:"parent" bson:"parent"`
	Name       string    `json:"name" bson:"name"`
	GradeLevel int       `json:"grade_level" bson:"grade_level"`
	Subjects   []string  `json:"subjects" bson:"subjects"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"` // UTC
}

// Account is the registered profile behind an identity-provider uid.
type Account struct {
	Role   string  `json:"role"`
	ID     string  `json:"id"`
	Mentor *Mentor `json:"mentor,omitempty"`
	Parent *Parent `json:"parent,omitempty"`
}

func (a Account) IsMentor() bool { return a.Role == RoleMentor }
func (a Account) IsParent() bool { return a.Role == RoleParent }

func (a Account) Name() string {
	switch {
	case a.Mentor != nil:
		return a.Mentor.Name
	case a.Parent != nil:
		return a.Parent.Name
	}
	return ""
}

func (a Account) Email() string {
	switch {
	case a.Mentor != nil:
		return a.Mentor.Email
	case a.Parent != nil:
		return a.Parent.Email
	}
	return ""
}

// NewMentor contains information needed to register a new Mentor.
type NewMentor struct {
	Name              string       `json:"name" validate:"required"`
	Email             string       `json:"email" validate:"required,email"`
	Phone             string       `json:"phone" validate:"omitempty,e164"`
	ContactPreference core.Channel `json:"contact_preference" validate:"contactpref"`
	Subjects          []string     `json:"subjects" validate:"required,min=1,dive,required"`
	GradeLevels       []int        `json:"grade_levels" validate:"omitempty,dive,min=1,max=12"`
	Bio               string       `json:"bio" validate:"max=2000"`
}

func (nm *NewMentor) Validate(validate *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.Phone = core.CleanString(nm.Phone)
	nm.ContactPreference = cleanPreference(nm.ContactPreference)
	nm.Subjects = core.CleanStrings(nm.Subjects, true /* lower */)
	nm.Bio = core.CleanString(nm.Bio)
	return validate.Struct(nm)
}

// NewParent contains information needed to register a new Parent.
type NewParent struct {
	Name              string       `json:"name" validate:"required"`
	Email             string       `json:"email" validate:"required,email"`
	Phone             string       `json:"phone" validate:"omitempty,e164"`
	ContactPreference core.Channel `json:"contact_preference" validate:"contactpref"`
}

func (np *NewParent) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	np.Email = core.CleanString(np.Email, true /* lower */)
	np.Phone = core.CleanString(np.Phone)
	np.ContactPreference = cleanPreference(np.ContactPreference)
	return validate.Struct(np)
}

// NewStudent contains information needed to add a Student to a Parent.
type NewStudent struct {
	Name       string   `json:"name" validate:"required"`
	GradeLevel int      `json:"grade_level" validate:"required,min=1,max=12"`
	Subjects   []string `json:"subjects" validate:"required,min=1,dive,required"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Subjects = core.CleanStrings(ns.Subjects, true /* lower */)
	return validate.Struct(ns)
}

type MentorFilter struct {
	Subject    string `query:"subject"`
	GradeLevel int    `query:"grade_level"`
}

func (mf *MentorFilter) Clean() {
	mf.Subject = core.CleanString(mf.Subject, true /* lower */)
}

func cleanPreference(pref core.Channel) core.Channel {
	p := core.Channel(core.CleanString(string(pref), true /* lower */))
	if p == "" {
		return core.ChannelEmail
	}
	return p
}
