package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/CovEducation/Website-sub000/core"
	"github.com/CovEducation/Website-sub000/core/user"
)

type mentorRow struct {
	ID                string         `db:"id"`
	UID               string         `db:"uid"`
	Name              string         `db:"name"`
	Email             string         `db:"email"`
	Phone             null.String    `db:"phone"`
	ContactPreference string         `db:"contact_preference"`
	Subjects          pq.StringArray `db:"subjects"`
	GradeLevels       pq.Int64Array  `db:"grade_levels"`
	Bio               null.String    `db:"bio"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func newMentorRow(m user.Mentor) mentorRow {
	levels := make(pq.Int64Array, 0, len(m.GradeLevels))
	for _, l := range m.GradeLevels {
		levels = append(levels, int64(l))
	}
	return mentorRow{
		ID:                m.ID,
		UID:               m.UID,
		Name:              m.Name,
		Email:             m.Email,
		Phone:             null.NewString(m.Phone, m.Phone != ""),
		ContactPreference: string(m.ContactPreference),
		Subjects:          pq.StringArray(nonNilStrings(m.Subjects)),
		GradeLevels:       levels,
		Bio:               null.NewString(m.Bio, m.Bio != ""),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func (r mentorRow) toMentor() user.Mentor {
	levels := make([]int, 0, len(r.GradeLevels))
	for _, l := range r.GradeLevels {
		levels = append(levels, int(l))
	}
	return user.Mentor{
		ID:                r.ID,
		UID:               r.UID,
		Name:              r.Name,
		Email:             r.Email,
		Phone:             r.Phone.String,
		ContactPreference: core.Channel(r.ContactPreference),
		Subjects:          nonNilStrings(r.Subjects),
		GradeLevels:       levels,
		Bio:               r.Bio.String,
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
	}
}

type mentorRepository struct {
	db *sqlx.DB
}

var _ user.MentorRepository = (*mentorRepository)(nil)

func NewMentorRepository(db *sqlx.DB) *mentorRepository {
	return &mentorRepository{db: db}
}

const mentorColumns = `id, uid, name, email, phone, contact_preference, subjects, grade_levels, bio, created_at, updated_at`

func (repo *mentorRepository) CreateMentor(ctx context.Context, mentor user.Mentor) (user.Mentor, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO mentors (`+mentorColumns+`)
		VALUES (:id, :uid, :name, :email, :phone, :contact_preference, :subjects, :grade_levels, :bio, :created_at, :updated_at)`,
		newMentorRow(mentor),
	)
	if err != nil {
		if uniqueViolationOn(err) != "" {
			return user.Mentor{}, user.ErrUIDExists
		}
		return user.Mentor{}, errors.Wrap(err, "inserting mentor")
	}
	return mentor, nil
}

func (repo *mentorRepository) getBy(ctx context.Context, column, value string) (user.Mentor, error) {
	var row mentorRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+mentorColumns+` FROM mentors WHERE `+column+` = $1`, value)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.Mentor{}, user.ErrMentorNotFound
		}
		return user.Mentor{}, errors.Wrap(err, "selecting mentor")
	}
	return row.toMentor(), nil
}

func (repo *mentorRepository) GetMentor(ctx context.Context, id string) (user.Mentor, error) {
	return repo.getBy(ctx, "id", id)
}

func (repo *mentorRepository) GetMentorByUID(ctx context.Context, uid string) (user.Mentor, error) {
	return repo.getBy(ctx, "uid", uid)
}

func (repo *mentorRepository) QueryMentors(ctx context.Context, filter user.MentorFilter) ([]user.Mentor, error) {
	q := `SELECT ` + mentorColumns + ` FROM mentors WHERE TRUE`
	args := make([]interface{}, 0, 2)
	if filter.Subject != "" {
		args = append(args, filter.Subject)
		q += ` AND $1 = ANY(subjects)`
	}
	if filter.GradeLevel != 0 {
		args = append(args, filter.GradeLevel)
		q += ` AND ` + placeholder(len(args)) + ` = ANY(grade_levels)`
	}
	q += ` ORDER BY name, id`

	var rows []mentorRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting mentors")
	}
	mentors := make([]user.Mentor, 0, len(rows))
	for _, r := range rows {
		mentors = append(mentors, r.toMentor())
	}
	return mentors, nil
}

type parentRow struct {
	ID                string         `db:"id"`
	UID               string         `db:"uid"`
	Name              string         `db:"name"`
	Email             string         `db:"email"`
	Phone             null.String    `db:"phone"`
	ContactPreference string         `db:"contact_preference"`
	StudentIDs        pq.StringArray `db:"student_ids"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func (r parentRow) toParent() user.Parent {
	return user.Parent{
		ID:                r.ID,
		UID:               r.UID,
		Name:              r.Name,
		Email:             r.Email,
		Phone:             r.Phone.String,
		ContactPreference: core.Channel(r.ContactPreference),
		StudentIDs:        nonNilStrings(r.StudentIDs),
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
	}
}

type parentRepository struct {
	db *sqlx.DB
}

var _ user.ParentRepository = (*parentRepository)(nil)

func NewParentRepository(db *sqlx.DB) *parentRepository {
	return &parentRepository{db: db}
}

const parentColumns = `id, uid, name, email, phone, contact_preference, student_ids, created_at, updated_at`

func (repo *parentRepository) CreateParent(ctx context.Context, parent user.Parent) (user.Parent, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO parents (`+parentColumns+`)
		VALUES (:id, :uid, :name, :email, :phone, :contact_preference, :student_ids, :created_at, :updated_at)`,
		parentRow{
			ID:                parent.ID,
			UID:               parent.UID,
			Name:              parent.Name,
			Email:             parent.Email,
			Phone:             null.NewString(parent.Phone, parent.Phone != ""),
			ContactPreference: string(parent.ContactPreference),
			StudentIDs:        pq.StringArray(nonNilStrings(parent.StudentIDs)),
			CreatedAt:         parent.CreatedAt,
			UpdatedAt:         parent.UpdatedAt,
		},
	)
	if err != nil {
		if uniqueViolationOn(err) != "" {
			return user.Parent{}, user.ErrUIDExists
		}
		return user.Parent{}, errors.Wrap(err, "inserting parent")
	}
	return parent, nil
}

func (repo *parentRepository) getBy(ctx context.Context, column, value string) (user.Parent, error) {
	var row parentRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+parentColumns+` FROM parents WHERE `+column+` = $1`, value)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.Parent{}, user.ErrParentNotFound
		}
		return user.Parent{}, errors.Wrap(err, "selecting parent")
	}
	return row.toParent(), nil
}

func (repo *parentRepository) GetParent(ctx context.Context, id string) (user.Parent, error) {
	return repo.getBy(ctx, "id", id)
}

func (repo *parentRepository) GetParentByUID(ctx context.Context, uid string) (user.Parent, error) {
	return repo.getBy(ctx, "uid", uid)
}

func (repo *parentRepository) AddStudent(ctx context.Context, parentID, studentID string) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE parents SET student_ids = array_append(student_ids, $1), updated_at = $2 WHERE id = $3`,
		studentID, time.Now().UTC(), parentID,
	)
	if err != nil {
		return errors.Wrap(err, "adding student")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "adding student")
	} else if n == 0 {
		return user.ErrParentNotFound
	}
	return nil
}

type studentRow struct {
	ID         string         `db:"id"`
	ParentID   string         `db:"parent_id"`
	Name       string         `db:"name"`
	GradeLevel int            `db:"grade_level"`
	Subjects   pq.StringArray `db:"subjects"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (r studentRow) toStudent() user.Student {
	return user.Student{
		ID:         r.ID,
		ParentID:   r.ParentID,
		Name:       r.Name,
		GradeLevel: r.GradeLevel,
		Subjects:   nonNilStrings(r.Subjects),
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ user.StudentRepository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

const studentColumns = `id, parent_id, name, grade_level, subjects, created_at, updated_at`

func (repo *studentRepository) CreateStudent(ctx context.Context, student user.Student) (user.Student, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO students (`+studentColumns+`)
		VALUES (:id, :parent_id, :name, :grade_level, :subjects, :created_at, :updated_at)`,
		studentRow{
			ID:         student.ID,
			ParentID:   student.ParentID,
			Name:       student.Name,
			GradeLevel: student.GradeLevel,
			Subjects:   pq.StringArray(nonNilStrings(student.Subjects)),
			CreatedAt:  student.CreatedAt,
			UpdatedAt:  student.UpdatedAt,
		},
	)
	if err != nil {
		return user.Student{}, errors.Wrap(err, "inserting student")
	}
	return student, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string) (user.Student, error) {
	var row studentRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.Student{}, user.ErrStudentNotFound
		}
		return user.Student{}, errors.Wrap(err, "selecting student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, parentID string) ([]user.Student, error) {
	var rows []studentRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+studentColumns+` FROM students WHERE parent_id = $1 ORDER BY created_at, id`, parentID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	students := make([]user.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.toStudent())
	}
	return students, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "deleting student")
	} else if n == 0 {
		return user.ErrStudentNotFound
	}
	return nil
}

func nonNilStrings(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
