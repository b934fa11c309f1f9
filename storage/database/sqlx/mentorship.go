package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/CovEducation/Website-sub000/core/mentorship"
)

// Unique indexes, see fs/migrations
const (
	pendingIndex = "mentorships_pending_uniq"
	activeIndex  = "mentorships_active_uniq"
)

type mentorshipRow struct {
	ID        string    `db:"id"`
	State     string    `db:"state"`
	Message   string    `db:"message"`
	StartDate null.Time `db:"start_date"`
	EndDate   null.Time `db:"end_date"`
	MentorID  string    `db:"mentor_id"`
	ParentID  string    `db:"parent_id"`
	StudentID string    `db:"student_id"`
	Version   int64     `db:"version"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func newMentorshipRow(m mentorship.Mentorship) mentorshipRow {
	return mentorshipRow{
		ID:        m.ID,
		State:     string(m.State),
		Message:   m.Message,
		StartDate: null.TimeFromPtr(m.StartDate),
		EndDate:   null.TimeFromPtr(m.EndDate),
		MentorID:  m.MentorID,
		ParentID:  m.ParentID,
		StudentID: m.StudentID,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r mentorshipRow) toMentorship(sessions []mentorship.Session) mentorship.Mentorship {
	if sessions == nil {
		sessions = []mentorship.Session{}
	}
	return mentorship.Mentorship{
		ID:        r.ID,
		State:     mentorship.State(r.State),
		Message:   r.Message,
		StartDate: utcPtr(r.StartDate),
		EndDate:   utcPtr(r.EndDate),
		MentorID:  r.MentorID,
		ParentID:  r.ParentID,
		StudentID: r.StudentID,
		Sessions:  sessions,
		Version:   r.Version,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func utcPtr(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}

type sessionRow struct {
	MentorshipID string    `db:"mentorship_id"`
	Position     int       `db:"position"`
	Date         time.Time `db:"date"`
	Duration     int       `db:"duration"`
	Rating       float64   `db:"rating"`
}

type mentorshipRepository struct {
	db *sqlx.DB
}

var _ mentorship.Repository = (*mentorshipRepository)(nil)

func NewMentorshipRepository(db *sqlx.DB) *mentorshipRepository {
	return &mentorshipRepository{db: db}
}

const mentorshipColumns = `id, state, message, start_date, end_date, mentor_id, parent_id, student_id, version, created_at, updated_at`

// trapUniqueViolation maps a unique index violation to the rule it protects.
func trapUniqueViolation(err error) error {
	switch uniqueViolationOn(err) {
	case pendingIndex:
		return mentorship.ErrDuplicateRequest
	case activeIndex:
		return mentorship.ErrStudentAlreadyMentored
	}
	return err
}

func (repo *mentorshipRepository) Create(ctx context.Context, m mentorship.Mentorship) (mentorship.Mentorship, error) {
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO mentorships (`+mentorshipColumns+`)
			VALUES (:id, :state, :message, :start_date, :end_date, :mentor_id, :parent_id, :student_id, :version, :created_at, :updated_at)`,
			newMentorshipRow(m),
		)
		if err != nil {
			return errors.Wrap(trapUniqueViolation(err), "inserting mentorship")
		}
		return insertSessions(ctx, tx, m.ID, 0, m.Sessions)
	})
	if err != nil {
		return mentorship.Mentorship{}, err
	}
	if m.Sessions == nil {
		m.Sessions = []mentorship.Session{}
	}
	return m, nil
}

func insertSessions(ctx context.Context, tx *sqlx.Tx, mentorshipID string, from int, sessions []mentorship.Session) error {
	for i, s := range sessions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO mentorship_sessions (mentorship_id, position, date, duration, rating) VALUES ($1, $2, $3, $4, $5)`,
			mentorshipID, from+i, s.Date.UTC(), s.Duration, s.Rating,
		)
		if err != nil {
			return errors.Wrap(err, "inserting session")
		}
	}
	return nil
}

func (repo *mentorshipRepository) Get(ctx context.Context, id string) (mentorship.Mentorship, error) {
	var row mentorshipRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+mentorshipColumns+` FROM mentorships WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return mentorship.Mentorship{}, mentorship.ErrNotFound
		}
		return mentorship.Mentorship{}, errors.Wrap(err, "selecting mentorship")
	}
	sessions, err := repo.loadSessions(ctx, id)
	if err != nil {
		return mentorship.Mentorship{}, err
	}
	return row.toMentorship(sessions[id]), nil
}

func (repo *mentorshipRepository) loadSessions(ctx context.Context, ids ...string) (map[string][]mentorship.Session, error) {
	byMentorship := make(map[string][]mentorship.Session, len(ids))
	if len(ids) == 0 {
		return byMentorship, nil
	}
	var rows []sessionRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT mentorship_id, position, date, duration, rating FROM mentorship_sessions
		WHERE mentorship_id = ANY($1) ORDER BY mentorship_id, position`,
		pq.StringArray(ids),
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting sessions")
	}
	for _, r := range rows {
		byMentorship[r.MentorshipID] = append(byMentorship[r.MentorshipID], mentorship.Session{
			Date:     r.Date.UTC(),
			Duration: r.Duration,
			Rating:   r.Rating,
		})
	}
	return byMentorship, nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func buildWhere(filter mentorship.Filter) (string, []interface{}) {
	conds := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", placeholder(len(args))))
	}

	if filter.StudentID != "" {
		add("student_id = ?", filter.StudentID)
	}
	if filter.MentorID != "" {
		add("mentor_id = ?", filter.MentorID)
	}
	if filter.ParentID != "" {
		add("parent_id = ?", filter.ParentID)
	}
	if filter.Participant != "" {
		add("(student_id = ? OR parent_id = ? OR mentor_id = ?)", filter.Participant)
	}
	if len(filter.States) > 0 {
		states := make(pq.StringArray, 0, len(filter.States))
		for _, s := range filter.States {
			states = append(states, string(s))
		}
		add("state = ANY(?)", states)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (repo *mentorshipRepository) Query(ctx context.Context, filter mentorship.Filter) ([]mentorship.Mentorship, error) {
	where, args := buildWhere(filter)
	var rows []mentorshipRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+mentorshipColumns+` FROM mentorships`+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "selecting mentorships")
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	sessions, err := repo.loadSessions(ctx, ids...)
	if err != nil {
		return nil, err
	}

	ms := make([]mentorship.Mentorship, 0, len(rows))
	for _, r := range rows {
		ms = append(ms, r.toMentorship(sessions[r.ID]))
	}
	return ms, nil
}

// Update writes m if the stored version still equals m.Version. Sessions are append-only,
// so only the ones past the stored count are inserted.
func (repo *mentorshipRepository) Update(ctx context.Context, m mentorship.Mentorship) (mentorship.Mentorship, error) {
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE mentorships
			SET state = $1, message = $2, start_date = $3, end_date = $4, version = version + 1, updated_at = $5
			WHERE id = $6 AND version = $7`,
			string(m.State), m.Message, null.TimeFromPtr(m.StartDate), null.TimeFromPtr(m.EndDate), m.UpdatedAt,
			m.ID, m.Version,
		)
		if err != nil {
			return errors.Wrap(trapUniqueViolation(err), "updating mentorship")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "updating mentorship")
		}
		if n == 0 {
			var found bool
			err = tx.GetContext(ctx, &found, `SELECT true FROM mentorships WHERE id = $1`, m.ID)
			if err == sql.ErrNoRows {
				return mentorship.ErrNotFound
			} else if err != nil {
				return errors.Wrap(err, "selecting mentorship")
			}
			return mentorship.ErrConcurrentModification
		}

		var stored int
		if err = tx.GetContext(ctx, &stored, `SELECT COUNT(*) FROM mentorship_sessions WHERE mentorship_id = $1`, m.ID); err != nil {
			return errors.Wrap(err, "counting sessions")
		}
		if stored < len(m.Sessions) {
			return insertSessions(ctx, tx, m.ID, stored, m.Sessions[stored:])
		}
		return nil
	})
	if err != nil {
		return mentorship.Mentorship{}, err
	}
	m.Version++
	if m.Sessions == nil {
		m.Sessions = []mentorship.Session{}
	}
	return m, nil
}
