package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CovEducation/Website-sub000/core/mentorship"
	"github.com/CovEducation/Website-sub000/core/user"
	"github.com/CovEducation/Website-sub000/tests"
)

type mentorshipFixture struct {
	*app
	parent             user.Parent
	student            user.Student
	m1, m2             user.Mentor
	parentToken        string
	m1Token, m2Token   string
	otherParentToken   string
	otherParentStudent user.Student
}

func setupMentorships(t *testing.T) *mentorshipFixture {
	a := setup(t)
	f := &mentorshipFixture{app: a}
	f.parent = testutil.CreateParent(t, a.env.UserSvc, "pat", "Pat")
	f.student = testutil.CreateStudent(t, a.env.UserSvc, f.parent.ID, "Sam")
	f.m1 = testutil.CreateMentor(t, a.env.UserSvc, "mo", "Mo")
	f.m2 = testutil.CreateMentor(t, a.env.UserSvc, "mia", "Mia")
	other := testutil.CreateParent(t, a.env.UserSvc, "olu", "Olu")
	f.otherParentStudent = testutil.CreateStudent(t, a.env.UserSvc, other.ID, "Ola")

	f.parentToken = a.token(t, "pat")
	f.m1Token = a.token(t, "mo")
	f.m2Token = a.token(t, "mia")
	f.otherParentToken = a.token(t, "olu")
	return f
}

func (f *mentorshipFixture) request(t *testing.T, mentor user.Mentor) mentorship.Mentorship {
	body := fmt.Sprintf(`{"mentor": {"id": %q, "name": %q}, "student": %q, "message": "Hi"}`, mentor.ID, mentor.Name, f.student.ID)
	rec := f.do(http.MethodPost, "/v1/mentorships/request", f.parentToken, []byte(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var m mentorship.Mentorship
	unmarshall(t, rec, &m)
	return m
}

func ref(id string) []byte {
	return []byte(fmt.Sprintf(`{"mentorship": %q}`, id))
}

func Test_mentorshipApi_lifecycle(t *testing.T) {
	f := setupMentorships(t)

	r1 := f.request(t, f.m1)
	assert.Equal(t, mentorship.StatePending, r1.State)
	assert.Equal(t, f.parent.ID, r1.ParentID)
	assert.Equal(t, f.m1.ID, r1.MentorID)
	assert.Empty(t, r1.Sessions)
	r2 := f.request(t, f.m2)

	f.runTests(t, []httpTest{
		{
			name: "duplicate", method: http.MethodPost, path: "/v1/mentorships/request", token: f.parentToken,
			body:     []byte(fmt.Sprintf(`{"mentor": %q, "student": %q, "message": "Hi again"}`, f.m1.ID, f.student.ID)),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "duplicate request"}),
		},
		{
			name: "mentor cannot request", method: http.MethodPost, path: "/v1/mentorships/request", token: f.m1Token,
			body:     []byte(fmt.Sprintf(`{"mentor": %q, "student": %q, "message": "Hi"}`, f.m2.ID, f.student.ID)),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errParentOnly),
		},
		{
			name: "on behalf of another parent", method: http.MethodPost, path: "/v1/mentorships/request", token: f.otherParentToken,
			body:     []byte(fmt.Sprintf(`{"mentor": %q, "parent": %q, "student": %q, "message": "Hi"}`, f.m1.ID, f.parent.ID, f.student.ID)),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "parent must be the caller"}),
		},
		{
			name: "student of another parent", method: http.MethodPost, path: "/v1/mentorships/request", token: f.otherParentToken,
			body:     []byte(fmt.Sprintf(`{"mentor": %q, "student": %q, "message": "Hi"}`, f.m1.ID, f.student.ID)),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "student does not belong to parent", Fields: map[string]string{"student": "student does not belong to parent"}}),
		},
		{
			name: "unknown mentor", method: http.MethodPost, path: "/v1/mentorships/request", token: f.parentToken,
			body:     []byte(fmt.Sprintf(`{"mentor": "lol", "student": %q, "message": "Hi"}`, f.student.ID)),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "unknown mentor id"}),
		},
		{
			name: "missing message", method: http.MethodPost, path: "/v1/mentorships/request", token: f.parentToken,
			body: []byte(fmt.Sprintf(`{"mentor": %q, "student": %q}`, f.m1.ID, f.student.ID)), wantCode: http.StatusBadRequest,
		},
		{
			name: "malformed reference", method: http.MethodPost, path: "/v1/mentorships/request", token: f.parentToken,
			body: []byte(fmt.Sprintf(`{"mentor": 42, "student": %q, "message": "Hi"}`, f.student.ID)), wantCode: http.StatusBadRequest,
		},
		{
			name: "parent cannot accept", method: http.MethodPost, path: "/v1/mentorships/accept", token: f.parentToken,
			body: ref(r1.ID), wantCode: http.StatusForbidden, wantData: marshallObj(t, errMentorOnly),
		},
		{
			name: "other mentor cannot accept", method: http.MethodPost, path: "/v1/mentorships/accept", token: f.m2Token,
			body: ref(r1.ID), wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "accept unknown", method: http.MethodPost, path: "/v1/mentorships/accept", token: f.m1Token,
			body: ref("lol"), wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "unknown mentorship id"}),
		},
		{
			name: "session on pending", method: http.MethodPost, path: "/v1/mentorships/session", token: f.m1Token,
			body:     []byte(fmt.Sprintf(`{"mentorship": %q, "session": {"duration": 60, "rating": 0.9}}`, r1.ID)),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "mentorship is not active"}),
		},
	})

	// accept, with the mentorship given as a populated object
	rec := f.do(http.MethodPost, "/v1/mentorships/accept", f.m1Token, []byte(fmt.Sprintf(`{"mentorship": {"_id": %q, "state": "PENDING"}}`, r1.ID)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var accepted mentorship.Mentorship
	unmarshall(t, rec, &accepted)
	assert.Equal(t, mentorship.StateActive, accepted.State)
	assert.NotNil(t, accepted.StartDate)

	rec = f.do(http.MethodGet, "/v1/mentorships/"+r2.ID, f.parentToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var cascaded mentorship.Mentorship
	unmarshall(t, rec, &cascaded)
	assert.Equal(t, mentorship.StateRejected, cascaded.State)

	f.runTests(t, []httpTest{
		{
			name: "accept rejected", method: http.MethodPost, path: "/v1/mentorships/accept", token: f.m2Token,
			body: ref(r2.ID), wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "mentorship is not pending"}),
		},
		{
			name: "request while mentored", method: http.MethodPost, path: "/v1/mentorships/request", token: f.parentToken,
			body:     []byte(fmt.Sprintf(`{"mentor": %q, "student": %q, "message": "Hi"}`, f.m2.ID, f.student.ID)),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "student already has an active mentorship"}),
		},
		{
			name: "invalid session", method: http.MethodPost, path: "/v1/mentorships/session", token: f.parentToken,
			body:     []byte(fmt.Sprintf(`{"mentorship": %q, "session": {"duration": 60, "rating": 2}}`, r1.ID)),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "outsider adds session", method: http.MethodPost, path: "/v1/mentorships/session", token: f.m2Token,
			body:     []byte(fmt.Sprintf(`{"mentorship": %q, "session": {"duration": 60, "rating": 0.5}}`, r1.ID)),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{name: "outsider reads", path: "/v1/mentorships/" + r1.ID, token: f.otherParentToken, wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden)},
		{name: "read unknown", path: "/v1/mentorships/lol", token: f.parentToken, wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "unknown mentorship id"})},
	})

	// sessions, by the parent then the mentor
	for i, token := range []string{f.parentToken, f.m1Token} {
		rec = f.do(http.MethodPost, "/v1/mentorships/session", token, []byte(fmt.Sprintf(`{"mentorship": %q, "session": {"date": "2020-09-0%dT16:00:00Z", "duration": 60, "rating": 0.9}}`, r1.ID, i+2)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var m mentorship.Mentorship
		unmarshall(t, rec, &m)
		require.Len(t, m.Sessions, i+1)
		assert.Equal(t, 60, m.Sessions[i].Duration)
	}

	// archive by the parent
	rec = f.do(http.MethodPost, "/v1/mentorships/archive", f.parentToken, ref(r1.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var archived mentorship.Mentorship
	unmarshall(t, rec, &archived)
	assert.Equal(t, mentorship.StateArchived, archived.State)
	assert.NotNil(t, archived.EndDate)
	assert.Len(t, archived.Sessions, 2)

	f.runTests(t, []httpTest{
		{
			name: "session on archived", method: http.MethodPost, path: "/v1/mentorships/session", token: f.m1Token,
			body:     []byte(fmt.Sprintf(`{"mentorship": %q, "session": {"duration": 60, "rating": 0.9}}`, r1.ID)),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "mentorship is not active"}),
		},
		{
			name: "archive archived", method: http.MethodPost, path: "/v1/mentorships/archive", token: f.m1Token,
			body: ref(r1.ID), wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "mentorship is not active"}),
		},
		{
			name: "request auto-rejecting mentor", method: http.MethodPost, path: "/v1/mentorships/request", token: f.parentToken,
			body:     []byte(fmt.Sprintf(`{"mentor": %q, "student": %q, "message": "Hi"}`, f.m2.ID, f.student.ID)),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "mentor has already rejected this student"}),
		},
	})

	// archived mentor may be requested again
	again := f.request(t, f.m1)
	assert.Equal(t, mentorship.StatePending, again.State)
}

func Test_mentorshipApi_reject(t *testing.T) {
	f := setupMentorships(t)
	r1 := f.request(t, f.m1)

	rec := f.do(http.MethodPost, "/v1/mentorships/reject", f.m1Token, ref(r1.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rejected mentorship.Mentorship
	unmarshall(t, rec, &rejected)
	assert.Equal(t, mentorship.StateRejected, rejected.State)
	assert.Nil(t, rejected.StartDate)

	f.runTests(t, []httpTest{
		{
			name: "reject twice", method: http.MethodPost, path: "/v1/mentorships/reject", token: f.m1Token,
			body: ref(r1.ID), wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "mentorship is not pending"}),
		},
		{
			name: "request again", method: http.MethodPost, path: "/v1/mentorships/request", token: f.parentToken,
			body:     []byte(fmt.Sprintf(`{"mentor": %q, "student": %q, "message": "Please"}`, f.m1.ID, f.student.ID)),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "mentor has already rejected this student"}),
		},
		{
			name: "missing reference", method: http.MethodPost, path: "/v1/mentorships/reject", token: f.m1Token,
			body: []byte(`{}`), wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "unknown mentorship id"}),
		},
	})
}

func Test_mentorshipApi_queries(t *testing.T) {
	f := setupMentorships(t)
	r1 := f.request(t, f.m1)
	r2 := f.request(t, f.m2)

	ids := func(t *testing.T, path, token string) []string {
		rec := f.do(http.MethodGet, path, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var ms []mentorship.Mentorship
		unmarshall(t, rec, &ms)
		out := make([]string, 0, len(ms))
		for _, m := range ms {
			out = append(out, m.ID)
		}
		return out
	}

	assert.Equal(t, []string{r2.ID, r1.ID}, ids(t, "/v1/mentorships", f.parentToken))
	assert.Equal(t, []string{r1.ID}, ids(t, "/v1/mentorships", f.m1Token))
	assert.Equal(t, []string{r2.ID}, ids(t, "/v1/mentorships", f.m2Token))
	assert.Equal(t, []string{}, ids(t, "/v1/mentorships", f.otherParentToken))
	assert.Equal(t, []string{r2.ID, r1.ID}, ids(t, "/v1/students/"+f.student.ID+"/mentorships", f.parentToken))

	f.runTests(t, []httpTest{
		{
			name: "other parent's student", path: "/v1/students/" + f.student.ID + "/mentorships", token: f.otherParentToken,
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "mentor asks by student", path: "/v1/students/" + f.student.ID + "/mentorships", token: f.m1Token,
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errParentOnly),
		},
		{
			name: "unknown student", path: "/v1/students/lol/mentorships", token: f.parentToken,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "unknown student id"}),
		},
		{name: "mentorships need auth", path: "/v1/mentorships", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errUnauthorized)},
	})
}

func Test_mentorshipApi_notifiesMentor(t *testing.T) {
	f := setupMentorships(t)
	m := f.request(t, f.m1)

	sent := f.env.Mail.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, f.m1.Email, sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "/mentorships/"+m.ID)
}
