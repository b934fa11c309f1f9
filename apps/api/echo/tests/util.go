package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	echoapi "github.com/CovEducation/Website-sub000/apps/api/echo"
	"github.com/CovEducation/Website-sub000/core"
	identitysvc "github.com/CovEducation/Website-sub000/services/identity"
	"github.com/CovEducation/Website-sub000/tests"
)

var (
	errUnauthorized    = httpErr{Error: "user not authenticated"}
	errAccountNotFound = httpErr{Error: "account not registered"}
	errForbidden       = httpErr{Error: "permission denied"}
	errMentorOnly      = httpErr{Error: "only mentors may do this"}
	errParentOnly      = httpErr{Error: "only parents may do this"}
)

type app struct {
	*echoapi.Server
	env    *testutil.Env
	tokens *identitysvc.JWTService
}

func setup(t *testing.T) *app {
	env := testutil.NewEnv()
	tokens := identitysvc.NewJWTService(env.Conf)

	server := echoapi.NewServer(echoapi.Deps{
		Conf:           env.Conf,
		Logger:         env.Logger,
		Identity:       tokens,
		UserSvc:        env.UserSvc,
		MentorshipSvc:  env.MentorshipSvc,
		Validate:       env.Validate,
		Translator:     env.Translator,
		DisableReqLogs: true,
	})
	return &app{Server: server, env: env, tokens: tokens}
}

func (a *app) token(t *testing.T, uid string) string {
	token, err := a.tokens.GenerateToken(core.Identity{UID: uid, Email: uid + "@test.cd", Name: uid})
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}

// do serves the request and returns the recorded response.
func (a *app) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	a.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error  string            `json:"err"`
	Fields map[string]string `json:"fields,omitempty"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("unmarshall(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCode(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	checkCode(t, tt, rec)
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func (a *app) runTests(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := a.do(method, tt.path, tt.token, tt.body)
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			} else {
				checkCode(t, tt, rec)
			}
		})
	}
}
