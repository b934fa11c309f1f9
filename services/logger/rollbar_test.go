package logsvc

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CovEducation/Website-sub000/core"
	"github.com/CovEducation/Website-sub000/core/user"
)

func TestSplitArgs(t *testing.T) {
	mentor := user.Account{Role: user.RoleMentor, ID: "m-1", Mentor: &user.Mentor{ID: "m-1", Name: "Mo", Email: "mo@test.cd"}}
	identity := core.Identity{UID: "google-123", Name: "Pat", Email: "pat@test.cd"}
	cause := errors.New("boom")

	tests := []struct {
		name     string
		args     []interface{}
		wantID   string
		wantRest int
	}{
		{name: "nobody", args: []interface{}{cause}, wantRest: 1},
		{name: "account", args: []interface{}{cause, mentor}, wantID: "mentor:m-1", wantRest: 1},
		{name: "identity", args: []interface{}{identity, cause}, wantID: "uid:google-123", wantRest: 1},
		{name: "account wins", args: []interface{}{identity, mentor}, wantID: "mentor:m-1"},
		{name: "empty account ignored", args: []interface{}{user.Account{}}, wantRest: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, rest := splitArgs(tt.args)
			assert.Len(t, rest, tt.wantRest)
			if tt.wantID == "" {
				assert.Nil(t, p)
				return
			}
			require.NotNil(t, p)
			assert.Equal(t, tt.wantID, p.id)
		})
	}
}

func TestRollbarLogger_print(t *testing.T) {
	var buf bytes.Buffer
	l := RollbarLogger{std: log.New(&buf, "", 0)}

	l.print("Internal Server Error", []interface{}{errors.New("db down"), core.Identity{UID: "u1"}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Internal Server Error (uid:u1)", lines[0])
	assert.Equal(t, "db down", lines[1])
}
