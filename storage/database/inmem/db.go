// Package inmemdb is a process-local store, used in development and tests.
package inmemdb

import (
	"sync"

	"github.com/CovEducation/Website-sub000/core/mentorship"
	"github.com/CovEducation/Website-sub000/core/user"
)

type DB struct {
	mutex       sync.RWMutex
	mentors     map[string]user.Mentor
	parents     map[string]user.Parent
	students    map[string]user.Student
	mentorships map[string]mentorship.Mentorship
}

func NewDB() *DB {
	db := new(DB)
	db.Reset()
	return db
}

// Reset drops every stored document.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.mentors = make(map[string]user.Mentor)
	db.parents = make(map[string]user.Parent)
	db.students = make(map[string]user.Student)
	db.mentorships = make(map[string]mentorship.Mentorship)
}

func copyStrings(ss []string) []string {
	out := make([]string, len(ss))
	copy(out, ss)
	return out
}
