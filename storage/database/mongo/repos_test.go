package mongorepos_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/CovEducation/Website-sub000/storage/database"
	mongorepos "github.com/CovEducation/Website-sub000/storage/database/mongo"
	"github.com/CovEducation/Website-sub000/tests"
)

// newRepos gives every test its own database on the server at MONGO_TEST_URI.
func newRepos(t *testing.T) testutil.Repositories {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := fmt.Sprintf("coveducation_test_%d", time.Now().UnixNano())
	client, db, err := database.OpenMongoURI(ctx, uri, name)
	if err != nil {
		t.Fatalf("OpenMongoURI() failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	if err = mongorepos.EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("EnsureIndexes() failed: %v", err)
	}

	return testutil.Repositories{
		Mentors:     mongorepos.NewMentorRepository(db),
		Parents:     mongorepos.NewParentRepository(db),
		Students:    mongorepos.NewStudentRepository(db),
		Mentorships: mongorepos.NewMentorshipRepository(db),
	}
}

func TestMentorshipRepository(t *testing.T) {
	testutil.TestMentorshipRepository(t, newRepos)
}

func TestUserRepositories(t *testing.T) {
	testutil.TestUserRepositories(t, newRepos)
}
