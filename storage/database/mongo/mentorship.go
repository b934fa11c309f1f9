package mongorepos

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/CovEducation/Website-sub000/core/mentorship"
)

const (
	pendingIndex = "mentorships_pending_uniq"
	activeIndex  = "mentorships_active_uniq"
)

type mentorshipRepository struct {
	coll *mongo.Collection
}

var _ mentorship.Repository = (*mentorshipRepository)(nil)

func NewMentorshipRepository(db *mongo.Database) *mentorshipRepository {
	return &mentorshipRepository{coll: db.Collection(mentorshipsColl)}
}

// trapDuplicateKey maps a unique index violation to the rule it protects.
func trapDuplicateKey(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	switch {
	case strings.Contains(err.Error(), pendingIndex):
		return mentorship.ErrDuplicateRequest
	case strings.Contains(err.Error(), activeIndex):
		return mentorship.ErrStudentAlreadyMentored
	}
	return err
}

func normalize(m *mentorship.Mentorship) {
	if m.Sessions == nil {
		m.Sessions = []mentorship.Session{}
	}
}

func (repo *mentorshipRepository) Create(ctx context.Context, m mentorship.Mentorship) (mentorship.Mentorship, error) {
	normalize(&m)
	if _, err := repo.coll.InsertOne(ctx, m); err != nil {
		return mentorship.Mentorship{}, errors.Wrap(trapDuplicateKey(err), "inserting mentorship")
	}
	return m, nil
}

func (repo *mentorshipRepository) Get(ctx context.Context, id string) (mentorship.Mentorship, error) {
	var m mentorship.Mentorship
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return mentorship.Mentorship{}, mentorship.ErrNotFound
		}
		return mentorship.Mentorship{}, errors.Wrap(err, "finding mentorship")
	}
	normalize(&m)
	return m, nil
}

func buildFilter(filter mentorship.Filter) bson.M {
	q := bson.M{}
	if filter.StudentID != "" {
		q["student"] = filter.StudentID
	}
	if filter.MentorID != "" {
		q["mentor"] = filter.MentorID
	}
	if filter.ParentID != "" {
		q["parent"] = filter.ParentID
	}
	if filter.Participant != "" {
		q["$or"] = bson.A{
			bson.M{"student": filter.Participant},
			bson.M{"parent": filter.Participant},
			bson.M{"mentor": filter.Participant},
		}
	}
	if len(filter.States) > 0 {
		q["state"] = bson.M{"$in": filter.States}
	}
	return q
}

func (repo *mentorshipRepository) Query(ctx context.Context, filter mentorship.Filter) ([]mentorship.Mentorship, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := repo.coll.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying mentorships")
	}
	ms := make([]mentorship.Mentorship, 0)
	if err = cur.All(ctx, &ms); err != nil {
		return nil, errors.Wrap(err, "decoding mentorships")
	}
	for i := range ms {
		normalize(&ms[i])
	}
	return ms, nil
}

// Update replaces the document only if its stored version is still m.Version.
func (repo *mentorshipRepository) Update(ctx context.Context, m mentorship.Mentorship) (mentorship.Mentorship, error) {
	normalize(&m)
	expected := m.Version
	m.Version++

	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": m.ID, "version": expected}, m)
	if err != nil {
		return mentorship.Mentorship{}, errors.Wrap(trapDuplicateKey(err), "replacing mentorship")
	}
	if res.MatchedCount == 0 {
		n, err := repo.coll.CountDocuments(ctx, bson.M{"_id": m.ID})
		if err != nil {
			return mentorship.Mentorship{}, errors.Wrap(err, "counting mentorships")
		}
		if n == 0 {
			return mentorship.Mentorship{}, mentorship.ErrNotFound
		}
		return mentorship.Mentorship{}, mentorship.ErrConcurrentModification
	}
	return m, nil
}
