// Package mongorepos stores the documents in MongoDB, one collection per entity type.
package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/CovEducation/Website-sub000/core/mentorship"
)

// Collections
const (
	mentorsColl     = "mentors"
	parentsColl     = "parents"
	studentsColl    = "students"
	mentorshipsColl = "mentorships"
)

// EnsureIndexes creates the indexes backing lookups and the uniqueness rules.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		mentorsColl: {
			{Keys: bson.D{{Key: "uid", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "subjects", Value: 1}}},
		},
		parentsColl: {
			{Keys: bson.D{{Key: "uid", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		studentsColl: {
			{Keys: bson.D{{Key: "parent", Value: 1}}},
		},
		mentorshipsColl: {
			{Keys: bson.D{{Key: "mentor", Value: 1}}},
			{Keys: bson.D{{Key: "parent", Value: 1}}},
			{Keys: bson.D{{Key: "student", Value: 1}, {Key: "created_at", Value: -1}}},
			{
				Keys: bson.D{{Key: "student", Value: 1}, {Key: "mentor", Value: 1}},
				Options: options.Index().SetName(pendingIndex).SetUnique(true).
					SetPartialFilterExpression(bson.M{"state": mentorship.StatePending}),
			},
			{
				Keys: bson.D{{Key: "student", Value: 1}},
				Options: options.Index().SetName(activeIndex).SetUnique(true).
					SetPartialFilterExpression(bson.M{"state": mentorship.StateActive}),
			},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}
