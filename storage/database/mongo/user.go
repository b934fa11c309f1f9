package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/CovEducation/Website-sub000/core/user"
)

type mentorRepository struct {
	coll *mongo.Collection
}

var _ user.MentorRepository = (*mentorRepository)(nil)

func NewMentorRepository(db *mongo.Database) *mentorRepository {
	return &mentorRepository{coll: db.Collection(mentorsColl)}
}

func (repo *mentorRepository) CreateMentor(ctx context.Context, mentor user.Mentor) (user.Mentor, error) {
	if _, err := repo.coll.InsertOne(ctx, mentor); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.Mentor{}, user.ErrUIDExists
		}
		return user.Mentor{}, errors.Wrap(err, "inserting mentor")
	}
	return mentor, nil
}

func (repo *mentorRepository) findOne(ctx context.Context, filter bson.M) (user.Mentor, error) {
	var mentor user.Mentor
	if err := repo.coll.FindOne(ctx, filter).Decode(&mentor); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.Mentor{}, user.ErrMentorNotFound
		}
		return user.Mentor{}, errors.Wrap(err, "finding mentor")
	}
	return mentor, nil
}

func (repo *mentorRepository) GetMentor(ctx context.Context, id string) (user.Mentor, error) {
	return repo.findOne(ctx, bson.M{"_id": id})
}

func (repo *mentorRepository) GetMentorByUID(ctx context.Context, uid string) (user.Mentor, error) {
	return repo.findOne(ctx, bson.M{"uid": uid})
}

func (repo *mentorRepository) QueryMentors(ctx context.Context, filter user.MentorFilter) ([]user.Mentor, error) {
	q := bson.M{}
	if filter.Subject != "" {
		q["subjects"] = filter.Subject
	}
	if filter.GradeLevel != 0 {
		q["grade_levels"] = filter.GradeLevel
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := repo.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying mentors")
	}
	mentors := make([]user.Mentor, 0)
	if err = cur.All(ctx, &mentors); err != nil {
		return nil, errors.Wrap(err, "decoding mentors")
	}
	return mentors, nil
}

type parentRepository struct {
	coll *mongo.Collection
}

var _ user.ParentRepository = (*parentRepository)(nil)

func NewParentRepository(db *mongo.Database) *parentRepository {
	return &parentRepository{coll: db.Collection(parentsColl)}
}

func (repo *parentRepository) CreateParent(ctx context.Context, parent user.Parent) (user.Parent, error) {
	if parent.StudentIDs == nil {
		parent.StudentIDs = []string{}
	}
	if _, err := repo.coll.InsertOne(ctx, parent); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.Parent{}, user.ErrUIDExists
		}
		return user.Parent{}, errors.Wrap(err, "inserting parent")
	}
	return parent, nil
}

func (repo *parentRepository) findOne(ctx context.Context, filter bson.M) (user.Parent, error) {
	var parent user.Parent
	if err := repo.coll.FindOne(ctx, filter).Decode(&parent); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.Parent{}, user.ErrParentNotFound
		}
		return user.Parent{}, errors.Wrap(err, "finding parent")
	}
	if parent.StudentIDs == nil {
		parent.StudentIDs = []string{}
	}
	return parent, nil
}

func (repo *parentRepository) GetParent(ctx context.Context, id string) (user.Parent, error) {
	return repo.findOne(ctx, bson.M{"_id": id})
}

func (repo *parentRepository) GetParentByUID(ctx context.Context, uid string) (user.Parent, error) {
	return repo.findOne(ctx, bson.M{"uid": uid})
}

func (repo *parentRepository) AddStudent(ctx context.Context, parentID, studentID string) error {
	res, err := repo.coll.UpdateOne(ctx,
		bson.M{"_id": parentID},
		bson.M{
			"$push": bson.M{"students": studentID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return errors.Wrap(err, "adding student")
	}
	if res.MatchedCount == 0 {
		return user.ErrParentNotFound
	}
	return nil
}

type studentRepository struct {
	coll *mongo.Collection
}

var _ user.StudentRepository = (*studentRepository)(nil)

func NewStudentRepository(db *mongo.Database) *studentRepository {
	return &studentRepository{coll: db.Collection(studentsColl)}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, student user.Student) (user.Student, error) {
	if _, err := repo.coll.InsertOne(ctx, student); err != nil {
		return user.Student{}, errors.Wrap(err, "inserting student")
	}
	return student, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string) (user.Student, error) {
	var student user.Student
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&student); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.Student{}, user.ErrStudentNotFound
		}
		return user.Student{}, errors.Wrap(err, "finding student")
	}
	return student, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, parentID string) ([]user.Student, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := repo.coll.Find(ctx, bson.M{"parent": parentID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]user.Student, 0)
	if err = cur.All(ctx, &students); err != nil {
		return nil, errors.Wrap(err, "decoding students")
	}
	return students, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if res.DeletedCount == 0 {
		return user.ErrStudentNotFound
	}
	return nil
}
