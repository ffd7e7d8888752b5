package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"certledger/internal/party/models"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

const (
	studentsCollection   = "students"
	institutesCollection = "institutes"
	verifiersCollection  = "verifiers"
)

// MongoStudentStore persists students in MongoDB. The wallet address carries a
// unique index so two students can never share one signing identity.
type MongoStudentStore struct {
	coll *mongo.Collection
}

func NewMongoStudentStore(ctx context.Context, db *mongo.Database) (*MongoStudentStore, error) {
	coll := db.Collection(studentsCollection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "walletAddress", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "creating student wallet index")
	}
	return &MongoStudentStore{coll: coll}, nil
}

func (s *MongoStudentStore) Create(ctx context.Context, student *models.Student) error {
	if _, err := s.coll.InsertOne(ctx, student); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "inserting student")
	}
	return nil
}

func (s *MongoStudentStore) FindByWallet(ctx context.Context, wallet domain.WalletAddress) (*models.Student, error) {
	return decodeStudent(s.coll.FindOne(ctx, bson.M{"walletAddress": wallet}))
}

func (s *MongoStudentStore) FindByCode(ctx context.Context, code string) (*models.Student, error) {
	return decodeStudent(s.coll.FindOne(ctx, bson.M{"_id": code}))
}

func decodeStudent(res *mongo.SingleResult) (*models.Student, error) {
	var student models.Student
	if err := res.Decode(&student); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decoding student")
	}
	return &student, nil
}

// MongoInstituteStore persists institutes in MongoDB.
type MongoInstituteStore struct {
	coll *mongo.Collection
}

func NewMongoInstituteStore(ctx context.Context, db *mongo.Database) (*MongoInstituteStore, error) {
	coll := db.Collection(institutesCollection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "walletAddress", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "creating institute wallet index")
	}
	return &MongoInstituteStore{coll: coll}, nil
}

func (s *MongoInstituteStore) Create(ctx context.Context, institute *models.Institute) error {
	if _, err := s.coll.InsertOne(ctx, institute); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "inserting institute")
	}
	return nil
}

func (s *MongoInstituteStore) FindByWallet(ctx context.Context, wallet domain.WalletAddress) (*models.Institute, error) {
	var institute models.Institute
	if err := s.coll.FindOne(ctx, bson.M{"walletAddress": wallet}).Decode(&institute); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decoding institute")
	}
	return &institute, nil
}

// MongoVerifierStore persists verifiers in MongoDB.
type MongoVerifierStore struct {
	coll *mongo.Collection
}

func NewMongoVerifierStore(ctx context.Context, db *mongo.Database) (*MongoVerifierStore, error) {
	coll := db.Collection(verifiersCollection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "walletAddress", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "creating verifier wallet index")
	}
	return &MongoVerifierStore{coll: coll}, nil
}

func (s *MongoVerifierStore) Create(ctx context.Context, verifier *models.Verifier) error {
	if _, err := s.coll.InsertOne(ctx, verifier); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "inserting verifier")
	}
	return nil
}

func (s *MongoVerifierStore) FindByWallet(ctx context.Context, wallet domain.WalletAddress) (*models.Verifier, error) {
	var verifier models.Verifier
	if err := s.coll.FindOne(ctx, bson.M{"walletAddress": wallet}).Decode(&verifier); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decoding verifier")
	}
	return &verifier, nil
}
