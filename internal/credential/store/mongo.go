package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"certledger/internal/credential/models"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

const (
	issuedCollection    = "issued_credentials"
	submittedCollection = "submitted_credentials"
)

// MongoIssuedStore persists issued credentials in MongoDB. The credential
// hash is the document _id, so the collection's primary key enforces the
// uniqueness invariant; a content hash index serves cross-party matching.
type MongoIssuedStore struct {
	coll *mongo.Collection
}

func NewMongoIssuedStore(ctx context.Context, db *mongo.Database) (*MongoIssuedStore, error) {
	coll := db.Collection(issuedCollection)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "contentHash", Value: 1}}},
		{Keys: bson.D{{Key: "studentWallet", Value: 1}}},
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "creating issued credential indexes")
	}
	return &MongoIssuedStore{coll: coll}, nil
}

func (s *MongoIssuedStore) Insert(ctx context.Context, cred *models.IssuedCredential) error {
	if _, err := s.coll.InsertOne(ctx, cred); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateHash
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "inserting issued credential")
	}
	return nil
}

func (s *MongoIssuedStore) FindByCredentialHash(ctx context.Context, hash domain.CredentialHash) (*models.IssuedCredential, error) {
	return decodeIssued(s.coll.FindOne(ctx, bson.M{"_id": hash}))
}

func (s *MongoIssuedStore) FindByContentHash(ctx context.Context, hash domain.ContentHash) (*models.IssuedCredential, error) {
	return decodeIssued(s.coll.FindOne(ctx, bson.M{"contentHash": hash}))
}

func (s *MongoIssuedStore) FindByStudent(ctx context.Context, wallet domain.WalletAddress) ([]*models.IssuedCredential, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"studentWallet": wallet},
		options.Find().SetSort(bson.D{{Key: "issueDate", Value: 1}}))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "listing issued credentials")
	}
	var out []*models.IssuedCredential
	if err := cursor.All(ctx, &out); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decoding issued credentials")
	}
	return out, nil
}

func (s *MongoIssuedStore) MarkRevoked(ctx context.Context, hash domain.CredentialHash) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": hash},
		bson.M{"$set": bson.M{"status": models.StatusRevoked}},
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "marking credential revoked")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeIssued(res *mongo.SingleResult) (*models.IssuedCredential, error) {
	var cred models.IssuedCredential
	if err := res.Decode(&cred); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decoding issued credential")
	}
	return &cred, nil
}

// MongoSubmittedStore persists submissions in MongoDB.
type MongoSubmittedStore struct {
	coll *mongo.Collection
}

func NewMongoSubmittedStore(ctx context.Context, db *mongo.Database) (*MongoSubmittedStore, error) {
	coll := db.Collection(submittedCollection)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "verifierWallet", Value: 1}}},
		{Keys: bson.D{{Key: "studentWallet", Value: 1}}},
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "creating submission indexes")
	}
	return &MongoSubmittedStore{coll: coll}, nil
}

func (s *MongoSubmittedStore) Insert(ctx context.Context, sub *models.SubmittedCredential) error {
	if _, err := s.coll.InsertOne(ctx, sub); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateHash
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "inserting submission")
	}
	return nil
}

func (s *MongoSubmittedStore) FindByID(ctx context.Context, id domain.SubmissionID) (*models.SubmittedCredential, error) {
	var sub models.SubmittedCredential
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&sub); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decoding submission")
	}
	return &sub, nil
}

func (s *MongoSubmittedStore) FindByVerifier(ctx context.Context, wallet domain.WalletAddress) ([]*models.SubmittedCredential, error) {
	return s.findAll(ctx, bson.M{"verifierWallet": wallet})
}

func (s *MongoSubmittedStore) FindByStudent(ctx context.Context, wallet domain.WalletAddress) ([]*models.SubmittedCredential, error) {
	return s.findAll(ctx, bson.M{"studentWallet": wallet})
}

func (s *MongoSubmittedStore) findAll(ctx context.Context, filter bson.M) ([]*models.SubmittedCredential, error) {
	cursor, err := s.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "submissionDate", Value: 1}}))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "listing submissions")
	}
	var out []*models.SubmittedCredential
	if err := cursor.All(ctx, &out); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decoding submissions")
	}
	return out, nil
}
