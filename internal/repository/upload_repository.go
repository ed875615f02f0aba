package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"compilex/dto"
	"compilex/model"
)

type UploadRepository struct {
	Col *mongo.Collection
}

func NewUploadRepository(db *mongo.Database) *UploadRepository {
	return &UploadRepository{Col: db.Collection("uploads")}
}

func (r *UploadRepository) Insert(ctx context.Context, u *model.Upload) error {
	res, err := r.Col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	u.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

func (r *UploadRepository) FindByID(ctx context.Context, id bson.ObjectID) (*model.Upload, error) {
	var u model.Upload
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UploadRepository) Replace(ctx context.Context, u *model.Upload) error {
	res, err := r.Col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UploadRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UploadRepository) Find(ctx context.Context, f UploadFilter) ([]model.Upload, error) {
	filter := bson.M{}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.UploadedBy != bson.NilObjectID {
		filter["uploaded_by"] = f.UploadedBy
	}

	cursor, err := r.Col.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	uploads := []model.Upload{}
	if err := cursor.All(ctx, &uploads); err != nil {
		return nil, err
	}
	return uploads, nil
}

func (r *UploadRepository) FindPYP(ctx context.Context, subject, branch string, semester, year int) (*model.Upload, error) {
	var u model.Upload
	err := r.Col.FindOne(ctx, bson.M{
		"type":     model.TypePYP,
		"subject":  subject,
		"branch":   branch,
		"semester": semester,
		"year":     year,
	}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UploadRepository) FindByFileHash(ctx context.Context, hash string) (*model.Upload, error) {
	var u model.Upload
	err := r.Col.FindOne(ctx, bson.M{"type": model.TypeNotes, "file_hash": hash}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UploadRepository) DistinctSubjects(ctx context.Context, branch string, semester int) ([]string, error) {
	res := r.Col.Distinct(ctx, "subject", bson.M{"branch": branch, "semester": semester})
	if err := res.Err(); err != nil {
		return nil, err
	}
	var subjects []string
	if err := res.Decode(&subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

// SubjectGroups groups every notes/pyp file under its subject for one
// branch/semester pair, one entry per attached file.
func (r *UploadRepository) SubjectGroups(ctx context.Context, branch string, semester int) ([]dto.SubjectGroup, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"branch":   branch,
			"semester": semester,
			"type":     bson.M{"$in": bson.A{model.TypeNotes, model.TypePYP}},
		}}},
		{{Key: "$unwind", Value: "$files"}},
		{{Key: "$group", Value: bson.M{
			"_id": "$subject",
			"items": bson.M{"$push": bson.M{
				"upload_id":     "$_id",
				"type":          "$type",
				"year":          "$year",
				"original_name": "$files.original_name",
				"url":           "$files.url",
			}},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":     0,
			"subject": "$_id",
			"notes": bson.M{"$filter": bson.M{
				"input": "$items",
				"as":    "i",
				"cond":  bson.M{"$eq": bson.A{"$$i.type", model.TypeNotes}},
			}},
			"pyp": bson.M{"$filter": bson.M{
				"input": "$items",
				"as":    "i",
				"cond":  bson.M{"$eq": bson.A{"$$i.type", model.TypePYP}},
			}},
		}}},
	}

	cursor, err := r.Col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	groups := []dto.SubjectGroup{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}
