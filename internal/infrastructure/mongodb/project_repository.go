package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/projecthub/internal/domain/entity"
	"github.com/oksasatya/projecthub/internal/domain/repository"
)

const projectsCollection = "projects"

type projectDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	Status      string             `bson:"status"`
	Owner       primitive.ObjectID `bson:"owner"`
	StartDate   *time.Time         `bson:"start_date,omitempty"`
	EndDate     *time.Time         `bson:"end_date,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

// expandedDoc is the aggregation result shape after joining the owner.
type expandedDoc struct {
	projectDoc `bson:",inline"`
	OwnerDoc   *userDoc `bson:"owner_doc,omitempty"`
}

func (d expandedDoc) toView() entity.ProjectWithOwner {
	v := entity.ProjectWithOwner{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Status:      d.Status,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.OwnerDoc != nil {
		v.Owner = entity.OwnerRef{
			ID:    d.OwnerDoc.ID.Hex(),
			Email: d.OwnerDoc.Email,
			Role:  d.OwnerDoc.Role,
		}
	} else {
		// Owner account deleted after the project was created.
		v.Owner = entity.OwnerRef{ID: d.Owner.Hex()}
	}
	return v
}

// ownerLookup joins the owning user into each project document, the
// $lookup equivalent of populate('owner', 'email role').
func ownerLookup() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from":         usersCollection,
			"localField":   "owner",
			"foreignField": "_id",
			"as":           "owner_doc",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$owner_doc",
			"preserveNullAndEmptyArrays": true,
		}}},
	}
}

// ProjectRepository stores project documents in the projects collection.
type ProjectRepository struct {
	c *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{c: db.Collection(projectsCollection)}
}

func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	owner, err := primitive.ObjectIDFromHex(p.OwnerID)
	if err != nil {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	doc := projectDoc{
		ID:          primitive.NewObjectID(),
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		Owner:       owner,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		return err
	}
	p.ID = doc.ID.Hex()
	p.CreatedAt = doc.CreatedAt
	p.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*entity.ProjectWithOwner, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	pipeline := append([]bson.D{
		{{Key: "$match", Value: bson.M{"_id": oid}}},
	}, ownerLookup()...)

	cur, err := r.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []expandedDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, repository.ErrNotFound
	}
	v := docs[0].toView()
	return &v, nil
}

func (r *ProjectRepository) List(ctx context.Context, ownerID string) ([]entity.ProjectWithOwner, error) {
	match := bson.M{}
	if ownerID != "" {
		oid, err := primitive.ObjectIDFromHex(ownerID)
		if err != nil {
			return []entity.ProjectWithOwner{}, nil
		}
		match["owner"] = oid
	}
	pipeline := append([]bson.D{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
	}, ownerLookup()...)

	cur, err := r.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []expandedDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.ProjectWithOwner, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toView())
	}
	return out, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id string, patch repository.ProjectPatch) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.StartDate != nil {
		set["start_date"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		set["end_date"] = *patch.EndDate
	}
	res, err := r.c.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)
