package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/edutrack/core/user"
	"github.com/trezcool/edutrack/storage/database"
)

type (
	userDoc struct {
		ID          primitive.ObjectID `bson:"_id,omitempty"`
		GoogleID    string             `bson:"google_id"`
		Name        string             `bson:"name"`
		Email       string             `bson:"email"`
		AccessToken string             `bson:"access_token"`
		Events      []eventDoc         `bson:"events"`
		CreatedAt   time.Time          `bson:"created_at"`
		UpdatedAt   time.Time          `bson:"updated_at"`
	}

	eventDoc struct {
		ID          string    `bson:"id"`
		Title       string    `bson:"title"`
		Description string    `bson:"description"`
		Date        time.Time `bson:"date"`
		AllDay      bool      `bson:"all_day"`
		CreatedAt   time.Time `bson:"created_at"`
		UpdatedAt   time.Time `bson:"updated_at"`
	}
)

func (d userDoc) toUser() user.User {
	events := make([]user.Event, 0, len(d.Events))
	for _, e := range d.Events {
		events = append(events, e.toEvent())
	}
	return user.User{
		GoogleID:    d.GoogleID,
		Name:        d.Name,
		Email:       d.Email,
		AccessToken: d.AccessToken,
		Events:      events,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (e eventDoc) toEvent() user.Event {
	return user.Event{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        user.CanonicalDate(e.Date),
		AllDay:      e.AllDay,
		CreatedAt:   e.CreatedAt.UTC(),
		UpdatedAt:   e.UpdatedAt.UTC(),
	}
}

func newEventDoc(evt user.Event) eventDoc {
	return eventDoc{
		ID:          evt.ID,
		Title:       evt.Title,
		Description: evt.Description,
		Date:        user.CanonicalDate(evt.Date),
		AllDay:      evt.AllDay,
		CreatedAt:   evt.CreatedAt,
		UpdatedAt:   evt.UpdatedAt,
	}
}

type userRepository struct {
	coll *mongo.Collection
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *mongo.Database) user.Repository {
	return &userRepository{coll: db.Collection(database.UsersCollection)}
}

func (repo *userRepository) GetUserByGoogleID(ctx context.Context, googleID string) (user.User, error) {
	var doc userDoc
	if err := repo.coll.FindOne(ctx, bson.M{"google_id": googleID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user by google id")
	}
	return doc.toUser(), nil
}

func (repo *userRepository) UpsertUser(ctx context.Context, usr user.User) (user.User, error) {
	update := bson.M{
		"$set": bson.M{
			"name":         usr.Name,
			"email":        usr.Email,
			"access_token": usr.AccessToken,
			"updated_at":   usr.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"events":     bson.A{},
			"created_at": usr.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc userDoc
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"google_id": usr.GoogleID}, update, opts).Decode(&doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "upserting user")
	}
	return doc.toUser(), nil
}

func (repo *userRepository) QueryUsers(ctx context.Context) ([]user.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := repo.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	var docs []userDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding users")
	}
	users := make([]user.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toUser())
	}
	return users, nil
}

func (repo *userRepository) AddEvent(ctx context.Context, googleID string, evt user.Event) error {
	res, err := repo.coll.UpdateOne(ctx,
		bson.M{"google_id": googleID},
		bson.M{
			"$push": bson.M{"events": newEventDoc(evt)},
			"$set":  bson.M{"updated_at": evt.UpdatedAt},
		},
	)
	if err != nil {
		return errors.Wrap(err, "pushing event")
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) DeleteEvents(ctx context.Context, googleID, title string, date, updatedAt time.Time) ([]user.Event, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$pull": bson.M{"events": bson.M{"title": title, "date": user.CanonicalDate(date)}},
		"$set":  bson.M{"updated_at": updatedAt},
	}

	var doc userDoc
	if err := repo.coll.FindOneAndUpdate(ctx, bson.M{"google_id": googleID}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, user.ErrNotFound
		}
		return nil, errors.Wrap(err, "pulling events")
	}
	return doc.toUser().Events, nil
}
