package repository

import (
	"context"
	"errors"
	"fmt"

	"reelsocial/internal/models"
	"reelsocial/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const postsCollection = "posts"

// mongoPostRepository implements PostRepository on a MongoDB collection.
// Likes live inline in the post document and are only touched through
// $addToSet and $pull.
type mongoPostRepository struct {
	db      *mongo.Database
	coll    *mongo.Collection
	metrics *observability.DatabaseMetrics
	log     *observability.RepoLogger
}

// NewMongoPostRepository creates a post repository backed by db.posts.
func NewMongoPostRepository(db *mongo.Database) PostRepository {
	return &mongoPostRepository{
		db:      db,
		coll:    db.Collection(postsCollection),
		metrics: observability.NewDatabaseMetrics("mongo"),
		log:     observability.NewRepoLogger("mongo", postsCollection),
	}
}

// EnsureMongoIndexes creates the indexes used by List.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(postsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "visible", Value: 1}, {Key: "createdTime", Value: 1}}},
		{Keys: bson.D{{Key: "visible", Value: 1}, {Key: "viewCount", Value: -1}}},
		{Keys: bson.D{{Key: "author", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create post indexes: %w", err)
	}
	return nil
}

func (r *mongoPostRepository) start(ctx context.Context, op string) (context.Context, func(error)) {
	ctx, span := observability.StartRepositorySpan(ctx, "mongodb", op, postsCollection)
	stop := r.metrics.TrackQuery(op, postsCollection)
	return ctx, func(err error) {
		stop()
		if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrNoMatch) {
			r.log.LogError(ctx, err, op)
		}
		observability.EndSpan(span, err)
	}
}

func afterUpdate() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func normalize(post *models.Post) *models.Post {
	if post.Like == nil {
		post.Like = []string{}
	}
	return post
}

func (r *mongoPostRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, done := r.start(ctx, "create")
	defer func() { done(err) }()

	normalize(post)
	if _, err := r.coll.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	r.log.LogCreate(ctx, map[string]any{"post_id": post.ID, "post_type": post.PostType})
	return nil
}

func (r *mongoPostRepository) GetByID(ctx context.Context, id string) (_ *models.Post, err error) {
	ctx, done := r.start(ctx, "get")
	defer func() { done(err) }()

	var post models.Post
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, mongoErr("get post", err, ErrNotFound)
	}
	return normalize(&post), nil
}

func (r *mongoPostRepository) UpdateByAuthor(ctx context.Context, id, author string, update models.PostUpdate) (_ *models.Post, err error) {
	ctx, done := r.start(ctx, "update_by_author")
	defer func() { done(err) }()

	filter := bson.M{"_id": id, "author": author}
	set := bson.M{
		"title":       update.Title,
		"content":     update.Content,
		"updatedTime": update.UpdatedTime,
	}
	if update.Hashtag != "" {
		set["hashtag"] = update.Hashtag
	}
	if update.BgImg != "" {
		set["bgImg"] = update.BgImg
	}
	change := bson.M{"$set": set}

	var post models.Post
	if err := r.coll.FindOneAndUpdate(ctx, filter, change, afterUpdate()).Decode(&post); err != nil {
		return nil, mongoErr("update post", err, ErrNoMatch)
	}
	r.log.LogUpdate(ctx, map[string]any{"post_id": id, "field": "content"})
	return normalize(&post), nil
}

func (r *mongoPostRepository) IncrementViews(ctx context.Context, id string) (_ *models.Post, err error) {
	ctx, done := r.start(ctx, "increment_views")
	defer func() { done(err) }()

	var post models.Post
	change := bson.M{"$inc": bson.M{"viewCount": 1}}
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, change, afterUpdate()).Decode(&post); err != nil {
		return nil, mongoErr("increment views", err, ErrNotFound)
	}
	return normalize(&post), nil
}

func (r *mongoPostRepository) SetVisibility(ctx context.Context, id string, author *string, visible bool) (err error) {
	ctx, done := r.start(ctx, "set_visibility")
	defer func() { done(err) }()

	filter := bson.M{"_id": id}
	if author != nil {
		filter["author"] = *author
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"visible": visible}})
	if err != nil {
		return fmt.Errorf("set visibility: %w", err)
	}
	if res.MatchedCount > 0 {
		r.log.LogUpdate(ctx, map[string]any{"post_id": id, "field": "visible", "visible": visible})
		return nil
	}
	if author == nil {
		return ErrNotFound
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return ErrNoMatch
	}
	return ErrNotFound
}

func (r *mongoPostRepository) List(ctx context.Context, opts ListOptions) (_ []*models.Post, err error) {
	if !ValidSort(opts.SortBy) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, opts.SortBy)
	}
	limit, truncate := opts.limitOf()
	// A zero limit means "no limit" to the server, so answer it here.
	if truncate && limit == 0 {
		return []*models.Post{}, nil
	}

	ctx, done := r.start(ctx, "list")
	defer func() { done(err) }()

	filter := bson.M{}
	if !opts.IncludeHidden {
		filter["visible"] = true
	}

	// Documents carry no sequence number; creation time then id stand in for insertion order.
	var sort bson.D
	switch opts.SortBy {
	case SortByViews:
		sort = bson.D{{Key: "viewCount", Value: -1}, {Key: "createdTime", Value: 1}, {Key: "_id", Value: 1}}
	case SortByCreatedTime:
		sort = bson.D{{Key: "createdTime", Value: -1}, {Key: "_id", Value: 1}}
	default:
		sort = bson.D{{Key: "createdTime", Value: 1}, {Key: "_id", Value: 1}}
	}

	findOpts := options.Find().SetSort(sort)
	if truncate {
		findOpts.SetLimit(int64(limit))
	}

	cur, err := r.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	posts := []*models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	for _, p := range posts {
		normalize(p)
	}
	return posts, nil
}

func (r *mongoPostRepository) AddLike(ctx context.Context, id, userID string) (err error) {
	ctx, done := r.start(ctx, "add_like")
	defer func() { done(err) }()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"like": userID}})
	if err != nil {
		return fmt.Errorf("add like: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoPostRepository) RemoveLike(ctx context.Context, id, userID string) (err error) {
	ctx, done := r.start(ctx, "remove_like")
	defer func() { done(err) }()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$pull": bson.M{"like": userID}})
	if err != nil {
		return fmt.Errorf("remove like: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoPostRepository) HasLike(ctx context.Context, id, userID string) (_ bool, err error) {
	ctx, done := r.start(ctx, "has_like")
	defer func() { done(err) }()

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id, "like": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("has like: %w", err)
	}
	return n > 0, nil
}

func (r *mongoPostRepository) Likes(ctx context.Context, id string) (_ []string, err error) {
	ctx, done := r.start(ctx, "likes")
	defer func() { done(err) }()

	var doc struct {
		Like []string `bson:"like"`
	}
	findOpts := options.FindOne().SetProjection(bson.M{"like": 1})
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}, findOpts).Decode(&doc); err != nil {
		return nil, mongoErr("likes", err, ErrNotFound)
	}
	if doc.Like == nil {
		return []string{}, nil
	}
	return doc.Like, nil
}

func (r *mongoPostRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}

func (r *mongoPostRepository) exists(ctx context.Context, id string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count posts: %w", err)
	}
	return n > 0, nil
}

// mongoErr maps ErrNoDocuments onto missing and wraps everything else.
func mongoErr(op string, err, missing error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return missing
	}
	return fmt.Errorf("%s: %w", op, err)
}
