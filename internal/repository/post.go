package repository

import (
	"context"
	"errors"
	"fmt"

	"reelsocial/internal/models"
	"reelsocial/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	postsTable = "posts"
	// pgForeignKeyViolation is raised when a like references a missing post.
	pgForeignKeyViolation = "23503"
)

// postRepository implements PostRepository on gorm.
type postRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
	log     *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{
		db:      db,
		metrics: observability.NewDatabaseMetrics("postgres"),
		log:     observability.NewRepoLogger("postgres", postsTable),
	}
}

func (r *postRepository) start(ctx context.Context, op string) (context.Context, func(error)) {
	ctx, span := observability.StartRepositorySpan(ctx, "postgresql", op, postsTable)
	stop := r.metrics.TrackQuery(op, postsTable)
	return ctx, func(err error) {
		stop()
		if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrNoMatch) {
			r.log.LogError(ctx, err, op)
		}
		observability.EndSpan(span, err)
	}
}

// classify maps driver errors onto the package sentinels and wraps the rest.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNoMatch):
		return ErrNoMatch
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, done := r.start(ctx, "create")
	defer func() { done(err) }()

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return classify("create post", err)
	}
	if post.Like == nil {
		post.Like = []string{}
	}
	r.log.LogCreate(ctx, map[string]any{"post_id": post.ID, "post_type": post.PostType})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (_ *models.Post, err error) {
	ctx, done := r.start(ctx, "get")
	defer func() { done(err) }()

	post, err := loadPost(r.db.WithContext(ctx), id)
	return post, classify("get post", err)
}

func (r *postRepository) UpdateByAuthor(ctx context.Context, id, author string, update models.PostUpdate) (_ *models.Post, err error) {
	ctx, done := r.start(ctx, "update_by_author")
	defer func() { done(err) }()

	fields := map[string]any{
		"title":        update.Title,
		"content":      update.Content,
		"updated_time": update.UpdatedTime,
	}
	// Omitted decorations keep their stored value.
	if update.Hashtag != "" {
		fields["hashtag"] = update.Hashtag
	}
	if update.BgImg != "" {
		fields["bg_img"] = update.BgImg
	}

	var post *models.Post
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ? AND author = ?", id, author).
			Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoMatch
		}
		var loadErr error
		post, loadErr = loadPost(tx, id)
		return loadErr
	})
	if err != nil {
		return nil, classify("update post", err)
	}
	r.log.LogUpdate(ctx, map[string]any{"post_id": id, "field": "content"})
	return post, nil
}

func (r *postRepository) IncrementViews(ctx context.Context, id string) (_ *models.Post, err error) {
	ctx, done := r.start(ctx, "increment_views")
	defer func() { done(err) }()

	var post *models.Post
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ?", id).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		var loadErr error
		post, loadErr = loadPost(tx, id)
		return loadErr
	})
	if err != nil {
		return nil, classify("increment views", err)
	}
	return post, nil
}

func (r *postRepository) SetVisibility(ctx context.Context, id string, author *string, visible bool) (err error) {
	ctx, done := r.start(ctx, "set_visibility")
	defer func() { done(err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Post{}).Where("id = ?", id)
		if author != nil {
			q = q.Where("author = ?", *author)
		}
		res := q.UpdateColumn("visible", visible)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		if author == nil {
			return ErrNotFound
		}
		exists, err := postExists(tx, id)
		if err != nil {
			return err
		}
		if exists {
			return ErrNoMatch
		}
		return ErrNotFound
	})
	if err != nil {
		return classify("set visibility", err)
	}
	r.log.LogUpdate(ctx, map[string]any{"post_id": id, "field": "visible", "visible": visible})
	return nil
}

func (r *postRepository) List(ctx context.Context, opts ListOptions) (_ []*models.Post, err error) {
	if !ValidSort(opts.SortBy) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, opts.SortBy)
	}
	limit, truncate := opts.limitOf()
	if truncate && limit == 0 {
		return []*models.Post{}, nil
	}

	ctx, done := r.start(ctx, "list")
	defer func() { done(err) }()

	q := r.db.WithContext(ctx).Model(&models.Post{})
	if !opts.IncludeHidden {
		q = q.Where("visible = ?", true)
	}
	switch opts.SortBy {
	case SortByViews:
		q = q.Order("view_count DESC")
	case SortByCreatedTime:
		q = q.Order("created_time DESC")
	}
	// Ties (and the unsorted listing) follow insertion order.
	q = q.Order("seq ASC")
	if truncate {
		q = q.Limit(limit)
	}

	posts := []*models.Post{}
	if err := q.Find(&posts).Error; err != nil {
		return nil, classify("list posts", err)
	}
	if err := hydrateLikes(r.db.WithContext(ctx), posts); err != nil {
		return nil, classify("list likes", err)
	}
	return posts, nil
}

func (r *postRepository) AddLike(ctx context.Context, id, userID string) (err error) {
	ctx, done := r.start(ctx, "add_like")
	defer func() { done(err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := postExists(tx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		// The unique (post_id, user_id) index turns a repeated like into a no-op.
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.PostLike{PostID: id, UserID: userID}).Error
	})
	return classify("add like", err)
}

func (r *postRepository) RemoveLike(ctx context.Context, id, userID string) (err error) {
	ctx, done := r.start(ctx, "remove_like")
	defer func() { done(err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := postExists(tx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return tx.Where("post_id = ? AND user_id = ?", id, userID).Delete(&models.PostLike{}).Error
	})
	return classify("remove like", err)
}

func (r *postRepository) HasLike(ctx context.Context, id, userID string) (_ bool, err error) {
	ctx, done := r.start(ctx, "has_like")
	defer func() { done(err) }()

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PostLike{}).
		Where("post_id = ? AND user_id = ?", id, userID).
		Count(&count).Error; err != nil {
		return false, classify("has like", err)
	}
	return count > 0, nil
}

func (r *postRepository) Likes(ctx context.Context, id string) (_ []string, err error) {
	ctx, done := r.start(ctx, "likes")
	defer func() { done(err) }()

	var likes []string
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := postExists(tx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		likes, err = likesOf(tx, id)
		return err
	})
	if err != nil {
		return nil, classify("likes", err)
	}
	return likes, nil
}

func (r *postRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func postExists(tx *gorm.DB, id string) (bool, error) {
	var count int64
	if err := tx.Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func loadPost(tx *gorm.DB, id string) (*models.Post, error) {
	var post models.Post
	if err := tx.Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	if err := hydrateLikes(tx, []*models.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

func likesOf(tx *gorm.DB, id string) ([]string, error) {
	likes := []string{}
	err := tx.Model(&models.PostLike{}).
		Where("post_id = ?", id).
		Order("id ASC").
		Pluck("user_id", &likes).Error
	return likes, err
}

// hydrateLikes fills Post.Like for every post with one query.
func hydrateLikes(tx *gorm.DB, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	byID := make(map[string]*models.Post, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		p.Like = []string{}
		byID[p.ID] = p
	}

	var rows []models.PostLike
	if err := tx.Where("post_id IN ?", ids).Order("id ASC").Find(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		if p := byID[row.PostID]; p != nil {
			p.Like = append(p.Like, row.UserID)
		}
	}
	return nil
}
