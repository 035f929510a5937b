package server

import (
	"reelsocial/internal/middleware"
	"reelsocial/internal/models"
	"reelsocial/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postBody struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Hashtag string `json:"hashtag,omitempty"`
	BgImg   string `json:"bgImg,omitempty"`
}

type likeBody struct {
	UserID string `json:"userId"`
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Description Create a standard post authored by the caller
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,content=string,hashtag=string,bgImg=string} true "Post"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, _ := middleware.UserID(c)

	var req postBody
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreateStandardPost(ctx, service.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Author:  userID,
		Hashtag: req.Hashtag,
		BgImg:   req.BgImg,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreateMoviePost handles POST /api/posts/movie
// @Summary Create movie post
// @Description Create a stub post anchored to a catalog movie
// @Tags posts
// @Accept json
// @Produce json
// @Param request body object{resourceId=string} true "Movie reference"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/movie [post]
func (s *Server) CreateMoviePost(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		ResourceID string `json:"resourceId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.CreateMoviePostInput{ResourceID: req.ResourceID}
	if userID, ok := middleware.UserID(c); ok {
		in.Author = &userID
	}

	post, err := s.postService.CreateMoviePost(ctx, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// ListPosts handles GET /api/posts
// @Summary List posts
// @Description Visible posts in insertion order, or sorted by views or createdTime (descending)
// @Tags posts
// @Produce json
// @Param sortBy query string false "views or createdTime"
// @Param displayNumber query int false "Maximum number of posts"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	limit, err := parseDisplayNumber(c, s.config.ListMaxDisplay)
	if err != nil {
		return nil
	}

	posts, err := s.postService.ListPosts(ctx, service.ListPostsInput{
		SortBy: c.Query("sortBy"),
		Limit:  limit,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// RecordView handles GET /api/posts/:postId
// @Summary Get post
// @Description Fetch a post and count one view
// @Tags posts
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId} [get]
func (s *Server) RecordView(c *fiber.Ctx) error {
	ctx := c.UserContext()
	postID, err := requireParam(c, "postId")
	if err != nil {
		return nil
	}

	post, err := s.postService.RecordView(ctx, postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:postId
// @Summary Update post
// @Description Rewrite title, content, hashtag and background image. Only the author may update.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postId path string true "Post ID"
// @Param request body object{title=string,content=string,hashtag=string,bgImg=string} true "Post"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts/{postId} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, _ := middleware.UserID(c)
	postID, err := requireParam(c, "postId")
	if err != nil {
		return nil
	}

	var req postBody
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(ctx, service.UpdatePostInput{
		PostID:  postID,
		Author:  userID,
		Title:   req.Title,
		Content: req.Content,
		Hashtag: req.Hashtag,
		BgImg:   req.BgImg,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:postId
// @Summary Delete post
// @Description Hide a post from listings. The record is kept.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param postId path string true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, _ := middleware.UserID(c)
	postID, err := requireParam(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.postService.SoftDelete(ctx, service.DeletePostInput{PostID: postID, UserID: userID}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Successfully deleted"})
}

// likeTarget returns the user named in the body, defaulting to the caller.
func likeTarget(c *fiber.Ctx) (string, error) {
	var req likeBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return "", badRequest(c, "Invalid request body")
		}
	}
	if req.UserID == "" {
		req.UserID, _ = middleware.UserID(c)
	}
	return req.UserID, nil
}

// LikePost handles POST /api/posts/:postId/like
// @Summary Like post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postId path string true "Post ID"
// @Param request body object{userId=string} false "Liking user, defaults to the caller"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	postID, err := requireParam(c, "postId")
	if err != nil {
		return nil
	}
	userID, err := likeTarget(c)
	if err != nil {
		return nil
	}

	if err := s.postService.LikePost(ctx, postID, userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Liked"})
}

// UnlikePost handles POST /api/posts/:postId/unlike
// @Summary Unlike post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postId path string true "Post ID"
// @Param request body object{userId=string} false "Unliking user, defaults to the caller"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/unlike [post]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	postID, err := requireParam(c, "postId")
	if err != nil {
		return nil
	}
	userID, err := likeTarget(c)
	if err != nil {
		return nil
	}

	if err := s.postService.UnlikePost(ctx, postID, userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Unliked"})
}

// CheckLike handles GET /api/posts/:postId/like/:userId
// @Summary Check like
// @Tags posts
// @Produce json
// @Param postId path string true "Post ID"
// @Param userId path string true "User ID"
// @Success 200 {object} object{liked=bool}
// @Router /posts/{postId}/like/{userId} [get]
func (s *Server) CheckLike(c *fiber.Ctx) error {
	ctx := c.UserContext()
	postID, err := requireParam(c, "postId")
	if err != nil {
		return nil
	}
	userID, err := requireParam(c, "userId")
	if err != nil {
		return nil
	}

	liked, err := s.postService.CheckLike(ctx, postID, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// GetLikes handles GET /api/posts/:postId/likes
// @Summary List likes
// @Tags posts
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {array} string
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/likes [get]
func (s *Server) GetLikes(c *fiber.Ctx) error {
	ctx := c.UserContext()
	postID, err := requireParam(c, "postId")
	if err != nil {
		return nil
	}

	likes, err := s.postService.GetLikes(ctx, postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(likes)
}
