package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	mw "github.com/herbvita/shop_backend/internal/middleware/auth"
	"github.com/herbvita/shop_backend/internal/models"
	"github.com/herbvita/shop_backend/internal/util"
)

type BlogPostHandler struct {
	DB *gorm.DB
}

type blogPostRequest struct {
	Title    string `json:"title"    validate:"required,min=3,max=150"`
	Content  string `json:"content"  validate:"required,min=10"`
	Category string `json:"category" validate:"required,oneof=Health Nutrition Recipes"`
}

type blogCommentRequest struct {
	Name    string `json:"name"    validate:"required,min=2,max=50"`
	Comment string `json:"comment" validate:"required,max=500"`
}

func (h *BlogPostHandler) CreatePost(c echo.Context) error {
	userID, err := mw.MustUserID(c)
	if err != nil {
		return err
	}

	var req blogPostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	var author models.User
	if err := h.DB.WithContext(ctx).First(&author, userID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create blog post")
	}

	post := models.BlogPost{
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: userID,
		Author:   author.Name,
		Category: req.Category,
	}
	if err := h.DB.WithContext(ctx).Create(&post).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create blog post")
	}
	return c.JSON(http.StatusCreated, post)
}

func (h *BlogPostHandler) GetPosts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(c.Request().Context()).Model(&models.BlogPost{})
	if category := c.QueryParam("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch blog posts")
	}

	var posts []models.BlogPost
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch blog posts")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"blog_posts": posts,
		"meta":       pageMeta(page, limit, total),
	})
}

// GetPost returns the post with its approved comments.
func (h *BlogPostHandler) GetPost(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var post models.BlogPost
	if err := h.DB.WithContext(c.Request().Context()).
		Preload("Comments", "is_approved = ?", true).
		First(&post, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "blog post not found")
	}
	return c.JSON(http.StatusOK, post)
}

func (h *BlogPostHandler) UpdatePost(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req blogPostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	var post models.BlogPost
	if err := h.DB.WithContext(ctx).First(&post, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "blog post not found")
	}

	post.Title = req.Title
	post.Content = req.Content
	post.Category = req.Category
	if err := h.DB.WithContext(ctx).Save(&post).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update blog post")
	}
	return c.JSON(http.StatusOK, post)
}

func (h *BlogPostHandler) DeletePost(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	res := h.DB.WithContext(ctx).Delete(&models.BlogPost{}, id)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete blog post")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "blog post not found")
	}

	// comments go with the post
	if err := h.DB.WithContext(ctx).
		Where("blog_post_id = ?", id).
		Delete(&models.BlogComment{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete blog post")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "blog post deleted successfully"})
}

// AddComment stores the comment unapproved, like reviews.
func (h *BlogPostHandler) AddComment(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req blogCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	var post models.BlogPost
	if err := h.DB.WithContext(ctx).First(&post, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "blog post not found")
	}

	comment := models.BlogComment{
		BlogPostID: post.ID,
		Name:       req.Name,
		Comment:    req.Comment,
	}
	if err := h.DB.WithContext(ctx).Create(&comment).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to add comment")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "comment added, pending approval"})
}

func (h *BlogPostHandler) ApproveComment(c echo.Context) error {
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return err
	}

	res := h.DB.WithContext(c.Request().Context()).
		Model(&models.BlogComment{}).
		Where("id = ?", commentID).
		Update("is_approved", true)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to approve comment")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "comment not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "comment approved"})
}
