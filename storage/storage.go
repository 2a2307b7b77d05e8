package storage

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"yatube/storage/models"
)

// ErrNotFound is returned when a referenced user, group, post or session
// does not exist.
var ErrNotFound = errors.New("record not found")

type Manager struct {
	db *gorm.DB
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// DB exposes the underlying connection for read-only query composition.
func (m *Manager) DB() *gorm.DB {
	return m.db
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Users

func (m *Manager) CreateUser(ctx context.Context, username string, passwordHash string) (models.User, error) {
	user := models.User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	err := m.db.WithContext(ctx).Create(&user).Error
	return user, err
}

func (m *Manager) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := m.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return user, translateError(err)
}

func (m *Manager) GetUserByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := m.db.WithContext(ctx).First(&user, id).Error
	return user, translateError(err)
}

// Groups

func (m *Manager) CreateGroup(ctx context.Context, group *models.Group) error {
	return m.db.WithContext(ctx).Create(group).Error
}

func (m *Manager) GetGroupBySlug(ctx context.Context, slug string) (models.Group, error) {
	var group models.Group
	err := m.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error
	return group, translateError(err)
}

func (m *Manager) ListGroups(ctx context.Context) ([]models.Group, error) {
	groups := make([]models.Group, 0)
	err := m.db.WithContext(ctx).Order("title").Find(&groups).Error
	return groups, err
}

// DeleteGroup removes the group and nullifies the group reference of its
// posts. Posts themselves are never cascaded.
func (m *Manager) DeleteGroup(ctx context.Context, slug string) error {
	group, err := m.GetGroupBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Post{}).
			Where("group_id = ?", group.ID).
			Update("group_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, group.ID).Error
	})
}

// Posts

func (m *Manager) CreatePost(ctx context.Context, post *models.Post) error {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	return m.db.WithContext(ctx).Create(post).Error
}

func (m *Manager) GetPost(ctx context.Context, id uint) (models.Post, error) {
	var post models.Post
	err := m.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	return post, translateError(err)
}

// UpdatePost writes the mutable fields only. CreatedAt and AuthorID stay as
// they were set at creation.
func (m *Manager) UpdatePost(ctx context.Context, post *models.Post) error {
	err := m.db.WithContext(ctx).
		Model(&models.Post{ID: post.ID}).
		Select("text", "image", "group_id").
		Updates(map[string]interface{}{
			"text":     post.Text,
			"image":    post.Image,
			"group_id": post.GroupID,
		}).Error
	if err != nil {
		log.Errorf("Error updating post %d: %v", post.ID, err)
	}
	return err
}

// DeletePost removes the post together with its comments.
func (m *Manager) DeletePost(ctx context.Context, id uint) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error
		if err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

func (m *Manager) CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

// Comments

func (m *Manager) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	return m.db.WithContext(ctx).Create(comment).Error
}

func (m *Manager) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := m.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at").
		Find(&comments).Error
	return comments, err
}

// Follows

// CreateFollow upserts the (follower, followed) edge so the pair stays
// unique no matter how many times the handler is hit.
func (m *Manager) CreateFollow(ctx context.Context, followerID uint, followedID uint) error {
	follow := models.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
	}
	return m.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Attrs(models.Follow{CreatedAt: time.Now().UTC()}).
		FirstOrCreate(&follow).Error
}

func (m *Manager) DeleteFollow(ctx context.Context, followerID uint, followedID uint) error {
	return m.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{}).Error
}

func (m *Manager) IsFollowing(ctx context.Context, followerID uint, followedID uint) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	return count > 0, err
}

// Sessions

func (m *Manager) CreateSession(ctx context.Context, session *models.Session) error {
	return m.db.WithContext(ctx).Create(session).Error
}

func (m *Manager) GetSession(ctx context.Context, id string) (models.Session, error) {
	var session models.Session
	err := m.db.WithContext(ctx).First(&session, "id = ?", id).Error
	return session, translateError(err)
}

func (m *Manager) DeleteSession(ctx context.Context, id string) error {
	return m.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id).Error
}

func (m *Manager) DeleteExpiredSessions(ctx context.Context) error {
	return m.db.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&models.Session{}).Error
}
