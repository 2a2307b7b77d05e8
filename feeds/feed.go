package feeds

import (
	"context"

	"gorm.io/gorm"

	"yatube/storage"
	"yatube/storage/models"
)

// Builder answers "what is the ordered candidate set" for each view. It
// never caches and never paginates; callers slice the result themselves.
type Builder struct {
	manager *storage.Manager
}

// ProfileFeed is the candidate set for a user's profile page, together with
// the derived values the page renders.
type ProfileFeed struct {
	User      models.User
	Posts     []models.Post
	PostCount int64
	// Following reports whether the requesting viewer already follows the
	// profile owner. Always false for anonymous viewers and self-views.
	Following bool
}

func NewBuilder(manager *storage.Manager) *Builder {
	return &Builder{manager: manager}
}

// ordered applies the presentation order shared by every feed. It is spelled
// out at each query instead of being a model-level default so the ordering
// is visible at the call site.
func ordered(query *gorm.DB) *gorm.DB {
	return query.Order("created_at DESC, id DESC")
}

func (b *Builder) posts(ctx context.Context) *gorm.DB {
	return ordered(
		b.manager.DB().WithContext(ctx).
			Model(&models.Post{}).
			Preload("Author").
			Preload("Group"),
	)
}

// Global returns every post, most recent first.
func (b *Builder) Global(ctx context.Context) ([]models.Post, error) {
	posts := make([]models.Post, 0)
	err := b.posts(ctx).Find(&posts).Error
	return posts, err
}

// Group returns the group named by slug and its posts, most recent first.
func (b *Builder) Group(ctx context.Context, slug string) (models.Group, []models.Post, error) {
	group, err := b.manager.GetGroupBySlug(ctx, slug)
	if err != nil {
		return models.Group{}, nil, err
	}

	posts := make([]models.Post, 0)
	err = b.posts(ctx).Where("group_id = ?", group.ID).Find(&posts).Error
	return group, posts, err
}

// Profile returns the named user's posts plus the total count and the
// viewer's following flag. viewerID is zero for anonymous viewers.
func (b *Builder) Profile(ctx context.Context, username string, viewerID uint) (ProfileFeed, error) {
	user, err := b.manager.GetUserByUsername(ctx, username)
	if err != nil {
		return ProfileFeed{}, err
	}

	posts := make([]models.Post, 0)
	err = b.posts(ctx).Where("author_id = ?", user.ID).Find(&posts).Error
	if err != nil {
		return ProfileFeed{}, err
	}

	count, err := b.manager.CountPostsByAuthor(ctx, user.ID)
	if err != nil {
		return ProfileFeed{}, err
	}

	following := false
	if viewerID != 0 && viewerID != user.ID {
		following, err = b.manager.IsFollowing(ctx, viewerID, user.ID)
		if err != nil {
			return ProfileFeed{}, err
		}
	}

	return ProfileFeed{
		User:      user,
		Posts:     posts,
		PostCount: count,
		Following: following,
	}, nil
}

// Followed returns posts authored by anyone the viewer follows, most recent
// first. Empty when the viewer follows no one.
func (b *Builder) Followed(ctx context.Context, viewerID uint) ([]models.Post, error) {
	posts := make([]models.Post, 0)
	err := b.posts(ctx).
		Where(
			"author_id IN (?)",
			b.manager.DB().
				Model(&models.Follow{}).
				Select("followed_id").
				Where("follower_id = ?", viewerID),
		).
		Find(&posts).Error
	return posts, err
}
