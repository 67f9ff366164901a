package feed

import (
	"context"
	"fmt"

	"blog-service/internal/comment"
	"blog-service/internal/group"
	"blog-service/internal/markup"
	"blog-service/internal/paginate"
	"blog-service/internal/post"
	"blog-service/internal/social"
	"blog-service/internal/user"
)

// Assembler selects the post set for each feed kind and pages it.
type Assembler struct {
	posts    post.Repository
	groups   group.Repository
	users    user.Repository
	follows  social.Repository
	comments comment.Repository
	size     int
}

func NewAssembler(posts post.Repository, groups group.Repository, users user.Repository,
	follows social.Repository, comments comment.Repository, size int) *Assembler {
	if size <= 0 {
		size = paginate.DefaultSize
	}
	return &Assembler{posts: posts, groups: groups, users: users, follows: follows, comments: comments, size: size}
}

func (a *Assembler) Home(ctx context.Context, number int) (*Feed, error) {
	page, err := a.page(ctx, post.Query{}, number)
	if err != nil {
		return nil, err
	}
	return &Feed{Kind: KindAll, Page: page}, nil
}

func (a *Assembler) Group(ctx context.Context, slug string, number int) (*Feed, error) {
	g, err := a.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("group feed %q: %w", slug, err)
	}
	page, err := a.page(ctx, post.Query{GroupID: &g.ID}, number)
	if err != nil {
		return nil, err
	}
	return &Feed{Kind: KindGroup, Page: page, Group: g}, nil
}

// Profile pages the author's posts. viewerID 0 is an anonymous viewer, who
// never follows anyone.
func (a *Assembler) Profile(ctx context.Context, username string, viewerID uint64, number int) (*Feed, error) {
	author, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", username, err)
	}
	page, err := a.page(ctx, post.Query{AuthorID: &author.ID}, number)
	if err != nil {
		return nil, err
	}
	following := false
	if viewerID != 0 {
		if following, err = a.follows.IsFollowing(ctx, viewerID, author.ID); err != nil {
			return nil, err
		}
	}
	followers, err := a.follows.FollowerCount(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	followingCount, err := a.follows.FollowingCount(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	count := page.Count
	return &Feed{
		Kind:           KindAuthor,
		Page:           page,
		Author:         author,
		PostCount:      &count,
		Following:      &following,
		Followers:      &followers,
		FollowingCount: &followingCount,
	}, nil
}

func (a *Assembler) Following(ctx context.Context, viewerID uint64, number int) (*Feed, error) {
	page, err := a.page(ctx, post.Query{FollowedBy: &viewerID}, number)
	if err != nil {
		return nil, err
	}
	return &Feed{Kind: KindFollowed, Page: page}, nil
}

// PostDetail loads one post with its comments and the author's post count.
func (a *Assembler) PostDetail(ctx context.Context, id, viewerID uint64) (*Detail, error) {
	p, err := a.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := a.posts.CountByAuthor(ctx, p.AuthorID)
	if err != nil {
		return nil, err
	}
	comments, err := a.comments.ListByPost(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []comment.Comment{}
	}
	p.HTML = markup.Render(p.Text)
	return &Detail{
		Post:      *p,
		Title:     markup.Excerpt(p.Text, titleRunes),
		PostCount: count,
		Comments:  comments,
		CanEdit:   post.CanEdit(&user.User{ID: viewerID}, p),
	}, nil
}

func (a *Assembler) page(ctx context.Context, q post.Query, number int) (paginate.Page[post.Post], error) {
	n, err := a.posts.Count(ctx, q)
	if err != nil {
		return paginate.Page[post.Post]{}, err
	}
	w := paginate.NewWindow(n, a.size, number)
	items, err := a.posts.List(ctx, q, w.Limit(), w.Offset())
	if err != nil {
		return paginate.Page[post.Post]{}, err
	}
	for i := range items {
		items[i].HTML = markup.Render(items[i].Text)
	}
	return paginate.FromWindow(w, items), nil
}
