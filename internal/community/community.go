// Package community implements the discussion feed: posts, replies and
// aggregate community stats on top of the document store.
package community

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/devcompass/devcompass/internal/progress"
	"github.com/devcompass/devcompass/internal/store"
)

const (
	postsCollection = "posts"
	usersCollection = "users"

	// FeedSize is the number of posts ListPosts returns.
	FeedSize = 20

	// AnonymousName is shown for authors without a profile.
	AnonymousName = "Anonymous"

	authorLookups = 8
)

var (
	ErrSignInRequired = errors.New("sign in to post in the community")
	ErrEmptyPost      = errors.New("title and body are required")
	ErrEmptyComment   = errors.New("reply cannot be empty")
	ErrInvalidType    = errors.New("post type must be message, challenge or question")
	ErrInvalidLevel   = errors.New("difficulty must be beginner, intermediate or advanced")
	ErrPostNotFound   = errors.New("post not found")
)

// PostType classifies a post.
type PostType string

const (
	Message   PostType = "message"
	Challenge PostType = "challenge"
	Question  PostType = "question"
)

// Post is a feed entry. Author fields are resolved when listing.
type Post struct {
	ID           string    `json:"-"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Type         PostType  `json:"type"`
	Difficulty   string    `json:"difficulty"`
	UserID       string    `json:"userId"`
	CreatedAt    time.Time `json:"createdAt"`
	Likes        int       `json:"likes"`
	CommentCount int       `json:"commentCount"`

	AuthorName    string `json:"-"`
	AuthorPicture string `json:"-"`
}

// Comment is a reply to a post.
type Comment struct {
	ID         string    `json:"-"`
	Content    string    `json:"content"`
	UserID     string    `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
	AuthorName string    `json:"-"`
}

// NewPost is the input of CreatePost.
type NewPost struct {
	Title      string
	Body       string
	Type       PostType
	Difficulty string
}

// Stats summarizes the community.
type Stats struct {
	TotalUsers       int
	TotalChallenges  int
	TotalCompletions int
}

// Service reads and writes the feed.
type Service struct {
	docs   store.DocumentRepo
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a community service.
func NewService(docs store.DocumentRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{docs: docs, logger: logger, now: time.Now}
}

func commentsCollection(postID string) string {
	return postsCollection + "/" + postID + "/comments"
}

// CreatePost publishes a post by the signed-in user uid.
func (s *Service) CreatePost(ctx context.Context, uid string, in NewPost) (*Post, error) {
	if uid == "" {
		return nil, ErrSignInRequired
	}
	title, body := strings.TrimSpace(in.Title), strings.TrimSpace(in.Body)
	if title == "" || body == "" {
		return nil, ErrEmptyPost
	}

	typ := in.Type
	if typ == "" {
		typ = Message
	}
	difficulty := in.Difficulty
	switch typ {
	case Message:
		difficulty = "beginner"
	case Challenge, Question:
		if difficulty == "" {
			difficulty = "beginner"
		}
		if !validLevel(difficulty) {
			return nil, ErrInvalidLevel
		}
	default:
		return nil, ErrInvalidType
	}

	p := &Post{
		Title:      title,
		Body:       body,
		Type:       typ,
		Difficulty: difficulty,
		UserID:     uid,
		CreatedAt:  s.now().UTC(),
	}
	id, err := s.docs.Create(ctx, postsCollection, p)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	p.ID = id
	p.AuthorName, p.AuthorPicture = s.author(ctx, uid)

	s.logger.Info("post created", zap.String("post", id), zap.String("type", string(typ)))
	return p, nil
}

// ListPosts returns the newest posts with author names resolved. Failures
// are logged and produce an empty feed.
func (s *Service) ListPosts(ctx context.Context) []Post {
	docs, err := s.docs.List(ctx, postsCollection, store.ListOpts{Limit: FeedSize, Newest: true})
	if err != nil {
		s.logger.Error("load community posts", zap.Error(err))
		return []Post{}
	}

	posts := make([]Post, 0, len(docs))
	for _, d := range docs {
		var p Post
		if err := d.Decode(&p); err != nil {
			s.logger.Warn("skipping unreadable post", zap.String("post", d.ID), zap.Error(err))
			continue
		}
		p.ID = d.ID
		if p.Type == "" {
			p.Type = Message
		}
		if p.Difficulty == "" {
			p.Difficulty = "beginner"
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = d.CreatedAt
		}
		posts = append(posts, p)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(authorLookups)
	for i := range posts {
		g.Go(func() error {
			posts[i].AuthorName, posts[i].AuthorPicture = s.author(gctx, posts[i].UserID)
			return nil
		})
	}
	_ = g.Wait()

	return posts
}

// GetPost returns one post, or ErrPostNotFound.
func (s *Service) GetPost(ctx context.Context, id string) (*Post, error) {
	d, err := s.docs.Get(ctx, postsCollection, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if d == nil {
		return nil, ErrPostNotFound
	}
	var p Post
	if err := d.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode post %s: %w", id, err)
	}
	p.ID = id
	p.AuthorName, p.AuthorPicture = s.author(ctx, p.UserID)
	return &p, nil
}

// AddComment replies to a post and sets the post's comment count to the
// number of stored replies.
func (s *Service) AddComment(ctx context.Context, uid, postID, content string) (*Comment, error) {
	if uid == "" {
		return nil, ErrSignInRequired
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyComment
	}

	post, err := s.docs.Get(ctx, postsCollection, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	c := &Comment{Content: content, UserID: uid, CreatedAt: s.now().UTC()}
	coll := commentsCollection(postID)
	id, err := s.docs.Create(ctx, coll, c)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	c.ID = id
	c.AuthorName, _ = s.author(ctx, uid)

	n, err := s.docs.Count(ctx, coll)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	if err := s.docs.Merge(ctx, postsCollection, postID, map[string]any{"commentCount": n}); err != nil {
		return nil, fmt.Errorf("update comment count: %w", err)
	}
	return c, nil
}

// ListComments returns a post's replies, newest first.
func (s *Service) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	docs, err := s.docs.List(ctx, commentsCollection(postID), store.ListOpts{Newest: true})
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	out := make([]Comment, 0, len(docs))
	for _, d := range docs {
		var c Comment
		if err := d.Decode(&c); err != nil {
			return nil, fmt.Errorf("decode comment %s: %w", d.ID, err)
		}
		c.ID = d.ID
		c.AuthorName, _ = s.author(ctx, c.UserID)
		out = append(out, c)
	}
	return out, nil
}

// Stats counts users, non-message posts in the current feed and
// challenge completions across all users.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats

	for _, p := range s.ListPosts(ctx) {
		if p.Type != Message {
			st.TotalChallenges++
		}
	}

	users, err := s.docs.List(ctx, usersCollection, store.ListOpts{})
	if err != nil {
		return st, fmt.Errorf("list users: %w", err)
	}
	st.TotalUsers = len(users)
	for _, d := range users {
		var p progress.UserProgress
		if err := d.Decode(&p); err != nil {
			s.logger.Warn("skipping unreadable user", zap.String("uid", d.ID), zap.Error(err))
			continue
		}
		for _, t := range progress.AllTracks() {
			st.TotalCompletions += p.CompletedCount(t)
		}
	}
	return st, nil
}

// author resolves a user's display name and picture, falling back to
// AnonymousName.
func (s *Service) author(ctx context.Context, uid string) (name, picture string) {
	if uid == "" {
		return AnonymousName, ""
	}
	d, err := s.docs.Get(ctx, usersCollection, uid)
	if err != nil {
		s.logger.Warn("look up post author", zap.String("uid", uid), zap.Error(err))
		return AnonymousName, ""
	}
	if d == nil {
		return AnonymousName, ""
	}
	var u struct {
		Name    string `json:"name"`
		Picture string `json:"profilePicture"`
	}
	if err := d.Decode(&u); err != nil || u.Name == "" {
		return AnonymousName, u.Picture
	}
	return u.Name, u.Picture
}

func validLevel(l string) bool {
	switch l {
	case "beginner", "intermediate", "advanced":
		return true
	}
	return false
}
