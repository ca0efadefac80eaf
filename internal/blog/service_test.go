package blog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SarthakSoni31/Driven-backend/internal/auth"
	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/policy"
)

type fakePosts struct {
	items map[string]domain.BlogDetail
	order []string
}

func newFakePosts() *fakePosts {
	return &fakePosts{items: make(map[string]domain.BlogDetail)}
}

func (f *fakePosts) List(_ context.Context, page domain.Page) ([]domain.BlogSummary, int, error) {
	out := []domain.BlogSummary{}
	for i := len(f.order) - 1; i >= 0; i-- {
		b := f.items[f.order[i]]
		out = append(out, domain.BlogSummary{ID: b.ID, Title: b.Title, Slug: b.Slug})
	}
	total := len(out)
	start := min(page.Offset(), total)
	return out[start:min(start+page.Limit, total)], total, nil
}

func (f *fakePosts) GetByID(_ context.Context, id string) (*domain.BlogDetail, error) {
	b, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakePosts) GetBySlug(_ context.Context, slug string) (*domain.BlogDetail, error) {
	for _, b := range f.items {
		if b.Slug == slug {
			return &b, nil
		}
	}
	return nil, nil
}

func (f *fakePosts) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	for _, b := range f.items {
		if b.Slug == slug && b.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePosts) Create(_ context.Context, b *domain.Blog) error {
	b.ID = uuid.New().String()
	f.items[b.ID] = domain.BlogDetail{Blog: *b}
	f.order = append(f.order, b.ID)
	return nil
}

func (f *fakePosts) Update(_ context.Context, b *domain.Blog) error {
	if _, ok := f.items[b.ID]; !ok {
		return domain.NotFound("blog")
	}
	f.items[b.ID] = domain.BlogDetail{Blog: *b}
	return nil
}

func (f *fakePosts) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return domain.NotFound("blog")
	}
	delete(f.items, id)
	return nil
}

type fakeCategories struct {
	items map[string]domain.BlogCategory
}

func (f *fakeCategories) List(context.Context) ([]domain.BlogCategory, error) {
	out := []domain.BlogCategory{}
	for _, c := range f.items {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategories) GetByID(_ context.Context, id string) (*domain.BlogCategory, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeCategories) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	for _, c := range f.items {
		if c.Slug == slug && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCategories) CountExisting(_ context.Context, ids []string) (int, error) {
	n := 0
	for _, id := range ids {
		if _, ok := f.items[id]; ok {
			n++
		}
	}
	return n, nil
}

func (f *fakeCategories) Create(_ context.Context, c *domain.BlogCategory) error {
	c.ID = uuid.New().String()
	f.items[c.ID] = *c
	return nil
}

func (f *fakeCategories) Update(_ context.Context, c *domain.BlogCategory) error {
	f.items[c.ID] = *c
	return nil
}

func (f *fakeCategories) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return domain.NotFound("blog category")
	}
	delete(f.items, id)
	return nil
}

func newTestService() (*Service, *fakePosts) {
	posts := newFakePosts()
	cats := &fakeCategories{items: make(map[string]domain.BlogCategory)}
	return NewService(posts, cats, nil, slog.New(slog.NewTextHandler(io.Discard, nil))), posts
}

const body = "A reasonably long body for a blog post."

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	tips, err := svc.CreateCategory(ctx, CategoryInput{Name: "Style Tips"})
	require.NoError(t, err)
	assert.Equal(t, "style-tips", tips.Slug)

	first, err := svc.Create(ctx, "author-1", PostInput{Title: "Summer Looks", Content: body, CategoryIDs: []string{tips.ID, tips.ID}})
	require.NoError(t, err)
	assert.Equal(t, "summer-looks", first.Slug)
	assert.Equal(t, "author-1", first.AuthorID)
	assert.Equal(t, []string{tips.ID}, first.CategoryIDs)

	second, err := svc.Create(ctx, "author-1", PostInput{Title: "Summer Looks", Content: body})
	require.NoError(t, err)
	assert.Equal(t, "summer-looks-1", second.Slug)

	tests := []struct {
		name  string
		in    PostInput
		field string
	}{
		{"short title", PostInput{Title: "Hey", Content: body}, "title"},
		{"short content", PostInput{Title: "Long enough", Content: "too short"}, "content"},
		{"unknown category", PostInput{Title: "Long enough", Content: body, CategoryIDs: []string{"x"}}, "category_ids"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "author-1", tt.in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestUpdatePostKeepsSlugWithoutRename(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	b, err := svc.Create(ctx, "a", PostInput{Title: "Winter Coats", Content: body})
	require.NoError(t, err)

	got, err := svc.Update(ctx, b.ID, PostInput{Title: "Winter Coats", Content: body + " Updated."})
	require.NoError(t, err)
	assert.Equal(t, "winter-coats", got.Slug)

	got, err = svc.Update(ctx, b.ID, PostInput{Title: "Winter Jackets", Content: body})
	require.NoError(t, err)
	assert.Equal(t, "winter-jackets", got.Slug)
}

func TestBySlugPlaceholder(t *testing.T) {
	ctx := context.Background()
	svc, posts := newTestService()

	b, err := svc.Create(ctx, "a", PostInput{Title: "Empty Post", Content: body})
	require.NoError(t, err)
	d := posts.items[b.ID]
	d.Content = ""
	posts.items[b.ID] = d

	got, err := svc.BySlug(ctx, "empty-post")
	require.NoError(t, err)
	assert.Equal(t, placeholderContent, got.Content)

	_, err = svc.BySlug(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPages(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	for _, title := range []string{"Post Number One", "Post Number Two", "Post Number Three"} {
		_, err := svc.Create(ctx, "a", PostInput{Title: title, Content: body})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, domain.Page{Number: 2, Limit: 2})
	require.NoError(t, err)
	assert.True(t, page.Success)
	assert.Equal(t, 3, page.TotalBlogs)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Post Number One", page.Data[0].Title)
}

func TestHandleCreateUsesActorAsAuthor(t *testing.T) {
	svc, posts := newTestService()
	h := NewHandler(svc, policy.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	req := httptest.NewRequest(http.MethodPost, "/admin/api/blogs",
		strings.NewReader(`{"title":"Fresh Arrivals","content":"`+body+`"}`))
	req = req.WithContext(auth.WithActor(req.Context(), auth.Actor{UserID: "writer-7", Role: domain.RoleBlogManager}))
	rec := httptest.NewRecorder()

	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, posts.order, 1)
	assert.Equal(t, "writer-7", posts.items[posts.order[0]].AuthorID)

	req = httptest.NewRequest(http.MethodPost, "/admin/api/blogs", strings.NewReader(`{}`))
	req = req.WithContext(auth.WithActor(req.Context(), auth.Actor{UserID: "c", Role: domain.RoleCatalogueManager}))
	rec = httptest.NewRecorder()
	h.HandleCreate(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
