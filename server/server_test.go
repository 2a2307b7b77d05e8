package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"yatube/auth"
	"yatube/cache"
	"yatube/storage"
	"yatube/storage/models"
)

type testStack struct {
	manager *storage.Manager
	pages   *cache.MemoryPages
	handler http.Handler
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	db, err := gorm.Open(
		sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	manager := storage.NewManager(db)
	sessions := auth.NewManager(manager, time.Hour)
	pages := cache.NewMemoryPages(20 * time.Second)
	s := NewServer(manager, sessions, pages)

	return &testStack{
		manager: manager,
		pages:   pages,
		handler: s.Handler(),
	}
}

func (ts *testStack) createUser(t *testing.T, username string) models.User {
	t.Helper()
	user, err := ts.manager.CreateUser(context.Background(), username, "hash")
	if err != nil {
		t.Fatalf("creating user %s: %v", username, err)
	}
	return user
}

func (ts *testStack) createPost(t *testing.T, author models.User, text string, createdAt time.Time) models.Post {
	t.Helper()
	post := models.Post{Text: text, AuthorID: author.ID, CreatedAt: createdAt}
	if err := ts.manager.CreatePost(context.Background(), &post); err != nil {
		t.Fatalf("creating post %q: %v", text, err)
	}
	return post
}

// signIn creates a session row directly and returns the cookie a browser
// would hold after login.
func (ts *testStack) signIn(t *testing.T, user models.User) *http.Cookie {
	t.Helper()
	session := models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := ts.manager.CreateSession(context.Background(), &session); err != nil {
		t.Fatalf("creating session: %v", err)
	}
	return &http.Cookie{Name: "yatube_session", Value: session.ID}
}

func (ts *testStack) get(t *testing.T, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest("GET", target, nil)
	if cookie != nil {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, r)
	return w
}

func (ts *testStack) postForm(t *testing.T, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, r)
	return w
}

func TestIndexServesStaleCacheUntilCleared(t *testing.T) {
	ts := newTestStack(t)
	alice := ts.createUser(t, "alice")
	post := ts.createPost(t, alice, "soon to be deleted", time.Now().UTC())

	w := ts.get(t, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "soon to be deleted") {
		t.Fatal("fresh index should contain the new post")
	}

	// Delete the post; the cached body must keep serving it.
	if err := ts.manager.DeletePost(context.Background(), post.ID); err != nil {
		t.Fatalf("deleting post: %v", err)
	}
	w = ts.get(t, "/", nil)
	if !strings.Contains(w.Body.String(), "soon to be deleted") {
		t.Error("index inside the cache window should still show the deleted post")
	}

	// After clearing, the next read recomputes.
	ts.pages.Clear()
	w = ts.get(t, "/", nil)
	if strings.Contains(w.Body.String(), "soon to be deleted") {
		t.Error("index after cache clear should no longer show the deleted post")
	}
}

func TestIndexPagination(t *testing.T) {
	ts := newTestStack(t)
	alice := ts.createUser(t, "alice")

	base := time.Now().UTC()
	for i := 0; i < 13; i++ {
		ts.createPost(t, alice, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Second))
	}

	var resp struct {
		Page struct {
			Items      []json.RawMessage `json:"items"`
			TotalItems int               `json:"total_items"`
			TotalPages int               `json:"total_pages"`
			HasNext    bool              `json:"has_next"`
			HasPrev    bool              `json:"has_prev"`
		} `json:"page"`
	}

	w := ts.get(t, "/?page=1", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding index response: %v", err)
	}
	if len(resp.Page.Items) != 10 {
		t.Errorf("page 1 items = %d, want 10", len(resp.Page.Items))
	}
	if resp.Page.TotalItems != 13 || resp.Page.TotalPages != 2 {
		t.Errorf("totals = (%d items, %d pages), want (13, 2)", resp.Page.TotalItems, resp.Page.TotalPages)
	}
	if !resp.Page.HasNext || resp.Page.HasPrev {
		t.Errorf("page 1 navigation = (prev %v, next %v), want (false, true)", resp.Page.HasPrev, resp.Page.HasNext)
	}

	w = ts.get(t, "/?page=2", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding index response: %v", err)
	}
	if len(resp.Page.Items) != 3 {
		t.Errorf("page 2 items = %d, want 3", len(resp.Page.Items))
	}
}

func TestNonAuthorEditRedirectsWithoutMutation(t *testing.T) {
	ts := newTestStack(t)
	alice := ts.createUser(t, "alice")
	bob := ts.createUser(t, "bob")
	post := ts.createPost(t, alice, "original text", time.Now().UTC())

	w := ts.postForm(
		t,
		fmt.Sprintf("/posts/%d/edit", post.ID),
		url.Values{"text": {"hijacked"}},
		ts.signIn(t, bob),
	)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	wantLocation := fmt.Sprintf("/posts/%d", post.ID)
	if got := w.Header().Get("Location"); got != wantLocation {
		t.Errorf("Location = %q, want %q", got, wantLocation)
	}

	got, err := ts.manager.GetPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("getting post: %v", err)
	}
	if got.Text != "original text" {
		t.Errorf("post text = %q, want unchanged %q", got.Text, "original text")
	}
}

func TestAuthorEditUpdatesPost(t *testing.T) {
	ts := newTestStack(t)
	alice := ts.createUser(t, "alice")
	post := ts.createPost(t, alice, "original text", time.Now().UTC())

	w := ts.postForm(
		t,
		fmt.Sprintf("/posts/%d/edit", post.ID),
		url.Values{"text": {"edited text"}},
		ts.signIn(t, alice),
	)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}

	got, err := ts.manager.GetPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("getting post: %v", err)
	}
	if got.Text != "edited text" {
		t.Errorf("post text = %q, want %q", got.Text, "edited text")
	}
}

func TestCreatePostRequiresAuthentication(t *testing.T) {
	ts := newTestStack(t)

	w := ts.postForm(t, "/posts", url.Values{"text": {"anonymous post"}}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestCreatePostValidation(t *testing.T) {
	ts := newTestStack(t)
	alice := ts.createUser(t, "alice")

	w := ts.postForm(t, "/posts", url.Values{}, ts.signIn(t, alice))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "text") {
		t.Error("validation response should name the missing field")
	}

	count, err := ts.manager.CountPostsByAuthor(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("counting posts: %v", err)
	}
	if count != 0 {
		t.Errorf("post count = %d after failed validation, want 0", count)
	}
}

func TestFollowedFeedThroughHandlers(t *testing.T) {
	ts := newTestStack(t)
	a := ts.createUser(t, "a")
	b := ts.createUser(t, "b")
	c := ts.createUser(t, "c")
	cookie := ts.signIn(t, a)

	w := ts.postForm(t, "/profiles/b/follow", url.Values{}, cookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("follow status = %d, want 303", w.Code)
	}

	base := time.Now().UTC()
	ts.createPost(t, b, "post by b", base)
	ts.createPost(t, c, "post by c", base.Add(time.Second))

	w = ts.get(t, "/feed", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("feed status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "post by b") {
		t.Error("followed feed should contain the followed author's post")
	}
	if strings.Contains(body, "post by c") {
		t.Error("followed feed should exclude unfollowed authors")
	}
}

func TestSelfFollowIsANoOp(t *testing.T) {
	ts := newTestStack(t)
	a := ts.createUser(t, "a")
	cookie := ts.signIn(t, a)

	w := ts.postForm(t, "/profiles/a/follow", url.Values{}, cookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}

	following, err := ts.manager.IsFollowing(context.Background(), a.ID, a.ID)
	if err != nil {
		t.Fatalf("IsFollowing: %v", err)
	}
	if following {
		t.Error("self-follow should not create an edge")
	}
}

func TestProfileFollowingFlag(t *testing.T) {
	ts := newTestStack(t)
	alice := ts.createUser(t, "alice")
	bob := ts.createUser(t, "bob")

	if err := ts.manager.CreateFollow(context.Background(), bob.ID, alice.ID); err != nil {
		t.Fatalf("creating follow: %v", err)
	}

	var resp struct {
		Following bool `json:"following"`
	}

	w := ts.get(t, "/profiles/alice", ts.signIn(t, bob))
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding profile response: %v", err)
	}
	if !resp.Following {
		t.Error("following viewer should see following = true")
	}

	w = ts.get(t, "/profiles/alice", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding profile response: %v", err)
	}
	if resp.Following {
		t.Error("anonymous viewer should see following = false")
	}
}

func TestGroupFeedNotFound(t *testing.T) {
	ts := newTestStack(t)

	w := ts.get(t, "/groups/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSignupLoginFlow(t *testing.T) {
	ts := newTestStack(t)

	w := ts.postForm(t, "/auth/signup", url.Values{
		"username": {"alice"},
		"password": {"s3cret"},
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201", w.Code)
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("signup should set a session cookie")
	}

	w2 := ts.postForm(t, "/posts", url.Values{"text": {"first post"}}, cookies[0])
	if w2.Code != http.StatusCreated {
		t.Fatalf("create post status = %d, want 201", w2.Code)
	}

	w3 := ts.postForm(t, "/auth/login", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	}, nil)
	if w3.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", w3.Code)
	}

	w4 := ts.postForm(t, "/auth/login", url.Values{
		"username": {"alice"},
		"password": {"s3cret"},
	}, nil)
	if w4.Code != http.StatusOK {
		t.Errorf("login status = %d, want 200", w4.Code)
	}
}
