package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/aciencia/catalog-system/internal/api"
	"github.com/aciencia/catalog-system/internal/api/handler"
	"github.com/aciencia/catalog-system/internal/api/middleware"
	"github.com/aciencia/catalog-system/internal/core/domain"
	"github.com/aciencia/catalog-system/internal/core/service"
)

// --- In-memory repositories ---

type memUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int64]*domain.User)}
}

func copyUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return nil, domain.ErrDuplicateUser
		}
	}
	r.nextID++
	saved := copyUser(user)
	saved.ID = r.nextID
	r.users[saved.ID] = copyUser(saved)
	return saved, nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for id := int64(1); id <= r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			out = append(out, copyUser(u))
		}
	}
	return out, nil
}

type memElementKey struct {
	kind domain.ElementKind
	id   int64
}

type memElementRepo struct {
	elements map[memElementKey]*domain.Element
	nextID   map[domain.ElementKind]int64
}

func newMemElementRepo() *memElementRepo {
	return &memElementRepo{
		elements: make(map[memElementKey]*domain.Element),
		nextID:   make(map[domain.ElementKind]int64),
	}
}

func copyElement(e *domain.Element) *domain.Element {
	clone := *e
	return &clone
}

func (r *memElementRepo) Create(_ context.Context, element *domain.Element) (*domain.Element, error) {
	r.nextID[element.Kind]++
	saved := copyElement(element)
	saved.ID = r.nextID[element.Kind]
	r.elements[memElementKey{saved.Kind, saved.ID}] = copyElement(saved)
	return saved, nil
}

func (r *memElementRepo) Update(_ context.Context, element *domain.Element) error {
	key := memElementKey{element.Kind, element.ID}
	if _, ok := r.elements[key]; !ok {
		return domain.ErrElementNotFound
	}
	r.elements[key] = copyElement(element)
	return nil
}

func (r *memElementRepo) Delete(_ context.Context, kind domain.ElementKind, id int64) error {
	key := memElementKey{kind, id}
	if _, ok := r.elements[key]; !ok {
		return domain.ErrElementNotFound
	}
	delete(r.elements, key)
	return nil
}

func (r *memElementRepo) FindByID(_ context.Context, kind domain.ElementKind, id int64) (*domain.Element, error) {
	e, ok := r.elements[memElementKey{kind, id}]
	if !ok {
		return nil, domain.ErrElementNotFound
	}
	return copyElement(e), nil
}

func (r *memElementRepo) FindByIDs(_ context.Context, kind domain.ElementKind, ids []int64) ([]*domain.Element, error) {
	out := make([]*domain.Element, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.elements[memElementKey{kind, id}]; ok {
			out = append(out, copyElement(e))
		}
	}
	return out, nil
}

func (r *memElementRepo) List(_ context.Context, kind domain.ElementKind) ([]*domain.Element, error) {
	out := make([]*domain.Element, 0)
	for id := int64(1); id <= r.nextID[kind]; id++ {
		if e, ok := r.elements[memElementKey{kind, id}]; ok {
			out = append(out, copyElement(e))
		}
	}
	return out, nil
}

type memRelationRepo struct {
	edges []domain.Relation
}

func (r *memRelationRepo) Link(_ context.Context, rel domain.Relation) (bool, error) {
	for _, e := range r.edges {
		if e == rel {
			return false, nil
		}
	}
	r.edges = append(r.edges, rel)
	return true, nil
}

func (r *memRelationRepo) Unlink(_ context.Context, rel domain.Relation) (bool, error) {
	for i, e := range r.edges {
		if e == rel {
			r.edges = append(r.edges[:i], r.edges[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memRelationRepo) Members(_ context.Context, ownerKind domain.ElementKind, ownerID int64, otherKind domain.ElementKind) ([]int64, error) {
	ids := make([]int64, 0)
	for _, e := range r.edges {
		if e.AKind == ownerKind && e.AID == ownerID && e.BKind == otherKind {
			ids = append(ids, e.BID)
		}
		if e.BKind == ownerKind && e.BID == ownerID && e.AKind == otherKind {
			ids = append(ids, e.AID)
		}
	}
	return ids, nil
}

func (r *memRelationRepo) DeleteFor(_ context.Context, kind domain.ElementKind, id int64) error {
	kept := r.edges[:0]
	for _, e := range r.edges {
		if (e.AKind == kind && e.AID == id) || (e.BKind == kind && e.BID == id) {
			continue
		}
		kept = append(kept, e)
	}
	r.edges = kept
	return nil
}

// --- Test server ---

type testServer struct {
	echo   *echo.Echo
	users  *memUserRepo
	tokens *service.TokenService
}

// newTestServer wires the full route table over in-memory stores, with the
// same middleware chain the production router uses.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = api.NewHTTPErrorHandler(zerolog.Nop())

	tokens, err := service.NewTokenService("test-signing-key", "catalog-system", "catalog-client", 7200)
	if err != nil {
		t.Fatalf("NewTokenService returned error: %v", err)
	}

	users := newMemUserRepo()
	elements := newMemElementRepo()
	relations := &memRelationRepo{}

	authService := service.NewAuthService(users, tokens, nil, zerolog.Nop())
	userService := service.NewUserService(users, zerolog.Nop())
	elementService := service.NewElementService(elements, relations, zerolog.Nop())

	loginHandler := handler.NewLoginHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	elementHandler := handler.NewElementHandler(elementService)

	auth := middleware.Auth(tokens)
	reader := middleware.RequireScope(domain.RoleReader)
	writer := middleware.RequireScope(domain.RoleWriter)
	writerOnResource := middleware.RequireScopeOnResource(domain.RoleWriter)

	e.POST("/access_token", loginHandler.Login)
	e.GET("/api/v1/users/username/:username", userHandler.Exists)

	e.OPTIONS("/api/v1/users", handler.Options)
	e.OPTIONS("/api/v1/users/:id", handler.Options)

	ug := e.Group("/api/v1/users", auth)
	ug.GET("", userHandler.List, reader)
	ug.POST("", userHandler.Create, writer)
	ug.GET("/:id", userHandler.Get, reader)
	ug.HEAD("/:id", userHandler.Get, reader)
	ug.PUT("/:id", userHandler.Update, writerOnResource)
	ug.DELETE("/:id", userHandler.Delete, writerOnResource)

	for _, kind := range []domain.ElementKind{domain.KindPerson, domain.KindEntity, domain.KindProduct} {
		e.OPTIONS("/api/v1/"+kind.Plural(), handler.Options)
		e.OPTIONS("/api/v1/"+kind.Plural()+"/:id", handler.Options)

		g := e.Group("/api/v1/"+kind.Plural(), auth)
		g.GET("", elementHandler.List(kind), reader)
		g.POST("", elementHandler.Create(kind), writer)
		g.GET("/:id", elementHandler.Get(kind), reader)
		g.HEAD("/:id", elementHandler.Get(kind), reader)
		g.PUT("/:id", elementHandler.Update(kind), writerOnResource)
		g.DELETE("/:id", elementHandler.Delete(kind), writerOnResource)
		g.GET("/:id/:other", elementHandler.Members(kind), reader)
		g.PUT("/:id/:other/add/:otherId", elementHandler.Link(kind), writerOnResource)
		g.PUT("/:id/:other/rem/:otherId", elementHandler.Unlink(kind), writerOnResource)
	}

	return &testServer{echo: e, users: users, tokens: tokens}
}

// seedUser persists a user directly in the store and returns it.
func (s *testServer) seedUser(t *testing.T, username, password string, role domain.Role) *domain.User {
	t.Helper()
	u, err := domain.NewUser(username, username+"@example.com", password, role)
	if err != nil {
		t.Fatalf("NewUser returned error: %v", err)
	}
	saved, err := s.users.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("seeding user failed: %v", err)
	}
	return saved
}

// token issues a bearer token for a fresh user holding role.
func (s *testServer) token(t *testing.T, role domain.Role) string {
	t.Helper()
	name := "reader-probe"
	if role == domain.RoleWriter {
		name = "writer-probe"
	}
	u, err := s.users.FindByUsername(context.Background(), name)
	if err != nil {
		u = s.seedUser(t, name, "pw", role)
	}
	raw, _, err := s.tokens.Issue(u, "")
	if err != nil {
		t.Fatalf("issuing token failed: %v", err)
	}
	return raw
}

type testRequest struct {
	method  string
	path    string
	body    string
	token   string
	headers map[string]string
}

func (s *testServer) do(t *testing.T, r testRequest) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.body != "" {
		body = strings.NewReader(r.body)
	}
	req := httptest.NewRequest(r.method, r.path, body)
	if r.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if r.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+r.token)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not a JSON object: %v\n%s", err, rec.Body.String())
	}
	return out
}

func assertErrorEnvelope(t *testing.T, rec *httptest.ResponseRecorder, code int, message string) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected status %d, got %d: %s", code, rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if got, ok := body["code"].(float64); !ok || int(got) != code {
		t.Fatalf("envelope code = %v, want %d", body["code"], code)
	}
	if body["message"] != message {
		t.Fatalf("envelope message = %v, want %q", body["message"], message)
	}
	if len(body) != 2 {
		t.Fatalf("error envelope must carry exactly code and message: %v", body)
	}
}
