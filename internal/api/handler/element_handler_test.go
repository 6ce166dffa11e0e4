package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/aciencia/catalog-system/internal/api/handler"
	"github.com/aciencia/catalog-system/internal/core/domain"
)

func createElement(t *testing.T, s *testServer, token, plural, name string) map[string]any {
	t.Helper()
	rec := s.do(t, testRequest{
		method: http.MethodPost,
		path:   "/api/v1/" + plural,
		token:  token,
		body:   fmt.Sprintf(`{"name":%q}`, name),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating %s %q: expected 201, got %d: %s", plural, name, rec.Code, rec.Body.String())
	}
	return decodeBody(t, rec)
}

func TestElementCreate(t *testing.T) {
	s := newTestServer(t)
	writer := s.token(t, domain.RoleWriter)

	rec := s.do(t, testRequest{
		method: http.MethodPost,
		path:   "/api/v1/persons",
		token:  writer,
		body:   `{"name":"Marie Curie","wikiUrl":"https://en.wikipedia.org/wiki/Marie_Curie"}`,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Location") != "/api/v1/persons/1" {
		t.Fatalf("Location = %q", rec.Header().Get("Location"))
	}
	if rec.Header().Get("ETag") == "" {
		t.Fatal("created resource must carry an ETag")
	}

	person, ok := decodeBody(t, rec)["person"].(map[string]any)
	if !ok {
		t.Fatalf("response should be enveloped under person: %s", rec.Body.String())
	}
	if person["name"] != "Marie Curie" {
		t.Fatalf("unexpected body: %v", person)
	}
	for _, key := range []string{"entities", "products"} {
		list, ok := person[key].([]any)
		if !ok || len(list) != 0 {
			t.Fatalf("fresh person should carry an empty %s list: %v", key, person[key])
		}
	}
	if _, hasOwn := person["persons"]; hasOwn {
		t.Fatal("a person must not carry a persons list")
	}

	// Missing name → 422.
	rec = s.do(t, testRequest{method: http.MethodPost, path: "/api/v1/entities", token: writer, body: `{}`})
	assertErrorEnvelope(t, rec, http.StatusUnprocessableEntity, "Unprocessable Entity")
}

func TestElementKindsAreIndependent(t *testing.T) {
	s := newTestServer(t)
	writer := s.token(t, domain.RoleWriter)

	p := createElement(t, s, writer, "persons", "Curie")["person"].(map[string]any)
	e := createElement(t, s, writer, "entities", "Sorbonne")["entity"].(map[string]any)
	if p["id"].(float64) != 1 || e["id"].(float64) != 1 {
		t.Fatalf("kinds must number independently: person=%v entity=%v", p["id"], e["id"])
	}

	reader := s.token(t, domain.RoleReader)
	rec := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/products", token: reader})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	products, ok := decodeBody(t, rec)["products"].([]any)
	if !ok || len(products) != 0 {
		t.Fatalf("products collection should be empty: %s", rec.Body.String())
	}
}

func TestElementUpdatePreconditions(t *testing.T) {
	s := newTestServer(t)
	writer := s.token(t, domain.RoleWriter)
	createElement(t, s, writer, "products", "Radium")

	rec := s.do(t, testRequest{
		method: http.MethodPut,
		path:   "/api/v1/products/1",
		token:  writer,
		body:   `{"name":"Polonium"}`,
	})
	assertErrorEnvelope(t, rec, http.StatusPreconditionRequired, "Precondition Required")

	rec = s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/products/1", token: writer})
	tag := rec.Header().Get("ETag")

	rec = s.do(t, testRequest{
		method:  http.MethodPut,
		path:    "/api/v1/products/1",
		token:   writer,
		body:    `{"name":"Polonium"}`,
		headers: map[string]string{"If-Match": tag},
	})
	if rec.Code != handler.StatusUpdated {
		t.Fatalf("expected 209, got %d: %s", rec.Code, rec.Body.String())
	}
	product := decodeBody(t, rec)["product"].(map[string]any)
	if product["name"] != "Polonium" {
		t.Fatalf("update not applied: %v", product)
	}

	rec = s.do(t, testRequest{
		method:  http.MethodPut,
		path:    "/api/v1/products/1",
		token:   writer,
		body:    `{"name":"Actinium"}`,
		headers: map[string]string{"If-Match": tag},
	})
	assertErrorEnvelope(t, rec, http.StatusPreconditionFailed, "Precondition Failed")
}

func TestRelationLinkAndReciprocity(t *testing.T) {
	s := newTestServer(t)
	writer := s.token(t, domain.RoleWriter)
	reader := s.token(t, domain.RoleReader)
	createElement(t, s, writer, "persons", "Curie")
	createElement(t, s, writer, "entities", "Sorbonne")

	rec := s.do(t, testRequest{
		method: http.MethodPut,
		path:   "/api/v1/persons/1/entities/add/1",
		token:  writer,
	})
	if rec.Code != handler.StatusUpdated {
		t.Fatalf("expected 209, got %d: %s", rec.Code, rec.Body.String())
	}
	person := decodeBody(t, rec)["person"].(map[string]any)
	entities := person["entities"].([]any)
	if len(entities) != 1 || entities[0].(float64) != 1 {
		t.Fatalf("owner membership not updated: %v", person)
	}

	// The other endpoint sees the same edge.
	rec = s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/entities/1", token: reader})
	entity := decodeBody(t, rec)["entity"].(map[string]any)
	persons := entity["persons"].([]any)
	if len(persons) != 1 || persons[0].(float64) != 1 {
		t.Fatalf("reciprocal membership missing: %v", entity)
	}

	// Re-linking is idempotent and still answers 209.
	rec = s.do(t, testRequest{
		method: http.MethodPut,
		path:   "/api/v1/entities/1/persons/add/1",
		token:  writer,
	})
	if rec.Code != handler.StatusUpdated {
		t.Fatalf("re-link: expected 209, got %d", rec.Code)
	}
	entity = decodeBody(t, rec)["entity"].(map[string]any)
	if len(entity["persons"].([]any)) != 1 {
		t.Fatalf("idempotent link duplicated the edge: %v", entity)
	}
}

func TestRelationLinkChangesElementTag(t *testing.T) {
	s := newTestServer(t)
	writer := s.token(t, domain.RoleWriter)
	reader := s.token(t, domain.RoleReader)
	createElement(t, s, writer, "persons", "Curie")
	createElement(t, s, writer, "products", "Radium")

	rec := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/persons/1", token: reader})
	before := rec.Header().Get("ETag")

	if rec := s.do(t, testRequest{
		method: http.MethodPut,
		path:   "/api/v1/persons/1/products/add/1",
		token:  writer,
	}); rec.Code != handler.StatusUpdated {
		t.Fatalf("link failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/persons/1", token: reader})
	if rec.Header().Get("ETag") == before {
		t.Fatal("an edge change must invalidate the element's tag")
	}
}

func TestRelationErrors(t *testing.T) {
	s := newTestServer(t)
	writer := s.token(t, domain.RoleWriter)
	createElement(t, s, writer, "persons", "Curie")

	// Unknown owner → 404.
	rec := s.do(t, testRequest{method: http.MethodPut, path: "/api/v1/persons/99/entities/add/1", token: writer})
	assertErrorEnvelope(t, rec, http.StatusNotFound, "Not Found")

	// Owner exists but the target does not → 406.
	rec = s.do(t, testRequest{method: http.MethodPut, path: "/api/v1/persons/1/entities/add/99", token: writer})
	assertErrorEnvelope(t, rec, http.StatusNotAcceptable, "Not Acceptable")

	// A kind cannot relate to itself.
	rec = s.do(t, testRequest{method: http.MethodPut, path: "/api/v1/persons/1/persons/add/1", token: writer})
	assertErrorEnvelope(t, rec, http.StatusNotFound, "Not Found")

	// Transient ids are never valid endpoints.
	rec = s.do(t, testRequest{method: http.MethodPut, path: "/api/v1/persons/1/entities/add/0", token: writer})
	assertErrorEnvelope(t, rec, http.StatusNotFound, "Not Found")
}

func TestRelationUnlink(t *testing.T) {
	s := newTestServer(t)
	writer := s.token(t, domain.RoleWriter)
	createElement(t, s, writer, "persons", "Curie")
	createElement(t, s, writer, "products", "Radium")

	if rec := s.do(t, testRequest{
		method: http.MethodPut,
		path:   "/api/v1/persons/1/products/add/1",
		token:  writer,
	}); rec.Code != handler.StatusUpdated {
		t.Fatalf("link failed: %d", rec.Code)
	}

	rec := s.do(t, testRequest{
		method: http.MethodPut,
		path:   "/api/v1/products/1/persons/rem/1",
		token:  writer,
	})
	if rec.Code != handler.StatusUpdated {
		t.Fatalf("expected 209, got %d: %s", rec.Code, rec.Body.String())
	}
	product := decodeBody(t, rec)["product"].(map[string]any)
	if len(product["persons"].([]any)) != 0 {
		t.Fatalf("edge should be gone: %v", product)
	}

	// Removing an absent edge is safe and still answers 209.
	rec = s.do(t, testRequest{
		method: http.MethodPut,
		path:   "/api/v1/products/1/persons/rem/1",
		token:  writer,
	})
	if rec.Code != handler.StatusUpdated {
		t.Fatalf("unlink of absent edge: expected 209, got %d", rec.Code)
	}
}

func TestRelationMembers(t *testing.T) {
	s := newTestServer(t)
	writer := s.token(t, domain.RoleWriter)
	reader := s.token(t, domain.RoleReader)
	createElement(t, s, writer, "persons", "Curie")
	createElement(t, s, writer, "products", "Radium")
	createElement(t, s, writer, "products", "Polonium")

	// Link in reverse id order; the listing keeps link order.
	for _, id := range []int{2, 1} {
		if rec := s.do(t, testRequest{
			method: http.MethodPut,
			path:   fmt.Sprintf("/api/v1/persons/1/products/add/%d", id),
			token:  writer,
		}); rec.Code != handler.StatusUpdated {
			t.Fatalf("link %d failed: %d", id, rec.Code)
		}
	}

	rec := s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/persons/1/products", token: reader})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	items, ok := decodeBody(t, rec)["products"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("expected two members: %s", rec.Body.String())
	}
	first := items[0].(map[string]any)["product"].(map[string]any)
	second := items[1].(map[string]any)["product"].(map[string]any)
	if first["id"].(float64) != 2 || second["id"].(float64) != 1 {
		t.Fatalf("members not in link order: %s", rec.Body.String())
	}

	// The member listing is itself a conditional read.
	tag := rec.Header().Get("ETag")
	rec = s.do(t, testRequest{
		method:  http.MethodGet,
		path:    "/api/v1/persons/1/products",
		token:   reader,
		headers: map[string]string{"If-None-Match": tag},
	})
	if rec.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", rec.Code)
	}

	// Unknown owner → 404.
	rec = s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/persons/9/products", token: reader})
	assertErrorEnvelope(t, rec, http.StatusNotFound, "Not Found")
}

func TestElementDeleteCleansEdges(t *testing.T) {
	s := newTestServer(t)
	writer := s.token(t, domain.RoleWriter)
	reader := s.token(t, domain.RoleReader)
	createElement(t, s, writer, "persons", "Curie")
	createElement(t, s, writer, "entities", "Sorbonne")

	if rec := s.do(t, testRequest{
		method: http.MethodPut,
		path:   "/api/v1/persons/1/entities/add/1",
		token:  writer,
	}); rec.Code != handler.StatusUpdated {
		t.Fatalf("link failed: %d", rec.Code)
	}

	rec := s.do(t, testRequest{method: http.MethodDelete, path: "/api/v1/persons/1", token: writer})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/persons/1", token: reader})
	assertErrorEnvelope(t, rec, http.StatusNotFound, "Not Found")

	rec = s.do(t, testRequest{method: http.MethodGet, path: "/api/v1/entities/1", token: reader})
	entity := decodeBody(t, rec)["entity"].(map[string]any)
	if len(entity["persons"].([]any)) != 0 {
		t.Fatalf("survivor still references the deleted person: %v", entity)
	}
}
