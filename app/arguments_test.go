package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/marvinrgb/argue-well-api/app/models"
	"github.com/marvinrgb/argue-well-api/auth"

	"github.com/gin-gonic/gin"
)

// newAuthedRouter builds a router with the protected routes and a stub
// middleware injecting claims for the given user, bypassing token checks.
func newAuthedRouter(userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		ctx := auth.WithClaims(c.Request.Context(), &auth.Claims{UserID: userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	router.POST("/api/arguments", CreateArgument)
	router.GET("/api/arguments", ListArguments)
	router.GET("/api/arguments/:id", GetArgument)
	router.PUT("/api/arguments/:id", UpdateArgument)
	router.POST("/api/coach/analyze/:argumentId", AnalyzeArgument)
	router.POST("/api/coach/devils-advocate/:argumentId", DevilsAdvocate)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCreateArgumentRequiresTopic(t *testing.T) {
	store = newMemStore()
	router := newAuthedRouter("user-1")

	resp := doJSON(t, router, http.MethodPost, "/api/arguments", `{}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/arguments", `{"topic":"   "}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank topic, got %d", resp.Code)
	}
}

func TestCreateThenGetArgument(t *testing.T) {
	store = newMemStore()
	router := newAuthedRouter("user-1")

	resp := doJSON(t, router, http.MethodPost, "/api/arguments", `{"topic":"Universal Basic Income"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", resp.Code, resp.Body.String())
	}
	var created struct {
		ArgumentID string `json:"argumentId"`
		Topic      string `json:"topic"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal create response: %v", err)
	}
	if created.ArgumentID == "" || created.Topic != "Universal Basic Income" {
		t.Fatalf("create response = %+v", created)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/arguments/"+created.ArgumentID, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var arg models.Argument
	if err := json.Unmarshal(resp.Body.Bytes(), &arg); err != nil {
		t.Fatalf("unmarshal argument: %v", err)
	}
	if arg.Topic != "Universal Basic Income" {
		t.Fatalf("topic = %q", arg.Topic)
	}
	if arg.Claim != "" || arg.Reason != "" || arg.Evidence != "" || arg.Impact != "" {
		t.Fatalf("expected empty draft fields, got %+v", arg)
	}
	if len(arg.AnalysisHistory) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(arg.AnalysisHistory))
	}
}

func TestListArgumentsOwnerOnlyAndOrdered(t *testing.T) {
	store = newMemStore()
	mine := newAuthedRouter("user-1")
	theirs := newAuthedRouter("user-2")

	doJSON(t, mine, http.MethodPost, "/api/arguments", `{"topic":"first"}`)
	doJSON(t, theirs, http.MethodPost, "/api/arguments", `{"topic":"not yours"}`)
	resp := doJSON(t, mine, http.MethodPost, "/api/arguments", `{"topic":"second"}`)
	var second struct {
		ArgumentID string `json:"argumentId"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &second)
	resp = doJSON(t, mine, http.MethodPost, "/api/arguments", `{"topic":"third"}`)
	var third struct {
		ArgumentID string `json:"argumentId"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &third)

	// Touch "second" so it outranks "third".
	doJSON(t, mine, http.MethodPut, "/api/arguments/"+second.ArgumentID, `{"claim":"updated"}`)

	resp = doJSON(t, mine, http.MethodGet, "/api/arguments", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var items []models.ArgumentSummary
	if err := json.Unmarshal(resp.Body.Bytes(), &items); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Topic != "second" || items[1].Topic != "third" || items[2].Topic != "first" {
		t.Fatalf("unexpected order: %q %q %q", items[0].Topic, items[1].Topic, items[2].Topic)
	}
	for _, item := range items {
		if item.Topic == "not yours" {
			t.Fatalf("list leaked another user's argument")
		}
	}
}

func TestGetArgumentNotFoundVsNotOwner(t *testing.T) {
	store = newMemStore()
	owner := newAuthedRouter("user-1")
	intruder := newAuthedRouter("user-2")

	resp := doJSON(t, owner, http.MethodPost, "/api/arguments", `{"topic":"secret topic"}`)
	var created struct {
		ArgumentID string `json:"argumentId"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &created)

	resp = doJSON(t, owner, http.MethodGet, "/api/arguments/no-such-id", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	resp = doJSON(t, intruder, http.MethodGet, "/api/arguments/"+created.ArgumentID, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-owner, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "secret topic") {
		t.Fatalf("non-owner response leaked argument content: %s", resp.Body.String())
	}

	resp = doJSON(t, intruder, http.MethodPut, "/api/arguments/"+created.ArgumentID, `{"claim":"hijack"}`)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-owner update, got %d", resp.Code)
	}
}

func TestUpdateArgumentPartialFields(t *testing.T) {
	store = newMemStore()
	router := newAuthedRouter("user-1")

	resp := doJSON(t, router, http.MethodPost, "/api/arguments", `{"topic":"UBI"}`)
	var created struct {
		ArgumentID string `json:"argumentId"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &created)

	resp = doJSON(t, router, http.MethodPut, "/api/arguments/"+created.ArgumentID,
		`{"claim":"UBI works","evidence":"pilot studies"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodPut, "/api/arguments/"+created.ArgumentID, `{"reason":"stable income floor"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var arg models.Argument
	if err := json.Unmarshal(resp.Body.Bytes(), &arg); err != nil {
		t.Fatalf("unmarshal argument: %v", err)
	}
	if arg.Reason != "stable income floor" {
		t.Fatalf("reason = %q", arg.Reason)
	}
	if arg.Claim != "UBI works" || arg.Evidence != "pilot studies" || arg.Impact != "" {
		t.Fatalf("unexpected field changes: %+v", arg)
	}

	// Empty strings do not clear stored fields.
	resp = doJSON(t, router, http.MethodPut, "/api/arguments/"+created.ArgumentID, `{"claim":""}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &arg); err != nil {
		t.Fatalf("unmarshal argument: %v", err)
	}
	if arg.Claim != "UBI works" {
		t.Fatalf("empty claim cleared stored value: %q", arg.Claim)
	}

	resp = doJSON(t, router, http.MethodPut, "/api/arguments/nope", `{"claim":"x"}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
