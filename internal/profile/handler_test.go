package profile_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podkrepi-bg/admin/internal/api"
	"github.com/podkrepi-bg/admin/internal/auth"
	"github.com/podkrepi-bg/admin/internal/crud"
	"github.com/podkrepi-bg/admin/internal/forms"
	"github.com/podkrepi-bg/admin/internal/i18n"
	"github.com/podkrepi-bg/admin/internal/platform/cache"
	"github.com/podkrepi-bg/admin/internal/profile"
	"github.com/podkrepi-bg/admin/internal/shared"
	"github.com/podkrepi-bg/admin/internal/view"
	"github.com/podkrepi-bg/admin/web"
	_ "github.com/podkrepi-bg/admin/testing"
)

// accountAPI serves the signed-in person and persists PATCHes onto it.
type accountAPI struct {
	mu        sync.Mutex
	person    api.Record
	edits     []map[string]any
	get       func() api.Result
	afterEdit func(person api.Record)
}

func (a *accountAPI) List(context.Context, api.Endpoint) api.Result {
	return api.Failed(http.StatusMethodNotAllowed, errors.New("not supported"))
}

func (a *accountAPI) Get(_ context.Context, e api.Endpoint, _ string) api.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	if e != api.Account {
		return api.Failed(http.StatusNotFound, errors.New("unknown endpoint"))
	}
	if a.get != nil {
		return a.get()
	}
	out := make(api.Record, len(a.person))
	for k, v := range a.person {
		out[k] = v
	}
	return api.Result{Kind: api.KindOK, Status: http.StatusOK, Record: out}
}

func (a *accountAPI) Create(context.Context, api.Endpoint, any) api.Result {
	return api.Failed(http.StatusMethodNotAllowed, errors.New("not supported"))
}

func (a *accountAPI) Edit(_ context.Context, _ api.Endpoint, _ string, payload any) api.Result {
	p := payload.(map[string]any)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.edits = append(a.edits, p)
	for k, v := range p {
		a.person[k] = v
	}
	if a.afterEdit != nil {
		a.afterEdit(a.person)
	}
	return api.Result{Kind: api.KindOK, Status: http.StatusOK, Record: api.Record{"id": a.person.ID()}}
}

func (a *accountAPI) Delete(context.Context, api.Endpoint, string) api.Result {
	return api.Failed(http.StatusMethodNotAllowed, errors.New("not supported"))
}

func (a *accountAPI) editCalls() []map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]map[string]any(nil), a.edits...)
}

type env struct {
	t       *testing.T
	router  chi.Router
	account *accountAPI
	sess    *shared.Session
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	catalog, err := i18n.Load(web.Locales, "en")
	require.NoError(t, err)
	templates, err := view.NewEngine(catalog)
	require.NoError(t, err)

	store := cache.NewFormStore(client, time.Hour)
	account := &accountAPI{person: api.Record{"id": "p1", "firstName": "Ivan", "lastName": "Petrov"}}
	deps := crud.Deps{
		API:       account,
		Store:     store,
		Pipeline:  forms.NewPipeline(store, cache.NewGuard(client, time.Minute), shared.SessionNotifier{}, nil, nil, nil),
		Templates: templates,
		Catalog:   catalog,
	}
	r := chi.NewRouter()
	r.Route("/profile", profile.NewHandler(deps, "https://id.podkrepi.bg/realms/podkrepi/account/password").MountRoutes)

	sessions := shared.NewSessionManager(client, "test_session", "session-secret", time.Hour, false)
	sess, err := sessions.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return &env{t: t, router: r, account: account, sess: sess}
}

func (e *env) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	e.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := shared.ContextWithSession(req.Context(), e.sess)
	ctx = shared.ContextWithLocale(ctx, "en")
	ctx = auth.ContextWithUser(ctx, auth.User{Email: "ops@podkrepi.bg"})
	res := httptest.NewRecorder()
	e.router.ServeHTTP(res, req.WithContext(ctx))
	return res
}

var formIDPattern = regexp.MustCompile(`name="_form" value="([^"]+)"`)

func (e *env) mount() string {
	e.t.Helper()
	res := e.do(http.MethodGet, "/profile", nil)
	require.Equal(e.t, http.StatusOK, res.Code, res.Body.String())
	m := formIDPattern.FindStringSubmatch(res.Body.String())
	require.Len(e.t, m, 2, "form id not rendered")
	return m[1]
}

func (e *env) notes() []string {
	var keys []string
	for _, n := range e.sess.Drain() {
		keys = append(keys, n.Key)
	}
	return keys
}

func TestProfileShowsPersonAndSections(t *testing.T) {
	e := newEnv(t)

	res := e.do(http.MethodGet, "/profile", nil)
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Ivan Petrov")
	assert.Contains(t, body, "ops@podkrepi.bg")
	assert.Contains(t, body, "not available")
	assert.Contains(t, body, `action="/profile/name"`)
	assert.Contains(t, body, `action="/profile/birthday"`)
	assert.Contains(t, body, "https://id.podkrepi.bg/realms/podkrepi/account/password")
	assert.Contains(t, body, `data-section="name">`, "sections start collapsed")
}

func TestNameSaveMergesRefetchAndKeepsOtherEdits(t *testing.T) {
	e := newEnv(t)
	id := e.mount()
	e.account.afterEdit = func(person api.Record) { person["lastName"] = "Petrova" }

	// The birthday is typed and blurred but not saved.
	res := e.do(http.MethodPost, "/profile/validate", url.Values{"_form": {id}, "_field": {"birthday"}, "birthday": {"1991-02-03"}})
	require.Equal(t, http.StatusOK, res.Code)
	var blur map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&blur))
	assert.Equal(t, true, blur["valid"])

	res = e.do(http.MethodPost, "/profile/name", url.Values{"_form": {id}, "firstName": {" Ivo "}, "lastName": {"Petrov"}})
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Name saved.")
	assert.Contains(t, body, "Ivo Petrova", "the page shows the refetched person")
	assert.Contains(t, body, `value="1991-02-03"`)
	assert.Contains(t, body, `data-section="birthday" open`, "the unsaved section stays open")
	assert.Contains(t, body, `data-section="name">`)

	edits := e.account.editCalls()
	require.Len(t, edits, 1)
	assert.Equal(t, map[string]any{"firstName": "Ivo", "lastName": "Petrov"}, edits[0])

	res = e.do(http.MethodPost, "/profile/birthday", url.Values{"_form": {id}, "birthday": {"1991-02-03"}})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Birthday saved.")
	edits = e.account.editCalls()
	require.Len(t, edits, 2)
	assert.Equal(t, map[string]any{"birthday": "1991-02-03"}, edits[1])
}

func TestInvalidSectionIsNotSent(t *testing.T) {
	e := newEnv(t)
	id := e.mount()

	res := e.do(http.MethodPost, "/profile/name", url.Values{"_form": {id}, "firstName": {""}, "lastName": {"Petrov"}})
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Field is required")
	assert.Contains(t, body, `data-section="name" open`)
	assert.Empty(t, e.account.editCalls())
}

func TestUnknownSectionIsNotFound(t *testing.T) {
	e := newEnv(t)
	id := e.mount()
	res := e.do(http.MethodPost, "/profile/email", url.Values{"_form": {id}})
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestExpiredProfileFormStartsOver(t *testing.T) {
	e := newEnv(t)
	res := e.do(http.MethodPost, "/profile/name", url.Values{"_form": {"gone"}, "firstName": {"Ivo"}, "lastName": {"Petrov"}})
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/profile", res.Header().Get("Location"))
	assert.Equal(t, []string{"alerts.form-expired"}, e.notes())
	assert.Empty(t, e.account.editCalls())
}

func TestProfileLoadFailure(t *testing.T) {
	e := newEnv(t)
	e.account.get = func() api.Result { return api.Failed(http.StatusBadGateway, errors.New("down")) }

	res := e.do(http.MethodGet, "/profile", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "The data could not be loaded.")
	assert.NotContains(t, res.Body.String(), `name="_form"`)
}

func TestProfileUnauthorizedExpiresSession(t *testing.T) {
	e := newEnv(t)
	e.account.get = func() api.Result { return api.Failed(http.StatusUnauthorized, api.ErrUnauthorized) }

	res := e.do(http.MethodGet, "/profile", nil)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/auth/login?next=%2Fprofile", res.Header().Get("Location"))
	assert.Equal(t, []string{"alerts.session-expired"}, e.notes())
}
