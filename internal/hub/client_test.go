package hub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apphub/internal/api"
	"apphub/internal/config"
	"apphub/internal/errors"
	"apphub/internal/testutil"
)

type hubCall struct {
	method string
	path   string
	query  string
	auth   string
}

// fakeHub is an in-memory hub control API for client tests. It issues
// scoped tokens, tracks every call in order and mutates a user/server
// map the way the real hub would.
type fakeHub struct {
	t *testing.T

	mu        sync.Mutex
	version   string
	users     map[string]*api.User
	calls     []hubCall
	creations []map[string]any
	tokenSeq  int
	revoked   []string
	grantFail map[string]bool
	serverErr int // when non-zero, server POSTs fail with this status
	shared    map[string][]api.SharedServer

	srv *httptest.Server
}

func newFakeHub(t *testing.T) *fakeHub {
	f := &fakeHub{
		t:         t,
		version:   "5.2.1",
		users:     map[string]*api.User{},
		grantFail: map[string]bool{},
		shared:    map[string][]api.SharedServer{},
	}

	mux := chi.NewRouter()
	mux.Get("/", func(w http.ResponseWriter, r *http.Request) {
		f.writeJSON(w, http.StatusOK, api.HubInfo{Version: f.version})
	})
	mux.Get("/users", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		users := make([]api.User, 0, len(f.users))
		for _, u := range f.users {
			users = append(users, *u)
		}
		f.mu.Unlock()
		f.writeJSON(w, http.StatusOK, users)
	})
	mux.Get("/users/{user}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		user, ok := f.users[chi.URLParam(r, "user")]
		f.mu.Unlock()
		if !ok {
			f.writeJSON(w, http.StatusNotFound, map[string]string{"detail": "user not found"})
			return
		}
		f.writeJSON(w, http.StatusOK, user)
	})
	mux.Get("/users/{user}/shared", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		items := f.shared[chi.URLParam(r, "user")]
		f.mu.Unlock()
		f.writeJSON(w, http.StatusOK, api.SharedServerList{Items: items})
	})
	mux.Post("/users/{user}/tokens", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokenSeq++
		token := api.Token{
			ID:    fmt.Sprintf("t%d", f.tokenSeq),
			Token: fmt.Sprintf("scoped-%d", f.tokenSeq),
			User:  chi.URLParam(r, "user"),
		}
		f.mu.Unlock()
		f.writeJSON(w, http.StatusCreated, token)
	})
	mux.Delete("/users/{user}/tokens/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.revoked = append(f.revoked, chi.URLParam(r, "id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.Post("/users/{user}/servers/*", func(w http.ResponseWriter, r *http.Request) {
		if f.serverErr != 0 {
			f.writeJSON(w, f.serverErr, map[string]string{"detail": "spawn failed"})
			return
		}
		var payload map[string]any
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&payload))

		f.mu.Lock()
		f.creations = append(f.creations, payload)
		username := chi.URLParam(r, "user")
		servername := chi.URLParam(r, "*")
		if user, ok := f.users[username]; ok {
			if user.Servers == nil {
				user.Servers = map[string]api.Server{}
			}
			user.Servers[servername] = api.Server{Name: servername, Ready: true}
		}
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	mux.Delete("/users/{user}/servers/{server}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		if user, ok := f.users[chi.URLParam(r, "user")]; ok {
			delete(user.Servers, chi.URLParam(r, "server"))
		}
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.Post("/shares/{user}/{server}", func(w http.ResponseWriter, r *http.Request) {
		var grant api.ShareRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&grant))
		grantee := grant.User
		if grantee == "" {
			grantee = grant.Group
		}
		if f.grantFail[grantee] {
			f.writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "no such grantee: " + grantee})
			return
		}
		f.writeJSON(w, http.StatusOK, map[string]any{"scopes": []string{"access:servers"}})
	})
	mux.Delete("/shares/{user}/{server}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls = append(f.calls, hubCall{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
		})
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeHub) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(f.t, json.NewEncoder(w).Encode(body))
}

func (f *fakeHub) addUser(user api.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.Name] = &user
}

func (f *fakeHub) callsMatching(method, pathPrefix string) []hubCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []hubCall
	for _, c := range f.calls {
		if c.method == method && strings.HasPrefix(c.path, pathPrefix) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeHub) clientFor(username string) *Client {
	cfg := &config.Config{
		HubAPIURL:   f.srv.URL,
		HubAPIToken: "service-token",
	}
	return NewForUser(cfg, testutil.SilentLogger(), username)
}

func TestCreateServer_NormalizesAndSuffixes(t *testing.T) {
	f := newFakeHub(t)
	f.addUser(testutil.NewUserBuilder("alice").Build())
	client := f.clientFor("alice")

	spec := testutil.NewAppSpecBuilder("My Dashboard").WithFilepath("/home/alice/dash.py").Build()
	status, name, err := client.CreateServer(testutil.TestContext(), "alice", "My Dashboard!!", spec)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)

	require.True(t, strings.HasPrefix(name, "my-dashboard-"), "got %q", name)
	assert.Len(t, name, len("my-dashboard-")+7)

	// The options payload is flattened next to the name.
	require.Len(t, f.creations, 1)
	payload := f.creations[0]
	assert.Equal(t, name, payload["name"])
	assert.Equal(t, "My Dashboard", payload["display_name"])
	assert.Equal(t, "panel", payload["framework"])
}

func TestCreateServer_UniqueNamesForSameInput(t *testing.T) {
	f := newFakeHub(t)
	f.addUser(testutil.NewUserBuilder("alice").Build())
	client := f.clientFor("alice")
	spec := testutil.NewAppSpecBuilder("Dup").Build()

	_, first, err := client.CreateServer(testutil.TestContext(), "alice", "Dup", spec)
	require.NoError(t, err)
	_, second, err := client.CreateServer(testutil.TestContext(), "alice", "Dup", spec)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestScopedTokenLifecycle(t *testing.T) {
	t.Run("created, used and revoked around the operation", func(t *testing.T) {
		f := newFakeHub(t)
		f.addUser(testutil.NewUserBuilder("alice").Build())
		client := f.clientFor("alice")

		spec := testutil.NewAppSpecBuilder("App").Build()
		_, _, err := client.CreateServer(testutil.TestContext(), "alice", "App", spec)
		require.NoError(t, err)

		// The server creation itself authenticated with the scoped token,
		// not the service token.
		created := f.callsMatching("POST", "/users/alice/servers/")
		require.Len(t, created, 1)
		assert.Equal(t, "token scoped-1", created[0].auth)

		// Token management ran under the service token.
		minted := f.callsMatching("POST", "/users/alice/tokens")
		require.Len(t, minted, 1)
		assert.Equal(t, "token service-token", minted[0].auth)
		assert.Equal(t, []string{"t1"}, f.revoked)

		// Stack is back to the service token alone.
		assert.Len(t, client.tokens, 1)
	})

	t.Run("revoked even when the operation fails", func(t *testing.T) {
		f := newFakeHub(t)
		f.addUser(testutil.NewUserBuilder("alice").Build())
		f.serverErr = http.StatusInternalServerError
		client := f.clientFor("alice")

		spec := testutil.NewAppSpecBuilder("App").Build()
		_, _, err := client.CreateServer(testutil.TestContext(), "alice", "App", spec)
		require.Error(t, err)

		assert.Equal(t, []string{"t1"}, f.revoked)
		assert.Len(t, client.tokens, 1)
	})

	t.Run("service identity skips token minting", func(t *testing.T) {
		f := newFakeHub(t)
		f.addUser(testutil.NewUserBuilder("alice").Build())
		client := f.clientFor("")

		_, err := client.GetUser(testutil.TestContext(), "alice")
		require.NoError(t, err)
		assert.Empty(t, f.callsMatching("POST", "/users/alice/tokens"))
	})
}

func TestEditServer(t *testing.T) {
	t.Run("deletes then recreates under the same name", func(t *testing.T) {
		f := newFakeHub(t)
		spec := testutil.NewAppSpecBuilder("Old").Build()
		f.addUser(testutil.NewUserBuilder("alice").WithServer("my-app-abc1234", &spec).Build())
		client := f.clientFor("alice")

		next := testutil.NewAppSpecBuilder("New").WithFramework("voila").Build()
		status, name, err := client.EditServer(testutil.TestContext(), "alice", "my-app-abc1234", next)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "my-app-abc1234", name, "editing must not re-suffix the name")

		deletes := f.callsMatching("DELETE", "/users/alice/servers/my-app-abc1234")
		require.Len(t, deletes, 1)
		assert.Equal(t, "remove=true", deletes[0].query)

		require.Len(t, f.creations, 1)
		assert.Equal(t, "New", f.creations[0]["display_name"])
	})

	t.Run("unknown server is not found, nothing deleted", func(t *testing.T) {
		f := newFakeHub(t)
		f.addUser(testutil.NewUserBuilder("alice").Build())
		client := f.clientFor("alice")

		_, _, err := client.EditServer(testutil.TestContext(), "alice", "ghost", testutil.NewAppSpecBuilder("X").Build())
		testutil.AssertAppErrorCode(t, err, errors.ErrCodeNotFound)
		assert.Empty(t, f.callsMatching("DELETE", "/users/alice/servers/"))
	})
}

func TestDeleteServer_RemoveFlag(t *testing.T) {
	f := newFakeHub(t)
	spec := testutil.NewAppSpecBuilder("App").Build()
	f.addUser(testutil.NewUserBuilder("alice").WithServer("app-1234567", &spec).Build())
	client := f.clientFor("alice")

	_, err := client.DeleteServer(testutil.TestContext(), "alice", "app-1234567", false)
	require.NoError(t, err)
	_, err = client.DeleteServer(testutil.TestContext(), "alice", "app-1234567", true)
	require.NoError(t, err)

	deletes := f.callsMatching("DELETE", "/users/alice/servers/app-1234567")
	require.Len(t, deletes, 2)
	assert.Equal(t, "remove=false", deletes[0].query)
	assert.Equal(t, "remove=true", deletes[1].query)
}

func TestStartServer(t *testing.T) {
	t.Run("empty name starts the default server", func(t *testing.T) {
		f := newFakeHub(t)
		f.addUser(testutil.NewUserBuilder("alice").Build())
		client := f.clientFor("alice")

		_, name, err := client.StartServer(testutil.TestContext(), "alice", "")
		require.NoError(t, err)
		assert.Empty(t, name)
		require.Len(t, f.callsMatching("POST", "/users/alice/servers/"), 1)
	})

	t.Run("own server starts in place", func(t *testing.T) {
		f := newFakeHub(t)
		spec := testutil.NewAppSpecBuilder("App").Build()
		f.addUser(testutil.NewUserBuilder("alice").WithStoppedServer("app-1234567", &spec).Build())
		client := f.clientFor("alice")

		_, name, err := client.StartServer(testutil.TestContext(), "alice", "app-1234567")
		require.NoError(t, err)
		assert.Equal(t, "app-1234567", name)

		require.Len(t, f.creations, 1)
		assert.Equal(t, "App", f.creations[0]["display_name"], "restart reuses the stored options")
	})

	t.Run("shared server starts under its owner", func(t *testing.T) {
		f := newFakeHub(t)
		spec := testutil.NewAppSpecBuilder("Team Dash").Build()
		f.addUser(testutil.NewUserBuilder("alice").WithStoppedServer("team-dash-1234567", &spec).Build())
		f.addUser(testutil.NewUserBuilder("bob").Build())
		client := f.clientFor("bob")

		_, name, err := client.StartServer(testutil.TestContext(), "bob", "team-dash-1234567")
		require.NoError(t, err)
		assert.Equal(t, "team-dash-1234567", name)

		require.Len(t, f.callsMatching("POST", "/users/alice/servers/team-dash-1234567"), 1)
		assert.Empty(t, f.callsMatching("POST", "/users/bob/servers/"))
	})

	t.Run("unknown server anywhere is not found", func(t *testing.T) {
		f := newFakeHub(t)
		f.addUser(testutil.NewUserBuilder("alice").Build())
		client := f.clientFor("alice")

		_, _, err := client.StartServer(testutil.TestContext(), "alice", "nope")
		testutil.AssertAppErrorCode(t, err, errors.ErrCodeNotFound)
	})
}

func TestReconcileShares(t *testing.T) {
	t.Run("revokes everything then grants the desired set", func(t *testing.T) {
		f := newFakeHub(t)
		f.addUser(testutil.NewUserBuilder("alice").Build())
		client := f.clientFor("")

		share := &api.SharePermissions{Users: []string{"bob", "carol"}, Groups: []string{"research"}}
		result, err := client.ReconcileShares(testutil.TestContext(), "alice", "app-1234567", share)
		require.NoError(t, err)
		assert.Len(t, result, 3)

		revokes := f.callsMatching("DELETE", "/shares/alice/app-1234567")
		grants := f.callsMatching("POST", "/shares/alice/app-1234567")
		require.Len(t, revokes, 1)
		require.Len(t, grants, 3)

		// The revoke-all precedes every grant.
		f.mu.Lock()
		sawRevoke := false
		for _, c := range f.calls {
			if c.method == "DELETE" && strings.HasPrefix(c.path, "/shares/") {
				sawRevoke = true
			}
			if c.method == "POST" && strings.HasPrefix(c.path, "/shares/") {
				assert.True(t, sawRevoke, "grant before revoke-all")
			}
		}
		f.mu.Unlock()
	})

	t.Run("grant failures land inline, others still succeed", func(t *testing.T) {
		f := newFakeHub(t)
		f.addUser(testutil.NewUserBuilder("alice").Build())
		f.grantFail["carol"] = true
		client := f.clientFor("")

		share := &api.SharePermissions{Users: []string{"bob", "carol"}}
		result, err := client.ReconcileShares(testutil.TestContext(), "alice", "app-1234567", share)
		require.NoError(t, err)
		require.Len(t, result, 2)

		var doc api.ErrorDocument
		require.NoError(t, json.Unmarshal(result["carol"], &doc))
		assert.Contains(t, doc.DetailOrMessage(), "carol")

		var ok map[string]any
		require.NoError(t, json.Unmarshal(result["bob"], &ok))
		assert.Contains(t, ok, "scopes")
	})

	t.Run("empty permission set is a no-op", func(t *testing.T) {
		f := newFakeHub(t)
		client := f.clientFor("")

		result, err := client.ReconcileShares(testutil.TestContext(), "alice", "app-1234567", nil)
		require.NoError(t, err)
		assert.Empty(t, result)
		assert.Empty(t, f.calls)
	})
}

func TestGetSharedServers(t *testing.T) {
	t.Run("old hub yields empty list without listing", func(t *testing.T) {
		f := newFakeHub(t)
		f.version = "4.1.0"
		client := f.clientFor("")

		shared, err := client.GetSharedServers(testutil.TestContext(), "bob")
		require.NoError(t, err)
		assert.Empty(t, shared)
		assert.Empty(t, f.callsMatching("GET", "/users/bob/shared"))
	})

	t.Run("excludes the user's own servers", func(t *testing.T) {
		f := newFakeHub(t)
		own := api.SharedServer{}
		own.Server.Name = "mine-1234567"
		own.Server.User.Name = "bob"
		incoming := api.SharedServer{}
		incoming.Server.Name = "team-dash-1234567"
		incoming.Server.User.Name = "alice"
		f.shared["bob"] = []api.SharedServer{own, incoming}
		client := f.clientFor("")

		shared, err := client.GetSharedServers(testutil.TestContext(), "bob")
		require.NoError(t, err)
		require.Len(t, shared, 1)
		assert.Equal(t, "alice", shared[0].Server.User.Name)
	})

	t.Run("probe result is cached per client", func(t *testing.T) {
		f := newFakeHub(t)
		client := f.clientFor("")

		_, err := client.GetSharedServers(testutil.TestContext(), "bob")
		require.NoError(t, err)
		_, err = client.GetSharedServers(testutil.TestContext(), "bob")
		require.NoError(t, err)

		f.mu.Lock()
		probes := 0
		for _, c := range f.calls {
			if c.method == "GET" && c.path == "/" {
				probes++
			}
		}
		f.mu.Unlock()
		assert.Equal(t, 1, probes, "version probed once per client")
	})
}
