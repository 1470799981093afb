package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"axiapac.com/timeclock/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGeofenceCommand(t *testing.T) {
	out, err := run(t, "geofence", "--center", "0,0", "--position", "0.001,0")
	require.NoError(t, err)
	assert.Equal(t, "distance=111.2m radius=100m exited=true\n", out)

	out, err = run(t, "geofence", "--center", "0,0", "--position", "0.0005,0", "--radius", "150")
	require.NoError(t, err)
	assert.Contains(t, out, "exited=false")

	_, err = run(t, "geofence", "--center", "0")
	assert.Error(t, err)
}

func TestStartRequiresProjectAndLocation(t *testing.T) {
	_, err := run(t, "start")
	assert.EqualError(t, err, "select a project")

	_, err = run(t, "start", "--project", "p1")
	assert.EqualError(t, err, "confirm your location")

	_, err = run(t, "start", "--project", "p1", "--lat", "1", "--lng", "2")
	assert.EqualError(t, err, "a photo is required")
}

func TestLoginRequiresUsername(t *testing.T) {
	_, err := run(t, "login")
	assert.EqualError(t, err, "--username is required")
}

type apiCall struct {
	method string
	path   string
	body   string
}

// signedIn points the CLI at a fake API and stores credentials for the given role.
func signedIn(t *testing.T, roleName string, reply func(r *http.Request) string) (*[]apiCall, []string) {
	t.Helper()
	var calls []apiCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, apiCall{r.Method, r.URL.Path, string(b)})
		w.Write([]byte(reply(r)))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	require.NoError(t, security.NewFileCredentialStore(dir).Save(security.Credentials{
		Token: "tok", UserID: "u-1", Role: roleName,
	}))
	t.Setenv("TIMECLOCK_API_URL", srv.URL)
	t.Setenv("TIMECLOCK_STATE_DIR", dir)
	flags := []string{"--config", filepath.Join(dir, "none.yaml"), "--env-file", filepath.Join(dir, "none.env")}
	return &calls, flags
}

func TestUsersCommandsRequireAdmin(t *testing.T) {
	calls, flags := signedIn(t, "field", func(*http.Request) string { return "[]" })

	_, err := run(t, append([]string{"users"}, flags...)...)
	assert.EqualError(t, err, "admin role required")
	_, err = run(t, append([]string{"projects", "delete", "p-1"}, flags...)...)
	assert.EqualError(t, err, "admin role required")
	assert.Empty(t, *calls)
}

func TestUserCreateCommand(t *testing.T) {
	calls, flags := signedIn(t, "admin", func(*http.Request) string {
		return `{"id":"u-9","username":"ben","email":"ben@site.io","role":"office"}`
	})

	_, err := run(t, append([]string{"users", "create", "--username", "ben", "--password", "pw", "--role", "boss"}, flags...)...)
	assert.EqualError(t, err, `unknown role "boss"`)

	out, err := run(t, append([]string{"users", "create", "--username", "ben", "--email", "ben@site.io", "--password", "pw", "--role", "office"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "u-9\tben\tben@site.io\toffice\n", out)
	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodPost, (*calls)[0].method)
	assert.Equal(t, "/admin/users", (*calls)[0].path)
	assert.Contains(t, (*calls)[0].body, "ben@site.io")
}

func TestProjectUpdateSendsOnlyChangedFields(t *testing.T) {
	calls, flags := signedIn(t, "admin", func(*http.Request) string {
		return `{"id":"p-1","name":"Depot","status":"finished","city":"Brisbane"}`
	})

	_, err := run(t, append([]string{"projects", "update", "p-1", "--status", "closed"}, flags...)...)
	assert.EqualError(t, err, `unknown project status "closed"`)

	_, err = run(t, append([]string{"projects", "update", "p-1", "--status", "finished", "--city", "Brisbane"}, flags...)...)
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodPut, (*calls)[0].method)
	assert.Equal(t, "/projects/p-1", (*calls)[0].path)
	assert.JSONEq(t, `{"status":"finished","city":"Brisbane"}`, (*calls)[0].body)
}

func TestClockinModifyAndLocations(t *testing.T) {
	calls, flags := signedIn(t, "admin", func(r *http.Request) string {
		if r.Method == http.MethodGet {
			return `[{"id":"l-1","user_id":"u-1","username":"ana","latitude":1.5,"longitude":2.5,"timestamp":"2024-05-01T08:05:00"}]`
		}
		return `{"id":"c-1","start_time":"2024-05-01T08:00:00"}`
	})

	out, err := run(t, append([]string{"clockins", "modify", "c-1", "--hours", "7.5"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "clock-in c-1 set to 7.50 hours\n", out)

	out, err = run(t, append([]string{"locations", "--clockin", "c-1"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "1.500000")

	require.Len(t, *calls, 2)
	assert.Equal(t, apiCall{http.MethodPatch, "/clockins/modify/c-1", `{"hours":7.5}`}, (*calls)[0])
	assert.Equal(t, "/locations/clockin/c-1", (*calls)[1].path)
}
