package web_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityhunt/cityhunt/internal/hunttest"
)

func TestAdminDashboardListsPlayers(t *testing.T) {
	ts := newWebTestServer(t)

	// Seed a player directly on the backend
	ts.backend.TokenFor("alice@example.com", "")

	ts.loginAdmin()

	rr := ts.get("/admin")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#admin-username", hunttest.DefaultAdminUsername)
	assertContainsText(t, doc, "#users", "alice@example.com")
	assertContainsText(t, doc, "#stat-users", "1")
}

func TestAdminDashboardEmpty(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginAdmin()

	rr := ts.get("/admin")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "#no-users")
}

func adminUserID(t *testing.T, ts *webTestServer) string {
	t.Helper()
	rr := ts.get("/admin")
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	id, ok := doc.Find("#users tbody tr").First().Attr("data-user-id")
	require.True(t, ok, "Expected a user row with data-user-id")
	return id
}

func TestAdminSkipStep(t *testing.T) {
	ts := newWebTestServer(t)
	ts.backend.TokenFor("bob@example.com", "")
	ts.loginAdmin()

	id := adminUserID(t, ts)

	rr := ts.post("/admin/user/"+id+"/skip", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-success", "Step skipped successfully")
	assertContainsText(t, doc, "#users tbody tr", "2")
}

func TestAdminResetUser(t *testing.T) {
	ts := newWebTestServer(t)
	ts.backend.TokenFor("carol@example.com", "")
	ts.loginAdmin()

	id := adminUserID(t, ts)

	rr := ts.post("/admin/user/"+id+"/skip", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = ts.post("/admin/user/"+id+"/reset", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-success", "User progress reset successfully")
}

func TestAdminResetUnknownUserShowsError(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginAdmin()

	rr := ts.post("/admin/user/no-such-user/reset", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-error", "User not found")
}

func TestAdminActionsRequireAdminRole(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginPlayer("dave@example.com")

	rr := ts.post("/admin/user/someone/reset", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/hunt", rr.Header().Get("Location"))
}

func TestAdminLogout(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginAdmin()

	rr := ts.post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.False(t, ts.cookies.hasSession())

	rr = ts.get("/admin")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestAdminSeesScanActivity(t *testing.T) {
	ts := newWebTestServer(t)

	// Run a player through the first step
	ts.loginPlayer("erin@example.com")
	steps := hunttest.SeedSteps()
	rr := ts.post("/hunt/scan", url.Values{"code": {steps[0].QRValue}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	// Switch the same browser to the admin account
	rr = ts.post("/logout", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	ts.loginAdmin()

	rr = ts.get("/admin")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#stat-scans", "1")
	assertContainsText(t, doc, "#stat-completed", "0")
}
