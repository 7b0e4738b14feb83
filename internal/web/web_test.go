package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/cityhunt/cityhunt/internal/client"
	"github.com/cityhunt/cityhunt/internal/hunttest"
	"github.com/cityhunt/cityhunt/internal/testutil"
	"github.com/cityhunt/cityhunt/internal/web"
	"github.com/cityhunt/cityhunt/internal/web/sessions"
)

// webTestServer drives the gateway against an in-memory hunt backend
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	backend *hunttest.Server
	cookies *cookieJar
}

// newWebTestServer wires the gateway to a fresh backend
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	backend := hunttest.New()
	apiSrv := httptest.NewServer(backend.Handler())
	t.Cleanup(apiSrv.Close)

	router := web.NewRouter(web.RouterConfig{
		Logger:   testutil.NopLogger(),
		API:      client.New(apiSrv.URL+"/api", client.NoToken),
		Sessions: sessions.NewMemoryStore(),
	})

	return &webTestServer{
		t:       t,
		handler: router,
		backend: backend,
		cookies: newCookieJar(),
	}
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil)
}

// post makes a POST request with form data
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form)
}

// followRedirect follows the Location header of a redirect response
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "Expected a redirect to follow")
	return ts.get(location)
}

// loginPlayer logs in as a player via the login form
func (ts *webTestServer) loginPlayer(email string) {
	ts.t.Helper()
	rr := ts.post("/login", url.Values{"email": {email}})
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after login")
	require.Equal(ts.t, "/hunt", rr.Header().Get("Location"))
	require.True(ts.t, ts.cookies.hasSession(), "Expected session cookie to be set")
}

// loginAdmin logs in as the operator via the admin login form
func (ts *webTestServer) loginAdmin() {
	ts.t.Helper()
	rr := ts.post("/admin/login", url.Values{
		"username": {hunttest.DefaultAdminUsername},
		"password": {hunttest.DefaultAdminPassword},
	})
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after admin login")
	require.Equal(ts.t, "/admin", rr.Header().Get("Location"))
	require.True(ts.t, ts.cookies.hasSession(), "Expected session cookie to be set")
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// assertContainsText asserts that the selected element contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	sel := doc.Find(selector)
	require.Positive(t, sel.Length(), "Expected to find element %q", selector)
	require.Contains(t, sel.Text(), text)
}

// assertContainsElement asserts that the selector matches at least one element
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	require.Positive(t, doc.Find(selector).Length(), "Expected to find element %q", selector)
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// hasSession returns true if the session cookie is set
func (j *cookieJar) hasSession() bool {
	_, ok := j.cookies["session"]
	return ok
}
