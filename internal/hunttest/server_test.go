package hunttest_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityhunt/cityhunt/internal/client"
	"github.com/cityhunt/cityhunt/internal/hunttest"
	"github.com/cityhunt/cityhunt/internal/model"
	"github.com/cityhunt/cityhunt/internal/testutil"
)

func newServer(t *testing.T) (*hunttest.Server, *client.Client) {
	t.Helper()
	backend := hunttest.New(hunttest.WithLogger(testutil.VerboseLogger(t)))
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return backend, client.New(srv.URL+"/api", client.NoToken)
}

func playerClient(t *testing.T, backend *hunttest.Server, api *client.Client, email string) *client.Client {
	t.Helper()
	return api.WithTokens(client.StaticToken(backend.TokenFor(email, "")))
}

func TestLoginCreatesAndReusesPlayer(t *testing.T) {
	_, api := newServer(t)

	first, err := api.Login(context.Background(), "alice@example.com", "")
	require.NoError(t, err)
	require.NotEmpty(t, first.Token)
	require.NotNil(t, first.User)
	assert.Equal(t, "alice@example.com", first.User.Email)
	assert.Equal(t, 1, first.User.CurrentStep)

	second, err := api.Login(context.Background(), "alice@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.NotEqual(t, first.Token, second.Token)
}

func TestLoginRequiresContact(t *testing.T) {
	_, api := newServer(t)

	_, err := api.Login(context.Background(), "", "")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "Email or phone number required", apiErr.Message)
}

func TestAdminLogin(t *testing.T) {
	_, api := newServer(t)

	resp, err := api.AdminLogin(context.Background(), hunttest.DefaultAdminUsername, hunttest.DefaultAdminPassword)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, hunttest.DefaultAdminUsername, resp.Admin.Username)

	_, err = api.AdminLogin(context.Background(), hunttest.DefaultAdminUsername, "wrong")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestMeDistinguishesRoles(t *testing.T) {
	backend, api := newServer(t)

	player := playerClient(t, backend, api, "bob@example.com")
	me, err := player.Me(context.Background())
	require.NoError(t, err)
	require.NotNil(t, me.User)
	assert.Nil(t, me.Admin)
	assert.Equal(t, "bob@example.com", me.User.Email)

	admin := api.WithTokens(client.StaticToken(backend.AdminToken()))
	me, err = admin.Me(context.Background())
	require.NoError(t, err)
	require.NotNil(t, me.Admin)
	assert.Nil(t, me.User)
}

func TestMeRejectsGarbageToken(t *testing.T) {
	_, api := newServer(t)

	_, err := api.WithTokens(client.StaticToken("tok_bogus")).Me(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestHuntEndpointsRejectAdminToken(t *testing.T) {
	backend, api := newServer(t)

	admin := api.WithTokens(client.StaticToken(backend.AdminToken()))
	_, err := admin.CurrentStep(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestAdminEndpointsRejectPlayerToken(t *testing.T) {
	backend, api := newServer(t)

	player := playerClient(t, backend, api, "carol@example.com")
	_, err := player.AdminUsers(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
}

func TestCurrentStepHidesQRValue(t *testing.T) {
	backend, api := newServer(t)

	player := playerClient(t, backend, api, "dave@example.com")
	resp, err := player.CurrentStep(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.Step)
	assert.Equal(t, 1, resp.Step.ID)
	assert.NotEmpty(t, resp.Step.Clue)
	assert.Empty(t, resp.Step.QRValue)
	require.NotNil(t, resp.Progress)
	assert.Equal(t, model.TotalSteps, resp.Progress.Total)
}

func TestScanAdvancesOnMatch(t *testing.T) {
	backend, api := newServer(t)
	player := playerClient(t, backend, api, "erin@example.com")

	wrong, err := player.ScanQR(context.Background(), "NOT_A_REAL_CODE")
	require.NoError(t, err)
	assert.False(t, wrong.Success)
	assert.Equal(t, "Wrong location – try again!", wrong.Message)

	steps := hunttest.SeedSteps()
	right, err := player.ScanQR(context.Background(), steps[0].QRValue)
	require.NoError(t, err)
	assert.True(t, right.Success)
	assert.Equal(t, "Correct! Moving to next clue.", right.Message)
	require.NotNil(t, right.NextStep)
	assert.Equal(t, 2, right.NextStep.ID)
	assert.False(t, right.CompletedHunt)
}

func TestScanFinalStepCompletesHunt(t *testing.T) {
	backend, api := newServer(t)
	player := playerClient(t, backend, api, "frank@example.com")

	var last *client.ScanResponse
	for _, step := range hunttest.SeedSteps() {
		resp, err := player.ScanQR(context.Background(), step.QRValue)
		require.NoError(t, err)
		require.True(t, resp.Success, "step %d", step.ID)
		last = resp
	}

	assert.True(t, last.CompletedHunt)
	assert.Nil(t, last.NextStep)

	current, err := player.CurrentStep(context.Background())
	require.NoError(t, err)
	assert.True(t, current.Completed)
	assert.Nil(t, current.Step)
}

func TestRevealLocation(t *testing.T) {
	backend, api := newServer(t)
	player := playerClient(t, backend, api, "gina@example.com")

	resp, err := player.RevealLocation(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Revealed)
	assert.Equal(t, "Location revealed: "+resp.Location, resp.Message)

	// Revealing twice records the location once
	_, err = player.RevealLocation(context.Background())
	require.NoError(t, err)

	current, err := player.CurrentStep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, current.Progress.RevealedLocations)
}

func TestProgressHidesFutureClues(t *testing.T) {
	backend, api := newServer(t)
	player := playerClient(t, backend, api, "hank@example.com")

	steps := hunttest.SeedSteps()
	_, err := player.ScanQR(context.Background(), steps[0].QRValue)
	require.NoError(t, err)

	resp, err := player.Progress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.CurrentStep)
	assert.Equal(t, 1, resp.CompletedCount)
	assert.False(t, resp.CompletedHunt)
	require.Len(t, resp.Steps, model.TotalSteps)

	assert.True(t, resp.Steps[0].Completed)
	assert.NotEmpty(t, resp.Steps[0].Clue)
	assert.True(t, resp.Steps[1].Current)
	assert.NotEmpty(t, resp.Steps[1].Clue)
	assert.Empty(t, resp.Steps[2].Clue)
}

func TestAdminUsersListsProgress(t *testing.T) {
	backend, api := newServer(t)
	player := playerClient(t, backend, api, "ivy@example.com")

	steps := hunttest.SeedSteps()
	_, err := player.ScanQR(context.Background(), steps[0].QRValue)
	require.NoError(t, err)

	admin := api.WithTokens(client.StaticToken(backend.AdminToken()))
	resp, err := admin.AdminUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Users, 1)

	u := resp.Users[0]
	assert.Equal(t, "ivy@example.com", u.Email)
	assert.Equal(t, 2, u.CurrentStep)
	assert.Equal(t, 1, u.CompletedCount)
	assert.InDelta(t, 100.0/model.TotalSteps, u.ProgressPercentage, 0.01)
	require.NotNil(t, u.LatestScan)
	assert.True(t, u.LatestScan.Success)
}

func TestAdminStats(t *testing.T) {
	backend, api := newServer(t)
	player := playerClient(t, backend, api, "jack@example.com")

	steps := hunttest.SeedSteps()
	_, err := player.ScanQR(context.Background(), "WRONG")
	require.NoError(t, err)
	_, err = player.ScanQR(context.Background(), steps[0].QRValue)
	require.NoError(t, err)

	admin := api.WithTokens(client.StaticToken(backend.AdminToken()))
	resp, err := admin.AdminStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalUsers)
	assert.Equal(t, 2, resp.TotalScans)
	assert.Equal(t, 1, resp.SuccessfulScans)
	assert.Equal(t, 0, resp.CompletedUsers)
	require.Len(t, resp.StepStats, model.TotalSteps)
	assert.Equal(t, 1, resp.StepStats[0].CompletedCount)
}

func TestAdminEventsFiltering(t *testing.T) {
	backend, api := newServer(t)
	player := playerClient(t, backend, api, "kate@example.com")

	steps := hunttest.SeedSteps()
	_, err := player.ScanQR(context.Background(), "WRONG")
	require.NoError(t, err)
	_, err = player.ScanQR(context.Background(), steps[0].QRValue)
	require.NoError(t, err)

	admin := api.WithTokens(client.StaticToken(backend.AdminToken()))

	all, err := admin.AdminEvents(context.Background(), client.EventFilter{})
	require.NoError(t, err)
	require.Len(t, all.Events, 2)
	// Newest first
	assert.True(t, all.Events[0].Success)
	assert.Equal(t, steps[0].Name, all.Events[0].StepName)
	assert.Equal(t, "kate@example.com", all.Events[0].UserEmail)

	successes, err := admin.AdminEvents(context.Background(), client.EventFilter{SuccessOnly: true})
	require.NoError(t, err)
	require.Len(t, successes.Events, 1)
	assert.True(t, successes.Events[0].Success)

	limited, err := admin.AdminEvents(context.Background(), client.EventFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited.Events, 1)
}

func TestAdminResetUser(t *testing.T) {
	backend, api := newServer(t)
	player := playerClient(t, backend, api, "liam@example.com")

	steps := hunttest.SeedSteps()
	_, err := player.ScanQR(context.Background(), steps[0].QRValue)
	require.NoError(t, err)

	admin := api.WithTokens(client.StaticToken(backend.AdminToken()))
	users, err := admin.AdminUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users.Users, 1)

	resp, err := admin.ResetUser(context.Background(), users.Users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.User.CurrentStep)
	assert.Empty(t, resp.User.CompletedSteps)

	_, err = admin.ResetUser(context.Background(), "no-such-user")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

func TestAdminSkipStep(t *testing.T) {
	backend, api := newServer(t)
	playerClient(t, backend, api, "mia@example.com")

	admin := api.WithTokens(client.StaticToken(backend.AdminToken()))
	users, err := admin.AdminUsers(context.Background())
	require.NoError(t, err)
	id := users.Users[0].ID

	resp, err := admin.SkipStep(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.User.CurrentStep)
	assert.Equal(t, []int{1}, resp.User.CompletedSteps)

	for i := 0; i < model.TotalSteps-1; i++ {
		resp, err = admin.SkipStep(context.Background(), id)
		require.NoError(t, err)
	}
	assert.Len(t, resp.User.CompletedSteps, model.TotalSteps)

	_, err = admin.SkipStep(context.Background(), id)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
}

func TestAdminUpdateStep(t *testing.T) {
	backend, api := newServer(t)
	admin := api.WithTokens(client.StaticToken(backend.AdminToken()))

	newValue := "ROTATED_VALUE_001"
	resp, err := admin.UpdateStep(context.Background(), 1, client.StepUpdateRequest{QRValue: &newValue})
	require.NoError(t, err)
	assert.Equal(t, newValue, resp.Step.QRValue)

	// Players must now scan the rotated value
	player := playerClient(t, backend, api, "noah@example.com")
	scan, err := player.ScanQR(context.Background(), hunttest.SeedSteps()[0].QRValue)
	require.NoError(t, err)
	assert.False(t, scan.Success)

	scan, err = player.ScanQR(context.Background(), newValue)
	require.NoError(t, err)
	assert.True(t, scan.Success)

	_, err = admin.UpdateStep(context.Background(), 99, client.StepUpdateRequest{QRValue: &newValue})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}
