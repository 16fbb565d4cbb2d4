package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/pitchbase/internal/handlers/testutil"
	"github.com/charlesng35/pitchbase/internal/models"
)

func TestProfileEndpointsRequireToken(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/profiles/", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := testutil.Decode[testutil.ErrorResponse](t, w)
	require.Equal(t, "Missing token", body.DetailString())

	w = env.Request(http.MethodGet, "/profiles/", nil, "not-a-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	body = testutil.Decode[testutil.ErrorResponse](t, w)
	require.Equal(t, "Invalid token", body.DetailString())

	req := httptest.NewRequest(http.MethodGet, "/profiles/", nil)
	req.Header.Set("Authorization", "Basic cGV0cjpwdw==")
	w = env.Do(req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Missing token", testutil.Decode[testutil.ErrorResponse](t, w).DetailString())
}

func TestCreateProfileIsIdempotent(t *testing.T) {
	env := testutil.NewEnv(t)

	first := env.CreateProfile(testutil.PetrToken)
	require.Equal(t, "petr@indiepitcher.com", first["email"])
	require.Equal(t, "Petr", first["name"])
	require.Contains(t, first, "avatar_url")
	require.NotEmpty(t, first["id"])

	second := env.CreateProfile(testutil.PetrToken)
	require.Equal(t, first["id"], second["id"])

	var profiles, orgs, memberships int64
	require.NoError(t, env.DB.Model(&models.Profile{}).Count(&profiles).Error)
	require.NoError(t, env.DB.Model(&models.Organization{}).Count(&orgs).Error)
	require.NoError(t, env.DB.Model(&models.OrganizationMembership{}).Count(&memberships).Error)
	require.Equal(t, int64(1), profiles)
	require.Equal(t, int64(1), orgs)
	require.Equal(t, int64(1), memberships)

	var org models.Organization
	require.NoError(t, env.DB.First(&org).Error)
	require.Equal(t, "Petr's Organization", org.Name)

	var membership models.OrganizationMembership
	require.NoError(t, env.DB.First(&membership).Error)
	require.Equal(t, models.RoleAdmin, membership.Role)

	created, identified, _ := env.Events.Snapshot()
	require.Equal(t, []string{"petr@indiepitcher.com"}, created)
	require.Equal(t, []string{"petr@indiepitcher.com"}, identified)
}

func TestCreateProfileWithoutTrailingSlash(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/profiles", nil, testutil.JohnToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.Request(http.MethodGet, "/profiles", nil, testutil.JohnToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "john@indiepitcher.com", testutil.Decode[map[string]any](t, w)["email"])
}

func TestCreateProfileStoresSignupAttribution(t *testing.T) {
	env := testutil.NewEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/profiles/", nil)
	req.Header.Set("Authorization", "Bearer "+testutil.PetrToken)
	req.Header.Set("Cookie", "session=secret")
	req.Header.Set("User-Agent", "pitch-tests/1.0")
	req.Header.Set("Referer", "https://news.ycombinator.com")
	w := env.Do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var profile models.Profile
	require.NoError(t, env.DB.First(&profile).Error)
	require.Equal(t, "pitch-tests/1.0", profile.SignupAttribution["user-agent"])
	require.Equal(t, "https://news.ycombinator.com", profile.SignupAttribution["referer"])
	require.Equal(t, "192.0.2.1", profile.SignupAttribution["client_ip"])
	require.NotContains(t, profile.SignupAttribution, "authorization")
	require.NotContains(t, profile.SignupAttribution, "cookie")

	w = env.Request(http.MethodGet, "/profiles/", nil, testutil.PetrToken)
	require.NotContains(t, w.Body.String(), "signup_attribution")
}

func TestGetProfileBeforeCreation(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/profiles/", nil, testutil.PetrToken)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Profile not found", testutil.Decode[testutil.ErrorResponse](t, w).DetailString())

	w = env.Request(http.MethodDelete, "/profiles/", nil, testutil.PetrToken)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestBannedProfileIsForbidden(t *testing.T) {
	env := testutil.NewEnv(t)
	env.CreateProfile(testutil.PetrToken)

	require.NoError(t, env.DB.Model(&models.Profile{}).
		Where("email = ?", "petr@indiepitcher.com").
		Update("banned_at", time.Now().UTC()).Error)

	for _, method := range []string{http.MethodPost, http.MethodGet, http.MethodDelete} {
		w := env.Request(method, "/profiles/", nil, testutil.PetrToken)
		require.Equal(t, http.StatusForbidden, w.Code, method)
		require.Equal(t, "Profile is banned", testutil.Decode[testutil.ErrorResponse](t, w).DetailString())
	}

	w := env.Request(http.MethodGet, "/organizations/", nil, testutil.PetrToken)
	require.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.Profile{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestDeleteProfileRemovesSoleAdminOrganizations(t *testing.T) {
	env := testutil.NewEnv(t)

	petr := env.CreateProfile(testutil.PetrToken)
	john := env.CreateProfile(testutil.JohnToken)

	shared := env.CreateOrganization(testutil.PetrToken, "Shared")
	require.NoError(t, env.DB.Create(&models.OrganizationMembership{
		ProfileID:      john["id"].(string),
		OrganizationID: shared,
		Role:           models.RoleAdmin,
		JoinedAt:       time.Now().UTC(),
	}).Error)

	w := env.Request(http.MethodDelete, "/profiles/", nil, testutil.PetrToken)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	require.Empty(t, w.Body.String())

	w = env.Request(http.MethodGet, "/profiles/", nil, testutil.PetrToken)
	require.Equal(t, http.StatusNotFound, w.Code)

	var orgNames []string
	require.NoError(t, env.DB.Model(&models.Organization{}).Order("name").Pluck("name", &orgNames).Error)
	require.Equal(t, []string{"John's Organization", "Shared"}, orgNames)

	var memberships int64
	require.NoError(t, env.DB.Model(&models.OrganizationMembership{}).
		Where("profile_id = ?", petr["id"]).Count(&memberships).Error)
	require.Zero(t, memberships)

	_, _, deleted := env.Events.Snapshot()
	require.Equal(t, []string{petr["id"].(string)}, deleted)

	// Signing in again starts from scratch.
	again := env.CreateProfile(testutil.PetrToken)
	require.NotEqual(t, petr["id"], again["id"])
}
