package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tripreel-service/internal/domain/auth"
	"tripreel-service/internal/middleware"
	xerrors "tripreel-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// subjectToken treats any token as the subject it names.
type subjectToken struct{}

func (subjectToken) Validate(token string) (string, bool) { return token, token != "" }

type stubService struct {
	identity  *auth.Identity
	err       error
	gotPatch  auth.ProfilePatch
	gotActor  string
	gotTarget string
}

func (s *stubService) GetMe(context.Context, string) (*auth.Identity, error) {
	return s.identity, s.err
}

func (s *stubService) PatchProfile(_ context.Context, _ string, patch auth.ProfilePatch) (*auth.Identity, error) {
	s.gotPatch = patch
	return s.identity, s.err
}

func (s *stubService) ChangePassword(context.Context, string, *auth.ChangePasswordRequest) error {
	return s.err
}

func (s *stubService) DeleteAccount(context.Context, string) error { return s.err }

func (s *stubService) PromoteToAdmin(_ context.Context, actorID, targetID string) error {
	s.gotActor, s.gotTarget = actorID, targetID
	return s.err
}

func newEngine(svc Service) *gin.Engine {
	h := NewUserHandler(svc, zap.NewNop())
	r := gin.New()
	r.Use(middleware.NewAuthenticator(subjectToken{}, nil, zap.NewNop()).Handler())
	r.GET("/users/me", h.GetMe)
	r.PATCH("/users/me", h.PatchProfile)
	r.PATCH("/users/me/password", h.ChangePassword)
	r.DELETE("/users/me", h.DeleteAccount)
	r.PATCH("/admin/users/:id/role", h.PromoteUser)
	return r
}

func do(r *gin.Engine, method, path, subject, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+subject)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleIdentity() *auth.Identity {
	return &auth.Identity{
		ID: "traveler01", PasswordHash: "$2a$secret", Name: "Kim", Nickname: "wanderer",
		Phone: "01012345678", Email: "kim@example.com", Seq: 3, Role: auth.RoleUser, Status: auth.StatusActive,
	}
}

func TestGetMe(t *testing.T) {
	w := do(newEngine(&stubService{identity: sampleIdentity()}), http.MethodGet, "/users/me", "traveler01", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"nickname":"wanderer"`)
	assert.NotContains(t, w.Body.String(), "$2a$secret")

	w = do(newEngine(&stubService{err: xerrors.ErrNotFound}), http.MethodGet, "/users/me", "ghost", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"code":"NU","message":"This user does not exist"}`, w.Body.String())
}

func TestPatchProfile(t *testing.T) {
	svc := &stubService{identity: sampleIdentity()}
	w := do(newEngine(svc), http.MethodPatch, "/users/me", "traveler01", `{"nickname":"nomad"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.gotPatch.Nickname)
	assert.Equal(t, "nomad", *svc.gotPatch.Nickname)
	assert.Nil(t, svc.gotPatch.Email)

	w = do(newEngine(&stubService{}), http.MethodPatch, "/users/me", "traveler01", `{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"code":"VF","message":"Validation Failed"}`, w.Body.String())

	w = do(newEngine(&stubService{err: xerrors.ErrDuplicateNickname}), http.MethodPatch, "/users/me", "traveler01", `{"nickname":"taken"}`)
	assert.JSONEq(t, `{"code":"DN","message":"Duplicate Nickname"}`, w.Body.String())
}

func TestPatchProfile_Phone(t *testing.T) {
	for _, phone := range []string{"+1012345678", "-1012345678", "0101234.5678", "0101234567.0", "0101234"} {
		t.Run(phone, func(t *testing.T) {
			svc := &stubService{identity: sampleIdentity()}
			w := do(newEngine(svc), http.MethodPatch, "/users/me", "traveler01", `{"phone":"`+phone+`"}`)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"code":"VF","message":"Validation Failed"}`, w.Body.String())
			assert.Nil(t, svc.gotPatch.Phone)
		})
	}

	svc := &stubService{identity: sampleIdentity()}
	w := do(newEngine(svc), http.MethodPatch, "/users/me", "traveler01", `{"phone":"01098765432"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.gotPatch.Phone)
	assert.Equal(t, "01098765432", *svc.gotPatch.Phone)
}

func TestPatchProfile_Avatar(t *testing.T) {
	svc := &stubService{identity: sampleIdentity()}
	w := do(newEngine(svc), http.MethodPatch, "/users/me", "traveler01", `{"avatar_url":""}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.gotPatch.AvatarURL)
	assert.Empty(t, *svc.gotPatch.AvatarURL)

	svc = &stubService{identity: sampleIdentity()}
	w = do(newEngine(svc), http.MethodPatch, "/users/me", "traveler01", `{"avatar_url":"https://cdn.example.com/a.png"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://cdn.example.com/a.png", *svc.gotPatch.AvatarURL)

	w = do(newEngine(&stubService{}), http.MethodPatch, "/users/me", "traveler01", `{"avatar_url":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangePassword(t *testing.T) {
	body := `{"current_password":"abc123!@","new_password":"new123!@"}`

	w := do(newEngine(&stubService{}), http.MethodPatch, "/users/me/password", "traveler01", body)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(newEngine(&stubService{err: xerrors.ErrWrongPassword}), http.MethodPatch, "/users/me/password", "traveler01", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"code":"WP","message":"Wrong Password"}`, w.Body.String())
}

func TestDeleteAccount(t *testing.T) {
	w := do(newEngine(&stubService{}), http.MethodDelete, "/users/me", "traveler01", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":"SU","message":"Success"}`, w.Body.String())
}

func TestPromoteUser(t *testing.T) {
	svc := &stubService{}
	w := do(newEngine(svc), http.MethodPatch, "/admin/users/traveler01/role", "root", `{"role":"ADMIN"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "root", svc.gotActor)
	assert.Equal(t, "traveler01", svc.gotTarget)

	// Only promotion to ADMIN is accepted.
	w = do(newEngine(&stubService{}), http.MethodPatch, "/admin/users/traveler01/role", "root", `{"role":"USER"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(newEngine(&stubService{err: xerrors.ErrNotFound}), http.MethodPatch, "/admin/users/ghost/role", "root", `{"role":"ADMIN"}`)
	assert.JSONEq(t, `{"code":"NU","message":"This user does not exist"}`, w.Body.String())
}
