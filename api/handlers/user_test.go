package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/character8/medicx-clinic-central-main/api/handlers"
	"github.com/character8/medicx-clinic-central-main/databases/mocks"
	"github.com/character8/medicx-clinic-central-main/models"
)

func TestUser_UserCreateHandler(t *testing.T) {
	userDB := mocks.NewUserDatabase(t)
	userDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	userDB.On("InsertOne", mock.Anything, mock.AnythingOfType("models.User")).Return(nil, nil)

	u := handlers.User{DB: userDB}

	body := `{"username": "pharmacy1", "password": "s3cret-pass", "role": "pharmacy"}`
	req := httptest.NewRequest("POST", "/api/v1/user", strings.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var info models.UserInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, "pharmacy1", info.Username)
	assert.Equal(t, models.RolePharmacy, info.Role)

	// neither the plaintext password nor the hash leaks into the response
	assert.NotContains(t, rr.Body.String(), "s3cret-pass")
	assert.NotContains(t, rr.Body.String(), "password")
}

func TestUser_UserCreateHandlerDuplicateUsername(t *testing.T) {
	userDB := mocks.NewUserDatabase(t)
	userDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)

	u := handlers.User{DB: userDB}

	body := `{"username": "pharmacy1", "password": "s3cret-pass", "role": "pharmacy"}`
	req := httptest.NewRequest("POST", "/api/v1/user", strings.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestUser_UserCreateHandlerValidation(t *testing.T) {
	u := handlers.User{}

	cases := []string{
		`{"password": "s3cret-pass", "role": "pharmacy"}`,
		`{"username": "x", "password": "short", "role": "pharmacy"}`,
		`{"username": "x", "password": "s3cret-pass", "role": "janitor"}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest("POST", "/api/v1/user", strings.NewReader(body))
		rr := httptest.NewRecorder()

		http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	}
}
