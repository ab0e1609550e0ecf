package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetdash/fleet-api/api/handlers"
	"github.com/fleetdash/fleet-api/databases/mocks"
	"github.com/fleetdash/fleet-api/models"
)

func TestUser_UserCreateHandlerMissingFields(t *testing.T) {
	body, _ := json.Marshal(map[string]string{"email": "ops@fleetdash.io"})
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	userDatabase := &mocks.UserDatabase{}
	u := handlers.User{DB: userDatabase}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.UserCreateHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	userDatabase.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestUser_UserCreateHandlerDuplicateEmail(t *testing.T) {
	body, _ := json.Marshal(map[string]string{"email": "ops@fleetdash.io", "password": "secret"})
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	existing := &models.User{ID: primitive.NewObjectID(), Email: "ops@fleetdash.io"}

	userDatabase := &mocks.UserDatabase{}
	userDatabase.On("FindOne", mock.Anything, mock.Anything).Return(existing, nil)

	u := handlers.User{DB: userDatabase}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.UserCreateHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	userDatabase.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestUser_UserCreateHandlerSuccess(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"email":    "Ops@FleetDash.io",
		"password": "secret",
		"name":     "Ops Team",
		"roles":    []string{"admin"},
	})
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	userDatabase := &mocks.UserDatabase{}
	userDatabase.On("FindOne", mock.Anything, mock.Anything).Return(nil, errors.New("mongo: no documents in result"))
	userDatabase.On("InsertOne", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		// email lower-cased, password stored hashed
		return u.Email == "ops@fleetdash.io" && u.Password != "secret" && u.Password != ""
	})).Return("mocked-id", nil)

	u := handlers.User{DB: userDatabase}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.UserCreateHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	// the hash never leaves the server
	assert.NotContains(t, rr.Body.String(), "password")

	var got models.User
	err = json.Unmarshal(rr.Body.Bytes(), &got)
	assert.NoError(t, err)
	assert.Equal(t, "ops@fleetdash.io", got.Email)
	assert.Equal(t, []string{"admin"}, got.Roles)
	userDatabase.AssertNumberOfCalls(t, "InsertOne", 1)
}

func TestUser_UserCreateHandlerDefaultRole(t *testing.T) {
	body, _ := json.Marshal(map[string]string{"email": "new@fleetdash.io", "password": "secret"})
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	userDatabase := &mocks.UserDatabase{}
	userDatabase.On("FindOne", mock.Anything, mock.Anything).Return(nil, errors.New("mongo: no documents in result"))
	userDatabase.On("InsertOne", mock.Anything, mock.Anything).Return("mocked-id", nil)

	u := handlers.User{DB: userDatabase}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.UserCreateHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var got models.User
	err = json.Unmarshal(rr.Body.Bytes(), &got)
	assert.NoError(t, err)
	assert.Equal(t, []string{"viewer"}, got.Roles)
}
