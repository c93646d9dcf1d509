package test

import (
	"fmt"
	"net/http"

	"github.com/2beens/weighttracker/internal/users"
)

func (s *IntegrationTestSuite) TestUsers() {
	var list []users.User
	s.Equal(http.StatusOK, s.doRequest("GET", "/api/users", nil, &list))
	s.Empty(list)

	var ana users.User
	s.Equal(http.StatusCreated, s.doRequest("POST", "/api/users", map[string]string{"name": "  Ana "}, &ana))
	s.Equal("Ana", ana.Name)
	s.Positive(ana.ID)

	s.Equal(http.StatusConflict, s.doRequest("POST", "/api/users", map[string]string{"name": "Ana"}, nil))
	s.Equal(http.StatusBadRequest, s.doRequest("POST", "/api/users", map[string]string{"name": "   "}, nil))

	var bob users.User
	s.Equal(http.StatusCreated, s.doRequest("POST", "/api/users", map[string]string{"name": "Bob"}, &bob))

	s.Equal(http.StatusOK, s.doRequest("GET", "/api/users", nil, &list))
	s.Len(list, 2)

	var got users.User
	s.Equal(http.StatusOK, s.doRequest("GET", fmt.Sprintf("/api/users/%d", bob.ID), nil, &got))
	s.Equal("Bob", got.Name)

	s.Equal(http.StatusNoContent, s.doRequest("DELETE", fmt.Sprintf("/api/users/%d", bob.ID), nil, nil))
	s.Equal(http.StatusNotFound, s.doRequest("DELETE", fmt.Sprintf("/api/users/%d", bob.ID), nil, nil))
	s.Equal(http.StatusNotFound, s.doRequest("GET", fmt.Sprintf("/api/users/%d", bob.ID), nil, nil))
	s.Equal(http.StatusBadRequest, s.doRequest("GET", "/api/users/abc", nil, nil))

	var count int
	s.Require().NoError(s.DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	s.Equal(1, count)
}
