package test

import (
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/weighttracker/internal/chart"
	"github.com/2beens/weighttracker/internal/measurements"
	"github.com/2beens/weighttracker/internal/users"
)

func (s *IntegrationTestSuite) addUser(name string) users.User {
	var u users.User
	s.Require().Equal(http.StatusCreated, s.doRequest("POST", "/api/users", map[string]string{"name": name}, &u))
	return u
}

func (s *IntegrationTestSuite) addMeasurement(userID int, at time.Time, weight float64) measurements.Measurement {
	var m measurements.Measurement
	s.Require().Equal(http.StatusCreated, s.doRequest("POST", "/api/measurements", map[string]any{
		"userId":   userID,
		"dateTime": at.Format(time.RFC3339),
		"weight":   weight,
	}, &m))
	return m
}

func (s *IntegrationTestSuite) TestWeightChart() {
	u := s.addUser("Ana")

	s.addMeasurement(u.ID, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), 80)
	s.addMeasurement(u.ID, time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC), 81)
	last := s.addMeasurement(u.ID, time.Date(2024, 3, 3, 7, 30, 0, 0, time.UTC), 79)

	chartPath := fmt.Sprintf("/api/chart/%d?start-date=2024-03-01&end-date=2024-03-05", u.ID)

	var resp chart.Response
	s.Require().Equal(http.StatusOK, s.doRequest("GET", chartPath, nil, &resp))
	s.Equal(measurements.Kind, resp.Kind)
	s.Equal("Ana", resp.User.Name)

	vm := resp.Chart
	s.Require().NotNil(vm)
	s.Require().Len(vm.Slots, 4)
	s.Require().NotNil(vm.Slots[0].Value)
	s.Equal(80.0, *vm.Slots[0].Value)
	s.Nil(vm.Slots[1].Value)
	s.Require().NotNil(vm.Slots[2].Value)
	s.Equal(79.0, *vm.Slots[2].Value)
	s.Nil(vm.Slots[3].Value)

	s.Require().Len(vm.Duplicates, 1)
	s.Equal(2, vm.Duplicates[0].Count)

	s.Require().NotNil(vm.Trend)
	s.InDelta(-0.75, vm.Trend.Slope, 1e-9)
	s.Equal(79.0, vm.Trend.MinValue)
	s.Equal(81.0, vm.Trend.MaxValue)
	s.Equal(79.0, vm.Trend.LastValue)
	s.Equal(chart.DirectionDown, vm.Direction)

	// the cached chart must not survive a write
	s.Equal(http.StatusNoContent, s.doRequest("DELETE", fmt.Sprintf("/api/measurements/%d", last.ID), nil, nil))

	resp = chart.Response{}
	s.Require().Equal(http.StatusOK, s.doRequest("GET", chartPath, nil, &resp))
	s.Nil(resp.Chart.Slots[2].Value)
	s.Nil(resp.Chart.Trend)
	s.Empty(resp.Chart.Direction)
}

func (s *IntegrationTestSuite) TestWeightChart_Errors() {
	u := s.addUser("Ana")

	s.Equal(http.StatusBadRequest, s.doRequest("GET", fmt.Sprintf("/api/chart/%d?start-date=2024-13-01", u.ID), nil, nil))
	s.Equal(http.StatusBadRequest, s.doRequest("GET", fmt.Sprintf("/api/chart/%d?start-date=2024-03-10&end-date=2024-03-01", u.ID), nil, nil))
	s.Equal(http.StatusBadRequest, s.doRequest("GET", fmt.Sprintf("/api/chart/%d?start-date=2020-01-01&end-date=2024-03-01", u.ID), nil, nil))
	s.Equal(http.StatusNotFound, s.doRequest("GET", "/api/chart/9999", nil, nil))
	s.Equal(http.StatusBadRequest, s.doRequest("GET", "/api/chart/x", nil, nil))
}

func (s *IntegrationTestSuite) TestMeasurements() {
	u := s.addUser("Ana")

	s.Equal(http.StatusNotFound, s.doRequest("POST", "/api/measurements", map[string]any{
		"userId": 9999,
		"weight": 70,
	}, nil))
	s.Equal(http.StatusBadRequest, s.doRequest("POST", "/api/measurements", map[string]any{
		"userId": u.ID,
		"weight": -1,
	}, nil))

	s.addMeasurement(u.ID, time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC), 70.5)
	s.addMeasurement(u.ID, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), 71.2)
	s.addMeasurement(u.ID, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), 69.9)

	var list []measurements.Measurement
	s.Require().Equal(http.StatusOK, s.doRequest("GET", fmt.Sprintf(
		"/api/measurements?user_id=%d&start_date=%s&end_date=%s",
		u.ID, "2024-05-01T00:00:00Z", "2024-05-31T23:59:59Z",
	), nil, &list))
	s.Require().Len(list, 2)
	s.Equal(71.2, list[0].Weight.Float64())
	s.Equal(70.5, list[1].Weight.Float64())

	s.Equal(http.StatusBadRequest, s.doRequest("GET", fmt.Sprintf("/api/measurements?user_id=%d", u.ID), nil, nil))
	s.Equal(http.StatusNotFound, s.doRequest("DELETE", "/api/measurements/123456", nil, nil))

	// measurements go away with their user
	s.Equal(http.StatusNoContent, s.doRequest("DELETE", fmt.Sprintf("/api/users/%d", u.ID), nil, nil))
	var count int
	s.Require().NoError(s.DB.QueryRow("SELECT COUNT(*) FROM measurement").Scan(&count))
	s.Zero(count)
}
