// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasksms/dashboard/app/dto"
	businessflow "github.com/tasksms/dashboard/business_flow"
	"github.com/tasksms/dashboard/models"
)

const testMemberUUID = "6f9619ff-8b86-4d01-b42d-00cf4fc964ff"

// allocationFlowStub records the last call it received and returns a canned
// result or error.
type allocationFlowStub struct {
	memberUUID string
	number     string
	country    string
	err        error
}

func (s *allocationFlowStub) AllocateNumber(_ context.Context, memberUUID string, req *dto.AllocateNumberRequest, _ *businessflow.ClientMetadata) (*dto.AllocationDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.memberUUID = memberUUID
	s.number = req.Number
	return &dto.AllocationDTO{MemberUUID: memberUUID, Numbers: []string{req.Number}}, nil
}

func (s *allocationFlowStub) DeallocateNumber(_ context.Context, memberUUID string, req *dto.DeallocateNumberRequest, _ *businessflow.ClientMetadata) (*dto.AllocationDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.memberUUID = memberUUID
	s.number = req.Number
	return &dto.AllocationDTO{MemberUUID: memberUUID, Numbers: []string{}}, nil
}

func (s *allocationFlowStub) ToggleCountry(_ context.Context, memberUUID string, req *dto.ToggleCountryRequest, _ *businessflow.ClientMetadata) (*dto.AllocationDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.memberUUID = memberUUID
	s.country = req.CountryName
	return &dto.AllocationDTO{MemberUUID: memberUUID, Numbers: []string{}}, nil
}

func (s *allocationFlowStub) ReleaseNumber(_ context.Context, _ *dto.ReleaseNumberRequest, _ *businessflow.ClientMetadata) error {
	return s.err
}

func (s *allocationFlowStub) MemberAllocations(_ context.Context, memberUUID string) (*dto.AllocationDTO, error) {
	return &dto.AllocationDTO{MemberUUID: memberUUID, Numbers: []string{}}, s.err
}

func (s *allocationFlowStub) AvailableInCountry(_ context.Context, countryName, _ string) (*dto.AvailableNumbersResponse, error) {
	return &dto.AvailableNumbersResponse{CountryName: countryName, Numbers: []string{}}, s.err
}

func (s *allocationFlowStub) FullMap(_ context.Context) (models.AllocationMap, error) {
	return models.AllocationMap{}, s.err
}

func newAdminAllocationApp(t *testing.T, stub *allocationFlowStub, authenticated bool) *fiber.App {
	t.Helper()
	h := NewAllocationHandler(stub, nil)

	app := fiber.New()
	if authenticated {
		app.Use(func(c fiber.Ctx) error {
			c.Locals("admin_id", uint(1))
			return c.Next()
		})
	}
	app.Post("/api/v1/admin/allocations", h.AdminAllocateNumber)
	app.Delete("/api/v1/admin/allocations", h.AdminDeallocateNumber)
	app.Post("/api/v1/admin/allocations/toggle", h.AdminToggleCountry)
	return app
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAdminAllocateNumberDelegatesToFlow(t *testing.T) {
	stub := &allocationFlowStub{}
	app := newAdminAllocationApp(t, stub, true)

	resp, err := app.Test(jsonRequest("POST", "/api/v1/admin/allocations",
		`{"member_uuid":"`+testMemberUUID+`","number":"111"}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, testMemberUUID, stub.memberUUID)
	assert.Equal(t, "111", stub.number)
}

func TestAdminAllocateNumberUnknownMember(t *testing.T) {
	stub := &allocationFlowStub{
		err: businessflow.NewBusinessError("MEMBER_NOT_FOUND", "team member not found", businessflow.ErrMemberNotFound),
	}
	app := newAdminAllocationApp(t, stub, true)

	resp, err := app.Test(jsonRequest("POST", "/api/v1/admin/allocations",
		`{"member_uuid":"`+testMemberUUID+`","number":"111"}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminAllocateNumberHeldElsewhere(t *testing.T) {
	stub := &allocationFlowStub{
		err: businessflow.NewBusinessError("NUMBER_ALREADY_ALLOCATED", "number is already allocated to another member", businessflow.ErrNumberAlreadyAllocated),
	}
	app := newAdminAllocationApp(t, stub, true)

	resp, err := app.Test(jsonRequest("POST", "/api/v1/admin/allocations",
		`{"member_uuid":"`+testMemberUUID+`","number":"111"}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestAdminAllocateNumberValidatesBody(t *testing.T) {
	stub := &allocationFlowStub{}
	app := newAdminAllocationApp(t, stub, true)

	resp, err := app.Test(jsonRequest("POST", "/api/v1/admin/allocations",
		`{"member_uuid":"not-a-uuid","number":"111"}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, stub.number)
}

func TestAdminDeallocateNumberDelegatesToFlow(t *testing.T) {
	stub := &allocationFlowStub{}
	app := newAdminAllocationApp(t, stub, true)

	resp, err := app.Test(jsonRequest("DELETE", "/api/v1/admin/allocations",
		`{"member_uuid":"`+testMemberUUID+`","number":"222"}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, testMemberUUID, stub.memberUUID)
	assert.Equal(t, "222", stub.number)
}

func TestAdminToggleCountryDelegatesToFlow(t *testing.T) {
	stub := &allocationFlowStub{}
	app := newAdminAllocationApp(t, stub, true)

	resp, err := app.Test(jsonRequest("POST", "/api/v1/admin/allocations/toggle",
		`{"member_uuid":"`+testMemberUUID+`","country_name":"INDONESIA"}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, testMemberUUID, stub.memberUUID)
	assert.Equal(t, "INDONESIA", stub.country)
}

func TestAdminAllocationEndpointsRequireAdmin(t *testing.T) {
	stub := &allocationFlowStub{}
	app := newAdminAllocationApp(t, stub, false)

	resp, err := app.Test(jsonRequest("POST", "/api/v1/admin/allocations",
		`{"member_uuid":"`+testMemberUUID+`","number":"111"}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, stub.number)
}
