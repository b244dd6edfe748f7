package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"clv-tracking-service/internal/model"
	"clv-tracking-service/internal/repository"
	"clv-tracking-service/internal/service"
	"clv-tracking-service/internal/testdata/mockcustomerrepository"
	"clv-tracking-service/internal/testdata/mockworker"
)

type CustomerServiceTestSuite struct {
	suite.Suite
	repo    *mockcustomerrepository.Repository
	worker  *mockworker.Worker
	service service.CustomerService
}

func TestCustomerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CustomerServiceTestSuite))
}

func (s *CustomerServiceTestSuite) SetupTest() {
	s.repo = &mockcustomerrepository.Repository{}
	s.worker = &mockworker.Worker{}
	s.service = service.NewCustomerService(s.repo, s.worker)
}

func (s *CustomerServiceTestSuite) validRecord() model.CustomerValueRecord {
	return model.CustomerValueRecord{
		ID:                   "uid-1",
		Name:                 "Jordan",
		Email:                "jordan@example.com",
		AveragePurchaseValue: 150,
		PurchaseFrequency:    8,
		CustomerLifespan:     2,
		UserID:               "uid-1",
	}
}

func (s *CustomerServiceTestSuite) TestCreateCustomerComputesCLV() {
	record := s.validRecord()
	record.CLV = 99999 // caller-provided clv is ignored

	s.repo.On("GetByID", mock.Anything, "uid-1").
		Return(model.CustomerValueRecord{}, repository.ErrCustomerNotFound)
	s.repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	created, err := s.service.CreateCustomer(context.Background(), record)

	s.NoError(err)
	s.Equal(float64(2400), created.CLV)
	s.Equal("web_app", created.Source)
	s.False(created.LastUpdated.IsZero())
	s.repo.AssertExpectations(s.T())
}

func (s *CustomerServiceTestSuite) TestCreateCustomerDuplicate() {
	s.repo.On("GetByID", mock.Anything, "uid-1").Return(s.validRecord(), nil)

	_, err := s.service.CreateCustomer(context.Background(), s.validRecord())

	s.ErrorIs(err, service.ErrCustomerExists)
	s.repo.AssertNotCalled(s.T(), "Upsert", mock.Anything, mock.Anything)
}

func (s *CustomerServiceTestSuite) TestCreateCustomerValidation() {
	cases := []struct {
		name   string
		mutate func(*model.CustomerValueRecord)
	}{
		{"missing id", func(r *model.CustomerValueRecord) { r.ID = "" }},
		{"missing name", func(r *model.CustomerValueRecord) { r.Name = "" }},
		{"negative factor", func(r *model.CustomerValueRecord) { r.PurchaseFrequency = -1 }},
	}

	for _, tc := range cases {
		record := s.validRecord()
		tc.mutate(&record)

		_, err := s.service.CreateCustomer(context.Background(), record)

		var validationErr *service.ValidationError
		s.ErrorAs(err, &validationErr, tc.name)
	}
	s.repo.AssertNotCalled(s.T(), "GetByID", mock.Anything, mock.Anything)
}

func (s *CustomerServiceTestSuite) TestCreateCustomerRepoError() {
	repoErr := errors.New("connection reset")
	s.repo.On("GetByID", mock.Anything, "uid-1").
		Return(model.CustomerValueRecord{}, repoErr)

	_, err := s.service.CreateCustomer(context.Background(), s.validRecord())

	s.ErrorIs(err, repoErr)
}

func (s *CustomerServiceTestSuite) TestUpdateCustomerMergesAndRecomputes() {
	existing := s.validRecord()
	existing.CLV = 2400

	s.repo.On("GetByID", mock.Anything, "uid-1").Return(existing, nil)

	var stored model.CustomerValueRecord
	s.repo.On("Upsert", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(model.CustomerValueRecord)
		}).
		Return(nil)

	updated, err := s.service.UpdateCustomer(context.Background(), "uid-1", model.CustomerValueRecord{
		AveragePurchaseValue: 300,
	})

	s.NoError(err)
	s.Equal(float64(300), updated.AveragePurchaseValue)
	s.Equal("Jordan", updated.Name) // untouched field survives
	s.Equal(float64(300*8*2), updated.CLV)
	s.Equal(updated, stored)
}

func (s *CustomerServiceTestSuite) TestUpdateCustomerNotFound() {
	s.repo.On("GetByID", mock.Anything, "missing").
		Return(model.CustomerValueRecord{}, repository.ErrCustomerNotFound)

	_, err := s.service.UpdateCustomer(context.Background(), "missing", model.CustomerValueRecord{})

	s.ErrorIs(err, repository.ErrCustomerNotFound)
}

func (s *CustomerServiceTestSuite) TestListCustomersDefaultsAndPagination() {
	s.repo.On("List", mock.Anything, model.CustomerFilter{Limit: 50, Page: 1}).
		Return([]model.CustomerValueRecord{s.validRecord()}, uint64(120), nil)

	customers, pagination, err := s.service.ListCustomers(context.Background(), model.CustomerFilter{})

	s.NoError(err)
	s.Len(customers, 1)
	s.Equal(uint64(120), pagination.Total)
	s.Equal(1, pagination.Page)
	s.Equal(50, pagination.Limit)
	s.Equal(3, pagination.Pages)
}

func (s *CustomerServiceTestSuite) TestGetUserAnalytics() {
	records := []model.CustomerValueRecord{
		{ID: "c1", UserID: "uid-1", CLV: 1000},
		{ID: "c2", UserID: "uid-1", CLV: 3000},
	}
	s.repo.On("List", mock.Anything, model.CustomerFilter{UserID: "uid-1", Limit: 1000, Page: 1}).
		Return(records, uint64(2), nil)

	analytics, err := s.service.GetUserAnalytics(context.Background(), "uid-1")

	s.NoError(err)
	s.Equal(2, analytics.TotalCustomers)
	s.Equal(float64(4000), analytics.TotalCLV)
	s.Equal(float64(2000), analytics.AverageCLV)
}

func (s *CustomerServiceTestSuite) TestGetUserAnalyticsRequiresUserID() {
	_, err := s.service.GetUserAnalytics(context.Background(), "")

	var validationErr *service.ValidationError
	s.ErrorAs(err, &validationErr)
}

func (s *CustomerServiceTestSuite) TestGetUserAnalyticsEmpty() {
	s.repo.On("List", mock.Anything, mock.Anything).
		Return([]model.CustomerValueRecord{}, uint64(0), nil)

	analytics, err := s.service.GetUserAnalytics(context.Background(), "uid-1")

	s.NoError(err)
	s.Zero(analytics.TotalCustomers)
	s.Zero(analytics.AverageCLV)
}

func (s *CustomerServiceTestSuite) TestArchiveActivitiesEnqueuesRows() {
	s.worker.On("Enqueue", mock.Anything).Return()

	accepted, err := s.service.ArchiveActivities(model.ActivityBatchRequest{
		UserID:    "uid-1",
		SessionID: "s1",
		Activities: []model.ActivityEvent{
			{Type: model.ActivityClick, SessionID: "s1"},
			{Type: model.ActivityPageView}, // missing session id filled from request
		},
	})

	s.NoError(err)
	s.Equal(2, accepted)
	s.worker.AssertNumberOfCalls(s.T(), "Enqueue", 2)

	calls := s.worker.Calls
	second := calls[1].Arguments.Get(0).(model.ArchiveRow)
	s.Equal("uid-1", second.UserID)
	s.Equal("s1", second.Event.SessionID)
}

func (s *CustomerServiceTestSuite) TestArchiveActivitiesRejectsEmptyBatch() {
	_, err := s.service.ArchiveActivities(model.ActivityBatchRequest{UserID: "uid-1"})

	var validationErr *service.ValidationError
	s.ErrorAs(err, &validationErr)
	s.worker.AssertNotCalled(s.T(), "Enqueue", mock.Anything)
}

func (s *CustomerServiceTestSuite) TestDeleteCustomerDelegates() {
	s.repo.On("Delete", mock.Anything, "uid-1").Return(nil)

	s.NoError(s.service.DeleteCustomer(context.Background(), "uid-1"))
	s.repo.AssertExpectations(s.T())
}
