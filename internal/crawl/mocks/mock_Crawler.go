// Package mocks provides test doubles for crawl.Crawler.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	crawl "github.com/sells-group/site-analyzer/internal/crawl"
	model "github.com/sells-group/site-analyzer/internal/model"
)

// MockCrawler is a mock type for the Crawler interface.
type MockCrawler struct {
	mock.Mock
}

// Crawl provides a mock function with given fields: ctx, rawURL, opts
func (_m *MockCrawler) Crawl(ctx context.Context, rawURL string, opts crawl.Options) (*model.CrawlResult, error) {
	ret := _m.Called(ctx, rawURL, opts)

	if len(ret) == 0 {
		panic("no return value specified for Crawl")
	}

	var r0 *model.CrawlResult
	if rf, ok := ret.Get(0).(func(context.Context, string, crawl.Options) (*model.CrawlResult, error)); ok {
		return rf(ctx, rawURL, opts)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.CrawlResult)
	}

	return r0, ret.Error(1)
}

// Name provides a mock function with no fields
func (_m *MockCrawler) Name() string {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Name")
	}

	return ret.String(0)
}

// NewMockCrawler creates a new instance of MockCrawler. It also registers a
// cleanup function to assert the mocks expectations.
func NewMockCrawler(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCrawler {
	mock := &MockCrawler{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
