package scrape

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/idea-research/pkg/jina"
)

type mockScraper struct {
	mock.Mock
}

func (m *mockScraper) Scrape(ctx context.Context, url string) (*Result, error) {
	args := m.Called(ctx, url)
	if r := args.Get(0); r != nil {
		return r.(*Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockScraper) Name() string {
	return m.Called().String(0)
}

func (m *mockScraper) Supports(url string) bool {
	return m.Called(url).Bool(0)
}

type mockJinaClient struct {
	mock.Mock
}

func (m *mockJinaClient) Read(ctx context.Context, targetURL string) (*jina.ReadResponse, error) {
	args := m.Called(ctx, targetURL)
	if r := args.Get(0); r != nil {
		return r.(*jina.ReadResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockJinaClient) Search(ctx context.Context, query string, opts ...jina.SearchOption) (*jina.SearchResponse, error) {
	args := m.Called(ctx, query)
	if r := args.Get(0); r != nil {
		return r.(*jina.SearchResponse), args.Error(1)
	}
	return nil, args.Error(1)
}
