package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/idea-research/internal/model"
	"github.com/sells-group/idea-research/pkg/jina"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, query string) ([]Hit, error) {
	args := m.Called(ctx, query)
	if h := args.Get(0); h != nil {
		return h.([]Hit), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockJinaClient struct {
	mock.Mock
}

func (m *mockJinaClient) Read(ctx context.Context, u string) (*jina.ReadResponse, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(*jina.ReadResponse), args.Error(1)
}

func (m *mockJinaClient) Search(ctx context.Context, q string, _ ...jina.SearchOption) (*jina.SearchResponse, error) {
	args := m.Called(ctx, q)
	if r := args.Get(0); r != nil {
		return r.(*jina.SearchResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestScore(t *testing.T) {
	// 4 query terms, 2 overlap: 2/5.
	assert.InDelta(t, 0.4, Score("meal kit market size", Hit{Title: "Meal Kit trends"}), 1e-9)
	// 3 terms, 1 overlap: 1/4.
	assert.InDelta(t, 0.25, Score("a b c", Hit{Snippet: "B"}), 1e-9)
	// 2 terms, 2 overlap: 2/3 rounded to 0.667.
	assert.InDelta(t, 0.667, Score("x y", Hit{Title: "x", Snippet: "y"}), 1e-9)
	assert.Zero(t, Score("", Hit{Title: "anything"}))
}

func TestRank_StableOrder(t *testing.T) {
	hits := []Hit{
		{URL: "https://low.com", Title: "unrelated"},
		{URL: "https://high.com", Title: "meal kit market"},
		{URL: "https://tie.com", Title: "unrelated too"},
	}
	ranked := Rank("meal kit market", hits)
	assert.Equal(t, []string{"https://high.com", "https://low.com", "https://tie.com"}, URLs(ranked))
	assert.Equal(t, 0.75, ranked[0].Score)
	assert.Zero(t, hits[1].Score, "input is not mutated")
}

func TestDiscoverer_Find_DedupesAndCaps(t *testing.T) {
	s := new(mockSearcher)
	s.On("Search", mock.Anything, "meal kit market").Return([]Hit{
		{URL: "https://a.com", Title: "meal kit market report"},
		{URL: "https://b.com", Title: "cooking"},
	}, nil)
	s.On("Search", mock.Anything, "meal kit competitors").Return([]Hit{
		{URL: "https://a.com", Title: "meal kit competitors"},
		{URL: "https://c.com", Title: "meal kit"},
	}, nil)

	idea := model.Idea{Queries: []string{"meal kit market", "meal kit competitors"}}
	hits, err := NewDiscoverer(s, 2).Find(context.Background(), idea)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.com", "https://c.com"}, URLs(hits))
}

func TestDiscoverer_Find_SkipsFailedQuery(t *testing.T) {
	s := new(mockSearcher)
	s.On("Search", mock.Anything, "q1").Return(nil, errors.New("rate limited"))
	s.On("Search", mock.Anything, "q2").Return([]Hit{{URL: "https://ok.com", Title: "q2"}}, nil)

	hits, err := NewDiscoverer(s, 10).Find(context.Background(), model.Idea{Queries: []string{"q1", "q2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://ok.com"}, URLs(hits))
}

func TestDiscoverer_Find_AllFailed(t *testing.T) {
	s := new(mockSearcher)
	s.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("down"))

	_, err := NewDiscoverer(s, 10).Find(context.Background(), model.Idea{Queries: []string{"q1", "q2"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every query failed")
}

func TestDiscoverer_Find_NoQueries(t *testing.T) {
	hits, err := NewDiscoverer(new(mockSearcher), 10).Find(context.Background(), model.Idea{})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestJinaSearcher(t *testing.T) {
	client := new(mockJinaClient)
	client.On("Search", mock.Anything, "meal kits").Return(&jina.SearchResponse{
		Code: 200,
		Data: []jina.SearchResult{
			{Title: "A", URL: "https://a.com", Description: "desc"},
			{Title: "B", URL: "https://b.com", Content: "content only"},
		},
	}, nil)
	client.On("Search", mock.Anything, "broken").Return(nil, errors.New("503"))

	s := NewJinaSearcher(client)
	hits, err := s.Search(context.Background(), "meal kits")
	require.NoError(t, err)
	assert.Equal(t, []Hit{
		{Query: "meal kits", Title: "A", URL: "https://a.com", Snippet: "desc"},
		{Query: "meal kits", Title: "B", URL: "https://b.com", Snippet: "content only"},
	}, hits)

	_, err = s.Search(context.Background(), "broken")
	assert.Error(t, err)
}
