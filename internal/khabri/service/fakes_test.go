package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/dto"
)

var fixedNow = time.Date(2025, time.October, 10, 9, 30, 0, 0, time.UTC)

func fixedPeriod() entity.Period {
	return entity.Period{Quarter: entity.QuarterQ2, FinancialYear: "FY26"}
}

// scriptedAI answers each request with the next reply; errors are returned as-is.
type scriptedAI struct {
	mu       sync.Mutex
	replies  []interface{}
	requests []dto.CompletionRequest
}

func newScriptedAI(replies ...interface{}) *scriptedAI {
	return &scriptedAI{replies: replies}
}

func (a *scriptedAI) Complete(_ context.Context, req dto.CompletionRequest) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, req)
	if len(a.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	next := a.replies[0]
	a.replies = a.replies[1:]
	if err, ok := next.(error); ok {
		return "", err
	}
	return next.(string), nil
}

func (a *scriptedAI) Name() string { return "scripted/model" }

func (a *scriptedAI) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.requests)
}

type memStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	mod      map[string]time.Time
	clock    time.Time
	writeErr error
}

func newMemStore() *memStore {
	return &memStore{
		data:  make(map[string][]byte),
		mod:   make(map[string]time.Time),
		clock: fixedNow,
	}
}

func (s *memStore) Write(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.clock = s.clock.Add(time.Second)
	s.data[key] = append([]byte(nil), data...)
	s.mod[key] = s.clock
	return nil
}

func (s *memStore) Read(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.data[key]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return d, nil
}

func (s *memStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *memStore) ModTime(_ context.Context, key string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.mod[key]
	if !ok {
		return time.Time{}, entity.ErrNotFound
	}
	return t, nil
}

type fakeCalendarSource struct {
	events []entity.ResultEvent
	err    error
	calls  int
}

func (f *fakeCalendarSource) Name() string { return "fake-calendar" }

func (f *fakeCalendarSource) Fetch(context.Context) ([]entity.ResultEvent, error) {
	f.calls++
	return f.events, f.err
}

type fakeAcquisition struct {
	name string
	doc  *entity.SourceDocument
	err  error
}

func (f *fakeAcquisition) Name() string { return f.name }

func (f *fakeAcquisition) Attempt(context.Context, string) (*entity.SourceDocument, error) {
	return f.doc, f.err
}

type fakeTexts struct {
	text string
	err  error
}

func (f *fakeTexts) ExtractText(context.Context, *entity.SourceDocument, int) (string, error) {
	return f.text, f.err
}

// sequenceRandom returns fixed values so generated data is predictable.
type sequenceRandom struct {
	ints   []int
	floats []float64
	i, f   int
}

func (r *sequenceRandom) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[r.i%len(r.ints)] % n
	r.i++
	return v
}

func (r *sequenceRandom) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.5
	}
	v := r.floats[r.f%len(r.floats)]
	r.f++
	return v
}
