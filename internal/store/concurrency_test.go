package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/govscout/govscout/internal/samgov"
)

func makePage(prefix string, n int) *samgov.SearchResponse {
	opps := make([]samgov.Opportunity, n)
	for i := range opps {
		opps[i] = samgov.Opportunity{
			NoticeID:   samgov.String(fmt.Sprintf("%s-%04d", prefix, i)),
			Title:      samgov.String(fmt.Sprintf("Notice %d", i)),
			PostedDate: samgov.String("2025-06-01"),
			PointOfContact: []samgov.PointOfContact{
				{FullName: samgov.String("Primary")},
				{FullName: samgov.String("Secondary")},
			},
		}
	}
	return &samgov.SearchResponse{TotalRecords: &n, OpportunitiesData: opps}
}

// TestConcurrentReadersDuringWrites tests that WAL readers never fail or see
// a half-replaced contact list while a sync rewrites the same records
func TestConcurrentReadersDuringWrites(t *testing.T) {
	s := testStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	page := makePage("c", 50)
	if err := s.UpsertResponse(context.Background(), page); err != nil {
		t.Fatalf("UpsertResponse() failed: %v", err)
	}

	const readers = 8
	var wg sync.WaitGroup
	errs := make(chan error, readers+1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			if err := s.UpsertResponse(ctx, page); err != nil && ctx.Err() == nil {
				errs <- fmt.Errorf("writer failed: %w", err)
				return
			}
		}
	}()

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for j := 0; ctx.Err() == nil; j++ {
				id := fmt.Sprintf("c-%04d", j%50)
				opp, err := s.GetOpportunity(ctx, id)
				if err != nil {
					if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
						return
					}
					errs <- fmt.Errorf("reader %d: %w", reader, err)
					return
				}
				if len(opp.PointOfContact) != 2 {
					errs <- fmt.Errorf("reader %d saw %d contacts for %s", reader, len(opp.PointOfContact), id)
					return
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	if n := countRows(t, s, `SELECT COUNT(*) FROM contacts`); n != 100 {
		t.Errorf("contacts = %d after concurrent writes, want 100", n)
	}
}

func BenchmarkUpsertResponse_FullPage(b *testing.B) {
	dir := b.TempDir()
	s, err := Open(filepath.Join(dir, "bench.db"), nil)
	if err != nil {
		b.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	page := makePage("b", samgov.PageSize)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.UpsertResponse(ctx, page); err != nil {
			b.Fatalf("UpsertResponse() failed: %v", err)
		}
	}
}

func BenchmarkGetOpportunity(b *testing.B) {
	dir := b.TempDir()
	s, err := Open(filepath.Join(dir, "bench.db"), nil)
	if err != nil {
		b.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	page := makePage("g", 100)
	if err := s.UpsertResponse(context.Background(), page); err != nil {
		b.Fatalf("UpsertResponse() failed: %v", err)
	}
	ids := make([]string, 0, page.Len())
	for i := range page.OpportunitiesData {
		ids = append(ids, page.OpportunitiesData[i].Key())
	}

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.GetOpportunity(ctx, ids[i%len(ids)]); err != nil {
			b.Fatalf("GetOpportunity() failed: %v", err)
		}
	}
}
