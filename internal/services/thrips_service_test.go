package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"thrips/internal/core"
	"thrips/internal/store/memory"
)

type fakePublisher struct {
	published []core.CountRecord
	err       error
	closed    bool
}

func (f *fakePublisher) PublishRecorded(_ context.Context, rec core.CountRecord) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, rec)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

type failingStore struct{ err error }

func (f failingStore) Insert(context.Context, core.NewCountRecord) (core.CountRecord, error) {
	return core.CountRecord{}, f.err
}

func (f failingStore) ListAll(context.Context) ([]core.CountRecord, error) {
	return nil, f.err
}

func fixedClock(times ...time.Time) memory.Option {
	i := 0
	return memory.WithClock(func() time.Time {
		t := times[i%len(times)]
		i++
		return t
	})
}

func TestThripsService_RecordAndAggregate(t *testing.T) {
	st := memory.New(fixedClock(
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC),
	))
	pub := &fakePublisher{}
	svc := NewThripsService(st, WithPublisher(pub))
	ctx := context.Background()

	for _, n := range []core.NewCountRecord{{Tea: 3, Other: 1}, {Tea: 2, Other: 0}, {Tea: 1, Other: 5}} {
		if _, err := svc.Record(ctx, n); err != nil {
			t.Fatalf("record %+v: %v", n, err)
		}
	}
	if len(pub.published) != 3 {
		t.Fatalf("published %d messages, want 3", len(pub.published))
	}

	tests := []struct {
		period core.Period
		want   []core.Bucket
	}{
		{core.Day, []core.Bucket{
			{Key: core.BucketKey{Period: core.Day, Value: "2024-01-01"}, SumTea: 5, SumOther: 1},
			{Key: core.BucketKey{Period: core.Day, Value: "2024-01-08"}, SumTea: 1, SumOther: 5},
		}},
		{core.Month, []core.Bucket{
			{Key: core.BucketKey{Period: core.Month, Value: "2024-01"}, SumTea: 6, SumOther: 6},
		}},
	}
	for _, tt := range tests {
		got, err := svc.Aggregate(ctx, tt.period)
		if err != nil {
			t.Fatalf("aggregate %s: %v", tt.period, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("aggregate %s = %+v, want %+v", tt.period, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("aggregate %s[%d] = %+v, want %+v", tt.period, i, got[i], tt.want[i])
			}
		}
	}
}

func TestThripsService_LocationShiftsBuckets(t *testing.T) {
	st := memory.New(fixedClock(time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC)))
	svc := NewThripsService(st, WithLocation(time.FixedZone("JST", 9*3600)))
	if _, err := svc.Record(context.Background(), core.NewCountRecord{Tea: 1}); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Aggregate(context.Background(), core.Month)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Key.Value != "2024-02" {
		t.Fatalf("expected February bucket in JST, got %+v", got)
	}
}

func TestThripsService_ValidationStoresNothing(t *testing.T) {
	st := memory.New()
	pub := &fakePublisher{}
	svc := NewThripsService(st, WithPublisher(pub))

	_, err := svc.Record(context.Background(), core.NewCountRecord{Tea: -1, Other: 2})
	if !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	all, _ := st.ListAll(context.Background())
	if len(all) != 0 || len(pub.published) != 0 {
		t.Fatalf("rejected record leaked: stored=%v published=%v", all, pub.published)
	}
}

func TestThripsService_PublishFailureDoesNotFailRecord(t *testing.T) {
	svc := NewThripsService(memory.New(), WithPublisher(&fakePublisher{err: errors.New("broker down")}))
	rec, err := svc.Record(context.Background(), core.NewCountRecord{Tea: 1, Other: 1})
	if err != nil {
		t.Fatalf("record should succeed despite publish failure: %v", err)
	}
	if rec.ID != 1 {
		t.Errorf("id = %d, want 1", rec.ID)
	}
}

func TestThripsService_StoreErrors(t *testing.T) {
	svc := NewThripsService(failingStore{err: errors.New("disk full")})

	if _, err := svc.Record(context.Background(), core.NewCountRecord{Tea: 1}); !core.IsStore(err) {
		t.Errorf("record: expected store error, got %v", err)
	}
	if _, err := svc.Aggregate(context.Background(), core.Week); !core.IsStore(err) {
		t.Errorf("aggregate: expected store error, got %v", err)
	}
	if err := svc.Ping(context.Background()); err != nil {
		t.Errorf("ping without Pinger should succeed, got %v", err)
	}
}

func TestThripsService_Close(t *testing.T) {
	pub := &fakePublisher{}
	closed := false
	svc := NewThripsService(memory.New(), WithPublisher(pub), WithCloser(func() error {
		closed = true
		return errors.New("close failed")
	}))

	err := svc.Close()
	if err == nil {
		t.Fatal("expected closer error to surface")
	}
	if !pub.closed || !closed {
		t.Errorf("close not propagated: publisher=%v closer=%v", pub.closed, closed)
	}

	if err := NewThripsService(memory.New()).Close(); err != nil {
		t.Errorf("close with nothing registered: %v", err)
	}
}
