package revocation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/exeat-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRevocation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Revocation Suite")
}

type fakeSweepStore struct {
	mu      sync.Mutex
	calls   []time.Time
	removed int64
	err     error
}

func (f *fakeSweepStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	return f.removed, f.err
}

func (f *fakeSweepStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var _ = Describe("Signature", func() {
	It("returns the segment after the last dot", func() {
		Expect(Signature("aaa.bbb.ccc")).To(Equal("ccc"))
	})

	It("returns the whole string when there is no dot", func() {
		Expect(Signature("opaque")).To(Equal("opaque"))
	})
})

var _ = Describe("Sweeper", func() {
	var store *fakeSweepStore

	BeforeEach(func() {
		store = &fakeSweepStore{}
	})

	It("passes the current time to the store and reports removals", func() {
		fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		store.removed = 3
		sweeper := NewSweeper(store, time.Minute, time.Second, logger.Discard())
		sweeper.now = func() time.Time { return fixed }

		removed, err := sweeper.SweepOnce(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(removed).To(Equal(int64(3)))
		Expect(store.calls).To(Equal([]time.Time{fixed}))
	})

	It("surfaces store failures from a single sweep", func() {
		store.err = errors.New("db down")
		sweeper := NewSweeper(store, time.Minute, time.Second, logger.Discard())

		_, err := sweeper.SweepOnce(context.Background())
		Expect(err).To(MatchError("db down"))
	})

	It("keeps ticking after a failed sweep and stops on cancel", func() {
		store.err = errors.New("transient")
		sweeper := NewSweeper(store, 10*time.Millisecond, time.Second, logger.Discard())

		ctx, cancel := context.WithCancel(context.Background())
		done := sweeper.Start(ctx)

		Eventually(store.callCount).Should(BeNumerically(">=", 2))
		cancel()
		Eventually(done).Should(BeClosed())
	})
})
