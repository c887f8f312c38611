package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 2 * time.Minute

// QuoteExpirer marks quotations past their validity as expired.
type QuoteExpirer interface {
	ExpireOverdue(ctx context.Context) (int64, error)
}

// FeedWarmer refreshes the cached dashboard feeds.
type FeedWarmer interface {
	Warm(ctx context.Context) int
}

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron   *cron.Cron
	quotes QuoteExpirer
	feeds  FeedWarmer
}

// NewScheduler creates a new scheduler. Either job source may be nil.
func NewScheduler(quotes QuoteExpirer, feeds FeedWarmer) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		quotes: quotes,
		feeds:  feeds,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Run every hour - Expire quotations past validUntil
	if _, err := s.cron.AddFunc("0 * * * *", func() {
		log.Println("[Cron] Running quotation expiry...")
		s.expireQuotes()
	}); err != nil {
		log.Printf("[Cron] ❌ Failed to schedule quotation expiry: %v", err)
	}

	// Run every hour at half past - Refresh dashboard feeds
	if _, err := s.cron.AddFunc("30 * * * *", func() {
		log.Println("[Cron] Running feed warm-up...")
		s.warmFeeds()
	}); err != nil {
		log.Printf("[Cron] ❌ Failed to schedule feed warm-up: %v", err)
	}

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[Cron] Scheduler stopped")
}

func (s *Scheduler) expireQuotes() int64 {
	if s.quotes == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.quotes.ExpireOverdue(ctx)
	if err != nil {
		log.Printf("[Cron] Error expiring quotations: %v", err)
		return 0
	}
	if n > 0 {
		log.Printf("[Cron] ⏰ Expired %d quotation(s)", n)
	}
	return n
}

func (s *Scheduler) warmFeeds() int {
	if s.feeds == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n := s.feeds.Warm(ctx)
	log.Printf("[Cron] Warmed %d feed(s)", n)
	return n
}

// ManualTrigger runs one job immediately (for admin/testing).
func (s *Scheduler) ManualTrigger(checkType string) bool {
	switch checkType {
	case "quote_expiry":
		s.expireQuotes()
	case "feed_warmup":
		s.warmFeeds()
	case "all":
		s.expireQuotes()
		s.warmFeeds()
	default:
		log.Printf("[Cron] Unknown job %q", checkType)
		return false
	}
	return true
}
