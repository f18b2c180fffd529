// Package scheduler runs the daily digest sweep: every user's state is
// recomputed and anyone whose planner verdict warrants a warning gets
// a proactive message.
package scheduler

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"

	"fundpal/internal/models"
	"fundpal/internal/planner"
	"fundpal/internal/store"
	"fundpal/internal/telegram"
)

// Notifier delivers a proactive message to one chat.
type Notifier interface {
	Send(chatID int64, text string) error
}

// Scheduler manages the cron tasks.
type Scheduler struct {
	cron     *cron.Cron
	store    *store.Store
	planner  *planner.Planner
	notifier Notifier
}

func New(st *store.Store, pl *planner.Planner, n Notifier) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		store:    st,
		planner:  pl,
		notifier: n,
	}
}

// Register installs the digest task on the given cron expression.
func (s *Scheduler) Register(digestCron string) error {
	if _, err := s.cron.AddFunc(digestCron, s.dailyDigest); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("[INFO] scheduler started")
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunDigestNow executes the digest immediately (manual trigger).
func (s *Scheduler) RunDigestNow() {
	s.dailyDigest()
}

func (s *Scheduler) dailyDigest() {
	log.Println("[INFO] running daily digest")

	ids, err := s.store.ListUserIDs()
	if err != nil {
		log.Printf("[ERROR] digest list users: %v", err)
		return
	}

	for _, userID := range ids {
		chatID, ok := telegram.ChatID(userID)
		if !ok {
			continue
		}

		state, err := s.store.ComputeState(userID, time.Now())
		if err != nil {
			log.Printf("[ERROR] digest state for %s: %v", userID, err)
			continue
		}

		decision := s.planner.Analyze(state)
		if !decision.ShouldWarn {
			continue
		}

		if err := s.notifier.Send(chatID, FormatDigest(state, decision)); err != nil {
			log.Printf("[ERROR] digest send to %s: %v", userID, err)
		}
	}
}

// FormatDigest renders the morning warning message.
func FormatDigest(state models.UserFinancialState, decision models.PlannerDecision) string {
	var b strings.Builder
	b.WriteString("🌅 *Morning check-in*\n\n")
	fmt.Fprintf(&b, "Balance: ₹%s\n", humanize.CommafWithDigits(state.CurrentBalance, 2))
	fmt.Fprintf(&b, "Safe to spend today: ₹%s\n", humanize.CommafWithDigits(decision.SafeToSpendDaily, 2))
	fmt.Fprintf(&b, "Health score: %.0f/100\n", decision.HealthScore)

	if len(decision.Alerts) > 0 {
		b.WriteString("\n")
		for _, alert := range decision.Alerts {
			fmt.Fprintf(&b, "⚠️ %s\n", alert)
		}
	}
	if decision.PriorityAction != "" {
		fmt.Fprintf(&b, "\nNext step: %s", decision.PriorityAction)
	}
	return b.String()
}
