package scheduler

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fundpal/internal/models"
	"fundpal/internal/planner"
	"fundpal/internal/store"
)

type spyNotifier struct {
	sent map[int64]string
}

func (s *spyNotifier) Send(chatID int64, text string) error {
	if s.sent == nil {
		s.sent = map[int64]string{}
	}
	s.sent[chatID] = text
	return nil
}

func digestFixture(t *testing.T) (*Scheduler, *store.Store, *spyNotifier) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "fundpal.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	spy := &spyNotifier{}
	return New(st, planner.New(), spy), st, spy
}

func saveUser(t *testing.T, st *store.Store, userID string, balance int64) {
	t.Helper()
	err := st.SaveProfile(models.UserProfile{
		UserID:         userID,
		AgeBracket:     models.Age26To35,
		RiskTolerance:  models.RiskModerate,
		IncomeType:     models.IncomeSalaried,
		MonthlyIncome:  50000,
		DailyEssential: 500,
	})
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if balance != 0 {
		if _, err := st.AddTransaction(userID, "income", decimal.NewFromInt(balance), "Salary", "", time.Now()); err != nil {
			t.Fatalf("seed balance: %v", err)
		}
	}
}

func TestDigestWarnsLowRunwayUser(t *testing.T) {
	sched, st, spy := digestFixture(t)
	saveUser(t, st, "tg:100", 800) // under two days of essentials

	sched.RunDigestNow()

	msg, ok := spy.sent[100]
	if !ok {
		t.Fatal("low runway user should receive a digest")
	}
	if !strings.Contains(msg, "⚠️") {
		t.Errorf("digest should carry the alert: %q", msg)
	}
}

func TestDigestSkipsHealthyUser(t *testing.T) {
	sched, st, spy := digestFixture(t)
	saveUser(t, st, "tg:200", 200000)

	sched.RunDigestNow()

	if _, ok := spy.sent[200]; ok {
		t.Error("healthy user should not be messaged")
	}
}

func TestDigestSkipsNonTelegramUsers(t *testing.T) {
	sched, st, spy := digestFixture(t)
	saveUser(t, st, "web:alice", 800)

	sched.RunDigestNow()

	if len(spy.sent) != 0 {
		t.Errorf("non-telegram users cannot be notified, sent %v", spy.sent)
	}
}

func TestFormatDigestIncludesPriority(t *testing.T) {
	out := FormatDigest(models.UserFinancialState{CurrentBalance: 900}, models.PlannerDecision{
		HealthScore:      22,
		SafeToSpendDaily: 10,
		Alerts:           []string{"Only 2 days of essential money left"},
		PriorityAction:   "Reduce spending immediately",
		ShouldWarn:       true,
	})
	for _, want := range []string{"₹900", "22/100", "Only 2 days", "Next step: Reduce spending immediately"} {
		if !strings.Contains(out, want) {
			t.Errorf("digest missing %q:\n%s", want, out)
		}
	}
}
