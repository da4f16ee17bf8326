package notifier

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/models"
)

const (
	sender    = "lead@makerspace.org"
	recipient = "ops@makerspace.org"
)

// world is an in-memory task table, config bucket and email service that
// records every call in order.
type world struct {
	mu sync.Mutex

	rows     []models.Task
	tasksErr error
	addrs    models.Addresses
	addrErr  error
	verified map[string]bool
	sendErr  error

	calls     []string
	requested []string
	queried   []string
	sent      []models.Message
}

func newWorld() *world {
	return &world{
		addrs:    models.Addresses{Sender: sender, Recipient: recipient},
		verified: map[string]bool{sender: true, recipient: true},
	}
}

func (w *world) record(call string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, call)
}

func (w *world) OpenTasks(ctx context.Context, dueDate string) ([]models.Task, error) {
	w.record("tasks")
	w.mu.Lock()
	defer w.mu.Unlock()
	w.queried = append(w.queried, dueDate)
	if w.tasksErr != nil {
		return nil, w.tasksErr
	}
	var out []models.Task
	for _, t := range w.rows {
		if t.DueDate == dueDate && t.IsOpen() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (w *world) Addresses(ctx context.Context) (models.Addresses, error) {
	w.record("config")
	if w.addrErr != nil {
		return models.Addresses{}, w.addrErr
	}
	return w.addrs, nil
}

func (w *world) EnsureVerified(ctx context.Context, addr string) (bool, error) {
	w.record("verify " + addr)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.verified[addr] {
		return true, nil
	}
	w.requested = append(w.requested, addr)
	return false, nil
}

func (w *world) Send(ctx context.Context, m models.Message) (string, error) {
	w.record("send")
	if w.sendErr != nil {
		return "", w.sendErr
	}
	w.sent = append(w.sent, m)
	return "msg-1", nil
}

func march15() time.Time { return time.Date(2024, time.March, 15, 20, 0, 0, 0, time.UTC) }

func newHandler(w *world, opts Options) *Handler {
	if opts.Now == nil {
		opts.Now = march15
	}
	return New(w, w, w, w, opts, zap.NewNop())
}

func TestRun_SingleOpenTask(t *testing.T) {
	w := newWorld()
	w.rows = []models.Task{
		{DueDate: "20240315", DueTime: 1015, MachineName: "LaserCutter", TaskName: "Replace lens", Completed: 0, Active: 1},
	}

	diag, err := newHandler(w, Options{}).Run(context.Background())
	if err != nil || diag != "" {
		t.Fatalf("Run() = %q, %v; want success", diag, err)
	}

	if len(w.sent) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(w.sent))
	}
	m := w.sent[0]
	if m.From != sender || m.To != recipient {
		t.Errorf("From/To = %s/%s", m.From, m.To)
	}
	if m.Subject != "CU Makerspace - Late Tasks for 03-15-2024" {
		t.Errorf("Subject = %q", m.Subject)
	}
	if !strings.Contains(m.HTML, "<li>LaserCutter: Replace lens by 10:15 PM</li>") {
		t.Errorf("HTML missing bullet:\n%s", m.HTML)
	}
	if !strings.Contains(m.HTML, "Incomplete Tasks For 03-15-2024:") {
		t.Errorf("HTML missing heading:\n%s", m.HTML)
	}
	if len(w.queried) != 1 || w.queried[0] != "20240315" {
		t.Errorf("queried = %v, want [20240315]", w.queried)
	}
}

func TestRun_CompletedTaskExcluded(t *testing.T) {
	w := newWorld()
	w.rows = []models.Task{
		{DueDate: "20240315", DueTime: 800, MachineName: "ResinPrinter", TaskName: "RefillTank", Completed: 0, Active: 1},
		{DueDate: "20240315", DueTime: 1700, MachineName: "CNC", TaskName: "Lube", Completed: 1, Active: 1},
	}

	if _, err := newHandler(w, Options{}).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	html := w.sent[0].HTML
	if n := strings.Count(html, "<li>"); n != 1 {
		t.Errorf("bullets = %d, want 1", n)
	}
	if !strings.Contains(html, "ResinPrinter: RefillTank by 8:00 PM") {
		t.Errorf("missing ResinPrinter bullet:\n%s", html)
	}
	if strings.Contains(html, "CNC") {
		t.Errorf("completed task rendered:\n%s", html)
	}
}

func TestRun_EmptyDay(t *testing.T) {
	w := newWorld()

	if _, err := newHandler(w, Options{}).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(w.sent) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(w.sent))
	}
	if strings.Contains(w.sent[0].HTML, "<li>") {
		t.Errorf("empty report has bullets")
	}
	if w.sent[0].Text != "Incomplete Tasks For 03-15-2024:" {
		t.Errorf("Text = %q", w.sent[0].Text)
	}
}

func TestRun_EmptyDaySkipped(t *testing.T) {
	w := newWorld()

	diag, err := newHandler(w, Options{SkipEmpty: true}).Run(context.Background())
	if err != nil || diag != "" {
		t.Fatalf("Run() = %q, %v", diag, err)
	}
	if len(w.sent) != 0 {
		t.Errorf("emails sent = %d, want 0", len(w.sent))
	}
}

func TestRun_SenderNotVerified(t *testing.T) {
	w := newWorld()
	w.verified[sender] = false
	w.verified[recipient] = false

	diag, err := newHandler(w, Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if diag != "Sender lead@makerspace.org not verified." {
		t.Errorf("diag = %q", diag)
	}
	if len(w.sent) != 0 {
		t.Errorf("emails sent = %d, want 0", len(w.sent))
	}
	if len(w.requested) != 1 || w.requested[0] != sender {
		t.Errorf("verification requests = %v, want [%s]", w.requested, sender)
	}
}

func TestRun_RecipientNotVerified(t *testing.T) {
	w := newWorld()
	w.verified[recipient] = false

	diag, err := newHandler(w, Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if diag != "Recipient ops@makerspace.org not verified." {
		t.Errorf("diag = %q", diag)
	}
	if len(w.sent) != 0 {
		t.Errorf("emails sent = %d, want 0", len(w.sent))
	}
	if len(w.requested) != 1 || w.requested[0] != recipient {
		t.Errorf("verification requests = %v, want [%s]", w.requested, recipient)
	}
}

func TestRun_TaskStoreFailure(t *testing.T) {
	boom := errors.New("dynamodb unavailable")
	w := newWorld()
	w.tasksErr = boom

	diag, err := newHandler(w, Options{}).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want wrapping %v", err, boom)
	}
	if diag != "" {
		t.Errorf("diag = %q, want empty", diag)
	}
	for _, c := range w.calls {
		if strings.HasPrefix(c, "verify") || c == "send" {
			t.Errorf("unexpected call after store failure: %s", c)
		}
	}
}

func TestRun_FatalErrorsPropagate(t *testing.T) {
	tests := []struct {
		name  string
		setup func(w *world, boom error)
	}{
		{"config missing", func(w *world, boom error) { w.addrErr = boom }},
		{"send failure", func(w *world, boom error) { w.sendErr = boom }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boom := errors.New(tt.name)
			w := newWorld()
			tt.setup(w, boom)

			if _, err := newHandler(w, Options{}).Run(context.Background()); !errors.Is(err, boom) {
				t.Errorf("Run() error = %v, want wrapping %v", err, boom)
			}
		})
	}
}

func TestRun_CallOrder(t *testing.T) {
	w := newWorld()

	if _, err := newHandler(w, Options{}).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// config and tasks may run in either order; the rest is fixed.
	if len(w.calls) != 5 {
		t.Fatalf("calls = %v", w.calls)
	}
	reads := map[string]bool{w.calls[0]: true, w.calls[1]: true}
	if !reads["config"] || !reads["tasks"] {
		t.Errorf("first two calls = %v, want config and tasks", w.calls[:2])
	}
	want := []string{"verify " + sender, "verify " + recipient, "send"}
	for i, c := range want {
		if w.calls[2+i] != c {
			t.Errorf("calls[%d] = %s, want %s", 2+i, w.calls[2+i], c)
		}
	}
}

func TestRun_TodayUsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	w := newWorld()
	// 02:00 UTC on the 16th is still the 15th in New York.
	now := func() time.Time { return time.Date(2024, time.March, 16, 2, 0, 0, 0, time.UTC) }

	if _, err := newHandler(w, Options{Location: ny, Now: now}).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if w.queried[0] != "20240315" {
		t.Errorf("queried %s, want 20240315", w.queried[0])
	}
	if w.sent[0].Subject != "CU Makerspace - Late Tasks for 03-15-2024" {
		t.Errorf("Subject = %q", w.sent[0].Subject)
	}
}

func TestPreview(t *testing.T) {
	w := newWorld()
	w.rows = []models.Task{
		{DueDate: "20240315", DueTime: 1015, MachineName: "LaserCutter", TaskName: "Replace lens", Active: 1},
	}

	r, err := newHandler(w, Options{}).Preview(context.Background())
	if err != nil {
		t.Fatalf("Preview() error: %v", err)
	}
	if !strings.Contains(r.Text, "LaserCutter: Replace lens by 10:15 PM") {
		t.Errorf("Text = %q", r.Text)
	}
	for _, c := range w.calls {
		if strings.HasPrefix(c, "verify") || c == "send" {
			t.Errorf("preview made call %s", c)
		}
	}
}
