package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/config"
	"github.com/javiermolinar/slotify/internal/db"
	"github.com/javiermolinar/slotify/internal/identity"
)

// monday is a future Monday so relative date parsing accepts it.
const monday = "2030-03-04"

type cliEnv struct {
	t    *testing.T
	repo *db.SQLite
	cfg  *config.Config
	path string // config file
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	repo, err := db.New(filepath.Join(dir, "slotify.db"))
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	cfg := config.Default()
	cfg.Storage.DBPath = filepath.Join(dir, "slotify.db")
	cfg.Identity.Owner = "alice"
	return &cliEnv{t: t, repo: repo, cfg: cfg, path: filepath.Join(dir, "config.toml")}
}

// run executes one command line against a fresh App sharing the test database.
func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	app := NewApp(e.repo, e.cfg)
	app.SetConfigPath(e.path)

	var out bytes.Buffer
	root := app.Root()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	if cerr := app.Close(); cerr != nil {
		e.t.Errorf("closing app: %v", cerr)
	}
	return out.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("slotify %s: %v", strings.Join(args, " "), err)
	}
	return out
}

// add creates an activity and returns its short id.
func (e *cliEnv) add(args ...string) string {
	e.t.Helper()
	out := e.mustRun(append([]string{"add"}, args...)...)
	if !strings.HasPrefix(out, "Created ") {
		e.t.Fatalf("unexpected add output: %q", out)
	}
	id, _, ok := strings.Cut(strings.TrimPrefix(out, "Created "), ":")
	if !ok {
		e.t.Fatalf("no id in add output: %q", out)
	}
	return id
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output is missing %q:\n%s", w, out)
		}
	}
}

func TestCLI_Version(t *testing.T) {
	e := newCLIEnv(t)
	assertContains(t, e.mustRun("version"), "slotify dev")
}

func TestCLI_ScheduleLifecycle(t *testing.T) {
	e := newCLIEnv(t)
	id := e.add("Write docs", "--duration", "45")

	assertContains(t, e.mustRun("list", "backlog"), "BACKLOG (1)", "Write docs")

	assertContains(t, e.mustRun("schedule", id, monday, "09.30"), "Scheduled", "09.30-10.15")
	assertContains(t, e.mustRun("list", "day", "--date", monday), "Write docs", "09.30-10.15", "45m")
	assertContains(t, e.mustRun("list", "backlog"), "BACKLOG (0)")

	assertContains(t, e.mustRun("move", id, "10.00"), "10.00-10.45")
	assertContains(t, e.mustRun("resize", id, "5"), "Resized", "15m")
	assertContains(t, e.mustRun("list", "week", "--date", monday), "Mon Mar 4", "10.00-10.15", "Blocks: 1")

	assertContains(t, e.mustRun("done", id), "✓ Done", "Write docs")

	assertContains(t, e.mustRun("unschedule", id), "backlog")
	assertContains(t, e.mustRun("list", "backlog"), "BACKLOG (1)")
}

func TestCLI_ResizeFloorFollowsFinerSurface(t *testing.T) {
	tests := []struct {
		name      string
		day, week int
		minutes   string
		want      string
	}{
		{name: "week finer", day: 30, week: 15, minutes: "15", want: "15m"},
		{name: "day finer", day: 10, week: 30, minutes: "10", want: "10m"},
		{name: "below both", day: 30, week: 15, minutes: "5", want: "15m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newCLIEnv(t)
			e.cfg.Day.SnapMinutes = tt.day
			e.cfg.Week.SnapMinutes = tt.week
			id := e.add("Standup", "--at", monday+" 09.00", "--duration", "60")

			assertContains(t, e.mustRun("resize", id, tt.minutes), "Resized", tt.want)
			assertContains(t, e.mustRun("list", "day", "--date", monday), "Standup", tt.want)
		})
	}
}

func TestCLI_AddAt(t *testing.T) {
	e := newCLIEnv(t)
	out := e.mustRun("add", "Standup", "--type", "event", "--duration", "15", "--at", monday+" 09.00")
	assertContains(t, out, "[event]", "09.00")

	assertContains(t, e.mustRun("list", "--date", monday), "Standup", "09.00-09.15", "[E]")
}

func TestCLI_AddRejectsInvalidInput(t *testing.T) {
	e := newCLIEnv(t)
	tests := []struct {
		name string
		args []string
	}{
		{"blank title", []string{"add", "   "}},
		{"bad type", []string{"add", "x", "--type", "meeting"}},
		{"bad priority", []string{"add", "x", "--priority", "urgent"}},
		{"bad color", []string{"add", "x", "--color", "red"}},
		{"bad clock", []string{"add", "x", "--at", monday + " 25.00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.run(tt.args...); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
	assertContains(t, e.mustRun("list", "backlog"), "BACKLOG (0)")
}

func TestCLI_OutcomeNeedsSchedule(t *testing.T) {
	e := newCLIEnv(t)
	id := e.add("Read")
	_, err := e.run("skip", id)
	if !errors.Is(err, activity.ErrNotScheduled) {
		t.Errorf("skip on a backlog activity: error = %v, want ErrNotScheduled", err)
	}
	_, err = e.run("move", id, "10.00")
	if !errors.Is(err, activity.ErrNotScheduled) {
		t.Errorf("move on a backlog activity: error = %v, want ErrNotScheduled", err)
	}
}

func TestCLI_OutcomesStayListed(t *testing.T) {
	tests := []struct {
		name       string
		cmd        string
		wantSymbol string
		wantStatus string
	}{
		{name: "done", cmd: "done", wantSymbol: "✓", wantStatus: "STATUS:CONFIRMED"},
		{name: "skipped", cmd: "skip", wantSymbol: "✗", wantStatus: "STATUS:CANCELLED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newCLIEnv(t)
			id := e.add("Standup", "--at", monday+" 09.00")
			e.mustRun(tt.cmd, id)

			assertContains(t, e.mustRun("list", "day", "--date", monday), tt.wantSymbol, id, "09.00-09.30", "Standup")
			assertContains(t, e.mustRun("list", "week", "--date", monday), "Mon Mar 4", "Standup", "Blocks: 1")
			assertContains(t, e.mustRun("list", "backlog"), "BACKLOG (0)")
			assertContains(t, e.mustRun("export", "--date", monday), "SUMMARY:Standup", tt.wantStatus)
			assertContains(t, e.mustRun("export", "--week", "--date", monday), "SUMMARY:Standup")

			if _, err := e.run("move", id, "10.00"); !errors.Is(err, activity.ErrNotScheduled) {
				t.Errorf("move after %s: error = %v, want ErrNotScheduled", tt.cmd, err)
			}
		})
	}
}

func TestCLI_EditAndDelete(t *testing.T) {
	e := newCLIEnv(t)
	id := e.add("Draft")

	assertContains(t, e.mustRun("edit", id, "--title", "Final draft", "--description", "for review"), "Final draft", "for review")
	if _, err := e.run("edit", id); err == nil {
		t.Errorf("edit without flags should fail")
	}
	if _, err := e.run("edit", id, "--title", " "); !errors.Is(err, activity.ErrEmptyTitle) {
		t.Errorf("edit to a blank title: error = %v, want ErrEmptyTitle", err)
	}

	assertContains(t, e.mustRun("delete", id), "Deleted", "Final draft")
	if out := e.mustRun("list", "backlog"); strings.Contains(out, "Final draft") {
		t.Errorf("deleted activity still listed:\n%s", out)
	}
	if _, err := e.run("delete", id); !errors.Is(err, activity.ErrNotFound) {
		t.Errorf("second delete: error = %v, want ErrNotFound", err)
	}
}

func TestCLI_UnknownID(t *testing.T) {
	e := newCLIEnv(t)
	if _, err := e.run("schedule", "ffffffff", monday, "09.00"); !errors.Is(err, activity.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCLI_OwnersAreIsolated(t *testing.T) {
	e := newCLIEnv(t)
	id := e.add("Private")

	e.cfg.Identity.Owner = "bob"
	if _, err := e.run("delete", id); !errors.Is(err, activity.ErrNotFound) {
		t.Errorf("bob deleting alice's activity: error = %v, want ErrNotFound", err)
	}
	assertContains(t, e.mustRun("list", "backlog"), "BACKLOG (0)")
}

func TestCLI_Export(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun("add", "Standup", "--type", "event", "--at", monday+" 09.00")
	e.add("Unplaced")

	out := e.mustRun("export", "--date", monday)
	assertContains(t, out, "BEGIN:VCALENDAR", "SUMMARY:Standup", "END:VEVENT")
	if strings.Contains(out, "Unplaced") {
		t.Errorf("backlog activities must not be exported")
	}

	file := filepath.Join(t.TempDir(), "week.ics")
	if out := e.mustRun("export", "--week", "--date", monday, "-o", file); out != "" {
		t.Errorf("export to a file printed %q", out)
	}
}

func TestCLI_TokenIdentity(t *testing.T) {
	e := newCLIEnv(t)
	e.cfg.Identity.Secret = "s3cret"

	token := strings.TrimSpace(e.mustRun("token", "carol"))
	claims, err := identity.ParseToken(token, identity.TokenConfig{Secret: "s3cret", Issuer: e.cfg.Identity.Issuer})
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.Subject != "carol" {
		t.Errorf("subject = %q, want carol", claims.Subject)
	}

	// The token identity wins over the configured owner.
	e.cfg.Identity.Token = token
	id := e.add("Carol's task")
	e.cfg.Identity.Token = ""
	if _, err := e.run("delete", id); !errors.Is(err, activity.ErrNotFound) {
		t.Errorf("alice reached carol's activity: %v", err)
	}

	e.cfg.Identity.Token = "not-a-token"
	if _, err := e.run("list"); !errors.Is(err, identity.ErrInvalidToken) {
		t.Errorf("bad token: error = %v, want ErrInvalidToken", err)
	}
}

func TestCLI_Config(t *testing.T) {
	e := newCLIEnv(t)

	assertContains(t, e.mustRun("config", "path"), e.path)
	assertContains(t, e.mustRun("config", "init"), "Created")
	if _, err := e.run("config", "init"); err == nil {
		t.Errorf("init over an existing file should fail without --force")
	}

	e.mustRun("config", "set", "day.hour_height", "72")
	e.mustRun("config", "set", "tui.theme", "paper-dark")
	if _, err := e.run("config", "set", "day.snap_minutes", "7"); err == nil {
		t.Errorf("snap that does not divide an hour should be rejected")
	}

	cfg, err := config.LoadFrom(e.path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Day.HourHeight != 72 || cfg.TUI.Theme != "paper-dark" || cfg.Day.SnapMinutes != 15 {
		t.Errorf("saved config = %+v %+v", cfg.Day, cfg.TUI)
	}

	e.cfg.Identity.Secret = "s3cret"
	out := e.mustRun("config", "show")
	assertContains(t, out, "[day]", "hour_height", "owner          = alice", "********")
	if strings.Contains(out, "s3cret") {
		t.Errorf("config show leaked the secret")
	}
}

func TestOwners(t *testing.T) {
	p, err := Owners(config.IdentityConfig{Owner: "alice"})
	if err != nil {
		t.Fatalf("Owners failed: %v", err)
	}
	ctx := identity.WithOwner(context.Background(), "dave")
	if owner, _ := p.OwnerID(ctx); owner != "dave" {
		t.Errorf("context owner should win, got %q", owner)
	}
	if owner, _ := p.OwnerID(context.Background()); owner != "alice" {
		t.Errorf("fallback owner = %q, want alice", owner)
	}

	if _, err := Owners(config.IdentityConfig{Token: "x", Secret: "k"}); !errors.Is(err, identity.ErrInvalidToken) {
		t.Errorf("invalid token error = %v", err)
	}
}

func TestOpenRepo(t *testing.T) {
	if _, err := openRepo(""); err == nil {
		t.Errorf("expected an error for an empty path")
	}
	repo, err := openRepo(filepath.Join(t.TempDir(), "nested", "dir", "slotify.db"))
	if err != nil {
		t.Fatalf("openRepo should create missing directories: %v", err)
	}
	_ = repo.Close()
}
