package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Moontok/WorkshopApp/internal/config"
	"github.com/Moontok/WorkshopApp/internal/portal"
	"github.com/Moontok/WorkshopApp/internal/portal/portaltest"
)

const fixtures = "../../testdata/fixtures"

type env struct {
	configPath string
	cachePath  string
}

func newEnv(t *testing.T, cfg *config.Config) *env {
	t.Helper()
	dir := t.TempDir()
	e := &env{
		configPath: filepath.Join(dir, config.FileName),
		cachePath:  filepath.Join(dir, "workshops.db"),
	}
	if cfg != nil {
		data, err := json.Marshal(cfg)
		if err != nil {
			t.Fatalf("json.Marshal() error = %v", err)
		}
		if err := os.WriteFile(e.configPath, data, 0600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	return e
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", e.configPath, "--cache", e.cachePath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("%v: error = %v", args, err)
	}
	return out
}

func TestSyncThenSearch(t *testing.T) {
	srv := portaltest.New(t, fixtures)
	e := newEnv(t, srv.Config())

	out := e.mustRun(t, "sync")
	for _, want := range []string{"Synced 2 workshops", "NEW: 123456 - Intro to Foo", "NEW: 234567 - Bar Basics"} {
		if !strings.Contains(out, want) {
			t.Errorf("sync output missing %q:\n%s", want, out)
		}
	}

	out = e.mustRun(t, "sync", "--workers", "4")
	if !strings.Contains(out, "No changes since the last sync.") {
		t.Errorf("second sync output = %q, want no changes", out)
	}

	out = e.mustRun(t, "search", "--phrase", "INTRO")
	if !strings.Contains(out, "123456") || strings.Contains(out, "234567") {
		t.Errorf("phrase search output:\n%s", out)
	}
	if !strings.Contains(out, "Total: 1 workshops, 3 participants") {
		t.Errorf("phrase search totals:\n%s", out)
	}

	out = e.mustRun(t, "search", "--id", "234567", "--phrase", "intro")
	if !strings.Contains(out, "North High School") {
		t.Errorf("id search should ignore phrase:\n%s", out)
	}

	out = e.mustRun(t, "search", "--from", "1/3/2024", "--to", "1/31/2024")
	if !strings.Contains(out, "234567") || strings.Contains(out, "123456") {
		t.Errorf("date search output:\n%s", out)
	}

	out = e.mustRun(t, "search", "--participants")
	if !strings.Contains(out, "Grace Hopper <grace@example.org>") {
		t.Errorf("participants missing:\n%s", out)
	}
}

func TestSyncExitCode(t *testing.T) {
	srv := portaltest.New(t, fixtures)
	e := newEnv(t, srv.Config())

	out, err := e.run(t, "sync", "--exit-code")
	if !errors.Is(err, ErrChanges) {
		t.Fatalf("first sync error = %v, want ErrChanges", err)
	}
	if got := ExitCode(err); got != ExitChanges {
		t.Errorf("ExitCode() = %d, want %d", got, ExitChanges)
	}
	if !strings.Contains(out, "NEW: 123456 - Intro to Foo") {
		t.Errorf("summary should still be printed:\n%s", out)
	}

	if _, err := e.run(t, "sync", "--exit-code"); err != nil {
		t.Errorf("unchanged sync error = %v, want nil", err)
	}

	if _, err := e.run(t, "sync"); err != nil {
		t.Errorf("sync without --exit-code error = %v, want nil", err)
	}
}

func TestSearchJSON(t *testing.T) {
	srv := portaltest.New(t, fixtures)
	e := newEnv(t, srv.Config())
	e.mustRun(t, "sync")

	out := e.mustRun(t, "search", "--format", "json", "--sort", "name")

	var result SearchOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(result.Workshops) != 2 {
		t.Fatalf("got %d workshops, want 2", len(result.Workshops))
	}
	if result.Workshops[0].Name != "Bar Basics" {
		t.Errorf("first workshop = %q, want Bar Basics", result.Workshops[0].Name)
	}
	if result.Matched.NumberOfParticipants != 3 {
		t.Errorf("participants = %d, want 3", result.Matched.NumberOfParticipants)
	}
}

func TestEmails(t *testing.T) {
	srv := portaltest.New(t, fixtures)
	e := newEnv(t, srv.Config())
	e.mustRun(t, "sync")

	out := e.mustRun(t, "emails", "--id", "123456")
	want := "ada@example.org;\ngrace@example.org;\nalan@example.org\n"
	if out != want {
		t.Errorf("emails = %q, want %q", out, want)
	}

	out = e.mustRun(t, "emails", "--id", "234567")
	if strings.TrimSpace(out) != "*** NO EMAILS TO DISPLAY! ***" {
		t.Errorf("emails = %q, want sentinel", out)
	}
}

func TestSearchBeforeSync(t *testing.T) {
	e := newEnv(t, nil)

	for _, args := range [][]string{{"search"}, {"emails"}} {
		out, err := e.run(t, args...)
		if err != nil {
			t.Fatalf("%v error = %v", args, err)
		}
		if strings.TrimSpace(out) != MsgNoCache {
			t.Errorf("%v output = %q, want %q", args, out, MsgNoCache)
		}
	}
}

func TestSearchInvalidFlags(t *testing.T) {
	e := newEnv(t, nil)

	tests := [][]string{
		{"search", "--sort", "size"},
		{"search", "--format", "xml"},
		{"search", "--from", "not a date"},
		{"search", "--range", "Smarch 1-5"},
	}
	for _, args := range tests {
		if _, err := e.run(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestSyncErrors(t *testing.T) {
	srv := portaltest.New(t, fixtures)

	wrongPassword := srv.Config()
	wrongPassword.Password = "wrong"

	offline := srv.Config()
	offline.SigninPageURL = "http://127.0.0.1:1/Login.aspx"

	tests := []struct {
		name     string
		cfg      *config.Config
		wantErr  error
		wantMsg  string
		wantCode int
	}{
		{"missing config", nil, config.ErrConfigMissing, MsgConfigMissing, ExitSetup},
		{"wrong password", wrongPassword, portal.ErrAuth, MsgAuth, ExitSetup},
		{"offline", offline, portal.ErrConnection, MsgOffline, ExitOffline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, tt.cfg)
			_, err := e.run(t, "sync", "--retries", "0")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got := UserMessage(err); got != tt.wantMsg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.wantMsg)
			}
			if got := ExitCode(err); got != tt.wantCode {
				t.Errorf("ExitCode() = %d, want %d", got, tt.wantCode)
			}
			if _, statErr := os.Stat(e.cachePath); statErr == nil {
				out, _ := e.run(t, "search")
				if strings.TrimSpace(out) != MsgNoCache {
					t.Errorf("cache should stay empty, search = %q", out)
				}
			}
		})
	}
}

func TestExportFiles(t *testing.T) {
	srv := portaltest.New(t, fixtures)
	e := newEnv(t, srv.Config())
	e.mustRun(t, "sync")
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "out.csv")
	out := e.mustRun(t, "export", "csv", "--out", csvPath)
	if !strings.Contains(out, "Wrote 2 workshops") {
		t.Errorf("export csv output = %q", out)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\xEF\xBB\xBF")) {
		t.Error("CSV should start with a UTF-8 BOM")
	}
	if !strings.Contains(string(data), "Intro to Foo") {
		t.Errorf("CSV missing workshop:\n%s", data)
	}

	rosterPath := filepath.Join(dir, "roster.csv")
	e.mustRun(t, "export", "csv", "--roster", "--id", "123456", "--out", rosterPath)
	data, err = os.ReadFile(rosterPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "alan@example.org") {
		t.Errorf("roster CSV missing participant:\n%s", data)
	}

	icsPath := filepath.Join(dir, "out.ics")
	e.mustRun(t, "export", "ics", "--out", icsPath)
	data, err = os.ReadFile(icsPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	ics := string(data)
	if !strings.HasPrefix(ics, "BEGIN:VCALENDAR") {
		t.Errorf("ICS should start with BEGIN:VCALENDAR")
	}
	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 3 {
		t.Errorf("got %d events, want 3 (one per session)", got)
	}
}

func TestExportSheetsRequiresFlags(t *testing.T) {
	e := newEnv(t, nil)
	if _, err := e.run(t, "export", "sheets"); err == nil {
		t.Error("expected error without --spreadsheet and --credentials")
	}
}

func TestCredentialsSet(t *testing.T) {
	srv := portaltest.New(t, fixtures)
	e := newEnv(t, srv.Config())
	t.Setenv(config.EnvEncryptionKey, "")

	e.mustRun(t, "credentials", "set", "--user", "someone", "--password", "s3cret")

	cfg, err := config.Load(e.configPath, config.Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UserName != "someone" || cfg.Password != "s3cret" || cfg.PasswordEncrypted {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.SigninPageURL != srv.Config().SigninPageURL {
		t.Errorf("other settings changed: %s", cfg.SigninPageURL)
	}

	e.mustRun(t, "credentials", "set", "--user", srv.UserName, "--password", srv.Password, "--encrypt-key", "passphrase")

	cfg, err = config.Load(e.configPath, config.Options{EncryptionKey: "passphrase"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.PasswordEncrypted || cfg.Password == srv.Password {
		t.Error("password should be stored encrypted")
	}

	t.Setenv(config.EnvEncryptionKey, "passphrase")
	out := e.mustRun(t, "sync")
	if !strings.Contains(out, "Synced 2 workshops") {
		t.Errorf("sync with encrypted password output = %q", out)
	}
}

func TestCredentialsSetRequiresBoth(t *testing.T) {
	e := newEnv(t, nil)
	if _, err := e.run(t, "credentials", "set", "--user", "only"); err == nil {
		t.Error("expected error without --password")
	}
}
