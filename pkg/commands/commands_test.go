package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"

	"tableflip.dev/chainjournal/pkg/chain/sandbox"
	"tableflip.dev/chainjournal/pkg/journal"
)

type cli struct {
	t       *testing.T
	sandbox string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	color.NoColor = true
	homedir.DisableCache = true
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CHAINJOURNAL_CONFIG_PATH", home)
	t.Setenv("CHAINJOURNAL_CONFIRM_INTERVAL", "1ms")
	t.Setenv("CHAINJOURNAL_CONFIRM_MAX_INTERVAL", "2ms")
	return &cli{t: t, sandbox: t.TempDir()}
}

func (c *cli) run(args ...string) string {
	c.t.Helper()
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--network", "sandbox", "--sandbox", c.sandbox}, args...))
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		c.t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestCreateAddShowList(t *testing.T) {
	c := newCLI(t)

	var created struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	out := c.run("create", "Trip", "Log", "--json")
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if created.ID == "" || created.Title != "Trip Log" {
		t.Fatalf("unexpected create output %q", out)
	}

	var j journal.Journal
	out = c.run("add", created.ID, "Day", "1", "--json")
	if err := json.Unmarshal([]byte(out), &j); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(j.Entries) != 1 || j.Entries[0].Content != "Day 1" {
		t.Fatalf("unexpected entries %+v", j.Entries)
	}

	out = c.run("show", created.ID, "--utc")
	for _, want := range []string{"Trip Log - 1 entry", "Day 1", created.ID} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}

	var list []journal.Summary
	out = c.run("list", "--json")
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestJSONErrors(t *testing.T) {
	c := newCLI(t)
	out := c.run("show", "0x1234", "--json")
	var body map[string]string
	if err := json.Unmarshal([]byte(out), &body); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if !strings.Contains(body["error"], "not found") {
		t.Fatalf("expected a not found error, got %q", body["error"])
	}
}

func TestBlankEntryIsRejected(t *testing.T) {
	c := newCLI(t)
	out := c.run("add", "0x1", "  ", "--json")
	if !strings.Contains(out, "blank") {
		t.Fatalf("expected blank text error, got %q", out)
	}
}

func TestAccounts(t *testing.T) {
	c := newCLI(t)
	out := c.run("accounts")
	if !strings.Contains(out, "* ") || !strings.Contains(out, sandbox.DefaultAccount) {
		t.Fatalf("expected the default account marked current:\n%s", out)
	}
}

func TestUnknownNetwork(t *testing.T) {
	newCLI(t)
	cmd := New()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--network", "nowhere", "list"})
	if err := cmd.ExecuteContext(context.Background()); err == nil || !strings.Contains(err.Error(), "unknown network") {
		t.Fatalf("expected unknown network error, got %v", err)
	}
}
