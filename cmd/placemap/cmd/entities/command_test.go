package entities

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/agentstation/placemap"
	"github.com/agentstation/placemap/internal/appcontext"
	"github.com/agentstation/placemap/pkg/errors"
	"github.com/agentstation/placemap/pkg/place"
	"github.com/agentstation/placemap/pkg/trust"
)

// newSeededApp resolves three venues into an in-memory client and wraps
// it in a mock app context.
func newSeededApp(t *testing.T, format string) (*appcontext.Mock, placemap.Placemap) {
	t.Helper()

	pm, err := placemap.New(placemap.WithTrust(trust.New(
		trust.Record{ConnectorID: "places_api", Tier: 3, Score: 0.9, GeoCapable: true},
	)))
	if err != nil {
		t.Fatalf("placemap.New() failed: %v", err)
	}
	t.Cleanup(func() { _ = pm.Close() })

	observations := []*place.Observation{
		{ID: "obs-1", ConnectorID: "places_api", ExternalID: "gp-1", Name: "West Park Padel", City: "Greenock"},
		{ID: "obs-2", ConnectorID: "places_api", ExternalID: "gp-2", Name: "Meadowbank Sports Centre"},
		{ID: "obs-3", ConnectorID: "places_api", ExternalID: "gp-3", Name: "Harbour Pool"},
	}
	result, err := pm.Resolve(context.Background(), observations)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if len(result.Entities) != 3 {
		t.Fatalf("seeded %d entities, want 3", len(result.Entities))
	}

	mock := &appcontext.Mock{
		PlacemapFunc:     func() (placemap.Placemap, error) { return pm, nil },
		OutputFormatFunc: func() string { return format },
	}
	return mock, pm
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute(%v) failed: %v", args, err)
	}
	return out.String()
}

// TestListCommand verifies slug-ordered JSON listing.
func TestListCommand(t *testing.T) {
	app, _ := newSeededApp(t, "json")

	out := execute(t, NewListCommand(app))

	var view struct {
		Entities []struct {
			Slug string `json:"slug"`
			Name string `json:"name"`
		} `json:"entities"`
		NextPageToken string `json:"next_page_token"`
	}
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}

	if len(view.Entities) != 3 {
		t.Fatalf("got %d entities, want 3", len(view.Entities))
	}
	wantOrder := []string{"harbour-pool", "meadowbank-sports-centre", "west-park-padel"}
	for i, want := range wantOrder {
		if view.Entities[i].Slug != want {
			t.Errorf("entity %d slug = %s, want %s", i, view.Entities[i].Slug, want)
		}
	}
	if view.NextPageToken != "" {
		t.Errorf("unexpected next page token %q", view.NextPageToken)
	}
}

// TestListCommandPagination verifies keyset paging through the store.
func TestListCommandPagination(t *testing.T) {
	app, _ := newSeededApp(t, "json")

	first := execute(t, NewListCommand(app), "--page-size", "2")

	var page1 struct {
		Entities []struct {
			Slug string `json:"slug"`
		} `json:"entities"`
		NextPageToken string `json:"next_page_token"`
	}
	if err := json.Unmarshal([]byte(first), &page1); err != nil {
		t.Fatalf("first page is not valid JSON: %v", err)
	}
	if len(page1.Entities) != 2 {
		t.Fatalf("first page has %d entities, want 2", len(page1.Entities))
	}
	if page1.NextPageToken == "" {
		t.Fatal("first page should carry a next page token")
	}

	second := execute(t, NewListCommand(app), "--page-size", "2", "--page-token", page1.NextPageToken)

	var page2 struct {
		Entities []struct {
			Slug string `json:"slug"`
		} `json:"entities"`
		NextPageToken string `json:"next_page_token"`
	}
	if err := json.Unmarshal([]byte(second), &page2); err != nil {
		t.Fatalf("second page is not valid JSON: %v", err)
	}
	if len(page2.Entities) != 1 {
		t.Fatalf("second page has %d entities, want 1", len(page2.Entities))
	}
	if page2.Entities[0].Slug != "west-park-padel" {
		t.Errorf("second page slug = %s, want west-park-padel", page2.Entities[0].Slug)
	}
	if page2.NextPageToken != "" {
		t.Errorf("last page should not carry a token, got %q", page2.NextPageToken)
	}
}

// TestListCommandTable verifies the table path renders entity rows.
func TestListCommandTable(t *testing.T) {
	app, _ := newSeededApp(t, "table")

	out := execute(t, NewListCommand(app))

	for _, slug := range []string{"harbour-pool", "meadowbank-sports-centre", "west-park-padel"} {
		if !strings.Contains(out, slug) {
			t.Errorf("table output missing %s:\n%s", slug, out)
		}
	}
	if !strings.Contains(out, "Greenock") {
		t.Errorf("table output missing city:\n%s", out)
	}
}

// TestGetCommand verifies single-entity retrieval.
func TestGetCommand(t *testing.T) {
	app, _ := newSeededApp(t, "json")

	out := execute(t, NewGetCommand(app), "west-park-padel")

	var entity struct {
		Slug         string `json:"slug"`
		Name         string `json:"name"`
		City         string `json:"city"`
		Observations int    `json:"observations"`
	}
	if err := json.Unmarshal([]byte(out), &entity); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if entity.Slug != "west-park-padel" || entity.Name != "West Park Padel" {
		t.Errorf("unexpected entity: %+v", entity)
	}
	if entity.City != "Greenock" {
		t.Errorf("City = %q, want Greenock", entity.City)
	}
	if entity.Observations != 1 {
		t.Errorf("Observations = %d, want 1", entity.Observations)
	}
}

// TestGetCommandNotFound verifies missing slugs surface ErrNotFound.
func TestGetCommandNotFound(t *testing.T) {
	app, _ := newSeededApp(t, "json")

	cmd := NewGetCommand(app)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"no-such-place"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for unknown slug")
	}
	if !errors.IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}
}

// TestCountCommand verifies counting in both output modes.
func TestCountCommand(t *testing.T) {
	app, _ := newSeededApp(t, "json")

	out := execute(t, NewCountCommand(app))

	var view map[string]int
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if view["count"] != 3 {
		t.Errorf("count = %d, want 3", view["count"])
	}

	tableApp, _ := newSeededApp(t, "table")
	plain := execute(t, NewCountCommand(tableApp))
	if strings.TrimSpace(plain) != "3" {
		t.Errorf("table count output = %q, want 3", plain)
	}
}

// TestDeleteCommand verifies deletion and its idempotency error.
func TestDeleteCommand(t *testing.T) {
	app, pm := newSeededApp(t, "json")

	out := execute(t, NewDeleteCommand(app), "harbour-pool")
	if !strings.Contains(out, "deleted harbour-pool") {
		t.Errorf("missing confirmation line:\n%s", out)
	}

	if _, err := pm.Store().Get(context.Background(), "harbour-pool"); !errors.IsNotFound(err) {
		t.Errorf("entity still present after delete: %v", err)
	}

	// Deleting again reports not found
	cmd := NewDeleteCommand(app)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"harbour-pool"})
	if err := cmd.Execute(); !errors.IsNotFound(err) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

// TestParentCommandUnknownSubcommand verifies the catch-all error.
func TestParentCommandUnknownSubcommand(t *testing.T) {
	app, _ := newSeededApp(t, "json")

	cmd := NewCommand(app)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"bogus"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unknown subcommand")
	}
}
