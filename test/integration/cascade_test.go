package integration

import (
	"bytes"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eugenenazirov/convig/internal/application"
	"github.com/eugenenazirov/convig/internal/cascade"
	"github.com/eugenenazirov/convig/internal/config"
	"github.com/eugenenazirov/convig/internal/storage"
)

func newApp(t *testing.T, env map[string]string, decl application.Declarations) (*application.App, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.WarnLevel)
	cfg := config.Config{Format: config.FormatYAML, Splitter: ",", UseEnv: true}
	app, err := application.New(cfg, decl, zaptest.NewLogger(t),
		application.WithEnvironment(cascade.EnvironmentOf(env)),
		application.WithDiagnostics(zap.New(core)),
	)
	if err != nil {
		t.Fatalf("application.New returned error: %v", err)
	}
	return app, logs
}

func TestIntegrationFlow(t *testing.T) {
	app, logs := newApp(t,
		map[string]string{"WORKERS": "16", "FEATURES": "a,b"},
		application.Declarations{
			Defaults: []string{"WORKERS=4", "FEATURES=[]", "TIMEOUT=2.5", "STRICT=false"},
			Sets:     []string{"STRICT=ON"},
		},
	)

	var out bytes.Buffer
	if err := app.Run(&out); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := "WORKERS: 16\nFEATURES:\n  - a\n  - b\nTIMEOUT: 2.5\nSTRICT: true\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out.String(), want)
	}
	if logs.FilterField(zap.String("key", "TIMEOUT")).Len() != 1 || logs.Len() != 1 {
		t.Fatalf("expected a single TIMEOUT warning, got %v", logs.AllUntimed())
	}
}

func TestLayeredChainsWithLiveStorage(t *testing.T) {
	store := storage.NewMemoryStorage(nil)
	base, err := cascade.New(cascade.Map{"region": "eu"}, cascade.NewDefaults(
		cascade.Field("region", "us"),
		cascade.Field("replicas", 1),
	))
	if err != nil {
		t.Fatalf("cascade.New returned error: %v", err)
	}

	app, err := cascade.New(store, base, cascade.NewDefaults(
		cascade.Field("region", "local"),
		cascade.Field("replicas", 0),
		cascade.Field("endpoint", cascade.Func(func(c *cascade.Chain) (any, error) {
			region, err := c.Text("region")
			if err != nil {
				return nil, err
			}
			return "https://" + region + ".example.com", nil
		})),
	))
	if err != nil {
		t.Fatalf("cascade.New returned error: %v", err)
	}

	if endpoint, _ := app.Text("endpoint"); endpoint != "https://eu.example.com" {
		t.Fatalf("unexpected endpoint %q", endpoint)
	}
	if replicas, _ := app.Int("replicas"); replicas != 1 {
		t.Fatalf("expected nested default 1, got %d", replicas)
	}

	if err := store.Set("region", "ap"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := store.Set("replicas", "3"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if endpoint, _ := app.Text("endpoint"); endpoint != "https://ap.example.com" {
		t.Fatalf("expected live storage to change endpoint, got %q", endpoint)
	}
	if replicas, _ := app.Int("replicas"); replicas != 3 {
		t.Fatalf("expected 3 replicas, got %d", replicas)
	}
}
