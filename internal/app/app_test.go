package app_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/obraunsdorf/cargo-downgrade/internal/adapters/telemetry"
	"github.com/obraunsdorf/cargo-downgrade/internal/app"
	"github.com/obraunsdorf/cargo-downgrade/internal/core/domain"
	"github.com/obraunsdorf/cargo-downgrade/internal/core/ports"
	"github.com/obraunsdorf/cargo-downgrade/internal/core/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const cutoff = "Mon, 22 Feb 2021 23:16:09 GMT"

var (
	before = time.Date(2021, time.January, 25, 20, 52, 40, 0, time.UTC)
	after  = time.Date(2021, time.March, 6, 3, 2, 52, 0, time.UTC)
)

type appTestEnv struct {
	app      *app.App
	loader   *mocks.MockLockfileLoader
	registry *mocks.MockRegistry
	logger   *mocks.MockLogger
	out      *bytes.Buffer
	config   *app.RegistryConfig
}

func setupAppTest(t *testing.T) *appTestEnv {
	t.Helper()
	ctrl := gomock.NewController(t)

	env := &appTestEnv{
		loader:   mocks.NewMockLockfileLoader(ctrl),
		registry: mocks.NewMockRegistry(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		out:      &bytes.Buffer{},
	}
	env.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	factory := func(cfg app.RegistryConfig) (ports.Registry, error) {
		env.config = &cfg
		return env.registry, nil
	}

	env.app = app.New(env.loader, factory, telemetry.NewNoOpTracer(), env.logger).
		WithOutput(env.out).
		WithWorkDir("project")
	return env
}

func history(old, newer string) []domain.VersionRecord {
	return []domain.VersionRecord{
		{Num: old, PublishedAt: before},
		{Num: newer, PublishedAt: after},
	}
}

// demoGraph is demo -> serde -> serde_derive, demo -> log.
func demoGraph(t *testing.T) *domain.DependencyGraph {
	t.Helper()
	g := domain.NewDependencyGraph()
	demo := g.AddNode(domain.GraphNode{Name: "demo", Version: "0.1.0"})
	serde := g.AddNode(domain.GraphNode{Name: "serde", Version: "1.0.196"})
	derive := g.AddNode(domain.GraphNode{Name: "serde_derive", Version: "1.0.196"})
	logCrate := g.AddNode(domain.GraphNode{Name: "log", Version: "0.4.20"})
	require.NoError(t, g.AddEdge(demo, serde))
	require.NoError(t, g.AddEdge(demo, logCrate))
	require.NoError(t, g.AddEdge(serde, derive))
	return g
}

func TestApp_Downgrade_Lockfile(t *testing.T) {
	env := setupAppTest(t)

	gomock.InOrder(
		env.loader.EXPECT().Load(filepath.Join("project", "Cargo.lock")).Return(demoGraph(t), nil),
		env.registry.EXPECT().Versions(gomock.Any(), "log").Return(history("0.4.14", "0.4.15"), nil),
		env.registry.EXPECT().Versions(gomock.Any(), "serde").Return(history("1.0.123", "1.0.124"), nil),
		env.registry.EXPECT().Versions(gomock.Any(), "serde_derive").Return(history("1.0.123", "1.0.124"), nil),
	)

	err := env.app.Downgrade(context.Background(), app.Options{Date: cutoff})
	require.NoError(t, err)

	assert.Equal(t, "log = \"0.4.14\"\nserde = \"1.0.123\"\nserde_derive = \"1.0.123\"\n", env.out.String())
}

func TestApp_Downgrade_LockfileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	ctrl := gomock.NewController(t)
	loader := mocks.NewMockLockfileLoader(ctrl)
	registry := mocks.NewMockRegistry(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	factory := func(app.RegistryConfig) (ports.Registry, error) {
		return registry, nil
	}

	cwd, err := os.Getwd()
	require.NoError(t, err)

	loader.EXPECT().Load(filepath.Join(cwd, "Cargo.lock")).Return(demoGraph(t), nil)
	registry.EXPECT().Versions(gomock.Any(), gomock.Any()).Return(history("1.0.0", "2.0.0"), nil).Times(3)

	var out bytes.Buffer
	a := app.New(loader, factory, telemetry.NewNoOpTracer(), logger).WithOutput(&out)

	require.NoError(t, a.Downgrade(context.Background(), app.Options{Date: cutoff}))
	assert.Equal(t, 3, strings.Count(out.String(), "\n"))
}

func TestApp_Downgrade_Level(t *testing.T) {
	env := setupAppTest(t)

	env.loader.EXPECT().Load("ws/Cargo.lock").Return(demoGraph(t), nil)
	env.registry.EXPECT().Versions(gomock.Any(), "serde_derive").Return(history("1.0.123", "1.0.124"), nil)

	err := env.app.Downgrade(context.Background(), app.Options{
		LockfilePath: "ws/Cargo.lock",
		Date:         cutoff,
		Level:        2,
		Pin:          true,
	})
	require.NoError(t, err)

	assert.Equal(t, "serde_derive = \"=1.0.123\"\n", env.out.String())
}

func TestApp_Downgrade_Crates(t *testing.T) {
	env := setupAppTest(t)

	gomock.InOrder(
		env.registry.EXPECT().Versions(gomock.Any(), "log").Return(history("0.4.14", "0.4.15"), nil),
		env.registry.EXPECT().Versions(gomock.Any(), "serde").Return(history("1.0.123", "1.0.124"), nil),
	)

	err := env.app.Downgrade(context.Background(), app.Options{
		Date:   cutoff,
		Crates: []string{" serde, ,log", "serde"},
		Format: "json",
		Registry: app.RegistryConfig{
			BaseURL:  "http://localhost:8080/api/v1/crates",
			Interval: 2 * time.Second,
			Timeout:  5 * time.Second,
		},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `[{"name":"log","version":"0.4.14"},{"name":"serde","version":"1.0.123"}]`, env.out.String())
	require.NotNil(t, env.config)
	assert.Equal(t, "http://localhost:8080/api/v1/crates", env.config.BaseURL)
	assert.Equal(t, 2*time.Second, env.config.Interval)
	assert.Equal(t, 5*time.Second, env.config.Timeout)
}

func TestApp_Downgrade_InputErrors(t *testing.T) {
	tests := []struct {
		name    string
		opts    app.Options
		wantErr error
	}{
		{
			name:    "invalid date",
			opts:    app.Options{Date: "2021-02-22"},
			wantErr: domain.ErrInvalidDate,
		},
		{
			name:    "missing date",
			opts:    app.Options{},
			wantErr: domain.ErrInvalidDate,
		},
		{
			name:    "unknown format",
			opts:    app.Options{Date: cutoff, Format: "toml"},
			wantErr: domain.ErrUnknownOutputFormat,
		},
		{
			name:    "empty crate list",
			opts:    app.Options{Date: cutoff, Crates: []string{" , "}},
			wantErr: domain.ErrNoCratesSelected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupAppTest(t)

			err := env.app.Downgrade(context.Background(), tt.opts)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr.Error())
			assert.Nil(t, env.config, "registry must not be created")
			assert.Empty(t, env.out.String())
		})
	}
}

func TestApp_Downgrade_LoaderError(t *testing.T) {
	env := setupAppTest(t)

	env.loader.EXPECT().Load(filepath.Join("project", "Cargo.lock")).Return(nil, domain.ErrLockfileRead)

	err := env.app.Downgrade(context.Background(), app.Options{Date: cutoff})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrLockfileRead.Error())
	assert.Empty(t, env.out.String())
}

func TestApp_Downgrade_NoPartialOutput(t *testing.T) {
	env := setupAppTest(t)

	gomock.InOrder(
		env.registry.EXPECT().Versions(gomock.Any(), "log").Return(history("0.4.14", "0.4.15"), nil),
		env.registry.EXPECT().Versions(gomock.Any(), "serde").Return(nil, domain.ErrCrateNotFound),
	)

	err := env.app.Downgrade(context.Background(), app.Options{Date: cutoff, Crates: []string{"log,serde,tokio"}})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrCrateNotFound.Error())
	assert.Empty(t, env.out.String())
}

func TestApp_Downgrade_RendererFailure(t *testing.T) {
	env := setupAppTest(t)
	renderer := mocks.NewMockRenderer(gomock.NewController(t))

	var gotFormat string
	env.app.WithRenderers(func(format string) (ports.Renderer, error) {
		gotFormat = format
		return renderer, nil
	})

	env.registry.EXPECT().Versions(gomock.Any(), "serde").Return(history("1.0.123", "1.0.124"), nil)
	renderer.EXPECT().
		Render(env.out, []domain.ResolvedPackage{{Name: "serde", Version: "1.0.123"}}).
		Return(errors.New("broken pipe"))

	err := env.app.Downgrade(context.Background(), app.Options{Date: cutoff, Crates: []string{"serde"}, Pin: true})
	require.Error(t, err)
	assert.ErrorContains(t, err, "broken pipe")
	assert.Equal(t, "pin", gotFormat)
}

func TestApp_Downgrade_RegistryFactoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	factory := func(app.RegistryConfig) (ports.Registry, error) {
		return nil, errors.New("bad registry url")
	}
	a := app.New(mocks.NewMockLockfileLoader(ctrl), factory, telemetry.NewNoOpTracer(), mocks.NewMockLogger(ctrl))

	err := a.Downgrade(context.Background(), app.Options{Date: cutoff, Crates: []string{"serde"}})
	require.Error(t, err)
	assert.ErrorContains(t, err, "bad registry url")
}

func TestApp_Downgrade_Trace(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockRegistry(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	factory := func(app.RegistryConfig) (ports.Registry, error) {
		return registry, nil
	}

	var traced []string
	logger.EXPECT().Info(gomock.Any()).DoAndReturn(func(msg string) {
		if strings.Contains(msg, "finished in") {
			traced = append(traced, msg)
		}
	}).AnyTimes()
	registry.EXPECT().Versions(gomock.Any(), "serde").Return(history("1.0.123", "1.0.124"), nil)

	var out bytes.Buffer
	a := app.New(mocks.NewMockLockfileLoader(ctrl), factory, telemetry.NewNoOpTracer(), logger).WithOutput(&out)

	err := a.Downgrade(context.Background(), app.Options{Date: cutoff, Crates: []string{"serde"}, Trace: true})
	require.NoError(t, err)

	assert.Equal(t, "serde = \"1.0.123\"\n", out.String())
	require.Len(t, traced, 1)
	assert.True(t, strings.HasPrefix(traced[0], "fetch serde finished in"), traced[0])
}

func TestParseDate(t *testing.T) {
	want := time.Date(2021, time.February, 22, 23, 16, 9, 0, time.UTC)

	for _, raw := range []string{
		"22 Feb 2021 23:16:09 GMT",
		"Mon, 22 Feb 2021 23:16:09 GMT",
		"Tue, 23 Feb 2021 00:16:09 +0100",
		"  22 Feb 2021 23:16:09 +0000  ",
	} {
		got, err := app.ParseDate(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), "%s parsed as %s", raw, got)
	}

	_, err := app.ParseDate("yesterday")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrInvalidDate.Error())
}

func TestParseCrateList(t *testing.T) {
	got, err := app.ParseCrateList([]string{"tokio, serde", "serde,,log "})
	require.NoError(t, err)
	assert.Equal(t, []string{"log", "serde", "tokio"}, got)

	_, err = app.ParseCrateList([]string{""})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrNoCratesSelected.Error())
}
