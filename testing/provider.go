// Package e2etesting runs the full application behind a real HTTP listener
// for end-to-end tests.
package e2etesting

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/accounts/app"
	"github.com/tech-arch1tect/accounts/config"
	"github.com/tech-arch1tect/accounts/services/clock"
	"github.com/tech-arch1tect/accounts/testutils"
)

type E2EApp struct {
	App        *app.App
	TestServer *httptest.Server
	BaseURL    string
	Config     *config.Config
	Sender     *testutils.RecordingSender
	Clock      *clock.Mock
	Client     *HTTPClient
}

// NewE2EApp starts the application on an ephemeral port. override, when set,
// adjusts the test config before the app is built. Everything is torn down
// with the test.
func NewE2EApp(t *testing.T, override func(*config.Config)) *E2EApp {
	t.Helper()

	cfg := testutils.GetTestConfig()
	if override != nil {
		override(cfg)
	}

	sender := &testutils.RecordingSender{}
	clk := clock.NewMock(testutils.TestStart)

	application, err := app.NewApp().
		WithConfig(cfg).
		WithClock(clk).
		WithCodeSender(sender).
		WithoutListener().
		Build()
	require.NoError(t, err, "failed to build app")
	require.NoError(t, application.Start(context.Background()), "failed to start app")

	ts := httptest.NewServer(application.Server())

	t.Cleanup(func() {
		ts.Close()
		_ = application.Stop(context.Background())
	})

	return &E2EApp{
		App:        application,
		TestServer: ts,
		BaseURL:    ts.URL,
		Config:     cfg,
		Sender:     sender,
		Clock:      clk,
		Client:     NewHTTPClient(ts.URL),
	}
}
