package cmd

import (
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/joescharf/revu/internal/daemon"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Run the analysis backend and the web UI together",
	Long: `Run 'revu api' and 'revu serve' in one process.

Ports come from api.port and ui.port. When api_url is left at its default
the UI follows api.port. If either server fails, both stop.

The process records its PID so 'revu up status' and 'revu up stop' work
for foreground runs too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals()...)
		defer stop()

		release, err := claimPIDFile(pidFile())
		if err != nil {
			return err
		}
		defer release()

		apiPort := viper.GetInt("api.port")
		apiURL, mismatch := localAPIURL(viper.GetString("api_url"), apiPort)
		if mismatch {
			ui.Warning("api_url %s does not match api.port %d; the UI will not reach this backend", apiURL, apiPort)
		}
		viper.Set("api_url", apiURL)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return runAPI(gctx) })
		g.Go(func() error { return runUI(gctx) })
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(upCmd)
}

// localAPIURL resolves the backend URL the UI should use when both servers
// share a process. The default URL follows apiPort. mismatch reports an
// explicit loopback URL on a different port.
func localAPIURL(apiURL string, apiPort int) (resolved string, mismatch bool) {
	if apiURL == defaultAPIURL {
		return fmt.Sprintf("http://127.0.0.1:%d/api", apiPort), false
	}

	u, err := url.Parse(apiURL)
	if err != nil {
		return apiURL, false
	}
	switch u.Hostname() {
	case "127.0.0.1", "localhost", "::1":
	default:
		return apiURL, false
	}

	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return apiURL, port != strconv.Itoa(apiPort)
}

// claimPIDFile records this process in pf. It fails when another live
// process already holds it. release removes the file if it still names us.
func claimPIDFile(pf *daemon.PIDFile) (release func(), err error) {
	self := os.Getpid()
	if pid, running := pf.IsRunning(); running && pid != self {
		return nil, fmt.Errorf("revu up is already running (pid %d)", pid)
	}

	noop := func() {}
	if err := os.MkdirAll(filepath.Dir(pf.Path), 0o755); err != nil {
		logger.Warn("cannot create PID directory", zap.String("path", pf.Path), zap.Error(err))
		return noop, nil
	}
	if err := pf.Write(); err != nil {
		logger.Warn("cannot write PID file", zap.String("path", pf.Path), zap.Error(err))
		return noop, nil
	}

	return func() {
		if pid, err := pf.Read(); err == nil && pid == self {
			_ = pf.Remove()
		}
	}, nil
}
