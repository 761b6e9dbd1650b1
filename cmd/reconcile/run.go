// Package reconcile implements the one-shot CLI surface. It reads a single
// slot spec from a YAML document, reconciles the remote slot once, reports
// whether anything changed, and exits. With --check it predicts mutations
// without performing them.
package reconcile

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/dc-tec/appslot-operator/internal/azure"
	reconcilecore "github.com/dc-tec/appslot-operator/internal/reconcile"
)

// result is the JSON document written to stdout after a successful run.
type result struct {
	Changed bool   `json:"changed"`
	ID      string `json:"id,omitempty"`
	State   string `json:"state,omitempty"`
	Check   bool   `json:"check,omitempty"`
}

// Run executes one reconcile invocation and returns its terminal error, if
// any. There are no retries: a remote fault surfaces immediately and the
// next invocation starts from a fresh lookup.
func Run(args []string) error {
	var specPath string
	var subscriptionID string
	var check bool

	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
	fs.StringVar(&specPath, "spec", "", "Path to the slot spec YAML document, or '-' for stdin.")
	fs.StringVar(&subscriptionID, "subscription-id", os.Getenv("AZURE_SUBSCRIPTION_ID"),
		"Azure subscription that holds the web app. Defaults to $AZURE_SUBSCRIPTION_ID.")
	fs.BoolVar(&check, "check", false,
		"Report whether changes would be made without performing them.")

	opts := zap.Options{
		Development: true,
	}
	opts.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
	logger := ctrl.Log.WithName("reconcile")

	if specPath == "" {
		return fmt.Errorf("missing --spec")
	}
	if subscriptionID == "" {
		return fmt.Errorf("no subscription id configured, set --subscription-id or $AZURE_SUBSCRIPTION_ID")
	}

	raw, err := readSpec(specPath)
	if err != nil {
		return err
	}

	spec, err := parseSpec(raw)
	if err != nil {
		return err
	}

	gateway, err := azure.NewDefaultClient(subscriptionID, logger.WithName("azure"))
	if err != nil {
		return fmt.Errorf("building App Service client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator := reconcilecore.NewOrchestrator(gateway, logger, reconcilecore.Options{CheckMode: check})
	outcome, err := orchestrator.Reconcile(ctx, spec)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result{Changed: outcome.Changed, ID: outcome.ID, State: outcome.State, Check: check})
}

func readSpec(path string) ([]byte, error) {
	if path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading spec from stdin: %w", err)
		}
		return raw, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}
	return raw, nil
}
