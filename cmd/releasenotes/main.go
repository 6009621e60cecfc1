package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/systemstart/release-notes/pkg/api"
	"github.com/systemstart/release-notes/pkg/config"
	"github.com/systemstart/release-notes/pkg/logging"
	"github.com/systemstart/release-notes/pkg/processing"
	"github.com/systemstart/release-notes/pkg/steps"
)

var version = "dev"

const (
	_ = iota
	exitLoggingSetupFailed
	exitDotenvError
	exitLoadWorkflowFailed
	exitLoadContextFailed
	exitLoadInstancesFailed
	exitConfigurationError
	exitGraphError
	exitSourceFetchFailed
	exitDeliveryFailed
	exitInvalidInput
	exitWorkflowFailed
)

var (
	workflowFile  string
	contextFile   string
	instancesFile string
	envFile       string
	repository    string
	dryRun        bool
	loggingType   string
	logLevel      string
	showVersion   bool
)

func init() {
	flag.StringVar(
		&workflowFile,
		"workflow",
		"",
		"workflow YAML file (default: built-in fetch/format/deliver/confirm chain)")
	flag.StringVar(
		&contextFile,
		"context-file",
		"",
		"initial task context YAML file")
	flag.StringVar(
		&instancesFile,
		"instances",
		"",
		"instances YAML file, runs the workflow once per instance")
	flag.StringVar(
		&envFile,
		"env-file",
		"",
		".env file to load (default: .env if present)")
	flag.StringVar(
		&repository,
		"repository",
		"",
		"owner/repo to collect pull requests from (overrides GITHUB_REPOSITORY)")
	flag.BoolVar(
		&dryRun,
		"dry-run",
		false,
		"log the release notes instead of posting them")
	flag.StringVar(
		&loggingType,
		"logging-type",
		"tint",
		"logging type: json, text or tint")
	flag.StringVar(
		&logLevel,
		"log-level",
		"info",
		"logging level: debug, info, warn, error")
	flag.BoolVar(
		&showVersion,
		"version",
		false,
		"print version and exit")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := logging.Initialize(os.Stderr, loggingType, logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(exitLoggingSetupFailed)
	}

	deps := steps.Deps{Env: loadEnv()}
	wf := loadWorkflow()
	taskContext := loadTaskContext()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if instancesFile != "" {
		err = processing.RunInstances(ctx, wf, deps, taskContext, loadInstances())
	} else {
		err = processing.RunWorkflow(ctx, wf, deps, taskContext)
	}
	if err != nil {
		slog.Error("workflow failed", "error", err)
		stop()
		os.Exit(exitCode(err))
	}

	slog.Info("done")
}

func exitCode(err error) int {
	var (
		cfgErr       *api.ConfigurationError
		graphErr     *api.GraphError
		fetchErr     *api.SourceFetchError
		deliveryErr  *api.DeliveryError
		missingErr   *api.MissingInputError
		malformedErr *api.MalformedInputError
	)
	switch {
	case errors.As(err, &cfgErr):
		return exitConfigurationError
	case errors.As(err, &graphErr):
		return exitGraphError
	case errors.As(err, &fetchErr):
		return exitSourceFetchFailed
	case errors.As(err, &deliveryErr):
		return exitDeliveryFailed
	case errors.As(err, &missingErr), errors.As(err, &malformedErr):
		return exitInvalidInput
	default:
		return exitWorkflowFailed
	}
}

// loadEnv snapshots the process environment and extends it with the .env
// file. Variables already set in the environment take precedence.
func loadEnv() config.Env {
	env := config.FromEnviron(os.Environ())

	filename := envFile
	if filename == "" {
		if _, err := os.Stat(".env"); err != nil {
			if !os.IsNotExist(err) {
				slog.Error("failed to check .env", "error", err)
				os.Exit(exitDotenvError)
			}
			slog.Debug("no .env file found")
			return env
		}
		filename = ".env"
	}

	env, err := env.WithDotenv(filename)
	if err != nil {
		slog.Error("failed to load env file", "filename", filename, "error", err)
		os.Exit(exitDotenvError)
	}
	slog.Info("using env file", "filename", filename)
	return env
}

func loadWorkflow() *api.Workflow {
	wf := api.DefaultWorkflow()
	if workflowFile != "" {
		loaded, err := api.LoadWorkflow(workflowFile)
		if err != nil {
			slog.Error("failed to load workflow file", "filename", workflowFile, "error", err)
			os.Exit(exitLoadWorkflowFailed)
		}
		wf = loaded
	}

	if dryRun {
		for i := range wf.Steps {
			if wf.Steps[i].Type == api.StepTypeDeliverToChannel {
				wf.Steps[i].Deliver = &api.DeliverConfig{DryRun: true}
			}
		}
	}
	return wf
}

func loadTaskContext() api.Values {
	taskContext := api.Values{}
	if contextFile != "" {
		loaded, err := processing.LoadContextFile(contextFile)
		if err != nil {
			slog.Error("failed to load context file", "filename", contextFile, "error", err)
			os.Exit(exitLoadContextFailed)
		}
		taskContext = loaded
	}
	if repository != "" {
		taskContext[api.KeyRepository] = repository
	}
	return taskContext
}

func loadInstances() *api.InstancesConfig {
	cfg, err := api.LoadInstances(instancesFile)
	if err != nil {
		slog.Error("failed to load instances file", "filename", instancesFile, "error", err)
		os.Exit(exitLoadInstancesFailed)
	}
	return cfg
}
