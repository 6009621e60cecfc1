package api

const (
	StepTypeFetchReleaseSource = "fetch-release-source"
	StepTypeFormatNotes        = "format-notes"
	StepTypeDeliverToChannel   = "deliver-to-channel"
	StepTypeConfirmDelivery    = "confirm-delivery"

	// Keys exchanged between steps.
	KeyReleaseNotes     = "release_notes"
	KeyRepository       = "repository"
	KeyPullRequestCount = "pull_request_count"
	KeyDelivered        = "delivered"
	KeyStatusCode       = "status_code"

	// Environment variables and secrets consumed by the steps.
	EnvGitHubToken      = "GITHUB_TOKEN"
	EnvGitHubRepository = "GITHUB_REPOSITORY"
	EnvGitHubAPIURL     = "GITHUB_API_URL"
	EnvSlackWebhookURL  = "SLACK_WEBHOOK_URL"

	DefaultRepository  = "owner/repo"
	DefaultGitHubAPI   = "https://api.github.com"
	DefaultHTTPTimeout = "30s"
	PullRequestPerPage = 100
)

// Values is the mapping passed into and returned from a step.
type Values map[string]any

// Workflow is the workflow definition file format.
type Workflow struct {
	Name        string       `yaml:"name"`
	HTTPTimeout string       `yaml:"httpTimeout"`
	Steps       []StepConfig `yaml:"steps"`

	// Set by the loader, not from YAML.
	FilePath string `yaml:"-"`
}

// StepConfig defines a single step within a workflow.
type StepConfig struct {
	Name      string         `yaml:"name"`
	Type      string         `yaml:"type"`
	DependsOn []string       `yaml:"dependsOn"`
	Fetch     *FetchConfig   `yaml:"fetch,omitempty"`
	Format    *FormatConfig  `yaml:"format,omitempty"`
	Deliver   *DeliverConfig `yaml:"deliver,omitempty"`
	Confirm   *ConfirmConfig `yaml:"confirm,omitempty"`
}

// FetchConfig configures the fetch-release-source step.
type FetchConfig struct {
	APIURL          string   `yaml:"apiURL"`
	ExcludeBranches []string `yaml:"excludeBranches"`
}

// FormatConfig configures the format-notes step.
type FormatConfig struct {
	LineTemplate string `yaml:"lineTemplate"`
}

// DeliverConfig configures the deliver-to-channel step.
type DeliverConfig struct {
	DryRun bool `yaml:"dryRun"`
}

// ConfirmConfig configures the confirm-delivery step.
type ConfirmConfig struct {
	Message string `yaml:"message"`
}

// DefaultWorkflow returns the built-in fetch → format → deliver → confirm chain.
func DefaultWorkflow() *Workflow {
	return &Workflow{
		Name:        "release-notes",
		HTTPTimeout: DefaultHTTPTimeout,
		Steps: []StepConfig{
			{Name: "fetch_pr_data", Type: StepTypeFetchReleaseSource},
			{Name: "generate_release_notes", Type: StepTypeFormatNotes, DependsOn: []string{"fetch_pr_data"}},
			{Name: "send_to_slack", Type: StepTypeDeliverToChannel, DependsOn: []string{"generate_release_notes"}},
			{Name: "final_validation", Type: StepTypeConfirmDelivery, DependsOn: []string{"send_to_slack"}},
		},
	}
}
