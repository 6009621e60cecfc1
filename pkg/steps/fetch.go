package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/systemstart/release-notes/pkg/api"
	"github.com/systemstart/release-notes/pkg/config"
)

type fetchStep struct {
	name            string
	apiURL          string
	excludeBranches []string
	env             config.Env
	client          *http.Client
}

// pullRequestMeta holds the fields the fetch step filters on. The entries
// themselves are passed on untouched. A null or empty merged_at means the
// pull request was closed without merging.
type pullRequestMeta struct {
	MergedAt *string `json:"merged_at"`
	Head     struct {
		Ref string `json:"ref"`
	} `json:"head"`
}

// NewFetchStep creates a fetch-release-source step.
func NewFetchStep(name string, cfg *api.FetchConfig, deps Deps) (Step, error) {
	s := &fetchStep{
		name:   name,
		env:    deps.Env,
		client: deps.httpClient(),
	}
	if cfg != nil {
		s.apiURL = cfg.APIURL
		for _, pattern := range cfg.ExcludeBranches {
			if !doublestar.ValidatePattern(pattern) {
				return nil, fmt.Errorf("invalid excludeBranches pattern %q", pattern)
			}
		}
		s.excludeBranches = cfg.ExcludeBranches
	}
	return s, nil
}

func (s *fetchStep) Name() string { return s.name }

func (s *fetchStep) RequiredSecrets() []string { return []string{api.EnvGitHubToken} }

func (s *fetchStep) Run(ctx context.Context, inputs api.Values) (api.Values, error) {
	repo, err := s.repository(inputs)
	if err != nil {
		return nil, err
	}

	body, err := s.listClosedPullRequests(ctx, repo)
	if err != nil {
		return nil, err
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parsing pull requests: %w", err)
	}

	merged := make([]json.RawMessage, 0, len(entries))
	for i, entry := range entries {
		var meta pullRequestMeta
		if err := json.Unmarshal(entry, &meta); err != nil {
			return nil, fmt.Errorf("parsing pull request %d: %w", i, err)
		}
		if meta.MergedAt == nil || *meta.MergedAt == "" {
			continue
		}
		excluded, err := s.excluded(meta.Head.Ref)
		if err != nil {
			return nil, err
		}
		if excluded {
			slog.Debug("skipping pull request from excluded branch", "step", s.name, "branch", meta.Head.Ref)
			continue
		}
		merged = append(merged, entry)
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encoding merged pull requests: %w", err)
	}

	slog.Info("fetched merged pull requests", "step", s.name, "repository", repo, "closed", len(entries), "merged", len(merged))
	return api.Values{
		api.KeyReleaseNotes:     string(raw),
		api.KeyRepository:       repo,
		api.KeyPullRequestCount: len(merged),
	}, nil
}

// repository resolves owner/repo from the inputs first, then the environment.
func (s *fetchStep) repository(inputs api.Values) (string, error) {
	repo, err := optionalText(s.name, inputs, api.KeyRepository)
	if err != nil {
		return "", err
	}
	if repo == "" {
		repo = s.env.GetOr(api.EnvGitHubRepository, api.DefaultRepository)
	}
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", &api.MalformedInputError{
			Step: s.name,
			Key:  api.KeyRepository,
			Err:  fmt.Errorf("expected owner/repo, got %q", repo),
		}
	}
	return repo, nil
}

func (s *fetchStep) baseURL() string {
	base := s.apiURL
	if base == "" {
		base = s.env.GetOr(api.EnvGitHubAPIURL, api.DefaultGitHubAPI)
	}
	return strings.TrimRight(base, "/")
}

func (s *fetchStep) listClosedPullRequests(ctx context.Context, repo string) ([]byte, error) {
	query := url.Values{}
	query.Set("state", "closed")
	query.Set("per_page", strconv.Itoa(api.PullRequestPerPage))
	endpoint := fmt.Sprintf("%s/repos/%s/pulls?%s", s.baseURL(), repo, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.env.Get(api.EnvGitHubToken))
	req.Header.Set("Accept", "application/vnd.github+json")

	slog.Debug("requesting closed pull requests", "step", s.name, "url", endpoint)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hosting API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &api.SourceFetchError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func (s *fetchStep) excluded(branch string) (bool, error) {
	for _, pattern := range s.excludeBranches {
		ok, err := doublestar.Match(pattern, branch)
		if err != nil {
			return false, fmt.Errorf("matching branch %q against %q: %w", branch, pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
