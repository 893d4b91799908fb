package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/github"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/outwriter"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// postPullRequestComment posts the markdown report on the pull request named by
// the configured ref. It returns false when the ref is not a pull request.
func postPullRequestComment(ctx context.Context, cfg *contract.Config, result *schema.ReportResult) (bool, error) {
	prNumber, ok := github.ParsePullRequestNumber(cfg.GitHub.Ref)
	if !ok {
		return false, nil
	}
	if cfg.GitHub.Repository == "" {
		return false, fmt.Errorf("--github-repository is required to comment on pull request %d", prNumber)
	}

	client := github.NewClient(cfg.GitHub.APIURL, cfg.GitHub.Repository, cfg.GitHub.Token)
	if err := client.PostComment(ctx, prNumber, outwriter.RenderMarkdown(result)); err != nil {
		return false, fmt.Errorf("failed to comment on pull request %d: %w", prNumber, err)
	}
	return true, nil
}

// resolveUsernames looks up the platform login of every email-keyed row.
// The first failed lookup stops resolution and leaves remaining rows as they are.
func resolveUsernames(ctx context.Context, cfg *contract.Config, rows []schema.ReportRow) {
	client := github.NewClient(cfg.GitHub.APIURL, cfg.GitHub.Repository, cfg.GitHub.Token)
	for i := range rows {
		if !strings.Contains(rows[i].Key, "@") {
			continue
		}
		login, found, err := client.LookupUserByEmail(ctx, rows[i].Key)
		if err != nil {
			contract.LogWarn("Cannot resolve usernames", err)
			return
		}
		if found {
			rows[i].Username = login
		}
	}
}
