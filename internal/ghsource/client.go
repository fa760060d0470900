// Package ghsource fetches issue snapshots from the GitHub API.
package ghsource

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/jmholla/triagebot/internal/format"
	"github.com/jmholla/triagebot/internal/model"
)

const perPage = 100

// maintainerAssociations are the author-association categories treated as
// maintainer voices when rendering comments.
var maintainerAssociations = map[string]struct{}{
	"OWNER":        {},
	"MEMBER":       {},
	"COLLABORATOR": {},
}

// Client wraps the GitHub API for a single repository.
type Client struct {
	gh    *github.Client
	owner string
	repo  string
}

// NewClient creates a client for "owner/name" using a personal access token.
func NewClient(token, repo string) (*Client, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid repository %q, want owner/name", repo)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &Client{
		gh:    github.NewClient(tc),
		owner: owner,
		repo:  name,
	}, nil
}

// OpenIssues fetches open issues sorted by most recently updated, excluding
// pull requests. maxPages limits pagination (100 issues per page); 0 fetches
// everything.
func (c *Client) OpenIssues(ctx context.Context, maxPages int) ([]model.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:     "open",
		Sort:      "updated",
		Direction: "desc",
		ListOptions: github.ListOptions{
			PerPage: perPage,
		},
	}

	var issues []model.Issue
	pages := 0
	for {
		page, resp, err := c.gh.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list issues for %s/%s: %w", c.owner, c.repo, err)
		}

		for _, is := range page {
			if is.IsPullRequest() {
				continue
			}
			issues = append(issues, convertIssue(is))
		}

		pages++
		if resp.NextPage == 0 || (maxPages > 0 && pages >= maxPages) {
			break
		}
		opts.Page = resp.NextPage
	}

	return issues, nil
}

// Issue fetches a single issue by number.
func (c *Client) Issue(ctx context.Context, number int) (model.Issue, error) {
	is, _, err := c.gh.Issues.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return model.Issue{}, fmt.Errorf("get issue #%d: %w", number, err)
	}
	if is.IsPullRequest() {
		return model.Issue{}, fmt.Errorf("#%d is a pull request, not an issue", number)
	}
	return convertIssue(is), nil
}

// Comments fetches up to max of an issue's newest comments, newest first.
func (c *Client) Comments(ctx context.Context, number, max int) ([]model.Comment, error) {
	sort := "created"
	direction := "desc"
	opts := &github.IssueListCommentsOptions{
		Sort:      &sort,
		Direction: &direction,
		ListOptions: github.ListOptions{
			PerPage: max,
		},
	}

	raw, _, err := c.gh.Issues.ListComments(ctx, c.owner, c.repo, number, opts)
	if err != nil {
		return nil, fmt.Errorf("list comments for #%d: %w", number, err)
	}

	if len(raw) > max {
		raw = raw[:max]
	}
	comments := make([]model.Comment, 0, len(raw))
	for _, rc := range raw {
		comments = append(comments, convertComment(rc))
	}
	return comments, nil
}

func convertIssue(is *github.Issue) model.Issue {
	labels := make([]string, 0, len(is.Labels))
	for _, l := range is.Labels {
		labels = append(labels, l.GetName())
	}

	// Limits are character counts, so clip by runes, never bytes.
	body := is.GetBody()
	if utf8.RuneCountInString(body) > model.MaxBodyChars {
		body = format.Clip(body, model.MaxBodyChars) + model.TruncationMarker
	}

	return model.Issue{
		Number:        is.GetNumber(),
		Title:         is.GetTitle(),
		URL:           is.GetHTMLURL(),
		Labels:        labels,
		Body:          body,
		CreatedAt:     is.GetCreatedAt().Time,
		UpdatedAt:     is.GetUpdatedAt().Time,
		Assignee:      is.GetAssignee().GetLogin(),
		CommentsCount: is.GetComments(),
	}
}

func convertComment(rc *github.IssueComment) model.Comment {
	body := format.Clip(rc.GetBody(), model.MaxCommentChars)

	_, isMaintainer := maintainerAssociations[rc.GetAuthorAssociation()]

	return model.Comment{
		Author:       rc.GetUser().GetLogin(),
		Body:         body,
		CreatedAt:    rc.GetCreatedAt().Time,
		IsMaintainer: isMaintainer,
	}
}
