package main

import (
	"fmt"
	"strings"

	"github.com/tcnksm/go-latest"
)

// githubLatest compares an analyzer version with the newest release tag of
// peripheryapp/periphery.
type githubLatest struct {
	owner, repo string
}

func newGithubLatest() githubLatest {
	return githubLatest{owner: "peripheryapp", repo: "periphery"}
}

func (g githubLatest) CheckLatest(current string) (string, bool, error) {
	tag := &latest.GithubTag{
		Owner:      g.owner,
		Repository: g.repo,
		FixVersionStrFunc: func(s string) string {
			return strings.TrimPrefix(strings.TrimSpace(s), "v")
		},
	}
	res, err := latest.Check(tag, strings.TrimPrefix(strings.TrimSpace(current), "v"))
	if err != nil {
		return "", false, fmt.Errorf("check %s/%s releases: %w", g.owner, g.repo, err)
	}
	return res.Current, res.Outdated, nil
}
