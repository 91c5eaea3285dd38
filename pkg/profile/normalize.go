package profile

import (
	"strings"
	"time"

	"github.com/harun/ghprofile/pkg/github"
)

// Options filters and decorates the normalized data
type Options struct {
	// IncludePrivate keeps private repositories when the token can see them
	IncludePrivate bool
	// ExcludeRepos drops repositories by name (case-insensitive)
	ExcludeRepos []string
	// PinnedRepos are moved to the front of Stats.TopRepos in the given order
	PinnedRepos []string
	// Tools is copied into Data.Tools after SanitizeTechStack
	Tools []string
}

// NormalizeUser maps the API user onto Profile
func NormalizeUser(user github.User) Profile {
	name := strings.TrimSpace(user.Name)
	if name == "" {
		name = user.Login
	}

	return Profile{
		Username:    user.Login,
		Name:        name,
		AvatarURL:   user.AvatarURL,
		ProfileURL:  user.HTMLURL,
		Bio:         strings.TrimSpace(user.Bio),
		Company:     strings.TrimSpace(user.Company),
		Location:    strings.TrimSpace(user.Location),
		Blog:        strings.TrimSpace(user.Blog),
		Twitter:     strings.TrimSpace(user.TwitterUsername),
		Email:       strings.TrimSpace(user.Email),
		Followers:   user.Followers,
		Following:   user.Following,
		PublicRepos: user.PublicRepos,
		CreatedAt:   parseTime(user.CreatedAt),
	}
}

// NormalizeRepo maps the API repository onto Repository
func NormalizeRepo(repo github.Repo) Repository {
	topics := repo.Topics
	if topics == nil {
		topics = []string{}
	}

	return Repository{
		Name:        repo.Name,
		FullName:    repo.FullName,
		URL:         repo.HTMLURL,
		Description: repo.Description,
		Language:    repo.Language,
		Stars:       repo.StargazersCount,
		Forks:       repo.ForksCount,
		Watchers:    repo.WatchersCount,
		Issues:      repo.OpenIssuesCount,
		Topics:      append([]string(nil), topics...),
		Homepage:    repo.Homepage,
		IsFork:      repo.Fork,
		IsArchived:  repo.Archived,
		CreatedAt:   parseTime(repo.CreatedAt),
		UpdatedAt:   parseTime(repo.UpdatedAt),
		PushedAt:    parseTime(repo.PushedAt),
	}
}

// Normalize converts fetched API data into Data
func Normalize(raw *github.Data, opts Options) *Data {
	if raw == nil {
		return &Data{Repos: []Repository{}, Stats: AggregateStats(nil)}
	}

	excluded := make(map[string]struct{}, len(opts.ExcludeRepos))
	for _, name := range opts.ExcludeRepos {
		excluded[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}

	repos := make([]Repository, 0, len(raw.Repos))
	for _, repo := range raw.Repos {
		if repo.Private && !opts.IncludePrivate {
			continue
		}
		if _, skip := excluded[strings.ToLower(repo.Name)]; skip {
			continue
		}
		repos = append(repos, NormalizeRepo(repo))
	}

	data := &Data{
		Profile: NormalizeUser(raw.User),
		Repos:   repos,
		Stats:   AggregateStats(repos),
	}
	if len(opts.PinnedRepos) > 0 {
		data.Stats.TopRepos = pin(repos, data.Stats.TopRepos, opts.PinnedRepos)
	}
	if len(opts.Tools) > 0 {
		data.Tools = SanitizeTechStack(opts.Tools)
	}
	return data
}

// pin moves the named repositories to the front of top, keeping the limit
func pin(all, top []Repository, names []string) []Repository {
	byName := make(map[string]Repository, len(all))
	for _, repo := range all {
		byName[strings.ToLower(repo.Name)] = repo
	}

	seen := make(map[string]struct{})
	out := make([]Repository, 0, len(top)+len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		repo, ok := byName[key]
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, repo.Clone())
	}
	for _, repo := range top {
		if _, dup := seen[strings.ToLower(repo.Name)]; dup {
			continue
		}
		out = append(out, repo)
	}
	return truncate(out, max(DefaultTopRepos, len(seen)))
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
