package profile

import (
	"math"
	"sort"
)

const (
	// DefaultTopRepos is how many repositories TopRepos and RecentRepos keep
	DefaultTopRepos = 6
)

// AggregateLanguages counts primary languages of non-fork repositories,
// most used first. Ties are broken by name so output is stable.
func AggregateLanguages(repos []Repository) []LanguageStats {
	counts := make(map[string]int)
	total := 0
	for _, repo := range repos {
		if repo.Language == "" || repo.IsFork {
			continue
		}
		counts[repo.Language]++
		total++
	}

	languages := make([]LanguageStats, 0, len(counts))
	for name, count := range counts {
		percentage := 0
		if total > 0 {
			percentage = int(math.Round(float64(count) / float64(total) * 100))
		}
		languages = append(languages, LanguageStats{Name: name, Count: count, Percentage: percentage})
	}

	sort.SliceStable(languages, func(i, j int) bool {
		if languages[i].Count != languages[j].Count {
			return languages[i].Count > languages[j].Count
		}
		return languages[i].Name < languages[j].Name
	})
	return languages
}

// TotalStars sums stargazers across repositories
func TotalStars(repos []Repository) int {
	total := 0
	for _, repo := range repos {
		total += repo.Stars
	}
	return total
}

// TotalForks sums forks across repositories
func TotalForks(repos []Repository) int {
	total := 0
	for _, repo := range repos {
		total += repo.Forks
	}
	return total
}

// TopRepos returns original, non-archived repositories by stars
func TopRepos(repos []Repository, limit int) []Repository {
	out := FilterOriginal(repos)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Stars > out[j].Stars
	})
	return truncate(out, limit)
}

// RecentRepos returns original, non-archived repositories by last push
func RecentRepos(repos []Repository, limit int) []Repository {
	out := FilterOriginal(repos)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PushedAt.After(out[j].PushedAt)
	})
	return truncate(out, limit)
}

// FilterOriginal drops forks and archived repositories
func FilterOriginal(repos []Repository) []Repository {
	out := make([]Repository, 0, len(repos))
	for _, repo := range repos {
		if repo.IsFork || repo.IsArchived {
			continue
		}
		out = append(out, repo.Clone())
	}
	return out
}

// SortByStars returns a copy ordered by stars, highest first
func SortByStars(repos []Repository) []Repository {
	out := cloneRepos(repos)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Stars > out[j].Stars
	})
	return out
}

// AggregateStats builds the Stats block for a set of repositories
func AggregateStats(repos []Repository) Stats {
	return Stats{
		TotalStars:  TotalStars(repos),
		TotalForks:  TotalForks(repos),
		TotalRepos:  len(repos),
		Languages:   AggregateLanguages(repos),
		TopRepos:    TopRepos(repos, DefaultTopRepos),
		RecentRepos: RecentRepos(repos, DefaultTopRepos),
	}
}

func truncate(repos []Repository, limit int) []Repository {
	if limit > 0 && len(repos) > limit {
		return repos[:limit]
	}
	return repos
}
