// Package profile holds the normalized shape of a GitHub user that templates
// and plugins consume.
package profile

import "time"

// Profile is the normalized user record
type Profile struct {
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	AvatarURL   string    `json:"avatarUrl"`
	ProfileURL  string    `json:"profileUrl"`
	Bio         string    `json:"bio,omitempty"`
	Company     string    `json:"company,omitempty"`
	Location    string    `json:"location,omitempty"`
	Blog        string    `json:"blog,omitempty"`
	Twitter     string    `json:"twitter,omitempty"`
	Email       string    `json:"email,omitempty"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	PublicRepos int       `json:"publicRepos"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Repository is the normalized repository record
type Repository struct {
	Name        string    `json:"name"`
	FullName    string    `json:"fullName"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Language    string    `json:"language,omitempty"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	Watchers    int       `json:"watchers"`
	Issues      int       `json:"issues"`
	Topics      []string  `json:"topics"`
	Homepage    string    `json:"homepage,omitempty"`
	IsFork      bool      `json:"isFork"`
	IsArchived  bool      `json:"isArchived"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	PushedAt    time.Time `json:"pushedAt"`
}

// LanguageStats counts original repositories per primary language
type LanguageStats struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// Stats is the aggregate view over all repositories
type Stats struct {
	TotalStars  int             `json:"totalStars"`
	TotalForks  int             `json:"totalForks"`
	TotalRepos  int             `json:"totalRepos"`
	Languages   []LanguageStats `json:"languages"`
	TopRepos    []Repository    `json:"topRepos"`
	RecentRepos []Repository    `json:"recentRepos"`
}

// Data is what templates render and plugins transform
type Data struct {
	Profile Profile      `json:"profile"`
	Repos   []Repository `json:"repos"`
	Stats   Stats        `json:"stats"`
	// Tools is an optional user-declared tech stack (skillicons ids)
	Tools []string `json:"tools,omitempty"`
}

// Clone returns a deep copy; no slice in the copy aliases the receiver.
func (d *Data) Clone() *Data {
	if d == nil {
		return nil
	}

	out := &Data{
		Profile: d.Profile,
		Repos:   cloneRepos(d.Repos),
		Stats: Stats{
			TotalStars:  d.Stats.TotalStars,
			TotalForks:  d.Stats.TotalForks,
			TotalRepos:  d.Stats.TotalRepos,
			TopRepos:    cloneRepos(d.Stats.TopRepos),
			RecentRepos: cloneRepos(d.Stats.RecentRepos),
		},
		Tools: cloneStrings(d.Tools),
	}
	if d.Stats.Languages != nil {
		out.Stats.Languages = make([]LanguageStats, len(d.Stats.Languages))
		copy(out.Stats.Languages, d.Stats.Languages)
	}
	return out
}

// Clone returns a copy of the repository with its own topics slice
func (r Repository) Clone() Repository {
	r.Topics = cloneStrings(r.Topics)
	return r
}

func cloneRepos(repos []Repository) []Repository {
	if repos == nil {
		return nil
	}
	out := make([]Repository, len(repos))
	for i, repo := range repos {
		out[i] = repo.Clone()
	}
	return out
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
