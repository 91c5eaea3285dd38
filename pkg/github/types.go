package github

import (
	"errors"
	"fmt"
)

// ErrUserNotFound is returned when the GitHub API answers 404 for a login
var ErrUserNotFound = errors.New("github user not found")

// User is the subset of the GitHub users API payload the generator reads
type User struct {
	Login           string `json:"login"`
	Name            string `json:"name"`
	AvatarURL       string `json:"avatar_url"`
	HTMLURL         string `json:"html_url"`
	Bio             string `json:"bio"`
	Company         string `json:"company"`
	Location        string `json:"location"`
	Blog            string `json:"blog"`
	TwitterUsername string `json:"twitter_username"`
	Email           string `json:"email"`
	Followers       int    `json:"followers"`
	Following       int    `json:"following"`
	PublicRepos     int    `json:"public_repos"`
	CreatedAt       string `json:"created_at"`
}

// Repo is the subset of the GitHub repos API payload the generator reads
type Repo struct {
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	HTMLURL         string   `json:"html_url"`
	Description     string   `json:"description"`
	Language        string   `json:"language"`
	StargazersCount int      `json:"stargazers_count"`
	ForksCount      int      `json:"forks_count"`
	WatchersCount   int      `json:"watchers_count"`
	OpenIssuesCount int      `json:"open_issues_count"`
	Topics          []string `json:"topics"`
	Homepage        string   `json:"homepage"`
	Fork            bool     `json:"fork"`
	Archived        bool     `json:"archived"`
	Private         bool     `json:"private"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
	PushedAt        string   `json:"pushed_at"`
}

// Data bundles everything fetched for one user
type Data struct {
	User  User
	Repos []Repo
}

// APIError is a non-2xx answer from the GitHub API
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("github api %s: status %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("github api %s: status %d", e.URL, e.StatusCode)
}
