package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

const usersURL = "https://api.github.com/users"

// GitHubAssigner picks a pseudo-random GitHub login to stamp on a purchase,
// for deployments that register items to an externally assigned identity
// instead of the buyer's own.
type GitHubAssigner struct {
	client *http.Client
	token  string
}

func NewGitHubAssigner(token string) *GitHubAssigner {
	return &GitHubAssigner{
		client: &http.Client{Timeout: 5 * time.Second},
		token:  token,
	}
}

type githubUser struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

func (a *GitHubAssigner) AssignLogin(ctx context.Context) (string, error) {
	// The users endpoint has no random mode; a random offset approximates one.
	since := rand.Intn(1000)
	url := fmt.Sprintf("%s?since=%d&per_page=1", usersURL, since)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if a.token != "" {
		req.Header.Set("Authorization", "token "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch github user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch github user: status %d", resp.StatusCode)
	}

	var users []githubUser
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return "", fmt.Errorf("decode github user: %w", err)
	}
	if len(users) == 0 || users[0].Login == "" {
		return "", fmt.Errorf("no github user returned")
	}
	return users[0].Login, nil
}
