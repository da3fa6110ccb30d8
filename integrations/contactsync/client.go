// Package contactsync pulls people from an external lead service and maps
// them into contact drafts. Only identity, name, email and phone cross the
// boundary; everything else stays remote.
package contactsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrMissingAPIKey is returned when the client is constructed without a key.
var ErrMissingAPIKey = errors.New("contactsync: api key is not set")

// Person is a remote contact record reduced to the fields the CRM imports.
type Person struct {
	RemoteID string
	Name     string
	Email    string
	Phone    string
}

// Client talks to the remote people API using basic auth with the API key as
// the username, the way the lead service expects.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a sync client. baseURL is the service root without a trailing
// slash.
func New(baseURL, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type remotePerson struct {
	ID        json.Number `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
}

type peopleResponse struct {
	People []remotePerson `json:"people"`
}

// FetchPeople retrieves the remote people list.
func (c *Client) FetchPeople(ctx context.Context) ([]Person, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/people", nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("contactsync: unexpected status %d", resp.StatusCode)
	}

	var payload peopleResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("contactsync: decoding people response: %w", err)
	}
	if payload.People == nil {
		return nil, errors.New("contactsync: unexpected response format")
	}

	people := make([]Person, 0, len(payload.People))
	for _, p := range payload.People {
		name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
		people = append(people, Person{
			RemoteID: p.ID.String(),
			Name:     name,
			Email:    p.Email,
			Phone:    p.Phone,
		})
	}
	return people, nil
}
