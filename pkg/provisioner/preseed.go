package provisioner

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Preseed is a named configuration-file resource used to drive unattended
// OS installation.
type Preseed struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Content     string `json:"content,omitempty"`
	Description string `json:"description,omitempty"`
	KnownGood   bool   `json:"known_good"`
	Public      bool   `json:"public"`
}

// UpsertOutcome reports which path an upsert took.
type UpsertOutcome string

const (
	// OutcomeCreated means no preseed existed under the name and one was POSTed.
	OutcomeCreated UpsertOutcome = "created"
	// OutcomeUpdated means an existing preseed was replaced with a full PUT.
	OutcomeUpdated UpsertOutcome = "updated"
	// OutcomeDiscovered means an existing preseed was returned unchanged.
	OutcomeDiscovered UpsertOutcome = "discovered"
)

// PreseedParams describes the desired state of a preseed keyed by Name.
// A nil Content means discovery-only: never create or modify, just return
// the existing resource.
type PreseedParams struct {
	Name        string
	Type        string
	Content     *string
	Description string
	KnownGood   bool
	Public      bool
}

type preseedBody struct {
	Content     string `json:"content"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Public      bool   `json:"public"`
	KnownGood   bool   `json:"known_good"`
	Description string `json:"description,omitempty"`
}

// ListPreseeds fetches every preseed visible to the token, including
// non-public ones. The service offers no server-side name filter, so
// lookups scan this list on the client.
func (c *Client) ListPreseeds(ctx context.Context) ([]Preseed, error) {
	query := url.Values{"show_all": []string{"true"}}

	var preseeds []Preseed
	if err := c.do(ctx, http.MethodGet, "/api/v1/preseed", query, nil, []int{http.StatusOK}, &preseeds); err != nil {
		return nil, err
	}
	return preseeds, nil
}

// UpsertPreseed reconciles a preseed by name: create if absent, replace if
// present, or (with nil Content) discover without mutating. Name is treated
// as a uniqueness key even though the service does not enforce one; if
// duplicates exist the first listed entry wins.
//
// The existence check and the subsequent write are separate requests, not
// a transaction: two reconcilers racing on the same name can both observe
// "absent" and both create. The service offers no conditional write to
// close that window.
func (c *Client) UpsertPreseed(ctx context.Context, p PreseedParams) (Preseed, UpsertOutcome, error) {
	existing, err := c.findPreseed(ctx, p.Name)
	if err != nil {
		return Preseed{}, "", err
	}

	if p.Content == nil {
		if existing == nil {
			return Preseed{}, "", &MissingContentError{Name: p.Name}
		}
		return *existing, OutcomeDiscovered, nil
	}

	body := preseedBody{
		Content:     *p.Content,
		Name:        p.Name,
		Type:        p.Type,
		Public:      p.Public,
		KnownGood:   p.KnownGood,
		Description: p.Description,
	}

	var result Preseed
	if existing != nil {
		path := fmt.Sprintf("/api/v1/preseed/%d", existing.ID)
		if err := c.do(ctx, http.MethodPut, path, nil, body, []int{http.StatusOK}, &result); err != nil {
			return Preseed{}, "", err
		}
		return result, OutcomeUpdated, nil
	}

	if err := c.do(ctx, http.MethodPost, "/api/v1/preseed", nil, body, []int{http.StatusCreated}, &result); err != nil {
		return Preseed{}, "", err
	}
	return result, OutcomeCreated, nil
}

func (c *Client) findPreseed(ctx context.Context, name string) (*Preseed, error) {
	preseeds, err := c.ListPreseeds(ctx)
	if err != nil {
		return nil, err
	}
	for i := range preseeds {
		if preseeds[i].Name == name {
			return &preseeds[i], nil
		}
	}
	return nil, nil
}
