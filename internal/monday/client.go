// Package monday reads boards, items and subitems from the Monday.com GraphQL API.
package monday

import (
	"context"
	"net/http"

	"github.com/machinebox/graphql"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/sirupsen/logrus"
)

const DefaultPageSize = 100

// maxPages bounds a single board fetch so a cursor loop cannot run forever.
const maxPages = 500

const itemFields = `
	id
	name
	state
	created_at
	group { id title }
	board { id }
	column_values { id type text value }
	subitems {
		id
		name
		state
		created_at
		board { id }
		column_values { id type text value }
	}
`

const firstPageQuery = `
query ($boardIds: [ID!], $limit: Int!) {
	boards(ids: $boardIds) {
		id
		name
		items_page(limit: $limit) {
			cursor
			items {` + itemFields + `}
		}
	}
}`

const nextPageQuery = `
query ($cursor: String!, $limit: Int!) {
	next_items_page(cursor: $cursor, limit: $limit) {
		cursor
		items {` + itemFields + `}
	}
}`

type itemsPage struct {
	Cursor *string `json:"cursor"`
	Items  []Item  `json:"items"`
}

type firstPageResponse struct {
	Boards []struct {
		Board
		ItemsPage itemsPage `json:"items_page"`
	} `json:"boards"`
}

type nextPageResponse struct {
	NextItemsPage itemsPage `json:"next_items_page"`
}

// Fetcher is what the sync reconciler needs from Monday.
type Fetcher interface {
	FetchBoardItems(ctx context.Context, boardID string) ([]Item, error)
}

type Client struct {
	gql        *graphql.Client
	token      string
	apiVersion string
	pageSize   int
}

func NewClient(settings config.MondaySettings, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	pageSize := settings.PageSize
	if pageSize <= 0 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}

	return &Client{
		gql:        graphql.NewClient(settings.APIURL, graphql.WithHTTPClient(httpClient)),
		token:      settings.APIToken,
		apiVersion: settings.APIVersion,
		pageSize:   pageSize,
	}
}

func (c *Client) Configured() bool {
	return c.token != ""
}

func (c *Client) newRequest(query string) *graphql.Request {
	req := graphql.NewRequest(query)
	req.Header.Set("Authorization", c.token)
	if c.apiVersion != "" {
		req.Header.Set("API-Version", c.apiVersion)
	}
	req.Var("limit", c.pageSize)
	return req
}

// FetchBoardItems returns every item on the board, following the items_page
// cursor until it is exhausted.
func (c *Client) FetchBoardItems(ctx context.Context, boardID string) ([]Item, error) {
	log := config.WithContext(ctx).WithField("board_id", boardID)

	if !c.Configured() {
		return nil, apperror.NotConfigured("set MONDAY_API_TOKEN")
	}

	req := c.newRequest(firstPageQuery)
	req.Var("boardIds", []string{boardID})

	var first firstPageResponse
	if err := c.gql.Run(ctx, req, &first); err != nil {
		log.WithError(err).Warn("Monday board request failed")
		return nil, apperror.Upstream("monday", err)
	}
	if len(first.Boards) == 0 {
		return nil, apperror.NotFound("monday board " + boardID)
	}

	page := first.Boards[0].ItemsPage
	items := stampBoard(page.Items, boardID)

	for pages := 1; page.Cursor != nil && *page.Cursor != ""; pages++ {
		if pages >= maxPages {
			log.Warn("Monday pagination stopped at page limit")
			break
		}

		next := c.newRequest(nextPageQuery)
		next.Var("cursor", *page.Cursor)

		var resp nextPageResponse
		if err := c.gql.Run(ctx, next, &resp); err != nil {
			log.WithError(err).WithField("fetched", len(items)).Warn("Monday page request failed")
			return nil, apperror.Upstream("monday", err)
		}
		page = resp.NextItemsPage
		items = append(items, stampBoard(page.Items, boardID)...)
	}

	log.WithFields(logrus.Fields{
		"board_name": first.Boards[0].Name,
		"items":      len(items),
	}).Debug("Fetched Monday board")
	return items, nil
}

// stampBoard fills in the parent board for items that came back without one.
func stampBoard(items []Item, boardID string) []Item {
	for i := range items {
		if items[i].Board == nil || items[i].Board.ID == "" {
			items[i].Board = &Board{ID: boardID}
		}
	}
	return items
}
