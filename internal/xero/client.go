// Package xero fetches financial reports from the Xero accounting API.
package xero

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/config"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	AuthURL  = "https://login.xero.com/identity/connect/authorize"
	TokenURL = "https://identity.xero.com/connect/token"
)

var (
	ErrNoConnection     = errors.New("no xero connection")
	ErrDecryptionFailed = errors.New("failed to decrypt xero token")
)

// ReportSource is what the metric engine needs from the accounting system.
type ReportSource interface {
	ProfitAndLoss(ctx context.Context, from, to util.Date) (*FinancialSummary, error)
}

type Client struct {
	repo        ConnectionRepository
	oauthConfig *oauth2.Config
	httpClient  *http.Client
	apiURL      string
	tenantID    string

	// mu serializes refreshes so concurrent reports never spend the same
	// refresh token twice.
	mu sync.Mutex
}

func NewOAuthConfig(settings config.XeroSettings) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
		RedirectURL:  settings.RedirectURL,
		Scopes:       []string{"offline_access", "accounting.reports.read"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  AuthURL,
			TokenURL: TokenURL,
		},
	}
}

func NewClient(repo ConnectionRepository, oauthConfig *oauth2.Config, settings config.XeroSettings, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		repo:        repo,
		oauthConfig: oauthConfig,
		httpClient:  httpClient,
		apiURL:      settings.APIURL,
		tenantID:    settings.TenantID,
	}
}

// token loads the stored connection and returns a valid access token,
// persisting it again when the refresh rotated it.
func (c *Client) token(ctx context.Context) (*Connection, *oauth2.Token, error) {
	log := config.WithContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.repo.Get(ctx, c.tenantID)
	if err != nil {
		log.WithError(err).Error("Failed to load Xero connection")
		return nil, nil, err
	}
	if conn == nil {
		return nil, nil, apperror.Wrap(apperror.KindNotConfigured, "not configured: connect a Xero organisation", ErrNoConnection)
	}

	access, err := config.Decrypt(conn.EncryptedAccessToken)
	if err != nil {
		log.WithError(err).Error("Failed to decrypt Xero access token")
		return nil, nil, ErrDecryptionFailed
	}
	refresh, err := config.Decrypt(conn.EncryptedRefreshToken)
	if err != nil {
		log.WithError(err).Error("Failed to decrypt Xero refresh token")
		return nil, nil, ErrDecryptionFailed
	}

	stored := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    conn.TokenType,
		Expiry:       conn.Expiry,
	}

	oauthCtx := context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	fresh, err := c.oauthConfig.TokenSource(oauthCtx, stored).Token()
	if err != nil {
		log.WithError(err).Warn("Failed to refresh Xero token")
		return nil, nil, apperror.Upstream("xero token refresh", err)
	}

	if fresh.AccessToken != access || fresh.RefreshToken != refresh {
		if err := c.persist(ctx, conn, fresh); err != nil {
			log.WithError(err).Error("Failed to persist refreshed Xero token")
			return nil, nil, err
		}
		log.WithField("tenant_id", conn.TenantID).Info("Xero token refreshed")
	}
	return conn, fresh, nil
}

func (c *Client) persist(ctx context.Context, conn *Connection, tok *oauth2.Token) error {
	access, err := config.Encrypt(tok.AccessToken)
	if err != nil {
		return err
	}
	refresh, err := config.Encrypt(tok.RefreshToken)
	if err != nil {
		return err
	}
	conn.EncryptedAccessToken = access
	conn.EncryptedRefreshToken = refresh
	conn.TokenType = tok.TokenType
	conn.Expiry = tok.Expiry
	return c.repo.Save(ctx, conn)
}

// SaveConnection stores a freshly granted token for a tenant.
func (c *Client) SaveConnection(ctx context.Context, tenantID, tenantName string, tok *oauth2.Token) (*Connection, error) {
	conn, err := c.repo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		conn = &Connection{TenantID: tenantID}
	}
	conn.TenantName = tenantName
	if err := c.persist(ctx, conn, tok); err != nil {
		return nil, err
	}
	return conn, nil
}

// ProfitAndLoss returns revenue, expenses and net profit for [from, to].
func (c *Client) ProfitAndLoss(ctx context.Context, from, to util.Date) (*FinancialSummary, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{
		"from": from.String(),
		"to":   to.String(),
	})

	conn, tok, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("fromDate", from.String())
	q.Set("toDate", to.String())
	endpoint := c.apiURL + "/Reports/ProfitAndLoss?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Xero-Tenant-Id", conn.TenantID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("Xero report request failed")
		return nil, apperror.Upstream("xero", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("status %d: %s", resp.StatusCode, body)
		log.WithError(err).Warn("Xero report returned an error")
		return nil, apperror.Upstream("xero", err)
	}

	var report reportsResponse
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		log.WithError(err).Warn("Failed to decode Xero report")
		return nil, apperror.Upstream("xero", err)
	}
	if len(report.Reports) == 0 {
		return nil, apperror.Upstream("xero", errors.New("empty report response"))
	}

	summary := summarize(report.Reports[0].Rows)
	log.WithFields(logrus.Fields{
		"revenue":  summary.Revenue,
		"expenses": summary.Expenses,
	}).Debug("Fetched Xero profit and loss")
	return &summary, nil
}
