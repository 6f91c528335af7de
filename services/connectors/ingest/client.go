package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/intellsys-io/intellsys-engine/services/connectors/model"
)

// Client triggers historical backfill on the ingestion API. Failures are
// reportable but never unwind provisioning.
type Client interface {
	TriggerHistorical(ctx context.Context, t model.ConnectorType, connectorID uuid.UUID, durationDays int) error
}

type HTTPClient struct {
	BaseURL string
	Token   string

	client http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client: http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *HTTPClient) TriggerHistorical(ctx context.Context, t model.ConnectorType, connectorID uuid.UUID, durationDays int) error {
	endpoint := fmt.Sprintf("%s/%s/historical", c.BaseURL, t.PlatformPath())

	form := url.Values{}
	form.Set("connectorId", connectorID.String())
	form.Set("duration", strconv.Itoa(durationDays))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", c.Token)

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("trigger historical ingestion: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("trigger historical ingestion: http status %d: %s", res.StatusCode, body)
	}

	return nil
}
