package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"storefront-service/internal/models"
)

// catalogQuery fetches the complete catalog in one read: every product with
// its nested variations and denormalized category chain, plus the three-level
// category tree with per-child stock counts. There is no server-side paging
// or filtering; the browse engine runs client-side over the full snapshot.
const catalogQuery = `
query Catalog {
  products {
    id
    title
    info
    details
    category {
      parentId parentName
      subId subName
      childId childName
    }
    variations {
      id
      variationName
      variationValue
      skuCode
      stock
      regularPrice
      offerPrice
      madeIn
      image
      features { featureName featureValue }
      filters
    }
  }
  categories {
    id
    name
    children {
      id
      name
      children {
        id
        name
        stock
      }
    }
  }
}`

// CatalogPayload is the data section of the catalog query response.
type CatalogPayload struct {
	Products   []models.Product       `json:"products"`
	Categories []*models.CategoryNode `json:"categories"`
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   *CatalogPayload `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

// CatalogClient talks to the remote GraphQL content/commerce API.
type CatalogClient struct {
	endpoint    string
	apiToken    string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewCatalogClient creates a catalog client from the environment.
func NewCatalogClient() *CatalogClient {
	endpoint := os.Getenv("CATALOG_API_URL")
	if endpoint == "" {
		endpoint = "http://catalog-api:8080/graphql"
	}

	return &CatalogClient{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiToken: os.Getenv("CATALOG_API_TOKEN"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(2), 1),
	}
}

// FetchCatalog executes the catalog query and returns the full payload.
// A transport failure, a non-2xx status, or a GraphQL-level error all
// surface as errors; callers never see partial data.
func (c *CatalogClient) FetchCatalog(ctx context.Context, tenantID string) (*CatalogPayload, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(graphqlRequest{Query: catalogQuery})
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed graphqlResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("catalog query error: %s", parsed.Errors[0].Message)
	}
	if parsed.Data == nil {
		return nil, fmt.Errorf("catalog response contained no data")
	}

	return parsed.Data, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
