package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// CatIndex is one row of the cat indices API.
type CatIndex struct {
	Health       string `json:"health"`
	Status       string `json:"status"`
	Index        string `json:"index"`
	UUID         string `json:"uuid"`
	Primaries    string `json:"pri"`
	Replicas     string `json:"rep"`
	DocsCount    string `json:"docs.count"`
	DocsDeleted  string `json:"docs.deleted"`
	StoreSize    string `json:"store.size"`
	PriStoreSize string `json:"pri.store.size"`
}

// IndexExists checks whether the index exists.
func (c *Connection) IndexExists(ctx context.Context, name string) (bool, error) {
	res, err := c.client.Indices.Exists([]string{name}, c.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("check index %s exists: %w", name, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if res.IsError() {
		return false, fmt.Errorf("check index %s exists: %w", name, parseResponseError(res))
	}
	return true, nil
}

// CreateIndex creates the index with the given request body.
func (c *Connection) CreateIndex(ctx context.Context, name string, body []byte) error {
	res, err := c.client.Indices.Create(name,
		c.client.Indices.Create.WithBody(bytes.NewReader(body)),
		c.client.Indices.Create.WithContext(ctx),
	)
	return c.check(res, err, "create index", name)
}

// DeleteIndex deletes the index.
func (c *Connection) DeleteIndex(ctx context.Context, name string) error {
	res, err := c.client.Indices.Delete([]string{name}, c.client.Indices.Delete.WithContext(ctx))
	return c.check(res, err, "delete index", name)
}

// OpenIndex opens a closed index.
func (c *Connection) OpenIndex(ctx context.Context, name string) error {
	res, err := c.client.Indices.Open([]string{name}, c.client.Indices.Open.WithContext(ctx))
	return c.check(res, err, "open index", name)
}

// CloseIndex closes the index.
func (c *Connection) CloseIndex(ctx context.Context, name string) error {
	res, err := c.client.Indices.Close([]string{name}, c.client.Indices.Close.WithContext(ctx))
	return c.check(res, err, "close index", name)
}

// RefreshIndex makes recent writes searchable.
func (c *Connection) RefreshIndex(ctx context.Context, name string) error {
	res, err := c.client.Indices.Refresh(
		c.client.Indices.Refresh.WithIndex(name),
		c.client.Indices.Refresh.WithContext(ctx),
	)
	return c.check(res, err, "refresh index", name)
}

// PutSettings updates dynamic index settings.
func (c *Connection) PutSettings(ctx context.Context, name string, settings map[string]any) error {
	body, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings for index %s: %w", name, err)
	}
	res, err := c.client.Indices.PutSettings(bytes.NewReader(body),
		c.client.Indices.PutSettings.WithIndex(name),
		c.client.Indices.PutSettings.WithContext(ctx),
	)
	return c.check(res, err, "update settings of index", name)
}

// PutMapping applies a mapping body to the index.
func (c *Connection) PutMapping(ctx context.Context, name string, body []byte) error {
	res, err := c.client.Indices.PutMapping([]string{name}, bytes.NewReader(body),
		c.client.Indices.PutMapping.WithContext(ctx),
	)
	return c.check(res, err, "update mapping of index", name)
}

// CatIndex returns the cat indices row for one index.
func (c *Connection) CatIndex(ctx context.Context, name string) (CatIndex, error) {
	rows, err := c.catIndices(ctx, name)
	if err != nil {
		return CatIndex{}, err
	}
	if len(rows) == 0 {
		return CatIndex{}, fmt.Errorf("cat index %s: %w", name, ErrIndexMissing)
	}
	return rows[0], nil
}

// ListIndices lists indices matching pattern, skipping system indices.
func (c *Connection) ListIndices(ctx context.Context, pattern string) ([]CatIndex, error) {
	if pattern == "" {
		pattern = "*"
	}
	rows, err := c.catIndices(ctx, pattern)
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, row := range rows {
		if !strings.HasPrefix(row.Index, ".") {
			out = append(out, row)
		}
	}
	return out, nil
}

func (c *Connection) catIndices(ctx context.Context, pattern string) ([]CatIndex, error) {
	res, err := c.client.Cat.Indices(
		c.client.Cat.Indices.WithIndex(pattern),
		c.client.Cat.Indices.WithFormat("json"),
		c.client.Cat.Indices.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("cat indices %s: %w", pattern, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("cat indices %s: %w", pattern, parseResponseError(res))
	}

	var rows []CatIndex
	if err = json.NewDecoder(res.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode cat indices response: %w", err)
	}
	return rows, nil
}

// SegmentCount returns the total number of segments of the index.
func (c *Connection) SegmentCount(ctx context.Context, name string) (int64, error) {
	res, err := c.client.Indices.Stats(
		c.client.Indices.Stats.WithIndex(name),
		c.client.Indices.Stats.WithMetric("segments"),
		c.client.Indices.Stats.WithContext(ctx),
	)
	if err != nil {
		return 0, fmt.Errorf("stats of index %s: %w", name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("stats of index %s: %w", name, parseResponseError(res))
	}

	var stats struct {
		All struct {
			Total struct {
				Segments struct {
					Count int64 `json:"count"`
				} `json:"segments"`
			} `json:"total"`
		} `json:"_all"`
	}
	if err = json.NewDecoder(res.Body).Decode(&stats); err != nil {
		return 0, fmt.Errorf("decode stats of index %s: %w", name, err)
	}
	return stats.All.Total.Segments.Count, nil
}

// IndexDocument stores a document. An empty id lets Elasticsearch assign one.
// It returns the document id.
func (c *Connection) IndexDocument(ctx context.Context, name, id string, body []byte, refresh bool) (string, error) {
	opts := []func(*esapi.IndexRequest){c.client.Index.WithContext(ctx)}
	if id != "" {
		opts = append(opts, c.client.Index.WithDocumentID(id))
	}
	if refresh {
		opts = append(opts, c.client.Index.WithRefresh("true"))
	}

	res, err := c.client.Index(name, bytes.NewReader(body), opts...)
	if err != nil {
		return "", fmt.Errorf("index document into %s: %w", name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", fmt.Errorf("index document into %s: %w", name, parseResponseError(res))
	}

	var out struct {
		ID string `json:"_id"`
	}
	if err = json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode index response: %w", err)
	}
	return out.ID, nil
}

func (c *Connection) check(res *esapi.Response, err error, op, name string) error {
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%s %s: %w", op, name, parseResponseError(res))
	}
	return nil
}
