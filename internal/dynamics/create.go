package dynamics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
)

// entityIDPattern matches the parenthesized key segment of an OData entity
// reference, e.g. ".../contacts(8a1f...)" -> "8a1f...".
var entityIDPattern = regexp.MustCompile(`\(([^)]+)\)`)

// CreateRecord POSTs one record to the collection and returns the new record's
// id, parsed from the OData-EntityId response header. Failures carry the
// remote error message when the body yields one.
func (c *Client) CreateRecord(ctx context.Context, collection string, payload map[string]any) (string, error) {
	bodyJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.environmentURL+c.apiPath+collection, bytes.NewReader(bodyJSON))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Prefer", "odata.include-annotations=*")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		var envelope struct {
			Error *remoteError `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil && envelope.Error.Message != "" {
			return "", &CreationError{Status: resp.StatusCode, Message: envelope.Error.Message}
		}
		return "", &CreationError{Status: resp.StatusCode, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	entityID := resp.Header.Get("OData-EntityId")
	matches := entityIDPattern.FindStringSubmatch(entityID)
	if len(matches) < 2 {
		return "", &MalformedResponseError{Header: entityID}
	}
	return matches[1], nil
}
