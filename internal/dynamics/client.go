// Package dynamics is the read-mostly gateway to a Dynamics CRM environment's
// OData Web API: entity attribute metadata, collection and navigation-property
// names, option sets, system forms, lookup sampling, and record creation.
package dynamics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dynaseed/internal/metadata"
)

// DefaultAPIPath is the Web API version segment every endpoint hangs off.
const DefaultAPIPath = "/api/data/v9.2/"

// Metadata bodies (all attributes of an entity) run well past the usual
// response sizes, so the read cap is generous.
const maxResponseBytes = 8 * 1024 * 1024

var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

// Client talks to one environment. It holds no mutable state: a fresh Client
// per invocation is cheap and keeps concurrent invocations independent.
type Client struct {
	environmentURL string
	apiPath        string
	token          string
	http           *http.Client
}

// NewClient builds a gateway for the given environment URL. apiPath and
// httpClient may be zero values; token may be empty when the transport itself
// carries auth (e.g. an authenticated proxy).
func NewClient(environmentURL, apiPath, token string, httpClient *http.Client) *Client {
	if apiPath == "" {
		apiPath = DefaultAPIPath
	}
	if httpClient == nil {
		httpClient = defaultHTTPClient
	}
	if token != "" {
		warnIfExpired(token)
	}
	return &Client{
		environmentURL: environmentURL,
		apiPath:        apiPath,
		token:          token,
		http:           httpClient,
	}
}

// warnIfExpired parses the bearer token without verifying its signature and
// logs when its exp claim is already in the past. The remote stays
// authoritative; this only saves a round of confusing 401 output.
func warnIfExpired(token string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	if exp.Before(time.Now()) {
		log.Printf("WARN: access token expired at %s, remote will likely reject requests", exp.Format(time.RFC3339))
	}
}

// AttributeMetadata fetches every attribute definition of the entity.
// An error object inside a 2xx body counts as failure.
func (c *Client) AttributeMetadata(ctx context.Context, entity string) ([]metadata.Attribute, error) {
	op := "fetch attributes for " + entity

	var out struct {
		Error *remoteError         `json:"error"`
		Value []metadata.Attribute `json:"value"`
	}
	path := fmt.Sprintf("EntityDefinitions(LogicalName='%s')/Attributes", entity)
	if err := c.getJSON(ctx, op, path, &out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, metadataErr(op, out.Error)
	}
	return out.Value, nil
}

// CollectionName resolves the entity's LogicalCollectionName, the pluralized
// resource name used for creation and lookup-sampling endpoints.
func (c *Client) CollectionName(ctx context.Context, entity string) (string, error) {
	op := "fetch collection name for " + entity

	var out struct {
		LogicalCollectionName string `json:"LogicalCollectionName"`
	}
	path := fmt.Sprintf("EntityDefinitions(LogicalName='%s')", entity)
	if err := c.getJSON(ctx, op, path, &out); err != nil {
		return "", err
	}
	if out.LogicalCollectionName == "" {
		return "", metadataErr(op, errors.New("no LogicalCollectionName in response"))
	}
	return out.LogicalCollectionName, nil
}

// NavigationPropertyName resolves the referencing entity's navigation property
// for the one-to-many relationship behind a lookup attribute. Exactly one
// matching relationship is assumed; the first result wins.
func (c *Client) NavigationPropertyName(ctx context.Context, referencingAttribute, referencedEntity string) (string, error) {
	op := fmt.Sprintf("fetch navigation property for %s -> %s", referencingAttribute, referencedEntity)

	var out struct {
		Value []struct {
			ReferencingEntityNavigationPropertyName string `json:"ReferencingEntityNavigationPropertyName"`
		} `json:"value"`
	}
	query := url.Values{
		"$filter": {fmt.Sprintf("ReferencingAttribute eq '%s' and ReferencedEntity eq '%s'", referencingAttribute, referencedEntity)},
	}
	path := "RelationshipDefinitions/Microsoft.Dynamics.CRM.OneToManyRelationshipMetadata?" + query.Encode()
	if err := c.getJSON(ctx, op, path, &out); err != nil {
		return "", err
	}
	if len(out.Value) == 0 {
		return "", metadataErr(op, errors.New("no matching one-to-many relationship"))
	}
	return out.Value[0].ReferencingEntityNavigationPropertyName, nil
}

// OptionSetValues fetches the option set behind a picklist attribute.
func (c *Client) OptionSetValues(ctx context.Context, entity, attribute string) ([]metadata.Option, error) {
	op := fmt.Sprintf("fetch option set for %s.%s", entity, attribute)

	var out struct {
		GlobalOptionSet struct {
			Options []metadata.Option `json:"Options"`
		} `json:"GlobalOptionSet"`
	}
	query := url.Values{
		"$select": {"LogicalName"},
		"$expand": {"GlobalOptionSet($select=Options)"},
	}
	path := fmt.Sprintf("EntityDefinitions(LogicalName='%s')/Attributes(LogicalName='%s')/Microsoft.Dynamics.CRM.PicklistAttributeMetadata?%s",
		entity, attribute, query.Encode())
	if err := c.getJSON(ctx, op, path, &out); err != nil {
		return nil, err
	}
	return out.GlobalOptionSet.Options, nil
}

// Forms lists the entity's main forms (type eq 2), without formxml.
func (c *Client) Forms(ctx context.Context, entity string) ([]metadata.Form, error) {
	op := "fetch forms for " + entity

	var out struct {
		Value []metadata.Form `json:"value"`
	}
	query := url.Values{
		"$filter": {fmt.Sprintf("objecttypecode eq '%s' and type eq 2", entity)},
		"$select": {"name,formid"},
	}
	if err := c.getJSON(ctx, op, "systemforms?"+query.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// FormXML fetches one form's serialized layout.
func (c *Client) FormXML(ctx context.Context, formID string) (string, error) {
	op := "fetch formxml " + formID

	var out struct {
		FormXML string `json:"formxml"`
	}
	if err := c.getJSON(ctx, op, fmt.Sprintf("systemforms(%s)", formID), &out); err != nil {
		return "", err
	}
	return out.FormXML, nil
}

// SampleRecordID returns the primary key of one existing row of the entity,
// for binding lookup fields. When more than one row exists the sample is
// uniform over the non-first rows; a single row is taken as-is. An empty
// collection yields ErrNoCandidateRecords.
func (c *Client) SampleRecordID(ctx context.Context, entity string) (string, error) {
	collection, err := c.CollectionName(ctx, entity)
	if err != nil {
		return "", err
	}

	var out struct {
		Value []map[string]any `json:"value"`
	}
	if err := c.getJSON(ctx, "sample "+collection, collection, &out); err != nil {
		return "", err
	}
	if len(out.Value) == 0 {
		return "", ErrNoCandidateRecords
	}

	idx := 0
	if len(out.Value) > 1 {
		idx = 1 + rand.Intn(len(out.Value)-1)
	}
	id, _ := out.Value[idx][entity+"id"].(string)
	if id == "" {
		return "", ErrNoCandidateRecords
	}
	return id, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.environmentURL+c.apiPath+path, nil)
	if err != nil {
		return metadataErr(op, err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return metadataErr(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return metadataErr(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope struct {
			Error *remoteError `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
			return metadataErr(op, envelope.Error)
		}
		return metadataErr(op, fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return metadataErr(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("OData-MaxVersion", "4.0")
	req.Header.Set("OData-Version", "4.0")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
