package lagoonclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"
	"syscall"

	"github.com/rockbears/log"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/graphql"
	lagoonlog "github.com/ovh/lagoonctl/sdk/log"
)

// RequestModifier is used to modify behavior of Execute
type RequestModifier func(req *http.Request)

// SetHeader modify headers of http.Request
func SetHeader(key, value string) RequestModifier {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage   `json:"data"`
	Errors sdk.GraphQLErrors `json:"errors"`
}

// Execute sends one GraphQL document. Data is decoded into out when present,
// even alongside errors: the returned GraphQLErrors are the partial errors of
// the response and the returned error is set for transport failures only.
func (c *client) Execute(ctx context.Context, query string, variables map[string]interface{}, out interface{}, mods ...RequestModifier) (sdk.GraphQLErrors, error) {
	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return nil, sdk.WithStack(err)
	}

	log.Debug(ctx, "GraphQL query: %s", query)
	if len(variables) > 0 {
		log.Debug(ctx, "GraphQL variables: %v", variables)
	}

	code, res, err := c.post(ctx, body, mods...)
	if err != nil {
		return nil, err
	}

	var r response
	if err := json.Unmarshal(res, &r); err != nil {
		if code >= 400 {
			return nil, httpError(code, res)
		}
		return nil, sdk.NewErrorFrom(sdk.ErrInvalidData, "unable to decode GraphQL response: %v", err)
	}
	if code >= 400 && len(r.Errors) == 0 {
		return nil, httpError(code, res)
	}

	if out != nil && len(r.Data) > 0 && !bytes.Equal(r.Data, []byte("null")) {
		if err := json.Unmarshal(r.Data, out); err != nil {
			return r.Errors, sdk.NewErrorFrom(sdk.ErrInvalidData, "unable to decode GraphQL data: %v", err)
		}
	}
	if len(r.Errors) > 0 {
		log.Debug(ctx, "GraphQL errors: %v", r.Errors)
	}
	return r.Errors, nil
}

// ExecuteDocument validates and sends a built document.
func (c *client) ExecuteDocument(ctx context.Context, doc *graphql.Document, out interface{}, mods ...RequestModifier) (sdk.GraphQLErrors, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return c.Execute(ctx, doc.String(), nil, out, mods...)
}

func (c *client) post(ctx context.Context, body []byte, mods ...RequestModifier) (int, []byte, error) {
	var savederror error
	ctx = context.WithValue(ctx, lagoonlog.Endpoint, c.config.Endpoint)

	for i := 0; i <= c.config.Retry; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
		if err != nil {
			return 0, nil, sdk.NewError(sdk.ErrWrongRequest, err)
		}

		for k, v := range c.config.Headers {
			req.Header.Set(k, v)
		}
		for i := range mods {
			if mods[i] != nil {
				mods[i](req)
			}
		}
		// set last so that neither configured headers nor modifiers override them
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.config.Token)

		if c.config.Verbose {
			dmp, _ := httputil.DumpRequestOut(req, true)
			log.Debug(ctx, "request: %s", redactAuthorization(string(dmp)))
		}

		resp, errDo := c.httpClient.Do(req)
		if errDo != nil {
			if isConnectionFailure(errDo) && ctx.Err() == nil {
				log.Debug(ctx, "connection failure on attempt %d/%d: %v", i+1, c.config.Retry+1, errDo)
				savederror = errDo
				continue
			}
			return 0, nil, sdk.NewError(sdk.ErrConnectivity, errDo)
		}

		res, errRead := io.ReadAll(resp.Body)
		resp.Body.Close() // nolint
		if errRead != nil {
			if isConnectionFailure(errRead) {
				savederror = errRead
				continue
			}
			return resp.StatusCode, nil, sdk.NewError(sdk.ErrConnectivity, errRead)
		}

		if c.config.Verbose {
			log.Debug(ctx, "response: HTTP %d %s", resp.StatusCode, res)
		}
		return resp.StatusCode, res, nil
	}

	return 0, nil, sdk.NewErrorFrom(sdk.ErrConnectivity, "x%d: %v", c.config.Retry+1, savederror)
}

// connection failures are the only errors worth retrying
func isConnectionFailure(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection reset by peer") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "unexpected EOF")
}

func httpError(code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	switch code {
	case http.StatusUnauthorized:
		return sdk.NewErrorFrom(sdk.ErrUnauthorized, "HTTP %d: %s", code, msg)
	case http.StatusForbidden:
		return sdk.NewErrorFrom(sdk.ErrForbidden, "HTTP %d: %s", code, msg)
	case http.StatusNotFound:
		return sdk.NewErrorFrom(sdk.ErrNotFound, "HTTP %d: %s", code, msg)
	}
	if code >= 500 {
		return sdk.NewErrorFrom(sdk.ErrConnectivity, "HTTP %d: %s", code, msg)
	}
	return sdk.NewErrorFrom(sdk.ErrWrongRequest, "HTTP %d: %s", code, msg)
}

func redactAuthorization(dump string) string {
	lines := strings.Split(dump, "\n")
	for i := range lines {
		if strings.HasPrefix(strings.ToLower(lines[i]), "authorization:") {
			lines[i] = "Authorization: Bearer ****\r"
		}
	}
	return strings.Join(lines, "\n")
}

// totalFailure returns an ErrGraphQL error naming field when errs is not
// empty and the field was not returned.
func totalFailure(field string, present bool, errs sdk.GraphQLErrors) error {
	if present || len(errs) == 0 {
		return nil
	}
	return sdk.NewError(sdk.ErrGraphQL, fmt.Errorf("%s: %s", field, errs.Error()))
}

// queryField runs query and decodes its root field into out. A null field is
// an ErrNotFound error unless the response carries errors, in which case it
// is an ErrGraphQL error. Errors alongside data are ignored.
func (c *client) queryField(ctx context.Context, query string, variables map[string]interface{}, field string, out interface{}) error {
	var data map[string]json.RawMessage
	errs, err := c.Execute(ctx, query, variables, &data)
	if err != nil {
		return err
	}
	raw, ok := data[field]
	present := ok && !isNull(raw)
	if err := totalFailure(field, present, errs); err != nil {
		return err
	}
	if !present {
		return sdk.NewErrorFrom(sdk.ErrNotFound, "%s returned nothing", field)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return sdk.NewErrorFrom(sdk.ErrInvalidData, "unable to decode %s: %v", field, err)
	}
	return nil
}

// mutateField runs a mutation, any GraphQL error failing it.
func (c *client) mutateField(ctx context.Context, query string, variables map[string]interface{}, field string, out interface{}) error {
	var data map[string]json.RawMessage
	errs, err := c.Execute(ctx, query, variables, &data)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return sdk.NewError(sdk.ErrGraphQL, fmt.Errorf("%s: %s", field, errs.Error()))
	}
	raw, ok := data[field]
	if !ok || isNull(raw) {
		return sdk.NewErrorFrom(sdk.ErrGraphQL, "%s returned nothing", field)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return sdk.NewErrorFrom(sdk.ErrInvalidData, "unable to decode %s: %v", field, err)
	}
	return nil
}

// mutateDocument is mutateField for built documents.
func (c *client) mutateDocument(ctx context.Context, doc *graphql.Document, field string, out interface{}) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	return c.mutateField(ctx, doc.String(), nil, field, out)
}

// success reads the plain "success" string some delete mutations return.
func (c *client) success(ctx context.Context, query string, variables map[string]interface{}, field string) (bool, error) {
	var res string
	if err := c.mutateField(ctx, query, variables, field, &res); err != nil {
		return false, err
	}
	return res == "success", nil
}
