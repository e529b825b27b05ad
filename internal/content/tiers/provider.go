// internal/content/tiers/provider.go
package tiers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"content-workers/internal/common/config"
	"content-workers/internal/common/logger"
)

// providerClient is the HTTP plumbing shared by the specialized and
// generic tiers: prompt assembly, bounded retries with backoff, and
// schema validation of the response body.
type providerClient struct {
	name     string
	endpoint config.ProviderEndpoint
	client   *http.Client
	logger   logger.Logger
}

func newProviderClient(name string, endpoint config.ProviderEndpoint, log logger.Logger) *providerClient {
	return &providerClient{
		name:     name,
		endpoint: endpoint,
		// No client-level timeout; the per-tier context bounds every call.
		client: &http.Client{},
		logger: log.WithFields(map[string]interface{}{"provider": name}),
	}
}

func (p *providerClient) generate(ctx context.Context, req *Request) (*Draft, error) {
	timeout := time.Duration(p.endpoint.Timeout) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(p.buildPayload(req))
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrProviderFailed, err)
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= p.endpoint.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrTimeout
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint.BaseURL+"/v1/generate", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if p.endpoint.APIKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+p.endpoint.APIKey)
		}

		resp, lastErr = p.client.Do(httpReq)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return nil, ErrTimeout
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, lastErr)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", ErrProviderFailed)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrProviderFailed, err)
	}

	if err := validateDraftDocument(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var draft Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMalformedResponse, err)
	}

	p.logger.Info("provider draft received", map[string]interface{}{
		"headlineLength": len(draft.Headline),
		"captionLength":  len(draft.Caption),
		"hashtagCount":   len(draft.Hashtags),
	})

	return &draft, nil
}

func (p *providerClient) buildPayload(req *Request) map[string]interface{} {
	return map[string]interface{}{
		"model":  p.endpoint.Model,
		"prompt": p.buildPrompt(req),
		"brand": map[string]interface{}{
			"name":        req.Profile.Name,
			"description": req.Profile.Description,
			"services":    req.Profile.Services,
			"products":    req.Profile.Products,
			"audience":    req.Profile.Audience,
			"location":    req.Profile.Location,
			"voice":       req.Profile.Voice,
		},
		"businessType":     req.Detection.PrimaryType,
		"platform":         req.Platform,
		"contentGoal":      req.ContentGoal,
		"useLocalLanguage": req.UseLocalLanguage,
		"max_tokens":       p.endpoint.MaxTokens,
		"temperature":      p.endpoint.Temperature,
	}
}

func (p *providerClient) buildPrompt(req *Request) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Create a %s social media post for %s on %s.", req.ContentGoal, req.Profile.Name, req.Platform))
	parts = append(parts, fmt.Sprintf("Business type: %s.", req.Detection.PrimaryType))

	if req.Profile.Description != "" {
		parts = append(parts, fmt.Sprintf("About the business: %s", req.Profile.Description))
	}
	if len(req.Profile.Services) > 0 {
		parts = append(parts, fmt.Sprintf("Services: %s.", strings.Join(req.Profile.Services, ", ")))
	}
	if req.Profile.Audience != "" {
		parts = append(parts, fmt.Sprintf("Audience: %s.", req.Profile.Audience))
	}
	if req.Profile.Voice != "" {
		parts = append(parts, fmt.Sprintf("Brand voice: %s.", req.Profile.Voice))
	}
	if req.UseLocalLanguage && req.Profile.Location != "" {
		parts = append(parts, fmt.Sprintf("Write in the local language of %s.", req.Profile.Location))
	}

	parts = append(parts, "Return JSON with headline, subheadline, caption, cta, and hashtags.")
	parts = append(parts, "The headline and caption must reinforce each other.")

	return strings.Join(parts, "\n")
}
