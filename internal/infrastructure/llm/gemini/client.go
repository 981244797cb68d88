package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/drivesight/drivesight/internal/core/domain"
	"github.com/drivesight/drivesight/internal/infrastructure/resilience"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client calls the Gemini generateContent endpoint for a single model
// variant. Variant substitution happens by constructing another Client; the
// call shape stays identical, which is what makes the orchestrator's fallback
// path possible.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	guard      *resilience.Guard
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	Guard   *resilience.Guard
}

func New(apiKey, model string, options Options) *Client {
	baseURL := strings.TrimSpace(options.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		model:      strings.TrimSpace(model),
		httpClient: &http.Client{Timeout: timeout},
		guard:      options.Guard,
	}
}

func (c *Client) Variant() string { return c.model }

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"content"`
}

// Complete sends the encoded image and the instruction to the model variant
// and returns the raw text of the first candidate. Transport and API
// failures surface as domain.ErrUpstream; context cancellation propagates
// unchanged so the caller does not mistake it for an outage.
func (c *Client) Complete(ctx context.Context, image domain.EncodedImage, prompt string) (string, error) {
	payload := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{MIMEType: image.MIMEType, Data: image.Data}},
				{Text: prompt},
			},
		}},
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", c.model)

	var response generateResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, payload, &response)
	}

	var err error
	if c.guard != nil {
		err = c.guard.Execute(ctx, "gemini."+c.model, call, recordGeminiFailure)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapUpstream(err)
	}

	if len(response.Candidates) == 0 {
		return "", domain.WrapError(domain.ErrUpstream, "complete vision request", errors.New("completion returned no candidates"))
	}
	return firstText(response), nil
}

func firstText(response generateResponse) string {
	var b strings.Builder
	for _, p := range response.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}

func wrapUpstream(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domain.WrapError(domain.ErrUpstream, "complete vision request", err)
}
