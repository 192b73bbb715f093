package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
)

type DictationService struct {
	Options []RequestOption
}

func NewDictationService(opts ...RequestOption) DictationService {
	return DictationService{
		Options: opts,
	}
}

type Dictation struct {
	Sentences []string `json:"sentences"`
	FullText  string   `json:"full_text"`
}

type GenerateRequest struct {
	Grade        int `json:"grade"`
	NumSentences int `json:"num_sentences"`
}

type Synthesis struct {
	Filename string `json:"filename"`
}

type SynthesizeRequest struct {
	Sentences     []string `json:"sentences"`
	PauseDuration float64  `json:"pause_duration"`
	Slow          bool     `json:"slow"`
}

type Stream struct {
	Body        io.ReadCloser
	ContentType string
}

func (r *DictationService) Generate(ctx context.Context, input GenerateRequest, opts ...RequestOption) (*Dictation, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	body, _ := json.Marshal(input)

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.URL+"/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(resp.Status)
	}

	var result Dictation

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *DictationService) Synthesize(ctx context.Context, input SynthesizeRequest, opts ...RequestOption) (*Synthesis, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	body, _ := json.Marshal(input)

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.URL+"/dictate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(resp.Status)
	}

	var result Synthesis

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Audio streams a synthesized audio file. The caller owns the returned body.
func (r *DictationService) Audio(ctx context.Context, filename string, opts ...RequestOption) (*Stream, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.URL+"/audio/"+url.PathEscape(filename), nil)

	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.New(resp.Status)
	}

	return &Stream{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
