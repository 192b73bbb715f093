package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

type EvaluationService struct {
	Options []RequestOption
}

func NewEvaluationService(opts ...RequestOption) EvaluationService {
	return EvaluationService{
		Options: opts,
	}
}

type Evaluation struct {
	Score *float64 `json:"score"`

	OCRText        string `json:"ocr_text"`
	EvaluationText string `json:"evaluation_text"`
}

type EvaluationRequest struct {
	ImageName string
	Image     io.Reader

	OriginalText  string
	Sentences     []string
	AudioFilename string
}

type HistoryRecord struct {
	Timestamp string  `json:"timestamp"`
	Score     float64 `json:"score"`

	AudioFile     string `json:"audio_file"`
	ImageFilename string `json:"image_filename"`

	OriginalText   string `json:"original_text"`
	OCRText        string `json:"ocr_text"`
	WrittenText    string `json:"written_text"`
	EvaluationText string `json:"evaluation_text"`
}

// RecognizedText returns the transcribed text, falling back to the
// written_text field of older records.
func (r HistoryRecord) RecognizedText() string {
	if r.OCRText != "" {
		return r.OCRText
	}

	return r.WrittenText
}

type historyList struct {
	Evaluations []HistoryRecord `json:"evaluations"`
}

func (r *EvaluationService) New(ctx context.Context, input EvaluationRequest, opts ...RequestOption) (*Evaluation, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	var data bytes.Buffer
	w := multipart.NewWriter(&data)

	f, err := w.CreateFormFile("image", input.ImageName)

	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(f, input.Image); err != nil {
		return nil, err
	}

	sentences, _ := json.Marshal(input.Sentences)

	w.WriteField("original_text", input.OriginalText)
	w.WriteField("sentences", string(sentences))
	w.WriteField("audio_filename", input.AudioFilename)

	w.Close()

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.URL+"/evaluate", &data)
	req.Header.Set("Content-Type", w.FormDataContentType())

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

	var result Evaluation

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *EvaluationService) List(ctx context.Context, opts ...RequestOption) ([]HistoryRecord, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.URL+"/evaluations", nil)

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

	var result historyList

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return result.Evaluations, nil
}

// Upload streams a previously submitted dictation photo. The caller owns the
// returned body.
func (r *EvaluationService) Upload(ctx context.Context, filename string, opts ...RequestOption) (*Stream, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.URL+"/uploads/"+url.PathEscape(filename), nil)

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
