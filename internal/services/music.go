package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
	"golang.org/x/oauth2"
)

// ErrorKind classifies a failed backend request.
type ErrorKind int

const (
	KindTransport ErrorKind = iota
	KindStatus
	KindDecode
	KindApplication
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindApplication:
		return "application"
	default:
		return "unknown"
	}
}

// RequestError describes a failed generation request.
//
// Message holds the server supplied error text when the backend sent one.
type RequestError struct {
	Kind       ErrorKind
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Path, e.Err)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	return b.String()
}

func (e *RequestError) Unwrap() error { return e.Err }

// ServerMessage extracts the backend supplied message from err, if any.
func ServerMessage(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	return ""
}

// GenerateResponse is the shared response body of the generation endpoints.
type GenerateResponse struct {
	Success        bool                   `json:"success"`
	AudioURL       string                 `json:"audio_url"`
	DownloadURL    string                 `json:"download_url"`
	Filename       string                 `json:"filename"`
	Classification *models.Classification `json:"classification,omitempty"`
	Message        string                 `json:"message,omitempty"`
	Error          string                 `json:"error,omitempty"`
}

// Track converts a successful response into a [models.Track] labelled with prompt.
func (r *GenerateResponse) Track(prompt string) models.Track {
	return models.Track{
		Prompt:         prompt,
		AudioURL:       r.AudioURL,
		DownloadURL:    r.DownloadURL,
		Filename:       r.Filename,
		Classification: r.Classification,
	}
}

// MusicService implements [Generator] against the backend's JSON endpoints.
type MusicService struct {
	api *APIService
}

// NewMusicService creates a MusicService for the backend at baseURL.
func NewMusicService(baseURL string, client *http.Client) *MusicService {
	return &MusicService{api: NewAPIService(baseURL, client)}
}

// API exposes the underlying raw client.
func (s *MusicService) API() *APIService { return s.api }

// Generate calls POST /generate.
func (s *MusicService) Generate(ctx context.Context, prompt string, duration int) (*GenerateResponse, error) {
	return s.post(ctx, GeneratePath, GenerateRequest{Prompt: prompt, Duration: duration})
}

// Harmonize calls POST /harmonize.
func (s *MusicService) Harmonize(ctx context.Context, filename string, duration int) (*GenerateResponse, error) {
	return s.post(ctx, HarmonizePath, HarmonizeRequest{Filename: filename, Duration: duration})
}

// Reharmonize calls POST /reharmonize.
func (s *MusicService) Reharmonize(ctx context.Context, filename string, duration int) (*GenerateResponse, error) {
	return s.post(ctx, ReharmonizePath, HarmonizeRequest{Filename: filename, Duration: duration})
}

// Download calls GET /download/<filename> and copies the file into w.
func (s *MusicService) Download(ctx context.Context, filename string, w io.Writer) (int64, error) {
	if filename == "" {
		return 0, fmt.Errorf("%w: filename is required", shared.ErrMissingArgument)
	}

	n, err := s.api.Stream(ctx, "/download/"+url.PathEscape(filename), w)
	if err != nil {
		return n, fmt.Errorf("%w: download %s: %v", shared.ErrAPIRequest, filename, err)
	}
	return n, nil
}

func (s *MusicService) post(ctx context.Context, path string, payload any) (*GenerateResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", shared.ErrInvalidInput, err)
	}

	resp, err := s.api.Post(ctx, path, data)
	if err != nil {
		return nil, &RequestError{Kind: KindTransport, Path: path, Err: fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)}
	}
	return CheckGenerateResponse(path, resp)
}

// CheckGenerateResponse decodes a generation endpoint reply and classifies failures as [RequestError].
func CheckGenerateResponse(path string, resp *APIResponse) (*GenerateResponse, error) {
	var body GenerateResponse
	decodeErr := json.Unmarshal(resp.Body, &body)

	if !resp.OK() {
		reqErr := &RequestError{Kind: KindStatus, Path: path, StatusCode: resp.StatusCode, Err: shared.ErrHTTPStatus}
		if decodeErr == nil {
			reqErr.Message = body.Error
		}
		return nil, reqErr
	}

	if decodeErr != nil {
		return nil, &RequestError{Kind: KindDecode, Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %v", shared.ErrDecodeResponse, decodeErr)}
	}

	if !body.Success {
		return nil, &RequestError{Kind: KindApplication, Path: path, StatusCode: resp.StatusCode, Message: body.Error, Err: shared.ErrGeneration}
	}

	if body.AudioURL == "" {
		return nil, &RequestError{Kind: KindDecode, Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: missing audio_url", shared.ErrDecodeResponse)}
	}

	return &body, nil
}

// NewHTTPClient builds the client used for backend calls.
//
// A non-empty token is sent as a Bearer Authorization header on every request.
func NewHTTPClient(ctx context.Context, cfg shared.BackendConfig) *http.Client {
	var client *http.Client
	if cfg.APIToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken, TokenType: "Bearer"})
		client = oauth2.NewClient(ctx, src)
	} else {
		client = &http.Client{}
	}
	client.Timeout = cfg.Timeout()
	return client
}

// ResolveURL joins a backend-relative URL such as /static/generated/a.wav onto base.
// Absolute URLs are returned unchanged.
func ResolveURL(base, ref string) string {
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(u).String()
}
