package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// StorageService keeps food photos. UploadFile returns the public URL that
// is stored on the food log.
type StorageService interface {
	UploadFile(ctx context.Context, content []byte, filename string, folder string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
	GetSignedURL(ctx context.Context, fileURL string) (string, error)
}

const defaultSignedURLTTL = time.Hour

type SupabaseStorageService struct {
	baseURL      string
	bucket       string
	serviceKey   string
	signedURLTTL time.Duration
	httpClient   *http.Client
}

func NewSupabaseStorageService(baseURL, bucket, serviceKey string) *SupabaseStorageService {
	return &SupabaseStorageService{
		baseURL:      strings.TrimRight(baseURL, "/"),
		bucket:       bucket,
		serviceKey:   serviceKey,
		signedURLTTL: defaultSignedURLTTL,
		httpClient:   http.DefaultClient,
	}
}

func (s *SupabaseStorageService) objectEndpoint(kind, objectPath string) string {
	if kind == "" {
		return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, objectPath)
	}
	return fmt.Sprintf("%s/storage/v1/object/%s/%s/%s", s.baseURL, kind, s.bucket, objectPath)
}

// send issues an authorized request against the storage API and returns
// the response once its status is 2xx. allowed lists extra statuses that
// are not treated as failures.
func (s *SupabaseStorageService) send(ctx context.Context, op, method, endpoint string, body []byte, contentType string, allowed ...int) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method == http.MethodPost && body != nil && contentType != "application/json" {
		req.Header.Set("x-upsert", "true")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, status := range allowed {
		if resp.StatusCode == status {
			return resp, nil
		}
	}
	if err := checkStatus(resp, op); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func (s *SupabaseStorageService) UploadFile(ctx context.Context, content []byte, filename string, folder string) (string, error) {
	objectPath := path.Join(strings.Trim(folder, "/"), filename)

	resp, err := s.send(ctx, "upload file", http.MethodPost, s.objectEndpoint("", objectPath), content, http.DetectContentType(content))
	if err != nil {
		return "", err
	}
	resp.Body.Close()

	return s.objectEndpoint("public", objectPath), nil
}

// DeleteFile removes a stored photo. A photo that is already gone counts
// as deleted.
func (s *SupabaseStorageService) DeleteFile(ctx context.Context, fileURL string) error {
	objectPath, err := s.objectPathFromURL(fileURL)
	if err != nil {
		return err
	}

	resp, err := s.send(ctx, "delete file", http.MethodDelete, s.objectEndpoint("", objectPath), nil, "", http.StatusNotFound)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (s *SupabaseStorageService) GetSignedURL(ctx context.Context, fileURL string) (string, error) {
	objectPath, err := s.objectPathFromURL(fileURL)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(map[string]int{"expiresIn": int(s.signedURLTTL.Seconds())})
	if err != nil {
		return "", fmt.Errorf("marshal signed url payload: %w", err)
	}

	resp, err := s.send(ctx, "get signed url", http.MethodPost, s.objectEndpoint("sign", objectPath), body, "application/json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var response struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("decode signed url response: %w", err)
	}
	if response.SignedURL == "" {
		return "", fmt.Errorf("signed url missing from response")
	}

	return fmt.Sprintf("%s/storage/v1%s", s.baseURL, response.SignedURL), nil
}

func (s *SupabaseStorageService) objectPathFromURL(fileURL string) (string, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("parse file url: %w", err)
	}

	for _, prefix := range []string{
		"/storage/v1/object/public/" + s.bucket + "/",
		"/storage/v1/object/" + s.bucket + "/",
	} {
		if objectPath, ok := strings.CutPrefix(parsed.Path, prefix); ok && objectPath != "" {
			return objectPath, nil
		}
	}
	return "", fmt.Errorf("file url does not belong to bucket %q", s.bucket)
}

// checkStatus turns a non-2xx response into an error carrying a bounded
// slice of the body.
func checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
}
