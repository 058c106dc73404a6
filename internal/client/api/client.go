// Package api implements the HTTP client for the remote verification
// backend: submission of documents and selfie, status queries, and
// account creation.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/atinyakov/VeriFlow/internal/models"
	"go.uber.org/zap"
)

const (
	pathInitiate      = "/initiate"
	pathStatus        = "/status/"
	pathCreateAccount = "/create-account"

	requestTimeout = 30 * time.Second
)

// Client talks to the verification backend under a single base URL.
type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

// New creates a Client for the given API base URL (e.g.
// "http://localhost:8080/api/verify").
func New(baseURL string, log *zap.Logger) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: requestTimeout},
		log:  log,
	}
}

// Initiate uploads the document bundle and the selfie as a multipart
// request and returns the verification id assigned by the backend.
func (c *Client) Initiate(ctx context.Context, docs models.DocumentBundle, selfie []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := writeFilePart(w, "documentFront", docs.Front.Name, docs.Front.MIME, docs.Front.Data); err != nil {
		return "", fmt.Errorf("documentFront part: %w", err)
	}
	if docs.Back != nil {
		if err := writeFilePart(w, "documentBack", docs.Back.Name, docs.Back.MIME, docs.Back.Data); err != nil {
			return "", fmt.Errorf("documentBack part: %w", err)
		}
	}
	// The selfie is always submitted as a JPEG named selfie.jpg so the
	// backend can rely on the filename.
	if err := writeFilePart(w, "selfie", "selfie.jpg", "image/jpeg", selfie); err != nil {
		return "", fmt.Errorf("selfie part: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+pathInitiate, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	c.log.Info("submitting verification data", zap.String("url", c.base+pathInitiate))

	var result struct {
		VerificationID string `json:"verificationId"`
	}
	if err := c.do(req, &result); err != nil {
		return "", err
	}
	return result.VerificationID, nil
}

// Status fetches the current status of the verification job.
func (c *Client) Status(ctx context.Context, verificationID string) (models.Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+pathStatus+verificationID, nil)
	if err != nil {
		return "", err
	}

	var result struct {
		Status models.Status `json:"status"`
	}
	if err := c.do(req, &result); err != nil {
		return "", err
	}
	return result.Status, nil
}

// CreateAccount registers account credentials for a verified user and
// returns the created account record.
func (c *Client) CreateAccount(ctx context.Context, email, password string) (models.AccountRecord, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return models.AccountRecord{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+pathCreateAccount, bytes.NewReader(body))
	if err != nil {
		return models.AccountRecord{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var result struct {
		Message string               `json:"message"`
		Account models.AccountRecord `json:"account"`
	}
	if err := c.do(req, &result); err != nil {
		return models.AccountRecord{}, err
	}
	return result.Account, nil
}

// do executes the request, classifies failures into *Error, and decodes
// a successful JSON response into out.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func writeFilePart(w *multipart.Writer, field, filename, mimeType string, data []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", mimeType)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, bytes.NewReader(data))
	return err
}
