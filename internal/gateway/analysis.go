package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

// UploadCV submits a CV and target position as a multipart POST and returns
// the raw analysis payload from the response envelope. The operation is never
// retried here: a failure returns control to the caller, who resubmits
// explicitly.
func (c *Client) UploadCV(ctx context.Context, token string, cv io.Reader, filename, appliedJob, userID string) (json.RawMessage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="cv"; filename=%q`, filename))
	header.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, cv); err != nil {
		return nil, err
	}
	if err := w.WriteField("appliedJob", appliedJob); err != nil {
		return nil, err
	}
	if userID != "" {
		if err := w.WriteField("userId", userID); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/cvs/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, serverError(resp)
	}

	var envelope struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, ErrMalformedResponse
	}
	if !envelope.Success || len(envelope.Data) == 0 {
		msg := envelope.Message
		if msg == "" {
			msg = "Analysis failed to return valid data"
		}
		return nil, &ServerError{Status: resp.StatusCode, Message: msg}
	}
	return envelope.Data, nil
}

// FetchAnalysis retrieves one analysis record by id.
func (c *Client) FetchAnalysis(ctx context.Context, token, id string) (json.RawMessage, error) {
	return c.fetch(ctx, token, "/api/cvs/"+id)
}

// FetchLatest retrieves the most recent analysis record for the
// authenticated user.
func (c *Client) FetchLatest(ctx context.Context, token string) (json.RawMessage, error) {
	return c.fetch(ctx, token, "/api/cvs/upload")
}

func (c *Client) fetch(ctx context.Context, token, path string) (json.RawMessage, error) {
	resp, err := c.get(ctx, path, token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, serverError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, ErrMalformedResponse
	}
	return json.RawMessage(body), nil
}
