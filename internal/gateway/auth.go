package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"

	"smartrecruiter/internal/model"
)

var emailShape = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Login exchanges credentials for a session.
//
// Both fields are checked locally first; empty fields short-circuit with a
// ValidationError and no request is sent. On success the backend returns a
// bearer token under "data"; identity fields are decoded from it for display
// only, falling back to the email local part for the name.
func (c *Client) Login(ctx context.Context, email, password string) (*model.Session, error) {
	fields := map[string]string{}
	if strings.TrimSpace(email) == "" {
		fields["email"] = "Email must be filled in"
	}
	if password == "" {
		fields["password"] = "Password must be filled in"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	resp, err := c.postJSON(ctx, "/api/auth/signin", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// A failed login is a server-reported failure, not an expired
		// credential, so keep the body's message instead of ErrUnauthorized.
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, readServerMessage(resp, "Invalid email or password")
		}
		return nil, serverError(resp)
	}

	var payload struct {
		Data string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Data == "" {
		return nil, ErrMalformedResponse
	}

	return sessionFromToken(payload.Data, email), nil
}

// Register creates a new account. It never commits a session: registration
// and authentication are separate trust boundaries, so success means "please
// log in" even when the backend volunteers a token.
func (c *Client) Register(ctx context.Context, fullName, email, password, confirmPassword string) error {
	fields := map[string]string{}
	if strings.TrimSpace(fullName) == "" {
		fields["fullName"] = "Full name must be filled in"
	}
	if strings.TrimSpace(email) == "" {
		fields["email"] = "Email must be filled in"
	} else if !emailShape.MatchString(email) {
		fields["email"] = "Invalid email format"
	}
	if password == "" {
		fields["password"] = "Password must be filled in"
	} else if len(password) < 8 {
		fields["password"] = "Password must be at least 8 characters"
	}
	if confirmPassword == "" {
		fields["confirmPassword"] = "Confirm password must be filled in"
	} else if password != confirmPassword {
		fields["confirmPassword"] = "Password does not match"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	resp, err := c.postJSON(ctx, "/api/auth/signup", map[string]string{
		"name":     fullName,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized {
			return readServerMessage(resp, "Registration failed")
		}
		return serverError(resp)
	}
	return nil
}

// tokenClaims are the display fields carried in a bearer token payload.
type tokenClaims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// sessionFromToken builds a session around the bearer token. The payload
// segment is decoded without any signature verification: this is
// informational extraction for display, never a trust decision — authorization
// rests entirely on the backend rejecting bad credentials.
func sessionFromToken(token, email string) *model.Session {
	sess := &model.Session{
		Token:       token,
		Email:       email,
		DisplayName: localPart(email),
	}

	claims, ok := decodeClaims(token)
	if !ok {
		return sess
	}
	if claims.Email != "" {
		sess.Email = claims.Email
	}
	if claims.Name != "" {
		sess.DisplayName = claims.Name
	}
	sess.UserID = claims.ID
	return sess
}

// decodeClaims extracts the middle segment of a three-segment dot-delimited
// token. Anything that is not that shape, or does not base64-decode to JSON,
// reports false and the caller falls back to email-derived display fields.
func decodeClaims(token string) (tokenClaims, bool) {
	var claims tokenClaims

	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return claims, false
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(segments[1], "="))
	if err != nil {
		return claims, false
	}
	if err := json.Unmarshal(raw, &claims); err != nil {
		return claims, false
	}
	return claims, true
}

func localPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// readServerMessage extracts the message from an error body, with a default.
func readServerMessage(resp *http.Response, fallback string) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil {
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
			return &ServerError{Status: resp.StatusCode, Message: payload.Message}
		}
	}
	return &ServerError{Status: resp.StatusCode, Message: fallback}
}
