// Package portal is a thin client for a web GIS portal's sharing REST API:
// item lookup and upload, feature-layer maintenance, and the truncate-append
// load flow for refreshing hosted layers from a file geodatabase.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cartops/proctools/config"
	"github.com/cartops/proctools/errors"
	"github.com/cartops/proctools/logger"
)

// Site is a connection to a portal's sharing REST root.
type Site struct {
	baseURL  string
	username string
	token    string
	client   *http.Client

	// deleteVerifyInterval/Tries bound the count-polling fallback when a
	// deleteFeatures request times out at the gateway but keeps running
	// server-side.
	deleteVerifyInterval time.Duration
	deleteVerifyTries    int
}

// NewSite creates a portal connection from configuration.
func NewSite(cfg config.PortalConfig) (*Site, error) {
	if cfg.URL == "" {
		return nil, errors.New("portal URL not configured")
	}
	return &Site{
		baseURL:              strings.TrimRight(cfg.URL, "/"),
		username:             cfg.Username,
		token:                cfg.Token,
		client:               &http.Client{Timeout: 5 * time.Minute},
		deleteVerifyInterval: time.Minute,
		deleteVerifyTries:    60,
	}, nil
}

// Item is a content item hosted on the portal.
type Item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
	Owner string `json:"owner"`
}

type restError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// post sends a form-encoded request to path (relative to the sharing root or
// absolute) and decodes the JSON response into out. Portal error envelopes
// are surfaced as errors.
func (s *Site) post(ctx context.Context, path string, form url.Values, out any) error {
	endpoint := path
	if !strings.HasPrefix(path, "http") {
		endpoint = s.baseURL + path
	}
	if form == nil {
		form = url.Values{}
	}
	form.Set("f", "json")
	if s.token != "" {
		form.Set("token", s.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "build portal request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "portal request %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGatewayTimeout {
		return errGatewayTimeout
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Newf("portal request %s: status %d", path, resp.StatusCode)
	}
	return decodePortalResponse(resp.Body, path, out)
}

var errGatewayTimeout = errors.New("portal gateway timeout")

func decodePortalResponse(body io.Reader, path string, out any) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return errors.Wrapf(err, "read portal response for %s", path)
	}
	var envelope struct {
		Error *restError `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
		return errors.Newf("portal error %d for %s: %s", envelope.Error.Code, path, envelope.Error.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "decode portal response for %s", path)
	}
	return nil
}

// FindItem returns the single content item with the exact title and type.
// Zero matches or more than one are errors: the title must identify the item
// uniquely.
func (s *Site) FindItem(ctx context.Context, title, itemType string) (Item, error) {
	form := url.Values{}
	form.Set("q", `title:"`+title+`" AND type:"`+itemType+`"`)
	form.Set("num", "100")

	var result struct {
		Results []Item `json:"results"`
	}
	if err := s.post(ctx, "/search", form, &result); err != nil {
		return Item{}, err
	}

	// Portal search is fuzzy; keep only exact title matches.
	var matches []Item
	for _, item := range result.Results {
		if item.Title == title && item.Type == itemType {
			matches = append(matches, item)
		}
	}
	switch len(matches) {
	case 0:
		return Item{}, errors.Newf("%s %q does not exist on portal", itemType, title)
	case 1:
		return matches[0], nil
	default:
		return Item{}, errors.Newf("%s name %q not unique on portal", itemType, title)
	}
}

// FindLayerItem returns the feature-layer item with the exact title.
func (s *Site) FindLayerItem(ctx context.Context, title string) (Item, error) {
	return s.FindItem(ctx, title, "Feature Service")
}

// User is a portal account.
type User struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// FindUser returns the portal user with the exact username.
func (s *Site) FindUser(ctx context.Context, username string) (User, error) {
	var user User
	if err := s.post(ctx, "/community/users/"+url.PathEscape(username), nil, &user); err != nil {
		return User{}, err
	}
	if user.Username == "" {
		return User{}, errors.Newf("user %q does not exist on portal", username)
	}
	return user, nil
}

// AddGeodatabaseItem uploads a zipped file geodatabase as a content item
// owned by the configured user.
func (s *Site) AddGeodatabaseItem(ctx context.Context, zipPath, title string, tags []string) (Item, error) {
	file, err := os.Open(zipPath)
	if err != nil {
		return Item{}, errors.Wrapf(err, "open geodatabase archive %q", zipPath)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(zipPath))
	if err != nil {
		return Item{}, errors.Wrap(err, "build upload request")
	}
	if _, err := io.Copy(part, file); err != nil {
		return Item{}, errors.Wrapf(err, "read geodatabase archive %q", zipPath)
	}
	fields := map[string]string{
		"f":     "json",
		"title": title,
		"type":  "File Geodatabase",
		"tags":  strings.Join(tags, ","),
	}
	if s.token != "" {
		fields["token"] = s.token
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return Item{}, errors.Wrap(err, "build upload request")
		}
	}
	if err := writer.Close(); err != nil {
		return Item{}, errors.Wrap(err, "build upload request")
	}

	endpoint := s.baseURL + "/content/users/" + url.PathEscape(s.username) + "/addItem"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return Item{}, errors.Wrap(err, "build upload request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return Item{}, errors.Wrap(err, "upload geodatabase item")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Item{}, errors.Newf("upload geodatabase item: status %d", resp.StatusCode)
	}

	var result struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
	}
	if err := decodePortalResponse(resp.Body, "addItem", &result); err != nil {
		return Item{}, err
	}
	if !result.Success || result.ID == "" {
		return Item{}, errors.Newf("upload geodatabase item %q not accepted", title)
	}
	logger.Logger.Infow("Uploaded geodatabase item", "title", title, "item_id", result.ID)
	return Item{ID: result.ID, Title: title, Type: "File Geodatabase", Owner: s.username}, nil
}

// DeleteItem removes a content item from the portal.
func (s *Site) DeleteItem(ctx context.Context, item Item) error {
	path := "/content/users/" + url.PathEscape(s.username) + "/items/" + url.PathEscape(item.ID) + "/delete"
	var result struct {
		Success bool `json:"success"`
	}
	if err := s.post(ctx, path, nil, &result); err != nil {
		return err
	}
	if !result.Success {
		return errors.Newf("delete item %q (%s) not accepted", item.Title, item.ID)
	}
	return nil
}
