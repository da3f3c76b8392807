// Package api implements the typed client for the station server wire
// protocol. Every mutating request carries the session token in the
// Authorization header (raw value, no scheme prefix) and a JSON body;
// every response carries a status field with a message on non-success.
//
// The client performs no state tracking beyond the session token: callers
// decide what a success response means for their own state.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/acesco/vigia/internal/errors"
	"github.com/acesco/vigia/internal/httpclient"
	"github.com/acesco/vigia/internal/logging"
)

var apiLogger *slog.Logger
var apiLevelVar = new(slog.LevelVar)

func init() {
	var err error
	apiLogger, _, err = logging.NewFileLogger("logs/api.log", "api", apiLevelVar)
	if err != nil {
		// Fallback to a disabled logger that still respects the level var
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: apiLevelVar})
		apiLogger = slog.New(fbHandler).With("service", "api")
	}
}

// Client talks to the station server. Safe for concurrent use; the token
// may be set once after login while polling requests are in flight.
type Client struct {
	baseURL string
	http    *httpclient.Client

	tokenMu sync.RWMutex
	token   string
}

// NewClient creates a client for the server at baseURL. A nil httpClient
// falls back to the package defaults.
func NewClient(baseURL string, httpClient *httpclient.Client) *Client {
	if httpClient == nil {
		httpClient = httpclient.New(nil)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// SetToken stores the session token used for the Authorization header.
func (c *Client) SetToken(token string) {
	c.tokenMu.Lock()
	c.token = token
	c.tokenMu.Unlock()
}

// Token returns the current session token.
func (c *Client) Token() string {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.token
}

// Login authenticates against POST /login and stores the returned session
// token on success.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.postJSON(ctx, "/login", loginRequest{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.Status != StatusSuccess {
		return nil, rejection("/login", resp.Message)
	}
	c.SetToken(resp.SessionID)
	apiLogger.Info("login accepted", "role", resp.Role)
	return &resp, nil
}

// SetModule arms or disarms a module via POST /set_module. A nil module
// with active=false disarms whatever is running.
func (c *Client) SetModule(ctx context.Context, module *string, cameraID int, active bool) (bool, error) {
	var resp SetModuleResponse
	body := setModuleRequest{Module: module, CameraID: cameraID, Active: active}
	if err := c.postJSON(ctx, "/set_module", body, &resp); err != nil {
		return false, err
	}
	if resp.Status != StatusSuccess {
		return false, rejection("/set_module", resp.Message)
	}
	return resp.ModelActive, nil
}

// UpdateConfig pushes the per-class detection toggle map for a camera.
func (c *Client) UpdateConfig(ctx context.Context, cameraID int, config map[string]bool) error {
	return c.postStatus(ctx, "/update_config", updateConfigRequest{CameraID: cameraID, Config: config})
}

// AddCamera registers a new camera feed.
func (c *Client) AddCamera(ctx context.Context, cameraID int, feedURL string) error {
	return c.postStatus(ctx, "/add_camera", addCameraRequest{CameraID: cameraID, URL: feedURL})
}

// DeleteCamera removes a camera.
func (c *Client) DeleteCamera(ctx context.Context, cameraID int) error {
	return c.postStatus(ctx, "/delete_camera", deleteCameraRequest{CameraID: cameraID})
}

// AddRectangle commits a normalized restricted-area rectangle. The server
// assigns the slot; the client never chooses it.
func (c *Client) AddRectangle(ctx context.Context, cameraID, x1, y1, x2, y2 int) error {
	return c.postStatus(ctx, "/add_rectangle", addRectangleRequest{CameraID: cameraID, X1: x1, Y1: y1, X2: x2, Y2: y2})
}

// LoadAreas fetches the authoritative restricted-area set for a camera.
func (c *Client) LoadAreas(ctx context.Context, cameraID int) ([]Area, error) {
	var resp areasResponse
	if err := c.getJSON(ctx, "/load_areas?camera="+strconv.Itoa(cameraID), &resp); err != nil {
		return nil, err
	}
	if resp.Status != StatusSuccess {
		return nil, rejection("/load_areas", resp.Message)
	}
	return resp.Areas, nil
}

// SaveAreas persists the current area set server-side.
func (c *Client) SaveAreas(ctx context.Context, cameraID int) error {
	return c.postStatus(ctx, "/save_areas", cameraOnlyRequest{CameraID: cameraID})
}

// UploadAreas bulk-imports an area file for a camera (multipart upload,
// wipe-and-replace semantics server-side).
func (c *Client) UploadAreas(ctx context.Context, cameraID int, filename string, file io.Reader) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return errors.New(err).Component("api").Category(errors.CategoryFileParsing).Build()
	}
	if _, err := io.Copy(part, file); err != nil {
		return errors.New(err).Component("api").Category(errors.CategoryFileParsing).Build()
	}
	if err := writer.WriteField("camera_id", strconv.Itoa(cameraID)); err != nil {
		return errors.New(err).Component("api").Category(errors.CategoryFileParsing).Build()
	}
	if err := writer.Close(); err != nil {
		return errors.New(err).Component("api").Category(errors.CategoryFileParsing).Build()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload_areas", &buf)
	if err != nil {
		return errors.New(err).Component("api").Category(errors.CategoryHTTP).Build()
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	var resp statusEnvelope
	if err := c.doJSON(ctx, req, &resp); err != nil {
		return err
	}
	if resp.Status != StatusSuccess {
		return rejection("/upload_areas", resp.Message)
	}
	return nil
}

// SetCurrentArea selects the active drawing slot server-side.
func (c *Client) SetCurrentArea(ctx context.Context, cameraID, area int) error {
	return c.postStatus(ctx, "/set_current_area", setCurrentAreaRequest{CameraID: cameraID, Area: area})
}

// DeleteArea removes one area slot.
func (c *Client) DeleteArea(ctx context.Context, cameraID, areaType int) error {
	return c.postStatus(ctx, "/delete_area", deleteAreaRequest{CameraID: cameraID, AreaType: areaType})
}

// DeleteAllAreas removes every area for a camera.
func (c *Client) DeleteAllAreas(ctx context.Context, cameraID int) error {
	return c.postStatus(ctx, "/delete_all_areas", cameraOnlyRequest{CameraID: cameraID})
}

// Videos returns the ordered list of recorded-video identifiers.
func (c *Client) Videos(ctx context.Context) ([]string, error) {
	var resp videosResponse
	if err := c.getJSON(ctx, "/videos", &resp); err != nil {
		return nil, err
	}
	if resp.Status != StatusSuccess {
		return nil, rejection("/videos", resp.Message)
	}
	return resp.Videos, nil
}

// PollDetections fetches the current detection snapshot for a camera and
// module. The module name is the wire name, e.g. "EPP's".
func (c *Client) PollDetections(ctx context.Context, cameraID int, module string) (*Detections, error) {
	path := "/detections?camera=" + strconv.Itoa(cameraID) + "&module=" + url.QueryEscape(module)
	var resp detectionsResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	if resp.Status != StatusSuccess {
		return nil, rejection("/detections", resp.Message)
	}
	return &Detections{Flags: resp.Detections, PersonInArea: resp.PersonInArea}, nil
}

// VideoFeedURL returns the continuous stream address for a camera. The
// stream itself is opaque to the controller.
func (c *Client) VideoFeedURL(cameraID int) string {
	return c.baseURL + "/video_feed?camera=" + strconv.Itoa(cameraID)
}

// VideoURL returns the playable address of a recorded video.
func (c *Client) VideoURL(filename string) string {
	return c.baseURL + "/videos/" + filename
}

// authorize adds the raw session token. The server expects no scheme prefix.
func (c *Client) authorize(req *http.Request) {
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", token)
	}
}

// postStatus posts a JSON body and expects a bare status envelope back.
func (c *Client) postStatus(ctx context.Context, path string, body any) error {
	var resp statusEnvelope
	if err := c.postJSON(ctx, path, body, &resp); err != nil {
		return err
	}
	if resp.Status != StatusSuccess {
		return rejection(path, resp.Message)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.New(err).Component("api").Category(errors.CategoryValidation).Context("path", path).Build()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return errors.New(err).Component("api").Category(errors.CategoryHTTP).Context("path", path).Build()
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	return c.doJSON(ctx, req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return errors.New(err).Component("api").Category(errors.CategoryHTTP).Context("path", path).Build()
	}
	c.authorize(req)

	return c.doJSON(ctx, req, out)
}

func (c *Client) doJSON(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		apiLogger.Error("request failed", "path", req.URL.Path, "error", err)
		return errors.New(err).Component("api").Category(errors.CategoryNetwork).Context("path", req.URL.Path).Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		apiLogger.Error("unexpected response code", "path", req.URL.Path, "code", resp.StatusCode)
		return errors.Newf("received non-200 response: %d", resp.StatusCode).
			Component("api").
			Category(errors.CategoryHTTP).
			Context("path", req.URL.Path).
			Build()
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.New(fmt.Errorf("error decoding response: %w", err)).
			Component("api").
			Category(errors.CategoryHTTP).
			Context("path", req.URL.Path).
			Build()
	}
	return nil
}

// rejection wraps a non-success response. The error text is the server
// message so callers can surface it directly to the operator feed.
func rejection(path, message string) error {
	if message == "" {
		message = "request rejected"
	}
	return errors.Newf("%s", message).
		Component("api").
		Category(errors.CategoryServerRejected).
		Context("path", path).
		Build()
}
