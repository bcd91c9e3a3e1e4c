package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"crowdwatch/internal/dao"
	"crowdwatch/pkg/log"
)

// ErrTransport marks network failures and non-success responses so the
// session controller can tell them apart from payload-level errors.
var ErrTransport = errors.New("backend transport failure")

const (
	loginPath        = "/api/login"
	registerPath     = "/api/register"
	videoListPath    = "/api/video/list/%s"
	videoDeletePath  = "/api/video/delete/%d"
	zoneListPath     = "/api/zone/list/%d"
	zoneCreatePath   = "/api/zone/"
	zoneDeletePath   = "/api/zone/%d"
	analysisStart    = "/api/analysis/start"
	analysisStream   = "/api/analysis/start/stream"
	analysisProgress = "/api/analysis/progress/%d"
	analysisAll      = "/api/analysis/all/%s"
	analysisFrames   = "/api/analysis/frame-data/%d"
	analysisDelete   = "/api/analysis/results/%d"
)

type Client struct {
	baseURL string
	httpCli *http.Client
	// streamCli has no overall timeout: stream responses stay open for
	// the whole analysis run and are bounded by the caller's context.
	streamCli *http.Client
	logger    *logrus.Entry

	mu    sync.RWMutex
	token string
}

func NewClient(ctx context.Context, baseURL string) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		baseURL: baseURL,
		httpCli: &http.Client{
			Transport: transport,
			Timeout:   15 * time.Second,
		},
		streamCli: &http.Client{
			Transport: transport,
		},
		logger: log.WithComponent(ctx, "backend"),
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := readErrorDetail(resp.Body)
		if detail != "" {
			return fmt.Errorf("%w: status %d: %s", ErrTransport, resp.StatusCode, detail)
		}
		return fmt.Errorf("%w: status %d", ErrTransport, resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// readErrorDetail pulls the backend's {"detail": ...} message if there
// is one; the body is best-effort only.
func readErrorDetail(r io.Reader) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Detail
}

func (c *Client) Login(ctx context.Context, username, password string) (*dao.LoginResponse, error) {
	var resp dao.LoginResponse
	req := dao.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, loginPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) error {
	req := dao.RegisterRequest{Username: username, Email: email, Password: password}
	return c.do(ctx, http.MethodPost, registerPath, req, nil)
}

func (c *Client) ListVideos(ctx context.Context, username string) ([]dao.Video, error) {
	var videos []dao.Video
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf(videoListPath, username), nil, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

func (c *Client) DeleteVideo(ctx context.Context, videoId int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf(videoDeletePath, videoId), nil, nil)
}

func (c *Client) ListZones(ctx context.Context, videoId int) ([]dao.Zone, error) {
	var zones []dao.Zone
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf(zoneListPath, videoId), nil, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

func (c *Client) CreateZone(ctx context.Context, req *dao.CreateZoneRequest) (*dao.Zone, error) {
	var zone dao.Zone
	if err := c.do(ctx, http.MethodPost, zoneCreatePath, req, &zone); err != nil {
		return nil, err
	}
	return &zone, nil
}

func (c *Client) DeleteZone(ctx context.Context, zoneId int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf(zoneDeletePath, zoneId), nil, nil)
}

// StartAnalysis runs the synchronous variant: the call blocks until the
// backend finishes the whole video and returns the final result.
func (c *Client) StartAnalysis(ctx context.Context, videoId int, username string) (*dao.StartAnalysisResponse, error) {
	var resp dao.StartAnalysisResponse
	req := dao.StartAnalysisRequest{VideoId: videoId, Username: username}
	if err := c.streamDo(ctx, analysisStart, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// streamDo is do without the overall client timeout, for calls whose
// response time is bounded by video length rather than network health.
func (c *Client) streamDo(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.streamCli.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrTransport, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) GetProgress(ctx context.Context, videoId int) (*dao.ProgressResponse, error) {
	var resp dao.ProgressResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf(analysisProgress, videoId), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListAnalyses(ctx context.Context, username string) ([]dao.AnalysisRecord, error) {
	var records []dao.AnalysisRecord
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf(analysisAll, username), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) GetFrameData(ctx context.Context, videoId int) ([]dao.FrameSample, error) {
	var frames []dao.FrameSample
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf(analysisFrames, videoId), nil, &frames); err != nil {
		return nil, err
	}
	return frames, nil
}

func (c *Client) DeleteAnalysis(ctx context.Context, analysisId int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf(analysisDelete, analysisId), nil, nil)
}

// OpenStream opens the server-sent analysis stream for videoId. The
// returned body stays open until the stream ends or ctx is cancelled;
// cancelling ctx stops network consumption immediately.
func (c *Client) OpenStream(ctx context.Context, videoId int, username string) (io.ReadCloser, error) {
	payload, err := json.Marshal(dao.StartAnalysisRequest{VideoId: videoId, Username: username})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+analysisStream, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.streamCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", ErrTransport, resp.StatusCode)
	}

	c.logger.Debugf("opened analysis stream for video %d", videoId)
	return resp.Body, nil
}
