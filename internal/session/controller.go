package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"crowdwatch/internal/alerts"
	"crowdwatch/internal/backend"
	"crowdwatch/internal/config"
	"crowdwatch/internal/dao"
	"crowdwatch/internal/stream"
	"crowdwatch/pkg/log"
)

// ErrNoZones is returned by Start before any network activity when the
// video has no detection zones; a job cannot run without at least one.
var ErrNoZones = errors.New("no zones defined for this video")

// Session is the handle for one streaming analysis job. Done is closed
// once the job reaches a terminal state; Err and Result are valid after
// that. A cancelled session reports a nil error.
type Session struct {
	VideoId  int
	username string
	zones    []dao.Zone

	cancel    context.CancelFunc
	cancelled atomic.Bool
	done      chan struct{}
	err       error
	completed *dao.AnalysisRecord
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Err() error {
	return s.err
}

// Result returns the completed analysis, nil unless the session
// finished normally.
func (s *Session) Result() *dao.AnalysisRecord {
	return s.completed
}

// Controller drives streaming analysis jobs: one transport connection
// and one live record per video at a time. Duplicate Start calls attach
// to the running session instead of opening a second stream.
type Controller struct {
	conf     *config.Config
	ctx      context.Context
	store    *Store
	backend  *backend.Client
	alertPub *alerts.Publisher
	archiver *Archiver
	logger   *logrus.Entry

	mu     sync.Mutex
	active map[int]*Session
}

func NewController(ctx context.Context, conf *config.Config, store *Store, cli *backend.Client) *Controller {
	return &Controller{
		conf:    conf,
		ctx:     ctx,
		store:   store,
		backend: cli,
		logger:  log.WithComponent(ctx, "controller"),
		active:  make(map[int]*Session),
	}
}

// WithAlertPublisher wires the NSQ side-channel for threshold breaches.
func (c *Controller) WithAlertPublisher(pub *alerts.Publisher) *Controller {
	c.alertPub = pub
	return c
}

// WithArchiver wires completed-frame uploads.
func (c *Controller) WithArchiver(a *Archiver) *Controller {
	c.archiver = a
	return c
}

// Start begins a streaming session for videoId, or attaches to the one
// already running. The returned session is shared between attaching
// callers.
func (c *Controller) Start(videoId int, username string, zones []dao.Zone) (*Session, error) {
	if len(zones) == 0 {
		return nil, ErrNoZones
	}

	c.mu.Lock()
	if s, ok := c.active[videoId]; ok {
		c.mu.Unlock()
		return s, nil
	}

	ctx, cancel := context.WithCancel(c.ctx)
	s := &Session{
		VideoId:  videoId,
		username: username,
		zones:    zones,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	c.active[videoId] = s
	c.mu.Unlock()

	go c.run(ctx, s)

	return s, nil
}

// Stop cancels the session for videoId and removes its live record.
// Stopping is not an error and writes no completed analysis; events
// already in flight are discarded.
func (c *Controller) Stop(videoId int) {
	c.mu.Lock()
	s := c.active[videoId]
	c.mu.Unlock()
	if s == nil {
		return
	}

	s.cancelled.Store(true)
	s.cancel()
	if err := c.store.DeleteLive(videoId); err != nil {
		c.logger.WithError(err).Errorf("delete live record for video %d", videoId)
	}
}

func (c *Controller) IsStreaming(videoId int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.active[videoId]
	return ok
}

// StopAll cancels every active session, for shutdown.
func (c *Controller) StopAll() {
	c.mu.Lock()
	ids := make([]int, 0, len(c.active))
	for videoId := range c.active {
		ids = append(ids, videoId)
	}
	c.mu.Unlock()
	for _, videoId := range ids {
		c.Stop(videoId)
	}
}

// sessionState is the order-sensitive accumulation for one stream.
type sessionState struct {
	maxCounts map[string]int
	frameData []dao.FrameSample
	progress  int
	lastFrame string
}

func (c *Controller) run(ctx context.Context, s *Session) {
	logger := c.logger.WithField("video", s.VideoId)

	defer func() {
		if err := c.store.DeleteLive(s.VideoId); err != nil {
			logger.WithError(err).Error("delete live record")
		}
		c.mu.Lock()
		if c.active[s.VideoId] == s {
			delete(c.active, s.VideoId)
		}
		c.mu.Unlock()
		close(s.done)
	}()

	body, err := c.backend.OpenStream(ctx, s.VideoId, s.username)
	if err != nil {
		if !s.cancelled.Load() {
			logger.WithError(err).Error("open analysis stream")
			s.err = err
		}
		return
	}
	defer body.Close()

	logger.Info("analysis stream started")

	parser := stream.NewParser()
	st := &sessionState{maxCounts: make(map[string]int)}
	buf := make([]byte, 32*1024)

	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			for _, ev := range parser.Feed(buf[:n]) {
				if s.cancelled.Load() {
					return
				}
				if terminal := c.apply(s, st, &ev, logger); terminal {
					return
				}
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				// Connection closed without a terminal event: the live
				// record goes away and readers fall back on their own.
				logger.Info("analysis stream closed")
				return
			}
			if s.cancelled.Load() || ctx.Err() != nil {
				return
			}
			s.err = fmt.Errorf("%w: %v", backend.ErrTransport, rerr)
			logger.WithError(rerr).Error("read analysis stream")
			return
		}
	}
}

// apply folds one event into the session state, strictly in arrival
// order. It returns true when the event is terminal.
func (c *Controller) apply(s *Session, st *sessionState, ev *stream.Event, logger *logrus.Entry) bool {
	if ev.Error != "" {
		s.err = fmt.Errorf("stream error: %s", ev.Error)
		logger.Errorf("backend reported stream error: %s", ev.Error)
		return true
	}

	if ev.Complete {
		completed := c.finalize(s, st, ev)
		if s.cancelled.Load() {
			return true
		}
		if err := c.store.SetCompleted(completed); err != nil {
			logger.WithError(err).Error("write completed analysis")
			s.err = err
			return true
		}
		if err := c.store.DeleteLive(s.VideoId); err != nil {
			logger.WithError(err).Error("delete live record")
		}
		s.completed = completed
		logger.Infof("analysis complete, total count %d", completed.TotalCount)

		if c.archiver != nil && st.lastFrame != "" {
			c.archiver.ArchiveFrame(s.VideoId, completed.Id, st.lastFrame)
		}
		return true
	}

	if ev.Counts != nil && ev.FrameNumber > 0 && ev.TotalFrames > 0 {
		t := float64(ev.FrameNumber) / float64(ev.TotalFrames) * float64(c.conf.Stream.NominalDurationSec)
		st.frameData = append(st.frameData, dao.FrameSample{Time: t, Counts: ev.Counts})
	}
	for zone, count := range ev.Counts {
		if count > st.maxCounts[zone] {
			st.maxCounts[zone] = count
		}
	}
	if ev.Progress > st.progress {
		st.progress = ev.Progress
	}
	if ev.Frame != "" {
		st.lastFrame = ev.Frame
	}

	liveCounts := ev.Counts
	if liveCounts == nil {
		liveCounts = map[string]int{}
	}

	rec := &LiveRecord{
		VideoId:       s.VideoId,
		VideoFilename: videoFilename(s.VideoId),
		Username:      s.username,
		Status:        "active",
		Progress:      st.progress,
		LiveCounts:    liveCounts,
		MaxCounts:     st.maxCounts,
		CurrentFrame:  ev.Frame,
		FrameData:     st.frameData,
		ZoneCounts:    deriveZoneCounts(st.maxCounts, s.zones),
		TotalCount:    sumCounts(st.maxCounts),
		Timestamp:     time.Now().UnixMilli(),
	}

	if s.cancelled.Load() {
		return true
	}
	if err := c.store.SetLive(rec); err != nil {
		logger.WithError(err).Error("write live record")
	}

	if c.conf.Alerts.Enabled && ev.Counts != nil {
		breaches := alerts.Evaluate(liveCounts, c.conf.Alerts.TotalThreshold, c.conf.Alerts.ZoneThresholds)
		for _, breach := range breaches {
			logger.Warn(breach)
		}
		if c.alertPub != nil && len(breaches) > 0 {
			if err := c.alertPub.Publish(s.VideoId, s.username, breaches); err != nil {
				logger.WithError(err).Error("publish threshold alerts")
			}
		}
	}

	return false
}

// finalize builds the durable completed record. Event-supplied totals
// win; otherwise total_count is the sum of the per-zone maxima and
// zone_counts are derived from them.
func (c *Controller) finalize(s *Session, st *sessionState, ev *stream.Event) *dao.AnalysisRecord {
	total := sumCounts(st.maxCounts)
	if ev.TotalCount != nil {
		total = *ev.TotalCount
	}

	zoneCounts := ev.ZoneCounts
	if zoneCounts == nil {
		zoneCounts = deriveZoneCounts(st.maxCounts, s.zones)
	}

	now := time.Now()
	return &dao.AnalysisRecord{
		Id:            -now.UnixMilli(),
		VideoId:       s.VideoId,
		VideoFilename: videoFilename(s.VideoId),
		TotalCount:    total,
		ZoneCounts:    zoneCounts,
		ProcessedAt:   now.Format(time.RFC3339),
		FrameData:     st.frameData,
	}
}
