package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"crowdwatch/internal/dao"
	"crowdwatch/internal/session"
)

// handleLogin authenticates against the backend
// @Summary Log in to the backend
// @Description Proxies the login and persists the access token for later calls
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dao.LoginRequest true "credentials"
// @Success 200 {object} dao.LoginResponse
// @Failure 400 {object} ErrorResponse "bad request"
// @Failure 502 {object} ErrorResponse "backend rejected the login"
// @Router /api/v1/login [post]
func (s *Server) handleLogin(c *gin.Context) {
	var req dao.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	resp, err := s.backend.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, http.StatusBadGateway, err)
		return
	}

	s.backend.SetToken(resp.AccessToken)
	info := &session.AuthInfo{
		Username:  req.Username,
		Token:     resp.AccessToken,
		Role:      resp.Role,
		LoginTime: time.Now().Format(time.RFC3339),
	}
	if err := s.store.SetAuthInfo(info); err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleListVideos lists the logged-in user's videos
// @Summary List videos
// @Tags videos
// @Produce json
// @Success 200 {array} dao.Video
// @Failure 401 {object} ErrorResponse "not logged in"
// @Failure 502 {object} ErrorResponse "backend unreachable"
// @Router /api/v1/videos [get]
func (s *Server) handleListVideos(c *gin.Context) {
	info, err := s.store.GetAuthInfo()
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	} else if info == nil || info.Username == "" {
		s.writeError(c, http.StatusUnauthorized, errors.New("not logged in"))
		return
	}

	videos, err := s.backend.ListVideos(c.Request.Context(), info.Username)
	if err != nil {
		s.writeError(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

// handleListZones lists the zones defined for a video
// @Summary List zones
// @Tags videos
// @Produce json
// @Param video_id path int true "video id"
// @Success 200 {array} dao.Zone
// @Failure 502 {object} ErrorResponse "backend unreachable"
// @Router /api/v1/video/{video_id}/zones [get]
func (s *Server) handleListZones(c *gin.Context) {
	videoId, ok := videoIdParam(c)
	if !ok {
		return
	}

	zones, err := s.backend.ListZones(c.Request.Context(), videoId)
	if err != nil {
		s.writeError(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, zones)
}

// handleGetProgress proxies the non-realtime progress poll
// @Summary Analysis progress
// @Description Polling fallback for the synchronous analysis path
// @Tags analysis
// @Produce json
// @Param video_id path int true "video id"
// @Success 200 {object} dao.ProgressResponse
// @Failure 502 {object} ErrorResponse "backend unreachable"
// @Router /api/v1/analysis/{video_id}/progress [get]
func (s *Server) handleGetProgress(c *gin.Context) {
	videoId, ok := videoIdParam(c)
	if !ok {
		return
	}

	progress, err := s.backend.GetProgress(c.Request.Context(), videoId)
	if err != nil {
		s.writeError(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
