package server

import (
	"context"
	goerrors "errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crowdwatch/internal/backend"
	"crowdwatch/internal/config"
	"crowdwatch/internal/session"
	"crowdwatch/pkg/log"
)

const httpXRequestId = "X-Request-Id"

// Server exposes the session store and controller to presentation
// adapters over a local HTTP API.
type Server struct {
	conf       *config.Config
	store      *session.Store
	controller *session.Controller
	reconciler *session.Reconciler
	backend    *backend.Client
	httpServer *http.Server
	logger     *logrus.Entry
}

func NewServer(ctx context.Context, conf *config.Config, store *session.Store,
	controller *session.Controller, reconciler *session.Reconciler, cli *backend.Client) *Server {
	return &Server{
		conf:       conf,
		store:      store,
		controller: controller,
		reconciler: reconciler,
		backend:    cli,
		logger:     log.GetLogger(ctx),
	}
}

func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(httpXRequestId)
		if requestId == "" {
			requestId = strings.ReplaceAll(uuid.New().String(), "-", "")
		}
		c.Header(httpXRequestId, requestId)
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.Now()
		c.Next()
		latency := time.Since(t)
		status := c.Writer.Status()

		logrus.Info("ip: ", c.ClientIP(), " method: ", c.Request.Method, " path: ",
			c.Request.URL.Path, " status: ", status, " latency: ", latency)
	}
}

func (s *Server) Start() {
	gin.SetMode(gin.ReleaseMode)
	router := s.SetUpRouter()
	s.httpServer = &http.Server{
		Addr:    s.conf.Addr,
		Handler: router,
	}

	logrus.Infof("start http server on %s", s.conf.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && !goerrors.Is(err, http.ErrServerClosed) {
		logrus.Fatal(err)
	}
}

func (s *Server) Shutdown() {
	err := s.httpServer.Shutdown(context.Background())
	if err != nil {
		logrus.Fatalf("server forced to shutdown: %v", err)
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(c *gin.Context, code int, err error) {
	c.JSON(code, ErrorResponse{
		Error: err.Error(),
	})
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			matched, _ := regexp.MatchString(`^[a-zA-Z0-9!@#$%^*+()]+$`, fl.Field().String())
			return matched
		})
	}
}
