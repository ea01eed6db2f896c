package http

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"voice-ai-go/internal/apperr"
	"voice-ai-go/internal/auth"
	"voice-ai-go/internal/config"
	"voice-ai-go/internal/models"
	"voice-ai-go/internal/service"
)

type AuthAPI interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*service.Session, error)
	Verify(ctx context.Context, token string) (*service.Session, error)
	VerifyToken(token string) (*auth.Claims, error)
}

type ChatAPI interface {
	Send(ctx context.Context, userID uint, text string, mode models.ChatMode) (*service.Reply, error)
	History(ctx context.Context, userID uint) ([]models.ChatRecord, error)
	Speak(ctx context.Context, text string) ([]byte, error)
}

type VoiceAPI interface {
	Transcribe(ctx context.Context, userID uint, up service.Upload) (*service.Transcript, error)
}

type ProfileAPI interface {
	Profile(ctx context.Context, userID uint) (*models.Profile, error)
	Settings(ctx context.Context, userID uint) (*models.UserSettings, error)
	UpdateProfile(ctx context.Context, userID uint, username string) error
	UpdateProfilePicture(ctx context.Context, userID uint, up service.Upload) (string, error)
	ChangePassword(ctx context.Context, userID uint, current, next string) error
	UpdateSettings(ctx context.Context, userID uint, raw map[string]any) (*models.UserSettings, error)
}

// StreamAPI serves the live dictation websocket.
type StreamAPI interface {
	Serve(w http.ResponseWriter, r *http.Request, userID uint) error
}

type Deps struct {
	Auth    AuthAPI
	Chat    ChatAPI
	Voice   VoiceAPI
	Profile ProfileAPI
	Stream  StreamAPI
	Log     *logrus.Logger
}

type Server struct {
	cfg     *config.Config
	log     *logrus.Logger
	schemas map[string]*gojsonschema.Schema

	auth    AuthAPI
	chat    ChatAPI
	voice   VoiceAPI
	profile ProfileAPI
	stream  StreamAPI
}

func NewServer(cfg *config.Config, d Deps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(cors(cfg))
	r.Use(logging(d.Log))

	s := &Server{
		cfg:     cfg,
		log:     d.Log,
		schemas: mustLoadSchemas(),
		auth:    d.Auth,
		chat:    d.Chat,
		voice:   d.Voice,
		profile: d.Profile,
		stream:  d.Stream,
	}

	r.POST("/register", s.register)
	r.POST("/login", s.login)
	r.GET("/verify", s.verify)

	chat := r.Group("/chat")
	chat.Use(AuthMiddleware(d.Auth))
	{
		chat.POST("/send", s.sendMessage)
		chat.POST("/voice", s.voiceMessage)
		chat.GET("/history", s.history)
		chat.POST("/speech", s.speech)
		chat.GET("/stream", s.streamAudio)
	}

	settings := r.Group("/settings")
	settings.Use(EnvelopeAuthMiddleware(d.Auth))
	{
		settings.GET("/profile", s.getProfile)
		settings.GET("/settings", s.getSettings)
		settings.POST("/update_profile", s.updateProfile)
		settings.POST("/update_profile_picture", s.updateProfilePicture)
		settings.POST("/change_password", s.changePassword)
		settings.POST("/update_settings", s.updateSettings)
	}

	// Only profile pictures are public; voice recordings stay on disk unserved.
	if cfg.StorageDriver == "" || cfg.StorageDriver == "local" {
		r.Static("/uploads/profiles", filepath.Join(cfg.UploadDir, "profiles"))
	}
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	return r
}

// requestContext bounds upstream calls made while serving c.
func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout())
}

func userID(c *gin.Context) uint {
	return c.MustGet(ctxUserID).(uint)
}

// statusFor maps an error kind to its HTTP status. A credential mismatch is a
// bad request; every other auth failure is 401.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrDuplicate):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) errorMessage(c *gin.Context, err error, status int) string {
	if status >= 500 {
		s.log.WithError(err).WithFields(logrus.Fields{
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(ctxRequestID),
		}).Error("request failed")
	}
	if apperr.Kind(err) == nil {
		return "internal server error"
	}
	return err.Error()
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	c.JSON(status, gin.H{"error": s.errorMessage(c, err, status)})
}

// writeEnvelope and writeEnvelopeError render the /settings responses.
func writeEnvelope(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func (s *Server) writeEnvelopeError(c *gin.Context, err error) {
	status := statusFor(err)
	c.JSON(status, gin.H{"success": false, "error": s.errorMessage(c, err, status)})
}

func cors(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.AllowOrigins)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

const ctxRequestID = "requestID"

func logging(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(ctxRequestID, reqID)
		c.Header("X-Request-ID", reqID)

		c.Next()

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"request_id": reqID,
		}
		if id, ok := c.Get(ctxUserID); ok {
			fields["user_id"] = id
		}
		log.WithFields(fields).Info("request")
	}
}
