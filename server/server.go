// Package server exposes the chat over HTTP: two JSON endpoints plus the
// embedded chat page and its assets.
package server

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

type Config struct {
	Addr  string `split_words:"true" default:":8000"`
	Debug bool   `split_words:"true" default:"false"`
}

// Bot is the slice of the dialogue service the HTTP layer needs.
type Bot interface {
	StartConversation(ctx context.Context) (conversationID, reply string, err error)
	HandleTurn(ctx context.Context, conversationID, text string) (contractx.TurnResult, error)
	SuggestTours(ctx context.Context) ([]string, error)
}

type Server struct {
	bot    Bot
	router *gin.Engine
}

func New(bot Bot, cfg Config) (*Server, error) {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{bot: bot}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), corsAllowAll())

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	router.StaticFS("/static", http.FS(staticSub))

	router.GET("/", s.handleHome)
	router.GET("/gracias", s.handleThankYou)
	router.GET("/chat/init", s.handleInitChat)
	router.POST("/chat", s.handleChat)

	s.router = router
	return s, nil
}

// Handler exposes the router so main can own the http.Server lifecycle.
func (s *Server) Handler() http.Handler {
	return s.router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}

// corsAllowAll mirrors the permissive policy the chat widget expects; the
// endpoints carry no credentials or secrets.
func corsAllowAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
