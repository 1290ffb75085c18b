package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
)

type ChatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversation_id"`
}

type InitChatResponse struct {
	ConversationID string   `json:"conversation_id"`
	Reply          string   `json:"reply"`
	Stage          string   `json:"stage"`
	SuggestedTours []string `json:"suggested_tours"`
}

type ChatResponse struct {
	ConversationID        string   `json:"conversation_id"`
	Reply                 string   `json:"reply"`
	Stage                 string   `json:"stage"`
	RegistrationCompleted bool     `json:"registration_completed"`
	WaitListed            bool     `json:"wait_listed"`
	SuggestedTours        []string `json:"suggested_tours"`
}

func (s *Server) handleHome(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", nil)
}

func (s *Server) handleThankYou(c *gin.Context) {
	c.HTML(http.StatusOK, "thank_you.html", nil)
}

func (s *Server) handleInitChat(c *gin.Context) {
	ctx := c.Request.Context()

	convID, reply, err := s.bot.StartConversation(ctx)
	if err != nil {
		log.Error().Err(err).Msg("start conversation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo iniciar la conversación"})
		return
	}

	tours, err := s.bot.SuggestTours(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list tours failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo consultar las fechas de tour"})
		return
	}

	c.JSON(http.StatusOK, InitChatResponse{
		ConversationID: convID,
		Reply:          reply,
		Stage:          contractx.StageChat,
		SuggestedTours: tours,
	})
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message es requerido"})
		return
	}

	ctx := c.Request.Context()

	convID := req.ConversationID
	if convID == "" {
		id, _, err := s.bot.StartConversation(ctx)
		if err != nil {
			log.Error().Err(err).Msg("start conversation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo iniciar la conversación"})
			return
		}
		convID = id
	}

	result, err := s.bot.HandleTurn(ctx, convID, req.Message)
	if err != nil {
		log.Error().Err(err).Str("conversation_id", convID).Msg("handle turn failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ocurrió un error procesando tu mensaje"})
		return
	}

	// The pickable tour list rides along with every reply; a failure here
	// should not sink an otherwise successful turn.
	tours, err := s.bot.SuggestTours(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("list tours failed")
		tours = nil
	}

	c.JSON(http.StatusOK, ChatResponse{
		ConversationID:        convID,
		Reply:                 result.Reply,
		Stage:                 result.Stage,
		RegistrationCompleted: result.RegistrationCompleted,
		WaitListed:            result.WaitListed,
		SuggestedTours:        tours,
	})
}
