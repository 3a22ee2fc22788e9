package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/lorrc/dm-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/dm-backend/internal/adapters/primary/validation"
	"github.com/lorrc/dm-backend/internal/auth"
	"github.com/lorrc/dm-backend/internal/core/domain"
	"github.com/lorrc/dm-backend/internal/core/ports"
)

// MessageHandler handles HTTP requests for direct messages and reactions
type MessageHandler struct {
	conversationService ports.ConversationService
	reactionService     ports.ReactionService
	errorHandler        *ErrorHandler
	logger              *slog.Logger
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(
	conversationService ports.ConversationService,
	reactionService ports.ReactionService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *MessageHandler {
	return &MessageHandler{
		conversationService: conversationService,
		reactionService:     reactionService,
		errorHandler:        errorHandler,
		logger:              logger.With("handler", "message"),
	}
}

// Router sets up a new chi Router for all message-related routes.
func (h *MessageHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for all message endpoints.
func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleHistory)
	r.Post("/", h.HandleSendMessage)

	r.Route("/{messageID}", func(r chi.Router) {
		r.Get("/reactions", h.HandleListReactions)
		r.Put("/reactions", h.HandleReact)
	})
}

// --- Request/Response DTOs ---

// SendMessageRequest defines the expected JSON body for sending a message
type SendMessageRequest struct {
	To      string `json:"to"`
	Content string `json:"content"`
}

// Validate validates the send message request
func (r *SendMessageRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("to", r.To).
		MaxLength("to", r.To, domain.MaxUsernameLength)

	v.Required("content", r.Content).
		MaxLength("content", r.Content, domain.MaxMessageLength)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// ReactRequest defines the expected JSON body for reacting to a message
type ReactRequest struct {
	Content string `json:"content"`
}

// Validate validates the react request
func (r *ReactRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("content", r.Content)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// MessageDTO defines the JSON response for messages.
type MessageDTO struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

func toMessageDTO(message *domain.Message) MessageDTO {
	return MessageDTO{
		ID:        message.ID.String(),
		From:      message.From,
		To:        message.To,
		Content:   message.Content,
		CreatedAt: message.CreatedAt.Format(time.RFC3339Nano),
	}
}

func toMessageDTOs(messages []*domain.Message) []MessageDTO {
	response := make([]MessageDTO, 0, len(messages))
	for _, message := range messages {
		response = append(response, toMessageDTO(message))
	}
	return response
}

// ReactionDTO defines the JSON response for reactions.
type ReactionDTO struct {
	ID        string `json:"id"`
	MessageID string `json:"messageId"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toReactionDTO(reaction *domain.Reaction) ReactionDTO {
	return ReactionDTO{
		ID:        reaction.ID.String(),
		MessageID: reaction.MessageID.String(),
		Username:  reaction.Username,
		Content:   reaction.Content,
		CreatedAt: reaction.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: reaction.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func toReactionDTOs(reactions []*domain.Reaction) []ReactionDTO {
	response := make([]ReactionDTO, 0, len(reactions))
	for _, reaction := range reactions {
		response = append(response, toReactionDTO(reaction))
	}
	return response
}

// --- Handlers ---

// HandleSendMessage handles POST /messages
func (h *MessageHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[SendMessageRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.SendMessageParams{
		Sender:    claims.Username,
		Recipient: req.To,
		Content:   req.Content,
	}

	message, err := h.conversationService.SendMessage(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("message sent",
		"message_id", message.ID,
		"from", message.From,
		"to", message.To,
	)

	WriteCreated(w, toMessageDTO(message))
}

// HandleHistory handles GET /messages?with={username}
func (h *MessageHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	other := r.URL.Query().Get("with")

	v := validation.NewValidator()
	v.Required("with", other)
	if v.HasErrors() {
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	params := ports.HistoryParams{
		Viewer: claims.Username,
		Other:  other,
	}

	messages, err := h.conversationService.History(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toMessageDTOs(messages))
}

// HandleReact handles PUT /messages/{messageID}/reactions
func (h *MessageHandler) HandleReact(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	messageID, err := h.parseMessageID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[ReactRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.ReactParams{
		Actor:     claims.Username,
		MessageID: messageID,
		Content:   req.Content,
	}

	reaction, err := h.reactionService.React(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("reaction set",
		"message_id", messageID,
		"username", claims.Username,
	)

	WriteJSON(w, http.StatusOK, toReactionDTO(reaction))
}

// HandleListReactions handles GET /messages/{messageID}/reactions
func (h *MessageHandler) HandleListReactions(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	messageID, err := h.parseMessageID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	reactions, err := h.reactionService.ReactionsFor(r.Context(), claims.Username, messageID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toReactionDTOs(reactions))
}

// --- Helper methods ---

// getClaims extracts and validates user claims from the request context
func (h *MessageHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Not authorized",
			Code:  "UNAUTHENTICATED",
		})
		return nil, false
	}
	return claims, true
}

// parseMessageID extracts and validates the message ID from the URL
func (h *MessageHandler) parseMessageID(r *http.Request) (uuid.UUID, error) {
	messageIDStr := chi.URLParam(r, "messageID")
	messageID, err := uuid.Parse(messageIDStr)
	if err != nil {
		v := validation.NewValidator()
		v.Custom("messageID", false, "Invalid message ID")
		return uuid.Nil, v.Errors()
	}
	return messageID, nil
}
