package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Answerer interface {
	Answer(question string) (string, error)
}

type ChatRequest struct {
	Question string `json:"question"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

type ChatHandler struct {
	faq      Answerer
	validate *validator.Validate
}

func NewChatHandler(faq Answerer) *ChatHandler {
	return &ChatHandler{faq: faq, validate: newValidator()}
}

func (h *ChatHandler) RegisterRoutes(router chi.Router) {
	router.Post("/chatbot", h.handleAsk)
}

func (h *ChatHandler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	answer, err := h.faq.Answer(req.Question)
	if err != nil {
		respondWithServiceError(w, err, "Failed to answer question")
		return
	}

	respondWithJSON(w, http.StatusOK, ChatResponse{Answer: answer})
}
