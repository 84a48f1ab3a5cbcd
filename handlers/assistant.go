// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/smartecoq/assistant"
	"github.com/danielhkuo/smartecoq/middleware"
	"github.com/danielhkuo/smartecoq/models"
)

type AssistantHandler struct {
	assistant *assistant.Assistant
}

func NewAssistantHandler(a *assistant.Assistant) *AssistantHandler {
	return &AssistantHandler{assistant: a}
}

// Chat handles POST /assistant/chat
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.assistant.Chat(r.Context(), req.History, req.Message)
	if err != nil {
		writeError(w, r, err, "Assistant failed")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

// Recycling handles POST /assistant/recycling
func (h *AssistantHandler) Recycling(w http.ResponseWriter, r *http.Request) {
	var req models.RecyclingRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.assistant.Advise(r.Context(), req.Items)
	if err != nil {
		writeError(w, r, err, "Recycling advice failed")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
