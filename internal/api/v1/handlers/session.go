package handlers

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"adaptive-voice/internal/api/errors"
	"adaptive-voice/internal/api/middleware"
	"adaptive-voice/internal/api/v1/dto"
	"adaptive-voice/internal/api/v1/services"
	"adaptive-voice/internal/app/audio"
	"adaptive-voice/internal/app/engine"
	"adaptive-voice/internal/app/recognition"
)

// maxAudioUpload bounds a single clip upload.
const maxAudioUpload = 25 << 20 // 25 MiB

// SessionHandler serves the session lifecycle and recognition endpoints.
type SessionHandler struct {
	sessions *services.SessionManager
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(sessions *services.SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	session, err := h.sessions.CreateSession(c.Request.Context(), req.Environment, req.Options)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SessionResponse{
		SessionID:           session.ID,
		Capabilities:        session.Recognizer.Capabilities(),
		RecommendedStrategy: session.Recognizer.RecommendStrategy(c.Request.Context()),
		CreatedAt:           session.CreatedAt,
	})
}

// Transcribe handles POST /api/v1/sessions/:id/transcribe. It accepts either
// a JSON body with base64 audio or a multipart upload with an "audio" file.
func (h *SessionHandler) Transcribe(c *gin.Context) {
	session, err := h.sessions.GetSession(c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	clip, fingerprint, req, err := h.readClip(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	ctx := c.Request.Context()
	if req != nil && req.NativeText != "" {
		ctx = services.WithNativeTranscript(ctx, req.NativeText, req.NativeConfidence)
	}

	result, err := session.Recognizer.Transcribe(ctx, clip, fingerprint)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TranscribeResponse{
		SessionID: session.ID,
		Result:    result,
	})
}

// readClip extracts the audio clip from either body shape. The JSON request
// is returned too when present, because it may carry a relayed native result.
func (h *SessionHandler) readClip(c *gin.Context) (*audio.Clip, string, *dto.TranscribeRequest, error) {
	contentType := c.GetHeader("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := c.Request.FormFile("audio")
		if err != nil {
			return nil, "", nil, errors.NewBadRequestError("missing audio file in multipart body")
		}
		defer file.Close()

		if header.Size > maxAudioUpload {
			return nil, "", nil, errors.NewBadRequestError("audio file too large")
		}

		data, err := io.ReadAll(io.LimitReader(file, maxAudioUpload))
		if err != nil {
			return nil, "", nil, errors.NewBadRequestError("failed to read audio file")
		}

		fingerprint := c.PostForm("fingerprint")
		if fingerprint == "" {
			fingerprint = c.GetHeader("X-Audio-Fingerprint")
		}

		return &audio.Clip{Data: data, MIME: header.Header.Get("Content-Type")}, fingerprint, nil, nil
	}

	var req dto.TranscribeRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		return nil, "", nil, err
	}

	data, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil {
		return nil, "", nil, errors.NewBadRequestError("audio_base64 is not valid base64")
	}
	if len(data) > maxAudioUpload {
		return nil, "", nil, errors.NewBadRequestError("audio payload too large")
	}

	mime := req.MIME
	if mime == "" {
		mime = "audio/webm"
	}

	return &audio.Clip{Data: data, MIME: mime}, req.Fingerprint, &req, nil
}

// Feedback handles POST /api/v1/sessions/:id/feedback
func (h *SessionHandler) Feedback(c *gin.Context) {
	session, err := h.sessions.GetSession(c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	var req dto.FeedbackRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	session.Recognizer.AddFeedback(req.ToFeedback())
	c.Status(http.StatusNoContent)
}

// Report handles GET /api/v1/sessions/:id/report
func (h *SessionHandler) Report(c *gin.Context) {
	session, err := h.sessions.GetSession(c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ReportResponse{
		SessionID: session.ID,
		Report:    session.Recognizer.GetPerformanceReport(),
	})
}

// UpdateOptions handles PATCH /api/v1/sessions/:id/options
func (h *SessionHandler) UpdateOptions(c *gin.Context) {
	session, err := h.sessions.GetSession(c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	var patch recognition.OptionsPatch
	if err := middleware.ValidateRequest(c, &patch); err != nil {
		middleware.HandleError(c, err)
		return
	}

	if err := session.Recognizer.UpdateOptions(patch); err != nil {
		middleware.HandleError(c, errors.NewBadRequestError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.ReportResponse{
		SessionID: session.ID,
		Report:    session.Recognizer.GetPerformanceReport(),
	})
}

// SwitchEngine handles POST /api/v1/sessions/:id/engine
func (h *SessionHandler) SwitchEngine(c *gin.Context) {
	session, err := h.sessions.GetSession(c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	var req dto.SwitchEngineRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	engineType, ok := engine.ParseType(req.Engine)
	if !ok {
		middleware.HandleError(c, errors.NewBadRequestError("unknown engine "+req.Engine))
		return
	}
	if err := session.Recognizer.SwitchEngine(engineType); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID,
		"engine":     session.Recognizer.CurrentEngine(),
	})
}

// Close handles DELETE /api/v1/sessions/:id
func (h *SessionHandler) Close(c *gin.Context) {
	if err := h.sessions.CloseSession(c.Param("id")); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
