package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/evermem/evermem-go/pkg/conversation"
	"github.com/evermem/evermem-go/pkg/core"
	"github.com/evermem/evermem-go/pkg/memories"
	"github.com/evermem/evermem-go/pkg/profile"
	"github.com/evermem/evermem-go/pkg/voice"
)

func (s *Server) handleHealth(ctx *gin.Context) {
	if err := s.client.Ping(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "service": "evermem"})
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrProfileNotFound), errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrProfileExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(ctx *gin.Context, err error) {
	log.Errorf("%s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
	ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
}

func (s *Server) handleCreateProfile(ctx *gin.Context) {
	var req profile.Profile
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := s.client.Profiles().Create(ctx.Request.Context(), req)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

func (s *Server) handleListProfiles(ctx *gin.Context) {
	profiles, err := s.client.Profiles().List(ctx.Request.Context())
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

func (s *Server) handleDeleteProfile(ctx *gin.Context) {
	id := ctx.Param("profile_id")
	if err := s.client.Profiles().Delete(ctx.Request.Context(), id); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (s *Server) handleAsk(ctx *gin.Context) {
	var req struct {
		ProfileID string `json:"profile_id" binding:"required"`
		Message   string `json:"message" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := s.client.Engine().Ask(ctx.Request.Context(), req.ProfileID, req.Message, conversation.SourceChatbot)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reply": reply.Text, "ended": reply.Ended})
}

func (s *Server) handleSaveUserFact(ctx *gin.Context) {
	var req struct {
		ProfileID string `json:"profile_id" binding:"required"`
		Key       string `json:"key" binding:"required"`
		Value     string `json:"value"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.client.Profiles().SaveFact(ctx.Request.Context(), req.ProfileID, req.Key, req.Value); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"saved": req.Key})
}

func (s *Server) handleSearchMemory(ctx *gin.Context) {
	var req struct {
		ProfileID string `json:"profile_id" binding:"required"`
		Query     string `json:"query" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := s.client.Searcher().Search(ctx.Request.Context(), req.ProfileID, req.Query)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"results": results})
}

// handleUploadMemory accepts a multipart upload: the file plus form fields
// describing it. Enrichment runs best effort after the upload is stored.
func (s *Server) handleUploadMemory(ctx *gin.Context) {
	profileID := ctx.PostForm("profile_id")
	title := ctx.PostForm("title")
	if profileID == "" || title == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "profile_id and title are required"})
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	rec := memories.Record{
		Title:       title,
		Description: ctx.PostForm("description"),
		Collection:  ctx.PostForm("collection"),
	}

	enrichment := s.client.Enricher().Enrich(ctx.Request.Context(), rec.Title, rec.Description)
	rec.Tags = enrichment.Tags
	rec.Emotion = enrichment.Emotion
	if rec.Description == "" && enrichment.Summary != "" {
		rec.Description = enrichment.Summary
	}

	stored, err := s.client.Memories().Upload(ctx.Request.Context(), profileID, fileHeader.Filename, content, rec)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, stored)
}

func (s *Server) handleListMemories(ctx *gin.Context) {
	id := ctx.Param("profile_id")
	records, err := s.client.Memories().List(ctx.Request.Context(), id)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"memories": records})
}

func (s *Server) handleLatestMemorySummary(ctx *gin.Context) {
	id := ctx.Param("profile_id")
	summary, err := s.client.Memories().LatestSummary(ctx.Request.Context(), id)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (s *Server) handleGetConversation(ctx *gin.Context) {
	id := ctx.Param("profile_id")
	history := s.client.Logs().Load(ctx.Request.Context(), id)
	ctx.JSON(http.StatusOK, gin.H{"conversation": history})
}

func (s *Server) handleClearConversation(ctx *gin.Context) {
	id := ctx.Param("profile_id")
	if err := s.client.Logs().Clear(ctx.Request.Context(), id); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"cleared": id})
}

// handleVoiceChatOnce runs one stateless voice round trip: audio in,
// transcript plus reply out. The synthesized audio is returned base64 via
// JSON so browser callers can play it directly.
func (s *Server) handleVoiceChatOnce(ctx *gin.Context) {
	if !s.client.VoiceEnabled() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "speech provider not configured"})
		return
	}

	profileID := ctx.PostForm("profile_id")
	if profileID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "profile_id is required"})
		return
	}
	fileHeader, err := ctx.FormFile("audio")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "audio is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	defer file.Close()

	session := voice.NewSession(s.client.Recognizer(), s.client.Synthesizer(), s.client.Engine(), profileID)
	exchange, err := session.HandleAudio(ctx.Request.Context(), file, fileHeader.Filename)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"transcript":   exchange.Transcript,
		"reply_text":   exchange.ReplyText,
		"audio":        exchange.Audio,
		"content_type": exchange.ContentType,
		"ended":        exchange.Ended,
	})
}

func (s *Server) handleAssistantStart(ctx *gin.Context) {
	var req struct {
		ProfileID string `json:"profile_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.assistant.Start(req.ProfileID); err != nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "started"})
}

func (s *Server) handleAssistantStop(ctx *gin.Context) {
	if err := s.assistant.Stop(); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "stopped"})
}
