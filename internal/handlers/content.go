package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	heraldapi "github.com/playfulorigins333/sirens-forge-master-sub001/pkg/api/herald"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/logging"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/middleware"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/models"
)

// ListCaptions returns the authenticated creator's caption candidates.
func ListCaptions(c middleware.Context) {
	creatorID := c.GetString("creator_id")
	if creatorID == "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "Creator context required"})
		return
	}

	captions, err := store.ListCaptionRows(c.Request.Context(), creatorID)
	if err != nil {
		logger.WithFields(logging.Fields{
			"creator_id": creatorID,
			"error":      err,
		}).Error("Failed to list captions")
		c.JSON(http.StatusInternalServerError, heraldapi.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, heraldapi.ListCaptionsResponse{Captions: captions, Count: len(captions)})
}

// CreateCaption adds a caption candidate to the creator's pool. New captions
// start unapproved unless the request says otherwise.
func CreateCaption(c middleware.Context) {
	creatorID := c.GetString("creator_id")
	if creatorID == "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "Creator context required"})
		return
	}

	var req heraldapi.CreateCaptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: err.Error()})
		return
	}
	if msg := validateRulePlatform(req.Platform); msg != "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: msg})
		return
	}
	if req.ExplicitnessLevel < 0 || req.ExplicitnessLevel > 3 {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "explicitness_level must be between 0 and 3"})
		return
	}
	if strings.TrimSpace(req.CaptionText) == "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "caption_text must not be blank"})
		return
	}

	caption := &models.Caption{
		CreatorID:         creatorID,
		Platform:          req.Platform,
		CaptionText:       req.CaptionText,
		ExplicitnessLevel: req.ExplicitnessLevel,
		Tone:              req.Tone,
		Approved:          req.Approved,
		Active:            true,
	}
	if req.Active != nil {
		caption.Active = *req.Active
	}

	if err := store.InsertCaption(c.Request.Context(), caption); err != nil {
		logger.WithFields(logging.Fields{
			"creator_id": creatorID,
			"platform":   req.Platform,
			"error":      err,
		}).Error("Failed to insert caption")
		c.JSON(http.StatusInternalServerError, heraldapi.ErrorResponse{Error: "Failed to create caption"})
		return
	}

	c.JSON(http.StatusCreated, caption)
}

// SetCaptionApproval approves or revokes one of the creator's captions.
func SetCaptionApproval(c middleware.Context) {
	creatorID := c.GetString("creator_id")
	if creatorID == "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "Creator context required"})
		return
	}

	var req heraldapi.ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: err.Error()})
		return
	}

	err := store.SetCaptionApproval(c.Request.Context(), c.Param("id"), creatorID, *req.Approved)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, heraldapi.ErrorResponse{Error: "Caption not found"})
		return
	}
	if err != nil {
		logger.WithFields(logging.Fields{
			"caption_id": c.Param("id"),
			"creator_id": creatorID,
			"error":      err,
		}).Error("Failed to update caption approval")
		c.JSON(http.StatusInternalServerError, heraldapi.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, heraldapi.SuccessResponse{Success: true, Message: "Caption approval updated"})
}

// ListCTAs returns the authenticated creator's call-to-action candidates.
func ListCTAs(c middleware.Context) {
	creatorID := c.GetString("creator_id")
	if creatorID == "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "Creator context required"})
		return
	}

	ctas, err := store.ListCTARows(c.Request.Context(), creatorID)
	if err != nil {
		logger.WithFields(logging.Fields{
			"creator_id": creatorID,
			"error":      err,
		}).Error("Failed to list ctas")
		c.JSON(http.StatusInternalServerError, heraldapi.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, heraldapi.ListCTAsResponse{CTAs: ctas, Count: len(ctas)})
}

// CreateCTA adds a call-to-action candidate to the creator's pool.
func CreateCTA(c middleware.Context) {
	creatorID := c.GetString("creator_id")
	if creatorID == "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "Creator context required"})
		return
	}

	var req heraldapi.CreateCTARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: err.Error()})
		return
	}
	if msg := validateRulePlatform(req.Platform); msg != "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: msg})
		return
	}
	if req.MaxExplicitness != nil && (*req.MaxExplicitness < 0 || *req.MaxExplicitness > 3) {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "max_explicitness must be between 0 and 3"})
		return
	}
	if strings.TrimSpace(req.CTAText) == "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "cta_text must not be blank"})
		return
	}

	cta := &models.CTA{
		CreatorID:       creatorID,
		Platform:        req.Platform,
		CTAText:         req.CTAText,
		MaxExplicitness: req.MaxExplicitness,
		Tone:            req.Tone,
		Approved:        req.Approved,
		Active:          true,
	}
	if req.Active != nil {
		cta.Active = *req.Active
	}

	if err := store.InsertCTA(c.Request.Context(), cta); err != nil {
		logger.WithFields(logging.Fields{
			"creator_id": creatorID,
			"platform":   req.Platform,
			"error":      err,
		}).Error("Failed to insert cta")
		c.JSON(http.StatusInternalServerError, heraldapi.ErrorResponse{Error: "Failed to create cta"})
		return
	}

	c.JSON(http.StatusCreated, cta)
}

// SetCTAApproval approves or revokes one of the creator's CTAs.
func SetCTAApproval(c middleware.Context) {
	creatorID := c.GetString("creator_id")
	if creatorID == "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "Creator context required"})
		return
	}

	var req heraldapi.ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: err.Error()})
		return
	}

	err := store.SetCTAApproval(c.Request.Context(), c.Param("id"), creatorID, *req.Approved)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, heraldapi.ErrorResponse{Error: "CTA not found"})
		return
	}
	if err != nil {
		logger.WithFields(logging.Fields{
			"cta_id":     c.Param("id"),
			"creator_id": creatorID,
			"error":      err,
		}).Error("Failed to update cta approval")
		c.JSON(http.StatusInternalServerError, heraldapi.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, heraldapi.SuccessResponse{Success: true, Message: "CTA approval updated"})
}

// ListHashtagSets returns the authenticated creator's hashtag-set candidates.
func ListHashtagSets(c middleware.Context) {
	creatorID := c.GetString("creator_id")
	if creatorID == "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "Creator context required"})
		return
	}

	sets, err := store.ListHashtagSetRows(c.Request.Context(), creatorID)
	if err != nil {
		logger.WithFields(logging.Fields{
			"creator_id": creatorID,
			"error":      err,
		}).Error("Failed to list hashtag sets")
		c.JSON(http.StatusInternalServerError, heraldapi.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, heraldapi.ListHashtagSetsResponse{HashtagSets: sets, Count: len(sets)})
}

// CreateHashtagSet adds a hashtag-set candidate to the creator's pool.
// Hashtag order is preserved; it is the priority order under truncation.
func CreateHashtagSet(c middleware.Context) {
	creatorID := c.GetString("creator_id")
	if creatorID == "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "Creator context required"})
		return
	}

	var req heraldapi.CreateHashtagSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: err.Error()})
		return
	}
	if msg := validateRulePlatform(req.Platform); msg != "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: msg})
		return
	}
	if req.MaxExplicitness != nil && (*req.MaxExplicitness < 0 || *req.MaxExplicitness > 3) {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "max_explicitness must be between 0 and 3"})
		return
	}
	if len(req.Hashtags) == 0 {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "hashtags must not be empty"})
		return
	}
	for _, tag := range req.Hashtags {
		if strings.TrimSpace(tag) == "" {
			c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "hashtags must not contain blank entries"})
			return
		}
	}

	set := &models.HashtagSet{
		CreatorID:       creatorID,
		Platform:        req.Platform,
		Hashtags:        req.Hashtags,
		MaxExplicitness: req.MaxExplicitness,
		Tone:            req.Tone,
		Approved:        req.Approved,
		Active:          true,
	}
	if req.Active != nil {
		set.Active = *req.Active
	}

	if err := store.InsertHashtagSet(c.Request.Context(), set); err != nil {
		logger.WithFields(logging.Fields{
			"creator_id": creatorID,
			"platform":   req.Platform,
			"error":      err,
		}).Error("Failed to insert hashtag set")
		c.JSON(http.StatusInternalServerError, heraldapi.ErrorResponse{Error: "Failed to create hashtag set"})
		return
	}

	c.JSON(http.StatusCreated, set)
}

// SetHashtagSetApproval approves or revokes one of the creator's hashtag sets.
func SetHashtagSetApproval(c middleware.Context) {
	creatorID := c.GetString("creator_id")
	if creatorID == "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "Creator context required"})
		return
	}

	var req heraldapi.ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: err.Error()})
		return
	}

	err := store.SetHashtagSetApproval(c.Request.Context(), c.Param("id"), creatorID, *req.Approved)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, heraldapi.ErrorResponse{Error: "Hashtag set not found"})
		return
	}
	if err != nil {
		logger.WithFields(logging.Fields{
			"hashtag_set_id": c.Param("id"),
			"creator_id":     creatorID,
			"error":          err,
		}).Error("Failed to update hashtag set approval")
		c.JSON(http.StatusInternalServerError, heraldapi.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, heraldapi.SuccessResponse{Success: true, Message: "Hashtag set approval updated"})
}
