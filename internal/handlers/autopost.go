package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/playfulorigins333/sirens-forge-master-sub001/internal/dispatch"
	"github.com/playfulorigins333/sirens-forge-master-sub001/internal/selection"
	heraldapi "github.com/playfulorigins333/sirens-forge-master-sub001/pkg/api/herald"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/logging"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/middleware"
	"github.com/playfulorigins333/sirens-forge-master-sub001/pkg/models"
)

// RunAutopost executes one stateless selection run over the candidate pools
// supplied in the request body. Nothing is persisted and no usage counters
// move; callers use this to preview or verify what a scheduled run would
// decide.
func RunAutopost(c middleware.Context) {
	var input selection.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: err.Error()})
		return
	}

	result := selection.RunAutopost(input)
	countSelectionRun(input.Platform, string(result.State))

	logger.WithFields(logging.Fields{
		"platform": input.Platform,
		"state":    string(result.State),
		"captions": len(input.Captions),
	}).Info("Ad-hoc selection run")

	c.JSON(http.StatusOK, result)
}

// ExecuteRule runs the full autopost pipeline for one rule immediately,
// without waiting for its schedule. The run counts like a scheduled one:
// usage moves, the decision is stored and next_run_at advances.
func ExecuteRule(c middleware.Context) {
	ruleID := c.Param("id")
	if ruleID == "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "Rule ID required"})
		return
	}

	rule, err := store.GetRule(c.Request.Context(), ruleID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, heraldapi.ErrorResponse{Error: "Rule not found"})
		return
	}
	if err != nil {
		logger.WithFields(logging.Fields{
			"rule_id": ruleID,
			"error":   err,
		}).Error("Failed to fetch rule")
		c.JSON(http.StatusInternalServerError, heraldapi.ErrorResponse{Error: "Database error"})
		return
	}

	decision, err := runner.ExecuteRule(c.Request.Context(), rule)
	if err != nil {
		logger.WithFields(logging.Fields{
			"rule_id": ruleID,
			"error":   err,
		}).Error("Failed to execute rule")
		c.JSON(http.StatusInternalServerError, heraldapi.ErrorResponse{Error: "Failed to execute rule"})
		return
	}

	c.JSON(http.StatusOK, decision)
}

// CreateRule creates an autopost rule for the authenticated creator.
func CreateRule(c middleware.Context) {
	creatorID := c.GetString("creator_id")
	if creatorID == "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "Creator context required"})
		return
	}

	var req heraldapi.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: err.Error()})
		return
	}
	if msg := validateRulePlatform(req.Platform); msg != "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: msg})
		return
	}
	if req.ComfortExplicitnessMax < 0 || req.ComfortExplicitnessMax > 3 {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "comfort_explicitness_max must be between 0 and 3"})
		return
	}
	if req.CooldownSeconds < 0 {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "cooldown_seconds must not be negative"})
		return
	}
	if req.CadenceMinutes < 0 {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "cadence_minutes must not be negative"})
		return
	}

	rule := &models.Rule{
		CreatorID:              creatorID,
		Platform:               req.Platform,
		CadenceMinutes:         req.CadenceMinutes,
		ComfortExplicitnessMax: req.ComfortExplicitnessMax,
		CooldownSeconds:        req.CooldownSeconds,
		ToneAllowlist:          req.ToneAllowlist,
		MaxHashtags:            dispatch.DefaultMaxHashtags(req.Platform),
		CreatorPct:             80,
		PlatformPct:            20,
		NextRunAt:              time.Now().UTC(),
		Active:                 true,
	}
	if rule.CadenceMinutes == 0 {
		rule.CadenceMinutes = 1440
	}
	if req.MaxHashtags != nil {
		rule.MaxHashtags = *req.MaxHashtags
	}
	if req.CreatorPct != nil {
		rule.CreatorPct = *req.CreatorPct
	}
	if req.PlatformPct != nil {
		rule.PlatformPct = *req.PlatformPct
	}
	if req.NextRunAt != nil {
		rule.NextRunAt = req.NextRunAt.UTC()
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if err := store.CreateRule(c.Request.Context(), rule); err != nil {
		logger.WithFields(logging.Fields{
			"creator_id": creatorID,
			"platform":   req.Platform,
			"error":      err,
		}).Error("Failed to create rule")
		c.JSON(http.StatusInternalServerError, heraldapi.ErrorResponse{Error: "Failed to create rule"})
		return
	}

	logger.WithFields(logging.Fields{
		"rule_id":    rule.ID,
		"creator_id": creatorID,
		"platform":   rule.Platform,
		"cadence":    rule.CadenceMinutes,
	}).Info("Autopost rule created")

	c.JSON(http.StatusCreated, rule)
}

// ListRules returns the authenticated creator's autopost rules.
func ListRules(c middleware.Context) {
	creatorID := c.GetString("creator_id")
	if creatorID == "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "Creator context required"})
		return
	}

	rules, err := store.ListRules(c.Request.Context(), creatorID)
	if err != nil {
		logger.WithFields(logging.Fields{
			"creator_id": creatorID,
			"error":      err,
		}).Error("Failed to list rules")
		c.JSON(http.StatusInternalServerError, heraldapi.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, heraldapi.ListRulesResponse{Rules: rules, Count: len(rules)})
}

// UpdateRule applies a partial update to one of the creator's rules.
// Pausing and resuming happens here through the active flag.
func UpdateRule(c middleware.Context) {
	creatorID := c.GetString("creator_id")
	if creatorID == "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "Creator context required"})
		return
	}
	ruleID := c.Param("id")

	var req heraldapi.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: err.Error()})
		return
	}

	rule, err := store.GetRule(c.Request.Context(), ruleID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, heraldapi.ErrorResponse{Error: "Rule not found"})
		return
	}
	if err != nil {
		logger.WithFields(logging.Fields{
			"rule_id": ruleID,
			"error":   err,
		}).Error("Failed to fetch rule")
		c.JSON(http.StatusInternalServerError, heraldapi.ErrorResponse{Error: "Database error"})
		return
	}
	if rule.CreatorID != creatorID {
		c.JSON(http.StatusNotFound, heraldapi.ErrorResponse{Error: "Rule not found"})
		return
	}

	if req.Platform != nil {
		if msg := validateRulePlatform(*req.Platform); msg != "" {
			c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: msg})
			return
		}
		rule.Platform = *req.Platform
	}
	if req.CadenceMinutes != nil {
		if *req.CadenceMinutes <= 0 {
			c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "cadence_minutes must be positive"})
			return
		}
		rule.CadenceMinutes = *req.CadenceMinutes
	}
	if req.ComfortExplicitnessMax != nil {
		if *req.ComfortExplicitnessMax < 0 || *req.ComfortExplicitnessMax > 3 {
			c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "comfort_explicitness_max must be between 0 and 3"})
			return
		}
		rule.ComfortExplicitnessMax = *req.ComfortExplicitnessMax
	}
	if req.CooldownSeconds != nil {
		if *req.CooldownSeconds < 0 {
			c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "cooldown_seconds must not be negative"})
			return
		}
		rule.CooldownSeconds = *req.CooldownSeconds
	}
	if req.ToneAllowlist != nil {
		rule.ToneAllowlist = *req.ToneAllowlist
	}
	if req.MaxHashtags != nil {
		rule.MaxHashtags = *req.MaxHashtags
	}
	if req.CreatorPct != nil {
		rule.CreatorPct = *req.CreatorPct
	}
	if req.PlatformPct != nil {
		rule.PlatformPct = *req.PlatformPct
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if err := store.UpdateRule(c.Request.Context(), rule); err != nil {
		logger.WithFields(logging.Fields{
			"rule_id": ruleID,
			"error":   err,
		}).Error("Failed to update rule")
		c.JSON(http.StatusInternalServerError, heraldapi.ErrorResponse{Error: "Failed to update rule"})
		return
	}

	logger.WithFields(logging.Fields{
		"rule_id":    ruleID,
		"creator_id": creatorID,
		"active":     rule.Active,
	}).Info("Autopost rule updated")

	c.JSON(http.StatusOK, rule)
}

// ListDecisions returns the creator's most recent autopost decisions.
func ListDecisions(c middleware.Context) {
	creatorID := c.GetString("creator_id")
	if creatorID == "" {
		c.JSON(http.StatusBadRequest, heraldapi.ErrorResponse{Error: "Creator context required"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	decisions, err := store.ListDecisions(c.Request.Context(), creatorID, limit)
	if err != nil {
		logger.WithFields(logging.Fields{
			"creator_id": creatorID,
			"error":      err,
		}).Error("Failed to list decisions")
		c.JSON(http.StatusInternalServerError, heraldapi.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, heraldapi.ListDecisionsResponse{Decisions: decisions, Count: len(decisions)})
}

func validateRulePlatform(platform string) string {
	for _, p := range dispatch.ListPlatforms() {
		if p == platform {
			return ""
		}
	}
	return "Unknown platform, expected one of: " + strings.Join(dispatch.ListPlatforms(), ", ")
}

func countSelectionRun(platform, state string) {
	if metrics == nil || metrics.SelectionRuns == nil {
		return
	}
	metrics.SelectionRuns.WithLabelValues(platform, state).Inc()
}
