package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/izikbr/calorific2-app/internal/service"
)

type profileRequest struct {
	Name            string  `json:"name"`
	Avatar          string  `json:"avatar"`
	Sex             string  `json:"sex"`
	Age             int     `json:"age"`
	HeightCm        float64 `json:"height_cm"`
	Weight          float64 `json:"weight"`
	TargetWeight    float64 `json:"target_weight"`
	WeightUnit      string  `json:"weight_unit"`
	ActivityLevel   string  `json:"activity_level"`
	Goal            string  `json:"goal"`
	LoseWeightWeeks int     `json:"lose_weight_weeks"`
}

type profilePatchRequest struct {
	Name            *string  `json:"name"`
	Avatar          *string  `json:"avatar"`
	Sex             *string  `json:"sex"`
	Age             *int     `json:"age"`
	HeightCm        *float64 `json:"height_cm"`
	Weight          *float64 `json:"weight"`
	TargetWeight    *float64 `json:"target_weight"`
	WeightUnit      string   `json:"weight_unit"`
	ActivityLevel   *string  `json:"activity_level"`
	Goal            *string  `json:"goal"`
	LoseWeightWeeks *int     `json:"lose_weight_weeks"`
}

func (s *Server) listProfiles(c *gin.Context) {
	profiles, err := service.ListProfiles(s.DB)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, profiles)
}

func (s *Server) createProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest(err))
		return
	}
	id, err := service.CreateProfile(s.DB, service.ProfileInput(req))
	if err != nil {
		_ = c.Error(err)
		return
	}
	p, err := service.ProfileByID(s.DB, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusCreated, p)
}

func (s *Server) getProfile(c *gin.Context) {
	p, err := service.ProfileByID(s.DB, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, p)
}

func (s *Server) updateProfile(c *gin.Context) {
	var req profilePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest(err))
		return
	}
	p, err := service.UpdateProfile(s.DB, c.Param("id"), service.ProfilePatch(req))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, p)
}

// deleteProfile removes a profile with all of its logs, so it needs an
// explicit ?confirm=true.
func (s *Server) deleteProfile(c *gin.Context) {
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	if !confirmed {
		_ = c.Error(errConfirmationRequired)
		return
	}
	if err := service.DeleteProfile(s.DB, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) profileTargets(c *gin.Context) {
	p, targets, err := service.ProfileTargets(s.DB, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, gin.H{"profile": p, "targets": targets})
}

func (s *Server) daySummary(c *gin.Context) {
	summary, err := service.DailySummary(s.DB, c.Param("id"), c.Query("date"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, summary)
}

func (s *Server) trend(c *gin.Context) {
	points, err := service.Trend(s.DB, c.Param("id"), c.Query("from"), c.Query("to"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, points)
}

func (s *Server) progress(c *gin.Context) {
	report, err := service.WeightProgressFor(s.DB, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, report)
}
